// Package valuation is the fair value engine: cost of capital, a ten-year
// DCF with Gordon terminal value, EV/EBITDA and P/E comparables, a blended
// fair value, diagnostic ratios, a Z-score proxy, a sensitivity grid and a
// Monte Carlo range. Everything here is pure computation over one
// models.ValuationInput; persistence, market data and rendering live
// elsewhere.
package valuation

import (
	"go.uber.org/zap"

	"github.com/seenimoa/fairvalue/pkg/models"
)

// Valuator runs the full valuation pipeline. It holds only immutable
// options and is safe for concurrent use.
type Valuator struct {
	log *zap.Logger
	mc  MonteCarloParams
}

// Option configures a Valuator.
type Option func(*Valuator)

// WithLogger sets the logger used for debug tracing.
func WithLogger(l *zap.Logger) Option {
	return func(v *Valuator) {
		if l != nil {
			v.log = l
		}
	}
}

// WithMonteCarlo overrides the simulation parameters.
func WithMonteCarlo(p MonteCarloParams) Option {
	return func(v *Valuator) { v.mc = p }
}

// New creates a Valuator with production defaults.
func New(opts ...Option) *Valuator {
	v := &Valuator{
		log: zap.NewNop(),
		mc:  DefaultMonteCarlo(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Valuate returns the primary output for one company. It fails as a whole
// on invalid input; it never returns a partially populated output.
func (v *Valuator) Valuate(in models.ValuationInput, seed uint64) (models.ValuationOutput, error) {
	a, err := v.Analyze(in, seed)
	if err != nil {
		return models.ValuationOutput{}, err
	}
	return a.Output, nil
}

// Analyze runs the pipeline and returns the output together with every
// intermediate result.
func (v *Valuator) Analyze(in models.ValuationInput, seed uint64) (*models.ValuationAnalysis, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	log := v.log.With(zap.String("company", in.Name))

	core := runCore(in)
	if core.dcf.Terminal.Clamped {
		log.Debug("terminal growth clamped below WACC",
			zap.Float64("wacc", core.capital.WACC),
			zap.Float64("terminal_growth", in.TerminalGrowth),
			zap.Float64("clamped_to", core.dcf.Terminal.Growth),
		)
	}

	ratios := ComputeRatios(RatioInput{
		Revenue:     in.Revenue,
		EBITDA:      in.EBITDA,
		Profit:      in.Profit(),
		Debt:        in.Debt,
		Cash:        in.Cash,
		EquityValue: core.blended.EquityValue,
		Shares:      in.SharesOutstanding,
		FCF:         firstFCF(core.dcf),
	})

	z := AltmanZScore(ZScoreInput{
		Revenue:        in.Revenue,
		EBITDA:         in.EBITDA,
		EquityValue:    core.blended.EquityValue,
		Debt:           in.Debt,
		WorkingCapital: in.WorkingCapitalChange,
	})

	rec := Recommend(core.blended.UpsidePct)
	grid := Sensitivity(sensitivityInput(in, core))

	mc, err := Simulate(core.blended.EquityValue, v.mc, seed)
	if err != nil {
		return nil, err
	}

	out := models.ValuationOutput{
		Name:               in.Name,
		Sector:             in.Sector,
		DCFEquityValue:     core.dcf.EquityValue,
		DCFPricePerShare:   core.dcf.PricePerShare,
		CompEVValue:        core.comps.ImpliedEquityEV,
		CompPEValue:        core.comps.ImpliedEquityPE,
		FinalEquityValue:   core.blended.EquityValue,
		FinalPricePerShare: core.blended.PricePerShare,
		MarketCap:          core.blended.MarketCap,
		CurrentPrice:       core.blended.CurrentPrice,
		UpsidePct:          core.blended.UpsidePct,
		Recommendation:     rec,
		WACC:               core.capital.WACC,
		EVEBITDA:           ratios.EVEBITDA,
		PERatio:            ratios.PE,
		FCFYield:           ratios.FCFYield,
		ROE:                ratios.ROE,
		ROIC:               ratios.ROIC,
		DebtToEquity:       ratios.DebtToEquity,
		ZScore:             z.Score,
		MCP10:              mc.P10,
		MCP90:              mc.P90,
	}

	log.Debug("valuation complete",
		zap.Float64("wacc", out.WACC),
		zap.Float64("fair_value", out.FinalEquityValue),
		zap.Float64("upside_pct", out.UpsidePct),
		zap.String("recommendation", string(out.Recommendation)),
	)

	return &models.ValuationAnalysis{
		Input:       in,
		Output:      out,
		Capital:     core.capital,
		DCF:         core.dcf,
		Comparables: core.comps,
		Ratios:      ratios,
		ZScore:      z,
		Sensitivity: grid,
		MonteCarlo:  mc,
		Range:       core.blended.Range(),
	}, nil
}

// SensitivityFor computes only the sensitivity grid for an input.
func SensitivityFor(in models.ValuationInput) (models.SensitivityGrid, error) {
	if err := Validate(in); err != nil {
		return models.SensitivityGrid{}, err
	}
	capital := CostOfCapital(capmFromInput(in))
	dcf := DCF(in, capital.WACC)
	return Sensitivity(sensitivityInput(in, coreResult{capital: capital, dcf: dcf})), nil
}

// SimulateFor computes only the Monte Carlo summary around the blended fair
// value of an input.
func SimulateFor(in models.ValuationInput, p MonteCarloParams, seed uint64) (models.MonteCarloSummary, error) {
	if err := Validate(in); err != nil {
		return models.MonteCarloSummary{}, err
	}
	core := runCore(in)
	return Simulate(core.blended.EquityValue, p, seed)
}

// coreResult holds the stages every entry point needs.
type coreResult struct {
	capital models.CostOfCapital
	dcf     models.DCFResult
	comps   models.ComparablesResult
	blended Blended
}

func runCore(in models.ValuationInput) coreResult {
	capital := CostOfCapital(capmFromInput(in))
	dcf := DCF(in, capital.WACC)
	comps := Comparables(in, dcf.EquityValue)
	blended := Blend(dcf.EquityValue, comps.ImpliedEquityEV, comps.ImpliedEquityPE, in.MarketCapEstimate, in.SharesOutstanding)
	return coreResult{capital: capital, dcf: dcf, comps: comps, blended: blended}
}

func sensitivityInput(in models.ValuationInput, core coreResult) SensitivityInput {
	return SensitivityInput{
		TerminalFCF:    core.dcf.Terminal.TerminalFCF,
		SumPVFCF:       core.dcf.SumPVFCF,
		WACC:           core.capital.WACC,
		TerminalGrowth: core.dcf.Terminal.Growth,
		Cash:           in.Cash,
		Debt:           in.Debt,
	}
}

func firstFCF(d models.DCFResult) float64 {
	if len(d.Years) == 0 {
		return 0
	}
	return d.Years[0].FCF
}
