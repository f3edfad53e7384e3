package valuation

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/fairvalue/pkg/models"
)

// sampleInput is a high-growth, net-cash company.
func sampleInput() models.ValuationInput {
	return models.ValuationInput{
		Name:                 "Acme Analytics",
		Sector:               "Technology",
		Revenue:              5_000_000,
		EBITDA:               1_500_000,
		Depreciation:         100_000,
		CapexPct:             0.05,
		WorkingCapitalChange: -50_000,
		ProfitMargin:         0.15,
		GrowthRateY1:         0.30,
		GrowthRateY2:         0.25,
		GrowthRateY3:         0.20,
		TerminalGrowth:       0.03,
		TaxRate:              0.25,
		SharesOutstanding:    1_000_000,
		Debt:                 500_000,
		Cash:                 1_000_000,
		MarketCapEstimate:    3_000_000,
		Beta:                 1.5,
		RiskFreeRate:         0.04,
		MarketRiskPremium:    0.07,
		CountryRiskPremium:   0,
		SizePremium:          0.03,
		ComparableEVEBITDA:   12.0,
		ComparablePE:         25.0,
		ComparablePEG:        1.5,
	}
}

const tol = 1e-6

func TestValuateEndToEnd(t *testing.T) {
	in := sampleInput()
	out, err := New().Valuate(in, 42)
	require.NoError(t, err)

	assert.Equal(t, "Acme Analytics", out.Name)
	assert.InDelta(t, 0.155892857, out.WACC, 1e-8)
	assert.Greater(t, out.WACC, in.RiskFreeRate)
	assert.Less(t, out.WACC, in.RiskFreeRate+in.Beta*in.MarketRiskPremium+in.SizePremium+0.025)

	assert.InDelta(t, 21_495_156.03, out.DCFEquityValue, 1)
	assert.InDelta(t, 18_500_000, out.CompEVValue, tol)
	assert.InDelta(t, 18_750_000, out.CompPEValue, tol)
	assert.InDelta(t, 20_060_078.01, out.FinalEquityValue, 1)
	assert.InDelta(t, 20.06, out.FinalPricePerShare, 0.01)
	assert.InDelta(t, 3.0, out.CurrentPrice, tol)
	assert.InDelta(t, 568.67, out.UpsidePct, 0.01)
	assert.Equal(t, Recommend(out.UpsidePct), out.Recommendation)
	assert.Equal(t, models.StrongBuy, out.Recommendation)

	assert.InDelta(t, 13.04, out.EVEBITDA, 0.01)
	assert.InDelta(t, 26.75, out.PERatio, 0.01)
	assert.InDelta(t, 6.157, out.FCFYield, 0.001)
	assert.InDelta(t, 3.739, out.ROE, 0.001)
	assert.InDelta(t, 2.918, out.ROIC, 0.001)
	assert.InDelta(t, 0.0249, out.DebtToEquity, 0.0001)
	assert.InDelta(t, 24.614, out.ZScore, 0.001)

	assert.Less(t, out.MCP10, out.FinalEquityValue)
	assert.Greater(t, out.MCP90, out.FinalEquityValue)
}

func TestBlendWeightsSumToFinalValue(t *testing.T) {
	inputs := []models.ValuationInput{sampleInput()}

	lossMaker := sampleInput()
	lossMaker.ProfitMargin = -0.2
	lossMaker.EBITDA = -100_000
	inputs = append(inputs, lossMaker)

	levered := sampleInput()
	levered.Debt = 9_000_000
	levered.Cash = 0
	inputs = append(inputs, levered)

	for _, in := range inputs {
		out, err := New().Valuate(in, 7)
		require.NoError(t, err)
		want := 0.50*out.DCFEquityValue + 0.25*out.CompEVValue + 0.25*out.CompPEValue
		assert.InDelta(t, want, out.FinalEquityValue, 1e-6*math.Max(1, math.Abs(want)))
	}
}

func TestValuateIdempotent(t *testing.T) {
	v := New()
	a, err := v.Valuate(sampleInput(), 2024)
	require.NoError(t, err)
	b, err := v.Valuate(sampleInput(), 2024)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestValuateRejectsInvalidInputWholesale(t *testing.T) {
	in := sampleInput()
	in.Revenue = 0
	in.SharesOutstanding = -1

	out, err := New().Valuate(in, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Equal(t, models.ValuationOutput{}, out)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "revenue")
	assert.Contains(t, ve.Fields, "shares_outstanding")
}

func TestValuateClampsTerminalGrowth(t *testing.T) {
	in := sampleInput()
	in.Beta = 0
	in.RiskFreeRate = 0.02
	in.MarketRiskPremium = 0.05
	in.SizePremium = 0
	in.Debt = 0
	in.TerminalGrowth = 0.10

	a, err := New().Analyze(in, 3)
	require.NoError(t, err)

	assert.InDelta(t, 0.02, a.Capital.WACC, tol)
	assert.True(t, a.DCF.Terminal.Clamped)
	assert.InDelta(t, 0.01, a.DCF.Terminal.Growth, tol)
	assert.False(t, math.IsInf(a.DCF.Terminal.Value, 0))
	assert.False(t, math.IsNaN(a.DCF.Terminal.Value))
	assert.Greater(t, a.DCF.Terminal.Value, 0.0)
	assert.False(t, math.IsNaN(a.Output.FinalEquityValue))
}

func TestAnalyzeSecondaryOutputs(t *testing.T) {
	in := sampleInput()
	a, err := New().Analyze(in, 11)
	require.NoError(t, err)

	assert.Len(t, a.DCF.Years, ProjectionYears)
	assert.Len(t, a.Sensitivity.Cells, 5)
	assert.Equal(t, 1000, a.MonteCarlo.Iterations)
	assert.Equal(t, a.Output.MCP10, a.MonteCarlo.P10)
	assert.Equal(t, models.ZoneSafe, a.ZScore.Zone)
	assert.InDelta(t, a.Output.FinalPricePerShare, a.Range.TargetPrice, tol)
	assert.InDelta(t, 0.75*a.Output.FinalEquityValue, a.Range.Bear, tol)
	assert.InDelta(t, 1.25*a.Output.FinalEquityValue, a.Range.Bull, tol)

	// DCF-based company P/E against the industry PEG.
	assert.InDelta(t, a.DCF.EquityValue/in.Profit(), a.Comparables.CompanyPE, tol)
	assert.InDelta(t, a.Comparables.CompanyPE/in.GrowthRateY1, a.Comparables.ImpliedPEG, tol)
}

func TestAuxiliaryOutputsMatchFacade(t *testing.T) {
	in := sampleInput()
	a, err := New().Analyze(in, 99)
	require.NoError(t, err)

	grid, err := SensitivityFor(in)
	require.NoError(t, err)
	assert.Equal(t, a.Sensitivity, grid)

	mc, err := SimulateFor(in, DefaultMonteCarlo(), 99)
	require.NoError(t, err)
	assert.Equal(t, a.MonteCarlo, mc)

	_, err = SensitivityFor(models.ValuationInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestValuatorConcurrentUse(t *testing.T) {
	v := New()
	want, err := v.Valuate(sampleInput(), 5)
	require.NoError(t, err)

	done := make(chan models.ValuationOutput, 8)
	for i := 0; i < 8; i++ {
		go func() {
			out, _ := v.Valuate(sampleInput(), 5)
			done <- out
		}()
	}
	for i := 0; i < 8; i++ {
		assert.Equal(t, want, <-done)
	}
}
