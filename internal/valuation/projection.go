package valuation

import (
	"math"

	"github.com/seenimoa/fairvalue/pkg/models"
)

// ProjectionYears is the length of the explicit forecast.
const ProjectionYears = 10

// tvClampMargin is how far below WACC terminal growth is pulled when the
// Gordon denominator would otherwise be non-positive.
const tvClampMargin = 0.01

// GrowthSchedule returns the year-by-year revenue growth path: two years at
// each short-term rate, then a step-down to the terminal rate.
func GrowthSchedule(g1, g2, g3, terminal float64) [ProjectionYears]float64 {
	return [ProjectionYears]float64{
		g1, g1,
		g2, g2,
		g3, g3,
		(g3 + terminal) / 2,
		terminal + 0.01,
		terminal + 0.005,
		terminal,
	}
}

// Projection is the explicit-period forecast discounted at one rate.
type Projection struct {
	Years    []models.ProjectionYear
	SumPVFCF float64
}

// LastFCF returns the final-year free cash flow, or 0 for an empty projection.
func (p Projection) LastFCF() float64 {
	if len(p.Years) == 0 {
		return 0
	}
	return p.Years[len(p.Years)-1].FCF
}

// Project forecasts revenue and free cash flow for ten years and discounts
// each year at wacc. EBITDA and D&A margins are held at base-year levels.
//
// The working capital line scales the base-year change by (1+g_t)^t: the
// current year's rate compounded over t years, not the cumulative growth
// path. It is an approximation and every downstream figure depends on it.
func Project(in models.ValuationInput, wacc float64) Projection {
	schedule := GrowthSchedule(in.GrowthRateY1, in.GrowthRateY2, in.GrowthRateY3, in.TerminalGrowth)

	ebitdaMargin := in.EBITDA / in.Revenue
	daMargin := in.Depreciation / in.Revenue

	p := Projection{Years: make([]models.ProjectionYear, 0, ProjectionYears)}
	revenue := in.Revenue

	for i, g := range schedule {
		t := i + 1
		revenue *= 1 + g

		ebitda := revenue * ebitdaMargin
		da := revenue * daMargin
		ebit := ebitda - da
		nopat := ebit * (1 - in.TaxRate)
		capex := revenue * in.CapexPct
		wc := in.WorkingCapitalChange * math.Pow(1+g, float64(t))
		fcf := nopat + da - capex - wc

		df := 1 / math.Pow(1+wacc, float64(t))
		pv := fcf * df
		p.SumPVFCF += pv

		p.Years = append(p.Years, models.ProjectionYear{
			Year:           t,
			Growth:         g,
			Revenue:        revenue,
			EBITDA:         ebitda,
			DA:             da,
			EBIT:           ebit,
			NOPAT:          nopat,
			Capex:          capex,
			WorkingCapital: wc,
			FCF:            fcf,
			DiscountFactor: df,
			PVFCF:          pv,
		})
	}

	return p
}

// TerminalValue computes the Gordon-growth value of cash flows beyond the
// forecast and discounts it back over the full horizon.
//
// When wacc ≤ growth the growth rate is clamped to wacc−1% so the result is
// always finite; Clamped reports whether that happened. The terminal FCF is
// grown at the unclamped rate.
func TerminalValue(lastFCF, wacc, growth float64) models.TerminalValue {
	tv := models.TerminalValue{
		TerminalFCF: lastFCF * (1 + growth),
		Growth:      growth,
	}

	if wacc <= growth {
		tv.Growth = math.Min(growth, wacc-tvClampMargin)
		tv.Clamped = true
	}

	tv.Value = tv.TerminalFCF / (wacc - tv.Growth)
	tv.PresentValue = tv.Value / math.Pow(1+wacc, ProjectionYears)
	return tv
}

// DCF runs the projection and terminal value at wacc and bridges enterprise
// value to equity value with cash and debt.
func DCF(in models.ValuationInput, wacc float64) models.DCFResult {
	proj := Project(in, wacc)
	tv := TerminalValue(proj.LastFCF(), wacc, in.TerminalGrowth)

	ev := proj.SumPVFCF + tv.PresentValue
	equity := ev + in.Cash - in.Debt

	return models.DCFResult{
		Years:           proj.Years,
		SumPVFCF:        proj.SumPVFCF,
		Terminal:        tv,
		EnterpriseValue: ev,
		EquityValue:     equity,
		PricePerShare:   safeDiv(equity, in.SharesOutstanding),
	}
}
