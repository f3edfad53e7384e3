package valuation

import "github.com/seenimoa/fairvalue/pkg/models"

// Comparables values the company off the industry EV/EBITDA and P/E
// multiples. Each method is a single-multiple point estimate; peer
// selection happens upstream. dcfEquity feeds the DCF-implied company P/E
// and PEG that are reported against the benchmarks.
func Comparables(in models.ValuationInput, dcfEquity float64) models.ComparablesResult {
	c := models.ComparablesResult{}

	// EV/EBITDA method
	c.ImpliedEV = in.EBITDA * in.ComparableEVEBITDA
	c.ImpliedEquityEV = c.ImpliedEV - in.Debt + in.Cash

	// P/E method
	c.Profit = in.Profit()
	c.ImpliedEquityPE = c.Profit * in.ComparablePE

	c.CompanyPE = safeDiv(dcfEquity, c.Profit)
	c.ImpliedPEG = safeDiv(c.CompanyPE, in.GrowthRateY1)

	return c
}
