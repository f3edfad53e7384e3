package valuation

import "github.com/seenimoa/fairvalue/pkg/models"

const (
	// nopatShare approximates after-tax operating profit as a share of profit.
	nopatShare = 0.8
	// assumedInterestRate prices interest expense off the debt balance.
	assumedInterestRate = 0.05
	// coverageCap is reported when there is no interest expense.
	coverageCap = 999
)

// RatioInput holds the aggregates ratios are derived from.
type RatioInput struct {
	Revenue     float64
	EBITDA      float64
	Profit      float64
	Debt        float64
	Cash        float64
	EquityValue float64
	Shares      float64
	FCF         float64 // current-year free cash flow
}

// ComputeRatios calculates valuation, leverage, profitability and coverage
// ratios. Ratios are diagnostic: a zero or negative denominator yields 0
// (999 for interest coverage) instead of an error.
func ComputeRatios(in RatioInput) models.Ratios {
	r := models.Ratios{}

	// Valuation
	r.EV = in.EquityValue + in.Debt - in.Cash
	r.EVEBITDA = safeDiv(r.EV, in.EBITDA)
	r.EVRevenue = safeDiv(r.EV, in.Revenue)
	r.PE = safeDiv(in.EquityValue, in.Profit)
	r.PricePerShare = safeDiv(in.EquityValue, in.Shares)
	r.FCFYield = safeDiv(in.FCF, in.EquityValue) * 100

	// Leverage
	r.DebtToEquity = safeDiv(in.Debt, in.EquityValue)
	r.DebtToEBITDA = safeDiv(in.Debt, in.EBITDA)
	r.NetDebt = in.Debt - in.Cash
	r.NetDebtToEBITDA = safeDiv(r.NetDebt, in.EBITDA)

	// Profitability
	r.EBITDAMargin = safeDiv(in.EBITDA, in.Revenue) * 100
	r.ProfitMargin = safeDiv(in.Profit, in.Revenue) * 100
	r.ROE = safeDiv(in.Profit, in.EquityValue) * 100
	r.ROIC = safeDiv(in.Profit*nopatShare, in.Debt+in.EquityValue) * 100

	// Coverage
	interest := in.Debt * assumedInterestRate
	r.InterestCoverage = coverageCap
	if interest > 0 {
		r.InterestCoverage = in.EBITDA / interest
	}

	return r
}

// safeDiv returns num/den, or 0 when den is not positive.
func safeDiv(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}
