package valuation

import "github.com/seenimoa/fairvalue/pkg/models"

// Credit spreads over the risk-free rate. The company is treated as
// highly levered when debt exceeds the equity value; no external rating.
const (
	spreadHighLeverage = 0.025
	spreadLowLeverage  = 0.015
)

// CAPMInput holds the cost-of-capital parameters.
type CAPMInput struct {
	RiskFreeRate       float64
	Beta               float64
	MarketRiskPremium  float64
	CountryRiskPremium float64
	SizePremium        float64
	Debt               float64
	EquityValue        float64
	TaxRate            float64
}

// CostOfEquity is the CAPM rate with country and size adjustments.
func CostOfEquity(p CAPMInput) float64 {
	return p.RiskFreeRate + p.Beta*p.MarketRiskPremium + p.CountryRiskPremium + p.SizePremium
}

// CostOfCapital computes cost of equity, pre-tax cost of debt and WACC.
// With zero total capital the WACC falls back to the cost of equity.
func CostOfCapital(p CAPMInput) models.CostOfCapital {
	ke := CostOfEquity(p)

	spread := spreadLowLeverage
	if p.Debt > p.EquityValue {
		spread = spreadHighLeverage
	}
	kd := p.RiskFreeRate + spread

	cc := models.CostOfCapital{
		CostOfEquity: ke,
		CostOfDebt:   kd,
		CreditSpread: spread,
		WACC:         ke,
	}

	total := p.Debt + p.EquityValue
	if total == 0 {
		cc.WeightEquity = 1
		return cc
	}

	cc.WeightEquity = p.EquityValue / total
	cc.WeightDebt = p.Debt / total
	cc.WACC = cc.WeightEquity*ke + cc.WeightDebt*kd*(1-p.TaxRate)
	return cc
}

// capmFromInput maps a valuation input onto CAPM parameters. Market cap
// stands in for the equity value weight.
func capmFromInput(in models.ValuationInput) CAPMInput {
	return CAPMInput{
		RiskFreeRate:       in.RiskFreeRate,
		Beta:               in.Beta,
		MarketRiskPremium:  in.MarketRiskPremium,
		CountryRiskPremium: in.CountryRiskPremium,
		SizePremium:        in.SizePremium,
		Debt:               in.Debt,
		EquityValue:        in.MarketCapEstimate,
		TaxRate:            in.TaxRate,
	}
}

// ════════════════════════════════════════════════════════════════════
// Altman Z-score proxy
// ════════════════════════════════════════════════════════════════════

// Z-score zone cut-offs.
const (
	zSafeAbove     = 2.99
	zDistressBelow = 1.81
)

// ZScoreInput holds the aggregates used by the Z-score proxy.
type ZScoreInput struct {
	Revenue        float64
	EBITDA         float64
	EquityValue    float64
	Debt           float64
	WorkingCapital float64
}

// AltmanZScore computes a five-factor Z-score approximation.
//
// Total assets are approximated by equity value plus debt, retained
// earnings by 60% of EBITDA, and the market value of equity by the equity
// value itself. This is a heuristic, not the published Altman model.
func AltmanZScore(in ZScoreInput) models.ZScore {
	assets := in.EquityValue + in.Debt

	var x1, x2, x3, x5 float64
	if assets > 0 {
		x1 = in.WorkingCapital / assets
		x2 = 0.6 * in.EBITDA / assets
		x3 = in.EBITDA / assets
		x5 = in.Revenue / assets
	}

	x4 := 10.0
	if in.Debt > 0 {
		x4 = in.EquityValue / in.Debt
	}

	z := 1.2*x1 + 1.4*x2 + 3.3*x3 + 0.6*x4 + 1.0*x5
	return models.ZScore{Score: z, Zone: ZoneFor(z)}
}

// ZoneFor classifies a Z-score.
func ZoneFor(z float64) models.ZZone {
	switch {
	case z > zSafeAbove:
		return models.ZoneSafe
	case z > zDistressBelow:
		return models.ZoneGrey
	default:
		return models.ZoneDistress
	}
}
