package valuation

import "github.com/seenimoa/fairvalue/pkg/models"

// Blend weights. They sum to 1.
const (
	WeightDCF      = 0.50
	WeightEVEBITDA = 0.25
	WeightPE       = 0.25
)

// Range multipliers around fair value.
const (
	bearFactor = 0.75
	bullFactor = 1.25
)

// Blended is the weighted fair value and its comparison to market.
type Blended struct {
	EquityValue   float64
	PricePerShare float64
	MarketCap     float64
	CurrentPrice  float64
	UpsidePct     float64
}

// Blend combines the DCF and both comparable values into one fair value and
// compares it to the market cap estimate, which stands in for the current
// market value.
func Blend(dcf, compEV, compPE, marketCap, shares float64) Blended {
	equity := WeightDCF*dcf + WeightEVEBITDA*compEV + WeightPE*compPE

	b := Blended{
		EquityValue:   equity,
		PricePerShare: safeDiv(equity, shares),
		MarketCap:     marketCap,
		CurrentPrice:  safeDiv(marketCap, shares),
	}
	if marketCap > 0 {
		b.UpsidePct = (equity - marketCap) / marketCap * 100
	}
	return b
}

// Range returns the bear/base/bull spread around the blended value.
func (b Blended) Range() models.ValuationRange {
	return models.ValuationRange{
		Bear:         b.EquityValue * bearFactor,
		Base:         b.EquityValue,
		Bull:         b.EquityValue * bullFactor,
		BearPerShare: b.PricePerShare * bearFactor,
		BasePerShare: b.PricePerShare,
		BullPerShare: b.PricePerShare * bullFactor,
		TargetPrice:  b.PricePerShare,
	}
}
