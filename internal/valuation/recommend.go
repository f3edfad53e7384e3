package valuation

import "github.com/seenimoa/fairvalue/pkg/models"

// Recommend maps upside (in percent) to a recommendation band. Every
// boundary is strict: exactly 20% upside is a BUY, not a STRONG BUY.
func Recommend(upsidePct float64) models.Recommendation {
	switch {
	case upsidePct > 20:
		return models.StrongBuy
	case upsidePct > 10:
		return models.Buy
	case upsidePct > -10:
		return models.Hold
	case upsidePct > -20:
		return models.Underweight
	default:
		return models.Sell
	}
}
