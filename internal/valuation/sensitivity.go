package valuation

import (
	"math"

	"github.com/seenimoa/fairvalue/pkg/models"
)

// Grid offsets around the base discount rate and terminal growth.
var (
	rateOffsets   = []float64{-0.02, -0.01, 0, 0.01, 0.02}
	growthOffsets = []float64{-0.01, -0.005, 0, 0.005, 0.01}
)

// SensitivityInput is what the grid needs from a completed DCF.
type SensitivityInput struct {
	TerminalFCF    float64 // year-11 cash flow, held fixed across the grid
	SumPVFCF       float64 // explicit-period PV at the base WACC
	WACC           float64
	TerminalGrowth float64
	Cash           float64
	Debt           float64
}

// Sensitivity recomputes equity value across discount rate × terminal growth
// pairs. Only the terminal value is re-discounted; the explicit-period PV
// stays at the base WACC. Pairs where the rate does not exceed growth are
// marked not applicable.
func Sensitivity(in SensitivityInput) models.SensitivityGrid {
	grid := models.SensitivityGrid{
		DiscountRates:   make([]float64, len(rateOffsets)),
		TerminalGrowths: make([]float64, len(growthOffsets)),
		Cells:           make([][]models.SensitivityCell, len(growthOffsets)),
	}
	for j, off := range rateOffsets {
		grid.DiscountRates[j] = in.WACC + off
	}

	for i, off := range growthOffsets {
		tg := in.TerminalGrowth + off
		grid.TerminalGrowths[i] = tg
		grid.Cells[i] = make([]models.SensitivityCell, len(rateOffsets))

		for j, dr := range grid.DiscountRates {
			cell := models.SensitivityCell{DiscountRate: dr, TerminalGrowth: tg}
			if dr > tg {
				tv := in.TerminalFCF / (dr - tg)
				pv := tv / math.Pow(1+dr, ProjectionYears)
				cell.Value = in.SumPVFCF + pv + in.Cash - in.Debt
				cell.Applicable = true
			}
			grid.Cells[i][j] = cell
		}
	}

	return grid
}
