package valuation

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/montanaflynn/stats"

	"github.com/seenimoa/fairvalue/pkg/models"
)

// MonteCarloParams controls the fair value simulation.
type MonteCarloParams struct {
	GrowthVolatility   float64
	DiscountVolatility float64
	Iterations         int
}

// DefaultMonteCarlo returns the production simulation parameters.
func DefaultMonteCarlo() MonteCarloParams {
	return MonteCarloParams{
		GrowthVolatility:   0.15,
		DiscountVolatility: 0.10,
		Iterations:         1000,
	}
}

// ErrMonteCarloParams is returned for unusable simulation parameters.
var ErrMonteCarloParams = errors.New("invalid monte carlo parameters")

func (p MonteCarloParams) validate() error {
	if p.Iterations < 2 {
		return fmt.Errorf("%w: need at least 2 iterations, got %d", ErrMonteCarloParams, p.Iterations)
	}
	if p.GrowthVolatility < 0 || p.DiscountVolatility < 0 {
		return fmt.Errorf("%w: volatilities must be non-negative", ErrMonteCarloParams)
	}
	return nil
}

// NewSeed returns a non-deterministic seed for production runs.
func NewSeed() uint64 {
	return rand.Uint64()
}

// newRand builds the simulation source. Identical seeds give identical draws.
func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Simulate perturbs baseValue with two independent normal shocks per
// iteration, value × (1+growth shock) / (1+discount shock), and summarises
// the distribution. Percentiles are nearest-rank on the sorted draws.
func Simulate(baseValue float64, p MonteCarloParams, seed uint64) (models.MonteCarloSummary, error) {
	if err := p.validate(); err != nil {
		return models.MonteCarloSummary{}, err
	}

	rng := newRand(seed)
	draws := make([]float64, p.Iterations)
	for i := range draws {
		growthShock := rng.NormFloat64() * p.GrowthVolatility
		discountShock := rng.NormFloat64() * p.DiscountVolatility
		draws[i] = baseValue * (1 + growthShock) / (1 + discountShock)
	}

	mean, err := stats.Mean(draws)
	if err != nil {
		return models.MonteCarloSummary{}, fmt.Errorf("monte carlo mean: %w", err)
	}
	sd, err := stats.StandardDeviationSample(draws)
	if err != nil {
		return models.MonteCarloSummary{}, fmt.Errorf("monte carlo std dev: %w", err)
	}

	slices.Sort(draws)

	return models.MonteCarloSummary{
		Iterations: p.Iterations,
		Seed:       seed,
		Mean:       mean,
		Median:     nearestRank(draws, 0.5),
		StdDev:     sd,
		P10:        nearestRank(draws, 0.1),
		P90:        nearestRank(draws, 0.9),
	}, nil
}

// nearestRank returns sorted[floor(n×q)].
func nearestRank(sorted []float64, q float64) float64 {
	idx := int(float64(len(sorted)) * q)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
