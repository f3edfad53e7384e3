// Package batch values many companies concurrently and records each success
// in the valuation history.
package batch

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/fairvalue/internal/companies"
	"github.com/seenimoa/fairvalue/internal/history"
	"github.com/seenimoa/fairvalue/internal/valuation"
	"github.com/seenimoa/fairvalue/pkg/models"
)

// ErrSkipped marks companies that were never started because the run was
// cancelled or stopped early.
var ErrSkipped = errors.New("skipped")

// Options controls a batch run.
type Options struct {
	Workers  int
	FailFast bool
	// Seed is the base Monte Carlo seed. Company i uses Seed+i; 0 draws a
	// fresh seed per company.
	Seed uint64
}

// Result is one successful valuation.
type Result struct {
	Index     int                       `json:"index"`
	CompanyID string                    `json:"company_id"`
	Seed      uint64                    `json:"seed"`
	RecordID  uuid.UUID                 `json:"record_id,omitempty"`
	Analysis  *models.ValuationAnalysis `json:"analysis"`
}

// Output is shorthand for the primary valuation output.
func (r Result) Output() models.ValuationOutput { return r.Analysis.Output }

// Failure is one company that could not be valued.
type Failure struct {
	Index     int    `json:"index"`
	CompanyID string `json:"company_id"`
	Err       error  `json:"-"`
	Message   string `json:"error"`
}

// Summary reports a batch run. Results and Errors keep input order.
type Summary struct {
	Total      int       `json:"total"`
	Successful int       `json:"successful"`
	Failed     int       `json:"failed"`
	Results    []Result  `json:"results"`
	Errors     []Failure `json:"errors"`
}

// Runner runs batches against one Valuator.
type Runner struct {
	valuator *valuation.Valuator
	store    history.Store
	log      *zap.Logger
	opts     Options
}

// NewRunner creates a Runner. store may be nil to skip history.
func NewRunner(v *valuation.Valuator, store history.Store, log *zap.Logger, opts Options) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Runner{valuator: v, store: store, log: log, opts: opts}
}

// Run values every company. Each worker owns its input and output; no state
// is shared between companies. Cancelling ctx stops further companies from
// being scheduled. With FailFast the first failure does the same and Run
// returns that failure.
func (r *Runner) Run(ctx context.Context, list []companies.Company) (Summary, error) {
	results := make([]*Result, len(list))
	failures := make([]*Failure, len(list))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)

	for i, c := range list {
		if gctx.Err() != nil {
			break
		}
		i, c := i, c
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			res, err := r.valueOne(gctx, i, c)
			if err != nil {
				failures[i] = &Failure{Index: i, CompanyID: c.ID, Err: err, Message: err.Error()}
				r.log.Warn("valuation failed", zap.String("company", c.ID), zap.Error(err))
				if r.opts.FailFast {
					return fmt.Errorf("%s: %w", c.ID, err)
				}
				return nil
			}
			results[i] = res
			return nil
		})
	}
	runErr := g.Wait()
	if runErr == nil {
		runErr = ctx.Err()
	}

	sum := Summary{Total: len(list)}
	for i, c := range list {
		switch {
		case results[i] != nil:
			sum.Results = append(sum.Results, *results[i])
		case failures[i] != nil:
			sum.Errors = append(sum.Errors, *failures[i])
		default:
			err := ErrSkipped
			sum.Errors = append(sum.Errors, Failure{Index: i, CompanyID: c.ID, Err: err, Message: err.Error()})
		}
	}
	sum.Successful = len(sum.Results)
	sum.Failed = len(sum.Errors)

	r.log.Info("batch complete",
		zap.Int("total", sum.Total),
		zap.Int("successful", sum.Successful),
		zap.Int("failed", sum.Failed),
	)
	return sum, runErr
}

func (r *Runner) valueOne(ctx context.Context, i int, c companies.Company) (*Result, error) {
	seed := valuation.NewSeed()
	if r.opts.Seed != 0 {
		seed = r.opts.Seed + uint64(i)
	}

	a, err := r.valuator.Analyze(c.Input, seed)
	if err != nil {
		return nil, err
	}
	res := &Result{Index: i, CompanyID: c.ID, Seed: seed, Analysis: a}

	if r.store != nil {
		rec := history.NewRecord(c.ID, seed, a.Output)
		if err := r.store.Append(ctx, rec); err != nil {
			r.log.Warn("history append failed", zap.String("company", c.ID), zap.Error(err))
		} else {
			res.RecordID = rec.ID
		}
	}

	r.log.Debug("company valued",
		zap.String("company", c.ID),
		zap.Float64("fair_value", a.Output.FinalEquityValue),
		zap.String("recommendation", string(a.Output.Recommendation)),
	)
	return res, nil
}
