package valuation

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/seenimoa/fairvalue/pkg/models"
)

// ErrInvalidInput is the sentinel behind every structural validation failure.
var ErrInvalidInput = errors.New("invalid valuation input")

// ValidationError lists field-level reasons keyed by input field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return fmt.Sprintf("%s: %s", ErrInvalidInput, strings.Join(parts, "; "))
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// finite rejects NaN and ±Inf.
var finite = validation.By(func(value interface{}) error {
	f, ok := value.(float64)
	if !ok {
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return errors.New("must be a finite number")
	}
	return nil
})

// positive requires a strictly positive value. The built-in threshold rules
// skip zero values, so they cannot reject zero on their own.
var positive = validation.By(func(value interface{}) error {
	f, ok := value.(float64)
	if !ok {
		return nil
	}
	if !(f > 0) {
		return errors.New("must be greater than 0")
	}
	return nil
})

func between(min, max float64) []validation.Rule {
	return []validation.Rule{finite, validation.Min(min), validation.Max(max)}
}

func nonNegative() []validation.Rule {
	return []validation.Rule{finite, validation.Min(0.0)}
}

// Validate checks the structural domain of every input field before any
// computation. Numeric degeneracies inside these bounds (WACC at or below
// terminal growth, zero EBITDA or profit) are not errors.
func Validate(in models.ValuationInput) error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.RuneLength(1, 200)),
		validation.Field(&in.Sector, validation.Required, validation.RuneLength(1, 100)),

		validation.Field(&in.Revenue, finite, positive),
		validation.Field(&in.EBITDA, finite),
		validation.Field(&in.Depreciation, nonNegative()...),
		validation.Field(&in.ProfitMargin, between(-1, 1)...),

		validation.Field(&in.CapexPct, between(0, 1)...),
		validation.Field(&in.WorkingCapitalChange, finite),

		validation.Field(&in.GrowthRateY1, between(-0.5, 2)...),
		validation.Field(&in.GrowthRateY2, between(-0.5, 2)...),
		validation.Field(&in.GrowthRateY3, between(-0.5, 2)...),
		validation.Field(&in.TerminalGrowth, between(-0.1, 0.15)...),

		validation.Field(&in.TaxRate, between(0, 1)...),
		validation.Field(&in.SharesOutstanding, finite, positive),
		validation.Field(&in.Debt, nonNegative()...),
		validation.Field(&in.Cash, nonNegative()...),
		validation.Field(&in.MarketCapEstimate, finite, positive),

		validation.Field(&in.Beta, between(-3, 5)...),
		validation.Field(&in.RiskFreeRate, between(0, 0.2)...),
		validation.Field(&in.MarketRiskPremium, between(0, 0.3)...),
		validation.Field(&in.CountryRiskPremium, between(0, 0.25)...),
		validation.Field(&in.SizePremium, between(0, 0.2)...),

		validation.Field(&in.ComparableEVEBITDA, between(0, 100)...),
		validation.Field(&in.ComparablePE, between(0, 200)...),
		validation.Field(&in.ComparablePEG, between(0, 10)...),
	)
	if err == nil {
		return nil
	}

	var errs validation.Errors
	if !errors.As(err, &errs) {
		return fmt.Errorf("validate input: %w", err)
	}

	ve := &ValidationError{Fields: make(map[string]string, len(errs))}
	for field, fe := range errs {
		ve.Fields[field] = fe.Error()
	}
	return ve
}
