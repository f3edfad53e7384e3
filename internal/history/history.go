// Package history keeps an append-only log of valuation results per company.
package history

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/seenimoa/fairvalue/pkg/models"
)

// ErrNotFound is returned when a company has no recorded valuations.
var ErrNotFound = errors.New("no valuation history")

// Record is one stored valuation.
type Record struct {
	ID        uuid.UUID              `json:"id"`
	CompanyID string                 `json:"company_id"`
	ValuedAt  time.Time              `json:"valued_at"`
	Seed      uint64                 `json:"seed"`
	Output    models.ValuationOutput `json:"output"`
}

// NewRecord stamps an output with a fresh ID and the current time.
func NewRecord(companyID string, seed uint64, out models.ValuationOutput) Record {
	return Record{
		ID:        uuid.New(),
		CompanyID: companyID,
		ValuedAt:  time.Now().UTC(),
		Seed:      seed,
		Output:    out,
	}
}

// Store is an append-only valuation log. Records are never updated in place.
type Store interface {
	Append(ctx context.Context, rec Record) error
	// List returns a company's records oldest first.
	List(ctx context.Context, companyID string) ([]Record, error)
	// Latest returns the most recently appended record for a company.
	Latest(ctx context.Context, companyID string) (Record, error)
}

// IsStale reports whether a company's latest valuation predates updatedAt,
// the last change to its inputs. A company with no history is stale.
func IsStale(ctx context.Context, s Store, companyID string, updatedAt time.Time) (bool, error) {
	rec, err := s.Latest(ctx, companyID)
	if errors.Is(err, ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return rec.ValuedAt.Before(updatedAt), nil
}

// --- In-memory store ---

// MemoryStore is a Store for tests and one-shot runs.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]Record
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]Record)}
}

// Append implements Store.
func (m *MemoryStore) Append(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkRecord(rec); err != nil {
		return err
	}
	m.mu.Lock()
	m.records[rec.CompanyID] = append(m.records[rec.CompanyID], rec)
	m.mu.Unlock()
	return nil
}

// List implements Store.
func (m *MemoryStore) List(ctx context.Context, companyID string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	recs, ok := m.records[companyID]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(recs), nil
}

// Latest implements Store.
func (m *MemoryStore) Latest(ctx context.Context, companyID string) (Record, error) {
	recs, err := m.List(ctx, companyID)
	if err != nil {
		return Record{}, err
	}
	return recs[len(recs)-1], nil
}

func checkRecord(rec Record) error {
	if rec.CompanyID == "" {
		return errors.New("history record has no company id")
	}
	if rec.ID == uuid.Nil {
		return errors.New("history record has no id")
	}
	return nil
}
