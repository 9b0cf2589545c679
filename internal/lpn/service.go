package lpn

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/partstash/partstash/internal/bom"
	"github.com/partstash/partstash/internal/store"
)

// Catalog is the search-and-persist surface the assignment flow needs from
// the component collection it operates on. internal/parts adapts its
// per-user, per-project key space to this interface.
type Catalog interface {
	// FindAssigned returns the LPN of any stored component whose
	// normalized MPN matches, or "" when none carries an LPN yet.
	FindAssigned(ctx context.Context, normalizedMPN string) (string, error)

	// SaveAssigned persists a component after its LPN field was set.
	SaveAssigned(ctx context.Context, comp *bom.Component) error
}

// Service assigns LPNs against a shared sequence counter.
type Service struct {
	store      store.Store
	prefix     string
	counterKey string
	now        func() time.Time
}

// NewService builds an assignment service. counterKey addresses the single
// shared counter document; every Service pointed at the same store and key
// draws from one sequence.
func NewService(st store.Store, prefix, counterKey string) *Service {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Service{
		store:      st,
		prefix:     prefix,
		counterKey: counterKey,
		now:        time.Now,
	}
}

// counterDoc is the persisted shape of the shared counter.
type counterDoc struct {
	Value int `json:"value"`
}

// Assign runs one record through validate → search → reserve → persist
// and returns the identifier written onto the record.
func (s *Service) Assign(ctx context.Context, cat Catalog, comp *bom.Component) (string, error) {
	return s.assign(ctx, cat, comp, nil)
}

// BatchResult aggregates a batch assignment: per-record identifiers for
// successes and per-record error detail for failures.
type BatchResult struct {
	Assigned map[string]string `json:"assigned"`
	Failures map[string]string `json:"failures"`
	Total    int               `json:"total"`
	Reserved int               `json:"reserved"`
}

// AssignBatch processes each record independently; one record failing
// never aborts the rest. Records repeating an MPN assigned earlier in the
// same batch reuse that LPN even before it is visible in the catalog,
// via a batch-local reservation cache.
func (s *Service) AssignBatch(ctx context.Context, cat Catalog, comps []*bom.Component) *BatchResult {
	res := &BatchResult{
		Assigned: make(map[string]string),
		Failures: make(map[string]string),
		Total:    len(comps),
	}
	reserved := make(map[string]string)

	for _, comp := range comps {
		id, err := s.assign(ctx, cat, comp, reserved)
		if err != nil {
			res.Failures[comp.ID] = err.Error()
			continue
		}
		res.Assigned[comp.ID] = id
	}
	res.Reserved = len(res.Assigned)
	return res
}

func (s *Service) assign(ctx context.Context, cat Catalog, comp *bom.Component, batchCache map[string]string) (string, error) {
	// Validating
	mpn, _, ok := comp.MPN()
	if !ok {
		return "", ErrMissingMPN
	}
	if comp.LPN() != "" {
		return "", ErrAlreadyAssigned
	}
	normalized := NormalizeMPN(mpn)

	// Searching: earlier reservations in this batch first, then the
	// catalog. Never mint a second identifier for a known MPN.
	id := batchCache[normalized]
	if id == "" {
		existing, err := cat.FindAssigned(ctx, normalized)
		if err != nil {
			return "", fmt.Errorf("search existing assignments: %w", err)
		}
		id = existing
	}

	// Reserving, only when no identifier exists yet.
	if id == "" {
		seq, err := s.reserve(ctx)
		if err != nil {
			return "", err
		}
		id, err = Format(s.prefix, seq, mpn)
		if err != nil {
			return "", err
		}
		slog.Debug("reserved lpn sequence", "sequence", seq, "lpn", id)
	}

	// Persisting. A failure here leaves any reserved sequence spent (the
	// slot is lost rather than ever risking a duplicate) but must leave
	// the caller's record untouched, or a retry would be rejected as
	// already assigned for an identifier that was never stored. So the
	// write goes through a clone and only lands on the record once the
	// catalog accepted it.
	updated := comp.Clone()
	updated.Fields[bom.FieldLPN] = id
	updated.UpdatedAt = s.now().UTC()
	if err := cat.SaveAssigned(ctx, &updated); err != nil {
		return "", fmt.Errorf("persist assignment: %w", err)
	}
	*comp = updated

	if batchCache != nil {
		batchCache[normalized] = id
	}
	return id, nil
}

// reserve performs the atomic read-modify-write on the shared counter and
// returns the newly issued sequence number.
func (s *Service) reserve(ctx context.Context) (int, error) {
	var issued int
	_, err := s.store.RunAtomic(ctx, s.counterKey, func(current []byte) ([]byte, error) {
		var doc counterDoc
		if len(current) > 0 {
			if err := json.Unmarshal(current, &doc); err != nil {
				return nil, fmt.Errorf("decode counter: %w", err)
			}
		}
		next := doc.Value + 1
		if next > MaxSequence {
			return nil, ErrSequenceExhausted
		}
		doc.Value = next
		issued = next
		return json.Marshal(doc)
	})
	if err != nil {
		return 0, err
	}
	return issued, nil
}

// IsLocked reports whether a field on a record is frozen by an assigned
// LPN. Only the manufacturer-part-number aliases lock, and only once the
// record carries a non-empty LPN; every other field stays editable.
func IsLocked(field string, comp bom.Component) bool {
	return comp.LPN() != "" && bom.IsMPNField(field)
}
