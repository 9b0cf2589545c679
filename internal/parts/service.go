// Package parts is the service layer tying the normalization pipeline to
// the document store: it persists canonical components and pending
// ambiguous rows per user and project, applies resolution decisions, and
// drives LPN assignment.
package parts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/partstash/partstash/internal/bom"
	"github.com/partstash/partstash/internal/lpn"
	"github.com/partstash/partstash/internal/metrics"
	"github.com/partstash/partstash/internal/store"
)

// Service owns the import, resolution, and assignment flows. All methods
// are safe for concurrent use; cross-caller consistency is delegated to
// the store's atomic primitive.
type Service struct {
	store   store.Store
	lpn     *lpn.Service
	profile *bom.ImportProfile
	now     func() time.Time
}

// NewService builds a Service. A nil profile selects the default import
// profile; prefix is the LPN project prefix ("" for the default).
func NewService(st store.Store, prefix string, profile *bom.ImportProfile) *Service {
	if profile == nil {
		profile = bom.DefaultProfile()
	}
	return &Service{
		store:   st,
		lpn:     lpn.NewService(st, prefix, counterKey),
		profile: profile,
		now:     time.Now,
	}
}

// Profile returns the import profile the service normalizes with.
func (s *Service) Profile() *bom.ImportProfile {
	return s.profile
}

// ImportResult reports one file's trip through the pipeline.
type ImportResult struct {
	Project          string                   `json:"project"`
	Headers          []string                 `json:"headers"`
	DesignatorColumn string                   `json:"designatorColumn"`
	Rows             int                      `json:"rows"`
	Imported         int                      `json:"imported"`
	Pending          int                      `json:"pending"`
	Components       []bom.Component          `json:"components"`
	Ambiguous        []bom.AmbiguousComponent `json:"ambiguous"`
}

// Import parses, normalizes, and flattens one BOM file, persisting the
// clean components and parking ambiguous rows for later resolution.
// designatorOverride forces the designator column when profile discovery
// would fail or pick the wrong one.
func (s *Service) Import(ctx context.Context, user, project, text, designatorOverride string) (*ImportResult, error) {
	if err := validateName("user", user); err != nil {
		return nil, err
	}
	if err := validateName("project", project); err != nil {
		return nil, err
	}

	parsed, err := bom.Parse(text)
	if err != nil {
		return nil, err
	}

	designatorColumn := designatorOverride
	if designatorColumn == "" {
		var ok bool
		designatorColumn, ok = bom.FindDesignatorColumn(parsed.Headers, s.profile)
		if !ok {
			return nil, &NoDesignatorColumnError{Headers: parsed.Headers}
		}
	} else if !containsHeader(parsed.Headers, designatorColumn) {
		return nil, &NoDesignatorColumnError{Headers: parsed.Headers}
	}

	normalized := make([]bom.RawRow, len(parsed.Rows))
	for i, row := range parsed.Rows {
		normalized[i] = bom.NormalizeRow(row, parsed.Headers, s.profile, designatorColumn)
	}
	headers := bom.NormalizedHeaders(parsed.Headers, s.profile, designatorColumn)

	// After normalization every row carries its designator under the
	// canonical column, so flattening keys off that.
	res := bom.Flatten(normalized, headers, project, bom.FieldDesignator)

	now := s.now().UTC()
	for i := range res.Flattened {
		res.Flattened[i].UpdatedAt = now
		if err := s.putComponent(ctx, user, project, &res.Flattened[i]); err != nil {
			return nil, err
		}
	}
	for i := range res.Ambiguous {
		doc, err := json.Marshal(res.Ambiguous[i])
		if err != nil {
			return nil, fmt.Errorf("encode pending row: %w", err)
		}
		if err := s.store.Set(ctx, pendingKey(user, project, res.Ambiguous[i].ID), doc); err != nil {
			return nil, fmt.Errorf("persist pending row: %w", err)
		}
	}

	metrics.RowsParsed.WithLabelValues(project).Add(float64(len(parsed.Rows)))
	metrics.ComponentsFlattened.WithLabelValues(project).Add(float64(len(res.Flattened)))
	metrics.RowsAmbiguous.WithLabelValues(project).Add(float64(len(res.Ambiguous)))

	slog.Info("bom imported",
		"project", project,
		"rows", len(parsed.Rows),
		"components", len(res.Flattened),
		"ambiguous", len(res.Ambiguous),
	)

	return &ImportResult{
		Project:          project,
		Headers:          parsed.Headers,
		DesignatorColumn: designatorColumn,
		Rows:             len(parsed.Rows),
		Imported:         len(res.Flattened),
		Pending:          len(res.Ambiguous),
		Components:       res.Flattened,
		Ambiguous:        res.Ambiguous,
	}, nil
}

// Components lists a project's finalized components, ordered by id.
func (s *Service) Components(ctx context.Context, user, project string) ([]bom.Component, error) {
	docs, err := s.store.List(ctx, componentPrefix(user, project))
	if err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}

	out := make([]bom.Component, 0, len(docs))
	for key, doc := range docs {
		var comp bom.Component
		if err := json.Unmarshal(doc, &comp); err != nil {
			return nil, fmt.Errorf("decode component %s: %w", key, err)
		}
		out = append(out, comp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Component fetches a single component.
func (s *Service) Component(ctx context.Context, user, project, id string) (*bom.Component, error) {
	doc, err := s.store.Get(ctx, componentKey(user, project, id))
	if err != nil {
		return nil, err
	}
	var comp bom.Component
	if err := json.Unmarshal(doc, &comp); err != nil {
		return nil, fmt.Errorf("decode component %s: %w", id, err)
	}
	return &comp, nil
}

// UpdateComponent applies field edits to a component. Manufacturer part
// number fields reject edits once an LPN is assigned; everything else
// stays editable.
func (s *Service) UpdateComponent(ctx context.Context, user, project, id string, fields map[string]string) (*bom.Component, error) {
	comp, err := s.Component(ctx, user, project, id)
	if err != nil {
		return nil, err
	}

	for field, value := range fields {
		if lpn.IsLocked(field, *comp) && value != comp.Fields[field] {
			return nil, &FieldLockedError{Field: field}
		}
	}
	for field, value := range fields {
		comp.Fields[field] = value
	}
	comp.UpdatedAt = s.now().UTC()

	if err := s.putComponent(ctx, user, project, comp); err != nil {
		return nil, err
	}
	return comp, nil
}

// DeleteComponent removes a component.
func (s *Service) DeleteComponent(ctx context.Context, user, project, id string) error {
	return s.store.Delete(ctx, componentKey(user, project, id))
}

// IsLocked reports whether a field on a stored component is frozen by its
// LPN.
func (s *Service) IsLocked(ctx context.Context, user, project, id, field string) (bool, error) {
	comp, err := s.Component(ctx, user, project, id)
	if err != nil {
		return false, err
	}
	return lpn.IsLocked(field, *comp), nil
}

// Pending lists the project's parked ambiguous rows, ordered by id.
func (s *Service) Pending(ctx context.Context, user, project string) ([]bom.AmbiguousComponent, error) {
	docs, err := s.store.List(ctx, pendingPrefix(user, project))
	if err != nil {
		return nil, fmt.Errorf("list pending rows: %w", err)
	}

	out := make([]bom.AmbiguousComponent, 0, len(docs))
	for key, doc := range docs {
		var amb bom.AmbiguousComponent
		if err := json.Unmarshal(doc, &amb); err != nil {
			return nil, fmt.Errorf("decode pending row %s: %w", key, err)
		}
		out = append(out, amb)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Resolve applies user decisions to pending rows. Rows with a resolution
// are removed from the pending collection; flatten and keep outcomes are
// persisted as finalized components. Rows without a resolution stay
// parked.
func (s *Service) Resolve(ctx context.Context, user, project string, resolutions map[string]bom.Policy) ([]bom.Component, error) {
	for id, policy := range resolutions {
		if !policy.Valid() {
			return nil, &InvalidPolicyError{ID: id, Policy: string(policy)}
		}
	}

	pending, err := s.Pending(ctx, user, project)
	if err != nil {
		return nil, err
	}

	resolved := bom.ResolveAmbiguous(pending, resolutions)

	now := s.now().UTC()
	for i := range resolved {
		resolved[i].UpdatedAt = now
		if err := s.putComponent(ctx, user, project, &resolved[i]); err != nil {
			return nil, err
		}
	}
	for _, amb := range pending {
		if _, decided := resolutions[amb.ID]; !decided {
			continue
		}
		if err := s.store.Delete(ctx, pendingKey(user, project, amb.ID)); err != nil {
			return nil, fmt.Errorf("remove pending row %s: %w", amb.ID, err)
		}
	}

	slog.Info("pending rows resolved",
		"project", project,
		"decisions", len(resolutions),
		"components", len(resolved),
	)
	return resolved, nil
}

// AssignLPN assigns (or reuses) an identifier for one component.
func (s *Service) AssignLPN(ctx context.Context, user, project, id string) (string, error) {
	comp, err := s.Component(ctx, user, project, id)
	if err != nil {
		return "", err
	}

	assigned, err := s.lpn.Assign(ctx, s.catalog(user, project), comp)
	if err != nil {
		metrics.AssignmentsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		return "", err
	}
	metrics.AssignmentsTotal.WithLabelValues(metrics.OutcomeAssigned).Inc()
	return assigned, nil
}

// AssignLPNBatch assigns identifiers to many components, never aborting
// the batch on individual failures. Unknown ids are reported as failures.
func (s *Service) AssignLPNBatch(ctx context.Context, user, project string, ids []string) (*lpn.BatchResult, error) {
	comps := make([]*bom.Component, 0, len(ids))
	missing := make([]string, 0)
	for _, id := range ids {
		comp, err := s.Component(ctx, user, project, id)
		if err != nil {
			missing = append(missing, id)
			continue
		}
		comps = append(comps, comp)
	}

	res := s.lpn.AssignBatch(ctx, s.catalog(user, project), comps)
	for _, id := range missing {
		res.Failures[id] = "component not found"
	}
	res.Total = len(ids)

	metrics.AssignmentsTotal.WithLabelValues(metrics.OutcomeAssigned).Add(float64(len(res.Assigned)))
	metrics.AssignmentsTotal.WithLabelValues(metrics.OutcomeFailed).Add(float64(len(res.Failures)))
	return res, nil
}

func (s *Service) putComponent(ctx context.Context, user, project string, comp *bom.Component) error {
	doc, err := json.Marshal(comp)
	if err != nil {
		return fmt.Errorf("encode component: %w", err)
	}
	if err := s.store.Set(ctx, componentKey(user, project, comp.ID), doc); err != nil {
		return fmt.Errorf("persist component %s: %w", comp.ID, err)
	}
	return nil
}

func (s *Service) catalog(user, project string) lpn.Catalog {
	return &storeCatalog{store: s.store, prefix: componentPrefix(user, project)}
}

func containsHeader(headers []string, name string) bool {
	for _, h := range headers {
		if h == name {
			return true
		}
	}
	return false
}

// storeCatalog adapts one project's component collection to the LPN
// service's search-and-persist interface.
type storeCatalog struct {
	store  store.Store
	prefix string
}

func (c *storeCatalog) FindAssigned(ctx context.Context, normalizedMPN string) (string, error) {
	docs, err := c.store.List(ctx, c.prefix)
	if err != nil {
		return "", err
	}
	for key, doc := range docs {
		var comp bom.Component
		if err := json.Unmarshal(doc, &comp); err != nil {
			return "", fmt.Errorf("decode component %s: %w", key, err)
		}
		mpn, _, ok := comp.MPN()
		if !ok || comp.LPN() == "" {
			continue
		}
		if lpn.NormalizeMPN(mpn) == normalizedMPN {
			return comp.LPN(), nil
		}
	}
	return "", nil
}

func (c *storeCatalog) SaveAssigned(ctx context.Context, comp *bom.Component) error {
	doc, err := json.Marshal(comp)
	if err != nil {
		return fmt.Errorf("encode component: %w", err)
	}
	if err := c.store.Set(ctx, c.prefix+comp.ID, doc); err != nil {
		return fmt.Errorf("persist component %s: %w", comp.ID, err)
	}
	return nil
}
