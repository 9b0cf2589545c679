package lpn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/partstash/partstash/internal/bom"
	"github.com/partstash/partstash/internal/store"
)

// fakeCatalog stores saved components in memory and matches FindAssigned
// the same way the real catalog does: normalized MPN plus non-empty LPN.
type fakeCatalog struct {
	saved    []*bom.Component
	findErr  error
	saveErr  error
}

func (c *fakeCatalog) FindAssigned(_ context.Context, normalizedMPN string) (string, error) {
	if c.findErr != nil {
		return "", c.findErr
	}
	for _, comp := range c.saved {
		mpn, _, ok := comp.MPN()
		if !ok {
			continue
		}
		if NormalizeMPN(mpn) == normalizedMPN && comp.LPN() != "" {
			return comp.LPN(), nil
		}
	}
	return "", nil
}

func (c *fakeCatalog) SaveAssigned(_ context.Context, comp *bom.Component) error {
	if c.saveErr != nil {
		return c.saveErr
	}
	c.saved = append(c.saved, comp)
	return nil
}

func component(id, mpn string) *bom.Component {
	fields := map[string]string{"Designator": "R1", "Value": "10k"}
	if mpn != "" {
		fields["Mfr. Part #"] = mpn
	}
	return &bom.Component{ID: id, Project: "proj", Fields: fields}
}

func seedCounter(t *testing.T, st store.Store, value int) {
	t.Helper()
	doc, _ := json.Marshal(counterDoc{Value: value})
	if err := st.Set(context.Background(), "counters/lpn", doc); err != nil {
		t.Fatal(err)
	}
}

func newTestService(st store.Store) *Service {
	return NewService(st, "PRT", "counters/lpn")
}

func TestAssign(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	svc := newTestService(st)
	cat := &fakeCatalog{}

	comp := component("c1", "RC0603FR-0710KL")
	id, err := svc.Assign(ctx, cat, comp)
	if err != nil {
		t.Fatalf("Assign() error = %v", err)
	}

	want := "PRT-00001-" + Digest("RC0603FR-0710KL")
	if id != want {
		t.Errorf("Assign() = %q, want %q", id, want)
	}
	if comp.LPN() != id {
		t.Errorf("record LPN = %q, want %q", comp.LPN(), id)
	}
	if comp.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set")
	}
	if len(cat.saved) != 1 {
		t.Fatalf("saved %d records, want 1", len(cat.saved))
	}
}

func TestAssignValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(store.NewMemory())
	cat := &fakeCatalog{}

	t.Run("missing mpn", func(t *testing.T) {
		_, err := svc.Assign(ctx, cat, component("c1", ""))
		if !errors.Is(err, ErrMissingMPN) {
			t.Fatalf("error = %v, want ErrMissingMPN", err)
		}
	})

	t.Run("already assigned", func(t *testing.T) {
		comp := component("c1", "LM358N")
		comp.Fields[bom.FieldLPN] = "PRT-00009-ABCDEF"
		_, err := svc.Assign(ctx, cat, comp)
		if !errors.Is(err, ErrAlreadyAssigned) {
			t.Fatalf("error = %v, want ErrAlreadyAssigned", err)
		}
	})

	t.Run("mpn under alias column", func(t *testing.T) {
		comp := &bom.Component{ID: "c2", Fields: map[string]string{"MPN": "LM358N"}}
		id, err := svc.Assign(ctx, cat, comp)
		if err != nil {
			t.Fatalf("Assign() error = %v", err)
		}
		if !strings.HasSuffix(id, Digest("LM358N")) {
			t.Errorf("id = %q, want digest of LM358N", id)
		}
	})
}

func TestAssignReusesExisting(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	svc := newTestService(st)
	cat := &fakeCatalog{}

	first := component("c1", "LM358N")
	firstID, err := svc.Assign(ctx, cat, first)
	if err != nil {
		t.Fatal(err)
	}

	// Different spelling of the same part: same identifier, no new
	// sequence consumed.
	second := component("c2", "  lm358n ")
	secondID, err := svc.Assign(ctx, cat, second)
	if err != nil {
		t.Fatal(err)
	}
	if secondID != firstID {
		t.Errorf("reused id = %q, want %q", secondID, firstID)
	}

	third := component("c3", "RC0603FR-0710KL")
	thirdID, err := svc.Assign(ctx, cat, third)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(thirdID, "-00002-") {
		t.Errorf("new part id = %q, want sequence 00002 (reuse must not consume a slot)", thirdID)
	}
}

func TestAssignBatch(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(store.NewMemory())
	cat := &fakeCatalog{}

	comps := []*bom.Component{
		component("a", "LM358N"),
		component("b", "lm358n"), // repeat within the batch
		component("c", ""),       // fails validation
		component("d", "RC0603FR-0710KL"),
	}

	res := svc.AssignBatch(ctx, cat, comps)

	if res.Total != 4 {
		t.Errorf("Total = %d, want 4", res.Total)
	}
	if len(res.Assigned) != 3 {
		t.Fatalf("Assigned = %v, want 3 entries", res.Assigned)
	}
	if len(res.Failures) != 1 {
		t.Fatalf("Failures = %v, want 1 entry", res.Failures)
	}
	if _, ok := res.Failures["c"]; !ok {
		t.Error("record c should have failed")
	}

	if res.Assigned["a"] != res.Assigned["b"] {
		t.Errorf("repeated MPN in batch: %q vs %q, want identical", res.Assigned["a"], res.Assigned["b"])
	}
	if res.Assigned["d"] == res.Assigned["a"] {
		t.Error("distinct MPNs share an identifier")
	}
	// a and b share sequence 1, d takes 2.
	if !strings.Contains(res.Assigned["d"], "-00002-") {
		t.Errorf("d = %q, want sequence 00002", res.Assigned["d"])
	}
}

func TestAssignSequenceExhausted(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	svc := newTestService(st)
	cat := &fakeCatalog{}

	seedCounter(t, st, MaxSequence-1)

	// 99999 is still assignable.
	id, err := svc.Assign(ctx, cat, component("c1", "PART-A"))
	if err != nil {
		t.Fatalf("Assign() at max error = %v", err)
	}
	if !strings.Contains(id, "-99999-") {
		t.Errorf("id = %q, want sequence 99999", id)
	}

	// The next reservation would be 100000.
	_, err = svc.Assign(ctx, cat, component("c2", "PART-B"))
	if !errors.Is(err, ErrSequenceExhausted) {
		t.Fatalf("error = %v, want ErrSequenceExhausted", err)
	}
}

func TestAssignSearchErrorSurfaced(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(store.NewMemory())
	cat := &fakeCatalog{findErr: fmt.Errorf("store offline")}

	_, err := svc.Assign(ctx, cat, component("c1", "LM358N"))
	if err == nil || !strings.Contains(err.Error(), "store offline") {
		t.Fatalf("error = %v, want wrapped store error", err)
	}
}

func TestAssignPersistFailureSpendsSequence(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	svc := newTestService(st)

	failing := &fakeCatalog{saveErr: fmt.Errorf("write refused")}
	if _, err := svc.Assign(ctx, failing, component("c1", "PART-A")); err == nil {
		t.Fatal("Assign() should surface the persist error")
	}

	// The reserved slot is gone: the next assignment gets sequence 2.
	ok := &fakeCatalog{}
	id, err := svc.Assign(ctx, ok, component("c2", "PART-B"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(id, "-00002-") {
		t.Errorf("id = %q, want sequence 00002 after a spent slot", id)
	}
}

func TestAssignPersistFailureLeavesRecordClean(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	svc := newTestService(st)

	comp := component("c1", "PART-A")

	failing := &fakeCatalog{saveErr: fmt.Errorf("write refused")}
	if _, err := svc.Assign(ctx, failing, comp); err == nil {
		t.Fatal("Assign() should surface the persist error")
	}

	// A failed persist must not leave the identifier on the caller's
	// record: nothing was stored, so the record is still unassigned.
	if got := comp.LPN(); got != "" {
		t.Fatalf("record LPN after failed persist = %q, want empty", got)
	}
	if !comp.UpdatedAt.IsZero() {
		t.Error("UpdatedAt set although nothing was persisted")
	}

	// Retrying the same record against a healthy catalog succeeds; the
	// slot from the failed attempt stays spent, so sequence 2 is issued.
	ok := &fakeCatalog{}
	id, err := svc.Assign(ctx, ok, comp)
	if err != nil {
		t.Fatalf("retry after failed persist error = %v", err)
	}
	if !strings.Contains(id, "-00002-") {
		t.Errorf("retry id = %q, want sequence 00002", id)
	}
	if comp.LPN() != id {
		t.Errorf("record LPN = %q, want %q", comp.LPN(), id)
	}
}

func TestIsLocked(t *testing.T) {
	unassigned := *component("c1", "LM358N")
	assigned := *component("c2", "LM358N")
	assigned.Fields[bom.FieldLPN] = "PRT-00001-ABCDEF"

	tests := []struct {
		name  string
		field string
		comp  bom.Component
		want  bool
	}{
		{name: "mpn on assigned record", field: "Mfr. Part #", comp: assigned, want: true},
		{name: "alias on assigned record", field: "MPN", comp: assigned, want: true},
		{name: "other field on assigned record", field: "Value", comp: assigned, want: false},
		{name: "mpn on unassigned record", field: "Mfr. Part #", comp: unassigned, want: false},
		{name: "anything on unassigned record", field: "Value", comp: unassigned, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsLocked(tt.field, tt.comp); got != tt.want {
				t.Errorf("IsLocked(%q) = %v, want %v", tt.field, got, tt.want)
			}
		})
	}
}
