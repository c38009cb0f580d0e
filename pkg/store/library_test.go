package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/schema"
)

func testLibrary(opts ...LibraryOption) *Library {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	seq := 0
	defaults := []LibraryOption{
		WithClock(func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Minute)
		}),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("form-%d", seq)
		}),
	}
	return NewLibrary(NewMemory(), append(defaults, opts...)...)
}

func TestLibrarySaveAssignsIdentity(t *testing.T) {
	t.Parallel()

	lib := testLibrary()
	form := sampleForm()
	form.Name = "  Contact  "

	saved, err := lib.Save(context.Background(), form)
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if saved.ID != "form-1" || saved.Name != "Contact" || saved.CreatedAt == nil {
		t.Fatalf("unexpected saved form: %+v", saved)
	}
	if form.ID != "" || form.CreatedAt != nil {
		t.Fatalf("Save must not mutate its argument")
	}

	got, err := lib.Get(context.Background(), saved.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if diff := cmp.Diff(saved, got); diff != "" {
		t.Fatalf("stored form mismatch (-want +got):\n%s", diff)
	}
}

func TestLibrarySaveRejectsIncompleteForms(t *testing.T) {
	t.Parallel()

	lib := testLibrary()
	ctx := context.Background()

	unnamed := sampleForm()
	unnamed.Name = "   "
	if _, err := lib.Save(ctx, unnamed); !errors.Is(err, ErrFormNameRequired) {
		t.Fatalf("expected ErrFormNameRequired, got %v", err)
	}
	if _, err := lib.Save(ctx, schema.Form{Name: "Empty"}); !errors.Is(err, ErrFormEmpty) {
		t.Fatalf("expected ErrFormEmpty, got %v", err)
	}
}

func TestLibraryListNewestFirstWithSeedFallback(t *testing.T) {
	t.Parallel()

	seed := schema.Form{Name: "Starter", Fields: []schema.Field{{ID: "q", Kind: schema.FieldKindText}}}
	lib := testLibrary(WithSeeds(seed))
	ctx := context.Background()

	forms, err := lib.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(forms) != 1 || forms[0].Name != "Starter" {
		t.Fatalf("expected seed fallback, got %+v", forms)
	}

	for _, name := range []string{"First", "Second", "Third"} {
		form := sampleForm()
		form.Name = name
		if _, err := lib.Save(ctx, form); err != nil {
			t.Fatalf("Save returned error: %v", err)
		}
	}

	forms, err = lib.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	var names []string
	for _, form := range forms {
		names = append(names, form.Name)
	}
	if diff := cmp.Diff([]string{"Third", "Second", "First"}, names); diff != "" {
		t.Fatalf("list order mismatch (-want +got):\n%s", diff)
	}

	if err := lib.Delete(ctx, "form-2"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := lib.Get(ctx, "form-2"); !errors.Is(err, ErrFormNotFound) {
		t.Fatalf("expected ErrFormNotFound, got %v", err)
	}
}

func TestLibraryGetResolvesSeedIDs(t *testing.T) {
	t.Parallel()

	seed := schema.Form{ID: "1", Name: "Starter", Fields: []schema.Field{{ID: "q", Kind: schema.FieldKindText}}}
	lib := testLibrary(WithSeeds(seed))
	ctx := context.Background()

	got, err := lib.Get(ctx, "1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if diff := cmp.Diff(seed, got); diff != "" {
		t.Fatalf("seed mismatch (-want +got):\n%s", diff)
	}
	if _, err := lib.Get(ctx, "2"); !errors.Is(err, ErrFormNotFound) {
		t.Fatalf("expected ErrFormNotFound, got %v", err)
	}
}

func TestLibraryCurrentForm(t *testing.T) {
	t.Parallel()

	lib := testLibrary()
	ctx := context.Background()

	if _, ok, err := lib.Current(ctx); ok || err != nil {
		t.Fatalf("expected no current form, got ok=%v err=%v", ok, err)
	}
	if err := lib.SaveCurrent(ctx, sampleForm()); err != nil {
		t.Fatalf("SaveCurrent returned error: %v", err)
	}
	current, ok, err := lib.Current(ctx)
	if err != nil || !ok || current.Name != "Contact" {
		t.Fatalf("unexpected current form ok=%v err=%v form=%+v", ok, err, current)
	}
	if err := lib.ClearCurrent(ctx); err != nil {
		t.Fatalf("ClearCurrent returned error: %v", err)
	}
	if _, ok, _ := lib.Current(ctx); ok {
		t.Fatalf("current form should be cleared")
	}

	forms, _ := lib.List(ctx)
	if len(forms) != 0 {
		t.Fatalf("current form must not appear in saved list: %+v", forms)
	}
}
