package formflow

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSeedFormsMatchTheBundledExamples(t *testing.T) {
	t.Parallel()

	forms, err := SeedForms()
	if err != nil {
		t.Fatalf("SeedForms returned error: %v", err)
	}
	var names []string
	for _, form := range forms {
		names = append(names, form.Name)
	}
	want := []string{"Contact Form", "User Registration", "Feedback Survey"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("seed names mismatch (-want +got):\n%s", diff)
	}

	rating, ok := forms[2].Field("rating")
	if !ok || len(rating.Options) != 5 || rating.Options[0].Label != "Excellent" {
		t.Fatalf("unexpected rating field: %+v", rating)
	}
}

func TestParseSeedsRejectsInvalidForms(t *testing.T) {
	t.Parallel()

	_, err := ParseSeeds([]byte("forms:\n  - name: Broken\n    fields:\n      - id: a\n        type: bogus\n"))
	if err == nil || !strings.Contains(err.Error(), `seed "Broken"`) {
		t.Fatalf("expected invalid seed error, got %v", err)
	}
	if _, err := ParseSeeds([]byte("forms: []")); err == nil {
		t.Fatalf("expected error for empty seed document")
	}
}
