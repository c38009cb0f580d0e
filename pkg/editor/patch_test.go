package editor

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/schema"
)

func patchBase() schema.Form {
	return schema.Form{
		Name: "Contact",
		Fields: []schema.Field{
			{ID: "name", Kind: schema.FieldKindText, Label: "Name"},
			{ID: "age", Kind: schema.FieldKindNumber, Label: "Age"},
		},
	}
}

func TestApplyPatch(t *testing.T) {
	t.Parallel()

	patch := []byte(`[
		{"op": "replace", "path": "/fields/0/label", "value": "Full name"},
		{"op": "replace", "path": "/fields/0/required", "value": true},
		{"op": "add", "path": "/fields/-", "value": {
			"id": "birthYear", "type": "derived", "label": "Birth year", "defaultValue": "",
			"required": false, "validations": [], "parentFields": ["age"], "formula": "2024 - age", "readonly": true
		}}
	]`)

	got, err := ApplyPatch(patchBase(), patch)
	if err != nil {
		t.Fatalf("ApplyPatch returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"name", "age", "birthYear"}, fieldIDs(got)); diff != "" {
		t.Fatalf("field ids mismatch (-want +got):\n%s", diff)
	}
	name, _ := got.Field("name")
	if name.Label != "Full name" || !name.Required {
		t.Fatalf("unexpected patched field %+v", name)
	}
	derived, _ := got.Field("birthYear")
	if derived.Formula != "2024 - age" || !derived.IsReadonly() {
		t.Fatalf("unexpected added field %+v", derived)
	}
}

func TestApplyPatchFailures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		patch string
		want  error
	}{
		{name: "not a patch", patch: `{"op": "add"}`, want: ErrPatch},
		{name: "missing path", patch: `[{"op": "remove", "path": "/fields/9"}]`, want: ErrPatch},
		{name: "failed test op", patch: `[{"op": "test", "path": "/name", "value": "Other"}]`, want: ErrPatch},
		{name: "wrong shape", patch: `[{"op": "replace", "path": "/fields", "value": "none"}]`, want: ErrPatch},
		{name: "duplicate id", patch: `[{"op": "replace", "path": "/fields/1/id", "value": "name"}]`, want: schema.ErrInvalidSchema},
		{name: "unknown kind", patch: `[{"op": "replace", "path": "/fields/1/type", "value": "slider"}]`, want: schema.ErrInvalidSchema},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := ApplyPatch(patchBase(), []byte(tc.patch)); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestApplyEmptyPatchReturnsCopy(t *testing.T) {
	t.Parallel()

	base := patchBase()
	got, err := ApplyPatch(base, []byte(`[]`))
	if err != nil {
		t.Fatalf("ApplyPatch returned error: %v", err)
	}
	got.Fields[0].Label = "changed"
	if base.Fields[0].Label != "Name" {
		t.Fatalf("empty patch must not alias the input form")
	}
}
