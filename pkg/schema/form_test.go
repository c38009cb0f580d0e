package schema

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

func ageForm() Form {
	return Form{
		Name: "Age",
		Fields: []Field{
			{ID: "age", Kind: FieldKindNumber, Label: "Age"},
			{ID: "birthYear", Kind: FieldKindDerived, ParentFields: []string{"age"}, Formula: "2024 - age", Readonly: true},
		},
	}
}

func TestFormValidateAcceptsWellFormedForm(t *testing.T) {
	t.Parallel()

	if err := ageForm().Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
}

func TestFormValidateAcceptsDerivedFieldWithoutFormula(t *testing.T) {
	t.Parallel()

	form := Form{Fields: []Field{
		{ID: "a", Kind: FieldKindNumber},
		{ID: "d", Kind: FieldKindDerived, ParentFields: []string{}, Readonly: true},
	}}
	if err := form.Validate(); err != nil {
		t.Fatalf("a derived field still being authored should validate, got %v", err)
	}
}

func TestFormValidateRejectsStructuralProblems(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		form    Form
		fieldID string
	}{
		"empty id": {
			form: Form{Fields: []Field{{Kind: FieldKindText}}},
		},
		"duplicate id": {
			form:    Form{Fields: []Field{{ID: "a", Kind: FieldKindText}, {ID: "a", Kind: FieldKindNumber}}},
			fieldID: "a",
		},
		"unknown kind": {
			form:    Form{Fields: []Field{{ID: "a", Kind: "slider"}}},
			fieldID: "a",
		},
		"unknown parent": {
			form:    Form{Fields: []Field{{ID: "d", Kind: FieldKindDerived, ParentFields: []string{"ghost"}, Formula: "ghost"}}},
			fieldID: "d",
		},
		"derived parent": {
			form: Form{Fields: []Field{
				{ID: "a", Kind: FieldKindNumber},
				{ID: "d1", Kind: FieldKindDerived, ParentFields: []string{"a"}, Formula: "a"},
				{ID: "d2", Kind: FieldKindDerived, ParentFields: []string{"d1"}, Formula: "d1 * 2"},
			}},
			fieldID: "d2",
		},
		"parents on plain field": {
			form:    Form{Fields: []Field{{ID: "a", Kind: FieldKindNumber, ParentFields: []string{"a"}}}},
			fieldID: "a",
		},
	}

	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			err := tc.form.Validate()
			if !errors.Is(err, ErrInvalidSchema) {
				t.Fatalf("expected ErrInvalidSchema, got %v", err)
			}
			var schemaErr *SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("expected *SchemaError, got %T", err)
			}
			if schemaErr.FieldID != tc.fieldID {
				t.Fatalf("expected field %q, got %q", tc.fieldID, schemaErr.FieldID)
			}
		})
	}
}

func TestFieldHelpers(t *testing.T) {
	t.Parallel()

	group := Field{ID: "topics", Kind: FieldKindCheckbox, Options: []FieldOption{{Value: "a", Label: "A"}}}
	if !group.IsMultiValue() {
		t.Fatalf("checkbox with options should be a checkbox group")
	}
	single := Field{ID: "agree", Kind: FieldKindCheckbox}
	if single.IsMultiValue() {
		t.Fatalf("checkbox without options should be single-valued")
	}
	if !ageForm().Fields[1].IsReadonly() {
		t.Fatalf("derived fields are readonly")
	}
	if got := (Field{ID: "x"}).DisplayLabel(); got != "x" {
		t.Fatalf("expected id fallback label, got %q", got)
	}
}

func TestFormCloneIsIndependent(t *testing.T) {
	t.Parallel()

	form := ageForm()
	clone := form.Clone()
	clone.Fields[1].ParentFields[0] = "changed"
	clone.Fields[0].Label = "changed"

	if form.Fields[1].ParentFields[0] != "age" || form.Fields[0].Label != "Age" {
		t.Fatalf("clone mutated the original form: %+v", form)
	}
	if diff := cmp.Diff(ageForm(), form); diff != "" {
		t.Fatalf("original form changed (-want +got):\n%s", diff)
	}
}

func TestParseJSONAndYAML(t *testing.T) {
	t.Parallel()

	jsonDoc := []byte(`{"name":"Age","fields":[
		{"id":"age","type":"number","label":"Age","defaultValue":"","required":false,"validations":[]},
		{"id":"birthYear","type":"derived","label":"","defaultValue":"","required":false,"validations":[],"parentFields":["age"],"formula":"2024 - age","readonly":true}
	]}`)
	yamlDoc := []byte(`
name: Age
fields:
  - id: age
    type: number
    label: Age
  - id: birthYear
    type: derived
    parentFields: [age]
    formula: 2024 - age
    readonly: true
`)

	fromJSON, err := Parse(jsonDoc)
	if err != nil {
		t.Fatalf("Parse JSON: %v", err)
	}
	fromYAML, err := Parse(yamlDoc)
	if err != nil {
		t.Fatalf("Parse YAML: %v", err)
	}

	opts := cmp.Options{
		cmp.Transformer("nilValidations", func(in []ValidationRule) []ValidationRule {
			if len(in) == 0 {
				return nil
			}
			return in
		}),
	}
	if diff := cmp.Diff(ageForm(), fromJSON, opts); diff != "" {
		t.Fatalf("JSON mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(fromJSON, fromYAML, opts); diff != "" {
		t.Fatalf("YAML mismatch (-json +yaml):\n%s", diff)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	t.Parallel()

	if _, err := Parse([]byte("   ")); err == nil {
		t.Fatalf("expected error for empty document")
	}
	if _, err := Parse([]byte("{not json: [")); err == nil {
		t.Fatalf("expected error for malformed document")
	}
}

func TestLoadFromFSAndFile(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"forms/age.json": &fstest.MapFile{Data: []byte(`{"name":"Age","fields":[{"id":"age","type":"number"}]}`)},
	}
	form, err := Load(context.Background(), fsys, SourceFromFS("forms/age.json"))
	if err != nil {
		t.Fatalf("Load fs: %v", err)
	}
	if form.Name != "Age" || len(form.Fields) != 1 {
		t.Fatalf("unexpected form: %+v", form)
	}

	contact, err := Load(context.Background(), nil, SourceFromFile("testdata/contact.yaml"))
	if err != nil {
		t.Fatalf("Load file: %v", err)
	}
	if len(contact.Fields) != 3 || !contact.Fields[2].IsMultiValue() {
		t.Fatalf("unexpected contact form: %+v", contact)
	}
	if err := contact.Validate(); err != nil {
		t.Fatalf("contact form should validate: %v", err)
	}

	if _, err := Load(context.Background(), nil, SourceFromFS("forms/age.json")); err == nil {
		t.Fatalf("expected error when fs source has no filesystem")
	}
}
