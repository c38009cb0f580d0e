package render

import (
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/session"
	"github.com/goliatone/go-formflow/pkg/testsupport"
)

func filledSession(t *testing.T) *session.Session {
	t.Helper()
	form := schema.Form{
		Name: "Tom & Jerry's survey",
		Fields: []schema.Field{
			{ID: "name", Kind: schema.FieldKindText, Label: "Name", Required: true},
			{ID: "age", Kind: schema.FieldKindNumber, Label: "Age"},
			{ID: "birthYear", Kind: schema.FieldKindDerived, Label: "Birth year", ParentFields: []string{"age"}, Formula: "2024 - age", Readonly: true},
			{ID: "topics", Kind: schema.FieldKindCheckbox, Label: "Topics", Options: []schema.FieldOption{{Value: "a"}, {Value: "b"}}},
		},
	}
	s := testsupport.NewSession(t, form, nil)
	if err := s.SetValue("age", schema.String("30")); err != nil {
		t.Fatalf("SetValue returned error: %v", err)
	}
	if err := s.SetValue("topics", schema.List("a", "b")); err != nil {
		t.Fatalf("SetValue returned error: %v", err)
	}
	if _, err := s.Submit(); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	return s
}

func TestSummary(t *testing.T) {
	t.Parallel()

	out, err := Summary(filledSession(t))
	if err != nil {
		t.Fatalf("Summary returned error: %v", err)
	}

	for _, want := range []string{
		"Form: Tom & Jerry's survey",
		"State: submitted-invalid",
		"  Name [name]: (empty)\n    ! This field is required",
		"  Age [age]: 30 (edited)",
		"= Birth year [birthYear]: 1994",
		"  Topics [topics]: a,b (edited)",
		"Errors: 1",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestValuesTemplate(t *testing.T) {
	t.Parallel()

	engine, err := New()
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	out, err := engine.Render("values", SessionData(filledSession(t)))
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	want := "age=30\nbirthYear=1994\ntopics=a,b\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestCustomTemplatesShadowBuiltins(t *testing.T) {
	t.Parallel()

	files := fstest.MapFS{
		"summary.tpl": {Data: []byte(`{{ form }} has {{ fields|length }} fields`)},
	}
	engine, err := New(WithFS(files))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	out, err := engine.Summary(filledSession(t))
	if err != nil {
		t.Fatalf("Summary returned error: %v", err)
	}
	if !strings.HasPrefix(out, "Tom &amp; Jerry") || !strings.HasSuffix(out, " has 4 fields") {
		t.Fatalf("unexpected output %q", out)
	}

	if _, err := engine.Render("missing", nil); err == nil {
		t.Fatalf("expected error for unknown template")
	}
}

func TestSummaryGolden(t *testing.T) {
	t.Parallel()

	out, err := Summary(filledSession(t))
	if err != nil {
		t.Fatalf("Summary returned error: %v", err)
	}
	golden := filepath.Join("testdata", "summary.golden")
	if testsupport.WriteMaybeGolden(t, golden, []byte(out)) {
		return
	}
	if diff := testsupport.CompareGolden(testsupport.MustReadGoldenString(t, golden), out); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}
