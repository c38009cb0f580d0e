package openapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/schema"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return data
}

func quietImporter() *Importer {
	return New(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestOperations(t *testing.T) {
	t.Parallel()

	ops, err := quietImporter().Operations(context.Background(), readFixture(t, "signup.yaml"))
	if err != nil {
		t.Fatalf("Operations returned error: %v", err)
	}

	want := []Operation{
		{ID: "createAccount", Method: "POST", Path: "/accounts", Summary: "Create account", HasForm: true},
		{ID: "listAccounts", Method: "GET", Path: "/accounts", Summary: "List accounts"},
		{ID: "put:/accounts/{id}/avatar", Method: "PUT", Path: "/accounts/{id}/avatar", Summary: "Upload avatar"},
	}
	if diff := cmp.Diff(want, ops); diff != "" {
		t.Fatalf("operations mismatch (-want +got):\n%s", diff)
	}
}

func TestImportBuildsFields(t *testing.T) {
	t.Parallel()

	form, err := quietImporter().Import(context.Background(), readFixture(t, "signup.yaml"), "createAccount")
	if err != nil {
		t.Fatalf("Import returned error: %v", err)
	}

	want := schema.Form{
		Name: "Create account",
		Fields: []schema.Field{
			{ID: "age", Kind: schema.FieldKindNumber, Label: "age", DefaultValue: "18"},
			{ID: "bio", Kind: schema.FieldKindTextarea, Label: "bio"},
			{ID: "birthYear", Kind: schema.FieldKindDerived, Label: "Birth year", ParentFields: []string{"age"}, Formula: "2024 - age", Readonly: true},
			{ID: "birthday", Kind: schema.FieldKindDate, Label: "birthday"},
			{
				ID: "email", Kind: schema.FieldKindEmail, Label: "Email address", Required: true,
				Validations: []schema.ValidationRule{{Kind: schema.RuleEmail}},
			},
			{
				ID: "password", Kind: schema.FieldKindPassword, Label: "password", Required: true,
				Validations: []schema.ValidationRule{{Kind: schema.RulePassword}},
			},
			{
				ID: "plan", Kind: schema.FieldKindSelect, Label: "plan", Required: true, DefaultValue: "free",
				Options: []schema.FieldOption{{Value: "free", Label: "free"}, {Value: "pro", Label: "pro"}, {Value: "team", Label: "team"}},
			},
			{ID: "terms", Kind: schema.FieldKindCheckbox, Label: "terms"},
			{
				ID: "topics", Kind: schema.FieldKindCheckbox, Label: "topics", DefaultValue: "news",
				Options: []schema.FieldOption{{Value: "news", Label: "news"}, {Value: "releases", Label: "releases"}, {Value: "events", Label: "events"}},
			},
			{
				ID: "username", Kind: schema.FieldKindText, Label: "Username", Required: true,
				Validations: []schema.ValidationRule{{Kind: schema.RuleMinLength, Value: "3"}, {Kind: schema.RuleMaxLength, Value: "20"}},
			},
		},
	}
	if diff := cmp.Diff(want, form); diff != "" {
		t.Fatalf("form mismatch (-want +got):\n%s", diff)
	}
}

func TestImportFailures(t *testing.T) {
	t.Parallel()

	data := readFixture(t, "signup.yaml")
	cases := []struct {
		op   string
		want error
	}{
		{op: "missing", want: ErrOperationNotFound},
		{op: "listAccounts", want: ErrNoRequestBody},
		{op: "put:/accounts/{id}/avatar", want: ErrNotObject},
	}
	for _, tc := range cases {
		if _, err := quietImporter().Import(context.Background(), data, tc.op); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.op, tc.want, err)
		}
	}

	if _, err := Import(context.Background(), []byte("   "), "x"); err == nil {
		t.Fatalf("expected error for empty document")
	}
	if _, err := Operations(context.Background(), []byte("openapi: [")); err == nil {
		t.Fatalf("expected error for malformed document")
	}
}

func TestImportedDerivedFieldWithExplicitParents(t *testing.T) {
	t.Parallel()

	doc := []byte(`{
  "openapi": "3.0.3",
  "info": {"title": "Orders", "version": "1"},
  "paths": {
    "/orders": {
      "post": {
        "operationId": "createOrder",
        "requestBody": {"content": {"application/json": {"schema": {
          "type": "object",
          "properties": {
            "price": {"type": "number"},
            "qty": {"type": "integer"},
            "total": {"type": "number", "x-formflow-formula": "price * qty", "x-formflow-parents": ["price", "qty"]}
          }
        }}}},
        "responses": {"200": {"description": "ok"}}
      }
    }
  }
}`)

	form, err := quietImporter().Import(context.Background(), doc, "createOrder")
	if err != nil {
		t.Fatalf("Import returned error: %v", err)
	}
	if form.Name != "createOrder" {
		t.Fatalf("form should fall back to the operation id, got %q", form.Name)
	}
	total, ok := form.Field("total")
	if !ok || !total.IsDerived() {
		t.Fatalf("expected derived total, got %+v", total)
	}
	if diff := cmp.Diff([]string{"price", "qty"}, total.ParentFields); diff != "" {
		t.Fatalf("parents mismatch (-want +got):\n%s", diff)
	}
}
