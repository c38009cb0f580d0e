package openapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formflow/pkg/schema"
)

var (
	ErrOperationNotFound = errors.New("openapi: operation not found")
	ErrNoRequestBody     = errors.New("openapi: operation has no request body schema")
	ErrNotObject         = errors.New("openapi: request body is not an object schema")
)

// Options configures an Importer.
type Options struct {
	// ValidateDocument runs kin-openapi validation after loading.
	ValidateDocument bool
	// AllowExternalRefs lets the loader follow references to other files.
	AllowExternalRefs bool
	Logger            *slog.Logger
}

// Option mutates Options.
type Option func(*Options)

// WithValidation enables document validation.
func WithValidation() Option {
	return func(o *Options) { o.ValidateDocument = true }
}

// WithExternalRefs allows references outside the document.
func WithExternalRefs() Option {
	return func(o *Options) { o.AllowExternalRefs = true }
}

// WithLogger sets the logger used to report skipped properties.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// Importer converts OpenAPI operations into forms.
type Importer struct {
	options Options
}

// New returns an Importer.
func New(opts ...Option) *Importer {
	options := Options{Logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	return &Importer{options: options}
}

// Operation summarizes one operation of a document.
type Operation struct {
	ID      string
	Method  string
	Path    string
	Summary string
	// HasForm reports whether the operation carries an object request body.
	HasForm bool
}

type located struct {
	Operation
	op *openapi3.Operation
}

func (i *Importer) load(ctx context.Context, data []byte) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: i.options.AllowExternalRefs,
	}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if i.options.ValidateDocument {
		if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}
	return doc, nil
}

func (i *Importer) operations(ctx context.Context, data []byte) ([]located, error) {
	doc, err := i.load(ctx, data)
	if err != nil {
		return nil, err
	}
	if doc.Paths == nil {
		return nil, nil
	}

	var out []located
	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for _, entry := range []struct {
			method string
			op     *openapi3.Operation
		}{
			{"GET", item.Get}, {"PUT", item.Put}, {"POST", item.Post}, {"DELETE", item.Delete},
			{"PATCH", item.Patch}, {"HEAD", item.Head}, {"OPTIONS", item.Options}, {"TRACE", item.Trace},
		} {
			if entry.op == nil {
				continue
			}
			id := entry.op.OperationID
			if id == "" {
				id = strings.ToLower(entry.method) + ":" + path
			}
			_, bodyErr := requestSchema(entry.op)
			out = append(out, located{
				Operation: Operation{
					ID:      id,
					Method:  entry.method,
					Path:    path,
					Summary: entry.op.Summary,
					HasForm: bodyErr == nil,
				},
				op: entry.op,
			})
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

// Operations lists the operations of the document sorted by id. Operations
// without an operationId are listed as "method:path".
func (i *Importer) Operations(ctx context.Context, data []byte) ([]Operation, error) {
	found, err := i.operations(ctx, data)
	if err != nil {
		return nil, err
	}
	out := make([]Operation, len(found))
	for idx, entry := range found {
		out[idx] = entry.Operation
	}
	return out, nil
}

func requestSchema(op *openapi3.Operation) (*openapi3.Schema, error) {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil, ErrNoRequestBody
	}
	content := op.RequestBody.Value.Content
	var media *openapi3.MediaType
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok {
			media = mt
			break
		}
	}
	if media == nil {
		// deterministic pick when none of the preferred types is present
		keys := make([]string, 0, len(content))
		for key := range content {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		if len(keys) > 0 {
			media = content[keys[0]]
		}
	}
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return nil, ErrNoRequestBody
	}
	src := media.Schema.Value
	if schemaType(src) != openapi3.TypeObject && len(src.Properties) == 0 {
		return nil, ErrNotObject
	}
	return src, nil
}

var defaultImporter = New()

// Import converts the request body of operationID using a default Importer.
func Import(ctx context.Context, data []byte, operationID string) (schema.Form, error) {
	return defaultImporter.Import(ctx, data, operationID)
}

// Operations lists operations using a default Importer.
func Operations(ctx context.Context, data []byte) ([]Operation, error) {
	return defaultImporter.Operations(ctx, data)
}
