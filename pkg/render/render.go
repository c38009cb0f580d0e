// Package render turns session state into text using pongo2 templates. The
// built-in templates are "summary" and "values"; callers may add or override
// templates from a directory or an fs.FS.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formflow/pkg/session"
)

//go:embed templates/*.tpl
var builtinTemplates embed.FS

const extension = ".tpl"

// Option configures an Engine.
type Option func(*config)

type config struct {
	baseDir   string
	templates fs.FS
}

// WithBaseDir loads templates from a directory before the built-ins.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS loads templates from files before the built-ins.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// Engine renders named templates.
type Engine struct {
	set *pongo2.TemplateSet
}

// New constructs an Engine. Templates found through the configured sources
// shadow the built-in ones with the same name.
func New(options ...Option) (*Engine, error) {
	cfg := &config{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	var loaders []pongo2.TemplateLoader
	if cfg.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("render: create local loader: %w", err)
		}
		loaders = append(loaders, loader)
	}
	if cfg.templates != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.templates))
	}
	builtin, err := fs.Sub(builtinTemplates, "templates")
	if err != nil {
		return nil, fmt.Errorf("render: builtin templates: %w", err)
	}
	loaders = append(loaders, pongo2.NewFSLoader(builtin))

	return &Engine{set: pongo2.NewSet("formflow", loaders...)}, nil
}

// Render executes the named template with data.
func (e *Engine) Render(name string, data map[string]any) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("render: engine is nil")
	}
	path := name
	if !strings.HasSuffix(path, extension) {
		path += extension
	}
	tmpl, err := e.set.FromCache(path)
	if err != nil {
		return "", fmt.Errorf("render: load template %q: %w", path, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(pongo2.Context(data), &buf); err != nil {
		return "", fmt.Errorf("render: execute template %q: %w", path, err)
	}
	return buf.String(), nil
}

// Summary renders the "summary" template for s.
func (e *Engine) Summary(s *session.Session) (string, error) {
	return e.Render("summary", SessionData(s))
}

var (
	defaultOnce   sync.Once
	defaultEngine *Engine
	defaultErr    error
)

// Summary renders a text summary of s with the built-in template: every field
// with its value, touched flag and error, followed by the error count.
func Summary(s *session.Session) (string, error) {
	defaultOnce.Do(func() {
		defaultEngine, defaultErr = New()
	})
	if defaultErr != nil {
		return "", defaultErr
	}
	return defaultEngine.Summary(s)
}

// SessionData flattens s into the template context used by the built-in
// templates.
func SessionData(s *session.Session) map[string]any {
	form := s.Form()
	states := s.Fields()
	fields := make([]map[string]any, 0, len(states))
	for _, state := range states {
		value := ""
		if state.Present {
			value = state.Value.Text()
		}
		fields = append(fields, map[string]any{
			"id":       state.Field.ID,
			"label":    state.Field.DisplayLabel(),
			"kind":     string(state.Field.Kind),
			"value":    value,
			"present":  state.Present,
			"touched":  state.Touched,
			"derived":  state.Field.IsDerived(),
			"required": state.Field.Required,
			"error":    state.VisibleError(),
		})
	}

	failures := s.Errors()
	errs := make([]map[string]any, 0, len(failures))
	for _, failure := range failures {
		errs = append(errs, map[string]any{"field": failure.FieldID, "message": failure.Message})
	}

	return map[string]any{
		"form":      form.Name,
		"state":     s.State().String(),
		"submitted": s.Submitted(),
		"fields":    fields,
		"errors":    errs,
	}
}
