package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formflow"
	"github.com/goliatone/go-formflow/pkg/editor"
	"github.com/goliatone/go-formflow/pkg/openapi"
	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/renderers/tui"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/session"
	"github.com/goliatone/go-formflow/pkg/store"
)

type app struct {
	logger  *slog.Logger
	library *store.Library
	stdout  io.Writer
	stderr  io.Writer
	driver  tui.PromptDriver
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = []command{
	{"preview", "fill in a form interactively", runPreview},
	{"check", "submit a values file against a form", runCheck},
	{"save", "save a form file to the library", runSave},
	{"list", "list saved forms", runList},
	{"show", "print a form", runShow},
	{"delete", "delete a saved form", runDelete},
	{"patch", "apply a JSON patch to a form", runPatch},
	{"import", "build a form from an OpenAPI operation", runImport},
	{"lint", "report schema problems", runLint},
	{"current", "show, set or clear the draft form", runCurrent},
}

func lookup(name string) (command, bool) {
	for _, cmd := range commands {
		if cmd.name == name {
			return cmd, true
		}
	}
	return command{}, false
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// oneArg parses fs and returns its single positional argument.
func oneArg(fs *flag.FlagSet, args []string, what string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 1 {
		return "", fmt.Errorf("%w: expected %s", errUsage, what)
	}
	return fs.Arg(0), nil
}

// resolveForm treats ref as a file path when such a file exists and as a
// library id otherwise.
func (a *app) resolveForm(ctx context.Context, ref string) (schema.Form, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		return formflow.LoadForm(ctx, schema.SourceFromFile(ref))
	}
	form, err := a.library.Get(ctx, ref)
	if errors.Is(err, store.ErrFormNotFound) {
		return schema.Form{}, fmt.Errorf("no form file or saved form %q", ref)
	}
	return form, err
}

func (a *app) newSession(form schema.Form, valuesPath string) (*session.Session, error) {
	var initial schema.Values
	if valuesPath != "" {
		data, err := os.ReadFile(valuesPath)
		if err != nil {
			return nil, fmt.Errorf("read values: %w", err)
		}
		if initial, err = formflow.ParseValues(data); err != nil {
			return nil, err
		}
	}
	s := formflow.NewSession(session.WithLogger(a.logger))
	if err := s.Load(form, initial); err != nil {
		return nil, err
	}
	return s, nil
}

func runPreview(ctx context.Context, a *app, args []string) error {
	fs := a.flags("preview")
	valuesPath := fs.String("values", "", "initial values file")
	attempts := fs.Int("attempts", 0, "maximum submissions before giving up (0 = unlimited)")
	ref, err := oneArg(fs, args, "a form file or id")
	if err != nil {
		return err
	}

	form, err := a.resolveForm(ctx, ref)
	if err != nil {
		return err
	}
	s, err := a.newSession(form, *valuesPath)
	if err != nil {
		return err
	}
	if err := a.library.SaveCurrent(ctx, form); err != nil {
		a.logger.Warn("could not store draft form", "error", err)
	}

	options := []tui.Option{tui.WithLogger(a.logger), tui.WithMaxAttempts(*attempts)}
	if a.driver != nil {
		options = append(options, tui.WithPromptDriver(a.driver))
	}
	_, runErr := tui.New(options...).Run(ctx, s)
	if runErr != nil && !errors.Is(runErr, tui.ErrAborted) && !errors.Is(runErr, tui.ErrTooManyAttempts) {
		return runErr
	}

	summary, err := render.Summary(s)
	if err != nil {
		return err
	}
	fmt.Fprint(a.stdout, summary)
	if runErr != nil {
		fmt.Fprintln(a.stderr, runErr)
		return errFailed
	}
	return nil
}

func runCheck(ctx context.Context, a *app, args []string) error {
	fs := a.flags("check")
	valuesPath := fs.String("values", "", "values file (JSON or YAML object)")
	format := fs.String("format", "summary", "output template: summary or values")
	templates := fs.String("templates", "", "directory with template overrides")
	ref, err := oneArg(fs, args, "a form file or id")
	if err != nil {
		return err
	}

	form, err := a.resolveForm(ctx, ref)
	if err != nil {
		return err
	}
	s, err := a.newSession(form, *valuesPath)
	if err != nil {
		return err
	}
	result, err := s.Submit()
	if err != nil {
		return err
	}

	var options []render.Option
	if *templates != "" {
		options = append(options, render.WithBaseDir(*templates))
	}
	engine, err := render.New(options...)
	if err != nil {
		return err
	}
	out, err := engine.Render(*format, render.SessionData(s))
	if err != nil {
		return err
	}
	fmt.Fprint(a.stdout, out)
	if !result.Valid {
		return errFailed
	}
	return nil
}

func runSave(ctx context.Context, a *app, args []string) error {
	fs := a.flags("save")
	name := fs.String("name", "", "override the form name")
	path, err := oneArg(fs, args, "a form file")
	if err != nil {
		return err
	}

	form, err := formflow.LoadForm(ctx, schema.SourceFromFile(path))
	if err != nil {
		return err
	}
	if *name != "" {
		form.Name = *name
	}
	form = editor.Sanitize(form)
	if err := form.Validate(); err != nil {
		return err
	}
	saved, err := a.library.Save(ctx, form)
	if err != nil {
		return err
	}
	a.logger.Info("form saved", "id", saved.ID, "name", saved.Name)
	fmt.Fprintln(a.stdout, saved.ID)
	return nil
}

func runList(ctx context.Context, a *app, args []string) error {
	fs := a.flags("list")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	forms, err := a.library.List(ctx)
	if err != nil {
		return err
	}
	for _, form := range forms {
		created := "-"
		if form.CreatedAt != nil {
			created = form.CreatedAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(a.stdout, "%s\t%s\t%d fields\t%s\n", form.ID, form.Name, len(form.Fields), created)
	}
	return nil
}

func runShow(ctx context.Context, a *app, args []string) error {
	fs := a.flags("show")
	asJSON := fs.Bool("json", false, "print JSON instead of YAML")
	ref, err := oneArg(fs, args, "a form file or id")
	if err != nil {
		return err
	}
	form, err := a.resolveForm(ctx, ref)
	if err != nil {
		return err
	}
	return writeForm(a.stdout, form, *asJSON)
}

func runDelete(ctx context.Context, a *app, args []string) error {
	id, err := oneArg(a.flags("delete"), args, "a form id")
	if err != nil {
		return err
	}
	if _, err := a.library.Get(ctx, id); err != nil {
		return err
	}
	return a.library.Delete(ctx, id)
}

func runPatch(ctx context.Context, a *app, args []string) error {
	fs := a.flags("patch")
	patchPath := fs.String("patch", "", "RFC 6902 patch document")
	save := fs.Bool("save", false, "save the patched form as a new library entry")
	ref, err := oneArg(fs, args, "a form file or id")
	if err != nil {
		return err
	}
	if *patchPath == "" {
		return fmt.Errorf("%w: -patch is required", errUsage)
	}

	form, err := a.resolveForm(ctx, ref)
	if err != nil {
		return err
	}
	ops, err := os.ReadFile(*patchPath)
	if err != nil {
		return fmt.Errorf("read patch: %w", err)
	}
	patched, err := editor.ApplyPatch(form, ops)
	if err != nil {
		return err
	}
	if *save {
		if patched, err = a.library.Save(ctx, patched); err != nil {
			return err
		}
	}
	return writeForm(a.stdout, patched, false)
}

func runImport(ctx context.Context, a *app, args []string) error {
	fs := a.flags("import")
	operation := fs.String("operation", "", "operation id to convert")
	list := fs.Bool("list", false, "list operations instead of converting one")
	validate := fs.Bool("validate", false, "validate the OpenAPI document first")
	save := fs.Bool("save", false, "save the imported form to the library")
	path, err := oneArg(fs, args, "an OpenAPI document")
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	options := []openapi.Option{openapi.WithLogger(a.logger)}
	if *validate {
		options = append(options, openapi.WithValidation())
	}
	importer := openapi.New(options...)

	if *list {
		ops, err := importer.Operations(ctx, data)
		if err != nil {
			return err
		}
		for _, op := range ops {
			marker := " "
			if op.HasForm {
				marker = "*"
			}
			fmt.Fprintf(a.stdout, "%s %s\t%s %s\t%s\n", marker, op.ID, op.Method, op.Path, op.Summary)
		}
		return nil
	}
	if *operation == "" {
		return fmt.Errorf("%w: -operation or -list is required", errUsage)
	}

	form, err := importer.Import(ctx, data, *operation)
	if err != nil {
		return err
	}
	if *save {
		if form, err = a.library.Save(ctx, form); err != nil {
			return err
		}
	}
	return writeForm(a.stdout, form, false)
}

func runLint(ctx context.Context, a *app, args []string) error {
	ref, err := oneArg(a.flags("lint"), args, "a form file or id")
	if err != nil {
		return err
	}
	form, err := a.resolveForm(ctx, ref)
	if err != nil {
		return err
	}
	issues := editor.Lint(form)
	for _, issue := range issues {
		fmt.Fprintln(a.stdout, issue.String())
	}
	if len(issues) > 0 {
		return errFailed
	}
	return nil
}

func runCurrent(ctx context.Context, a *app, args []string) error {
	fs := a.flags("current")
	set := fs.String("set", "", "form file or id to store as the draft")
	clearDraft := fs.Bool("clear", false, "remove the draft")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	switch {
	case *clearDraft:
		return a.library.ClearCurrent(ctx)
	case *set != "":
		form, err := a.resolveForm(ctx, *set)
		if err != nil {
			return err
		}
		return a.library.SaveCurrent(ctx, form)
	}

	form, ok, err := a.library.Current(ctx)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.stderr, "no draft form")
		return errFailed
	}
	return writeForm(a.stdout, form, false)
}

func writeForm(w io.Writer, form schema.Form, asJSON bool) error {
	var (
		data []byte
		err  error
	)
	if asJSON {
		data, err = sonic.ConfigStd.MarshalIndent(form, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	} else {
		data, err = yaml.Marshal(form)
	}
	if err != nil {
		return fmt.Errorf("encode form: %w", err)
	}
	_, err = io.WriteString(w, strings.TrimRight(string(data), "\n")+"\n")
	return err
}
