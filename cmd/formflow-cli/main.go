// Command formflow-cli fills in, checks and manages dynamic forms from the
// terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/goliatone/go-formflow/pkg/renderers/tui"
	"github.com/goliatone/go-formflow/pkg/store"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

var (
	errUsage = errors.New("usage")
	// errFailed reports a completed command with a negative outcome, such as
	// an invalid submission or lint findings. Details are already printed.
	errFailed = errors.New("failed")
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr, nil))
}

// run executes one invocation. driver replaces the terminal prompts when not
// nil.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, driver tui.PromptDriver) int {
	flags := flag.NewFlagSet(filepath.Base(os.Args[0]), flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "YAML or JSON config file")
	driverName := flags.String("store", "", "store driver: bolt or memory")
	dbPath := flags.String("db", "", "bolt database path")
	level := flags.String("log-level", "", "log level: debug, info, warn or error")
	seeds := flags.String("seeds", "", "seed forms document")
	flags.Usage = func() {
		out := flags.Output()
		fmt.Fprintf(out, "Usage: %s [flags] <command> [args]\n\nCommands:\n", flags.Name())
		for _, cmd := range commands {
			fmt.Fprintf(out, "  %-8s %s\n", cmd.name, cmd.summary)
		}
		fmt.Fprintln(out, "\nFlags:")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	rest := flags.Args()
	if len(rest) == 0 {
		flags.Usage()
		return exitUsage
	}
	cmd, ok := lookup(rest[0])
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", rest[0])
		flags.Usage()
		return exitUsage
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}
	if *driverName != "" {
		cfg.Store.Driver = *driverName
	}
	if *dbPath != "" {
		cfg.Store.Path = *dbPath
	}
	if *level != "" {
		cfg.Log.Level = *level
	}
	if *seeds != "" {
		cfg.Seeds = *seeds
	}
	if err := cfg.validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	logger, err := cfg.logger(stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	seedForms, err := cfg.seedForms()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}
	backend, closeStore, err := cfg.openStore()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error("close store", "error", err)
		}
	}()

	a := &app{
		logger:  logger,
		library: store.NewLibrary(backend, store.WithSeeds(seedForms...)),
		stdout:  stdout,
		stderr:  stderr,
		driver:  driver,
	}
	logger.Debug("running command", "command", cmd.name, "store", cfg.Store.Driver)

	switch err := cmd.run(ctx, a, rest[1:]); {
	case err == nil:
		return exitOK
	case errors.Is(err, errFailed):
		return exitFailure
	case errors.Is(err, errUsage):
		fmt.Fprintf(stderr, "%s: %v\n", cmd.name, err)
		return exitUsage
	default:
		fmt.Fprintf(stderr, "%s: %v\n", cmd.name, err)
		return exitFailure
	}
}
