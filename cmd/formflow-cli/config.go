package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formflow"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/store"
)

const (
	driverMemory = "memory"
	driverBolt   = "bolt"
)

// Config is the optional YAML (or JSON) file passed with -config. Flags given
// on the command line override it.
type Config struct {
	Store StoreConfig `yaml:"store"`
	Log   LogConfig   `yaml:"log"`
	// Seeds points to a document with a top level "forms" list. The forms
	// bundled with the module are used when empty.
	Seeds string `yaml:"seeds"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func defaultConfig() Config {
	return Config{
		Store: StoreConfig{Driver: driverBolt, Path: "formflow.db"},
		Log:   LogConfig{Level: "warn"},
	}
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch strings.ToLower(c.Store.Driver) {
	case driverMemory:
	case driverBolt:
		if strings.TrimSpace(c.Store.Path) == "" {
			return errors.New("config: store.path is required for the bolt driver")
		}
	default:
		return fmt.Errorf("config: unknown store.driver %q", c.Store.Driver)
	}
	if _, err := c.level(); err != nil {
		return err
	}
	return nil
}

func (c Config) level() (slog.Level, error) {
	var level slog.Level
	if c.Log.Level == "" {
		return slog.LevelWarn, nil
	}
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("config: log.level: %w", err)
	}
	return level, nil
}

func (c Config) logger(w io.Writer) (*slog.Logger, error) {
	level, err := c.level()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// openStore returns the configured store and a function releasing it.
func (c Config) openStore() (store.Store, func() error, error) {
	if strings.EqualFold(c.Store.Driver, driverMemory) {
		return store.NewMemory(), func() error { return nil }, nil
	}
	db, err := store.OpenBolt(c.Store.Path)
	if err != nil {
		return nil, nil, err
	}
	return db, db.Close, nil
}

func (c Config) seedForms() ([]schema.Form, error) {
	if c.Seeds == "" {
		return formflow.SeedForms()
	}
	data, err := os.ReadFile(c.Seeds)
	if err != nil {
		return nil, fmt.Errorf("read seeds: %w", err)
	}
	return formflow.ParseSeeds(data)
}
