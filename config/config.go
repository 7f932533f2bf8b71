// Copyright (c) 2026 Deepsel Systems. All rights reserved.

// Package config loads tool configuration from a relkit.yaml file,
// environment variables, and CLI flags using viper and pflag.
//
// Resolution order (highest wins):
//  1. CLI flags
//  2. Environment variables (prefix RELKIT_)
//  3. Config file (relkit.yaml in the working directory)
//  4. Compiled defaults
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/DeepselSystems/relkit/records"
)

const (
	KeyCanonicalPath     = "project.canonical.path"
	KeyCanonicalKey      = "project.canonical.key"
	KeyMirrors           = "project.mirrors"
	KeyHistoryPath       = "history.path"
	KeyPublishRepository = "publish.repository"
)

// ConfigOption binds a viper key to a CLI flag with a default.
type ConfigOption struct {
	Key         string
	Flag        string
	Default     any
	Description string
}

// Options are the settings adjustable from the command line.
var Options = []ConfigOption{
	{Key: KeyCanonicalPath, Flag: flag(KeyCanonicalPath), Default: "pyproject.toml", Description: "canonical version record file"},
	{Key: KeyCanonicalKey, Flag: flag(KeyCanonicalKey), Default: "version", Description: "canonical version record key"},
	{Key: KeyHistoryPath, Flag: flag(KeyHistoryPath), Default: ".relkit.db", Description: "release history database (empty disables)"},
	{Key: KeyPublishRepository, Flag: flag(KeyPublishRepository), Default: "", Description: "package index repository for publish"},
}

// stepDefaults are the compiled pipeline commands, matching the
// targets of the original Makefile.
var stepDefaults = map[string][]string{
	"deps":    {"python", "-m", "pip", "install", "-e", ".[dev]"},
	"fmt":     {"black", "."},
	"lint":    {"flake8", "."},
	"audit":   {"bandit", "-r", "deepsel"},
	"test":    {"pytest"},
	"build":   {"python", "-m", "build"},
	"publish": {"twine", "upload", "dist/*"},
}

func flag(key string) string {
	return strings.ReplaceAll(key, ".", "-")
}

// Config is the merged tool configuration.
type Config struct {
	v *viper.Viper
}

// New loads configuration from dir/relkit.yaml (if present), the
// environment, and the compiled defaults.
func New(dir string) (*Config, error) {
	v := viper.New()

	for _, o := range Options {
		v.SetDefault(o.Key, o.Default)
	}
	for name, argv := range stepDefaults {
		v.SetDefault("pipeline."+name+".command", argv)
	}

	v.SetConfigName("relkit")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !(errors.As(err, &notFoundErr) || errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("RELKIT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return &Config{v: v}, nil
}

// BindFlags registers each option on the flag set and binds it to its
// viper key.
func (c *Config) BindFlags(fs *pflag.FlagSet, options []ConfigOption) error {
	for _, o := range options {
		switch v := o.Default.(type) {
		case string:
			fs.String(o.Flag, v, o.Description)
		case bool:
			fs.Bool(o.Flag, v, o.Description)
		case []string:
			fs.StringSlice(o.Flag, v, o.Description)
		default:
			return fmt.Errorf("unsupported flag type for key: %s", o.Key)
		}

		if err := c.v.BindPFlag(o.Key, fs.Lookup(o.Flag)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", o.Flag, err)
		}
	}
	return nil
}

// Canonical returns the canonical record location.
func (c *Config) Canonical() records.Canonical {
	return records.Canonical{
		Path: c.v.GetString(KeyCanonicalPath),
		Key:  c.v.GetString(KeyCanonicalKey),
	}
}

// mirrorEntry is the config-file shape of one mirror record.
type mirrorEntry struct {
	Path       string `mapstructure:"path"`
	Identifier string `mapstructure:"identifier"`
}

// Mirrors returns the configured mirror records. When the config file
// sets none, the single deepsel package constant is mirrored.
func (c *Config) Mirrors() ([]records.Mirror, error) {
	if !c.v.IsSet(KeyMirrors) {
		return []records.Mirror{{Path: "deepsel/__init__.py", Identifier: "__version__"}}, nil
	}
	var entries []mirrorEntry
	if err := c.v.UnmarshalKey(KeyMirrors, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", KeyMirrors, err)
	}
	mirrors := make([]records.Mirror, 0, len(entries))
	for _, e := range entries {
		if e.Path == "" || e.Identifier == "" {
			return nil, fmt.Errorf("mirror entries need both path and identifier")
		}
		mirrors = append(mirrors, records.Mirror{Path: e.Path, Identifier: e.Identifier})
	}
	return mirrors, nil
}

// HistoryPath returns the release history database path, empty when
// history is disabled.
func (c *Config) HistoryPath() string {
	return c.v.GetString(KeyHistoryPath)
}

// PublishRepository returns the package index repository name, empty
// for the default index.
func (c *Config) PublishRepository() string {
	return c.v.GetString(KeyPublishRepository)
}

// StepCommand returns the argv for a pipeline step. The publish
// command gains a --repository argument when one is configured.
func (c *Config) StepCommand(name string) []string {
	argv := c.v.GetStringSlice("pipeline." + name + ".command")
	if name == "publish" {
		if repo := c.PublishRepository(); repo != "" && len(argv) > 1 {
			head := append([]string{}, argv[:2]...)
			argv = append(append(head, "--repository", repo), argv[2:]...)
		}
	}
	return argv
}

// StepCommands returns the argv for every configured pipeline step.
func (c *Config) StepCommands() map[string][]string {
	commands := make(map[string][]string, len(stepDefaults))
	for name := range stepDefaults {
		commands[name] = c.StepCommand(name)
	}
	return commands
}
