// Package config loads gocsx settings from .gocsx.yaml, .env and GOCSX_*
// environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/willibrandon/gocsx/project"
)

// FileName is the name of the per-workspace configuration file.
const FileName = ".gocsx.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GOCSX_"

// Config holds every gocsx setting.
type Config struct {
	IncludeNamespaces      bool     `yaml:"includeNamespaces"`
	UseFileScopedNamespace bool     `yaml:"useFileScopedNamespace"`
	FormatCommand          []string `yaml:"formatCommand,omitempty"`
	WorkspaceRoots         []string `yaml:"workspaceRoots,omitempty"`
	TemplatesDir           string   `yaml:"templatesDir,omitempty"`

	Watch   WatchConfig   `yaml:"watch"`
	Tracing TracingConfig `yaml:"tracing"`
	Metrics MetricsConfig `yaml:"metrics"`

	// Path is the file the settings were read from, empty for defaults.
	Path string `yaml:"-"`
}

// WatchConfig configures gocsx watch.
type WatchConfig struct {
	Debounce      time.Duration     `yaml:"debounce"`
	BuildActions  map[string]string `yaml:"buildActions,omitempty"`
	IncludeShared bool              `yaml:"includeShared"`
}

// TracingConfig selects the OpenTelemetry exporter.
type TracingConfig struct {
	Exporter string `yaml:"exporter"`
	Endpoint string `yaml:"endpoint,omitempty"`
}

// MetricsConfig configures the Prometheus endpoint of gocsx watch.
type MetricsConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		IncludeNamespaces: true,
		Watch: WatchConfig{
			Debounce:      100 * time.Millisecond,
			IncludeShared: true,
		},
		Tracing: TracingConfig{Exporter: "none"},
	}
}

// Load reads the configuration for a command run in dir. An explicit path
// must exist; otherwise the nearest .gocsx.yaml above dir is used, then the
// user config file, then the defaults. A .env file in dir and GOCSX_*
// variables are applied on top.
func Load(dir, explicit string) (*Config, error) {
	cfg := Default()

	path := explicit
	if path == "" {
		path = Find(dir)
	}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	dotenv, err := godotenv.Read(filepath.Join(dir, ".env"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(dir, lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Find returns the nearest .gocsx.yaml at or above dir, falling back to
// the user config file. It returns "" when neither exists.
func Find(dir string) string {
	if path, err := project.FindUpward(filepath.Join(dir, "_"), FileName); err == nil {
		return path
	}
	if path := UserConfigPath(); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// UserConfigPath returns the per-user configuration file path.
func UserConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "gocsx", "config.yaml")
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	c.Path = path

	// Relative paths in the file are relative to the file.
	base := filepath.Dir(path)
	if c.TemplatesDir != "" {
		c.TemplatesDir = absFrom(base, c.TemplatesDir)
	}
	for i, root := range c.WorkspaceRoots {
		c.WorkspaceRoots[i] = absFrom(base, root)
	}
	return nil
}

func absFrom(base, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}

// applyEnv overrides settings from GOCSX_* variables. Relative paths are
// taken from dir, the working directory.
func (c *Config) applyEnv(dir string, lookup func(string) (string, bool)) error {
	boolVar := func(name string, dst *bool) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = b
		return nil
	}
	if err := boolVar("INCLUDE_NAMESPACES", &c.IncludeNamespaces); err != nil {
		return err
	}
	if err := boolVar("FILE_SCOPED_NAMESPACE", &c.UseFileScopedNamespace); err != nil {
		return err
	}
	if err := boolVar("WATCH_INCLUDE_SHARED", &c.Watch.IncludeShared); err != nil {
		return err
	}
	if v, ok := lookup(EnvPrefix + "FORMAT_COMMAND"); ok {
		c.FormatCommand = strings.Fields(v)
	}
	if v, ok := lookup(EnvPrefix + "WORKSPACE_ROOTS"); ok {
		c.WorkspaceRoots = nil
		for _, root := range filepath.SplitList(v) {
			if root != "" {
				c.WorkspaceRoots = append(c.WorkspaceRoots, absFrom(dir, root))
			}
		}
	}
	if v, ok := lookup(EnvPrefix + "TEMPLATES_DIR"); ok && v != "" {
		c.TemplatesDir = absFrom(dir, v)
	}
	if v, ok := lookup(EnvPrefix + "WATCH_DEBOUNCE"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sWATCH_DEBOUNCE: %w", EnvPrefix, err)
		}
		c.Watch.Debounce = d
	}
	if v, ok := lookup(EnvPrefix + "TRACING_EXPORTER"); ok {
		c.Tracing.Exporter = v
	}
	if v, ok := lookup(EnvPrefix + "TRACING_ENDPOINT"); ok {
		c.Tracing.Endpoint = v
	}
	if v, ok := lookup(EnvPrefix + "METRICS_ADDR"); ok {
		c.Metrics.Addr = v
	}
	return nil
}

// Validate checks values that cannot be checked while decoding.
func (c *Config) Validate() error {
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}
	switch strings.ToLower(c.Tracing.Exporter) {
	case "", "none", "stdout", "otlp":
	default:
		return fmt.Errorf("tracing.exporter must be none, stdout or otlp, got %q", c.Tracing.Exporter)
	}
	if _, err := c.ExtensionActions(); err != nil {
		return err
	}
	return nil
}

// ExtensionActions parses watch.buildActions.
func (c *Config) ExtensionActions() (map[string]project.BuildAction, error) {
	actions := make(map[string]project.BuildAction, len(c.Watch.BuildActions))
	for ext, name := range c.Watch.BuildActions {
		action, err := project.ParseBuildAction(name)
		if err != nil || action == project.BuildActionFolder {
			return nil, fmt.Errorf("watch.buildActions[%s]: invalid build action %q", ext, name)
		}
		actions[ext] = action
	}
	return actions, nil
}
