// Package config loads settings for the logsnag command line tools.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvAPIKey  = "LOGSNAG_API_KEY"
	EnvProject = "LOGSNAG_PROJECT"
	EnvBaseURL = "LOGSNAG_BASE_URL"

	// W3C trace context of a parent span, as set by CI systems and otel-cli.
	EnvTraceParent = "TRACEPARENT"
	EnvTraceState  = "TRACESTATE"
)

// Propagation formats accepted in Telemetry.Propagation.
const (
	PropagationTraceContext = "tracecontext"
	PropagationNone         = "none"
)

type Receiver struct {
	ListenAddress string `yaml:"listen_address"`
	DBPath        string `yaml:"db_path"`
	// APIToken is the bearer token the receiver accepts. Empty accepts any.
	APIToken string `yaml:"api_token"`
}

// Telemetry controls the instrumentation of the CLI's requests.
type Telemetry struct {
	Propagation string `yaml:"propagation"` // tracecontext|none
	// LogMetrics logs the client request metrics after publishing.
	LogMetrics bool `yaml:"log_metrics"`

	TraceParent string `yaml:"-"`
	TraceState  string `yaml:"-"`
}

type Config struct {
	APIToken  string        `yaml:"api_token"`
	Project   string        `yaml:"project"`
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	LogLevel  string        `yaml:"log_level"` // debug|info|warn|error
	Receiver  Receiver      `yaml:"receiver"`
	Telemetry Telemetry     `yaml:"telemetry"`
}

// Load reads the YAML file at path, fills defaults and applies environment
// overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	}

	c.applyEnv(os.Getenv)
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvAPIKey); v != "" {
		c.APIToken = v
	}
	if v := getenv(EnvProject); v != "" {
		c.Project = v
	}
	if v := getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	c.Telemetry.TraceParent = getenv(EnvTraceParent)
	c.Telemetry.TraceState = getenv(EnvTraceState)
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.logsnag.com"
	}
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Receiver.ListenAddress == "" {
		c.Receiver.ListenAddress = ":8089"
	}
	if c.Receiver.DBPath == "" {
		c.Receiver.DBPath = "logsnag-receiver.db"
	}
	if c.Telemetry.Propagation == "" {
		c.Telemetry.Propagation = PropagationTraceContext
	}
}

// Validate checks the fields needed to publish.
func (c *Config) Validate() error {
	var errs []error
	if c.APIToken == "" {
		errs = append(errs, fmt.Errorf("api_token is required (or set %s)", EnvAPIKey))
	}
	if c.Project == "" {
		errs = append(errs, fmt.Errorf("project is required (or set %s)", EnvProject))
	}
	switch strings.ToLower(c.Telemetry.Propagation) {
	case PropagationTraceContext, PropagationNone:
	default:
		errs = append(errs, fmt.Errorf("telemetry.propagation %q must be %s or %s",
			c.Telemetry.Propagation, PropagationTraceContext, PropagationNone))
	}
	return errors.Join(errs...)
}

// Level parses LogLevel, defaulting to info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
