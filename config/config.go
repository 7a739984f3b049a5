// Package config loads container settings and configuration values from a
// YAML file, after loading .env files into the environment.
//
//	container:
//	  log_level: debug
//	  log_format: json
//	values:
//	  http:
//	    addr: ${HTTP_ADDR}
//	  greeting: hello
//
// Values are addressed by dotted keys ("http.addr") and can be turned into
// value providers for injection tokens whose identifier is the key.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/toutaio/toutago-nasc-injector/registry"
	"github.com/toutaio/toutago-nasc-injector/token"
)

// Environment overrides applied after the file is parsed.
const (
	EnvLogLevel  = "NASC_LOG_LEVEL"
	EnvLogFormat = "NASC_LOG_FORMAT"
)

// Config is the parsed configuration file.
type Config struct {
	Container ContainerConfig `yaml:"container"`
	Values    map[string]any `yaml:"values"`
}

// ContainerConfig holds container settings.
type ContainerConfig struct {
	LogLevel  string `yaml:"log_level"`  // debug | info | warn | error
	LogFormat string `yaml:"log_format"` // text | json
}

// Load reads envFiles into the environment, then parses the YAML file at
// path with ${VAR} references expanded. With no envFiles, .env is loaded if
// present.
func Load(path string, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		// .env may not exist in production
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFiles...); err != nil {
		return nil, fmt.Errorf("failed to load env files: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration with ${VAR} references expanded from the
// environment and applies the environment overrides.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(expandEnv(data), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Container.LogLevel = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Container.LogFormat = v
	}
	if cfg.Values == nil {
		cfg.Values = map[string]any{}
	}

	if _, err := cfg.Level(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv replaces ${NAME} with the value of the environment variable NAME.
// Any other $ is kept as written.
func expandEnv(data []byte) []byte {
	return envRef.ReplaceAllFunc(data, func(ref []byte) []byte {
		return []byte(os.Getenv(string(ref[2 : len(ref)-1])))
	})
}

// Level returns the configured log level. An empty level is info.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.Container.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.Container.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.Container.LogLevel, err)
	}
	return level, nil
}

// Logger returns a logger writing to w in the configured format and level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := c.Level()
	if err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Container.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Value returns the value at a dotted key such as "http.addr".
func (c *Config) Value(key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	var current any = c.Values
	for _, part := range strings.Split(key, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// MissingValueError is returned when a token has no configuration value.
type MissingValueError struct {
	Key string
}

func (e *MissingValueError) Error() string {
	return fmt.Sprintf("no configuration value for %q", e.Key)
}

// Providers returns a value provider for each token, keyed by the token's
// identifier. It fails on the first token without a value.
func (c *Config) Providers(tokens ...*token.InjectionToken) ([]*registry.Provider, error) {
	providers := make([]*registry.Provider, 0, len(tokens))
	for _, tok := range tokens {
		if tok == nil {
			return nil, errors.New("token cannot be nil")
		}

		v, ok := c.Value(tok.Identifier())
		if !ok {
			return nil, &MissingValueError{Key: tok.Identifier()}
		}
		providers = append(providers, registry.ValueProvider(tok, v))
	}
	return providers, nil
}
