// File: config.go
// Title: Application Configuration
// Description: Typed configuration for the frege CLI, REPL and playground.
//              Loaded from TOML or YAML (chosen by extension) with defaults,
//              environment expansion and FREGE_* overrides.
// Author: msto63
// Version: v0.2.0
// Created: 2025-12-06
// Modified: 2026-10-16
//
// Change History:
// - 2025-12-06 v0.1.0: Service configuration in TOML
// - 2026-10-16 v0.2.0: Engine, history and playground sections, YAML support

package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	ferror "github.com/msto63/frege/foundation/core/error"
)

// EnvConfig names the variable pointing at the config file
const EnvConfig = "FREGE_CONFIG"

// Config holds the complete application configuration
type Config struct {
	General    GeneralConfig    `toml:"general" yaml:"general"`
	Engine     EngineConfig     `toml:"engine" yaml:"engine"`
	History    HistoryConfig    `toml:"history" yaml:"history"`
	Playground PlaygroundConfig `toml:"playground" yaml:"playground"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	LogLevel  string `toml:"log_level" yaml:"log_level"`
	LogFormat string `toml:"log_format" yaml:"log_format"`
	DataDir   string `toml:"data_dir" yaml:"data_dir"`
}

// EngineConfig limits what a single run may consume
type EngineConfig struct {
	MaxSourceLength int `toml:"max_source_length" yaml:"max_source_length"`

	// MaxResolveDepth bounds variable chains; unset means 10000, -1 unbounded
	MaxResolveDepth int `toml:"max_resolve_depth" yaml:"max_resolve_depth"`
}

// ResolveDepth returns the limit in the form the engine expects, where 0
// means unbounded
func (e EngineConfig) ResolveDepth() int {
	if e.MaxResolveDepth < 0 {
		return 0
	}
	return e.MaxResolveDepth
}

// HistoryConfig holds run history settings
type HistoryConfig struct {
	Enabled   *bool    `toml:"enabled" yaml:"enabled"`
	Path      string   `toml:"path" yaml:"path"`
	Retention Duration `toml:"retention" yaml:"retention"`
}

// PlaygroundConfig holds the WebSocket playground settings
type PlaygroundConfig struct {
	Host           string   `toml:"host" yaml:"host"`
	Port           int      `toml:"port" yaml:"port"`
	RunTimeout     Duration `toml:"run_timeout" yaml:"run_timeout"`
	MaxMessageSize int64    `toml:"max_message_size" yaml:"max_message_size"`

	// GRPCPort serves the gRPC playground and health services; -1 disables it
	GRPCPort int `toml:"grpc_port" yaml:"grpc_port"`

	// CacheSize bounds the result cache; -1 disables it
	CacheSize int      `toml:"cache_size" yaml:"cache_size"`
	CacheTTL  Duration `toml:"cache_ttl" yaml:"cache_ttl"`
}

// Duration wraps time.Duration for TOML and YAML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML parses a duration scalar
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML or YAML file
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ferror.Newf("config file not found: %s", path).
				WithCode(ferror.CodeMissingConfig).
				WithOperation("config.Load").
				WithDetail("path", path)
		}
		return nil, ferror.Wrap(err, "failed to read config").
			WithCode(ferror.CodeConfigError).
			WithOperation("config.Load")
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(content, &cfg)
	case ".toml", "":
		_, err = toml.Decode(string(content), &cfg)
	default:
		return nil, ferror.Newf("unsupported config format: %s", filepath.Ext(path)).
			WithCode(ferror.CodeInvalidConfig).
			WithOperation("config.Load")
	}
	if err != nil {
		return nil, ferror.Wrap(err, "failed to parse config").
			WithCode(ferror.CodeInvalidConfig).
			WithOperation("config.Load").
			WithDetail("path", path)
	}

	return cfg.finish()
}

// LoadFromEnv loads configuration from FREGE_CONFIG or the default locations.
// Without any config file the defaults are returned.
func LoadFromEnv() (*Config, error) {
	if path := os.Getenv(EnvConfig); path != "" {
		return Load(path)
	}

	for _, p := range DefaultPaths() {
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
	}

	cfg := &Config{}
	return cfg.finish()
}

func (c *Config) finish() (*Config, error) {
	c.applyEnvOverrides()
	c.applyDefaults()
	c.expandEnvVars()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// DefaultPaths lists the locations searched when FREGE_CONFIG is unset
func DefaultPaths() []string {
	paths := []string{
		"./frege.toml",
		"./frege.yaml",
		"./configs/frege.toml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "frege", "config.toml"),
			filepath.Join(home, ".config", "frege", "config.yaml"),
		)
	}
	return paths
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// General
	if c.General.LogLevel == "" {
		c.General.LogLevel = "warn"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "auto"
	}
	if c.General.DataDir == "" {
		c.General.DataDir = defaultDataDir()
	}

	// Engine
	if c.Engine.MaxSourceLength == 0 {
		c.Engine.MaxSourceLength = 64 * 1024
	}
	if c.Engine.MaxResolveDepth == 0 {
		c.Engine.MaxResolveDepth = 10000
	}

	// History
	if c.History.Enabled == nil {
		enabled := true
		c.History.Enabled = &enabled
	}
	if c.History.Path == "" {
		c.History.Path = filepath.Join(c.General.DataDir, "history.db")
	}
	if c.History.Retention.Duration == 0 {
		c.History.Retention.Duration = 30 * 24 * time.Hour
	}

	// Playground
	if c.Playground.Host == "" {
		c.Playground.Host = "127.0.0.1"
	}
	if c.Playground.Port == 0 {
		c.Playground.Port = 8420
	}
	if c.Playground.RunTimeout.Duration == 0 {
		c.Playground.RunTimeout.Duration = 5 * time.Second
	}
	if c.Playground.MaxMessageSize == 0 {
		c.Playground.MaxMessageSize = 128 * 1024
	}
	if c.Playground.GRPCPort == 0 {
		c.Playground.GRPCPort = 8421
	}
	if c.Playground.CacheSize == 0 {
		c.Playground.CacheSize = 256
	}
	if c.Playground.CacheTTL.Duration == 0 {
		c.Playground.CacheTTL.Duration = 10 * time.Minute
	}
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "frege")
	}
	return "./data"
}

// applyEnvOverrides lets FREGE_* variables win over file values
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("FREGE_LOG_LEVEL"); v != "" {
		c.General.LogLevel = v
	}
	if v := os.Getenv("FREGE_LOG_FORMAT"); v != "" {
		c.General.LogFormat = v
	}
	if v := os.Getenv("FREGE_DATA_DIR"); v != "" {
		c.General.DataDir = v
	}
	if v := os.Getenv("FREGE_HISTORY_PATH"); v != "" {
		c.History.Path = v
	}
	if v := os.Getenv("FREGE_HISTORY_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.History.Enabled = &enabled
		}
	}
	if v := os.Getenv("FREGE_PLAYGROUND_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Playground.Port = port
		}
	}
}

// expandEnvVars expands environment variables in path values
func (c *Config) expandEnvVars() {
	c.General.DataDir = os.ExpandEnv(c.General.DataDir)
	c.History.Path = os.ExpandEnv(c.History.Path)
}

// Validate rejects values no component can work with
func (c *Config) Validate() error {
	invalid := func(field string, value interface{}) error {
		return ferror.Newf("invalid config value for %s: %v", field, value).
			WithCode(ferror.CodeInvalidConfig).
			WithOperation("config.Validate").
			WithDetail("field", field)
	}

	switch strings.ToLower(c.General.LogFormat) {
	case "auto", "json", "text", "console":
	default:
		return invalid("general.log_format", c.General.LogFormat)
	}
	if c.Engine.MaxSourceLength < 0 {
		return invalid("engine.max_source_length", c.Engine.MaxSourceLength)
	}
	if c.Engine.MaxResolveDepth < -1 {
		return invalid("engine.max_resolve_depth", c.Engine.MaxResolveDepth)
	}
	if c.Playground.Port < 0 || c.Playground.Port > 65535 {
		return invalid("playground.port", c.Playground.Port)
	}
	if c.Playground.RunTimeout.Duration < 0 {
		return invalid("playground.run_timeout", c.Playground.RunTimeout)
	}
	if c.Playground.GRPCPort < -1 || c.Playground.GRPCPort > 65535 {
		return invalid("playground.grpc_port", c.Playground.GRPCPort)
	}
	if c.Playground.CacheSize < -1 {
		return invalid("playground.cache_size", c.Playground.CacheSize)
	}
	if c.History.Retention.Duration < 0 {
		return invalid("history.retention", c.History.Retention)
	}
	return nil
}

// HistoryEnabled reports whether runs should be recorded
func (c *Config) HistoryEnabled() bool {
	return c.History.Enabled == nil || *c.History.Enabled
}

// PlaygroundAddress returns the host:port the playground listens on
func (c *Config) PlaygroundAddress() string {
	return net.JoinHostPort(c.Playground.Host, fmt.Sprint(c.Playground.Port))
}
