// Package config loads the mxa application settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mxa-live/mxa/routing"
)

// DefaultPath is where the CLI looks for its settings.
const DefaultPath = "mxa.yaml"

// Config holds all mxa settings.
type Config struct {
	// Console is the fallback endpoint, used when the session names none.
	Console ConsoleConfig `yaml:"console"`

	HTTP      HTTPConfig      `yaml:"http"`
	Paths     PathsConfig     `yaml:"paths"`
	Logging   LoggingConfig   `yaml:"logging"`
	Synthesis routing.Options `yaml:"synthesis"`
}

// ConsoleConfig is the console's network address.
type ConsoleConfig struct {
	Host        string `yaml:"host"`
	SendPort    int    `yaml:"send_port"`
	ReceivePort int    `yaml:"receive_port"`
}

// HTTPConfig configures the control API.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// PathsConfig locates the session and level mapping files.
type PathsConfig struct {
	Session string `yaml:"session"`
	Mapping string `yaml:"mapping"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	JSON  bool   `yaml:"json"`
}

// DefaultConfig returns the settings used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{Addr: ":8501"},
		Paths: PathsConfig{
			Session: "session.json",
			Mapping: "mapping.json",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// applyEnvOverrides lets the environment win over the file.
func (c *Config) applyEnvOverrides() error {
	if v := strings.TrimSpace(os.Getenv("MXA_CONSOLE_IP")); v != "" {
		c.Console.Host = v
	}
	if v := strings.TrimSpace(os.Getenv("MXA_SEND_PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("MXA_SEND_PORT: invalid port %q", v)
		}
		c.Console.SendPort = port
	}
	if v := strings.TrimSpace(os.Getenv("MXA_HTTP_ADDR")); v != "" {
		c.HTTP.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("MXA_SESSION")); v != "" {
		c.Paths.Session = v
	}
	if v := strings.TrimSpace(os.Getenv("MXA_MAPPING")); v != "" {
		c.Paths.Mapping = v
	}
	return nil
}

// ResolveEndpoint returns the session's endpoint, filling host and port from
// the configured console when the session leaves them empty.
func (c *Config) ResolveEndpoint(ep routing.Endpoint) routing.Endpoint {
	if ep.Host == "" {
		ep.Host = c.Console.Host
	}
	if ep.SendPort == 0 {
		ep.SendPort = c.Console.SendPort
	}
	if ep.ReceivePort == 0 {
		ep.ReceivePort = c.Console.ReceivePort
	}
	return ep
}
