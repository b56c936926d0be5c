// Package config loads persona-chat settings from a YAML file, an optional
// .env file and the environment, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/iksnae/persona-chat/internal"
	"github.com/iksnae/persona-chat/internal/completion"
)

const (
	// DirName is the per-user settings directory under $HOME
	DirName = ".persona-chat"

	// FileName is the config file inside DirName
	FileName = "config.yaml"

	// DefaultServeAddr is where `serve` listens when no address is given
	DefaultServeAddr = "127.0.0.1:8787"
)

// Environment variables read by ApplyEnv
const (
	EnvGeminiKey = "GEMINI_API_KEY"
	EnvAPIKey    = "PERSONA_CHAT_API_KEY"
	EnvBaseURL   = "PERSONA_CHAT_BASE_URL"
	EnvModel     = "PERSONA_CHAT_MODEL"
	EnvEndpoint  = "PERSONA_CHAT_ENDPOINT"
)

// Config holds every tunable setting
type Config struct {
	Driver            string        `yaml:"driver"`
	StoragePath       string        `yaml:"storage_path"`
	HistoryKey        string        `yaml:"history_key"`
	Persona           string        `yaml:"persona"`
	Endpoint          string        `yaml:"endpoint,omitempty"`
	APIKey            string        `yaml:"api_key,omitempty"`
	BaseURL           string        `yaml:"base_url"`
	Model             string        `yaml:"model"`
	Timeout           time.Duration `yaml:"timeout"`
	TruncateLength    int           `yaml:"truncate_length"`
	AllowedExtensions []string      `yaml:"allowed_extensions"`
	ServeAddr         string        `yaml:"serve_addr"`
}

// Dir returns ~/.persona-chat, or a relative directory when $HOME is unknown
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DirName
	}
	return filepath.Join(home, DirName)
}

// DefaultPath returns the config file used when --config is not given
func DefaultPath() string {
	return filepath.Join(Dir(), FileName)
}

// DefaultStoragePath returns where driver keeps its data file
func DefaultStoragePath(driver string) string {
	switch driver {
	case internal.DriverBolt:
		return filepath.Join(Dir(), "history.bolt")
	default:
		return filepath.Join(Dir(), "history.db")
	}
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{
		Driver:            internal.DriverSQLite,
		HistoryKey:        internal.HistoryKey,
		Persona:           internal.DefaultPersona,
		BaseURL:           completion.DefaultBaseURL,
		Model:             completion.DefaultModel,
		Timeout:           internal.DefaultRequestTimeout,
		TruncateLength:    internal.DefaultTruncateLength,
		AllowedExtensions: append([]string(nil), internal.DefaultAllowedExtensions...),
		ServeAddr:         DefaultServeAddr,
	}
}

// Load reads path over the defaults, then applies .env and the environment.
// An empty path means DefaultPath, which may be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		internal.LogDebug("Loaded config from %s", path)
	case errors.Is(err, os.ErrNotExist) && !explicit:
		internal.LogDebug("No config file at %s, using defaults", path)
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	LoadDotEnv()
	cfg.ApplyEnv(os.Getenv)
	cfg.fillStoragePath()
	return cfg, nil
}

// LoadDotEnv loads ./.env into the process environment without overriding
// variables that are already set. A missing file is not an error.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		internal.LogWarn("Failed to load .env: %v", err)
	}
}

// ApplyEnv overrides settings from environment variables. GEMINI_API_KEY wins
// over PERSONA_CHAT_API_KEY.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvAPIKey)); v != "" {
		c.APIKey = v
	}
	if v := strings.TrimSpace(getenv(EnvGeminiKey)); v != "" {
		c.APIKey = v
	}
	if v := strings.TrimSpace(getenv(EnvBaseURL)); v != "" {
		c.BaseURL = v
	}
	if v := strings.TrimSpace(getenv(EnvModel)); v != "" {
		c.Model = v
	}
	if v := strings.TrimSpace(getenv(EnvEndpoint)); v != "" {
		c.Endpoint = v
	}
}

func (c *Config) fillStoragePath() {
	if c.StoragePath == "" && c.Driver != internal.DriverMemory {
		c.StoragePath = DefaultStoragePath(c.Driver)
	}
}

// SetDriver switches the backend, moving the storage path along with it when
// it still points at the old driver's default file.
func (c *Config) SetDriver(driver string) {
	if c.StoragePath == DefaultStoragePath(c.Driver) {
		c.StoragePath = ""
	}
	c.Driver = driver
	c.fillStoragePath()
}

// Validate rejects settings the rest of the program cannot work with
func (c *Config) Validate() error {
	var problems []string
	switch c.Driver {
	case internal.DriverSQLite, internal.DriverBolt, internal.DriverMemory:
	default:
		problems = append(problems, fmt.Sprintf("unknown driver %q (supported: sqlite, bolt, memory)", c.Driver))
	}
	if c.TruncateLength <= 0 {
		problems = append(problems, fmt.Sprintf("truncate_length must be positive, got %d", c.TruncateLength))
	}
	if c.Timeout <= 0 {
		problems = append(problems, fmt.Sprintf("timeout must be positive, got %s", c.Timeout))
	}
	if strings.TrimSpace(c.HistoryKey) == "" {
		problems = append(problems, "history_key must not be empty")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// AllowList returns the attachment allow-list for these settings.
// Configured extensions are exhaustive: the text/* MIME fallback only
// applies to the default list.
func (c *Config) AllowList() internal.AllowList {
	allow := internal.DefaultAllowList()
	if len(c.AllowedExtensions) > 0 {
		allow.Extensions = append([]string(nil), c.AllowedExtensions...)
		allow.MIMEPrefixes = nil
	}
	return allow
}

// Completer returns the route client when an endpoint is set, otherwise the
// direct client.
func (c *Config) Completer() internal.Completer {
	if c.Endpoint != "" {
		return completion.NewRouteClient(c.Endpoint, nil)
	}
	return c.DirectClient()
}

// DirectClient returns a client that talks to the model API itself
func (c *Config) DirectClient() *completion.DirectClient {
	return completion.NewDirectClient(completion.DirectConfig{
		APIKey:  c.APIKey,
		BaseURL: c.BaseURL,
		Model:   c.Model,
	})
}

// Save writes c to path as YAML, leaving out the API key
func (c *Config) Save(path string) error {
	out := *c
	out.APIKey = ""
	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
