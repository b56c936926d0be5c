package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iksnae/persona-chat/internal"
	"github.com/iksnae/persona-chat/internal/completion"
	"github.com/iksnae/persona-chat/testutil"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := testutil.CreateTempDir(t)
	t.Setenv("HOME", home)
	for _, key := range []string{EnvGeminiKey, EnvAPIKey, EnvBaseURL, EnvModel, EnvEndpoint} {
		t.Setenv(key, "")
	}
	return home
}

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Driver != internal.DriverSQLite {
		t.Errorf("Driver = %q, want sqlite", cfg.Driver)
	}
	if cfg.TruncateLength != 300 {
		t.Errorf("TruncateLength = %d, want 300", cfg.TruncateLength)
	}
	if cfg.Timeout != 60*time.Second {
		t.Errorf("Timeout = %s, want 60s", cfg.Timeout)
	}
	if cfg.Model != "gemini-2.5-pro" {
		t.Errorf("Model = %q, want gemini-2.5-pro", cfg.Model)
	}
	if want := filepath.Join(home, DirName, "history.db"); cfg.StoragePath != want {
		t.Errorf("StoragePath = %q, want %q", cfg.StoragePath, want)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoad_File(t *testing.T) {
	isolate(t)
	dir := testutil.CreateTempDir(t)
	path := testutil.WriteFile(t, dir, "config.yaml", []byte(`
driver: bolt
persona: Coach
timeout: 15s
truncate_length: 120
allowed_extensions: [txt, log]
`))

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Driver != internal.DriverBolt || cfg.Persona != "Coach" {
		t.Errorf("cfg = %+v, want bolt/Coach", cfg)
	}
	if cfg.Timeout != 15*time.Second {
		t.Errorf("Timeout = %s, want 15s", cfg.Timeout)
	}
	if cfg.TruncateLength != 120 {
		t.Errorf("TruncateLength = %d, want 120", cfg.TruncateLength)
	}
	if !strings.HasSuffix(cfg.StoragePath, "history.bolt") {
		t.Errorf("StoragePath = %q, want bolt default", cfg.StoragePath)
	}
	allow := cfg.AllowList()
	allow.TypeByExtension = func(string) string { return "text/x-python" }
	if !allow.Allows("server.log") || allow.Allows("main.py") {
		t.Errorf("AllowList() = %+v, want only configured extensions", allow.Extensions)
	}
	if len(allow.MIMEPrefixes) != 0 {
		t.Errorf("MIMEPrefixes = %v, want none with configured extensions", allow.MIMEPrefixes)
	}
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	isolate(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() error = nil, want error for missing explicit file")
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	isolate(t)
	path := testutil.WriteFile(t, t.TempDir(), "config.yaml", []byte("driver: [unclosed"))
	if _, err := Load(path); err == nil {
		t.Error("Load() error = nil, want parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvAPIKey:    "generic",
		EnvGeminiKey: "gemini",
		EnvModel:     "gemini-2.0-flash",
		EnvEndpoint:  "http://localhost:8787/api/chat",
		EnvBaseURL:   "http://localhost:9999/v1",
	}
	cfg := Default()
	cfg.ApplyEnv(func(k string) string { return env[k] })

	if cfg.APIKey != "gemini" {
		t.Errorf("APIKey = %q, want GEMINI_API_KEY to win", cfg.APIKey)
	}
	if cfg.Model != "gemini-2.0-flash" || cfg.Endpoint != env[EnvEndpoint] || cfg.BaseURL != env[EnvBaseURL] {
		t.Errorf("cfg = %+v, want env overrides", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "zero truncate", mutate: func(c *Config) { c.TruncateLength = 0 }, wantErr: "truncate_length"},
		{name: "negative timeout", mutate: func(c *Config) { c.Timeout = -time.Second }, wantErr: "timeout"},
		{name: "unknown driver", mutate: func(c *Config) { c.Driver = "redis" }, wantErr: "unknown driver"},
		{name: "empty key", mutate: func(c *Config) { c.HistoryKey = " " }, wantErr: "history_key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestSetDriver_MovesDefaultPath(t *testing.T) {
	isolate(t)
	cfg := Default()
	cfg.fillStoragePath()

	cfg.SetDriver(internal.DriverBolt)
	if cfg.StoragePath != DefaultStoragePath(internal.DriverBolt) {
		t.Errorf("StoragePath = %q, want bolt default", cfg.StoragePath)
	}

	cfg.StoragePath = "/tmp/custom.db"
	cfg.SetDriver(internal.DriverSQLite)
	if cfg.StoragePath != "/tmp/custom.db" {
		t.Errorf("StoragePath = %q, custom path should be kept", cfg.StoragePath)
	}
}

func TestCompleter(t *testing.T) {
	cfg := Default()
	if _, ok := cfg.Completer().(*completion.DirectClient); !ok {
		t.Errorf("Completer() = %T, want *completion.DirectClient", cfg.Completer())
	}
	cfg.Endpoint = "http://localhost:8787/api/chat"
	if _, ok := cfg.Completer().(*completion.RouteClient); !ok {
		t.Errorf("Completer() = %T, want *completion.RouteClient", cfg.Completer())
	}
}

func TestSave_OmitsAPIKey(t *testing.T) {
	isolate(t)
	cfg := Default()
	cfg.APIKey = "secret"
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.APIKey != "" {
		t.Errorf("APIKey = %q, want it left out of the file", loaded.APIKey)
	}
	if loaded.Timeout != cfg.Timeout {
		t.Errorf("Timeout = %s, want %s", loaded.Timeout, cfg.Timeout)
	}
}
