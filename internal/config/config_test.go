package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default BaseURL is English Wikipedia", func(t *testing.T) {
		t.Parallel()
		if cfg.BaseURL != "https://en.wikipedia.org/wiki/" {
			t.Errorf("expected English Wikipedia base URL, got '%s'", cfg.BaseURL)
		}
	})

	t.Run("default Timeout is 30 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 30*time.Second {
			t.Errorf("expected Timeout to be 30s, got %v", cfg.Timeout)
		}
	})

	t.Run("default MaxSteps is unlimited", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxSteps != 0 {
			t.Errorf("expected MaxSteps to be 0, got %d", cfg.MaxSteps)
		}
	})

	t.Run("default StepDelay is 100ms", func(t *testing.T) {
		t.Parallel()
		if cfg.StepDelay != 100*time.Millisecond {
			t.Errorf("expected StepDelay to be 100ms, got %v", cfg.StepDelay)
		}
	})

	t.Run("batch mode is off by default", func(t *testing.T) {
		t.Parallel()
		if cfg.BatchSize != 0 {
			t.Errorf("expected BatchSize to be 0, got %d", cfg.BatchSize)
		}
	})

	t.Run("link cache is off by default", func(t *testing.T) {
		t.Parallel()
		if cfg.CacheTTL != 0 {
			t.Errorf("expected CacheTTL to be 0, got %v", cfg.CacheTTL)
		}
	})

	t.Run("history is saved to the XDG data dir", func(t *testing.T) {
		t.Parallel()
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to be true")
		}
		if cfg.DBDir != XDGDataDir() {
			t.Errorf("expected DBDir %q, got %q", XDGDataDir(), cfg.DBDir)
		}
	})

	t.Run("Tor is off by default", func(t *testing.T) {
		t.Parallel()
		if cfg.UseTor || cfg.UseExternalTor {
			t.Error("expected Tor to be disabled")
		}
		if cfg.TorProxyAddress != "127.0.0.1:9050" {
			t.Errorf("expected TorProxyAddress '127.0.0.1:9050', got %q", cfg.TorProxyAddress)
		}
		if cfg.TorStartupTimeout != 3*time.Minute {
			t.Errorf("expected TorStartupTimeout 3m, got %v", cfg.TorStartupTimeout)
		}
	})

	t.Run("default user agent names the project", func(t *testing.T) {
		t.Parallel()
		if !strings.HasPrefix(cfg.UserAgent, "philowalk/") {
			t.Errorf("unexpected UserAgent %q", cfg.UserAgent)
		}
	})

	t.Run("defaults are valid", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected defaults to validate, got %v", err)
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
// Each test case breaks exactly one rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{name: "valid config returns nil", mutate: func(*Config) {}},
		{name: "batch mode is valid", mutate: func(c *Config) { c.BatchSize = 4 }},
		{name: "json only is valid", mutate: func(c *Config) { c.JSONReport = true }},
		{name: "markdown only is valid", mutate: func(c *Config) { c.MarkdownReport = true }},
		{name: "zero step delay is valid", mutate: func(c *Config) { c.StepDelay = 0 }},
		{
			name:    "empty base URL returns ErrNoBaseURL",
			mutate:  func(c *Config) { c.BaseURL = "" },
			wantErr: ErrNoBaseURL,
		},
		{
			name:    "zero timeout returns ErrInvalidTimeout",
			mutate:  func(c *Config) { c.Timeout = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "negative timeout returns ErrInvalidTimeout",
			mutate:  func(c *Config) { c.Timeout = -time.Second },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "negative batch size returns ErrInvalidBatchSize",
			mutate:  func(c *Config) { c.BatchSize = -1 },
			wantErr: ErrInvalidBatchSize,
		},
		{
			name: "json and markdown both enabled returns ErrConflictingReportFormats",
			mutate: func(c *Config) {
				c.JSONReport = true
				c.MarkdownReport = true
			},
			wantErr: ErrConflictingReportFormats,
		},
		{
			name:    "negative step delay returns ErrInvalidStepDelay",
			mutate:  func(c *Config) { c.StepDelay = -time.Millisecond },
			wantErr: ErrInvalidStepDelay,
		},
		{
			name:    "negative body size returns ErrInvalidMaxBodySize",
			mutate:  func(c *Config) { c.MaxBodySize = -1 },
			wantErr: ErrInvalidMaxBodySize,
		},
		{
			name:    "negative max steps returns ErrInvalidMaxSteps",
			mutate:  func(c *Config) { c.MaxSteps = -1 },
			wantErr: ErrInvalidMaxSteps,
		},
		{
			name:    "negative cache TTL returns ErrInvalidCacheTTL",
			mutate:  func(c *Config) { c.CacheTTL = -time.Hour },
			wantErr: ErrInvalidCacheTTL,
		},
		{
			name:    "sub-second cache TTL returns ErrInvalidCacheTTL",
			mutate:  func(c *Config) { c.CacheTTL = 500 * time.Millisecond },
			wantErr: ErrInvalidCacheTTL,
		},
		{name: "one second cache TTL is valid", mutate: func(c *Config) { c.CacheTTL = time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected nil, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestFileApply tests overlaying file values onto a Config.
func TestFileApply(t *testing.T) {
	t.Parallel()

	t.Run("copies every set field", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cf := &File{
			BaseURL:   "https://de.wikipedia.org/wiki/",
			UserAgent: "custom/1.0",
			Headers:   map[string]string{"Accept-Language": "de"},
			Cookie:    "a=b",
			StepDelay: time.Second,
			MaxSteps:  50,
			Timeout:   time.Minute,
		}
		cf.Apply(cfg)

		if cfg.BaseURL != "https://de.wikipedia.org/wiki/" {
			t.Errorf("unexpected BaseURL %q", cfg.BaseURL)
		}
		if cfg.UserAgent != "custom/1.0" {
			t.Errorf("unexpected UserAgent %q", cfg.UserAgent)
		}
		if cfg.Headers["Accept-Language"] != "de" {
			t.Errorf("expected Accept-Language header, got %v", cfg.Headers)
		}
		if cfg.Cookie != "a=b" {
			t.Errorf("unexpected Cookie %q", cfg.Cookie)
		}
		if cfg.StepDelay != time.Second {
			t.Errorf("unexpected StepDelay %v", cfg.StepDelay)
		}
		if cfg.MaxSteps != 50 {
			t.Errorf("unexpected MaxSteps %d", cfg.MaxSteps)
		}
		if cfg.Timeout != time.Minute {
			t.Errorf("unexpected Timeout %v", cfg.Timeout)
		}
	})

	t.Run("zero values leave config untouched", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		(&File{}).Apply(cfg)

		want := NewConfig()
		if cfg.BaseURL != want.BaseURL || cfg.Timeout != want.Timeout || cfg.StepDelay != want.StepDelay {
			t.Errorf("expected defaults to be kept, got %+v", cfg)
		}
		if cfg.Headers != nil {
			t.Errorf("expected nil headers, got %v", cfg.Headers)
		}
	})

	t.Run("pinned keys are not overwritten", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.BaseURL = "https://fr.wikipedia.org/wiki/"
		cfg.MaxSteps = 10

		cf := &File{BaseURL: "https://de.wikipedia.org/wiki/", MaxSteps: 99, Cookie: "x=y"}
		cf.Apply(cfg, KeyBaseURL, KeyMaxSteps)

		if cfg.BaseURL != "https://fr.wikipedia.org/wiki/" {
			t.Errorf("pinned BaseURL was overwritten: %q", cfg.BaseURL)
		}
		if cfg.MaxSteps != 10 {
			t.Errorf("pinned MaxSteps was overwritten: %d", cfg.MaxSteps)
		}
		if cfg.Cookie != "x=y" {
			t.Errorf("expected unpinned Cookie to be applied, got %q", cfg.Cookie)
		}
	})

	t.Run("headers are merged", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.Headers = map[string]string{"X-A": "1", "X-B": "2"}
		cf := &File{Headers: map[string]string{"X-B": "override", "X-C": "3"}}
		cf.Apply(cfg)

		if cfg.Headers["X-A"] != "1" || cfg.Headers["X-B"] != "override" || cfg.Headers["X-C"] != "3" {
			t.Errorf("unexpected merged headers %v", cfg.Headers)
		}
	})
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.philowalk")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".philowalk")
		content := `base_url: https://simple.wikipedia.org/wiki/
user_agent: "tester/0.1 (me@example.com)"
cookie: "session=xyz"
step_delay: 250ms
timeout: 45s
max_steps: 200
headers:
  Accept-Language: en
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cf, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cf.BaseURL != "https://simple.wikipedia.org/wiki/" {
			t.Errorf("unexpected base_url %q", cf.BaseURL)
		}
		if cf.UserAgent != "tester/0.1 (me@example.com)" {
			t.Errorf("unexpected user_agent %q", cf.UserAgent)
		}
		if cf.Cookie != "session=xyz" {
			t.Errorf("unexpected cookie %q", cf.Cookie)
		}
		if cf.StepDelay != 250*time.Millisecond {
			t.Errorf("expected step_delay 250ms, got %v", cf.StepDelay)
		}
		if cf.Timeout != 45*time.Second {
			t.Errorf("expected timeout 45s, got %v", cf.Timeout)
		}
		if cf.MaxSteps != 200 {
			t.Errorf("expected max_steps 200, got %d", cf.MaxSteps)
		}
		if cf.Headers["Accept-Language"] != "en" {
			t.Errorf("expected Accept-Language header, got %v", cf.Headers)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".philowalk")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("initializes nil Headers map", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".philowalk")
		if err := os.WriteFile(configPath, []byte("max_steps: 5\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cf, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.Headers == nil {
			t.Error("expected Headers map to be initialized")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Run("returns explicit path if exists", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("max_steps: 1\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if result := FindConfigFile(configPath); result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		if result := FindConfigFile("/nonexistent/path/config.yaml"); result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})

	t.Run("finds config in current directory", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)

		configPath := filepath.Join(dir, DefaultConfigFile)
		if err := os.WriteFile(configPath, []byte("max_steps: 1\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		result := FindConfigFile("")
		if filepath.Base(result) != DefaultConfigFile {
			t.Errorf("expected %s to be found, got %q", DefaultConfigFile, result)
		}
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	t.Run("XDGDataDir ends with the app name", func(t *testing.T) {
		t.Parallel()

		if dir := XDGDataDir(); filepath.Base(dir) != AppName {
			t.Errorf("expected data dir to end with %q, got %q", AppName, dir)
		}
	})

	t.Run("XDGConfigDir ends with the app name", func(t *testing.T) {
		t.Parallel()

		if dir := XDGConfigDir(); filepath.Base(dir) != AppName {
			t.Errorf("expected config dir to end with %q, got %q", AppName, dir)
		}
	})
}
