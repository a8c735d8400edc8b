package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.API.BaseURL != DefaultBaseURL {
			t.Errorf("expected base URL %s, got %s", DefaultBaseURL, config.API.BaseURL)
		}
		if config.API.PageSize != 50 {
			t.Errorf("expected page size 50, got %d", config.API.PageSize)
		}
		if config.API.Timeout() != 15*time.Second {
			t.Errorf("expected timeout 15s, got %v", config.API.Timeout())
		}
		if config.Database.Path != "./kino.db" {
			t.Errorf("expected database path ./kino.db, got %s", config.Database.Path)
		}
		if err := config.Validate(); err != nil {
			t.Errorf("default config should be valid: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}
		if config.API.BaseURL != DefaultConfig().API.BaseURL {
			t.Errorf("created config base URL doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig keeps defaults for missing keys", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		testConfig := `[api]
base_url = "https://kino.example.com/api"
rate_limit = 2.5

[database]
path = "/custom/path.db"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}
		if config.API.BaseURL != "https://kino.example.com/api" {
			t.Errorf("unexpected base URL %s", config.API.BaseURL)
		}
		if config.API.RateLimit != 2.5 {
			t.Errorf("expected rate limit 2.5, got %v", config.API.RateLimit)
		}
		if config.API.PageSize != 50 {
			t.Errorf("expected default page size 50, got %d", config.API.PageSize)
		}
		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}
	})

	t.Run("LoadConfig invalid toml", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[api\nbase_url ="), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if _, err := LoadConfig(configPath); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv(EnvAPIURL, "http://10.0.0.2:8000/api")
		t.Setenv(EnvDBPath, ":memory:")
		t.Setenv(EnvPageSize, "20")

		config := DefaultConfig()
		if err := config.ApplyEnv(); err != nil {
			t.Fatalf("ApplyEnv: %v", err)
		}
		if config.API.BaseURL != "http://10.0.0.2:8000/api" || config.Database.Path != ":memory:" || config.API.PageSize != 20 {
			t.Errorf("env overrides not applied: %+v", config)
		}
	})

	t.Run("ApplyEnv rejects bad page size", func(t *testing.T) {
		t.Setenv(EnvPageSize, "zero")
		if err := DefaultConfig().ApplyEnv(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("LoadEnv", func(t *testing.T) {
		envPath := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(envPath, []byte("KINO_PAGE_SIZE=7\n"), 0644); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}
		t.Setenv(EnvPageSize, "")
		os.Unsetenv(EnvPageSize)

		if err := LoadEnv(envPath, filepath.Join(t.TempDir(), "missing.env")); err != nil {
			t.Fatalf("LoadEnv: %v", err)
		}

		config := DefaultConfig()
		if err := config.ApplyEnv(); err != nil {
			t.Fatalf("ApplyEnv: %v", err)
		}
		if config.API.PageSize != 7 {
			t.Errorf("expected page size 7 from .env, got %d", config.API.PageSize)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		config := DefaultConfig()
		config.API.PageSize = 0
		if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestSession(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		for _, s := range []Session{{}, Anonymous(), NewSession("   ")} {
			if s.Authenticated() || s.AccessToken() != "" || s.Token() != nil {
				t.Errorf("expected anonymous session, got %+v", s)
			}
		}
	})

	t.Run("authenticated", func(t *testing.T) {
		s := NewSession(" abc ")
		if !s.Authenticated() || s.AccessToken() != "abc" {
			t.Fatalf("unexpected session %+v", s)
		}

		tok := s.Token()
		if tok.TokenType != "Bearer" {
			t.Errorf("expected Bearer token type, got %s", tok.TokenType)
		}

		tok.AccessToken = "mutated"
		if s.AccessToken() != "abc" {
			t.Error("Token() must return a copy")
		}
	})
}

func TestGenerateIDLength(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b || len(a) != 36 {
		t.Errorf("expected distinct uuids, got %q and %q", a, b)
	}
}
