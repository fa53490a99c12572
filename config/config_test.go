package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DISCORD_TOKEN", "DISCORD_APPLICATION_ID", "DISCORD_GUILD_ID", "OWNER_ID",
		"SHARD_COUNT", "LOG_LEVEL", "AUTO_LEAVE_TIMEOUT", "DEFAULT_VOLUME", "MAX_QUEUE_SIZE",
		"CATALOG_API_URL", "CATALOG_TIMEOUT", "PLACEHOLDER_IMAGE", "STATE_BACKEND", "STATE_PATH",
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
		"REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "REDIS_DB", "METRICS_ADDR", "FFMPEG_PATH",
	} {
		t.Setenv(key, "")
	}
}

func TestReadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Read()

	if cfg.CatalogURL != DefaultCatalogURL {
		t.Errorf("CatalogURL = %q, want %q", cfg.CatalogURL, DefaultCatalogURL)
	}
	if cfg.StateBackend != StateBackendSQLite {
		t.Errorf("StateBackend = %q, want sqlite", cfg.StateBackend)
	}
	if cfg.DefaultVolume != 100 {
		t.Errorf("DefaultVolume = %d, want 100", cfg.DefaultVolume)
	}
	if cfg.InitialVolume() != 1 {
		t.Errorf("InitialVolume = %f, want 1", cfg.InitialVolume())
	}
	if cfg.CatalogTimeoutDuration() != 15*time.Second {
		t.Errorf("CatalogTimeoutDuration = %s, want 15s", cfg.CatalogTimeoutDuration())
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestReadTrimsCatalogURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("CATALOG_API_URL", "http://localhost:3000/api/")

	cfg := Read()
	if cfg.CatalogURL != "http://localhost:3000/api" {
		t.Errorf("CatalogURL = %q", cfg.CatalogURL)
	}
}

func TestLoadRequiresDiscordCredentials(t *testing.T) {
	clearEnv(t)

	if _, err := Load(); err == nil {
		t.Fatal("expected error without DISCORD_TOKEN")
	}

	t.Setenv("DISCORD_TOKEN", "token")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without DISCORD_APPLICATION_ID")
	}

	t.Setenv("DISCORD_APPLICATION_ID", "app")
	if _, err := Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestValidateRuntime(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"volume too high", func(c *Config) { c.DefaultVolume = 150 }, true},
		{"volume negative", func(c *Config) { c.DefaultVolume = -1 }, true},
		{"queue size zero", func(c *Config) { c.MaxQueueSize = 0 }, true},
		{"redis without host", func(c *Config) { c.StateBackend = StateBackendRedis }, true},
		{"redis with host", func(c *Config) {
			c.StateBackend = StateBackendRedis
			c.RedisHost = "localhost"
		}, false},
		{"postgres without host", func(c *Config) { c.StateBackend = StateBackendPostgres }, true},
		{"unknown backend", func(c *Config) { c.StateBackend = "etcd" }, true},
		{"sqlite without path", func(c *Config) { c.StatePath = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				DefaultVolume:  100,
				MaxQueueSize:   500,
				CatalogTimeout: 15,
				StateBackend:   StateBackendSQLite,
				StatePath:      "kampita.db",
			}
			tt.mutate(cfg)
			err := cfg.ValidateRuntime()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRuntime() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
