package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "logging:\n  level: debug\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Affiliate.AmazonTag != "youraffiliate-20" || !cfg.Affiliate.CloakLinks {
		t.Errorf("unexpected affiliate defaults %+v", cfg.Affiliate)
	}
	if cfg.Paths.ContentDir != "src/content/posts" {
		t.Errorf("ContentDir = %q", cfg.Paths.ContentDir)
	}
	if cfg.Avatar.PollInterval != 1500*time.Millisecond || cfg.Avatar.PollTimeout != 120*time.Second {
		t.Errorf("unexpected poll settings %v/%v", cfg.Avatar.PollInterval, cfg.Avatar.PollTimeout)
	}
	if len(cfg.Trends.SeedTopics) != len(DefaultSeedTopics) {
		t.Errorf("Expected %d seed topics, got %d", len(DefaultSeedTopics), len(cfg.Trends.SeedTopics))
	}
	if cfg.Scheduler.PostCron != "0 6 * * *" {
		t.Errorf("PostCron = %q", cfg.Scheduler.PostCron)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("file value not applied, Level = %q", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadLegacyEnvNames(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("CLOAK_LINKS", "false")
	t.Setenv("READY_PLAYER_ME_API_URL", "https://rpm.example")
	t.Setenv("IMGBB_API_KEY", "imgbb-key")
	t.Setenv("PORT", "9090")

	cfg, err := Load(writeConfig(t, "{}\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Anthropic.APIKey != "sk-test" {
		t.Errorf("APIKey = %q", cfg.Anthropic.APIKey)
	}
	if cfg.Affiliate.CloakLinks {
		t.Error("CLOAK_LINKS=false was not applied")
	}
	if cfg.Avatar.APIURL != "https://rpm.example" || cfg.Avatar.ImgBBKey != "imgbb-key" {
		t.Errorf("unexpected avatar config %+v", cfg.Avatar)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("Port = %q", cfg.Server.Port)
	}
}

func TestLoadPrefixedEnvWins(t *testing.T) {
	t.Setenv("AMAZON_AFFILIATE_TAG", "legacy-20")
	t.Setenv("TRENDFARM_AFFILIATE_AMAZON_TAG", "prefixed-20")

	cfg, err := Load(writeConfig(t, "{}\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Affiliate.AmazonTag != "prefixed-20" {
		t.Errorf("AmazonTag = %q", cfg.Affiliate.AmazonTag)
	}
}

func TestLoadBadFile(t *testing.T) {
	if _, err := Load(writeConfig(t, "logging: [unclosed\n")); err == nil {
		t.Fatal("Expected error for malformed config")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Paths:  PathsConfig{ContentDir: "posts"},
			Trends: TrendsConfig{MaxResults: 10, HistoryLimit: 100},
			Avatar: AvatarConfig{PollInterval: time.Second, PollTimeout: time.Minute},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"max results", func(c *Config) { c.Trends.MaxResults = 0 }},
		{"history limit", func(c *Config) { c.Trends.HistoryLimit = -1 }},
		{"poll interval", func(c *Config) { c.Avatar.PollInterval = 0 }},
		{"poll timeout", func(c *Config) { c.Avatar.PollTimeout = time.Millisecond }},
		{"content dir", func(c *Config) { c.Paths.ContentDir = "" }},
		{"tracker sheet", func(c *Config) { c.Tracker.Enabled = true }},
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestRequire(t *testing.T) {
	if err := Require("set", "avatar.api_url", "READY_PLAYER_ME_API_URL"); err != nil {
		t.Errorf("Require() with value = %v", err)
	}

	err := Require("", "avatar.api_url", "READY_PLAYER_ME_API_URL")
	var missing *MissingError
	if !errors.As(err, &missing) {
		t.Fatalf("Expected MissingError, got %v", err)
	}
	if missing.Env != "READY_PLAYER_ME_API_URL" {
		t.Errorf("Env = %q", missing.Env)
	}
	if err.Error() != "avatar.api_url is not configured (set READY_PLAYER_ME_API_URL)" {
		t.Errorf("Error() = %q", err.Error())
	}
}
