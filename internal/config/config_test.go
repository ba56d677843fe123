package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aagoldberg/far-mca-sub002/internal/scoring"
)

func isolateEnvFile(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoadDefaults(t *testing.T) {
	isolateEnvFile(t)
	t.Setenv("SCORING_CONFIG", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.HTTP.Port != defaultPort || cfg.HTTP.ReadTimeout != defaultReadTimeout {
		t.Fatalf("unexpected http defaults %+v", cfg.HTTP)
	}
	if cfg.Social.Provider != ProviderNeo4j || cfg.Cache.Backend != CacheMemory {
		t.Fatalf("unexpected provider defaults %+v %+v", cfg.Social, cfg.Cache)
	}
	if cfg.Scoring != scoring.DefaultParams() {
		t.Fatalf("expected default scoring params, got %+v", cfg.Scoring)
	}
}

func TestLoadOverrides(t *testing.T) {
	isolateEnvFile(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_READ_TIMEOUT", "3s")
	t.Setenv("SOCIAL_PROVIDER", "HTTP")
	t.Setenv("CACHE_BACKEND", "sqlite")
	t.Setenv("SERVER_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.HTTP.Port != 9090 || cfg.HTTP.ReadTimeout != 3*time.Second {
		t.Fatalf("unexpected http config %+v", cfg.HTTP)
	}
	if cfg.Social.Provider != ProviderHTTP || cfg.Cache.Backend != CacheSQLite {
		t.Fatalf("unexpected provider config %+v %+v", cfg.Social, cfg.Cache)
	}
	if origins := cfg.HTTP.AllowedOrigins(); len(origins) != 2 || origins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", origins)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"SERVER_PORT":         "70000",
		"SERVER_IDLE_TIMEOUT": "soon",
		"SOCIAL_PROVIDER":     "carrier-pigeon",
		"CACHE_BACKEND":       "redis",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			isolateEnvFile(t)
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("LOG_LEVEL=debug\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("ENV_FILE", path)
	// Register a restore, then clear so the file value is not shadowed.
	t.Setenv("LOG_LEVEL", "")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected level from env file, got %q", cfg.Logging.Level)
	}
}

func TestLoadScoringParams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scoring.yaml")
	body := []byte("default_quality: 0.5\nconnected_lender_threshold: 3\nsupport_ttl: 45m\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write scoring file: %v", err)
	}

	params, err := LoadScoringParams(path)
	if err != nil {
		t.Fatalf("LoadScoringParams returned error: %v", err)
	}
	defaults := scoring.DefaultParams()
	if params.DefaultQuality != 0.5 || params.ConnectedLenderThreshold != 3 || params.SupportTTL != 45*time.Minute {
		t.Fatalf("expected overrides to apply, got %+v", params)
	}
	if params.AssumedDegree != defaults.AssumedDegree || params.IdentityTTL != defaults.IdentityTTL {
		t.Fatalf("expected untouched fields to keep defaults, got %+v", params)
	}

	if _, err := LoadScoringParams(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for a missing scoring file")
	}
}

func TestLoadScoringParams_KeepsExplicitZeros(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scoring.yaml")
	body := []byte("one_way_follow_bonus: 0\nmutual_follow_bonus: 0\noverlap_floor: 0\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write scoring file: %v", err)
	}

	params, err := LoadScoringParams(path)
	if err != nil {
		t.Fatalf("LoadScoringParams returned error: %v", err)
	}
	if params.OneWayFollowBonus != 0 || params.MutualFollowBonus != 0 || params.OverlapFloor != 0 {
		t.Fatalf("expected explicit zeros to survive, got %+v", params)
	}
	if params.OverlapMultiplier != scoring.DefaultParams().OverlapMultiplier {
		t.Fatalf("expected unnamed fields to keep defaults, got %+v", params)
	}
}

func TestLoadScoringParams_RejectsInvalidCalibration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scoring.yaml")
	if err := os.WriteFile(path, []byte("one_way_follow_bonus: -5\n"), 0o600); err != nil {
		t.Fatalf("write scoring file: %v", err)
	}
	if _, err := LoadScoringParams(path); err == nil {
		t.Fatal("expected a negative bonus to be rejected")
	}
}
