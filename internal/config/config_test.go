package config

import (
	"testing"
	"time"
)

func TestLoadRequiresSigningSecretAndAPIKey(t *testing.T) {
	configViper := NewViper()

	if _, err := Load(configViper); err == nil {
		t.Fatalf("expected error for missing signing secret")
	}

	configViper.Set("auth.signing_secret", "super-secret")
	if _, err := Load(configViper); err == nil {
		t.Fatalf("expected error for missing watchmode api key")
	}

	configViper.Set("watchmode.api_key", "key")
	cfg, err := Load(configViper)
	if err != nil {
		t.Fatalf("expected load to succeed: %v", err)
	}
	if cfg.HTTPAddress == "" || cfg.DatabasePath == "" {
		t.Fatalf("expected defaults to be applied: %+v", cfg)
	}
	if cfg.AccessTokenTTL != 2*time.Hour {
		t.Fatalf("unexpected access ttl %v", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 7*24*time.Hour {
		t.Fatalf("unexpected refresh ttl %v", cfg.RefreshTokenTTL)
	}
	if cfg.WatchModeBaseURL == "" {
		t.Fatalf("expected watchmode base url default")
	}
}

func TestLoadRejectsNonPositiveTTLs(t *testing.T) {
	configViper := NewViper()
	configViper.Set("auth.signing_secret", "super-secret")
	configViper.Set("watchmode.api_key", "key")
	configViper.Set("auth.access_ttl_minutes", 0)

	if _, err := Load(configViper); err == nil {
		t.Fatalf("expected error for non-positive access ttl")
	}
}
