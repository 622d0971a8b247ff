package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredSecrets(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_ACCESS_SECRET", "access-secret-32-chars-long!!!!!")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret-32-chars-long!!!!")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredSecrets(t)
	for _, key := range []string{"PORT", "JWT_ACCESS_TTL", "BCRYPT_COST"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.AccessTTL != 15*time.Minute {
		t.Errorf("AccessTTL = %v, want 15m", cfg.AccessTTL)
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
}

func TestLoad_MissingSecretFails(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "access-secret-32-chars-long!!!!!")
	t.Setenv("JWT_REFRESH_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail without JWT_REFRESH_SECRET")
	}
}

func TestLoad_MalformedDurationFails(t *testing.T) {
	setRequiredSecrets(t)
	t.Setenv("JWT_ACCESS_TTL", "fifteen minutes")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() should fail on a malformed duration")
	}
	if !strings.Contains(err.Error(), "JWT_ACCESS_TTL") {
		t.Errorf("error %q should name the offending variable", err)
	}
}

func TestLoad_MalformedIntFails(t *testing.T) {
	setRequiredSecrets(t)
	t.Setenv("BCRYPT_COST", "twelve")

	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail on a malformed integer")
	}
}

func TestLoad_BcryptCostOutOfRangeFails(t *testing.T) {
	setRequiredSecrets(t)

	// bcrypt maps an out-of-range cost to its own default, so zero must
	// be rejected here rather than silently meaning cost 10.
	for _, cost := range []string{"0", "3", "32"} {
		t.Setenv("BCRYPT_COST", cost)
		if _, err := Load(); err == nil {
			t.Errorf("Load() should reject BCRYPT_COST=%s", cost)
		}
	}
}
