package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "STARTING_BALANCE", "MAX_HISTORY_PER_USER", "SESSION_TTL", "REDIS_DB"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != ServerPort {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.StartingBalance != DefaultStartingBalance {
		t.Errorf("StartingBalance = %v", cfg.StartingBalance)
	}
	if cfg.MaxHistoryPerUser != DefaultMaxHistoryPerUser {
		t.Errorf("MaxHistoryPerUser = %d", cfg.MaxHistoryPerUser)
	}
	if cfg.SessionTTL != DefaultSessionTTL {
		t.Errorf("SessionTTL = %s", cfg.SessionTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("STARTING_BALANCE", "250.5")
	t.Setenv("MAX_HISTORY_PER_USER", "10")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := Load()
	if cfg.Port != "9000" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.StartingBalance != 250.5 {
		t.Errorf("StartingBalance = %v", cfg.StartingBalance)
	}
	if cfg.MaxHistoryPerUser != 10 {
		t.Errorf("MaxHistoryPerUser = %d", cfg.MaxHistoryPerUser)
	}
	if cfg.SessionTTL != time.Hour {
		t.Errorf("SessionTTL = %s", cfg.SessionTTL)
	}
	if cfg.RedisDB != 0 {
		t.Errorf("RedisDB fallback = %d", cfg.RedisDB)
	}
}
