package config

import (
	"testing"
	"time"
)

func TestExtractPort(t *testing.T) {
	tests := []struct {
		addr    string
		want    int
		wantErr bool
	}{
		{":8081", 8081, false},
		{"0.0.0.0:8082", 8082, false},
		{"localhost", 0, true},
		{":http", 0, true},
	}
	for _, tt := range tests {
		got, err := extractPort(tt.addr)
		if (err != nil) != tt.wantErr {
			t.Errorf("extractPort(%q) err = %v, wantErr %v", tt.addr, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("extractPort(%q) = %d, want %d", tt.addr, got, tt.want)
		}
	}
}

func TestLoadDraftServiceConfig_Defaults(t *testing.T) {
	t.Setenv("ADMIN_TOKEN", "secret")

	cfg, err := LoadDraftServiceConfig()
	if err != nil {
		t.Fatalf("LoadDraftServiceConfig err = %v", err)
	}
	if cfg.ServicePort != 8081 {
		t.Errorf("ServicePort = %d, want 8081", cfg.ServicePort)
	}
	if cfg.DefaultLimit != 240 {
		t.Errorf("DefaultLimit = %d, want 240", cfg.DefaultLimit)
	}
	if cfg.RatingWindow != 6 {
		t.Errorf("RatingWindow = %d, want 6", cfg.RatingWindow)
	}
	if cfg.HeartbeatInterval != 5*time.Second {
		t.Errorf("HeartbeatInterval = %v, want 5s", cfg.HeartbeatInterval)
	}
}

func TestLoadDraftServiceConfig_RejectsUnknownWindow(t *testing.T) {
	t.Setenv("RATING_WINDOW", "4")
	if _, err := LoadDraftServiceConfig(); err == nil {
		t.Error("expected error for RATING_WINDOW=4")
	}
}

func TestLoadPollServiceConfig(t *testing.T) {
	t.Setenv("REDIS_ADDRS", "redis-a:6379, redis-b:6379")
	t.Setenv("MATCHUP_INTERVAL", "5m")
	t.Setenv("MATCHUP_CHECK_INTERVAL", "15s")

	cfg, err := LoadPollServiceConfig()
	if err != nil {
		t.Fatalf("LoadPollServiceConfig err = %v", err)
	}
	if len(cfg.RedisAddrs) != 2 || cfg.RedisAddrs[1] != "redis-b:6379" {
		t.Errorf("RedisAddrs = %q", cfg.RedisAddrs)
	}
	if cfg.MatchupThreshold != 250 {
		t.Errorf("MatchupThreshold = %d, want 250", cfg.MatchupThreshold)
	}
	if cfg.MatchupInterval != 5*time.Minute || cfg.CheckInterval != 15*time.Second {
		t.Errorf("intervals = %v / %v", cfg.MatchupInterval, cfg.CheckInterval)
	}
}

func TestLoadPollServiceConfig_CheckLongerThanInterval(t *testing.T) {
	t.Setenv("MATCHUP_INTERVAL", "1m")
	t.Setenv("MATCHUP_CHECK_INTERVAL", "2m")
	if _, err := LoadPollServiceConfig(); err == nil {
		t.Error("expected error when check interval exceeds matchup interval")
	}
}

func TestLoadPollServiceConfig_TelegramNeedsChat(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	if _, err := LoadPollServiceConfig(); err == nil {
		t.Error("expected error when TELEGRAM_CHAT_ID is missing")
	}
}

func TestLoadPollServiceConfig_SlotBackend(t *testing.T) {
	t.Setenv("POLL_SLOT_BACKEND", "memcached")
	if _, err := LoadPollServiceConfig(); err == nil {
		t.Error("expected error for unknown POLL_SLOT_BACKEND")
	}
}
