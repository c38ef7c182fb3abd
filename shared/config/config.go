// shared/config/config.go
package config

import (
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// CommonConfig holds configuration fields that are shared across both services.
type CommonConfig struct {
	RedisAddrs              []string      `envconfig:"REDIS_ADDRS" default:"localhost:6379"`
	RedisPassword           string        `envconfig:"REDIS_PASSWORD"`
	HeartbeatInterval       time.Duration `envconfig:"SERVICE_HEARTBEAT_INTERVAL" default:"5s"`
	HeartbeatTTL            time.Duration `envconfig:"SERVICE_HEARTBEAT_TTL" default:"15s"`
	RegistryCleanupInterval time.Duration `envconfig:"SERVICE_REGISTRY_CLEANUP_INTERVAL" default:"30s"`
	ServiceIP               string        `envconfig:"POD_IP" default:"0.0.0.0"` // advertised for registration
	ServicePort             int           `ignored:"true"`                       // derived from ListenAddr
	AdminToken              string        `envconfig:"ADMIN_TOKEN"`              // shared secret for privileged calls
}

// DraftServiceConfig holds configuration specific to the draft-service.
type DraftServiceConfig struct {
	CommonConfig
	ListenAddr               string        `envconfig:"DRAFT_SERVICE_LISTEN_ADDR" default:":8081"`
	MongoDBConnStr           string        `envconfig:"MONGODB_CONN_STR" default:"mongodb://localhost:27017"`
	MongoDBDatabase          string        `envconfig:"MONGODB_DATABASE" default:"raon_draft"`
	MongoDBPlayersCollection string        `envconfig:"MONGODB_PLAYERS_COLLECTION" default:"players"`
	MongoDBTeamsCollection   string        `envconfig:"MONGODB_TEAMS_COLLECTION" default:"teams"`
	MongoDBSystemCollection  string        `envconfig:"MONGODB_SYSTEM_COLLECTION" default:"system"`
	MongoDBVotesCollection   string        `envconfig:"MONGODB_VOTES_COLLECTION" default:"poll_votes"`
	DefaultLimit             int           `envconfig:"DRAFT_DEFAULT_LIMIT" default:"240"`
	RatingWindow             int           `envconfig:"RATING_WINDOW" default:"6"`
	RequestTimeout           time.Duration `envconfig:"DRAFT_REQUEST_TIMEOUT" default:"10s"`
	RecoverOnStart           bool          `envconfig:"DRAFT_RECOVER_ON_START" default:"true"`
}

// PollServiceConfig holds configuration specific to the poll-service.
type PollServiceConfig struct {
	CommonConfig
	ListenAddr       string        `envconfig:"POLL_SERVICE_LISTEN_ADDR" default:":8082"`
	DraftServiceURL  string        `envconfig:"DRAFT_SERVICE_URL" default:"http://draft-service:8081"`
	MatchupThreshold int           `envconfig:"MATCHUP_THRESHOLD" default:"250"`
	MatchupInterval  time.Duration `envconfig:"MATCHUP_INTERVAL" default:"10m"`
	CheckInterval    time.Duration `envconfig:"MATCHUP_CHECK_INTERVAL" default:"30s"`
	RequestTimeout   time.Duration `envconfig:"POLL_REQUEST_TIMEOUT" default:"10s"`
	SlotBackend      string        `envconfig:"POLL_SLOT_BACKEND" default:"redis"` // redis or memory
	TelegramToken    string        `envconfig:"TELEGRAM_TOKEN"`
	TelegramChatID   int64         `envconfig:"TELEGRAM_CHAT_ID"`
}

// extractPort extracts the numeric port from a listen address (e.g., ":8082" -> 8082, "0.0.0.0:8082" -> 8082)
func extractPort(listenAddr string) (int, error) {
	_, portStr, err := net.SplitHostPort(listenAddr)
	if err != nil {
		if strings.HasPrefix(listenAddr, ":") {
			portStr = strings.TrimPrefix(listenAddr, ":")
		} else {
			return 0, fmt.Errorf("invalid ListenAddr format for port extraction: %w", err)
		}
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, fmt.Errorf("invalid port number '%s': %w", portStr, err)
	}
	return port, nil
}

func (c *CommonConfig) validate() error {
	if len(c.RedisAddrs) == 0 {
		return fmt.Errorf("REDIS_ADDRS must list at least one address")
	}
	for i, addr := range c.RedisAddrs {
		c.RedisAddrs[i] = strings.TrimSpace(addr)
	}
	if c.HeartbeatInterval <= 0 || c.HeartbeatTTL < c.HeartbeatInterval {
		return fmt.Errorf("SERVICE_HEARTBEAT_TTL (%v) must be at least SERVICE_HEARTBEAT_INTERVAL (%v)", c.HeartbeatTTL, c.HeartbeatInterval)
	}
	if c.AdminToken == "" {
		log.Println("WARNING: ADMIN_TOKEN not set, privileged endpoints are disabled")
	}
	return nil
}

// LoadDraftServiceConfig loads configuration for the draft-service.
func LoadDraftServiceConfig() (*DraftServiceConfig, error) {
	var cfg DraftServiceConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load draft-service config: %w", err)
	}
	if err := cfg.CommonConfig.validate(); err != nil {
		return nil, err
	}

	var err error
	cfg.ServicePort, err = extractPort(cfg.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to extract port from DRAFT_SERVICE_LISTEN_ADDR '%s': %w", cfg.ListenAddr, err)
	}

	if cfg.RatingWindow != 3 && cfg.RatingWindow != 6 {
		return nil, fmt.Errorf("RATING_WINDOW must be 3 or 6 (got %d)", cfg.RatingWindow)
	}
	if cfg.DefaultLimit < 0 {
		return nil, fmt.Errorf("DRAFT_DEFAULT_LIMIT must be non-negative (got %d)", cfg.DefaultLimit)
	}
	return &cfg, nil
}

// LoadPollServiceConfig loads configuration for the poll-service.
func LoadPollServiceConfig() (*PollServiceConfig, error) {
	var cfg PollServiceConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load poll-service config: %w", err)
	}
	if err := cfg.CommonConfig.validate(); err != nil {
		return nil, err
	}

	var err error
	cfg.ServicePort, err = extractPort(cfg.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to extract port from POLL_SERVICE_LISTEN_ADDR '%s': %w", cfg.ListenAddr, err)
	}

	if cfg.MatchupInterval <= 0 {
		return nil, fmt.Errorf("MATCHUP_INTERVAL must be positive (got %v)", cfg.MatchupInterval)
	}
	if cfg.CheckInterval <= 0 || cfg.CheckInterval > cfg.MatchupInterval {
		return nil, fmt.Errorf("MATCHUP_CHECK_INTERVAL (%v) must be positive and no longer than MATCHUP_INTERVAL (%v)", cfg.CheckInterval, cfg.MatchupInterval)
	}
	if cfg.SlotBackend != "redis" && cfg.SlotBackend != "memory" {
		return nil, fmt.Errorf("POLL_SLOT_BACKEND must be redis or memory (got %q)", cfg.SlotBackend)
	}
	if cfg.TelegramToken != "" && cfg.TelegramChatID == 0 {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_TOKEN is set")
	}
	return &cfg, nil
}
