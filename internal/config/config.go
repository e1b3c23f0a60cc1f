// Package config defines the core's runtime configuration and how it is
// loaded: a struct of defaults, a generic mapstructure-based decoder for
// loading overrides from a plain map (a parsed file, an env bridge, a
// Nacos payload), and an optional Nacos-backed watcher that swaps the
// active config atomically when it changes.
package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// RateLimitConfig configures the token bucket every session is rate
// limited through.
type RateLimitConfig struct {
	CapacityBytes  int64 `json:"capacity_bytes" mapstructure:"capacity_bytes"`
	RefillPerSec   int64 `json:"refill_per_sec" mapstructure:"refill_per_sec"`
}

// SessionConfig configures session lifecycle defaults.
type SessionConfig struct {
	SendQueueLimitBytes int64  `json:"send_queue_limit_bytes" mapstructure:"send_queue_limit_bytes"`
	OverflowPolicy      string `json:"overflow_policy" mapstructure:"overflow_policy"` // drop_newest|drop_oldest|disconnect
	IdleTimeoutSec      int64  `json:"idle_timeout_sec" mapstructure:"idle_timeout_sec"`
	HeartbeatIntervalSec int64 `json:"heartbeat_interval_sec" mapstructure:"heartbeat_interval_sec"`
}

// TokenConfig configures the opaque bearer tokens issued at login.
type TokenConfig struct {
	TTLSec int64  `json:"ttl_sec" mapstructure:"ttl_sec"`
	Secret string `json:"secret" mapstructure:"secret"`
}

// PartyConfig configures party invite lifetime.
type PartyConfig struct {
	InviteTTLSec int64 `json:"invite_ttl_sec" mapstructure:"invite_ttl_sec"`
}

// MatchQueueConfig configures matchmaking window behavior.
type MatchQueueConfig struct {
	MMRWindow         int64 `json:"mmr_window" mapstructure:"mmr_window"`
	WindowStepPerSec  int64 `json:"window_step_per_sec" mapstructure:"window_step_per_sec"`
	MaxWaitSec        int64 `json:"max_wait_sec" mapstructure:"max_wait_sec"`
}

// InventoryConfig selects and configures the inventory storage backend.
type InventoryConfig struct {
	Backend string `json:"backend" mapstructure:"backend"` // memory|postgres|mongo|redis_cached
}

// ProtocolConfig configures the accepted protocol version window.
type ProtocolConfig struct {
	MinVersion uint16 `json:"min_version" mapstructure:"min_version"`
	MaxVersion uint16 `json:"max_version" mapstructure:"max_version"`
}

// AppConfig is the root configuration struct decoded from a loaded payload
// and merged over defaults.
type AppConfig struct {
	NodeID     int64            `json:"node_id" mapstructure:"node_id"`
	Protocol   ProtocolConfig   `json:"protocol" mapstructure:"protocol"`
	RateLimit  RateLimitConfig  `json:"rate_limit" mapstructure:"rate_limit"`
	Session    SessionConfig    `json:"session" mapstructure:"session"`
	Token      TokenConfig      `json:"token" mapstructure:"token"`
	Party      PartyConfig      `json:"party" mapstructure:"party"`
	MatchQueue MatchQueueConfig `json:"match_queue" mapstructure:"match_queue"`
	Inventory  InventoryConfig  `json:"inventory" mapstructure:"inventory"`
}

// Default returns the baseline configuration used when no override source
// is present.
func Default() *AppConfig {
	return &AppConfig{
		NodeID: 1,
		Protocol: ProtocolConfig{
			MinVersion: 1,
			MaxVersion: 3,
		},
		RateLimit: RateLimitConfig{
			CapacityBytes: 1 << 20,
			RefillPerSec:  1 << 18,
		},
		Session: SessionConfig{
			SendQueueLimitBytes:  1 << 20,
			OverflowPolicy:       "drop_oldest",
			IdleTimeoutSec:       60,
			HeartbeatIntervalSec: 20,
		},
		Token: TokenConfig{
			TTLSec: 300,
			Secret: "dev-secret-change-me",
		},
		Party: PartyConfig{
			InviteTTLSec: 300,
		},
		MatchQueue: MatchQueueConfig{
			MMRWindow:        50,
			WindowStepPerSec: 10,
			MaxWaitSec:       120,
		},
		Inventory: InventoryConfig{
			Backend: "memory",
		},
	}
}

// Decode overlays payload (a generic map decoded from JSON/YAML/Nacos) onto
// a copy of the defaults, the way the teacher's decode package overlays a
// structpb.Struct onto a target struct via mapstructure.
func Decode(payload map[string]any) (*AppConfig, error) {
	out := *Default()
	decCfg := &mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		Result:           &out,
		WeaklyTypedInput: true,
	}
	dec, err := mapstructure.NewDecoder(decCfg)
	if err != nil {
		return nil, fmt.Errorf("new config decoder: %w", err)
	}
	if err := dec.Decode(payload); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &out, nil
}
