package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	// World bounds for voxel edits. X/Z are accepted within
	// [-boundary_r, boundary_r]; Y within [0, height).
	WorldBoundaryR int `yaml:"world_boundary_r"`
	WorldHeight    int `yaml:"world_height"`

	ChatMaxLen        int `yaml:"chat_max_len"`
	InventoryMaxItems int `yaml:"inventory_max_items"`

	RateLimits RateLimits `yaml:"rate_limits"`
}

// RateLimits carries the per-kind warn/reject bands plus the cleanup
// retention window. A counter at or above Max rejects; at or above
// Warn (but below Max) it still passes with a warning.
type RateLimits struct {
	VoxelChangeWarn int `yaml:"voxel_change_warn"`
	VoxelChangeMax  int `yaml:"voxel_change_max"`

	PlayerActionWarn int `yaml:"player_action_warn"`
	PlayerActionMax  int `yaml:"player_action_max"`

	InventoryChangeWarn int `yaml:"inventory_change_warn"`
	InventoryChangeMax  int `yaml:"inventory_change_max"`

	ChatMessageWarn int `yaml:"chat_message_warn"`
	ChatMessageMax  int `yaml:"chat_message_max"`

	TradeActionWarn int `yaml:"trade_action_warn"`
	TradeActionMax  int `yaml:"trade_action_max"`

	// Entries idle longer than this are eligible for cleanup.
	RetentionSeconds int `yaml:"retention_seconds"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.ApplyDefaults()
	return t, nil
}

func Defaults() Tuning {
	var t Tuning
	t.ApplyDefaults()
	return t
}

func (t *Tuning) ApplyDefaults() {
	if t.ProtocolVersion == "" {
		t.ProtocolVersion = "1.0"
	}
	if t.WorldBoundaryR <= 0 {
		t.WorldBoundaryR = 4000
	}
	if t.WorldHeight <= 0 {
		t.WorldHeight = 256
	}
	if t.ChatMaxLen <= 0 {
		t.ChatMaxLen = 500
	}
	if t.InventoryMaxItems <= 0 {
		t.InventoryMaxItems = 100
	}
	t.RateLimits.applyDefaults()
}

func (rl *RateLimits) applyDefaults() {
	if rl.VoxelChangeWarn <= 0 {
		rl.VoxelChangeWarn = 80
	}
	if rl.VoxelChangeMax <= 0 {
		rl.VoxelChangeMax = 100
	}
	if rl.PlayerActionWarn <= 0 {
		rl.PlayerActionWarn = 40
	}
	if rl.PlayerActionMax <= 0 {
		rl.PlayerActionMax = 50
	}
	if rl.InventoryChangeWarn <= 0 {
		rl.InventoryChangeWarn = 24
	}
	if rl.InventoryChangeMax <= 0 {
		rl.InventoryChangeMax = 30
	}
	if rl.ChatMessageWarn <= 0 {
		rl.ChatMessageWarn = 8
	}
	if rl.ChatMessageMax <= 0 {
		rl.ChatMessageMax = 10
	}
	if rl.TradeActionWarn <= 0 {
		rl.TradeActionWarn = 16
	}
	if rl.TradeActionMax <= 0 {
		rl.TradeActionMax = 20
	}
	if rl.RetentionSeconds <= 0 {
		rl.RetentionSeconds = 300
	}
}

// Thresholds returns the (warn, max) band for an action kind. Unknown
// kinds get the player_action band, the broadest general-purpose one.
func (rl RateLimits) Thresholds(kind string) (warn int, max int) {
	switch kind {
	case "voxel_change":
		return rl.VoxelChangeWarn, rl.VoxelChangeMax
	case "player_action":
		return rl.PlayerActionWarn, rl.PlayerActionMax
	case "inventory_change":
		return rl.InventoryChangeWarn, rl.InventoryChangeMax
	case "chat_message":
		return rl.ChatMessageWarn, rl.ChatMessageMax
	case "trade_action":
		return rl.TradeActionWarn, rl.TradeActionMax
	default:
		return rl.PlayerActionWarn, rl.PlayerActionMax
	}
}
