package protocol

// Wire shapes for the built-in action kinds. These are the canonical
// encode-side structs; the gateway's rules decode loosely so they can
// report missing or mistyped fields instead of failing the unmarshal.

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

type VoxelChange struct {
	Position   Position `json:"position"`
	OldBlockID int      `json:"oldBlockId"`
	NewBlockID int      `json:"newBlockId"`
	Timestamp  int64    `json:"timestamp"`
	PlayerID   string   `json:"playerId"`
}

type PlayerAction struct {
	Type      string         `json:"type"`
	PlayerID  string         `json:"playerId"`
	Timestamp int64          `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

type ItemDelta struct {
	ItemID   string  `json:"itemId"`
	Quantity float64 `json:"quantity"`
}

type InventoryChange struct {
	Action string      `json:"action"`
	Items  []ItemDelta `json:"items"`
}

type ChatMessage struct {
	Content string `json:"content"`
	Channel string `json:"channel"`
}

type TradeAction struct {
	TradeID string      `json:"tradeId"`
	Action  string      `json:"action"`
	Items   []ItemDelta `json:"items,omitempty"`
}
