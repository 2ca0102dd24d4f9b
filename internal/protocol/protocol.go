package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeHello   = "HELLO"
	TypeWelcome = "WELCOME"
	TypeAct     = "ACT"
	TypeAck     = "ACK"
)

// Action kinds. Every client-submitted action carries exactly one of
// these; the gateway dispatches on it.
const (
	KindVoxelChange     = "voxel_change"
	KindPlayerAction    = "player_action"
	KindInventoryChange = "inventory_change"
	KindChatMessage     = "chat_message"
	KindTradeAction     = "trade_action"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
