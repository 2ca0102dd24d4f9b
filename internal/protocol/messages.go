package protocol

import "encoding/json"

// HELLO (client -> server)
type HelloMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	PlayerName      string     `json:"player_name"`
	Auth            *HelloAuth `json:"auth,omitempty"`
}

type HelloAuth struct {
	Token string `json:"token,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	SessionID       string `json:"session_id"`
	PlayerID        string `json:"player_id"`
}

// ACT (client -> server): one action submission. Payload shape depends
// on Kind; the gateway decodes it per registered rule. Batch carries
// multiple payloads of the same kind (currently voxel_change only).
type ActMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	ID              string            `json:"id"`
	Kind            string            `json:"kind"`
	Payload         json.RawMessage   `json:"payload,omitempty"`
	Batch           []json.RawMessage `json:"batch,omitempty"`
}

// ACK (server -> client): the gateway's verdict for one ACT.
type AckMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	AckFor          string   `json:"ack_for"`
	Ok              bool     `json:"ok"`
	Code            string   `json:"code,omitempty"`
	Errors          []string `json:"errors,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
}
