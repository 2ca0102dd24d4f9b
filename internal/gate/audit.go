package gate

import "time"

// AuditEntry records one gateway verdict for the audit sinks. Rejected
// actions are the interesting rows, but accepted ones are recorded too
// so throughput per (player, kind) can be reconstructed offline.
type AuditEntry struct {
	ID       string    `json:"id"`
	At       time.Time `json:"at"`
	PlayerID string    `json:"player_id"`
	Kind     string    `json:"kind"`
	OK       bool      `json:"ok"`
	Code     string    `json:"code,omitempty"`
	Errors   []string  `json:"errors,omitempty"`
	Warnings []string  `json:"warnings,omitempty"`
}
