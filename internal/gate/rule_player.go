package gate

import "encoding/json"

// PlayerActionRule checks the generic player-action envelope and, when
// a session context is available, binds the payload to the session's
// identity so one connection cannot act for another player.
type PlayerActionRule struct{}

func (PlayerActionRule) Validate(payload json.RawMessage, ctx *Context) Result {
	res := OK()
	m, ok := decodeObject(payload)
	if !ok {
		res.AddError("payload must be an object")
		return res
	}

	if s, ok := asString(m["type"]); !ok || s == "" {
		res.AddError("type must be a non-empty string")
	}
	playerID, hasPlayer := asString(m["playerId"])
	if !hasPlayer || playerID == "" {
		res.AddError("playerId must be a non-empty string")
	}
	if _, ok := asNumber(m["timestamp"]); !ok {
		res.AddError("timestamp must be a number")
	}

	if ctx != nil && ctx.PlayerID != "" && hasPlayer && playerID != "" && playerID != ctx.PlayerID {
		res.AddError("Cannot perform actions for another player")
	}
	return res
}
