package gate

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Phrases that usually mean someone is fishing for exploits or cheat
// tooling in chat. Matching one yields a warning, never an error: the
// message still goes through and moderation decides what to do with it.
var suspiciousChatPhrases = []string{
	"dupe glitch",
	"duplication glitch",
	"item generator",
	"speed hack",
	"speedhack",
	"x-ray",
	"xray",
	"free op",
}

// ChatMessageRule checks a chat message: non-empty after trimming and
// at most MaxLen characters.
type ChatMessageRule struct {
	MaxLen int
}

func (r ChatMessageRule) Validate(payload json.RawMessage, ctx *Context) Result {
	res := OK()
	m, ok := decodeObject(payload)
	if !ok {
		res.AddError("payload must be an object")
		return res
	}

	content, ok := asString(m["content"])
	if !ok {
		res.AddError("content must be a string")
		return res
	}
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		res.AddError("content cannot be empty")
	}
	if len([]rune(trimmed)) > r.MaxLen {
		res.AddError(fmt.Sprintf("content cannot exceed %d characters", r.MaxLen))
	}

	if raw, present := m["channel"]; present && raw != nil {
		if s, ok := asString(raw); !ok || s == "" {
			res.AddError("channel must be a non-empty string")
		}
	}

	lower := strings.ToLower(trimmed)
	for _, phrase := range suspiciousChatPhrases {
		if strings.Contains(lower, phrase) {
			res.AddWarning("content may be soliciting exploits or cheats")
			break
		}
	}
	return res
}
