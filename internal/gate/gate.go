package gate

import (
	"encoding/json"
	"fmt"
	"strings"

	"voxelgate.io/internal/gate/rates"
	"voxelgate.io/internal/protocol"
	"voxelgate.io/internal/tuning"
)

const (
	msgRateLimitExceeded   = "Rate limit exceeded"
	msgRateLimitApproached = "Approaching rate limit"
)

// Gateway is the last check before a client action may touch
// authoritative state. It resolves the rule for the action kind,
// merges the rule's verdict with the rate-limit band, and exposes the
// single-call, batch and pre-validation entry points the transport
// layer drives.
type Gateway struct {
	registry *Registry
	limiter  *rates.Limiter
	limits   tuning.RateLimits
}

// New builds a gateway with the five built-in rules registered. The
// limiter is injected so the host controls its lifetime and tests can
// run isolated instances.
func New(tune tuning.Tuning, limiter *rates.Limiter) *Gateway {
	g := &Gateway{
		registry: NewRegistry(),
		limiter:  limiter,
		limits:   tune.RateLimits,
	}
	g.registry.Add(protocol.KindVoxelChange, VoxelChangeRule{BoundaryR: tune.WorldBoundaryR, Height: tune.WorldHeight})
	g.registry.Add(protocol.KindPlayerAction, PlayerActionRule{})
	g.registry.Add(protocol.KindInventoryChange, InventoryChangeRule{MaxItems: tune.InventoryMaxItems})
	g.registry.Add(protocol.KindChatMessage, ChatMessageRule{MaxLen: tune.ChatMaxLen})
	g.registry.Add(protocol.KindTradeAction, TradeActionRule{})
	return g
}

// AddRule registers or replaces the rule for a kind. A custom rule
// shadows the built-in until another registration replaces it.
func (g *Gateway) AddRule(kind string, rule Rule) {
	g.registry.Add(kind, rule)
}

// Validate runs the registered rule for kind against payload and folds
// in the rate-limit band from ctx.RateCounts when a context is given.
//
// Unrecognized kinds pass clean. That is deliberate fail-open: new
// action kinds roll out ahead of gateway rules, and blocking
// unclassified traffic would brick every older deployment in the
// fleet. Null payloads for known kinds are always rejected.
func (g *Gateway) Validate(kind string, payload json.RawMessage, ctx *Context) Result {
	rule, ok := g.registry.Lookup(kind)
	if !ok {
		return OK()
	}
	if isNullPayload(payload) {
		res := OK()
		res.AddError("payload is required")
		return res
	}

	res := rule.Validate(payload, ctx)
	if ctx != nil && ctx.RateCounts != nil {
		warn, max := g.limits.Thresholds(kind)
		switch rates.Classify(ctx.RateCounts[kind], warn, max) {
		case rates.BandReject:
			res.AddError(msgRateLimitExceeded)
		case rates.BandWarn:
			res.AddWarning(msgRateLimitApproached)
		}
	}
	return res
}

// ValidateVoxelChanges validates every element of a batched world-edit
// independently, in input order. Each failing element's messages are
// prefixed with its zero-based index; the batch passes only when every
// element does.
func (g *Gateway) ValidateVoxelChanges(changes []json.RawMessage, ctx *Context) Result {
	res := OK()
	for i, change := range changes {
		one := g.Validate(protocol.KindVoxelChange, change, ctx)
		res.Absorb(fmt.Sprintf("Change %d: ", i), one)
	}
	return res
}

// PreValidateAction is the compact transport-side entry point: bump
// the counter for (playerID, kind), reject on threshold breach, then
// structurally re-validate the payload. The count observed by the band
// check is the one accrued before this call, so with reject threshold
// T the first T submissions pass and submission T+1 fails.
func (g *Gateway) PreValidateAction(kind string, payload json.RawMessage, playerID string) (bool, string) {
	count := g.limiter.Bump(playerID, kind)

	warn, max := g.limits.Thresholds(kind)
	if rates.Classify(count-1, warn, max) == rates.BandReject {
		return false, msgRateLimitExceeded
	}

	res := g.Validate(kind, payload, nil)
	if !res.Valid {
		return false, strings.Join(res.Errors, "; ")
	}
	return true, ""
}

// IsRateLimited is a read-only check of the player's counter for kind
// against threshold. It never bumps.
func (g *Gateway) IsRateLimited(playerID, kind string, threshold int) bool {
	return g.limiter.IsRateLimited(playerID, kind, threshold)
}

// RateCounts snapshots the player's counters for building a Context.
func (g *Gateway) RateCounts(playerID string) map[string]int {
	return g.limiter.Counts(playerID)
}

// CleanupRateLimits purges idle rate-limit entries. The host calls it
// periodically; without it the counter set grows with every distinct
// (player, kind) pair seen over the process lifetime.
func (g *Gateway) CleanupRateLimits() int {
	return g.limiter.Cleanup()
}
