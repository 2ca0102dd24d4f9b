package gate

import (
	"encoding/json"
	"fmt"
)

const (
	blockIDMin = 0
	blockIDMax = 255
)

// VoxelChangeRule checks a single world-edit: structural shape, world
// bounds per axis, integer coordinates, and block ids in [0,255].
// Violations accumulate; nothing stops at the first failure.
type VoxelChangeRule struct {
	// Valid X/Z range is [-BoundaryR, BoundaryR]; Y is [0, Height).
	BoundaryR int
	Height    int
}

func (r VoxelChangeRule) Validate(payload json.RawMessage, ctx *Context) Result {
	res := OK()
	m, ok := decodeObject(payload)
	if !ok {
		res.AddError("payload must be an object")
		return res
	}

	r.checkPosition(m, &res)
	r.checkBlockID(m, "oldBlockId", &res)
	r.checkBlockID(m, "newBlockId", &res)

	if _, ok := asNumber(m["timestamp"]); !ok {
		res.AddError("timestamp must be a number")
	}
	if s, ok := asString(m["playerId"]); !ok || s == "" {
		res.AddError("playerId must be a non-empty string")
	}
	return res
}

func (r VoxelChangeRule) checkPosition(m map[string]any, res *Result) {
	pos, ok := asObject(m["position"])
	if !ok {
		res.AddError("position must be an object with x, y and z")
		return
	}
	r.checkAxis(pos, "x", -r.BoundaryR, r.BoundaryR, res)
	r.checkAxis(pos, "y", 0, r.Height-1, res)
	r.checkAxis(pos, "z", -r.BoundaryR, r.BoundaryR, res)
}

func (r VoxelChangeRule) checkAxis(pos map[string]any, axis string, lo, hi int, res *Result) {
	f, ok := asNumber(pos[axis])
	if !ok {
		res.AddError(fmt.Sprintf("position.%s must be a number", axis))
		return
	}
	if !isIntegral(f) {
		res.AddError(fmt.Sprintf("position.%s must be an integer", axis))
		return
	}
	v := int(f)
	if v < lo || v > hi {
		res.AddError(fmt.Sprintf("position.%s outside valid range [%d, %d]", axis, lo, hi))
	}
}

func (r VoxelChangeRule) checkBlockID(m map[string]any, field string, res *Result) {
	f, ok := asNumber(m[field])
	if !ok {
		res.AddError(fmt.Sprintf("%s must be a number", field))
		return
	}
	if !isIntegral(f) || f < blockIDMin || f > blockIDMax {
		res.AddError(fmt.Sprintf("%s must be an integer between %d and %d", field, blockIDMin, blockIDMax))
	}
}
