package gate

import (
	"encoding/json"
	"fmt"
)

// InventoryChangeRule checks an inventory mutation: an action string
// plus an item list capped at MaxItems. Every offending item reports
// its own violation, tagged with its index.
type InventoryChangeRule struct {
	MaxItems int
}

func (r InventoryChangeRule) Validate(payload json.RawMessage, ctx *Context) Result {
	res := OK()
	m, ok := decodeObject(payload)
	if !ok {
		res.AddError("payload must be an object")
		return res
	}

	if s, ok := asString(m["action"]); !ok || s == "" {
		res.AddError("action must be a non-empty string")
	}

	items, ok := asList(m["items"])
	if !ok {
		res.AddError("items must be a list")
		return res
	}
	if len(items) > r.MaxItems {
		res.AddError(fmt.Sprintf("items cannot exceed %d entries", r.MaxItems))
	}
	checkItemEntries(items, &res)
	return res
}

// checkItemEntries validates itemId/quantity pairs; shared with the
// trade rule, which carries the same item shape.
func checkItemEntries(items []any, res *Result) {
	for i, raw := range items {
		item, ok := asObject(raw)
		if !ok {
			res.AddError(fmt.Sprintf("Item %d: must be an object", i))
			continue
		}
		if s, ok := asString(item["itemId"]); !ok || s == "" {
			res.AddError(fmt.Sprintf("Item %d: itemId must be a non-empty string", i))
		}
		if q, ok := asNumber(item["quantity"]); !ok || q <= 0 {
			res.AddError(fmt.Sprintf("Item %d: quantity must be a positive number", i))
		}
	}
}
