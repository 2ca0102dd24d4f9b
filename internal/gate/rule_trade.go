package gate

import "encoding/json"

// TradeActionRule checks one trade step: trade id and action are
// required, and any attached items follow the itemId/quantity shape.
// Step ordering is the trade protocol's concern, not the gateway's.
type TradeActionRule struct{}

func (TradeActionRule) Validate(payload json.RawMessage, ctx *Context) Result {
	res := OK()
	m, ok := decodeObject(payload)
	if !ok {
		res.AddError("payload must be an object")
		return res
	}

	if s, ok := asString(m["tradeId"]); !ok || s == "" {
		res.AddError("tradeId must be a non-empty string")
	}
	if s, ok := asString(m["action"]); !ok || s == "" {
		res.AddError("action must be a non-empty string")
	}

	if raw, present := m["items"]; present && raw != nil {
		items, ok := asList(raw)
		if !ok {
			res.AddError("items must be a list")
			return res
		}
		checkItemEntries(items, &res)
	}
	return res
}
