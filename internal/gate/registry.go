package gate

import (
	"encoding/json"
	"sync"
)

// Rule validates one payload shape. Implementations must be safe for
// concurrent use; the gateway calls them from every connection.
type Rule interface {
	Validate(payload json.RawMessage, ctx *Context) Result
}

// RuleFunc adapts a plain function to Rule.
type RuleFunc func(payload json.RawMessage, ctx *Context) Result

func (f RuleFunc) Validate(payload json.RawMessage, ctx *Context) Result {
	return f(payload, ctx)
}

// Registry maps action kinds to rules. Registering a kind overwrites
// any previous rule for it, built-in or custom: last writer wins.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]Rule
}

func NewRegistry() *Registry {
	return &Registry{rules: map[string]Rule{}}
}

func (r *Registry) Add(kind string, rule Rule) {
	if kind == "" || rule == nil {
		return
	}
	r.mu.Lock()
	r.rules[kind] = rule
	r.mu.Unlock()
}

func (r *Registry) Lookup(kind string) (Rule, bool) {
	r.mu.RLock()
	rule, ok := r.rules[kind]
	r.mu.RUnlock()
	return rule, ok
}

func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.rules))
	for k := range r.rules {
		out = append(out, k)
	}
	return out
}
