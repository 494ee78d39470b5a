// Package mask scrubs credentials from log output. The pipeline logs
// request and refresh activity, so raw bearer tokens, refresh tokens and
// passwords must never reach a log file.
package mask

import (
	"sync"
)

// Hook applies an ordered set of masking rules to log lines.
type Hook struct {
	mu    sync.RWMutex
	rules []*Rule
}

// NewHook creates a Hook with no rules.
func NewHook() *Hook {
	return &Hook{}
}

// NewCredentialHook creates a Hook preloaded with the builtin credential
// rules. This is what log.WithMask installs by default.
func NewCredentialHook() *Hook {
	h := &Hook{}
	h.Add(BuiltinRules()...)
	return h
}

// Add appends rules to the hook.
func (h *Hook) Add(rules ...*Rule) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, rule := range rules {
		if rule != nil {
			h.rules = append(h.rules, rule)
		}
	}
}

// Remove drops the named rule. Returns true when a rule was removed.
func (h *Hook) Remove(name string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, rule := range h.rules {
		if rule.Name == name {
			h.rules = append(h.rules[:i], h.rules[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of installed rules.
func (h *Hook) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rules)
}

// Apply runs every rule over s in insertion order.
func (h *Hook) Apply(s string) string {
	if s == "" {
		return s
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, rule := range h.rules {
		s = rule.Apply(s)
	}
	return s
}
