// Package policy holds the list filter, expiry badges and the create/edit form
// for insurance policies.
package policy

import (
	"strings"

	"policyvault/internal/model"
)

// Filter narrows an already-fetched policy list. Empty or "all" type and status
// match everything.
type Filter struct {
	Search string
	Type   string
	Status string
}

func (f Filter) Match(p model.Policy) bool {
	if !anyOrEqual(f.Type, string(p.Type())) || !anyOrEqual(f.Status, string(p.Status)) {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.PolicyNumber), term) ||
		strings.Contains(strings.ToLower(p.InsuredName), term) ||
		strings.Contains(strings.ToLower(p.InsurerName), term)
}

func (f Filter) Apply(policies []model.Policy) []model.Policy {
	out := make([]model.Policy, 0, len(policies))
	for _, p := range policies {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

func anyOrEqual(want, got string) bool {
	return want == "" || want == "all" || want == got
}
