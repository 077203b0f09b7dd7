package nav

import "strings"

type Route struct {
	Name   string            `json:"name"`
	Params map[string]string `json:"params,omitempty"`
}

const RouteNotFound = "not_found"

var routes = []struct {
	name    string
	pattern string
}{
	{"dashboard", "/"},
	{"auth", "/auth"},
	{"policies", "/policies"},
	{"policy_new", "/policies/new"},
	{"policy_edit", "/policies/:id/edit"},
	{"policy_detail", "/policies/:id"},
	{"claims", "/claims"},
	{"logs", "/logs"},
	{"users", "/users"},
	{"backup", "/backup"},
}

// Match resolves a client path. Static segments win over parameters because
// literal routes come first.
func Match(path string) Route {
	parts := split(path)
	for _, r := range routes {
		if params, ok := matchPattern(split(r.pattern), parts); ok {
			return Route{Name: r.name, Params: params}
		}
	}
	return Route{Name: RouteNotFound}
}

func matchPattern(pattern, parts []string) (map[string]string, bool) {
	if len(pattern) != len(parts) {
		return nil, false
	}
	var params map[string]string
	for i, seg := range pattern {
		if strings.HasPrefix(seg, ":") {
			if params == nil {
				params = map[string]string{}
			}
			params[seg[1:]] = parts[i]
			continue
		}
		if seg != parts[i] {
			return nil, false
		}
	}
	return params, true
}

func split(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
