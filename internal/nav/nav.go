// Package nav describes the client routes, the sidebar and the login guard.
package nav

import (
	"strings"

	"policyvault/internal/roles"
)

const LoginPath = "/auth"

type Item struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Icon   string `json:"icon"`
	Active bool   `json:"active"`
}

type Menu struct {
	Main  []Item `json:"main"`
	Admin []Item `json:"admin"`
}

var mainItems = []Item{
	{Title: "Dashboard", URL: "/", Icon: "layout-dashboard"},
	{Title: "Policies", URL: "/policies", Icon: "file-text"},
	{Title: "Claims", URL: "/claims", Icon: "shield"},
}

var adminItems = []Item{
	{Title: "User Management", URL: "/users", Icon: "users"},
	{Title: "Backup", URL: "/backup", Icon: "download"},
	{Title: "Logs", URL: "/logs", Icon: "file-spreadsheet"},
}

// Sidebar lists the entries visible with access, marking those active for
// current. Admin entries are only shown to super admins.
func Sidebar(access roles.Access, current string) Menu {
	menu := Menu{Main: mark(mainItems, current), Admin: []Item{}}
	if access.IsSuperAdmin {
		menu.Admin = mark(adminItems, current)
	}
	return menu
}

func mark(items []Item, current string) []Item {
	out := make([]Item, len(items))
	for i, item := range items {
		item.Active = IsActive(item.URL, current)
		out[i] = item
	}
	return out
}

// IsActive matches "/" exactly and every other entry by prefix.
func IsActive(url, current string) bool {
	if url == "/" {
		return current == "/"
	}
	return strings.HasPrefix(current, url)
}

// Guard returns where to send a visitor, or "" to stay. Nothing is decided
// while the session is still loading.
func Guard(path string, authenticated, loading bool) string {
	if loading || authenticated || path == LoginPath {
		return ""
	}
	return LoginPath
}
