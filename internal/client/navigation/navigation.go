// Package navigation holds the fixed menu of the campus client and filters
// it by the signed-in user's role.
package navigation

import (
	"github.com/dmitrijs2005/scams/internal/client/models"
	"github.com/dmitrijs2005/scams/internal/roles"
)

type Link struct {
	Title        string
	Path         string
	Icon         string
	AllowedRoles []roles.Role
}

// Allows reports whether r may follow the link.
func (l Link) Allows(r roles.Role) bool {
	return roles.In(r, l.AllowedRoles...)
}

var (
	everyone   = roles.All
	registered = roles.Except(roles.Guest)
)

// Links is the menu in display order.
var Links = []Link{
	{Title: "Dashboard", Path: "/dashboard", Icon: "home", AllowedRoles: everyone},
	{Title: "Find Room", Path: "/room-finder", Icon: "search", AllowedRoles: everyone},
	{Title: "Room Schedule", Path: "/schedule", Icon: "calendar", AllowedRoles: everyone},
	{Title: "Book Room", Path: "/booking", Icon: "book-open", AllowedRoles: []roles.Role{roles.Lecturer, roles.Staff, roles.Admin}},
	{Title: "Security Panel", Path: "/security", Icon: "lock", AllowedRoles: []roles.Role{roles.Security, roles.Admin}},
	{Title: "Reports", Path: "/reports", Icon: "bar-chart", AllowedRoles: []roles.Role{roles.Staff, roles.Admin}},
	{Title: "User Management", Path: "/users", Icon: "users", AllowedRoles: []roles.Role{roles.Admin}},
	{Title: "Notifications", Path: "/notifications", Icon: "bell", AllowedRoles: registered},
	{Title: "Profile", Path: "/profile", Icon: "user", AllowedRoles: everyone},
	{Title: "Settings", Path: "/settings", Icon: "settings", AllowedRoles: registered},
}

// Filter returns the links the identity may see, in menu order. A nil
// identity sees nothing.
func Filter(identity *models.Identity) []Link {
	if identity == nil {
		return nil
	}
	out := make([]Link, 0, len(Links))
	for _, l := range Links {
		if l.Allows(identity.Role) {
			out = append(out, l)
		}
	}
	return out
}

// Lookup finds a link by path.
func Lookup(path string) (Link, bool) {
	for _, l := range Links {
		if l.Path == path {
			return l, true
		}
	}
	return Link{}, false
}
