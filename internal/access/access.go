// Package access holds the role policy shared by the navigation endpoint,
// the view resolver and the API permission middleware.
package access

import (
	"strings"

	"github.com/jwalitptl/hms-api/internal/model"
)

const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
	RootPath      = "/"
)

var allRoles = []model.Role{model.RoleAdmin, model.RoleDoctor, model.RoleReceptionist}

// routes is the view table in sidebar order.
var routes = []model.NavItem{
	{Path: DashboardPath, Label: "Dashboard", Roles: allRoles},
	{Path: "/dashboard/users", Label: "User Management", Roles: []model.Role{model.RoleAdmin}},
	{Path: "/dashboard/patients", Label: "Patients", Roles: []model.Role{model.RoleAdmin}},
	{Path: "/dashboard/all-appointments", Label: "All Appointments", Roles: []model.Role{model.RoleAdmin}},
	{Path: "/dashboard/register-patient", Label: "Register Patient", Roles: []model.Role{model.RoleReceptionist}},
	{Path: "/dashboard/queue", Label: "Patient Queue", Roles: []model.Role{model.RoleReceptionist}},
	{Path: "/dashboard/appointments", Label: "Appointments", Roles: []model.Role{model.RoleDoctor, model.RoleReceptionist}},
	{Path: "/dashboard/treatments", Label: "Treatments", Roles: []model.Role{model.RoleDoctor}},
	{Path: "/dashboard/payments", Label: "Payments", Roles: []model.Role{model.RoleReceptionist}},
	{Path: "/dashboard/profile", Label: "My Profile", Roles: allRoles},
}

// Routes returns a copy of the full view table.
func Routes() []model.NavItem {
	out := make([]model.NavItem, len(routes))
	copy(out, routes)
	return out
}

// Navigation returns the views a role may open, in table order.
func Navigation(role model.Role) []model.NavItem {
	out := make([]model.NavItem, 0, len(routes))
	for _, r := range routes {
		if containsRole(r.Roles, role) {
			out = append(out, r)
		}
	}
	return out
}

// HasAccess reports whether user is signed in and, when roles are given,
// holds one of them.
func HasAccess(user *model.User, roles ...model.Role) bool {
	if user == nil {
		return false
	}
	return len(roles) == 0 || containsRole(roles, user.Role)
}

// Resolve decides what a visitor sees at path. user is nil for anonymous
// visitors.
func Resolve(path string, user *model.User) model.AccessDecision {
	path = normalize(path)
	d := model.AccessDecision{Path: path}

	switch path {
	case RootPath:
		d.Redirect = LoginPath
		return d
	case LoginPath:
		if user != nil {
			d.Redirect = DashboardPath
			return d
		}
		d.Allowed = true
		return d
	}

	route, ok := lookup(path)
	if !ok {
		d.NotFound = true
		return d
	}
	if user == nil {
		d.Redirect = LoginPath
		return d
	}
	if !HasAccess(user, route.Roles...) {
		d.Redirect = DashboardPath
		return d
	}
	d.Allowed = true
	return d
}

func lookup(path string) (model.NavItem, bool) {
	for _, r := range routes {
		if r.Path == path {
			return r, true
		}
	}
	return model.NavItem{}, false
}

func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return RootPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = RootPath
		}
	}
	return path
}

func containsRole(roles []model.Role, role model.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
