package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/hms-api/internal/model"
)

func paths(items []model.NavItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Path
	}
	return out
}

func TestNavigationPerRole(t *testing.T) {
	assert.Equal(t, []string{
		"/dashboard", "/dashboard/users", "/dashboard/patients", "/dashboard/all-appointments", "/dashboard/profile",
	}, paths(Navigation(model.RoleAdmin)))

	assert.Equal(t, []string{
		"/dashboard", "/dashboard/appointments", "/dashboard/treatments", "/dashboard/profile",
	}, paths(Navigation(model.RoleDoctor)))

	assert.Equal(t, []string{
		"/dashboard", "/dashboard/register-patient", "/dashboard/queue", "/dashboard/appointments",
		"/dashboard/payments", "/dashboard/profile",
	}, paths(Navigation(model.RoleReceptionist)))

	assert.Empty(t, Navigation(model.Role("nurse")))
}

func TestHasAccess(t *testing.T) {
	doctor := &model.User{Role: model.RoleDoctor}

	assert.False(t, HasAccess(nil))
	assert.True(t, HasAccess(doctor))
	assert.True(t, HasAccess(doctor, model.RoleDoctor, model.RoleReceptionist))
	assert.False(t, HasAccess(doctor, model.RoleAdmin))
}

func TestResolve(t *testing.T) {
	admin := &model.User{Role: model.RoleAdmin}
	receptionist := &model.User{Role: model.RoleReceptionist}

	tests := []struct {
		name string
		path string
		user *model.User
		want model.AccessDecision
	}{
		{"root redirects to login", "/", nil, model.AccessDecision{Path: "/", Redirect: "/login"}},
		{"login is public", "/login", nil, model.AccessDecision{Path: "/login", Allowed: true}},
		{"signed in user leaves login", "/login", admin, model.AccessDecision{Path: "/login", Redirect: "/dashboard"}},
		{"anonymous on protected view", "/dashboard/queue", nil, model.AccessDecision{Path: "/dashboard/queue", Redirect: "/login"}},
		{"under privileged", "/dashboard/users", receptionist, model.AccessDecision{Path: "/dashboard/users", Redirect: "/dashboard"}},
		{"allowed", "/dashboard/queue/", receptionist, model.AccessDecision{Path: "/dashboard/queue", Allowed: true}},
		{"dashboard for everyone", "/dashboard", admin, model.AccessDecision{Path: "/dashboard", Allowed: true}},
		{"unknown path", "/nope", admin, model.AccessDecision{Path: "/nope", NotFound: true}},
		{"unknown dashboard child", "/dashboard/nope", nil, model.AccessDecision{Path: "/dashboard/nope", NotFound: true}},
		{"query string ignored", "/dashboard/payments?tab=today", receptionist, model.AccessDecision{Path: "/dashboard/payments", Allowed: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.path, tt.user))
		})
	}
}

func TestPermissions(t *testing.T) {
	assert.True(t, Allowed(model.RoleAdmin, PermUsersManage))
	assert.False(t, Allowed(model.RoleDoctor, PermUsersManage))
	assert.True(t, Allowed(model.RoleReceptionist, PermPatientsRegister))
	assert.False(t, Allowed(model.RoleAdmin, PermPatientsRegister))
	assert.True(t, Allowed(model.RoleDoctor, PermTreatmentsManage))
	assert.False(t, Allowed(model.RoleAdmin, Permission("unknown")))
	assert.ElementsMatch(t, []model.Role{model.RoleReceptionist, model.RoleDoctor}, RolesFor(PermQueueRead))
}

// Every sidebar view that a role can open has at least one API permission
// backing it, so the two policies do not drift apart.
func TestViewsAndPermissionsAgree(t *testing.T) {
	viewPerm := map[string]Permission{
		"/dashboard/users":            PermUsersManage,
		"/dashboard/patients":         PermPatientsRead,
		"/dashboard/all-appointments": PermAppointmentsStats,
		"/dashboard/register-patient": PermPatientsRegister,
		"/dashboard/queue":            PermQueueRead,
		"/dashboard/appointments":     PermAppointmentsRead,
		"/dashboard/treatments":       PermTreatmentsManage,
		"/dashboard/payments":         PermPaymentsManage,
	}
	for _, role := range model.Roles {
		for _, item := range Navigation(role) {
			perm, ok := viewPerm[item.Path]
			if !ok {
				continue
			}
			assert.True(t, Allowed(role, perm), "%s should hold %s for %s", role, perm, item.Path)
		}
	}
}
