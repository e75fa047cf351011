package access

import "github.com/jwalitptl/hms-api/internal/model"

// Permission names an API capability.
type Permission string

const (
	PermUsersManage        Permission = "users:manage"
	PermPatientsRead       Permission = "patients:read"
	PermPatientsUpdate     Permission = "patients:update"
	PermPatientsRegister   Permission = "patients:register"
	PermQueueRead          Permission = "queue:read"
	PermQueueUpdate        Permission = "queue:update"
	PermAppointmentsRead   Permission = "appointments:read"
	PermAppointmentsStats  Permission = "appointments:stats"
	PermAppointmentsCreate Permission = "appointments:create"
	PermAppointmentsManage Permission = "appointments:manage"
	PermFollowUpsSchedule  Permission = "followups:schedule"
	PermTreatmentsManage   Permission = "treatments:manage"
	PermPaymentsManage     Permission = "payments:manage"
	PermDashboardView      Permission = "dashboard:view"
	PermNavigationView     Permission = "navigation:view"
	PermProfileManage      Permission = "profile:manage"
)

var (
	adminOnly        = []model.Role{model.RoleAdmin}
	doctorOnly       = []model.Role{model.RoleDoctor}
	receptionistOnly = []model.Role{model.RoleReceptionist}
)

var permissions = map[Permission][]model.Role{
	PermUsersManage:        adminOnly,
	PermPatientsRead:       {model.RoleAdmin, model.RoleReceptionist},
	PermPatientsUpdate:     adminOnly,
	PermPatientsRegister:   receptionistOnly,
	PermQueueRead:          {model.RoleReceptionist, model.RoleDoctor},
	PermQueueUpdate:        {model.RoleReceptionist, model.RoleDoctor},
	PermAppointmentsRead:   allRoles,
	PermAppointmentsStats:  adminOnly,
	PermAppointmentsCreate: {model.RoleAdmin, model.RoleReceptionist},
	PermAppointmentsManage: adminOnly,
	PermFollowUpsSchedule:  doctorOnly,
	PermTreatmentsManage:   doctorOnly,
	PermPaymentsManage:     receptionistOnly,
	PermDashboardView:      allRoles,
	PermNavigationView:     allRoles,
	PermProfileManage:      allRoles,
}

// RolesFor lists the roles granted p. Unknown permissions grant nobody.
func RolesFor(p Permission) []model.Role {
	return permissions[p]
}

// Allowed reports whether role holds permission p.
func Allowed(role model.Role, p Permission) bool {
	return containsRole(permissions[p], role)
}
