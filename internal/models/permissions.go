package models

type Permission string

const (
	PermUsersView       Permission = "users.view"
	PermUsersCreate     Permission = "users.create"
	PermUsersEdit       Permission = "users.edit"
	PermUsersChangeRole Permission = "users.changeRole"

	PermCoursesView    Permission = "courses.view"
	PermCoursesCreate  Permission = "courses.create"
	PermCoursesEdit    Permission = "courses.edit"
	PermCoursesDelete  Permission = "courses.delete"
	PermCoursesPublish Permission = "courses.publish"

	PermEnrollmentsView   Permission = "enrollments.view"
	PermEnrollmentsManage Permission = "enrollments.manage"

	PermReportsViewAll  Permission = "reports.viewAll"
	PermReportsViewTeam Permission = "reports.viewTeam"
	PermReportsViewOwn  Permission = "reports.viewOwn"

	PermLearningAccess Permission = "learning.access"

	PermSettingsManage Permission = "settings.manage"
)

// rolePermissions is the only place permissions are granted. A user's
// permission set is always re-derived from its role, never stored.
var rolePermissions = map[Role][]Permission{
	RoleSuperAdmin: {
		PermUsersView, PermUsersCreate, PermUsersEdit, PermUsersChangeRole,
		PermCoursesView, PermCoursesCreate, PermCoursesEdit, PermCoursesDelete, PermCoursesPublish,
		PermEnrollmentsView, PermEnrollmentsManage,
		PermReportsViewAll, PermReportsViewTeam, PermReportsViewOwn,
		PermLearningAccess,
		PermSettingsManage,
	},
	RoleAdmin: {
		PermUsersView, PermUsersCreate, PermUsersEdit, PermUsersChangeRole,
		PermCoursesView, PermCoursesCreate, PermCoursesEdit, PermCoursesDelete, PermCoursesPublish,
		PermEnrollmentsView, PermEnrollmentsManage,
		PermReportsViewAll, PermReportsViewTeam, PermReportsViewOwn,
		PermLearningAccess,
	},
	RoleInstructor: {
		PermCoursesView, PermCoursesCreate, PermCoursesEdit, PermCoursesPublish,
		PermEnrollmentsView,
		PermReportsViewOwn,
		PermLearningAccess,
	},
	RoleManager: {
		PermCoursesView,
		PermEnrollmentsView,
		PermReportsViewTeam, PermReportsViewOwn,
		PermLearningAccess,
	},
	RoleEmployee: {
		PermCoursesView,
		PermReportsViewOwn,
		PermLearningAccess,
	},
}

// PermissionsFor returns a copy so callers cannot mutate the table.
func PermissionsFor(role Role) []Permission {
	perms, ok := rolePermissions[role]
	if !ok {
		return nil
	}
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

func RoleHasPermission(role Role, p Permission) bool {
	for _, granted := range rolePermissions[role] {
		if granted == p {
			return true
		}
	}
	return false
}
