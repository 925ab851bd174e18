package rbac

// Permission is an atomic capability identifier in <resource>:<action> form.
// The full set is closed at build time: handlers reference these constants,
// never raw strings, so an unknown permission is a compile error.
type Permission string

// The permission catalog.
const (
	PermUserCreate Permission = "user:create"
	PermUserRead   Permission = "user:read"
	PermUserUpdate Permission = "user:update"
	PermUserDelete Permission = "user:delete"

	PermRoleManage     Permission = "role:manage"
	PermPermissionRead Permission = "permission:read"

	PermProgramManage Permission = "program:manage"
	PermProgramView   Permission = "program:view"

	PermStudentManage Permission = "student:manage"
	PermStudentView   Permission = "student:view"

	PermCalendarManage Permission = "academic-calendar:manage"
	PermCalendarView   Permission = "academic-calendar:view"

	PermAnnouncementManage Permission = "announcement:manage"
	PermNotificationSend   Permission = "notification:send"
)

// PermissionAll is the wildcard sentinel held only by the seeded super_admin
// role. It is not part of Catalog() and cannot be granted through role CRUD;
// Allowed is the single place that honours it.
const PermissionAll Permission = "*"

var catalog = []Permission{
	PermUserCreate,
	PermUserRead,
	PermUserUpdate,
	PermUserDelete,
	PermRoleManage,
	PermPermissionRead,
	PermProgramManage,
	PermProgramView,
	PermStudentManage,
	PermStudentView,
	PermCalendarManage,
	PermCalendarView,
	PermAnnouncementManage,
	PermNotificationSend,
}

var catalogSet = func() map[Permission]struct{} {
	set := make(map[Permission]struct{}, len(catalog))
	for _, p := range catalog {
		set[p] = struct{}{}
	}
	return set
}()

// Catalog returns the full ordered permission set. The returned slice is a
// copy; the catalog itself is immutable reference data.
func Catalog() []Permission {
	out := make([]Permission, len(catalog))
	copy(out, catalog)
	return out
}

// Valid reports whether p belongs to the catalog. The wildcard sentinel is
// deliberately not valid here: it is never assignable through role CRUD.
func (p Permission) Valid() bool {
	_, ok := catalogSet[p]
	return ok
}

func (p Permission) String() string {
	return string(p)
}

// Bootstrap role names seeded at install time.
const (
	RoleSuperAdmin         = "super_admin"
	RoleAdmin              = "admin"
	RoleProgramCoordinator = "program_coordinator"
	RoleTeacher            = "teacher"
	RoleStudent            = "student"
	RoleParent             = "parent"
)

// BootstrapRole describes one seeded role and its fixed permission subset.
type BootstrapRole struct {
	Name        string
	Description string
	Permissions []Permission
}

// BootstrapRoles returns the default role matrix. super_admin carries the
// wildcard sentinel instead of an enumerated set, so permissions added to the
// catalog later are covered without reseeding.
func BootstrapRoles() []BootstrapRole {
	return []BootstrapRole{
		{
			Name:        RoleSuperAdmin,
			Description: "Full access to every capability",
			Permissions: []Permission{PermissionAll},
		},
		{
			Name:        RoleAdmin,
			Description: "School administration",
			Permissions: []Permission{
				PermUserCreate, PermUserRead, PermUserUpdate, PermUserDelete,
				PermRoleManage, PermPermissionRead,
				PermProgramManage, PermProgramView,
				PermStudentManage, PermStudentView,
				PermCalendarManage, PermCalendarView,
				PermAnnouncementManage, PermNotificationSend,
			},
		},
		{
			Name:        RoleProgramCoordinator,
			Description: "Manages study programs and their timetables",
			Permissions: []Permission{
				PermUserRead,
				PermProgramManage, PermProgramView,
				PermStudentView,
				PermCalendarManage, PermCalendarView,
				PermAnnouncementManage,
			},
		},
		{
			Name:        RoleTeacher,
			Description: "Teaching staff",
			Permissions: []Permission{
				PermUserRead,
				PermProgramView,
				PermStudentView,
				PermCalendarView,
			},
		},
		{
			Name:        RoleStudent,
			Description: "Enrolled student",
			Permissions: []Permission{
				PermProgramView,
				PermCalendarView,
			},
		},
		{
			Name:        RoleParent,
			Description: "Parent or guardian",
			Permissions: []Permission{
				PermCalendarView,
			},
		},
	}
}
