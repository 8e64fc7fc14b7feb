package auth

import "sort"

const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

const (
	PermProjectCreate  = "project:create"
	PermProjectUpdate  = "project:update"
	PermProjectDelete  = "project:delete"
	PermProjectReadAll = "project:read_all"

	PermTaskReadAll    = "task:read_all"
	PermWorkLogReadAll = "worklog:read_all"

	PermDocumentCreate = "document:create"
	PermDocumentUpdate = "document:update"
	PermDocumentDelete = "document:delete"

	PermReportCreate = "report:create"
	PermReportUpdate = "report:update"
	PermReportDelete = "report:delete"
	PermReportClose  = "report:close"

	PermTeamManage     = "team:manage"
	PermClientManage   = "client:manage"
	PermLeaveApprove   = "leave:approve"
	PermTrainingManage = "training:manage"
	PermUserManage     = "user:manage"
)

// AllPermissions lists every permission string the API checks. The seeder inserts these rows.
var AllPermissions = []string{
	PermProjectCreate, PermProjectUpdate, PermProjectDelete, PermProjectReadAll,
	PermTaskReadAll, PermWorkLogReadAll,
	PermDocumentCreate, PermDocumentUpdate, PermDocumentDelete,
	PermReportCreate, PermReportUpdate, PermReportDelete, PermReportClose,
	PermTeamManage, PermClientManage, PermLeaveApprove, PermTrainingManage, PermUserManage,
}

var rolePermissions = map[string][]string{
	RoleAdmin: AllPermissions,
	RoleManager: {
		PermProjectCreate, PermProjectUpdate, PermProjectReadAll,
		PermTaskReadAll, PermWorkLogReadAll,
		PermDocumentCreate, PermDocumentUpdate,
		PermReportCreate, PermReportUpdate, PermReportClose,
		PermTeamManage, PermClientManage, PermLeaveApprove, PermTrainingManage,
	},
	RoleEmployee: {
		PermDocumentCreate,
		PermReportCreate,
	},
}

func IsValidRole(role string) bool {
	_, ok := rolePermissions[role]
	return ok
}

// EffectivePermissions merges the role's permissions with the explicit grants, sorted and de-duplicated.
func EffectivePermissions(role string, granted []string) []string {
	set := make(map[string]struct{}, len(granted)+len(rolePermissions[role]))
	for _, p := range rolePermissions[role] {
		set[p] = struct{}{}
	}
	for _, p := range granted {
		set[p] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
