package entities

// Role is the trusted client-side role selector
type Role string

const (
	RoleAdmin      Role = "Admin"
	RoleSupervisor Role = "Supervisor"
	RoleOperator   Role = "Operator"
	RoleViewer     Role = "Viewer"
)

// Permission is an action gated by role
type Permission string

const (
	PermModifySettings  Permission = "modify_settings"
	PermClearAlerts     Permission = "clear_alerts"
	PermManageTrucks    Permission = "manage_trucks"
	PermCheckIn         Permission = "check_in"
	PermPerformQA       Permission = "perform_qa"
	PermManageSuppliers Permission = "manage_suppliers"
	PermExportReports   Permission = "export_reports"
	PermManageStorage   Permission = "manage_storage"
)

var rolePermissions = map[Permission][]Role{
	PermModifySettings:  {RoleAdmin, RoleSupervisor},
	PermClearAlerts:     {RoleAdmin, RoleSupervisor, RoleOperator},
	PermManageTrucks:    {RoleAdmin, RoleSupervisor, RoleOperator},
	PermCheckIn:         {RoleAdmin, RoleSupervisor, RoleOperator},
	PermPerformQA:       {RoleAdmin, RoleSupervisor, RoleOperator},
	PermManageSuppliers: {RoleAdmin, RoleSupervisor},
	PermExportReports:   {RoleAdmin, RoleSupervisor},
	PermManageStorage:   {RoleAdmin, RoleSupervisor, RoleOperator},
}

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSupervisor, RoleOperator, RoleViewer:
		return true
	}
	return false
}

// Can reports whether the role holds the permission
func (r Role) Can(p Permission) bool {
	for _, allowed := range rolePermissions[p] {
		if allowed == r {
			return true
		}
	}
	return false
}

// Session identifies who is acting at the console
type Session struct {
	CurrentRole Role   `json:"currentRole"`
	OperatorID  string `json:"operatorId"`
}

// DefaultSession is the session a fresh store starts with
func DefaultSession() Session {
	return Session{CurrentRole: RoleAdmin, OperatorID: "OP001"}
}
