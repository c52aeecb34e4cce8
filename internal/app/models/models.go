package models

// Role is the permission role of an admin account
type Role string

const (
	RoleSuperAdmin    Role = "superadmin"
	RoleWorkshopAdmin Role = "workshopAdmin"
	RoleReporter      Role = "reporter"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleWorkshopAdmin, RoleReporter:
		return true
	}
	return false
}

// SubjectKind identifies the principal table an access token belongs to
type SubjectKind string

const (
	SubjectAdmin SubjectKind = "admin"
	SubjectUser  SubjectKind = "user"
)
