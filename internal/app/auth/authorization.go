package auth

import (
	"fmt"

	"github.com/linuxfest/backend/internal/app/models"
)

// Action is an admin operation guarded by the permission gate
type Action int

const (
	AddTeacher Action = iota + 1
	GetTeacher
	EditTeacher
	DeleteTeacher
	AddWorkshop
	GetWorkshop
	EditWorkshop
	DeleteWorkshop
	AddUser
	GetUser
	EditUser
	DeleteUser
)

var actionNames = map[Action]string{
	AddTeacher:     "addTeacher",
	GetTeacher:     "getTeacher",
	EditTeacher:    "editTeacher",
	DeleteTeacher:  "deleteTeacher",
	AddWorkshop:    "addWorkshop",
	GetWorkshop:    "getWorkshop",
	EditWorkshop:   "editWorkshop",
	DeleteWorkshop: "deleteWorkshop",
	AddUser:        "addUser",
	GetUser:        "getUser",
	EditUser:       "editUser",
	DeleteUser:     "deleteUser",
}

// String returns the action name used in logs
func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Actions returns every known action
func Actions() []Action {
	actions := make([]Action, 0, len(actionNames))
	for a := AddTeacher; a <= DeleteUser; a++ {
		actions = append(actions, a)
	}
	return actions
}

// CapabilitySet is a set of permitted actions
type CapabilitySet map[Action]struct{}

func newCapabilitySet(actions ...Action) CapabilitySet {
	set := make(CapabilitySet, len(actions))
	for _, a := range actions {
		set[a] = struct{}{}
	}
	return set
}

// Has reports whether the set contains the action
func (s CapabilitySet) Has(a Action) bool {
	_, ok := s[a]
	return ok
}

var roleCapabilities = map[models.Role]CapabilitySet{
	models.RoleSuperAdmin: newCapabilitySet(Actions()...),
	models.RoleWorkshopAdmin: newCapabilitySet(
		AddWorkshop, GetWorkshop, EditWorkshop, DeleteWorkshop,
		GetTeacher, EditTeacher,
		GetUser,
	),
	models.RoleReporter: newCapabilitySet(GetTeacher, GetWorkshop, GetUser),
}

// Capabilities returns the capability set of a role; unknown roles get an empty set
func Capabilities(role models.Role) CapabilitySet {
	if set, ok := roleCapabilities[role]; ok {
		return set
	}
	return CapabilitySet{}
}

// CheckPermission reports whether the admin may perform the action
func CheckPermission(caller *models.Admin, action Action) bool {
	if caller == nil {
		return false
	}
	return Capabilities(caller.Role).Has(action)
}
