// Package access implements role-based access control: a closed role
// enumeration and a single decision function evaluating declarative route
// policies against the current session snapshot.
package access

// Roles
const (
	RoleAdmin   = "administrador"
	RoleTeacher = "docente"
	RoleStudent = "estudiante"
)

var (
	AllRoles = []string{RoleAdmin, RoleTeacher, RoleStudent}

	rolePriorities = map[string]int{
		RoleAdmin:   30,
		RoleTeacher: 20,
		RoleStudent: 10,
	}

	Roles = []Role{
		{Name: "Estudiante", Value: RoleStudent},
		{Name: "Docente", Value: RoleTeacher},
		{Name: "Administrador", Value: RoleAdmin},
	}
)

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func IsValidRole(role string) bool {
	_, ok := rolePriorities[role]
	return ok
}

func RolePriority(role string) int {
	return rolePriorities[role]
}

func MaxRolePriority(roles []string) int {
	var max int
	for _, role := range roles {
		if RolePriority(role) > max {
			max = RolePriority(role)
		}
	}
	return max
}

// State is a snapshot of the session taken at check time. It is rebuilt on
// every check since the session can change between checks.
type State struct {
	Loading       bool
	Authenticated bool
	Roles         []string
}

func (s State) HasRole(name string) bool {
	for _, role := range s.Roles {
		if role == name {
			return true
		}
	}
	return false
}

func (s State) HasAnyRole(names ...string) bool {
	for _, name := range names {
		if s.HasRole(name) {
			return true
		}
	}
	return false
}

func (s State) HasAllRoles(names ...string) bool {
	for _, name := range names {
		if !s.HasRole(name) {
			return false
		}
	}
	return true
}
