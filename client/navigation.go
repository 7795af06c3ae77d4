package client

import (
	"sort"
	"strings"

	"github.com/dmtshikala/academia/core/access"
	"github.com/dmtshikala/academia/core/session"
)

// Navigator evaluates route access policies against the live session
// snapshot. It holds the declared route table; unknown paths fall back to a
// require-auth-only policy.
type Navigator struct {
	mgr    *session.Manager
	routes map[string]access.Route
}

// DefaultRoutes is the application's navigation policy table.
func DefaultRoutes() map[string]access.Route {
	return map[string]access.Route{
		"/login":          {RequireAuth: false},
		"/dashboard":      {RequireAuth: true},
		"/perfil":         {RequireAuth: true},
		"/usuarios":       {RequireAuth: true, Roles: []string{access.RoleAdmin}, ShowUnauthorized: true},
		"/menciones":      {RequireAuth: true, Roles: []string{access.RoleAdmin}},
		"/docentes":       {RequireAuth: true, Roles: []string{access.RoleAdmin, access.RoleTeacher}},
		"/estudiantes":    {RequireAuth: true, Roles: []string{access.RoleAdmin, access.RoleTeacher}},
		"/materias":       {RequireAuth: true},
		"/inscripciones":  {RequireAuth: true, Roles: []string{access.RoleAdmin, access.RoleStudent}},
		"/calificaciones": {RequireAuth: true},
	}
}

func NewNavigator(mgr *session.Manager, routes map[string]access.Route) *Navigator {
	if routes == nil {
		routes = DefaultRoutes()
	}
	return &Navigator{mgr: mgr, routes: routes}
}

// Navigate decides whether the current session may visit path.
func (n *Navigator) Navigate(path string) access.Decision {
	return access.Decide(n.mgr.Current().Access(), n.routeFor(path), path)
}

// routeFor matches the longest declared prefix of path.
func (n *Navigator) routeFor(path string) access.Route {
	prefixes := make([]string, 0, len(n.routes))
	for prefix := range n.routes {
		prefixes = append(prefixes, prefix)
	}
	sort.Slice(prefixes, func(i, j int) bool { return len(prefixes[i]) > len(prefixes[j]) })

	for _, prefix := range prefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return n.routes[prefix]
		}
	}
	return access.Route{RequireAuth: true}
}
