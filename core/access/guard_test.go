package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_roleQueries(t *testing.T) {
	state := State{Authenticated: true, Roles: []string{RoleAdmin, RoleTeacher}}

	assert.True(t, state.HasRole(RoleAdmin))
	assert.False(t, state.HasRole(RoleStudent))
	assert.True(t, state.HasAnyRole(RoleStudent, RoleTeacher))
	assert.False(t, state.HasAnyRole(RoleStudent))
	assert.True(t, state.HasAllRoles(RoleAdmin, RoleTeacher))
	assert.False(t, state.HasAllRoles(RoleAdmin, RoleStudent))
}

func TestDecide(t *testing.T) {
	var (
		anonymous    = State{}
		loading      = State{Loading: true}
		teacher      = State{Authenticated: true, Roles: []string{RoleTeacher}}
		adminTeacher = State{Authenticated: true, Roles: []string{RoleAdmin, RoleTeacher}}
	)

	tests := []struct {
		name  string
		state State
		route Route
		path  string
		want  Decision
	}{
		{
			name:  "verification in flight yields no decision",
			state: loading,
			route: Route{RequireAuth: true},
			want:  Decision{Kind: Pending},
		},
		{
			name:  "anonymous user is sent to login with the requested location preserved",
			state: anonymous,
			route: Route{RequireAuth: true},
			path:  "/estudiantes?page=2",
			want:  Decision{Kind: RedirectToLogin, Target: "/login?next=%2Festudiantes%3Fpage%3D2"},
		},
		{
			name:  "authenticated user may not view auth-entry pages",
			state: teacher,
			route: Route{RequireAuth: false},
			path:  "/login",
			want:  Decision{Kind: RedirectToFallback, Target: "/dashboard"},
		},
		{
			name:  "role intersection renders",
			state: adminTeacher,
			route: Route{RequireAuth: true, Roles: []string{RoleTeacher}},
			want:  Decision{Kind: Render},
		},
		{
			name:  "empty intersection with opt-in shows unauthorized",
			state: teacher,
			route: Route{RequireAuth: true, Roles: []string{RoleAdmin}, ShowUnauthorized: true},
			want:  Decision{Kind: RedirectToUnauthorized, Target: "/unauthorized"},
		},
		{
			name:  "empty intersection falls back silently",
			state: teacher,
			route: Route{RequireAuth: true, Roles: []string{RoleAdmin}},
			want:  Decision{Kind: RedirectToFallback, Target: "/dashboard"},
		},
		{
			name:  "configured fallback wins",
			state: teacher,
			route: Route{RequireAuth: true, Roles: []string{RoleAdmin}, Fallback: "/perfil"},
			want:  Decision{Kind: RedirectToFallback, Target: "/perfil"},
		},
		{
			name:  "no role restriction renders any authenticated role",
			state: teacher,
			route: Route{RequireAuth: true},
			want:  Decision{Kind: Render},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.state, tt.route, tt.path))
		})
	}
}

func TestRolePriorities(t *testing.T) {
	assert.True(t, RolePriority(RoleAdmin) > RolePriority(RoleTeacher))
	assert.True(t, RolePriority(RoleTeacher) > RolePriority(RoleStudent))
	assert.Equal(t, 0, RolePriority("portero"))
	assert.Equal(t, 30, MaxRolePriority([]string{RoleStudent, RoleAdmin}))
	assert.True(t, IsValidRole(RoleStudent))
	assert.False(t, IsValidRole("owner"))
}
