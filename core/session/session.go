// Package session owns the app-wide authenticated session: one authoritative
// view of who is logged in, mutated only through the enumerated transitions
// of the Manager.
package session

import "github.com/dmtshikala/academia/core/access"

type State int

const (
	Unauthenticated State = iota
	Verifying
	Authenticated
)

func (s State) String() string {
	switch s {
	case Verifying:
		return "verifying"
	case Authenticated:
		return "authenticated"
	}
	return "unauthenticated"
}

// Principal is the authenticated user's identity and role set.
type Principal struct {
	ID    string   `json:"id"`
	Name  string   `json:"nombre"`
	Email string   `json:"correo"`
	Roles []string `json:"roles"`
}

// Session is an immutable snapshot of the session state.
// Invariant: State == Authenticated iff Principal and Token are both set.
type Session struct {
	State     State
	Principal *Principal
	Token     string
}

func (s Session) Authenticated() bool { return s.State == Authenticated }

// Loading reports whether token verification is in flight.
func (s Session) Loading() bool { return s.State == Verifying }

func (s Session) Roles() []string {
	if s.Principal == nil {
		return nil
	}
	return s.Principal.Roles
}

// Access builds the guard snapshot for this session.
func (s Session) Access() access.State {
	return access.State{
		Loading:       s.Loading(),
		Authenticated: s.Authenticated(),
		Roles:         s.Roles(),
	}
}

func (s Session) HasRole(name string) bool          { return s.Access().HasRole(name) }
func (s Session) HasAnyRole(names ...string) bool   { return s.Access().HasAnyRole(names...) }
func (s Session) HasAllRoles(names ...string) bool  { return s.Access().HasAllRoles(names...) }
