package access

import "net/url"

// DefaultFallback is where authenticated users land when a route denies them
// without explicit unauthorized messaging.
const DefaultFallback = "/dashboard"

const (
	// Pending: session verification is in flight; show a placeholder, decide later.
	Pending DecisionKind = iota
	// Render: the route may be shown.
	Render
	// RedirectToLogin: authentication is required; Target preserves the
	// originally requested location.
	RedirectToLogin
	// RedirectToUnauthorized: the route opted into explicit unauthorized messaging.
	RedirectToUnauthorized
	// RedirectToFallback: silently send the user elsewhere.
	RedirectToFallback
)

type (
	DecisionKind int

	// Decision is the outcome of evaluating a Route against a session State.
	Decision struct {
		Kind   DecisionKind
		Target string // redirect path; empty for Pending|Render
	}

	// Route declares the access policy of a navigation target.
	// Authorization here is advisory (UX); the API enforces it independently.
	Route struct {
		// RequireAuth routes redirect anonymous users to login; routes with
		// RequireAuth=false are auth-entry pages (login/register) that
		// authenticated users may not view.
		RequireAuth bool
		// Roles is the allow-list; empty means any authenticated role.
		Roles []string
		// ShowUnauthorized opts into an explicit unauthorized page instead of
		// a silent fallback redirect.
		ShowUnauthorized bool
		// Fallback overrides DefaultFallback.
		Fallback string
	}
)

func (r Route) fallback() string {
	if r.Fallback != "" {
		return r.Fallback
	}
	return DefaultFallback
}

// Decide evaluates the route policy against the session snapshot.
// requestedPath is the originally requested location, preserved on the login
// redirect so the login flow can return the user there after success.
func Decide(state State, route Route, requestedPath string) Decision {
	if state.Loading {
		return Decision{Kind: Pending}
	}

	if route.RequireAuth && !state.Authenticated {
		target := "/login"
		if requestedPath != "" {
			target += "?next=" + url.QueryEscape(requestedPath)
		}
		return Decision{Kind: RedirectToLogin, Target: target}
	}

	// authenticated users may not view auth-entry pages
	if !route.RequireAuth && state.Authenticated {
		return Decision{Kind: RedirectToFallback, Target: DefaultFallback}
	}

	if len(route.Roles) > 0 {
		if state.HasAnyRole(route.Roles...) {
			return Decision{Kind: Render}
		}
		if route.ShowUnauthorized {
			return Decision{Kind: RedirectToUnauthorized, Target: "/unauthorized"}
		}
		return Decision{Kind: RedirectToFallback, Target: route.fallback()}
	}

	return Decision{Kind: Render}
}
