package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/dmtshikala/academia/core/access"
)

// routeMiddleware evaluates a route access policy against the caller's
// claims. Redirect decisions map to 401/403 since the API has no pages to
// redirect to; the client turns them back into navigation.
func routeMiddleware(route access.Route) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			state := access.State{}
			if claims, err := getContextClaims(ctx); err == nil {
				state.Authenticated = true
				state.Roles = claims.Roles
			}

			decision := access.Decide(state, route, ctx.Request().URL.Path)
			switch decision.Kind {
			case access.Render:
				return next(ctx)
			case access.RedirectToLogin:
				return errUnauthorized
			default:
				return errHttpForbidden
			}
		}
	}
}

func adminMiddleware() echo.MiddlewareFunc {
	return routeMiddleware(access.Route{RequireAuth: true, Roles: []string{access.RoleAdmin}})
}

func staffMiddleware() echo.MiddlewareFunc {
	return routeMiddleware(access.Route{RequireAuth: true, Roles: []string{access.RoleAdmin, access.RoleTeacher}})
}

func authedMiddleware() echo.MiddlewareFunc {
	return routeMiddleware(access.Route{RequireAuth: true})
}
