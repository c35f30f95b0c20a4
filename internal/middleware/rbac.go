package middleware

import (
	"net/http"
	"slices"

	"receiptpanel/internal/common"

	"github.com/labstack/echo/v4"
)

// RequireRole admits only admins whose token carries one of roles. It must
// run after AdminJWT.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := common.GetAdminRoleFromContext(c.Request().Context())
			if !ok {
				return common.SendError(c, http.StatusUnauthorized, "not authenticated")
			}
			if !slices.Contains(roles, role) {
				return common.SendError(c, http.StatusForbidden, "insufficient permissions")
			}
			return next(c)
		}
	}
}
