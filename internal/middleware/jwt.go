package middleware

import (
	"errors"
	"net/http"

	"receiptpanel/internal/common"
	"receiptpanel/internal/services"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// ClaimsContextKey is where the verified admin claims are stored on echo.Context.
const ClaimsContextKey = "admin"

// AdminJWT guards the admin API. A missing or malformed Authorization header
// is answered with 401; a token that fails verification with 403.
func AdminJWT(auth services.AuthService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  ClaimsContextKey,
		TokenLookup: "header:Authorization:Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return auth.ValidateToken(c.Request().Context(), token)
		},
		SuccessHandler: func(c echo.Context) {
			claims, ok := AdminFromContext(c)
			if !ok {
				return
			}
			adminID, err := uuid.Parse(claims.ID)
			if err != nil {
				return
			}
			ctx := common.WithAdmin(c.Request().Context(), adminID, claims.Role)
			c.SetRequest(c.Request().WithContext(ctx))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			var extractErr *echojwt.TokenExtractionError
			if errors.As(err, &extractErr) {
				return common.SendError(c, http.StatusUnauthorized, "missing or malformed authorization header")
			}
			return common.SendError(c, http.StatusForbidden, "invalid or expired token")
		},
	})
}

// AdminFromContext returns the claims stored by AdminJWT.
func AdminFromContext(c echo.Context) (*services.AdminClaims, bool) {
	claims, ok := c.Get(ClaimsContextKey).(*services.AdminClaims)
	return claims, ok
}
