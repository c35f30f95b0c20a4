package handlers

import (
	"log/slog"
	"net/http"

	"receiptpanel/internal/common"
	"receiptpanel/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	authService services.AuthService
	logger      *slog.Logger
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(authService services.AuthService, logger *slog.Logger) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		logger:      logger.With("component", "auth_handlers"),
	}
}

// Login handles POST /api/auth/login
func (h *AuthHandlers) Login(c echo.Context) error {
	var req services.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return common.SendValidationError(c, err.Error())
	}

	resp, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Me returns the profile of the authenticated admin
func (h *AuthHandlers) Me(c echo.Context) error {
	adminID, ok := common.GetAdminIDFromContext(c.Request().Context())
	if !ok {
		return common.SendError(c, http.StatusUnauthorized, "not authenticated")
	}

	profile, err := h.authService.Profile(c.Request().Context(), adminID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    profile,
	})
}
