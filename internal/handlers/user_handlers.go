package handlers

import (
	"log/slog"
	"net/http"

	"receiptpanel/internal/common"
	"receiptpanel/internal/services"

	"github.com/labstack/echo/v4"
)

// UserHandlers exposes registered devices. The desktop panel calls them
// "users", so the routes keep that name.
type UserHandlers struct {
	deviceService services.DeviceService
	logger        *slog.Logger
}

func NewUserHandlers(deviceService services.DeviceService, logger *slog.Logger) *UserHandlers {
	return &UserHandlers{
		deviceService: deviceService,
		logger:        logger.With("component", "user_handlers"),
	}
}

// ListUsers handles GET /api/admin/users
func (h *UserHandlers) ListUsers(c echo.Context) error {
	devices, err := h.deviceService.List(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    devices,
	})
}

// GetUserDetails handles GET /api/admin/users/:id/details
func (h *UserHandlers) GetUserDetails(c echo.Context) error {
	id, err := common.ParseUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, err.Error())
	}

	details, err := h.deviceService.Details(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    details,
	})
}

// DeleteUser handles DELETE /api/admin/users/:id
func (h *UserHandlers) DeleteUser(c echo.Context) error {
	id, err := common.ParseUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, err.Error())
	}

	if err := h.deviceService.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "device deleted",
	})
}
