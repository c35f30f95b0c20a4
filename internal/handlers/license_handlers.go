package handlers

import (
	"log/slog"
	"net/http"

	"receiptpanel/internal/common"
	"receiptpanel/internal/services"

	"github.com/labstack/echo/v4"
)

// LicenseHandlers serves the client license check and admin license management.
type LicenseHandlers struct {
	licenseService services.LicenseService
	logger         *slog.Logger
}

func NewLicenseHandlers(licenseService services.LicenseService, logger *slog.Logger) *LicenseHandlers {
	return &LicenseHandlers{
		licenseService: licenseService,
		logger:         logger.With("component", "license_handlers"),
	}
}

// Check handles POST /api/license/check. Soft failures are answered with
// 200 and success=false so older clients keep working.
func (h *LicenseHandlers) Check(c echo.Context) error {
	var req services.CheckRequest
	if err := bindAndValidate(c, &req); err != nil {
		return common.SendValidationError(c, err.Error())
	}

	result, err := h.licenseService.Validate(c.Request().Context(), req)
	if err != nil {
		if isClientError(err) {
			return respondError(c, h.logger, err)
		}
		h.logger.Error("license check failed", slog.String("hardware_id", req.HardwareID), slog.Any("error", err))
		// The client keeps running on its cached state while the server is down.
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"success":      false,
			"error":        "server error",
			"offline_mode": true,
		})
	}

	return c.JSON(http.StatusOK, result)
}

// ListLicenses handles GET /api/admin/licenses
func (h *LicenseHandlers) ListLicenses(c echo.Context) error {
	licenses, err := h.licenseService.List(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    licenses,
	})
}

// GetLicense handles GET /api/admin/licenses/:id
func (h *LicenseHandlers) GetLicense(c echo.Context) error {
	id, err := common.ParseUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, err.Error())
	}

	license, err := h.licenseService.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    license,
	})
}

// CreateLicense handles POST /api/admin/licenses/create
func (h *LicenseHandlers) CreateLicense(c echo.Context) error {
	var req services.IssueRequest
	if err := bindAndValidate(c, &req); err != nil {
		return common.SendValidationError(c, err.Error())
	}

	license, err := h.licenseService.Issue(c.Request().Context(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success":     true,
		"id":          license.ID,
		"license_key": license.LicenseKey,
		"data":        license,
	})
}

// UpdateLicense handles PUT /api/admin/licenses/:id
func (h *LicenseHandlers) UpdateLicense(c echo.Context) error {
	id, err := common.ParseUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, err.Error())
	}

	var req services.MutateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return common.SendValidationError(c, err.Error())
	}

	license, err := h.licenseService.Mutate(c.Request().Context(), id, req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "license updated",
		"data":    license,
	})
}

// DeleteLicense handles DELETE /api/admin/licenses/:id
func (h *LicenseHandlers) DeleteLicense(c echo.Context) error {
	id, err := common.ParseUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, err.Error())
	}

	if err := h.licenseService.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "license deleted",
	})
}
