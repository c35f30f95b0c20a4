package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"receiptpanel/internal/common"
	"receiptpanel/internal/models"
	"receiptpanel/internal/services"

	"github.com/labstack/echo/v4"
)

// UsageHandlers serves receipt logging and the admin reporting endpoints.
type UsageHandlers struct {
	usageService  services.UsageService
	exportService services.ExportService
	logger        *slog.Logger
}

func NewUsageHandlers(usageService services.UsageService, exportService services.ExportService, logger *slog.Logger) *UsageHandlers {
	return &UsageHandlers{
		usageService:  usageService,
		exportService: exportService,
		logger:        logger.With("component", "usage_handlers"),
	}
}

// LogReceipt handles POST /api/receipt/log
func (h *UsageHandlers) LogReceipt(c echo.Context) error {
	var req services.ReceiptRequest
	if err := bindAndValidate(c, &req); err != nil {
		return common.SendValidationError(c, err.Error())
	}

	receipt, err := h.usageService.LogReceipt(c.Request().Context(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":    true,
		"message":    "receipt logged",
		"receipt_id": receipt.ID,
	})
}

// DailyStats handles GET /api/admin/stats/daily
func (h *UsageHandlers) DailyStats(c echo.Context) error {
	stats, err := h.usageService.DailyStats(c.Request().Context(), c.QueryParam("start_date"), c.QueryParam("end_date"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    stats,
	})
}

// CompanyStats handles GET /api/admin/stats/companies
func (h *UsageHandlers) CompanyStats(c echo.Context) error {
	licenseID, err := common.OptionalUUID(c.QueryParam("license_id"), "license_id")
	if err != nil {
		return common.SendValidationError(c, err.Error())
	}

	stats, err := h.usageService.CompanyStats(c.Request().Context(), licenseID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    stats,
	})
}

// DashboardToday handles GET /api/admin/dashboard/today
func (h *UsageHandlers) DashboardToday(c echo.Context) error {
	dashboard, err := h.usageService.DashboardToday(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    dashboard,
	})
}

// Activities handles GET /api/admin/activities
func (h *UsageHandlers) Activities(c echo.Context) error {
	var (
		filter models.ActivityFilter
		err    error
	)
	if filter.LicenseID, err = common.OptionalUUID(c.QueryParam("license_id"), "license_id"); err != nil {
		return common.SendValidationError(c, err.Error())
	}
	if filter.DeviceID, err = common.OptionalUUID(c.QueryParam("user_id"), "user_id"); err != nil {
		return common.SendValidationError(c, err.Error())
	}
	if filter.SessionID, err = common.OptionalUUID(c.QueryParam("session_id"), "session_id"); err != nil {
		return common.SendValidationError(c, err.Error())
	}
	filter.Action = c.QueryParam("action")
	if filter.Limit, err = queryInt(c, "limit"); err != nil {
		return common.SendValidationError(c, err.Error())
	}

	entries, err := h.usageService.Activities(c.Request().Context(), filter)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    entries,
	})
}

// ExportReceipts handles GET /api/admin/receipts/export. format=xlsx streams
// a workbook, archive=true stores it in object storage and returns a link,
// anything else returns the rows as JSON.
func (h *UsageHandlers) ExportReceipts(c echo.Context) error {
	licenseID, err := common.OptionalUUID(c.QueryParam("license_id"), "license_id")
	if err != nil {
		return common.SendValidationError(c, err.Error())
	}
	filter := models.ReceiptFilter{
		StartDate: c.QueryParam("start_date"),
		EndDate:   c.QueryParam("end_date"),
		LicenseID: licenseID,
	}
	ctx := c.Request().Context()

	if archive, _ := strconv.ParseBool(c.QueryParam("archive")); archive {
		result, err := h.exportService.Archive(ctx, filter)
		if err != nil {
			return respondError(c, h.logger, err)
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    result,
		})
	}

	if c.QueryParam("format") == "xlsx" {
		data, _, err := h.exportService.Workbook(ctx, filter)
		if err != nil {
			return respondError(c, h.logger, err)
		}
		start, end, _ := services.NormalizeDateRange(filter.StartDate, filter.EndDate)
		c.Response().Header().Set(echo.HeaderContentDisposition,
			fmt.Sprintf(`attachment; filename="receipts_%s_%s.xlsx"`, start, end))
		return c.Blob(http.StatusOK, services.XLSXContentType, data)
	}

	rows, err := h.exportService.Rows(ctx, filter)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    rows,
	})
}

func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}
