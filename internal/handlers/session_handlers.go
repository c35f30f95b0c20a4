package handlers

import (
	"log/slog"
	"net/http"

	"receiptpanel/internal/common"
	"receiptpanel/internal/models"
	"receiptpanel/internal/services"

	"github.com/labstack/echo/v4"
)

type SessionHandlers struct {
	sessionService services.SessionService
	logger         *slog.Logger
}

func NewSessionHandlers(sessionService services.SessionService, logger *slog.Logger) *SessionHandlers {
	return &SessionHandlers{
		sessionService: sessionService,
		logger:         logger.With("component", "session_handlers"),
	}
}

// StartSession handles POST /api/session/start
func (h *SessionHandlers) StartSession(c echo.Context) error {
	var req services.StartSessionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return common.SendValidationError(c, err.Error())
	}

	session, err := h.sessionService.Start(c.Request().Context(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":    true,
		"session_id": session.ID,
		"user_id":    session.DeviceID,
	})
}

// EndSession handles POST /api/session/end
func (h *SessionHandlers) EndSession(c echo.Context) error {
	var req services.EndSessionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return common.SendValidationError(c, err.Error())
	}

	id, err := common.ParseUUID(req.SessionID, "session_id")
	if err != nil {
		return common.SendValidationError(c, err.Error())
	}

	session, err := h.sessionService.End(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "session ended",
		"data":    session,
	})
}

// ListSessions handles GET /api/admin/sessions
func (h *SessionHandlers) ListSessions(c echo.Context) error {
	var (
		filter models.SessionFilter
		err    error
	)
	if filter.LicenseID, err = common.OptionalUUID(c.QueryParam("license_id"), "license_id"); err != nil {
		return common.SendValidationError(c, err.Error())
	}
	if filter.DeviceID, err = common.OptionalUUID(c.QueryParam("user_id"), "user_id"); err != nil {
		return common.SendValidationError(c, err.Error())
	}
	filter.Status = c.QueryParam("status")
	if filter.Limit, err = queryInt(c, "limit"); err != nil {
		return common.SendValidationError(c, err.Error())
	}

	sessions, err := h.sessionService.List(c.Request().Context(), filter)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    sessions,
	})
}

// GetSession handles GET /api/admin/sessions/:id
func (h *SessionHandlers) GetSession(c echo.Context) error {
	id, err := common.ParseUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, err.Error())
	}

	session, err := h.sessionService.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    session,
	})
}
