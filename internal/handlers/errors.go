package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"receiptpanel/internal/common"
	"receiptpanel/internal/services"

	"github.com/labstack/echo/v4"
)

// respondError maps service errors onto HTTP statuses. Anything it does not
// recognise is a store failure and is logged before answering 500.
func respondError(c echo.Context, logger *slog.Logger, err error) error {
	var limitErr *services.DeviceLimitError
	switch {
	case errors.As(err, &limitErr):
		return common.SendError(c, http.StatusForbidden, limitErr.Error())
	case errors.Is(err, services.ErrDeviceBoundElsewhere):
		return common.SendError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrValidation):
		return common.SendValidationError(c, err.Error())
	case errors.Is(err, services.ErrUnauthorized):
		return common.SendError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrForbidden):
		return common.SendError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrNotFound):
		return common.SendError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrConflict):
		return common.SendError(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrArchiveUnavailable):
		return common.SendError(c, http.StatusServiceUnavailable, err.Error())
	}

	logger.Error("request failed",
		slog.String("method", c.Request().Method),
		slog.String("route", c.Path()),
		slog.Any("error", err))
	return common.SendServerError(c)
}

// isClientError reports whether err is one of the service errors caused by
// the request rather than by the store.
func isClientError(err error) bool {
	var limitErr *services.DeviceLimitError
	return errors.As(err, &limitErr) ||
		errors.Is(err, services.ErrDeviceBoundElsewhere) ||
		errors.Is(err, services.ErrValidation) ||
		errors.Is(err, services.ErrUnauthorized) ||
		errors.Is(err, services.ErrForbidden) ||
		errors.Is(err, services.ErrNotFound) ||
		errors.Is(err, services.ErrConflict)
}

var errInvalidBody = errors.New("invalid request body")

// bindAndValidate decodes the request into req and runs the struct validator.
// The returned error is safe to show to the client.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errInvalidBody
	}
	return c.Validate(req)
}
