package middleware

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// AuditMiddleware records every state-changing admin request.
type AuditMiddleware struct {
	logger *slog.Logger
}

func NewAuditMiddleware(logger *slog.Logger) *AuditMiddleware {
	return &AuditMiddleware{logger: logger.With("component", "audit")}
}

// AuditWrites logs POST, PUT, PATCH and DELETE requests after they complete,
// with the acting admin and the outcome.
func (m *AuditMiddleware) AuditWrites() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			method := c.Request().Method
			if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
				return err
			}

			attrs := []any{
				slog.String("method", method),
				slog.String("route", c.Path()),
				slog.String("uri", c.Request().RequestURI),
				slog.Int("status", c.Response().Status),
				slog.String("ip", c.RealIP()),
			}
			if claims, ok := AdminFromContext(c); ok {
				attrs = append(attrs, slog.String("admin", claims.Username), slog.String("role", claims.Role))
			}
			if err != nil {
				attrs = append(attrs, slog.Any("error", err))
			}
			m.logger.Info("admin write", attrs...)

			return err
		}
	}
}
