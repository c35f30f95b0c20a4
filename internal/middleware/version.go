package middleware

import (
	"github.com/labstack/echo/v4"
)

const (
	HeaderServerVersion = "X-Server-Version"
	HeaderAPIVersion    = "X-API-Version"
)

// VersionHeader adds the server build and API version to every response so
// desktop clients can log what they talked to.
func VersionHeader(serverVersion, apiVersion string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set(HeaderServerVersion, serverVersion)
			h.Set(HeaderAPIVersion, apiVersion)
			return next(c)
		}
	}
}
