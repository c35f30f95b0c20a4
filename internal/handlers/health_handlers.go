package handlers

import (
	"context"
	"net/http"
	"time"

	"receiptpanel/internal/caching"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const probeTimeout = 3 * time.Second

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlers handles health check and monitoring endpoints
type HealthHandlers struct {
	db       Pinger
	cache    caching.CacheService
	gatherer prometheus.Gatherer
	version  string
}

// NewHealthHandlers creates a new health handlers instance. cache may be nil.
func NewHealthHandlers(db Pinger, cache caching.CacheService, gatherer prometheus.Gatherer, version string) *HealthHandlers {
	return &HealthHandlers{
		db:       db,
		cache:    cache,
		gatherer: gatherer,
		version:  version,
	}
}

// Root handles GET /
func (h *HealthHandlers) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Receipt Panel API",
		"version": h.version,
		"status":  "online",
	})
}

// HealthCheck probes the database. Redis is reported but does not make the
// service unhealthy because the dashboard falls back to direct queries.
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), probeTimeout)
	defer cancel()

	body := map[string]string{
		"status":   "healthy",
		"database": "connected",
	}
	status := http.StatusOK

	if err := h.db.Ping(ctx); err != nil {
		body["status"] = "unhealthy"
		body["database"] = "disconnected"
		status = http.StatusInternalServerError
	}

	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			body["cache"] = "disconnected"
		} else {
			body["cache"] = "connected"
		}
	}

	return c.JSON(status, body)
}

// Metrics serves the Prometheus exposition format.
func (h *HealthHandlers) Metrics() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
}
