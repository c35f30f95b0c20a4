package handlers

import (
	"receiptpanel/internal/middleware"
	"receiptpanel/internal/models"
	"receiptpanel/internal/services"

	"github.com/labstack/echo/v4"
)

// Router bundles the handler groups mounted by RegisterRoutes.
type Router struct {
	Health   *HealthHandlers
	Auth     *AuthHandlers
	Licenses *LicenseHandlers
	Users    *UserHandlers
	Sessions *SessionHandlers
	Usage    *UsageHandlers
}

// RegisterRoutes mounts the client, admin and ops endpoints on e.
func RegisterRoutes(e *echo.Echo, r Router, authService services.AuthService, audit *middleware.AuditMiddleware) {
	e.GET("/", r.Health.Root)
	e.GET("/health", r.Health.HealthCheck)
	e.GET("/metrics", r.Health.Metrics())

	api := e.Group("/api")

	// Desktop client endpoints authenticate with the license key itself.
	api.POST("/license/check", r.Licenses.Check)
	api.POST("/receipt/log", r.Usage.LogReceipt)
	api.POST("/session/start", r.Sessions.StartSession)
	api.POST("/session/end", r.Sessions.EndSession)
	api.POST("/auth/login", r.Auth.Login)

	admin := api.Group("/admin", middleware.AdminJWT(authService), audit.AuditWrites())
	writer := middleware.RequireRole(models.RoleAdmin)

	admin.GET("/me", r.Auth.Me)

	admin.GET("/licenses", r.Licenses.ListLicenses)
	admin.GET("/licenses/:id", r.Licenses.GetLicense)
	admin.POST("/licenses/create", r.Licenses.CreateLicense, writer)
	admin.PUT("/licenses/:id", r.Licenses.UpdateLicense, writer)
	admin.DELETE("/licenses/:id", r.Licenses.DeleteLicense, writer)

	admin.GET("/users", r.Users.ListUsers)
	admin.GET("/users/:id/details", r.Users.GetUserDetails)
	admin.DELETE("/users/:id", r.Users.DeleteUser, writer)

	admin.GET("/sessions", r.Sessions.ListSessions)
	admin.GET("/sessions/:id", r.Sessions.GetSession)

	admin.GET("/stats/daily", r.Usage.DailyStats)
	admin.GET("/stats/companies", r.Usage.CompanyStats)
	admin.GET("/receipts/export", r.Usage.ExportReceipts)
	admin.GET("/dashboard/today", r.Usage.DashboardToday)
	admin.GET("/activities", r.Usage.Activities)
}
