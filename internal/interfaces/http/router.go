package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Huella-api/internal/application/auth"
	"github.com/jhoicas/Huella-api/internal/application/session"
	"github.com/jhoicas/Huella-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Store        SessionReader
	TenantGate   *session.Gate
	OperatorGate *session.Gate
	AuthUC       *auth.AuthUseCase
	AuditUC      *usecase.AuditUseCase
	AdminUC      *usecase.AdminUseCase
}

// Router registra las rutas de la API. Los dos grupos protegidos comparten la
// misma abstracción de Guard; solo cambian la puerta y sus destinos.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Estado de sesión (público: el propio cliente lo usa para decidir qué pintar)
	sessionHandler := NewSessionHandler(deps.Store)
	api.Get("/session", sessionHandler.State)

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/signup", authHandler.Signup)
	authGroup.Post("/recover", authHandler.Recover)
	authGroup.Post("/logout", authHandler.Logout)

	// Área de tenant (protegida por la puerta de tenant)
	dashboard := api.Group("/dashboard", Guard(deps.Store, deps.TenantGate))
	auditHandler := NewAuditHandler(deps.AuditUC, deps.Store)
	dashboard.Get("/audits", auditHandler.List)
	dashboard.Post("/audits", auditHandler.Upload)
	dashboard.Get("/stats", auditHandler.Stats)

	// Área de operador (protegida por la puerta de operador)
	admin := api.Group("/admin", Guard(deps.Store, deps.OperatorGate))
	adminHandler := NewAdminHandler(deps.AdminUC)
	admin.Get("/profiles", adminHandler.ListProfiles)
	admin.Patch("/profiles/:id/status", adminHandler.UpdateStatus)
	admin.Patch("/profiles/:id", adminHandler.UpdateProfile)
	admin.Get("/profiles/:id/audits", adminHandler.TenantAudits)
}
