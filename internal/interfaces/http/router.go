package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/fleetsync-api/internal/application/auth"
	"github.com/jhoicas/fleetsync-api/internal/application/sync"
	"github.com/jhoicas/fleetsync-api/internal/domain/entity"
	"github.com/jhoicas/fleetsync-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	SyncUC     *sync.SyncUseCase
	AuthUC     *auth.AuthUseCase
	ConfigRepo repository.ConfigRepository
	RecordRepo repository.RecordRepository
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Sincronización con QuickBooks (protegido)
	qb := protected.Group("/qb")
	syncHandler := NewSyncHandler(deps.SyncUC, deps.RecordRepo)
	qb.Post("/invoices", syncHandler.PushInvoices)
	qb.Get("/records", syncHandler.ListRecords)

	// Configuración por compañía (solo admin)
	configHandler := NewConfigHandler(deps.ConfigRepo)
	qb.Get("/config", configHandler.List)
	qb.Get("/config/:code", configHandler.GetByCode)
	qb.Post("/config", RequireRole(entity.RoleAdmin), configHandler.Upsert)
}
