package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Talento-api/internal/application/category"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Categories *category.Service
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	writers := RequireRole(RoleAdmin, RoleHR)

	categories := protected.Group("/salary-categories")
	h := NewSalaryCategoryHandler(deps.Categories)
	categories.Get("/", h.List)
	categories.Get("/overview", h.Overview)
	categories.Get("/backup", h.BackupInfo)
	categories.Post("/cleanup", writers, h.Cleanup)
	categories.Post("/restore", writers, h.Restore)
	categories.Post("/", writers, h.Create)
	categories.Put("/:key", writers, h.Update)
	categories.Delete("/:key", writers, h.Delete)
	categories.Post("/:key/move", writers, h.Move)
}
