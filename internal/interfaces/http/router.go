package http

import (
	_ "embed"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/finanzas-ai/internal/application/dto"
	"github.com/jhoicas/finanzas-ai/pkg/config"
	"github.com/jhoicas/finanzas-ai/pkg/logger"
)

//go:embed index.html
var indexHTML []byte

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Assistant Answerer
	Pipeline  PipelineRunner
	Migrator  Migrator
	Provider  string
	JWT       config.JWTConfig
	Log       *logger.Logger
}

// Router registra las rutas de la aplicación.
func Router(app *fiber.App, deps RouterDeps) {
	// Interfaz de chat embebida
	app.Get("/", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.Send(indexHTML)
	})

	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(dto.HealthResponse{Status: "healthy", AIProvider: deps.Provider})
	})

	// Chat (público)
	chatHandler := NewChatHandler(deps.Assistant, deps.Log)
	api.Post("/ask", chatHandler.Ask)

	// Auth (público; solo útil si hay secreto configurado)
	authHandler := NewAuthHandler(deps.JWT)
	api.Post("/auth/login", authHandler.Login)

	// Operaciones administrativas. Con JWT_SECRET vacío quedan abiertas
	// (despliegue local); con secreto requieren Bearer Token.
	protected := api.Group("/", AuthMiddleware(deps.JWT.Secret))

	etlHandler := NewETLHandler(deps.Pipeline, deps.Log)
	protected.Post("/etl", etlHandler.Run)

	adminHandler := NewAdminHandler(deps.Migrator, deps.Log)
	protected.Post("/admin/migrate", adminHandler.Migrate)
}
