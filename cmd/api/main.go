package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/finanzas-ai/internal/application/chat"
	"github.com/jhoicas/finanzas-ai/internal/application/etl"
	"github.com/jhoicas/finanzas-ai/internal/application/ports"
	infraai "github.com/jhoicas/finanzas-ai/internal/infrastructure/ai"
	"github.com/jhoicas/finanzas-ai/internal/infrastructure/directo"
	infraelastic "github.com/jhoicas/finanzas-ai/internal/infrastructure/elastic"
	httpRouter "github.com/jhoicas/finanzas-ai/internal/interfaces/http"
	"github.com/jhoicas/finanzas-ai/pkg/config"
	"github.com/jhoicas/finanzas-ai/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	es, err := infraelastic.NewClient(ctx, cfg.Elastic, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Elasticsearch")
	}

	// Proveedor LLM según configuración.
	var llm ports.LLMService
	switch cfg.AI.Provider {
	case "anthropic":
		llm = infraai.NewAnthropicService(cfg.AI.AnthropicKey, cfg.AI.AnthropicModel)
	default:
		llm = infraai.NewOpenAIService(cfg.AI.OpenAIKey, cfg.AI.OpenAIModel)
	}
	log.Info().Str("proveedor", llm.Provider()).Msg("proveedor de IA configurado")

	directoClient := directo.NewClient(cfg.Directo.BaseURL, cfg.Directo.Token, log)
	indexer := infraelastic.NewIndexer(es, log)
	searcher := infraelastic.NewSearcher(es, log)
	migrator := infraelastic.NewMigrator(es, log)

	assistant := chat.NewAssistant(llm, searcher, log)
	pipeline := etl.NewPipeline(directoClient, indexer, log)

	// Corrida diaria del ETL si hay horario configurado.
	var scheduler *etl.Scheduler
	if cfg.Scheduler.At != "" {
		scheduler = etl.NewScheduler(pipeline, log)
		if err := scheduler.Start(cfg.Scheduler.At); err != nil {
			log.Fatal().Err(err).Msg("programar pipeline")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:     cfg.App.Name,
		IdleTimeout: time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Finanzas AI API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Assistant: assistant,
		Pipeline:  pipeline,
		Migrator:  migrator,
		Provider:  llm.Provider(),
		JWT:       cfg.JWT,
		Log:       log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	if scheduler != nil {
		scheduler.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
