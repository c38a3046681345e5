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
	"github.com/jhoicas/Talento-api/internal/application/category"
	"github.com/jhoicas/Talento-api/internal/domain/repository"
	"github.com/jhoicas/Talento-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Talento-api/internal/infrastructure/redisstore"
	httpRouter "github.com/jhoicas/Talento-api/internal/interfaces/http"
	"github.com/jhoicas/Talento-api/pkg/config"
	"github.com/jhoicas/Talento-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("fallback", cfg.Fallback.Backend).
		Msg("iniciando aplicación")

	ctx := context.Background()
	timeout := cfg.Fallback.StoreTimeout

	// Sin base de datos la aplicación arranca igual en modo respaldo.
	var (
		primary     repository.SalaryCategoryRepository
		departments repository.DepartmentRepository
		assignments repository.AssignmentCounter
		store       repository.ConfigStore
	)
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("conexión a PostgreSQL; se continúa solo con el almacén de respaldo")
		primary = postgres.NewUnavailableCategoryRepository(err)
	} else {
		defer pool.Close()
		primary = postgres.NewSalaryCategoryRepository(pool, timeout)
		departments = postgres.NewDepartmentRepository(pool, timeout)
		assignments = postgres.NewAssignmentRepository(pool, timeout)
	}

	switch cfg.Fallback.Backend {
	case config.FallbackPostgres:
		if pool == nil {
			log.Fatal().Msg("FALLBACK_BACKEND=postgres requiere PostgreSQL disponible")
		}
		store = postgres.NewConfigStoreRepository(pool, timeout)
	default:
		rdb := redisstore.NewClient(cfg.Redis)
		defer rdb.Close()
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis no responde; las escrituras en respaldo fallarán")
		}
		cancel()
		store = redisstore.NewConfigStore(rdb, timeout)
	}

	fallback := category.NewFallbackStore(store, cfg.Fallback.KeyPrefix, log)
	categorySvc := category.NewService(primary, fallback, departments, assignments, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.HTTP.DocsFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.DocsFile,
			Path:     "docs",
			Title:    "Talento API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  cfg.App.Name,
			"degraded": categorySvc.Degraded(),
		})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Categories: categorySvc,
		JWTSecret:  cfg.JWT.Secret,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
