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

	"github.com/jhoicas/fleetsync-api/internal/application/auth"
	appsync "github.com/jhoicas/fleetsync-api/internal/application/sync"
	"github.com/jhoicas/fleetsync-api/internal/infrastructure/postgres"
	"github.com/jhoicas/fleetsync-api/internal/infrastructure/qbo"
	httpRouter "github.com/jhoicas/fleetsync-api/internal/interfaces/http"
	"github.com/jhoicas/fleetsync-api/pkg/config"
	"github.com/jhoicas/fleetsync-api/pkg/logger"
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
		Str("qb_env", cfg.QB.Environment).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	credentialRepo := postgres.NewCredentialRepository(pool)
	configRepo := postgres.NewConfigRepository(pool)
	recordRepo := postgres.NewRecordRepository(pool)

	qbClient := qbo.NewClient(cfg.QB.Environment)
	oauthClient := qbo.NewOAuthClient(cfg.QB.ClientID, cfg.QB.ClientSecret)

	tokenManager := appsync.NewTokenManager(
		credentialRepo,
		oauthClient,
		time.Duration(cfg.QB.RefreshBufferMin)*time.Minute,
		log,
	)
	syncUC := appsync.NewSyncUseCase(tokenManager, qbClient, configRepo, recordRepo, log)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "FleetSync QB API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		SyncUC:     syncUC,
		AuthUC:     authUC,
		ConfigRepo: configRepo,
		RecordRepo: recordRepo,
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
