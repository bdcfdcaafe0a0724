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

	"github.com/jhoicas/Huella-api/internal/application/auth"
	"github.com/jhoicas/Huella-api/internal/application/ports"
	"github.com/jhoicas/Huella-api/internal/application/session"
	"github.com/jhoicas/Huella-api/internal/application/usecase"
	infraai "github.com/jhoicas/Huella-api/internal/infrastructure/ai"
	"github.com/jhoicas/Huella-api/internal/infrastructure/identity"
	"github.com/jhoicas/Huella-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Huella-api/internal/interfaces/http"
	"github.com/jhoicas/Huella-api/pkg/config"
	"github.com/jhoicas/Huella-api/pkg/logger"
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
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	profileRepo := postgres.NewProfileRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)

	// Adaptador del proveedor de identidad: dueño exclusivo de la sesión.
	identityClient := identity.NewClient(cfg.Identity, log.Zerolog())

	// Núcleo de sesión/autorización: resolver + store + puertas.
	resolver := session.NewResolver(profileRepo, cfg.Auth.OperatorOverrideIDs, log.Zerolog())
	store := session.NewStore(identityClient, resolver, log.Zerolog())
	if err := store.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("arranque del session store")
	}
	defer store.Close()

	// Diferir el arranque del servidor hasta que el primer intento de resolución
	// termine: ningún guard debe evaluar un estado a medio inicializar.
	readyCtx, cancelReady := context.WithTimeout(ctx, 15*time.Second)
	if err := store.WaitReady(readyCtx); err != nil {
		log.Warn().Err(err).Msg("el session store no quedó listo a tiempo; se arranca igualmente")
	}
	cancelReady()

	resolveTimeout := time.Duration(cfg.Auth.ResolveTimeoutSeconds) * time.Second
	tenantGate := session.NewTenantGate()
	operatorGate := session.NewOperatorGate(resolveTimeout)

	// Extractor de facturas por IA: Gemini por defecto, Anthropic como alternativa.
	var extractor ports.BillExtractor
	if cfg.AI.Provider == "anthropic" {
		extractor = infraai.NewAnthropicService(cfg.AI.AnthropicAPIKey, cfg.AI.AnthropicModel)
	} else {
		extractor = infraai.NewGeminiService(cfg.AI.GeminiAPIKey, cfg.AI.GeminiModel)
	}

	authUC := auth.NewAuthUseCase(identityClient, store, profileRepo, log.Zerolog())
	auditUC := usecase.NewAuditUseCase(auditRepo, extractor)
	adminUC := usecase.NewAdminUseCase(profileRepo, auditRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Huella API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Store:        store,
		TenantGate:   tenantGate,
		OperatorGate: operatorGate,
		AuthUC:       authUC,
		AuditUC:      auditUC,
		AdminUC:      adminUC,
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
