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

	"github.com/jhoicas/billing-api/internal/application/analytics"
	"github.com/jhoicas/billing-api/internal/application/billing"
	"github.com/jhoicas/billing-api/internal/bootstrap"
	"github.com/jhoicas/billing-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/billing-api/internal/infrastructure/pdf"
	"github.com/jhoicas/billing-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/billing-api/internal/interfaces/http"
	"github.com/jhoicas/billing-api/pkg/config"
	"github.com/jhoicas/billing-api/pkg/logger"
	"github.com/jhoicas/billing-api/pkg/urlsign"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	settings, err := bootstrap.Settings(cfg.Billing)
	if err != nil {
		log.Fatal().Err(err).Msg("configuración de facturación")
	}

	ctx := context.Background()
	if err := postgres.Migrate(cfg.DB.ConnectionString(), log.Zerolog()); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	signer, err := urlsign.New(cfg.Billing.SigningSecret, time.Now)
	if err != nil {
		log.Fatal().Err(err).Msg("firmador de enlaces")
	}

	locker, closeLocker, err := bootstrap.Locker(ctx, cfg.Redis, log.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	defer closeLocker()

	// Eventos: contador Prometheus → cola asíncrona (email / webhook)
	m := metrics.New()
	dispatcher := bootstrap.Dispatcher(cfg.Notify, m, log.Zerolog())
	events := m.Publisher(dispatcher)

	deps := bootstrap.Deps(pool, signer, events, settings, log.Component("billing"))
	renderer := infrapdf.NewMarotoRenderer(infrapdf.Issuer{
		Name:    cfg.Billing.BusinessName,
		Email:   cfg.Billing.BusinessEmail,
		Phone:   cfg.Billing.BusinessPhone,
		Website: cfg.Billing.BusinessWebsite,
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
		Title:    "Billing API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		ContactUC:       billing.NewContactUseCase(deps),
		QuoteUC:         billing.NewQuoteUseCase(deps),
		InvoiceUC:       billing.NewInvoiceUseCase(deps),
		ConversionUC:    billing.NewConversionUseCase(deps),
		SweepUC:         billing.NewSweepUseCase(deps, locker),
		PDFUC:           billing.NewPDFUseCase(deps, renderer),
		AnalyticsUC:     analytics.NewDashboardUseCase(postgres.NewAnalyticsRepository(pool), time.Now),
		Links:           signer,
		DB:              pool,
		Metrics:         m,
		JWTSecret:       cfg.JWT.Secret,
		PublicRateLimit: cfg.HTTP.PublicRateLimit,
		Log:             log.Component("http"),
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
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("notificaciones pendientes sin entregar")
	}

	log.Info().Msg("aplicación detenida")
}
