// sweep ejecuta una pasada del barrido diario (recordatorios, expiración, facturas vencidas)
// y termina. Pensado para un cron externo:
//
//	0 9 * * * /usr/local/bin/sweep
//
// Código de salida 1 si la pasada falla.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/billing-api/internal/application/billing"
	"github.com/jhoicas/billing-api/internal/bootstrap"
	"github.com/jhoicas/billing-api/internal/infrastructure/postgres"
	"github.com/jhoicas/billing-api/pkg/config"
	"github.com/jhoicas/billing-api/pkg/logger"
	"github.com/jhoicas/billing-api/pkg/urlsign"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "sweep"})

	settings, err := bootstrap.Settings(cfg.Billing)
	if err != nil {
		log.Error().Err(err).Msg("configuración de facturación")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("conexión a PostgreSQL")
		return 1
	}
	defer pool.Close()

	signer, err := urlsign.New(cfg.Billing.SigningSecret, time.Now)
	if err != nil {
		log.Error().Err(err).Msg("firmador de enlaces")
		return 1
	}
	locker, closeLocker, err := bootstrap.Locker(ctx, cfg.Redis, log.Zerolog())
	if err != nil {
		// sin candado el barrido sigue siendo seguro: bloquea filas con SKIP LOCKED
		log.Warn().Err(err).Msg("redis no disponible, se ejecuta sin candado")
		locker, closeLocker = nil, func() {}
	}
	defer closeLocker()

	dispatcher := bootstrap.Dispatcher(cfg.Notify, nil, log.Zerolog())
	deps := bootstrap.Deps(pool, signer, dispatcher, settings, log.Component("billing"))

	res, runErr := billing.NewSweepUseCase(deps, locker).Run(ctx)

	// esperar a que se entreguen las notificaciones de esta pasada
	drainCtx, cancel := context.WithTimeout(context.Background(), cfg.Notify.MaxElapsed+10*time.Second)
	defer cancel()
	if err := dispatcher.Close(drainCtx); err != nil {
		log.Warn().Err(err).Msg("notificaciones pendientes sin entregar")
	}

	if runErr != nil {
		log.Error().Err(runErr).Msg("sweep fallido")
		return 1
	}
	log.Info().
		Int("reminders_sent", res.RemindersSent).
		Int("expired", res.Expired).
		Int("overdue", res.Overdue).
		Bool("skipped", res.Skipped).
		Msg("sweep finalizado")
	return 0
}
