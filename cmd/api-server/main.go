package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/clinicore/clinic-scheduling/internal/api"
	"github.com/clinicore/clinic-scheduling/internal/config"
	"github.com/clinicore/clinic-scheduling/internal/db"
	"github.com/clinicore/clinic-scheduling/internal/forecast"
	"github.com/clinicore/clinic-scheduling/internal/inventory"
	"github.com/clinicore/clinic-scheduling/internal/observability"
	"github.com/clinicore/clinic-scheduling/internal/observability/metrics"
	"github.com/clinicore/clinic-scheduling/internal/patient"
	"github.com/clinicore/clinic-scheduling/internal/prescription"
	redisclient "github.com/clinicore/clinic-scheduling/internal/redis"
	"github.com/clinicore/clinic-scheduling/internal/schedule"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config load error: " + err.Error() + "\n")
		os.Exit(1)
	}

	observability.InitLogger("api-server", cfg.Env)
	log.Info().Str("env", cfg.Env).Str("http_port", cfg.HTTPPort).Msg("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	log.Info().Msg("connected to Postgres")

	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection error")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing redis")
		}
	}()
	log.Info().Msg("connected to Redis")

	met := metrics.New()
	locker := redisclient.NewRedisSlotLocker(rdb, cfg.LockTTL)

	scheduleSvc := schedule.NewService(
		schedule.NewPgRepository(pgPool),
		locker,
		cfg.Location(),
		observability.Component("schedule"),
	)
	patientRepo := patient.NewPgRepository(pgPool)
	patientSvc := patient.NewService(patientRepo)
	inventorySvc := inventory.NewService(inventory.NewPgRepository(pgPool))
	prescriptionSvc := prescription.NewService(prescription.NewPgRepository(pgPool), patientRepo)
	forecastClient := forecast.NewClient(cfg.MLBaseURL, cfg.MLTimeout, observability.Component("forecast"))

	router := api.NewRouter(api.RouterConfig{
		Schedule:      scheduleSvc,
		Patients:      patientSvc,
		Inventory:     inventorySvc,
		Prescriptions: prescriptionSvc,
		Forecast:      forecastClient,
		Metrics:       met,
		Pool:          pgPool,
		Redis:         rdb,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-rootCtx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	log.Info().Msg("api-server stopped")
}
