package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/clinicore/clinic-scheduling/internal/config"
	"github.com/clinicore/clinic-scheduling/internal/db"
	"github.com/clinicore/clinic-scheduling/internal/inventory"
	"github.com/clinicore/clinic-scheduling/internal/observability"
)

// The expiry worker scans stock_inventory for lots whose expiration
// date has passed but still hold units, and logs them for the pharmacy
// to pull. It never mutates stock on its own; disposal is a human call.
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config load error: " + err.Error() + "\n")
		os.Exit(1)
	}

	observability.InitLogger("expiry-worker", cfg.Env)
	log.Info().Str("env", cfg.Env).Dur("interval", cfg.WorkerInterval).Msg("expiry-worker starting up")

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

	svc := inventory.NewService(inventory.NewPgRepository(pgPool))
	loc := cfg.Location()

	// Run once at startup
	runOnce(rootCtx, svc, loc)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Info().Msg("shutdown signal received, stopping expiry worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, svc, loc)
		}
	}
}

func runOnce(ctx context.Context, svc *inventory.Service, loc *time.Location) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	today := time.Now().In(loc).Format("2006-01-02")

	lots, err := svc.ExpiredLots(runCtx, today)
	if err != nil {
		log.Error().Err(err).Msg("expiry scan error")
		return
	}

	for _, lot := range lots {
		log.Warn().
			Int("stock_id", lot.ID).
			Str("medicine", lot.MedicineName).
			Int("quantity", lot.Quantity).
			Str("expired_on", deref(lot.ExpirationDate)).
			Msg("expired lot still in stock")
	}

	log.Info().
		Int("expired_lots", len(lots)).
		Dur("took", time.Since(start)).
		Msg("expiry scan complete")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
