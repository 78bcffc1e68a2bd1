package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"

	natsadapter "github.com/dasiro/saferoute/internal/adapters/nats"
	"github.com/dasiro/saferoute/internal/adapters/postgres"
	"github.com/dasiro/saferoute/internal/core/usecases"
	"github.com/dasiro/saferoute/internal/pkg/config"
	"github.com/dasiro/saferoute/internal/pkg/logging"
	"github.com/dasiro/saferoute/internal/pkg/metrics"
)

// auditor drains the ROUTE_AUDIT stream into the route_logs table. It is
// only needed when the API runs with audit.sink=nats.
func main() {
	cfg, err := config.Load("saferoute-auditor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/metrics", metrics.Handler())
	go func() {
		if err := app.Listen(cfg.Audit.MetricsAddr); err != nil {
			slog.Error("metrics listener stopped", "error", err)
		}
	}()
	defer app.Shutdown()

	slog.Info("auditor started", "subject", natsadapter.SubjectRouteAudit, "metrics", cfg.Audit.MetricsAddr)
	if err := usecases.NewAuditRecorder(postgres.NewRouteLogRepo(db)).Run(ctx, sub); err != nil {
		log.Fatalf("auditor: %v", err)
	}
	slog.Info("auditor stopped")
}
