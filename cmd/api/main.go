package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/dasiro/saferoute/internal/adapters/http"
	"github.com/dasiro/saferoute/internal/adapters/kakao"
	natsadapter "github.com/dasiro/saferoute/internal/adapters/nats"
	"github.com/dasiro/saferoute/internal/adapters/ors"
	"github.com/dasiro/saferoute/internal/adapters/postgres"
	"github.com/dasiro/saferoute/internal/adapters/valkey"
	"github.com/dasiro/saferoute/internal/core/domain"
	"github.com/dasiro/saferoute/internal/core/ports"
	"github.com/dasiro/saferoute/internal/core/usecases"
	"github.com/dasiro/saferoute/internal/pkg/config"
	"github.com/dasiro/saferoute/internal/pkg/logging"
	"github.com/dasiro/saferoute/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("saferoute-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// The cache is optional; a nil CacheService disables read-through caching.
	var cacheSvc ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable, caching disabled", "error", err)
	} else {
		defer cache.Close()
		cacheSvc = cache
	}

	audit := auditSink(cfg, db)
	if closer, ok := audit.(interface{ Close() }); ok {
		defer closer.Close()
	}

	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, /ws disabled", "error", err)
	} else {
		defer natsConn.Close()
	}

	hazardRepo := postgres.NewHazardRepo(db)
	districtRepo := postgres.NewDistrictRepo(db)

	backends := map[domain.RouteProvider]ports.RoutingBackend{}
	if cfg.Kakao.APIKey != "" {
		backends[domain.ProviderPathFilter] = kakao.NewDirections(cfg.Kakao.DirectionsBase, cfg.Kakao.APIKey, cfg.KakaoTimeout())
	} else {
		slog.Warn("kakao.api_key not set, PATH_FILTER routes disabled")
	}
	if cfg.ORS.APIKey != "" {
		backends[domain.ProviderPolygonAvoid] = ors.NewDirections(cfg.ORS.BaseURL, cfg.ORS.APIKey, cfg.ORSTimeout())
	} else {
		slog.Warn("ors.api_key not set, POLYGON_AVOID routes disabled")
	}
	local := kakao.NewLocal(cfg.Kakao.LocalBase, cfg.Kakao.APIKey, cfg.KakaoTimeout())

	deps := &http.Dependencies{
		SafeRoutes:          usecases.NewSafeRouteService(hazardRepo, audit, backends, cfg.Routing.CirclePoints),
		Hazards:             usecases.NewHazardService(hazardRepo),
		Districts:           usecases.NewDistrictService(districtRepo, cacheSvc, float64(cfg.Routing.MatchMaxDistanceM)),
		Geocode:             usecases.NewGeocodeService(local, cacheSvc),
		DefaultAvoidRadiusM: cfg.Routing.DefaultAvoidRadiusM,
		NATS:                natsConn,
		DB:                  db,
		Cache:               cache,
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    256 * 1024,
		AppName:      "SafeRoute API",
	})
	app.Use(recover.New())

	http.SetupRoutes(app, deps, http.RouterOptions{
		RequestTimeout: time.Duration(cfg.Server.RequestTimeout) * time.Second,
		AllowOrigins:   cfg.Server.AllowOrigins,
		RateLimit:      cfg.Server.RateLimit,
	})

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "audit_sink", cfg.Audit.Sink)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// auditSink picks the route audit writer. The NATS sink hands entries to the
// auditor process; when the broker is down the API writes to Postgres itself.
func auditSink(cfg *config.Config, db *postgres.DB) ports.RouteLogWriter {
	if cfg.Audit.Sink == "nats" {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err == nil {
			return pub
		}
		slog.Warn("nats audit sink unavailable, writing audit to postgres", "error", err)
	}
	return postgres.NewRouteLogRepo(db)
}
