package main

import (
	"context"
	"fmt"

	"github.com/dasiro/saferoute/internal/adapters/postgres"
	"github.com/dasiro/saferoute/internal/pkg/config"
	"github.com/dasiro/saferoute/internal/pkg/logging"
)

func setup(ctx context.Context) (*config.Config, *postgres.DB, error) {
	cfg, err := config.Load("saferoute-ingestor")
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("database: %w", err)
	}
	return cfg, db, nil
}
