package main

import (
	"context"

	"worldsmith/internal/app"
	"worldsmith/internal/config"
	"worldsmith/internal/logger"
)

func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, err
	}
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Sync()
		return nil, err
	}
	return a, nil
}

func closeApp(ctx context.Context, a *app.App) {
	if err := a.Close(ctx); err != nil {
		a.Log.Warn("closing store", "error", err)
	}
	a.Log.Sync()
}
