// Package app wires configuration, storage and services into one context
// object that commands and the MCP server share.
package app

import (
	"context"
	"errors"
	"fmt"

	"worldsmith/internal/ai"
	"worldsmith/internal/autosave"
	"worldsmith/internal/config"
	"worldsmith/internal/extract"
	"worldsmith/internal/logger"
	"worldsmith/internal/prefs"
	"worldsmith/internal/remotesync"
	"worldsmith/internal/store"
	"worldsmith/internal/store/postgres"
	"worldsmith/internal/store/redis"
	"worldsmith/internal/store/sqlite"
	"worldsmith/internal/transfer"
	"worldsmith/internal/world"
)

var ErrSyncDisabled = errors.New("remote sync is not configured")

type App struct {
	Config   *config.ProjectConfig
	Log      *logger.Logger
	Store    store.Store
	Worlds   *world.Repository
	Transfer *transfer.Service
	Prefs    *prefs.Service
	Sync     *remotesync.Syncer

	remote *remotesync.ObjectRemote
}

// New opens the configured store and builds the services on top of it.
// A remote that cannot be reached disables sync instead of failing.
func New(ctx context.Context, cfg *config.ProjectConfig, log *logger.Logger) (*App, error) {
	st, err := OpenStore(ctx, cfg.Storage.DSN)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config: cfg,
		Log:    log,
		Store:  st,
		Worlds: world.NewRepository(st),
	}
	a.Transfer = transfer.NewService(a.Worlds, log, transfer.Options{
		ImportSuffix:      cfg.Import.NameSuffix,
		RewriteReferences: cfg.Import.RewriteReferences,
	})

	if cfg.Sync.Enabled {
		remote, err := remotesync.NewObjectRemote(ctx, remotesync.ObjectConfig{
			Endpoint:  cfg.Sync.Endpoint,
			Bucket:    cfg.Sync.Bucket,
			AccessKey: cfg.Sync.AccessKey,
			SecretKey: cfg.Sync.SecretKey,
			Secure:    cfg.Sync.Secure,
		})
		if err != nil {
			log.Warn("remote sync unavailable", "endpoint", cfg.Sync.Endpoint, "error", err)
		} else {
			a.remote = remote
		}
	}
	var r remotesync.Remote
	if a.remote != nil {
		r = a.remote
	}
	a.Sync = remotesync.NewSyncer(cfg.Sync.Enabled, cfg.Sync.UserID, r, log)
	a.Prefs = prefs.NewService(st, a.Sync)
	return a, nil
}

// OpenStore selects a backend by DSN scheme.
func OpenStore(ctx context.Context, dsn string) (store.Store, error) {
	scheme, err := store.Scheme(dsn)
	if err != nil {
		return nil, err
	}
	switch scheme {
	case "memory":
		return store.NewMemory(), nil
	case "sqlite":
		c, err := sqlite.New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "postgres":
		c, err := postgres.New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "redis", "rediss":
		c, err := redis.New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported storage scheme: %s", scheme)
	}
}

// Extractor builds the AI-backed extractor. It fails without an API key.
func (a *App) Extractor() (*extract.Extractor, error) {
	client, err := ai.NewClient(ai.Config{
		BaseURL:     a.Config.AI.BaseURL,
		APIKey:      a.Config.AI.APIKey,
		Model:       a.Config.AI.Model,
		Temperature: a.Config.AI.Temperature,
		Timeout:     a.Config.AI.Timeout,
		MaxRetries:  a.Config.AI.MaxRetries,
	}, a.Log)
	if err != nil {
		return nil, err
	}
	return extract.NewExtractor(client, a.Log), nil
}

// Autosaver returns a debounced scheduler using the configured delay.
func Autosaver[T any](a *App, save func(ctx context.Context, v T) error, onError func(error)) *autosave.Scheduler[T] {
	return autosave.New(autosave.Options[T]{
		Delay:   a.Config.Autosave.Debounce,
		Save:    save,
		OnError: onError,
		Log:     a.Log,
	})
}

// UploadExport stores a rendered export in the user's remote folder.
func (a *App) UploadExport(ctx context.Context, res *transfer.Result) (string, error) {
	if a.remote == nil || !a.Sync.Enabled() {
		return "", ErrSyncDisabled
	}
	return a.remote.UploadExport(ctx, a.Config.Sync.UserID, res.Filename, res.Data, res.MimeType)
}

func (a *App) Close(ctx context.Context) error {
	return a.Store.Close(ctx)
}
