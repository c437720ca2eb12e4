// Package app wires configuration, the store, and every service together.
// Both the API server and the journal CLI build on it; neither contains
// business logic of its own.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pkordes/trip-journal/internal/backup"
	"github.com/pkordes/trip-journal/internal/config"
	"github.com/pkordes/trip-journal/internal/handler"
	"github.com/pkordes/trip-journal/internal/metrics"
	"github.com/pkordes/trip-journal/internal/service"
	"github.com/pkordes/trip-journal/internal/store"
)

// App holds the open store and the services built on it.
type App struct {
	Store  *store.Store
	Core   *service.Core
	Target backup.Storage

	Trips       *service.TripService
	Entries     *service.EntryService
	Places      *service.PlaceService
	RoutePoints *service.RoutePointService
	Favorites   *service.FavoriteService
	Tags        *service.TagService
	Themes      *service.ThemeService
	Settings    *service.SettingsService
	Search      *service.SearchService
	Stats       *service.StatsService
	Export      *service.ExportService
	Backup      *service.BackupService
}

// Open connects to the configured store, applies pending migrations, and
// builds every service. A nil registry leaves backup metrics unexported.
func Open(ctx context.Context, cfg config.Config, log *slog.Logger, registry prometheus.Registerer) (*App, error) {
	driver, err := store.ParseDriver(cfg.StoreDriver)
	if err != nil {
		return nil, fmt.Errorf("app.Open: %w", err)
	}
	st, err := store.Open(ctx, driver, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("app.Open: %w", err)
	}
	applied, err := st.Migrate(ctx)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("app.Open: %w", err)
	}
	log.Info("store ready", "driver", driver, "migrations_applied", applied)

	var bm *metrics.Backup
	if registry != nil {
		if bm, err = metrics.NewBackup(registry); err != nil {
			st.Close()
			return nil, fmt.Errorf("app.Open: %w", err)
		}
	}

	target, err := NewBackupTarget(ctx, cfg.Backup)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("app.Open: %w", err)
	}

	return New(st, target, bm, service.WithLogger(log)), nil
}

// New builds every service on an already-migrated store. target may be nil
// when no backup target is configured.
func New(st *store.Store, target backup.Storage, bm *metrics.Backup, opts ...service.Option) *App {
	core := service.NewCore(st, opts...)
	settings := service.NewSettingsService(core)
	return &App{
		Store:       st,
		Core:        core,
		Target:      target,
		Trips:       service.NewTripService(core),
		Entries:     service.NewEntryService(core),
		Places:      service.NewPlaceService(core),
		RoutePoints: service.NewRoutePointService(core),
		Favorites:   service.NewFavoriteService(core),
		Tags:        service.NewTagService(core),
		Themes:      service.NewThemeService(core),
		Settings:    settings,
		Search:      service.NewSearchService(core),
		Stats:       service.NewStatsService(core),
		Export:      service.NewExportService(core),
		Backup:      service.NewBackupService(core, settings, bm),
	}
}

// Services returns the subset of services exposed over HTTP.
func (a *App) Services() handler.Services {
	return handler.Services{
		Trips:     a.Trips,
		Entries:   a.Entries,
		Tags:      a.Tags,
		Favorites: a.Favorites,
		Search:    a.Search,
		Stats:     a.Stats,
		Export:    a.Export,
		Backup:    a.Backup,
	}
}

// Close releases the store.
func (a *App) Close() error {
	return a.Store.Close()
}

// NewBackupTarget builds the snapshot storage described by cfg. When a key
// is configured, snapshots are sealed before they are written.
func NewBackupTarget(ctx context.Context, cfg config.BackupConfig) (backup.Storage, error) {
	var sealer *backup.Sealer
	if cfg.Key != "" {
		key, err := backup.ParseKey(cfg.Key)
		if err != nil {
			return nil, fmt.Errorf("BACKUP_KEY: %w", err)
		}
		if sealer, err = backup.NewSealer(key); err != nil {
			return nil, err
		}
	}

	switch cfg.Target {
	case "s3":
		client, err := backup.NewS3Client(ctx, backup.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, err
		}
		return backup.NewS3Storage(client, cfg.S3Bucket, backup.DefaultObjectKey, sealer), nil
	default:
		if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
			return nil, fmt.Errorf("backup dir: %w", err)
		}
		return backup.NewFileStorage(cfg.Dir, sealer), nil
	}
}
