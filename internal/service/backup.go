package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/pkordes/trip-journal/internal/backup"
	"github.com/pkordes/trip-journal/internal/domain"
	"github.com/pkordes/trip-journal/internal/metrics"
	"github.com/pkordes/trip-journal/internal/repo"
	"github.com/pkordes/trip-journal/internal/store"
	"github.com/pkordes/trip-journal/internal/watch"
)

// BackupService exports the whole journal as a snapshot and restores
// snapshots into the store.
//
// Restore treats the snapshot as authoritative: rows whose id already exists
// are overwritten, the rest are inserted, and rows absent from the snapshot
// are left alone. At most one import runs per service at a time; exports and
// other reads are not blocked by the gate.
type BackupService struct {
	core     *Core
	settings *SettingsService
	metrics  *metrics.Backup
	gate     *semaphore.Weighted
}

// NewBackupService constructs a BackupService. m may be nil, in which case
// metrics are kept but never exposed.
func NewBackupService(c *Core, settings *SettingsService, m *metrics.Backup) *BackupService {
	if m == nil {
		m = metrics.NewUnregisteredBackup()
	}
	return &BackupService{core: c, settings: settings, metrics: m, gate: semaphore.NewWeighted(1)}
}

// Export serializes every trip and entry, each ordered by id, read in one
// transaction. An unchanged store always exports the same bytes.
func (s *BackupService) Export(ctx context.Context) ([]byte, error) {
	var data domain.BackupData
	err := s.core.store.WithTx(ctx, func(ctx context.Context, q store.Querier) error {
		trips, err := repo.NewTripRepo(q).ListByID(ctx)
		if err != nil {
			return err
		}
		entries, err := repo.NewEntryRepo(q).ListAll(ctx)
		if err != nil {
			return err
		}
		data = domain.BackupData{Trips: trips, Entries: entries}
		return nil
	})
	var out []byte
	if err == nil {
		out, err = backup.Encode(data)
	}
	s.metrics.RecordExport(len(out), err, s.core.Now())
	if err != nil {
		return nil, fmt.Errorf("service.BackupService.Export: %w", err)
	}
	s.core.log.Info("backup exported", "trips", len(data.Trips), "entries", len(data.Entries), "bytes", len(out))
	return out, nil
}

// Import decodes b and restores it. The snapshot is fully decoded and
// checked before the first write, and all writes share one transaction, so
// a failed import leaves the store untouched. Importing the same snapshot
// twice has the same effect as importing it once.
func (s *BackupService) Import(ctx context.Context, b []byte) (domain.ImportResult, error) {
	start := time.Now()
	if err := s.gate.Acquire(ctx, 1); err != nil {
		s.metrics.RecordImport(metrics.ErrorCanceled, time.Since(start), s.core.Now(), false)
		return domain.ImportResult{}, fmt.Errorf("service.BackupService.Import: %w", err)
	}
	defer s.gate.Release(1)

	res, err := s.restore(ctx, b)
	s.metrics.RecordImport(importErrorType(err), time.Since(start), s.core.Now(), err == nil)
	if err != nil {
		s.core.log.Warn("backup import failed", "error", err)
		return domain.ImportResult{}, fmt.Errorf("service.BackupService.Import: %w", err)
	}
	s.metrics.RecordRows("trips", res.TripsInserted, res.TripsReplaced)
	s.metrics.RecordRows("entries", res.EntriesInserted, res.EntriesReplaced)
	s.core.log.Info("backup imported",
		"trips_inserted", res.TripsInserted, "trips_replaced", res.TripsReplaced,
		"entries_inserted", res.EntriesInserted, "entries_replaced", res.EntriesReplaced)
	return res, nil
}

func (s *BackupService) restore(ctx context.Context, b []byte) (domain.ImportResult, error) {
	data, err := backup.Decode(b)
	if err != nil {
		return domain.ImportResult{}, err
	}
	var res domain.ImportResult
	if len(data.Trips) == 0 && len(data.Entries) == 0 {
		return res, nil
	}
	err = s.core.store.WithTx(ctx, func(ctx context.Context, q store.Querier) error {
		trips, entries := repo.NewTripRepo(q), repo.NewEntryRepo(q)
		for _, t := range data.Trips {
			inserted, err := trips.Upsert(ctx, t)
			if err != nil {
				return err
			}
			count(inserted, &res.TripsInserted, &res.TripsReplaced)
		}
		for _, e := range data.Entries {
			inserted, err := entries.Upsert(ctx, e)
			if err != nil {
				return err
			}
			count(inserted, &res.EntriesInserted, &res.EntriesReplaced)
		}
		return nil
	})
	if err != nil {
		return domain.ImportResult{}, err
	}
	s.core.notify(ctx, watch.Trips, watch.Entries)
	return res, nil
}

// SaveTo exports a snapshot into st and records the time in the
// backup.last_at setting. It returns the snapshot size.
func (s *BackupService) SaveTo(ctx context.Context, st backup.Storage) (int, error) {
	data, err := s.Export(ctx)
	if err != nil {
		return 0, fmt.Errorf("service.BackupService.SaveTo: %w", err)
	}
	if err := st.Save(ctx, data); err != nil {
		return 0, fmt.Errorf("service.BackupService.SaveTo: %s: %w", st.Name(), err)
	}
	if err := s.settings.SetTime(ctx, SettingBackupLastAt, s.core.Now()); err != nil {
		return 0, fmt.Errorf("service.BackupService.SaveTo: %w", err)
	}
	return len(data), nil
}

// RestoreFrom loads the snapshot held by st and imports it. When st holds
// nothing the error wraps backup.ErrNoBackup.
func (s *BackupService) RestoreFrom(ctx context.Context, st backup.Storage) (domain.ImportResult, error) {
	data, err := st.Load(ctx)
	if err != nil {
		return domain.ImportResult{}, fmt.Errorf("service.BackupService.RestoreFrom: %s: %w", st.Name(), err)
	}
	res, err := s.Import(ctx, data)
	if err != nil {
		return domain.ImportResult{}, fmt.Errorf("service.BackupService.RestoreFrom: %w", err)
	}
	return res, nil
}

// LastBackupAt returns when SaveTo last succeeded.
func (s *BackupService) LastBackupAt(ctx context.Context) (time.Time, bool, error) {
	return s.settings.Time(ctx, SettingBackupLastAt)
}

func count(inserted bool, ins, repl *int) {
	if inserted {
		*ins++
	} else {
		*repl++
	}
}

func importErrorType(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrCorruptBackup):
		return metrics.ErrorCorrupt
	case errors.Is(err, domain.ErrOrphanEntry):
		return metrics.ErrorOrphan
	case errors.Is(err, domain.ErrStoreUnavailable):
		return metrics.ErrorUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.ErrorCanceled
	default:
		return metrics.ErrorOther
	}
}
