package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strconv"
	"time"

	"github.com/pkordes/trip-journal/internal/domain"
	"github.com/pkordes/trip-journal/internal/repo"
	"github.com/pkordes/trip-journal/internal/watch"
)

// Known setting keys.
const (
	SettingThemeID       = "theme.id"
	SettingDistanceUnits = "units.distance"
	SettingBackupLastAt  = "backup.last_at"
	SettingBackupAuto    = "backup.auto"
)

// SettingsService is a typed key-value store of user preferences.
// Writes to different keys are independent; there is no multi-key transaction.
type SettingsService struct {
	core     *Core
	settings repo.SettingsRepo
	all      *collection[map[string]string]
}

// NewSettingsService constructs a SettingsService over the core's store.
func NewSettingsService(c *Core) *SettingsService {
	s := &SettingsService{core: c, settings: repo.NewSettingsRepo(c.store)}
	s.all = newCollection(c, "settings", s.settings.All, watch.Settings)
	return s
}

// Observe streams every setting. Each snapshot map is shared between
// subscribers and must not be modified.
func (s *SettingsService) Observe(ctx context.Context) (*watch.Subscription[map[string]string], error) {
	sub, err := s.all.observe(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.SettingsService.Observe: %w", err)
	}
	return sub, nil
}

// All returns a copy of every setting.
func (s *SettingsService) All(ctx context.Context) (map[string]string, error) {
	m, err := s.settings.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.SettingsService.All: %w", err)
	}
	return maps.Clone(m), nil
}

// String returns the value of key, or def when unset.
func (s *SettingsService) String(ctx context.Context, key, def string) (string, error) {
	v, ok, err := s.get(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	return v, nil
}

func (s *SettingsService) SetString(ctx context.Context, key, value string) error {
	return s.set(ctx, key, value)
}

// Bool returns key parsed as a boolean, or def when unset. A stored value
// that does not parse yields domain.ErrValidation.
func (s *SettingsService) Bool(ctx context.Context, key string, def bool) (bool, error) {
	v, ok, err := s.get(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("service.SettingsService.Bool: %w: %s=%q", domain.ErrValidation, key, v)
	}
	return b, nil
}

func (s *SettingsService) SetBool(ctx context.Context, key string, value bool) error {
	return s.set(ctx, key, strconv.FormatBool(value))
}

// Int returns key parsed as an integer, or def when unset.
func (s *SettingsService) Int(ctx context.Context, key string, def int64) (int64, error) {
	v, ok, err := s.get(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def, fmt.Errorf("service.SettingsService.Int: %w: %s=%q", domain.ErrValidation, key, v)
	}
	return n, nil
}

func (s *SettingsService) SetInt(ctx context.Context, key string, value int64) error {
	return s.set(ctx, key, strconv.FormatInt(value, 10))
}

// Time returns key parsed as an RFC 3339 timestamp. ok is false when unset.
func (s *SettingsService) Time(ctx context.Context, key string) (t time.Time, ok bool, err error) {
	v, ok, err := s.get(ctx, key)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	t, err = time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("service.SettingsService.Time: %w: %s=%q", domain.ErrValidation, key, v)
	}
	return t.UTC(), true, nil
}

func (s *SettingsService) SetTime(ctx context.Context, key string, value time.Time) error {
	return s.set(ctx, key, value.UTC().Format(time.RFC3339Nano))
}

// Delete unsets key. Deleting an unset key is not an error.
func (s *SettingsService) Delete(ctx context.Context, key string) error {
	if err := s.settings.Delete(ctx, key); err != nil {
		return fmt.Errorf("service.SettingsService.Delete: %w", err)
	}
	s.core.notify(ctx, watch.Settings)
	return nil
}

func (s *SettingsService) get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.settings.Get(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("service.SettingsService.get: %w", err)
	}
	return v, true, nil
}

func (s *SettingsService) set(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("service.SettingsService.set: %w: key is required", domain.ErrValidation)
	}
	if err := s.settings.Set(ctx, key, value); err != nil {
		return fmt.Errorf("service.SettingsService.set: %w", err)
	}
	s.core.notify(ctx, watch.Settings)
	return nil
}
