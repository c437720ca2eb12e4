package repo

import (
	"context"
	"fmt"

	"github.com/pkordes/trip-journal/internal/store"
)

// SettingsRepo is a plain key/value table. Values are strings; typing is
// the service's job.
type SettingsRepo interface {
	// Get returns the value for key, or domain.ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// All returns every stored setting.
	All(ctx context.Context) (map[string]string, error)
}

type sqlSettingsRepo struct {
	db store.Querier
}

// NewSettingsRepo constructs a SettingsRepo over q.
func NewSettingsRepo(q store.Querier) SettingsRepo {
	return &sqlSettingsRepo{db: q}
}

func (r *sqlSettingsRepo) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if err != nil {
		return "", wrap("repo.SettingsRepo.Get", err)
	}
	return v, nil
}

func (r *sqlSettingsRepo) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return wrap("repo.SettingsRepo.Set", err)
	}
	return nil
}

func (r *sqlSettingsRepo) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key); err != nil {
		return wrap("repo.SettingsRepo.Delete", err)
	}
	return nil
}

func (r *sqlSettingsRepo) All(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, wrap("repo.SettingsRepo.All", err)
	}
	type kv struct{ k, v string }
	pairs, err := collect(rows, func(s scanner) (kv, error) {
		var p kv
		err := s.Scan(&p.k, &p.v)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("repo.SettingsRepo.All: %w", err)
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		out[p.k] = p.v
	}
	return out, nil
}
