package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/pkordes/trip-journal/internal/store"
)

// SearchHistoryRepo persists the most-recently-used search queries.
type SearchHistoryRepo interface {
	// Touch records query as used at the given time and moves it to the
	// front. Order follows call order, not the clock.
	Touch(ctx context.Context, query string, at time.Time) error
	// Recent returns up to limit queries, most recently used first.
	Recent(ctx context.Context, limit int) ([]string, error)
	// Trim deletes all but the keep most recently used queries.
	Trim(ctx context.Context, keep int) error
	// Clear deletes the whole history.
	Clear(ctx context.Context) error
}

type sqlSearchHistoryRepo struct {
	db store.Querier
}

// NewSearchHistoryRepo constructs a SearchHistoryRepo over q.
func NewSearchHistoryRepo(q store.Querier) SearchHistoryRepo {
	return &sqlSearchHistoryRepo{db: q}
}

func (r *sqlSearchHistoryRepo) Touch(ctx context.Context, query string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO search_history (query, used_at, seq)
		VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM search_history))
		ON CONFLICT (query) DO UPDATE SET used_at = excluded.used_at, seq = excluded.seq`, query, toNanos(at))
	if err != nil {
		return wrap("repo.SearchHistoryRepo.Touch", err)
	}
	return nil
}

func (r *sqlSearchHistoryRepo) Recent(ctx context.Context, limit int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT query FROM search_history ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, wrap("repo.SearchHistoryRepo.Recent", err)
	}
	queries, err := collect(rows, func(s scanner) (string, error) {
		var q string
		err := s.Scan(&q)
		return q, err
	})
	if err != nil {
		return nil, fmt.Errorf("repo.SearchHistoryRepo.Recent: %w", err)
	}
	return queries, nil
}

func (r *sqlSearchHistoryRepo) Trim(ctx context.Context, keep int) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM search_history
		WHERE query NOT IN (
			SELECT query FROM search_history ORDER BY seq DESC LIMIT ?
		)`, keep)
	if err != nil {
		return wrap("repo.SearchHistoryRepo.Trim", err)
	}
	return nil
}

func (r *sqlSearchHistoryRepo) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM search_history`); err != nil {
		return wrap("repo.SearchHistoryRepo.Clear", err)
	}
	return nil
}
