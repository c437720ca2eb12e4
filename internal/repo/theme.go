package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkordes/trip-journal/internal/domain"
	"github.com/pkordes/trip-journal/internal/store"
)

// ThemeRepo defines the persistence operations for the theme catalog.
type ThemeRepo interface {
	List(ctx context.Context) ([]domain.Theme, error)
	GetByID(ctx context.Context, id int64) (domain.Theme, error)
	// Upsert inserts the theme or replaces the catalog row with the same id.
	// The purchased flag of an existing row is kept.
	Upsert(ctx context.Context, theme domain.Theme) error
	SetPurchased(ctx context.Context, id int64, purchased bool) error
}

type sqlThemeRepo struct {
	db store.Querier
}

// NewThemeRepo constructs a ThemeRepo over q.
func NewThemeRepo(q store.Querier) ThemeRepo {
	return &sqlThemeRepo{db: q}
}

const themeColumns = `id, name, purchased, type, preview, primary_color, splash_text, price`

func (r *sqlThemeRepo) List(ctx context.Context) ([]domain.Theme, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+themeColumns+` FROM themes ORDER BY id`)
	if err != nil {
		return nil, wrap("repo.ThemeRepo.List", err)
	}
	themes, err := collect(rows, scanTheme)
	if err != nil {
		return nil, fmt.Errorf("repo.ThemeRepo.List: %w", err)
	}
	return themes, nil
}

func (r *sqlThemeRepo) GetByID(ctx context.Context, id int64) (domain.Theme, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+themeColumns+` FROM themes WHERE id = ?`, id)
	t, err := scanTheme(row)
	if err != nil {
		return domain.Theme{}, wrap("repo.ThemeRepo.GetByID", err)
	}
	return t, nil
}

func (r *sqlThemeRepo) Upsert(ctx context.Context, t domain.Theme) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO themes (`+themeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name          = excluded.name,
			type          = excluded.type,
			preview       = excluded.preview,
			primary_color = excluded.primary_color,
			splash_text   = excluded.splash_text,
			price         = excluded.price`,
		t.ID, t.Name, t.Purchased, t.Type, t.Preview, t.PrimaryColor, t.SplashText, t.Price)
	if err != nil {
		return wrap("repo.ThemeRepo.Upsert", err)
	}
	return nil
}

func (r *sqlThemeRepo) SetPurchased(ctx context.Context, id int64, purchased bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE themes SET purchased = ? WHERE id = ?`, purchased, id)
	if err != nil {
		return wrap("repo.ThemeRepo.SetPurchased", err)
	}
	return expectOne("repo.ThemeRepo.SetPurchased", res)
}

func scanTheme(s scanner) (domain.Theme, error) {
	var (
		t     domain.Theme
		price sql.NullFloat64
	)
	err := s.Scan(&t.ID, &t.Name, &t.Purchased, &t.Type, &t.Preview, &t.PrimaryColor, &t.SplashText, &price)
	if err != nil {
		return domain.Theme{}, err
	}
	t.Price = nullFloat(price)
	return t, nil
}
