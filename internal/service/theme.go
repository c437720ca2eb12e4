package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkordes/trip-journal/internal/domain"
	"github.com/pkordes/trip-journal/internal/repo"
	"github.com/pkordes/trip-journal/internal/watch"
)

// ThemeService exposes the theme catalog. Purchases are recorded here but
// never initiated.
type ThemeService struct {
	core   *Core
	themes repo.ThemeRepo
	all    *collection[[]domain.Theme]
}

// NewThemeService constructs a ThemeService over the core's store.
func NewThemeService(c *Core) *ThemeService {
	s := &ThemeService{core: c, themes: repo.NewThemeRepo(c.store)}
	s.all = newCollection(c, "themes", s.themes.List, watch.Themes)
	return s
}

func (s *ThemeService) Observe(ctx context.Context) (*watch.Subscription[[]domain.Theme], error) {
	sub, err := s.all.observe(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ThemeService.Observe: %w", err)
	}
	return sub, nil
}

func (s *ThemeService) List(ctx context.Context) ([]domain.Theme, error) {
	themes, err := s.themes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ThemeService.List: %w", err)
	}
	return themes, nil
}

func (s *ThemeService) GetByID(ctx context.Context, id int64) (domain.Theme, error) {
	t, err := s.themes.GetByID(ctx, id)
	if err != nil {
		return domain.Theme{}, fmt.Errorf("service.ThemeService.GetByID: %w", err)
	}
	return t, nil
}

// Upsert loads a catalog entry. The purchased flag of a known theme is kept.
func (s *ThemeService) Upsert(ctx context.Context, t domain.Theme) error {
	if t.ID == 0 || strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("service.ThemeService.Upsert: %w: theme id and name are required", domain.ErrValidation)
	}
	if t.Price != nil && *t.Price < 0 {
		return fmt.Errorf("service.ThemeService.Upsert: %w: price must not be negative", domain.ErrValidation)
	}
	if err := s.themes.Upsert(ctx, t); err != nil {
		return fmt.Errorf("service.ThemeService.Upsert: %w", err)
	}
	s.core.notify(ctx, watch.Themes)
	return nil
}

// MarkPurchased flags a theme as owned.
func (s *ThemeService) MarkPurchased(ctx context.Context, id int64) error {
	if err := s.themes.SetPurchased(ctx, id, true); err != nil {
		return fmt.Errorf("service.ThemeService.MarkPurchased: %w", err)
	}
	s.core.notify(ctx, watch.Themes)
	return nil
}
