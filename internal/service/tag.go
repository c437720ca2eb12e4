package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pkordes/trip-journal/internal/domain"
	"github.com/pkordes/trip-journal/internal/repo"
	"github.com/pkordes/trip-journal/internal/store"
	"github.com/pkordes/trip-journal/internal/watch"
)

// TagService manages the user's tag catalog.
// Tag identity is the case-insensitive name; the first spelling wins.
type TagService struct {
	core *Core
	tags repo.TagRepo
	all  *collection[[]domain.Tag]
}

// NewTagService constructs a TagService over the core's store.
func NewTagService(c *Core) *TagService {
	s := &TagService{core: c, tags: repo.NewTagRepo(c.store)}
	s.all = newCollection(c, "tags", func(ctx context.Context) ([]domain.Tag, error) {
		return s.tags.List(ctx, "")
	}, watch.Tags)
	return s
}

// Observe streams the full tag catalog ordered by name.
func (s *TagService) Observe(ctx context.Context) (*watch.Subscription[[]domain.Tag], error) {
	sub, err := s.all.observe(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TagService.Observe: %w", err)
	}
	return sub, nil
}

// List returns the tags whose name starts with prefix, ignoring case.
func (s *TagService) List(ctx context.Context, prefix string) ([]domain.Tag, error) {
	tags, err := s.tags.List(ctx, strings.ToLower(strings.TrimSpace(prefix)))
	if err != nil {
		return nil, fmt.Errorf("service.TagService.List: %w", err)
	}
	return tags, nil
}

// ListPaged returns one page of List and the total number of matches.
func (s *TagService) ListPaged(ctx context.Context, prefix string, p domain.PaginationParams) ([]domain.Tag, int64, error) {
	tags, total, err := s.tags.ListPaged(ctx, strings.ToLower(strings.TrimSpace(prefix)), p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TagService.ListPaged: %w", err)
	}
	return tags, total, nil
}

// Create adds a tag. If a tag with the same name in any casing exists, it
// is returned unchanged.
func (s *TagService) Create(ctx context.Context, name string, color *string) (domain.Tag, error) {
	tag := domain.Tag{Name: strings.TrimSpace(name), Color: color}
	if err := validateTag(tag); err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.Create: %w", err)
	}
	created := false
	err := s.core.store.WithTx(ctx, func(ctx context.Context, q store.Querier) error {
		tags := repo.NewTagRepo(q)
		existing, err := tags.FindByName(ctx, tag.Name)
		if err == nil {
			tag = existing
			return nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		tag.ID = s.core.newID()
		created = true
		return tags.Insert(ctx, tag)
	})
	if err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.Create: %w", err)
	}
	if created {
		s.core.notify(ctx, watch.Tags)
	}
	return tag, nil
}

// Update renames or recolors a tag. Renaming onto another tag's name yields
// domain.ErrValidation.
func (s *TagService) Update(ctx context.Context, tag domain.Tag) (domain.Tag, error) {
	tag.Name = strings.TrimSpace(tag.Name)
	if err := validateTag(tag); err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.Update: %w", err)
	}
	if err := s.tags.Update(ctx, tag); err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.Update: %w", err)
	}
	s.core.notify(ctx, watch.Tags)
	return tag, nil
}

// Delete removes a tag from the catalog. Trips and entries keep the name.
func (s *TagService) Delete(ctx context.Context, id int64) error {
	if err := s.tags.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TagService.Delete: %w", err)
	}
	s.core.notify(ctx, watch.Tags)
	return nil
}

func validateTag(t domain.Tag) error {
	if t.Name == "" {
		return fmt.Errorf("%w: tag name is required", domain.ErrValidation)
	}
	if t.Color != nil && !isHexColor(*t.Color) {
		return fmt.Errorf("%w: color %q is not #rrggbb", domain.ErrValidation, *t.Color)
	}
	return nil
}

func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, c := range s[1:] {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
