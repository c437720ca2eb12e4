package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pkordes/trip-journal/internal/domain"
	"github.com/pkordes/trip-journal/internal/store"
)

// TagRepo defines the persistence operations for Tags.
// Tag names are unique case-insensitively.
type TagRepo interface {
	// Insert stores a new tag. A name that already exists in any casing
	// yields domain.ErrValidation.
	Insert(ctx context.Context, tag domain.Tag) error

	// GetByID retrieves a tag. Returns domain.ErrNotFound if absent.
	GetByID(ctx context.Context, id int64) (domain.Tag, error)

	// FindByName returns the tag whose name matches case-insensitively,
	// or domain.ErrNotFound.
	FindByName(ctx context.Context, name string) (domain.Tag, error)

	// List returns all tags whose lower-cased name starts with prefix,
	// ordered by lower-cased name. If prefix is empty, all tags are returned.
	List(ctx context.Context, prefix string) ([]domain.Tag, error)

	// ListPaged returns one page of tags matching the prefix and the total count.
	ListPaged(ctx context.Context, prefix string, p domain.PaginationParams) ([]domain.Tag, int64, error)

	// Update overwrites a tag's name and color. Returns domain.ErrNotFound if absent.
	Update(ctx context.Context, tag domain.Tag) error

	// Delete removes a tag. Trips and entries keep the name in their tag lists.
	// Returns domain.ErrNotFound if absent.
	Delete(ctx context.Context, id int64) error
}

type sqlTagRepo struct {
	db store.Querier
}

// NewTagRepo constructs a TagRepo over q.
func NewTagRepo(q store.Querier) TagRepo {
	return &sqlTagRepo{db: q}
}

func (r *sqlTagRepo) Insert(ctx context.Context, tag domain.Tag) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tags (id, name, color) VALUES (?, ?, ?)`, tag.ID, tag.Name, tag.Color)
	if err != nil {
		return wrap("repo.TagRepo.Insert", err)
	}
	return nil
}

func (r *sqlTagRepo) GetByID(ctx context.Context, id int64) (domain.Tag, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, color FROM tags WHERE id = ?`, id)
	t, err := scanTag(row)
	if err != nil {
		return domain.Tag{}, wrap("repo.TagRepo.GetByID", err)
	}
	return t, nil
}

func (r *sqlTagRepo) FindByName(ctx context.Context, name string) (domain.Tag, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, color FROM tags WHERE lower(name) = lower(?)`, name)
	t, err := scanTag(row)
	if err != nil {
		return domain.Tag{}, wrap("repo.TagRepo.FindByName", err)
	}
	return t, nil
}

// List matches the prefix with substr rather than LIKE so "%" and "_" in
// user input are literal.
func (r *sqlTagRepo) List(ctx context.Context, prefix string) ([]domain.Tag, error) {
	prefix = strings.ToLower(prefix)
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, color
		FROM tags
		WHERE substr(lower(name), 1, ?) = ?
		ORDER BY lower(name), id`, utf8.RuneCountInString(prefix), prefix)
	if err != nil {
		return nil, wrap("repo.TagRepo.List", err)
	}
	tags, err := collect(rows, scanTag)
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.List: %w", err)
	}
	return tags, nil
}

func (r *sqlTagRepo) ListPaged(ctx context.Context, prefix string, p domain.PaginationParams) ([]domain.Tag, int64, error) {
	prefix = strings.ToLower(prefix)

	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tags WHERE substr(lower(name), 1, ?) = ?`, utf8.RuneCountInString(prefix), prefix).Scan(&total)
	if err != nil {
		return nil, 0, wrap("repo.TagRepo.ListPaged: count", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, color
		FROM tags
		WHERE substr(lower(name), 1, ?) = ?
		ORDER BY lower(name), id
		LIMIT ? OFFSET ?`, utf8.RuneCountInString(prefix), prefix, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, wrap("repo.TagRepo.ListPaged", err)
	}
	tags, err := collect(rows, scanTag)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TagRepo.ListPaged: %w", err)
	}
	return tags, total, nil
}

func (r *sqlTagRepo) Update(ctx context.Context, tag domain.Tag) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tags SET name = ?, color = ? WHERE id = ?`, tag.Name, tag.Color, tag.ID)
	if err != nil {
		return wrap("repo.TagRepo.Update", err)
	}
	return expectOne("repo.TagRepo.Update", res)
}

func (r *sqlTagRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return wrap("repo.TagRepo.Delete", err)
	}
	return expectOne("repo.TagRepo.Delete", res)
}

func scanTag(s scanner) (domain.Tag, error) {
	var (
		t     domain.Tag
		color sql.NullString
	)
	if err := s.Scan(&t.ID, &t.Name, &color); err != nil {
		return domain.Tag{}, err
	}
	t.Color = nullString(color)
	return t, nil
}
