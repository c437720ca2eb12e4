package repo

import (
	"context"
	"fmt"

	"github.com/pkordes/trip-journal/internal/domain"
	"github.com/pkordes/trip-journal/internal/store"
)

// AttachmentRepo defines the persistence operations for entry attachments.
type AttachmentRepo interface {
	// Insert stores a new attachment. A missing entry yields
	// domain.ErrReferentialViolation.
	Insert(ctx context.Context, a domain.Attachment) error

	// ListByEntry returns an entry's attachments ordered by id.
	ListByEntry(ctx context.Context, entryID int64) ([]domain.Attachment, error)

	// Delete removes an attachment. Returns domain.ErrNotFound if absent.
	Delete(ctx context.Context, id int64) error
}

type sqlAttachmentRepo struct {
	db store.Querier
}

// NewAttachmentRepo constructs an AttachmentRepo over q.
func NewAttachmentRepo(q store.Querier) AttachmentRepo {
	return &sqlAttachmentRepo{db: q}
}

func (r *sqlAttachmentRepo) Insert(ctx context.Context, a domain.Attachment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO attachments (id, entry_id, type, path) VALUES (?, ?, ?, ?)`,
		a.ID, a.EntryID, string(a.Type), a.Path)
	if err != nil {
		return wrap("repo.AttachmentRepo.Insert", err)
	}
	return nil
}

func (r *sqlAttachmentRepo) ListByEntry(ctx context.Context, entryID int64) ([]domain.Attachment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, entry_id, type, path FROM attachments WHERE entry_id = ? ORDER BY id`, entryID)
	if err != nil {
		return nil, wrap("repo.AttachmentRepo.ListByEntry", err)
	}
	list, err := collect(rows, func(s scanner) (domain.Attachment, error) {
		var a domain.Attachment
		var typ string
		if err := s.Scan(&a.ID, &a.EntryID, &typ, &a.Path); err != nil {
			return domain.Attachment{}, err
		}
		a.Type = domain.AttachmentType(typ)
		return a, nil
	})
	if err != nil {
		return nil, fmt.Errorf("repo.AttachmentRepo.ListByEntry: %w", err)
	}
	return list, nil
}

func (r *sqlAttachmentRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM attachments WHERE id = ?`, id)
	if err != nil {
		return wrap("repo.AttachmentRepo.Delete", err)
	}
	return expectOne("repo.AttachmentRepo.Delete", res)
}
