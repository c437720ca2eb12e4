package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkordes/trip-journal/internal/domain"
	"github.com/pkordes/trip-journal/internal/repo"
	"github.com/pkordes/trip-journal/internal/store"
	"github.com/pkordes/trip-journal/internal/watch"
)

// EntryService implements business logic for journal entries and their
// attachments.
type EntryService struct {
	core    *Core
	entries repo.EntryRepo
	trips   repo.TripRepo
	all     *collection[[]domain.Entry]
	byTrip  *keyedCollection[int64, []domain.Entry]
}

// NewEntryService constructs an EntryService over the core's store.
func NewEntryService(c *Core) *EntryService {
	s := &EntryService{
		core:    c,
		entries: repo.NewEntryRepo(c.store),
		trips:   repo.NewTripRepo(c.store),
	}
	s.all = newCollection(c, "entries", s.entries.ListAll, watch.Entries)
	s.byTrip = newKeyedCollection(c, "trip-entries", s.entries.ListByTrip, watch.Entries)
	return s
}

// Observe streams every entry ordered by id.
func (s *EntryService) Observe(ctx context.Context) (*watch.Subscription[[]domain.Entry], error) {
	sub, err := s.all.observe(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.EntryService.Observe: %w", err)
	}
	return sub, nil
}

// ObserveTrip streams the entries of one trip in timestamp order. Once the
// trip is deleted the stream carries an empty list.
func (s *EntryService) ObserveTrip(ctx context.Context, tripID int64) (*watch.Subscription[[]domain.Entry], error) {
	sub, err := s.byTrip.observe(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.EntryService.ObserveTrip: %w", err)
	}
	return sub, nil
}

// ListByTrip returns a trip's entries in timestamp order. Returns
// domain.ErrNotFound when the trip does not exist.
func (s *EntryService) ListByTrip(ctx context.Context, tripID int64) ([]domain.Entry, error) {
	if err := requireTrip(ctx, s.trips, tripID, domain.ErrNotFound); err != nil {
		return nil, fmt.Errorf("service.EntryService.ListByTrip: %w", err)
	}
	list, err := s.entries.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.EntryService.ListByTrip: %w", err)
	}
	return list, nil
}

// ListByDay returns the entries of a trip whose timestamp falls on the UTC
// calendar day of day.
func (s *EntryService) ListByDay(ctx context.Context, tripID int64, day time.Time) ([]domain.Entry, error) {
	if err := requireTrip(ctx, s.trips, tripID, domain.ErrNotFound); err != nil {
		return nil, fmt.Errorf("service.EntryService.ListByDay: %w", err)
	}
	from := domain.DateOf(day)
	list, err := s.entries.ListBetween(ctx, tripID, from, from.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("service.EntryService.ListByDay: %w", err)
	}
	return list, nil
}

// GetByID returns a single entry by ID.
func (s *EntryService) GetByID(ctx context.Context, id int64) (domain.Entry, error) {
	e, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("service.EntryService.GetByID: %w", err)
	}
	return e, nil
}

// Create validates and persists a new entry. The owning trip must exist;
// otherwise domain.ErrReferentialViolation is returned and nothing is written.
func (s *EntryService) Create(ctx context.Context, d domain.EntryDraft) (domain.Entry, error) {
	now := s.core.Now()
	e := domain.Entry{
		ID:          s.core.newID(),
		TripID:      d.TripID,
		Type:        d.Type,
		Title:       trimmed(d.Title),
		Text:        d.Text,
		Media:       d.Media,
		Coordinates: d.Coordinates,
		Timestamp:   d.Timestamp.UTC(),
		Tags:        d.Tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if d.Timestamp.IsZero() {
		e.Timestamp = now
	}
	if err := e.Validate(); err != nil {
		return domain.Entry{}, fmt.Errorf("service.EntryService.Create: %w", err)
	}
	err := s.core.store.WithTx(ctx, func(ctx context.Context, q store.Querier) error {
		if err := requireTrip(ctx, repo.NewTripRepo(q), e.TripID, domain.ErrReferentialViolation); err != nil {
			return err
		}
		return repo.NewEntryRepo(q).Insert(ctx, e)
	})
	if err != nil {
		return domain.Entry{}, fmt.Errorf("service.EntryService.Create: %w", err)
	}
	s.core.notify(ctx, watch.Entries)
	return e, nil
}

// Update applies patch to the entry with the given id and returns the result.
func (s *EntryService) Update(ctx context.Context, id int64, patch domain.EntryPatch) (domain.Entry, error) {
	var out domain.Entry
	err := s.core.store.WithTx(ctx, func(ctx context.Context, q store.Querier) error {
		entries := repo.NewEntryRepo(q)
		cur, err := entries.GetByID(ctx, id)
		if err != nil {
			return err
		}
		next := patch.Apply(cur)
		next.Title = trimmed(next.Title)
		next.UpdatedAt = s.core.Now()
		if err := next.Validate(); err != nil {
			return err
		}
		if err := entries.Update(ctx, next); err != nil {
			return err
		}
		out = next
		return nil
	})
	if err != nil {
		return domain.Entry{}, fmt.Errorf("service.EntryService.Update: %w", err)
	}
	s.core.notify(ctx, watch.Entries)
	return out, nil
}

// Delete removes an entry together with its attachments and favorite.
func (s *EntryService) Delete(ctx context.Context, id int64) error {
	if err := s.entries.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.EntryService.Delete: %w", err)
	}
	s.core.notify(ctx, watch.Entries, watch.Favorites)
	return nil
}

// AddAttachment stores a media attachment for an existing entry.
func (s *EntryService) AddAttachment(ctx context.Context, entryID int64, typ domain.AttachmentType, path string) (domain.Attachment, error) {
	if typ != domain.AttachmentPhoto && typ != domain.AttachmentVideo {
		return domain.Attachment{}, fmt.Errorf("service.EntryService.AddAttachment: %w: unknown attachment type %q", domain.ErrValidation, typ)
	}
	if strings.TrimSpace(path) == "" {
		return domain.Attachment{}, fmt.Errorf("service.EntryService.AddAttachment: %w: path is required", domain.ErrValidation)
	}
	a := domain.Attachment{ID: s.core.newID(), EntryID: entryID, Type: typ, Path: path}
	err := s.core.store.WithTx(ctx, func(ctx context.Context, q store.Querier) error {
		ok, err := repo.NewEntryRepo(q).Exists(ctx, entryID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: entry %d does not exist", domain.ErrReferentialViolation, entryID)
		}
		return repo.NewAttachmentRepo(q).Insert(ctx, a)
	})
	if err != nil {
		return domain.Attachment{}, fmt.Errorf("service.EntryService.AddAttachment: %w", err)
	}
	return a, nil
}

// ListAttachments returns an entry's attachments ordered by id.
func (s *EntryService) ListAttachments(ctx context.Context, entryID int64) ([]domain.Attachment, error) {
	list, err := repo.NewAttachmentRepo(s.core.store).ListByEntry(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("service.EntryService.ListAttachments: %w", err)
	}
	return list, nil
}

// DeleteAttachment removes one attachment.
func (s *EntryService) DeleteAttachment(ctx context.Context, id int64) error {
	if err := repo.NewAttachmentRepo(s.core.store).Delete(ctx, id); err != nil {
		return fmt.Errorf("service.EntryService.DeleteAttachment: %w", err)
	}
	return nil
}

// requireTrip returns missing, annotated with the id, when the trip is absent.
func requireTrip(ctx context.Context, trips repo.TripRepo, tripID int64, missing error) error {
	ok, err := trips.Exists(ctx, tripID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: trip %d does not exist", missing, tripID)
	}
	return nil
}

// trimmed trims s and returns nil when nothing is left.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
