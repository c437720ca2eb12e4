package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/pkordes/trip-journal/internal/domain"
	"github.com/pkordes/trip-journal/internal/repo"
	"github.com/pkordes/trip-journal/internal/store"
	"github.com/pkordes/trip-journal/internal/watch"
)

// SearchService runs free-text searches over trips and entries and keeps
// a short most-recently-used list of past queries.
type SearchService struct {
	core    *Core
	trips   repo.TripRepo
	entries repo.EntryRepo
	history repo.SearchHistoryRepo
	recent  *collection[[]string]
}

// NewSearchService constructs a SearchService over the core's store.
func NewSearchService(c *Core) *SearchService {
	s := &SearchService{
		core:    c,
		trips:   repo.NewTripRepo(c.store),
		entries: repo.NewEntryRepo(c.store),
		history: repo.NewSearchHistoryRepo(c.store),
	}
	s.recent = newCollection(c, "search-history", func(ctx context.Context) ([]string, error) {
		return s.history.Recent(ctx, domain.RecentQueryLimit)
	}, watch.SearchHistory)
	return s
}

// Search returns trips and entries whose title, text (description for
// trips), or any tag contains query, compared with Unicode case folding.
// Hits are ordered most recently updated first. A non-blank query is
// remembered in the recent list.
func (s *SearchService) Search(ctx context.Context, query string) ([]domain.SearchHit, error) {
	query = strings.TrimSpace(query)
	hits := []domain.SearchHit{}
	if query == "" {
		return hits, nil
	}

	trips, err := s.trips.ListByID(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.SearchService.Search: %w", err)
	}
	entries, err := s.entries.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.SearchService.Search: %w", err)
	}

	m := newMatcher(query)
	for _, t := range trips {
		if m.any(t.Title) || m.ptr(t.Description) || m.any(t.Tags...) {
			hits = append(hits, domain.SearchHit{
				Kind: domain.SearchKindTrip, TripID: t.ID, Title: t.Title, UpdatedAt: t.UpdatedAt,
			})
		}
	}
	for _, e := range entries {
		if m.ptr(e.Title) || m.ptr(e.Text) || m.any(e.Tags...) {
			hit := domain.SearchHit{
				Kind: domain.SearchKindEntry, TripID: e.TripID, EntryID: e.ID, UpdatedAt: e.UpdatedAt,
			}
			if e.Title != nil {
				hit.Title = *e.Title
			}
			hits = append(hits, hit)
		}
	}
	slices.SortStableFunc(hits, func(a, b domain.SearchHit) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
			return -c // trips before entries
		}
		return cmp.Or(cmp.Compare(a.TripID, b.TripID), cmp.Compare(a.EntryID, b.EntryID))
	})

	if err := s.remember(ctx, query); err != nil {
		return nil, fmt.Errorf("service.SearchService.Search: %w", err)
	}
	return hits, nil
}

// Recent returns past queries, most recent first.
func (s *SearchService) Recent(ctx context.Context) ([]string, error) {
	list, err := s.history.Recent(ctx, domain.RecentQueryLimit)
	if err != nil {
		return nil, fmt.Errorf("service.SearchService.Recent: %w", err)
	}
	return list, nil
}

// ObserveRecent streams the recent query list.
func (s *SearchService) ObserveRecent(ctx context.Context) (*watch.Subscription[[]string], error) {
	sub, err := s.recent.observe(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.SearchService.ObserveRecent: %w", err)
	}
	return sub, nil
}

// ClearRecent forgets every past query.
func (s *SearchService) ClearRecent(ctx context.Context) error {
	if err := s.history.Clear(ctx); err != nil {
		return fmt.Errorf("service.SearchService.ClearRecent: %w", err)
	}
	s.core.notify(ctx, watch.SearchHistory)
	return nil
}

// remember moves query to the front of the recent list, evicting the oldest
// queries beyond domain.RecentQueryLimit.
func (s *SearchService) remember(ctx context.Context, query string) error {
	err := s.core.store.WithTx(ctx, func(ctx context.Context, q store.Querier) error {
		h := repo.NewSearchHistoryRepo(q)
		if err := h.Touch(ctx, query, s.core.Now()); err != nil {
			return err
		}
		return h.Trim(ctx, domain.RecentQueryLimit)
	})
	if err != nil {
		return err
	}
	s.core.notify(ctx, watch.SearchHistory)
	return nil
}

// matcher tests case-folded substring containment. It is not safe for
// concurrent use because cases.Caser keeps state.
type matcher struct {
	fold   cases.Caser
	needle string
}

func newMatcher(query string) *matcher {
	m := &matcher{fold: cases.Fold()}
	m.needle = m.fold.String(query)
	return m
}

func (m *matcher) any(values ...string) bool {
	for _, v := range values {
		if strings.Contains(m.fold.String(v), m.needle) {
			return true
		}
	}
	return false
}

func (m *matcher) ptr(v *string) bool {
	return v != nil && m.any(*v)
}
