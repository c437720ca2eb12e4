package handler

import (
	"errors"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/trip-journal/internal/domain"
)

// Pagination describes the page returned by a list endpoint.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// Trip is the JSON representation of domain.Trip.
type Trip struct {
	ID             int64              `json:"id"`
	Title          string             `json:"title"`
	StartDate      openapi_types.Date `json:"start_date"`
	EndDate        openapi_types.Date `json:"end_date"`
	Category       string             `json:"category"`
	CoverImage     *string            `json:"cover_image,omitempty"`
	Description    *string            `json:"description,omitempty"`
	Tags           []string           `json:"tags"`
	DurationDays   int                `json:"duration_days"`
	Progress       float64            `json:"progress"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	LastExportedAt *time.Time         `json:"last_exported_at,omitempty"`
}

// TripList is the body of GET /trips.
type TripList struct {
	Data       []Trip     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// CreateTripRequest is the body of POST /trips.
type CreateTripRequest struct {
	Title       string              `json:"title"`
	StartDate   *openapi_types.Date `json:"start_date"`
	EndDate     *openapi_types.Date `json:"end_date"`
	Category    string              `json:"category"`
	CoverImage  *string             `json:"cover_image,omitempty"`
	Description *string             `json:"description,omitempty"`
	Tags        []string            `json:"tags,omitempty"`
}

// UpdateTripRequest is the body of PATCH /trips/{id}. Absent fields are
// left unchanged.
type UpdateTripRequest struct {
	Title            *string             `json:"title,omitempty"`
	StartDate        *openapi_types.Date `json:"start_date,omitempty"`
	EndDate          *openapi_types.Date `json:"end_date,omitempty"`
	Category         *string             `json:"category,omitempty"`
	CoverImage       *string             `json:"cover_image,omitempty"`
	ClearCoverImage  bool                `json:"clear_cover_image,omitempty"`
	Description      *string             `json:"description,omitempty"`
	ClearDescription bool                `json:"clear_description,omitempty"`
	Tags             *[]string           `json:"tags,omitempty"`
}

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Entry is the JSON representation of domain.Entry.
type Entry struct {
	ID          int64        `json:"id"`
	TripID      int64        `json:"trip_id"`
	Type        string       `json:"type"`
	Title       *string      `json:"title,omitempty"`
	Text        *string      `json:"text,omitempty"`
	Media       []string     `json:"media"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
	Tags        []string     `json:"tags"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// CreateEntryRequest is the body of POST /trips/{id}/entries.
// A missing timestamp means now.
type CreateEntryRequest struct {
	Type        string       `json:"type"`
	Title       *string      `json:"title,omitempty"`
	Text        *string      `json:"text,omitempty"`
	Media       []string     `json:"media,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Timestamp   *time.Time   `json:"timestamp,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
}

// UpdateEntryRequest is the body of PATCH /entries/{id}.
type UpdateEntryRequest struct {
	Title            *string      `json:"title,omitempty"`
	Text             *string      `json:"text,omitempty"`
	Media            *[]string    `json:"media,omitempty"`
	Coordinates      *Coordinates `json:"coordinates,omitempty"`
	ClearCoordinates bool         `json:"clear_coordinates,omitempty"`
	Timestamp        *time.Time   `json:"timestamp,omitempty"`
	Tags             *[]string    `json:"tags,omitempty"`
}

// Tag is the JSON representation of domain.Tag.
type Tag struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Color *string `json:"color,omitempty"`
}

// TagList is the body of GET /tags.
type TagList struct {
	Data       []Tag      `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// CreateTagRequest is the body of POST /tags.
type CreateTagRequest struct {
	Name  string  `json:"name"`
	Color *string `json:"color,omitempty"`
}

// Favorite is the JSON representation of domain.Favorite.
type Favorite struct {
	ID        int64     `json:"id"`
	TripID    *int64    `json:"trip_id,omitempty"`
	EntryID   *int64    `json:"entry_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AddFavoriteRequest is the body of POST /favorites. Exactly one of the
// two ids must be set.
type AddFavoriteRequest struct {
	TripID  *int64 `json:"trip_id,omitempty"`
	EntryID *int64 `json:"entry_id,omitempty"`
}

// SearchHit is one result of GET /search.
type SearchHit struct {
	Kind      string    `json:"kind"`
	TripID    int64     `json:"trip_id"`
	EntryID   *int64    `json:"entry_id,omitempty"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TripStats is the body of GET /trips/{id}/stats.
type TripStats struct {
	TripID       int64   `json:"trip_id"`
	PhotoCount   int     `json:"photo_count"`
	NoteCount    int     `json:"note_count"`
	PlaceCount   int     `json:"place_count"`
	HasRoute     bool    `json:"has_route"`
	Progress     float64 `json:"progress"`
	DurationDays int     `json:"duration_days"`
}

// ImportResult is the body returned after a restore.
type ImportResult struct {
	TripsInserted   int `json:"trips_inserted"`
	TripsReplaced   int `json:"trips_replaced"`
	EntriesInserted int `json:"entries_inserted"`
	EntriesReplaced int `json:"entries_replaced"`
}

// SaveResult is the body of POST /backup/save.
type SaveResult struct {
	Target string `json:"target"`
	Bytes  int    `json:"bytes"`
}

// --- mapping helpers --------------------------------------------------------

func tripToResponse(t domain.Trip) Trip {
	return Trip{
		ID:             t.ID,
		Title:          t.Title,
		StartDate:      openapi_types.Date{Time: t.StartDate},
		EndDate:        openapi_types.Date{Time: t.EndDate},
		Category:       string(t.Category),
		CoverImage:     t.CoverImage,
		Description:    t.Description,
		Tags:           nonNil(t.Tags),
		DurationDays:   t.Duration(),
		Progress:       t.Progress,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
		LastExportedAt: t.LastExportedAt,
	}
}

// requestToTripDraft converts a CreateTripRequest into a domain.TripDraft.
// Returns an error if a required date is missing.
func requestToTripDraft(body CreateTripRequest) (domain.TripDraft, error) {
	if body.StartDate == nil {
		return domain.TripDraft{}, errors.New("start_date is required")
	}
	if body.EndDate == nil {
		return domain.TripDraft{}, errors.New("end_date is required")
	}
	return domain.TripDraft{
		Title:       body.Title,
		StartDate:   body.StartDate.Time,
		EndDate:     body.EndDate.Time,
		Category:    domain.Category(body.Category),
		CoverImage:  body.CoverImage,
		Description: body.Description,
		Tags:        body.Tags,
	}, nil
}

func requestToTripPatch(body UpdateTripRequest) domain.TripPatch {
	p := domain.TripPatch{
		Title:            body.Title,
		CoverImage:       body.CoverImage,
		ClearCoverImage:  body.ClearCoverImage,
		Description:      body.Description,
		ClearDescription: body.ClearDescription,
		Tags:             body.Tags,
	}
	if body.StartDate != nil {
		p.StartDate = &body.StartDate.Time
	}
	if body.EndDate != nil {
		p.EndDate = &body.EndDate.Time
	}
	if body.Category != nil {
		c := domain.Category(*body.Category)
		p.Category = &c
	}
	return p
}

func entryToResponse(e domain.Entry) Entry {
	out := Entry{
		ID:        e.ID,
		TripID:    e.TripID,
		Type:      string(e.Type),
		Title:     e.Title,
		Text:      e.Text,
		Media:     nonNil(e.Media),
		Timestamp: e.Timestamp,
		Tags:      nonNil(e.Tags),
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
	if e.Coordinates != nil {
		out.Coordinates = &Coordinates{Latitude: e.Coordinates.Latitude, Longitude: e.Coordinates.Longitude}
	}
	return out
}

func requestToEntryDraft(tripID int64, body CreateEntryRequest) domain.EntryDraft {
	d := domain.EntryDraft{
		TripID:      tripID,
		Type:        domain.EntryType(body.Type),
		Title:       body.Title,
		Text:        body.Text,
		Media:       body.Media,
		Coordinates: toCoordinates(body.Coordinates),
		Tags:        body.Tags,
	}
	if body.Timestamp != nil {
		d.Timestamp = *body.Timestamp
	}
	return d
}

func requestToEntryPatch(body UpdateEntryRequest) domain.EntryPatch {
	return domain.EntryPatch{
		Title:            body.Title,
		Text:             body.Text,
		Media:            body.Media,
		Coordinates:      toCoordinates(body.Coordinates),
		ClearCoordinates: body.ClearCoordinates,
		Timestamp:        body.Timestamp,
		Tags:             body.Tags,
	}
}

func toCoordinates(c *Coordinates) *domain.Coordinates {
	if c == nil {
		return nil
	}
	return &domain.Coordinates{Latitude: c.Latitude, Longitude: c.Longitude}
}

func tagToResponse(t domain.Tag) Tag {
	return Tag{ID: t.ID, Name: t.Name, Color: t.Color}
}

func favoriteToResponse(f domain.Favorite) Favorite {
	return Favorite{ID: f.ID, TripID: f.TripID, EntryID: f.EntryID, CreatedAt: f.CreatedAt}
}

func hitToResponse(h domain.SearchHit) SearchHit {
	out := SearchHit{Kind: string(h.Kind), TripID: h.TripID, Title: h.Title, UpdatedAt: h.UpdatedAt}
	if h.Kind == domain.SearchKindEntry {
		id := h.EntryID
		out.EntryID = &id
	}
	return out
}

func statsToResponse(s domain.TripStats) TripStats {
	return TripStats(s)
}

func importToResponse(r domain.ImportResult) ImportResult {
	return ImportResult(r)
}

// mapSlice converts every element of in with fn. The result is never nil so
// empty lists encode as [].
func mapSlice[T, U any](in []T, fn func(T) U) []U {
	out := make([]U, len(in))
	for i, v := range in {
		out[i] = fn(v)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
