package domain

import (
	"fmt"
	"time"
)

// EntryType identifies the kind of journal record.
type EntryType string

const (
	EntryPhoto      EntryType = "photo"
	EntryNote       EntryType = "note"
	EntryPlace      EntryType = "place"
	EntryRoutePoint EntryType = "route-point"
	EntryTripMeta   EntryType = "trip-meta"
)

// Valid reports whether t is a known entry type.
func (t EntryType) Valid() bool {
	switch t {
	case EntryPhoto, EntryNote, EntryPlace, EntryRoutePoint, EntryTripMeta:
		return true
	}
	return false
}

// Coordinates is an embedded geographic position.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Validate checks latitude ∈ [-90,90] and longitude ∈ [-180,180].
func (c Coordinates) Validate() error {
	if !(c.Latitude >= -90 && c.Latitude <= 90) {
		return fmt.Errorf("%w: latitude %v out of range", ErrValidation, c.Latitude)
	}
	if !(c.Longitude >= -180 && c.Longitude <= 180) {
		return fmt.Errorf("%w: longitude %v out of range", ErrValidation, c.Longitude)
	}
	return nil
}

// Entry is a single journal record belonging to a trip.
// Media holds opaque media references in display order.
type Entry struct {
	ID          int64
	TripID      int64
	Type        EntryType
	Title       *string
	Text        *string
	Media       []string
	Coordinates *Coordinates
	Timestamp   time.Time
	Tags        []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks the entry's own invariants. The trip reference is checked
// by the caller against the store or the backup payload.
func (e Entry) Validate() error {
	if e.TripID == 0 {
		return fmt.Errorf("%w: trip id is required", ErrValidation)
	}
	if !e.Type.Valid() {
		return fmt.Errorf("%w: unknown entry type %q", ErrValidation, e.Type)
	}
	for _, f := range []namedTime{
		{"timestamp", e.Timestamp}, {"created at", e.CreatedAt}, {"updated at", e.UpdatedAt},
	} {
		if err := f.check(); err != nil {
			return err
		}
	}
	if e.Coordinates != nil {
		if err := e.Coordinates.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// EntryDraft carries the caller-supplied fields for a new entry.
// A zero Timestamp means "now".
type EntryDraft struct {
	TripID      int64
	Type        EntryType
	Title       *string
	Text        *string
	Media       []string
	Coordinates *Coordinates
	Timestamp   time.Time
	Tags        []string
}

// EntryPatch holds optional field updates. Nil fields are left unchanged.
type EntryPatch struct {
	Title            *string
	Text             *string
	Media            *[]string
	Coordinates      *Coordinates
	ClearCoordinates bool
	Timestamp        *time.Time
	Tags             *[]string
}

// Apply returns a copy of e with the patch applied.
func (p EntryPatch) Apply(e Entry) Entry {
	if p.Title != nil {
		e.Title = p.Title
	}
	if p.Text != nil {
		e.Text = p.Text
	}
	if p.Media != nil {
		e.Media = *p.Media
	}
	if p.Coordinates != nil {
		c := *p.Coordinates
		e.Coordinates = &c
	}
	if p.ClearCoordinates {
		e.Coordinates = nil
	}
	if p.Timestamp != nil {
		e.Timestamp = p.Timestamp.UTC()
	}
	if p.Tags != nil {
		e.Tags = *p.Tags
	}
	return e
}

// AttachmentType is the media kind of an attachment.
type AttachmentType string

const (
	AttachmentPhoto AttachmentType = "photo"
	AttachmentVideo AttachmentType = "video"
)

// Attachment is a media file owned by an entry. Deleting the entry deletes
// its attachments.
type Attachment struct {
	ID      int64
	EntryID int64
	Type    AttachmentType
	Path    string
}
