// Package backup turns the full journal dataset into a single portable
// snapshot and back, and stores snapshots on a file system or in an
// S3-compatible bucket.
//
// Snapshot layout (version 1, big-endian):
//
//	magic    "TJBK"          4 bytes
//	version  uint16          2 bytes
//	length   uint64          8 bytes, length of body
//	checksum SHA-256(body)  32 bytes
//	body     JSON {"trips":[...],"entries":[...]}
//
// Encoding is deterministic: the same dataset always yields the same bytes.
package backup

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/pkordes/trip-journal/internal/domain"
)

// Magic identifies a journal snapshot.
const Magic = "TJBK"

// Version is the snapshot schema version written by Encode.
const Version uint16 = 1

const headerSize = len(Magic) + 2 + 8 + sha256.Size

// Encode serializes trips and entries in the order given.
func Encode(data domain.BackupData) ([]byte, error) {
	snap := snapshotV1{
		Trips:   make([]tripV1, 0, len(data.Trips)),
		Entries: make([]entryV1, 0, len(data.Entries)),
	}
	for _, t := range data.Trips {
		snap.Trips = append(snap.Trips, fromTrip(t))
	}
	for _, e := range data.Entries {
		snap.Entries = append(snap.Entries, fromEntry(e))
	}

	body, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("backup.Encode: %w", err)
	}

	sum := sha256.Sum256(body)
	out := make([]byte, 0, headerSize+len(body))
	out = append(out, Magic...)
	out = binary.BigEndian.AppendUint16(out, Version)
	out = binary.BigEndian.AppendUint64(out, uint64(len(body)))
	out = append(out, sum[:]...)
	out = append(out, body...)
	return out, nil
}

// Decode parses a snapshot. It fails with domain.ErrCorruptBackup when the
// bytes are not a well-formed snapshot of a supported version, and with
// domain.ErrOrphanEntry when an entry's trip is missing from the snapshot.
// Nothing is returned unless the whole payload is valid.
func Decode(b []byte) (domain.BackupData, error) {
	body, err := readFrame(b)
	if err != nil {
		return domain.BackupData{}, fmt.Errorf("backup.Decode: %w: %w", domain.ErrCorruptBackup, err)
	}

	var snap strictSnapshotV1
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&snap); err != nil {
		return domain.BackupData{}, fmt.Errorf("backup.Decode: %w: %w", domain.ErrCorruptBackup, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return domain.BackupData{}, fmt.Errorf("backup.Decode: %w: trailing data after body", domain.ErrCorruptBackup)
	}
	if snap.Trips == nil || snap.Entries == nil {
		return domain.BackupData{}, fmt.Errorf("backup.Decode: %w: missing trips or entries", domain.ErrCorruptBackup)
	}

	data, err := snap.toDomain()
	if err != nil {
		return domain.BackupData{}, fmt.Errorf("backup.Decode: %w", err)
	}
	return data, nil
}

func readFrame(b []byte) ([]byte, error) {
	if len(b) < headerSize {
		return nil, fmt.Errorf("short header: %d bytes", len(b))
	}
	if string(b[:4]) != Magic {
		return nil, errors.New("bad magic")
	}
	if v := binary.BigEndian.Uint16(b[4:6]); v != Version {
		return nil, fmt.Errorf("unsupported version %d", v)
	}
	n := binary.BigEndian.Uint64(b[6:14])
	body := b[headerSize:]
	if uint64(len(body)) != n {
		return nil, fmt.Errorf("body is %d bytes, header says %d", len(body), n)
	}
	var want [sha256.Size]byte
	copy(want[:], b[14:headerSize])
	if sha256.Sum256(body) != want {
		return nil, errors.New("checksum mismatch")
	}
	return body, nil
}

// Wire types. They are versioned separately from the domain so the domain
// can change without breaking old snapshots.

type snapshotV1 struct {
	Trips   []tripV1  `json:"trips"`
	Entries []entryV1 `json:"entries"`
}

// strictSnapshotV1 distinguishes a missing list from an empty one.
type strictSnapshotV1 struct {
	Trips   *[]tripV1  `json:"trips"`
	Entries *[]entryV1 `json:"entries"`
}

type tripV1 struct {
	ID             int64    `json:"id"`
	Title          string   `json:"title"`
	StartDate      string   `json:"startDate"`
	EndDate        string   `json:"endDate"`
	Category       string   `json:"category"`
	CoverImage     *string  `json:"coverImage"`
	Description    *string  `json:"description"`
	Tags           []string `json:"tags"`
	CreatedAt      string   `json:"createdAt"`
	UpdatedAt      string   `json:"updatedAt"`
	LastExportedAt *string  `json:"lastExportedAt"`
	Progress       float64  `json:"progress"`
}

type coordinatesV1 struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type entryV1 struct {
	ID          int64          `json:"id"`
	TripID      int64          `json:"tripId"`
	Type        string         `json:"type"`
	Title       *string        `json:"title"`
	Text        *string        `json:"text"`
	Media       []string       `json:"media"`
	Coordinates *coordinatesV1 `json:"coordinates"`
	Timestamp   string         `json:"timestamp"`
	Tags        []string       `json:"tags"`
	CreatedAt   string         `json:"createdAt"`
	UpdatedAt   string         `json:"updatedAt"`
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func fromTrip(t domain.Trip) tripV1 {
	w := tripV1{
		ID:          t.ID,
		Title:       t.Title,
		StartDate:   formatTime(t.StartDate),
		EndDate:     formatTime(t.EndDate),
		Category:    string(t.Category),
		CoverImage:  t.CoverImage,
		Description: t.Description,
		Tags:        t.Tags,
		CreatedAt:   formatTime(t.CreatedAt),
		UpdatedAt:   formatTime(t.UpdatedAt),
		Progress:    t.Progress,
	}
	if t.LastExportedAt != nil {
		s := formatTime(*t.LastExportedAt)
		w.LastExportedAt = &s
	}
	return w
}

func fromEntry(e domain.Entry) entryV1 {
	w := entryV1{
		ID:        e.ID,
		TripID:    e.TripID,
		Type:      string(e.Type),
		Title:     e.Title,
		Text:      e.Text,
		Media:     e.Media,
		Timestamp: formatTime(e.Timestamp),
		Tags:      e.Tags,
		CreatedAt: formatTime(e.CreatedAt),
		UpdatedAt: formatTime(e.UpdatedAt),
	}
	if e.Coordinates != nil {
		w.Coordinates = &coordinatesV1{Latitude: e.Coordinates.Latitude, Longitude: e.Coordinates.Longitude}
	}
	return w
}

// timeParser collects the first parse error so conversions read linearly.
type timeParser struct{ err error }

func (p *timeParser) parse(field, s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil && !domain.InTimeRange(t) {
		err = fmt.Errorf("%s is outside the storable range", s)
	}
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%s: %w", field, err)
	}
	return t.UTC()
}

func (s strictSnapshotV1) toDomain() (domain.BackupData, error) {
	data := domain.BackupData{
		Trips:   make([]domain.Trip, 0, len(*s.Trips)),
		Entries: make([]domain.Entry, 0, len(*s.Entries)),
	}

	tripIDs := make(map[int64]struct{}, len(*s.Trips))
	for i, w := range *s.Trips {
		t, err := w.toDomain()
		if err != nil {
			return domain.BackupData{}, fmt.Errorf("%w: trip #%d: %v", domain.ErrCorruptBackup, i, err)
		}
		if _, dup := tripIDs[t.ID]; dup {
			return domain.BackupData{}, fmt.Errorf("%w: duplicate trip id %d", domain.ErrCorruptBackup, t.ID)
		}
		tripIDs[t.ID] = struct{}{}
		data.Trips = append(data.Trips, t)
	}

	entryIDs := make(map[int64]struct{}, len(*s.Entries))
	for i, w := range *s.Entries {
		e, err := w.toDomain()
		if err != nil {
			return domain.BackupData{}, fmt.Errorf("%w: entry #%d: %v", domain.ErrCorruptBackup, i, err)
		}
		if _, dup := entryIDs[e.ID]; dup {
			return domain.BackupData{}, fmt.Errorf("%w: duplicate entry id %d", domain.ErrCorruptBackup, e.ID)
		}
		entryIDs[e.ID] = struct{}{}
		data.Entries = append(data.Entries, e)
	}

	// Structure is sound; now check references within the payload.
	for _, e := range data.Entries {
		if _, ok := tripIDs[e.TripID]; !ok {
			return domain.BackupData{}, fmt.Errorf("%w: entry %d references trip %d", domain.ErrOrphanEntry, e.ID, e.TripID)
		}
	}
	return data, nil
}

func (w tripV1) toDomain() (domain.Trip, error) {
	if w.ID == 0 {
		return domain.Trip{}, errors.New("id is zero")
	}
	var p timeParser
	t := domain.Trip{
		ID:          w.ID,
		Title:       w.Title,
		StartDate:   p.parse("startDate", w.StartDate),
		EndDate:     p.parse("endDate", w.EndDate),
		Category:    domain.Category(w.Category),
		CoverImage:  w.CoverImage,
		Description: w.Description,
		Tags:        w.Tags,
		CreatedAt:   p.parse("createdAt", w.CreatedAt),
		UpdatedAt:   p.parse("updatedAt", w.UpdatedAt),
		Progress:    w.Progress,
	}
	if w.LastExportedAt != nil {
		at := p.parse("lastExportedAt", *w.LastExportedAt)
		t.LastExportedAt = &at
	}
	if p.err != nil {
		return domain.Trip{}, p.err
	}
	return t, t.Validate()
}

func (w entryV1) toDomain() (domain.Entry, error) {
	if w.ID == 0 {
		return domain.Entry{}, errors.New("id is zero")
	}
	var p timeParser
	e := domain.Entry{
		ID:        w.ID,
		TripID:    w.TripID,
		Type:      domain.EntryType(w.Type),
		Title:     w.Title,
		Text:      w.Text,
		Media:     w.Media,
		Timestamp: p.parse("timestamp", w.Timestamp),
		Tags:      w.Tags,
		CreatedAt: p.parse("createdAt", w.CreatedAt),
		UpdatedAt: p.parse("updatedAt", w.UpdatedAt),
	}
	if w.Coordinates != nil {
		e.Coordinates = &domain.Coordinates{Latitude: w.Coordinates.Latitude, Longitude: w.Coordinates.Longitude}
	}
	if p.err != nil {
		return domain.Entry{}, p.err
	}
	return e, e.Validate()
}
