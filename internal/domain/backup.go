package domain

// BackupData is the full journal dataset at one point in time.
// It is never persisted; it exists only to be serialized or restored.
// Both slices keep their order through a round trip.
type BackupData struct {
	Trips   []Trip
	Entries []Entry
}

// ImportResult summarizes what a restore did to the store.
type ImportResult struct {
	TripsInserted   int
	TripsReplaced   int
	EntriesInserted int
	EntriesReplaced int
}
