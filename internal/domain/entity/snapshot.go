package entity

import "time"

// SnapshotSource tells where the records of a snapshot came from.
type SnapshotSource string

const (
	SnapshotSourceUpstream    SnapshotSource = "upstream"
	SnapshotSourcePlaceholder SnapshotSource = "placeholder"
)

// Snapshot is the normalized record set produced by one fetch.
// Sequence is drawn before the request is issued and decides which completion wins.
type Snapshot struct {
	Sequence     int64          `json:"sequence"`
	FetchID      string         `json:"fetch_id"`
	Source       SnapshotSource `json:"source"`
	FetchedAt    time.Time      `json:"fetched_at"`
	Appointments []Appointment  `json:"appointments"`
}

// Records returns the appointments, or nil for a nil snapshot.
func (s *Snapshot) Records() []Appointment {
	if s == nil {
		return nil
	}
	return s.Appointments
}
