package repository

import (
	"context"

	"appointment-dashboard/internal/domain/entity"
)

// SnapshotRepository holds the latest applied snapshot and hands out fetch sequence numbers.
type SnapshotRepository interface {
	// NextSequence returns a number strictly greater than every number returned before.
	NextSequence(ctx context.Context) (int64, error)
	// Apply stores snapshot only if its sequence is above the highest applied so far.
	// It reports whether the snapshot was stored.
	Apply(ctx context.Context, snapshot *entity.Snapshot) (bool, error)
	// Current returns the latest applied snapshot, or nil before the first apply.
	Current(ctx context.Context) (*entity.Snapshot, error)
}
