package repository

import (
	"context"
	"sync"
	"sync/atomic"

	"appointment-dashboard/internal/domain/entity"
	domainRepo "appointment-dashboard/internal/domain/repository"
)

type memorySnapshotRepository struct {
	sequence atomic.Int64

	mu      sync.RWMutex
	current *entity.Snapshot
}

// NewMemorySnapshotRepository keeps the snapshot in process memory.
func NewMemorySnapshotRepository() domainRepo.SnapshotRepository {
	return &memorySnapshotRepository{}
}

func (r *memorySnapshotRepository) NextSequence(ctx context.Context) (int64, error) {
	return r.sequence.Add(1), nil
}

func (r *memorySnapshotRepository) Apply(ctx context.Context, snapshot *entity.Snapshot) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil && snapshot.Sequence <= r.current.Sequence {
		return false, nil
	}
	r.current = snapshot
	return true, nil
}

func (r *memorySnapshotRepository) Current(ctx context.Context) (*entity.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current, nil
}
