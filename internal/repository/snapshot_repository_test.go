package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"appointment-dashboard/internal/domain/entity"
	domainRepo "appointment-dashboard/internal/domain/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisRepo(t *testing.T) (domainRepo.SnapshotRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisSnapshotRepository(client), mr
}

func snapshotStores(t *testing.T) map[string]domainRepo.SnapshotRepository {
	redisRepo, _ := newRedisRepo(t)
	return map[string]domainRepo.SnapshotRepository{
		"memory": NewMemorySnapshotRepository(),
		"redis":  redisRepo,
	}
}

func snapshotWith(seq int64, ids ...string) *entity.Snapshot {
	records := make([]entity.Appointment, len(ids))
	for i, id := range ids {
		records[i] = entity.Appointment{ID: id, Status: entity.StatusConfirmed}
	}
	return &entity.Snapshot{
		Sequence:     seq,
		FetchID:      "fetch",
		Source:       entity.SnapshotSourceUpstream,
		FetchedAt:    time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC),
		Appointments: records,
	}
}

func TestSnapshotRepository_EmptyCurrent(t *testing.T) {
	for name, store := range snapshotStores(t) {
		t.Run(name, func(t *testing.T) {
			current, err := store.Current(context.Background())
			require.NoError(t, err)
			assert.Nil(t, current)
		})
	}
}

func TestSnapshotRepository_SequenceIsMonotonic(t *testing.T) {
	for name, store := range snapshotStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first, err := store.NextSequence(ctx)
			require.NoError(t, err)
			second, err := store.NextSequence(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(1), first)
			assert.Equal(t, int64(2), second)
		})
	}
}

func TestSnapshotRepository_ApplyOnlyNewer(t *testing.T) {
	for name, store := range snapshotStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			applied, err := store.Apply(ctx, snapshotWith(2, "new"))
			require.NoError(t, err)
			assert.True(t, applied)

			applied, err = store.Apply(ctx, snapshotWith(1, "old"))
			require.NoError(t, err)
			assert.False(t, applied)

			applied, err = store.Apply(ctx, snapshotWith(2, "same"))
			require.NoError(t, err)
			assert.False(t, applied)

			current, err := store.Current(ctx)
			require.NoError(t, err)
			require.NotNil(t, current)
			assert.Equal(t, int64(2), current.Sequence)
			require.Len(t, current.Appointments, 1)
			assert.Equal(t, "new", current.Appointments[0].ID)
		})
	}
}

func TestSnapshotRepository_ConcurrentApplyKeepsHighest(t *testing.T) {
	for name, store := range snapshotStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			var wg sync.WaitGroup
			for seq := int64(1); seq <= 20; seq++ {
				wg.Add(1)
				go func(seq int64) {
					defer wg.Done()
					_, err := store.Apply(ctx, snapshotWith(seq))
					assert.NoError(t, err)
				}(seq)
			}
			wg.Wait()

			current, err := store.Current(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(20), current.Sequence)
		})
	}
}

func TestRedisSnapshotRepository_RoundTripsTimestamps(t *testing.T) {
	store, mr := newRedisRepo(t)
	ctx := context.Background()
	snapshot := snapshotWith(5, "a")
	snapshot.Appointments[0].AppointmentDate = time.Date(2026, 10, 20, 14, 30, 0, 0, time.UTC)

	_, err := store.Apply(ctx, snapshot)
	require.NoError(t, err)

	applied, err := mr.Get(RedisAppliedSequenceKey)
	require.NoError(t, err)
	assert.Equal(t, "5", applied)

	current, err := store.Current(ctx)
	require.NoError(t, err)
	assert.True(t, current.Appointments[0].AppointmentDate.Equal(snapshot.Appointments[0].AppointmentDate))
	assert.True(t, current.FetchedAt.Equal(snapshot.FetchedAt))
}

func TestRedisSnapshotRepository_UnavailableServer(t *testing.T) {
	store, mr := newRedisRepo(t)
	mr.Close()

	_, err := store.NextSequence(context.Background())
	assert.Error(t, err)
	_, err = store.Current(context.Background())
	assert.Error(t, err)
}
