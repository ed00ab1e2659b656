package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"appointment-dashboard/internal/domain/entity"
	domainRepo "appointment-dashboard/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

// Redis keys for the shared feed snapshot
const (
	RedisSequenceKey        = "dashboard:feed:sequence"
	RedisAppliedSequenceKey = "dashboard:feed:applied_sequence"
	RedisSnapshotKey        = "dashboard:feed:snapshot"
)

// applySnapshotScript stores the payload only when ARGV[1] is above the applied sequence.
// Returns 1 when stored, 0 when the snapshot is stale.
var applySnapshotScript = redis.NewScript(`
	local applied = tonumber(redis.call('GET', KEYS[1]) or '0')
	local incoming = tonumber(ARGV[1])
	if incoming <= applied then
		return 0
	end
	redis.call('SET', KEYS[1], ARGV[1])
	redis.call('SET', KEYS[2], ARGV[2])
	return 1
`)

type redisSnapshotRepository struct {
	client *redis.Client
}

// NewRedisSnapshotRepository shares sequence numbers and the applied snapshot across replicas.
func NewRedisSnapshotRepository(client *redis.Client) domainRepo.SnapshotRepository {
	return &redisSnapshotRepository{client: client}
}

func (r *redisSnapshotRepository) NextSequence(ctx context.Context) (int64, error) {
	seq, err := r.client.Incr(ctx, RedisSequenceKey).Result()
	if err != nil {
		return 0, fmt.Errorf("incr feed sequence: %w", err)
	}
	return seq, nil
}

func (r *redisSnapshotRepository) Apply(ctx context.Context, snapshot *entity.Snapshot) (bool, error) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return false, fmt.Errorf("marshal snapshot %d: %w", snapshot.Sequence, err)
	}

	stored, err := applySnapshotScript.Run(ctx, r.client,
		[]string{RedisAppliedSequenceKey, RedisSnapshotKey},
		snapshot.Sequence, payload,
	).Int()
	if err != nil {
		return false, fmt.Errorf("lua apply snapshot %d: %w", snapshot.Sequence, err)
	}
	return stored == 1, nil
}

func (r *redisSnapshotRepository) Current(ctx context.Context) (*entity.Snapshot, error) {
	payload, err := r.client.Get(ctx, RedisSnapshotKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	var snapshot entity.Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snapshot, nil
}
