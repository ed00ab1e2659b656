package service

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"appointment-dashboard/internal/domain/entity"
	"appointment-dashboard/internal/infrastructure/metrics"
	"appointment-dashboard/internal/infrastructure/upstream"
	"appointment-dashboard/internal/repository"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clientFunc func(ctx context.Context, query upstream.FeedQuery) ([]any, error)

func (f clientFunc) FetchAppointments(ctx context.Context, query upstream.FeedQuery) ([]any, error) {
	return f(ctx, query)
}

// idNormalizer keeps only the "id" of each raw item.
type idNormalizer struct{}

func (idNormalizer) NormalizeAll(items []any) []entity.Appointment {
	out := make([]entity.Appointment, 0, len(items))
	for _, item := range items {
		id, _ := item.(map[string]any)["id"].(string)
		out = append(out, entity.Appointment{ID: id, Status: entity.StatusDefault})
	}
	return out
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func metricValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	total := 0.0
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				total += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				total += m.GetGauge().GetValue()
			}
		}
	}
	return total
}

func TestFeedSync_RefreshAppliesUpstreamSnapshot(t *testing.T) {
	store := repository.NewMemorySnapshotRepository()
	reg := prometheus.NewRegistry()
	client := clientFunc(func(ctx context.Context, query upstream.FeedQuery) ([]any, error) {
		assert.Equal(t, "Recife", query.City)
		return []any{map[string]any{"id": "a"}, map[string]any{"id": "b"}}, nil
	})
	svc := NewFeedSyncService(client, store, idNormalizer{}, metrics.NewFeedMetrics(reg), quietLogger(), time.Minute).
		WithQuery(upstream.FeedQuery{City: "Recife"})

	result, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Applied)
	assert.Equal(t, int64(1), result.Snapshot.Sequence)
	assert.Equal(t, entity.SnapshotSourceUpstream, result.Snapshot.Source)
	assert.NotEmpty(t, result.Snapshot.FetchID)

	current, err := store.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(current.Appointments))
	assert.Equal(t, 2.0, metricValue(t, reg, "dashboard_feed_snapshot_records"))
	assert.Equal(t, 1.0, metricValue(t, reg, "dashboard_feed_fetch_total"))
}

func TestFeedSync_TransportFailureAppliesPlaceholder(t *testing.T) {
	store := repository.NewMemorySnapshotRepository()
	client := clientFunc(func(ctx context.Context, query upstream.FeedQuery) ([]any, error) {
		return nil, errors.New("connection refused")
	})
	svc := NewFeedSyncService(client, store, idNormalizer{}, nil, quietLogger(), time.Minute)
	fixed := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	result, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Applied)
	assert.Equal(t, entity.SnapshotSourcePlaceholder, result.Snapshot.Source)
	require.Len(t, result.Snapshot.Appointments, 1)
	placeholder := result.Snapshot.Appointments[0]
	assert.Equal(t, "1", placeholder.ID)
	assert.Equal(t, "opp_001", placeholder.OpportunityID)
	assert.Equal(t, "Paciente Exemplo", placeholder.PatientName)
	assert.Equal(t, entity.StatusConfirmed, placeholder.Status)
	assert.Equal(t, fixed, placeholder.AppointmentDate)
	assert.Equal(t, "Dados de exemplo - Verifique conexão com API", placeholder.Notes)
}

func TestFeedSync_StaleCompletionIsDiscarded(t *testing.T) {
	store := repository.NewMemorySnapshotRepository()
	reg := prometheus.NewRegistry()

	entered := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	client := clientFunc(func(ctx context.Context, query upstream.FeedQuery) ([]any, error) {
		if calls.Add(1) == 1 {
			close(entered)
			<-release
			return []any{map[string]any{"id": "slow"}}, nil
		}
		return []any{map[string]any{"id": "fast"}}, nil
	})
	svc := NewFeedSyncService(client, store, idNormalizer{}, metrics.NewFeedMetrics(reg), quietLogger(), time.Minute)

	slow := make(chan *RefreshResult, 1)
	go func() {
		result, err := svc.Refresh(context.Background())
		assert.NoError(t, err)
		slow <- result
	}()
	<-entered

	fast, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.True(t, fast.Applied)
	assert.Equal(t, int64(2), fast.Snapshot.Sequence)

	close(release)
	stale := <-slow
	assert.False(t, stale.Applied)
	assert.Equal(t, int64(1), stale.Snapshot.Sequence)

	current, err := store.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"fast"}, ids(current.Appointments))
	assert.Equal(t, 1.0, metricValue(t, reg, "dashboard_feed_stale_discarded_total"))
}

func TestFeedSync_StartPollsImmediatelyAndStopIsIdempotent(t *testing.T) {
	store := repository.NewMemorySnapshotRepository()
	fetched := make(chan struct{}, 16)
	client := clientFunc(func(ctx context.Context, query upstream.FeedQuery) ([]any, error) {
		fetched <- struct{}{}
		return []any{}, nil
	})
	svc := NewFeedSyncService(client, store, idNormalizer{}, nil, quietLogger(), time.Hour)

	svc.Start(context.Background())
	svc.Start(context.Background())

	select {
	case <-fetched:
	case <-time.After(2 * time.Second):
		t.Fatal("expected an immediate fetch on start")
	}

	svc.Stop()
	svc.Stop()

	current, err := store.Current(context.Background())
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Empty(t, current.Appointments)
}

func TestFeedSync_DefaultInterval(t *testing.T) {
	svc := NewFeedSyncService(nil, nil, nil, nil, quietLogger(), 0)
	assert.Equal(t, DefaultPollInterval, svc.interval)
}
