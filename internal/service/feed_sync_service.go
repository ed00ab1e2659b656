package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"appointment-dashboard/internal/domain/entity"
	"appointment-dashboard/internal/domain/repository"
	"appointment-dashboard/internal/infrastructure/metrics"
	"appointment-dashboard/internal/infrastructure/upstream"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// DefaultPollInterval is how often the feed is polled when no interval is configured.
	DefaultPollInterval = 30 * time.Second

	placeholderNotes = "Dados de exemplo - Verifique conexão com API"
)

// =============================================================================
// Types
// =============================================================================

// RecordNormalizer turns raw feed items into canonical appointments.
type RecordNormalizer interface {
	NormalizeAll(items []any) []entity.Appointment
}

// FeedSyncService polls the upstream feed and applies normalized snapshots.
//
// Every fetch draws a sequence number before its request goes out. A completed fetch is
// applied only when its number is above every number applied before, so a slow response
// never replaces the data of a newer one that finished first.
type FeedSyncService struct {
	client     upstream.Client
	snapshots  repository.SnapshotRepository
	normalizer RecordNormalizer
	metrics    *metrics.FeedMetrics
	log        *logrus.Logger
	interval   time.Duration
	query      upstream.FeedQuery
	now        func() time.Time

	// Graceful shutdown
	stopChan chan struct{}
	wg       sync.WaitGroup
	started  atomic.Bool
	stopped  atomic.Bool
}

// RefreshResult describes one completed fetch.
type RefreshResult struct {
	Snapshot *entity.Snapshot
	Applied  bool
}

// =============================================================================
// Constructor
// =============================================================================

func NewFeedSyncService(
	client upstream.Client,
	snapshots repository.SnapshotRepository,
	normalizer RecordNormalizer,
	feedMetrics *metrics.FeedMetrics,
	log *logrus.Logger,
	interval time.Duration,
) *FeedSyncService {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &FeedSyncService{
		client:     client,
		snapshots:  snapshots,
		normalizer: normalizer,
		metrics:    feedMetrics,
		log:        log,
		interval:   interval,
		now:        time.Now,
		stopChan:   make(chan struct{}),
	}
}

// WithQuery sets the server-side filters sent with every poll.
func (s *FeedSyncService) WithQuery(query upstream.FeedQuery) *FeedSyncService {
	s.query = query
	return s
}

// =============================================================================
// Lifecycle Methods
// =============================================================================

// Start fetches once immediately, then once per interval until Stop.
// Calling Start more than once has no effect.
func (s *FeedSyncService) Start(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		s.pollLoop(loopCtx)
	}()
	s.log.Infof("Feed polling started, interval=%v", s.interval)
}

// Stop gracefully shuts down the service.
// Safe to call multiple times.
func (s *FeedSyncService) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopChan)
		s.wg.Wait()
		s.log.Info("FeedSyncService stopped")
	}
}

// =============================================================================
// Public Methods
// =============================================================================

// Refresh performs one fetch and applies it unless a newer fetch already completed.
// Transport failures are not returned: they produce the placeholder snapshot instead.
// Only snapshot store failures surface as errors.
func (s *FeedSyncService) Refresh(ctx context.Context) (*RefreshResult, error) {
	seq, err := s.snapshots.NextSequence(ctx)
	if err != nil {
		s.log.Warnf("Failed to draw feed sequence: %+v", err)
		return nil, fmt.Errorf("draw feed sequence: %w", err)
	}

	fetchID := uuid.NewString()
	logger := s.log.WithFields(logrus.Fields{"fetch_id": fetchID, "sequence": seq})

	startTime := time.Now()
	items, fetchErr := s.client.FetchAppointments(ctx, s.query)
	elapsed := time.Since(startTime)

	snapshot := &entity.Snapshot{
		Sequence:  seq,
		FetchID:   fetchID,
		FetchedAt: s.now(),
	}
	if fetchErr != nil {
		logger.Warnf("Feed fetch failed, using placeholder data: %+v", fetchErr)
		s.metrics.ObserveFetch("failure", elapsed.Seconds())
		snapshot.Source = entity.SnapshotSourcePlaceholder
		snapshot.Appointments = PlaceholderAppointments(snapshot.FetchedAt)
	} else {
		s.metrics.ObserveFetch("success", elapsed.Seconds())
		snapshot.Source = entity.SnapshotSourceUpstream
		snapshot.Appointments = s.normalizer.NormalizeAll(items)
	}

	applied, err := s.snapshots.Apply(ctx, snapshot)
	if err != nil {
		logger.Warnf("Failed to apply feed snapshot: %+v", err)
		return nil, fmt.Errorf("apply snapshot %d: %w", seq, err)
	}

	if !applied {
		s.metrics.ObserveStale()
		logger.Debugf("Discarded stale feed snapshot (%d records)", len(snapshot.Appointments))
	} else {
		s.metrics.SetSnapshotSize(len(snapshot.Appointments))
		logger.Infof("Applied feed snapshot: source=%s, records=%d, elapsed=%v", snapshot.Source, len(snapshot.Appointments), elapsed)
	}

	return &RefreshResult{Snapshot: snapshot, Applied: applied}, nil
}

// PlaceholderAppointments is the fixed record set shown while the feed is unreachable.
func PlaceholderAppointments(at time.Time) []entity.Appointment {
	return []entity.Appointment{
		{
			ID:              "1",
			OpportunityID:   "opp_001",
			PatientName:     "Paciente Exemplo",
			Doctor:          "Dr. Exemplo",
			City:            "Cidade Exemplo",
			Procedure:       "Consulta Geral",
			Insurance:       "Particular",
			Status:          entity.StatusConfirmed,
			AppointmentDate: at,
			CreatedAt:       at,
			UpdatedAt:       at,
			Notes:           placeholderNotes,
		},
	}
}

// =============================================================================
// Private Helper Methods
// =============================================================================

func (s *FeedSyncService) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.refreshQuietly(ctx)
	for {
		select {
		case <-s.stopChan:
			s.log.Debug("Feed polling goroutine stopping")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refreshQuietly(ctx)
		}
	}
}

func (s *FeedSyncService) refreshQuietly(ctx context.Context) {
	if _, err := s.Refresh(ctx); err != nil {
		s.log.Errorf("Feed refresh failed: %+v", err)
	}
}
