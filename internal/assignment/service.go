// server/internal/assignment/service.go
package assignment

import (
	"context"
	"errors"
	"sync"
	"time"

	"courier-track-api-server/internal/models"
	"courier-track-api-server/internal/store"

	"go.uber.org/zap"
)

// DefaultBatchSize caps how many unassigned deliveries one scan processes.
const DefaultBatchSize = 20

// DefaultItemDelay is the pause between candidates inside a scan. It is a
// crude throttle so a large backlog does not hammer the datastore, not a
// correctness mechanism.
const DefaultItemDelay = 200 * time.Millisecond

// Summary tallies the outcome of one scan.
type Summary struct {
	Scanned    int `json:"scanned"`
	Assigned   int `json:"assigned"`
	Unassigned int `json:"unassigned"`
	Errors     int `json:"errors"`
}

// Service periodically scans for unassigned deliveries and runs the
// assigner over each. It is constructed once in main and injected into the
// HTTP layer; Start/Stop own the timer goroutine.
type Service struct {
	Assigner   *Assigner
	Deliveries store.DeliveryStore
	Pinger     store.Pinger
	BatchSize  int64
	ItemDelay  time.Duration
	Log        *zap.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

func NewService(assigner *Assigner, deliveries store.DeliveryStore, pinger store.Pinger, batchSize int64, log *zap.Logger) *Service {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Service{
		Assigner:   assigner,
		Deliveries: deliveries,
		Pinger:     pinger,
		BatchSize:  batchSize,
		ItemDelay:  DefaultItemDelay,
		Log:        log,
	}
}

// Start runs one scan immediately, then repeats every intervalMinutes.
// The next tick is scheduled after the previous scan completes, so a slow
// scan delays the following one instead of overlapping it.
func (s *Service) Start(intervalMinutes int) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.Log.Warn("assignment service already running, start ignored")
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	interval := time.Duration(intervalMinutes) * time.Minute
	s.Log.Info("assignment service started", zap.Int("intervalMinutes", intervalMinutes))

	go func() {
		s.processUnassignedDeliveries(context.Background())
		for {
			select {
			case <-stopCh:
				return
			case <-time.After(interval):
				s.processUnassignedDeliveries(context.Background())
			}
		}
	}()
}

// Stop cancels the repeating scan. An in-flight scan finishes on its own.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		s.Log.Warn("assignment service not running, stop ignored")
		return
	}
	close(s.stopCh)
	s.running = false
	s.Log.Info("assignment service stopped")
}

// Status reports whether the periodic scan is currently active.
func (s *Service) Status() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// TriggerAssignment re-runs the scan on demand, e.g. from an admin action.
func (s *Service) TriggerAssignment(ctx context.Context) Summary {
	s.Log.Info("manual assignment trigger")
	return s.processUnassignedDeliveries(ctx)
}

// ProcessPartnerOnline is invoked when a partner flips online. It re-runs
// the full scan rather than scoping to that partner: any unassigned
// delivery may now be picked up.
func (s *Service) ProcessPartnerOnline(ctx context.Context, partnerID string) Summary {
	s.Log.Info("partner came online, rescanning unassigned deliveries",
		zap.String("partnerID", partnerID))
	return s.processUnassignedDeliveries(ctx)
}

// processUnassignedDeliveries is the scan body. Per-delivery failures are
// counted, never propagated: one bad document must not abort the scan.
func (s *Service) processUnassignedDeliveries(ctx context.Context) Summary {
	var summary Summary

	// If the datastore is down there is no point attempting the batch;
	// the next scheduled tick retries.
	if s.Pinger != nil {
		if err := s.Pinger.Ping(ctx); err != nil {
			s.Log.Warn("datastore not ready, skipping assignment scan", zap.Error(err))
			return summary
		}
	}

	deliveries, err := s.Deliveries.FindUnassigned(ctx, models.AssignableStatuses(), s.BatchSize)
	if err != nil {
		s.Log.Error("failed to query unassigned deliveries", zap.Error(err))
		summary.Errors++
		return summary
	}

	summary.Scanned = len(deliveries)
	if len(deliveries) == 0 {
		return summary
	}

	for i := range deliveries {
		if i > 0 && s.ItemDelay > 0 {
			time.Sleep(s.ItemDelay)
		}

		d := deliveries[i]
		_, err := s.Assigner.AutoAssignPartner(ctx, &d)
		switch {
		case err == nil:
			summary.Assigned++
		case errors.Is(err, ErrNoPartnerAvailable):
			summary.Unassigned++
		default:
			summary.Errors++
			s.Log.Error("assignment failed",
				zap.String("trackingID", d.TrackingID),
				zap.Error(err))
		}
	}

	s.Log.Info("assignment scan complete",
		zap.Int("scanned", summary.Scanned),
		zap.Int("assigned", summary.Assigned),
		zap.Int("unassigned", summary.Unassigned),
		zap.Int("errors", summary.Errors))

	return summary
}
