package assignment

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"courier-track-api-server/internal/logger"
	"courier-track-api-server/internal/models"
)

func newTestService(deliveries *fakeDeliveryStore, partners *fakePartnerStore, batchSize int64) *Service {
	assigner := NewAssigner(deliveries, partners, 0, logger.Nop())
	svc := NewService(assigner, deliveries, deliveries, batchSize, logger.Nop())
	svc.ItemDelay = 0 // no throttling in tests
	return svc
}

func TestScanAssignsEveryAssignableDelivery(t *testing.T) {
	deliveries := newFakeDeliveryStore(
		pendingDelivery("CT-A"),
		pendingDelivery("CT-B"),
		pendingDelivery("CT-C"),
	)
	partners := newFakePartnerStore(approvedPartner("P1", true, 0))

	svc := newTestService(deliveries, partners, 20)
	summary := svc.TriggerAssignment(context.Background())

	if summary.Scanned != 3 || summary.Assigned != 3 {
		t.Fatalf("summary = %+v, want 3 scanned and 3 assigned", summary)
	}
	for _, id := range []string{"CT-A", "CT-B", "CT-C"} {
		d := deliveries.get(id)
		if d.AssignedPartner == nil {
			t.Fatalf("%s left unassigned", id)
		}
		if d.Status != models.StatusAssigned {
			t.Fatalf("%s status = %q, want %q", id, d.Status, models.StatusAssigned)
		}
	}
}

func TestScanLeavesDeliveriesUnassignedOnExhaustion(t *testing.T) {
	deliveries := newFakeDeliveryStore(pendingDelivery("CT-A"), pendingDelivery("CT-B"))
	partners := newFakePartnerStore() // nobody approved

	svc := newTestService(deliveries, partners, 20)
	summary := svc.TriggerAssignment(context.Background())

	if summary.Unassigned != 2 || summary.Assigned != 0 {
		t.Fatalf("summary = %+v, want 2 unassigned", summary)
	}
	if deliveries.get("CT-A").AssignedPartner != nil {
		t.Fatal("CT-A must stay unassigned when no partner exists")
	}
}

func TestScanRespectsBatchCap(t *testing.T) {
	var ds []models.Delivery
	for i := 0; i < 25; i++ {
		ds = append(ds, pendingDelivery(fmt.Sprintf("CT-%02d", i)))
	}
	deliveries := newFakeDeliveryStore(ds...)
	partners := newFakePartnerStore(approvedPartner("P1", true, 0))

	svc := newTestService(deliveries, partners, 20)
	summary := svc.TriggerAssignment(context.Background())

	if summary.Scanned != 20 {
		t.Fatalf("scanned = %d, want batch cap 20", summary.Scanned)
	}
}

func TestScanIsolatesPerDeliveryErrors(t *testing.T) {
	deliveries := newFakeDeliveryStore(
		pendingDelivery("CT-OK1"),
		pendingDelivery("CT-BAD"),
		pendingDelivery("CT-OK2"),
	)
	deliveries.updateErr["CT-BAD"] = errors.New("write failed")
	partners := newFakePartnerStore(approvedPartner("P1", true, 0))

	svc := newTestService(deliveries, partners, 20)
	summary := svc.TriggerAssignment(context.Background())

	if summary.Errors != 1 {
		t.Fatalf("errors = %d, want 1", summary.Errors)
	}
	if summary.Assigned != 2 {
		t.Fatalf("assigned = %d, want 2 (one failure must not abort the scan)", summary.Assigned)
	}
	if deliveries.get("CT-OK2").AssignedPartner == nil {
		t.Fatal("delivery after the failing one was not processed")
	}
}

func TestScanShortCircuitsWhenStoreNotReady(t *testing.T) {
	deliveries := newFakeDeliveryStore(pendingDelivery("CT-A"))
	deliveries.pingErr = errors.New("connection refused")
	partners := newFakePartnerStore(approvedPartner("P1", true, 0))

	svc := newTestService(deliveries, partners, 20)
	summary := svc.TriggerAssignment(context.Background())

	if summary.Scanned != 0 || summary.Assigned != 0 {
		t.Fatalf("summary = %+v, want empty when datastore is down", summary)
	}
	if deliveries.get("CT-A").AssignedPartner != nil {
		t.Fatal("no assignment may happen while the datastore is down")
	}
}

func TestProcessPartnerOnlineRunsFullScan(t *testing.T) {
	deliveries := newFakeDeliveryStore(pendingDelivery("CT-A"))
	partners := newFakePartnerStore(approvedPartner("P1", true, 0))

	svc := newTestService(deliveries, partners, 20)
	summary := svc.ProcessPartnerOnline(context.Background(), "DP-P1")

	if summary.Assigned != 1 {
		t.Fatalf("assigned = %d, want 1", summary.Assigned)
	}
}

func TestStartStopStatus(t *testing.T) {
	deliveries := newFakeDeliveryStore(pendingDelivery("CT-A"))
	partners := newFakePartnerStore(approvedPartner("P1", true, 0))
	svc := newTestService(deliveries, partners, 20)

	if svc.Status() {
		t.Fatal("service must not report running before Start")
	}

	svc.Start(1)
	if !svc.Status() {
		t.Fatal("service must report running after Start")
	}

	// Start runs one scan immediately (in its own goroutine).
	deadline := time.Now().Add(2 * time.Second)
	for deliveries.scans == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if deliveries.scans == 0 {
		t.Fatal("Start did not execute an immediate scan")
	}

	// Second Start is a warned no-op, not a second timer.
	svc.Start(1)
	if !svc.Status() {
		t.Fatal("service must still be running")
	}

	svc.Stop()
	if svc.Status() {
		t.Fatal("service must report not running after Stop")
	}

	// Second Stop is a warned no-op.
	svc.Stop()
	if svc.Status() {
		t.Fatal("status must stay not running")
	}
}
