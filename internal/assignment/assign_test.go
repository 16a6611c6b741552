package assignment

import (
	"context"
	"testing"
	"time"

	"courier-track-api-server/internal/logger"
	"courier-track-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func pendingDelivery(trackingID string) models.Delivery {
	return models.Delivery{
		ID:         primitive.NewObjectID(),
		TrackingID: trackingID,
		Status:     models.StatusPending,
		Payment:    models.PaymentInfo{Method: models.PaymentMethodCOD, Status: models.PaymentPending, Amount: 500},
		CreatedAt:  time.Now(),
	}
}

func approvedPartner(name string, online bool, totalDeliveries int64) models.Partner {
	return models.Partner{
		ID:              primitive.NewObjectID(),
		PartnerID:       "DP-" + name,
		Name:            name,
		Status:          models.PartnerApproved,
		IsActive:        true,
		IsOnline:        online,
		TotalDeliveries: totalDeliveries,
	}
}

func TestAutoAssignPartnerPicksLeastLoadedOnline(t *testing.T) {
	p1 := approvedPartner("P1", true, 5)
	p2 := approvedPartner("P2", true, 2)
	partners := newFakePartnerStore(p1, p2)

	d := pendingDelivery("CT-D1")
	deliveries := newFakeDeliveryStore(d)

	assigner := NewAssigner(deliveries, partners, 0, logger.Nop())
	selected, err := assigner.AutoAssignPartner(context.Background(), &d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if selected.PartnerID != "DP-P2" {
		t.Fatalf("expected DP-P2, got %s", selected.PartnerID)
	}
	if d.Status != models.StatusAssigned {
		t.Fatalf("status = %q, want %q", d.Status, models.StatusAssigned)
	}
	if d.AssignedPartner == nil || *d.AssignedPartner != p2.ID {
		t.Fatalf("assignedPartner not set to P2")
	}
	if d.AssignedAt == nil {
		t.Fatal("assignedAt not set")
	}
	if d.PartnerEarnings != DefaultBaseEarning {
		t.Fatalf("partnerEarnings = %v, want %v", d.PartnerEarnings, DefaultBaseEarning)
	}
	if len(d.History) != 1 || d.History[0].UpdatedByRole != "system" {
		t.Fatalf("expected one system history entry, got %+v", d.History)
	}
	if got := partners.get(p2.ID).TotalDeliveries; got != 3 {
		t.Fatalf("P2 totalDeliveries = %d, want 3", got)
	}
	if stored := deliveries.get("CT-D1"); stored == nil || stored.AssignedPartner == nil {
		t.Fatal("assignment not persisted")
	}
}

func TestAutoAssignPartnerPrefersOnlineOverLessLoadedOffline(t *testing.T) {
	online := approvedPartner("ON", true, 50)
	offline := approvedPartner("OFF", false, 0)
	partners := newFakePartnerStore(online, offline)

	d := pendingDelivery("CT-D2")
	assigner := NewAssigner(newFakeDeliveryStore(d), partners, 0, logger.Nop())

	selected, err := assigner.AutoAssignPartner(context.Background(), &d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if selected.PartnerID != "DP-ON" {
		t.Fatalf("expected online partner, got %s", selected.PartnerID)
	}
}

func TestAutoAssignPartnerFallsBackToOffline(t *testing.T) {
	offline := approvedPartner("OFF", false, 7)
	partners := newFakePartnerStore(offline)

	d := pendingDelivery("CT-D3")
	assigner := NewAssigner(newFakeDeliveryStore(d), partners, 0, logger.Nop())

	selected, err := assigner.AutoAssignPartner(context.Background(), &d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if selected.PartnerID != "DP-OFF" {
		t.Fatalf("expected offline fallback, got %s", selected.PartnerID)
	}
}

func TestAutoAssignPartnerNoPartnerAvailable(t *testing.T) {
	pending := approvedPartner("P", true, 0)
	pending.Status = models.PartnerPending // not approved, not eligible
	partners := newFakePartnerStore(pending)

	d := pendingDelivery("CT-D4")
	assigner := NewAssigner(newFakeDeliveryStore(d), partners, 0, logger.Nop())

	_, err := assigner.AutoAssignPartner(context.Background(), &d)
	if err != ErrNoPartnerAvailable {
		t.Fatalf("expected ErrNoPartnerAvailable, got %v", err)
	}
	if d.AssignedPartner != nil {
		t.Fatal("delivery must stay unassigned")
	}
	if d.Status != models.StatusPending {
		t.Fatalf("status = %q, want %q", d.Status, models.StatusPending)
	}
}

func TestAutoAssignPartnerCustomBaseEarning(t *testing.T) {
	partners := newFakePartnerStore(approvedPartner("P", true, 0))
	d := pendingDelivery("CT-D5")

	assigner := NewAssigner(newFakeDeliveryStore(d), partners, 75, logger.Nop())
	if _, err := assigner.AutoAssignPartner(context.Background(), &d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.PartnerEarnings != 75 {
		t.Fatalf("partnerEarnings = %v, want 75", d.PartnerEarnings)
	}
}
