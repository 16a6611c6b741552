package delivery

import (
	"context"
	"errors"
	"testing"
	"time"

	"courier-track-api-server/internal/logger"
	"courier-track-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeDeliveryStore struct {
	updated *models.Delivery
}

func (f *fakeDeliveryStore) FindUnassigned(ctx context.Context, statuses []string, limit int64) ([]models.Delivery, error) {
	return nil, nil
}

func (f *fakeDeliveryStore) FindByTrackingID(ctx context.Context, trackingID string) (*models.Delivery, error) {
	return nil, nil
}

func (f *fakeDeliveryStore) Update(ctx context.Context, d *models.Delivery) error {
	copied := *d
	f.updated = &copied
	return nil
}

type completion struct {
	id       primitive.ObjectID
	earnings float64
}

type fakePartnerStore struct {
	completions []completion
}

func (f *fakePartnerStore) FindAssignable(ctx context.Context, online bool) ([]models.Partner, error) {
	return nil, nil
}

func (f *fakePartnerStore) IncrementTotalDeliveries(ctx context.Context, id primitive.ObjectID) error {
	return nil
}

func (f *fakePartnerStore) RecordCompletion(ctx context.Context, id primitive.ObjectID, earnings float64) error {
	f.completions = append(f.completions, completion{id: id, earnings: earnings})
	return nil
}

func newTestService() (*Service, *fakeDeliveryStore, *fakePartnerStore) {
	deliveries := &fakeDeliveryStore{}
	partners := &fakePartnerStore{}
	svc := NewService(deliveries, partners, logger.Nop())
	svc.Now = func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) }
	return svc, deliveries, partners
}

func assignedCODDelivery() models.Delivery {
	partnerID := primitive.NewObjectID()
	return models.Delivery{
		ID:              primitive.NewObjectID(),
		TrackingID:      "CT-TEST",
		Status:          "in_transit",
		AssignedPartner: &partnerID,
		PartnerEarnings: 60,
		Payment: models.PaymentInfo{
			Method: models.PaymentMethodCOD,
			Status: models.PaymentPending,
			Amount: 500,
		},
	}
}

func TestDeliveredSettlesPendingCOD(t *testing.T) {
	svc, deliveries, partners := newTestService()
	d := assignedCODDelivery()
	partnerID := *d.AssignedPartner

	err := svc.UpdateStatus(context.Background(), &d, "delivered", "Mumbai", "left at door", "DP-X", "partner")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if d.DeliveredAt == nil {
		t.Fatal("deliveredAt not stamped")
	}
	if d.Payment.Status != models.PaymentCompleted {
		t.Fatalf("payment status = %q, want %q", d.Payment.Status, models.PaymentCompleted)
	}
	if d.Payment.PaidAt == nil {
		t.Fatal("paidAt not stamped for auto-settled COD")
	}
	if len(partners.completions) != 1 {
		t.Fatalf("expected one completion record, got %d", len(partners.completions))
	}
	if partners.completions[0].id != partnerID || partners.completions[0].earnings != 60 {
		t.Fatalf("completion = %+v, want partner %v with earnings 60", partners.completions[0], partnerID)
	}
	if deliveries.updated == nil {
		t.Fatal("delivery not persisted")
	}
	if got := deliveries.updated.History; len(got) != 1 || got[0].Status != "delivered" {
		t.Fatalf("history = %+v, want one delivered entry", got)
	}
}

func TestDeliveredMixedCasingBehavesTheSame(t *testing.T) {
	svc, _, partners := newTestService()
	d := assignedCODDelivery()

	if err := svc.UpdateStatus(context.Background(), &d, "Delivered", "", "", "admin@x", "admin"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Payment.Status != models.PaymentCompleted {
		t.Fatalf("payment status = %q, want auto-settle for %q too", d.Payment.Status, "Delivered")
	}
	if len(partners.completions) != 1 {
		t.Fatal("completion side effect missing for capitalized status")
	}
}

func TestDeliveredDoesNotTouchNonCODPayment(t *testing.T) {
	svc, _, _ := newTestService()
	d := assignedCODDelivery()
	d.Payment.Method = models.PaymentMethodUPI
	paid := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	d.Payment.Status = models.PaymentCompleted
	d.Payment.PaidAt = &paid

	if err := svc.UpdateStatus(context.Background(), &d, "delivered", "", "", "DP-X", "partner"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Payment.Status != models.PaymentCompleted || !d.Payment.PaidAt.Equal(paid) {
		t.Fatal("already-settled non-COD payment must not be altered")
	}
}

func TestPickedUpStampsTimestamp(t *testing.T) {
	svc, _, _ := newTestService()
	d := assignedCODDelivery()

	if err := svc.UpdateStatus(context.Background(), &d, "picked_up", "Warehouse 4", "", "DP-X", "partner"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.PickedUpAt == nil {
		t.Fatal("pickedUpAt not stamped")
	}
	if d.DeliveredAt != nil {
		t.Fatal("deliveredAt must not be set on pickup")
	}
	if d.CurrentLocation != "Warehouse 4" {
		t.Fatalf("currentLocation = %q, want Warehouse 4", d.CurrentLocation)
	}
}

func TestRequestRefundGuards(t *testing.T) {
	svc, _, _ := newTestService()

	d := assignedCODDelivery()
	d.Payment.Status = models.PaymentCompleted

	if err := svc.RequestRefund(context.Background(), &d, "box damaged", "damaged", "a@b.c", nil); err != nil {
		t.Fatalf("first request should pass, got %v", err)
	}
	if d.Payment.Status != models.PaymentRefundRequested {
		t.Fatalf("payment status = %q, want %q", d.Payment.Status, models.PaymentRefundRequested)
	}
	if d.Payment.Refund.RequestedAt == nil {
		t.Fatal("requestedAt not stamped")
	}

	// Second request while the first is pending must be rejected.
	err := svc.RequestRefund(context.Background(), &d, "again", "damaged", "a@b.c", nil)
	if !errors.Is(err, ErrRefundAlreadyRequested) {
		t.Fatalf("expected ErrRefundAlreadyRequested, got %v", err)
	}

	// Also rejected once the refund was granted.
	d.Payment.Status = models.PaymentRefunded
	err = svc.RequestRefund(context.Background(), &d, "again", "damaged", "a@b.c", nil)
	if !errors.Is(err, ErrRefundAlreadyRequested) {
		t.Fatalf("expected ErrRefundAlreadyRequested after refund, got %v", err)
	}

	// A rejected request may be resubmitted.
	d.Payment.Status = models.PaymentRefundRejected
	if err := svc.RequestRefund(context.Background(), &d, "still broken", "damaged", "a@b.c", nil); err != nil {
		t.Fatalf("resubmission after rejection should pass, got %v", err)
	}
}

func TestRequestRefundRequiresCompletedPayment(t *testing.T) {
	svc, _, _ := newTestService()
	d := assignedCODDelivery() // payment still Pending

	err := svc.RequestRefund(context.Background(), &d, "no", "late", "a@b.c", nil)
	if !errors.Is(err, ErrPaymentNotCompleted) {
		t.Fatalf("expected ErrPaymentNotCompleted, got %v", err)
	}
}

func TestResolveRefund(t *testing.T) {
	svc, _, _ := newTestService()

	d := assignedCODDelivery()
	d.Payment.Status = models.PaymentRefundRequested

	if err := svc.ResolveRefund(context.Background(), &d, true, "verified damage", "admin@x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Payment.Status != models.PaymentRefunded {
		t.Fatalf("payment status = %q, want %q", d.Payment.Status, models.PaymentRefunded)
	}
	if d.Payment.Refund.RefundedAt == nil {
		t.Fatal("refundedAt not stamped on approval")
	}

	// Deciding again is a conflict.
	err := svc.ResolveRefund(context.Background(), &d, false, "", "admin@x")
	if !errors.Is(err, ErrRefundNotPending) {
		t.Fatalf("expected ErrRefundNotPending, got %v", err)
	}
}

func TestResolveRefundReject(t *testing.T) {
	svc, _, _ := newTestService()

	d := assignedCODDelivery()
	d.Payment.Status = models.PaymentRefundRequested

	if err := svc.ResolveRefund(context.Background(), &d, false, "no evidence", "admin@x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Payment.Status != models.PaymentRefundRejected {
		t.Fatalf("payment status = %q, want %q", d.Payment.Status, models.PaymentRefundRejected)
	}
	if d.Payment.Refund.AdminResponse != "no evidence" {
		t.Fatalf("adminResponse = %q, want recorded reason", d.Payment.Refund.AdminResponse)
	}
	if d.Payment.Refund.RefundedAt != nil {
		t.Fatal("refundedAt must not be set on rejection")
	}
}
