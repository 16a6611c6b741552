// server/internal/delivery/lifecycle.go
package delivery

import (
	"context"
	"errors"
	"time"

	"courier-track-api-server/internal/models"
	"courier-track-api-server/internal/store"

	"go.uber.org/zap"
)

var (
	// ErrRefundAlreadyRequested rejects a second refund request while an
	// earlier one is still pending or has been approved.
	ErrRefundAlreadyRequested = errors.New("a refund has already been requested or granted for this delivery")

	// ErrRefundNotPending rejects an admin decision on a delivery with no
	// open refund request.
	ErrRefundNotPending = errors.New("no pending refund request on this delivery")

	// ErrPaymentNotCompleted rejects refund requests on unpaid deliveries.
	ErrPaymentNotCompleted = errors.New("payment is not completed, nothing to refund")
)

// Service applies status and payment transitions with their side effects.
type Service struct {
	Deliveries store.DeliveryStore
	Partners   store.PartnerStore
	Log        *zap.Logger
	Now        func() time.Time
}

func NewService(deliveries store.DeliveryStore, partners store.PartnerStore, log *zap.Logger) *Service {
	return &Service{
		Deliveries: deliveries,
		Partners:   partners,
		Log:        log,
		Now:        time.Now,
	}
}

// UpdateStatus sets the delivery's status, appends a history entry and
// applies transition side effects:
//   - picked up: stamp pickedUpAt
//   - delivered: stamp deliveredAt, auto-settle a pending COD payment and
//     credit the assigned partner's completion counters and earnings.
//
// The status string is stored exactly as given; side effects key off the
// normalized value so legacy casings ("delivered"/"Delivered") behave the
// same.
func (s *Service) UpdateStatus(ctx context.Context, d *models.Delivery, newStatus, location, notes, updatedBy, role string) error {
	now := s.Now()

	d.Status = newStatus
	if location != "" {
		d.CurrentLocation = location
	}
	d.UpdatedAt = now
	d.History = append(d.History, models.HistoryEntry{
		Status:        newStatus,
		Location:      location,
		Timestamp:     now,
		Notes:         notes,
		UpdatedBy:     updatedBy,
		UpdatedByRole: role,
	})

	switch models.NormalizeStatus(newStatus) {
	case models.StatusPickedUp:
		if d.PickedUpAt == nil {
			d.PickedUpAt = &now
		}
	case models.StatusDelivered:
		d.DeliveredAt = &now
		// COD settles on delivery confirmation; there is no separate
		// collection step.
		if d.Payment.Method == models.PaymentMethodCOD && d.Payment.Status == models.PaymentPending {
			d.Payment.Status = models.PaymentCompleted
			d.Payment.PaidAt = &now
		}
	}

	if err := s.Deliveries.Update(ctx, d); err != nil {
		return err
	}

	if models.IsDelivered(newStatus) && d.AssignedPartner != nil {
		if err := s.Partners.RecordCompletion(ctx, *d.AssignedPartner, d.PartnerEarnings); err != nil {
			// The delivery is already final; a lost counter update only
			// affects partner stats, so log and move on.
			s.Log.Error("failed to record partner completion",
				zap.String("trackingID", d.TrackingID),
				zap.Error(err))
		}
	}

	return nil
}

// RequestRefund opens a refund request on a delivery. Only one request may
// be open or granted at a time; a resubmission while the payment status is
// "Refund Requested" or "Refunded" is rejected.
func (s *Service) RequestRefund(ctx context.Context, d *models.Delivery, reason, category, requestedBy string, images []models.MediaPointer) error {
	switch d.Payment.Status {
	case models.PaymentRefundRequested, models.PaymentRefunded:
		return ErrRefundAlreadyRequested
	case models.PaymentCompleted, models.PaymentRefundRejected:
		// A rejected request may be resubmitted.
	default:
		return ErrPaymentNotCompleted
	}

	now := s.Now()
	d.Payment.Status = models.PaymentRefundRequested
	d.Payment.Refund.Reason = reason
	d.Payment.Refund.Category = category
	d.Payment.Refund.RequestedAt = &now
	d.Payment.Refund.Images = images
	d.UpdatedAt = now
	d.History = append(d.History, models.HistoryEntry{
		Status:        d.Status,
		Timestamp:     now,
		Notes:         "Refund requested: " + reason,
		UpdatedBy:     requestedBy,
		UpdatedByRole: "customer",
	})

	return s.Deliveries.Update(ctx, d)
}

// ResolveRefund applies the admin decision on an open refund request.
// "Refund Requested" -> "Refunded" or "Refund Rejected" are the only two
// transitions.
func (s *Service) ResolveRefund(ctx context.Context, d *models.Delivery, approve bool, adminResponse, updatedBy string) error {
	if d.Payment.Status != models.PaymentRefundRequested {
		return ErrRefundNotPending
	}

	now := s.Now()
	notes := "Refund rejected"
	if approve {
		d.Payment.Status = models.PaymentRefunded
		d.Payment.Refund.RefundedAt = &now
		notes = "Refund approved"
	} else {
		d.Payment.Status = models.PaymentRefundRejected
	}
	d.Payment.Refund.AdminResponse = adminResponse
	d.UpdatedAt = now
	d.History = append(d.History, models.HistoryEntry{
		Status:        d.Status,
		Timestamp:     now,
		Notes:         notes,
		UpdatedBy:     updatedBy,
		UpdatedByRole: "admin",
	})

	return s.Deliveries.Update(ctx, d)
}
