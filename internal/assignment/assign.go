// server/internal/assignment/assign.go
package assignment

import (
	"context"
	"errors"
	"time"

	"courier-track-api-server/internal/models"
	"courier-track-api-server/internal/store"

	"go.uber.org/zap"
)

// ErrNoPartnerAvailable is returned when no approved partner exists at all;
// the delivery stays unassigned until the next scan.
var ErrNoPartnerAvailable = errors.New("no delivery partner available")

// DefaultBaseEarning is the flat per-delivery payout credited to the
// assigned partner. Pricing of the shipment itself is separate; the payout
// does not scale with distance or weight.
const DefaultBaseEarning = 60

// Assigner binds unassigned deliveries to the least-loaded approved partner.
type Assigner struct {
	Deliveries  store.DeliveryStore
	Partners    store.PartnerStore
	BaseEarning float64
	Log         *zap.Logger
	Now         func() time.Time
}

func NewAssigner(deliveries store.DeliveryStore, partners store.PartnerStore, baseEarning float64, log *zap.Logger) *Assigner {
	if baseEarning <= 0 {
		baseEarning = DefaultBaseEarning
	}
	return &Assigner{
		Deliveries:  deliveries,
		Partners:    partners,
		BaseEarning: baseEarning,
		Log:         log,
		Now:         time.Now,
	}
}

// AutoAssignPartner picks the approved partner with the fewest total
// deliveries, preferring online partners and falling back to offline ones,
// binds it to the delivery and bumps the partner's workload counter.
//
// The two-phase read and the later writes are not wrapped in a transaction:
// two concurrent assignment attempts can pick the same least-loaded partner
// before either counter lands. Accepted, see DESIGN.md.
func (a *Assigner) AutoAssignPartner(ctx context.Context, d *models.Delivery) (*models.Partner, error) {
	partners, err := a.Partners.FindAssignable(ctx, true)
	if err != nil {
		return nil, err
	}
	if len(partners) == 0 {
		// No one online right now; an offline approved partner still
		// gets the job and sees it when they come back.
		partners, err = a.Partners.FindAssignable(ctx, false)
		if err != nil {
			return nil, err
		}
	}
	if len(partners) == 0 {
		return nil, ErrNoPartnerAvailable
	}

	selected := partners[0]
	now := a.Now()

	d.AssignedPartner = &selected.ID
	d.Status = models.StatusAssigned
	d.AssignedAt = &now
	d.PartnerEarnings = a.BaseEarning
	d.UpdatedAt = now
	d.History = append(d.History, models.HistoryEntry{
		Status:        models.StatusAssigned,
		Timestamp:     now,
		Notes:         "Auto-assigned to partner " + selected.Name,
		UpdatedBy:     "auto-assignment",
		UpdatedByRole: "system",
	})

	if err := a.Deliveries.Update(ctx, d); err != nil {
		return nil, err
	}

	if err := a.Partners.IncrementTotalDeliveries(ctx, selected.ID); err != nil {
		// The delivery is already bound; losing the counter bump only
		// skews future load balancing, so log and keep the assignment.
		if a.Log != nil {
			a.Log.Error("failed to increment partner workload",
				zap.String("partnerID", selected.PartnerID),
				zap.Error(err))
		}
	}

	if a.Log != nil {
		a.Log.Info("delivery auto-assigned",
			zap.String("trackingID", d.TrackingID),
			zap.String("partnerID", selected.PartnerID),
			zap.Int64("partnerLoad", selected.TotalDeliveries))
	}

	return &selected, nil
}
