// server/internal/store/store.go
package store

import (
	"context"

	"courier-track-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeliveryStore is the persistence port used by the assignment and
// lifecycle services. Handlers doing plain CRUD talk to Mongo directly;
// the services go through this interface so they can be tested against
// in-memory fakes.
type DeliveryStore interface {
	// FindUnassigned returns deliveries with no assigned partner whose
	// status matches one of the given raw values, oldest first, capped
	// at limit.
	FindUnassigned(ctx context.Context, statuses []string, limit int64) ([]models.Delivery, error)

	// FindByTrackingID returns the delivery with the given tracking id.
	FindByTrackingID(ctx context.Context, trackingID string) (*models.Delivery, error)

	// Update persists the full delivery document. Last writer wins at the
	// document level.
	Update(ctx context.Context, d *models.Delivery) error
}

// PartnerStore is the partner-side persistence port.
type PartnerStore interface {
	// FindAssignable returns approved partners filtered by the given
	// online flag, ordered ascending by totalDeliveries.
	FindAssignable(ctx context.Context, online bool) ([]models.Partner, error)

	// IncrementTotalDeliveries bumps the partner's workload counter by one.
	IncrementTotalDeliveries(ctx context.Context, id primitive.ObjectID) error

	// RecordCompletion bumps completedDeliveries and adds earnings to
	// totalEarnings.
	RecordCompletion(ctx context.Context, id primitive.ObjectID, earnings float64) error
}

// Pinger reports whether the datastore connection is usable. The
// assignment scan short-circuits when it is not.
type Pinger interface {
	Ping(ctx context.Context) error
}
