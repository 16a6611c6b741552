// server/internal/models/settings.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Settings is a single document of operational defaults, managed by admins.
type Settings struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BaseDeliveryCharge float64            `bson:"baseDeliveryCharge" json:"baseDeliveryCharge"`
	PerKmCharge        float64            `bson:"perKmCharge" json:"perKmCharge"`
	PerKgCharge        float64            `bson:"perKgCharge" json:"perKgCharge"`
	CODAvailable       bool               `bson:"codAvailable" json:"codAvailable"`
	SupportEmail       string             `bson:"supportEmail" json:"supportEmail"`
	SupportPhone       string             `bson:"supportPhone" json:"supportPhone"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
	UpdatedBy          string             `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
}
