// server/internal/models/complaint.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Complaint is the standalone collection view used by admin dashboards.
// A copy is also embedded on the delivery document (EmbeddedComplaint).
type Complaint struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ComplaintID   string             `bson:"complaintID" json:"complaintID"`
	TrackingID    string             `bson:"trackingID" json:"trackingID"`
	Category      string             `bson:"category" json:"category"`
	Severity      string             `bson:"severity" json:"severity"`
	Description   string             `bson:"description" json:"description"`
	SubmittedBy   string             `bson:"submittedBy" json:"submittedBy"`
	Status        string             `bson:"status" json:"status"`
	AdminResponse string             `bson:"adminResponse,omitempty" json:"adminResponse,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	ResolvedAt    *time.Time         `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
}
