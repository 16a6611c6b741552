// server/internal/models/delivery.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment methods.
const (
	PaymentMethodUPI  = "UPI"
	PaymentMethodCOD  = "COD"
	PaymentMethodCard = "CARD"
)

// Payment statuses.
const (
	PaymentPending         = "Pending"
	PaymentCompleted       = "Completed"
	PaymentFailed          = "Failed"
	PaymentRefundRequested = "Refund Requested"
	PaymentRefunded        = "Refunded"
	PaymentRefundRejected  = "Refund Rejected"
)

// RefundInfo carries the customer's refund request and the admin's decision.
type RefundInfo struct {
	Reason        string         `bson:"reason,omitempty" json:"reason,omitempty"`
	Category      string         `bson:"category,omitempty" json:"category,omitempty"` // e.g. "damaged", "late", "not_delivered"
	RequestedAt   *time.Time     `bson:"requestedAt,omitempty" json:"requestedAt,omitempty"`
	RefundedAt    *time.Time     `bson:"refundedAt,omitempty" json:"refundedAt,omitempty"`
	Images        []MediaPointer `bson:"images,omitempty" json:"images,omitempty"`
	AdminResponse string         `bson:"adminResponse,omitempty" json:"adminResponse,omitempty"`
}

type PaymentInfo struct {
	Method        string     `bson:"method" json:"method"` // UPI, COD, CARD
	Status        string     `bson:"status" json:"status"`
	Amount        float64    `bson:"amount" json:"amount"`
	TransactionID string     `bson:"transactionID,omitempty" json:"transactionID,omitempty"` // Razorpay payment id for UPI/CARD
	PaidAt        *time.Time `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	Refund        RefundInfo `bson:"refund,omitempty" json:"refund,omitempty"`
}

// EmbeddedComplaint is a complaint attached directly to a delivery document.
type EmbeddedComplaint struct {
	ComplaintID   string     `bson:"complaintID" json:"complaintID"`
	Category      string     `bson:"category" json:"category"`
	Severity      string     `bson:"severity" json:"severity"` // low, medium, high
	Description   string     `bson:"description" json:"description"`
	SubmittedBy   string     `bson:"submittedBy" json:"submittedBy"`
	Status        string     `bson:"status" json:"status"` // open, resolved, dismissed
	AdminResponse string     `bson:"adminResponse,omitempty" json:"adminResponse,omitempty"`
	CreatedAt     time.Time  `bson:"createdAt" json:"createdAt"`
	ResolvedAt    *time.Time `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
}

type Delivery struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	TrackingID      string              `bson:"trackingID" json:"trackingID"` // user-friendly unique ID, e.g. "CT-9F3A21BC"
	Sender          Party               `bson:"sender" json:"sender"`
	Receiver        Party               `bson:"receiver" json:"receiver"`
	Origin          string              `bson:"origin" json:"origin"`
	Destination     string              `bson:"destination" json:"destination"`
	CurrentLocation string              `bson:"currentLocation,omitempty" json:"currentLocation,omitempty"`
	Status          string              `bson:"status" json:"status"` // free string, see status.go
	AssignedPartner *primitive.ObjectID `bson:"assignedPartner,omitempty" json:"assignedPartner,omitempty"`
	AssignedAt      *time.Time          `bson:"assignedAt,omitempty" json:"assignedAt,omitempty"`
	PartnerEarnings float64             `bson:"partnerEarnings,omitempty" json:"partnerEarnings,omitempty"`
	PickedUpAt      *time.Time          `bson:"pickedUpAt,omitempty" json:"pickedUpAt,omitempty"`
	DeliveredAt     *time.Time          `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	History         []HistoryEntry      `bson:"history" json:"history"`
	Payment         PaymentInfo         `bson:"payment" json:"payment"`
	Complaints      []EmbeddedComplaint `bson:"complaints,omitempty" json:"complaints,omitempty"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt" json:"updatedAt"`
}
