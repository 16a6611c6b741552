// server/internal/models/partner.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Partner approval statuses.
const (
	PartnerPending   = "pending"
	PartnerApproved  = "approved"
	PartnerRejected  = "rejected"
	PartnerSuspended = "suspended"
	PartnerInactive  = "inactive"
)

type VehicleInfo struct {
	Type        string `bson:"type" json:"type"` // BIKE, SCOOTER, VAN, TRUCK
	PlateNumber string `bson:"plateNumber" json:"plateNumber"`
	Model       string `bson:"model,omitempty" json:"model,omitempty"`
}

type Partner struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PartnerID           string             `bson:"partnerID" json:"partnerID"` // user-friendly unique ID, e.g. "DP-4C1E99AB"
	Name                string             `bson:"name" json:"name"`
	Email               string             `bson:"email" json:"email"`
	Phone               string             `bson:"phone" json:"phone"`
	Password            string             `bson:"password" json:"-"`
	Vehicle             VehicleInfo        `bson:"vehicle" json:"vehicle"`
	Status              string             `bson:"status" json:"status"` // pending, approved, rejected, suspended, inactive
	IsActive            bool               `bson:"isActive" json:"isActive"`
	IsOnline            bool               `bson:"isOnline" json:"isOnline"`
	Rating              float64            `bson:"rating" json:"rating"`
	TotalDeliveries     int64              `bson:"totalDeliveries" json:"totalDeliveries"`
	CompletedDeliveries int64              `bson:"completedDeliveries" json:"completedDeliveries"`
	TotalEarnings       float64            `bson:"totalEarnings" json:"totalEarnings"`
	CurrentLocation     string             `bson:"currentLocation,omitempty" json:"currentLocation,omitempty"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Assignable reports whether the assignment logic may hand deliveries to
// this partner. isOnline is a preference handled by the selection query,
// not checked here.
func (p *Partner) Assignable() bool {
	return p.Status == PartnerApproved && p.IsActive
}
