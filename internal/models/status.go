// server/internal/models/status.go
package models

import "strings"

// Canonical delivery statuses. The legacy data was written by several code
// paths with inconsistent casing ("Pending" vs "pending", "Delivered" vs
// "delivered"), so the stored status stays a free string and comparisons go
// through Normalize. Do not rewrite stored values: external consumers read
// the raw strings.
const (
	StatusPending   = "Pending"
	StatusAssigned  = "assigned"
	StatusPickedUp  = "picked_up"
	StatusInTransit = "in_transit"
	StatusDelivered = "Delivered"
	StatusCancelled = "Cancelled"
	StatusReturned  = "Returned"
)

// NormalizeStatus maps a stored status string onto its canonical value.
// Unknown statuses are returned trimmed but otherwise untouched.
func NormalizeStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending", "unassigned", "created":
		return StatusPending
	case "assigned":
		return StatusAssigned
	case "picked_up", "picked up", "pickedup":
		return StatusPickedUp
	case "in_transit", "in transit", "intransit", "out_for_delivery", "out for delivery":
		return StatusInTransit
	case "delivered":
		return StatusDelivered
	case "cancelled", "canceled":
		return StatusCancelled
	case "returned":
		return StatusReturned
	default:
		return strings.TrimSpace(s)
	}
}

// AssignableStatuses lists every stored spelling that marks a delivery as
// waiting for a partner. The scan query matches these raw values directly so
// it also catches legacy documents.
func AssignableStatuses() []string {
	return []string{"Pending", "pending", "unassigned", "Unassigned", "created", "Created"}
}

// IsAssignable reports whether a delivery in this status may be auto-assigned.
func IsAssignable(status string) bool {
	return NormalizeStatus(status) == StatusPending
}

// IsDelivered reports whether the status counts as a completed delivery,
// tolerating the mixed casings present in stored data.
func IsDelivered(status string) bool {
	return NormalizeStatus(status) == StatusDelivered
}
