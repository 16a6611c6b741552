package models

import "testing"

func TestNormalizeStatus(t *testing.T) {
	cases := map[string]string{
		"Pending":          StatusPending,
		"pending":          StatusPending,
		"unassigned":       StatusPending,
		"assigned":         StatusAssigned,
		"Assigned":         StatusAssigned,
		"picked up":        StatusPickedUp,
		"in_transit":       StatusInTransit,
		"In Transit":       StatusInTransit,
		"out_for_delivery": StatusInTransit,
		"Delivered":        StatusDelivered,
		"delivered":        StatusDelivered,
		"canceled":         StatusCancelled,
		" weird-status ":   "weird-status",
	}
	for input, want := range cases {
		if got := NormalizeStatus(input); got != want {
			t.Fatalf("NormalizeStatus(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestIsAssignable(t *testing.T) {
	for _, s := range []string{"Pending", "pending", "unassigned"} {
		if !IsAssignable(s) {
			t.Fatalf("IsAssignable(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"assigned", "Delivered", "in_transit"} {
		if IsAssignable(s) {
			t.Fatalf("IsAssignable(%q) = true, want false", s)
		}
	}
}

func TestAssignableStatusesCoverCasingVariants(t *testing.T) {
	seen := make(map[string]bool)
	for _, s := range AssignableStatuses() {
		seen[s] = true
	}
	if !seen["Pending"] || !seen["pending"] {
		t.Fatal("assignable status list must cover both casings of Pending")
	}
}

func TestIsDelivered(t *testing.T) {
	if !IsDelivered("delivered") || !IsDelivered("Delivered") {
		t.Fatal("both casings of delivered must count as delivered")
	}
	if IsDelivered("in_transit") {
		t.Fatal("in_transit must not count as delivered")
	}
}
