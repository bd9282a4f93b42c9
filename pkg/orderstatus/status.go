// Package orderstatus classifies raw order status strings for display and
// decides which status changes each actor may request next.
//
// Everything here is a pure lookup. The backend owns the real order state; a
// front-end shows whatever status it receives, even one this package does not
// recognize.
package orderstatus

import (
	"strings"
	"unicode"
)

// Status is a normalized order status.
type Status string

const (
	Pending      Status = "pending"
	Confirmed    Status = "confirmed"
	Preparing    Status = "preparing"
	Ready        Status = "ready"
	ReadyForShip Status = "ready_for_ship"
	PickedUp     Status = "picked_up"
	OnTheWay     Status = "on_the_way"
	Delivered    Status = "delivered"
	Completed    Status = "completed"
	Cancelled    Status = "cancelled"
	Rejected     Status = "rejected"

	// Unclassified is returned for empty or unrecognized input. It renders
	// exactly like Pending.
	Unclassified Status = "unclassified"
)

// aliases maps spellings the backend also emits onto the fixed vocabulary.
var aliases = map[string]Status{
	"approved": Confirmed,
	"canceled": Cancelled,
}

// Classification is the display treatment of a status.
type Classification struct {
	Status     Status `json:"status"`
	Label      string `json:"label"`
	Foreground string `json:"foreground"`
	Background string `json:"background"`
}

// Known reports whether the classification came from a recognized status.
func (c Classification) Known() bool {
	return c.Status != Unclassified
}

var classifications = map[Status]Classification{
	Pending:      {Status: Pending, Label: "Pending", Foreground: "#92400E", Background: "#FEF3C7"},
	Confirmed:    {Status: Confirmed, Label: "Confirmed", Foreground: "#1E40AF", Background: "#DBEAFE"},
	Preparing:    {Status: Preparing, Label: "Preparing", Foreground: "#5B21B6", Background: "#EDE9FE"},
	Ready:        {Status: Ready, Label: "Ready", Foreground: "#065F46", Background: "#D1FAE5"},
	ReadyForShip: {Status: ReadyForShip, Label: "Ready for Ship", Foreground: "#0E7490", Background: "#CFFAFE"},
	PickedUp:     {Status: PickedUp, Label: "Picked Up", Foreground: "#3730A3", Background: "#E0E7FF"},
	OnTheWay:     {Status: OnTheWay, Label: "On the Way", Foreground: "#1D4ED8", Background: "#DBEAFE"},
	Delivered:    {Status: Delivered, Label: "Delivered", Foreground: "#166534", Background: "#DCFCE7"},
	Completed:    {Status: Completed, Label: "Completed", Foreground: "#166534", Background: "#DCFCE7"},
	Cancelled:    {Status: Cancelled, Label: "Cancelled", Foreground: "#991B1B", Background: "#FEE2E2"},
	Rejected:     {Status: Rejected, Label: "Rejected", Foreground: "#991B1B", Background: "#FEE2E2"},
}

// Normalize folds case, trims, and collapses runs of whitespace, underscores
// and hyphens into a single underscore. Unknown input yields Unclassified.
func Normalize(raw string) Status {
	var b strings.Builder
	sep := false
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		if unicode.IsSpace(r) || r == '_' || r == '-' {
			sep = true
			continue
		}
		if sep && b.Len() > 0 {
			b.WriteByte('_')
		}
		sep = false
		b.WriteRune(r)
	}
	key := b.String()
	if s, ok := aliases[key]; ok {
		return s
	}
	if _, ok := classifications[Status(key)]; ok {
		return Status(key)
	}
	return Unclassified
}

// Classify returns the display classification for raw. It never returns an
// empty value: unrecognized input gets the Unclassified variant, styled like
// Pending so the order still reads as needing attention.
func Classify(raw string) Classification {
	s := Normalize(raw)
	if c, ok := classifications[s]; ok {
		return c
	}
	c := classifications[Pending]
	c.Status = Unclassified
	return c
}

// IsTerminal reports whether no further transitions exist from raw.
func IsTerminal(raw string) bool {
	switch Normalize(raw) {
	case Delivered, Completed, Rejected, Cancelled:
		return true
	}
	return false
}

// Known returns every recognized status in lifecycle order.
func Known() []Status {
	return []Status{
		Pending, Confirmed, Preparing, Ready, ReadyForShip, PickedUp, OnTheWay,
		Delivered, Completed, Cancelled, Rejected,
	}
}
