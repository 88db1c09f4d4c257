package listing

import (
	"fmt"
	"time"
)

// AllowTransition defines the listing lifecycle as a directed graph.
// Edits to an approved listing send it back through moderation, so
// approved -> pending is a legal edge.
var AllowTransition = map[Status][]Status{
	StatusDraft:    {StatusPending, StatusArchived},
	StatusPending:  {StatusApproved, StatusRejected, StatusArchived},
	StatusApproved: {StatusSold, StatusArchived, StatusPending},
	StatusRejected: {StatusPending, StatusArchived},
	StatusArchived: {StatusPending},
	// sold is terminal
	StatusSold: {},
}

// CanTransition reports whether from -> to is a legal lifecycle move.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	allowed, ok := AllowTransition[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// ApplyTransition moves the listing to a new status and maintains the
// lifecycle timestamp fields.
func ApplyTransition(l *Listing, to Status, now time.Time) error {
	if l == nil {
		return fmt.Errorf("listing is nil")
	}
	from := l.Status
	if !CanTransition(from, to) {
		return fmt.Errorf("invalid listing status transition: %s -> %s", from, to)
	}

	l.Status = to

	switch to {
	case StatusPending:
		t := now
		l.SubmittedAt = &t
		// re-entering review clears the previous verdict
		l.RejectionReason = ""
	case StatusApproved:
		if l.ApprovedAt == nil {
			t := now
			l.ApprovedAt = &t
		}
	case StatusSold:
		if l.SoldAt == nil {
			t := now
			l.SoldAt = &t
		}
	}
	return nil
}
