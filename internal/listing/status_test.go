package listing

import (
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	if !CanTransition(StatusDraft, StatusPending) {
		t.Fatalf("expected draft -> pending allowed")
	}
	if !CanTransition(StatusApproved, StatusPending) {
		t.Fatalf("expected approved -> pending allowed (edit re-review)")
	}
	if CanTransition(StatusSold, StatusPending) {
		t.Fatalf("expected sold to be terminal")
	}
	if CanTransition(StatusDraft, StatusApproved) {
		t.Fatalf("expected draft -> approved to require submission first")
	}
}

func TestApplyTransitionMaintainsTimestamps(t *testing.T) {
	now := time.Now()
	l := &Listing{Status: StatusDraft}

	if err := ApplyTransition(l, StatusPending, now); err != nil {
		t.Fatalf("ApplyTransition: %v", err)
	}
	if l.SubmittedAt == nil {
		t.Fatalf("expected submitted_at set")
	}

	if err := ApplyTransition(l, StatusApproved, now); err != nil {
		t.Fatalf("ApplyTransition: %v", err)
	}
	if l.ApprovedAt == nil {
		t.Fatalf("expected approved_at set")
	}

	if err := ApplyTransition(l, StatusSold, now); err != nil {
		t.Fatalf("ApplyTransition: %v", err)
	}
	if l.SoldAt == nil {
		t.Fatalf("expected sold_at set")
	}

	if err := ApplyTransition(l, StatusPending, now); err == nil {
		t.Fatalf("expected transition out of sold to fail")
	}
}

func TestApplyTransitionClearsRejectionOnResubmit(t *testing.T) {
	now := time.Now()
	l := &Listing{Status: StatusRejected, RejectionReason: "stock photo"}

	if err := ApplyTransition(l, StatusPending, now); err != nil {
		t.Fatalf("ApplyTransition: %v", err)
	}
	if l.RejectionReason != "" {
		t.Fatalf("expected rejection reason cleared, got %q", l.RejectionReason)
	}
}
