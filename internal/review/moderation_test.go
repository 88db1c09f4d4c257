package review

import (
	"strings"
	"testing"
)

func hasFlag(r ModerationResult, flag string) bool {
	for _, f := range r.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

const cleanContent = "The car was in solid condition and the dealer answered all my questions quickly. Delivery took two days."

func TestModerateCleanReviewApproved(t *testing.T) {
	r := Moderate(ModerationInput{
		Title:   "Happy with the purchase",
		Content: cleanContent,
		Rating:  5,
	})
	if r.Status != StatusApproved {
		t.Fatalf("want approved, got %s (score=%d flags=%v)", r.Status, r.Score, r.Flags)
	}
	if r.Score != 100 || len(r.Flags) != 0 {
		t.Fatalf("clean review should keep full score: %+v", r)
	}
}

func TestModeratePatternGroups(t *testing.T) {
	cases := []struct {
		name    string
		content string
		flag    string
		penalty int
	}{
		{"profanity", "This fucking dealer never called me back after the sale went through.", "profanity", 40},
		{"spam keywords", "Buy now and get free money, this limited time offer will not last long here.", "spam", 25},
		{"http link", "Great car, see my full writeup at https://example.com/review for more details about it.", "external_link", 15},
		{"bare domain link", "Great car, more pics at carpics.com/golf if anyone wants to see the interior shots.", "external_link", 15},
		{"email address", "Contact me at seller@example.com if you want to know more about this dealership experience.", "personal_info", 20},
		{"phone number", "Call me on 555-123-4567 if you want the full story about this dealership and the car.", "personal_info", 20},
		{"sql injection", "nice car'; DROP TABLE reviews; -- and the seats were comfortable on long highway trips", "sql_injection", 60},
		{"xss markup", "Decent car overall <script>alert(1)</script> but the infotainment system lags quite a bit.", "script_markup", 60},
	}
	for _, tc := range cases {
		r := Moderate(ModerationInput{Content: tc.content, Rating: 3})
		if !hasFlag(r, tc.flag) {
			t.Fatalf("%s: flag %q not raised, got %v", tc.name, tc.flag, r.Flags)
		}
		if r.Score > 100-tc.penalty {
			t.Fatalf("%s: penalty not applied, score=%d", tc.name, r.Score)
		}
		if len(r.Recommendations) == 0 {
			t.Fatalf("%s: no recommendation returned", tc.name)
		}
	}
}

func TestModerateStructuralPenalties(t *testing.T) {
	if r := Moderate(ModerationInput{Content: "too short", Rating: 3}); !hasFlag(r, "too_short") {
		t.Fatalf("short content not flagged: %v", r.Flags)
	}
	long := strings.Repeat("the ride is smooth and quiet on the highway ", 120)
	if r := Moderate(ModerationInput{Content: long, Rating: 3}); !hasFlag(r, "too_long") {
		t.Fatalf("long content not flagged: %v", r.Flags)
	}
	if r := Moderate(ModerationInput{Content: "greaaaaaaat car, really enjoyed driving it around town", Rating: 4}); !hasFlag(r, "repeated_chars") {
		t.Fatalf("repeated characters not flagged: %v", r.Flags)
	}
	if r := Moderate(ModerationInput{Content: "nice nice nice nice car, would definitely purchase again", Rating: 4}); !hasFlag(r, "repeated_words") {
		t.Fatalf("repeated words not flagged: %v", r.Flags)
	}
	if r := Moderate(ModerationInput{Content: "THIS CAR IS THE BEST THING I HAVE EVER DRIVEN IN MY LIFE", Rating: 5}); !hasFlag(r, "all_caps") {
		t.Fatalf("shouting not flagged: %v", r.Flags)
	}
}

func TestModerateRatingMismatch(t *testing.T) {
	low := Moderate(ModerationInput{
		Content: "Excellent car, amazing service, the whole experience was just wonderful throughout.",
		Rating:  1,
	})
	if !hasFlag(low, "rating_mismatch") {
		t.Fatalf("low rating with glowing text not flagged: %v", low.Flags)
	}

	high := Moderate(ModerationInput{
		Content: "Terrible dealership, the car was a lemon and the whole thing felt like a scam.",
		Rating:  5,
	})
	if !hasFlag(high, "rating_mismatch") {
		t.Fatalf("high rating with damning text not flagged: %v", high.Flags)
	}

	consistent := Moderate(ModerationInput{
		Content: "Terrible dealership, the car was a lemon and the whole thing felt like a scam.",
		Rating:  1,
	})
	if hasFlag(consistent, "rating_mismatch") {
		t.Fatalf("consistent low review wrongly flagged: %v", consistent.Flags)
	}
}

func TestModerateHistoryPenalties(t *testing.T) {
	frequent := Moderate(ModerationInput{Content: cleanContent, Rating: 4, RecentCount: 6})
	if !hasFlag(frequent, "too_frequent") {
		t.Fatalf("frequency not flagged: %v", frequent.Flags)
	}
	if ok := Moderate(ModerationInput{Content: cleanContent, Rating: 4, RecentCount: 5}); hasFlag(ok, "too_frequent") {
		t.Fatalf("frequency flagged at the limit: %v", ok.Flags)
	}

	dup := Moderate(ModerationInput{
		Content:       cleanContent,
		Rating:        4,
		PriorContents: []string{cleanContent},
	})
	if !hasFlag(dup, "near_duplicate") {
		t.Fatalf("duplicate not flagged: %v", dup.Flags)
	}

	fresh := Moderate(ModerationInput{
		Content:       cleanContent,
		Rating:        4,
		PriorContents: []string{"Completely different text about another vehicle from another brand entirely, no overlap."},
	})
	if hasFlag(fresh, "near_duplicate") {
		t.Fatalf("distinct content wrongly flagged: %v", fresh.Flags)
	}
}

func TestModerateThresholds(t *testing.T) {
	// one heavy penalty lands in the pending band
	pending := Moderate(ModerationInput{
		Content: "nice car'; DROP TABLE reviews; -- and the seats were comfortable on long highway trips",
		Rating:  3,
	})
	if pending.Status != StatusPending {
		t.Fatalf("want pending, got %s (score=%d)", pending.Status, pending.Score)
	}

	// stacked heavy penalties reject
	rejected := Moderate(ModerationInput{
		Content: "x'; DROP TABLE reviews; -- <script>alert(1)</script>",
		Rating:  3,
	})
	if rejected.Status != StatusRejected {
		t.Fatalf("want rejected, got %s (score=%d flags=%v)", rejected.Status, rejected.Score, rejected.Flags)
	}
	if rejected.Score < 0 {
		t.Fatalf("score went negative: %d", rejected.Score)
	}
}

func TestModerateEmptyInputNeverPanics(t *testing.T) {
	r := Moderate(ModerationInput{})
	if !hasFlag(r, "too_short") {
		t.Fatalf("empty content should flag too_short: %v", r.Flags)
	}
	if r.Score < 0 || r.Score > 100 {
		t.Fatalf("score out of range: %d", r.Score)
	}
}
