package review

import (
	"fmt"
	"regexp"
	"strings"
)

// The moderation engine scores free-text reviews. It is pure string
// analysis: no I/O, no side effects, and it never fails. Persistence and
// audit of the decision belong to the caller.

// ModerationInput carries everything the engine looks at. Absent fields
// are just empty strings.
type ModerationInput struct {
	Title   string
	Content string
	Pros    string
	Cons    string
	Rating  int

	// RecentCount is how many reviews the author submitted in the last
	// 24 hours, not counting this one.
	RecentCount int
	// PriorContents is the text of the author's previous reviews, used
	// for near-duplicate detection.
	PriorContents []string
}

// ModerationResult is the engine's verdict.
type ModerationResult struct {
	Score           int
	Status          Status
	Flags           []string
	Recommendations []string
}

const (
	startScore = 100

	rejectBelow  = 30
	pendingBelow = 60

	minContentLen = 20
	maxContentLen = 4000

	maxRecentPerDay    = 5
	duplicateJaccard   = 0.8
	capsRatioThreshold = 0.7
)

// patternGroup is one family of regexes sharing a flag and a penalty.
type patternGroup struct {
	flag     string
	penalty  int
	advice   string
	patterns []*regexp.Regexp
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(e))
	}
	return out
}

var patternGroups = []patternGroup{
	{
		flag: "profanity", penalty: 40,
		advice: "remove offensive language",
		patterns: compileAll(
			`(?i)\b(fuck\w*|shit\w*|bitch\w*|asshole\w*|bastard\w*|cunt\w*|dickhead\w*)\b`,
			`(?i)\b(motherfucker|son of a bitch|piece of shit)\b`,
		),
	},
	{
		flag: "spam", penalty: 25,
		advice: "remove promotional content",
		patterns: compileAll(
			`(?i)\b(buy now|click here|limited time offer|act now|free money|100% free|guaranteed winner)\b`,
			`(?i)\b(work from home|make \$\d+|earn cash fast|cheap (?:viagra|pills|meds))\b`,
			`(?i)\b(subscribe to|follow me|check out my (?:channel|page|profile))\b`,
		),
	},
	{
		flag: "external_link", penalty: 15,
		advice: "remove external links",
		patterns: compileAll(
			`(?i)\bhttps?://\S+`,
			`(?i)\bwww\.\S+\.\S+`,
			`(?i)\b\w[\w.-]*\.(?:com|net|org|io|ru|biz)/\S*`,
		),
	},
	{
		flag: "personal_info", penalty: 20,
		advice: "remove personal contact details",
		patterns: compileAll(
			`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`,
			`(?:\+?\d{1,3}[\s.-]?)?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}\b`,
		),
	},
	{
		flag: "sql_injection", penalty: 60,
		advice: "content looks like an injection attempt",
		patterns: compileAll(
			`(?i)\b(union\s+select|select\s+\*\s+from|drop\s+table|insert\s+into|delete\s+from)\b`,
			`(?i)('|")\s*(or|and)\s+\d+\s*=\s*\d+`,
			`(?i);\s*--`,
		),
	},
	{
		flag: "script_markup", penalty: 60,
		advice: "content looks like a script injection attempt",
		patterns: compileAll(
			`(?i)<\s*script\b`,
			`(?i)\bjavascript\s*:`,
			`(?i)\bon(?:load|error|click|mouseover)\s*=`,
			`(?i)<\s*iframe\b`,
		),
	},
}

var (
	repeatedCharRe = regexp.MustCompile(`(.)\1{5,}`)
	wordRe         = regexp.MustCompile(`[a-zA-Z']+`)

	positiveWords = map[string]bool{
		"great": true, "excellent": true, "amazing": true, "perfect": true,
		"awesome": true, "fantastic": true, "love": true, "loved": true,
		"wonderful": true, "best": true, "recommend": true, "reliable": true,
	}
	negativeWords = map[string]bool{
		"terrible": true, "awful": true, "horrible": true, "worst": true,
		"broken": true, "scam": true, "avoid": true, "disappointed": true,
		"lemon": true, "useless": true, "hate": true, "hated": true,
	}
)

// Moderate scores a review and recommends a status.
func Moderate(in ModerationInput) ModerationResult {
	full := strings.TrimSpace(strings.Join([]string{in.Title, in.Content, in.Pros, in.Cons}, " "))

	score := startScore
	var flags, advice []string

	hit := func(flag, rec string, penalty int) {
		score -= penalty
		flags = append(flags, flag)
		advice = append(advice, rec)
	}

	for _, g := range patternGroups {
		for _, p := range g.patterns {
			if p.MatchString(full) {
				hit(g.flag, g.advice, g.penalty)
				break
			}
		}
	}

	content := strings.TrimSpace(in.Content)
	switch {
	case len(content) < minContentLen:
		hit("too_short", fmt.Sprintf("write at least %d characters", minContentLen), 20)
	case len(content) > maxContentLen:
		hit("too_long", fmt.Sprintf("keep the review under %d characters", maxContentLen), 10)
	}

	if repeatedCharRe.MatchString(full) {
		hit("repeated_chars", "remove repeated characters", 15)
	}
	if hasRepeatedWords(full) {
		hit("repeated_words", "remove repeated words", 15)
	}
	if isShouting(content) {
		hit("all_caps", "avoid writing in all capitals", 10)
	}
	if mismatch := ratingMismatch(in.Rating, full); mismatch != "" {
		hit("rating_mismatch", mismatch, 15)
	}
	if in.RecentCount > maxRecentPerDay {
		hit("too_frequent", "slow down: too many reviews in 24 hours", 25)
	}
	if isNearDuplicate(content, in.PriorContents) {
		hit("near_duplicate", "this repeats one of your earlier reviews", 40)
	}

	if score < 0 {
		score = 0
	}

	var status Status
	switch {
	case score < rejectBelow:
		status = StatusRejected
	case score < pendingBelow:
		status = StatusPending
	default:
		status = StatusApproved
	}

	return ModerationResult{Score: score, Status: status, Flags: flags, Recommendations: advice}
}

// hasRepeatedWords flags the same word appearing 4+ times in a row.
func hasRepeatedWords(s string) bool {
	words := strings.Fields(strings.ToLower(s))
	run := 1
	for i := 1; i < len(words); i++ {
		if words[i] == words[i-1] && len(words[i]) > 1 {
			run++
			if run >= 4 {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}

// isShouting flags content where most letters are upper case.
func isShouting(s string) bool {
	var letters, upper int
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			letters++
			upper++
		case r >= 'a' && r <= 'z':
			letters++
		}
	}
	if letters < 20 {
		return false
	}
	return float64(upper)/float64(letters) > capsRatioThreshold
}

// ratingMismatch catches a low rating with glowing text or a high rating
// with damning text.
func ratingMismatch(rating int, text string) string {
	if rating == 0 {
		return ""
	}
	var pos, neg int
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if positiveWords[w] {
			pos++
		}
		if negativeWords[w] {
			neg++
		}
	}
	if rating <= 2 && pos >= 2 && pos > neg {
		return "rating does not match the positive text"
	}
	if rating >= 4 && neg >= 2 && neg > pos {
		return "rating does not match the negative text"
	}
	return ""
}

func isNearDuplicate(content string, prior []string) bool {
	set := wordSet(content)
	if len(set) == 0 {
		return false
	}
	for _, p := range prior {
		if jaccard(set, wordSet(p)) > duplicateJaccard {
			return true
		}
	}
	return false
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range wordRe.FindAllString(strings.ToLower(s), -1) {
		set[w] = true
	}
	return set
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	var inter int
	for w := range a {
		if b[w] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
