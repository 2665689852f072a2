package engine

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// Article is the candidate input the engine scores. It is a plain value
// object; the caller owns retrieval and guarantees PublishedAt <= now.
type Article struct {
	ID          int64
	Title       string
	Excerpt     string
	PublishedAt time.Time
	Category    string
	Views       int
	Likes       int
	Comments    int
	HasImage    bool
	AuthorName  string
}

// Score holds the five component sub-scores, the final composite score and
// the explanatory reasons for one article. Computed fresh on every call,
// never mutated.
type Score struct {
	Relevance  int
	Freshness  int
	Engagement int
	Quality    int
	Timing     int
	Final      int
	Reasons    []string
}

// Reason strings emitted when component thresholds are crossed.
const (
	ReasonHighRelevance  = "ملاءمة عالية لاهتماماتك"
	ReasonVeryFresh      = "خبر حديث جداً"
	ReasonHighEngagement = "تفاعل مرتفع من القراء"
	ReasonHighQuality    = "جودة تحريرية ممتازة"
	ReasonBadTiming      = "قد لا يناسب هذه الفترة من اليوم"
)

// authorUnknown is the sentinel the platform stores for missing authors.
const authorUnknown = "unknown"

// ScoreArticle computes the composite score for one article in a slot.
// prefs is the caller's optional interest-token list; tokens are lowercased
// and substring-matched defensively, no normalization is assumed.
func ScoreArticle(a Article, slot Slot, prefs []string) Score {
	return ScoreArticleAt(a, slot, prefs, time.Now())
}

// ScoreArticleAt is ScoreArticle with an explicit clock. Identical inputs
// always yield an identical Score.
func ScoreArticleAt(a Article, slot Slot, prefs []string, now time.Time) Score {
	text := strings.ToLower(a.Title + " " + a.Excerpt)

	s := Score{
		Relevance:  relevanceScore(text, prefs),
		Freshness:  freshnessScore(a.PublishedAt, now),
		Engagement: engagementScore(a),
		Quality:    qualityScore(a),
		Timing:     timingScore(text, slot),
	}

	w := slot.Profile()
	raw := float64(s.Relevance)*w.Relevance +
		float64(s.Freshness)*w.Freshness +
		float64(s.Engagement)*w.Engagement +
		float64(s.Quality)*w.Quality +
		float64(s.Timing)*w.Timing
	s.Final = clamp(int(math.Round(raw)))

	if s.Relevance > 80 {
		s.Reasons = append(s.Reasons, ReasonHighRelevance)
	}
	if s.Freshness > 90 {
		s.Reasons = append(s.Reasons, ReasonVeryFresh)
	}
	if s.Engagement > 70 {
		s.Reasons = append(s.Reasons, ReasonHighEngagement)
	}
	if s.Quality > 85 {
		s.Reasons = append(s.Reasons, ReasonHighQuality)
	}
	if s.Timing < 40 {
		s.Reasons = append(s.Reasons, ReasonBadTiming)
	}

	return s
}

// relevanceScore starts at 50 and accumulates lexicon and preference signal.
// There is no per-keyword cap: distinct matches compound additively.
func relevanceScore(text string, prefs []string) int {
	score := 50
	score += 8 * countMatches(text, defaultLexicon.Positive)
	score += 12 * countMatches(text, defaultLexicon.Urgent)
	score += 6 * countMatches(text, defaultLexicon.Local)
	for _, p := range prefs {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" && strings.Contains(text, p) {
			score += 15
		}
	}
	return clamp(score)
}

// freshnessScore is a step function of article age. The discontinuous steps
// are intentional: cheap, monotonic, and indifferent to sub-hour differences.
func freshnessScore(published, now time.Time) int {
	age := now.Sub(published).Hours()
	switch {
	case age < 1:
		return 100
	case age < 6:
		return 90
	case age < 12:
		return 75
	case age < 24:
		return 50
	case age < 48:
		return 25
	default:
		return 10
	}
}

// engagementScore sums three independently capped terms. The maximum is
// exactly 100 but we clamp anyway.
func engagementScore(a Article) int {
	views := min(40, a.Views/100)
	likes := min(30, a.Likes*2)
	comments := min(30, a.Comments*5)
	return clamp(views + likes + comments)
}

// qualityScore rewards editorial completeness. Lengths are counted in runes:
// Arabic text is multi-byte and byte lengths would skew the thresholds.
func qualityScore(a Article) int {
	score := 60
	if n := utf8.RuneCountInString(a.Title); n > 20 && n < 80 {
		score += 15
	}
	if utf8.RuneCountInString(a.Excerpt) > 50 {
		score += 10
	}
	if a.HasImage {
		score += 10
	}
	author := strings.ToLower(strings.TrimSpace(a.AuthorName))
	if author != "" && author != authorUnknown {
		score += 5
	}
	return clamp(score)
}

// timingScore applies the slot-specific lexicon adjustment on a base of 70.
// Night penalties can push the raw value below zero before the final clamp.
func timingScore(text string, slot Slot) int {
	score := 70
	switch slot {
	case Morning:
		score += 8 * countMatches(text, defaultLexicon.Positive)
	case Noon:
		score += 10 * countMatches(text, defaultLexicon.Urgent)
	case Night:
		score -= 20 * countMatches(text, defaultLexicon.Negative)
	case Evening:
		// baseline only
	}
	return clamp(score)
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
