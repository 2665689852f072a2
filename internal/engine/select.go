package engine

import (
	"sort"
	"time"
)

// Options controls dose selection.
type Options struct {
	// K is the desired number of picks.
	K int
	// CategoryCap is the maximum number of same-category picks.
	CategoryCap int
	// MinScore is the hard composite-score cutoff for eligibility.
	MinScore int
	// RelaxCapWhenUniform drops the category cap when fewer than two
	// distinct categories exist among above-cutoff candidates, so a pool
	// dominated by one category still yields K results. Disable it to
	// prefer short results over repetition.
	RelaxCapWhenUniform bool
}

// DefaultOptions returns the standard dose selection parameters.
func DefaultOptions() Options {
	return Options{
		K:                   5,
		CategoryCap:         2,
		MinScore:            40,
		RelaxCapWhenUniform: true,
	}
}

// Pick pairs a selected article with the score that selected it.
type Pick struct {
	Article Article
	Score   Score
}

// Selection is the ordered result of SelectForDose: at most K picks in rank
// order plus the category counts actually used. Fewer than K picks is a
// normal outcome, not an error.
type Selection struct {
	Picks      []Pick
	Categories map[string]int
}

// SelectForDose scores the whole pool for a slot and returns the diversified
// top K. An empty pool returns an empty Selection.
func SelectForDose(pool []Article, slot Slot, prefs []string, opts Options) Selection {
	return SelectForDoseAt(pool, slot, prefs, opts, time.Now())
}

// SelectForDoseAt is SelectForDose with an explicit clock.
func SelectForDoseAt(pool []Article, slot Slot, prefs []string, opts Options, now time.Time) Selection {
	if opts.K <= 0 {
		opts.K = DefaultOptions().K
	}
	if opts.CategoryCap <= 0 {
		opts.CategoryCap = DefaultOptions().CategoryCap
	}

	ranked := make([]Pick, 0, len(pool))
	for _, a := range pool {
		ranked = append(ranked, Pick{Article: a, Score: ScoreArticleAt(a, slot, prefs, now)})
	}

	// Deterministic order: score desc, then published desc, then ID asc.
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score.Final != b.Score.Final {
			return a.Score.Final > b.Score.Final
		}
		if !a.Article.PublishedAt.Equal(b.Article.PublishedAt) {
			return a.Article.PublishedAt.After(b.Article.PublishedAt)
		}
		return a.Article.ID < b.Article.ID
	})

	// The cap is relaxed only when the eligible pool is effectively
	// single-category; otherwise one dominant category could fill the dose
	// just by ranking first.
	eligible := make(map[string]struct{})
	for _, p := range ranked {
		if p.Score.Final >= opts.MinScore {
			eligible[p.Article.Category] = struct{}{}
		}
	}
	enforceCap := !opts.RelaxCapWhenUniform || len(eligible) > 1

	sel := Selection{Categories: make(map[string]int)}
	taken := make([]bool, len(ranked))
	count := 0

	// First pass: seat the best candidate of every eligible category before
	// any category takes a second seat. Without this, a crowded category can
	// push a lone eligible one out of a full dose purely on tie-breaks.
	if enforceCap {
		for i, p := range ranked {
			if count >= opts.K {
				break
			}
			if p.Score.Final < opts.MinScore {
				continue
			}
			if sel.Categories[p.Article.Category] > 0 {
				continue
			}
			taken[i] = true
			sel.Categories[p.Article.Category]++
			count++
		}
	}

	// Second pass: fill the remaining seats in rank order under the cap.
	for i, p := range ranked {
		if count >= opts.K {
			break
		}
		if taken[i] || p.Score.Final < opts.MinScore {
			continue
		}
		if enforceCap && sel.Categories[p.Article.Category] >= opts.CategoryCap {
			continue
		}
		taken[i] = true
		sel.Categories[p.Article.Category]++
		count++
	}

	// Picks come out in rank order regardless of which pass seated them.
	for i, p := range ranked {
		if taken[i] {
			sel.Picks = append(sel.Picks, p)
		}
	}
	return sel
}
