package engine

import (
	"testing"
	"time"
)

// goodArticle scores well above the cutoff in any slot.
func goodArticle(id int64, category string) Article {
	return Article{
		ID:          id,
		Title:       "تقرير موسع عن قطاع الاتصالات في المنطقة",
		Excerpt:     "يستعرض هذا التقرير أبرز ما جرى في قطاع الاتصالات خلال الأسبوع الماضي مع تحليل مفصل.",
		PublishedAt: testNow.Add(-30 * time.Minute),
		Category:    category,
		AuthorName:  "سارة خالد",
	}
}

// weakArticle scores below the 40 cutoff: stale, bare, no engagement.
func weakArticle(id int64, category string) Article {
	return Article{
		ID:          id,
		Title:       "خبر",
		PublishedAt: testNow.Add(-72 * time.Hour),
		Category:    category,
	}
}

func TestSelectEmptyPool(t *testing.T) {
	sel := SelectForDoseAt(nil, Morning, nil, DefaultOptions(), testNow)
	if len(sel.Picks) != 0 {
		t.Errorf("expected empty selection, got %d picks", len(sel.Picks))
	}
}

func TestSelectCategoryCap(t *testing.T) {
	var pool []Article
	id := int64(1)
	for _, cat := range []string{"أخبار", "رياضة", "اقتصاد"} {
		for i := 0; i < 3; i++ {
			pool = append(pool, goodArticle(id, cat))
			id++
		}
	}

	opts := DefaultOptions()
	opts.K = 9
	sel := SelectForDoseAt(pool, Morning, nil, opts, testNow)

	if len(sel.Picks) != 6 {
		t.Errorf("expected 6 picks (2 per category), got %d", len(sel.Picks))
	}
	for cat, n := range sel.Categories {
		if n > 2 {
			t.Errorf("category %q exceeds cap: %d", cat, n)
		}
	}
}

func TestSelectShortResult(t *testing.T) {
	pool := []Article{
		goodArticle(1, "أخبار"),
		goodArticle(2, "رياضة"),
		weakArticle(3, "اقتصاد"),
		weakArticle(4, "ثقافة"),
		weakArticle(5, "تقنية"),
	}

	sel := SelectForDoseAt(pool, Morning, nil, DefaultOptions(), testNow)
	if len(sel.Picks) != 2 {
		t.Errorf("expected exactly 2 picks, got %d", len(sel.Picks))
	}
	for _, p := range sel.Picks {
		if p.Score.Final < 40 {
			t.Errorf("pick below cutoff: %d", p.Score.Final)
		}
	}
}

func TestSelectMorningScenario(t *testing.T) {
	pool := []Article{
		goodArticle(1, "أخبار"),
		goodArticle(2, "أخبار"),
		goodArticle(3, "أخبار"),
		goodArticle(4, "رأي"),
		goodArticle(5, "رأي"),
		goodArticle(6, "تقنية"),
	}

	opts := DefaultOptions()
	opts.K = 4
	sel := SelectForDoseAt(pool, Morning, nil, opts, testNow)

	if len(sel.Picks) != 4 {
		t.Fatalf("expected 4 picks, got %d", len(sel.Picks))
	}
	if sel.Categories["أخبار"] > 2 {
		t.Errorf("news over cap: %d", sel.Categories["أخبار"])
	}
	foundTech := false
	for _, p := range sel.Picks {
		if p.Article.Category == "تقنية" {
			foundTech = true
		}
	}
	if !foundTech {
		t.Error("expected the tech article in the selection")
	}
}

func TestSelectSeatsEveryEligibleCategory(t *testing.T) {
	// All articles tie on score, and the lone sport and tech entries carry
	// the highest IDs, so pure rank order would fill the dose with news
	// before reaching them. Each eligible category must still get a seat.
	pool := []Article{
		goodArticle(1, "أخبار"),
		goodArticle(2, "أخبار"),
		goodArticle(3, "أخبار"),
		goodArticle(4, "أخبار"),
		goodArticle(5, "رياضة"),
		goodArticle(6, "تقنية"),
	}

	opts := DefaultOptions()
	opts.K = 4
	sel := SelectForDoseAt(pool, Evening, nil, opts, testNow)

	if len(sel.Picks) != 4 {
		t.Fatalf("expected 4 picks, got %d", len(sel.Picks))
	}
	for _, cat := range []string{"أخبار", "رياضة", "تقنية"} {
		if sel.Categories[cat] == 0 {
			t.Errorf("category %q has no seat", cat)
		}
	}
	if sel.Categories["أخبار"] != 2 {
		t.Errorf("expected remaining seats to go to news, got %d", sel.Categories["أخبار"])
	}

	// Seating order never reorders the output: picks stay in rank order.
	wantOrder := []int64{1, 2, 5, 6}
	for i, want := range wantOrder {
		if sel.Picks[i].Article.ID != want {
			t.Fatalf("pick %d: expected ID %d, got %d", i, want, sel.Picks[i].Article.ID)
		}
	}
}

func TestSelectRelaxesCapForUniformPool(t *testing.T) {
	pool := []Article{
		goodArticle(1, "أخبار"),
		goodArticle(2, "أخبار"),
		goodArticle(3, "أخبار"),
		goodArticle(4, "أخبار"),
		weakArticle(5, "رياضة"), // below cutoff, so the pool is effectively uniform
	}

	sel := SelectForDoseAt(pool, Morning, nil, DefaultOptions(), testNow)
	if len(sel.Picks) != 4 {
		t.Errorf("expected cap relaxed for uniform pool: got %d picks", len(sel.Picks))
	}

	opts := DefaultOptions()
	opts.RelaxCapWhenUniform = false
	sel = SelectForDoseAt(pool, Morning, nil, opts, testNow)
	if len(sel.Picks) != 2 {
		t.Errorf("expected strict cap to keep 2 picks, got %d", len(sel.Picks))
	}
}

func TestSelectEnforcesCapWhenSecondCategoryEligible(t *testing.T) {
	pool := []Article{
		goodArticle(1, "أخبار"),
		goodArticle(2, "أخبار"),
		goodArticle(3, "أخبار"),
		goodArticle(4, "أخبار"),
		goodArticle(5, "تقنية"),
	}

	sel := SelectForDoseAt(pool, Morning, nil, DefaultOptions(), testNow)
	if sel.Categories["أخبار"] != 2 {
		t.Errorf("expected news capped at 2, got %d", sel.Categories["أخبار"])
	}
	if sel.Categories["تقنية"] != 1 {
		t.Errorf("expected 1 tech pick, got %d", sel.Categories["تقنية"])
	}
	if len(sel.Picks) != 3 {
		t.Errorf("expected 3 picks, got %d", len(sel.Picks))
	}
}

func TestSelectDeterministicTieBreak(t *testing.T) {
	// Identical articles: same score, same timestamp. ID ascending breaks
	// the tie; a fresher timestamp ranks first regardless of ID.
	newer := goodArticle(9, "أخبار")
	newer.PublishedAt = testNow.Add(-10 * time.Minute)

	pool := []Article{
		goodArticle(3, "رياضة"),
		goodArticle(1, "اقتصاد"),
		newer,
		goodArticle(2, "ثقافة"),
	}

	opts := DefaultOptions()
	opts.K = 4
	first := SelectForDoseAt(pool, Evening, nil, opts, testNow)

	if first.Picks[0].Article.ID != 9 {
		t.Errorf("expected freshest article first, got ID %d", first.Picks[0].Article.ID)
	}
	wantOrder := []int64{9, 1, 2, 3}
	for i, want := range wantOrder {
		if first.Picks[i].Article.ID != want {
			t.Fatalf("pick %d: expected ID %d, got %d", i, want, first.Picks[i].Article.ID)
		}
	}

	// Shuffled input must produce the same order.
	shuffled := []Article{pool[3], pool[2], pool[0], pool[1]}
	second := SelectForDoseAt(shuffled, Evening, nil, opts, testNow)
	for i := range first.Picks {
		if first.Picks[i].Article.ID != second.Picks[i].Article.ID {
			t.Errorf("pick %d differs across input orders: %d vs %d",
				i, first.Picks[i].Article.ID, second.Picks[i].Article.ID)
		}
	}
}

func TestSelectRanksByScore(t *testing.T) {
	stale := goodArticle(1, "أخبار")
	stale.PublishedAt = testNow.Add(-30 * time.Hour)
	fresh := goodArticle(2, "رياضة")

	sel := SelectForDoseAt([]Article{stale, fresh}, Morning, nil, DefaultOptions(), testNow)
	if len(sel.Picks) == 0 || sel.Picks[0].Article.ID != 2 {
		t.Errorf("expected fresher article ranked first")
	}
	for i := 1; i < len(sel.Picks); i++ {
		if sel.Picks[i].Score.Final > sel.Picks[i-1].Score.Final {
			t.Error("picks not in descending score order")
		}
	}
}
