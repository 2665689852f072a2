package engine

import (
	"reflect"
	"testing"
	"time"
)

var testNow = time.Date(2026, 8, 28, 9, 0, 0, 0, time.Local)

// baseArticle is a plain mid-quality article with no lexicon signal.
func baseArticle() Article {
	return Article{
		ID:          1,
		Title:       "تقرير موسع عن قطاع الاتصالات في المنطقة",
		Excerpt:     "يستعرض هذا التقرير أبرز ما جرى في قطاع الاتصالات خلال الأسبوع الماضي مع تحليل مفصل.",
		PublishedAt: testNow.Add(-2 * time.Hour),
		Category:    "اقتصاد",
		Views:       500,
		Likes:       10,
		Comments:    3,
		HasImage:    true,
		AuthorName:  "سارة خالد",
	}
}

func TestScoreBounded(t *testing.T) {
	articles := []Article{
		{},
		baseArticle(),
		{
			Title:       "عاجل عاجل إنجاز فوز نجاح تطور ابتكار أزمة حرب كارثة",
			Excerpt:     "خبر عاجل الآن طارئ تحذير مستجدات إنجاز نجاح فوز تقدم افتتاح جائزة",
			PublishedAt: testNow.Add(-10 * time.Minute),
			Views:       1_000_000,
			Likes:       10_000,
			Comments:    10_000,
			HasImage:    true,
			AuthorName:  "فريق التحرير",
		},
		{
			Title:       "أزمة كارثة انفجار حريق خسارة انهيار",
			PublishedAt: testNow.Add(-100 * time.Hour),
			AuthorName:  "unknown",
		},
	}

	for _, slot := range Slots() {
		for i, a := range articles {
			s := ScoreArticleAt(a, slot, []string{"اتصالات"}, testNow)
			for name, v := range map[string]int{
				"relevance":  s.Relevance,
				"freshness":  s.Freshness,
				"engagement": s.Engagement,
				"quality":    s.Quality,
				"timing":     s.Timing,
				"final":      s.Final,
			} {
				if v < 0 || v > 100 {
					t.Errorf("article %d slot %s: %s out of [0,100]: %d", i, slot, name, v)
				}
			}
		}
	}
}

func TestScoreDeterministic(t *testing.T) {
	a := baseArticle()
	prefs := []string{"اتصالات", "تقنية"}

	first := ScoreArticleAt(a, Morning, prefs, testNow)
	for i := 0; i < 5; i++ {
		again := ScoreArticleAt(a, Morning, prefs, testNow)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("score not deterministic: %+v vs %+v", first, again)
		}
	}
}

func TestFreshnessMonotonic(t *testing.T) {
	recent := baseArticle()
	recent.PublishedAt = testNow.Add(-30 * time.Minute)
	old := baseArticle()
	old.PublishedAt = testNow.Add(-30 * time.Hour)

	sr := ScoreArticleAt(recent, Morning, nil, testNow)
	so := ScoreArticleAt(old, Morning, nil, testNow)
	if sr.Freshness <= so.Freshness {
		t.Errorf("expected freshness(30m)=%d > freshness(30h)=%d", sr.Freshness, so.Freshness)
	}
	if sr.Freshness != 100 {
		t.Errorf("expected 100 for sub-hour article, got %d", sr.Freshness)
	}
	if so.Freshness != 25 {
		t.Errorf("expected 25 for 30h article, got %d", so.Freshness)
	}
}

func TestFreshnessSteps(t *testing.T) {
	cases := []struct {
		age  time.Duration
		want int
	}{
		{30 * time.Minute, 100},
		{3 * time.Hour, 90},
		{8 * time.Hour, 75},
		{18 * time.Hour, 50},
		{36 * time.Hour, 25},
		{72 * time.Hour, 10},
	}
	for _, c := range cases {
		a := baseArticle()
		a.PublishedAt = testNow.Add(-c.age)
		s := ScoreArticleAt(a, Evening, nil, testNow)
		if s.Freshness != c.want {
			t.Errorf("age %v: expected freshness %d, got %d", c.age, c.want, s.Freshness)
		}
	}
}

func TestEngagementCaps(t *testing.T) {
	a := baseArticle()
	a.Views = 1_000_000
	a.Likes = 50_000
	a.Comments = 50_000
	s := ScoreArticleAt(a, Evening, nil, testNow)
	if s.Engagement != 100 {
		t.Errorf("expected capped engagement 100, got %d", s.Engagement)
	}

	a = baseArticle()
	a.Views = 1000 // 10 points
	a.Likes = 5    // 10 points
	a.Comments = 2 // 10 points
	s = ScoreArticleAt(a, Evening, nil, testNow)
	if s.Engagement != 30 {
		t.Errorf("expected engagement 30, got %d", s.Engagement)
	}
}

func TestEngagementZeroCounts(t *testing.T) {
	a := baseArticle()
	a.Views, a.Likes, a.Comments = 0, 0, 0
	s := ScoreArticleAt(a, Evening, nil, testNow)
	if s.Engagement != 0 {
		t.Errorf("expected 0 engagement, got %d", s.Engagement)
	}
}

func TestQualityScore(t *testing.T) {
	full := baseArticle()
	s := ScoreArticleAt(full, Evening, nil, testNow)
	// 60 base + 15 title + 10 excerpt + 10 image + 5 author
	if s.Quality != 100 {
		t.Errorf("expected quality 100, got %d", s.Quality)
	}

	bare := Article{
		Title:       "خبر",
		PublishedAt: testNow,
		AuthorName:  "unknown",
	}
	s = ScoreArticleAt(bare, Evening, nil, testNow)
	if s.Quality != 60 {
		t.Errorf("expected bare quality 60, got %d", s.Quality)
	}
}

func TestQualityCountsRunes(t *testing.T) {
	// 25 Arabic letters: over 50 bytes but must still count as a short-ish
	// title inside the (20,80) window.
	a := Article{
		Title:       "من أخبار المدن الصغرى هذا الأسبوع",
		PublishedAt: testNow,
	}
	s := ScoreArticleAt(a, Evening, nil, testNow)
	if s.Quality != 75 {
		t.Errorf("expected 60+15 for rune-length title, got %d", s.Quality)
	}
}

func TestRelevanceAccumulates(t *testing.T) {
	plain := baseArticle()
	s := ScoreArticleAt(plain, Evening, nil, testNow)
	if s.Relevance != 50 {
		t.Errorf("expected baseline 50 relevance, got %d", s.Relevance)
	}

	signal := baseArticle()
	signal.Title = "إنجاز جديد: فوز عربي في مسابقة الابتكار"
	s = ScoreArticleAt(signal, Evening, nil, testNow)
	// Three positive terms present: إنجاز, فوز, ابتكار
	if s.Relevance != 50+3*8 {
		t.Errorf("expected 74 relevance, got %d", s.Relevance)
	}

	s = ScoreArticleAt(signal, Evening, []string{"ابتكار"}, testNow)
	if s.Relevance != 50+3*8+15 {
		t.Errorf("expected 89 relevance with preference, got %d", s.Relevance)
	}
}

func TestPreferenceMatchingIsDefensive(t *testing.T) {
	a := baseArticle()
	// Untrimmed, upper-ascii, duplicate tokens must not break matching.
	s := ScoreArticleAt(a, Evening, []string{"  اتصالات ", "", "اتصالات"}, testNow)
	if s.Relevance != 50+15+15 {
		t.Errorf("expected duplicate tokens to compound to 80, got %d", s.Relevance)
	}
}

func TestTimingNightPenalty(t *testing.T) {
	a := baseArticle()
	a.Title = "أزمة جديدة تلوح في الأفق"

	night := ScoreArticleAt(a, Night, nil, testNow)
	morning := ScoreArticleAt(a, Morning, nil, testNow)
	if night.Timing >= morning.Timing {
		t.Errorf("expected night timing %d < morning timing %d for negative term", night.Timing, morning.Timing)
	}
	if night.Timing != 50 {
		t.Errorf("expected 70-20 night timing, got %d", night.Timing)
	}
}

func TestTimingClampsAtZero(t *testing.T) {
	a := baseArticle()
	a.Title = "أزمة حرب كارثة انفجار"
	a.Excerpt = "خسارة فشل انهيار"
	s := ScoreArticleAt(a, Night, nil, testNow)
	if s.Timing != 0 {
		t.Errorf("expected timing clamped to 0, got %d", s.Timing)
	}
}

func TestTimingEveningBaseline(t *testing.T) {
	a := baseArticle()
	a.Title = "عاجل: إنجاز كبير رغم الأزمة"
	s := ScoreArticleAt(a, Evening, nil, testNow)
	if s.Timing != 70 {
		t.Errorf("expected evening baseline 70, got %d", s.Timing)
	}
}

func TestNoonBeatsNightForUrgentNews(t *testing.T) {
	a := baseArticle()
	a.Title = "عاجل: اتفاق اقتصادي جديد يدخل حيز التنفيذ"
	a.PublishedAt = testNow.Add(-2 * time.Hour)

	noon := ScoreArticleAt(a, Noon, nil, testNow)
	night := ScoreArticleAt(a, Night, nil, testNow)
	if noon.Final < night.Final {
		t.Errorf("expected noon composite %d >= night composite %d", noon.Final, night.Final)
	}
	if noon.Timing <= night.Timing {
		t.Errorf("expected urgent bonus only at noon: noon=%d night=%d", noon.Timing, night.Timing)
	}
}

func TestReasons(t *testing.T) {
	a := Article{
		Title:       "عاجل: إنجاز علمي عربي ونجاح يفتح آفاق الابتكار",
		Excerpt:     "تفاصيل موسعة عن الإنجاز العلمي الجديد وما يعنيه للمنطقة في السنوات القادمة وتعليقات الخبراء عليه.",
		PublishedAt: testNow.Add(-20 * time.Minute),
		Category:    "علوم",
		Views:       10_000,
		Likes:       100,
		Comments:    50,
		HasImage:    true,
		AuthorName:  "ليلى حسن",
	}
	s := ScoreArticleAt(a, Morning, nil, testNow)

	want := []string{ReasonHighRelevance, ReasonVeryFresh, ReasonHighEngagement, ReasonHighQuality}
	if !reflect.DeepEqual(s.Reasons, want) {
		t.Errorf("expected reasons %v, got %v", want, s.Reasons)
	}
}

func TestBadTimingReason(t *testing.T) {
	a := baseArticle()
	a.Title = "أزمة ثم كارثة ثم انهيار"
	s := ScoreArticleAt(a, Night, nil, testNow)
	found := false
	for _, r := range s.Reasons {
		if r == ReasonBadTiming {
			found = true
		}
	}
	if !found {
		t.Errorf("expected bad-timing reason, got %v", s.Reasons)
	}
}
