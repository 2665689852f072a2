package engine

import "strings"

// Lexicon holds the classified keyword lists the scorers scan for. Matching
// is case-insensitive substring containment; each distinct term that appears
// counts once, and distinct terms compound additively.
type Lexicon struct {
	Positive []string
	Negative []string
	Urgent   []string
	Local    []string
}

// defaultLexicon is the built-in Arabic lexicon. Immutable after init.
var defaultLexicon = Lexicon{
	Positive: []string{
		"إنجاز", "نجاح", "تطور", "فوز", "ابتكار", "تقدم", "افتتاح",
		"جائزة", "اتفاق", "انتعاش", "تعافي", "ازدهار", "بشرى",
	},
	Negative: []string{
		"أزمة", "حرب", "كارثة", "وفاة", "انفجار", "خسارة", "فشل",
		"اعتداء", "انهيار", "مجزرة", "قتلى", "حريق", "فيضان",
	},
	Urgent: []string{
		"عاجل", "الآن", "طارئ", "فوري", "تحذير", "خبر عاجل", "مستجدات",
	},
	Local: []string{
		"محلي", "المدينة", "البلدية", "المحافظة", "الحي", "بلدنا", "الوزارة",
	},
}

// DefaultLexicon returns the built-in lexicon.
func DefaultLexicon() Lexicon {
	return defaultLexicon
}

// countMatches returns how many terms from the list appear in text.
// text must already be lowercased.
func countMatches(text string, terms []string) int {
	n := 0
	for _, term := range terms {
		if term != "" && strings.Contains(text, strings.ToLower(term)) {
			n++
		}
	}
	return n
}
