package assemble

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/nashra-news/nashra/internal/config"
	"github.com/nashra-news/nashra/internal/database"
	"github.com/nashra-news/nashra/internal/engine"
	"github.com/nashra-news/nashra/internal/generator"
)

const copyPrompt = `أنت محرر في منصة إخبارية عربية تكتب عنوان "جرعة %s" الإخبارية.

هذه عناوين الأخبار المختارة:

%s

اكتب عنواناً رئيسياً قصيراً وجذاباً للجرعة وعنواناً فرعياً من جملة واحدة.

أجب بهذا الـ JSON فقط:
{
    "headline": "العنوان الرئيسي",
    "subheadline": "العنوان الفرعي"
}`

// Assembler builds a dose for a slot: it scores the candidate pool, selects
// the diversified picks, generates the copy, and persists the result.
type Assembler struct {
	db       *database.DB
	provider generator.Provider
	cfg      *config.Config
}

// NewAssembler creates a new dose assembler. provider may be nil; fallback
// copy is used instead.
func NewAssembler(cfg *config.Config, db *database.DB, provider generator.Provider) *Assembler {
	return &Assembler{db: db, provider: provider, cfg: cfg}
}

// AssembleDose assembles and stores the dose for a slot, date, and audience.
// An already-stored dose for the same key is returned as-is.
func (a *Assembler) AssembleDose(ctx context.Context, slot engine.Slot, doseDate, audience string) (*database.Dose, error) {
	return a.assembleDoseAt(ctx, slot, doseDate, audience, time.Now())
}

func (a *Assembler) assembleDoseAt(ctx context.Context, slot engine.Slot, doseDate, audience string, now time.Time) (*database.Dose, error) {
	if audience == "" {
		audience = a.cfg.Audience
	}

	existing, err := a.db.GetDose(slot.String(), doseDate, audience)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		log.Printf("Dose already exists for %s %s (%s)", slot, doseDate, audience)
		return existing, nil
	}

	selection, err := a.Select(slot, now)
	if err != nil {
		return nil, err
	}
	if len(selection.Picks) == 0 {
		log.Printf("No eligible articles for %s %s", slot, doseDate)
		return a.storeEmptyDose(slot, doseDate, audience)
	}

	headline, subheadline := a.generateCopy(ctx, slot, selection.Picks)
	body := assembleBody(selection.Picks)

	doseID, err := a.db.InsertDose(slot.String(), doseDate, audience, headline, &subheadline, body, len(selection.Picks))
	if err != nil {
		return nil, err
	}
	if doseID == 0 {
		// Lost a race with a concurrent run; return the stored dose.
		return a.db.GetDose(slot.String(), doseDate, audience)
	}

	for rank, p := range selection.Picks {
		err := a.db.InsertDoseArticle(doseID, p.Article.ID, rank+1,
			p.Score.Final, p.Score.Relevance, p.Score.Freshness,
			p.Score.Engagement, p.Score.Quality, p.Score.Timing, p.Score.Reasons)
		if err != nil {
			return nil, err
		}
	}

	log.Printf("Dose assembled for %s %s: %d articles", slot, doseDate, len(selection.Picks))
	return a.db.GetDoseByID(doseID)
}

// Select scores and selects the current candidate pool for a slot without
// persisting anything. Used by AssembleDose and by dry runs.
func (a *Assembler) Select(slot engine.Slot, now time.Time) (engine.Selection, error) {
	since := now.Add(-time.Duration(a.cfg.Engine.PoolWindowHours) * time.Hour)
	candidates, err := a.db.GetCandidates(database.FormatTime(since), a.cfg.Engine.PoolLimit)
	if err != nil {
		return engine.Selection{}, err
	}

	prefs, err := a.db.GetActivePreferenceTokens()
	if err != nil {
		return engine.Selection{}, err
	}

	pool := make([]engine.Article, 0, len(candidates))
	for _, c := range candidates {
		pool = append(pool, toEngineArticle(c))
	}

	return engine.SelectForDoseAt(pool, slot, prefs, a.cfg.Engine.Options(), now), nil
}

func toEngineArticle(a database.Article) engine.Article {
	ea := engine.Article{
		ID:       a.ID,
		Title:    a.Title,
		Category: a.Category,
		Views:    a.Views,
		Likes:    a.Likes,
		Comments: a.Comments,
		HasImage: a.HasImage,
	}
	if a.Excerpt != nil {
		ea.Excerpt = *a.Excerpt
	}
	if a.Author != nil {
		ea.AuthorName = *a.Author
	}
	if t, ok := database.ParseTime(a.PublishedAt); ok {
		ea.PublishedAt = t
	}
	return ea
}

func (a *Assembler) generateCopy(ctx context.Context, slot engine.Slot, picks []engine.Pick) (string, string) {
	headline := fmt.Sprintf("جرعة %s الإخبارية", slot.Arabic())
	subheadline := fmt.Sprintf("أبرز %d أخبار مختارة لك", len(picks))

	if a.provider == nil {
		return headline, subheadline
	}

	var titles []string
	for _, p := range picks {
		titles = append(titles, "- "+p.Article.Title)
	}

	prompt := fmt.Sprintf(copyPrompt, slot.Arabic(), strings.Join(titles, "\n"))
	responseText, err := a.provider.Generate(ctx, prompt, a.cfg.Generation.MaxTokens)
	if err != nil || responseText == "" {
		return headline, subheadline
	}

	parsed := generator.ParseJSONResponse(responseText)
	if parsed == nil {
		return headline, subheadline
	}
	if h, ok := parsed["headline"].(string); ok && strings.TrimSpace(h) != "" {
		headline = strings.TrimSpace(h)
	}
	if s, ok := parsed["subheadline"].(string); ok && strings.TrimSpace(s) != "" {
		subheadline = strings.TrimSpace(s)
	}
	return headline, subheadline
}

func assembleBody(picks []engine.Pick) string {
	var sections []string
	for _, p := range picks {
		section := fmt.Sprintf("## %s", p.Article.Title)
		if p.Article.Excerpt != "" {
			section += "\n\n" + p.Article.Excerpt
		}
		if len(p.Score.Reasons) > 0 {
			section += "\n\n*" + strings.Join(p.Score.Reasons, " · ") + "*"
		}
		sections = append(sections, section)
	}
	return strings.Join(sections, "\n\n---\n\n")
}

func (a *Assembler) storeEmptyDose(slot engine.Slot, doseDate, audience string) (*database.Dose, error) {
	headline := fmt.Sprintf("جرعة %s الإخبارية", slot.Arabic())
	sub := "لا توجد أخبار كافية لهذه الفترة"
	id, err := a.db.InsertDose(slot.String(), doseDate, audience, headline, &sub, "لم تتوفر أخبار مناسبة لهذه الجرعة.", 0)
	if err != nil {
		return nil, err
	}
	if id == 0 {
		return a.db.GetDose(slot.String(), doseDate, audience)
	}
	return a.db.GetDoseByID(id)
}
