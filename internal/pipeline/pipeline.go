package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/nashra-news/nashra/internal/assemble"
	"github.com/nashra-news/nashra/internal/collect"
	"github.com/nashra-news/nashra/internal/config"
	"github.com/nashra-news/nashra/internal/database"
	"github.com/nashra-news/nashra/internal/engine"
	"github.com/nashra-news/nashra/internal/fetch"
	"github.com/nashra-news/nashra/internal/generator"
)

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Result holds the results of a full pipeline run.
type Result struct {
	Slot     engine.Slot
	DoseDate string
	Steps    []StepResult
}

// Pipeline orchestrates the 3-step dose generation pipeline.
type Pipeline struct {
	cfg      *config.Config
	db       *database.DB
	provider generator.Provider
}

// New creates a new pipeline.
func New(cfg *config.Config, db *database.DB) *Pipeline {
	gen := cfg.Generation
	provider := generator.CreateProvider(
		gen.Provider,
		gen.Model,
		gen.OllamaURL,
		gen.OpenAIModel,
		gen.APIKeyEnv,
	)

	return &Pipeline{
		cfg:      cfg,
		db:       db,
		provider: provider,
	}
}

// Run executes the full pipeline for one dose: collect, fetch, assemble.
func (p *Pipeline) Run(ctx context.Context, slot engine.Slot, doseDate, audience string) *Result {
	r := &Result{Slot: slot, DoseDate: doseDate}

	// Step 1: Collect
	step := p.runCollect()
	r.Steps = append(r.Steps, step)

	// Step 2: Fetch excerpts
	step = p.runFetch()
	r.Steps = append(r.Steps, step)

	// Step 3: Assemble dose
	step = p.runAssemble(ctx, slot, doseDate, audience)
	r.Steps = append(r.Steps, step)

	return r
}

// DryRun shows what would be done without persisting a dose.
func (p *Pipeline) DryRun(slot engine.Slot, doseDate, audience string) *Result {
	r := &Result{Slot: slot, DoseDate: doseDate}

	since := time.Now().Add(-time.Duration(p.cfg.Engine.PoolWindowHours) * time.Hour)
	candidates, _ := p.db.GetCandidates(database.FormatTime(since), p.cfg.Engine.PoolLimit)
	r.Steps = append(r.Steps, StepResult{
		Name:    "Collect",
		Summary: fmt.Sprintf("[dry-run] %d candidates in the %dh pool", len(candidates), p.cfg.Engine.PoolWindowHours),
	})

	needing, _ := p.db.GetArticlesNeedingExcerpt()
	r.Steps = append(r.Steps, StepResult{
		Name:    "Fetch",
		Summary: fmt.Sprintf("[dry-run] %d articles need excerpt fetching", len(needing)),
	})

	if audience == "" {
		audience = p.cfg.Audience
	}
	existing, _ := p.db.GetDose(slot.String(), doseDate, audience)
	if existing != nil {
		r.Steps = append(r.Steps, StepResult{
			Name:    "Assemble",
			Summary: fmt.Sprintf("[dry-run] Dose already exists for %s %s", slot, doseDate),
		})
		return r
	}

	assembler := assemble.NewAssembler(p.cfg, p.db, nil)
	selection, err := assembler.Select(slot, time.Now())
	if err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Assemble", Err: err})
		return r
	}
	r.Steps = append(r.Steps, StepResult{
		Name: "Assemble",
		Summary: fmt.Sprintf("[dry-run] Would pick %d articles across %d categories",
			len(selection.Picks), len(selection.Categories)),
	})

	return r
}

func (p *Pipeline) runCollect() StepResult {
	log.Println("Step 1/3: Collecting articles...")
	daysBack := (p.cfg.Engine.PoolWindowHours + 23) / 24
	collector := collect.NewCollector(p.cfg, p.db, daysBack)
	result := collector.Collect()
	return StepResult{
		Name:    "Collect",
		Summary: fmt.Sprintf("Found %d new articles (%d total, %d duplicates)", result.NewArticles, result.TotalFound, result.Duplicates),
	}
}

func (p *Pipeline) runFetch() StepResult {
	log.Println("Step 2/3: Fetching excerpts...")
	fetcher := fetch.NewExcerptFetcher(p.db, 15*time.Second)
	result := fetcher.FetchMissingExcerpts()
	return StepResult{
		Name:    "Fetch",
		Summary: fmt.Sprintf("Fetched %d excerpts, %d failed", result.Fetched, result.Failed),
	}
}

func (p *Pipeline) runAssemble(ctx context.Context, slot engine.Slot, doseDate, audience string) StepResult {
	log.Println("Step 3/3: Assembling dose...")
	assembler := assemble.NewAssembler(p.cfg, p.db, p.provider)
	dose, err := assembler.AssembleDose(ctx, slot, doseDate, audience)
	if err != nil {
		return StepResult{Name: "Assemble", Err: err}
	}
	return StepResult{
		Name:    "Assemble",
		Summary: fmt.Sprintf("Dose ready: %q with %d articles", dose.Headline, dose.ArticleCount),
	}
}
