package schedule

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/nashra-news/nashra/internal/config"
	"github.com/nashra-news/nashra/internal/database"
	"github.com/nashra-news/nashra/internal/engine"
	"github.com/nashra-news/nashra/internal/pipeline"
)

// Scheduler runs the dose pipeline on the configured cron spec of each slot.
type Scheduler struct {
	cfg  *config.Config
	pipe *pipeline.Pipeline
	cron *cron.Cron
}

// New creates a scheduler with one job per slot.
func New(cfg *config.Config, pipe *pipeline.Pipeline) (*Scheduler, error) {
	s := &Scheduler{
		cfg:  cfg,
		pipe: pipe,
		cron: cron.New(),
	}

	for _, slot := range engine.Slots() {
		slot := slot
		spec := cfg.Schedule.Spec(slot)
		if spec == "" {
			continue
		}
		if _, err := s.cron.AddFunc(spec, func() { s.runSlot(slot) }); err != nil {
			return nil, fmt.Errorf("scheduling %s (%q): %w", slot, spec, err)
		}
		log.Printf("Scheduled %s dose at %q", slot, spec)
	}

	if len(s.cron.Entries()) == 0 {
		return nil, fmt.Errorf("no schedule entries configured")
	}
	return s, nil
}

// Run starts the scheduler and blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.cron.Start()
	log.Println("Scheduler running; press Ctrl+C to stop")
	<-ctx.Done()
	stopped := s.cron.Stop()
	<-stopped.Done()
	log.Println("Scheduler stopped")
}

func (s *Scheduler) runSlot(slot engine.Slot) {
	doseDate := database.Today()
	log.Printf("Scheduled run: %s dose for %s", slot, doseDate)

	result := s.pipe.Run(context.Background(), slot, doseDate, s.cfg.Audience)
	for _, step := range result.Steps {
		if step.Err != nil {
			log.Printf("  %s: FAILED: %v", step.Name, step.Err)
		} else {
			log.Printf("  %s: %s", step.Name, step.Summary)
		}
	}
}
