package schedule

import (
	"path/filepath"
	"testing"

	"github.com/nashra-news/nashra/internal/config"
	"github.com/nashra-news/nashra/internal/database"
	"github.com/nashra-news/nashra/internal/pipeline"
)

func testSetup(t *testing.T, schedule config.Schedule) (*config.Config, *pipeline.Pipeline) {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{Schedule: schedule, Audience: "general"}
	return cfg, pipeline.New(cfg, db)
}

func TestNewSchedulerAllSlots(t *testing.T) {
	cfg, pipe := testSetup(t, config.Schedule{
		Morning: "0 7 * * *",
		Noon:    "0 12 * * *",
		Evening: "0 18 * * *",
		Night:   "0 22 * * *",
	})

	s, err := New(cfg, pipe)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(s.cron.Entries()); got != 4 {
		t.Errorf("expected 4 entries, got %d", got)
	}
}

func TestNewSchedulerSkipsEmptySpecs(t *testing.T) {
	cfg, pipe := testSetup(t, config.Schedule{Morning: "0 7 * * *"})

	s, err := New(cfg, pipe)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(s.cron.Entries()); got != 1 {
		t.Errorf("expected 1 entry, got %d", got)
	}
}

func TestNewSchedulerInvalidSpec(t *testing.T) {
	cfg, pipe := testSetup(t, config.Schedule{Morning: "not a cron spec"})

	if _, err := New(cfg, pipe); err == nil {
		t.Error("expected error for invalid cron spec")
	}
}

func TestNewSchedulerNoSpecs(t *testing.T) {
	cfg, pipe := testSetup(t, config.Schedule{})

	if _, err := New(cfg, pipe); err == nil {
		t.Error("expected error when nothing is scheduled")
	}
}
