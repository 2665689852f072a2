package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nashra-news/nashra/internal/collect"
	"github.com/nashra-news/nashra/internal/config"
	"github.com/nashra-news/nashra/internal/database"
	"github.com/nashra-news/nashra/internal/engine"
	"github.com/nashra-news/nashra/internal/pipeline"
	"github.com/nashra-news/nashra/internal/schedule"
	"github.com/nashra-news/nashra/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "nashra",
	Short:   "Time-sliced Arabic news doses",
	Long:    "nashra collects Arabic news, scores it for the current time of day, and serves diversified dose digests.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(prefsCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("nashra", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/nashra/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure feeds, schedule, and the generation provider.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		now := time.Now()
		fmt.Printf("Today: %s (current slot: %s)\n\n", database.Today(), engine.SlotAt(now))
		fmt.Println("Articles:")
		fmt.Printf("  Total collected: %d\n", stats.TotalArticles)
		fmt.Printf("  With excerpt: %d\n", stats.ArticlesWithText)
		fmt.Println("\nDoses:")
		fmt.Printf("  Total: %d\n", stats.Doses)
		fmt.Printf("  Days with doses: %d\n", stats.DaysWithDoses)
		fmt.Printf("  Feedback events: %d\n", stats.FeedbackEvents)
		fmt.Println("\nPreferences:")
		fmt.Printf("  Total: %d\n", stats.TotalPreferences)
		fmt.Printf("  Active: %d\n", stats.ActivePreferences)

		byCategory, err := db.GetFeedbackByCategory()
		if err != nil {
			return fmt.Errorf("getting feedback summary: %w", err)
		}
		if len(byCategory) > 0 {
			fmt.Println("\nFeedback by category:")
			for _, c := range byCategory {
				fmt.Printf("  %s: %d reactions, %d shares, %d saves\n",
					c.Category, c.Reactions, c.Shares, c.Saves)
			}
		}
		return nil
	},
}

// --- collect command ---

var collectDaysBack int

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect articles from configured feeds",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		fmt.Println("Collecting articles from feeds...")

		collector := collect.NewCollector(cfg, db, collectDaysBack)
		result := collector.Collect()

		fmt.Println("\nCollection complete:")
		fmt.Printf("  Total found: %d\n", result.TotalFound)
		fmt.Printf("  New articles: %d\n", result.NewArticles)
		fmt.Printf("  Duplicates skipped: %d\n", result.Duplicates)

		if len(result.Sources) > 0 {
			fmt.Println("\nArticles by source:")
			// Sort sources by count descending
			type kv struct {
				key string
				val int
			}
			var sorted []kv
			for k, v := range result.Sources {
				sorted = append(sorted, kv{k, v})
			}
			sort.Slice(sorted, func(i, j int) bool { return sorted[i].val > sorted[j].val })
			for _, s := range sorted {
				fmt.Printf("  %s: %d\n", s.key, s.val)
			}
		}
		return nil
	},
}

func init() {
	collectCmd.Flags().IntVar(&collectDaysBack, "days-back", 2, "Lookback window for feed entries (days)")
}

// --- generate command ---

var (
	generateSlot     string
	generateDate     string
	generateAudience string
	dryRun           bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run the full pipeline for one dose: collect -> fetch -> assemble",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		slot := engine.SlotAt(time.Now())
		if generateSlot != "" {
			slot, err = engine.ParseSlot(generateSlot)
			if err != nil {
				return err
			}
		}
		doseDate := generateDate
		if doseDate == "" {
			doseDate = database.Today()
		}

		pipe := pipeline.New(cfg, db)

		var result *pipeline.Result
		if dryRun {
			result = pipe.DryRun(slot, doseDate, generateAudience)
		} else {
			result = pipe.Run(context.Background(), slot, doseDate, generateAudience)
		}

		fmt.Printf("Dose: %s %s\n", slot, doseDate)
		for i, step := range result.Steps {
			fmt.Printf("\nStep %d/%d: %s\n", i+1, len(result.Steps), step.Name)
			if step.Err != nil {
				fmt.Printf("  Error: %v\n", step.Err)
			} else {
				fmt.Printf("  %s\n", step.Summary)
			}
		}

		if !dryRun {
			fmt.Println("\nDone! Run 'nashra serve' to read the dose.")
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateSlot, "slot", "", "Slot to generate (morning, noon, evening, night); default is the current one")
	generateCmd.Flags().StringVar(&generateDate, "date", "", "Dose date as YYYY-MM-DD; default is today")
	generateCmd.Flags().StringVar(&generateAudience, "audience", "", "Audience segment; default from config")
	generateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without persisting a dose")
}

// --- schedule command ---

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the scheduler daemon, generating each slot's dose on its cron spec",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		pipe := pipeline.New(cfg, db)
		sched, err := schedule.New(cfg, pipe)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		sched.Run(ctx)
		return nil
	},
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(db, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (default from config)")
}

// --- prefs command ---

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Manage preference tokens",
}

var prefsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all preference tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		prefs, err := db.GetAllPreferences()
		if err != nil {
			return err
		}

		if len(prefs) == 0 {
			fmt.Println("No preferences defined. Add one with: nashra prefs add")
			return nil
		}

		fmt.Println("Preferences:")
		fmt.Println()
		for _, p := range prefs {
			icon := " "
			if p.IsActive {
				icon = "*"
			}
			fmt.Printf("  [%d] %s %s\n", p.ID, icon, p.Token)
		}
		return nil
	},
}

var prefsAddCmd = &cobra.Command{
	Use:   "add [token]",
	Short: "Add a preference token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		id, err := db.InsertPreference(args[0])
		if err != nil {
			return err
		}
		if id == 0 {
			fmt.Printf("Preference already exists: %s\n", args[0])
			return nil
		}
		fmt.Printf("Added preference [%d]: %s\n", id, args[0])
		return nil
	},
}

var prefsRemoveCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Remove a preference token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid preference ID: %s", args[0])
		}

		pref := findPreference(db, id)
		if pref == nil {
			return fmt.Errorf("preference %d not found", id)
		}

		if err := db.DeletePreference(id); err != nil {
			return err
		}
		fmt.Printf("Removed preference [%d]: %s\n", id, pref.Token)
		return nil
	},
}

var prefsToggleCmd = &cobra.Command{
	Use:   "toggle [id]",
	Short: "Toggle a preference's active state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid preference ID: %s", args[0])
		}

		pref := findPreference(db, id)
		if pref == nil {
			return fmt.Errorf("preference %d not found", id)
		}

		if err := db.TogglePreference(id); err != nil {
			return err
		}
		newState := "disabled"
		if !pref.IsActive {
			newState = "enabled"
		}
		fmt.Printf("Preference [%d] %s: %s\n", id, pref.Token, newState)
		return nil
	},
}

func init() {
	prefsCmd.AddCommand(prefsListCmd)
	prefsCmd.AddCommand(prefsAddCmd)
	prefsCmd.AddCommand(prefsRemoveCmd)
	prefsCmd.AddCommand(prefsToggleCmd)
}

func findPreference(db *database.DB, id int64) *database.Preference {
	prefs, err := db.GetAllPreferences()
	if err != nil {
		return nil
	}
	for i := range prefs {
		if prefs[i].ID == id {
			return &prefs[i]
		}
	}
	return nil
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "nashra.db")
	return database.Open(dbPath)
}
