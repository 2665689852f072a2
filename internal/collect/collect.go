package collect

import (
	"log"

	"github.com/nashra-news/nashra/internal/config"
	"github.com/nashra-news/nashra/internal/database"
)

// Result holds the results of a collection run.
type Result struct {
	TotalFound  int
	NewArticles int
	Duplicates  int
	Sources     map[string]int
}

// Collector fills the candidate pool from the configured RSS feeds.
type Collector struct {
	db         *database.DB
	feedParser *FeedParser
	daysBack   int
}

// NewCollector creates a new article collector.
func NewCollector(cfg *config.Config, db *database.DB, daysBack int) *Collector {
	c := &Collector{
		db:       db,
		daysBack: daysBack,
	}

	if len(cfg.Sources.Feeds) > 0 {
		feeds := make([]FeedConfig, len(cfg.Sources.Feeds))
		for i, f := range cfg.Sources.Feeds {
			feeds[i] = FeedConfig{URL: f.URL, Name: f.Name, Category: f.Category}
		}
		c.feedParser = NewFeedParser(feeds)
	}

	return c
}

// Collect collects articles from all configured sources.
func (c *Collector) Collect() *Result {
	r := &Result{Sources: make(map[string]int)}

	if c.feedParser == nil {
		log.Println("No feeds configured")
		return r
	}

	log.Println("Collecting from RSS feeds...")
	entries := c.feedParser.ParseAll(c.daysBack)
	r.TotalFound = len(entries)

	for _, entry := range entries {
		var excerpt, source, publishedAt, author *string
		if entry.Excerpt != "" {
			excerpt = &entry.Excerpt
		}
		if entry.Source != "" {
			source = &entry.Source
		}
		if entry.PublishedAt != "" {
			publishedAt = &entry.PublishedAt
		}
		if entry.Author != "" {
			author = &entry.Author
		}

		id, _ := c.db.InsertArticle(entry.URL, entry.Title, entry.Category,
			excerpt, source, publishedAt, author, entry.HasImage)
		if id > 0 {
			r.NewArticles++
			r.Sources[entry.Source]++
		} else {
			r.Duplicates++
		}
	}

	log.Printf("Collection complete: %d found, %d new, %d duplicates", r.TotalFound, r.NewArticles, r.Duplicates)
	return r
}
