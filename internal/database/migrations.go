package database

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS articles (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    url TEXT UNIQUE NOT NULL,
    title TEXT NOT NULL,
    excerpt TEXT,
    source TEXT,
    category TEXT NOT NULL DEFAULT 'عام',
    published_at TEXT,
    views INTEGER DEFAULT 0,
    likes INTEGER DEFAULT 0,
    comments INTEGER DEFAULT 0,
    has_image INTEGER DEFAULT 0,
    author TEXT,
    excerpt_fetched INTEGER DEFAULT 0,
    collected_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS doses (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    slot TEXT NOT NULL CHECK(slot IN ('morning', 'noon', 'evening', 'night')),
    dose_date TEXT NOT NULL,
    audience TEXT NOT NULL DEFAULT 'general',
    headline TEXT NOT NULL,
    subheadline TEXT,
    body_markdown TEXT NOT NULL,
    article_count INTEGER DEFAULT 0,
    generated_at TEXT DEFAULT (datetime('now')),
    UNIQUE(slot, dose_date, audience)
);

CREATE TABLE IF NOT EXISTS dose_articles (
    dose_id INTEGER NOT NULL REFERENCES doses(id),
    article_id INTEGER NOT NULL REFERENCES articles(id),
    rank INTEGER NOT NULL,
    final_score INTEGER NOT NULL,
    relevance INTEGER NOT NULL,
    freshness INTEGER NOT NULL,
    engagement INTEGER NOT NULL,
    quality INTEGER NOT NULL,
    timing INTEGER NOT NULL,
    reasons TEXT,
    PRIMARY KEY (dose_id, article_id)
);

CREATE TABLE IF NOT EXISTS dose_feedback (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    dose_id INTEGER NOT NULL REFERENCES doses(id),
    article_id INTEGER REFERENCES articles(id),
    kind TEXT NOT NULL CHECK(kind IN ('reaction', 'share', 'save', 'dwell')),
    value TEXT,
    created_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS preferences (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    token TEXT UNIQUE NOT NULL,
    is_active INTEGER DEFAULT 1,
    created_at TEXT DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_articles_published ON articles(published_at);
CREATE INDEX IF NOT EXISTS idx_articles_category ON articles(category);
CREATE INDEX IF NOT EXISTS idx_doses_date ON doses(dose_date);
CREATE INDEX IF NOT EXISTS idx_dose_feedback_dose ON dose_feedback(dose_id);
`)
			return err
		},
	},
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
