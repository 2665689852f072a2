package database

import (
	"database/sql"
	"encoding/json"
)

// InsertDose inserts a dose. The UNIQUE(slot, dose_date, audience) constraint
// is the "at most one dose per slot per day per audience" guarantee; a
// duplicate insert returns 0 so callers can fall back to the existing row.
func (db *DB) InsertDose(slot, doseDate, audience, headline string, subheadline *string, bodyMarkdown string, articleCount int) (int64, error) {
	result, err := db.conn.Exec(
		`INSERT INTO doses (slot, dose_date, audience, headline, subheadline, body_markdown, article_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		slot, doseDate, audience, headline, subheadline, bodyMarkdown, articleCount,
	)
	if err != nil {
		// Unique (slot, dose_date, audience) violation
		return 0, nil //nolint: nilerr
	}
	return result.LastInsertId()
}

// GetDose returns the dose for a (slot, date, audience), or nil.
func (db *DB) GetDose(slot, doseDate, audience string) (*Dose, error) {
	row := db.conn.QueryRow(
		`SELECT id, slot, dose_date, audience, headline, subheadline, body_markdown, article_count, generated_at
		FROM doses WHERE slot = ? AND dose_date = ? AND audience = ?`,
		slot, doseDate, audience,
	)
	return scanDose(row)
}

// GetDoseByID returns a dose by primary key, or nil.
func (db *DB) GetDoseByID(id int64) (*Dose, error) {
	row := db.conn.QueryRow(
		`SELECT id, slot, dose_date, audience, headline, subheadline, body_markdown, article_count, generated_at
		FROM doses WHERE id = ?`, id,
	)
	return scanDose(row)
}

// GetAllDoses returns all doses, newest first.
func (db *DB) GetAllDoses() ([]Dose, error) {
	rows, err := db.conn.Query(
		`SELECT id, slot, dose_date, audience, headline, subheadline, body_markdown, article_count, generated_at
		FROM doses ORDER BY dose_date DESC, generated_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var doses []Dose
	for rows.Next() {
		var d Dose
		if err := rows.Scan(&d.ID, &d.Slot, &d.DoseDate, &d.Audience, &d.Headline,
			&d.Subheadline, &d.BodyMarkdown, &d.ArticleCount, &d.GeneratedAt); err != nil {
			return nil, err
		}
		doses = append(doses, d)
	}
	return doses, rows.Err()
}

// InsertDoseArticle records one ranked pick with its score breakdown.
func (db *DB) InsertDoseArticle(doseID, articleID int64, rank, finalScore, relevance, freshness, engagement, quality, timing int, reasons []string) error {
	var reasonsJSON *string
	if len(reasons) > 0 {
		data, err := json.Marshal(reasons)
		if err != nil {
			return err
		}
		s := string(data)
		reasonsJSON = &s
	}

	_, err := db.conn.Exec(
		`INSERT INTO dose_articles
		(dose_id, article_id, rank, final_score, relevance, freshness, engagement, quality, timing, reasons)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doseID, articleID, rank, finalScore, relevance, freshness, engagement, quality, timing, reasonsJSON,
	)
	return err
}

// GetDoseArticles returns a dose's picks in rank order, joined with the
// article fields needed for display.
func (db *DB) GetDoseArticles(doseID int64) ([]DoseArticle, error) {
	rows, err := db.conn.Query(
		`SELECT da.dose_id, da.article_id, da.rank, da.final_score,
		da.relevance, da.freshness, da.engagement, da.quality, da.timing, da.reasons,
		a.title, a.url, a.category
		FROM dose_articles da JOIN articles a ON a.id = da.article_id
		WHERE da.dose_id = ? ORDER BY da.rank`, doseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var picks []DoseArticle
	for rows.Next() {
		var p DoseArticle
		var reasonsJSON *string
		if err := rows.Scan(&p.DoseID, &p.ArticleID, &p.Rank, &p.FinalScore,
			&p.Relevance, &p.Freshness, &p.Engagement, &p.Quality, &p.Timing,
			&reasonsJSON, &p.Title, &p.URL, &p.Category); err != nil {
			return nil, err
		}
		if reasonsJSON != nil {
			_ = json.Unmarshal([]byte(*reasonsJSON), &p.Reasons)
		}
		picks = append(picks, p)
	}
	return picks, rows.Err()
}

func scanDose(row *sql.Row) (*Dose, error) {
	var d Dose
	if err := row.Scan(&d.ID, &d.Slot, &d.DoseDate, &d.Audience, &d.Headline,
		&d.Subheadline, &d.BodyMarkdown, &d.ArticleCount, &d.GeneratedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}
