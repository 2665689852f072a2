package database

// InsertDoseFeedback records one feedback event against a dose. articleID is
// nil for dose-level signals (e.g. a dwell beacon for the whole digest).
// The kind CHECK constraint rejects anything outside
// reaction/share/save/dwell.
func (db *DB) InsertDoseFeedback(doseID int64, articleID *int64, kind string, value *string) (int64, error) {
	result, err := db.conn.Exec(
		`INSERT INTO dose_feedback (dose_id, article_id, kind, value) VALUES (?, ?, ?, ?)`,
		doseID, articleID, kind, value,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetFeedbackForDose returns all feedback events for a dose, oldest first.
func (db *DB) GetFeedbackForDose(doseID int64) ([]DoseFeedback, error) {
	rows, err := db.conn.Query(
		`SELECT id, dose_id, article_id, kind, value, created_at
		FROM dose_feedback WHERE dose_id = ? ORDER BY id`, doseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []DoseFeedback
	for rows.Next() {
		var f DoseFeedback
		if err := rows.Scan(&f.ID, &f.DoseID, &f.ArticleID, &f.Kind, &f.Value, &f.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, f)
	}
	return events, rows.Err()
}

// GetFeedbackByCategory aggregates feedback counts per article category by
// joining events back to the articles that produced them. The status report
// surfaces it; a future re-weighting pass starts from the same join.
func (db *DB) GetFeedbackByCategory() ([]CategoryFeedback, error) {
	rows, err := db.conn.Query(`
		SELECT a.category,
			SUM(CASE WHEN f.kind = 'reaction' THEN 1 ELSE 0 END) as reactions,
			SUM(CASE WHEN f.kind = 'share' THEN 1 ELSE 0 END) as shares,
			SUM(CASE WHEN f.kind = 'save' THEN 1 ELSE 0 END) as saves
		FROM dose_feedback f
		JOIN articles a ON a.id = f.article_id
		WHERE f.article_id IS NOT NULL
		GROUP BY a.category
		ORDER BY (reactions + shares + saves) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summary []CategoryFeedback
	for rows.Next() {
		var cf CategoryFeedback
		if err := rows.Scan(&cf.Category, &cf.Reactions, &cf.Shares, &cf.Saves); err != nil {
			return nil, err
		}
		summary = append(summary, cf)
	}
	return summary, rows.Err()
}
