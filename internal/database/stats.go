package database

// GetStats returns aggregate database statistics.
func (db *DB) GetStats() (*Stats, error) {
	s := &Stats{}

	queries := []struct {
		sql  string
		dest *int
	}{
		{"SELECT COUNT(*) FROM articles", &s.TotalArticles},
		{"SELECT COUNT(*) FROM articles WHERE excerpt IS NOT NULL AND excerpt != ''", &s.ArticlesWithText},
		{"SELECT COUNT(*) FROM doses", &s.Doses},
		{"SELECT COUNT(DISTINCT dose_date) FROM doses", &s.DaysWithDoses},
		{"SELECT COUNT(*) FROM dose_feedback", &s.FeedbackEvents},
		{"SELECT COUNT(*) FROM preferences", &s.TotalPreferences},
		{"SELECT COUNT(*) FROM preferences WHERE is_active = 1", &s.ActivePreferences},
	}

	for _, q := range queries {
		if err := db.conn.QueryRow(q.sql).Scan(q.dest); err != nil {
			return nil, err
		}
	}

	return s, nil
}
