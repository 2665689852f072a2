package database

// InsertPreference creates a new interest token. Returns 0 for duplicates.
func (db *DB) InsertPreference(token string) (int64, error) {
	result, err := db.conn.Exec(
		`INSERT INTO preferences (token) VALUES (?)`, token,
	)
	if err != nil {
		// Duplicate token constraint
		return 0, nil //nolint: nilerr
	}
	return result.LastInsertId()
}

// GetAllPreferences returns every preference, newest first.
func (db *DB) GetAllPreferences() ([]Preference, error) {
	rows, err := db.conn.Query(
		`SELECT id, token, is_active, created_at FROM preferences ORDER BY id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prefs []Preference
	for rows.Next() {
		var p Preference
		var active int
		if err := rows.Scan(&p.ID, &p.Token, &active, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.IsActive = active != 0
		prefs = append(prefs, p)
	}
	return prefs, rows.Err()
}

// GetActivePreferenceTokens returns the active tokens fed to the scorer.
func (db *DB) GetActivePreferenceTokens() ([]string, error) {
	rows, err := db.conn.Query(
		`SELECT token FROM preferences WHERE is_active = 1 ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

// TogglePreference flips a preference's active flag.
func (db *DB) TogglePreference(id int64) error {
	_, err := db.conn.Exec(
		`UPDATE preferences SET is_active = 1 - is_active WHERE id = ?`, id,
	)
	return err
}

// DeletePreference removes a preference.
func (db *DB) DeletePreference(id int64) error {
	_, err := db.conn.Exec(`DELETE FROM preferences WHERE id = ?`, id)
	return err
}
