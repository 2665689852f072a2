package database

import (
	"database/sql"
)

// InsertArticle inserts an article. Returns the ID on success, 0 if duplicate.
func (db *DB) InsertArticle(url, title, category string, excerpt, source, publishedAt, author *string, hasImage bool) (int64, error) {
	img := 0
	if hasImage {
		img = 1
	}
	result, err := db.conn.Exec(
		`INSERT INTO articles (url, title, category, excerpt, source, published_at, author, has_image)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		url, title, category, excerpt, source, publishedAt, author, img,
	)
	if err != nil {
		// Duplicate URL constraint
		return 0, nil //nolint: nilerr
	}
	return result.LastInsertId()
}

// GetCandidates returns articles published at or after since (RFC 3339),
// newest first, up to limit. This is the pool the dose engine scores.
func (db *DB) GetCandidates(since string, limit int) ([]Article, error) {
	rows, err := db.conn.Query(
		`SELECT id, url, title, excerpt, source, category, published_at,
		views, likes, comments, has_image, author, excerpt_fetched, collected_at
		FROM articles WHERE published_at >= ?
		ORDER BY published_at DESC LIMIT ?`, since, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

// GetArticlesNeedingExcerpt returns articles with an empty excerpt that
// haven't had a fetch attempt.
func (db *DB) GetArticlesNeedingExcerpt() ([]Article, error) {
	rows, err := db.conn.Query(
		`SELECT id, url, title, excerpt, source, category, published_at,
		views, likes, comments, has_image, author, excerpt_fetched, collected_at
		FROM articles WHERE (excerpt IS NULL OR excerpt = '') AND excerpt_fetched = 0
		ORDER BY published_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

// UpdateArticleExcerpt stores a fetched excerpt.
func (db *DB) UpdateArticleExcerpt(articleID int64, excerpt *string) error {
	_, err := db.conn.Exec(
		"UPDATE articles SET excerpt = ?, excerpt_fetched = 1 WHERE id = ?",
		excerpt, articleID,
	)
	return err
}

// MarkExcerptFetchAttempted marks that we tried to fetch an excerpt.
func (db *DB) MarkExcerptFetchAttempted(articleID int64) error {
	_, err := db.conn.Exec(
		"UPDATE articles SET excerpt_fetched = 1 WHERE id = ?", articleID,
	)
	return err
}

// IncrementArticleViews bumps the view counter by one.
func (db *DB) IncrementArticleViews(articleID int64) error {
	_, err := db.conn.Exec("UPDATE articles SET views = views + 1 WHERE id = ?", articleID)
	return err
}

// IncrementArticleLikes bumps the like counter by one.
func (db *DB) IncrementArticleLikes(articleID int64) error {
	_, err := db.conn.Exec("UPDATE articles SET likes = likes + 1 WHERE id = ?", articleID)
	return err
}

// GetArticleByID returns a single article by ID.
func (db *DB) GetArticleByID(articleID int64) (*Article, error) {
	row := db.conn.QueryRow(
		`SELECT id, url, title, excerpt, source, category, published_at,
		views, likes, comments, has_image, author, excerpt_fetched, collected_at
		FROM articles WHERE id = ?`, articleID,
	)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func scanArticles(rows *sql.Rows) ([]Article, error) {
	var articles []Article
	for rows.Next() {
		var a Article
		var img, fetched int
		if err := rows.Scan(&a.ID, &a.URL, &a.Title, &a.Excerpt, &a.Source, &a.Category,
			&a.PublishedAt, &a.Views, &a.Likes, &a.Comments, &img, &a.Author,
			&fetched, &a.CollectedAt); err != nil {
			return nil, err
		}
		a.HasImage = img != 0
		a.ExcerptFetched = fetched != 0
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

func scanArticle(row *sql.Row) (*Article, error) {
	var a Article
	var img, fetched int
	if err := row.Scan(&a.ID, &a.URL, &a.Title, &a.Excerpt, &a.Source, &a.Category,
		&a.PublishedAt, &a.Views, &a.Likes, &a.Comments, &img, &a.Author,
		&fetched, &a.CollectedAt); err != nil {
		return nil, err
	}
	a.HasImage = img != 0
	a.ExcerptFetched = fetched != 0
	return &a, nil
}
