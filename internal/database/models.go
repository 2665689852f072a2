package database

// Article is a collected candidate article. Engagement counters are bumped
// by the serving layer; the engine only reads them.
type Article struct {
	ID             int64
	URL            string
	Title          string
	Excerpt        *string
	Source         *string
	Category       string
	PublishedAt    *string // RFC 3339
	Views          int
	Likes          int
	Comments       int
	HasImage       bool
	Author         *string
	ExcerptFetched bool
	CollectedAt    *string
}

// Dose is a persisted digest for one (slot, date, audience).
type Dose struct {
	ID           int64
	Slot         string
	DoseDate     string // YYYY-MM-DD
	Audience     string
	Headline     string
	Subheadline  *string
	BodyMarkdown string
	ArticleCount int
	GeneratedAt  *string
}

// DoseArticle is one ranked pick inside a dose, carrying the full score
// breakdown so later feedback can be joined back to what produced the pick.
type DoseArticle struct {
	DoseID     int64
	ArticleID  int64
	Rank       int
	FinalScore int
	Relevance  int
	Freshness  int
	Engagement int
	Quality    int
	Timing     int
	Reasons    []string

	// Joined from articles for display.
	Title    string
	URL      string
	Category string
}

// DoseFeedback is one recorded user signal against a dose.
type DoseFeedback struct {
	ID        int64
	DoseID    int64
	ArticleID *int64
	Kind      string // reaction, share, save, dwell
	Value     *string
	CreatedAt *string
}

// CategoryFeedback aggregates feedback counts per article category, the
// join a future re-weighting pass starts from.
type CategoryFeedback struct {
	Category  string
	Reactions int
	Shares    int
	Saves     int
}

// Preference is one user interest token consulted during scoring.
type Preference struct {
	ID        int64
	Token     string
	IsActive  bool
	CreatedAt *string
}

// Stats contains aggregate database statistics.
type Stats struct {
	TotalArticles     int
	ArticlesWithText  int
	Doses             int
	DaysWithDoses     int
	FeedbackEvents    int
	TotalPreferences  int
	ActivePreferences int
}
