package fetch

import (
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/nashra-news/nashra/internal/database"
)

// Excerpts longer than this are cut at the last space before the limit.
const maxExcerptRunes = 500

// Result holds the results of an excerpt fetch run.
type Result struct {
	Fetched int
	Failed  int
}

// ExcerptFetcher back-fills excerpts for articles whose feed entries carried
// none, via HTTP + readability extraction.
type ExcerptFetcher struct {
	db     *database.DB
	client *http.Client
}

// NewExcerptFetcher creates a new excerpt fetcher.
func NewExcerptFetcher(db *database.DB, timeout time.Duration) *ExcerptFetcher {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &ExcerptFetcher{
		db: db,
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// FetchMissingExcerpts fetches excerpts for articles that have none.
func (f *ExcerptFetcher) FetchMissingExcerpts() *Result {
	articles, err := f.db.GetArticlesNeedingExcerpt()
	if err != nil {
		log.Printf("Error getting articles needing excerpt: %v", err)
		return &Result{}
	}

	if len(articles) == 0 {
		log.Println("No articles need excerpt fetching")
		return &Result{}
	}

	result := &Result{}
	failedDomains := make(map[string]struct{})

	for _, article := range articles {
		u, _ := url.Parse(article.URL)
		domain := ""
		if u != nil {
			domain = strings.ToLower(u.Host)
		}

		if _, failed := failedDomains[domain]; failed {
			f.db.MarkExcerptFetchAttempted(article.ID)
			result.Failed++
			continue
		}

		excerpt, httpErr := f.fetchExcerpt(article.URL)
		if httpErr != nil {
			f.db.MarkExcerptFetchAttempted(article.ID)
			result.Failed++
			if domain != "" {
				failedDomains[domain] = struct{}{}
			}
			log.Printf("HTTP error for %s — skipping remaining from %s", article.URL, domain)
			continue
		}

		if excerpt != "" {
			f.db.UpdateArticleExcerpt(article.ID, &excerpt)
			result.Fetched++
			log.Printf("Fetched excerpt for: %s", article.Title)
		} else {
			f.db.MarkExcerptFetchAttempted(article.ID)
			result.Failed++
			log.Printf("No extractable text from: %s", article.URL)
		}
	}

	log.Printf("Excerpt fetch complete: %d fetched, %d failed", result.Fetched, result.Failed)
	return result
}

func (f *ExcerptFetcher) fetchExcerpt(articleURL string) (string, error) {
	req, err := http.NewRequest("GET", articleURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "nashra/1.0 (news reader)")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", nil // connection error, not HTTP error
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &httpError{code: resp.StatusCode}
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil
	}

	parsedURL, _ := url.Parse(articleURL)
	article, err := readability.FromReader(strings.NewReader(string(bodyBytes)), parsedURL)
	if err != nil {
		return "", nil
	}

	text := strings.TrimSpace(article.TextContent)
	if len([]rune(text)) < 50 {
		return "", nil
	}
	return truncateExcerpt(text), nil
}

func truncateExcerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= maxExcerptRunes {
		return text
	}
	cut := string(runes[:maxExcerptRunes])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "…"
}

type httpError struct {
	code int
}

func (e *httpError) Error() string {
	return http.StatusText(e.code)
}
