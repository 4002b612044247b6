package acquire

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gocolly/colly"
)

const fetchUserAgent = "librettist/1.0 (opera libretto tool)"

// fetchFunc fetches a page and returns its body. Adapters take one so
// tests can feed static HTML.
type fetchFunc func(url string) ([]byte, error)

// fetchHTML fetches a single page with colly, retrying transient
// failures with a flat backoff.
func fetchHTML(url string) ([]byte, error) {
	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.UserAgent(fetchUserAgent),
	)
	c.SetRequestTimeout(30 * time.Second)

	var body []byte
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		slog.Warn("fetch failed", "url", r.Request.URL, "status", r.StatusCode, "error", err)
	})

	var err error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			time.Sleep(2 * time.Second)
		}
		if err = c.Visit(url); err == nil {
			slog.Info("fetched page", "url", url, "bytes", len(body))
			return body, nil
		}
	}
	return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
}
