package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// WikipediaExtractor fetches article plain text through the MediaWiki
// extracts API.
type WikipediaExtractor struct {
	httpClient *http.Client
	baseURL    string // e.g. https://en.wikipedia.org/w/api.php
	userAgent  string
}

// NewWikipediaExtractor creates an extractor for the given language edition.
func NewWikipediaExtractor(lang string) *WikipediaExtractor {
	if lang == "" {
		lang = "en"
	}
	return &WikipediaExtractor{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:   fmt.Sprintf("https://%s.wikipedia.org/w/api.php", lang),
		userAgent: websiteUserAgent,
	}
}

// Extract fetches the article with the given title and returns its plain
// text. A missing page fails with title suggestions in the error; a
// disambiguation page fails with the list of meanings it points to.
func (e *WikipediaExtractor) Extract(ctx context.Context, title string) (string, error) {
	query := url.Values{}
	query.Set("action", "query")
	query.Set("prop", "extracts")
	query.Set("explaintext", "1")
	query.Set("redirects", "1")
	query.Set("titles", title)
	query.Set("format", "json")

	body, err := e.get(ctx, query)
	if err != nil {
		return "", err
	}

	var result struct {
		Query struct {
			Pages map[string]struct {
				Title   string    `json:"title"`
				Missing *struct{} `json:"missing"`
				Extract string    `json:"extract"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("wikipedia JSON parse error for %q: %w", title, err)
	}

	for pageID, page := range result.Query.Pages {
		if pageID == "-1" || page.Missing != nil {
			return "", e.missingPageError(ctx, title)
		}
		if isDisambiguation(page.Extract) {
			return "", fmt.Errorf("the title %q is ambiguous. Possible options: %s",
				title, disambiguationOptions(page.Extract))
		}
		if page.Extract == "" {
			return "", fmt.Errorf("wikipedia article %q has no content", title)
		}
		log.Printf("✅ [WIKIPEDIA] Fetched article %q (%d chars)", page.Title, len(page.Extract))
		return page.Extract, nil
	}

	return "", e.missingPageError(ctx, title)
}

// missingPageError builds the failure for a page that does not exist,
// including similar titles when the search API has any.
func (e *WikipediaExtractor) missingPageError(ctx context.Context, title string) error {
	suggestions, err := e.search(ctx, title)
	if err != nil || len(suggestions) == 0 {
		return fmt.Errorf("the page %q does not exist on Wikipedia", title)
	}
	return fmt.Errorf("the page %q does not exist on Wikipedia. Similar titles: %s",
		title, strings.Join(suggestions, ", "))
}

// search runs a MediaWiki full-text search and returns up to five titles.
func (e *WikipediaExtractor) search(ctx context.Context, term string) ([]string, error) {
	query := url.Values{}
	query.Set("action", "query")
	query.Set("list", "search")
	query.Set("srsearch", term)
	query.Set("srlimit", "5")
	query.Set("format", "json")

	body, err := e.get(ctx, query)
	if err != nil {
		return nil, err
	}

	var root struct {
		Query struct {
			Search []struct {
				Title string `json:"title"`
			} `json:"search"`
		} `json:"query"`
	}
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(root.Query.Search))
	for _, hit := range root.Query.Search {
		titles = append(titles, hit.Title)
	}
	return titles, nil
}

func (e *WikipediaExtractor) get(ctx context.Context, query url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", e.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wikipedia request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wikipedia API returned HTTP %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, defaultMaxBodySize))
}

// isDisambiguation spots the stock phrasing of disambiguation pages.
func isDisambiguation(extract string) bool {
	head := extract
	if len(head) > 400 {
		head = head[:400]
	}
	return strings.Contains(head, "may refer to:") || strings.Contains(head, "most commonly refers to:")
}

// disambiguationOptions returns the first few listed meanings of a
// disambiguation page as a comma-separated string.
func disambiguationOptions(extract string) string {
	_, rest, ok := strings.Cut(extract, "refer to:")
	if !ok {
		return "see the disambiguation page"
	}
	var options []string
	for _, line := range strings.Split(rest, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		options = append(options, line)
		if len(options) == 5 {
			break
		}
	}
	return strings.Join(options, ", ")
}
