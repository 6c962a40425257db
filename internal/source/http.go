package source

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

	"github.com/TobiSchelling/lexreport/internal/article"
)

const maxErrorBody = 4 << 10

// HTTPSource reads articles from the article service REST API.
type HTTPSource struct {
	baseURL  string
	category string
	author   string
	client   *http.Client
}

// NewHTTPSource creates a source for the service at baseURL. A non-empty
// category restricts the request to /articles/category/{category}.
func NewHTTPSource(baseURL string, timeout time.Duration, category string) *HTTPSource {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &HTTPSource{
		baseURL:  strings.TrimRight(baseURL, "/"),
		category: category,
		client:   &http.Client{Timeout: timeout},
	}
}

// WithAuthor restricts the source to /articles/author/{author}, which
// matches author names containing the text. A category set as well is then
// applied locally.
func (s *HTTPSource) WithAuthor(author string) *HTTPSource {
	s.author = author
	return s
}

// Name implements Source.
func (s *HTTPSource) Name() string {
	return s.baseURL
}

func (s *HTTPSource) endpoint(filter *article.Category) string {
	switch {
	case s.author != "":
		return s.baseURL + "/articles/author/" + url.PathEscape(s.author)
	case filter != nil:
		return s.baseURL + "/articles/category/" + url.PathEscape(filter.String())
	}
	return s.baseURL + "/articles"
}

// Articles implements Source. Transport errors are returned as is; there is
// no retry.
func (s *HTTPSource) Articles(ctx context.Context) ([]article.Article, error) {
	filter, err := parseFilter(s.category)
	if err != nil {
		return nil, err
	}
	endpoint := s.endpoint(filter)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "lexreport/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching articles: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(resp)
	}

	records, err := DecodeRecords(resp.Body)
	if err != nil {
		return nil, err
	}

	articles, err := ToArticles(records)
	if err != nil {
		return nil, err
	}
	if s.author != "" && filter != nil {
		articles = inCategory(articles, *filter)
	}
	log.Printf("Fetched %d articles from %s", len(articles), endpoint)
	return articles, nil
}

// statusError turns a failed reply into an error. The service answers an
// unknown category with 400 and {"error": "Invalid category: x"}.
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		if resp.StatusCode == http.StatusBadRequest &&
			strings.HasPrefix(strings.ToLower(payload.Error), "invalid category") {
			value := strings.TrimSpace(payload.Error[strings.Index(payload.Error, ":")+1:])
			return fmt.Errorf("article service: %w: %s", article.ErrInvalidCategory, value)
		}
		return &StatusError{Code: resp.StatusCode, Body: payload.Error}
	}
	return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}
