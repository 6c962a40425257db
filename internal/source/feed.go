package source

import (
	"context"
	"fmt"
	"html"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"

	"github.com/TobiSchelling/lexreport/internal/article"
)

// FeedSource reads articles from an RSS or Atom feed. The author is the
// first item author, the category the first item category that names one of
// the report categories. Items without inline content have their linked
// page fetched and reduced to text with readability.
type FeedSource struct {
	feedURL     string
	skipUnknown bool
	client      *http.Client
}

// NewFeedSource creates a feed source. With skipUnknown, items without a
// report category are dropped instead of failing the run.
func NewFeedSource(feedURL string, timeout time.Duration, skipUnknown bool) *FeedSource {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &FeedSource{
		feedURL:     feedURL,
		skipUnknown: skipUnknown,
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

// Name implements Source.
func (s *FeedSource) Name() string {
	return s.feedURL
}

// Articles implements Source.
func (s *FeedSource) Articles(ctx context.Context) ([]article.Article, error) {
	parser := gofeed.NewParser()
	parser.Client = s.client
	parser.UserAgent = "lexreport/1.0 (article report)"

	feed, err := parser.ParseURLWithContext(s.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing feed %s: %w", s.feedURL, err)
	}

	var articles []article.Article
	skipped := 0
	for _, item := range feed.Items {
		c, ok := itemCategory(item)
		if !ok {
			if s.skipUnknown {
				skipped++
				continue
			}
			return nil, fmt.Errorf("feed item %q: %w: %s",
				item.Title, article.ErrInvalidCategory, strings.Join(item.Categories, ", "))
		}

		content := itemContent(item)
		if content == "" && item.Link != "" {
			content, err = s.fetchText(ctx, item.Link)
			if err != nil {
				return nil, fmt.Errorf("fetching %s: %w", item.Link, err)
			}
		}

		var date string
		if item.PublishedParsed != nil {
			date = item.PublishedParsed.Format("2006-01-02")
		} else if item.UpdatedParsed != nil {
			date = item.UpdatedParsed.Format("2006-01-02")
		}

		articles = append(articles, article.Article{
			Author:   itemAuthor(item, feed),
			Category: c,
			Content:  content,
			Title:    strings.TrimSpace(item.Title),
			Date:     date,
		})
	}

	if skipped > 0 {
		log.Printf("Skipped %d feed items without a report category", skipped)
	}
	log.Printf("Parsed %d articles from %s", len(articles), s.feedURL)
	return articles, nil
}

func itemCategory(item *gofeed.Item) (article.Category, bool) {
	for _, name := range item.Categories {
		if c, err := article.ParseCategory(name); err == nil {
			return c, true
		}
	}
	return 0, false
}

func itemAuthor(item *gofeed.Item, feed *gofeed.Feed) string {
	for _, p := range item.Authors {
		if p != nil && strings.TrimSpace(p.Name) != "" {
			return strings.TrimSpace(p.Name)
		}
	}
	for _, p := range feed.Authors {
		if p != nil && strings.TrimSpace(p.Name) != "" {
			return strings.TrimSpace(p.Name)
		}
	}
	return ""
}

func itemContent(item *gofeed.Item) string {
	if item.Content != "" {
		return stripHTML(item.Content)
	}
	if item.Description != "" {
		return stripHTML(item.Description)
	}
	return ""
}

// fetchText downloads a page and extracts its main text.
func (s *FeedSource) fetchText(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "lexreport/1.0 (article report)")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	page, err := readability.FromReader(strings.NewReader(string(body)), parsedURL)
	if err != nil {
		// Not an article layout; fall back to the raw page text.
		return stripHTML(string(body)), nil
	}
	return strings.Join(strings.Fields(page.TextContent), " "), nil
}

func stripHTML(text string) string {
	var result strings.Builder
	inTag := false
	for _, r := range text {
		if r == '<' {
			inTag = true
			result.WriteRune(' ')
			continue
		}
		if r == '>' {
			inTag = false
			continue
		}
		if !inTag {
			result.WriteRune(r)
		}
	}

	s := html.UnescapeString(result.String())
	return strings.Join(strings.Fields(s), " ")
}
