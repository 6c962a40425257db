// Package source supplies the article records a report is built from.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/TobiSchelling/lexreport/internal/article"
)

// ErrArticleNotFound is returned when a stored article does not exist.
var ErrArticleNotFound = errors.New("article not found")

// Source yields the complete article collection for one report run.
type Source interface {
	Articles(ctx context.Context) ([]article.Article, error)
	Name() string
}

// Record is the JSON shape served by the article service and stored in
// exports.
type Record struct {
	ID       json.Number `json:"id,omitempty"`
	Title    string      `json:"title,omitempty"`
	Author   string      `json:"author"`
	Category string      `json:"category"`
	Content  string      `json:"content"`
	Date     string      `json:"date,omitempty"`
}

// StatusError is returned when the article service answers with a non-2xx
// status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status: %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("unexpected status: %d %s: %s", e.Code, http.StatusText(e.Code), e.Body)
}

// ToArticles converts raw records, failing on the first unknown category.
func ToArticles(records []Record) ([]article.Article, error) {
	articles := make([]article.Article, 0, len(records))
	for i, r := range records {
		c, err := article.ParseCategory(r.Category)
		if err != nil {
			return nil, fmt.Errorf("record %d (%q): %w", i, r.Title, err)
		}
		articles = append(articles, article.Article{
			Author:   r.Author,
			Category: c,
			Content:  r.Content,
			Title:    r.Title,
			Date:     r.Date,
		})
	}
	return articles, nil
}

// FromArticles converts articles back into records, e.g. for export.
func FromArticles(articles []article.Article) []Record {
	records := make([]Record, 0, len(articles))
	for _, a := range articles {
		records = append(records, Record{
			Title:    a.Title,
			Author:   a.Author,
			Category: a.Category.String(),
			Content:  a.Content,
			Date:     a.Date,
		})
	}
	return records
}

// DecodeRecords reads a JSON array of records.
func DecodeRecords(r io.Reader) ([]Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var records []Record
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding articles: %w", err)
	}
	return records, nil
}

// parseFilter parses an optional category filter; "" means no filter.
func parseFilter(category string) (*article.Category, error) {
	if category == "" {
		return nil, nil
	}
	c, err := article.ParseCategory(category)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func inCategory(articles []article.Article, c article.Category) []article.Article {
	var out []article.Article
	for _, a := range articles {
		if a.Category == c {
			out = append(out, a)
		}
	}
	return out
}
