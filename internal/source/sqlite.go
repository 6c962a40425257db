package source

import (
	"context"
	"fmt"
	"log"

	"github.com/TobiSchelling/lexreport/internal/article"
	"github.com/TobiSchelling/lexreport/internal/database"
)

// SQLiteSource reads articles from the local article store.
type SQLiteSource struct {
	db       *database.DB
	category string
	author   string
}

// NewSQLiteSource creates a source over db, optionally limited to one category.
func NewSQLiteSource(db *database.DB, category string) *SQLiteSource {
	return &SQLiteSource{db: db, category: category}
}

// WithAuthor limits the source to authors whose name contains author, the
// same substring match the article service applies.
func (s *SQLiteSource) WithAuthor(author string) *SQLiteSource {
	s.author = author
	return s
}

// Name implements Source.
func (s *SQLiteSource) Name() string {
	return s.db.Path()
}

// Articles implements Source.
func (s *SQLiteSource) Articles(_ context.Context) ([]article.Article, error) {
	filter, err := parseFilter(s.category)
	if err != nil {
		return nil, err
	}

	var rows []database.Article
	switch {
	case s.author != "":
		rows, err = s.db.GetArticlesByAuthor(s.author)
	case filter != nil:
		rows, err = s.db.GetArticlesByCategory(filter.String())
	default:
		rows, err = s.db.GetAllArticles()
	}
	if err != nil {
		return nil, fmt.Errorf("reading article store: %w", err)
	}

	records := make([]Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, rowRecord(r))
	}

	articles, err := ToArticles(records)
	if err != nil {
		return nil, err
	}
	if s.author != "" && filter != nil {
		articles = inCategory(articles, *filter)
	}
	log.Printf("Read %d articles from %s", len(articles), s.db.Path())
	return articles, nil
}

// ArticleByID returns one stored article.
func (s *SQLiteSource) ArticleByID(id int64) (article.Article, error) {
	row, err := s.db.GetArticleByID(id)
	if err != nil {
		return article.Article{}, fmt.Errorf("reading article store: %w", err)
	}
	if row == nil {
		return article.Article{}, fmt.Errorf("%w: id %d", ErrArticleNotFound, id)
	}
	articles, err := ToArticles([]Record{rowRecord(*row)})
	if err != nil {
		return article.Article{}, err
	}
	return articles[0], nil
}

func rowRecord(r database.Article) Record {
	rec := Record{
		Title:    r.Title,
		Author:   r.Author,
		Category: r.Category,
		Content:  r.Content,
	}
	if r.Date != nil {
		rec.Date = *r.Date
	}
	return rec
}

// Store writes articles into the article store and returns how many were
// inserted.
func Store(db *database.DB, articles []article.Article) (int, error) {
	rows := make([]database.Article, 0, len(articles))
	for _, a := range articles {
		row := database.Article{
			Title:    a.Title,
			Author:   a.Author,
			Category: a.Category.String(),
			Content:  a.Content,
		}
		if a.Date != "" {
			date := a.Date
			row.Date = &date
		}
		rows = append(rows, row)
	}
	return db.InsertArticles(rows)
}
