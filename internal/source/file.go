package source

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/TobiSchelling/lexreport/internal/article"
)

// FileSource reads a JSON export of the article service.
type FileSource struct {
	path string
}

// NewFileSource creates a source for the JSON file at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name implements Source.
func (s *FileSource) Name() string {
	return s.path
}

// Articles implements Source.
func (s *FileSource) Articles(_ context.Context) ([]article.Article, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening articles file: %w", err)
	}
	defer f.Close()

	records, err := DecodeRecords(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	articles, err := ToArticles(records)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	log.Printf("Read %d articles from %s", len(articles), s.path)
	return articles, nil
}
