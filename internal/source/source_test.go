package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/TobiSchelling/lexreport/internal/article"
	"github.com/TobiSchelling/lexreport/internal/database"
)

const articlesJSON = `[
  {"id": 2, "title": "Novo CPC", "author": "Bruno", "category": "Civil", "content": "a b c d", "date": "2026-02-05"},
  {"id": 1, "title": "Reforma", "author": "Ana", "category": "Tributário", "content": "x y", "date": "2026-02-01"}
]`

func TestToArticles(t *testing.T) {
	articles, err := ToArticles([]Record{
		{Author: "Ana", Category: "Penal", Content: "a b"},
		{Author: "Bruno", Category: "Tributário", Content: "c"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if articles[0].Category != article.Penal || articles[1].Category != article.Tributario {
		t.Errorf("unexpected categories: %v, %v", articles[0].Category, articles[1].Category)
	}
}

func TestToArticlesInvalidCategory(t *testing.T) {
	_, err := ToArticles([]Record{{Author: "Ana", Category: "Administrativo"}})
	if !errors.Is(err, article.ErrInvalidCategory) {
		t.Errorf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/articles" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, articlesJSON)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL+"/", time.Second, "")
	articles, err := src.Articles(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}
	if articles[0].Author != "Bruno" || articles[0].Category != article.Civil {
		t.Errorf("unexpected first article %+v", articles[0])
	}
	if articles[1].Title != "Reforma" || articles[1].Date != "2026-02-01" {
		t.Errorf("unexpected second article %+v", articles[1])
	}
}

func TestHTTPSourceCategoryEndpoint(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `[{"author": "Ana", "category": "Penal", "content": "a"}]`)
	}))
	defer srv.Close()

	articles, err := NewHTTPSource(srv.URL, time.Second, "Penal").Articles(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/articles/category/Penal" {
		t.Errorf("unexpected request path %q", gotPath)
	}
	if len(articles) != 1 {
		t.Errorf("expected 1 article, got %d", len(articles))
	}
}

func TestHTTPSourceSendsCanonicalCategory(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	// Decomposed spelling: "a" followed by a combining acute accent.
	if _, err := NewHTTPSource(srv.URL, time.Second, "Tributa\u0301rio").Articles(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/articles/category/Tribut\u00e1rio" {
		t.Errorf("expected composed category in path, got %q", gotPath)
	}
}

func TestHTTPSourceAuthorEndpoint(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `[
		  {"author": "Ana Souza", "category": "Penal", "content": "a"},
		  {"author": "Ana Souza", "category": "Civil", "content": "b c"}
		]`)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, time.Second, "").WithAuthor("Ana Souza")
	articles, err := src.Articles(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/articles/author/Ana Souza" {
		t.Errorf("unexpected request path %q", gotPath)
	}
	if len(articles) != 2 {
		t.Errorf("expected 2 articles, got %d", len(articles))
	}

	civil, err := NewHTTPSource(srv.URL, time.Second, "Civil").WithAuthor("Ana").Articles(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/articles/author/Ana" {
		t.Errorf("expected author endpoint when both filters are set, got %q", gotPath)
	}
	if len(civil) != 1 || civil[0].Category != article.Civil {
		t.Errorf("expected only the Civil article, got %+v", civil)
	}
}

func TestHTTPSourceInvalidCategoryReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": "Invalid category: Civil"}`)
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL, time.Second, "Civil").Articles(context.Background())
	if !errors.Is(err, article.ErrInvalidCategory) {
		t.Errorf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestHTTPSourceRejectsUnknownCategoryLocally(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL, time.Second, "invalidCategory").Articles(context.Background())
	if !errors.Is(err, article.ErrInvalidCategory) {
		t.Errorf("expected ErrInvalidCategory, got %v", err)
	}
	if called {
		t.Error("expected no request for an unknown category")
	}
}

func TestHTTPSourceServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "database down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL, time.Second, "").Articles(context.Background())
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", se.Code)
	}
	if !strings.Contains(se.Body, "database down") {
		t.Errorf("expected body in error, got %q", se.Body)
	}
}

func TestHTTPSourceUnknownCategoryInPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"author": "Ana", "category": "Eleitoral", "content": "a"}]`)
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL, time.Second, "").Articles(context.Background())
	if !errors.Is(err, article.ErrInvalidCategory) {
		t.Errorf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestHTTPSourceUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	if _, err := NewHTTPSource(url, time.Second, "").Articles(context.Background()); err == nil {
		t.Error("expected transport error")
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "articles.json")
	if err := os.WriteFile(path, []byte(articlesJSON), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	articles, err := NewFileSource(path).Articles(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(articles) != 2 {
		t.Errorf("expected 2 articles, got %d", len(articles))
	}
}

func TestFileSourceMissing(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "nope.json")).Articles(context.Background())
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteSourceRoundTrip(t *testing.T) {
	db := openTestDB(t)
	n, err := Store(db, []article.Article{
		{Author: "Ana", Category: article.Civil, Content: "a b", Title: "T1", Date: "2026-01-01"},
		{Author: "Bruno", Category: article.Penal, Content: "c", Title: "T2"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 stored, got %d", n)
	}

	all, err := NewSQLiteSource(db, "").Articles(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(all))
	}

	penal, err := NewSQLiteSource(db, "Penal").Articles(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(penal) != 1 || penal[0].Author != "Bruno" {
		t.Errorf("expected Bruno's Penal article, got %+v", penal)
	}
}

func TestSQLiteSourceInvalidStoredCategory(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.InsertArticles([]database.Article{
		{Title: "T", Author: "Ana", Category: "Eleitoral", Content: "a"},
	}); err != nil {
		t.Fatalf("failed to insert: %v", err)
	}

	_, err := NewSQLiteSource(db, "").Articles(context.Background())
	if !errors.Is(err, article.ErrInvalidCategory) {
		t.Errorf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestFromArticlesReadsBack(t *testing.T) {
	in := []article.Article{
		{Author: "Ana", Category: article.Tributario, Content: "a b", Title: "T", Date: "2026-02-01"},
	}
	out, err := ToArticles(FromArticles(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0] != in[0] {
		t.Errorf("expected %+v, got %+v", in, out)
	}
}

func TestSQLiteSourceAuthorFilter(t *testing.T) {
	db := openTestDB(t)
	if _, err := Store(db, []article.Article{
		{Author: "Ana Souza", Category: article.Civil, Content: "a"},
		{Author: "Ana Souza", Category: article.Penal, Content: "b"},
		{Author: "Bruno Lima", Category: article.Civil, Content: "c"},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	souza, err := NewSQLiteSource(db, "").WithAuthor("Souza").Articles(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(souza) != 2 {
		t.Errorf("expected 2 articles by Souza, got %d", len(souza))
	}

	civil, err := NewSQLiteSource(db, "Civil").WithAuthor("Souza").Articles(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(civil) != 1 || civil[0].Author != "Ana Souza" || civil[0].Category != article.Civil {
		t.Errorf("expected Ana Souza's Civil article, got %+v", civil)
	}
}

func TestSQLiteSourceArticleByID(t *testing.T) {
	db := openTestDB(t)
	if _, err := Store(db, []article.Article{
		{Author: "Ana", Category: article.Constitucional, Content: "a b", Title: "Rios", Date: "2026-02-01"},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows, err := db.GetAllArticles()
	if err != nil || len(rows) != 1 {
		t.Fatalf("expected one stored row, got %d (%v)", len(rows), err)
	}

	src := NewSQLiteSource(db, "")
	a, err := src.ArticleByID(rows[0].ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Title != "Rios" || a.Category != article.Constitucional || a.Date != "2026-02-01" {
		t.Errorf("unexpected article %+v", a)
	}

	if _, err := src.ArticleByID(rows[0].ID + 100); !errors.Is(err, ErrArticleNotFound) {
		t.Errorf("expected ErrArticleNotFound, got %v", err)
	}
}
