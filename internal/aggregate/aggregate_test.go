package aggregate

import (
	"errors"
	"testing"

	"github.com/TobiSchelling/lexreport/internal/article"
)

func art(author string, c article.Category, content string) article.Article {
	return article.Article{Author: author, Category: c, Content: content}
}

func TestAuthorsSortedAndDistinct(t *testing.T) {
	articles := []article.Article{
		art("Carla", article.Civil, "x"),
		art("Ana", article.Penal, "x"),
		art("Bruno", article.Civil, "x"),
		art("Ana", article.Civil, "x"),
	}
	got := Authors(articles)
	want := []string{"Ana", "Bruno", "Carla"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestAuthorsEmpty(t *testing.T) {
	if got := Authors(nil); len(got) != 0 {
		t.Errorf("expected no authors, got %v", got)
	}
}

func TestCountByCategory(t *testing.T) {
	articles := []article.Article{
		art("A", article.Civil, "a b c"),
		art("A", article.Penal, "x y"),
		art("A", article.Civil, "z"),
		art("B", article.Civil, "other"),
	}
	counts, err := CountByCategory("A", articles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Counts{0, 0, 0, 1, 0, 2}
	if counts != want {
		t.Errorf("expected %v, got %v", want, counts)
	}
	if counts.Sum() != 3 {
		t.Errorf("expected sum 3, got %d", counts.Sum())
	}
}

func TestCountByCategoryInvalid(t *testing.T) {
	articles := []article.Article{
		art("A", article.Civil, "a"),
		art("A", article.Category(42), "b"),
	}
	_, err := CountByCategory("A", articles)
	if !errors.Is(err, article.ErrInvalidCategory) {
		t.Errorf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestAverageWords(t *testing.T) {
	articles := []article.Article{
		art("A", article.Civil, "one two three"),
		art("A", article.Civil, "one two three four"),
		art("A", article.Penal, "x"),
	}

	// (3 + 4 + 1) / 3 = 2.67 -> 2
	if got := AverageWords("A", articles); got != 2 {
		t.Errorf("expected overall average 2, got %d", got)
	}
	// (3 + 4) / 2 = 3.5 -> 3
	if got := AverageWordsIn("A", articles, article.Civil); got != 3 {
		t.Errorf("expected Civil average 3, got %d", got)
	}
	if got := AverageWordsIn("A", articles, article.Penal); got != 1 {
		t.Errorf("expected Penal average 1, got %d", got)
	}
}

func TestAverageWordsNoArticles(t *testing.T) {
	articles := []article.Article{art("A", article.Civil, "a b")}
	if got := AverageWords("Nobody", articles); got != 0 {
		t.Errorf("expected 0 for unknown author, got %d", got)
	}
	if got := AverageWordsIn("A", articles, article.Tributario); got != 0 {
		t.Errorf("expected 0 for empty category, got %d", got)
	}
}

func TestBuildAuthorRow(t *testing.T) {
	articles := []article.Article{
		art("A", article.Civil, "a b c"),
		art("A", article.Penal, "x y"),
	}
	row, err := BuildAuthorRow("A", articles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if row.Author != "A" {
		t.Errorf("expected author 'A', got %q", row.Author)
	}
	if row.Total != 2 {
		t.Errorf("expected total 2, got %d", row.Total)
	}
	if row.Counts != (Counts{0, 0, 0, 1, 0, 1}) {
		t.Errorf("unexpected counts: %v", row.Counts)
	}
	if row.OverallAvg != 2 {
		t.Errorf("expected overall average 2, got %d", row.OverallAvg)
	}
	if row.CategoryAvg != (Counts{0, 0, 0, 2, 0, 3}) {
		t.Errorf("unexpected category averages: %v", row.CategoryAvg)
	}
}

func TestBuildAuthorRowTotalMatchesCounts(t *testing.T) {
	articles := []article.Article{
		art("A", article.Trabalhista, "a"),
		art("A", article.Tributario, "a b"),
		art("A", article.Comercial, "a b c"),
		art("A", article.Constitucional, ""),
		art("A", article.Constitucional, "a"),
	}
	row, err := BuildAuthorRow("A", articles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row.Total != row.Counts.Sum() {
		t.Errorf("total %d does not match sum of counts %d", row.Total, row.Counts.Sum())
	}
	if row.Total != 5 {
		t.Errorf("expected total 5, got %d", row.Total)
	}
}
