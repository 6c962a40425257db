// Package aggregate computes per-author article counts and word averages.
package aggregate

import (
	"fmt"
	"sort"

	"github.com/TobiSchelling/lexreport/internal/article"
)

// Counts holds one value per category, indexed by article.Category.
type Counts [article.NumCategories]int

// Sum returns the total over all categories.
func (c Counts) Sum() int {
	total := 0
	for _, v := range c {
		total += v
	}
	return total
}

// AuthorRow is the aggregated report line for a single author.
type AuthorRow struct {
	Author      string
	Total       int
	Counts      Counts
	OverallAvg  int
	CategoryAvg Counts
}

// Authors returns the distinct authors in ascending lexicographic order.
func Authors(articles []article.Article) []string {
	seen := make(map[string]struct{})
	var authors []string
	for _, a := range articles {
		if _, ok := seen[a.Author]; ok {
			continue
		}
		seen[a.Author] = struct{}{}
		authors = append(authors, a.Author)
	}
	sort.Strings(authors)
	return authors
}

// CountByCategory counts the author's articles in each category.
// Categories without articles yield 0.
func CountByCategory(author string, articles []article.Article) (Counts, error) {
	var counts Counts
	for _, a := range articles {
		if a.Author != author {
			continue
		}
		if !a.Category.Valid() {
			return Counts{}, fmt.Errorf("counting articles by %q: %w: %s", author, article.ErrInvalidCategory, a.Category)
		}
		counts[a.Category]++
	}
	return counts, nil
}

// AverageWords returns the floored mean word count over all of the author's
// articles, or 0 when the author has none.
func AverageWords(author string, articles []article.Article) int {
	return averageWords(articles, func(a article.Article) bool {
		return a.Author == author
	})
}

// AverageWordsIn is AverageWords restricted to one category.
func AverageWordsIn(author string, articles []article.Article, c article.Category) int {
	return averageWords(articles, func(a article.Article) bool {
		return a.Author == author && a.Category == c
	})
}

func averageWords(articles []article.Article, match func(article.Article) bool) int {
	sum, n := 0, 0
	for _, a := range articles {
		if !match(a) {
			continue
		}
		sum += a.WordCount()
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / n
}

// BuildAuthorRow aggregates the author's counts and averages.
func BuildAuthorRow(author string, articles []article.Article) (AuthorRow, error) {
	counts, err := CountByCategory(author, articles)
	if err != nil {
		return AuthorRow{}, err
	}

	row := AuthorRow{
		Author:     author,
		Total:      counts.Sum(),
		Counts:     counts,
		OverallAvg: AverageWords(author, articles),
	}
	for _, c := range article.All() {
		row.CategoryAvg[c] = AverageWordsIn(author, articles, c)
	}
	return row, nil
}
