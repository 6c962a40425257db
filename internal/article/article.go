// Package article defines the legal-article record and the closed set of
// categories every report is indexed by.
package article

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrInvalidCategory is returned when a category is outside the fixed set.
var ErrInvalidCategory = errors.New("invalid category")

// Category is one of the six legal areas an article can belong to.
type Category int

// Categories in report order. Counts and averages are indexed by these values.
const (
	Trabalhista Category = iota
	Tributario
	Comercial
	Penal
	Constitucional
	Civil
)

// NumCategories is the size of the closed category set.
const NumCategories = 6

var categoryNames = [NumCategories]string{
	"Trabalhista",
	"Tributário",
	"Comercial",
	"Penal",
	"Constitucional",
	"Civil",
}

var categoryPlurals = [NumCategories]string{
	"Trabalhistas",
	"Tributários",
	"Comerciais",
	"Penais",
	"Constitucionais",
	"Civis",
}

// All returns every category in report order.
func All() []Category {
	return []Category{Trabalhista, Tributario, Comercial, Penal, Constitucional, Civil}
}

// Valid reports whether c belongs to the closed set.
func (c Category) Valid() bool {
	return c >= 0 && int(c) < NumCategories
}

// String returns the category name as stored by the article service.
func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// Plural returns the plural label used in report headers.
func (c Category) Plural() string {
	if !c.Valid() {
		return c.String()
	}
	return categoryPlurals[c]
}

// ParseCategory maps a category name to its Category. Input is NFC-normalized
// so decomposed accents ("Tributário") still match.
func ParseCategory(s string) (Category, error) {
	name := norm.NFC.String(strings.TrimSpace(s))
	for i, n := range categoryNames {
		if n == name {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrInvalidCategory, s)
}

// Article is a single legal article as delivered by a source.
type Article struct {
	Author   string
	Category Category
	Content  string
	Title    string
	Date     string
}

// WordCount returns the number of whitespace-delimited tokens in the content.
func (a Article) WordCount() int {
	return WordCount(a.Content)
}

// WordCount returns the number of whitespace-delimited tokens in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// Validate checks that every article carries a known category.
func Validate(articles []Article) error {
	for i, a := range articles {
		if !a.Category.Valid() {
			return fmt.Errorf("article %d by %q: %w: %s", i, a.Author, ErrInvalidCategory, a.Category)
		}
	}
	return nil
}
