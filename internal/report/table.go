// Package report builds the per-author article table and writes it out in
// the supported formats.
package report

import (
	"fmt"
	"strconv"
	"time"

	"github.com/TobiSchelling/lexreport/internal/aggregate"
	"github.com/TobiSchelling/lexreport/internal/article"
)

// Table is a finished report: one row per author followed by the totals.
type Table struct {
	Authors []aggregate.AuthorRow
	Totals  aggregate.AuthorRow

	// GeneratedAt is stamped by the caller; zero means unknown.
	GeneratedAt time.Time
}

// Build aggregates the articles into a table. Categories are validated up
// front so an invalid article aborts before any row is produced.
func Build(articles []article.Article) (*Table, error) {
	if err := article.Validate(articles); err != nil {
		return nil, err
	}

	t := &Table{}
	var totals Totals
	for _, author := range aggregate.Authors(articles) {
		row, err := aggregate.BuildAuthorRow(author, articles)
		if err != nil {
			return nil, fmt.Errorf("building row for %q: %w", author, err)
		}
		t.Authors = append(t.Authors, row)
		totals = totals.Add(row)
	}
	t.Totals = totals.Row()
	return t, nil
}

// Header returns the column labels in output order.
func Header() []string {
	h := []string{"Autor", "Artigos totais do Autor"}
	for _, c := range article.All() {
		h = append(h, fmt.Sprintf("Artigos %s do autor", c.Plural()))
	}
	h = append(h, "Média total de palavras do autor")
	for _, c := range article.All() {
		h = append(h, fmt.Sprintf("Média de palavras de artigos %s do autor", c.Plural()))
	}
	return h
}

// Values flattens a row into column order: total, counts, overall average,
// category averages.
func Values(row aggregate.AuthorRow) []int {
	v := make([]int, 0, 2+2*article.NumCategories)
	v = append(v, row.Total)
	v = append(v, row.Counts[:]...)
	v = append(v, row.OverallAvg)
	v = append(v, row.CategoryAvg[:]...)
	return v
}

// Rows returns the author rows followed by the totals row.
func (t *Table) Rows() []aggregate.AuthorRow {
	rows := make([]aggregate.AuthorRow, 0, len(t.Authors)+1)
	rows = append(rows, t.Authors...)
	return append(rows, t.Totals)
}

// Records returns the header and every row as strings.
func (t *Table) Records() [][]string {
	records := [][]string{Header()}
	for _, row := range t.Rows() {
		rec := []string{row.Author}
		for _, v := range Values(row) {
			rec = append(rec, strconv.Itoa(v))
		}
		records = append(records, rec)
	}
	return records
}
