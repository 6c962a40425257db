package report

import (
	"math"

	"github.com/TobiSchelling/lexreport/internal/aggregate"
	"github.com/TobiSchelling/lexreport/internal/article"
)

// TotalLabel is the author cell of the closing row.
const TotalLabel = "Total"

// runningMean is an incremental mean over the non-zero values seen so far.
type runningMean struct {
	avg float64
	n   int
}

// add folds v into the mean. A zero value counts as "no data" and is skipped,
// so an author without articles in a column does not pull its mean down.
func (m runningMean) add(v int) runningMean {
	if v == 0 {
		return m
	}
	n := m.n + 1
	return runningMean{
		avg: m.avg + (float64(v)-m.avg)/float64(n),
		n:   n,
	}
}

func (m runningMean) floor() int {
	return int(math.Floor(m.avg))
}

// Totals accumulates author rows into the closing "Total" row in a single
// pass. Add returns a new value and never modifies the receiver.
type Totals struct {
	total      int
	counts     aggregate.Counts
	overall    runningMean
	byCategory [article.NumCategories]runningMean
}

// Add folds one author row into the totals.
func (t Totals) Add(row aggregate.AuthorRow) Totals {
	next := t
	next.total += row.Total
	for i, v := range row.Counts {
		next.counts[i] += v
	}
	next.overall = t.overall.add(row.OverallAvg)
	for i, v := range row.CategoryAvg {
		next.byCategory[i] = t.byCategory[i].add(v)
	}
	return next
}

// Contributors returns how many authors fed the overall average and each
// category average.
func (t Totals) Contributors() (overall int, byCategory aggregate.Counts) {
	for i, m := range t.byCategory {
		byCategory[i] = m.n
	}
	return t.overall.n, byCategory
}

// Row returns the totals with every running mean floored.
func (t Totals) Row() aggregate.AuthorRow {
	row := aggregate.AuthorRow{
		Author:     TotalLabel,
		Total:      t.total,
		Counts:     t.counts,
		OverallAvg: t.overall.floor(),
	}
	for i, m := range t.byCategory {
		row.CategoryAvg[i] = m.floor()
	}
	return row
}
