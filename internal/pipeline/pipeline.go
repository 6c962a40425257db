// Package pipeline runs a report end to end: collect articles from the
// configured source, build the table, write every requested format.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/TobiSchelling/lexreport/internal/article"
	"github.com/TobiSchelling/lexreport/internal/report"
	"github.com/TobiSchelling/lexreport/internal/source"
)

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Result holds the results of a report run.
type Result struct {
	Steps []StepResult
	Table *report.Table
	Files []string
}

// Options controls where and how the report is written.
type Options struct {
	OutputDir string
	Prefix    string
	Formats   []report.Format
}

// Pipeline generates reports from a single source.
type Pipeline struct {
	src     source.Source
	opts    Options
	writers []report.Writer
}

// New creates a pipeline. Unknown formats are rejected here so a run never
// fails after part of the output was written.
func New(src source.Source, opts Options) (*Pipeline, error) {
	if len(opts.Formats) == 0 {
		opts.Formats = []report.Format{report.FormatCSV}
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}

	writers := make([]report.Writer, 0, len(opts.Formats))
	for _, f := range opts.Formats {
		w, err := report.NewWriter(f)
		if err != nil {
			return nil, err
		}
		writers = append(writers, w)
	}
	return &Pipeline{src: src, opts: opts, writers: writers}, nil
}

// Run executes collect, build and write. The first failing step stops the
// run and its error is returned.
func (p *Pipeline) Run(ctx context.Context, now time.Time) (*Result, error) {
	r := &Result{}

	articles, step := p.runCollect(ctx)
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		return r, step.Err
	}

	table, step := p.runBuild(articles, now)
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		return r, step.Err
	}
	r.Table = table

	files, step := p.runWrite(table, now)
	r.Steps = append(r.Steps, step)
	r.Files = files
	if step.Err != nil {
		return r, step.Err
	}
	return r, nil
}

// DryRun collects and builds but writes nothing; it reports the files a real
// run would produce.
func (p *Pipeline) DryRun(ctx context.Context, now time.Time) (*Result, error) {
	r := &Result{}

	articles, step := p.runCollect(ctx)
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		return r, step.Err
	}

	table, step := p.runBuild(articles, now)
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		return r, step.Err
	}
	r.Table = table

	for _, w := range p.writers {
		r.Files = append(r.Files, report.FileName(p.opts.Prefix, w.Extension(), now))
	}
	r.Steps = append(r.Steps, StepResult{
		Name:    "Write",
		Summary: fmt.Sprintf("[dry-run] Would write %d file(s) to %s", len(r.Files), p.opts.OutputDir),
	})
	return r, nil
}

func (p *Pipeline) runCollect(ctx context.Context) ([]article.Article, StepResult) {
	log.Printf("Step 1/3: Collecting articles from %s...", p.src.Name())
	articles, err := p.src.Articles(ctx)
	if err != nil {
		return nil, StepResult{Name: "Collect", Err: fmt.Errorf("collecting articles: %w", err)}
	}
	return articles, StepResult{
		Name:    "Collect",
		Summary: fmt.Sprintf("Collected %d articles", len(articles)),
	}
}

func (p *Pipeline) runBuild(articles []article.Article, now time.Time) (*report.Table, StepResult) {
	log.Println("Step 2/3: Aggregating by author...")
	table, err := report.Build(articles)
	if err != nil {
		return nil, StepResult{Name: "Build", Err: fmt.Errorf("building report: %w", err)}
	}
	table.GeneratedAt = now
	return table, StepResult{
		Name:    "Build",
		Summary: fmt.Sprintf("%d authors, %d articles", len(table.Authors), table.Totals.Total),
	}
}

func (p *Pipeline) runWrite(table *report.Table, now time.Time) ([]string, StepResult) {
	log.Println("Step 3/3: Writing report...")
	var files []string
	for _, w := range p.writers {
		name := report.FileName(p.opts.Prefix, w.Extension(), now)
		path, err := report.WriteFile(p.opts.OutputDir, name, w, table)
		if err != nil {
			// Remove what this run already wrote.
			for _, f := range files {
				if rerr := os.Remove(f); rerr != nil {
					log.Printf("Warning: could not remove %s: %v", f, rerr)
				}
			}
			return nil, StepResult{Name: "Write", Err: fmt.Errorf("writing %s: %w", name, err)}
		}
		log.Printf("Wrote %s", path)
		files = append(files, path)
	}
	return files, StepResult{
		Name:    "Write",
		Summary: fmt.Sprintf("Wrote %d file(s)", len(files)),
	}
}
