package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrUnknownFormat is returned for an output format that has no writer.
var ErrUnknownFormat = errors.New("unknown report format")

// Format names an output encoding of the table.
type Format string

// Supported formats.
const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatXLSX     Format = "xlsx"
)

// Writer encodes a table to a destination.
type Writer interface {
	Write(w io.Writer, t *Table) error
	// Extension is the file extension without the dot.
	Extension() string
}

// ParseFormat maps a format name ("md" is accepted for markdown).
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, name)
}

// NewWriter returns the writer for a format.
func NewWriter(f Format) (Writer, error) {
	switch f {
	case FormatCSV:
		return CSVWriter{}, nil
	case FormatMarkdown:
		return MarkdownWriter{}, nil
	case FormatHTML:
		return HTMLWriter{}, nil
	case FormatXLSX:
		return XLSXWriter{}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, f)
}

// CSVWriter writes the header, the author rows and the totals row as CSV.
type CSVWriter struct{}

// Extension implements Writer.
func (CSVWriter) Extension() string { return "csv" }

// Write implements Writer.
func (CSVWriter) Write(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(t.Records()); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}
