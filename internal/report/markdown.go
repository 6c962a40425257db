package report

import (
	"bytes"
	"fmt"
	"html"
	"io"

	"github.com/nao1215/markdown"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const reportTitle = "Relatório de artigos por autor"

// MarkdownWriter writes the table as a GitHub-flavored markdown document.
type MarkdownWriter struct{}

// Extension implements Writer.
func (MarkdownWriter) Extension() string { return "md" }

// Write implements Writer.
func (MarkdownWriter) Write(w io.Writer, t *Table) error {
	md := markdown.NewMarkdown(w)
	md.H1(reportTitle)
	md.PlainText("")
	if !t.GeneratedAt.IsZero() {
		md.PlainText("Gerado em " + t.GeneratedAt.Format("2006-01-02 15:04:05"))
		md.PlainText("")
	}

	records := t.Records()
	md.Table(markdown.TableSet{
		Header: records[0],
		Rows:   records[1:],
	})

	if err := md.Build(); err != nil {
		return fmt.Errorf("writing markdown: %w", err)
	}
	return nil
}

var htmlRenderer = goldmark.New(goldmark.WithExtensions(extension.Table))

// HTMLWriter renders the markdown report into a standalone HTML page.
type HTMLWriter struct{}

// Extension implements Writer.
func (HTMLWriter) Extension() string { return "html" }

// Write implements Writer.
func (HTMLWriter) Write(w io.Writer, t *Table) error {
	var src bytes.Buffer
	if err := (MarkdownWriter{}).Write(&src, t); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := htmlRenderer.Convert(src.Bytes(), &body); err != nil {
		return fmt.Errorf("rendering html: %w", err)
	}

	_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s</body>
</html>
`, html.EscapeString(reportTitle), body.String())
	if err != nil {
		return fmt.Errorf("writing html: %w", err)
	}
	return nil
}
