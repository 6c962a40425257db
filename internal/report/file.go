package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultPrefix is the file name prefix of generated reports.
const DefaultPrefix = "relatório"

// FileName builds a timestamped report name, e.g.
// "relatório_2026-02-06_14-30-00.csv".
func FileName(prefix, ext string, now time.Time) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return fmt.Sprintf("%s_%s.%s", prefix, now.Format("2006-01-02_15-04-05"), ext)
}

// WriteFile writes the table to dir/name through a temporary file that is
// renamed into place only after the writer succeeds. On failure nothing is
// left behind.
func WriteFile(dir, name string, w Writer, t *Table) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".lexreport-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := w.Write(tmp, t); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("setting report permissions: %w", err)
	}

	target := filepath.Join(dir, name)
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("moving report into place: %w", err)
	}
	return target, nil
}
