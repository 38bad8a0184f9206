// Package render formats curator results for human output.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Constants for human output formatting.
const (
	// NameMaxLen is the maximum display length for a path in table output.
	NameMaxLen = 60

	// TagsMaxLen is the maximum display length for the tags column.
	TagsMaxLen = 40
)

// Messages shared with scripts that scrape human output.
const (
	FilesHeader = "Files available for review:"
	FilesEmpty  = "No files to review with the current filters."
)

// WriteFileList writes the pending-review list:
//
//	Files available for review:
//	  - a.txt
func WriteFileList(w io.Writer, files []string) error {
	if len(files) == 0 {
		_, err := fmt.Fprintln(w, FilesEmpty)
		return err
	}
	if _, err := fmt.Fprintln(w, FilesHeader); err != nil {
		return err
	}
	for _, f := range files {
		if _, err := fmt.Fprintf(w, "  - %s\n", f); err != nil {
			return err
		}
	}
	return nil
}

// FileRow holds the fields for a single table row.
type FileRow struct {
	Path     string
	Size     string
	Modified string
	Tags     string
}

// FormatFileRow converts raw file facts into display strings.
func FormatFileRow(path string, size int64, modTime time.Time, tags []string, now time.Time) FileRow {
	row := FileRow{
		Path: TruncateForDisplay(path, NameMaxLen),
		Size: humanize.IBytes(uint64(max(size, 0))),
		Tags: TruncateForDisplay(strings.Join(tags, ","), TagsMaxLen),
	}
	if !modTime.IsZero() {
		row.Modified = FormatRelativeTime(modTime, now)
	}
	return row
}

// WriteFileTable writes rows in whitespace-aligned columns with a header.
func WriteFileTable(w io.Writer, rows []FileRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, FilesEmpty)
		return err
	}

	widths := columnWidths(rows)
	if _, err := fmt.Fprintln(w, formatRow(widths, "PATH", "SIZE", "MODIFIED", "TAGS")); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(w, formatRow(widths, row.Path, row.Size, row.Modified, row.Tags)); err != nil {
			return err
		}
	}
	return nil
}

type colWidths struct {
	path     int
	size     int
	modified int
}

func columnWidths(rows []FileRow) colWidths {
	widths := colWidths{
		path:     len("PATH"),
		size:     len("SIZE"),
		modified: len("MODIFIED"),
	}
	for _, row := range rows {
		widths.path = max(widths.path, len([]rune(row.Path)))
		widths.size = max(widths.size, len(row.Size))
		widths.modified = max(widths.modified, len(row.Modified))
	}
	return widths
}

func formatRow(w colWidths, path, size, modified, tags string) string {
	pad := w.path - len([]rune(path)) + len(path)
	line := fmt.Sprintf("%-*s  %*s  %-*s  %s", pad, path, w.size, size, w.modified, modified, tags)
	return strings.TrimRight(line, " ")
}

// FormatRelativeTime formats t relative to now ("3 days ago"). Anything
// older than a month is shown as a date.
func FormatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < 30*24*time.Hour:
		return humanize.RelTime(t, now, "ago", "from now")
	default:
		return t.Format("2006-01-02")
	}
}

// TruncateForDisplay is a helper to safely truncate any string for display.
func TruncateForDisplay(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}
