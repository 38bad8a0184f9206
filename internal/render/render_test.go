package render

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestWriteFileList(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFileList(&buf, []string{"a.txt", "sub/b.txt"}); err != nil {
		t.Fatal(err)
	}
	want := "Files available for review:\n  - a.txt\n  - sub/b.txt\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}

	buf.Reset()
	_ = WriteFileList(&buf, nil)
	if buf.String() != FilesEmpty+"\n" {
		t.Errorf("empty list = %q", buf.String())
	}
}

func TestFormatFileRow(t *testing.T) {
	row := FormatFileRow("report.pdf", 1536, now.Add(-3*24*time.Hour), []string{"work", "q2"}, now)
	if row.Size != "1.5 KiB" {
		t.Errorf("Size = %q", row.Size)
	}
	if row.Modified != "3 days ago" {
		t.Errorf("Modified = %q", row.Modified)
	}
	if row.Tags != "work,q2" {
		t.Errorf("Tags = %q", row.Tags)
	}

	old := FormatFileRow("x", 0, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), nil, now)
	if old.Modified != "2024-01-02" {
		t.Errorf("old Modified = %q", old.Modified)
	}
	if old.Size != "0 B" {
		t.Errorf("zero Size = %q", old.Size)
	}
}

func TestWriteFileTableAligned(t *testing.T) {
	rows := []FileRow{
		{Path: "a.txt", Size: "1 B", Modified: "just now"},
		{Path: "longer-name.txt", Size: "10 KiB", Modified: "2 days ago", Tags: "x"},
	}
	var buf bytes.Buffer
	if err := WriteFileTable(&buf, rows); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	col := strings.Index(lines[0], "SIZE")
	for _, l := range lines[1:] {
		if strings.Index(l, "B") > col+len("SIZE") {
			t.Errorf("size column misaligned:\n%s", buf.String())
		}
	}
	if strings.HasSuffix(lines[1], " ") {
		t.Error("trailing whitespace in row")
	}
}

func TestTruncateForDisplay(t *testing.T) {
	if got := TruncateForDisplay("héllo wörld", 6); got != "héllo…" {
		t.Errorf("got %q", got)
	}
	if got := TruncateForDisplay("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
}

func TestWriteExpiredAndTrash(t *testing.T) {
	var buf bytes.Buffer
	_ = WriteExpired(&buf, []ExpiredRow{{Filename: "a.txt", KeepDays: 1, ExpiryDate: "2025-05-01", DaysOverdue: 31}})
	if !strings.HasPrefix(buf.String(), "The following temporarily kept files have expired:\n") ||
		!strings.Contains(buf.String(), "a.txt (kept 1 day, expired 2025-05-01, 31 days overdue)") {
		t.Errorf("expired output:\n%s", buf.String())
	}

	buf.Reset()
	_ = WriteTrash(&buf, nil)
	if buf.String() != "Trash is empty.\n" {
		t.Errorf("empty trash = %q", buf.String())
	}
	buf.Reset()
	_ = WriteTrash(&buf, []string{"x.txt"})
	if buf.String() != "Trash contents:\n  - x.txt\n" {
		t.Errorf("trash = %q", buf.String())
	}
}

func TestWriteRulesRun(t *testing.T) {
	lines := []RuleLine{
		{Filename: "old.log", Rule: "Logs", Action: "delete", Applied: true},
		{Filename: "a.pdf", Rule: "PDFs", Action: "add_tag", Value: "docs", Applied: false},
	}
	var buf bytes.Buffer
	_ = WriteRulesRun(&buf, lines, 2, 1, 1, false)
	out := buf.String()
	if !strings.Contains(out, "old.log: delete [Logs] (applied)") ||
		!strings.Contains(out, "a.pdf: add_tag docs [PDFs] (skipped)") ||
		!strings.Contains(out, "2 matched, 1 applied, 1 skipped") {
		t.Errorf("output:\n%s", out)
	}

	buf.Reset()
	_ = WriteRulesRun(&buf, lines[:1], 1, 0, 0, true)
	if !strings.Contains(buf.String(), "(would apply)") || !strings.Contains(buf.String(), "1 file would match") {
		t.Errorf("dry run output:\n%s", buf.String())
	}
}
