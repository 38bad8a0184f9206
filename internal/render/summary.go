package render

import (
	"fmt"
	"io"
)

// ExpiredRow is one expired keep in human output.
type ExpiredRow struct {
	Filename    string
	KeepDays    int
	ExpiryDate  string
	DaysOverdue int
}

// WriteExpired writes expired keeps, one per line.
func WriteExpired(w io.Writer, rows []ExpiredRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No temporarily kept files have expired.")
		return err
	}
	if _, err := fmt.Fprintln(w, "The following temporarily kept files have expired:"); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "  - %s (kept %s, expired %s, %s overdue)\n",
			r.Filename, plural(r.KeepDays, "day"), r.ExpiryDate, plural(r.DaysOverdue, "day")); err != nil {
			return err
		}
	}
	return nil
}

// WriteTrash writes the trash listing.
func WriteTrash(w io.Writer, names []string) error {
	if len(names) == 0 {
		_, err := fmt.Fprintln(w, "Trash is empty.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Trash contents:"); err != nil {
		return err
	}
	for _, n := range names {
		if _, err := fmt.Fprintf(w, "  - %s\n", n); err != nil {
			return err
		}
	}
	return nil
}

// RuleLine is one matched file in a rules run.
type RuleLine struct {
	Filename string
	Rule     string
	Action   string
	Value    string
	Applied  bool
}

// WriteRulesRun writes per-file matches and the matched/applied/skipped
// summary. dryRun changes the verb only.
func WriteRulesRun(w io.Writer, lines []RuleLine, matched, applied, skipped int, dryRun bool) error {
	for _, l := range lines {
		action := l.Action
		if l.Value != "" {
			action += " " + l.Value
		}
		state := "would apply"
		if !dryRun {
			state = "applied"
			if !l.Applied {
				state = "skipped"
			}
		}
		if _, err := fmt.Fprintf(w, "  - %s: %s [%s] (%s)\n", l.Filename, action, l.Rule, state); err != nil {
			return err
		}
	}
	if dryRun {
		_, err := fmt.Fprintf(w, "Dry run: %s would match.\n", plural(matched, "file"))
		return err
	}
	_, err := fmt.Fprintf(w, "Rules applied: %d matched, %d applied, %d skipped.\n", matched, applied, skipped)
	return err
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
