package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/NielsdaWheelz/curator/internal/core"
	"github.com/NielsdaWheelz/curator/internal/errors"
	"github.com/NielsdaWheelz/curator/internal/store"
)

// StatusOpts holds options for the status command.
type StatusOpts struct {
	File   string
	Status string
	Days   int
	Force  bool // skip the file existence check
	JSON   bool
	Quiet  bool
}

type statusResult struct {
	Result   string `json:"result,omitempty"`
	Filename string `json:"filename"`
	Status   string `json:"status"`
	Days     int    `json:"days,omitempty"`
}

// validateUserStatus checks a status given on the command line. Only the
// user-facing statuses (and the legacy alias) are accepted there.
func validateUserStatus(status string, days int) (core.ParsedStatus, error) {
	parsed, err := core.ParseUserStatus(status)
	if err != nil {
		return parsed, err
	}
	if parsed.Status == core.StatusKeep && parsed.Days == 0 && days <= 0 {
		return parsed, errors.NewWithDetails(errors.EInvalidDays,
			"--days must be a positive integer when status is 'keep'",
			map[string]string{"status": status})
	}
	return parsed, nil
}

// Status sets the curation status of one file.
func Status(_ context.Context, env *Env, opts StatusOpts, stdout, _ io.Writer) error {
	if _, err := validateUserStatus(opts.Status, opts.Days); err != nil {
		return err
	}
	rel := store.Key(opts.File)
	if !opts.Force {
		if err := env.requireFile(rel); err != nil {
			return err
		}
	}

	rec, err := env.Store().UpdateStatus(rel, opts.Status, nil, opts.Days)
	if err != nil {
		return err
	}
	out := statusResult{Result: "updated", Filename: opts.File, Status: opts.Status}
	if rec.Status == core.StatusKeep {
		out.Days = rec.KeepDays
	}

	if opts.JSON {
		return writeJSON(stdout, out)
	}
	if !opts.Quiet {
		_, _ = fmt.Fprintf(stdout, "Updated '%s' -> %s%s\n", opts.File, rec.Status, keepSuffix(rec))
	}
	return nil
}

func keepSuffix(rec *store.FileRecord) string {
	if rec.Status != core.StatusKeep {
		return ""
	}
	return fmt.Sprintf(" for %d days (until %s)", rec.KeepDays, rec.ExpiryDate)
}

// StatusBatchOpts holds options for the status-batch command.
type StatusBatchOpts struct {
	Batch  BatchOpts
	Status string
	Days   int
	Force  bool
	JSON   bool
	Quiet  bool
}

// StatusBatch sets one status on many files, reporting per-file results.
// Any per-file failure makes the command exit 2 after all files are tried.
func StatusBatch(_ context.Context, env *Env, opts StatusBatchOpts, stdout, _ io.Writer) error {
	names, err := collectFilenames(env, opts.Batch)
	if err != nil {
		return err
	}
	if _, err := validateUserStatus(opts.Status, opts.Days); err != nil {
		return err
	}

	st := env.Store()
	var summary batchSummary
	for _, name := range names {
		rel := store.Key(name)
		if !opts.Force {
			if err := env.requireFile(rel); err != nil {
				summary.fail(name, err)
				continue
			}
		}
		rec, err := st.UpdateStatus(rel, opts.Status, nil, opts.Days)
		if err != nil {
			summary.fail(name, err)
			continue
		}
		item := statusResult{Result: "updated", Filename: name, Status: opts.Status}
		if rec.Status == core.StatusKeep {
			item.Days = rec.KeepDays
		}
		summary.ok(item)
	}

	return summary.finish(stdout, opts.JSON, opts.Quiet, func(w io.Writer, item any) {
		r := item.(statusResult)
		_, _ = fmt.Fprintf(w, "Updated %s -> %s\n", r.Filename, opts.Status)
	})
}
