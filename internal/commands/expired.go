package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/NielsdaWheelz/curator/internal/render"
	"github.com/NielsdaWheelz/curator/internal/store"
)

// ExpiredOpts holds options for the expired command.
type ExpiredOpts struct {
	MarkDecideLater bool // move expired keeps back to decide_later
	JSON            bool
	Quiet           bool
}

type expiredResult struct {
	Expired []string              `json:"expired"`
	Updated *[]string             `json:"updated,omitempty"`
	Details []store.ExpiredDetail `json:"details"`
}

// Expired lists temporary keeps whose expiry has passed, optionally
// returning them to the review queue.
func Expired(_ context.Context, env *Env, opts ExpiredOpts, stdout, _ io.Writer) error {
	st := env.Store()
	now := env.now()
	details := st.ExpiredDetails(now)
	expired := make([]string, len(details))
	for i, d := range details {
		expired[i] = d.Filename
	}

	if !opts.MarkDecideLater {
		if opts.JSON {
			return writeJSON(stdout, expiredResult{Expired: expired, Details: details})
		}
		if opts.Quiet {
			return nil
		}
		rows := make([]render.ExpiredRow, len(details))
		for i, d := range details {
			rows[i] = render.ExpiredRow{Filename: d.Filename, KeepDays: d.KeepDays, ExpiryDate: d.ExpiryDate, DaysOverdue: d.DaysOverdue}
		}
		return render.WriteExpired(stdout, rows)
	}

	updated := []string{}
	if len(expired) > 0 {
		var err error
		updated, err = st.ResetExpired(now)
		if err != nil {
			return err
		}
	}
	if opts.JSON {
		return writeJSON(stdout, expiredResult{Expired: expired, Updated: &updated, Details: details})
	}
	if opts.Quiet {
		return nil
	}
	if len(updated) == 0 {
		_, _ = fmt.Fprintln(stdout, "No expired files to update.")
		return nil
	}
	_, _ = fmt.Fprintln(stdout, "Updated expired files to 'decide_later':")
	for _, f := range updated {
		_, _ = fmt.Fprintf(stdout, "  - %s\n", f)
	}
	return nil
}
