package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/NielsdaWheelz/curator/internal/watch"
)

// WatchOpts holds options for the watch command.
type WatchOpts struct {
	Recursive bool
	Debounce  time.Duration
	Include   []string
	Exclude   []string
	Quiet     bool
}

// Watch reports the number of files awaiting review, then re-scans after
// every settled batch of changes until ctx is cancelled.
func Watch(ctx context.Context, env *Env, opts WatchOpts, stdout, _ io.Writer) error {
	scanOpts := ScanOpts{Recursive: opts.Recursive, Include: opts.Include, Exclude: opts.Exclude}
	so, err := env.scanOptions(scanOpts)
	if err != nil {
		return err
	}
	scanner := env.Scanner()

	pending := func() (int, error) {
		so.Now = env.now()
		files, err := scanner.Scan(env.Repo, so)
		return len(files), err
	}

	n, err := pending()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(stdout, "Watching %s: %d file(s) awaiting review.\n", env.Repo, n)

	w, err := watch.New(env.Repo, watch.Options{
		Recursive: so.Recursive,
		Debounce:  opts.Debounce,
		Logger:    env.Logger,
	})
	if err != nil {
		return err
	}
	return w.Run(ctx, func(changed []string) {
		n, err := pending()
		if err != nil {
			env.Logger.Warn().Err(err).Msg("rescan failed")
			return
		}
		if opts.Quiet {
			_, _ = fmt.Fprintf(stdout, "%d\n", n)
			return
		}
		_, _ = fmt.Fprintf(stdout, "%d file(s) awaiting review (changed: %s)\n", n, summarize(changed, 5))
	})
}

// summarize joins up to limit names, noting how many were left out.
func summarize(names []string, limit int) string {
	if len(names) <= limit {
		return strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s, +%d more", strings.Join(names[:limit], ", "), len(names)-limit)
}
