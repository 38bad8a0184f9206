// Package watch monitors a repository for file changes and reports settled
// batches of changed paths.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/NielsdaWheelz/curator/internal/errors"
)

// DefaultDebounce is the quiet period after the last event before a batch
// is delivered.
const DefaultDebounce = 500 * time.Millisecond

// Options contains watcher settings.
type Options struct {
	Recursive bool
	Debounce  time.Duration // zero means DefaultDebounce
	Logger    zerolog.Logger
}

// Watcher watches one repository root.
type Watcher struct {
	root     string
	opts     Options
	fsw      *fsnotify.Watcher
	logger   zerolog.Logger
	debounce time.Duration
}

// New creates a watcher and registers the root (and, when recursive, every
// non-hidden subdirectory). Watches are in place when New returns.
func New(root string, opts Options) (*Watcher, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, errors.NewWithDetails(errors.ERepoNotFound,
			"Repository '"+root+"' does not exist or is not a directory.",
			map[string]string{"repo": root})
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(errors.EInternal, "failed to create file watcher", err)
	}
	w := &Watcher{
		root:     root,
		opts:     opts,
		fsw:      fsw,
		logger:   opts.Logger.With().Str("component", "watch").Logger(),
		debounce: opts.Debounce,
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if err := w.addTree(root); err != nil {
		_ = fsw.Close()
		return nil, errors.WrapWithDetails(errors.EInternal, "failed to watch repository", err,
			map[string]string{"repo": root})
	}
	return w, nil
}

// addTree adds dir, and its non-hidden subdirectories when recursive.
func (w *Watcher) addTree(dir string) error {
	if err := w.fsw.Add(dir); err != nil {
		return err
	}
	if !w.opts.Recursive {
		return nil
	}
	return filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			w.logger.Debug().Err(err).Str("path", p).Msg("skipping unreadable directory")
			if d != nil && d.IsDir() && p != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() || p == dir {
			return nil
		}
		if hidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			w.logger.Warn().Err(err).Str("path", p).Msg("failed to watch directory")
		}
		return nil
	})
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// relevant reports whether an event path should count as a change. Hidden
// files (the state file, journal and trash among them) never do.
func (w *Watcher) relevant(p string) bool {
	rel, err := filepath.Rel(w.root, p)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if hidden(part) {
			return false
		}
	}
	return true
}

// Run delivers batches of changed paths (relative to the root, sorted) to
// onChange after each quiet period, until ctx is done. onChange runs on the
// Run goroutine. Run closes the watcher on return.
func (w *Watcher) Run(ctx context.Context, onChange func(paths []string)) error {
	defer func() { _ = w.fsw.Close() }()

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event.Name) {
				continue
			}
			if w.opts.Recursive && event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						w.logger.Warn().Err(err).Str("path", event.Name).Msg("failed to watch new directory")
					}
				}
			}
			rel, _ := filepath.Rel(w.root, event.Name)
			pending[filepath.ToSlash(rel)] = struct{}{}
			w.logger.Debug().Str("path", rel).Str("op", event.Op.String()).Msg("change")
			if fire != nil && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			batch := make([]string, 0, len(pending))
			for p := range pending {
				batch = append(batch, p)
			}
			sort.Strings(batch)
			pending = make(map[string]struct{})
			if onChange != nil {
				onChange(batch)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("watch error")
		}
	}
}

// Run watches root until ctx is done, calling onChange with each settled
// batch of changes.
func Run(ctx context.Context, root string, opts Options, onChange func(paths []string)) error {
	w, err := New(root, opts)
	if err != nil {
		return err
	}
	return w.Run(ctx, onChange)
}
