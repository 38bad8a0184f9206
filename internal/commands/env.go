// Package commands implements curator CLI commands.
//
// Each command takes an Env, an Opts struct, and output writers, and
// returns a coded error. Commands print nothing on failure; the caller
// formats the error.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/NielsdaWheelz/curator/internal/config"
	"github.com/NielsdaWheelz/curator/internal/errors"
	"github.com/NielsdaWheelz/curator/internal/events"
	"github.com/NielsdaWheelz/curator/internal/fileops"
	"github.com/NielsdaWheelz/curator/internal/scan"
	"github.com/NielsdaWheelz/curator/internal/store"
	"github.com/NielsdaWheelz/curator/internal/tty"
)

// Env is the per-invocation context shared by all commands.
type Env struct {
	Repo   string // absolute repository root
	Config config.UserConfig
	Logger zerolog.Logger
	Fs     afero.Fs
	Now    func() time.Time

	// Stdin and Interactive drive confirmation prompts.
	Stdin       io.Reader
	Interactive func() bool
}

// NewEnv resolves repo to an absolute directory and returns an Env on the
// OS filesystem.
func NewEnv(repo string, cfg config.UserConfig, logger zerolog.Logger) (*Env, error) {
	if repo == "" {
		repo = "."
	}
	abs, err := filepath.Abs(repo)
	if err != nil {
		return nil, errors.WrapWithDetails(errors.ERepoNotFound, "invalid repository path", err,
			map[string]string{"repo": repo})
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, errors.NewWithDetails(errors.ERepoNotFound,
			"Repository '"+repo+"' does not exist or is not a directory.",
			map[string]string{"repo": abs})
	}
	return &Env{
		Repo:        abs,
		Config:      cfg,
		Logger:      logger,
		Fs:          afero.NewOsFs(),
		Now:         time.Now,
		Stdin:       os.Stdin,
		Interactive: tty.IsInteractive,
	}, nil
}

func (e *Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// Store returns the state store for the repository.
func (e *Env) Store() *store.Store {
	st := store.NewStore(e.Fs, e.Repo, e.Now)
	st.Logger = e.Logger
	return st
}

// Ops returns file operations bound to the repository store.
func (e *Env) Ops() *fileops.Ops {
	ops := fileops.New(e.Store())
	ops.Fs = e.Fs
	ops.Logger = e.Logger
	return ops
}

// Journal returns the repository action journal.
func (e *Env) Journal() *events.Journal {
	j := events.NewJournal(e.Repo)
	j.Now = e.Now
	j.Logger = e.Logger
	return j
}

// Scanner returns a scanner over the repository state.
func (e *Env) Scanner() *scan.Scanner {
	s := scan.New(e.Fs, e.Store())
	s.Logger = e.Logger
	return s
}

// abs returns the absolute path of a repository-relative name.
func (e *Env) abs(rel string) string {
	return filepath.Join(e.Repo, filepath.FromSlash(store.Key(rel)))
}

// requireFile fails with E_FILE_NOT_FOUND unless rel exists in the
// repository.
func (e *Env) requireFile(rel string) error {
	if store.OutsideRoot(store.Key(rel)) {
		return fileNotFound(rel)
	}
	if _, err := e.Fs.Stat(e.abs(rel)); err != nil {
		return fileNotFound(rel)
	}
	return nil
}

func fileNotFound(rel string) error {
	return errors.NewWithDetails(errors.EFileNotFound,
		fmt.Sprintf("File '%s' not found in repository.", rel),
		map[string]string{"path": rel})
}

// record appends a journal event; failures are logged, never returned.
func (e *Env) record(typ events.Type, data any) events.Event {
	ev, _ := e.Journal().Record(typ, data)
	return ev
}

// writeJSON writes v as a single JSON line.
func writeJSON(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(errors.EInternal, "failed to encode JSON output", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
