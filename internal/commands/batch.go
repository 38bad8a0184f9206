package commands

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"

	"github.com/NielsdaWheelz/curator/internal/errors"
)

// BatchOpts selects the file names a batch command operates on. Sources
// are combined in order: Files, then FromFile, then stdin.
type BatchOpts struct {
	Files    []string
	FromFile string
	Stdin    bool
}

// collectFilenames gathers names from every source, dropping blank lines.
// No names at all is E_NO_FILES.
func collectFilenames(env *Env, opts BatchOpts) ([]string, error) {
	var names []string
	for _, f := range opts.Files {
		if f = strings.TrimSpace(f); f != "" {
			names = append(names, f)
		}
	}
	if opts.FromFile != "" {
		data, err := afero.ReadFile(env.Fs, opts.FromFile)
		if err != nil {
			return nil, errors.WrapWithDetails(errors.EUsage, "failed to read --from-file", err,
				map[string]string{"path": opts.FromFile})
		}
		names = append(names, splitLines(data)...)
	}
	if opts.Stdin && env.Stdin != nil {
		data, err := io.ReadAll(env.Stdin)
		if err != nil {
			return nil, errors.Wrap(errors.EUsage, "failed to read names from stdin", err)
		}
		names = append(names, splitLines(data)...)
	}
	if len(names) == 0 {
		return nil, errors.New(errors.ENoFiles, "No filenames provided (use --files, --from-file, or --stdin).")
	}
	return names, nil
}

func splitLines(data []byte) []string {
	var out []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// batchError is the per-file failure entry in batch output.
type batchError struct {
	Filename string      `json:"filename"`
	Error    string      `json:"error"`
	Code     int         `json:"code"`
	ErrCode  errors.Code `json:"error_code,omitempty"`
}

type batchSummary struct {
	Results []any `json:"results"`
	Updated int   `json:"updated"`
	Failed  int   `json:"failed"`
}

func (s *batchSummary) ok(item any) {
	s.Results = append(s.Results, item)
	s.Updated++
}

func (s *batchSummary) fail(name string, err error) {
	e := batchError{Filename: name, Error: err.Error(), Code: errors.ExitCode(err)}
	if ce, ok := errors.AsCuratorError(err); ok {
		e.Error = ce.Msg
		e.ErrCode = ce.Code
	}
	s.Results = append(s.Results, e)
	s.Failed++
}

// finish writes the summary and returns an exit-2 marker when any item
// failed. writeOK prints one successful item in human mode.
func (s *batchSummary) finish(w io.Writer, asJSON, quiet bool, writeOK func(io.Writer, any)) error {
	if s.Results == nil {
		s.Results = []any{}
	}
	if asJSON {
		if err := writeJSON(w, s); err != nil {
			return err
		}
	} else if !quiet {
		for _, r := range s.Results {
			if e, ok := r.(batchError); ok {
				_, _ = fmt.Fprintf(w, "Error: %s\n", e.Error)
				continue
			}
			writeOK(w, r)
		}
	}
	if s.Failed > 0 {
		return &errors.Reported{Code: 2}
	}
	return nil
}
