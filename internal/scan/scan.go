// Package scan produces the ordered list of files awaiting a decision.
package scan

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/NielsdaWheelz/curator/internal/errors"
	"github.com/NielsdaWheelz/curator/internal/store"
)

// IgnoreFileName is the optional per-repository ignore list.
const IgnoreFileName = ".curatorignore"

// SortBy selects the sort key.
type SortBy string

const (
	SortName SortBy = "name"
	SortDate SortBy = "date"
	SortSize SortBy = "size"
)

// SortOrder selects ascending or descending order.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// ParseSortBy validates a sort key; empty means name.
func ParseSortBy(s string) (SortBy, error) {
	switch SortBy(strings.ToLower(s)) {
	case "", SortName:
		return SortName, nil
	case SortDate:
		return SortDate, nil
	case SortSize:
		return SortSize, nil
	}
	return "", errors.New(errors.EUsage, "invalid sort key '"+s+"' (expected name, date or size)")
}

// ParseSortOrder validates a sort order; empty means asc.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(s)) {
	case "", Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	}
	return "", errors.New(errors.EUsage, "invalid sort order '"+s+"' (expected asc or desc)")
}

// Options controls a scan.
type Options struct {
	FilterTerm string
	SortBy     SortBy
	SortOrder  SortOrder
	Recursive  bool
	Include    []string
	Exclude    []string
	// Ignore holds extra ignore globs applied alongside the ignore file.
	Ignore         []string
	IncludeExpired bool
	// Now is the reference time for expiry; zero means time.Now().
	Now time.Time
}

// Entry is one scan result.
type Entry struct {
	Path    string // forward-slash relative path
	Size    int64
	ModTime time.Time
	Tags    []string
}

// StateLoader supplies the current state document.
type StateLoader interface {
	Load() *store.Document
}

// Scanner enumerates a repository through an afero filesystem.
type Scanner struct {
	Fs     afero.Fs
	State  StateLoader
	Logger zerolog.Logger
}

// New returns a Scanner.
func New(fsys afero.Fs, state StateLoader) *Scanner {
	return &Scanner{Fs: fsys, State: state, Logger: zerolog.Nop()}
}

// Scan returns the relative paths awaiting a decision, filtered and sorted
// per opts. An empty directory yields an empty slice.
func (s *Scanner) Scan(root string, opts Options) ([]string, error) {
	entries, err := s.ScanEntries(root, opts)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Path
	}
	return out, nil
}

// ScanEntries is Scan with size, modification time and tags attached.
func (s *Scanner) ScanEntries(root string, opts Options) ([]Entry, error) {
	info, err := s.Fs.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, errors.WrapWithDetails(errors.ERepoNotFound, "repository not found or not a directory", err,
			map[string]string{"repo": root})
	}

	candidates, err := s.enumerate(root, opts.Recursive)
	if err != nil {
		return nil, err
	}

	exclude := CompilePatterns(opts.Exclude)
	ignore := CompilePatterns(append(s.readIgnoreFile(root), opts.Ignore...))
	include := CompilePatterns(opts.Include)

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	var doc *store.Document
	if s.State != nil {
		doc = s.State.Load()
	} else {
		doc = store.NewDocument()
	}

	term := strings.ToLower(opts.FilterTerm)
	out := make([]Entry, 0, len(candidates))
	for _, e := range candidates {
		if MatchAny(exclude, e.Path) || MatchAny(ignore, e.Path) {
			continue
		}
		if len(include) > 0 && !MatchAny(include, e.Path) {
			continue
		}
		rec, ok := doc.Get(e.Path)
		if ok && !s.awaitingDecision(e.Path, rec, opts.IncludeExpired, now) {
			continue
		}
		if ok {
			e.Tags = append([]string{}, rec.Tags...)
		}
		if term != "" && !matchesTerm(e, term) {
			continue
		}
		out = append(out, e)
	}

	sortEntries(out, opts.SortBy, opts.SortOrder)
	return out, nil
}

// awaitingDecision applies the state cross-reference for a well-formed
// record. Malformed records never reach here and count as undecided.
func (s *Scanner) awaitingDecision(rel string, rec *store.FileRecord, includeExpired bool, now time.Time) bool {
	if rec.Status.AwaitingDecision() {
		return true
	}
	if !includeExpired {
		return false
	}
	expired, err := store.Expired(rec, now)
	if err != nil {
		s.Logger.Warn().Str("path", rel).Str("expiry_date", rec.ExpiryDate).
			Msg("invalid expiry date; treating as not expired")
		return false
	}
	return expired
}

func matchesTerm(e Entry, term string) bool {
	if strings.Contains(strings.ToLower(e.Path), term) {
		return true
	}
	for _, t := range e.Tags {
		if strings.Contains(strings.ToLower(t), term) {
			return true
		}
	}
	return false
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// enumerate lists candidate files in walk order. Hidden entries are skipped
// and hidden directories are not descended into.
func (s *Scanner) enumerate(root string, recursive bool) ([]Entry, error) {
	var out []Entry
	if !recursive {
		infos, err := afero.ReadDir(s.Fs, root)
		if err != nil {
			return nil, errors.WrapWithDetails(errors.ERepoNotFound, "failed to read repository", err,
				map[string]string{"repo": root})
		}
		for _, info := range infos {
			if hidden(info.Name()) {
				continue
			}
			if fi, ok := s.regularFile(filepath.Join(root, info.Name()), info); ok {
				out = append(out, Entry{Path: info.Name(), Size: fi.Size(), ModTime: fi.ModTime()})
			}
		}
		return out, nil
	}

	err := afero.Walk(s.Fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			// unreadable subtrees are skipped, not fatal
			s.Logger.Debug().Err(err).Str("path", p).Msg("skipping unreadable entry")
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if p == root {
			return nil
		}
		if hidden(info.Name()) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}
		fi, ok := s.regularFile(p, info)
		if !ok {
			return nil
		}
		rel, rerr := filepath.Rel(root, p)
		if rerr != nil {
			return nil
		}
		out = append(out, Entry{Path: filepath.ToSlash(rel), Size: fi.Size(), ModTime: fi.ModTime()})
		return nil
	})
	if err != nil {
		return nil, errors.WrapWithDetails(errors.ERepoNotFound, "failed to walk repository", err,
			map[string]string{"repo": root})
	}
	return out, nil
}

// regularFile resolves symlinks and reports whether p is a regular file.
func (s *Scanner) regularFile(p string, info os.FileInfo) (os.FileInfo, bool) {
	if info.Mode()&os.ModeSymlink != 0 {
		target, err := s.Fs.Stat(p)
		if err != nil {
			return nil, false
		}
		info = target
	}
	if !info.Mode().IsRegular() {
		return nil, false
	}
	return info, true
}

// readIgnoreFile returns the patterns in the ignore file, if any.
func (s *Scanner) readIgnoreFile(root string) []string {
	data, err := afero.ReadFile(s.Fs, filepath.Join(root, IgnoreFileName))
	if err != nil {
		return nil
	}
	return ParseIgnore(data)
}

// ParseIgnore splits ignore-file content into patterns, dropping blank
// lines and # comments.
func ParseIgnore(data []byte) []string {
	var out []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

func sortEntries(entries []Entry, by SortBy, order SortOrder) {
	less := func(a, b Entry) bool {
		switch by {
		case SortDate:
			return a.ModTime.Before(b.ModTime)
		case SortSize:
			return a.Size < b.Size
		default:
			return strings.ToLower(a.Path) < strings.ToLower(b.Path)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if order == Desc {
			return less(entries[j], entries[i])
		}
		return less(entries[i], entries[j])
	})
}

// Page returns files[offset:offset+limit], clamped. A negative limit means
// no limit.
func Page[T any](files []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset > len(files) {
		offset = len(files)
	}
	end := len(files)
	if limit >= 0 && offset+limit < end {
		end = offset + limit
	}
	return files[offset:end]
}
