package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotUnderPrefix is returned when a removal target escapes its guard directory.
type ErrNotUnderPrefix struct {
	Target string
	Prefix string
}

func (e *ErrNotUnderPrefix) Error() string {
	return fmt.Sprintf("refusing to remove %q: not inside %q", e.Target, e.Prefix)
}

// SafeRemoveAll removes target only if it lies strictly inside allowedPrefix.
//
// Both paths are cleaned and symlink-resolved before comparison, so a
// symlinked entry cannot redirect the removal outside the prefix.
// A missing target is a no-op. An unresolvable prefix fails closed.
func SafeRemoveAll(target, allowedPrefix string) error {
	cleanTarget := filepath.Clean(target)

	resolvedTarget, err := filepath.EvalSymlinks(cleanTarget)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &ErrNotUnderPrefix{Target: target, Prefix: allowedPrefix}
	}
	resolvedPrefix, err := filepath.EvalSymlinks(filepath.Clean(allowedPrefix))
	if err != nil {
		return &ErrNotUnderPrefix{Target: target, Prefix: allowedPrefix}
	}

	// A symlink entry resolves elsewhere; judge the link itself by its
	// parent directory and remove only the link.
	if info, lerr := os.Lstat(cleanTarget); lerr == nil && info.Mode()&os.ModeSymlink != 0 {
		parent, perr := filepath.EvalSymlinks(filepath.Dir(cleanTarget))
		if perr != nil || (parent != resolvedPrefix && !IsSubpath(parent, resolvedPrefix)) {
			return &ErrNotUnderPrefix{Target: target, Prefix: allowedPrefix}
		}
		return os.Remove(cleanTarget)
	}

	if !IsSubpath(resolvedTarget, resolvedPrefix) {
		return &ErrNotUnderPrefix{Target: target, Prefix: allowedPrefix}
	}
	return os.RemoveAll(cleanTarget)
}

// ClearDir removes every entry inside dir, leaving dir itself in place.
// Returns the names of removed entries, sorted case-insensitively.
// A missing dir yields no names and no error.
//
// Entries that fail to remove stop the purge; names removed so far are
// returned with the error.
func ClearDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	removed := make([]string, 0, len(entries))
	for _, e := range entries {
		if err := SafeRemoveAll(filepath.Join(dir, e.Name()), dir); err != nil {
			sortFold(removed)
			return removed, err
		}
		removed = append(removed, e.Name())
	}
	sortFold(removed)
	return removed, nil
}

// IsSubpath reports whether target is a proper subpath of prefix.
// Both paths should already be cleaned and resolved.
func IsSubpath(target, prefix string) bool {
	prefixWithSep := prefix
	if !strings.HasSuffix(prefixWithSep, string(filepath.Separator)) {
		prefixWithSep = prefix + string(filepath.Separator)
	}
	return strings.HasPrefix(target, prefixWithSep) && len(target) > len(prefix)
}

func sortFold(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
}
