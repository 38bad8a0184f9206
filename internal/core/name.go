// Package core holds the curation vocabulary shared by every layer:
// the status model and file-name validation.
package core

import (
	"strings"

	"github.com/NielsdaWheelz/curator/internal/errors"
)

// NameMaxLen is the longest file name accepted as a rename target (bytes).
const NameMaxLen = 255

// ValidateFileName checks that name is usable as a rename target inside the
// same directory as the source file.
//
// Validation rules:
//   - Non-empty, at most 255 bytes
//   - No path separators (rename never moves between directories)
//   - Not "." or ".."
//   - Must not start with "." (hidden names are reserved for curator's own files)
func ValidateFileName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.NewWithDetails(
			errors.EInvalidName,
			"new name must not be empty",
			map[string]string{"new_path": name},
		)
	}
	if len(name) > NameMaxLen {
		return errors.NewWithDetails(
			errors.EInvalidName,
			"new name must be at most 255 bytes",
			map[string]string{"new_path": name},
		)
	}
	if strings.ContainsAny(name, `/\`) {
		return errors.NewWithDetails(
			errors.EInvalidName,
			"new name must be a file name, not a path",
			map[string]string{"new_path": name},
		)
	}
	if strings.HasPrefix(name, ".") {
		return errors.NewWithDetails(
			errors.EInvalidName,
			"new name must not start with '.'",
			map[string]string{"new_path": name},
		)
	}
	return nil
}
