// Package errors provides error formatting for curator CLI output.
package errors

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// PrintOptions controls error output formatting.
type PrintOptions struct {
	// Verbose enables detailed error output with more context keys.
	Verbose bool
}

// Context key whitelist (default mode, in order)
var defaultContextKeys = []string{
	"op",
	"repo",
	"path",
	"new_path",
	"trash_path",
	"status",
}

// Additional context keys for verbose mode
var verboseContextKeys = []string{
	"op",
	"repo",
	"path",
	"new_path",
	"trash_path",
	"status",
	"days",
	"state_file",
	"lock_file",
	"rules_file",
	"config",
	"hint",
}

const (
	maxValueLen      = 256 // Max chars for single-line context values
	maxExtraValueLen = 128 // Max chars for extra section values
)

// Format formats an error for display without I/O.
// Returns the formatted string ready for printing.
func Format(err error, opts PrintOptions) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder

	ce, ok := AsCuratorError(err)
	if !ok {
		sb.WriteString(err.Error())
		sb.WriteString("\n")
		return sb.String()
	}

	sb.WriteString("error_code: ")
	sb.WriteString(string(ce.Code))
	sb.WriteString("\n")
	sb.WriteString(ce.Msg)
	sb.WriteString("\n")

	if len(ce.Details) > 0 {
		sb.WriteString("\n")
	}

	contextKeys := defaultContextKeys
	if opts.Verbose {
		contextKeys = verboseContextKeys
	}

	printedKeys := make(map[string]bool)
	for _, key := range contextKeys {
		if ce.Details == nil {
			continue
		}
		val, ok := ce.Details[key]
		if !ok || val == "" || key == "hint" {
			continue
		}
		printedKeys[key] = true
		sb.WriteString(key)
		sb.WriteString(": ")
		sb.WriteString(sanitizeValue(val, maxValueLen))
		sb.WriteString("\n")
	}

	if opts.Verbose && ce.Details != nil {
		var extraKeys []string
		for key := range ce.Details {
			if !printedKeys[key] && key != "hint" {
				extraKeys = append(extraKeys, key)
			}
		}
		if len(extraKeys) > 0 {
			sort.Strings(extraKeys)
			sb.WriteString("\nextra:\n")
			for _, key := range extraKeys {
				val := ce.Details[key]
				if val == "" {
					continue
				}
				sb.WriteString("  ")
				sb.WriteString(key)
				sb.WriteString(": ")
				sb.WriteString(sanitizeValue(val, maxExtraValueLen))
				sb.WriteString("\n")
			}
		}
		if ce.Cause != nil {
			sb.WriteString("\ncause: ")
			sb.WriteString(sanitizeValue(ce.Cause.Error(), maxValueLen))
			sb.WriteString("\n")
		}
	}

	if ce.Details != nil {
		if hint, ok := ce.Details["hint"]; ok && hint != "" {
			sb.WriteString("\nhint: ")
			sb.WriteString(hint)
			sb.WriteString("\n")
		}
	}

	for _, try := range deriveTryLines(ce) {
		sb.WriteString("try: ")
		sb.WriteString(try)
		sb.WriteString("\n")
	}

	return sb.String()
}

// PrintWithOptions writes a formatted error to w with the given options.
func PrintWithOptions(w io.Writer, err error, opts PrintOptions) {
	if err == nil {
		return
	}
	_, _ = io.WriteString(w, Format(err, opts))
}

// sanitizeValue sanitizes a value for single-line context output.
// - Trims trailing whitespace first
// - Normalizes CRLF to LF
// - Replaces newlines with literal \n
// - Truncates to maxLen chars
func sanitizeValue(val string, maxLen int) string {
	val = strings.TrimRight(val, " \t\r\n")
	val = strings.ReplaceAll(val, "\r\n", "\n")
	val = strings.ReplaceAll(val, "\n", "\\n")
	if len(val) > maxLen {
		return val[:maxLen] + "…"
	}
	return val
}

// deriveTryLines returns actionable suggestions based on error code.
func deriveTryLines(ce *CuratorError) []string {
	if ce == nil {
		return nil
	}

	var lines []string

	switch ce.Code {
	case EInvalidDays:
		path := "<file>"
		if ce.Details != nil && ce.Details["path"] != "" {
			path = ce.Details["path"]
		}
		lines = append(lines, fmt.Sprintf("curator status %s keep --days 30", path))
	case ETrashNotFound:
		lines = append(lines, "curator trash list")
	case EConfirmationRequired:
		if ce.Details != nil && ce.Details["op"] != "" {
			lines = append(lines, fmt.Sprintf("curator %s --yes", ce.Details["op"]))
		}
	}

	return lines
}
