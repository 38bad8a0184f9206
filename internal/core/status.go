package core

import (
	"regexp"
	"sort"
	"strings"

	"github.com/NielsdaWheelz/curator/internal/errors"
)

// Status is the curation decision recorded for a file.
//
// The set is closed for anything a user types; rule actions and older state
// files may carry other identifiers, which are preserved as adhoc statuses.
type Status string

const (
	// StatusKeepForever marks a file as permanently reviewed.
	StatusKeepForever Status = "keep_forever"

	// StatusKeep is a temporary keep; it carries keep_days and expiry_date.
	StatusKeep Status = "keep"

	// StatusDecideLater leaves the file in the review queue.
	StatusDecideLater Status = "decide_later"

	// StatusDeleted is written after a file is moved to trash.
	StatusDeleted Status = "deleted"

	// StatusRenamed is written on the new key after a rename.
	StatusRenamed Status = "renamed"
)

// Legacy alias accepted on input and normalized to keep with LegacyKeepDays.
const (
	LegacyKeep90Days = "keep_90_days"
	LegacyKeepDays   = 90
)

var userStatuses = []Status{StatusKeepForever, StatusKeep, StatusDecideLater}

var internalStatuses = []Status{StatusDeleted, StatusRenamed}

// adhocPattern bounds what a rule action may write as a status.
var adhocPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// UserStatuses returns the statuses a user may set directly.
func UserStatuses() []Status {
	out := make([]Status, len(userStatuses))
	copy(out, userStatuses)
	return out
}

// IsUser reports whether s is one of the user-facing statuses.
func (s Status) IsUser() bool {
	for _, u := range userStatuses {
		if s == u {
			return true
		}
	}
	return false
}

// IsInternal reports whether s is written only by file operations.
func (s Status) IsInternal() bool {
	for _, u := range internalStatuses {
		if s == u {
			return true
		}
	}
	return false
}

// AwaitingDecision reports whether a file with this status belongs in the
// review queue. A missing status counts as undecided.
func (s Status) AwaitingDecision() bool {
	return s == "" || s == StatusDecideLater
}

// ParsedStatus is a normalized status plus the day count implied by a legacy alias.
type ParsedStatus struct {
	Status Status
	// Days is non-zero only when the input was a legacy alias.
	Days int
}

// ParseUserStatus normalizes raw input from a person (CLI flag, batch file).
// Accepts the user-facing statuses and the keep_90_days alias.
// Returns E_INVALID_STATUS otherwise.
func ParseUserStatus(raw string) (ParsedStatus, error) {
	raw = strings.TrimSpace(raw)
	if raw == LegacyKeep90Days {
		return ParsedStatus{Status: StatusKeep, Days: LegacyKeepDays}, nil
	}
	s := Status(raw)
	if !s.IsUser() {
		return ParsedStatus{}, invalidStatus(raw)
	}
	return ParsedStatus{Status: s}, nil
}

// ParseStatus normalizes a status coming from any writer, including rule
// actions. Internal and adhoc identifiers are allowed; empty or malformed
// values are rejected with E_INVALID_STATUS.
func ParseStatus(raw string) (ParsedStatus, error) {
	raw = strings.TrimSpace(raw)
	if raw == LegacyKeep90Days {
		return ParsedStatus{Status: StatusKeep, Days: LegacyKeepDays}, nil
	}
	if !adhocPattern.MatchString(raw) {
		return ParsedStatus{}, invalidStatus(raw)
	}
	return ParsedStatus{Status: Status(raw)}, nil
}

// AllowedUserInputs lists accepted CLI spellings, sorted, including the legacy alias.
func AllowedUserInputs() []string {
	out := []string{LegacyKeep90Days}
	for _, s := range userStatuses {
		out = append(out, string(s))
	}
	sort.Strings(out)
	return out
}

func invalidStatus(raw string) error {
	return errors.NewWithDetails(
		errors.EInvalidStatus,
		"Invalid status '"+raw+"'. Allowed: "+strings.Join(AllowedUserInputs(), ", "),
		map[string]string{"status": raw},
	)
}
