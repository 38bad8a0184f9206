// Package ids resolves a user-typed name against a set of known names by
// exact match or unique prefix.
package ids

import (
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound indicates no name matched exactly or by prefix.
type ErrNotFound struct {
	Input string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("not found: %q", e.Input)
}

// ErrAmbiguous indicates a prefix matched more than one name.
type ErrAmbiguous struct {
	Input      string
	Candidates []string // sorted ascending
}

func (e *ErrAmbiguous) Error() string {
	return fmt.Sprintf("ambiguous name %q matches: %s", e.Input, strings.Join(e.Candidates, ", "))
}

// Resolve returns the name input refers to.
//
//  1. An exact match wins, even when input is also a prefix of other names.
//  2. Otherwise input is a prefix: one match resolves, none is ErrNotFound,
//     several are ErrAmbiguous.
//
// Input is trimmed; empty input is ErrNotFound.
func Resolve(input string, names []string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", &ErrNotFound{Input: ""}
	}

	var prefixMatches []string
	for _, n := range names {
		if n == input {
			return n, nil
		}
		if strings.HasPrefix(n, input) {
			prefixMatches = append(prefixMatches, n)
		}
	}

	switch len(prefixMatches) {
	case 0:
		return "", &ErrNotFound{Input: input}
	case 1:
		return prefixMatches[0], nil
	}
	sort.Strings(prefixMatches)
	return "", &ErrAmbiguous{Input: input, Candidates: prefixMatches}
}
