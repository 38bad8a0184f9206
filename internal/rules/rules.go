// Package rules loads declarative curation rules and evaluates files
// against them. Evaluation never performs actions; callers apply the match.
package rules

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/NielsdaWheelz/curator/internal/errors"
)

// FileName is the default rules file, looked up in the repository root.
const FileName = "curator_rules.json"

// Condition fields.
const (
	FieldExtension = "extension"
	FieldFilename  = "filename"
	FieldAgeDays   = "age_days"
)

// Operators.
const (
	OpIs         = "is"
	OpContains   = "contains"
	OpStartsWith = "startswith"
	OpEndsWith   = "endswith"
	OpGt         = "gt"
	OpLt         = "lt"
)

// Actions understood by the apply step.
const (
	ActionDelete    = "delete"
	ActionAddTag    = "add_tag"
	ActionSetStatus = "set_status"
)

// DefaultRuleName is reported for rules without a name.
const DefaultRuleName = "Unnamed Rule"

// Value is a JSON scalar from a rules file, kept as its literal text so
// comparisons see exactly what the user wrote (30 stays "30", 30.0 stays
// "30.0"). A null or absent value is unset.
type Value struct {
	raw json.RawMessage
}

// NewValue wraps a Go value; used by tests and programmatic rules.
func NewValue(v any) Value {
	data, err := json.Marshal(v)
	if err != nil || string(data) == "null" {
		return Value{}
	}
	return Value{raw: data}
}

// UnmarshalJSON keeps the literal; null leaves the value unset.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if string(trimmed) == "null" {
		v.raw = nil
		return nil
	}
	v.raw = append(json.RawMessage{}, trimmed...)
	return nil
}

// MarshalJSON writes the literal back, or null when unset.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.raw == nil {
		return []byte("null"), nil
	}
	return v.raw, nil
}

// IsSet reports whether the value was present and non-null.
func (v Value) IsSet() bool {
	return v.raw != nil
}

// String renders the value for string comparison: strings unquoted,
// numbers as written, booleans as True/False.
func (v Value) String() string {
	if v.raw == nil {
		return ""
	}
	var s string
	if json.Unmarshal(v.raw, &s) == nil {
		return s
	}
	switch string(v.raw) {
	case "true":
		return "True"
	case "false":
		return "False"
	}
	return string(v.raw)
}

// Float coerces the value to float64. Booleans count as 1 and 0.
func (v Value) Float() (float64, bool) {
	if v.raw == nil {
		return 0, false
	}
	switch string(v.raw) {
	case "true":
		return 1, true
	case "false":
		return 0, true
	}
	return parseFloat(v.String())
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Condition is one test against a file attribute.
type Condition struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    Value  `json:"value"`
}

// Rule is a named condition set plus the action to take when all hold.
// A rule with no conditions matches every file.
type Rule struct {
	Name        string      `json:"name,omitempty"`
	Conditions  []Condition `json:"conditions,omitempty"`
	Action      string      `json:"action,omitempty"`
	ActionValue Value       `json:"action_value"`
}

// DisplayName returns Name or the default placeholder.
func (r Rule) DisplayName() string {
	if r.Name == "" {
		return DefaultRuleName
	}
	return r.Name
}

// Load reads a rules file. A missing file yields no rules and no error;
// unreadable or malformed content is E_INVALID_RULES.
func Load(fsys afero.Fs, path string) ([]Rule, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Rule{}, nil
		}
		return nil, errors.WrapWithDetails(errors.EInvalidRules, "failed to read rules file", err,
			map[string]string{"rules_file": path})
	}

	var rules []Rule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, errors.WrapWithDetails(errors.EInvalidRules,
			"rules file must be a JSON array of rule objects: "+err.Error(), err,
			map[string]string{"rules_file": path})
	}
	if rules == nil {
		rules = []Rule{}
	}
	return rules, nil
}

var knownFields = map[string]bool{FieldExtension: true, FieldFilename: true, FieldAgeDays: true}

var knownOperators = map[string]bool{
	OpIs: true, OpContains: true, OpStartsWith: true, OpEndsWith: true, OpGt: true, OpLt: true,
}

var knownActions = map[string]bool{ActionDelete: true, ActionAddTag: true, ActionSetStatus: true}

// Validate reports problems that make a rule never match or never apply.
// Evaluation still tolerates them (failing closed); this is for reporting.
func Validate(rules []Rule) []error {
	var errs []error
	for i, r := range rules {
		where := fmt.Sprintf("rule %d (%s)", i+1, r.DisplayName())
		for j, c := range r.Conditions {
			cw := fmt.Sprintf("%s condition %d", where, j+1)
			switch {
			case c.Field == "" || c.Operator == "" || !c.Value.IsSet():
				errs = append(errs, fmt.Errorf("%s: field, operator and value are required", cw))
			case !knownFields[c.Field]:
				errs = append(errs, fmt.Errorf("%s: unknown field %q", cw, c.Field))
			case !knownOperators[c.Operator]:
				errs = append(errs, fmt.Errorf("%s: unknown operator %q", cw, c.Operator))
			}
		}
		switch {
		case r.Action == "":
			errs = append(errs, fmt.Errorf("%s: action is required", where))
		case !knownActions[r.Action]:
			errs = append(errs, fmt.Errorf("%s: unknown action %q", where, r.Action))
		case (r.Action == ActionAddTag || r.Action == ActionSetStatus) && r.ActionValue.String() == "":
			errs = append(errs, fmt.Errorf("%s: action %q needs action_value", where, r.Action))
		}
	}
	return errs
}
