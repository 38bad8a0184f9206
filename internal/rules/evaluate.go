package rules

import (
	"math"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// Match is the action of the first rule that matched.
type Match struct {
	Name        string `json:"name"`
	Action      string `json:"action"`
	ActionValue Value  `json:"action_value"`
}

// Engine evaluates rules, reading modification times through Fs.
type Engine struct {
	Fs  afero.Fs
	Now func() time.Time
}

// NewEngine returns an Engine on fsys using the wall clock.
func NewEngine(fsys afero.Fs) *Engine {
	return &Engine{Fs: fsys, Now: time.Now}
}

// Evaluate returns the first rule, in order, whose conditions all hold for
// the file, or nil. filename is the name used for the filename and
// extension fields (callers pass the repository-relative path); filePath
// is where age_days reads the modification time.
func (e *Engine) Evaluate(filename, filePath string, rules []Rule) *Match {
	for _, r := range rules {
		if e.matches(r, filename, filePath) {
			return &Match{Name: r.DisplayName(), Action: r.Action, ActionValue: r.ActionValue}
		}
	}
	return nil
}

func (e *Engine) matches(r Rule, filename, filePath string) bool {
	for _, c := range r.Conditions {
		if c.Field == "" || c.Operator == "" || !c.Value.IsSet() {
			return false
		}
		actual, ok := e.attribute(c.Field, filename, filePath)
		if !ok {
			return false
		}
		if !compare(actual, c.Operator, c.Value) {
			return false
		}
	}
	return true
}

// attribute resolves a condition field. ok is false for unknown fields and
// when the file cannot be stat'ed for age_days.
func (e *Engine) attribute(field, filename, filePath string) (string, bool) {
	switch field {
	case FieldExtension:
		return extension(filename), true
	case FieldFilename:
		return filename, true
	case FieldAgeDays:
		info, err := e.Fs.Stat(filePath)
		if err != nil {
			return "", false
		}
		now := time.Now()
		if e.Now != nil {
			now = e.Now()
		}
		days := int(math.Floor(now.Sub(info.ModTime()).Hours() / 24))
		return strconv.Itoa(days), true
	}
	return "", false
}

// extension is the lower-cased suffix of the last path element, including
// the dot. Leading dots do not start an extension.
func extension(name string) string {
	base := strings.TrimLeft(path.Base(strings.ReplaceAll(name, `\`, "/")), ".")
	return strings.ToLower(path.Ext(base))
}

func compare(actual, op string, expected Value) bool {
	want := expected.String()
	switch op {
	case OpIs:
		return actual == want
	case OpContains:
		return strings.Contains(actual, want)
	case OpStartsWith:
		return strings.HasPrefix(actual, want)
	case OpEndsWith:
		return strings.HasSuffix(actual, want)
	case OpGt, OpLt:
		a, ok := parseFloat(actual)
		if !ok {
			return false
		}
		b, ok := expected.Float()
		if !ok {
			return false
		}
		if op == OpGt {
			return a > b
		}
		return a < b
	}
	return false
}
