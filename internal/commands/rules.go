package commands

import (
	"context"
	"io"
	"path/filepath"

	"github.com/NielsdaWheelz/curator/internal/errors"
	"github.com/NielsdaWheelz/curator/internal/events"
	"github.com/NielsdaWheelz/curator/internal/render"
	"github.com/NielsdaWheelz/curator/internal/rules"
	"github.com/NielsdaWheelz/curator/internal/scan"
)

// RulesOpts holds options for rules dry-run and rules apply.
type RulesOpts struct {
	Apply     bool // false: report matches only
	RulesFile string
	Recursive bool
	Include   []string
	Exclude   []string
	JSON      bool
	Quiet     bool
}

// RuleResult is one matched file.
type RuleResult struct {
	Filename    string      `json:"filename"`
	Rule        string      `json:"rule"`
	Action      string      `json:"action"`
	ActionValue rules.Value `json:"action_value"`
	Applied     bool        `json:"applied"`
}

type rulesRunResult struct {
	Results []RuleResult `json:"results"`
	Matched int          `json:"matched"`
	Applied int          `json:"applied"`
	Skipped int          `json:"skipped"`
}

// rulesPath picks the rules file: flag, then config, then the repository
// default.
func (e *Env) rulesPath(flag string) string {
	switch {
	case flag != "":
		return flag
	case e.Config.RulesFile != "":
		return e.Config.RulesFile
	}
	return filepath.Join(e.Repo, rules.FileName)
}

// RulesRun evaluates the rules against every file awaiting review and, when
// applying, performs the matched actions. Per-file failures are counted as
// skipped; the run continues.
func RulesRun(_ context.Context, env *Env, opts RulesOpts, stdout, _ io.Writer) error {
	path := env.rulesPath(opts.RulesFile)
	rs, err := rules.Load(env.Fs, path)
	if err != nil {
		return err
	}
	for _, verr := range rules.Validate(rs) {
		env.Logger.Warn().Str("rules_file", path).Msg(verr.Error())
	}

	candidates, err := env.Scanner().Scan(env.Repo, scan.Options{
		SortBy:    scan.SortName,
		SortOrder: scan.Asc,
		Recursive: opts.Recursive,
		Include:   opts.Include,
		Exclude:   opts.Exclude,
		Ignore:    env.Config.Ignore,
		Now:       env.now(),
	})
	if err != nil {
		return err
	}

	engine := rules.NewEngine(env.Fs)
	engine.Now = env.now
	out := rulesRunResult{Results: []RuleResult{}}
	for _, rel := range candidates {
		m := engine.Evaluate(rel, env.abs(rel), rs)
		if m == nil || m.Action == "" {
			continue
		}
		out.Matched++
		res := RuleResult{Filename: rel, Rule: m.Name, Action: m.Action, ActionValue: m.ActionValue}
		if opts.Apply {
			if err := applyRule(env, rel, m); err != nil {
				env.Logger.Warn().Err(err).Str("path", rel).Str("rule", m.Name).Msg("rule action skipped")
				out.Skipped++
			} else {
				res.Applied = true
				out.Applied++
			}
		}
		out.Results = append(out.Results, res)
	}

	if opts.Apply {
		env.record(events.TypeRulesApply, struct {
			RulesFile string `json:"rules_file"`
			Matched   int    `json:"matched"`
			Applied   int    `json:"applied"`
			Skipped   int    `json:"skipped"`
		}{path, out.Matched, out.Applied, out.Skipped})
	}

	if opts.JSON {
		return writeJSON(stdout, out)
	}
	if opts.Quiet {
		return nil
	}
	lines := make([]render.RuleLine, len(out.Results))
	for i, r := range out.Results {
		lines[i] = render.RuleLine{Filename: r.Filename, Rule: r.Rule, Action: r.Action, Applied: r.Applied}
		if r.ActionValue.IsSet() {
			lines[i].Value = r.ActionValue.String()
		}
	}
	return render.WriteRulesRun(stdout, lines, out.Matched, out.Applied, out.Skipped, !opts.Apply)
}

// errNoActionValue marks a rule whose action needs a value it lacks.
var errNoActionValue = errors.New(errors.EInvalidRules, "rule action requires action_value")

// applyRule performs one matched action. delete goes through the trash and
// is journaled like a manual delete.
func applyRule(env *Env, rel string, m *rules.Match) error {
	value := ""
	if m.ActionValue.IsSet() {
		value = m.ActionValue.String()
	}
	switch m.Action {
	case rules.ActionDelete:
		undo, err := env.Ops().Delete(rel)
		if err != nil {
			return err
		}
		env.record(events.TypeDelete, undo)
		return nil
	case rules.ActionAddTag:
		if value == "" {
			return errNoActionValue
		}
		_, err := env.Store().ManageTags(rel, []string{value}, nil)
		return err
	case rules.ActionSetStatus:
		if value == "" {
			return errNoActionValue
		}
		_, err := env.Store().UpdateStatus(rel, value, nil, 0)
		return err
	}
	return errors.NewWithDetails(errors.EInvalidRules, "unsupported rule action '"+m.Action+"'",
		map[string]string{"path": rel})
}
