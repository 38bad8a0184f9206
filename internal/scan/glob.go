package scan

import (
	"path"
	"strings"

	"github.com/gobwas/glob"
)

// Pattern is a compiled include/exclude/ignore glob.
//
// Syntax is shell-style: * matches any run of characters (including /),
// ? matches one character, [...] and [!...] are character classes and
// {a,b} is alternation. Matching is case-insensitive.
type Pattern struct {
	Raw string

	full glob.Glob
	// base matches X for patterns of the form **/X.
	base glob.Glob
}

// CompilePattern compiles a glob. Leading slashes are ignored. A pattern
// the glob syntax rejects (an unterminated class, say) matches literally.
func CompilePattern(raw string) Pattern {
	norm := strings.TrimLeft(strings.ReplaceAll(raw, `\`, "/"), "/")
	norm = strings.ToLower(norm)
	p := Pattern{Raw: raw, full: compileGlob(norm)}
	if rest, ok := strings.CutPrefix(norm, "**/"); ok && rest != "" {
		p.base = compileGlob(rest)
	}
	return p
}

func compileGlob(pattern string) glob.Glob {
	g, err := glob.Compile(pattern)
	if err != nil {
		return glob.MustCompile(glob.QuoteMeta(pattern))
	}
	return g
}

// CompilePatterns compiles each non-blank glob.
func CompilePatterns(raws []string) []Pattern {
	out := make([]Pattern, 0, len(raws))
	for _, r := range raws {
		if strings.TrimSpace(r) == "" {
			continue
		}
		out = append(out, CompilePattern(r))
	}
	return out
}

// Match reports whether rel (forward-slash relative path) matches, testing
// the full path and the bare filename.
func (p Pattern) Match(rel string) bool {
	rel = strings.ToLower(strings.TrimLeft(rel, "/"))
	name := path.Base(rel)
	if p.full.Match(rel) || p.full.Match(name) {
		return true
	}
	return p.base != nil && p.base.Match(name)
}

// MatchAny reports whether any pattern matches rel.
func MatchAny(patterns []Pattern, rel string) bool {
	for _, p := range patterns {
		if p.Match(rel) {
			return true
		}
	}
	return false
}
