package triage

import "regexp"

// Textual fixes for the malformations local LLMs actually produce. Each
// fix is applied at most once per candidate, in this order; there is no
// recursive re-repair.
var (
	trailingCommaPattern  = regexp.MustCompile(`,\s*([}\]])`)
	adjacentObjectPattern = regexp.MustCompile(`}\s*{`)
	singleQuotePattern    = regexp.MustCompile(`'([^']*)'`)
	bareKeyPattern        = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
)

// repair applies the fixed set of syntax fixes to a candidate substring.
// Callers retry the parse exactly once with the repaired text.
func repair(s string) string {
	s = trailingCommaPattern.ReplaceAllString(s, "$1")
	s = adjacentObjectPattern.ReplaceAllString(s, "}, {")
	s = singleQuotePattern.ReplaceAllString(s, `"$1"`)
	s = bareKeyPattern.ReplaceAllString(s, `$1"$2":`)
	return s
}
