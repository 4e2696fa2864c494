package execution

import (
	"strings"
	"unicode"
)

// impliedPrefix marks a literal the solver derived rather than chose.
const impliedPrefix = "[i]"

// IsImplied reports whether label denotes an implied literal.
func IsImplied(label string) bool {
	return strings.HasPrefix(strings.TrimSpace(label), impliedPrefix)
}

// StripImplied removes the implied-literal marker from label.
func StripImplied(label string) string {
	return strings.TrimPrefix(strings.TrimSpace(label), impliedPrefix)
}

// NormalizeLabel removes whitespace and rewrites "==" as "=" so that labels
// printed by different solver versions compare equal.
func NormalizeLabel(label string) string {
	label = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, label)
	return strings.ReplaceAll(label, "==", "=")
}

// ExtractVar returns the variable part of a branch label: everything before
// the first relational operator.
func ExtractVar(label string) string {
	if i := strings.IndexAny(label, "!=><"); i >= 0 {
		return strings.TrimSpace(label[:i])
	}
	return strings.TrimSpace(label)
}

// stopMarkers end the part of an info string that describes domains.
var stopMarkers = []string{"full domain size", "domain reduction"}

// CompareDomains lines up the domain descriptions of two info strings and
// returns the lines that differ as "left | right". Auxiliary variables
// introduced by the solver are ignored.
func CompareDomains(left, right string) string {
	l, r := domainLines(left), domainLines(right)
	var sb strings.Builder
	for i := range max(len(l), len(r)) {
		var a, b string
		if i < len(l) {
			a = l[i]
		}
		if i < len(r) {
			b = r[i]
		}
		if a == b {
			continue
		}
		sb.WriteString(a)
		sb.WriteString(" | ")
		sb.WriteString(b)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func domainLines(info string) []string {
	var out []string
	for _, line := range strings.Split(info, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, "X_INTRODUCED") {
			continue
		}
		for _, m := range stopMarkers {
			if strings.Contains(line, m) {
				return out
			}
		}
		out = append(out, line)
	}
	return out
}
