// Package css splits overlong stylesheets into parts which stay under a
// per-file selector limit. Rules are found lexically, no full CSS grammar is
// involved: a rule is everything up to and including the next closing brace.
package css

import (
	"regexp"
	"strings"
)

var (
	commentPattern = regexp.MustCompile(`(?s)/\*.*?\*/`)
	closerPattern  = regexp.MustCompile(`^\s*\}$`)
)

// stripComments removes all /* ... */ spans leaving everything else intact.
func stripComments(s string) string {
	if !strings.Contains(s, "/*") {
		return s
	}
	return commentPattern.ReplaceAllString(s, "")
}

// SplitIntoRules strips comments from the source and cuts it into rules. Text
// after the last closing brace is dropped. Brace balance is not checked,
// malformed input produces whatever the cuts happen to be.
func SplitIntoRules(source string) []string {
	text := stripComments(source)

	var rules []string
	for {
		i := strings.IndexByte(text, '}')
		if i < 0 {
			break
		}
		rules = append(rules, text[:i+1])
		text = text[i+1:]
	}
	return rules
}

// CountSelectors returns number of comma separated selectors in front of the
// first opening brace of the rule. Rule without opening brace is counted as
// a whole.
func CountSelectors(rule string) int {
	prelude, _, _ := strings.Cut(stripComments(rule), "{")
	return strings.Count(prelude, ",") + 1
}

// isClosingBrace reports whether rule is a lone "}" closing a media block.
func isClosingBrace(rule string) bool {
	return closerPattern.MatchString(rule)
}
