package css

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// ErrNotFound is returned when stylesheet to count does not exist.
var ErrNotFound = errors.New("stylesheet could not be found")

// CountAllSelectors reads stylesheet at path and sums selectors of all its
// rules. It returns false when file has no rules.
func CountAllSelectors(path string) (int, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, false, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return 0, false, fmt.Errorf("unable to read stylesheet: %w", err)
	}

	total, ok := CountAll(SplitIntoRules(string(data)))
	return total, ok, nil
}

// CountAll sums selectors of all rules, every lexical rule counts as at
// least one. It returns false when there are no rules.
func CountAll(rules []string) (int, bool) {
	if len(rules) == 0 {
		return 0, false
	}
	total := 0
	for _, rule := range rules {
		total += CountSelectors(rule)
	}
	return total, true
}

// Stats describes stylesheet as seen by the part extractor.
type Stats struct {
	Rules     int // number of lexical rules
	Selectors int // final running total of selectors
	Parts     int // number of parts needed to hold everything
}

// Measure walks rules the same way ExtractPart does and reports how many
// parts of maxSelectors are needed. @charset statement, statements before
// media headers and media closing braces do not count.
func Measure(rules []string, maxSelectors int) Stats {
	st := Stats{Rules: len(rules)}
	if len(rules) == 0 {
		return st
	}

	for i, rule := range rules {
		if i == 0 {
			_, rule, _ = extractCharset(rule)
		}
		if _, _, nested, ok := extractMedia(rule); ok {
			rule = nested
		} else if isClosingBrace(rule) {
			continue
		}
		st.Selectors += CountSelectors(rule)
	}

	st.Parts = 1
	if maxSelectors > 0 && st.Selectors > maxSelectors {
		st.Parts = (st.Selectors + maxSelectors - 1) / maxSelectors
	}
	return st
}
