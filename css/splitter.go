package css

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// DefaultMaxSelectors is the per-stylesheet selector limit of old Internet
// Explorer engines. Selectors past it are silently ignored by the browser.
const DefaultMaxSelectors = 4095

var (
	charsetPattern = regexp.MustCompile(`^\s*(@charset[^;]+;)`)
	mediaPattern   = regexp.MustCompile(`(?:^|;)\s*(@media[^{]*\{)([^{}]*\{[^}]*\})$`)
)

// Window is the inclusive range of cumulative selector counts assigned to a
// single part.
type Window struct {
	Start, End int
}

// NewWindow returns window for 1-based part.
func NewWindow(part, maxSelectors int) Window {
	return Window{
		Start: maxSelectors*(part-1) + 1,
		End:   maxSelectors * part,
	}
}

// Contains reports whether cumulative count n belongs to the window.
func (w Window) Contains(n int) bool {
	return n >= w.Start && n <= w.End
}

// Exceeded reports whether cumulative count n is past the window.
func (w Window) Exceeded(n int) bool {
	return n > w.End
}

// Splitter extracts parts of stylesheets. It keeps no state between calls
// and may be used concurrently.
type Splitter struct {
	log *zap.Logger
}

// NewSplitter creates a new splitter, log is only used for diagnostics.
func NewSplitter(log *zap.Logger) *Splitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Splitter{log: log.Named("splitter")}
}

// Split returns requested part of the stylesheet source. It returns false
// when source has no rules at all.
func Split(source string, part, maxSelectors int) (string, bool) {
	return NewSplitter(nil).Split(source, part, maxSelectors)
}

// Split returns requested part of the stylesheet source.
func (s *Splitter) Split(source string, part, maxSelectors int) (string, bool) {
	return s.ExtractPart(SplitIntoRules(source), part, maxSelectors)
}

// ExtractPart walks rules keeping running total of selectors and collects
// rules which total falls into the part window. Rules are never split, rule
// goes to the part covering its final count. Part 1 starts with @charset
// statement if the stylesheet has one. When part starts or ends inside
// @media block the block is re-opened or closed accordingly. Rules slice is
// not modified.
func (s *Splitter) ExtractPart(rules []string, part, maxSelectors int) (string, bool) {
	if len(rules) == 0 {
		return "", false
	}
	if part < 1 || maxSelectors < 1 {
		s.log.Warn("Invalid part requested", zap.Int("part", part), zap.Int("max", maxSelectors))
		return "", false
	}

	var out strings.Builder

	head := rules[0]
	if charset, rest, ok := extractCharset(head); ok {
		head = rest
		if part == 1 {
			out.WriteString(charset)
		}
	}

	var (
		win          = NewWindow(part, maxSelectors)
		count        int
		currentMedia string
		mediaOpen    bool // media header written to out and not yet closed
		firstHit     = true
	)

loop:
	for i, rule := range rules {
		if i == 0 {
			rule = head
		}

		prefix, header, nested, opened := extractMedia(rule)
		closer := false
		if opened {
			rule, currentMedia = nested, header
		} else if isClosingBrace(rule) {
			currentMedia, closer = "", true
		}

		// closing brace carries no selectors
		if !closer {
			count += CountSelectors(rule)
		}

		switch {
		case win.Contains(count):
			if closer && firstHit {
				// never start a part with orphaned closing brace
				continue
			}
			if opened {
				out.WriteString(prefix)
				out.WriteString(header)
				mediaOpen = true
			} else if firstHit && currentMedia != "" {
				out.WriteString(currentMedia)
				mediaOpen = true
			}
			out.WriteString(rule)
			if closer {
				mediaOpen = false
			}
			firstHit = false
		case win.Exceeded(count):
			s.log.Info("Part has reached selector limit, remaining rules belong to the next part",
				zap.Int("part", part), zap.Int("limit", maxSelectors), zap.Int("selectors", count), zap.Int("next", part+1))
			break loop
		}
	}

	if mediaOpen {
		out.WriteString("}")
	}
	return out.String(), true
}

// extractCharset separates leading @charset statement from the first rule.
func extractCharset(rule string) (charset, rest string, ok bool) {
	if !strings.Contains(rule, "charset") {
		return "", rule, false
	}
	m := charsetPattern.FindStringSubmatchIndex(rule)
	if m == nil {
		return "", rule, false
	}
	return rule[m[2]:m[3]], rule[m[1]:], true
}

// extractMedia separates "@media ... {" header from the nested rule it was
// fused with by tokenization. Statements ending with ";" which precede the
// header in the same rule (@import, @namespace) are returned as prefix.
func extractMedia(rule string) (prefix, header, nested string, ok bool) {
	m := mediaPattern.FindStringSubmatchIndex(rule)
	if m == nil {
		return "", "", rule, false
	}
	if prefix = rule[:m[2]]; strings.TrimSpace(prefix) == "" {
		prefix = ""
	}
	return prefix, rule[m[2]:m[3]], rule[m[4]:m[5]], true
}
