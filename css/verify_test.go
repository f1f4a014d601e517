package css_test

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"cssplit/css"
)

func TestVerifier_Verify(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		wantSelectors int
		wantAtRules   int
		wantBalanced  bool
	}{
		{"grouped selectors", "a, b { color: red; }", 2, 0, true},
		{"nested in media", "@media x { a{} b,c{} }", 3, 1, true},
		{"statements", `@charset "UTF-8"; @import url(a.css); p { margin: 0 }`, 1, 2, true},
		{"brace in string", `a { content: "}"; }`, 1, 0, true},
		{"unclosed block", "@media print { a { x: 1 }", 1, 1, false},
		{"stray closer", "a { x: 1 } }", -1, -1, false},
		{"empty", "", 0, 0, true},
	}

	v := css.NewVerifier(zaptest.NewLogger(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rpt := v.Verify([]byte(tt.input))
			if tt.wantSelectors >= 0 && rpt.Selectors != tt.wantSelectors {
				t.Errorf("Selectors = %d, want %d", rpt.Selectors, tt.wantSelectors)
			}
			if tt.wantAtRules >= 0 && rpt.AtRules != tt.wantAtRules {
				t.Errorf("AtRules = %d, want %d", rpt.AtRules, tt.wantAtRules)
			}
			if rpt.Balanced != tt.wantBalanced {
				t.Errorf("Balanced = %v, want %v", rpt.Balanced, tt.wantBalanced)
			}
		})
	}
}

func TestVerifier_AgreesWithSplitter(t *testing.T) {
	v := css.NewVerifier(nil)
	s := css.NewSplitter(nil)
	rules := css.SplitIntoRules(sampleSheet)

	// running totals are 2,5,7,8,11,12,14,15,16: the three selector rule
	// ending at 11 starts below the fourth window and drags part 4 over
	// the limit
	const limit = 3
	want := []int{2, 3, 3, 4, 3, 1}

	parts := css.Measure(rules, limit).Parts
	if parts != len(want) {
		t.Fatalf("Measure().Parts = %d, want %d", parts, len(want))
	}
	for part := 1; part <= parts; part++ {
		out, _ := s.ExtractPart(rules, part, limit)
		rpt := v.Verify([]byte(out))
		if !rpt.Balanced {
			t.Errorf("part %d is not balanced: %q", part, out)
		}
		if rpt.Selectors != want[part-1] {
			t.Errorf("part %d has %d selectors, want %d", part, rpt.Selectors, want[part-1])
		}
	}
}
