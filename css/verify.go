package css

import (
	"bytes"
	"errors"
	"io"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Report is the result of grammar aware inspection of a produced part.
type Report struct {
	Rules     int  // qualified rules with declaration blocks
	Selectors int  // selectors of all qualified rules, nested ones included
	AtRules   int  // at-rules, with or without blocks
	Balanced  bool // every opened block is closed
}

// Verifier recounts produced parts with a real CSS parser. Lexical counting
// used for splitting is approximate, so verifier is the final word on
// whether a part stays under the limit.
type Verifier struct {
	log *zap.Logger
}

// NewVerifier creates a new verifier.
func NewVerifier(log *zap.Logger) *Verifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Verifier{log: log.Named("verifier")}
}

// Verify parses data and reports what it found.
func (v *Verifier) Verify(data []byte) Report {
	rpt := Report{Balanced: bracesBalanced(data)}

	parser := css.NewParser(parse.NewInput(bytes.NewReader(data)), false)
	for {
		gt, _, _ := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil && !errors.Is(err, io.EOF) {
				v.log.Debug("CSS parse error", zap.Error(err))
			}
			return rpt

		case css.AtRuleGrammar, css.BeginAtRuleGrammar:
			rpt.AtRules++

		case css.QualifiedRuleGrammar:
			// selector followed by comma, the rest of the list comes later
			rpt.Selectors += 1 + topLevelCommas(parser.Values())

		case css.BeginRulesetGrammar:
			rpt.Rules++
			rpt.Selectors += 1 + topLevelCommas(parser.Values())
		}
	}
}

// topLevelCommas counts commas outside of functions and brackets, so that
// ":is(a, b)" stays a single selector.
func topLevelCommas(tokens []css.Token) int {
	depth, n := 0, 0
	for _, t := range tokens {
		switch t.TokenType {
		case css.FunctionToken, css.LeftParenthesisToken, css.LeftBracketToken:
			depth++
		case css.RightParenthesisToken, css.RightBracketToken:
			if depth > 0 {
				depth--
			}
		case css.CommaToken:
			if depth == 0 {
				n++
			}
		}
	}
	return n
}

// bracesBalanced checks block nesting using CSS lexer, braces in strings and
// comments are ignored.
func bracesBalanced(data []byte) bool {
	lexer := css.NewLexer(parse.NewInput(bytes.NewReader(data)))
	depth := 0
	for {
		tt, _ := lexer.Next()
		switch tt {
		case css.ErrorToken:
			return depth == 0
		case css.LeftBraceToken:
			depth++
		case css.RightBraceToken:
			depth--
			if depth < 0 {
				return false
			}
		}
	}
}
