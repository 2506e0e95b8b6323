package podmunger

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/codalotl/podmunge/internal/perltoken"
)

// DocUnit is the text of one extracted POD block.
type DocUnit struct {
	Text          string // verbatim, including its "=cut" line if it had one
	Line          int    // line the block started on
	AfterLastCode bool   // no code-bearing token starts on a later line
}

// ExtractDocumentation removes every POD block from tree, in document order, putting policy's replacement tokens in its place. It returns the removed blocks in order.
//
// A block counts as after the last code if no code or literal token starts on a later line. The comparison is line-granular: when POD and code share a line, the POD is
// treated as after the code.
//
// An error (wrapping a *perltoken.InsertionError) means the tree has been partially modified and must be discarded.
func ExtractDocumentation(tree *perltoken.Tree, policy Policy) ([]DocUnit, error) {
	lastLine, hasCode := lastCodeLine(tree)

	var units []DocUnit
	queue := slices.Clone(tree.Root.Children)
	for len(queue) > 0 {
		tok := queue[0]
		queue = queue[1:]

		if tok.Kind == perltoken.KindDocumentation {
			after := !hasCode || lastLine <= tok.Line
			units = append(units, DocUnit{Text: tok.String(), Line: tok.Line, AfterLastCode: after})

			if subs := policy.For(after).Replacements(tok); len(subs) > 0 {
				if err := tree.InsertAfter(tok, subs...); err != nil {
					return nil, fmt.Errorf("replace documentation at line %d: %w", tok.Line, err)
				}
			}
			if !tree.Remove(tok) {
				return nil, fmt.Errorf("remove documentation at line %d: %w", tok.Line, &perltoken.InsertionError{Line: tok.Line, Message: "token is not attached"})
			}
			continue
		}

		// Children go to the front so the queue yields document order while holding at most one level of pending siblings per ancestor.
		if !tok.IsLeaf() {
			queue = append(slices.Clone(tok.Children), queue...)
		}
	}
	return units, nil
}

// lastCodeLine returns the greatest line on which a code or literal token starts.
func lastCodeLine(tree *perltoken.Tree) (int, bool) {
	last, found := 0, false
	tree.Walk(func(tok *perltoken.Token) bool {
		switch tok.Kind {
		case perltoken.KindEndSection, perltoken.KindDataSection:
			return false
		}
		if tok.IsCodeBearing() {
			found = true
			last = max(last, tok.Line)
		}
		return true
	})
	return last, found
}

// joinUnits joins the units' text with newlines, in order.
func joinUnits(units []DocUnit) string {
	texts := make([]string, len(units))
	for i, u := range units {
		texts[i] = u.Text
	}
	return strings.Join(texts, "\n")
}

var podInLiteralRE = regexp.MustCompile(`(?m)^=[a-z]`)

// findSuspiciousLiteral returns the first literal whose text has a line that looks like a POD command, or nil.
func findSuspiciousLiteral(tree *perltoken.Tree) *perltoken.Token {
	return tree.FindFirst(func(tok *perltoken.Token) bool {
		return tok.Kind == perltoken.KindLiteral && podInLiteralRE.MatchString(tok.Text)
	})
}
