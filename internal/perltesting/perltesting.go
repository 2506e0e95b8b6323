package perltesting

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codalotl/podmunge/internal/perltoken"
)

// Dedent removes the common leading indentation from each non-blank line in s. Spaces and tabs both count as indentation; the smallest indent among non-blank lines
// is removed from all non-blank lines. Blank-only lines do not affect the indent; interior blank lines are preserved, and leading/trailing blank lines are trimmed.
// The result has no trailing spaces or tabs and always ends with a single '\n'. Dedent is useful for inline multi-line Perl fixtures that are indented along with
// surrounding code.
func Dedent(s string) string {
	s = strings.Trim(s, "\n") // drop leading/trailing blank lines
	lines := strings.Split(s, "\n")

	min := -1 // smallest indent seen so far
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			lines[i] = ""
			continue
		}
		indent := len(line) - len(trimmed)
		if min == -1 || indent < min {
			min = indent
		}
	}

	if min > 0 {
		for i, line := range lines {
			if len(line) >= min {
				lines[i] = line[min:]
			}
		}
	}
	return strings.TrimRight(strings.Join(lines, "\n"), " \t\n") + "\n"
}

// MustTokenize tokenizes src, failing the test on error, and checks that the tree round-trips to src.
func MustTokenize(t *testing.T, src string) *perltoken.Tree {
	t.Helper()
	tree, err := perltoken.Tokenize(src)
	require.NoError(t, err)
	require.Equal(t, src, tree.Serialize())
	return tree
}

// Leaves returns every leaf of tree in document order.
func Leaves(tree *perltoken.Tree) []*perltoken.Token {
	return tree.Find(func(tok *perltoken.Token) bool { return tok.IsLeaf() })
}

// KindsOf returns the kinds of toks, in order.
func KindsOf(toks []*perltoken.Token) []perltoken.Kind {
	kinds := make([]perltoken.Kind, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}
	return kinds
}
