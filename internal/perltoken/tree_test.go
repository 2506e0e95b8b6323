package perltoken_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codalotl/podmunge/internal/perltesting"
	"github.com/codalotl/podmunge/internal/perltoken"
)

func findPod(tree *perltoken.Tree) *perltoken.Token {
	return tree.FindFirst(func(tok *perltoken.Token) bool { return tok.Kind == perltoken.KindDocumentation })
}

func TestInsertAfterAndRemove(t *testing.T) {
	tree := perltesting.MustTokenize(t, "1;\n=pod\n\nx\n\n=cut\n2;\n")
	pod := findPod(tree)
	require.NotNil(t, pod)

	a := perltoken.NewToken(perltoken.KindComment, "# a\n")
	b := perltoken.NewToken(perltoken.KindWhitespace, "\n")
	require.NoError(t, tree.InsertAfter(pod, a, b))
	assert.Equal(t, pod.Line, a.Line)
	assert.Same(t, tree.Root, a.Parent())

	assert.True(t, tree.Remove(pod))
	assert.Nil(t, pod.Parent())
	assert.Equal(t, "1;\n# a\n\n2;\n", tree.Serialize())

	// Removing twice is a no-op.
	assert.False(t, tree.Remove(pod))
}

func TestInsertAfterErrors(t *testing.T) {
	tree := perltesting.MustTokenize(t, "1;\n=pod\n\nx\n\n=cut\n")
	pod := findPod(tree)
	require.NotNil(t, pod)

	t.Run("detached anchor", func(t *testing.T) {
		detached := perltoken.NewToken(perltoken.KindCode, "x")
		err := tree.InsertAfter(detached, perltoken.NewToken(perltoken.KindWhitespace, "\n"))
		var ierr *perltoken.InsertionError
		require.ErrorAs(t, err, &ierr)
	})

	t.Run("already attached token", func(t *testing.T) {
		first := tree.Root.Children[0]
		err := tree.InsertAfter(pod, first)
		var ierr *perltoken.InsertionError
		require.ErrorAs(t, err, &ierr)
		assert.Equal(t, pod.Line, ierr.Line)
	})

	t.Run("anchor from another tree", func(t *testing.T) {
		other := perltesting.MustTokenize(t, "=pod\n\ny\n")
		err := tree.InsertAfter(findPod(other), perltoken.NewToken(perltoken.KindWhitespace, "\n"))
		var ierr *perltoken.InsertionError
		require.ErrorAs(t, err, &ierr)
	})

	// Failed insertions leave the tree untouched.
	assert.Equal(t, "1;\n=pod\n\nx\n\n=cut\n", tree.Serialize())
}

func TestPrune(t *testing.T) {
	tree := perltesting.MustTokenize(t, "# a\n1; # b\n__END__\nz\n")
	n := tree.Prune(func(tok *perltoken.Token) bool {
		return tok.Kind == perltoken.KindComment || tok.Kind == perltoken.KindEndSection
	})
	assert.Equal(t, 3, n)
	assert.Equal(t, "\n1; \n", tree.Serialize())
}

func TestNewTokenPanicsOnComposite(t *testing.T) {
	assert.Panics(t, func() { perltoken.NewToken(perltoken.KindBlock, "") })
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "documentation", perltoken.KindDocumentation.String())
	assert.Equal(t, "dataSection", perltoken.KindDataSection.String())
	assert.True(t, perltoken.KindStatement.IsComposite())
	assert.False(t, perltoken.KindSeparator.IsComposite())
}
