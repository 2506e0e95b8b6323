package podtransform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codalotl/podmunge/internal/pod"
	"github.com/codalotl/podmunge/internal/podmunger"
)

func docOf(podText string) podmunger.Doc {
	return podmunger.Doc{Pod: pod.Parse(podText)}
}

func TestIdentity(t *testing.T) {
	in := docOf("=head1 A\n\ntext\n")
	out, err := Identity.Transform(in, podmunger.Args{})
	require.NoError(t, err)
	assert.Same(t, in.Pod, out.Pod)
}

func TestChain(t *testing.T) {
	appendPara := func(s string) podmunger.Transformer {
		return podmunger.TransformerFunc(func(doc podmunger.Doc, args podmunger.Args) (podmunger.Doc, error) {
			doc.Pod.Paragraphs = append(doc.Pod.Paragraphs, pod.NewOrdinary(s))
			return doc, nil
		})
	}

	out, err := Chain(appendPara("one"), appendPara("two")).Transform(docOf(""), podmunger.Args{})
	require.NoError(t, err)
	assert.Equal(t, "=pod\n\none\n\ntwo\n\n=cut\n", out.Pod.Text())

	boom := errors.New("boom")
	failing := podmunger.TransformerFunc(func(doc podmunger.Doc, args podmunger.Args) (podmunger.Doc, error) { return doc, boom })
	called := false
	after := podmunger.TransformerFunc(func(doc podmunger.Doc, args podmunger.Args) (podmunger.Doc, error) {
		called = true
		return doc, nil
	})
	_, err = Chain(failing, after).Transform(docOf(""), podmunger.Args{})
	assert.Same(t, boom, err)
	assert.False(t, called)

	in := docOf("x\n")
	out, err = Chain().Transform(in, podmunger.Args{})
	require.NoError(t, err)
	assert.Same(t, in.Pod, out.Pod)
}

func TestLookup(t *testing.T) {
	assert.Equal(t, []string{"identity", "markdown", "reflow"}, Names())

	tr, err := Lookup("Reflow", Options{Width: 40})
	require.NoError(t, err)
	assert.Equal(t, Reflower{Width: 40}, tr)

	tr, err = Lookup("reflow", Options{})
	require.NoError(t, err)
	assert.Equal(t, Reflower{Width: DefaultWidth}, tr)

	_, err = Lookup("spellcheck", Options{})
	assert.ErrorContains(t, err, "identity, markdown, reflow")

	_, err = Build([]string{"identity", "nope"}, Options{})
	assert.Error(t, err)

	tr, err = Build([]string{"reflow", "markdown"}, Options{Width: 10})
	require.NoError(t, err)
	out, err := tr.Transform(docOf("=for markdown one *two* three four\n"), podmunger.Args{})
	require.NoError(t, err)
	assert.Equal(t, "=pod\n\none I<two> three four\n\n=cut\n", out.Pod.Text())
}

func TestRegions(t *testing.T) {
	paras := pod.Parse("a\n\n=begin html\n\n=begin x\n\n=end x\n\nb\n\n=end html\n\nc\n\n=begin text\n\nd\n").Paragraphs
	assert.Equal(t, []region{
		{format: "html", begin: 1, end: 5},
		{format: "text", begin: 7, end: 9},
	}, regions(paras))
}
