package podmunger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codalotl/podmunge/internal/perltesting"
	"github.com/codalotl/podmunge/internal/perltoken"
)

func TestExtractDocumentation(t *testing.T) {
	src := perltesting.Dedent(`
		package Foo;

		=head1 NAME

		Foo

		=cut

		sub bar {
		=pod

		inner

		=cut
		    return 1;
		}

		=head1 AFTER

		tail
	`)
	tree := perltesting.MustTokenize(t, src)

	units, err := ExtractDocumentation(tree, Policy{})
	require.NoError(t, err)
	require.Len(t, units, 3)

	assert.Equal(t, "=head1 NAME\n\nFoo\n\n=cut\n", units[0].Text)
	assert.Equal(t, 3, units[0].Line)
	assert.False(t, units[0].AfterLastCode)

	assert.Equal(t, "=pod\n\ninner\n\n=cut\n", units[1].Text)
	assert.Equal(t, 10, units[1].Line)
	assert.False(t, units[1].AfterLastCode)

	assert.Equal(t, "=head1 AFTER\n\ntail\n", units[2].Text)
	assert.True(t, units[2].AfterLastCode)

	assert.Equal(t, "package Foo;\n\n\nsub bar {\n    return 1;\n}\n\n", tree.Serialize())
	assert.Empty(t, tree.Find(func(tok *perltoken.Token) bool { return tok.Kind == perltoken.KindDocumentation }))
}

func TestExtractDocumentationNoCode(t *testing.T) {
	tree := perltesting.MustTokenize(t, "# just a comment\n=head1 A\n\na\n")
	units, err := ExtractDocumentation(tree, Policy{Normal: ReplaceWithBlank, PostCode: ReplaceWithComment})
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.True(t, units[0].AfterLastCode)
	assert.Equal(t, "# just a comment\n#pod =head1 A\n#pod\n#pod a\n", tree.Serialize())
}

func TestExtractDocumentationIgnoresTrailingSectionsForLastCode(t *testing.T) {
	tree := perltesting.MustTokenize(t, "1;\n=head1 A\n\na\n\n=cut\n__END__\nnot code\n")
	units, err := ExtractDocumentation(tree, Policy{})
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.True(t, units[0].AfterLastCode)
}

func TestExtractDocumentationLiteralsCountAsCode(t *testing.T) {
	tree := perltesting.MustTokenize(t, "=head1 A\n\na\n\n=cut\n\nmy $s = <<EOT;\nbody\nEOT\n")
	units, err := ExtractDocumentation(tree, Policy{Normal: ReplaceWithComment})
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.False(t, units[0].AfterLastCode)
	assert.Equal(t, "#pod =head1 A\n#pod\n#pod a\n#pod\n#pod =cut\n\nmy $s = <<EOT;\nbody\nEOT\n", tree.Serialize())
}

func TestJoinUnits(t *testing.T) {
	assert.Equal(t, "", joinUnits(nil))
	assert.Equal(t, "=pod\na\n\n=pod\nb\n", joinUnits([]DocUnit{{Text: "=pod\na\n"}, {Text: "=pod\nb\n"}}))
}

func TestFindSuspiciousLiteral(t *testing.T) {
	tree := perltesting.MustTokenize(t, "# =head1 in a comment\nmy $a = 'x';\nmy $b = q{\n=over\n};\n")
	lit := findSuspiciousLiteral(tree)
	require.NotNil(t, lit)
	assert.Equal(t, "q{\n=over\n}", lit.Text)

	tree = perltesting.MustTokenize(t, "my $a = '=head1 not at line start';\n")
	assert.Nil(t, findSuspiciousLiteral(tree))
}

func TestExtractTrailingData(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		data   string
		ok     bool
		remain string
	}{
		{name: "none", src: "1;\n", remain: "1;\n"},
		{name: "bare end", src: "1;\n__END__\n\n  \n", remain: "1;\n"},
		{name: "end with text", src: "1;\n__END__\nnotes\n", data: "__END__\nnotes\n", ok: true, remain: "1;\n"},
		{name: "data", src: "1;\n__DATA__\n", data: "__DATA__\n", ok: true, remain: "1;\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := perltesting.MustTokenize(t, tt.src)
			data, ok := ExtractTrailingData(tree)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.data, data)
			assert.Equal(t, tt.remain, tree.Serialize())
		})
	}
}

func TestReassemble(t *testing.T) {
	assert.Equal(t, "code\n\n__END__\n\n=pod\n\n=cut\n", Reassemble("code\n\n\n  \n", "=pod\n\n=cut\n\n\n", "", false))
	assert.Equal(t, "code\n\n=pod\n\n=cut\n\n__DATA__\nx\n\n", Reassemble("code\n", "=pod\n\n=cut\n", "__DATA__\nx\n\n", true))
	assert.Equal(t, "code;  \n\n__END__\n\npod\n", Reassemble("code;  ", "pod", "", false))
}
