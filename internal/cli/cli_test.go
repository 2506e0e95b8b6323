package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	unmunged = "my $x = 1;\n\n=head1 NAME\n\nHello\n\n"
	munged   = "my $x = 1;\n\n__END__\n\n=pod\n\n=head1 NAME\n\nHello\n\n=cut\n"
)

type result struct {
	code   int
	err    error
	stdout string
	stderr string
}

// run runs the CLI with an isolated home and working directory. env supplies environment variables.
func run(t *testing.T, workDir string, stdin string, env map[string]string, args ...string) result {
	t.Helper()
	if workDir == "" {
		workDir = t.TempDir()
	}
	var out, errOut bytes.Buffer
	code, err := Run(append([]string{"podmunge"}, args...), &RunOptions{
		In:      strings.NewReader(stdin),
		Out:     &out,
		Err:     &errOut,
		Getenv:  func(k string) string { return env[k] },
		HomeDir: t.TempDir(),
		WorkDir: workDir,
	})
	return result{code: code, err: err, stdout: out.String(), stderr: errOut.String()}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestHelp(t *testing.T) {
	r := run(t, "", "", nil, "--help")
	assert.Equal(t, 0, r.code)
	assert.NoError(t, r.err)
	assert.Contains(t, r.stdout, "podmunge [flags] <file>...")
	assert.Contains(t, r.stdout, "--post-code-replacer")
}

func TestVersion(t *testing.T) {
	r := run(t, "", "", nil, "version")
	assert.Equal(t, 0, r.code)
	assert.Equal(t, "podmunge "+Version+"\n", r.stdout)

	r = run(t, "", "", nil, "version", "extra")
	assert.Equal(t, 2, r.code)
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "no files", args: nil, want: "no files given"},
		{name: "unknown flag", args: []string{"--bogus", "-"}, want: "unknown flag"},
		{name: "write with check", args: []string{"--write", "--check", "x.pl"}, want: "cannot be used together"},
		{name: "write stdin", args: []string{"-w", "-"}, want: "stdin"},
		{name: "bad replacer", args: []string{"--replacer", "haiku", "-"}, want: "replacer"},
		{name: "bad transform", args: []string{"--transform", "nope", "-"}, want: "unknown transform"},
		{name: "bad width", args: []string{"--width", "0", "-"}, want: "width"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := run(t, "", unmunged, nil, tt.args...)
			assert.Equal(t, 2, r.code)
			var usage UsageError
			assert.ErrorAs(t, r.err, &usage)
			assert.Contains(t, r.stderr, tt.want)
			assert.Contains(t, r.stderr, "--help")
			assert.Empty(t, r.stdout)
		})
	}
}

func TestStdin(t *testing.T) {
	r := run(t, "", unmunged, nil, "-")
	require.NoError(t, r.err)
	assert.Equal(t, 0, r.code)
	assert.Equal(t, munged, r.stdout)
	assert.Empty(t, r.stderr)
}

func TestPrintFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "Foo.pm", unmunged)

	r := run(t, dir, "", nil, path)
	require.NoError(t, r.err)
	assert.Equal(t, munged, r.stdout)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, unmunged, string(b), "file should be untouched without --write")
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	changed := writeFile(t, dir, "a.pl", unmunged)
	clean := writeFile(t, dir, "b.pl", munged)
	require.NoError(t, os.Chmod(changed, 0o755))

	r := run(t, dir, "", nil, "-w", changed, clean)
	require.NoError(t, r.err)
	assert.Empty(t, r.stdout)

	b, err := os.ReadFile(changed)
	require.NoError(t, err)
	assert.Equal(t, munged, string(b))

	info, err := os.Stat(changed)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	b, err = os.ReadFile(clean)
	require.NoError(t, err)
	assert.Equal(t, munged, string(b))
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	changed := writeFile(t, dir, "a.pl", unmunged)
	clean := writeFile(t, dir, "b.pl", munged)

	r := run(t, dir, "", nil, "--check", changed, clean)
	assert.Equal(t, 1, r.code)
	assert.ErrorIs(t, r.err, errWouldChange)
	assert.Equal(t, changed+"\n", r.stdout)
	assert.Empty(t, r.stderr)

	r = run(t, dir, "", nil, "--check", clean)
	assert.Equal(t, 0, r.code)
	assert.NoError(t, r.err)
	assert.Empty(t, r.stdout)
}

func TestDiff(t *testing.T) {
	r := run(t, "", unmunged, nil, "--diff", "-")
	require.NoError(t, r.err)
	assert.True(t, strings.HasPrefix(r.stdout, "--- <stdin>.orig\n+++ <stdin>\n@@ "), r.stdout)
	assert.Contains(t, r.stdout, "\n+__END__\n")
	assert.Contains(t, r.stdout, "\n+=cut\n")
	assert.NotContains(t, r.stdout, "\x1b[")

	r = run(t, "", munged, nil, "--diff", "-")
	require.NoError(t, r.err)
	assert.Empty(t, r.stdout)
}

func TestReplacerFlag(t *testing.T) {
	src := "=head1 A\n\nx\n\n=cut\n\nmy $x = 1;\n"
	r := run(t, "", src, nil, "--replacer", "comment", "-")
	require.NoError(t, r.err)
	assert.Equal(t, "#pod =head1 A\n#pod\n#pod x\n#pod\n#pod =cut\n\nmy $x = 1;\n\n__END__\n\n=pod\n\n=head1 A\n\nx\n\n=cut\n", r.stdout)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".podmunge.toml", "replacer = \"blank\"\n")
	sub := filepath.Join(dir, "lib")
	require.NoError(t, os.Mkdir(sub, 0o755))

	src := "=head1 A\n\nx\n\n=cut\n\nmy $x = 1;\n"
	r := run(t, sub, src, nil, "-")
	require.NoError(t, r.err)
	assert.Equal(t, "\n\n\n\n\n\nmy $x = 1;\n\n__END__\n\n=pod\n\n=head1 A\n\nx\n\n=cut\n", r.stdout)

	// Flags win over the file.
	r = run(t, sub, src, nil, "--replacer", "nothing", "-")
	require.NoError(t, r.err)
	assert.Equal(t, "\nmy $x = 1;\n\n__END__\n\n=pod\n\n=head1 A\n\nx\n\n=cut\n", r.stdout)
}

func TestBadConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".podmunge.toml", "replacr = \"blank\"\n")
	r := run(t, dir, unmunged, nil, "-")
	assert.Equal(t, 2, r.code)
	assert.Contains(t, r.stderr, "invalid configuration")
}

func TestEnvTransforms(t *testing.T) {
	src := "1;\n\n=begin markdown\n\n# Title\n\n=end markdown\n"
	r := run(t, "", src, map[string]string{"PODMUNGE_TRANSFORMS": "markdown"}, "-")
	require.NoError(t, r.err)
	assert.Equal(t, "1;\n\n__END__\n\n=pod\n\n=head1 Title\n\n=cut\n", r.stdout)
}

func TestParseError(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.pl", "my $x = 1;\nmy $y = 'oops;\n")
	good := writeFile(t, dir, "good.pl", unmunged)

	r := run(t, dir, "", nil, bad, good)
	assert.Equal(t, 2, r.code)
	assert.Contains(t, r.stderr, "podmunge: ")
	assert.Contains(t, r.stderr, "bad.pl")
	assert.NotContains(t, r.stderr, "--help")

	// Later files are still processed.
	assert.Equal(t, munged, r.stdout)
}

func TestMissingFile(t *testing.T) {
	dir := t.TempDir()
	r := run(t, dir, "", nil, filepath.Join(dir, "nope.pl"))
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "nope.pl")
}

func TestLiteralWarning(t *testing.T) {
	src := "my $s = <<'EOT';\n=head1 Fake\nEOT\nprint $s;\n"
	r := run(t, "", src, nil, "-")
	require.NoError(t, r.err)
	assert.Contains(t, r.stderr, "there is POD inside string literals")
	assert.Contains(t, r.stdout, "print $s;\n\n__END__\n")
}

func TestVerbose(t *testing.T) {
	r := run(t, "", unmunged, nil, "-v", "-")
	require.NoError(t, r.err)
	assert.Contains(t, r.stderr, "munged")
	assert.Equal(t, munged, r.stdout)

	r = run(t, "", unmunged, nil, "-")
	require.NoError(t, r.err)
	assert.Empty(t, r.stderr)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 2, ExitCode(usageErrorf("x")))
	assert.Equal(t, 3, ExitCode(ExitError{Code: 3}))
	assert.Equal(t, 1, ExitCode(os.ErrNotExist))
}
