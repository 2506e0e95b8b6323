package simplelogger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLog_WritesAndAppends(t *testing.T) {
	t.Setenv(EnvVar, filepath.Join(t.TempDir(), "podmunge.log"))

	Log("hello %s", "world")
	Log(" %d", 123)

	b, err := os.ReadFile(os.Getenv(EnvVar))
	require.NoError(t, err)
	require.Equal(t, "hello world\n 123\n", string(b))
}

func TestLogger_Log(t *testing.T) {
	t.Setenv(EnvVar, filepath.Join(t.TempDir(), "podmunge.log"))

	Logger{}.Log("100% literal\n")
	Logger{Prefix: "podmunge"}.Log("lib/Foo.pm: odd")

	b, err := os.ReadFile(os.Getenv(EnvVar))
	require.NoError(t, err)
	require.Equal(t, "100% literal\npodmunge: lib/Foo.pm: odd\n", string(b))
}

func TestLog_NoOpWhenUnset(t *testing.T) {
	t.Setenv(EnvVar, "")
	Log("should not %s", "panic")
}

func TestLog_NoOpWhenPathIsDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvVar, dir)

	Logger{}.Log("ignored")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}
