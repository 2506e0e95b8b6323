// Package simplelogger appends diagnostics to the file named by PODMUNGE_LOG_FILE. It exists for debugging editor and pre-commit integrations, where stderr is often
// swallowed.
package simplelogger

import (
	"bytes"
	"fmt"
	"os"
	"sync"
)

// EnvVar names the environment variable holding the log file path.
const EnvVar = "PODMUNGE_LOG_FILE"

var mu sync.Mutex

// Log is a minimal printf-style logger. It appends formatted output to the file
// specified by PODMUNGE_LOG_FILE.
//
// If PODMUNGE_LOG_FILE is unset/empty or the path can't be opened as a file,
// Log is a no-op.
func Log(format string, args ...any) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return
	}

	mu.Lock()
	defer mu.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()

	var b bytes.Buffer
	_, _ = fmt.Fprintf(&b, format, args...)
	if b.Len() == 0 || b.Bytes()[b.Len()-1] != '\n' {
		_ = b.WriteByte('\n')
	}
	_, _ = f.Write(b.Bytes())
}

// Logger writes each message through Log, prefixed with Prefix if set. The zero value is ready to use.
type Logger struct {
	Prefix string
}

// Log writes msg verbatim (it is not a format string).
func (l Logger) Log(msg string) {
	if l.Prefix != "" {
		Log("%s: %s", l.Prefix, msg)
		return
	}
	Log("%s", msg)
}
