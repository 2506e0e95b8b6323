package cli

import (
	"errors"
	"fmt"

	"github.com/codalotl/podmunge/internal/perltoken"
	"github.com/codalotl/podmunge/internal/textenc"
)

// ExitCoder is an error with an explicit process exit code.
type ExitCoder interface {
	error
	ExitCode() int
}

// UsageError indicates a user-facing mistake with flags or arguments (exit code 2).
type UsageError struct {
	Message string
}

func (e UsageError) Error() string { return e.Message }
func (e UsageError) ExitCode() int { return 2 }

func usageErrorf(format string, args ...any) UsageError {
	return UsageError{Message: fmt.Sprintf(format, args...)}
}

// ExitError wraps an error with a specific exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

func (e ExitError) Unwrap() error { return e.Err }
func (e ExitError) ExitCode() int { return e.Code }

// errWouldChange is returned by --check when at least one file is not already munged.
var errWouldChange = ExitError{Code: 1, Err: errors.New("some files would be changed")}

// ExitCode returns the process exit code for err:
//   - 0 for nil
//   - the code of an ExitCoder anywhere in err's chain
//   - 2 for input podmunge can't read (Perl parse errors and encoding errors)
//   - 1 otherwise
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ec ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	var perr *perltoken.ParseError
	var eerr *textenc.EncodingError
	if errors.As(err, &perr) || errors.As(err, &eerr) {
		return 2
	}
	return 1
}
