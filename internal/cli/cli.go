// Package cli implements the podmunge command.
package cli

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// Version is the podmunge version. It is a var (not a const) so build tooling can override it (for example via `-ldflags "-X .../internal/cli.Version=1.2.3"`).
var Version = "0.1.0"

// RunOptions override the process environment. Zero fields use the real one. Overriding is useful for testing.
type RunOptions struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	Getenv  func(string) string // defaults to os.Getenv
	HomeDir string              // where the user config file lives; defaults to os.UserHomeDir
	WorkDir string              // where the nearest-config search starts; defaults to os.Getwd
}

// Run runs the CLI with args (typically you'd use os.Args).
//
// It returns a recommended exit code and an error, if any (see ExitCode). In cases of errors, Run has already displayed an error message to opts.Err || Stderr.
// Callers may use os.Exit with the exit code.
func Run(args []string, opts *RunOptions) (int, error) {
	env := resolveEnv(opts)

	argv := []string{}
	if len(args) > 0 {
		argv = args[1:]
	}

	root := newRootCommand(env)
	root.SetArgs(argv)
	root.SetIn(env.in)
	root.SetOut(env.out)
	root.SetErr(env.err)

	err := root.Execute()
	if err == nil {
		return 0, nil
	}
	if !errors.Is(err, errWouldChange) {
		msg := strings.TrimSpace(err.Error())
		_, _ = io.WriteString(env.err, "podmunge: "+msg+"\n")
		var usage UsageError
		if errors.As(err, &usage) {
			_, _ = io.WriteString(env.err, "Run 'podmunge --help' for usage.\n")
		}
	}
	return ExitCode(err), err
}

type runEnv struct {
	in      io.Reader
	out     io.Writer
	err     io.Writer
	getenv  func(string) string
	homeDir string
	workDir string
}

func resolveEnv(opts *RunOptions) runEnv {
	env := runEnv{in: os.Stdin, out: os.Stdout, err: os.Stderr, getenv: os.Getenv}
	if opts != nil {
		if opts.In != nil {
			env.in = opts.In
		}
		if opts.Out != nil {
			env.out = opts.Out
		}
		if opts.Err != nil {
			env.err = opts.Err
		}
		if opts.Getenv != nil {
			env.getenv = opts.Getenv
		}
		env.homeDir = opts.HomeDir
		env.workDir = opts.WorkDir
	}
	if env.homeDir == "" {
		env.homeDir, _ = os.UserHomeDir()
	}
	if env.workDir == "" {
		env.workDir, _ = os.Getwd()
	}
	return env
}

func newRootCommand(env runEnv) *cobra.Command {
	root := &cobra.Command{
		Use:   "podmunge [flags] <file>...",
		Short: "Move the POD in Perl files after __END__",
		Long: `podmunge gathers the POD blocks scattered through Perl source files, optionally
transforms them, and writes them back as a single block after __END__ (or before
an existing __DATA__ section). Where each POD block was, the code keeps nothing,
a "#pod" comment copy, or blank lines, depending on --replacer.

Use "-" to read from stdin. By default the result is printed to stdout.

Settings are read from ~/.podmunge.toml, then the nearest .podmunge.toml, then
PODMUNGE_* environment variables; flags override all of them.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return usageErrorf("no files given (use - for stdin)")
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMunge(cmd, env, args)
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return UsageError{Message: err.Error()}
	})

	f := root.Flags()
	f.BoolP("write", "w", false, "rewrite files in place instead of printing them")
	f.Bool("check", false, "list files that would change and exit 1 if there are any")
	f.BoolP("diff", "d", false, "print a unified diff of the changes instead of the result")
	f.String("replacer", "", "what replaces POD before the last line of code: nothing, comment, or blank")
	f.String("post-code-replacer", "", "what replaces POD after the last line of code (defaults to --replacer)")
	f.StringArray("transform", nil, "transform to apply to the POD, in order (identity, reflow, markdown); repeatable")
	f.Int("width", 0, "line width for the reflow transform")
	f.String("encoding", "", "encoding of the input files (ex: utf-8, latin1)")
	f.BoolP("verbose", "v", false, "log each file processed to stderr")

	root.AddCommand(newVersionCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the podmunge version",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageErrorf("version takes no arguments")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := io.WriteString(cmd.OutOrStdout(), "podmunge "+Version+"\n")
			return err
		},
	}
}
