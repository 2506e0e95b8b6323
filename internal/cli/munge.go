package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/codalotl/podmunge/internal/config"
	"github.com/codalotl/podmunge/internal/diff"
	"github.com/codalotl/podmunge/internal/podmunger"
)

const stdinName = "-"

type mungeFlags struct {
	write, check, showDiff, verbose bool
}

func runMunge(cmd *cobra.Command, env runEnv, args []string) error {
	f := cmd.Flags()
	var mf mungeFlags
	var err error
	if mf.write, err = f.GetBool("write"); err != nil {
		return err
	}
	if mf.check, err = f.GetBool("check"); err != nil {
		return err
	}
	if mf.showDiff, err = f.GetBool("diff"); err != nil {
		return err
	}
	if mf.verbose, err = f.GetBool("verbose"); err != nil {
		return err
	}
	if mf.write && mf.check {
		return usageErrorf("--write and --check cannot be used together")
	}
	for _, a := range args {
		if a == stdinName && mf.write {
			return usageErrorf("--write cannot be used with stdin")
		}
	}

	cfg, err := config.Load(env.homeDir, env.workDir, env.getenv)
	if err != nil {
		return ExitError{Code: 2, Err: fmt.Errorf("invalid configuration: %w", err)}
	}
	if err := applyFlags(cmd, &cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return UsageError{Message: err.Error()}
	}

	log := newLogger(env.err, mf.verbose)
	defer func() { _ = log.Sync() }()
	log.Debug("configuration", zap.Strings("sources", cfg.Sources), zap.String("replacer", cfg.Replacer), zap.Strings("transforms", cfg.Transforms))

	transformer, err := cfg.Transformer()
	if err != nil {
		return err
	}
	baseOpts, err := cfg.MungerOptions()
	if err != nil {
		return err
	}

	p := &processor{env: env, flags: mf, log: log, colored: isTerminal(env.out) && env.getenv("NO_COLOR") == ""}
	var errs []error
	changed := false
	for _, name := range args {
		opts := append(baseOpts[:len(baseOpts):len(baseOpts)], podmunger.WithLogger(newDiagnostics(log, name)))
		m, err := podmunger.New(transformer, opts...)
		if err != nil {
			return err
		}
		didChange, err := p.process(m, name)
		if err != nil {
			log.Debug("failed", zap.String("file", name), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		changed = changed || didChange
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	if mf.check && changed {
		return errWouldChange
	}
	return nil
}

// applyFlags overlays explicitly set flags onto cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	var err error
	if f.Changed("replacer") {
		if cfg.Replacer, err = f.GetString("replacer"); err != nil {
			return err
		}
	}
	if f.Changed("post-code-replacer") {
		if cfg.PostCodeReplacer, err = f.GetString("post-code-replacer"); err != nil {
			return err
		}
	}
	if f.Changed("transform") {
		if cfg.Transforms, err = f.GetStringArray("transform"); err != nil {
			return err
		}
	}
	if f.Changed("width") {
		if cfg.Width, err = f.GetInt("width"); err != nil {
			return err
		}
	}
	if f.Changed("encoding") {
		if cfg.Encoding, err = f.GetString("encoding"); err != nil {
			return err
		}
	}
	return nil
}

type processor struct {
	env     runEnv
	flags   mungeFlags
	log     *zap.Logger
	colored bool
}

// process munges one file (or stdin) and reports whether it changed.
func (p *processor) process(m *podmunger.Munger, name string) (bool, error) {
	src, mode, err := p.read(name)
	if err != nil {
		return false, err
	}

	args := podmunger.Args{Filename: name}
	if name == stdinName {
		args.Filename = ""
	}
	out, err := m.MungeBytes(src, args)
	if err != nil {
		return false, err
	}
	changed := string(src) != string(out)
	p.log.Debug("munged", zap.String("file", name), zap.Bool("changed", changed), zap.Int("bytes", len(out)))

	if p.flags.showDiff && changed {
		if err := p.printDiff(m, name, src, out); err != nil {
			return changed, err
		}
	}

	switch {
	case p.flags.check:
		if changed {
			_, err = fmt.Fprintln(p.env.out, name)
		}
	case p.flags.write:
		if changed {
			err = os.WriteFile(name, out, mode)
		}
	case !p.flags.showDiff:
		_, err = p.env.out.Write(out)
	}
	return changed, err
}

func (p *processor) read(name string) ([]byte, os.FileMode, error) {
	if name == stdinName {
		b, err := io.ReadAll(p.env.in)
		if err != nil {
			return nil, 0, fmt.Errorf("read stdin: %w", err)
		}
		return b, 0, nil
	}
	info, err := os.Stat(name)
	if err != nil {
		return nil, 0, err
	}
	if info.IsDir() {
		return nil, 0, fmt.Errorf("%s is a directory", name)
	}
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, 0, err
	}
	return b, info.Mode().Perm(), nil
}

func (p *processor) printDiff(m *podmunger.Munger, name string, src, out []byte) error {
	before, err := m.Encoding().Decode(src)
	if err != nil {
		return err
	}
	after, err := m.Encoding().Decode(out)
	if err != nil {
		return err
	}
	label := name
	if name == stdinName {
		label = "<stdin>"
	}
	_, err = io.WriteString(p.env.out, diff.DiffText(before, after).RenderUnified(label+".orig", label, 3, p.colored))
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && f != nil && term.IsTerminal(int(f.Fd()))
}
