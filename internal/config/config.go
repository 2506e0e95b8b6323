// Package config loads podmunge settings. Sources are applied lowest priority first:
//   - built-in defaults (see Default)
//   - the user file, ~/.podmunge.toml
//   - the nearest .podmunge.toml found walking up from the working directory
//   - PODMUNGE_* environment variables (see EnvVars)
//
// Command-line flags are applied on top by the caller. Missing and empty files are skipped; unknown keys are errors.
//
// Example .podmunge.toml:
//
//	replacer = "comment"
//	post_code_replacer = "nothing"
//	transforms = ["markdown", "reflow"]
//	width = 72
//	encoding = "utf-8"
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/codalotl/podmunge/internal/podmunger"
	"github.com/codalotl/podmunge/internal/podtransform"
	"github.com/codalotl/podmunge/internal/textenc"
)

// FileName is the name of podmunge config files.
const FileName = ".podmunge.toml"

// Config holds resolved settings. Replacer names are those accepted by podmunger.ParseReplacer.
type Config struct {
	Replacer         string   `toml:"replacer"`
	PostCodeReplacer string   `toml:"post_code_replacer"` // "" mirrors Replacer
	Transforms       []string `toml:"transforms"`
	Width            int      `toml:"width"`
	Encoding         string   `toml:"encoding"`

	Sources []string `toml:"-"` // files and env vars that set at least one key, in the order applied
}

// Default returns the built-in settings: POD is removed from the code, no transforms run, reflow width is 78, and files are UTF-8.
func Default() Config {
	return Config{
		Replacer: podmunger.ReplaceWithNothing.String(),
		Width:    podtransform.DefaultWidth,
		Encoding: textenc.UTF8.Name(),
	}
}

// EnvVars maps environment variables to the TOML keys they override. PODMUNGE_TRANSFORMS is a comma-separated list.
var EnvVars = map[string]string{
	"PODMUNGE_REPLACER":           "replacer",
	"PODMUNGE_POST_CODE_REPLACER": "post_code_replacer",
	"PODMUNGE_TRANSFORMS":         "transforms",
	"PODMUNGE_WIDTH":              "width",
	"PODMUNGE_ENCODING":           "encoding",
}

// Load returns Default overlaid with the user file in homeDir, the nearest FileName at or above startDir, and the environment (via getenv, which may be nil).
// homeDir may be "" to skip the user file.
func Load(homeDir, startDir string, getenv func(string) string) (Config, error) {
	cfg := Default()

	var userFile string
	if homeDir != "" {
		userFile = filepath.Join(homeDir, FileName)
		if err := cfg.MergeFile(userFile); err != nil {
			return Config{}, err
		}
	}

	nearest, ok, err := FindNearest(startDir)
	if err != nil {
		return Config{}, err
	}
	if ok && nearest != userFile {
		if err := cfg.MergeFile(nearest); err != nil {
			return Config{}, err
		}
	}

	if getenv != nil {
		if err := cfg.MergeEnv(getenv); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FindNearest searches startDir and its parents for FileName.
func FindNearest(startDir string) (string, bool, error) {
	dir, err := filepath.Abs(ExpandPath(startDir))
	if err != nil {
		return "", false, fmt.Errorf("resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// MergeFile overlays the keys set in the TOML file at path onto c. A missing or blank file is not an error.
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil
	}

	var file Config
	meta, err := toml.Decode(string(data), &file)
	if err != nil {
		return fmt.Errorf("%s: parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	set := false
	if meta.IsDefined("replacer") {
		c.Replacer, set = file.Replacer, true
	}
	if meta.IsDefined("post_code_replacer") {
		c.PostCodeReplacer, set = file.PostCodeReplacer, true
	}
	if meta.IsDefined("transforms") {
		c.Transforms, set = file.Transforms, true
	}
	if meta.IsDefined("width") {
		c.Width, set = file.Width, true
	}
	if meta.IsDefined("encoding") {
		c.Encoding, set = file.Encoding, true
	}
	if set {
		c.Sources = append(c.Sources, path)
	}
	return nil
}

// MergeEnv overlays the environment variables in EnvVars that getenv reports as non-empty.
func (c *Config) MergeEnv(getenv func(string) string) error {
	for _, name := range []string{"PODMUNGE_REPLACER", "PODMUNGE_POST_CODE_REPLACER", "PODMUNGE_TRANSFORMS", "PODMUNGE_WIDTH", "PODMUNGE_ENCODING"} {
		v := strings.TrimSpace(getenv(name))
		if v == "" {
			continue
		}
		switch EnvVars[name] {
		case "replacer":
			c.Replacer = v
		case "post_code_replacer":
			c.PostCodeReplacer = v
		case "transforms":
			c.Transforms = splitList(v)
		case "width":
			w, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: width must be an integer: %w", name, err)
			}
			c.Width = w
		case "encoding":
			c.Encoding = v
		}
		c.Sources = append(c.Sources, "$"+name)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks that every setting names something that exists.
func (c Config) Validate() error {
	if _, err := c.Policy(); err != nil {
		return err
	}
	if c.Width <= 0 {
		return fmt.Errorf("width must be positive, got %d", c.Width)
	}
	if _, err := textenc.Lookup(c.Encoding); err != nil {
		return err
	}
	for _, name := range c.Transforms {
		if _, err := podtransform.Lookup(name, podtransform.Options{Width: c.Width}); err != nil {
			return err
		}
	}
	return nil
}

// Policy resolves the replacer names.
func (c Config) Policy() (podmunger.Policy, error) {
	normal, err := podmunger.ParseReplacer(c.Replacer)
	if err != nil {
		return podmunger.Policy{}, fmt.Errorf("replacer: %w", err)
	}
	p := podmunger.Policy{Normal: normal, PostCode: normal}
	if strings.TrimSpace(c.PostCodeReplacer) != "" {
		p.PostCode, err = podmunger.ParseReplacer(c.PostCodeReplacer)
		if err != nil {
			return podmunger.Policy{}, fmt.Errorf("post_code_replacer: %w", err)
		}
	}
	return p, nil
}

// Transformer builds the configured transform chain.
func (c Config) Transformer() (podmunger.Transformer, error) {
	return podtransform.Build(c.Transforms, podtransform.Options{Width: c.Width})
}

// MungerOptions returns the podmunger options for c's policy and encoding.
func (c Config) MungerOptions() ([]podmunger.Option, error) {
	p, err := c.Policy()
	if err != nil {
		return nil, err
	}
	enc, err := textenc.Lookup(c.Encoding)
	if err != nil {
		return nil, err
	}
	return []podmunger.Option{
		podmunger.WithReplacer(p.Normal),
		podmunger.WithPostCodeReplacer(p.PostCode),
		podmunger.WithEncoding(enc),
	}, nil
}
