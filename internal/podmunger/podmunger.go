// Package podmunger rewrites the POD in a Perl source document. It pulls every POD block out of the code (leaving a configurable replacement behind), hands the code
// tree and the gathered POD to a Transformer, and joins the results back into one document with the POD after a canonical __END__ line, or before any trailing data
// the source already had.
//
// The POD itself is opaque here: podmunger moves text around and never interprets it. See package podtransform for transforms that do.
package podmunger

import (
	"errors"
	"fmt"

	"github.com/codalotl/podmunge/internal/perltoken"
	"github.com/codalotl/podmunge/internal/pod"
	"github.com/codalotl/podmunge/internal/textenc"
)

// ErrIncompleteDoc is returned when a Transformer returns a Doc missing its code tree or its POD.
var ErrIncompleteDoc = errors.New("transform returned an incomplete document")

// ErrNoTransformer is returned by New when given a nil Transformer.
var ErrNoTransformer = errors.New("podmunger: nil transformer")

// Doc is the unit a Transformer works on: the code with its POD removed, and the POD gathered from it.
type Doc struct {
	Code *perltoken.Tree
	Pod  *pod.Document
}

// Args is passed through to the Transformer unchanged.
type Args struct {
	Filename string // optional; used in diagnostics
}

func (a Args) displayName() string {
	if a.Filename == "" {
		return "input"
	}
	return a.Filename
}

// Transformer modifies a Doc. It may change either part in place or return new ones, but must return both. A returned error is passed back to the caller of MungeString
// as-is.
type Transformer interface {
	Transform(doc Doc, args Args) (Doc, error)
}

// TransformerFunc adapts a function to a Transformer.
type TransformerFunc func(doc Doc, args Args) (Doc, error)

func (f TransformerFunc) Transform(doc Doc, args Args) (Doc, error) {
	return f(doc, args)
}

// Tokenizer turns Perl source into a token tree.
type Tokenizer interface {
	Tokenize(src string) (*perltoken.Tree, error)
}

// TokenizerFunc adapts a function to a Tokenizer.
type TokenizerFunc func(src string) (*perltoken.Tree, error)

func (f TokenizerFunc) Tokenize(src string) (*perltoken.Tree, error) {
	return f(src)
}

// Logger receives diagnostics, one line each.
type Logger interface {
	Log(msg string)
}

// LoggerFunc adapts a function to a Logger.
type LoggerFunc func(msg string)

func (f LoggerFunc) Log(msg string) {
	f(msg)
}

type nopLogger struct{}

func (nopLogger) Log(string) {}

// Option configures a Munger.
type Option func(*Munger)

// WithLogger sets the Logger that receives diagnostics. The default discards them.
func WithLogger(l Logger) Option {
	return func(m *Munger) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithReplacer sets the replacer used for POD that appears before the last line of code. It is also the post-code replacer unless WithPostCodeReplacer is given.
func WithReplacer(r Replacer) Option {
	return func(m *Munger) {
		m.policy.Normal = r
	}
}

// WithPostCodeReplacer sets the replacer used for POD after the last line of code.
func WithPostCodeReplacer(r Replacer) Option {
	return func(m *Munger) {
		m.postCode = &r
	}
}

// WithTokenizer replaces the default tokenizer (perltoken.Tokenize).
func WithTokenizer(t Tokenizer) Option {
	return func(m *Munger) {
		if t != nil {
			m.tokenizer = t
		}
	}
}

// WithEncoding sets the byte encoding MungeBytes decodes from and encodes to. The default is UTF-8.
func WithEncoding(enc textenc.Encoding) Option {
	return func(m *Munger) {
		m.enc = enc
	}
}

// Munger rewrites documents. Its configuration is fixed at construction, so it may be used from multiple goroutines.
type Munger struct {
	transformer Transformer
	tokenizer   Tokenizer
	logger      Logger
	enc         textenc.Encoding
	policy      Policy
	postCode    *Replacer
}

// New returns a Munger applying t. By default POD is replaced with nothing.
func New(t Transformer, opts ...Option) (*Munger, error) {
	if t == nil {
		return nil, ErrNoTransformer
	}
	m := &Munger{
		transformer: t,
		tokenizer:   TokenizerFunc(perltoken.Tokenize),
		logger:      nopLogger{},
		enc:         textenc.UTF8,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.policy.PostCode = m.policy.Normal
	if m.postCode != nil {
		m.policy.PostCode = *m.postCode
	}
	return m, nil
}

// Policy returns the resolved replacement policy.
func (m *Munger) Policy() Policy {
	return m.policy
}

// Encoding returns the encoding used by MungeBytes.
func (m *Munger) Encoding() textenc.Encoding {
	return m.enc
}

// MungeString rewrites src. The steps are:
//   - tokenize src (a *perltoken.ParseError is wrapped and returned)
//   - extract all POD, in document order, leaving replacements per the policy
//   - log a warning if a string literal looks like it contains POD
//   - remove any __END__/__DATA__ sections, keeping their text
//   - parse the POD and run the transformer
//   - reassemble code, POD, and trailing data
//
// Errors returned by the transformer are returned unwrapped.
func (m *Munger) MungeString(src string, args Args) (string, error) {
	if err := textenc.ValidateUTF8(src); err != nil {
		return "", err
	}

	tree, err := m.tokenizer.Tokenize(src)
	if err != nil {
		return "", fmt.Errorf("tokenize %s: %w", args.displayName(), err)
	}

	units, err := ExtractDocumentation(tree, m.policy)
	if err != nil {
		return "", fmt.Errorf("extract documentation from %s: %w", args.displayName(), err)
	}

	if findSuspiciousLiteral(tree) != nil {
		m.logger.Log(fmt.Sprintf("can't invoke podmunge on %s: there is POD inside string literals", args.displayName()))
	}

	trailing, hasTrailing := ExtractTrailingData(tree)

	out, err := m.transformer.Transform(Doc{Code: tree, Pod: pod.Parse(joinUnits(units))}, args)
	if err != nil {
		return "", err
	}
	if out.Code == nil || out.Code.Root == nil {
		return "", fmt.Errorf("%s: missing code: %w", args.displayName(), ErrIncompleteDoc)
	}
	if out.Pod == nil {
		return "", fmt.Errorf("%s: missing pod: %w", args.displayName(), ErrIncompleteDoc)
	}

	return Reassemble(out.Code.Serialize(), out.Pod.Text(), trailing, hasTrailing), nil
}

// MungeBytes decodes src with the configured encoding, rewrites it with MungeString, and encodes the result back. Decoding and encoding failures are
// *textenc.EncodingError.
func (m *Munger) MungeBytes(src []byte, args Args) ([]byte, error) {
	text, err := m.enc.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", args.displayName(), err)
	}
	out, err := m.MungeString(text, args)
	if err != nil {
		return nil, err
	}
	b, err := m.enc.Encode(out)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", args.displayName(), err)
	}
	return b, nil
}
