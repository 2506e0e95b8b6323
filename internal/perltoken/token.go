package perltoken

import (
	"fmt"
	"strings"
)

// Kind is the category of a Token.
type Kind int

const (
	KindCode          Kind = iota // words, variables, numbers, operators, braces
	KindLiteral                   // quote-like tokens, heredoc markers and heredoc bodies
	KindDocumentation             // a POD block, from its opening =command through =cut (or EOF)
	KindComment                   // "#" to end of line, without the newline. Tokens inserted by callers may span several lines and end in one.
	KindWhitespace                // runs of spaces, tabs, and newlines
	KindSeparator                 // the "__END__" or "__DATA__" line, including its newline
	KindEndMarker                 // verbatim non-POD lines after __END__
	KindDataMarker                // everything after __DATA__

	// Composite kinds. Composite tokens have Children and no Text.
	KindDocument
	KindStatement
	KindBlock
	KindEndSection
	KindDataSection
)

// String returns a string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindCode:
		return "code"
	case KindLiteral:
		return "literal"
	case KindDocumentation:
		return "documentation"
	case KindComment:
		return "comment"
	case KindWhitespace:
		return "whitespace"
	case KindSeparator:
		return "separator"
	case KindEndMarker:
		return "end"
	case KindDataMarker:
		return "data"
	case KindDocument:
		return "document"
	case KindStatement:
		return "statement"
	case KindBlock:
		return "block"
	case KindEndSection:
		return "endSection"
	case KindDataSection:
		return "dataSection"
	default:
		return "unknown"
	}
}

// IsComposite reports whether tokens of kind k hold children instead of text.
func (k Kind) IsComposite() bool {
	return k >= KindDocument
}

// Token is a node in a Tree. Leaf tokens carry Text; composite tokens carry Children, and their rendering is the concatenation of their children's renderings.
type Token struct {
	Kind     Kind
	Line     int    // 1-based line on which the token starts. Tokens created with NewToken have Line 0 until inserted.
	Text     string // leaf only
	Children []*Token

	parent *Token
}

// NewToken returns a detached leaf token. It panics if kind is composite.
func NewToken(kind Kind, text string) *Token {
	if kind.IsComposite() {
		panic(fmt.Sprintf("perltoken: NewToken called with composite kind %v", kind))
	}
	return &Token{Kind: kind, Text: text}
}

func newComposite(kind Kind, line int) *Token {
	return &Token{Kind: kind, Line: line}
}

// IsLeaf reports whether t is a leaf token.
func (t *Token) IsLeaf() bool {
	return !t.Kind.IsComposite()
}

// IsCodeBearing reports whether t is a leaf that contributes to the program itself (code or a literal).
func (t *Token) IsCodeBearing() bool {
	return t.Kind == KindCode || t.Kind == KindLiteral
}

// Parent returns t's parent, or nil if t is a root or detached.
func (t *Token) Parent() *Token {
	return t.parent
}

// String returns the verbatim rendering of t.
func (t *Token) String() string {
	if t.IsLeaf() {
		return t.Text
	}
	var b strings.Builder
	t.writeTo(&b)
	return b.String()
}

func (t *Token) writeTo(b *strings.Builder) {
	if t.IsLeaf() {
		b.WriteString(t.Text)
		return
	}
	for _, c := range t.Children {
		c.writeTo(b)
	}
}

func (t *Token) appendChild(c *Token) {
	c.parent = t
	t.Children = append(t.Children, c)
}

func (t *Token) indexOf(c *Token) int {
	for i, x := range t.Children {
		if x == c {
			return i
		}
	}
	return -1
}

// firstCodeLeaf returns the first code-bearing leaf in t (depth-first), or nil.
func (t *Token) firstCodeLeaf() *Token {
	for _, c := range t.Children {
		if c.IsCodeBearing() {
			return c
		}
		if !c.IsLeaf() {
			if f := c.firstCodeLeaf(); f != nil {
				return f
			}
		}
	}
	return nil
}
