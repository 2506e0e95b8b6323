// Package pod models POD (Perl's Plain Old Documentation) as an ordered list of paragraphs. It is deliberately shallow: it knows paragraph boundaries and command names,
// not the meaning of commands or formatting codes.
//
// Parse drops "=pod" and "=cut" command paragraphs, and Text always wraps its output in a single "=pod" ... "=cut" pair, so Parse(d.Text()) reproduces d.
//
// Parsing normalizes some whitespace: CRLF becomes LF, trailing spaces are trimmed from non-verbatim paragraphs, and runs of blank lines between paragraphs (including
// between two verbatim paragraphs) become a single blank line. Verbatim lines are otherwise kept as written.
package pod

import (
	"strings"
)

// ParagraphKind is the kind of a Paragraph.
type ParagraphKind int

const (
	Ordinary ParagraphKind = iota // flowing text
	Verbatim                      // first line starts with a space or tab; never rewrapped
	Command                       // "=name content"
)

// String returns a string representation of the ParagraphKind.
func (k ParagraphKind) String() string {
	switch k {
	case Ordinary:
		return "ordinary"
	case Verbatim:
		return "verbatim"
	case Command:
		return "command"
	default:
		return "unknown"
	}
}

// Paragraph is a single POD paragraph. Paragraphs never contain blank lines and never end with a newline.
type Paragraph struct {
	Kind    ParagraphKind
	Command string // only for Command: the name without "=" (ex: "head1", "over", "begin")
	Content string // for Command: everything after the name and its separating whitespace; otherwise the full paragraph text
}

// NewCommand returns a Command paragraph.
func NewCommand(name, content string) Paragraph {
	return Paragraph{Kind: Command, Command: name, Content: content}
}

// NewOrdinary returns an Ordinary paragraph.
func NewOrdinary(text string) Paragraph {
	return Paragraph{Kind: Ordinary, Content: text}
}

// NewVerbatim returns a Verbatim paragraph. Lines of text that aren't already indented are indented with four spaces.
func NewVerbatim(text string) Paragraph {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		if line != "" && line[0] != ' ' && line[0] != '\t' {
			lines[i] = "    " + line
		}
	}
	return Paragraph{Kind: Verbatim, Content: strings.Join(lines, "\n")}
}

// String renders p as POD source, without a trailing newline.
func (p Paragraph) String() string {
	if p.Kind != Command {
		return p.Content
	}
	if p.Content == "" {
		return "=" + p.Command
	}
	if strings.HasPrefix(p.Content, "\n") {
		return "=" + p.Command + p.Content
	}
	return "=" + p.Command + " " + p.Content
}

// IsCommand reports whether p is the command name (ex: p.IsCommand("head1")).
func (p Paragraph) IsCommand(name string) bool {
	return p.Kind == Command && p.Command == name
}

// Document is a parsed POD document.
type Document struct {
	Paragraphs []Paragraph
}

// Parse splits text into paragraphs. Paragraphs are separated by one or more blank (whitespace-only) lines. A "=cut" line ends the paragraph it appears in, even
// without a blank line before it. "=pod" and "=cut" commands are dropped. Parse never fails: text that isn't POD at all becomes Ordinary paragraphs.
func Parse(text string) *Document {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	doc := &Document{}

	var cur []string
	flush := func() {
		if len(cur) == 0 {
			return
		}
		if cur[0][0] != ' ' && cur[0][0] != '\t' {
			for i, line := range cur {
				cur[i] = strings.TrimRight(line, " \t")
			}
		}
		p := newParagraph(strings.Join(cur, "\n"))
		cur = nil
		if (p.IsCommand("pod") && p.Content == "") || p.IsCommand("cut") {
			return
		}
		doc.Paragraphs = append(doc.Paragraphs, p)
	}

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" || isCutLine(line) {
			flush()
			continue
		}
		cur = append(cur, line)
	}
	flush()
	return doc
}

func newParagraph(raw string) Paragraph {
	if len(raw) >= 2 && raw[0] == '=' && isLetter(raw[1]) {
		i := 1
		for i < len(raw) && (isLetter(raw[i]) || (raw[i] >= '0' && raw[i] <= '9') || raw[i] == '_') {
			i++
		}
		name := raw[1:i]
		rest := raw[i:]
		if !strings.HasPrefix(rest, "\n") {
			rest = strings.TrimLeft(rest, " \t")
		}
		return Paragraph{Kind: Command, Command: name, Content: rest}
	}
	if raw[0] == ' ' || raw[0] == '\t' {
		return Paragraph{Kind: Verbatim, Content: raw}
	}
	return Paragraph{Kind: Ordinary, Content: raw}
}

// Text renders d as a standalone POD document: "=pod", each paragraph, then "=cut", separated by blank lines and ending with a newline.
func (d *Document) Text() string {
	var b strings.Builder
	b.WriteString("=pod\n\n")
	for _, p := range d.Paragraphs {
		b.WriteString(p.String())
		b.WriteString("\n\n")
	}
	b.WriteString("=cut\n")
	return b.String()
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	return &Document{Paragraphs: append([]Paragraph(nil), d.Paragraphs...)}
}

// Commands returns the paragraphs that are the given command, in order.
func (d *Document) Commands(name string) []Paragraph {
	var out []Paragraph
	for _, p := range d.Paragraphs {
		if p.IsCommand(name) {
			out = append(out, p)
		}
	}
	return out
}

// isCutLine reports whether line is a "=cut" command, which ends POD wherever it appears.
func isCutLine(line string) bool {
	rest, ok := strings.CutPrefix(line, "=cut")
	return ok && (rest == "" || rest[0] == ' ' || rest[0] == '\t')
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
