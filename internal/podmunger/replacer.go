package podmunger

import (
	"fmt"
	"strings"

	"github.com/codalotl/podmunge/internal/perltoken"
)

// Replacer selects what takes the place of a POD block in the code once the POD has been extracted. The set of replacers is closed; see ParseReplacer.
type Replacer int

const (
	// ReplaceWithNothing removes the POD outright. Code after it moves up.
	ReplaceWithNothing Replacer = iota

	// ReplaceWithComment turns each POD line into a "#pod " comment line ("#pod" for empty lines). Line numbers of later code are unchanged.
	ReplaceWithComment

	// ReplaceWithBlank turns the POD into as many newlines as it had lines. Line numbers of later code are unchanged.
	ReplaceWithBlank
)

const commentMarker = "#pod"

var replacerNames = map[Replacer]string{
	ReplaceWithNothing: "nothing",
	ReplaceWithComment: "comment",
	ReplaceWithBlank:   "blank",
}

// String returns the short name of r ("nothing", "comment", or "blank").
func (r Replacer) String() string {
	if name, ok := replacerNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Replacer(%d)", int(r))
}

// ParseReplacer returns the Replacer named name. Both short names ("nothing", "comment", "blank") and long names ("replace_with_nothing", ...) are accepted.
func ParseReplacer(name string) (Replacer, error) {
	short := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), "replace_with_")
	for r, n := range replacerNames {
		if n == short {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown replacer %q (want nothing, comment, or blank)", name)
}

// Replacements returns the tokens that should replace doc, in order. It does not modify doc or its tree.
func (r Replacer) Replacements(doc *perltoken.Token) []*perltoken.Token {
	switch r {
	case ReplaceWithComment:
		return []*perltoken.Token{perltoken.NewToken(perltoken.KindComment, commentOut(doc.String()))}
	case ReplaceWithBlank:
		return []*perltoken.Token{perltoken.NewToken(perltoken.KindWhitespace, strings.Repeat("\n", countLines(doc.String())))}
	default:
		return nil
	}
}

// commentOut prefixes every line of text with the comment marker. A trailing newline is not considered to start another line.
func commentOut(text string) string {
	body, hadNewline := strings.CutSuffix(text, "\n")
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = commentMarker
		} else {
			lines[i] = commentMarker + " " + line
		}
	}
	out := strings.Join(lines, "\n")
	if hadNewline {
		out += "\n"
	}
	return out
}

// countLines returns the number of lines text spans: its newlines, plus one if it ends in an unterminated line.
func countLines(text string) int {
	n := strings.Count(text, "\n")
	if text != "" && !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}

// Policy holds the two replacer slots: Normal applies to POD that appears before the last line of code, and PostCode applies to POD after it (or to all POD when the
// document has no code).
type Policy struct {
	Normal   Replacer
	PostCode Replacer
}

// For returns the replacer for a POD block.
func (p Policy) For(afterLastCode bool) Replacer {
	if afterLastCode {
		return p.PostCode
	}
	return p.Normal
}
