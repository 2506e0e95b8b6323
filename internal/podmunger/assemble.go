package podmunger

import (
	"regexp"
	"strings"

	"github.com/codalotl/podmunge/internal/perltoken"
)

// EndMarker is the line that separates code from the POD appended after it when the source has no trailing data of its own.
const EndMarker = "__END__"

var bareEndRE = regexp.MustCompile(`^__END__\s*\z`)

// ExtractTrailingData removes every __END__ and __DATA__ section from tree and returns their concatenated text. ok is false if there were none, or if the only one was
// an __END__ line followed by nothing but whitespace (so a fresh marker can be written in its place).
func ExtractTrailingData(tree *perltoken.Tree) (data string, ok bool) {
	isSection := func(tok *perltoken.Token) bool {
		return tok.Kind == perltoken.KindEndSection || tok.Kind == perltoken.KindDataSection
	}

	sections := tree.Find(isSection)
	var b strings.Builder
	for _, s := range sections {
		b.WriteString(s.String())
	}
	tree.Prune(isSection)

	if len(sections) == 0 {
		return "", false
	}
	if len(sections) == 1 && sections[0].Kind == perltoken.KindEndSection && bareEndRE.MatchString(b.String()) {
		return "", false
	}
	return b.String(), true
}

var trailingBlankRE = regexp.MustCompile(`\n\s*\z`)

// trimTrailingBlank removes the final newline and any whitespace after it.
func trimTrailingBlank(s string) string {
	return trailingBlankRE.ReplaceAllString(s, "")
}

// Reassemble joins code, rendered POD, and trailing data into the final document. Trailing blank lines are trimmed from code and podText. With trailing data the POD
// goes before it, separated by one blank line on each side; without, a fresh __END__ line goes between code and POD and the document ends with a single newline.
func Reassemble(code, podText, trailing string, hasTrailing bool) string {
	code = trimTrailingBlank(code)
	podText = trimTrailingBlank(podText)
	if hasTrailing {
		return code + "\n\n" + podText + "\n\n" + trailing
	}
	return code + "\n\n" + EndMarker + "\n\n" + podText + "\n"
}
