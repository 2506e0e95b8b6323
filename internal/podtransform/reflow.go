package podtransform

import (
	"fmt"
	"strings"

	"github.com/codalotl/podmunge/internal/pod"
	"github.com/codalotl/podmunge/internal/podmunger"
	"github.com/codalotl/podmunge/internal/q/uni"
)

// Reflower rewraps ordinary paragraphs so no line is wider than Width display columns, unless a single word is. Commands, verbatim paragraphs, and everything inside
// =begin/=end regions are left alone.
type Reflower struct {
	Width int
	Uni   *uni.Options // width rules; nil for non-East Asian locales
}

// Reflow returns a Reflower for width.
func Reflow(width int) Reflower {
	return Reflower{Width: width}
}

func (r Reflower) Transform(doc podmunger.Doc, args podmunger.Args) (podmunger.Doc, error) {
	if r.Width <= 0 {
		return podmunger.Doc{}, fmt.Errorf("reflow: width must be positive, got %d", r.Width)
	}

	skip := make(map[int]bool)
	for _, reg := range regions(doc.Pod.Paragraphs) {
		for i := reg.begin; i <= reg.end && i < len(doc.Pod.Paragraphs); i++ {
			skip[i] = true
		}
	}

	out := doc.Pod.Clone()
	for i, p := range out.Paragraphs {
		if p.Kind != pod.Ordinary || skip[i] {
			continue
		}
		out.Paragraphs[i].Content = wrap(p.Content, r.Width, r.Uni)
	}
	doc.Pod = out
	return doc, nil
}

// wrap greedily fills lines of at most width columns with the words of text.
func wrap(text string, width int, opts *uni.Options) string {
	words := uni.Words(text, opts)
	if len(words) == 0 {
		return text
	}

	var b strings.Builder
	lineWidth := 0
	for i, w := range words {
		switch {
		case i == 0:
		case lineWidth+1+w.Width > width:
			b.WriteByte('\n')
			lineWidth = 0
		default:
			b.WriteByte(' ')
			lineWidth++
		}
		b.WriteString(w.Text)
		lineWidth += w.Width
	}
	return b.String()
}
