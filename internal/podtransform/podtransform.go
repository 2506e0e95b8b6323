// Package podtransform holds ready-made podmunger.Transformers: Identity, Reflow, Markdown, and Chain to combine them. Lookup resolves them by name for configuration
// files and flags.
package podtransform

import (
	"fmt"
	"sort"
	"strings"

	"github.com/codalotl/podmunge/internal/pod"
	"github.com/codalotl/podmunge/internal/podmunger"
)

// DefaultWidth is the reflow width used when Options.Width is unset.
const DefaultWidth = 78

// Identity returns the document unchanged.
var Identity podmunger.Transformer = podmunger.TransformerFunc(func(doc podmunger.Doc, args podmunger.Args) (podmunger.Doc, error) {
	return doc, nil
})

// Chain returns a Transformer that applies ts in order, feeding each one's output to the next. It stops at the first error. Chain() is Identity.
func Chain(ts ...podmunger.Transformer) podmunger.Transformer {
	if len(ts) == 0 {
		return Identity
	}
	if len(ts) == 1 {
		return ts[0]
	}
	return podmunger.TransformerFunc(func(doc podmunger.Doc, args podmunger.Args) (podmunger.Doc, error) {
		var err error
		for _, t := range ts {
			doc, err = t.Transform(doc, args)
			if err != nil {
				return podmunger.Doc{}, err
			}
		}
		return doc, nil
	})
}

// Options configure transforms built by Lookup.
type Options struct {
	Width int // reflow width; DefaultWidth if <= 0
}

var builders = map[string]func(Options) podmunger.Transformer{
	"identity": func(Options) podmunger.Transformer { return Identity },
	"reflow": func(o Options) podmunger.Transformer {
		if o.Width <= 0 {
			return Reflow(DefaultWidth)
		}
		return Reflow(o.Width)
	},
	"markdown": func(Options) podmunger.Transformer { return Markdown() },
}

// Names returns the names Lookup accepts, sorted.
func Names() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the transform registered under name.
func Lookup(name string, opts Options) (podmunger.Transformer, error) {
	build, ok := builders[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown transform %q (want one of %s)", name, strings.Join(Names(), ", "))
	}
	return build(opts), nil
}

// Build looks up each name and chains the results, in order.
func Build(names []string, opts Options) (podmunger.Transformer, error) {
	ts := make([]podmunger.Transformer, 0, len(names))
	for _, name := range names {
		t, err := Lookup(name, opts)
		if err != nil {
			return nil, err
		}
		ts = append(ts, t)
	}
	return Chain(ts...), nil
}

// region is a "=begin FORMAT" ... "=end FORMAT" span of paragraph indices. end is the index of the =end paragraph, or len(paragraphs) if it is missing.
type region struct {
	format     string
	begin, end int
}

// regions returns the top-level =begin/=end regions of paras, in order. Nested regions are folded into the outer one.
func regions(paras []pod.Paragraph) []region {
	var out []region
	for i := 0; i < len(paras); i++ {
		if !paras[i].IsCommand("begin") {
			continue
		}
		r := region{format: formatName(paras[i].Content), begin: i, end: len(paras)}
		depth := 1
		for j := i + 1; j < len(paras); j++ {
			if paras[j].IsCommand("begin") {
				depth++
			} else if paras[j].IsCommand("end") {
				depth--
				if depth == 0 {
					r.end = j
					break
				}
			}
		}
		out = append(out, r)
		i = r.end
	}
	return out
}

// formatName returns the first word of a =begin or =for paragraph's content, lowercased.
func formatName(content string) string {
	fields := strings.Fields(content)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}
