// Package uni measures text the way a monospace terminal or pager displays it: by grapheme cluster, with East Asian wide characters taking two columns.
package uni

import (
	"unicode"
	"unicode/utf8"

	"github.com/clipperhouse/uax29/v2/graphemes"
	"github.com/mattn/go-runewidth"
)

// Options control width calculation.
//
// Currently only relevant for East Asian code points and their locale.
type Options struct {
	EastAsianWidth   bool // if true, treats certain East Asian code points as 2 wide (e.g., Chinese, Japanese, Korean). Use if the locale is one of CJK.
	TreatEmojiAsWide bool // Only considered if EastAsianWidth. If true, treats emoji as wide (2 columns).
}

// TextWidth returns the display width of s. If opts is nil, locale is assumed to be non-East Asian.
func TextWidth(s string, opts *Options) int {
	return condition(opts).StringWidth(s)
}

// RuneWidth returns the display width of r. If opts is nil, locale is assumed to be non-East Asian.
func RuneWidth(r rune, opts *Options) int {
	return condition(opts).RuneWidth(r)
}

// Word is a run of non-space grapheme clusters.
type Word struct {
	Text  string
	Width int // display width of Text
}

// Words splits s at whitespace, like strings.Fields, but never separates a grapheme cluster: a combining mark after a space stays attached to that space's cluster,
// and so counts as whitespace rather than starting a word.
func Words(s string, opts *Options) []Word {
	cond := condition(opts)

	var words []Word
	start := -1
	iter := graphemes.FromString(s)
	for iter.Next() {
		if isSpaceCluster(iter.Value()) {
			if start >= 0 {
				words = append(words, newWord(s[start:iter.Start()], cond))
				start = -1
			}
			continue
		}
		if start < 0 {
			start = iter.Start()
		}
	}
	if start >= 0 {
		words = append(words, newWord(s[start:], cond))
	}
	return words
}

// Graphemes returns the grapheme clusters of s, in order.
func Graphemes(s string) []string {
	var out []string
	iter := graphemes.FromString(s)
	for iter.Next() {
		out = append(out, iter.Value())
	}
	return out
}

func newWord(text string, cond *runewidth.Condition) Word {
	return Word{Text: text, Width: cond.StringWidth(text)}
}

// isSpaceCluster reports whether the cluster's base rune is whitespace.
func isSpaceCluster(cluster string) bool {
	r, _ := utf8.DecodeRuneInString(cluster)
	return unicode.IsSpace(r)
}

func condition(opts *Options) *runewidth.Condition {
	cond := runewidth.NewCondition()
	cond.EastAsianWidth = false
	cond.StrictEmojiNeutral = true

	if opts == nil {
		return cond
	}

	cond.EastAsianWidth = opts.EastAsianWidth
	if opts.EastAsianWidth && opts.TreatEmojiAsWide {
		cond.StrictEmojiNeutral = false
	}

	return cond
}
