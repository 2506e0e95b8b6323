package uni

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const combining = "a\u0301b\u4e16" // a + combining acute, b, CJK "world"

func TestTextWidth(t *testing.T) {
	assert.Equal(t, 4, TextWidth(combining, nil))

	star := "a☆"
	thumbs := "a\U0001F44D"

	assert.Equal(t, 2, TextWidth(star, nil))

	eastAsian := &Options{EastAsianWidth: true}
	assert.Equal(t, 3, TextWidth(star, eastAsian))
	assert.Equal(t, 2, TextWidth(thumbs, eastAsian))

	wideEmoji := &Options{EastAsianWidth: true, TreatEmojiAsWide: true}
	assert.Equal(t, 3, TextWidth(thumbs, wideEmoji))
}

func TestRuneWidth(t *testing.T) {
	assert.Equal(t, 1, RuneWidth('a', nil))
	assert.Equal(t, 2, RuneWidth('世', nil))
	assert.Equal(t, 1, RuneWidth('☆', nil))
	assert.Equal(t, 2, RuneWidth('☆', &Options{EastAsianWidth: true}))
}

func TestGraphemes(t *testing.T) {
	assert.Equal(t, []string{"a\u0301", "b", "\u4e16"}, Graphemes(combining))
	assert.Empty(t, Graphemes(""))
}

func TestWords(t *testing.T) {
	words := Words("  "+combining+" \t\nnext word ", nil)
	assert.Equal(t, []Word{
		{Text: combining, Width: 4},
		{Text: "next", Width: 4},
		{Text: "word", Width: 4},
	}, words)

	assert.Empty(t, Words(" \n ", nil))
	assert.Equal(t, []Word{{Text: "x", Width: 1}}, Words(" \u0301x", nil))
}
