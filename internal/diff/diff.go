// Package diff computes line diffs between an "old" and a "new" text and renders them as unified diffs.
//
//	d := diff.DiffText(before, after)
//	if d.Changed() {
//		fmt.Print(d.RenderUnified("a/lib/Foo.pm", "b/lib/Foo.pm", 3, false))
//	}
//
// Lines are split on '\n'. Line.Text never includes the '\n'; a missing final newline is not reported.
package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op is an operation from old text to new text.
type Op int

// Operations from old text to new text.
const (
	OpEqual Op = iota
	OpInsert
	OpDelete
)

// Line is one line of a Diff.
type Line struct {
	Op   Op
	Text string // without the trailing newline
}

// Diff is a line diff from OldText to NewText. Lines holds every line of both sides in order: equal lines once, deleted lines before the inserted lines that replace
// them.
type Diff struct {
	OldText string
	NewText string
	Lines   []Line
}

// DiffText diffs oldText to newText line by line.
func DiffText(oldText, newText string) Diff {
	dmp := diffmatchpatch.New()
	rOld, rNew, lineArray := dmp.DiffLinesToRunes(oldText, newText)
	diffs := dmp.DiffCleanupMerge(dmp.DiffMainRunes(rOld, rNew, false))

	d := Diff{OldText: oldText, NewText: newText}
	for _, chunk := range diffs {
		var op Op
		switch chunk.Type {
		case diffmatchpatch.DiffInsert:
			op = OpInsert
		case diffmatchpatch.DiffDelete:
			op = OpDelete
		default:
			op = OpEqual
		}
		// Each rune of chunk.Text indexes one line in lineArray.
		for _, r := range chunk.Text {
			idx := int(r)
			if idx < 0 || idx >= len(lineArray) {
				continue
			}
			d.Lines = append(d.Lines, Line{Op: op, Text: strings.TrimSuffix(lineArray[idx], "\n")})
		}
	}
	return d
}

// Changed reports whether the two sides differ.
func (d Diff) Changed() bool {
	return d.OldText != d.NewText
}

// Stats returns the number of inserted and deleted lines.
func (d Diff) Stats() (inserted, deleted int) {
	for _, l := range d.Lines {
		switch l.Op {
		case OpInsert:
			inserted++
		case OpDelete:
			deleted++
		}
	}
	return inserted, deleted
}
