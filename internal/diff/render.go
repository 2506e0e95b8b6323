package diff

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

type palette struct {
	header, hunk, insert, delete *color.Color
}

func newPalette(colored bool) palette {
	p := palette{
		header: color.New(color.FgCyan, color.Bold),
		hunk:   color.New(color.FgMagenta),
		insert: color.New(color.FgGreen),
		delete: color.New(color.FgRed),
	}
	for _, c := range []*color.Color{p.header, p.hunk, p.insert, p.delete} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// hunkRange is a half-open range of indices into Diff.Lines.
type hunkRange struct {
	start, end int
}

// hunks groups changed lines with up to contextSize equal lines around them. Changes separated by at most 2*contextSize equal lines share a hunk.
func (d Diff) hunks(contextSize int) []hunkRange {
	contextSize = max(contextSize, 0)

	var out []hunkRange
	lastChange := -1
	for i, l := range d.Lines {
		if l.Op == OpEqual {
			continue
		}
		if lastChange >= 0 && i-lastChange-1 <= 2*contextSize {
			out[len(out)-1].end = min(len(d.Lines), i+contextSize+1)
		} else {
			out = append(out, hunkRange{start: max(0, i-contextSize), end: min(len(d.Lines), i+contextSize+1)})
		}
		lastChange = i
	}
	return out
}

// RenderUnified renders d as a unified diff with contextSize lines of context around each change. It returns "" if nothing changed. If colored, ANSI colors are used
// regardless of whether output is a terminal.
func (d Diff) RenderUnified(fromFilename, toFilename string, contextSize int, colored bool) string {
	hunks := d.hunks(contextSize)
	if len(hunks) == 0 {
		return ""
	}
	p := newPalette(colored)

	// oldBefore[i] and newBefore[i] count the old/new lines among Lines[:i].
	oldBefore := make([]int, len(d.Lines)+1)
	newBefore := make([]int, len(d.Lines)+1)
	for i, l := range d.Lines {
		oldBefore[i+1], newBefore[i+1] = oldBefore[i], newBefore[i]
		if l.Op != OpInsert {
			oldBefore[i+1]++
		}
		if l.Op != OpDelete {
			newBefore[i+1]++
		}
	}

	var b strings.Builder
	b.WriteString(p.header.Sprint("--- "+fromFilename) + "\n")
	b.WriteString(p.header.Sprint("+++ "+toFilename) + "\n")
	for _, h := range hunks {
		oldCount := oldBefore[h.end] - oldBefore[h.start]
		newCount := newBefore[h.end] - newBefore[h.start]
		b.WriteString(p.hunk.Sprint(fmt.Sprintf("@@ -%d,%d +%d,%d @@", rangeStart(oldBefore[h.start], oldCount), oldCount, rangeStart(newBefore[h.start], newCount), newCount)) + "\n")

		for _, l := range d.Lines[h.start:h.end] {
			switch l.Op {
			case OpInsert:
				b.WriteString(p.insert.Sprint("+"+l.Text) + "\n")
			case OpDelete:
				b.WriteString(p.delete.Sprint("-"+l.Text) + "\n")
			default:
				b.WriteString(" " + l.Text + "\n")
			}
		}
	}
	return b.String()
}

// rangeStart returns the 1-based start line for a hunk header. An empty range names the line before it.
func rangeStart(before, count int) int {
	if count == 0 {
		return before
	}
	return before + 1
}
