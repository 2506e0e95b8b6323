package perltoken

import (
	"fmt"
	"strings"
)

// Tree is a tokenized document. It owns every Token reachable from Root. A Tree is not safe for concurrent mutation.
type Tree struct {
	Root *Token // always KindDocument
}

// InsertionError is returned when tokens cannot be attached at the requested position.
type InsertionError struct {
	Line    int    // line of the anchor token, if known
	Message string // why the insertion failed
}

func (e *InsertionError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("insert at line %d: %s", e.Line, e.Message)
	}
	return "insert: " + e.Message
}

// Serialize returns the verbatim rendering of the whole tree. For a freshly tokenized tree this is byte-identical to the source.
func (tr *Tree) Serialize() string {
	var b strings.Builder
	tr.Root.writeTo(&b)
	return b.String()
}

// Walk visits every token below Root in document order (pre-order). If fn returns false for a composite token, its children are skipped.
func (tr *Tree) Walk(fn func(tok *Token) bool) {
	var walk func(t *Token)
	walk = func(t *Token) {
		for _, c := range t.Children {
			if fn(c) && !c.IsLeaf() {
				walk(c)
			}
		}
	}
	walk(tr.Root)
}

// Find returns every token below Root for which pred returns true, in document order. Matches are descended into.
func (tr *Tree) Find(pred func(tok *Token) bool) []*Token {
	var out []*Token
	tr.Walk(func(tok *Token) bool {
		if pred(tok) {
			out = append(out, tok)
		}
		return true
	})
	return out
}

// FindFirst returns the first token for which pred returns true, or nil.
func (tr *Tree) FindFirst(pred func(tok *Token) bool) *Token {
	var found *Token
	tr.Walk(func(tok *Token) bool {
		if found != nil {
			return false
		}
		if pred(tok) {
			found = tok
			return false
		}
		return true
	})
	return found
}

// InsertAfter attaches toks, in order, immediately after anchor in anchor's parent. Tokens with a zero Line inherit anchor's Line. An *InsertionError is returned if anchor
// is not attached to tr, or if any of toks is already attached somewhere.
func (tr *Tree) InsertAfter(anchor *Token, toks ...*Token) error {
	if anchor == nil {
		return &InsertionError{Message: "nil anchor"}
	}
	if !tr.owns(anchor) {
		return &InsertionError{Line: anchor.Line, Message: "anchor is not attached to this tree"}
	}
	parent := anchor.parent
	idx := parent.indexOf(anchor)
	if idx < 0 {
		return &InsertionError{Line: anchor.Line, Message: "anchor missing from its parent"}
	}
	for _, t := range toks {
		if t == nil {
			return &InsertionError{Line: anchor.Line, Message: "nil token"}
		}
		if t.parent != nil || t == tr.Root {
			return &InsertionError{Line: anchor.Line, Message: "token is already attached"}
		}
	}

	// Build a fresh slice so callers holding the old one keep a consistent view.
	children := make([]*Token, 0, len(parent.Children)+len(toks))
	children = append(children, parent.Children[:idx+1]...)
	for _, t := range toks {
		t.parent = parent
		if t.Line == 0 {
			t.Line = anchor.Line
		}
		children = append(children, t)
	}
	children = append(children, parent.Children[idx+1:]...)
	parent.Children = children
	return nil
}

// Remove detaches tok from tr. It returns false if tok was not attached to tr.
func (tr *Tree) Remove(tok *Token) bool {
	if tok == nil || !tr.owns(tok) {
		return false
	}
	parent := tok.parent
	idx := parent.indexOf(tok)
	if idx < 0 {
		return false
	}
	children := make([]*Token, 0, len(parent.Children)-1)
	children = append(children, parent.Children[:idx]...)
	children = append(children, parent.Children[idx+1:]...)
	parent.Children = children
	tok.parent = nil
	return true
}

// Prune removes every token matching pred (without descending into removed tokens) and returns the number removed.
func (tr *Tree) Prune(pred func(tok *Token) bool) int {
	var doomed []*Token
	tr.Walk(func(tok *Token) bool {
		if pred(tok) {
			doomed = append(doomed, tok)
			return false
		}
		return true
	})
	for _, t := range doomed {
		tr.Remove(t)
	}
	return len(doomed)
}

// owns reports whether tok is a strict descendant of tr.Root.
func (tr *Tree) owns(tok *Token) bool {
	for p := tok.parent; p != nil; p = p.parent {
		if p == tr.Root {
			return true
		}
	}
	return false
}
