package perltoken

import (
	"fmt"
	"strings"
)

// ParseError is returned by Tokenize when src is malformed (ex: an unterminated string or heredoc, or unbalanced braces).
type ParseError struct {
	Line int    // 1-based line where the offending construct starts
	Msg  string // what went wrong
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d: %s", e.Line, e.Msg)
}

// Tokenize tokenizes src into a Tree. See the package documentation for the tree shape. A *ParseError is returned for malformed input; no partial tree is returned.
func Tokenize(src string) (*Tree, error) {
	lx := &lexer{src: src, line: 1}
	lx.doc = newComposite(KindDocument, 1)
	lx.stack = []*Token{lx.doc}
	if err := lx.run(); err != nil {
		return nil, err
	}
	return &Tree{Root: lx.doc}, nil
}

// compoundKeywords begin statements that end at the close of their block rather than at a ";".
var compoundKeywords = map[string]bool{
	"sub": true, "if": true, "elsif": true, "else": true, "unless": true, "while": true, "until": true,
	"for": true, "foreach": true, "package": true, "BEGIN": true, "END": true, "INIT": true,
	"CHECK": true, "UNITCHECK": true, "{": true,
}

// regexKeywords are words after which a "/" starts a match rather than a division.
var regexKeywords = map[string]bool{
	"split": true, "grep": true, "map": true, "if": true, "unless": true, "and": true, "or": true,
	"not": true, "return": true, "when": true, "while": true, "until": true, "push": true, "unshift": true,
	"join": true,
}

// quoteOps maps quote-like operators to the number of delimited parts they take.
var quoteOps = map[string]int{
	"q": 1, "qq": 1, "qw": 1, "qx": 1, "qr": 1, "m": 1,
	"s": 2, "tr": 2, "y": 2,
}

type heredoc struct {
	terminator string
	indented   bool // <<~
	line       int
}

type lexer struct {
	src  string
	pos  int
	line int // line at src[pos]

	doc      *Token
	stack    []*Token // open containers; stack[0] is doc
	last     *Token   // last code-bearing leaf emitted
	heredocs []heredoc
}

func (lx *lexer) top() *Token {
	return lx.stack[len(lx.stack)-1]
}

func (lx *lexer) push(t *Token) {
	lx.stack = append(lx.stack, t)
}

func (lx *lexer) pop() {
	lx.stack = lx.stack[:len(lx.stack)-1]
}

// emit creates a leaf of kind from src[start:lx.pos], appends it to parent, and advances the line counter.
func (lx *lexer) emitTo(parent *Token, kind Kind, start int) *Token {
	text := lx.src[start:lx.pos]
	tok := &Token{Kind: kind, Line: lx.line, Text: text}
	lx.line += strings.Count(text, "\n")
	parent.appendChild(tok)
	if tok.IsCodeBearing() {
		lx.last = tok
	}
	return tok
}

// emit appends trivia (whitespace, comments, POD) to the innermost open container.
func (lx *lexer) emit(kind Kind, start int) *Token {
	return lx.emitTo(lx.top(), kind, start)
}

// emitCode appends a code-bearing token, opening a statement first if none is open.
func (lx *lexer) emitCode(kind Kind, start int) *Token {
	lx.ensureStatement()
	return lx.emitTo(lx.top(), kind, start)
}

func (lx *lexer) ensureStatement() {
	if lx.top().Kind == KindStatement {
		return
	}
	st := newComposite(KindStatement, lx.line)
	lx.top().appendChild(st)
	lx.push(st)
}

func (lx *lexer) closeStatement() {
	if lx.top().Kind == KindStatement {
		lx.pop()
	}
}

func (lx *lexer) atLineStart() bool {
	return lx.pos == 0 || lx.src[lx.pos-1] == '\n'
}

func (lx *lexer) run() error {
	for lx.pos < len(lx.src) {
		if lx.atLineStart() {
			if startsPod(lx.src[lx.pos:]) {
				lx.scanPod(lx.top())
				continue
			}
			if kind, ok := sectionAt(lx.src[lx.pos:]); ok {
				return lx.scanSection(kind)
			}
		}

		c := lx.src[lx.pos]
		start := lx.pos
		switch {
		case isSpace(c):
			if err := lx.scanWhitespace(); err != nil {
				return err
			}
		case c == '#':
			lx.scanComment()
		case c == ';':
			lx.pos++
			lx.emitCode(KindCode, start)
			lx.closeStatement()
		case c == '{':
			lx.openBlock()
		case c == '}':
			if err := lx.closeBlock(); err != nil {
				return err
			}
		case c == '\'' || c == '"' || c == '`':
			lx.pos++
			if !lx.skipDelimited(c) {
				return &ParseError{Line: lx.line, Msg: fmt.Sprintf("unterminated string starting with %c", c)}
			}
			lx.emitCode(KindLiteral, start)
		case c == '/' && lx.expectOperand():
			lx.pos++
			if !lx.skipDelimited('/') {
				return &ParseError{Line: lx.line, Msg: "unterminated match"}
			}
			lx.skipModifiers()
			lx.emitCode(KindLiteral, start)
		case c == '<' && strings.HasPrefix(lx.src[lx.pos:], "<<"):
			if err := lx.scanHeredocOrShift(); err != nil {
				return err
			}
		case c == '$' || c == '@' || c == '%' || c == '&':
			lx.scanVariable()
		case isWordStart(c):
			if err := lx.scanWord(); err != nil {
				return err
			}
		case isDigit(c):
			lx.scanNumber()
		default:
			lx.pos++
			lx.emitCode(KindCode, start)
		}
	}
	return lx.finish()
}

func (lx *lexer) finish() error {
	lx.closeStatement()
	if len(lx.heredocs) > 0 {
		h := lx.heredocs[0]
		return &ParseError{Line: h.line, Msg: fmt.Sprintf("heredoc body for %q not found", h.terminator)}
	}
	if len(lx.stack) > 1 {
		return &ParseError{Line: lx.top().Line, Msg: "unclosed '{'"}
	}
	return nil
}

// scanWhitespace consumes a whitespace run. The run stops after a newline when heredoc bodies are pending (which are then consumed), or when the next line starts POD or
// a trailing section.
func (lx *lexer) scanWhitespace() error {
	start := lx.pos
	for lx.pos < len(lx.src) && isSpace(lx.src[lx.pos]) {
		c := lx.src[lx.pos]
		lx.pos++
		if c != '\n' {
			continue
		}
		if len(lx.heredocs) > 0 {
			lx.emit(KindWhitespace, start)
			return lx.scanHeredocBodies()
		}
		rest := lx.src[lx.pos:]
		if startsPod(rest) {
			break
		}
		if _, ok := sectionAt(rest); ok {
			break
		}
	}
	lx.emit(KindWhitespace, start)
	return nil
}

func (lx *lexer) scanComment() {
	start := lx.pos
	for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
		lx.pos++
	}
	lx.emit(KindComment, start)
}

// scanPod consumes a POD block starting at the current line into parent.
func (lx *lexer) scanPod(parent *Token) {
	start := lx.pos
	for lx.pos < len(lx.src) {
		lineEnd := lx.lineEnd()
		line := lx.src[lx.pos:lineEnd]
		lx.pos = lineEnd
		if isCutLine(line) {
			break
		}
	}
	lx.emitTo(parent, KindDocumentation, start)
}

// lineEnd returns the offset just past the newline ending the current line (or len(src)).
func (lx *lexer) lineEnd() int {
	if i := strings.IndexByte(lx.src[lx.pos:], '\n'); i >= 0 {
		return lx.pos + i + 1
	}
	return len(lx.src)
}

func (lx *lexer) scanSection(kind Kind) error {
	lx.closeStatement()
	if len(lx.stack) > 1 {
		return &ParseError{Line: lx.top().Line, Msg: "unclosed '{' before " + strings.TrimSpace(lx.src[lx.pos:lx.lineEnd()])}
	}
	if len(lx.heredocs) > 0 {
		h := lx.heredocs[0]
		return &ParseError{Line: h.line, Msg: fmt.Sprintf("heredoc body for %q not found", h.terminator)}
	}

	sectionKind := KindEndSection
	if kind == KindDataMarker {
		sectionKind = KindDataSection
	}
	section := newComposite(sectionKind, lx.line)
	lx.doc.appendChild(section)

	start := lx.pos
	lx.pos = lx.lineEnd()
	lx.emitTo(section, KindSeparator, start)

	if kind == KindDataMarker {
		if lx.pos < len(lx.src) {
			start = lx.pos
			lx.pos = len(lx.src)
			lx.emitTo(section, KindDataMarker, start)
		}
		return nil
	}

	// After __END__, POD blocks are still POD; everything else is verbatim.
	for lx.pos < len(lx.src) {
		if startsPod(lx.src[lx.pos:]) {
			lx.scanPod(section)
			continue
		}
		start = lx.pos
		for lx.pos < len(lx.src) && !startsPod(lx.src[lx.pos:]) {
			lx.pos = lx.lineEnd()
		}
		lx.emitTo(section, KindEndMarker, start)
	}
	return nil
}

func (lx *lexer) openBlock() {
	lx.ensureStatement()
	block := newComposite(KindBlock, lx.line)
	lx.top().appendChild(block)
	lx.push(block)
	start := lx.pos
	lx.pos++
	lx.emitTo(block, KindCode, start)
}

func (lx *lexer) closeBlock() error {
	// A statement left open by a missing ";" ends at the brace.
	lx.closeStatement()
	block := lx.top()
	if block.Kind != KindBlock {
		return &ParseError{Line: lx.line, Msg: "unmatched '}'"}
	}
	start := lx.pos
	lx.pos++
	lx.emitTo(block, KindCode, start)
	lx.pop()

	st := lx.top()
	if st.Kind == KindStatement && !isSubscript(st, block) {
		if first := st.firstCodeLeaf(); first != nil && compoundKeywords[first.Text] {
			lx.pop()
		}
	}
	return nil
}

// isSubscript reports whether block (a child of st) indexes or dereferences something, as in $h{x}, $a[0]{y}, @{$r}, or $r->{x}.
func isSubscript(st *Token, block *Token) bool {
	idx := st.indexOf(block)
	for i := idx - 1; i >= 0; i-- {
		prev := st.Children[i]
		switch prev.Kind {
		case KindWhitespace, KindComment, KindDocumentation:
			continue
		case KindBlock:
			return true
		case KindCode:
			t := prev.Text
			return strings.ContainsRune("$@%&", rune(t[0])) || t == ">" || t == "]"
		}
		return false
	}
	return false
}

// expectOperand reports whether the previous code token leaves the parser expecting a term, in which case "/" starts a match.
func (lx *lexer) expectOperand() bool {
	if lx.last == nil || lx.top().Kind != KindStatement {
		return true
	}
	text := lx.last.Text
	if lx.last.Kind == KindLiteral {
		return false
	}
	c := text[0]
	switch {
	case isWordStart(c):
		return regexKeywords[text]
	case c == '$', c == '@', c == '%', c == '&':
		return len(text) == 1 && c != '$'
	case isDigit(c), c == ')', c == ']', c == '}':
		return false
	}
	return true
}

func (lx *lexer) scanVariable() {
	start := lx.pos
	sigil := lx.src[lx.pos]
	lx.pos++
	if lx.pos >= len(lx.src) {
		lx.emitCode(KindCode, start)
		return
	}
	c := lx.src[lx.pos]
	if sigil == '$' && c == '#' && lx.pos+1 < len(lx.src) {
		// $#array, $#{expr}, $#$ref
		n := lx.src[lx.pos+1]
		if isWordStart(n) || n == '{' || n == '$' {
			lx.pos++
			c = n
		}
	}
	switch {
	case isWordStart(c) || c == ':':
		lx.skipName()
	case sigil == '$' && isDigit(c):
		for lx.pos < len(lx.src) && isDigit(lx.src[lx.pos]) {
			lx.pos++
		}
	case sigil == '$' && c == '^' && lx.pos+1 < len(lx.src) && isWordStart(lx.src[lx.pos+1]):
		lx.pos += 2
	case sigil == '$' && c != '{' && !isSpace(c):
		// Punctuation variables: $_ is handled above; $; $/ $\ $, $! $@ $$ $0 etc.
		lx.pos++
	}
	lx.emitCode(KindCode, start)
}

func (lx *lexer) skipName() {
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		if isWordChar(c) {
			lx.pos++
			continue
		}
		if c == ':' && lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] == ':' {
			lx.pos += 2
			continue
		}
		break
	}
}

func (lx *lexer) scanWord() error {
	start := lx.pos
	lx.skipName()
	word := lx.src[start:lx.pos]

	parts, isQuote := quoteOps[word]
	if isQuote && lx.pos < len(lx.src) && isQuoteDelimiter(lx.src[lx.pos]) && !lx.isBareword(start) {
		line := lx.line
		unterminated := &ParseError{Line: line, Msg: fmt.Sprintf("unterminated %s", word)}
		open := lx.src[lx.pos]
		lx.pos++
		if !lx.skipDelimited(open) {
			return unterminated
		}
		if parts == 2 {
			if closerFor(open) != open {
				// s{a}{b}: the second part has its own delimiters, possibly after whitespace.
				for lx.pos < len(lx.src) && isSpace(lx.src[lx.pos]) {
					lx.pos++
				}
				if lx.pos >= len(lx.src) {
					return unterminated
				}
				open = lx.src[lx.pos]
				lx.pos++
			}
			// For s/a/b/, the first part's closer also opens the second part.
			if !lx.skipDelimited(open) {
				return unterminated
			}
		}
		if word != "q" && word != "qq" && word != "qw" && word != "qx" {
			lx.skipModifiers()
		}
		lx.emitCode(KindLiteral, start)
		return nil
	}

	lx.emitCode(KindCode, start)
	return nil
}

// isBareword reports whether the word at src[start:lx.pos] is used as a plain name even though it spells a quote-like operator (ex: $h{s}, s=>1, $obj->y(1)).
func (lx *lexer) isBareword(start int) bool {
	if start > 0 && lx.src[start-1] == '{' && lx.pos < len(lx.src) && lx.src[lx.pos] == '}' {
		return true
	}
	if start >= 2 && lx.src[start-2:start] == "->" {
		return true
	}
	return strings.HasPrefix(lx.src[lx.pos:], "=>")
}

func (lx *lexer) scanNumber() {
	start := lx.pos
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		if isWordChar(c) {
			lx.pos++
			continue
		}
		if c == '.' && lx.pos+1 < len(lx.src) && isDigit(lx.src[lx.pos+1]) {
			lx.pos++
			continue
		}
		break
	}
	lx.emitCode(KindCode, start)
}

// scanHeredocOrShift handles "<<". A heredoc marker registers a pending body, consumed after the current line ends.
func (lx *lexer) scanHeredocOrShift() error {
	start := lx.pos
	p := lx.pos + 2
	indented := false
	if p < len(lx.src) && lx.src[p] == '~' {
		indented = true
		p++
	}

	var terminator string
	switch {
	case p < len(lx.src) && (lx.src[p] == '"' || lx.src[p] == '\''):
		q := lx.src[p]
		end := strings.IndexByte(lx.src[p+1:], q)
		if end < 0 || strings.Contains(lx.src[p+1:p+1+end], "\n") {
			return &ParseError{Line: lx.line, Msg: "unterminated heredoc marker"}
		}
		terminator = lx.src[p+1 : p+1+end]
		p = p + 1 + end + 1
	case p < len(lx.src) && isWordStart(lx.src[p]):
		e := p
		for e < len(lx.src) && isWordChar(lx.src[e]) {
			e++
		}
		terminator = lx.src[p:e]
		p = e
	default:
		// Left shift (or <<=).
		lx.pos += 2
		lx.emitCode(KindCode, start)
		return nil
	}

	lx.heredocs = append(lx.heredocs, heredoc{terminator: terminator, indented: indented, line: lx.line})
	lx.pos = p
	lx.emitCode(KindLiteral, start)
	return nil
}

// scanHeredocBodies consumes the bodies of all pending heredocs, in order, each as a KindLiteral token that includes its terminator line.
func (lx *lexer) scanHeredocBodies() error {
	pending := lx.heredocs
	lx.heredocs = nil
	for _, h := range pending {
		start := lx.pos
		found := false
		for lx.pos < len(lx.src) {
			end := lx.lineEnd()
			line := strings.TrimSuffix(strings.TrimSuffix(lx.src[lx.pos:end], "\n"), "\r")
			lx.pos = end
			if h.indented {
				line = strings.TrimLeft(line, " \t")
			}
			if line == h.terminator {
				found = true
				break
			}
		}
		if !found {
			return &ParseError{Line: h.line, Msg: fmt.Sprintf("heredoc body for %q is unterminated", h.terminator)}
		}
		// Bodies belong to whatever container is open; they never start a statement.
		lx.emit(KindLiteral, start)
	}
	return nil
}

// skipDelimited advances past a delimited body whose opening delimiter (open) has already been consumed. Paired delimiters nest. It returns false at EOF.
func (lx *lexer) skipDelimited(open byte) bool {
	closer := closerFor(open)
	depth := 1
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		lx.pos++
		switch {
		case c == '\\':
			if lx.pos < len(lx.src) {
				lx.pos++
			}
		case c == closer:
			depth--
			if depth == 0 {
				return true
			}
		case c == open && open != closer:
			depth++
		}
	}
	return false
}

func (lx *lexer) skipModifiers() {
	for lx.pos < len(lx.src) && isLetter(lx.src[lx.pos]) {
		lx.pos++
	}
}

// startsPod reports whether s begins with a POD command ("=" followed by a letter).
func startsPod(s string) bool {
	return len(s) >= 2 && s[0] == '=' && isLetter(s[1])
}

// isCutLine reports whether line (which may include its trailing newline) is a "=cut" command.
func isCutLine(line string) bool {
	if !strings.HasPrefix(line, "=cut") {
		return false
	}
	rest := line[len("=cut"):]
	return rest == "" || isSpace(rest[0])
}

// sectionAt reports whether s begins with an __END__ or __DATA__ line, returning KindEndMarker or KindDataMarker respectively.
func sectionAt(s string) (Kind, bool) {
	for _, m := range []struct {
		word string
		kind Kind
	}{{"__END__", KindEndMarker}, {"__DATA__", KindDataMarker}} {
		if strings.HasPrefix(s, m.word) {
			rest := s[len(m.word):]
			if rest == "" || isSpace(rest[0]) {
				return m.kind, true
			}
		}
	}
	return 0, false
}

func closerFor(open byte) byte {
	switch open {
	case '(':
		return ')'
	case '[':
		return ']'
	case '{':
		return '}'
	case '<':
		return '>'
	}
	return open
}

func isQuoteDelimiter(c byte) bool {
	if isSpace(c) || isWordChar(c) {
		return false
	}
	switch c {
	case '=', ',', ';', ')', ']', '}', '>':
		return false
	}
	return c < 0x80
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isWordStart(c byte) bool {
	return isLetter(c) || c == '_'
}

func isWordChar(c byte) bool {
	return isWordStart(c) || isDigit(c)
}
