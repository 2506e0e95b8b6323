// Package textenc converts documents between a named byte encoding and UTF-8 strings. Conversions are strict: bytes that are invalid in the source encoding, and runes
// that the target encoding cannot represent, are errors rather than replacement characters.
package textenc

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// Encoding is a named character encoding. The zero value is UTF-8.
type Encoding struct {
	name string
	enc  encoding.Encoding // nil for UTF-8
}

// UTF8 is the default encoding.
var UTF8 = Encoding{}

// EncodingError reports text that could not be decoded from, or encoded to, an Encoding.
type EncodingError struct {
	Encoding string // canonical encoding name
	Op       string // "decode" or "encode"
	Offset   int    // byte offset of the first offending byte, or -1 if unknown
	Err      error  // underlying error, if any
}

func (e *EncodingError) Error() string {
	msg := fmt.Sprintf("%s %s", e.Op, e.Encoding)
	if e.Offset >= 0 {
		msg += fmt.Sprintf(": invalid input at byte %d", e.Offset)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// Lookup returns the encoding registered under name in the WHATWG encoding index (ex: "utf-8", "latin1", "windows-1252", "iso-8859-15"). An empty name means UTF-8.
func Lookup(name string) (Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return UTF8, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return Encoding{}, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	canonical, err := htmlindex.Name(enc)
	if err != nil {
		return Encoding{}, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	if canonical == "utf-8" {
		return UTF8, nil
	}
	return Encoding{name: canonical, enc: enc}, nil
}

// Name returns the canonical name of e.
func (e Encoding) Name() string {
	if e.enc == nil {
		return "utf-8"
	}
	return e.name
}

// IsUTF8 reports whether e is UTF-8.
func (e Encoding) IsUTF8() bool {
	return e.enc == nil
}

// Decode converts b from e to a UTF-8 string.
func (e Encoding) Decode(b []byte) (string, error) {
	if e.enc == nil {
		if err := ValidateUTF8(string(b)); err != nil {
			return "", err
		}
		return string(b), nil
	}
	out, err := e.enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", &EncodingError{Encoding: e.Name(), Op: "decode", Offset: -1, Err: err}
	}
	return string(out), nil
}

// Encode converts the UTF-8 string s to e.
func (e Encoding) Encode(s string) ([]byte, error) {
	if err := ValidateUTF8(s); err != nil {
		err.(*EncodingError).Op = "encode"
		return nil, err
	}
	if e.enc == nil {
		return []byte(s), nil
	}
	out, err := e.enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, &EncodingError{Encoding: e.Name(), Op: "encode", Offset: -1, Err: err}
	}
	return out, nil
}

// ValidateUTF8 returns an *EncodingError locating the first invalid byte in s, or nil if s is valid UTF-8.
func ValidateUTF8(s string) error {
	if utf8.ValidString(s) {
		return nil
	}
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			return &EncodingError{Encoding: "utf-8", Op: "decode", Offset: i}
		}
		i += size
	}
	return &EncodingError{Encoding: "utf-8", Op: "decode", Offset: -1, Err: errors.New("invalid UTF-8")}
}
