package parser

import (
	"gtrans/internal/lexer"
	"gtrans/internal/source"
	"gtrans/internal/token"
)

// Stream is the token source the parser consumes. Configuration changes
// must apply to the token read by the following Next call.
type Stream interface {
	Next() token.Token
	Current() token.Token
	Err() error
	File() *source.File
	AddStringLiteral(open, closing, escape string) bool
	RemoveStringLiteral(open string) bool
	SetWhitespaceSignificant(on bool) bool
}

var _ Stream = (*lexer.Lexer)(nil)

const (
	quote  = `"`
	escape = `\`
)

// withStrings enables double-quoted literals and returns the undo function.
func withStrings(s Stream) func() {
	added := s.AddStringLiteral(quote, quote, escape)
	return func() {
		if added {
			s.RemoveStringLiteral(quote)
		}
	}
}

// withWhitespace makes whitespace significant and returns the undo function.
func withWhitespace(s Stream) func() {
	prev := s.SetWhitespaceSignificant(true)
	return func() {
		s.SetWhitespaceSignificant(prev)
	}
}
