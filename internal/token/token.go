package token

import (
	"gtrans/internal/source"
)

// Token represents a single grammar token with its location and trivia.
type Token struct {
	Kind      Kind
	Span      source.Span
	Text      string
	Companion Companion
	Leading   []Trivia
}

// Is reports whether the token has the given kind and image.
func (t Token) Is(kind Kind, text string) bool {
	return t.Kind == kind && t.Text == text
}

// IsSeparator reports whether the token is the single-character separator ch.
func (t Token) IsSeparator(ch string) bool {
	return t.Is(Separator, ch)
}

// IsMap reports whether the token is the mapping arrow.
func (t Token) IsMap() bool {
	return t.Kind == Special && t.Companion == CompMap
}

// IsSpecialBlock reports whether the token introduces a special block.
func (t Token) IsSpecialBlock() bool {
	return t.Kind == Special && t.Companion == CompSpecialBlock
}

// HasLeadingSpace reports whether the token was separated from the previous
// one by whitespace or a comment.
func (t Token) HasLeadingSpace() bool {
	return len(t.Leading) > 0
}
