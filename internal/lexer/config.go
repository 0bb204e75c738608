package lexer

import (
	"gtrans/internal/diag"
	"gtrans/internal/token"
)

// CommentPair is a block comment delimiter pair such as "/*" "*/".
type CommentPair struct {
	Open, Close string
}

// Special is a multi-character sequence returned as one token, optionally
// tagged with a companion.
type Special struct {
	Image     string
	Companion token.Companion
}

// StringLiteral describes quoted-string recognition. Escape may be empty.
type StringLiteral struct {
	Open, Close, Escape string
}

// Config is the lexical configuration. Strings and whitespace significance
// can be changed between token reads.
type Config struct {
	BlockComments         []CommentPair
	LineComments          []string
	Specials              []Special
	Strings               []StringLiteral
	WhitespaceSignificant bool
}

// GrammarConfig returns the configuration used for grammar documents:
// "/* */" and "//" comments, "->" tagged as a map arrow and "@" tagged as
// the special-block sentinel. Strings are off until a parser turns them on.
func GrammarConfig() Config {
	return Config{
		BlockComments: []CommentPair{{Open: "/*", Close: "*/"}},
		LineComments:  []string{"//"},
		Specials: []Special{
			{Image: "->", Companion: token.CompMap},
			{Image: "@", Companion: token.CompSpecialBlock},
		},
	}
}

// Options carries non-lexical collaborators.
type Options struct {
	Reporter diag.Reporter // может быть nil, тогда ошибки только сохраняются в Err()
}
