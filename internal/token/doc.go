// Package token defines the token kinds produced by the grammar lexer.
// Invariants:
//   - Token.Text is the exact image of the token in the source (string
//     literals keep their delimiters).
//   - Token.Span matches Text exactly (Start..End).
//   - Comments and insignificant whitespace never appear in the main stream;
//     they are attached to the following token as Leading trivia.
//   - Special sequences ("->", "@") may carry a Companion tag assigned by the
//     lexer configuration.
package token
