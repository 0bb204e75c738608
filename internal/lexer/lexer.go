package lexer

import (
	"errors"
	"slices"

	"gtrans/internal/diag"
	"gtrans/internal/source"
	"gtrans/internal/token"
)

var (
	ErrUnterminatedString  = errors.New("unterminated string literal")
	ErrUnterminatedComment = errors.New("unterminated block comment")
	ErrInvalidUTF8         = errors.New("invalid UTF-8 sequence")
)

// Lexer is a token stream over one grammar document. There is no lookahead
// buffer: a configuration change takes effect on the very next Next call.
type Lexer struct {
	file   *source.File
	cursor Cursor
	opts   Options
	cfg    Config
	cur    token.Token
	hold   []token.Trivia // накопленные leading trivia
	err    *diag.Error
	closed bool
}

func New(file *source.File, cfg Config, opts Options) *Lexer {
	cfg.BlockComments = slices.Clone(cfg.BlockComments)
	cfg.LineComments = slices.Clone(cfg.LineComments)
	cfg.Specials = slices.Clone(cfg.Specials)
	cfg.Strings = slices.Clone(cfg.Strings)
	// длинные спецпоследовательности проверяются первыми
	slices.SortStableFunc(cfg.Specials, func(a, b Special) int {
		return len(b.Image) - len(a.Image)
	})
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
		cfg:    cfg,
	}
}

// Next advances to the next significant token and returns it with its
// Leading trivia. After EOF it keeps returning EOF.
func (lx *Lexer) Next() token.Token {
	if lx.closed {
		lx.cur = token.Token{Kind: token.EOF, Span: lx.emptySpan()}
		return lx.cur
	}

	if bad, ok := lx.collectLeadingTrivia(); ok {
		bad.Leading = lx.takeHold()
		lx.cur = bad
		return lx.cur
	}

	if lx.cursor.EOF() {
		// Leading из hold к EOF не приклеиваем
		lx.hold = lx.hold[:0]
		lx.cur = token.Token{Kind: token.EOF, Span: lx.emptySpan()}
		return lx.cur
	}

	var tok token.Token
	switch {
	case lx.cfg.WhitespaceSignificant && isSpaceByte(lx.cursor.Peek()):
		tok = lx.scanWhitespace()
	case lx.matchString() != nil:
		tok = lx.scanString(*lx.matchString())
	case lx.matchSpecial() != nil:
		tok = lx.scanSpecial(*lx.matchSpecial())
	default:
		r, _ := lx.peekRune()
		if isWordRune(r) {
			tok = lx.scanWord()
		} else {
			tok = lx.scanSeparator()
		}
	}

	tok.Leading = lx.takeHold()
	lx.cur = tok
	return tok
}

// Current returns the token produced by the last Next call.
func (lx *Lexer) Current() token.Token {
	return lx.cur
}

// HasMore reports whether the current token is not EOF.
func (lx *Lexer) HasMore() bool {
	return lx.cur.Kind != token.EOF
}

// Position returns the 1-based position of the current token.
func (lx *Lexer) Position() source.LineCol {
	return lx.file.Position(lx.cur.Span.Start)
}

// File returns the document being tokenized.
func (lx *Lexer) File() *source.File {
	return lx.file
}

// Err returns the error behind the most recent Invalid token, if any.
func (lx *Lexer) Err() error {
	if lx.err == nil {
		return nil
	}
	return lx.err
}

// AddStringLiteral enables quoted-string recognition for open. It returns
// false when a literal with the same opening delimiter is already active.
func (lx *Lexer) AddStringLiteral(open, closing, escape string) bool {
	if open == "" || closing == "" {
		return false
	}
	for _, s := range lx.cfg.Strings {
		if s.Open == open {
			return false
		}
	}
	lx.cfg.Strings = append(lx.cfg.Strings, StringLiteral{Open: open, Close: closing, Escape: escape})
	return true
}

// RemoveStringLiteral disables the string literal opened by open.
func (lx *Lexer) RemoveStringLiteral(open string) bool {
	for i, s := range lx.cfg.Strings {
		if s.Open == open {
			lx.cfg.Strings = slices.Delete(lx.cfg.Strings, i, i+1)
			return true
		}
	}
	return false
}

// SetWhitespaceSignificant switches whitespace between trivia and tokens and
// returns the previous setting.
func (lx *Lexer) SetWhitespaceSignificant(on bool) bool {
	prev := lx.cfg.WhitespaceSignificant
	lx.cfg.WhitespaceSignificant = on
	return prev
}

func (lx *Lexer) WhitespaceSignificant() bool {
	return lx.cfg.WhitespaceSignificant
}

// Close releases the stream; subsequent reads return EOF.
func (lx *Lexer) Close() error {
	lx.closed = true
	lx.hold = nil
	return nil
}

func (lx *Lexer) takeHold() []token.Trivia {
	if len(lx.hold) == 0 {
		return nil
	}
	out := lx.hold
	lx.hold = nil
	return out
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

func (lx *Lexer) text(sp source.Span) string {
	return string(lx.file.Content[sp.Start:sp.End])
}

func (lx *Lexer) errLex(code diag.Code, kind error, sp source.Span, msg string) {
	lx.err = diag.Errorf(code, kind, lx.file, sp, "%s", msg)
	if lx.opts.Reporter != nil {
		lx.opts.Reporter.Report(code, diag.SevError, sp, msg, nil)
	}
}
