package lexer

import (
	"gtrans/internal/diag"
	"gtrans/internal/token"
)

func (lx *Lexer) matchString() *StringLiteral {
	for i := range lx.cfg.Strings {
		if lx.cursor.HasPrefix(lx.cfg.Strings[i].Open) {
			return &lx.cfg.Strings[i]
		}
	}
	return nil
}

func (lx *Lexer) matchSpecial() *Special {
	for i := range lx.cfg.Specials {
		if lx.cursor.HasPrefix(lx.cfg.Specials[i].Image) {
			return &lx.cfg.Specials[i]
		}
	}
	return nil
}

// scanString читает литерал вместе с кавычками. Экранирование пропускает
// следующий символ; перевод строки внутри литерала считается ошибкой.
func (lx *Lexer) scanString(lit StringLiteral) token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Advance(len(lit.Open))
	for !lx.cursor.EOF() {
		if lit.Escape != "" && lx.cursor.HasPrefix(lit.Escape) {
			lx.cursor.Advance(len(lit.Escape))
			if lx.cursor.EOF() || lx.cursor.Peek() == '\n' {
				break
			}
			lx.bumpRune()
			continue
		}
		if lx.cursor.HasPrefix(lit.Close) {
			lx.cursor.Advance(len(lit.Close))
			sp := lx.cursor.SpanFrom(start)
			return token.Token{Kind: token.String, Span: sp, Text: lx.text(sp)}
		}
		if lx.cursor.Peek() == '\n' {
			sp := lx.cursor.SpanFrom(start)
			lx.errLex(diag.LexUnterminatedString, ErrUnterminatedString, sp, "newline in string literal")
			return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
		}
		lx.bumpRune()
	}
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.LexUnterminatedString, ErrUnterminatedString, sp, "unterminated string literal")
	return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
}

func (lx *Lexer) scanSpecial(sp Special) token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Advance(len(sp.Image))
	span := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.Special, Span: span, Text: sp.Image, Companion: sp.Companion}
}

func (lx *Lexer) scanWord() token.Token {
	start := lx.cursor.Mark()
	for !lx.cursor.EOF() {
		r, _ := lx.peekRune()
		if !isWordRune(r) {
			break
		}
		lx.bumpRune()
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.Word, Span: sp, Text: lx.text(sp)}
}

func (lx *Lexer) scanWhitespace() token.Token {
	start := lx.cursor.Mark()
	for isSpaceByte(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.Whitespace, Span: sp, Text: lx.text(sp)}
}

// scanSeparator возвращает один символ; на битом UTF-8 отдаёт Invalid токен.
func (lx *Lexer) scanSeparator() token.Token {
	start := lx.cursor.Mark()
	r, sz := lx.peekRune()
	if r == runeError && sz == 1 {
		lx.cursor.Bump()
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.LexInvalidUTF8, ErrInvalidUTF8, sp, "invalid UTF-8 byte")
		return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
	}
	lx.bumpRune()
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.Separator, Span: sp, Text: lx.text(sp)}
}
