package lexer

import (
	"gtrans/internal/diag"
	"gtrans/internal/token"
)

// collectLeadingTrivia собирает подряд идущие trivia перед значимым токеном.
//   - ' ', '\t', '\r' коалесцируются в один TriviaSpace
//   - последовательные '\n' коалесцируются в один TriviaNewline
//   - строчные и блочные комментарии из конфигурации
//
// При значимых пробелах собираются только комментарии. Незакрытый блочный
// комментарий возвращается как Invalid токен.
func (lx *Lexer) collectLeadingTrivia() (token.Token, bool) {
	for !lx.cursor.EOF() {
		start := lx.cursor.Mark()
		b := lx.cursor.Peek()

		if !lx.cfg.WhitespaceSignificant {
			if b == ' ' || b == '\t' || b == '\r' {
				for {
					b2 := lx.cursor.Peek()
					if b2 != ' ' && b2 != '\t' && b2 != '\r' {
						break
					}
					lx.cursor.Bump()
				}
				lx.pushTrivia(token.TriviaSpace, start)
				continue
			}
			if b == '\n' {
				for lx.cursor.Peek() == '\n' {
					lx.cursor.Bump()
				}
				lx.pushTrivia(token.TriviaNewline, start)
				continue
			}
		}

		if open := lx.matchLineComment(); open != "" {
			lx.cursor.Advance(len(open))
			for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
				lx.cursor.Bump()
			}
			lx.pushTrivia(token.TriviaLineComment, start)
			continue
		}

		if pair, ok := lx.matchBlockComment(); ok {
			lx.cursor.Advance(len(pair.Open))
			closed := false
			for !lx.cursor.EOF() {
				if lx.cursor.HasPrefix(pair.Close) {
					lx.cursor.Advance(len(pair.Close))
					closed = true
					break
				}
				lx.cursor.Bump()
			}
			if !closed {
				sp := lx.cursor.SpanFrom(start)
				lx.errLex(diag.LexUnterminatedBlockComment, ErrUnterminatedComment, sp, "unterminated block comment")
				return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}, true
			}
			lx.pushTrivia(token.TriviaBlockComment, start)
			continue
		}

		// нет больше trivia
		break
	}
	return token.Token{}, false
}

func (lx *Lexer) pushTrivia(kind token.TriviaKind, start Mark) {
	sp := lx.cursor.SpanFrom(start)
	lx.hold = append(lx.hold, token.Trivia{Kind: kind, Span: sp, Text: lx.text(sp)})
}

func (lx *Lexer) matchLineComment() string {
	for _, open := range lx.cfg.LineComments {
		if lx.cursor.HasPrefix(open) {
			return open
		}
	}
	return ""
}

func (lx *Lexer) matchBlockComment() (CommentPair, bool) {
	for _, pair := range lx.cfg.BlockComments {
		if lx.cursor.HasPrefix(pair.Open) {
			return pair, true
		}
	}
	return CommentPair{}, false
}
