package parser

import (
	"strings"

	"gtrans/internal/diag"
	"gtrans/internal/grammar"
	"gtrans/internal/source"
	"gtrans/internal/token"
)

// parseRule: name [-> Translator] { body } [-> { script }]. Leaves cur on the
// first token after the declaration.
func (p *Parser) parseRule() error {
	name := p.cur
	if name.Kind != token.Word {
		return p.unexpected("rule name or special block")
	}
	if IsReserved(name.Text) {
		return p.errorf(diag.SynReservedRuleName, ErrReservedRuleName, name.Span,
			"%q is reserved and cannot name a rule", name.Text)
	}

	rule := grammar.Rule{Key: name.Text, Kind: grammar.Reference, Span: name.Span}

	if err := p.advance(); err != nil {
		return err
	}
	if p.cur.IsMap() {
		if err := p.advance(); err != nil {
			return err
		}
		if p.cur.Kind != token.Word {
			return p.unexpected("translator name after '->'")
		}
		rule.Kind = grammar.Translation
		rule.Translator = p.cur.Text
		if err := p.advance(); err != nil {
			return err
		}
	}

	if err := p.expectSeparator("{"); err != nil {
		return err
	}
	body, span, err := p.readBlock(false)
	if err != nil {
		return err
	}
	rule.Source = body
	rule.BodySpan = span

	if err := p.advance(); err != nil {
		return err
	}
	if p.cur.IsMap() {
		if err := p.advance(); err != nil {
			return err
		}
		if err := p.expectSeparator("{"); err != nil {
			return err
		}
		script, err := p.readScript()
		if err != nil {
			return err
		}
		// скрипт перекрывает транслятор: правило не может быть и тем и другим
		rule.Kind = grammar.TranslationScript
		rule.Translator = ""
		rule.Script = script
		if err := p.advance(); err != nil {
			return err
		}
	}

	if err := p.set.AddRule(rule); err != nil {
		if de, ok := diag.AsError(err); ok {
			de.At(p.file)
		}
		return err
	}
	return nil
}

// readScript reads a script body verbatim. Whitespace is significant only
// between the braces; the previous setting is back before the caller reads
// past '}'.
func (p *Parser) readScript() (string, error) {
	restore := withWhitespace(p.s)
	text, _, err := p.readBlock(true)
	restore()
	if err != nil {
		return "", err
	}
	return trimBlankLines(text), nil
}

// readBlock consumes tokens up to the '}' matching the current '{' and
// returns the text between them. A brace right after an unescaped '\' does
// not change the depth. In verbatim mode every token and trivia is kept as
// written; otherwise tokens separated in the source are joined with one space.
func (p *Parser) readBlock(verbatim bool) (string, source.Span, error) {
	open := p.cur
	span := source.Span{File: open.Span.File, Start: open.Span.End, End: open.Span.End}

	var b strings.Builder
	depth := 1
	escaped := false // предыдущий токен: неэкранированный '\'
	for {
		if err := p.advance(); err != nil {
			return "", span, err
		}
		tok := p.cur
		if tok.Kind == token.EOF {
			return "", span, p.errorf(diag.SynUnexpectedEOF, ErrUnexpectedEOF, open.Span,
				"unexpected end of input: block opened here is never closed")
		}

		wasEscaped := escaped
		escaped = tok.IsSeparator(escape) && !wasEscaped
		if !wasEscaped {
			switch {
			case tok.IsSeparator("{"):
				depth++
			case tok.IsSeparator("}"):
				depth--
			}
		}
		if depth == 0 {
			span.End = tok.Span.Start
			return b.String(), span, nil
		}

		if verbatim {
			for _, tv := range tok.Leading {
				b.WriteString(tv.Text)
			}
		} else if b.Len() > 0 && tok.HasLeadingSpace() {
			b.WriteByte(' ')
		}
		b.WriteString(tok.Text)
	}
}

// trimBlankLines drops whitespace-only lines around a script and trailing
// whitespace. A one-line script is trimmed on both sides; a multi-line one
// keeps its indentation.
func trimBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	if end-start == 1 {
		return strings.TrimSpace(lines[start])
	}
	out := strings.Join(lines[start:end], "\n")
	return strings.TrimRight(out, " \t\r")
}
