package parser

import (
	"strings"

	"gtrans/internal/diag"
	"gtrans/internal/grammar"
	"gtrans/internal/token"
)

const rewriteKeyword = "rewrite"

// parseSpecialBlock: '@' keyword '{' ... '}'. Leaves cur after the block.
func (p *Parser) parseSpecialBlock() error {
	at := p.cur
	// строки включаются до чтения '{', иначе первый литерал уже прочитан без них
	restore := withStrings(p.s)
	err := p.parseSpecialBlockBody(at)
	restore()
	if err != nil {
		return err
	}
	return p.advance()
}

func (p *Parser) parseSpecialBlockBody(at token.Token) error {
	if err := p.advance(); err != nil {
		return err
	}
	if p.cur.Kind != token.Word {
		return p.unexpected("special block keyword after '@'")
	}
	if p.cur.Text != rewriteKeyword {
		return p.errorf(diag.SynUnsupportedSpecialBlock, ErrUnsupportedSpecialBlock, p.cur.Span,
			"unsupported special block %q", p.cur.Text)
	}
	if p.sawRewrite {
		return p.errorf(diag.SynDuplicateSpecialBlock, ErrDuplicateSpecialBlock, at.Span.Cover(p.cur.Span),
			"a document may contain only one @rewrite block")
	}
	p.sawRewrite = true

	if err := p.advance(); err != nil {
		return err
	}
	if err := p.expectSeparator("{"); err != nil {
		return err
	}
	return p.parseRewritePairs()
}

// parseRewritePairs reads ("search" -> "replace" ;)* up to the closing '}',
// leaving cur on it.
func (p *Parser) parseRewritePairs() error {
	for {
		if err := p.advance(); err != nil {
			return err
		}
		if p.cur.IsSeparator("}") {
			return nil
		}
		if p.cur.Kind == token.EOF {
			return p.unexpected("'}' closing the rewrite block")
		}

		first := p.cur
		if first.Kind != token.String {
			return p.malformed("search literal")
		}
		if err := p.advance(); err != nil {
			return err
		}
		if !p.cur.IsMap() {
			return p.malformed("'->'")
		}
		if err := p.advance(); err != nil {
			return err
		}
		second := p.cur
		if second.Kind != token.String {
			return p.malformed("replace literal")
		}
		if err := p.advance(); err != nil {
			return err
		}
		if !p.cur.IsSeparator(";") {
			return p.malformed("';'")
		}

		search := unquote(first.Text)
		if search == "" {
			return p.errorf(diag.SynMalformedRewritePair, ErrMalformedRewritePair, first.Span, "search literal is empty")
		}
		p.set.AddRewrite(grammar.RewriteRule{
			Search:  search,
			Replace: unquote(second.Text),
			Span:    first.Span.Cover(p.cur.Span),
		})
	}
}

func (p *Parser) malformed(want string) error {
	if p.cur.Kind == token.EOF {
		return p.unexpected(want)
	}
	return p.errorf(diag.SynMalformedRewritePair, ErrMalformedRewritePair, p.cur.Span,
		"malformed rewrite pair: expected %s, found %q", want, p.cur.Text)
}

// unquote strips the delimiting quotes and resolves \" and \\.
func unquote(lit string) string {
	if len(lit) >= 2*len(quote) && strings.HasPrefix(lit, quote) && strings.HasSuffix(lit, quote) {
		lit = lit[len(quote) : len(lit)-len(quote)]
	}
	if !strings.Contains(lit, escape) {
		return lit
	}
	var b strings.Builder
	for i := 0; i < len(lit); i++ {
		if lit[i] == '\\' && i+1 < len(lit) && (lit[i+1] == '"' || lit[i+1] == '\\') {
			i++
		}
		b.WriteByte(lit[i])
	}
	return b.String()
}
