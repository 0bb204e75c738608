package parser

import (
	"errors"

	"gtrans/internal/diag"
	"gtrans/internal/grammar"
	"gtrans/internal/lexer"
	"gtrans/internal/source"
	"gtrans/internal/token"
)

var (
	ErrUnexpectedToken         = errors.New("unexpected token")
	ErrUnexpectedEOF           = errors.New("unexpected end of input")
	ErrMalformedRewritePair    = errors.New("malformed rewrite pair")
	ErrReservedRuleName        = errors.New("reserved rule name")
	ErrUnsupportedSpecialBlock = errors.New("unsupported special block")
	ErrDuplicateSpecialBlock   = errors.New("duplicate special block")
)

// reservedNames cannot be used as rule keys: the block keyword and the names
// bound for script rules.
var reservedNames = map[string]struct{}{
	"rewrite": {},
	"match":   {},
	"groups":  {},
	"text":    {},
	"result":  {},
}

// IsReserved reports whether name cannot be used as a rule key.
func IsReserved(name string) bool {
	_, ok := reservedNames[name]
	return ok
}

type Options struct {
	Reporter diag.Reporter // может быть nil
}

type docState uint8

const (
	stateTopLevel docState = iota
	stateSpecialBlock
	stateDone
)

// Parser хранит состояние парсера на один документ
type Parser struct {
	s          Stream
	file       *source.File
	opts       Options
	set        *grammar.RuleSet
	cur        token.Token
	state      docState
	sawRewrite bool
}

// Parse reads one document from s. On error no partial rule set is returned.
func Parse(s Stream, opts Options) (*grammar.RuleSet, error) {
	p := &Parser{
		s:    s,
		file: s.File(),
		opts: opts,
		set:  grammar.NewRuleSet(),
	}
	if err := p.parseDocument(); err != nil {
		p.report(err)
		return nil, err
	}
	return p.set, nil
}

// ParseFile tokenizes file with the grammar lexical configuration and parses it.
// A lexical error reaches opts.Reporter once even though both the lexer and
// the parser see it.
func ParseFile(file *source.File, opts Options) (*grammar.RuleSet, error) {
	var lopts lexer.Options
	if opts.Reporter != nil {
		rep := diag.NewDedupReporter(opts.Reporter)
		opts.Reporter = rep
		lopts.Reporter = rep
	}
	lx := lexer.New(file, lexer.GrammarConfig(), lopts)
	defer lx.Close()
	return Parse(lx, opts)
}

func (p *Parser) parseDocument() error {
	if err := p.advance(); err != nil {
		return err
	}
	for p.state != stateDone {
		var err error
		switch tok := p.cur; {
		case tok.Kind == token.EOF:
			p.state = stateDone
		case tok.IsSeparator(";"):
			// необязательный ';' после объявления
			err = p.advance()
		case tok.IsSpecialBlock():
			p.state = stateSpecialBlock
			err = p.parseSpecialBlock()
			p.state = stateTopLevel
		default:
			err = p.parseRule()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// advance reads the next token; an Invalid token becomes the lexer's error.
func (p *Parser) advance() error {
	p.cur = p.s.Next()
	if p.cur.Kind != token.Invalid {
		return nil
	}
	if err := p.s.Err(); err != nil {
		return err
	}
	return p.errorf(diag.LexInfo, ErrUnexpectedToken, p.cur.Span, "invalid token %q", p.cur.Text)
}

func (p *Parser) errorf(code diag.Code, kind error, sp source.Span, format string, args ...any) *diag.Error {
	return diag.Errorf(code, kind, p.file, sp, format, args...)
}

func (p *Parser) unexpected(want string) error {
	if p.cur.Kind == token.EOF {
		return p.errorf(diag.SynUnexpectedEOF, ErrUnexpectedEOF, p.cur.Span, "expected %s, found end of input", want)
	}
	return p.errorf(diag.SynUnexpectedToken, ErrUnexpectedToken, p.cur.Span, "expected %s, found %q", want, p.cur.Text)
}

func (p *Parser) expectSeparator(ch string) error {
	if !p.cur.IsSeparator(ch) {
		return p.unexpected("'" + ch + "'")
	}
	return nil
}

func (p *Parser) report(err error) {
	if p.opts.Reporter == nil {
		return
	}
	for _, e := range diag.Flatten(err) {
		if de, ok := diag.AsError(e); ok {
			de.At(p.file)
		}
		diag.ReportErr(p.opts.Reporter, e)
	}
}
