package driver

import (
	"gtrans/internal/diag"
	"gtrans/internal/lexer"
	"gtrans/internal/source"
	"gtrans/internal/token"
)

type TokenizeResult struct {
	FileSet *source.FileSet
	File    *source.File
	Tokens  []token.Token
	Bag     *diag.Bag
}

// TokenizeOptions tune the dump. Strings turns on "..." literals for the
// whole file, the way a rewrite block sees them.
type TokenizeOptions struct {
	MaxDiagnostics int
	Strings        bool
	Whitespace     bool
}

// Tokenize dumps the grammar token stream of one file.
func Tokenize(path string, opts TokenizeOptions) (*TokenizeResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	file := fs.Get(fileID)

	bag := diag.NewBag(opts.MaxDiagnostics)
	cfg := lexer.GrammarConfig()
	cfg.WhitespaceSignificant = opts.Whitespace
	lx := lexer.New(file, cfg, lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
	defer lx.Close()
	if opts.Strings {
		lx.AddStringLiteral(`"`, `"`, `\`)
	}

	// Токенизация: собираем все токены до EOF
	var tokens []token.Token
	for {
		tok := lx.Next()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
		// страховка: лексер обязан продвигаться
		if n := len(tokens); n > 1 && tok.Kind == token.Invalid && tok.Span == tokens[n-2].Span {
			break
		}
	}

	return &TokenizeResult{
		FileSet: fs,
		File:    file,
		Tokens:  tokens,
		Bag:     bag,
	}, nil
}
