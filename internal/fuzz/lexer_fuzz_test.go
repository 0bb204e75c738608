package fuzztests

import (
	"testing"

	"gtrans/internal/diag"
	"gtrans/internal/lexer"
	"gtrans/internal/source"
	"gtrans/internal/token"
)

func FuzzLexerTokens(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		fs := source.NewFileSet()
		fileID := fs.AddVirtual("fuzz.gtg", input)
		file := fs.Get(fileID)

		bag := diag.NewBag(64)
		cfg := lexer.GrammarConfig()
		// строки включены: парсер делает так внутри @rewrite
		cfg.Strings = []lexer.StringLiteral{{Open: `"`, Close: `"`, Escape: `\`}}
		lx := lexer.New(file, cfg, lexer.Options{Reporter: diag.BagReporter{Bag: bag}})

		// каждый значимый токен съедает хотя бы байт
		limit := 2*len(input) + 2
		var prevEnd uint32
		for n := 0; ; n++ {
			if n > limit {
				t.Fatalf("lexer produced more than %d tokens for %d bytes", limit, len(input))
			}
			tok := lx.Next()
			if tok.Span.Start < prevEnd || tok.Span.End < tok.Span.Start {
				t.Fatalf("token %d span %v goes backwards (previous end %d)", n, tok.Span, prevEnd)
			}
			if int(tok.Span.End) > len(input) {
				t.Fatalf("token %d span %v past end of input (%d bytes)", n, tok.Span, len(input))
			}
			prevEnd = tok.Span.End
			if tok.Kind == token.EOF {
				break
			}
		}
	})
}
