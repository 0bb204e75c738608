package parser_test

import (
	"errors"
	"testing"

	"gtrans/internal/diag"
	"gtrans/internal/grammar"
	"gtrans/internal/lexer"
	"gtrans/internal/parser"
	"gtrans/internal/source"
)

func parseString(t *testing.T, src string) (*grammar.RuleSet, error) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.gtg", []byte(src)))
	return parser.ParseFile(file, parser.Options{})
}

func mustParse(t *testing.T, src string) *grammar.RuleSet {
	t.Helper()
	set, err := parseString(t, src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return set
}

const sampleGrammar = `/* sample grammar */
@rewrite {
	"foo" -> "bar" ;
	"say \"hi\"" -> "a\\b" ;
};

// fragments
ident { [A-Za-z_] \w* }
greet -> Hi { bar } ;
decl -> ImplicitType { var \s+ (<ident>) }
shout { <ident> ! } -> { text.upper() }
`

func TestParseDocument(t *testing.T) {
	set := mustParse(t, sampleGrammar)

	rw := set.Rewrites()
	if len(rw) != 2 {
		t.Fatalf("rewrites = %+v", rw)
	}
	if rw[0].Search != "foo" || rw[0].Replace != "bar" {
		t.Errorf("rewrite 0 = %+v", rw[0])
	}
	if rw[1].Search != `say "hi"` || rw[1].Replace != `a\b` {
		t.Errorf("rewrite 1 = %+v", rw[1])
	}

	want := []struct {
		key, body, translator, script string
		kind                          grammar.Kind
	}{
		{"ident", `[A-Za-z_] \w*`, "", "", grammar.Reference},
		{"greet", "bar", "Hi", "", grammar.Translation},
		{"decl", `var \s+ (<ident>)`, "ImplicitType", "", grammar.Translation},
		{"shout", "<ident> !", "", "text.upper()", grammar.TranslationScript},
	}
	rules := set.Rules()
	if len(rules) != len(want) {
		t.Fatalf("rules = %+v", rules)
	}
	for i, w := range want {
		r := rules[i]
		if r.Key != w.key || r.Source != w.body || r.Translator != w.translator || r.Script != w.script || r.Kind != w.kind {
			t.Errorf("rule %d = %+v, want %+v", i, r, w)
		}
	}
	if set.Compiled() {
		t.Error("parser must not compile the set")
	}
}

func TestBlockBodies(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"escaped braces", `a { foo \{ bar \} baz }`, `foo \{ bar \} baz`},
		{"nested braces", `a { x{2,3} (?:y) }`, `x{2,3} (?:y)`},
		{"adjacent tokens", `a {\d+\.\d*}`, `\d+\.\d*`},
		{"escaped backslash", `a { \\{ } }`, `\\{ }`},
		{"comment inside", "a { x /* note */ y // tail\n z }", "x y z"},
		{"quote is plain text", `a { don"t }`, `don"t`},
		{"empty", `a {}`, ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := mustParse(t, tt.src)
			r, ok := set.Rule("a")
			if !ok {
				t.Fatal("rule a missing")
			}
			if r.Source != tt.want {
				t.Errorf("body = %q, want %q", r.Source, tt.want)
			}
		})
	}
}

func TestScriptIsVerbatim(t *testing.T) {
	src := "up { \\w+ } -> {\n    x = text\n    result = x.upper()  \n}\nnext { a    b }"
	set := mustParse(t, src)

	up, _ := set.Rule("up")
	if up.Kind != grammar.TranslationScript {
		t.Fatalf("kind = %v", up.Kind)
	}
	if want := "    x = text\n    result = x.upper()"; up.Script != want {
		t.Errorf("script = %q, want %q", up.Script, want)
	}
	if up.Source != `\w+` {
		t.Errorf("body = %q", up.Source)
	}
	// после скрипта пробелы снова незначимы
	if next, _ := set.Rule("next"); next.Source != "a b" {
		t.Errorf("next body = %q", next.Source)
	}
}

func TestScriptOverridesTranslator(t *testing.T) {
	set := mustParse(t, `r -> Hi { x } -> { "y" }`)
	r, _ := set.Rule("r")
	if r.Kind != grammar.TranslationScript || r.Translator != "" || r.Script != `"y"` {
		t.Fatalf("rule = %+v", r)
	}
}

func TestStringsOnlyInsideRewriteBlock(t *testing.T) {
	set := mustParse(t, `@rewrite { "a" -> "b"; } r -> T { don"t }`)
	if r, _ := set.Rule("r"); r.Source != `don"t` {
		t.Fatalf("body = %q", r.Source)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind error
		code diag.Code
		line uint32
		col  uint32
	}{
		{"reserved before body", "text { never closed", parser.ErrReservedRuleName, diag.SynReservedRuleName, 1, 1},
		{"reserved rewrite without @", "\n rewrite { x }", parser.ErrReservedRuleName, diag.SynReservedRuleName, 2, 2},
		{"unsupported block", "@grammar { }", parser.ErrUnsupportedSpecialBlock, diag.SynUnsupportedSpecialBlock, 1, 2},
		{"duplicate block", "@rewrite { }\n@rewrite { }", parser.ErrDuplicateSpecialBlock, diag.SynDuplicateSpecialBlock, 2, 1},
		{"missing arrow", `@rewrite { "a" "b" ; }`, parser.ErrMalformedRewritePair, diag.SynMalformedRewritePair, 1, 16},
		{"missing semicolon", `@rewrite { "a" -> "b" }`, parser.ErrMalformedRewritePair, diag.SynMalformedRewritePair, 1, 23},
		{"word as literal", `@rewrite { foo -> "b"; }`, parser.ErrMalformedRewritePair, diag.SynMalformedRewritePair, 1, 12},
		{"empty search", `@rewrite { "" -> "b"; }`, parser.ErrMalformedRewritePair, diag.SynMalformedRewritePair, 1, 12},
		{"unclosed rewrite", `@rewrite { "a" -> "b";`, parser.ErrUnexpectedEOF, diag.SynUnexpectedEOF, 1, 23},
		{"unclosed body", "a {\n x { y }", parser.ErrUnexpectedEOF, diag.SynUnexpectedEOF, 1, 3},
		{"missing translator", "a -> { x }", parser.ErrUnexpectedToken, diag.SynUnexpectedToken, 1, 6},
		{"missing body", "a -> T ;", parser.ErrUnexpectedToken, diag.SynUnexpectedToken, 1, 8},
		{"arrow at top", "-> a", parser.ErrUnexpectedToken, diag.SynUnexpectedToken, 1, 1},
		{"script without braces", "a { x } -> y", parser.ErrUnexpectedToken, diag.SynUnexpectedToken, 1, 12},
		{"duplicate rule", "a { x }\na { y }", grammar.ErrDuplicateRule, diag.CmpDuplicateRule, 2, 1},
		{"unterminated literal", "@rewrite { \"abc }\n}", lexer.ErrUnterminatedString, diag.LexUnterminatedString, 1, 12},
		{"unterminated comment", "a { x } /* open", lexer.ErrUnterminatedComment, diag.LexUnterminatedBlockComment, 1, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := parseString(t, tt.src)
			if set != nil {
				t.Error("no partial rule set on error")
			}
			if !errors.Is(err, tt.kind) {
				t.Fatalf("err = %v, want %v", err, tt.kind)
			}
			de, ok := diag.AsError(err)
			if !ok {
				t.Fatalf("err %T is not a diag.Error", err)
			}
			if de.Code != tt.code {
				t.Errorf("code = %s, want %s", de.Code.ID(), tt.code.ID())
			}
			if de.Pos.Line != tt.line || de.Pos.Col != tt.col {
				t.Errorf("position = %d:%d, want %d:%d", de.Pos.Line, de.Pos.Col, tt.line, tt.col)
			}
			if de.Path != "test.gtg" {
				t.Errorf("path = %q", de.Path)
			}
		})
	}
}

func TestLexicalModesRestoredOnError(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"malformed rewrite", `@rewrite { "a" x`},
		{"unclosed script", "a { x } -> { y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := source.NewFileSet()
			file := fs.Get(fs.AddVirtual("m.gtg", []byte(tt.src)))
			lx := lexer.New(file, lexer.GrammarConfig(), lexer.Options{})
			if _, err := parser.Parse(lx, parser.Options{}); err == nil {
				t.Fatal("expected an error")
			}
			if lx.WhitespaceSignificant() {
				t.Error("whitespace significance leaked")
			}
			if !lx.AddStringLiteral(`"`, `"`, `\`) {
				t.Error("string literal mode leaked")
			}
		})
	}
}

func TestParseReportsDiagnostic(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("r.gtg", []byte("match { x }")))
	bag := diag.NewBag(10)
	_, err := parser.ParseFile(file, parser.Options{Reporter: diag.BagReporter{Bag: bag}})
	if err == nil {
		t.Fatal("expected error")
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.SynReservedRuleName {
		t.Fatalf("diagnostics = %+v", bag.Items())
	}
	want := "error SYN2004 r.gtg:1:1 \"match\" is reserved and cannot name a rule"
	if got := diag.FormatShortDiagnostics(bag.Items(), fs, false); got != want {
		t.Fatalf("short = %q", got)
	}
}

func TestParseReportsLexicalErrorOnce(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("c.gtg", []byte("a { x } /* open")))
	bag := diag.NewBag(10)
	if _, err := parser.ParseFile(file, parser.Options{Reporter: diag.BagReporter{Bag: bag}}); err == nil {
		t.Fatal("expected error")
	}
	want := "error LEX1002 c.gtg:1:9 unterminated block comment"
	if got := diag.FormatShortDiagnostics(bag.Items(), fs, false); got != want {
		t.Fatalf("short = %q", got)
	}
}

func TestEmptyAndCommentOnlyDocuments(t *testing.T) {
	for _, src := range []string{"", "  \n", "// nothing\n/* here */", ";;"} {
		set := mustParse(t, src)
		if set.Len() != 0 || len(set.Rewrites()) != 0 {
			t.Errorf("%q produced rules", src)
		}
	}
}
