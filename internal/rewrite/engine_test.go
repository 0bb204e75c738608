package rewrite_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"gtrans/internal/grammar"
	"gtrans/internal/parser"
	"gtrans/internal/rewrite"
	"gtrans/internal/source"
	"gtrans/internal/trace"
)

func compileGrammar(t *testing.T, src string) *grammar.RuleSet {
	t.Helper()
	fs := source.NewFileSet()
	set, err := parser.ParseFile(fs.Get(fs.AddVirtual("test.gtg", []byte(src))), parser.Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := set.Compile(); err != nil {
		t.Fatalf("compile: %v", err)
	}
	return set
}

func constant(s string) rewrite.Translator {
	return rewrite.TranslatorFunc(func(*rewrite.Match) (string, error) { return s, nil })
}

func registry(t *testing.T, pairs map[string]rewrite.Translator) *rewrite.Registry {
	t.Helper()
	reg := rewrite.NewRegistry()
	for name, tr := range pairs {
		if err := reg.Register(name, tr); err != nil {
			t.Fatal(err)
		}
	}
	return reg
}

func TestEndToEnd(t *testing.T) {
	set := compileGrammar(t, `@rewrite { "foo" -> "bar" ; }
greet -> Hi { bar } ;`)
	reg := registry(t, map[string]rewrite.Translator{"Hi": constant("HELLO")})

	got, err := rewrite.Apply(context.Background(), set, reg, nil, "say foo now")
	if err != nil {
		t.Fatal(err)
	}
	if got != "say HELLO now" {
		t.Fatalf("got %q, want %q", got, "say HELLO now")
	}
}

func TestUnknownTranslatorFailsAtApply(t *testing.T) {
	set := compileGrammar(t, `greet -> Missing { bar }`)
	e, err := rewrite.NewEngine(set, rewrite.NewRegistry(), nil, rewrite.Options{})
	if err != nil {
		t.Fatalf("engine creation must not resolve translators: %v", err)
	}

	// без совпадений транслятор не нужен
	if out, err := e.Apply(context.Background(), "nothing here"); err != nil || out != "nothing here" {
		t.Fatalf("Apply = %q, %v", out, err)
	}
	_, err = e.Apply(context.Background(), "a bar")
	if !errors.Is(err, rewrite.ErrUnknownTranslator) {
		t.Fatalf("err = %v, want ErrUnknownTranslator", err)
	}
	if !strings.Contains(err.Error(), `"Missing"`) || !strings.Contains(err.Error(), `rule "greet"`) {
		t.Errorf("message = %q", err.Error())
	}
}

func TestLiteralPhase(t *testing.T) {
	set := compileGrammar(t, `@rewrite {
	"a" -> "b" ;
	"b" -> "c" ;
	"String[]" -> "string[]" ;
}`)
	e, err := rewrite.NewEngine(set, nil, nil, rewrite.Options{})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	got, err := e.Apply(ctx, "a b String[] args")
	if err != nil {
		t.Fatal(err)
	}
	// первая пара кормит вторую
	if got != "c c string[] args" {
		t.Fatalf("got %q", got)
	}

	clean := "nothing to see"
	for range 2 {
		out, err := e.Apply(ctx, clean)
		if err != nil || out != clean {
			t.Fatalf("literal phase on clean text = %q, %v", out, err)
		}
	}
}

func TestReplaceEveryOccurrence(t *testing.T) {
	set := compileGrammar(t, `num -> Paren { \d+ }`)
	calls := 0
	reg := registry(t, map[string]rewrite.Translator{
		"Paren": rewrite.TranslatorFunc(func(m *rewrite.Match) (string, error) {
			calls++
			return "(" + m.Text + ")", nil
		}),
	})

	tests := []struct {
		name     string
		spanOnly bool
		in       string
		want     string
		calls    int
	}{
		{"whole text", false, "1 + 12 + 1", "(1) + (1)2 + (1)", 2},
		{"span only", true, "1 + 12 + 1", "(1) + (12) + (1)", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls = 0
			e, err := rewrite.NewEngine(set, reg, nil, rewrite.Options{SpanOnly: tt.spanOnly})
			if err != nil {
				t.Fatal(err)
			}
			got, err := e.Apply(context.Background(), tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want || calls != tt.calls {
				t.Errorf("got %q after %d calls, want %q after %d", got, calls, tt.want, tt.calls)
			}
		})
	}
}

func TestRulesDoNotRetrigger(t *testing.T) {
	set := compileGrammar(t, `
x -> Grow { x }
y -> Why { y }`)
	reg := registry(t, map[string]rewrite.Translator{
		"Grow": constant("xy"),
		"Why":  constant("Y"),
	})
	got, err := rewrite.Apply(context.Background(), set, reg, nil, "x")
	if err != nil {
		t.Fatal(err)
	}
	// x -> xy один раз, затем y -> Y
	if got != "xY" {
		t.Fatalf("got %q", got)
	}
}

func TestScriptRules(t *testing.T) {
	set := compileGrammar(t, `shout { (\w+)! } -> { upper }`)

	upper := rewrite.EvaluatorFunc(func(_ context.Context, script string, b rewrite.Bindings) (any, error) {
		if script != "upper" || b.Rule != "shout" {
			return nil, fmt.Errorf("unexpected call %q %q", script, b.Rule)
		}
		return strings.ToUpper(b.Match.Group(1)), nil
	})
	got, err := rewrite.Apply(context.Background(), set, nil, upper, "hey! you!")
	if err != nil {
		t.Fatal(err)
	}
	if got != "HEY YOU" {
		t.Fatalf("got %q", got)
	}

	tests := []struct {
		name string
		eval rewrite.ScriptEvaluator
		want error
	}{
		{"no evaluator", nil, rewrite.ErrNoScriptEvaluator},
		{"non string", rewrite.EvaluatorFunc(func(context.Context, string, rewrite.Bindings) (any, error) {
			return 42, nil
		}), rewrite.ErrScriptResultType},
		{"failure", rewrite.EvaluatorFunc(func(context.Context, string, rewrite.Bindings) (any, error) {
			return nil, errors.New("NameError")
		}), rewrite.ErrScriptEvaluation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := rewrite.Apply(context.Background(), set, nil, tt.eval, "hey!")
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if out != "" {
				t.Errorf("partial output returned: %q", out)
			}
		})
	}
}

func TestTranslatorErrorKeepsCause(t *testing.T) {
	cause := errors.New("bad input")
	set := compileGrammar(t, `r -> Fail { z }`)
	reg := registry(t, map[string]rewrite.Translator{
		"Fail": rewrite.TranslatorFunc(func(*rewrite.Match) (string, error) { return "", cause }),
	})
	_, err := rewrite.Apply(context.Background(), set, reg, nil, "zz")
	if !errors.Is(err, rewrite.ErrTranslatorFailed) || !errors.Is(err, cause) {
		t.Fatalf("err = %v", err)
	}
}

func TestRewriteLimit(t *testing.T) {
	set := compileGrammar(t, `ch -> Id { . }`)
	reg := registry(t, map[string]rewrite.Translator{"Id": constant("-")})
	e, err := rewrite.NewEngine(set, reg, nil, rewrite.Options{MaxRewrites: 3})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Apply(context.Background(), "abc"); err != nil {
		t.Fatalf("at the limit: %v", err)
	}
	if _, err := e.Apply(context.Background(), "abcd"); !errors.Is(err, rewrite.ErrRewriteLimit) {
		t.Fatalf("err = %v, want ErrRewriteLimit", err)
	}
}

func TestEmptyMatchesIgnored(t *testing.T) {
	set := compileGrammar(t, `opt -> Star { a* }`)
	reg := registry(t, map[string]rewrite.Translator{"Star": constant("*")})
	got, err := rewrite.Apply(context.Background(), set, reg, nil, "baab")
	if err != nil {
		t.Fatal(err)
	}
	if got != "b*b" {
		t.Fatalf("got %q", got)
	}
}

func TestRewriteLimitCountsOnlyNonEmptyMatches(t *testing.T) {
	set := compileGrammar(t, `opt -> S { a* }`)
	reg := registry(t, map[string]rewrite.Translator{"S": constant("S")})
	for _, spanOnly := range []bool{false, true} {
		e, err := rewrite.NewEngine(set, reg, nil, rewrite.Options{MaxRewrites: 10, SpanOnly: spanOnly})
		if err != nil {
			t.Fatal(err)
		}
		got, err := e.Apply(context.Background(), strings.Repeat("b", 20)+"aa")
		if err != nil {
			t.Fatalf("span-only=%v: %v", spanOnly, err)
		}
		if want := strings.Repeat("b", 20) + "S"; got != want {
			t.Fatalf("span-only=%v: got %q, want %q", spanOnly, got, want)
		}
	}
}

func TestOptionalPrefixBeforeReference(t *testing.T) {
	set := compileGrammar(t, "digits { [0-9]+ }\nnum -> N { -?<digits> }")
	reg := registry(t, map[string]rewrite.Translator{"N": constant("NUM")})
	got, err := rewrite.Apply(context.Background(), set, reg, nil, "x = -42; y = 7;")
	if err != nil {
		t.Fatal(err)
	}
	if got != "x = NUM; y = NUM;" {
		t.Fatalf("got %q", got)
	}
}

func TestNotCompiledAndCancelled(t *testing.T) {
	set := grammar.NewRuleSet()
	if _, err := rewrite.NewEngine(set, nil, nil, rewrite.Options{}); !errors.Is(err, grammar.ErrNotCompiled) {
		t.Fatalf("err = %v, want ErrNotCompiled", err)
	}

	set = compileGrammar(t, `@rewrite { "a" -> "b" ; }`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := rewrite.Apply(ctx, set, nil, nil, "a"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestApplyEmitsTrace(t *testing.T) {
	set := compileGrammar(t, `@rewrite { "a" -> "b" ; }
r -> Id { b }`)
	reg := registry(t, map[string]rewrite.Translator{"Id": constant("c")})
	ring := trace.NewRingTracer(32, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)

	if _, err := rewrite.Apply(ctx, set, reg, nil, "a"); err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, ev := range ring.Snapshot() {
		if ev.Kind == trace.KindSpanEnd {
			names = append(names, ev.Scope.String()+":"+ev.Name)
		}
	}
	want := "pass:literal pass:pattern"
	if got := strings.Join(names, " "); !strings.Contains(got, "rule:r") || !strings.HasPrefix(got, "pass:literal") {
		t.Fatalf("spans = %q, want rule span and %q", got, want)
	}
}
