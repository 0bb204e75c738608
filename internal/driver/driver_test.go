package driver_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"gtrans/internal/diag"
	"gtrans/internal/driver"
	"gtrans/internal/grammar"
	"gtrans/internal/observ"
	"gtrans/internal/rewrite"
	"gtrans/internal/script"
	"gtrans/internal/token"
	"gtrans/internal/translators"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestLoadGrammarsMergesInOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.gtg", "@rewrite { \"foo\" -> \"bar\" ; }\nident { [a-z]+ }\n")
	writeFile(t, dir, "sub/b.gtg", "greet -> Hi { hello (<ident>) }\n")
	writeFile(t, dir, "notes.txt", "ignored")

	timer := observ.NewTimer()
	res, err := driver.LoadGrammars(context.Background(), []string{dir}, driver.LoadOptions{MaxDiagnostics: 10, Timer: timer})
	if err != nil {
		t.Fatalf("LoadGrammars: %v", err)
	}
	if len(res.Files) != 2 || !strings.HasSuffix(res.Files[1].Path, "sub/b.gtg") {
		t.Fatalf("files = %v", res.Files)
	}
	r, ok := res.Set.Rule("greet")
	if !ok || r.Body != "hello ([a-z]+)" {
		t.Fatalf("greet = %+v", r)
	}
	if got := res.Set.Rewrites(); len(got) != 1 || got[0].Search != "foo" {
		t.Errorf("rewrites = %+v", got)
	}
	if len(timer.Report().Phases) != 2 {
		t.Errorf("phases = %+v", timer.Report().Phases)
	}
}

func TestLoadGrammarsReportsEveryDocument(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.gtg", "first { x }\nrewrite { y }\n")
	writeFile(t, dir, "b.gtg", "z { /* open\n")
	writeFile(t, dir, "c.gtg", "ok { x }\n")
	writeFile(t, dir, "d.gtg", "ok { again }\n")

	res, err := driver.LoadGrammars(context.Background(), []string{dir}, driver.LoadOptions{MaxDiagnostics: 10})
	if !errors.Is(err, driver.ErrGrammar) {
		t.Fatalf("err = %v, want ErrGrammar", err)
	}
	if res.Set != nil {
		t.Fatal("no rule set may be returned on errors")
	}
	got := diag.FormatShortDiagnostics(res.Bag.Items(), res.FileSet, false)
	for _, want := range []string{"SYN2004", "LEX1002", "CMP3001"} {
		if !strings.Contains(got, want) {
			t.Errorf("diagnostics lack %s:\n%s", want, got)
		}
	}
	if !strings.Contains(got, "a.gtg:2:1") {
		t.Errorf("reserved-name error not located:\n%s", got)
	}
}

func TestLoadGrammarsCache(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "g.gtg", "r -> T { a+ }\n")
	cache, err := driver.NewDiskCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	opts := driver.LoadOptions{MaxDiagnostics: 10, Cache: cache}
	ctx := context.Background()

	first, err := driver.LoadGrammars(ctx, []string{path}, opts)
	if err != nil || first.CacheHit {
		t.Fatalf("first load: hit=%v err=%v", first != nil && first.CacheHit, err)
	}
	second, err := driver.LoadGrammars(ctx, []string{path}, opts)
	if err != nil || !second.CacheHit {
		t.Fatalf("second load must hit the cache: %v", err)
	}
	if r, ok := second.Set.Rule("r"); !ok || r.Body != "a+" || r.Kind != grammar.Translation {
		t.Fatalf("cached rule = %+v", r)
	}

	writeFile(t, dir, "g.gtg", "r -> T { b+ }\n")
	third, err := driver.LoadGrammars(ctx, []string{path}, opts)
	if err != nil || third.CacheHit {
		t.Fatalf("edited grammar must miss the cache: %v", err)
	}

	if err := cache.DropAll(); err != nil {
		t.Fatal(err)
	}
	if again, err := driver.LoadGrammars(ctx, []string{path}, opts); err != nil || again.CacheHit {
		t.Fatalf("after DropAll: %v", err)
	}
}

func TestNoGrammarFiles(t *testing.T) {
	_, err := driver.LoadGrammars(context.Background(), []string{t.TempDir()}, driver.LoadOptions{})
	if !errors.Is(err, driver.ErrNoGrammarFiles) {
		t.Fatalf("err = %v", err)
	}
}

func engineFor(t *testing.T, grammarSrc string, reg *rewrite.Registry) *rewrite.Engine {
	t.Helper()
	path := writeFile(t, t.TempDir(), "g.gtg", grammarSrc)
	res, err := driver.LoadGrammars(context.Background(), []string{path}, driver.LoadOptions{MaxDiagnostics: 10})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	eng, err := rewrite.NewEngine(res.Set, reg, nil, rewrite.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return eng
}

func TestTranslateTree(t *testing.T) {
	reg := rewrite.NewRegistry()
	if err := reg.Register("Boom", rewrite.TranslatorFunc(func(m *rewrite.Match) (string, error) {
		return "", errors.New("cannot translate " + m.Text)
	})); err != nil {
		t.Fatal(err)
	}
	eng := engineFor(t, "@rewrite { \"foo\" -> \"bar\" ; }\nbad -> Boom { BAD }\n", reg)

	src := t.TempDir()
	writeFile(t, src, "A.java", "foo()")
	writeFile(t, src, "pkg/B.java", "BAD foo")
	writeFile(t, src, "pkg/readme.md", "foo")
	out := filepath.Join(t.TempDir(), "out")

	var mu sync.Mutex
	var events []driver.ProgressEvent
	res, err := driver.TranslateTree(context.Background(), eng, src, out, driver.TreeOptions{
		Jobs:       2,
		Extensions: []string{".java"},
		Observer: func(ev driver.ProgressEvent) {
			mu.Lock()
			events = append(events, ev)
			mu.Unlock()
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Files) != 2 || res.Failed != 1 {
		t.Fatalf("result = %+v", res)
	}
	if got := readFile(t, filepath.Join(out, "A.java")); got != "bar()" {
		t.Errorf("A.java = %q", got)
	}
	if _, err := os.Stat(filepath.Join(out, "pkg", "B.java")); !os.IsNotExist(err) {
		t.Errorf("failed file must not be written: %v", err)
	}
	failed := res.Files[1]
	if failed.Rel != "pkg/B.java" || !errors.Is(failed.Err, rewrite.ErrTranslatorFailed) {
		t.Errorf("failed = %+v", failed)
	}

	last := events[len(events)-1]
	if last.Done != 2 || last.Total != 2 {
		t.Errorf("last event = %+v", last)
	}
	statuses := make([]driver.FileStatus, 0, len(events))
	for _, ev := range events {
		statuses = append(statuses, ev.Status)
	}
	if !slices.Contains(statuses, driver.FileFailed) || !slices.Contains(statuses, driver.FileDone) {
		t.Errorf("statuses = %v", statuses)
	}
}

func TestTranslateTreeRefusesSourceAsOutput(t *testing.T) {
	eng := engineFor(t, "@rewrite { \"a\" -> \"b\" ; }\n", nil)
	src := t.TempDir()
	_, err := driver.TranslateTree(context.Background(), eng, src, src, driver.TreeOptions{})
	if !errors.Is(err, driver.ErrOutputIsSource) {
		t.Fatalf("err = %v", err)
	}
}

func TestTranslateFileNormalizesAndKeepsBOM(t *testing.T) {
	eng := engineFor(t, "@rewrite { \"\u00e9\" -> \"E\" ; }\n", nil)
	path := writeFile(t, t.TempDir(), "in.txt", "\xEF\xBB\xBFcafe\u0301\r\n")

	got, err := driver.TranslateFile(context.Background(), eng, path, true)
	if err != nil {
		t.Fatal(err)
	}
	if got != "\xEF\xBB\xBFcafE\r\n" {
		t.Fatalf("got %q", got)
	}
	raw, err := driver.TranslateFile(context.Background(), eng, path, false)
	if err != nil || strings.Contains(raw, "E") {
		t.Fatalf("without normalisation nothing should match: %q, %v", raw, err)
	}
}

func TestTokenize(t *testing.T) {
	path := writeFile(t, t.TempDir(), "g.gtg", "greet -> Hi { \"x\" }")
	res, err := driver.Tokenize(path, driver.TokenizeOptions{MaxDiagnostics: 5})
	if err != nil {
		t.Fatal(err)
	}
	var kinds []token.Kind
	for _, tok := range res.Tokens {
		kinds = append(kinds, tok.Kind)
	}
	want := []token.Kind{token.Word, token.Special, token.Word, token.Separator, token.Separator, token.Word, token.Separator, token.Separator, token.EOF}
	if !slices.Equal(kinds, want) {
		t.Fatalf("kinds = %v", kinds)
	}

	res, err = driver.Tokenize(path, driver.TokenizeOptions{MaxDiagnostics: 5, Strings: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Tokens[4].Kind != token.String || res.Tokens[4].Text != `"x"` {
		t.Fatalf("string token = %+v", res.Tokens[4])
	}
}

func TestBuildRegistry(t *testing.T) {
	set := grammar.NewRuleSet()
	for _, r := range []grammar.Rule{
		{Key: "a", Source: "x", Kind: grammar.Translation, Translator: "Hi"},
		{Key: "b", Source: "y", Kind: grammar.Translation, Translator: "ImplicitType"},
		{Key: "c", Source: "z", Kind: grammar.Translation, Translator: "Unknown"},
	} {
		if err := set.AddRule(r); err != nil {
			t.Fatal(err)
		}
	}
	hello := "HELLO"
	reg, err := driver.BuildRegistry(map[string]translators.Spec{"Hi": {Literal: &hello}}, set)
	if err != nil {
		t.Fatal(err)
	}
	if got := reg.Names(); !slices.Equal(got, []string{"Hi", "ImplicitType"}) {
		t.Fatalf("Names = %v", got)
	}

	if _, err := driver.BuildRegistry(map[string]translators.Spec{"X": {}}, nil); !errors.Is(err, translators.ErrBadSpec) {
		t.Fatalf("err = %v", err)
	}
}

func TestSampleGrammars(t *testing.T) {
	root := filepath.Join("..", "..", "testdata")
	res, err := driver.LoadGrammars(context.Background(), []string{filepath.Join(root, "grammars")}, driver.LoadOptions{MaxDiagnostics: 10})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	reg, err := driver.BuildRegistry(nil, res.Set)
	if err != nil {
		t.Fatal(err)
	}
	ev := script.New(script.Options{Size: 1})
	defer ev.Close()
	eng, err := rewrite.NewEngine(res.Set, reg, ev, rewrite.Options{})
	if err != nil {
		t.Fatal(err)
	}

	got, err := driver.TranslateFile(context.Background(), eng, filepath.Join(root, "src", "Main.java"), false)
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	for _, want := range []string{
		"private int _count;",
		"public void Count(int value) { _count = value; }",
		"ArrayList list = new ArrayList(10);",
		"boolean ok = true;",
		"for (String arg : args)",
		`println(("arg "+arg+" of "+args.length+""));`,
		`String path = "C:\tmp\n";`,
		"right, left;",
		`println("done?");`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output lacks %q:\n%s", want, got)
		}
	}
}
