package grammar_test

import (
	"errors"
	"testing"

	"gtrans/internal/diag"
	"gtrans/internal/grammar"
	"gtrans/internal/source"
)

func mustSet(t *testing.T, rules ...grammar.Rule) *grammar.RuleSet {
	t.Helper()
	set := grammar.NewRuleSet()
	for _, r := range rules {
		if err := set.AddRule(r); err != nil {
			t.Fatalf("AddRule(%s): %v", r.Key, err)
		}
	}
	return set
}

func ref(key, body string) grammar.Rule {
	return grammar.Rule{Key: key, Source: body, Kind: grammar.Reference}
}

func tr(key, translator, body string) grammar.Rule {
	return grammar.Rule{Key: key, Source: body, Kind: grammar.Translation, Translator: translator}
}

func TestCompileResolvesReferences(t *testing.T) {
	tests := []struct {
		name  string
		rules []grammar.Rule
		key   string
		want  string
	}{
		{
			name:  "single level",
			rules: []grammar.Rule{tr("a", "T", "x<b>y"), ref("b", "z")},
			key:   "a",
			want:  "xzy",
		},
		{
			name:  "three deep",
			rules: []grammar.Rule{tr("a", "T", "[<b>]"), ref("b", "(<c>|<c>)"), ref("c", "<d>+"), ref("d", "q")},
			key:   "a",
			want:  "[(q+|q+)]",
		},
		{
			name:  "backward reference",
			rules: []grammar.Rule{ref("id", `[A-Za-z_]\w*`), tr("decl", "T", `var\s+(<id>)`)},
			key:   "decl",
			want:  `var\s+([A-Za-z_]\w*)`,
		},
		{
			name:  "escaped bracket and named group untouched",
			rules: []grammar.Rule{ref("x", "1"), tr("a", "T", `\<x>(?P<x>a)(?<y>b)<x>`)},
			key:   "a",
			want:  `\<x>(?P<x>a)(?<y>b)1`,
		},
		{
			name:  "quantifier before reference",
			rules: []grammar.Rule{ref("digits", "[0-9]+"), tr("num", "N", "-?<digits>")},
			key:   "num",
			want:  "-?[0-9]+",
		},
		{
			name:  "lazy quantifier and escaped paren",
			rules: []grammar.Rule{ref("x", "1"), tr("a", "T", `a*?<x>\(?<x>`)},
			key:   "a",
			want:  `a*?1\(?1`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := mustSet(t, tt.rules...)
			if err := set.Compile(); err != nil {
				t.Fatalf("Compile: %v", err)
			}
			r, ok := set.Rule(tt.key)
			if !ok {
				t.Fatalf("rule %q missing", tt.key)
			}
			if r.Body != tt.want {
				t.Errorf("body = %q, want %q", r.Body, tt.want)
			}
			if !set.Compiled() {
				t.Error("set must be marked compiled")
			}
		})
	}
}

func TestCompileDetectsCycles(t *testing.T) {
	tests := []struct {
		name  string
		rules []grammar.Rule
		msg   string
	}{
		{"two rules", []grammar.Rule{ref("a", "<b>"), ref("b", "<a>")}, "CMP3003: cyclic rule reference: a -> b -> a"},
		{"self", []grammar.Rule{tr("a", "T", "x<a>")}, "CMP3003: cyclic rule reference: a -> a"},
		{"via middle", []grammar.Rule{tr("top", "T", "<a>"), ref("a", "<b>"), ref("b", "<c>"), ref("c", "<a>")}, "CMP3003: cyclic rule reference: a -> b -> c -> a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := mustSet(t, tt.rules...)
			err := set.Compile()
			if !errors.Is(err, grammar.ErrCyclicReference) {
				t.Fatalf("Compile = %v, want cyclic reference", err)
			}
			if err.Error() != tt.msg {
				t.Errorf("message = %q, want %q", err.Error(), tt.msg)
			}
			if set.Compiled() {
				t.Error("failed compile must not mark the set compiled")
			}
		})
	}
}

func TestCompileUndefinedReference(t *testing.T) {
	set := mustSet(t, tr("a", "T", "<missing>"), tr("b", "T", "<a>"))
	err := set.Compile()
	if !errors.Is(err, grammar.ErrUndefinedReference) {
		t.Fatalf("Compile = %v", err)
	}
	// зависимое правило не порождает вторую ошибку
	if err.Error() != `CMP3002: rule "a" references undefined rule "missing"` {
		t.Errorf("message = %q", err.Error())
	}
	if r, _ := set.Rule("a"); r.Body != "<missing>" {
		t.Errorf("body must stay unresolved, got %q", r.Body)
	}
}

func TestCompileInvalidPattern(t *testing.T) {
	set := mustSet(t, ref("frag", "(unclosed"), tr("bad", "T", "<frag>"), tr("ok", "T", "fine"))
	err := set.Compile()
	if !errors.Is(err, grammar.ErrInvalidPattern) {
		t.Fatalf("Compile = %v", err)
	}
	de, ok := diag.AsError(err)
	if !ok || de.Code != diag.CmpInvalidPattern {
		t.Fatalf("AsError = %v", de)
	}
}

func TestDuplicateRuleAndMerge(t *testing.T) {
	first := mustSet(t, ref("a", "1"), tr("b", "T", "<a>"))
	first.AddRewrite(grammar.RewriteRule{Search: "foo", Replace: "bar"})

	err := first.AddRule(grammar.Rule{Key: "a", Source: "2", Span: source.Span{Start: 10, End: 11}})
	if !errors.Is(err, grammar.ErrDuplicateRule) {
		t.Fatalf("AddRule duplicate = %v", err)
	}

	second := mustSet(t, ref("c", "3"), ref("a", "4"))
	second.AddRewrite(grammar.RewriteRule{Search: "x", Replace: "y"})
	if err := first.Merge(second); !errors.Is(err, grammar.ErrDuplicateRule) {
		t.Fatalf("Merge duplicate = %v", err)
	}
	if first.Len() != 2 || len(first.Rewrites()) != 1 {
		t.Fatalf("failed merge must not modify the set: len=%d rewrites=%d", first.Len(), len(first.Rewrites()))
	}

	third := mustSet(t, tr("c", "U", "<a><a>"))
	third.AddRewrite(grammar.RewriteRule{Search: "x", Replace: "y"})
	merged, err := grammar.Merge(first, third)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	var keys []string
	for _, r := range merged.Rules() {
		keys = append(keys, r.Key)
	}
	if len(keys) != 3 || keys[0] != "a" || keys[1] != "b" || keys[2] != "c" {
		t.Fatalf("keys = %v", keys)
	}
	rw := merged.Rewrites()
	if len(rw) != 2 || rw[0].Search != "foo" || rw[1].Search != "x" {
		t.Fatalf("rewrites = %+v", rw)
	}
	if got := merged.TranslatorNames(); len(got) != 2 || got[0] != "T" || got[1] != "U" {
		t.Fatalf("translators = %v", got)
	}
	if err := merged.Compile(); err != nil {
		t.Fatal(err)
	}
	if c, _ := merged.Rule("c"); c.Body != "11" {
		t.Errorf("c body = %q", c.Body)
	}
}

func TestEnsureCompiled(t *testing.T) {
	set := mustSet(t, tr("a", "T", "x"))
	if !errors.Is(set.EnsureCompiled(), grammar.ErrNotCompiled) {
		t.Fatal("fresh set must not be compiled")
	}
	if err := set.Compile(); err != nil {
		t.Fatal(err)
	}
	if err := set.EnsureCompiled(); err != nil {
		t.Fatal(err)
	}
	if err := set.AddRule(ref("b", "y")); err != nil {
		t.Fatal(err)
	}
	if set.Compiled() {
		t.Fatal("adding a rule must invalidate compilation")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	set := mustSet(t, ref("a", "1"), grammar.Rule{Key: "s", Source: "<a>", Kind: grammar.TranslationScript, Script: "text.upper()"})
	set.AddRewrite(grammar.RewriteRule{Search: "p", Replace: "q"})
	if err := set.Compile(); err != nil {
		t.Fatal(err)
	}
	back, err := grammar.FromSnapshot(set.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	if !back.Compiled() || back.Len() != 2 {
		t.Fatalf("restored set compiled=%v len=%d", back.Compiled(), back.Len())
	}
	if s, _ := back.Rule("s"); s.Body != "1" || s.Script != "text.upper()" {
		t.Fatalf("restored rule = %+v", s)
	}
	if _, err := grammar.FromSnapshot(grammar.Snapshot{Version: 99}); err == nil {
		t.Fatal("expected version mismatch")
	}
}

func TestPlaceholders(t *testing.T) {
	got := grammar.Placeholders(`<a>\<b>\\<c><>?<d>(?P<e>x)(?<g>y)<f_1>`)
	var names []string
	for _, p := range got {
		names = append(names, p.Name)
	}
	want := []string{"a", "c", "d", "f_1"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}
