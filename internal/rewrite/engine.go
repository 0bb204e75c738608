package rewrite

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"gtrans/internal/diag"
	"gtrans/internal/grammar"
	"gtrans/internal/trace"
)

// DefaultMaxRewrites bounds the matches one rule may produce in one text.
const DefaultMaxRewrites = 100_000

// Options tune how replacements are applied.
type Options struct {
	// SpanOnly replaces only the matched span instead of every occurrence
	// of the matched text.
	SpanOnly bool
	// MaxRewrites is the per-rule match limit; 0 means DefaultMaxRewrites.
	MaxRewrites int
}

type patternRule struct {
	rule grammar.Rule
	re   *regexp.Regexp
}

// Engine holds a compiled rule set ready to be applied. It does not mutate
// the set and may be shared between goroutines as long as the registry and
// evaluator are.
type Engine struct {
	rewrites []grammar.RewriteRule
	patterns []patternRule
	reg      *Registry
	eval     ScriptEvaluator
	opts     Options
}

// NewEngine prepares set for application. The set must be compiled. reg may
// be nil when the set has no translation rules; eval may be nil when it has
// no script rules. Missing collaborators are reported by Apply, on the first
// rule that needs them.
func NewEngine(set *grammar.RuleSet, reg *Registry, eval ScriptEvaluator, opts Options) (*Engine, error) {
	if err := set.EnsureCompiled(); err != nil {
		return nil, err
	}
	if opts.MaxRewrites <= 0 {
		opts.MaxRewrites = DefaultMaxRewrites
	}
	if reg == nil {
		reg = NewRegistry()
	}
	e := &Engine{
		rewrites: set.Rewrites(),
		reg:      reg,
		eval:     eval,
		opts:     opts,
	}
	for _, r := range set.Rules() {
		if !r.Matchable() {
			continue
		}
		re, err := regexp.Compile(r.Body)
		if err != nil {
			return nil, diag.Errorf(diag.CmpInvalidPattern, grammar.ErrInvalidPattern, nil, r.BodySpan,
				"rule %q: %v", r.Key, err)
		}
		e.patterns = append(e.patterns, patternRule{rule: r, re: re})
	}
	return e, nil
}

// Apply is a shorthand for NewEngine followed by Engine.Apply.
func Apply(ctx context.Context, set *grammar.RuleSet, reg *Registry, eval ScriptEvaluator, src string) (string, error) {
	e, err := NewEngine(set, reg, eval, Options{})
	if err != nil {
		return "", err
	}
	return e.Apply(ctx, src)
}

// Apply rewrites src. On error nothing of the partially rewritten text is
// returned.
func (e *Engine) Apply(ctx context.Context, src string) (string, error) {
	text, err := e.applyLiterals(ctx, src)
	if err != nil {
		return "", err
	}
	return e.applyPatterns(ctx, text)
}

func (e *Engine) applyLiterals(ctx context.Context, text string) (string, error) {
	span := trace.BeginCtx(ctx, trace.ScopePass, "literal")
	defer span.End("")

	replaced := 0
	for _, rw := range e.rewrites {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if rw.Search == "" {
			continue
		}
		if n := strings.Count(text, rw.Search); n > 0 {
			replaced += n
			text = strings.ReplaceAll(text, rw.Search, rw.Replace)
		}
	}
	span.WithExtra("pairs", strconv.Itoa(len(e.rewrites))).WithExtra("replaced", strconv.Itoa(replaced))
	return text, nil
}

func (e *Engine) applyPatterns(ctx context.Context, text string) (string, error) {
	pass := trace.BeginCtx(ctx, trace.ScopePass, "pattern")
	defer pass.End("")
	tr := trace.FromContext(ctx)

	for i := range e.patterns {
		p := &e.patterns[i]
		span := trace.Begin(tr, trace.ScopeRule, p.rule.Key, pass.ID())
		out, n, err := e.applyRule(ctx, p, text)
		span.WithExtra("matches", strconv.Itoa(n)).End("")
		if err != nil {
			return "", err
		}
		text = out
	}
	pass.WithExtra("rules", strconv.Itoa(len(e.patterns)))
	return text, nil
}

// applyRule collects all matches of p in text up front: replacements made
// for one match never produce new matches of the same rule.
func (e *Engine) applyRule(ctx context.Context, p *patternRule, text string) (string, int, error) {
	limit := e.opts.MaxRewrites
	locs := nonEmpty(p.re.FindAllStringSubmatchIndex(text, -1))
	if len(locs) > limit {
		return "", 0, diag.Errorf(diag.AplRewriteLimit, ErrRewriteLimit, nil, p.rule.Span,
			"rule %q matched more than %d times", p.rule.Key, limit)
	}
	if len(locs) == 0 {
		return text, 0, nil
	}

	if e.opts.SpanOnly {
		return e.spliceSpans(ctx, p, text, locs)
	}

	working := text
	done := make(map[string]struct{}, len(locs))
	n := 0
	for _, loc := range locs {
		if err := ctx.Err(); err != nil {
			return "", n, err
		}
		m := newMatch(p.rule.Key, p.re, text, loc)
		if _, ok := done[m.Text]; ok {
			continue
		}
		done[m.Text] = struct{}{}
		repl, err := e.replacement(ctx, &p.rule, m)
		if err != nil {
			return "", n, err
		}
		n++
		working = strings.ReplaceAll(working, m.Text, repl)
	}
	return working, n, nil
}

// nonEmpty drops zero-length matches in place; they are never replaced and do
// not count against the limit.
func nonEmpty(locs [][]int) [][]int {
	out := locs[:0]
	for _, loc := range locs {
		if loc[0] != loc[1] {
			out = append(out, loc)
		}
	}
	return out
}

func (e *Engine) spliceSpans(ctx context.Context, p *patternRule, text string, locs [][]int) (string, int, error) {
	var sb strings.Builder
	sb.Grow(len(text))
	last, n := 0, 0
	for _, loc := range locs {
		if err := ctx.Err(); err != nil {
			return "", n, err
		}
		repl, err := e.replacement(ctx, &p.rule, newMatch(p.rule.Key, p.re, text, loc))
		if err != nil {
			return "", n, err
		}
		n++
		sb.WriteString(text[last:loc[0]])
		sb.WriteString(repl)
		last = loc[1]
	}
	sb.WriteString(text[last:])
	return sb.String(), n, nil
}

func (e *Engine) replacement(ctx context.Context, r *grammar.Rule, m *Match) (string, error) {
	switch r.Kind {
	case grammar.Translation:
		t, err := e.reg.Resolve(r.Translator)
		if err != nil {
			if de, ok := diag.AsError(err); ok {
				de.Span = r.Span
				de.Msg += " (rule " + strconv.Quote(r.Key) + ")"
			}
			return "", err
		}
		out, err := t.Translate(m)
		if err != nil {
			return "", diag.Errorf(diag.AplTranslatorFailed, ErrTranslatorFailed, nil, r.Span,
				"translator %q failed on %q", r.Translator, m.Text).Wrap(err)
		}
		return out, nil

	case grammar.TranslationScript:
		if e.eval == nil {
			return "", diag.Errorf(diag.AplNoScriptEvaluator, ErrNoScriptEvaluator, nil, r.Span,
				"rule %q has a script but no evaluator is configured", r.Key)
		}
		v, err := e.eval.Evaluate(ctx, r.Script, Bindings{Match: m, Rule: r.Key})
		if err != nil {
			return "", diag.Errorf(diag.AplScriptEvaluation, ErrScriptEvaluation, nil, r.Span,
				"script of rule %q failed", r.Key).Wrap(err)
		}
		s, ok := v.(string)
		if !ok {
			return "", diag.Errorf(diag.AplScriptResultType, ErrScriptResultType, nil, r.Span,
				"script of rule %q returned %T, want string", r.Key, v)
		}
		return s, nil

	default:
		return m.Text, nil
	}
}

// Rules returns the keys of the rules the pattern phase applies, in order.
func (e *Engine) Rules() []string {
	out := make([]string, len(e.patterns))
	for i := range e.patterns {
		out[i] = e.patterns[i].rule.Key
	}
	return out
}
