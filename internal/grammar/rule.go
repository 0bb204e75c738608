package grammar

import (
	"fmt"

	"gtrans/internal/source"
)

// Kind tells how a rule takes part in rewriting.
type Kind uint8

const (
	// Reference rules only feed other rules' placeholders.
	Reference Kind = iota
	// Translation rules hand each match to a named translator.
	Translation
	// TranslationScript rules evaluate an inline script per match.
	TranslationScript
)

func (k Kind) String() string {
	switch k {
	case Reference:
		return "reference"
	case Translation:
		return "translation"
	case TranslationScript:
		return "script"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// RewriteRule is a literal search/replace pair from a rewrite block.
type RewriteRule struct {
	Search  string      `msgpack:"search"`
	Replace string      `msgpack:"replace"`
	Span    source.Span `msgpack:"span"`
}

// Rule is one named declaration. Source is the body as written; Body is the
// resolved pattern once the owning RuleSet is compiled.
type Rule struct {
	Key        string      `msgpack:"key"`
	Source     string      `msgpack:"source"`
	Body       string      `msgpack:"body"`
	Kind       Kind        `msgpack:"kind"`
	Translator string      `msgpack:"translator,omitempty"`
	Script     string      `msgpack:"script,omitempty"`
	Span       source.Span `msgpack:"span"`
	BodySpan   source.Span `msgpack:"body_span"`
}

// Matchable reports whether the rule is applied to source text.
func (r *Rule) Matchable() bool {
	return r.Kind != Reference
}
