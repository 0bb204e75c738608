// Package rewrite applies a compiled grammar.RuleSet to source text.
//
// Apply runs two phases. The literal phase performs every rewrite pair as a
// plain global substring replacement, in declaration order. The pattern phase
// takes each matchable rule in declaration order, finds its matches in the
// text as it stands when the rule starts, and replaces each match with the
// text produced by the rule's translator or script.
//
// By default a replacement is applied to every occurrence of the matched
// text, not only to the matched span. Options.SpanOnly switches to
// offset-based splicing.
//
// Translators are looked up by name in a Registry owned by the caller; scripts
// go through a ScriptEvaluator. Neither is global.
package rewrite
