// Package parser reads grammar documents into grammar.RuleSet values.
//
// A document is a sequence of rule declarations and at most one special block:
//
//	@rewrite { "search" -> "replace" ; ... }
//	name [-> Translator] { pattern } [-> { script }] [;]
//
// The parser drives a Stream whose lexical configuration it changes while
// reading: string literals exist only inside the rewrite block, whitespace is
// significant only inside a script body. Every change is scoped and undone on
// all exit paths. There is no error recovery: the first error ends the document.
package parser
