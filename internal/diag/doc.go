// Package diag holds diagnostics for grammar loading and rewriting: codes,
// severities, the Bag collector, reporters, and the Error value that every
// gtrans package returns.
//
// Codes are grouped by phase and rendered as stable ids:
//
//	LEX1xxx  lexical errors from the grammar lexer
//	SYN2xxx  grammar document parse errors
//	CMP3xxx  rule set compile errors
//	APL4xxx  errors raised while applying rules to source text
package diag
