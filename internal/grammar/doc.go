// Package grammar holds the compiled form of grammar documents: literal
// rewrite pairs and named pattern rules, kept in declaration order with
// unique keys. Compile resolves <name> placeholders into closed patterns.
package grammar
