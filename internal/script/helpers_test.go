package script_test

import (
	"testing"

	"gtrans/internal/grammar"
	"gtrans/internal/parser"
	"gtrans/internal/source"
)

func compile(t *testing.T, src string) *grammar.RuleSet {
	t.Helper()
	fs := source.NewFileSet()
	set, err := parser.ParseFile(fs.Get(fs.AddVirtual("script.gtg", []byte(src))), parser.Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := set.Compile(); err != nil {
		t.Fatalf("compile: %v", err)
	}
	return set
}
