package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"gtrans/internal/diag"
	"gtrans/internal/source"
	"gtrans/internal/token"
)

// TestJSONBasic проверяет базовое JSON форматирование
func TestJSONBasic(t *testing.T) {
	fs := source.NewFileSet()
	bag := reservedNameBag(fs, "test.gtg")

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, PathMode: PathModeBasename}); err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, buf.String())
	}
	if out.Count != 1 || len(out.Diagnostics) != 1 {
		t.Fatalf("count = %d, want 1", out.Count)
	}
	d := out.Diagnostics[0]
	if d.Severity != "ERROR" || d.Code != "SYN2004" || d.Title != "Reserved rule name" {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	if d.Location == nil {
		t.Fatal("location missing")
	}
	want := LocationJSON{File: "test.gtg", StartByte: 12, EndByte: 19, StartLine: 2, StartCol: 1, EndLine: 2, EndCol: 8}
	if *d.Location != want {
		t.Fatalf("location = %+v, want %+v", *d.Location, want)
	}
}

func TestJSONWithoutPositions(t *testing.T) {
	fs := source.NewFileSet()
	bag := reservedNameBag(fs, "test.gtg")

	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{})
	loc := out.Diagnostics[0].Location
	if loc.StartLine != 0 || loc.StartCol != 0 {
		t.Fatalf("positions present without IncludePositions: %+v", loc)
	}
}

func TestJSONNotes(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("dup.gtg", []byte("ok { a }\nok { b }\n"))
	bag := diag.NewBag(2)
	bag.Add(diag.NewError(diag.CmpDuplicateRule, source.Span{File: id, Start: 9, End: 11}, "dup").
		WithNote(source.Span{File: id, Start: 0, End: 2}, "first"))

	if out := BuildDiagnosticsOutput(bag, fs, JSONOpts{}); len(out.Diagnostics[0].Notes) != 0 {
		t.Fatal("notes present without IncludeNotes")
	}
	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{IncludeNotes: true, IncludePositions: true})
	notes := out.Diagnostics[0].Notes
	if len(notes) != 1 || notes[0].Message != "first" || notes[0].Location.StartLine != 1 {
		t.Fatalf("notes = %+v", notes)
	}
}

func TestJSONMaxLimit(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("many.gtg", []byte("a b c d e"))
	bag := diag.NewBag(10)
	for i := uint32(0); i < 5; i++ {
		bag.Add(diag.NewError(diag.SynUnexpectedToken, source.Span{File: id, Start: i * 2, End: i*2 + 1}, "unexpected"))
	}

	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 3})
	if out.Count != 3 || !out.Truncated {
		t.Fatalf("count = %d truncated = %v, want 3 true", out.Count, out.Truncated)
	}
	out = BuildDiagnosticsOutput(bag, fs, JSONOpts{})
	if out.Count != 5 || out.Truncated {
		t.Fatalf("count = %d truncated = %v, want 5 false", out.Count, out.Truncated)
	}
}

func TestJSONUnknownFile(t *testing.T) {
	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.AplUnknownTranslator, source.Span{File: 3}, "missing"))

	out := BuildDiagnosticsOutput(bag, source.NewFileSet(), JSONOpts{})
	if out.Diagnostics[0].Location != nil {
		t.Fatalf("location = %+v, want nil", out.Diagnostics[0].Location)
	}
}

func TestSarif(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("dup.gtg", []byte("ok { a }\nok { b }\nrewrite { c }\n"))
	bag := diag.NewBag(4)
	bag.Add(diag.NewError(diag.CmpDuplicateRule, source.Span{File: id, Start: 9, End: 11}, "dup").
		WithNote(source.Span{File: id, Start: 0, End: 2}, "first"))
	bag.Add(diag.NewError(diag.SynReservedRuleName, source.Span{File: id, Start: 18, End: 25}, "reserved"))
	bag.Add(diag.NewError(diag.CmpDuplicateRule, source.Span{File: id, Start: 0, End: 2}, "dup again"))

	var buf bytes.Buffer
	meta := SarifRunMeta{ToolName: "gtrans", ToolVersion: "1.2.3", InvocationArgs: []string{"check"}}
	if err := Sarif(&buf, bag, fs, meta); err != nil {
		t.Fatalf("Sarif: %v", err)
	}

	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("unexpected log header %+v", log)
	}
	run := log.Runs[0]
	if run.Tool.Driver.Name != "gtrans" || run.Tool.Driver.Version != "1.2.3" {
		t.Fatalf("driver = %+v", run.Tool.Driver)
	}
	if len(run.Tool.Driver.Rules) != 2 || run.Tool.Driver.Rules[0].ID != "CMP3001" || run.Tool.Driver.Rules[1].ID != "SYN2004" {
		t.Fatalf("rules = %+v", run.Tool.Driver.Rules)
	}
	if len(run.Results) != 3 {
		t.Fatalf("results = %d, want 3", len(run.Results))
	}
	first := run.Results[0]
	if first.Level != "error" || first.Locations[0].PhysicalLocation.Region.StartLine != 2 {
		t.Fatalf("first result = %+v", first)
	}
	if len(first.RelatedLocations) != 1 || first.RelatedLocations[0].Message.Text != "first" {
		t.Fatalf("related = %+v", first.RelatedLocations)
	}
	if len(run.Invocations) != 1 || run.Invocations[0].ExecutionSuccessful {
		t.Fatalf("invocations = %+v", run.Invocations)
	}
}

func TestFormatTokens(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("t.gtg", []byte("a -> b"))
	toks := []token.Token{
		{Kind: token.Word, Text: "a", Span: source.Span{File: id, Start: 0, End: 1}},
		{Kind: token.Special, Text: "->", Companion: token.CompMap, Span: source.Span{File: id, Start: 2, End: 4},
			Leading: []token.Trivia{{Kind: token.TriviaSpace, Span: source.Span{File: id, Start: 1, End: 2}, Text: " "}}},
		{Kind: token.EOF, Span: source.Span{File: id, Start: 6, End: 6}},
		{Kind: token.Word, Text: "after-eof"},
	}

	var buf bytes.Buffer
	if err := FormatTokensPretty(&buf, toks, fs); err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(buf.Bytes(), []byte("after-eof")) {
		t.Fatal("tokens after EOF printed")
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"->" [Map] at 1:3-1:5 (leading: `)) {
		t.Fatalf("unexpected pretty tokens:\n%s", buf.String())
	}

	buf.Reset()
	if err := FormatTokensJSON(&buf, toks, fs); err != nil {
		t.Fatal(err)
	}
	var out []TokenOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 || out[1].Companion != "Map" || out[1].Col != 3 || len(out[1].Leading) != 1 {
		t.Fatalf("json tokens = %+v", out)
	}
}
