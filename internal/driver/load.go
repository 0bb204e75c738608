package driver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"

	"gtrans/internal/diag"
	"gtrans/internal/grammar"
	"gtrans/internal/observ"
	"gtrans/internal/parser"
	"gtrans/internal/project"
	"gtrans/internal/source"
	"gtrans/internal/trace"
)

// ErrGrammar is returned by LoadGrammars when diagnostics hold errors.
var ErrGrammar = errors.New("grammar has errors")

type LoadOptions struct {
	MaxDiagnostics int
	Jobs           int
	Cache          *DiskCache // nil disables caching
	Timer          *observ.Timer
}

// GrammarResult is the outcome of loading a set of grammar documents.
type GrammarResult struct {
	FileSet  *source.FileSet
	Files    []*source.File
	Set      *grammar.RuleSet // nil when Bag has errors
	Bag      *diag.Bag
	CacheHit bool
}

// LoadGrammars parses every document under paths, merges them in path order
// and compiles the result. Documents are independent: a failing document is
// reported and the remaining ones are still parsed and merged, so one run
// shows every parse and duplicate-rule problem. Compilation runs only when
// every document parsed. I/O failures are returned directly.
func LoadGrammars(ctx context.Context, paths []string, opts LoadOptions) (*GrammarResult, error) {
	span := trace.BeginCtx(ctx, trace.ScopePass, "load-grammars")
	defer span.End("")
	ctx = trace.WithParent(ctx, span)

	names, err := ListGrammarFiles(paths)
	if err != nil {
		return nil, err
	}
	fs := source.NewFileSet()
	res := &GrammarResult{FileSet: fs, Bag: diag.NewBag(opts.MaxDiagnostics)}
	for _, name := range names {
		id, err := fs.Load(name)
		if err != nil {
			return nil, fmt.Errorf("load grammar: %w", err)
		}
		res.Files = append(res.Files, fs.Get(id))
	}
	span.WithExtra("files", strconv.Itoa(len(res.Files)))

	key := grammarKey(res.Files)
	if set, ok := lookupCache(ctx, opts.Cache, key); ok {
		res.Set, res.CacheHit = set, true
		span.WithExtra("cache", "hit")
		return res, nil
	}

	sets := parseAll(ctx, res.Files, opts)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx := beginPhase(opts.Timer, "compile")
	merged := grammar.NewRuleSet()
	parseFailed := false
	for _, r := range sets {
		if r.err != nil {
			res.report(r.err)
			parseFailed = true
			continue
		}
		if err := merged.Merge(r.set); err != nil {
			res.report(err)
		}
	}
	// ссылки на правила из сломанного документа дали бы ложные ошибки
	if !parseFailed {
		if err := merged.Compile(); err != nil {
			res.report(err)
		}
	}
	endPhase(opts.Timer, idx, strconv.Itoa(merged.Len())+" rules")

	if res.Bag.HasErrors() {
		res.Bag.Sort()
		return res, fmt.Errorf("%w: %d diagnostic(s)", ErrGrammar, res.Bag.Len())
	}
	res.Set = merged

	if opts.Cache != nil {
		payload := &DiskPayload{Snapshot: merged.Snapshot()}
		for _, f := range res.Files {
			payload.FilePaths = append(payload.FilePaths, f.Path)
			payload.FileHashes = append(payload.FileHashes, project.Digest(f.Hash))
		}
		if err := opts.Cache.Put(key, payload); err != nil {
			trace.Point(trace.FromContext(ctx), trace.ScopeFile, "cache-put-failed", err.Error(), span.ID())
		}
	}
	return res, nil
}

type parsed struct {
	set *grammar.RuleSet
	err error
}

func parseAll(ctx context.Context, files []*source.File, opts LoadOptions) []parsed {
	idx := beginPhase(opts.Timer, "parse")
	defer endPhase(opts.Timer, idx, strconv.Itoa(len(files))+" files")

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	out := make([]parsed, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(files))))
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fspan := trace.BeginCtx(gctx, trace.ScopeFile, f.Path)
			set, err := parser.ParseFile(f, parser.Options{})
			out[i] = parsed{set: set, err: err}
			if err != nil {
				fspan.End("error")
			} else {
				fspan.WithExtra("rules", strconv.Itoa(set.Len())).End("")
			}
			return nil
		})
	}
	_ = g.Wait() // ошибки разбора лежат в out, отмена проверяется вызывающим
	return out
}

func (r *GrammarResult) report(err error) {
	diag.LocateAll(err, r.FileSet)
	rep := diag.BagReporter{Bag: r.Bag}
	for _, e := range diag.Flatten(err) {
		diag.ReportErr(rep, e)
	}
}

func lookupCache(ctx context.Context, c *DiskCache, key project.Digest) (*grammar.RuleSet, bool) {
	if c == nil {
		return nil, false
	}
	var payload DiskPayload
	ok, err := c.Get(key, &payload)
	if err != nil || !ok {
		if err != nil {
			trace.Point(trace.FromContext(ctx), trace.ScopeFile, "cache-get-failed", err.Error(), trace.ParentFrom(ctx))
		}
		return nil, false
	}
	set, err := grammar.FromSnapshot(payload.Snapshot)
	if err != nil || !set.Compiled() {
		return nil, false
	}
	return set, true
}

func beginPhase(t *observ.Timer, name string) int {
	if t == nil {
		return -1
	}
	return t.Begin(name)
}

func endPhase(t *observ.Timer, idx int, note string) {
	if t != nil {
		t.End(idx, note)
	}
}
