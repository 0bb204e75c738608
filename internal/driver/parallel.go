package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"gtrans/internal/observ"
	"gtrans/internal/rewrite"
	"gtrans/internal/trace"
)

// ErrOutputIsSource guards against overwriting the source tree.
var ErrOutputIsSource = errors.New("output directory equals the source directory")

// TreeOptions configure TranslateTree.
type TreeOptions struct {
	Jobs       int
	Normalize  bool
	Extensions []string
	Observer   ProgressObserver
	Timer      *observ.Timer
}

// FileResult is the outcome for one source file.
type FileResult struct {
	Path    string // as walked
	Rel     string // relative to the source root
	OutPath string
	Err     error
	Elapsed time.Duration
}

// TreeResult collects per-file outcomes in path order.
type TreeResult struct {
	Files  []FileResult
	Failed int
}

// TranslateTree translates every file below srcRoot into the same relative
// path under outRoot. srcRoot may also be a single file. A file that fails
// is recorded in its FileResult and not written; the other files proceed.
// The returned error covers walking, cancellation and setup only.
func TranslateTree(ctx context.Context, eng *rewrite.Engine, srcRoot, outRoot string, opts TreeOptions) (*TreeResult, error) {
	span := trace.BeginCtx(ctx, trace.ScopePass, "translate-tree")
	defer span.End("")
	ctx = trace.WithParent(ctx, span)

	info, err := os.Stat(srcRoot)
	if err != nil {
		return nil, err
	}
	if same, err := samePath(srcRoot, outRoot); err != nil {
		return nil, err
	} else if same {
		return nil, fmt.Errorf("%w: %s", ErrOutputIsSource, outRoot)
	}

	var files []string
	base := srcRoot
	if info.IsDir() {
		if files, err = ListSourceFiles(srcRoot, opts.Extensions, outRoot); err != nil {
			return nil, err
		}
	} else {
		files = []string{srcRoot}
		base = filepath.Dir(srcRoot)
	}

	// Настраиваем параллелизм
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	res := &TreeResult{Files: make([]FileResult, len(files))}
	if len(files) == 0 {
		return res, nil
	}

	var mu sync.Mutex
	done := 0
	notify := func(ev ProgressEvent) {
		if opts.Observer == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if ev.Status == FileDone || ev.Status == FileFailed {
			done++
		}
		ev.Done, ev.Total = done, len(files)
		opts.Observer(ev)
	}
	for _, path := range files {
		notify(ProgressEvent{Path: path, Status: FileQueued})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			// Проверка отмены
			if err := gctx.Err(); err != nil {
				return err
			}
			rel, err := filepath.Rel(base, path)
			if err != nil {
				rel = filepath.Base(path)
			}
			fr := FileResult{Path: path, Rel: filepath.ToSlash(rel), OutPath: filepath.Join(outRoot, rel)}
			notify(ProgressEvent{Path: path, Status: FileWorking})

			start := time.Now()
			out, err := TranslateFile(gctx, eng, path, opts.Normalize)
			if err == nil {
				err = WriteOutput(fr.OutPath, out)
			}
			fr.Err, fr.Elapsed = err, time.Since(start)
			if opts.Timer != nil {
				opts.Timer.Add("translate", fr.Elapsed)
			}
			res.Files[i] = fr

			// отмена контекста считается общей ошибкой, а не сбоем файла
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			status := FileDone
			if err != nil {
				status = FileFailed
			}
			notify(ProgressEvent{Path: path, Status: status, Elapsed: fr.Elapsed, Err: err})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, fr := range res.Files {
		if fr.Err != nil {
			res.Failed++
		}
	}
	return res, nil
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return absA == absB, nil
}
