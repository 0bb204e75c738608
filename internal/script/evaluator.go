package script

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/go-python/gpython/py"
	_ "github.com/go-python/gpython/stdlib" // registers the compiler and builtins
	pool "github.com/jolestar/go-commons-pool"

	"gtrans/internal/rewrite"
)

// ErrClosed is returned by Evaluate after Close.
var ErrClosed = errors.New("script evaluator closed")

// Options configure an Evaluator.
type Options struct {
	// Size caps the number of interpreter contexts; 0 means GOMAXPROCS.
	Size int
}

type program struct {
	code *py.Code
	expr bool
}

// Evaluator runs scripts on a pool of gpython contexts. One context serves
// one evaluation at a time; Evaluate is safe for concurrent use.
type Evaluator struct {
	pool *pool.ObjectPool

	mu       sync.Mutex
	contexts []py.Context
	closed   bool

	programs sync.Map // script text -> *program
}

var _ rewrite.ScriptEvaluator = (*Evaluator)(nil)

func New(opts Options) *Evaluator {
	size := opts.Size
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	e := &Evaluator{}
	factory := pool.NewPooledObjectFactorySimple(
		func(context.Context) (interface{}, error) {
			pctx := py.NewContext(py.DefaultContextOpts())
			e.mu.Lock()
			e.contexts = append(e.contexts, pctx)
			e.mu.Unlock()
			return pctx, nil
		})
	config := pool.NewDefaultPoolConfig()
	config.MaxTotal = size
	config.MaxIdle = size
	config.BlockWhenExhausted = true
	e.pool = pool.NewObjectPool(context.Background(), factory, config)
	return e
}

// Evaluate runs src with b bound and returns a Go string for a Python str,
// or the raw py.Object for any other value.
func (e *Evaluator) Evaluate(ctx context.Context, src string, b rewrite.Bindings) (any, error) {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	prog, err := e.compile(src)
	if err != nil {
		return nil, err
	}

	obj, err := e.pool.BorrowObject(ctx)
	if err != nil {
		return nil, fmt.Errorf("borrow interpreter: %w", err)
	}
	pctx, ok := obj.(py.Context)
	if !ok {
		return nil, fmt.Errorf("unexpected pooled object %T", obj)
	}
	defer func() { _ = e.pool.ReturnObject(context.Background(), obj) }()

	globals := bind(b)
	res, err := pctx.RunCode(prog.code, globals, globals, nil)
	if err != nil {
		return nil, err
	}
	if !prog.expr {
		var found bool
		res, found = globals["result"]
		if !found {
			return nil, errors.New("script did not set result")
		}
	}
	if s, ok := res.(py.String); ok {
		return string(s), nil
	}
	return res, nil
}

// Check compiles src without running it, so syntax errors surface before
// any source file is translated.
func (e *Evaluator) Check(src string) error {
	_, err := e.compile(src)
	return err
}

// compile caches compiled code per script text. Expression mode is tried
// first so one-line scripts need no result assignment.
func (e *Evaluator) compile(src string) (*program, error) {
	if p, ok := e.programs.Load(src); ok {
		return p.(*program), nil
	}
	text := strings.TrimSpace(dedent(src))
	prog := &program{expr: true}
	code, err := py.Compile(text, "<script>", py.EvalMode, 0, true)
	if err != nil {
		prog.expr = false
		code, err = py.Compile(text+"\n", "<script>", py.ExecMode, 0, true)
		if err != nil {
			return nil, err
		}
	}
	prog.code = code
	p, _ := e.programs.LoadOrStore(src, prog)
	return p.(*program), nil
}

func bind(b rewrite.Bindings) py.StringDict {
	globals := py.NewStringDict()
	globals["rule"] = py.String(b.Rule)
	m := b.Match
	if m == nil {
		globals["match"] = py.Tuple{}
		globals["groups"] = py.NewStringDict()
		globals["text"] = py.String("")
		return globals
	}

	groups := make(py.Tuple, m.GroupCount()+1)
	for i := range groups {
		if m.Matched(i) {
			groups[i] = py.String(m.Group(i))
		} else {
			groups[i] = py.None
		}
	}
	named := py.NewStringDict()
	for _, name := range m.Names() {
		if v, ok := m.Named(name); ok {
			named[name] = py.String(v)
		} else {
			named[name] = py.None
		}
	}
	globals["match"] = groups
	globals["groups"] = named
	globals["text"] = py.String(m.Text)
	globals["start"] = py.Int(m.Start)
	globals["end"] = py.Int(m.End)
	return globals
}

// Close shuts the pool down and releases every interpreter context.
func (e *Evaluator) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	contexts := e.contexts
	e.contexts = nil
	e.mu.Unlock()

	e.pool.Close(context.Background())
	for _, c := range contexts {
		c.Close()
	}
	return nil
}
