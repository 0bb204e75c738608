package rewrite

import "context"

// Bindings are the variables a script sees.
type Bindings struct {
	Match *Match
	Rule  string
}

// ScriptEvaluator runs a rule's script for one match. A successful result
// must be a Go string; anything else fails the rewrite with ErrScriptResultType.
type ScriptEvaluator interface {
	Evaluate(ctx context.Context, script string, b Bindings) (any, error)
}

// EvaluatorFunc adapts a function to ScriptEvaluator.
type EvaluatorFunc func(ctx context.Context, script string, b Bindings) (any, error)

func (f EvaluatorFunc) Evaluate(ctx context.Context, script string, b Bindings) (any, error) {
	return f(ctx, script, b)
}
