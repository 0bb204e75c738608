package rewrite

import "errors"

var (
	ErrUnknownTranslator   = errors.New("unknown translator")
	ErrDuplicateTranslator = errors.New("translator already registered")
	ErrScriptResultType    = errors.New("script result is not a string")
	ErrScriptEvaluation    = errors.New("script evaluation failed")
	ErrNoScriptEvaluator   = errors.New("no script evaluator configured")
	ErrRewriteLimit        = errors.New("rewrite limit exceeded")
	ErrTranslatorFailed    = errors.New("translator failed")
)
