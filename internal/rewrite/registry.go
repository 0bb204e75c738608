package rewrite

import (
	"fmt"
	"slices"
	"sync"

	"gtrans/internal/diag"
	"gtrans/internal/source"
)

// Translator turns one match into replacement text.
type Translator interface {
	Translate(m *Match) (string, error)
}

// TranslatorFunc adapts a function to Translator.
type TranslatorFunc func(m *Match) (string, error)

func (f TranslatorFunc) Translate(m *Match) (string, error) { return f(m) }

// Registry maps translator names to translators. The host builds it before
// applying rules; it is safe for concurrent use.
type Registry struct {
	mu sync.RWMutex
	m  map[string]Translator
}

func NewRegistry() *Registry {
	return &Registry{m: make(map[string]Translator)}
}

// Register adds t under name. A name can be registered once.
func (r *Registry) Register(name string, t Translator) error {
	if t == nil {
		return fmt.Errorf("register translator %q: nil translator", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[name]; ok {
		return diag.Errorf(diag.AplDuplicateTranslator, ErrDuplicateTranslator, nil, source.Span{},
			"translator %q is already registered", name)
	}
	r.m[name] = t
	return nil
}

// Resolve returns the translator registered under name.
func (r *Registry) Resolve(name string) (Translator, error) {
	r.mu.RLock()
	t, ok := r.m[name]
	r.mu.RUnlock()
	if !ok {
		return nil, diag.Errorf(diag.AplUnknownTranslator, ErrUnknownTranslator, nil, source.Span{},
			"translator %q is not registered", name)
	}
	return t, nil
}

// Deregister removes name and reports whether it was present.
func (r *Registry) Deregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.m[name]
	delete(r.m, name)
	return ok
}

func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.m[name]
	return ok
}

// Names returns registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.m))
	for name := range r.m {
		out = append(out, name)
	}
	r.mu.RUnlock()
	slices.Sort(out)
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.m)
}
