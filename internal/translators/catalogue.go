package translators

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"gtrans/internal/rewrite"
)

var (
	ErrUnknownBuiltin = errors.New("unknown built-in translator")
	ErrMissingGroup   = errors.New("match lacks a required group")
	ErrBadSpec        = errors.New("invalid translator spec")
)

var builtins = map[string]rewrite.Translator{
	"implicit-type":    rewrite.TranslatorFunc(ImplicitType),
	"lambda":           rewrite.TranslatorFunc(Lambda),
	"prototype-string": rewrite.TranslatorFunc(PrototypeString),
	"string-literal":   rewrite.TranslatorFunc(StringLiteral),
	"auto-property":    rewrite.TranslatorFunc(AutoProperty),
}

// Names lists the catalogue names in sorted order.
func Names() []string {
	out := make([]string, 0, len(builtins))
	for name := range builtins {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Lookup finds a built-in by any of its accepted spellings.
func Lookup(name string) (rewrite.Translator, bool) {
	key := canonical(name)
	for n, t := range builtins {
		if canonical(n) == key {
			return t, true
		}
	}
	return nil, false
}

func canonical(name string) string {
	s := strings.ToLower(name)
	s = strings.NewReplacer("-", "", "_", "").Replace(s)
	if trimmed := strings.TrimSuffix(s, "translator"); trimmed != "" {
		s = trimmed
	}
	return s
}

// Spec describes one configured translator. Exactly one field is set.
type Spec struct {
	Builtin  string
	Template string
	Literal  *string
}

// FromSpec builds the translator described by spec.
func FromSpec(spec Spec) (rewrite.Translator, error) {
	set := 0
	if spec.Builtin != "" {
		set++
	}
	if spec.Template != "" {
		set++
	}
	if spec.Literal != nil {
		set++
	}
	if set != 1 {
		return nil, fmt.Errorf("%w: exactly one of builtin, template or literal must be set", ErrBadSpec)
	}
	switch {
	case spec.Builtin != "":
		t, ok := Lookup(spec.Builtin)
		if !ok {
			return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownBuiltin, spec.Builtin, strings.Join(Names(), ", "))
		}
		return t, nil
	case spec.Template != "":
		return Template(spec.Template), nil
	default:
		return Literal(*spec.Literal), nil
	}
}

// RegisterMissing registers a built-in for every name in wanted that reg
// does not know yet and the catalogue does. It returns the names it added.
func RegisterMissing(reg *rewrite.Registry, wanted []string) ([]string, error) {
	var added []string
	for _, name := range wanted {
		if reg.Has(name) {
			continue
		}
		t, ok := Lookup(name)
		if !ok {
			continue
		}
		if err := reg.Register(name, t); err != nil {
			return added, err
		}
		added = append(added, name)
	}
	return added, nil
}

// Template expands $1, ${name} references against the match.
func Template(tmpl string) rewrite.Translator {
	return rewrite.TranslatorFunc(func(m *rewrite.Match) (string, error) {
		return m.Expand(tmpl), nil
	})
}

// Literal always returns s.
func Literal(s string) rewrite.Translator {
	return rewrite.TranslatorFunc(func(*rewrite.Match) (string, error) {
		return s, nil
	})
}

// groups returns groups 1..n or ErrMissingGroup when one did not match.
func groups(m *rewrite.Match, n int) ([]string, error) {
	out := make([]string, n+1)
	for i := 1; i <= n; i++ {
		if !m.Matched(i) {
			return nil, fmt.Errorf("%w: rule %q needs group %d", ErrMissingGroup, m.Rule, i)
		}
		out[i] = m.Group(i)
	}
	out[0] = m.Text
	return out, nil
}
