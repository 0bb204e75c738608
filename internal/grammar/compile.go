package grammar

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gtrans/internal/diag"
	"gtrans/internal/source"
)

// maxPasses bounds re-scanning of one body; new placeholders can only appear
// when substituted text joins with its surroundings.
const maxPasses = 16

// Placeholder is one <name> occurrence inside a rule body.
type Placeholder struct {
	Name       string
	Start, End int // byte offsets of '<' and one past '>'
}

// Placeholders returns the <name> references in body, left to right. A '<'
// escaped with a backslash or opening a named group ("(?P<", "(?<") is not a
// placeholder.
func Placeholders(body string) []Placeholder {
	var out []Placeholder
	for i := 0; i < len(body); i++ {
		if body[i] != '<' || !startsPlaceholder(body, i) {
			continue
		}
		j := i + 1
		for j < len(body) && isNameByte(body[j]) {
			j++
		}
		if j == i+1 || j >= len(body) || body[j] != '>' {
			continue
		}
		out = append(out, Placeholder{Name: body[i+1 : j], Start: i, End: j + 1})
		i = j
	}
	return out
}

func startsPlaceholder(body string, i int) bool {
	if opensNamedGroup(body, i) {
		return false
	}
	return !escaped(body, i)
}

// opensNamedGroup reports whether the '<' at i follows an unescaped "(?" or
// "(?P". A '?' alone is a quantifier: in "-?<digits>" the '<' is a reference.
func opensNamedGroup(body string, i int) bool {
	open := -1
	switch {
	case i > 2 && body[i-3:i] == "(?P":
		open = i - 3
	case i > 1 && body[i-2:i] == "(?":
		open = i - 2
	}
	return open >= 0 && !escaped(body, open)
}

// escaped reports whether the byte at i is preceded by an odd number of
// backslashes.
func escaped(body string, i int) bool {
	slashes := 0
	for k := i - 1; k >= 0 && body[k] == '\\'; k-- {
		slashes++
	}
	return slashes%2 == 1
}

func isNameByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// Compile resolves placeholders in every rule body and checks that every
// matchable rule is a valid regular expression. On failure the set is left
// uncompiled and all independent errors are returned joined.
func (s *RuleSet) Compile() error {
	c := &compiler{
		set:      s,
		resolved: make(map[string]string),
		failed:   make(map[string]error),
	}
	rules := s.ruleRefs()

	var errs []error
	reported := make(map[error]bool)
	for _, r := range rules {
		if _, err := c.resolve(r, nil); err != nil && !reported[err] {
			reported[err] = true
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		s.compiled = false
		return errors.Join(errs...)
	}

	for _, r := range rules {
		if !r.Matchable() {
			continue
		}
		if _, err := regexp.Compile(c.resolved[r.Key]); err != nil {
			errs = append(errs, diag.Errorf(diag.CmpInvalidPattern, ErrInvalidPattern, nil, bodySpan(r),
				"rule %q: %v", r.Key, err))
		}
	}
	if len(errs) > 0 {
		s.compiled = false
		return errors.Join(errs...)
	}

	for _, r := range rules {
		r.Body = c.resolved[r.Key]
	}
	s.compiled = true
	return nil
}

// EnsureCompiled returns ErrNotCompiled when Compile has not succeeded since
// the last modification.
func (s *RuleSet) EnsureCompiled() error {
	if s.compiled {
		return nil
	}
	return diag.Errorf(diag.CmpNotCompiled, ErrNotCompiled, nil, source.Span{}, "rule set must be compiled before it is applied")
}

type compiler struct {
	set      *RuleSet
	resolved map[string]string
	failed   map[string]error
}

func (c *compiler) resolve(r *Rule, chain []*Rule) (string, error) {
	if body, ok := c.resolved[r.Key]; ok {
		return body, nil
	}
	if err, ok := c.failed[r.Key]; ok {
		return "", err
	}
	for i, prev := range chain {
		if prev.Key == r.Key {
			return "", c.fail(r, cycleError(chain[i:], r))
		}
	}
	chain = append(chain, r)

	body := r.Source
	for pass := 0; ; pass++ {
		refs := Placeholders(body)
		if len(refs) == 0 {
			break
		}
		if pass == maxPasses {
			return "", c.fail(r, diag.Errorf(diag.CmpCyclicReference, ErrCyclicReference, nil, bodySpan(r),
				"placeholders in rule %q do not settle after %d passes", r.Key, maxPasses))
		}
		var b strings.Builder
		last := 0
		for _, ph := range refs {
			ref, ok := c.set.lookup(ph.Name)
			if !ok {
				return "", c.fail(r, diag.Errorf(diag.CmpUndefinedReference, ErrUndefinedReference, nil, bodySpan(r),
					"rule %q references undefined rule %q", r.Key, ph.Name))
			}
			sub, err := c.resolve(ref, chain)
			if err != nil {
				return "", c.fail(r, err)
			}
			b.WriteString(body[last:ph.Start])
			b.WriteString(sub)
			last = ph.End
		}
		b.WriteString(body[last:])
		body = b.String()
	}

	c.resolved[r.Key] = body
	return body, nil
}

func (c *compiler) fail(r *Rule, err error) error {
	c.failed[r.Key] = err
	return err
}

func cycleError(cycle []*Rule, back *Rule) error {
	names := make([]string, 0, len(cycle)+1)
	for _, r := range cycle {
		names = append(names, r.Key)
	}
	names = append(names, back.Key)
	e := diag.Errorf(diag.CmpCyclicReference, ErrCyclicReference, nil, cycle[0].Span,
		"cyclic rule reference: %s", strings.Join(names, " -> "))
	for i, r := range cycle {
		next := back.Key
		if i+1 < len(cycle) {
			next = cycle[i+1].Key
		}
		if r.Span != (source.Span{}) {
			e.WithNote(r.Span, fmt.Sprintf("%q references %q", r.Key, next))
		}
	}
	return e
}

func bodySpan(r *Rule) source.Span {
	if r.BodySpan != (source.Span{}) {
		return r.BodySpan
	}
	return r.Span
}
