package grammar

import (
	"errors"
	"fmt"
	"slices"

	"gtrans/internal/diag"
	"gtrans/internal/source"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

var (
	ErrDuplicateRule      = errors.New("duplicate rule")
	ErrUndefinedReference = errors.New("undefined rule reference")
	ErrCyclicReference    = errors.New("cyclic rule reference")
	ErrInvalidPattern     = errors.New("invalid rule pattern")
	ErrNotCompiled        = errors.New("rule set not compiled")
)

// RuleSet aggregates rewrite pairs and rules from one or more documents.
// A compiled RuleSet is read-only and may be shared between rewrite runs.
type RuleSet struct {
	rewrites []RewriteRule
	rules    *linkedhashmap.Map // key -> *Rule, в порядке объявления
	compiled bool
}

func NewRuleSet() *RuleSet {
	return &RuleSet{rules: linkedhashmap.New()}
}

// AddRewrite appends a literal rewrite pair.
func (s *RuleSet) AddRewrite(r RewriteRule) {
	s.rewrites = append(s.rewrites, r)
	s.compiled = false
}

// AddRule appends a rule; redeclaring a key fails with ErrDuplicateRule.
func (s *RuleSet) AddRule(r Rule) error {
	if prev, ok := s.lookup(r.Key); ok {
		return duplicateRule(r, prev)
	}
	if r.Body == "" {
		r.Body = r.Source
	}
	s.rules.Put(r.Key, &r)
	s.compiled = false
	return nil
}

// Merge appends other's rewrites and rules. Key uniqueness is checked for
// every rule before anything is added, so a failed merge leaves s unchanged.
func (s *RuleSet) Merge(other *RuleSet) error {
	if other == nil {
		return nil
	}
	incoming := other.ruleRefs()
	var errs []error
	for _, r := range incoming {
		if prev, ok := s.lookup(r.Key); ok {
			errs = append(errs, duplicateRule(*r, prev))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	s.rewrites = append(s.rewrites, other.rewrites...)
	for _, r := range incoming {
		cp := *r
		s.rules.Put(cp.Key, &cp)
	}
	s.compiled = false
	return nil
}

// Merge combines several rule sets into a new one.
func Merge(sets ...*RuleSet) (*RuleSet, error) {
	out := NewRuleSet()
	for _, set := range sets {
		if err := out.Merge(set); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Rewrites returns the rewrite pairs in declaration order.
func (s *RuleSet) Rewrites() []RewriteRule {
	return slices.Clone(s.rewrites)
}

// Rules returns copies of the rules in declaration order.
func (s *RuleSet) Rules() []Rule {
	refs := s.ruleRefs()
	out := make([]Rule, len(refs))
	for i, r := range refs {
		out[i] = *r
	}
	return out
}

// Rule looks a rule up by key.
func (s *RuleSet) Rule(key string) (Rule, bool) {
	r, ok := s.lookup(key)
	if !ok {
		return Rule{}, false
	}
	return *r, true
}

func (s *RuleSet) Has(key string) bool {
	_, ok := s.rules.Get(key)
	return ok
}

// Len returns the number of rules.
func (s *RuleSet) Len() int {
	return s.rules.Size()
}

func (s *RuleSet) Compiled() bool {
	return s.compiled
}

// TranslatorNames returns the distinct translator names used by Translation
// rules, in first-use order.
func (s *RuleSet) TranslatorNames() []string {
	var names []string
	for _, r := range s.ruleRefs() {
		if r.Kind == Translation && !slices.Contains(names, r.Translator) {
			names = append(names, r.Translator)
		}
	}
	return names
}

func (s *RuleSet) lookup(key string) (*Rule, bool) {
	v, ok := s.rules.Get(key)
	if !ok {
		return nil, false
	}
	return v.(*Rule), true
}

func (s *RuleSet) ruleRefs() []*Rule {
	values := s.rules.Values()
	out := make([]*Rule, 0, len(values))
	for _, v := range values {
		out = append(out, v.(*Rule))
	}
	return out
}

func duplicateRule(r Rule, prev *Rule) error {
	e := diag.Errorf(diag.CmpDuplicateRule, ErrDuplicateRule, nil, r.Span, "rule %q is already declared", r.Key)
	if prev.Span != (source.Span{}) {
		e.WithNote(prev.Span, fmt.Sprintf("previous declaration of %q", prev.Key))
	}
	return e
}
