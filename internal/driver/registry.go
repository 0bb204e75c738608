package driver

import (
	"fmt"
	"maps"
	"slices"

	"gtrans/internal/grammar"
	"gtrans/internal/rewrite"
	"gtrans/internal/translators"
)

// BuildRegistry registers the configured translators, then fills in
// built-ins for any translator name the rule set uses and the table lacks.
func BuildRegistry(specs map[string]translators.Spec, set *grammar.RuleSet) (*rewrite.Registry, error) {
	reg := rewrite.NewRegistry()
	for _, name := range slices.Sorted(maps.Keys(specs)) {
		t, err := translators.FromSpec(specs[name])
		if err != nil {
			return nil, fmt.Errorf("translator %q: %w", name, err)
		}
		if err := reg.Register(name, t); err != nil {
			return nil, err
		}
	}
	if set != nil {
		if _, err := translators.RegisterMissing(reg, set.TranslatorNames()); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
