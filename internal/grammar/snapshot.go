package grammar

import "fmt"

// SnapshotVersion changes whenever Snapshot's encoding changes.
const SnapshotVersion = 1

// Snapshot is the serializable form of a RuleSet.
type Snapshot struct {
	Version  int           `msgpack:"version"`
	Rewrites []RewriteRule `msgpack:"rewrites"`
	Rules    []Rule        `msgpack:"rules"`
	Compiled bool          `msgpack:"compiled"`
}

func (s *RuleSet) Snapshot() Snapshot {
	return Snapshot{
		Version:  SnapshotVersion,
		Rewrites: s.Rewrites(),
		Rules:    s.Rules(),
		Compiled: s.compiled,
	}
}

// FromSnapshot rebuilds a RuleSet. Compiled snapshots are trusted as is.
func FromSnapshot(snap Snapshot) (*RuleSet, error) {
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("rule set snapshot version %d, want %d", snap.Version, SnapshotVersion)
	}
	set := NewRuleSet()
	for _, rw := range snap.Rewrites {
		set.AddRewrite(rw)
	}
	for _, r := range snap.Rules {
		if err := set.AddRule(r); err != nil {
			return nil, err
		}
	}
	set.compiled = snap.Compiled
	return set, nil
}
