package rewrite

import "regexp"

// Match is one regular-expression match handed to a translator or script.
// Offsets are byte offsets into the text the rule was applied to.
type Match struct {
	Rule  string // key of the rule that matched
	Text  string // whole match, same as Group(0)
	Start int
	End   int

	re     *regexp.Regexp
	src    string
	loc    []int
	groups []string
}

func newMatch(rule string, re *regexp.Regexp, src string, loc []int) *Match {
	m := &Match{
		Rule:   rule,
		Text:   src[loc[0]:loc[1]],
		Start:  loc[0],
		End:    loc[1],
		re:     re,
		src:    src,
		loc:    loc,
		groups: make([]string, len(loc)/2),
	}
	for i := range m.groups {
		if loc[2*i] >= 0 {
			m.groups[i] = src[loc[2*i]:loc[2*i+1]]
		}
	}
	return m
}

// NewMatch builds the first match of re in text, for translator tests and
// callers outside the engine. It returns nil when re does not match.
func NewMatch(rule string, re *regexp.Regexp, text string) *Match {
	loc := re.FindStringSubmatchIndex(text)
	if loc == nil {
		return nil
	}
	return newMatch(rule, re, text, loc)
}

// GroupCount returns the number of capture groups, not counting group 0.
func (m *Match) GroupCount() int {
	return len(m.groups) - 1
}

// Group returns the text of group i, or "" when i is out of range or the
// group did not take part in the match.
func (m *Match) Group(i int) string {
	if i < 0 || i >= len(m.groups) {
		return ""
	}
	return m.groups[i]
}

// Matched reports whether group i took part in the match.
func (m *Match) Matched(i int) bool {
	if i < 0 || 2*i+1 >= len(m.loc) {
		return false
	}
	return m.loc[2*i] >= 0
}

// Named returns the text of the named group.
func (m *Match) Named(name string) (string, bool) {
	i := m.re.SubexpIndex(name)
	if i < 0 || !m.Matched(i) {
		return "", false
	}
	return m.groups[i], true
}

// Names returns the names of named groups; unnamed groups are skipped.
func (m *Match) Names() []string {
	var out []string
	for _, n := range m.re.SubexpNames() {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Groups returns a copy of all group texts, group 0 first.
func (m *Match) Groups() []string {
	return append([]string(nil), m.groups...)
}

// Expand substitutes $1, ${name} and friends in template, like
// regexp.Regexp.ExpandString.
func (m *Match) Expand(template string) string {
	return string(m.re.ExpandString(nil, template, m.src, m.loc))
}
