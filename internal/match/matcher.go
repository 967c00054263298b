// Package match finds the best candidate for a supply name across
// documents that share no identifier, tolerating naming variance via the
// equivalence table and fuzzy similarity.
package match

import (
	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/vgmedical/surgiverify/internal/normalize"
)

// FuzzyThreshold is the minimum token-sort similarity for a fuzzy match.
const FuzzyThreshold = 85

// Match is a found candidate with its confidence (0-100).
type Match struct {
	Name       string
	Confidence int
}

// Matcher resolves supply names against a set of candidates. It holds an
// immutable snapshot of the equivalence table taken at construction;
// callers needing a fresher table construct a new Matcher.
type Matcher struct {
	equivalences map[string][]string // normalized canonical -> normalized aliases
}

// New builds a matcher from a canonical-name -> aliases snapshot. All
// names are normalized on the way in so lookups are insensitive to the
// table's original spelling.
func New(snapshot map[string][]string) *Matcher {
	eq := make(map[string][]string, len(snapshot))
	for canonical, aliases := range snapshot {
		c := normalize.Supply(canonical)
		if c == "" {
			continue
		}
		list := make([]string, 0, len(aliases))
		for _, a := range aliases {
			if n := normalize.Supply(a); n != "" {
				list = append(list, n)
			}
		}
		eq[c] = list
	}
	return &Matcher{equivalences: eq}
}

// FindMatch returns the best candidate for target, trying in order:
// exact match after normalization (confidence 100), known-equivalence
// match (95), then fuzzy token-sort similarity (the score itself, only if
// at or above FuzzyThreshold). No match is not an error.
func (m *Matcher) FindMatch(target string, candidates []string) (Match, bool) {
	targetClean := normalize.Supply(target)

	for _, c := range candidates {
		if targetClean == normalize.Supply(c) {
			return Match{Name: c, Confidence: 100}, true
		}
	}

	for canonical, aliases := range m.equivalences {
		if targetClean != canonical && !containsName(aliases, targetClean) {
			continue
		}
		for _, c := range candidates {
			cc := normalize.Supply(c)
			if cc == canonical || containsName(aliases, cc) {
				return Match{Name: c, Confidence: 95}, true
			}
		}
	}

	best := Match{}
	for _, c := range candidates {
		score := fuzzy.TokenSortRatio(targetClean, normalize.Supply(c))
		if score > best.Confidence {
			best = Match{Name: c, Confidence: score}
		}
	}
	if best.Confidence >= FuzzyThreshold {
		return best, true
	}
	return Match{}, false
}

func containsName(list []string, name string) bool {
	for _, n := range list {
		if n == name {
			return true
		}
	}
	return false
}
