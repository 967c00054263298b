// Package equivalence manages the supply-name knowledge base: manual and
// learned canonical-name -> aliases entries, plus similarity-based
// suggestions for a human reviewer. It specifies merge semantics only;
// callers needing strict consistency against concurrent writers for the
// same canonical name must serialize around the store themselves.
package equivalence

import (
	"context"
	"errors"
	"fmt"
	"sort"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/vgmedical/surgiverify/internal/normalize"
	"github.com/vgmedical/surgiverify/internal/record"
)

// SuggestionThreshold is the minimum similarity for grouping names into a
// suggested equivalence.
const SuggestionThreshold = 80

// Store is the slice of the storage contract the manager needs.
type Store interface {
	// LoadEquivalenceEntry returns nil without error when no entry exists.
	LoadEquivalenceEntry(ctx context.Context, canonicalName string) (*record.EquivalenceEntry, error)
	SaveEquivalenceEntry(ctx context.Context, entry *record.EquivalenceEntry) error
}

// Manager applies the knowledge-base merge rules on top of a Store.
type Manager struct {
	store Store
}

func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Add creates or merges an equivalence entry. All names are normalized.
// New entries get confidence 0.8 when auto-generated, 1.0 otherwise.
// Merging de-duplicates aliases case-insensitively, and a previously
// unvalidated entry becomes validated (confidence 1.0) when a submitter is
// provided. Repeated identical calls are idempotent.
func (m *Manager) Add(ctx context.Context, canonicalName string, aliases []string, submitter string, isAuto bool) (*record.EquivalenceEntry, error) {
	canonical := normalize.Supply(canonicalName)
	if canonical == "" {
		return nil, errors.New("canonical name is empty")
	}

	entry, err := m.store.LoadEquivalenceEntry(ctx, canonical)
	if err != nil {
		return nil, fmt.Errorf("load equivalence %q: %w", canonical, err)
	}

	if entry == nil {
		confidence := 1.0
		if isAuto {
			confidence = 0.8
		}
		entry = &record.EquivalenceEntry{
			CanonicalName:   canonical,
			ConfidenceScore: confidence,
			IsAutoGenerated: isAuto,
			ValidatedBy:     submitter,
		}
	} else if submitter != "" && entry.ValidatedBy == "" {
		entry.ValidatedBy = submitter
		entry.ConfidenceScore = 1.0
	}

	for _, alias := range aliases {
		if n := normalize.Supply(alias); n != "" {
			entry.AddAlias(n)
		}
	}

	if err := m.store.SaveEquivalenceEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("save equivalence %q: %w", canonical, err)
	}
	return entry, nil
}

// Suggestion proposes that a group of observed names refer to the same
// supply. Suggestions are for a human reviewer and are never auto-applied.
type Suggestion struct {
	CanonicalCandidate string   `json:"canonical_candidate"`
	SimilarNames       []string `json:"similar_names"`
	Confidence         float64  `json:"confidence"`
}

// Suggest groups names whose normalized similarity reaches
// SuggestionThreshold. Confidence is the mean pairwise similarity (0-1)
// across the group.
func Suggest(names []string) []Suggestion {
	var suggestions []Suggestion
	for _, name := range names {
		group := similarNames(name, names)
		if len(group) <= 1 {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			CanonicalCandidate: name,
			SimilarNames:       group,
			Confidence:         groupConfidence(group),
		})
	}
	return suggestions
}

// Suggest mirrors the package-level Suggest for callers holding a Manager.
func (m *Manager) Suggest(names []string) []Suggestion {
	return Suggest(names)
}

// similarNames returns target followed by the other names in the set that
// clear the threshold, most similar first.
func similarNames(target string, all []string) []string {
	targetClean := normalize.Supply(target)

	type scored struct {
		name  string
		score int
	}
	var similar []scored
	for _, name := range all {
		if name == target {
			continue
		}
		score := fuzzy.TokenSortRatio(targetClean, normalize.Supply(name))
		if score >= SuggestionThreshold {
			similar = append(similar, scored{name: name, score: score})
		}
	}
	sort.SliceStable(similar, func(i, j int) bool { return similar[i].score > similar[j].score })

	group := []string{target}
	for _, s := range similar {
		group = append(group, s.name)
	}
	return group
}

func groupConfidence(group []string) float64 {
	if len(group) < 2 {
		return 0
	}
	total, comparisons := 0, 0
	for i := 0; i < len(group); i++ {
		for j := i + 1; j < len(group); j++ {
			total += fuzzy.TokenSortRatio(normalize.Supply(group[i]), normalize.Supply(group[j]))
			comparisons++
		}
	}
	if comparisons == 0 {
		return 0
	}
	return float64(total) / float64(comparisons) / 100.0
}
