package match

import (
	"context"
)

// Default thresholds for fuzzy name matching.
const (
	// DefaultMatchThreshold is the similarity threshold for a pairwise match.
	DefaultMatchThreshold = 0.85

	// DefaultSearchThreshold is the similarity threshold when ranking a
	// candidate list, slightly looser than the pairwise threshold.
	DefaultSearchThreshold = 0.8
)

// MatcherConfig holds the similarity thresholds for the matcher.
type MatcherConfig struct {
	// MatchThreshold is used by NamesMatch. Must be in (0,1].
	MatchThreshold float64

	// SearchThreshold is used by FindBestMatch. Must be in (0,1].
	SearchThreshold float64
}

// DefaultMatcherConfig returns a MatcherConfig with the default thresholds.
func DefaultMatcherConfig() MatcherConfig {
	return MatcherConfig{
		MatchThreshold:  DefaultMatchThreshold,
		SearchThreshold: DefaultSearchThreshold,
	}
}

// Matcher decides whether two artist-name strings refer to the same performer,
// using exact equality, alias-table lookup and an edit-distance fallback, in
// that order. All operations are best-effort and never return an error:
// unmatched input yields false, an empty best match, or a self-canonicalized
// name rather than a failure.
type Matcher struct {
	aliases *AliasTable
	cfg     MatcherConfig
}

// NewMatcher creates a Matcher over the given alias table.
func NewMatcher(aliases *AliasTable, cfg MatcherConfig) *Matcher {
	if cfg.MatchThreshold <= 0 || cfg.MatchThreshold > 1 {
		cfg.MatchThreshold = DefaultMatchThreshold
	}
	if cfg.SearchThreshold <= 0 || cfg.SearchThreshold > 1 {
		cfg.SearchThreshold = DefaultSearchThreshold
	}
	return &Matcher{aliases: aliases, cfg: cfg}
}

// NamesMatch reports whether name1 and name2 refer to the same artist using
// the configured match threshold.
func (m *Matcher) NamesMatch(ctx context.Context, name1, name2 string) bool {
	return m.NamesMatchThreshold(ctx, name1, name2, m.cfg.MatchThreshold)
}

// NamesMatchThreshold reports whether name1 and name2 refer to the same
// artist. The decision order matters: alias equivalence is checked before
// similarity, so a transliteration pair that is textually distant still
// matches, while textually close but alias-unrelated names must clear the
// threshold.
func (m *Matcher) NamesMatchThreshold(ctx context.Context, name1, name2 string, threshold float64) bool {
	n1 := Normalize(name1)
	n2 := Normalize(name2)

	if n1 == n2 {
		return true
	}

	for _, set := range m.aliases.VariantSets(ctx) {
		_, has1 := set[n1]
		_, has2 := set[n2]
		if has1 && has2 {
			return true
		}
	}

	return Similarity(n1, n2) >= threshold
}

// Canonicalize resolves name to its canonical artist key. Names appearing in
// some variant list resolve to that entry's canonical key; unknown names
// canonicalize to their own normalized form and are treated as their own
// canonical singleton.
func (m *Matcher) Canonicalize(ctx context.Context, name string) string {
	normalized := Normalize(name)

	for canonical, set := range m.aliases.VariantSets(ctx) {
		if _, ok := set[normalized]; ok {
			return canonical
		}
	}

	return normalized
}

// FindBestMatch scans candidates for the best fuzzy match of searchName using
// the configured search threshold. It returns the best-scoring matching
// candidate and its similarity score, keeping the first-seen candidate on
// score ties. When no candidate matches it returns ("", 0).
func (m *Matcher) FindBestMatch(ctx context.Context, searchName string, candidates []string) (string, float64) {
	normalized := Normalize(searchName)

	best := ""
	bestScore := 0.0
	matched := false

	for _, candidate := range candidates {
		if !m.NamesMatchThreshold(ctx, searchName, candidate, m.cfg.SearchThreshold) {
			continue
		}
		// An alias-equivalent candidate can score 0 on raw similarity
		// (cross-script transliterations share no runes) and must still win
		// over "no match".
		score := Similarity(normalized, Normalize(candidate))
		if !matched || score > bestScore {
			best = candidate
			bestScore = score
			matched = true
		}
	}

	return best, bestScore
}

// AddAlias idempotently records alias as a variant of canonical in the
// in-memory alias table. Durability across restarts is the caller's concern.
func (m *Matcher) AddAlias(canonical, alias string) {
	m.aliases.Add(canonical, alias)
}
