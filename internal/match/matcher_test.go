package match

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMatcher() *Matcher {
	return NewMatcher(NewAliasTable(nil), DefaultMatcherConfig())
}

func TestNamesMatch(t *testing.T) {
	ctx := context.Background()
	m := newTestMatcher()

	tests := []struct {
		name   string
		name1  string
		name2  string
		expect bool
	}{
		{"exact hebrew", "עומר אדם", "עומר אדם", true},
		{"exact after normalization", "  Omer Adam ", "omer adam", true},
		{"hebrew to english alias", "עומר אדם", "Omer Adam", true},
		{"english misspelling alias", "omer adom", "עומר אדם", true},
		{"ampersand variant alias", "Static & Ben El", "סטטיק ובן אל", true},
		{"close misspelling over threshold", "noa kirel", "noa kirell", true},
		{"different artists", "עומר אדם", "אייל גולן", false},
		{"unrelated english names", "omer adam", "eyal golan", false},
		{"empty against name", "", "rita", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, m.NamesMatch(ctx, tt.name1, tt.name2))
		})
	}
}

func TestNamesMatch_Commutative(t *testing.T) {
	ctx := context.Background()
	m := newTestMatcher()

	pairs := [][2]string{
		{"עומר אדם", "Omer Adam"},
		{"noa kirel", "noa kirell"},
		{"עומר אדם", "אייל גולן"},
	}

	for _, p := range pairs {
		assert.Equal(t,
			m.NamesMatch(ctx, p[0], p[1]),
			m.NamesMatch(ctx, p[1], p[0]),
			"pair %q %q", p[0], p[1])
	}
}

func TestCanonicalize(t *testing.T) {
	ctx := context.Background()
	m := newTestMatcher()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"hebrew alias", "עומר אדם", "omer adam"},
		{"english misspelling", "Omer Adom", "omer adam"},
		{"canonical key itself", "omer adam", "omer adam"},
		{"unknown name self-canonicalizes", "אמן לא מוכר", "אמן לא מוכר"},
		{"unknown name is normalized", "  Unknown  Artist ", "unknown artist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Canonicalize(ctx, tt.input))
		})
	}
}

func TestFindBestMatch(t *testing.T) {
	ctx := context.Background()
	m := newTestMatcher()

	candidates := []string{"עומר אדם", "אייל גולן", "נועה קירל"}

	t.Run("exact candidate", func(t *testing.T) {
		best, score := m.FindBestMatch(ctx, "עומר אדם", candidates)
		assert.Equal(t, "עומר אדם", best)
		assert.InDelta(t, 1.0, score, 1e-9)
	})

	t.Run("alias resolves across scripts", func(t *testing.T) {
		best, _ := m.FindBestMatch(ctx, "Omer Adam", candidates)
		assert.Equal(t, "עומר אדם", best)
	})

	t.Run("alias match survives zero similarity", func(t *testing.T) {
		// Transliteration pairs share no runes, so raw similarity is 0.
		// The candidate must still be returned; ("", 0) means no match.
		require.Zero(t, Similarity(Normalize("ריטה"), Normalize("Rita")))

		best, score := m.FindBestMatch(ctx, "ריטה", []string{"Rita"})
		assert.Equal(t, "Rita", best)
		assert.Zero(t, score)
	})

	t.Run("no match returns empty", func(t *testing.T) {
		best, score := m.FindBestMatch(ctx, "שרית חדד", candidates)
		assert.Empty(t, best)
		assert.Zero(t, score)
	})

	t.Run("empty candidate list", func(t *testing.T) {
		best, score := m.FindBestMatch(ctx, "עומר אדם", nil)
		assert.Empty(t, best)
		assert.Zero(t, score)
	})

	t.Run("prefers closer candidate", func(t *testing.T) {
		best, _ := m.FindBestMatch(ctx, "noa kirell", []string{"noa kirel", "noa kir"})
		assert.Equal(t, "noa kirel", best)
	})
}

func TestAddAlias_ImmediatelyVisible(t *testing.T) {
	ctx := context.Background()
	m := newTestMatcher()

	assert.False(t, m.NamesMatch(ctx, "ran danker", "רן דנקר"))

	m.AddAlias("ran danker", "רן דנקר")

	assert.True(t, m.NamesMatch(ctx, "ran danker", "רן דנקר"))
	assert.Equal(t, "ran danker", m.Canonicalize(ctx, "רן דנקר"))
}

func TestNewMatcher_InvalidThresholdsFallBackToDefaults(t *testing.T) {
	m := NewMatcher(NewAliasTable(nil), MatcherConfig{MatchThreshold: 0, SearchThreshold: 1.5})

	assert.InDelta(t, DefaultMatchThreshold, m.cfg.MatchThreshold, 1e-9)
	assert.InDelta(t, DefaultSearchThreshold, m.cfg.SearchThreshold, 1e-9)
}
