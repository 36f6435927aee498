package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/tixhub/ticket-exchange-service/internal/domain"
	"github.com/tixhub/ticket-exchange-service/internal/match"
)

// Artist extraction confidence tuning.
const (
	artistContainedConfidence = 0.95
	artistOverlapThreshold    = 0.7
	artistOverlapBase         = 0.6
	artistOverlapScale        = 0.3
	artistPatternConfidence   = 0.4
)

// namePatterns recognize unlabeled two-word name shapes for artists not in
// the known list: Latin capitalized pairs and Hebrew word pairs.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b[A-Z][a-z]+ [A-Z][a-z]+\b`),
	regexp.MustCompile(`[\x{05d0}-\x{05ea}]{2,} [\x{05d0}-\x{05ea}]{2,}`),
}

// nonNameWords disqualify a pattern match from being an artist name: venue
// words, ticket boilerplate, and field labels that OCR tends to run together.
var nonNameWords = []string{
	"היכל", "אצטדיון", "פארק", "זאפה", "אמפי", "תאטרון", "תיאטרון", "קופה",
	"שורה", "מושב", "כיסא", "כרטיס", "מחיר", "שער", "יציע", "אולם", "כניסה",
	"hall", "stadium", "park", "arena", "live", "ticket", "price", "row",
	"seat", "gate", "section", "doors", "entry",
}

// ExtractArtists scans the text for artist-name candidates. Known artists are
// checked first by substring containment of the normalized full name, then by
// fractional word overlap; unlabeled two-word name shapes are added as
// low-confidence candidates for previously-unknown artists. Results are sorted
// by descending confidence.
func ExtractArtists(text string, knownArtists []string) []domain.FieldCandidate {
	normalizedText := match.Normalize(text)

	var candidates []domain.FieldCandidate
	seen := make(map[string]struct{})

	add := func(value string, confidence float64) {
		key := match.Normalize(value)
		if key == "" {
			return
		}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		candidates = append(candidates, domain.FieldCandidate{Value: value, Confidence: confidence})
	}

	for _, artist := range knownArtists {
		normalized := match.Normalize(artist)
		if normalized == "" {
			continue
		}

		if strings.Contains(normalizedText, normalized) {
			add(artist, artistContainedConfidence)
			continue
		}

		if fraction, ok := wordOverlap(normalizedText, normalized); ok && fraction >= artistOverlapThreshold {
			add(artist, artistOverlapBase+artistOverlapScale*fraction)
		}
	}

	for _, pattern := range namePatterns {
		for _, m := range pattern.FindAllString(text, -1) {
			if containsAny(strings.ToLower(m), nonNameWords) {
				continue
			}
			add(m, artistPatternConfidence)
		}
	}

	sortByConfidence(candidates)
	return candidates
}

// wordOverlap returns the fraction of name words (longer than 2 runes) found
// in the text. ok is false when the name has no countable words.
func wordOverlap(normalizedText, normalizedName string) (float64, bool) {
	words := strings.Fields(normalizedName)

	total := 0
	found := 0
	for _, w := range words {
		if utf8.RuneCountInString(w) <= 2 {
			continue
		}
		total++
		if strings.Contains(normalizedText, w) {
			found++
		}
	}

	if total == 0 {
		return 0, false
	}
	return float64(found) / float64(total), true
}
