package extract

import (
	"regexp"
	"strings"

	"github.com/tixhub/ticket-exchange-service/internal/domain"
	"github.com/tixhub/ticket-exchange-service/internal/match"
)

// Venue extraction confidence tuning.
const (
	venueContainedConfidence = 0.9
	venueOverlapThreshold    = 0.6
	venueOverlapBase         = 0.5
	venueOverlapScale        = 0.3
	venueIndicatorConfidence = 0.6
)

// venueIndicatorPatterns recognize well-known venues and venue-keyword phrases
// as fallback candidates when the known-venue list misses.
var venueIndicatorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`היכל (?:התרבות|מנורה|הפיס)(?: [\x{05d0}-\x{05ea}]+)?`),
	regexp.MustCompile(`פארק הירקון|לייב פארק|גני התערוכה|קיסריה|אמפי שוני`),
	regexp.MustCompile(`(?:אצטדיון|זאפה|אמפי|האנגר) [\x{05d0}-\x{05ea}]+`),
	regexp.MustCompile(`(?i)\b(?:[A-Z][a-z]+ )?(?:Stadium|Arena|Hall|Amphitheater)\b`),
}

// ExtractVenues scans the text for venue candidates, symmetric to the artist
// extractor but with its own thresholds, plus venue-indicator fallback
// patterns. Results are sorted by descending confidence.
func ExtractVenues(text string, knownVenues []string) []domain.FieldCandidate {
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

	for _, venue := range knownVenues {
		normalized := match.Normalize(venue)
		if normalized == "" {
			continue
		}

		if strings.Contains(normalizedText, normalized) {
			add(venue, venueContainedConfidence)
			continue
		}

		if fraction, ok := wordOverlap(normalizedText, normalized); ok && fraction >= venueOverlapThreshold {
			add(venue, venueOverlapBase+venueOverlapScale*fraction)
		}
	}

	for _, pattern := range venueIndicatorPatterns {
		for _, m := range pattern.FindAllString(text, -1) {
			add(m, venueIndicatorConfidence)
		}
	}

	sortByConfidence(candidates)
	return candidates
}
