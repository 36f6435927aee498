package extract

import (
	"regexp"
)

// Each recognized seating field contributes a fixed increment to the shared
// seating confidence.
const (
	seatingFieldConfidence = 0.25
	seatingMaxConfidence   = 0.9
)

// SeatingResult holds the recognized seating fields. Any subset may be empty.
type SeatingResult struct {
	Row        string
	Seat       string
	Section    string
	Confidence float64
}

// Seating labels are recognized in both Hebrew and English, with or without a
// separating colon.
var (
	rowPattern     = regexp.MustCompile(`(?i)(?:שורה|row)\s*:?\s*([A-Za-z0-9\x{05d0}-\x{05ea}]{1,4})`)
	seatPattern    = regexp.MustCompile(`(?i)(?:מושב|כיסא|כסא|seat)\s*:?\s*([A-Za-z0-9\x{05d0}-\x{05ea}]{1,4})`)
	sectionPattern = regexp.MustCompile(`(?i)(?:אזור|יציע|שער|section|gate|block)\s*:?\s*([A-Za-z0-9\x{05d0}-\x{05ea}]{1,5})`)
)

// ExtractSeating recognizes labeled row, seat and section fields.
func ExtractSeating(text string) SeatingResult {
	var result SeatingResult

	if m := rowPattern.FindStringSubmatch(text); m != nil {
		result.Row = m[1]
		result.Confidence += seatingFieldConfidence
	}
	if m := seatPattern.FindStringSubmatch(text); m != nil {
		result.Seat = m[1]
		result.Confidence += seatingFieldConfidence
	}
	if m := sectionPattern.FindStringSubmatch(text); m != nil {
		result.Section = m[1]
		result.Confidence += seatingFieldConfidence
	}

	if result.Confidence > seatingMaxConfidence {
		result.Confidence = seatingMaxConfidence
	}
	return result
}
