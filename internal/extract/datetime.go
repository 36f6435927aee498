package extract

import (
	"fmt"
	"regexp"
	"strconv"
)

// Date/time extraction confidence increments. The two date forms and the time
// form contribute to one shared running score, capped below certainty because
// OCR digit confusion (0/8, 1/7) is common on ticket stock.
const (
	numericDateConfidence = 0.3
	namedDateConfidence   = 0.4
	timeConfidence        = 0.3
	dateTimeMaxConfidence = 0.9
)

// DateTimeResult holds the first recognized date and time with a shared
// confidence score. Either field may be empty.
type DateTimeResult struct {
	Date       string // DD.MM.YYYY
	Time       string // HH:MM
	Confidence float64
}

var (
	numericDatePattern = regexp.MustCompile(`\b(\d{1,2})[./](\d{1,2})[./](\d{4})\b`)
	namedDatePattern   = regexp.MustCompile(`\b(\d{1,2})\s+ב?(ינואר|פברואר|מרץ|אפריל|מאי|יוני|יולי|אוגוסט|ספטמבר|אוקטובר|נובמבר|דצמבר)\s+(\d{4})`)
	timePattern        = regexp.MustCompile(`(?:(?:בשעה|שעה|time)\s*:?\s*)?\b(\d{1,2}):(\d{2})\b`)
)

// hebrewMonths maps Hebrew month names to month numbers.
var hebrewMonths = map[string]int{
	"ינואר":   1,
	"פברואר":  2,
	"מרץ":     3,
	"אפריל":   4,
	"מאי":     5,
	"יוני":    6,
	"יולי":    7,
	"אוגוסט":  8,
	"ספטמבר":  9,
	"אוקטובר": 10,
	"נובמבר":  11,
	"דצמבר":   12,
}

// ExtractDateTime recognizes event date and time in the text. For each
// category only the first matching pattern is taken (first-match-wins, not
// best-match); each recognized form contributes a fixed increment to the
// shared confidence, capped at 0.9.
func ExtractDateTime(text string) DateTimeResult {
	var result DateTimeResult

	if m := numericDatePattern.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if day >= 1 && day <= 31 && month >= 1 && month <= 12 {
			result.Date = fmt.Sprintf("%02d.%02d.%s", day, month, m[3])
			result.Confidence += numericDateConfidence
		}
	}

	if result.Date == "" {
		if m := namedDatePattern.FindStringSubmatch(text); m != nil {
			day, _ := strconv.Atoi(m[1])
			month := hebrewMonths[m[2]]
			if day >= 1 && day <= 31 && month != 0 {
				result.Date = fmt.Sprintf("%02d.%02d.%s", day, month, m[3])
				result.Confidence += namedDateConfidence
			}
		}
	}

	for _, m := range timePattern.FindAllStringSubmatch(text, -1) {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour > 23 || minute > 59 {
			continue
		}
		result.Time = fmt.Sprintf("%02d:%02d", hour, minute)
		result.Confidence += timeConfidence
		break
	}

	if result.Confidence > dateTimeMaxConfidence {
		result.Confidence = dateTimeMaxConfidence
	}
	return result
}
