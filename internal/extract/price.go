package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tixhub/ticket-exchange-service/internal/domain"
)

// Price sanity window in local currency units. OCR misreads outside this
// window (a seat number read as a price, a barcode fragment) are dropped.
const (
	minPlausiblePrice = 10
	maxPlausiblePrice = 5000
)

// Price extraction confidence tuning.
const (
	priceBaseConfidence = 0.7
	priceLabelBonus     = 0.2
	priceContextBonus   = 0.05
	priceMaxConfidence  = 0.95
)

const amount = `(\d{1,4}(?:\.\d{1,2})?)`

// pricePatterns are tried in priority order; only the first pattern gets the
// label bonus.
var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:מחיר|price)\s*:?\s*` + amount),
	regexp.MustCompile(amount + `\s*(?:₪|ש"ח|שח|nis|ils)`),
	regexp.MustCompile(`(?i)(?:₪|nis|ils)\s*` + amount),
	regexp.MustCompile(`(?i)(?:סה"כ|סהכ|total)\s*:?\s*` + amount),
}

var (
	priceContextWords  = []string{"מחיר", "price", "סה\"כ", "סהכ", "total", "לתשלום"}
	ticketContextWords = []string{"כרטיס", "ticket", "כניסה", "admission"}
	currencyMarks      = []string{"₪", "ש\"ח", "שח", "nis", "ils"}
)

// ExtractPrices scans the text for price candidates and returns them sorted
// by descending confidence, along with the detected currency ("ILS" when a
// shekel mark is present, empty otherwise).
func ExtractPrices(text string) ([]domain.FieldCandidate, string) {
	lower := strings.ToLower(text)

	currency := ""
	if containsAny(lower, currencyMarks) {
		currency = "ILS"
	}

	var candidates []domain.FieldCandidate
	seen := make(map[string]struct{})

	for i, pattern := range pricePatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			raw := m[1]
			value, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}
			if value <= minPlausiblePrice || value >= maxPlausiblePrice {
				continue
			}
			if _, dup := seen[raw]; dup {
				continue
			}
			seen[raw] = struct{}{}

			confidence := priceBaseConfidence
			if i == 0 {
				confidence += priceLabelBonus
			}
			if containsAny(lower, priceContextWords) {
				confidence += priceContextBonus
			}
			if containsAny(lower, ticketContextWords) {
				confidence += priceContextBonus
			}
			if currency != "" {
				confidence += priceContextBonus
			}
			if confidence > priceMaxConfidence {
				confidence = priceMaxConfidence
			}

			candidates = append(candidates, domain.FieldCandidate{
				Value:      raw,
				Confidence: confidence,
			})
		}
	}

	sortByConfidence(candidates)
	return candidates, currency
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
