package domain

// FieldCandidate is one extracted value for a logical ticket field together
// with a heuristic confidence in [0,1]. Confidence is not a probability; it is
// only meaningful for ranking candidates of the same field.
type FieldCandidate struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// ExtractedFields is the best-effort field-extraction record produced from a
// ticket photo's OCR text, optionally merged with a vision model's own
// structured guess. Absent fields are empty strings with zero confidence.
type ExtractedFields struct {
	Artist     string  `json:"artist,omitempty"`
	Venue      string  `json:"venue,omitempty"`
	Date       string  `json:"date,omitempty"`
	Time       string  `json:"time,omitempty"`
	Price      string  `json:"price,omitempty"`
	Currency   string  `json:"currency,omitempty"`
	SeatRow    string  `json:"row,omitempty"`
	Seat       string  `json:"seat,omitempty"`
	Section    string  `json:"section,omitempty"`
	Barcode    string  `json:"barcode,omitempty"`
	Confidence float64 `json:"confidence"`
}

// HasEventCore reports whether the extraction recovered enough to identify an
// event: an artist plus either a date or a venue.
func (f *ExtractedFields) HasEventCore() bool {
	if f == nil || f.Artist == "" {
		return false
	}
	return f.Date != "" || f.Venue != ""
}
