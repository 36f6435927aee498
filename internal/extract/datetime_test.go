package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDateTime(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantDate string
		wantTime string
	}{
		{
			name:     "numeric date with time",
			text:     "ההופעה תתקיים ב-15.07.2026 בשעה 21:00",
			wantDate: "15.07.2026",
			wantTime: "21:00",
		},
		{
			name:     "slash separated date",
			text:     "תאריך 3/8/2026",
			wantDate: "03.08.2026",
		},
		{
			name:     "hebrew month name",
			text:     "15 ביולי 2026 פארק הירקון",
			wantDate: "15.07.2026",
		},
		{
			name:     "hebrew month without bet prefix",
			text:     "2 אוגוסט 2026",
			wantDate: "02.08.2026",
		},
		{
			name:     "time only",
			text:     "פתיחת שערים 19:30",
			wantTime: "19:30",
		},
		{
			name: "invalid day and month rejected",
			text: "45.13.2026",
		},
		{
			name: "invalid time rejected",
			text: "נפגשים ב25:99",
		},
		{
			name: "no date or time",
			text: "כרטיס כניסה להופעה",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExtractDateTime(tt.text)
			assert.Equal(t, tt.wantDate, result.Date)
			assert.Equal(t, tt.wantTime, result.Time)
		})
	}
}

func TestExtractDateTime_Confidence(t *testing.T) {
	both := ExtractDateTime("15.07.2026 בשעה 21:00")
	dateOnly := ExtractDateTime("15.07.2026")
	neither := ExtractDateTime("אין תאריך")

	assert.Greater(t, both.Confidence, dateOnly.Confidence)
	assert.Greater(t, dateOnly.Confidence, neither.Confidence)
	assert.Zero(t, neither.Confidence)
	assert.LessOrEqual(t, both.Confidence, 0.9)
}

func TestExtractDateTime_FirstMatchWins(t *testing.T) {
	result := ExtractDateTime("15.07.2026 או 16.07.2026 בשעה 20:00 או 21:00")

	assert.Equal(t, "15.07.2026", result.Date)
	assert.Equal(t, "20:00", result.Time)
}

func TestExtractSeating(t *testing.T) {
	result := ExtractSeating("שורה: 12 מושב: 7 אזור: B")

	assert.Equal(t, "12", result.Row)
	assert.Equal(t, "7", result.Seat)
	assert.Equal(t, "B", result.Section)
	assert.InDelta(t, 0.75, result.Confidence, 1e-9)
}

func TestExtractSeating_EnglishLabels(t *testing.T) {
	result := ExtractSeating("Row 14 Seat 22 Gate 3")

	assert.Equal(t, "14", result.Row)
	assert.Equal(t, "22", result.Seat)
	assert.Equal(t, "3", result.Section)
}

func TestExtractSeating_PartialFields(t *testing.T) {
	result := ExtractSeating("שורה 5 בהקצאה חופשית")

	assert.Equal(t, "5", result.Row)
	assert.Empty(t, result.Seat)
	assert.InDelta(t, 0.25, result.Confidence, 1e-9)
}

func TestExtractSeating_Empty(t *testing.T) {
	result := ExtractSeating("הופעה בהיכל התרבות")

	assert.Empty(t, result.Row)
	assert.Empty(t, result.Seat)
	assert.Empty(t, result.Section)
	assert.Zero(t, result.Confidence)
}
