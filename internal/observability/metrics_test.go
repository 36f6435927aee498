package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Note: prometheus/promauto registers metrics globally, so we need to use
// unique namespaces per test to avoid registration conflicts.

func TestNewMetrics(t *testing.T) {
	m := NewMetrics("test_ticket_exchange_new")

	assert.NotNil(t, m.TicketsSubmitted)
	assert.NotNil(t, m.TicketsApproved)
	assert.NotNil(t, m.TicketsRejected)
	assert.NotNil(t, m.TicketsSold)
	assert.NotNil(t, m.DuplicatesDetected)
	assert.NotNil(t, m.ExtractionsStarted)
	assert.NotNil(t, m.ExtractionConfidence)
	assert.NotNil(t, m.MatchAttempts)
	assert.NotNil(t, m.MatchOutcomes)
	assert.NotNil(t, m.MatchScores)
	assert.NotNil(t, m.VisionRequestsTotal)
	assert.NotNil(t, m.OutboxEventsPublished)
}

func TestRecordTicketSubmitted(t *testing.T) {
	m := NewMetrics("test_ticket_submitted")

	initial := testutil.ToFloat64(m.TicketsSubmitted)
	m.RecordTicketSubmitted()
	assert.Equal(t, initial+1, testutil.ToFloat64(m.TicketsSubmitted))
}

func TestRecordTicketLifecycle(t *testing.T) {
	m := NewMetrics("test_ticket_lifecycle")

	m.RecordTicketApproved()
	m.RecordTicketRejected()
	m.RecordTicketSold()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.TicketsApproved))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.TicketsRejected))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.TicketsSold))
}

func TestRecordDuplicateDetected(t *testing.T) {
	m := NewMetrics("test_duplicate_detected")

	m.RecordDuplicateDetected("barcode")
	m.RecordDuplicateDetected("event_details")
	m.RecordDuplicateDetected("barcode")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.DuplicatesDetected.WithLabelValues("barcode")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.DuplicatesDetected.WithLabelValues("event_details")))
}

func TestRecordExtractionCompleted(t *testing.T) {
	m := NewMetrics("test_extraction_completed")

	m.RecordExtractionStarted()
	m.RecordExtractionCompleted(0.85, []string{"artist", "price"})

	assert.Equal(t, float64(1), testutil.ToFloat64(m.ExtractionsStarted))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ExtractionFieldPresence.WithLabelValues("artist")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ExtractionFieldPresence.WithLabelValues("price")))

	histCount, err := getHistogramSampleCount(m.ExtractionConfidence)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), histCount)
}

func TestRecordExtractionFailed(t *testing.T) {
	m := NewMetrics("test_extraction_failed")

	initial := testutil.ToFloat64(m.ExtractionsFailed)
	m.RecordExtractionFailed()
	assert.Equal(t, initial+1, testutil.ToFloat64(m.ExtractionsFailed))
}

func TestRecordMatchAttempt(t *testing.T) {
	m := NewMetrics("test_match_attempt")

	m.RecordMatchAttempt(true, 0.92)
	m.RecordMatchAttempt(false, 0.4)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.MatchAttempts))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.MatchOutcomes.WithLabelValues("matched")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.MatchOutcomes.WithLabelValues("unmatched")))

	histCount, err := getHistogramSampleCount(m.MatchScores)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), histCount)
}

func TestRecordAliasAdded(t *testing.T) {
	m := NewMetrics("test_alias_added")

	initial := testutil.ToFloat64(m.AliasesAdded)
	m.RecordAliasAdded()
	assert.Equal(t, initial+1, testutil.ToFloat64(m.AliasesAdded))
}

func TestRecordVisionRequest(t *testing.T) {
	m := NewMetrics("test_vision_request")

	m.RecordVisionRequest("gpt-4o", 1.2)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.VisionRequestsTotal.WithLabelValues("gpt-4o")))
}

func TestRecordVisionRequestFailed(t *testing.T) {
	m := NewMetrics("test_vision_request_failed")

	m.RecordVisionRequestFailed("gpt-4o", "timeout")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.VisionRequestsFailed.WithLabelValues("gpt-4o", "timeout")))
}

func TestRecordOutbox(t *testing.T) {
	m := NewMetrics("test_outbox")

	m.RecordOutboxPublished(3)
	m.RecordOutboxFailed()
	m.RecordOutboxDeadLettered()
	m.RecordOutboxBatch(0.2)

	assert.Equal(t, float64(3), testutil.ToFloat64(m.OutboxEventsPublished))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.OutboxEventsFailed))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.OutboxEventsDeadLettered))

	histCount, err := getHistogramSampleCount(m.OutboxBatchDuration)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), histCount)
}

// Helper to get histogram sample count
func getHistogramSampleCount(h prometheus.Histogram) (uint64, error) {
	ch := make(chan prometheus.Metric, 1)
	h.Collect(ch)
	close(ch)

	var m prometheus.Metric
	for m = range ch {
		break
	}

	var dto = &dto.Metric{}
	if err := m.Write(dto); err != nil {
		return 0, err
	}

	return dto.Histogram.GetSampleCount(), nil
}
