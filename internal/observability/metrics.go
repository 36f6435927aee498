package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the ticket exchange service.
// Metrics are organized by subsystem: tickets, extraction, matching, vision,
// and outbox. All counters and histograms are registered via promauto for
// automatic registration with the default Prometheus registry.
type Metrics struct {
	// TicketsSubmitted counts the total number of ticket submissions received.
	TicketsSubmitted prometheus.Counter

	// TicketsApproved counts the total number of tickets approved for listing.
	TicketsApproved prometheus.Counter

	// TicketsRejected counts the total number of tickets rejected.
	TicketsRejected prometheus.Counter

	// TicketsSold counts the total number of tickets marked as sold.
	TicketsSold prometheus.Counter

	// DuplicatesDetected counts duplicate submissions, labeled by match type
	// ("barcode", "event_details").
	DuplicatesDetected *prometheus.CounterVec

	// ExtractionsStarted counts extraction runs initiated.
	ExtractionsStarted prometheus.Counter

	// ExtractionsFailed counts extraction runs that ended in failure.
	ExtractionsFailed prometheus.Counter

	// ExtractionConfidence observes the overall confidence of extraction results.
	ExtractionConfidence prometheus.Histogram

	// ExtractionFieldPresence counts extracted fields with a usable value,
	// labeled by field name.
	ExtractionFieldPresence *prometheus.CounterVec

	// MatchAttempts counts concert match attempts.
	MatchAttempts prometheus.Counter

	// MatchOutcomes counts match attempts by outcome ("matched", "unmatched").
	MatchOutcomes *prometheus.CounterVec

	// MatchScores observes the best similarity score per match attempt.
	MatchScores prometheus.Histogram

	// AliasesAdded counts admin-supplied artist aliases.
	AliasesAdded prometheus.Counter

	// VisionRequestsTotal counts vision API requests, labeled by model.
	VisionRequestsTotal *prometheus.CounterVec

	// VisionRequestsFailed counts failed vision API requests, labeled by model and error type.
	VisionRequestsFailed *prometheus.CounterVec

	// VisionRequestDuration observes vision API request duration in seconds, labeled by model.
	VisionRequestDuration *prometheus.HistogramVec

	// OutboxEventsPublished counts outbox events successfully published to Kafka.
	OutboxEventsPublished prometheus.Counter

	// OutboxEventsFailed counts outbox publish attempts that failed.
	OutboxEventsFailed prometheus.Counter

	// OutboxEventsDeadLettered counts outbox events abandoned after exhausting retries.
	OutboxEventsDeadLettered prometheus.Counter

	// OutboxBatchDuration observes the duration of outbox processing batches in seconds.
	OutboxBatchDuration prometheus.Histogram
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The namespace is used as a prefix for all metric names.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		// Tickets
		TicketsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_submitted_total",
			Help:      "Total number of ticket submissions received",
		}),
		TicketsApproved: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_approved_total",
			Help:      "Total number of tickets approved for listing",
		}),
		TicketsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_rejected_total",
			Help:      "Total number of tickets rejected",
		}),
		TicketsSold: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_sold_total",
			Help:      "Total number of tickets marked as sold",
		}),
		DuplicatesDetected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicates_detected_total",
			Help:      "Total number of duplicate submissions by match type",
		}, []string{"match_type"}),

		// Extraction
		ExtractionsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_started_total",
			Help:      "Total number of ticket extraction runs started",
		}),
		ExtractionsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_failed_total",
			Help:      "Total number of ticket extraction runs that failed",
		}),
		ExtractionConfidence: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_confidence",
			Help:      "Overall confidence of extraction results",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 1},
		}),
		ExtractionFieldPresence: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_field_presence_total",
			Help:      "Total number of extracted fields with a usable value by field",
		}, []string{"field"}),

		// Matching
		MatchAttempts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_attempts_total",
			Help:      "Total number of concert match attempts",
		}),
		MatchOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_outcomes_total",
			Help:      "Total number of concert match attempts by outcome",
		}, []string{"outcome"}),
		MatchScores: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_best_score",
			Help:      "Best similarity score per concert match attempt",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.85, 0.9, 0.95, 1},
		}),
		AliasesAdded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aliases_added_total",
			Help:      "Total number of artist aliases added via the admin API",
		}),

		// Vision
		VisionRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vision_requests_total",
			Help:      "Total number of vision API requests by model",
		}, []string{"model"}),
		VisionRequestsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vision_requests_failed_total",
			Help:      "Total number of failed vision API requests by model",
		}, []string{"model", "error_type"}),
		VisionRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "vision_request_duration_seconds",
			Help:      "Duration of vision API requests in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"model"}),

		// Outbox
		OutboxEventsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_published_total",
			Help:      "Total number of outbox events published to Kafka",
		}),
		OutboxEventsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_failed_total",
			Help:      "Total number of failed outbox publish attempts",
		}),
		OutboxEventsDeadLettered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_dead_lettered_total",
			Help:      "Total number of outbox events abandoned after exhausting retries",
		}),
		OutboxBatchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "outbox_batch_duration_seconds",
			Help:      "Duration of outbox processing batches in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// RecordTicketSubmitted records a ticket submission.
func (m *Metrics) RecordTicketSubmitted() {
	m.TicketsSubmitted.Inc()
}

// RecordTicketApproved records a ticket approval.
func (m *Metrics) RecordTicketApproved() {
	m.TicketsApproved.Inc()
}

// RecordTicketRejected records a ticket rejection.
func (m *Metrics) RecordTicketRejected() {
	m.TicketsRejected.Inc()
}

// RecordTicketSold records a ticket sale.
func (m *Metrics) RecordTicketSold() {
	m.TicketsSold.Inc()
}

// RecordDuplicateDetected records a duplicate submission by match type.
func (m *Metrics) RecordDuplicateDetected(matchType string) {
	m.DuplicatesDetected.WithLabelValues(matchType).Inc()
}

// RecordExtractionStarted records that an extraction run has started.
func (m *Metrics) RecordExtractionStarted() {
	m.ExtractionsStarted.Inc()
}

// RecordExtractionCompleted records a completed extraction with its overall
// confidence and the names of fields that produced a value.
func (m *Metrics) RecordExtractionCompleted(confidence float64, presentFields []string) {
	m.ExtractionConfidence.Observe(confidence)
	for _, field := range presentFields {
		m.ExtractionFieldPresence.WithLabelValues(field).Inc()
	}
}

// RecordExtractionFailed records that an extraction run has failed.
func (m *Metrics) RecordExtractionFailed() {
	m.ExtractionsFailed.Inc()
}

// RecordMatchAttempt records a concert match attempt and its best score.
func (m *Metrics) RecordMatchAttempt(matched bool, bestScore float64) {
	m.MatchAttempts.Inc()
	if matched {
		m.MatchOutcomes.WithLabelValues("matched").Inc()
	} else {
		m.MatchOutcomes.WithLabelValues("unmatched").Inc()
	}
	m.MatchScores.Observe(bestScore)
}

// RecordAliasAdded records an artist alias added via the admin API.
func (m *Metrics) RecordAliasAdded() {
	m.AliasesAdded.Inc()
}

// RecordVisionRequest records a vision API request.
func (m *Metrics) RecordVisionRequest(model string, durationSeconds float64) {
	m.VisionRequestsTotal.WithLabelValues(model).Inc()
	m.VisionRequestDuration.WithLabelValues(model).Observe(durationSeconds)
}

// RecordVisionRequestFailed records a failed vision API request.
func (m *Metrics) RecordVisionRequestFailed(model, errorType string) {
	m.VisionRequestsFailed.WithLabelValues(model, errorType).Inc()
}

// RecordOutboxPublished records successfully published outbox events.
func (m *Metrics) RecordOutboxPublished(count int) {
	m.OutboxEventsPublished.Add(float64(count))
}

// RecordOutboxFailed records a failed outbox publish attempt.
func (m *Metrics) RecordOutboxFailed() {
	m.OutboxEventsFailed.Inc()
}

// RecordOutboxDeadLettered records an outbox event abandoned after retries.
func (m *Metrics) RecordOutboxDeadLettered() {
	m.OutboxEventsDeadLettered.Inc()
}

// RecordOutboxBatch records the duration of an outbox processing batch.
func (m *Metrics) RecordOutboxBatch(durationSeconds float64) {
	m.OutboxBatchDuration.Observe(durationSeconds)
}
