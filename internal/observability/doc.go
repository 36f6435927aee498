// Package observability provides logging and metrics support for the ticket
// exchange service.
//
// # Overview
//
// The observability package provides:
//
//   - Structured logging with zerolog
//   - Prometheus metrics for tickets, extraction, matching, vision, and the outbox
//   - Context helpers for propagating request data
//
// # Logging
//
// Create a logger from configuration:
//
//	cfg := observability.LoggingConfig{
//	    Level:     "info",
//	    Format:    "json",
//	    Output:    "stdout",
//	    AddSource: true,
//	}
//
//	logger := observability.NewLogger(cfg)
//	logger.Info().Str("ticket_id", ticketID).Msg("intake started")
//
// Add ticket context to logger:
//
//	logger = observability.WithTicketContext(logger, requestID, ticketID, sellerID)
//
// # Metrics
//
// Initialize and record metrics:
//
//	metrics := observability.NewMetrics("ticket_exchange")
//	metrics.RecordTicketSubmitted()
//	metrics.RecordDuplicateDetected("barcode")
//	metrics.RecordMatchAttempt(true, 0.92)
//
// # Context Helpers
//
// Store and retrieve request context:
//
//	ctx = observability.WithRequestID(ctx, requestID)
//	ctx = observability.WithSellerTicket(ctx, sellerID, ticketID)
//
//	reqID := observability.RequestIDFromContext(ctx)
//	sellerID, ticketID := observability.SellerTicketFromContext(ctx)
//
// # Standard Fields
//
// Common fields used across the service:
//
//   - request_id: Inbound HTTP request identifier
//   - ticket_id: Ticket identifier
//   - seller_id: Seller identifier
//   - concert_id: Concert identifier
//   - artist: Artist name as submitted
//   - match_type: Duplicate match type (barcode, event_details)
//   - workflow_id: Temporal workflow identifier
//
// # Thread Safety
//
// All components are safe for concurrent use from multiple goroutines.
package observability
