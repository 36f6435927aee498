package observability

import (
	"context"
)

// Context keys for observability data.
type contextKey string

const (
	requestIDKey  contextKey = "request_id"
	sellerIDKey   contextKey = "seller_id"
	ticketIDKey   contextKey = "ticket_id"
	workflowIDKey contextKey = "workflow_id"
	runIDKey      contextKey = "workflow_run_id"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext retrieves the request ID from context.
// Returns empty string if not present.
func RequestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// WithSellerTicket adds seller and ticket IDs to the context.
func WithSellerTicket(ctx context.Context, sellerID, ticketID string) context.Context {
	ctx = context.WithValue(ctx, sellerIDKey, sellerID)
	ctx = context.WithValue(ctx, ticketIDKey, ticketID)
	return ctx
}

// SellerTicketFromContext retrieves seller and ticket IDs from context.
// Returns empty strings if not present.
func SellerTicketFromContext(ctx context.Context) (sellerID, ticketID string) {
	if v := ctx.Value(sellerIDKey); v != nil {
		if id, ok := v.(string); ok {
			sellerID = id
		}
	}
	if v := ctx.Value(ticketIDKey); v != nil {
		if id, ok := v.(string); ok {
			ticketID = id
		}
	}
	return sellerID, ticketID
}

// WithWorkflow adds workflow ID and run ID to the context.
func WithWorkflow(ctx context.Context, workflowID, runID string) context.Context {
	ctx = context.WithValue(ctx, workflowIDKey, workflowID)
	ctx = context.WithValue(ctx, runIDKey, runID)
	return ctx
}

// WorkflowFromContext retrieves workflow ID and run ID from context.
// Returns empty strings if not present.
func WorkflowFromContext(ctx context.Context) (workflowID, runID string) {
	if v := ctx.Value(workflowIDKey); v != nil {
		if id, ok := v.(string); ok {
			workflowID = id
		}
	}
	if v := ctx.Value(runIDKey); v != nil {
		if id, ok := v.(string); ok {
			runID = id
		}
	}
	return workflowID, runID
}

// IntakeContext contains all the context data for a ticket intake.
type IntakeContext struct {
	RequestID  string
	SellerID   string
	TicketID   string
	WorkflowID string
	RunID      string
}

// WithIntakeContext adds all intake context to the context.
func WithIntakeContext(ctx context.Context, ic IntakeContext) context.Context {
	if ic.RequestID != "" {
		ctx = WithRequestID(ctx, ic.RequestID)
	}
	if ic.SellerID != "" || ic.TicketID != "" {
		ctx = WithSellerTicket(ctx, ic.SellerID, ic.TicketID)
	}
	if ic.WorkflowID != "" || ic.RunID != "" {
		ctx = WithWorkflow(ctx, ic.WorkflowID, ic.RunID)
	}
	return ctx
}

// IntakeContextFromContext extracts all intake context from the context.
func IntakeContextFromContext(ctx context.Context) IntakeContext {
	sellerID, ticketID := SellerTicketFromContext(ctx)
	workflowID, runID := WorkflowFromContext(ctx)

	return IntakeContext{
		RequestID:  RequestIDFromContext(ctx),
		SellerID:   sellerID,
		TicketID:   ticketID,
		WorkflowID: workflowID,
		RunID:      runID,
	}
}
