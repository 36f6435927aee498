package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestIDContext(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, RequestIDFromContext(ctx))

	ctx = WithRequestID(ctx, "req-123")
	assert.Equal(t, "req-123", RequestIDFromContext(ctx))
}

func TestSellerTicketContext(t *testing.T) {
	ctx := context.Background()

	sellerID, ticketID := SellerTicketFromContext(ctx)
	assert.Empty(t, sellerID)
	assert.Empty(t, ticketID)

	ctx = WithSellerTicket(ctx, "seller-1", "tkt-1")
	sellerID, ticketID = SellerTicketFromContext(ctx)
	assert.Equal(t, "seller-1", sellerID)
	assert.Equal(t, "tkt-1", ticketID)
}

func TestWorkflowContext(t *testing.T) {
	ctx := context.Background()

	workflowID, runID := WorkflowFromContext(ctx)
	assert.Empty(t, workflowID)
	assert.Empty(t, runID)

	ctx = WithWorkflow(ctx, "wf-1", "run-1")
	workflowID, runID = WorkflowFromContext(ctx)
	assert.Equal(t, "wf-1", workflowID)
	assert.Equal(t, "run-1", runID)
}

func TestIntakeContextRoundTrip(t *testing.T) {
	ic := IntakeContext{
		RequestID:  "req-1",
		SellerID:   "seller-1",
		TicketID:   "tkt-1",
		WorkflowID: "wf-1",
		RunID:      "run-1",
	}

	ctx := WithIntakeContext(context.Background(), ic)
	got := IntakeContextFromContext(ctx)

	assert.Equal(t, ic, got)
}

func TestIntakeContextPartial(t *testing.T) {
	ic := IntakeContext{RequestID: "req-only"}

	ctx := WithIntakeContext(context.Background(), ic)
	got := IntakeContextFromContext(ctx)

	assert.Equal(t, "req-only", got.RequestID)
	assert.Empty(t, got.SellerID)
	assert.Empty(t, got.WorkflowID)
}
