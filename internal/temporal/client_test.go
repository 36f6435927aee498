package temporal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/api/serviceerror"
)

func TestTemporalError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *TemporalError
		want string
	}{
		{
			name: "operation and kind only",
			err:  &TemporalError{Op: "Health", Kind: ErrConnectionFailed},
			want: "Health: connection failed",
		},
		{
			name: "with workflow id",
			err:  &TemporalError{Op: "SignalWorkflow", Kind: ErrWorkflowNotFound, WorkflowID: "ticket-intake-1"},
			want: "SignalWorkflow: workflow not found [workflowID=ticket-intake-1]",
		},
		{
			name: "with run id and cause",
			err: &TemporalError{
				Op:         "QueryWorkflow",
				Kind:       ErrQueryFailed,
				WorkflowID: "ticket-intake-1",
				RunID:      "run-1",
				Err:        errors.New("boom"),
			},
			want: "QueryWorkflow: query failed [workflowID=ticket-intake-1, runID=run-1]: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestWrapTemporalError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"not found", serviceerror.NewNotFound("gone"), ErrWorkflowNotFound},
		{"already started", serviceerror.NewWorkflowExecutionAlreadyStarted("running", "", ""), ErrWorkflowAlreadyStarted},
		{"invalid argument", serviceerror.NewInvalidArgument("bad"), ErrInvalidArgument},
		{"unavailable", serviceerror.NewUnavailable("down"), ErrConnectionFailed},
		{"context deadline", context.DeadlineExceeded, ErrDeadlineExceeded},
		{"unknown error", errors.New("???"), ErrConnectionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := wrapTemporalError("Op", tt.err, "wf-1", "")
			assert.True(t, errors.Is(wrapped, tt.kind), "expected kind %v, got %v", tt.kind, wrapped)
		})
	}

	t.Run("nil error passes through", func(t *testing.T) {
		assert.NoError(t, wrapTemporalError("Op", nil, "", ""))
	})
}

func TestIntakeWorkflowClient_StartRequiresTicketID(t *testing.T) {
	c := NewIntakeWorkflowClient(nil, "ticket-intake")

	_, _, err := c.StartIntakeWorkflow(context.Background(), nil, IntakeWorkflowInput{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestIsHelpers(t *testing.T) {
	assert.True(t, IsWorkflowNotFound(&TemporalError{Op: "x", Kind: ErrWorkflowNotFound}))
	assert.False(t, IsWorkflowNotFound(errors.New("other")))
	assert.True(t, IsWorkflowAlreadyStarted(&TemporalError{Op: "x", Kind: ErrWorkflowAlreadyStarted}))
}
