package temporal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/tixhub/ticket-exchange-service/internal/observability"
)

// Signal and query names for external interaction with intake workflows.
// These are defined here (not in the workflows package) so that both the
// server layer and the workflow implementation can reference them without
// creating a dependency from server -> workflows.
const (
	// SignalCancel is the signal name used to request workflow cancellation.
	SignalCancel = "cancel"

	// QueryProgress is the query name used to retrieve workflow progress.
	QueryProgress = "progress"
)

// Default timeout constants for workflow execution and health checks.
const (
	// DefaultWorkflowExecutionTimeout is the maximum time a ticket intake
	// workflow is allowed to run.
	DefaultWorkflowExecutionTimeout = 30 * time.Minute

	// DefaultHealthCheckTimeout is the timeout for Temporal server health checks.
	DefaultHealthCheckTimeout = 5 * time.Second
)

var (
	// ErrWorkflowNotFound indicates the workflow execution was not found.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrWorkflowAlreadyStarted indicates a workflow with the same ID is already running.
	ErrWorkflowAlreadyStarted = errors.New("workflow already started")

	// ErrQueryFailed indicates the workflow query failed.
	ErrQueryFailed = errors.New("query failed")

	// ErrClientClosed indicates the client has been closed.
	ErrClientClosed = errors.New("client closed")

	// ErrConnectionFailed indicates a connection failure to the Temporal server.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrInvalidArgument indicates an invalid argument was provided.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDeadlineExceeded indicates the operation deadline was exceeded.
	ErrDeadlineExceeded = errors.New("deadline exceeded")
)

// TemporalError wraps a Temporal error with additional context.
type TemporalError struct {
	Op         string // Operation that failed
	Kind       error  // Category of error (sentinel)
	WorkflowID string // Workflow ID (if applicable)
	RunID      string // Run ID (if applicable)
	Err        error  // Underlying error
}

// Error returns the error message.
func (e *TemporalError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.WorkflowID != "" {
		msg += fmt.Sprintf(" [workflowID=%s", e.WorkflowID)
		if e.RunID != "" {
			msg += fmt.Sprintf(", runID=%s", e.RunID)
		}
		msg += "]"
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *TemporalError) Unwrap() error {
	return e.Err
}

// Is reports whether target matches this error's Kind.
func (e *TemporalError) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// wrapTemporalError converts a Temporal SDK error to a TemporalError.
func wrapTemporalError(op string, err error, workflowID, runID string) error {
	if err == nil {
		return nil
	}

	te := &TemporalError{
		Op:         op,
		WorkflowID: workflowID,
		RunID:      runID,
		Err:        err,
	}

	var notFoundErr *serviceerror.NotFound
	var alreadyStartedErr *serviceerror.WorkflowExecutionAlreadyStarted
	var invalidArgumentErr *serviceerror.InvalidArgument
	var deadlineExceededErr *serviceerror.DeadlineExceeded
	var queryFailedErr *serviceerror.QueryFailed
	var unavailableErr *serviceerror.Unavailable

	switch {
	case errors.As(err, &notFoundErr):
		te.Kind = ErrWorkflowNotFound
	case errors.As(err, &alreadyStartedErr):
		te.Kind = ErrWorkflowAlreadyStarted
	case errors.As(err, &invalidArgumentErr):
		te.Kind = ErrInvalidArgument
	case errors.As(err, &deadlineExceededErr):
		te.Kind = ErrDeadlineExceeded
	case errors.As(err, &queryFailedErr):
		te.Kind = ErrQueryFailed
	case errors.As(err, &unavailableErr):
		te.Kind = ErrConnectionFailed
	default:
		if errors.Is(err, context.DeadlineExceeded) {
			te.Kind = ErrDeadlineExceeded
		} else if errors.Is(err, context.Canceled) {
			te.Kind = ErrClientClosed
		} else {
			te.Kind = ErrConnectionFailed
		}
	}

	return te
}

// IsWorkflowNotFound checks if the error indicates a workflow was not found.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsWorkflowAlreadyStarted checks if the error indicates a workflow already started.
func IsWorkflowAlreadyStarted(err error) bool {
	return errors.Is(err, ErrWorkflowAlreadyStarted)
}

// ClientConfig contains configuration for the Temporal client.
type ClientConfig struct {
	// HostPort is the Temporal server address (e.g., "localhost:7233").
	HostPort string

	// Namespace is the Temporal namespace to use.
	Namespace string

	// TaskQueue is the default task queue for starting workflows.
	TaskQueue string

	// HealthCheckTimeout is the timeout for health check operations.
	// Defaults to 5 seconds if not set.
	HealthCheckTimeout time.Duration
}

// NewClient creates a new Temporal client with the given configuration.
// SDK internals log through the given zerolog logger.
func NewClient(cfg ClientConfig, logger zerolog.Logger) (client.Client, error) {
	options := client.Options{
		HostPort:  cfg.HostPort,
		Namespace: cfg.Namespace,
		Logger:    observability.NewTemporalLogger(logger),
	}

	c, err := client.Dial(options)
	if err != nil {
		return nil, fmt.Errorf("create Temporal client: %w", err)
	}

	return c, nil
}

// IntakeWorkflowInput contains the parameters for starting a ticket intake
// workflow. This type is defined in the temporal package (not in workflows)
// so that the server layer can construct workflow inputs without importing
// the workflows package.
type IntakeWorkflowInput struct {
	// TicketID is the pending ticket record created at submission time.
	TicketID uuid.UUID

	// SellerID is the submitting seller.
	SellerID string

	// ImageBase64 is the ticket photo, base64 encoded. Empty when the seller
	// submitted raw text instead.
	ImageBase64 string

	// ImageMIMEType is the photo MIME type (e.g., "image/jpeg").
	ImageMIMEType string

	// RawText is seller-provided OCR text. Used directly when no image is
	// attached.
	RawText string
}

// IntakeWorkflowClient provides methods for starting and managing ticket
// intake workflows.
type IntakeWorkflowClient struct {
	mu                 sync.RWMutex
	client             client.Client
	taskQueue          string
	healthCheckTimeout time.Duration
	closed             bool
}

// NewIntakeWorkflowClient creates a new IntakeWorkflowClient.
func NewIntakeWorkflowClient(c client.Client, taskQueue string) *IntakeWorkflowClient {
	return &IntakeWorkflowClient{
		client:             c,
		taskQueue:          taskQueue,
		healthCheckTimeout: DefaultHealthCheckTimeout,
	}
}

// Close closes the underlying Temporal client connection.
func (c *IntakeWorkflowClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil && !c.closed {
		c.client.Close()
		c.closed = true
	}
}

// isClosed returns whether the client has been closed. It is safe for concurrent use.
func (c *IntakeWorkflowClient) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Health checks the connection health to the Temporal server.
func (c *IntakeWorkflowClient) Health(ctx context.Context) error {
	if c.isClosed() {
		return &TemporalError{Op: "Health", Kind: ErrClientClosed}
	}

	checkCtx, cancel := context.WithTimeout(ctx, c.healthCheckTimeout)
	defer cancel()

	_, err := c.client.CheckHealth(checkCtx, &client.CheckHealthRequest{})
	if err != nil {
		return wrapTemporalError("Health", err, "", "")
	}

	return nil
}

// StartIntakeWorkflow starts a new ticket intake workflow. The workflow
// function must be registered with the worker separately.
func (c *IntakeWorkflowClient) StartIntakeWorkflow(ctx context.Context, workflowFunc interface{}, input IntakeWorkflowInput) (workflowID, runID string, err error) {
	if c.isClosed() {
		return "", "", &TemporalError{Op: "StartIntakeWorkflow", Kind: ErrClientClosed}
	}
	if input.TicketID == uuid.Nil {
		return "", "", &TemporalError{Op: "StartIntakeWorkflow", Kind: ErrInvalidArgument, Err: fmt.Errorf("ticket_id is required")}
	}

	workflowID = fmt.Sprintf("ticket-intake-%s", input.TicketID)
	options := client.StartWorkflowOptions{
		ID:                       workflowID,
		TaskQueue:                c.taskQueue,
		WorkflowExecutionTimeout: DefaultWorkflowExecutionTimeout,
	}

	run, err := c.client.ExecuteWorkflow(ctx, options, workflowFunc, input)
	if err != nil {
		return "", "", wrapTemporalError("StartIntakeWorkflow", err, workflowID, "")
	}

	return workflowID, run.GetRunID(), nil
}

// CancelWorkflow cancels a running workflow.
func (c *IntakeWorkflowClient) CancelWorkflow(ctx context.Context, workflowID, runID string) error {
	if c.isClosed() {
		return &TemporalError{Op: "CancelWorkflow", Kind: ErrClientClosed, WorkflowID: workflowID, RunID: runID}
	}

	if err := c.client.CancelWorkflow(ctx, workflowID, runID); err != nil {
		return wrapTemporalError("CancelWorkflow", err, workflowID, runID)
	}
	return nil
}

// GetWorkflowResult waits for a workflow to complete and returns the result.
func (c *IntakeWorkflowClient) GetWorkflowResult(ctx context.Context, workflowID, runID string, result interface{}) error {
	if c.isClosed() {
		return &TemporalError{Op: "GetWorkflowResult", Kind: ErrClientClosed, WorkflowID: workflowID, RunID: runID}
	}

	run := c.client.GetWorkflow(ctx, workflowID, runID)
	if err := run.Get(ctx, result); err != nil {
		return wrapTemporalError("GetWorkflowResult", err, workflowID, runID)
	}

	return nil
}

// SignalWorkflow sends a signal to a running workflow.
func (c *IntakeWorkflowClient) SignalWorkflow(ctx context.Context, workflowID, runID, signalName string, arg interface{}) error {
	if c.isClosed() {
		return &TemporalError{Op: "SignalWorkflow", Kind: ErrClientClosed, WorkflowID: workflowID, RunID: runID}
	}

	if err := c.client.SignalWorkflow(ctx, workflowID, runID, signalName, arg); err != nil {
		return wrapTemporalError("SignalWorkflow", err, workflowID, runID)
	}

	return nil
}

// QueryWorkflow queries a running workflow's state.
func (c *IntakeWorkflowClient) QueryWorkflow(ctx context.Context, workflowID, runID, queryType string, result interface{}, args ...interface{}) error {
	if c.isClosed() {
		return &TemporalError{Op: "QueryWorkflow", Kind: ErrClientClosed, WorkflowID: workflowID, RunID: runID}
	}

	resp, err := c.client.QueryWorkflow(ctx, workflowID, runID, queryType, args...)
	if err != nil {
		return wrapTemporalError("QueryWorkflow", err, workflowID, runID)
	}

	if result != nil {
		if err := resp.Get(result); err != nil {
			return &TemporalError{
				Op:         "QueryWorkflow",
				Kind:       ErrQueryFailed,
				WorkflowID: workflowID,
				RunID:      runID,
				Err:        fmt.Errorf("decode query result: %w", err),
			}
		}
	}

	return nil
}

// Client returns the underlying Temporal client for advanced operations.
func (c *IntakeWorkflowClient) Client() client.Client {
	return c.client
}

// TaskQueue returns the configured task queue name.
func (c *IntakeWorkflowClient) TaskQueue() string {
	return c.taskQueue
}
