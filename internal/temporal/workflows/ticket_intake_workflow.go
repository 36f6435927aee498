// Package workflows defines the Temporal workflow for the ticket intake
// pipeline.
package workflows

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/tixhub/ticket-exchange-service/internal/domain"
	tixtemporal "github.com/tixhub/ticket-exchange-service/internal/temporal"
	"github.com/tixhub/ticket-exchange-service/internal/temporal/activities"
)

// Re-export signal/query name constants from the parent temporal package for
// convenience.
const (
	SignalCancel  = tixtemporal.SignalCancel
	QueryProgress = tixtemporal.QueryProgress
)

// Activity timeout constants.
const (
	visionActivityTimeout = 2 * time.Minute
	localActivityTimeout  = 30 * time.Second
	dbActivityTimeout     = 30 * time.Second
)

// IntakeWorkflowInput is an alias for the shared input type defined in the
// parent temporal package.
type IntakeWorkflowInput = tixtemporal.IntakeWorkflowInput

// IntakeWorkflowResult contains the final result of a ticket intake workflow.
type IntakeWorkflowResult struct {
	// TicketID is the processed ticket.
	TicketID uuid.UUID

	// Status is the ticket status after intake.
	Status domain.TicketStatus

	// IsDuplicate reports whether the submission collided with an existing
	// ticket.
	IsDuplicate bool

	// DuplicateOf is the colliding ticket when IsDuplicate is set.
	DuplicateOf uuid.UUID

	// MatchedConcertID is the linked concert, nil when no concert cleared the
	// match threshold.
	MatchedConcertID *uuid.UUID

	// ExtractionConfidence is the overall confidence of the merged extraction.
	ExtractionConfidence float64
}

// intakeProgress tracks the internal progress state of the workflow, exposed
// via the QueryProgress query handler.
type intakeProgress struct {
	Phase           string
	TextRecognized  bool
	FieldsExtracted bool
	ConcertMatched  bool
	DuplicateFound  bool
}

// TicketIntakeWorkflow processes one submitted ticket:
//
//  1. Recognize the text on the ticket photo (skipped for raw-text submissions)
//  2. Extract ticket fields from the recognized text
//  3. Match the extracted artist against the concert catalog
//  4. Check the submission against existing tickets for duplicates
//  5. Finalize: persist the extraction, link the concert, settle the status
//     and emit the outbox event
//
// The workflow supports cancellation via the "cancel" signal and progress
// queries via the "progress" query type.
func TicketIntakeWorkflow(ctx workflow.Context, input IntakeWorkflowInput) (*IntakeWorkflowResult, error) {
	logger := workflow.GetLogger(ctx)

	if input.TicketID == uuid.Nil {
		return nil, fmt.Errorf("ticket_id is required")
	}
	if input.ImageBase64 == "" && input.RawText == "" {
		return nil, fmt.Errorf("either an image or raw text is required")
	}

	progress := &intakeProgress{Phase: "initializing"}
	if err := workflow.SetQueryHandler(ctx, QueryProgress, func() (*intakeProgress, error) {
		return progress, nil
	}); err != nil {
		logger.Error("failed to register progress query handler", "error", err)
		return nil, fmt.Errorf("register query handler: %w", err)
	}

	// Cancellation signal handling.
	cancelCtx, cancelFunc := workflow.WithCancel(ctx)
	signalCh := workflow.GetSignalChannel(ctx, SignalCancel)
	workflow.Go(ctx, func(gCtx workflow.Context) {
		signalCh.Receive(gCtx, nil)
		logger.Info("received cancel signal")
		cancelFunc()
	})

	// Activity nil-pointer variables for method references.
	var visionAct *activities.VisionActivities
	var extractAct *activities.ExtractActivities
	var matchAct *activities.MatchActivities
	var dedupAct *activities.DedupActivities
	var ticketAct *activities.TicketActivities

	visionCtx := workflow.WithActivityOptions(cancelCtx, workflow.ActivityOptions{
		StartToCloseTimeout: visionActivityTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    30 * time.Second,
			MaximumAttempts:    3,
		},
	})

	pipelineCtx := workflow.WithActivityOptions(cancelCtx, workflow.ActivityOptions{
		StartToCloseTimeout: localActivityTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    500 * time.Millisecond,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    3,
		},
	})

	dbCtx := workflow.WithActivityOptions(cancelCtx, workflow.ActivityOptions{
		StartToCloseTimeout: dbActivityTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    500 * time.Millisecond,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	})

	// Phase 1: image recognition.
	rawText := input.RawText
	var visionFields *domain.ExtractedFields

	if input.ImageBase64 != "" {
		progress.Phase = "recognizing"
		var recognized activities.RecognizeTicketTextOutput
		err := workflow.ExecuteActivity(visionCtx, visionAct.RecognizeTicketText, activities.RecognizeTicketTextInput{
			ImageBase64: input.ImageBase64,
			MIMEType:    input.ImageMIMEType,
		}).Get(cancelCtx, &recognized)
		if err != nil {
			// A submission with seller-provided text survives a vision outage.
			if rawText == "" {
				return nil, fmt.Errorf("recognize ticket text: %w", err)
			}
			logger.Warn("image recognition failed, falling back to raw text", "error", err)
		} else {
			rawText = recognized.RawText
			visionFields = recognized.Fields
			progress.TextRecognized = true
		}
	}

	// Phase 2: field extraction.
	progress.Phase = "extracting"
	var extracted activities.ExtractFieldsOutput
	if err := workflow.ExecuteActivity(pipelineCtx, extractAct.ExtractFields, activities.ExtractFieldsInput{
		RawText:      rawText,
		VisionFields: visionFields,
	}).Get(cancelCtx, &extracted); err != nil {
		return nil, fmt.Errorf("extract fields: %w", err)
	}
	progress.FieldsExtracted = true
	fields := extracted.Fields

	// Phase 3: concert matching.
	progress.Phase = "matching"
	var matched activities.MatchConcertOutput
	if err := workflow.ExecuteActivity(pipelineCtx, matchAct.MatchConcert, activities.MatchConcertInput{
		Artist: fields.Artist,
	}).Get(cancelCtx, &matched); err != nil {
		return nil, fmt.Errorf("match concert: %w", err)
	}
	progress.ConcertMatched = matched.Matched

	// Phase 4: duplicate check.
	progress.Phase = "checking duplicates"
	var dup activities.CheckDuplicateOutput
	if err := workflow.ExecuteActivity(dbCtx, dedupAct.CheckDuplicate, activities.CheckDuplicateInput{
		TicketID:  input.TicketID,
		Artist:    fields.Artist,
		Venue:     fields.Venue,
		EventDate: fields.Date,
		EventTime: fields.Time,
		SeatRow:   fields.SeatRow,
		Seat:      fields.Seat,
		Section:   fields.Section,
		Barcode:   fields.Barcode,
	}).Get(cancelCtx, &dup); err != nil {
		return nil, fmt.Errorf("check duplicate: %w", err)
	}
	progress.DuplicateFound = dup.IsDuplicate

	// Phase 5: finalization.
	progress.Phase = "finalizing"
	finalizeInput := activities.FinalizeTicketInput{
		TicketID:    input.TicketID,
		SellerID:    input.SellerID,
		Extraction:  &fields,
		IsDuplicate: dup.IsDuplicate,
		MatchType:   dup.MatchType,
		DuplicateOf: dup.DuplicateOf,
	}
	if matched.Matched {
		concertID := matched.ConcertID
		finalizeInput.ConcertID = &concertID
	}

	var finalized activities.FinalizeTicketOutput
	if err := workflow.ExecuteActivity(dbCtx, ticketAct.FinalizeTicket, finalizeInput).Get(cancelCtx, &finalized); err != nil {
		return nil, fmt.Errorf("finalize ticket: %w", err)
	}

	progress.Phase = "done"

	result := &IntakeWorkflowResult{
		TicketID:             input.TicketID,
		Status:               finalized.Status,
		IsDuplicate:          dup.IsDuplicate,
		DuplicateOf:          dup.DuplicateOf,
		ExtractionConfidence: fields.Confidence,
	}
	if matched.Matched {
		concertID := matched.ConcertID
		result.MatchedConcertID = &concertID
	}

	logger.Info("ticket intake completed",
		"ticketID", input.TicketID,
		"status", finalized.Status,
		"isDuplicate", dup.IsDuplicate,
		"concertMatched", matched.Matched,
	)

	return result, nil
}
