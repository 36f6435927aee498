package activities

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"go.temporal.io/sdk/activity"

	"github.com/tixhub/ticket-exchange-service/internal/observability"
	"github.com/tixhub/ticket-exchange-service/internal/vision"
)

// VisionActivities provides Temporal activities for ticket image recognition.
// Methods on this struct are registered as Temporal activities via the worker.
type VisionActivities struct {
	recognizer vision.Recognizer
	metrics    *observability.Metrics
}

// NewVisionActivities creates a new VisionActivities instance.
func NewVisionActivities(recognizer vision.Recognizer, metrics *observability.Metrics) *VisionActivities {
	return &VisionActivities{
		recognizer: recognizer,
		metrics:    metrics,
	}
}

// RecognizeTicketText reads the text off a ticket photo via the vision model.
// Transient provider errors surface as activity errors and are retried by the
// workflow's retry policy.
func (a *VisionActivities) RecognizeTicketText(ctx context.Context, input RecognizeTicketTextInput) (*RecognizeTicketTextOutput, error) {
	logger := activity.GetLogger(ctx)

	if a.recognizer == nil {
		return nil, fmt.Errorf("image recognition is disabled")
	}

	image, err := base64.StdEncoding.DecodeString(input.ImageBase64)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	logger.Info("recognizing ticket image", "imageBytes", len(image), "mimeType", input.MIMEType)

	start := time.Now()
	recognition, err := a.recognizer.RecognizeTicket(ctx, image, input.MIMEType)
	if err != nil {
		if a.metrics != nil {
			a.metrics.RecordVisionRequestFailed(a.recognizer.Model(), "recognition")
		}
		return nil, fmt.Errorf("recognize ticket: %w", err)
	}

	if a.metrics != nil {
		a.metrics.RecordVisionRequest(recognition.Model, time.Since(start).Seconds())
	}

	logger.Info("ticket image recognized",
		"model", recognition.Model,
		"textLength", len(recognition.RawText),
		"hasFieldGuess", recognition.Fields != nil,
	)

	return &RecognizeTicketTextOutput{
		RawText: recognition.RawText,
		Fields:  recognition.Fields,
		Model:   recognition.Model,
	}, nil
}
