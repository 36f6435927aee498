// Package vision recognizes text on ticket photos using an OpenAI-compatible
// vision model. The model returns both the raw text it can read off the image
// and its own structured guess at the ticket fields; the structured guess is
// later merged with the regex heuristics in the extract package.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/tixhub/ticket-exchange-service/internal/domain"
)

// Default values for the vision provider.
const (
	defaultBaseURL    = "https://api.openai.com/v1"
	defaultModel      = "gpt-4o"
	defaultMaxTokens  = 2048
	defaultRetryDelay = 2 * time.Second
)

// Recognition is the result of one image recognition call.
type Recognition struct {
	// RawText is all text the model could read off the image, in reading order.
	RawText string

	// Fields is the model's own structured guess at the ticket fields. May be
	// nil when the model returned text but no usable field guess.
	Fields *domain.ExtractedFields

	// Model is the vision model used.
	Model string

	// InputTokens and OutputTokens report API token usage.
	InputTokens  int
	OutputTokens int
}

// Recognizer defines the interface for ticket image recognition.
type Recognizer interface {
	// RecognizeTicket reads the text off a ticket image. The image is raw
	// bytes; mimeType must be an image MIME type such as "image/jpeg".
	RecognizeTicket(ctx context.Context, image []byte, mimeType string) (*Recognition, error)

	// Model returns the model identifier being used.
	Model() string
}

// Config holds the parameters needed to create a vision client.
// This is defined in the vision package to avoid importing the config package.
type Config struct {
	// APIKey is the provider API key.
	APIKey string
	// Model is the model identifier (e.g., "gpt-4o").
	Model string
	// BaseURL is the API base URL (empty means default).
	BaseURL string
	// Timeout bounds each individual API call.
	Timeout time.Duration
	// MaxRetries is the number of retries for transient errors.
	MaxRetries int
	// RetryDelay is the base delay between retries (empty means default).
	RetryDelay time.Duration
	// RateLimitRPS caps outgoing requests per second; zero disables limiting.
	RateLimitRPS float64
	// RateLimitBurst is the limiter burst size.
	RateLimitBurst int
}

// Client implements Recognizer against the OpenAI Chat Completions API with
// image inputs.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKey     string
	model      string
	baseURL    string
	maxRetries int
	retryDelay time.Duration
}

// Compile-time interface verification.
var _ Recognizer = (*Client)(nil)

// NewClient creates a new vision recognition client.
//
// Calls are rate limited client-side and transient API errors (5xx and 429)
// are retried up to MaxRetries times with linear backoff.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimitRPS > 0 {
		burst := cfg.RateLimitBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), burst)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter:    limiter,
		apiKey:     cfg.APIKey,
		model:      model,
		baseURL:    baseURL,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

// Model returns the model identifier being used.
func (c *Client) Model() string {
	return c.model
}

// RecognizeTicket reads the text off a ticket image and parses the model's
// structured field guess.
func (c *Client) RecognizeTicket(ctx context.Context, image []byte, mimeType string) (*Recognition, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("vision: empty image")
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	chatReq := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt()},
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: userPrompt()},
					{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
				},
			},
		},
		MaxTokens:      defaultMaxTokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay * time.Duration(attempt)
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("vision: context cancelled during retry wait: %w", ctx.Err())
			case <-time.After(delay):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("vision: rate limiter wait: %w", err)
		}

		result, err := c.doRequest(ctx, chatReq)
		if err == nil {
			return result, nil
		}

		// Only retry on transient errors (5xx, 429).
		if !isTransientError(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("vision: exhausted %d retries: %w", c.maxRetries, lastErr)
}

// doRequest performs a single API request to the Chat Completions endpoint.
func (c *Client) doRequest(ctx context.Context, chatReq chatRequest) (*Recognition, error) {
	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("vision: failed to marshal request: %w", err)
	}

	endpoint := c.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("vision: failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &APIError{StatusCode: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("vision: failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseAPIError(resp.StatusCode, respBody)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, fmt.Errorf("vision: failed to unmarshal response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("vision: empty choices in response")
	}

	content := chatResp.Choices[0].Message.Content
	var modelResp modelResponse
	if err := json.Unmarshal([]byte(content), &modelResp); err != nil {
		return nil, fmt.Errorf("vision: failed to parse model JSON response: %w", err)
	}

	if strings.TrimSpace(modelResp.RawText) == "" {
		return nil, fmt.Errorf("vision: model returned no recognized text")
	}

	return &Recognition{
		RawText:      modelResp.RawText,
		Fields:       modelResp.Fields,
		Model:        c.model,
		InputTokens:  chatResp.Usage.PromptTokens,
		OutputTokens: chatResp.Usage.CompletionTokens,
	}, nil
}

// systemPrompt instructs the model on its role and response format.
func systemPrompt() string {
	var sb strings.Builder

	sb.WriteString("You are an OCR assistant reading Israeli concert ticket photos. ")
	sb.WriteString("Tickets are mostly in Hebrew, sometimes mixed with English. ")
	sb.WriteString("Read every piece of text you can see on the ticket.\n\n")

	sb.WriteString("You MUST respond with valid JSON in exactly this format:\n")
	sb.WriteString(`{"raw_text": "all text on the ticket, line by line", "fields": {"artist": "", "venue": "", "date": "", "time": "", "price": "", "currency": "", "row": "", "seat": "", "section": "", "barcode": "", "confidence": 0.0}}`)
	sb.WriteString("\n\n")

	sb.WriteString("Guidelines:\n")
	sb.WriteString("1. raw_text must contain everything legible, preserving line breaks.\n")
	sb.WriteString("2. In fields, leave a value empty when you are not reasonably sure.\n")
	sb.WriteString("3. Keep dates and times exactly as printed; do not reformat.\n")
	sb.WriteString("4. confidence is your overall certainty in the fields, between 0 and 1.\n")
	sb.WriteString("5. Do not invent text that is not on the ticket.\n")

	return sb.String()
}

// userPrompt is the per-request instruction accompanying the image.
func userPrompt() string {
	return "Read this concert ticket and return the JSON described in the system prompt."
}

// parseAPIError parses a provider API error from the response status code and body.
func parseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Message:    string(body),
	}

	var errResp apiErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		apiErr.Message = errResp.Error.Message
		apiErr.Type = errResp.Error.Type
		apiErr.Code = errResp.Error.Code
	}

	return apiErr
}
