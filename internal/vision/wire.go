package vision

import (
	"github.com/tixhub/ticket-exchange-service/internal/domain"
)

// chatRequest represents the Chat Completions API request body. Message
// content may be a plain string (system messages) or a list of content parts
// (user messages carrying an image).
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

// chatMessage represents a single message in the chat conversation.
type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// contentPart is one element of a multi-part user message.
type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

// imageURL carries an image reference, here always a base64 data URL.
type imageURL struct {
	URL string `json:"url"`
}

// responseFormat specifies the output format for the API response.
type responseFormat struct {
	Type string `json:"type"`
}

// chatResponse represents the Chat Completions API response body.
type chatResponse struct {
	ID      string       `json:"id"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

// chatChoice represents a single completion choice.
type chatChoice struct {
	Index        int             `json:"index"`
	Message      responseMessage `json:"message"`
	FinishReason string          `json:"finish_reason"`
}

// responseMessage is an assistant message; content is always a string here.
type responseMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatUsage contains token usage information.
type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// modelResponse is the expected JSON structure of the model's answer. A null
// or missing fields key leaves Fields nil; downstream merging treats empty
// field values as absent.
type modelResponse struct {
	RawText string                  `json:"raw_text"`
	Fields  *domain.ExtractedFields `json:"fields,omitempty"`
}

// apiErrorResponse represents an error response from the provider API.
type apiErrorResponse struct {
	Error apiErrorDetail `json:"error"`
}

// apiErrorDetail contains error details from the provider API.
type apiErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}
