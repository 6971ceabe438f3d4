package providers

import "context"

// Provider is the interface a text-completion backend must implement.
type Provider interface {
	// Complete sends the conversation window and returns the normalized reply text.
	// Transport failures and non-2xx statuses are returned as errors; an unrecognized
	// response shape is not an error and yields FallbackText.
	Complete(ctx context.Context, messages []Message) (string, error)

	// Model returns the model identifier sent with each request.
	Model() string

	// Name returns the provider identifier (e.g. "pollinations").
	Name() string
}

// Conversation roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents one conversation turn.
type Message struct {
	Role    string `json:"role"`           // "system", "user", "assistant"
	Content string `json:"content"`
	Name    string `json:"name,omitempty"` // normalized speaker name
}
