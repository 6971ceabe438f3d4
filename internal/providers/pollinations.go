package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// maxResponseBytes bounds how much of a completion body is read into memory.
const maxResponseBytes = 4 << 20

// PollinationsProvider implements Provider for the Pollinations text endpoint, which
// takes an OpenAI-shaped request but answers in several shapes (plain text, chat
// completion JSON, or an object with a message field).
type PollinationsProvider struct {
	name     string
	endpoint string
	model    string
	client   *http.Client
}

// NewPollinationsProvider creates a provider posting to endpoint.
// A zero timeout leaves the transport default in place (no client timeout).
func NewPollinationsProvider(endpoint, model string, timeout time.Duration) *PollinationsProvider {
	return &PollinationsProvider{
		name:     "pollinations",
		endpoint: endpoint,
		model:    model,
		client:   &http.Client{Timeout: timeout},
	}
}

func (p *PollinationsProvider) Name() string  { return p.name }
func (p *PollinationsProvider) Model() string { return p.model }

// Complete flattens the window into a single user prompt, posts it once and
// normalizes whatever comes back. There is no retry.
func (p *PollinationsProvider) Complete(ctx context.Context, messages []Message) (string, error) {
	body := p.buildRequestBody(FlattenPrompt(messages))

	data, err := p.doRequest(ctx, body)
	if err != nil {
		return "", err
	}

	result := ParseResult(data)
	if u, ok := result.(UnrecognizedResult); ok {
		slog.Warn("pollinations: unexpected response format",
			"preview", preview(u.Raw, 200),
		)
	}
	return result.Text(), nil
}

// requestBody is the wire format of a completion request.
type requestBody struct {
	Messages []requestMessage `json:"messages"`
	Model    string           `json:"model"`
}

type requestMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (p *PollinationsProvider) buildRequestBody(prompt string) requestBody {
	return requestBody{
		Messages: []requestMessage{{Role: RoleUser, Content: prompt}},
		Model:    p.model,
	}
}

func (p *PollinationsProvider) doRequest(ctx context.Context, body requestBody) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%s: marshal request: %w", p.name, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", p.name, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", p.name, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", p.name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{
			Status: resp.StatusCode,
			Body:   fmt.Sprintf("%s: %s", p.name, preview(string(respBody), 500)),
		}
	}

	return respBody, nil
}

// FlattenPrompt renders the window as "Role: content" lines in window order.
// Turns with an unknown role contribute their bare content.
func FlattenPrompt(messages []Message) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			lines = append(lines, "System: "+m.Content)
		case RoleUser:
			lines = append(lines, "User: "+m.Content)
		case RoleAssistant:
			lines = append(lines, "Assistant: "+m.Content)
		default:
			lines = append(lines, m.Content)
		}
	}
	return strings.Join(lines, "\n")
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
