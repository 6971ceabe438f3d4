package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nextlevelbuilder/gptrelay/internal/config"
	"github.com/nextlevelbuilder/gptrelay/internal/providers"
)

// completionVerifyError holds the result of a completion endpoint probe.
type completionVerifyError struct {
	status  int    // HTTP status, 0 for transport failures
	message string // human-readable description
}

func (e *completionVerifyError) Error() string { return e.message }

// verifyCompletion sends a minimal prompt through the configured provider so
// the probe exercises the same request shape as a real relay.
func verifyCompletion(cfg *config.Config) *completionVerifyError {
	prov := newProvider(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := prov.Complete(ctx, []providers.Message{
		{Role: providers.RoleSystem, Content: cfg.Completion.SystemPrompt},
		{Role: providers.RoleUser, Content: "hi"},
	})
	if err == nil {
		return nil
	}

	var httpErr *providers.HTTPError
	if errors.As(err, &httpErr) {
		return &completionVerifyError{
			status:  httpErr.Status,
			message: fmt.Sprintf("%s returned %d: %s", prov.Name(), httpErr.Status, friendlyProviderError(err)),
		}
	}
	return &completionVerifyError{message: friendlyProviderError(err)}
}

// friendlyProviderError extracts a human-readable message from provider errors.
func friendlyProviderError(err error) string {
	msg := err.Error()

	// Try to extract "message" or "error" fields from embedded JSON error blobs.
	for _, key := range []string{`"message"`, `"error"`} {
		idx := strings.Index(msg, key)
		if idx < 0 {
			continue
		}
		rest := msg[idx+len(key):]
		if start := strings.Index(rest, `:`); start >= 0 {
			rest = strings.TrimLeft(rest[start+1:], " ")
			if len(rest) > 0 && rest[0] == '"' {
				rest = rest[1:]
				if end := strings.Index(rest, `"`); end > 0 {
					return rest[:end]
				}
			}
		}
	}

	// Strip "HTTP NNN: provider: " prefix.
	if idx := strings.LastIndex(msg, ": "); idx >= 0 && idx < len(msg)-2 {
		suffix := msg[idx+2:]
		if strings.HasPrefix(suffix, "{") || strings.HasPrefix(suffix, "<") {
			return "request rejected by provider"
		}
		return suffix
	}

	return msg
}
