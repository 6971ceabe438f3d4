// Package agent relays channel conversation to a completion provider. It decides
// which inbound messages are answered, builds the prompt window from channel
// history and turns provider output into a deliverable reply.
package agent

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nextlevelbuilder/gptrelay/internal/bus"
	"github.com/nextlevelbuilder/gptrelay/internal/providers"
	"github.com/nextlevelbuilder/gptrelay/internal/routing"
)

// ErrorReplyText is sent when the history fetch or the completion call fails.
const ErrorReplyText = "Sorry, I encountered an error while processing your message."

// Loop answers messages posted in the active channel.
type Loop struct {
	provider     providers.Provider
	routing      *routing.State
	systemPrompt string
	historyLimit int
	ignorePrefix string
}

// LoopConfig configures a new Loop.
type LoopConfig struct {
	Provider     providers.Provider
	Routing      *routing.State
	SystemPrompt string
	HistoryLimit int    // messages fetched per relay
	IgnorePrefix string // messages starting with it are never relayed
}

// NewLoop creates a relay loop.
func NewLoop(cfg LoopConfig) *Loop {
	return &Loop{
		provider:     cfg.Provider,
		routing:      cfg.Routing,
		systemPrompt: cfg.SystemPrompt,
		historyLimit: cfg.HistoryLimit,
		ignorePrefix: cfg.IgnorePrefix,
	}
}

// Accepts reports whether msg should be relayed: a human author, posted in the
// active channel, not under the ignore prefix.
func (l *Loop) Accepts(msg bus.InboundMessage) bool {
	if msg.Author.Bot {
		return false
	}
	if !l.routing.IsActive(msg.ChannelID) {
		return false
	}
	if l.ignorePrefix != "" && strings.HasPrefix(msg.Content, l.ignorePrefix) {
		return false
	}
	return true
}

// HandleMessage implements bus.MessageHandler. Failures in the history fetch or the
// completion call are logged and answered with ErrorReplyText; they are never retried.
func (l *Loop) HandleMessage(ctx context.Context, msg bus.InboundMessage, gw bus.Gateway) (bus.OutboundMessage, bool) {
	if !l.Accepts(msg) {
		return bus.OutboundMessage{}, false
	}

	runID := uuid.NewString()[:8]
	start := time.Now()
	ctx, span := startRelaySpan(ctx, runID, msg)
	defer span.End()

	reply := bus.OutboundMessage{ChannelID: msg.ChannelID, ReplyTo: msg.ID}

	if err := gw.SendTyping(ctx, msg.ChannelID); err != nil {
		slog.Debug("relay: typing indicator failed", "run_id", runID, "channel_id", msg.ChannelID, "error", err)
	}

	history, err := gw.RecentMessages(ctx, msg.ChannelID, l.historyLimit)
	if err != nil {
		slog.Error("relay: fetch channel history failed",
			"run_id", runID,
			"channel_id", msg.ChannelID,
			"error", err,
		)
		recordSpanError(span, err)
		reply.Content = ErrorReplyText
		return reply, true
	}

	window := BuildWindow(WindowInput{
		SystemPrompt: l.systemPrompt,
		SelfID:       gw.BotUserID(),
		IgnorePrefix: l.ignorePrefix,
		Trigger:      msg,
		History:      history,
		Limit:        l.historyLimit,
	})

	slog.Debug("relay: window built",
		"run_id", runID,
		"channel_id", msg.ChannelID,
		"fetched", len(history),
		"turns", len(window),
	)

	text, err := l.complete(ctx, runID, window)
	if err != nil {
		slog.Error("relay: completion failed",
			"run_id", runID,
			"provider", l.provider.Name(),
			"error", err,
		)
		recordSpanError(span, err)
		reply.Content = ErrorReplyText
		return reply, true
	}

	reply.Content = SanitizeReply(text)
	slog.Info("relay: reply ready",
		"run_id", runID,
		"channel_id", msg.ChannelID,
		"chars", len([]rune(reply.Content)),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return reply, true
}

// Ask runs a single prompt through the same window, flatten and normalize path
// without a chat platform. Used by the chat CLI command.
func (l *Loop) Ask(ctx context.Context, prompt string) (string, error) {
	runID := "cli-" + uuid.NewString()[:8]
	window := []providers.Message{
		{Role: providers.RoleSystem, Content: l.systemPrompt},
		{Role: providers.RoleUser, Content: prompt},
	}
	text, err := l.complete(ctx, runID, window)
	if err != nil {
		return "", err
	}
	return SanitizeReply(text), nil
}

func (l *Loop) complete(ctx context.Context, runID string, window []providers.Message) (string, error) {
	ctx, span := startCompletionSpan(ctx, runID, l.provider, window)
	defer span.End()

	text, err := l.provider.Complete(ctx, window)
	if err != nil {
		recordSpanError(span, err)
		return "", err
	}
	recordCompletion(span, text)
	return text, nil
}
