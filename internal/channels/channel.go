// Package channels provides the channel abstraction layer between a chat platform
// and the relay. A channel converts platform events into bus.InboundMessage and
// bus.CommandInvocation values, hands them to the registered handlers and delivers
// the bus.OutboundMessage replies back to the platform.
package channels

import (
	"context"
	"sync/atomic"

	"github.com/nextlevelbuilder/gptrelay/internal/bus"
)

// Channel defines the interface that all channel implementations must satisfy.
type Channel interface {
	// Name returns the channel identifier (e.g., "discord").
	Name() string

	// Start begins listening for events. Should be non-blocking after setup.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the channel.
	Stop(ctx context.Context) error

	// Send delivers an outbound message to the channel.
	Send(ctx context.Context, msg bus.OutboundMessage) error

	// IsRunning returns whether the channel is actively processing events.
	IsRunning() bool
}

// BaseChannel provides shared functionality for channel implementations.
// Channel implementations should embed this struct.
type BaseChannel struct {
	name     string
	running  atomic.Bool
	messages bus.MessageHandler
	commands bus.CommandHandler
}

// NewBaseChannel creates a new BaseChannel. Either handler may be nil, in which case
// the matching events are dropped.
func NewBaseChannel(name string, messages bus.MessageHandler, commands bus.CommandHandler) *BaseChannel {
	return &BaseChannel{
		name:     name,
		messages: messages,
		commands: commands,
	}
}

// Name returns the channel name.
func (c *BaseChannel) Name() string { return c.name }

// IsRunning returns whether the channel is running.
func (c *BaseChannel) IsRunning() bool { return c.running.Load() }

// SetRunning updates the running state.
func (c *BaseChannel) SetRunning(running bool) { c.running.Store(running) }

// MessageHandler returns the handler for inbound chat messages.
func (c *BaseChannel) MessageHandler() bus.MessageHandler { return c.messages }

// CommandHandler returns the handler for slash command invocations.
func (c *BaseChannel) CommandHandler() bus.CommandHandler { return c.commands }

// Truncate shortens s to maxLen runes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
