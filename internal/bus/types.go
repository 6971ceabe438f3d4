package bus

import (
	"context"
	"time"
)

// Author identifies who wrote a message on the chat platform.
type Author struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Bot      bool   `json:"bot,omitempty"`
}

// InboundMessage represents a chat message received from a channel, either as a live
// event or as an entry of fetched channel history.
type InboundMessage struct {
	ID        string    `json:"id"`
	ChannelID string    `json:"channel_id"`
	GuildID   string    `json:"guild_id,omitempty"` // empty for DMs
	Author    Author    `json:"author"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Command names exposed to the chat platform.
const (
	CommandSetChannel   = "set-chatgpt"
	CommandResetChannel = "chatgpt-reset"
	CommandStats        = "botstats"
)

// CommandInvocation represents a slash command invoked by a user.
type CommandInvocation struct {
	Name      string `json:"name"`
	UserID    string `json:"user_id"`
	GuildID   string `json:"guild_id,omitempty"`
	ChannelID string `json:"channel_id"`           // where the command was invoked
	TargetID  string `json:"target_id,omitempty"` // channel option value (set-chatgpt)
}

// OutboundMessage represents a reply to be delivered back through the channel.
type OutboundMessage struct {
	ChannelID string  `json:"channel_id"`
	ReplyTo   string  `json:"reply_to,omitempty"` // inbound message ID to reference
	Content   string  `json:"content,omitempty"`
	Embeds    []Embed `json:"embeds,omitempty"`
	Ephemeral bool    `json:"ephemeral,omitempty"` // visible only to the invoking user
}

// Embed is a platform-neutral rich display block.
type Embed struct {
	Title     string       `json:"title"`
	Color     int          `json:"color,omitempty"`
	Fields    []EmbedField `json:"fields,omitempty"`
	Footer    string       `json:"footer,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// EmbedField is one named value inside an Embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// Gateway is the part of the chat platform a message handler calls back into.
type Gateway interface {
	// BotUserID returns the bot's own user ID, empty until the connection is ready.
	BotUserID() string

	// RecentMessages fetches up to limit messages from a channel, newest first,
	// as the platform returns them.
	RecentMessages(ctx context.Context, channelID string, limit int) ([]InboundMessage, error)

	// SendTyping shows a typing indicator in the channel.
	SendTyping(ctx context.Context, channelID string) error
}

// MessageHandler turns an inbound message into an optional reply.
// ok is false when the message must be ignored.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg InboundMessage, gw Gateway) (reply OutboundMessage, ok bool)
}

// CommandHandler answers a slash command invocation with exactly one reply.
type CommandHandler interface {
	HandleCommand(ctx context.Context, cmd CommandInvocation) OutboundMessage
}
