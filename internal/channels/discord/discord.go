package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/nextlevelbuilder/gptrelay/internal/bus"
	"github.com/nextlevelbuilder/gptrelay/internal/channels"
	"github.com/nextlevelbuilder/gptrelay/internal/config"
	"github.com/nextlevelbuilder/gptrelay/internal/stats"
)

// restAPI is the subset of the discordgo REST surface the channel uses.
type restAPI interface {
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	ChannelTyping(channelID string, options ...discordgo.RequestOption) error
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

var (
	_ channels.Channel    = (*Channel)(nil)
	_ bus.Gateway         = (*Channel)(nil)
	_ stats.GatewaySource = (*Channel)(nil)
)

// Channel connects to Discord via the Bot API using gateway events.
type Channel struct {
	*channels.BaseChannel
	session *discordgo.Session
	api     restAPI
	state   *discordgo.State
	latency func() time.Duration
	config  config.DiscordConfig

	mu      sync.RWMutex
	botUser *discordgo.User // populated on Ready
	baseCtx context.Context
}

// New creates a new Discord channel from config.
func New(cfg config.DiscordConfig, messages bus.MessageHandler, commands bus.CommandHandler) (*Channel, error) {
	if cfg.Token == "" {
		return nil, config.ErrMissingToken
	}
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent

	c := newChannel(cfg, session, session.State, messages, commands)
	c.session = session
	c.latency = session.HeartbeatLatency
	return c, nil
}

func newChannel(cfg config.DiscordConfig, api restAPI, state *discordgo.State, messages bus.MessageHandler, commands bus.CommandHandler) *Channel {
	return &Channel{
		BaseChannel: channels.NewBaseChannel("discord", messages, commands),
		api:         api,
		state:       state,
		latency:     func() time.Duration { return 0 },
		config:      cfg,
		baseCtx:     context.Background(),
	}
}

// Start opens the Discord gateway connection and begins receiving events.
// ctx bounds every handler run on behalf of this connection.
func (c *Channel) Start(ctx context.Context) error {
	slog.Info("starting discord bot")

	c.mu.Lock()
	c.baseCtx = ctx
	c.mu.Unlock()

	c.session.AddHandler(c.handleReady)
	c.session.AddHandler(c.handleMessage)
	c.session.AddHandler(c.handleInteraction)

	if err := c.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}

	c.SetRunning(true)
	return nil
}

// Stop closes the Discord gateway connection.
func (c *Channel) Stop(_ context.Context) error {
	slog.Info("stopping discord bot")
	c.SetRunning(false)
	if c.session == nil {
		return nil
	}
	return c.session.Close()
}

// Send delivers an outbound message to a Discord channel. When ReplyTo is set the
// message references the original so Discord renders it as a reply.
func (c *Channel) Send(ctx context.Context, msg bus.OutboundMessage) error {
	if msg.ChannelID == "" {
		return errors.New("empty channel ID for discord send")
	}

	data := &discordgo.MessageSend{
		Content: msg.Content,
		Embeds:  toEmbeds(msg.Embeds),
	}
	if msg.ReplyTo != "" {
		data.Reference = &discordgo.MessageReference{
			MessageID: msg.ReplyTo,
			ChannelID: msg.ChannelID,
		}
	}

	if _, err := c.api.ChannelMessageSendComplex(msg.ChannelID, data, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send discord message: %w", err)
	}
	return nil
}

// BotUserID implements bus.Gateway.
func (c *Channel) BotUserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.botUser == nil {
		return ""
	}
	return c.botUser.ID
}

// RecentMessages implements bus.Gateway. Discord returns newest first.
func (c *Channel) RecentMessages(ctx context.Context, channelID string, limit int) ([]bus.InboundMessage, error) {
	msgs, err := c.api.ChannelMessages(channelID, limit, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch discord messages: %w", err)
	}
	out := make([]bus.InboundMessage, 0, len(msgs))
	for _, m := range msgs {
		if m == nil || m.Author == nil {
			continue
		}
		out = append(out, toInbound(m))
	}
	return out, nil
}

// SendTyping implements bus.Gateway.
func (c *Channel) SendTyping(ctx context.Context, channelID string) error {
	return c.api.ChannelTyping(channelID, discordgo.WithContext(ctx))
}

// GatewayStats implements stats.GatewaySource from the session state cache.
func (c *Channel) GatewayStats() stats.Gateway {
	g := stats.Gateway{Latency: c.latency()}
	if c.state == nil {
		return g
	}
	c.state.RLock()
	defer c.state.RUnlock()
	g.Guilds = len(c.state.Guilds)
	for _, guild := range c.state.Guilds {
		g.Members += guild.MemberCount
		g.Channels += len(guild.Channels)
	}
	return g
}

// Ready reports whether the gateway handshake has completed.
func (c *Channel) Ready() bool { return c.BotUserID() != "" }

// BotIdentity returns the bot's display tag and user ID, empty before Ready.
func (c *Channel) BotIdentity() (tag, id string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.botUser == nil {
		return "", ""
	}
	return c.botUser.String(), c.botUser.ID
}

// GuildCount returns the number of guilds in the state cache.
func (c *Channel) GuildCount() int { return c.GatewayStats().Guilds }

func (c *Channel) handlerCtx() context.Context {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseCtx
}

func (c *Channel) handleReady(_ *discordgo.Session, r *discordgo.Ready) {
	c.onReady(r)
}

func (c *Channel) onReady(r *discordgo.Ready) {
	if r.User == nil {
		slog.Warn("discord ready event without user")
		return
	}
	c.mu.Lock()
	c.botUser = r.User
	c.mu.Unlock()

	slog.Info("discord bot connected", "username", r.User.String(), "id", r.User.ID, "guilds", len(r.Guilds))

	if err := c.registerCommands(c.handlerCtx(), r.User.ID); err != nil {
		slog.Error("discord: register slash commands failed", "error", err)
	}
}

func (c *Channel) handleMessage(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Message == nil || m.Author == nil {
		return
	}
	c.onMessage(c.handlerCtx(), m.Message)
}

func (c *Channel) onMessage(ctx context.Context, m *discordgo.Message) {
	handler := c.MessageHandler()
	if handler == nil {
		return
	}

	in := toInbound(m)
	reply, ok := handler.HandleMessage(ctx, in, c)
	if !ok {
		return
	}

	slog.Debug("discord reply",
		"channel_id", in.ChannelID,
		"reply_to", in.ID,
		"preview", channels.Truncate(reply.Content, 50),
	)

	if err := c.Send(ctx, reply); err != nil {
		slog.Error("discord: reply failed", "channel_id", in.ChannelID, "error", err)
	}
}

func toInbound(m *discordgo.Message) bus.InboundMessage {
	in := bus.InboundMessage{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		Content:   m.Content,
		Timestamp: m.Timestamp,
	}
	if m.Author != nil {
		in.Author = bus.Author{
			ID:       m.Author.ID,
			Username: m.Author.Username,
			Bot:      m.Author.Bot,
		}
	}
	return in
}

func toEmbeds(embeds []bus.Embed) []*discordgo.MessageEmbed {
	if len(embeds) == 0 {
		return nil
	}
	out := make([]*discordgo.MessageEmbed, 0, len(embeds))
	for _, e := range embeds {
		me := &discordgo.MessageEmbed{
			Title: e.Title,
			Color: e.Color,
		}
		if !e.Timestamp.IsZero() {
			me.Timestamp = e.Timestamp.Format(time.RFC3339)
		}
		if e.Footer != "" {
			me.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
		}
		for _, f := range e.Fields {
			me.Fields = append(me.Fields, &discordgo.MessageEmbedField{
				Name:   f.Name,
				Value:  f.Value,
				Inline: f.Inline,
			})
		}
		out = append(out, me)
	}
	return out
}
