// Package commands answers the administrative slash commands: choosing the relay
// channel, clearing it, and showing runtime statistics.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/nextlevelbuilder/gptrelay/internal/bus"
	"github.com/nextlevelbuilder/gptrelay/internal/routing"
	"github.com/nextlevelbuilder/gptrelay/internal/stats"
)

// Reply texts.
const (
	resetReply  = "ChatGPT channel has been reset to default"
	deniedReply = "You are not allowed to use this command."
)

// Handler implements bus.CommandHandler.
type Handler struct {
	routing   *routing.State
	gateway   stats.GatewaySource
	allowFrom map[string]bool
	now       func() time.Time
}

// NewHandler creates a command handler. An empty allowFrom lets everyone run commands.
func NewHandler(state *routing.State, gw stats.GatewaySource, allowFrom []string) *Handler {
	h := &Handler{
		routing: state,
		gateway: gw,
		now:     time.Now,
	}
	if len(allowFrom) > 0 {
		h.allowFrom = make(map[string]bool, len(allowFrom))
		for _, id := range allowFrom {
			h.allowFrom[id] = true
		}
	}
	return h
}

// SetGatewaySource sets where botstats reads connection figures from.
func (h *Handler) SetGatewaySource(gw stats.GatewaySource) { h.gateway = gw }

// IsAllowed reports whether userID may run commands.
func (h *Handler) IsAllowed(userID string) bool {
	return h.allowFrom == nil || h.allowFrom[userID]
}

// HandleCommand answers one invocation with one ephemeral reply.
func (h *Handler) HandleCommand(_ context.Context, cmd bus.CommandInvocation) bus.OutboundMessage {
	reply := bus.OutboundMessage{ChannelID: cmd.ChannelID, Ephemeral: true}

	if !h.IsAllowed(cmd.UserID) {
		slog.Warn("command rejected by allowlist", "command", cmd.Name, "user_id", cmd.UserID)
		reply.Content = deniedReply
		return reply
	}

	switch cmd.Name {
	case bus.CommandSetChannel:
		h.routing.Set(cmd.TargetID)
		slog.Info("relay channel set", "channel_id", cmd.TargetID, "user_id", cmd.UserID)
		reply.Content = fmt.Sprintf("ChatGPT channel has been set to <#%s>", cmd.TargetID)
	case bus.CommandResetChannel:
		h.routing.Reset()
		slog.Info("relay channel reset", "user_id", cmd.UserID)
		reply.Content = resetReply
	case bus.CommandStats:
		reply.Embeds = []bus.Embed{h.statsEmbed()}
	default:
		slog.Debug("unknown command", "command", cmd.Name)
		reply.Content = fmt.Sprintf("Unknown command: %s", cmd.Name)
	}
	return reply
}

func (h *Handler) statsEmbed() bus.Embed {
	host := stats.ReadHost()
	mem := stats.ReadProcessMemory()

	var gw stats.Gateway
	if h.gateway != nil {
		gw = h.gateway.GatewayStats()
	}

	return bus.Embed{
		Title: "🤖 Bot Statistics",
		Color: 0x0099ff,
		Fields: []bus.EmbedField{
			{
				Name:  "⏱️ Uptime",
				Value: fmt.Sprintf("`%s`", stats.FormatUptime(stats.Uptime())),
			},
			{
				Name:   "🔧 Go Version",
				Value:  fmt.Sprintf("`%s`", runtime.Version()),
				Inline: true,
			},
			{
				Name: "📊 Discord Stats",
				Value: fmt.Sprintf("❒ Total guilds: %d\n❒ Total users: %d\n❒ Total channels: %d\n❒ Websocket Ping: %d ms",
					gw.Guilds, gw.Members, gw.Channels, gw.Latency.Milliseconds()),
			},
			{
				Name: "💻 System Info",
				Value: fmt.Sprintf("❯ **OS:** %s [%s]\n❯ **Cores:** %d\n❯ **Total Memory:** %s\n❯ **Used Memory:** %s\n❯ **Available Memory:** %s\n❯ **Memory Usage:** %d%%",
					host.OS, host.Arch, host.CPUs,
					stats.FormatBytes(host.TotalMem),
					stats.FormatBytes(host.UsedMem()),
					stats.FormatBytes(host.FreeMem),
					host.UsagePercent()),
			},
			{
				Name: "🔧 Process Memory",
				Value: fmt.Sprintf("❯ **RSS:** %s\n❯ **Heap Used:** %s\n❯ **Heap Total:** %s",
					stats.FormatBytes(mem.RSS),
					stats.FormatBytes(mem.HeapAlloc),
					stats.FormatBytes(mem.HeapSys)),
			},
		},
		Footer:    "Bot Statistics",
		Timestamp: h.now(),
	}
}
