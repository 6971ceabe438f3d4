package commands

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/nextlevelbuilder/gptrelay/internal/bus"
	"github.com/nextlevelbuilder/gptrelay/internal/routing"
	"github.com/nextlevelbuilder/gptrelay/internal/stats"
)

type fakeGateway struct{ s stats.Gateway }

func (f fakeGateway) GatewayStats() stats.Gateway { return f.s }

func TestHandleCommand_SetAndReset(t *testing.T) {
	state := routing.New()
	h := NewHandler(state, nil, nil)
	ctx := context.Background()

	reply := h.HandleCommand(ctx, bus.CommandInvocation{Name: bus.CommandSetChannel, UserID: "u", ChannelID: "here", TargetID: "123"})
	if !reply.Ephemeral {
		t.Error("set reply must be ephemeral")
	}
	if reply.Content != "ChatGPT channel has been set to <#123>" {
		t.Errorf("set reply = %q", reply.Content)
	}
	if !state.IsActive("123") {
		t.Error("channel 123 should be active after set")
	}

	h.HandleCommand(ctx, bus.CommandInvocation{Name: bus.CommandSetChannel, UserID: "u", TargetID: "456"})
	if state.IsActive("123") || !state.IsActive("456") {
		t.Error("second set must replace the first")
	}

	reply = h.HandleCommand(ctx, bus.CommandInvocation{Name: bus.CommandResetChannel, UserID: "u"})
	if reply.Content != "ChatGPT channel has been reset to default" || !reply.Ephemeral {
		t.Errorf("reset reply = %+v", reply)
	}
	if _, ok := state.Active(); ok {
		t.Error("state should be unset after reset")
	}
}

func TestHandleCommand_Stats(t *testing.T) {
	gw := fakeGateway{s: stats.Gateway{Guilds: 3, Members: 42, Channels: 17, Latency: 87 * time.Millisecond}}
	h := NewHandler(routing.New(), gw, nil)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	h.now = func() time.Time { return fixed }

	reply := h.HandleCommand(context.Background(), bus.CommandInvocation{Name: bus.CommandStats, UserID: "u"})
	if !reply.Ephemeral {
		t.Error("stats reply must be ephemeral")
	}
	if len(reply.Embeds) != 1 {
		t.Fatalf("embeds = %d, want 1", len(reply.Embeds))
	}
	e := reply.Embeds[0]
	if e.Title != "🤖 Bot Statistics" || e.Color != 0x0099ff || e.Footer != "Bot Statistics" {
		t.Errorf("embed header = %q %#x %q", e.Title, e.Color, e.Footer)
	}
	if !e.Timestamp.Equal(fixed) {
		t.Errorf("timestamp = %v", e.Timestamp)
	}
	if len(e.Fields) != 5 {
		t.Fatalf("fields = %d, want 5", len(e.Fields))
	}

	discord := e.Fields[2].Value
	for _, want := range []string{"Total guilds: 3", "Total users: 42", "Total channels: 17", "Websocket Ping: 87 ms"} {
		if !strings.Contains(discord, want) {
			t.Errorf("discord stats missing %q: %s", want, discord)
		}
	}
	if !strings.Contains(e.Fields[0].Value, "days") {
		t.Errorf("uptime field = %q", e.Fields[0].Value)
	}
	if !strings.Contains(e.Fields[3].Value, "**Cores:**") {
		t.Errorf("system field = %q", e.Fields[3].Value)
	}
}

func TestHandleCommand_StatsWithoutGateway(t *testing.T) {
	h := NewHandler(routing.New(), nil, nil)
	reply := h.HandleCommand(context.Background(), bus.CommandInvocation{Name: bus.CommandStats})
	if len(reply.Embeds) != 1 || !strings.Contains(reply.Embeds[0].Fields[2].Value, "Total guilds: 0") {
		t.Errorf("reply = %+v", reply)
	}
}

func TestHandleCommand_AllowList(t *testing.T) {
	state := routing.New()
	h := NewHandler(state, nil, []string{"admin"})

	reply := h.HandleCommand(context.Background(), bus.CommandInvocation{Name: bus.CommandSetChannel, UserID: "random", TargetID: "1"})
	if reply.Content != deniedReply || !reply.Ephemeral {
		t.Errorf("reply = %+v, want denial", reply)
	}
	if _, ok := state.Active(); ok {
		t.Error("denied command must not change state")
	}

	h.HandleCommand(context.Background(), bus.CommandInvocation{Name: bus.CommandSetChannel, UserID: "admin", TargetID: "1"})
	if !state.IsActive("1") {
		t.Error("allowed user should set the channel")
	}
}

func TestHandleCommand_Unknown(t *testing.T) {
	h := NewHandler(routing.New(), nil, nil)
	reply := h.HandleCommand(context.Background(), bus.CommandInvocation{Name: "nope"})
	if !strings.Contains(reply.Content, "nope") {
		t.Errorf("reply = %q", reply.Content)
	}
}
