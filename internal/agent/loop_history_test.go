package agent

import (
	"fmt"
	"testing"

	"github.com/nextlevelbuilder/gptrelay/internal/bus"
	"github.com/nextlevelbuilder/gptrelay/internal/providers"
)

const testSystemPrompt = "You are a friendly chatbot."

var (
	botAuthor   = bus.Author{ID: "bot-1", Username: "Relay Bot", Bot: true}
	userAuthor  = bus.Author{ID: "user-1", Username: "alice smith"}
	otherHuman  = bus.Author{ID: "user-2", Username: "bob"}
	otherBot    = bus.Author{ID: "bot-2", Username: "music", Bot: true}
	testChannel = "chan-1"
)

func TestNormalizeSpeakerName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Foo  Bar!!", "Foo_Bar"},
		{"alice", "alice"},
		{"alice smith", "alice_smith"},
		{"  padded  ", "_padded_"},
		{"tab\tand\nnewline", "tab_and_newline"},
		{"a\vb", "a_b"},
		{"a\ufeffb", "a_b"},
		{"no\u00a0break", "no_break"},
		{"emoji 🎉 name", "emoji__name"},
		{"dots.and-dashes", "dotsanddashes"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeSpeakerName(tt.in); got != tt.want {
				t.Errorf("NormalizeSpeakerName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// newestFirst turns a chronological list into the order the platform returns.
func newestFirst(msgs []bus.InboundMessage) []bus.InboundMessage {
	out := make([]bus.InboundMessage, len(msgs))
	for i, m := range msgs {
		out[len(msgs)-1-i] = m
	}
	return out
}

func msgFrom(id string, a bus.Author, content string) bus.InboundMessage {
	return bus.InboundMessage{ID: id, ChannelID: testChannel, Author: a, Content: content}
}

func TestBuildWindow_InterleavedHistory(t *testing.T) {
	var chrono []bus.InboundMessage
	for i := 0; i < 15; i++ {
		a := userAuthor
		if i%2 == 1 {
			a = botAuthor
		}
		chrono = append(chrono, msgFrom(fmt.Sprintf("m%02d", i), a, fmt.Sprintf("msg %d", i)))
	}
	trigger := chrono[len(chrono)-1]

	window := BuildWindow(WindowInput{
		SystemPrompt: testSystemPrompt,
		SelfID:       botAuthor.ID,
		IgnorePrefix: "!",
		Trigger:      trigger,
		History:      newestFirst(chrono),
		Limit:        15,
	})

	if len(window) != 16 {
		t.Fatalf("len(window) = %d, want 16", len(window))
	}
	if window[0].Role != providers.RoleSystem || window[0].Content != testSystemPrompt {
		t.Errorf("window[0] = %+v, want system turn", window[0])
	}
	for i, m := range window[1:] {
		wantRole := providers.RoleUser
		wantName := "alice_smith"
		if i%2 == 1 {
			wantRole = providers.RoleAssistant
			wantName = "Relay_Bot"
		}
		if m.Role != wantRole {
			t.Errorf("turn %d role = %s, want %s", i, m.Role, wantRole)
		}
		if m.Name != wantName {
			t.Errorf("turn %d name = %q, want %q", i, m.Name, wantName)
		}
		if want := fmt.Sprintf("msg %d", i); m.Content != want {
			t.Errorf("turn %d content = %q, want %q", i, m.Content, want)
		}
	}
}

func TestBuildWindow_FiltersOthers(t *testing.T) {
	chrono := []bus.InboundMessage{
		msgFrom("1", otherHuman, "I am bob"),
		msgFrom("2", userAuthor, "first"),
		msgFrom("3", otherBot, "now playing"),
		msgFrom("4", botAuthor, "reply"),
		msgFrom("5", userAuthor, "!skip me"),
		msgFrom("6", botAuthor, "!also skipped"),
		msgFrom("7", otherHuman, "still bob"),
		msgFrom("8", userAuthor, "second"),
	}

	window := BuildWindow(WindowInput{
		SystemPrompt: testSystemPrompt,
		SelfID:       botAuthor.ID,
		IgnorePrefix: "!",
		Trigger:      chrono[len(chrono)-1],
		History:      newestFirst(chrono),
		Limit:        15,
	})

	want := []providers.Message{
		{Role: providers.RoleSystem, Content: testSystemPrompt},
		{Role: providers.RoleUser, Content: "first", Name: "alice_smith"},
		{Role: providers.RoleAssistant, Content: "reply", Name: "Relay_Bot"},
		{Role: providers.RoleUser, Content: "second", Name: "alice_smith"},
	}
	if len(window) != len(want) {
		t.Fatalf("window = %+v, want %+v", window, want)
	}
	for i := range want {
		if window[i] != want[i] {
			t.Errorf("window[%d] = %+v, want %+v", i, window[i], want[i])
		}
	}
}

func TestBuildWindow_SelfUnknownSkipsBotTurns(t *testing.T) {
	chrono := []bus.InboundMessage{
		msgFrom("1", botAuthor, "earlier answer"),
		msgFrom("2", userAuthor, "question"),
	}
	window := BuildWindow(WindowInput{
		SystemPrompt: testSystemPrompt,
		Trigger:      chrono[1],
		History:      newestFirst(chrono),
		Limit:        15,
	})
	if len(window) != 2 || window[1].Role != providers.RoleUser {
		t.Errorf("window = %+v, want system + user only", window)
	}
}

func TestBuildWindow_TriggerMissingFromFetch(t *testing.T) {
	trigger := msgFrom("new", userAuthor, "hello")

	t.Run("empty fetch", func(t *testing.T) {
		window := BuildWindow(WindowInput{
			SystemPrompt: testSystemPrompt,
			SelfID:       botAuthor.ID,
			Trigger:      trigger,
			Limit:        15,
		})
		got := providers.FlattenPrompt(window)
		if want := "System: You are a friendly chatbot.\nUser: hello"; got != want {
			t.Errorf("prompt = %q, want %q", got, want)
		}
	})

	t.Run("full page drops oldest", func(t *testing.T) {
		var chrono []bus.InboundMessage
		for i := 0; i < 3; i++ {
			chrono = append(chrono, msgFrom(fmt.Sprintf("old%d", i), userAuthor, fmt.Sprintf("old %d", i)))
		}
		window := BuildWindow(WindowInput{
			SystemPrompt: testSystemPrompt,
			SelfID:       botAuthor.ID,
			Trigger:      trigger,
			History:      newestFirst(chrono),
			Limit:        3,
		})
		if len(window) != 4 {
			t.Fatalf("len(window) = %d, want 4", len(window))
		}
		if window[1].Content != "old 1" {
			t.Errorf("oldest kept = %q, want \"old 1\"", window[1].Content)
		}
		if window[3].Content != "hello" {
			t.Errorf("newest = %q, want trigger", window[3].Content)
		}
	})

	t.Run("trigger present is not duplicated", func(t *testing.T) {
		window := BuildWindow(WindowInput{
			SystemPrompt: testSystemPrompt,
			SelfID:       botAuthor.ID,
			Trigger:      trigger,
			History:      []bus.InboundMessage{trigger},
			Limit:        15,
		})
		if len(window) != 2 {
			t.Errorf("len(window) = %d, want 2", len(window))
		}
	})
}
