package agent

import (
	"regexp"
	"strings"

	"github.com/nextlevelbuilder/gptrelay/internal/bus"
	"github.com/nextlevelbuilder/gptrelay/internal/providers"
)

var (
	whitespaceRun = regexp.MustCompile(`[\s\v\x{FEFF}\p{Z}]+`)
	nonWordChars  = regexp.MustCompile(`[^\w\s]`)
)

// NormalizeSpeakerName turns a username into a speaker identifier: whitespace runs
// become a single underscore first, then everything that is not a word character
// or whitespace is dropped.
func NormalizeSpeakerName(name string) string {
	name = whitespaceRun.ReplaceAllString(name, "_")
	return nonWordChars.ReplaceAllString(name, "")
}

// WindowInput is everything BuildWindow needs to assemble a prompt window.
type WindowInput struct {
	SystemPrompt string
	SelfID       string               // the bot's own user ID
	IgnorePrefix string               // messages starting with it are skipped
	Trigger      bus.InboundMessage   // the message being answered
	History      []bus.InboundMessage // newest first, as fetched from the platform
	Limit        int                  // history window size
}

// BuildWindow assembles the role-tagged prompt window: one system turn, then the
// admitted history turns oldest first. Only two speakers are admitted: the bot itself
// (assistant turns) and the author of the triggering message (user turns).
func BuildWindow(in WindowInput) []providers.Message {
	history := ensureTrigger(in.History, in.Trigger, in.Limit)

	window := make([]providers.Message, 0, len(history)+1)
	window = append(window, providers.Message{
		Role:    providers.RoleSystem,
		Content: in.SystemPrompt,
	})

	userName := NormalizeSpeakerName(in.Trigger.Author.Username)

	for i := len(history) - 1; i >= 0; i-- {
		m := history[i]
		if in.IgnorePrefix != "" && strings.HasPrefix(m.Content, in.IgnorePrefix) {
			continue
		}

		switch {
		case in.SelfID != "" && m.Author.ID == in.SelfID:
			window = append(window, providers.Message{
				Role:    providers.RoleAssistant,
				Content: m.Content,
				Name:    NormalizeSpeakerName(m.Author.Username),
			})
		case m.Author.Bot:
			// other bots never enter the window
		case m.Author.ID == in.Trigger.Author.ID:
			window = append(window, providers.Message{
				Role:    providers.RoleUser,
				Content: m.Content,
				Name:    userName,
			})
		}
	}

	return window
}

// ensureTrigger guarantees the triggering message is part of the newest-first
// history exactly once. The platform normally returns it as the newest entry; when a
// page comes back without it, it is put in front and the oldest entry is dropped to
// stay within limit.
func ensureTrigger(history []bus.InboundMessage, trigger bus.InboundMessage, limit int) []bus.InboundMessage {
	if trigger.ID == "" {
		return history
	}
	for _, m := range history {
		if m.ID == trigger.ID {
			return history
		}
	}

	out := make([]bus.InboundMessage, 0, len(history)+1)
	out = append(out, trigger)
	out = append(out, history...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
