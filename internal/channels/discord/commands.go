package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/nextlevelbuilder/gptrelay/internal/bus"
)

// slashCommands returns the application commands registered on Ready.
func slashCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        bus.CommandSetChannel,
			Description: "Set the channel where the bot answers every message",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "The channel to relay",
					Required:    true,
				},
			},
		},
		{
			Name:        bus.CommandResetChannel,
			Description: "Stop relaying messages in the active channel",
		},
		{
			Name:        bus.CommandStats,
			Description: "Show bot statistics",
		},
	}
}

// registerCommands overwrites the bot's slash commands, globally or in the
// configured guild.
func (c *Channel) registerCommands(ctx context.Context, appID string) error {
	created, err := c.api.ApplicationCommandBulkOverwrite(appID, c.config.GuildID, slashCommands(), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("bulk overwrite commands: %w", err)
	}
	scope := "global"
	if c.config.GuildID != "" {
		scope = "guild:" + c.config.GuildID
	}
	slog.Info("discord slash commands registered", "count", len(created), "scope", scope)
	return nil
}

func (c *Channel) handleInteraction(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Interaction == nil {
		return
	}
	c.onInteraction(c.handlerCtx(), i.Interaction)
}

func (c *Channel) onInteraction(ctx context.Context, i *discordgo.Interaction) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	handler := c.CommandHandler()
	if handler == nil {
		return
	}

	cmd := toInvocation(i)
	slog.Debug("discord command received", "command", cmd.Name, "user_id", cmd.UserID, "channel_id", cmd.ChannelID)

	reply := handler.HandleCommand(ctx, cmd)

	data := &discordgo.InteractionResponseData{
		Content: reply.Content,
		Embeds:  toEmbeds(reply.Embeds),
	}
	if reply.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := c.api.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}, discordgo.WithContext(ctx))
	if err != nil {
		slog.Error("discord: command reply failed", "command", cmd.Name, "error", err)
	}
}

func toInvocation(i *discordgo.Interaction) bus.CommandInvocation {
	data := i.ApplicationCommandData()
	cmd := bus.CommandInvocation{
		Name:      data.Name,
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
	}
	switch {
	case i.Member != nil && i.Member.User != nil:
		cmd.UserID = i.Member.User.ID
	case i.User != nil:
		cmd.UserID = i.User.ID
	}
	for _, opt := range data.Options {
		if opt.Type == discordgo.ApplicationCommandOptionChannel {
			cmd.TargetID = opt.ChannelValue(nil).ID
		}
	}
	return cmd
}
