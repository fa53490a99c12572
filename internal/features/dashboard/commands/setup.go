package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/kampita/internal/database"
	dashboard "github.com/hxnx/kampita/internal/features/dashboard"
	shared "github.com/hxnx/kampita/internal/features/shared"
	log "github.com/sirupsen/logrus"
)

type Commands struct {
	Dashboard *dashboard.Service
}

// Setup creates (or reuses) the dashboard channel and posts a fresh panel in
// it.
func (c *Commands) Setup(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		shared.RespondEphemeral(s, i, "This command only works in a server.")
		return
	}

	if !hasManageChannelsPermission(i) {
		shared.RespondEphemeral(s, i, "You need the Manage Channels permission to set up the dashboard.")
		return
	}

	categoryID, channelName := parseSetupOptions(i)
	if channelName == "" {
		channelName = dashboard.DefaultChannelName
	}

	logger := log.WithField("guild", i.GuildID)

	channelID := ""
	if categoryID == "" && channelName == dashboard.DefaultChannelName {
		if entry, ok := c.Dashboard.Entry(i.GuildID); ok && entry.ChannelID != "" {
			if _, err := s.Channel(entry.ChannelID); err == nil {
				channelID = entry.ChannelID
			}
		}
	}

	if channelID == "" {
		channels, err := s.GuildChannels(i.GuildID)
		if err == nil {
			for _, ch := range channels {
				if ch.Type == discordgo.ChannelTypeGuildText && ch.Name == channelName {
					if categoryID == "" || ch.ParentID == categoryID {
						channelID = ch.ID
						break
					}
				}
			}
		}
	}

	if channelID == "" {
		channel, err := s.GuildChannelCreateComplex(i.GuildID, discordgo.GuildChannelCreateData{
			Name:     channelName,
			Type:     discordgo.ChannelTypeGuildText,
			ParentID: categoryID,
		})
		if err != nil {
			logger.WithError(err).Warn("failed to create dashboard channel")
			shared.RespondEphemeral(s, i, "Could not create the dashboard channel.")
			return
		}
		channelID = channel.ID
	}

	if err := c.Dashboard.DeletePrevious(s, i.GuildID); err != nil {
		logger.WithError(err).Debug("failed to delete previous dashboard message")
	}

	message, err := s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Components: c.Dashboard.Components(i.GuildID),
		Flags:      discordgo.MessageFlagsIsComponentsV2,
	})
	if err != nil {
		logger.WithError(err).Warn("failed to send dashboard message")
		shared.RespondEphemeral(s, i, "Could not post the dashboard message.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c.Dashboard.SetEntry(ctx, database.DashboardEntry{
		GuildID:   i.GuildID,
		ChannelID: channelID,
		MessageID: message.ID,
		UpdatedAt: time.Now(),
	})
	c.Dashboard.RefreshQuietly(s, i.GuildID)

	shared.RespondEphemeral(s, i, fmt.Sprintf("Dashboard ready in <#%s>.", channelID))
}

func parseSetupOptions(i *discordgo.InteractionCreate) (string, string) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return "", ""
	}

	var categoryID, channelName string
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "category":
			categoryID = opt.StringValue()
		case "channel_name":
			channelName = opt.StringValue()
		}
	}
	return categoryID, channelName
}

func hasManageChannelsPermission(i *discordgo.InteractionCreate) bool {
	if i.Member == nil {
		return false
	}
	return i.Member.Permissions&discordgo.PermissionManageChannels != 0
}
