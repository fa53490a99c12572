package commands

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const syncTrigger = "!sync"

// HandleSyncMessage re-registers the slash commands in the current guild when
// the bot owner sends !sync. It reports whether the message was consumed.
func (r *Router) HandleSyncMessage(s *discordgo.Session, m *discordgo.MessageCreate) bool {
	if s == nil || m == nil || m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return false
	}
	if strings.TrimSpace(m.Content) != syncTrigger {
		return false
	}

	logger := log.WithFields(log.Fields{"guild": m.GuildID, "user": m.Author.ID})

	if r.config.OwnerID == "" || m.Author.ID != r.config.OwnerID {
		r.reply(s, m.ChannelID, "Only the bot owner can use this command.")
		return true
	}

	appID := r.config.ApplicationID
	if appID == "" && s.State != nil && s.State.User != nil {
		appID = s.State.User.ID
	}
	if appID == "" {
		r.reply(s, m.ChannelID, "Command sync failed: the application ID is unknown.")
		return true
	}

	if _, err := RegisterCommands(s, appID, m.GuildID); err != nil {
		logger.WithError(err).Warn("command sync failed")
		r.reply(s, m.ChannelID, fmt.Sprintf("Command sync failed: %v", err))
		return true
	}

	logger.Info("synced commands to guild")
	r.reply(s, m.ChannelID, "Slash commands synced to this server.")
	return true
}

func (r *Router) reply(s *discordgo.Session, channelID, content string) {
	if _, err := s.ChannelMessageSend(channelID, content); err != nil {
		log.WithField("channel", channelID).WithError(err).Debug("failed to send sync reply")
	}
}
