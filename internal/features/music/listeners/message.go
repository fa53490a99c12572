package listeners

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/kampita/internal/catalog"
	dashboard "github.com/hxnx/kampita/internal/features/dashboard"
	search "github.com/hxnx/kampita/internal/features/music/search"
	shared "github.com/hxnx/kampita/internal/features/shared"
	log "github.com/sirupsen/logrus"
)

const dashboardAutoDeleteDelay = 30 * time.Second

// HandleMessage turns plain text typed in the dashboard channel into a
// catalog search. Replies and the typed message are cleaned up after a delay
// so the panel stays on top.
func (h *Handler) HandleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if s == nil || m == nil || m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	if !h.isDashboardChannel(s, m.GuildID, m.ChannelID) {
		return
	}

	content := strings.TrimSpace(m.Content)
	if content == "" {
		return
	}
	if strings.HasPrefix(content, "/") {
		scheduleDelete(s, m.ChannelID, m.ID, dashboardAutoDeleteDelay)
		return
	}

	logger := log.WithFields(log.Fields{"guild": m.GuildID, "query": content})

	loading, err := s.ChannelMessageSendComplex(m.ChannelID, replyTo(m, shared.NoticeComponents("🔎 **Searching**", "Looking for your song…")))
	if err != nil {
		logger.WithError(err).Debug("failed to send search placeholder")
	}

	ctx, cancel := context.WithTimeout(context.Background(), pickTimeout)
	defer cancel()

	var components []discordgo.MessageComponent
	page, err := h.Catalog.SearchSongs(ctx, content, catalog.PageOptions{Limit: search.MaxResults})
	switch {
	case err != nil:
		logger.WithError(err).Warn("dashboard search failed")
		components = shared.NoticeComponents("Search failed", "The catalog did not answer. Try again in a moment.")
	case len(page.Results) == 0:
		components = shared.NoticeComponents("No results", fmt.Sprintf("Nothing matched **%s**.", shared.EscapeMarkdown(content)))
	default:
		session := h.Searches.Save(search.Session{
			GuildID: m.GuildID,
			UserID:  m.Author.ID,
			Query:   content,
			Results: catalog.ToTracks(page.Results, h.Placeholder),
		})
		components = search.BuildSearchComponents(session)
	}

	replyID := ""
	if loading != nil {
		if _, err := s.ChannelMessageEditComplex(&discordgo.MessageEdit{
			ID:         loading.ID,
			Channel:    m.ChannelID,
			Components: &components,
			Flags:      discordgo.MessageFlagsIsComponentsV2,
		}); err != nil {
			logger.WithError(err).Debug("failed to edit search placeholder")
		}
		replyID = loading.ID
	} else if msg, err := s.ChannelMessageSendComplex(m.ChannelID, replyTo(m, components)); err == nil {
		replyID = msg.ID
	} else {
		logger.WithError(err).Warn("failed to send search results")
	}

	scheduleDelete(s, m.ChannelID, replyID, dashboardAutoDeleteDelay)
	scheduleDelete(s, m.ChannelID, m.ID, dashboardAutoDeleteDelay)
}

func (h *Handler) isDashboardChannel(s *discordgo.Session, guildID, channelID string) bool {
	if h.Dashboard != nil {
		if entry, ok := h.Dashboard.Entry(guildID); ok && entry.ChannelID != "" {
			return entry.ChannelID == channelID
		}
	}

	ch, err := s.State.Channel(channelID)
	if err != nil {
		ch, err = s.Channel(channelID)
	}
	return err == nil && ch != nil && ch.Name == dashboard.DefaultChannelName
}

func replyTo(m *discordgo.MessageCreate, components []discordgo.MessageComponent) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Components: components,
		Flags:      discordgo.MessageFlagsIsComponentsV2,
		Reference:  &discordgo.MessageReference{MessageID: m.ID, ChannelID: m.ChannelID, GuildID: m.GuildID},
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse:       []discordgo.AllowedMentionType{},
			RepliedUser: false,
		},
	}
}

func scheduleDelete(s *discordgo.Session, channelID, messageID string, delay time.Duration) {
	if s == nil || channelID == "" || messageID == "" {
		return
	}
	time.AfterFunc(delay, func() {
		if err := s.ChannelMessageDelete(channelID, messageID); err != nil {
			log.WithField("message", messageID).WithError(err).Debug("failed to delete dashboard channel message")
		}
	})
}
