package listeners

import (
	"context"

	"github.com/bwmarrin/discordgo"
	commands "github.com/hxnx/kampita/internal/features/music/commands"
	shared "github.com/hxnx/kampita/internal/features/shared"
	log "github.com/sirupsen/logrus"
)

// handleSongButton serves the Play now and Add to queue buttons of a song
// card. The card stays in place; the outcome is sent as a followup.
func (h *Handler) handleSongButton(s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	action, songID, ok := commands.ParseSongCustomID(customID)
	if !ok {
		shared.RespondEphemeral(s, i, "Invalid song request.")
		return
	}

	userID := shared.GetInteractionUserID(i)
	if userID == "" || i.GuildID == "" {
		shared.RespondEphemeral(s, i, "Could not identify you.")
		return
	}

	if err := shared.DeferEphemeral(s, i); err != nil {
		log.WithError(err).Warn("song button: defer failed")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), pickTimeout)
	defer cancel()

	track, err := h.Catalog.TrackByID(ctx, songID, h.Placeholder)
	if err != nil {
		shared.FollowupEphemeral(s, i, pickError(i.GuildID, err))
		return
	}

	card, err := h.startOrQueue(ctx, s, i.GuildID, userID, track, action == commands.SongActionPlay)
	if err != nil {
		shared.FollowupEphemeral(s, i, pickError(i.GuildID, err))
		return
	}
	shared.FollowupComponents(s, i, card, true)
}
