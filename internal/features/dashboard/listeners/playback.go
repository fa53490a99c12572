package listeners

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"
	shared "github.com/hxnx/kampita/internal/features/shared"
	"github.com/hxnx/kampita/internal/music"
	log "github.com/sirupsen/logrus"
)

const voiceJoinTimeout = 10 * time.Second

// handlePlayback joins the presser's voice channel before running op so a
// restored player has somewhere to play.
func (h *Handler) handlePlayback(s *discordgo.Session, i *discordgo.InteractionCreate, op func(*music.Manager)) {
	if i.GuildID == "" {
		shared.RespondEphemeral(s, i, "This button only works in a server.")
		return
	}

	userID := shared.GetInteractionUserID(i)
	if userID == "" {
		shared.RespondEphemeral(s, i, "Could not identify you.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), voiceJoinTimeout)
	defer cancel()

	if _, err := h.Registry.JoinUser(ctx, s, i.GuildID, userID); err != nil {
		if errors.Is(err, music.ErrNoVoiceChannel) {
			shared.RespondEphemeral(s, i, "Join a voice channel first.")
			return
		}
		log.WithField("guild", i.GuildID).WithError(err).Warn("dashboard: failed to join voice channel")
		shared.RespondEphemeral(s, i, "Could not join your voice channel.")
		return
	}

	op(h.Registry.Get(ctx, i.GuildID))
	h.Dashboard.RespondUpdate(s, i)
}

func (h *Handler) handleSetting(s *discordgo.Session, i *discordgo.InteractionCreate, op func(*music.Manager)) {
	if i.GuildID == "" {
		shared.RespondEphemeral(s, i, "This button only works in a server.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), voiceJoinTimeout)
	defer cancel()

	op(h.Registry.Get(ctx, i.GuildID))
	h.Dashboard.RespondUpdate(s, i)
}
