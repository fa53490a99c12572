package listeners

import (
	"context"

	"github.com/bwmarrin/discordgo"
	search "github.com/hxnx/kampita/internal/features/music/search"
	shared "github.com/hxnx/kampita/internal/features/shared"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) handleSearchPick(s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	prefix, token, ok := search.ParseCustomID(customID)
	if !ok {
		shared.RespondEphemeral(s, i, "Invalid selection.")
		return
	}

	userID := shared.GetInteractionUserID(i)
	if userID == "" || i.GuildID == "" {
		shared.RespondEphemeral(s, i, "Could not identify you.")
		return
	}

	session, ok := h.Searches.Get(token)
	if !ok || len(session.Results) == 0 {
		shared.RespondEphemeral(s, i, "This search has expired. Search again.")
		return
	}
	if session.UserID != userID {
		shared.RespondEphemeral(s, i, "Only the person who searched can pick a result.")
		return
	}

	index, ok := search.PickIndex(i.MessageComponentData().Values, len(session.Results))
	if !ok {
		shared.RespondEphemeral(s, i, "Invalid selection.")
		return
	}

	if err := shared.DeferUpdate(s, i); err != nil {
		log.WithError(err).Warn("search pick: defer failed")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), pickTimeout)
	defer cancel()

	card, err := h.startOrQueue(ctx, s, i.GuildID, userID, session.Results[index], prefix == search.PlayCustomIDPrefix)
	if err != nil {
		shared.EditComponents(s, i, notice(pickError(i.GuildID, err)))
		return
	}

	h.Searches.Delete(token)
	shared.EditComponents(s, i, card)
}
