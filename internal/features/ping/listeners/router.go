package listeners

import (
	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/kampita/internal/features/ping"
	"github.com/hxnx/kampita/internal/music"
)

type Handler struct {
	Registry *music.Registry
}

func (h *Handler) Route(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	if i.Type != discordgo.InteractionMessageComponent {
		return false
	}
	if i.MessageComponentData().CustomID != ping.RefreshCustomID {
		return false
	}

	players := 0
	if h.Registry != nil {
		players = h.Registry.Count()
	}
	ping.RespondPing(s, i, discordgo.InteractionResponseUpdateMessage, players)
	return true
}
