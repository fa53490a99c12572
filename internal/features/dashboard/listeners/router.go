package listeners

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	dashboard "github.com/hxnx/kampita/internal/features/dashboard"
	"github.com/hxnx/kampita/internal/music"
)

type Handler struct {
	Dashboard *dashboard.Service
	Registry  *music.Registry
}

func (h *Handler) Route(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	if i.Type != discordgo.InteractionMessageComponent {
		return false
	}

	customID := i.MessageComponentData().CustomID
	if !strings.HasPrefix(customID, "dashboard_") {
		return false
	}

	h.Handle(s, i)
	return true
}

func (h *Handler) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.MessageComponentData().CustomID {
	case dashboard.CustomIDPrevious:
		h.handlePlayback(s, i, (*music.Manager).PlayPrevious)
	case dashboard.CustomIDToggle:
		h.handlePlayback(s, i, (*music.Manager).TogglePlay)
	case dashboard.CustomIDNext:
		h.handlePlayback(s, i, (*music.Manager).PlayNext)
	case dashboard.CustomIDShuffle:
		h.handleSetting(s, i, (*music.Manager).ToggleShuffle)
	case dashboard.CustomIDRepeat:
		h.handleSetting(s, i, (*music.Manager).ToggleRepeat)
	case dashboard.CustomIDQueue:
		h.handleQueue(s, i)
	}
}
