package listeners

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/kampita/internal/catalog"
	dashboard "github.com/hxnx/kampita/internal/features/dashboard"
	commands "github.com/hxnx/kampita/internal/features/music/commands"
	queueview "github.com/hxnx/kampita/internal/features/music/queueview"
	search "github.com/hxnx/kampita/internal/features/music/search"
	"github.com/hxnx/kampita/internal/music"
)

// Handler serves the music message components and the dashboard channel.
type Handler struct {
	Registry     *music.Registry
	Catalog      *catalog.Client
	Dashboard    *dashboard.Service
	Searches     *search.Store
	Placeholder  string
	MaxQueueSize int
}

// RouteComponent handles the interaction if it belongs to a music component.
func (h *Handler) RouteComponent(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	if i.Type != discordgo.InteractionMessageComponent {
		return false
	}

	customID := i.MessageComponentData().CustomID
	switch {
	case strings.HasPrefix(customID, search.PlayCustomIDPrefix+":"),
		strings.HasPrefix(customID, search.QueueCustomIDPrefix+":"):
		h.handleSearchPick(s, i, customID)
	case strings.HasPrefix(customID, queueview.CustomIDPrefix+":"):
		h.handleQueueComponent(s, i, customID)
	case strings.HasPrefix(customID, commands.SongCustomIDPrefix+":"):
		h.handleSongButton(s, i, customID)
	default:
		return false
	}
	return true
}
