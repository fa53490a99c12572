package listeners

import (
	"strconv"

	"github.com/bwmarrin/discordgo"
	queueview "github.com/hxnx/kampita/internal/features/music/queueview"
	shared "github.com/hxnx/kampita/internal/features/shared"
)

// handleQueueComponent serves the paging buttons and the jump and remove
// menus of the queue view, then redraws the page in place.
func (h *Handler) handleQueueComponent(s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	action, page, ok := queueview.ParseCustomID(customID)
	if !ok {
		shared.RespondEphemeral(s, i, "Invalid queue request.")
		return
	}
	if i.GuildID == "" {
		shared.RespondEphemeral(s, i, "This only works in a server.")
		return
	}

	manager, ok := h.Registry.Lookup(i.GuildID)
	if !ok {
		shared.UpdateComponents(s, i, notice("Nothing is playing."))
		return
	}

	values := i.MessageComponentData().Values
	switch action {
	case queueview.ActionJump:
		if len(values) == 0 {
			break
		}
		index, err := strconv.Atoi(values[0])
		if err != nil || !manager.PlayTrack(index) {
			shared.RespondEphemeral(s, i, "That track is no longer in the queue.")
			return
		}
		h.refresh(s, i.GuildID)
	case queueview.ActionRemove:
		if len(values) == 0 {
			break
		}
		manager.RemoveFromQueue(values[0])
		h.refresh(s, i.GuildID)
	}

	snap := manager.Snapshot()
	if len(snap.Queue) == 0 {
		shared.UpdateComponents(s, i, notice("The queue is empty."))
		return
	}

	components, _ := queueview.BuildQueueComponents(snap, page)
	shared.UpdateComponents(s, i, components)
}
