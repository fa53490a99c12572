package listeners

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	queueview "github.com/hxnx/kampita/internal/features/music/queueview"
	shared "github.com/hxnx/kampita/internal/features/shared"
)

func (h *Handler) handleQueue(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		shared.RespondEphemeral(s, i, "This button only works in a server.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	snapshot := h.Registry.Get(ctx, i.GuildID).Snapshot()
	if len(snapshot.Queue) == 0 {
		shared.RespondEphemeral(s, i, "The queue is empty.")
		return
	}

	components, _ := queueview.BuildQueueComponents(snapshot, 1)
	shared.RespondComponents(s, i, components, true)
}
