package commands

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	dashboard "github.com/hxnx/kampita/internal/features/dashboard"
	queueview "github.com/hxnx/kampita/internal/features/music/queueview"
	shared "github.com/hxnx/kampita/internal/features/shared"
	"github.com/hxnx/kampita/internal/music"
)

const historyLimit = 15

func (h *Handler) Queue(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	page := shared.GetOptionInt(options, "page")
	if page <= 0 {
		page = 1
	}

	snapshot := h.manager(i).Snapshot()
	if len(snapshot.Queue) == 0 {
		shared.RespondEphemeral(s, i, "The queue is empty.")
		return
	}

	components, _ := queueview.BuildQueueComponents(snapshot, page)
	shared.RespondComponents(s, i, components, true)
}

func (h *Handler) NowPlaying(s *discordgo.Session, i *discordgo.InteractionCreate) {
	snap := h.manager(i).Snapshot()
	if snap.CurrentTrack == nil {
		shared.RespondEphemeral(s, i, "Nothing is playing.")
		return
	}

	duration := snap.Duration
	if duration <= 0 {
		duration = snap.CurrentTrack.DurationValue()
	}

	footer := fmt.Sprintf("`%s` `%s` `%s`\n%s",
		shared.FormatPosition(snap.Position),
		shared.ProgressBar(snap.Position, duration, 16),
		shared.FormatDuration(duration),
		statusLine(snap),
	)
	shared.RespondComponents(s, i, TrackCard("🎧 **Now playing**", *snap.CurrentTrack, footer), true)
}

func (h *Handler) History(s *discordgo.Session, i *discordgo.InteractionCreate) {
	snap := h.manager(i).Snapshot()
	if len(snap.History) == 0 {
		shared.RespondEphemeral(s, i, "Nothing has been played yet.")
		return
	}

	shared.RespondComponents(s, i, shared.NoticeComponents("🕘 **Recently played**", historyList(snap.History, historyLimit)), true)
}

// historyList renders the most recent tracks first.
func historyList(history []music.Track, limit int) string {
	lines := make([]string, 0, min(len(history), limit))
	for idx, track := range history {
		if idx >= limit {
			break
		}
		lines = append(lines, fmt.Sprintf("%d. **%s** · %s",
			idx+1,
			shared.EscapeMarkdown(shared.Truncate(track.Name, 80)),
			shared.EscapeMarkdown(shared.Truncate(track.Artist, 60))))
	}
	if len(history) > limit {
		lines = append(lines, fmt.Sprintf("…and %d more", len(history)-limit))
	}
	return strings.Join(lines, "\n")
}

func statusLine(snap music.Snapshot) string {
	state := "⏸️ Paused"
	switch snap.Status {
	case music.StatusPlaying:
		state = "▶️ Playing"
	case music.StatusLoading:
		state = "⏳ Loading"
	}

	shuffle := "off"
	if snap.Shuffle {
		shuffle = "on"
	}
	return fmt.Sprintf("%s · 🔁 %s · 🔀 %s · 🔊 %d%% · 📋 %d queued",
		state, dashboard.RepeatLabel(snap.Repeat), shuffle, percent(snap.Volume), len(snap.Queue))
}
