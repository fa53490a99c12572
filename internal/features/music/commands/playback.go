package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	dashboard "github.com/hxnx/kampita/internal/features/dashboard"
	shared "github.com/hxnx/kampita/internal/features/shared"
	"github.com/hxnx/kampita/internal/music"
)

func (h *Handler) Skip(s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.withVoice(s, i, func(m *music.Manager) string {
		if m.Snapshot().CurrentTrack == nil {
			return "Nothing is playing."
		}
		m.PlayNext()
		after := m.Snapshot()
		if after.Status == music.StatusPaused || after.Status == music.StatusIdle {
			return "Skipped. The queue has ended."
		}
		return describeCurrent(after, "Skipped.")
	})
}

func (h *Handler) Previous(s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.withVoice(s, i, func(m *music.Manager) string {
		before := m.Snapshot()
		if before.CurrentTrack == nil && len(before.History) == 0 {
			return "There is nothing to go back to."
		}
		m.PlayPrevious()
		return describeCurrent(m.Snapshot(), "Went back.")
	})
}

func (h *Handler) Pause(s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.withVoice(s, i, func(m *music.Manager) string {
		if m.Snapshot().CurrentTrack == nil {
			return "Nothing is playing."
		}
		m.TogglePlay()
		switch m.Snapshot().Status {
		case music.StatusPlaying:
			return "▶️ Resumed."
		case music.StatusLoading:
			return "⏳ Loading…"
		default:
			return "⏸️ Paused."
		}
	})
}

func (h *Handler) Seek(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	seconds := shared.GetOptionInt64(options, "seconds")
	if seconds < 0 {
		shared.RespondEphemeral(s, i, "Seconds must not be negative.")
		return
	}

	m := h.manager(i)
	if m.Snapshot().CurrentTrack == nil {
		shared.RespondEphemeral(s, i, "Nothing is playing.")
		return
	}

	m.SeekTo(time.Duration(seconds) * time.Second)
	h.refresh(s, i.GuildID)
	shared.RespondEphemeral(s, i, fmt.Sprintf("⏩ Seeked to %s.", shared.FormatPosition(m.Snapshot().Position)))
}

func (h *Handler) Volume(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	m := h.manager(i)

	if !shared.HasOption(options, "percent") {
		shared.RespondEphemeral(s, i, fmt.Sprintf("🔊 Volume is %d%%.", percent(m.Snapshot().Volume)))
		return
	}

	p := shared.GetOptionInt64(options, "percent")
	m.SetVolume(float64(p) / 100)
	h.refresh(s, i.GuildID)
	shared.RespondEphemeral(s, i, fmt.Sprintf("🔊 Volume set to %d%%.", percent(m.Snapshot().Volume)))
}

func (h *Handler) Shuffle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	m := h.manager(i)
	m.ToggleShuffle()
	h.refresh(s, i.GuildID)

	if m.Snapshot().Shuffle {
		shared.RespondEphemeral(s, i, "🔀 Shuffle on.")
		return
	}
	shared.RespondEphemeral(s, i, "🔀 Shuffle off.")
}

func (h *Handler) Repeat(s *discordgo.Session, i *discordgo.InteractionCreate) {
	m := h.manager(i)
	m.ToggleRepeat()
	h.refresh(s, i.GuildID)
	shared.RespondEphemeral(s, i, fmt.Sprintf("🔁 Repeat: **%s**.", dashboard.RepeatLabel(m.Snapshot().Repeat)))
}

// Stop clears the current track and the queue. History is kept.
func (h *Handler) Stop(s *discordgo.Session, i *discordgo.InteractionCreate) {
	m := h.manager(i)
	snap := m.Snapshot()
	if snap.CurrentTrack == nil && len(snap.Queue) == 0 {
		shared.RespondEphemeral(s, i, "Nothing to stop.")
		return
	}

	m.ClearQueue()
	m.SetCurrentTrack(nil)
	h.refresh(s, i.GuildID)
	shared.RespondEphemeral(s, i, "⏹️ Stopped and cleared the queue.")
}

// withVoice runs op after joining the caller's voice channel and replies
// with the message op returns.
func (h *Handler) withVoice(s *discordgo.Session, i *discordgo.InteractionCreate, op func(*music.Manager) string) {
	ctx, cancel := context.WithTimeout(context.Background(), voiceJoinTimeout)
	defer cancel()

	m, ok := h.joinedManager(ctx, s, i, func(msg string) { shared.RespondEphemeral(s, i, msg) })
	if !ok {
		return
	}

	msg := op(m)
	h.refresh(s, i.GuildID)
	shared.RespondEphemeral(s, i, msg)
}

func describeCurrent(snap music.Snapshot, prefix string) string {
	if snap.CurrentTrack == nil {
		return prefix
	}
	return fmt.Sprintf("%s Now playing **%s** · %s", prefix,
		shared.EscapeMarkdown(snap.CurrentTrack.Name), shared.EscapeMarkdown(snap.CurrentTrack.Artist))
}

func percent(volume float64) int {
	return int(volume*100 + 0.5)
}
