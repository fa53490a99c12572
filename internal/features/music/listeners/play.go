package listeners

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/kampita/internal/catalog"
	commands "github.com/hxnx/kampita/internal/features/music/commands"
	shared "github.com/hxnx/kampita/internal/features/shared"
	"github.com/hxnx/kampita/internal/music"
	log "github.com/sirupsen/logrus"
)

const (
	pickTimeout      = 20 * time.Second
	voiceJoinTimeout = 10 * time.Second
)

var errQueueFull = errors.New("queue is full")

// startOrQueue plays track now, or appends it to the queue. A queued track
// starts right away when nothing is current. It returns the card to show.
func (h *Handler) startOrQueue(ctx context.Context, s *discordgo.Session, guildID, userID string, track music.Track, playNow bool) ([]discordgo.MessageComponent, error) {
	if track.URL == "" {
		resolved, err := h.Catalog.TrackByID(ctx, track.ID, h.Placeholder)
		if err != nil {
			return nil, err
		}
		track = resolved
	}

	manager := h.Registry.Get(ctx, guildID)
	snap := manager.Snapshot()
	startNow := playNow || snap.CurrentTrack == nil

	if !startNow && h.MaxQueueSize > 0 && len(snap.Queue) >= h.MaxQueueSize {
		return nil, errQueueFull
	}

	if startNow {
		joinCtx, cancel := context.WithTimeout(ctx, voiceJoinTimeout)
		defer cancel()
		if _, err := h.Registry.JoinUser(joinCtx, s, guildID, userID); err != nil {
			return nil, err
		}
		manager.SetCurrentTrack(&track)
		h.refresh(s, guildID)
		return commands.TrackCard("▶️ **Now playing**", track, ""), nil
	}

	manager.AddToQueue(track)
	h.refresh(s, guildID)
	position := len(manager.Snapshot().Queue)
	return commands.TrackCard("📋 **Added to queue**", track, fmt.Sprintf("📍 Position #%d", position)), nil
}

// pickError turns a startOrQueue failure into a message for the user.
func pickError(guildID string, err error) string {
	switch {
	case errors.Is(err, music.ErrNoVoiceChannel):
		return "Join a voice channel first."
	case errors.Is(err, errQueueFull):
		return "The queue is full."
	case errors.Is(err, catalog.ErrSongNotFound):
		return "That song can't be streamed."
	default:
		log.WithField("guild", guildID).WithError(err).Warn("failed to start track")
		return "Could not play that track."
	}
}

func (h *Handler) refresh(s *discordgo.Session, guildID string) {
	if h.Dashboard != nil {
		h.Dashboard.RefreshQuietly(s, guildID)
	}
}

func notice(content string) []discordgo.MessageComponent {
	return shared.NoticeComponents("Notice", content)
}
