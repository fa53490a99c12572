package commands

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/kampita/internal/catalog"
	dashboard "github.com/hxnx/kampita/internal/features/dashboard"
	search "github.com/hxnx/kampita/internal/features/music/search"
	shared "github.com/hxnx/kampita/internal/features/shared"
	"github.com/hxnx/kampita/internal/music"
	log "github.com/sirupsen/logrus"
)

const (
	catalogTimeout   = 20 * time.Second
	voiceJoinTimeout = 10 * time.Second
)

// Handler serves the /music subcommands.
type Handler struct {
	Registry     *music.Registry
	Catalog      *catalog.Client
	Dashboard    *dashboard.Service
	Searches     *search.Store
	Placeholder  string
	MaxQueueSize int
}

func (h *Handler) Handle(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	if i.GuildID == "" {
		shared.RespondEphemeral(s, i, "This command only works in a server.")
		return
	}

	switch sub.Name {
	case "play":
		h.Play(s, i, sub.Options)
	case "search":
		h.Search(s, i, sub.Options)
	case "queue":
		h.Queue(s, i, sub.Options)
	case "skip":
		h.Skip(s, i)
	case "previous":
		h.Previous(s, i)
	case "pause":
		h.Pause(s, i)
	case "seek":
		h.Seek(s, i, sub.Options)
	case "volume":
		h.Volume(s, i, sub.Options)
	case "shuffle":
		h.Shuffle(s, i)
	case "repeat":
		h.Repeat(s, i)
	case "nowplaying":
		h.NowPlaying(s, i)
	case "history":
		h.History(s, i)
	case "stop":
		h.Stop(s, i)
	case "song":
		h.Song(s, i, sub.Options)
	default:
		shared.RespondEphemeral(s, i, "Unknown music command.")
	}
}

// joinedManager connects the bot to the caller's voice channel and returns
// the guild's player. On failure it has already told the user why.
func (h *Handler) joinedManager(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, reply func(string)) (*music.Manager, bool) {
	userID := shared.GetInteractionUserID(i)
	if userID == "" {
		reply("Could not identify you.")
		return nil, false
	}

	if _, err := h.Registry.JoinUser(ctx, s, i.GuildID, userID); err != nil {
		if errors.Is(err, music.ErrNoVoiceChannel) {
			reply("Join a voice channel first.")
			return nil, false
		}
		log.WithField("guild", i.GuildID).WithError(err).Warn("failed to join voice channel")
		reply("Could not join your voice channel.")
		return nil, false
	}

	return h.Registry.Get(ctx, i.GuildID), true
}

func (h *Handler) manager(i *discordgo.InteractionCreate) *music.Manager {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return h.Registry.Get(ctx, i.GuildID)
}

func (h *Handler) refresh(s *discordgo.Session, guildID string) {
	if h.Dashboard != nil {
		h.Dashboard.RefreshQuietly(s, guildID)
	}
}

func (h *Handler) queueFull(m *music.Manager) bool {
	return h.MaxQueueSize > 0 && len(m.Snapshot().Queue) >= h.MaxQueueSize
}
