package commands

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/kampita/config"
	"github.com/hxnx/kampita/internal/catalog"
	infocmd "github.com/hxnx/kampita/internal/features/botinfo/commands"
	dashboard "github.com/hxnx/kampita/internal/features/dashboard"
	dashboardcmd "github.com/hxnx/kampita/internal/features/dashboard/commands"
	dashboardlisteners "github.com/hxnx/kampita/internal/features/dashboard/listeners"
	musiccmd "github.com/hxnx/kampita/internal/features/music/commands"
	musiclisteners "github.com/hxnx/kampita/internal/features/music/listeners"
	search "github.com/hxnx/kampita/internal/features/music/search"
	pingcmd "github.com/hxnx/kampita/internal/features/ping/commands"
	pinglisteners "github.com/hxnx/kampita/internal/features/ping/listeners"
	shared "github.com/hxnx/kampita/internal/features/shared"
	"github.com/hxnx/kampita/internal/music"
	log "github.com/sirupsen/logrus"
)

var (
	minPage        = float64(1)
	minSeconds     = float64(0)
	minPercent     = float64(0)
	maxPercent     = float64(100)
	manageChannels = int64(discordgo.PermissionManageChannels)

	CommandList = []*discordgo.ApplicationCommand{
		{
			Name:        "ping",
			Description: "Check the bot's latency",
		},
		{
			Name:        "info",
			Description: "Show runtime information about the bot",
		},
		{
			Name:        "music",
			Description: "Play and manage music",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "play",
					Description: "Search the catalog and play the first result",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "query",
							Description: "Song title, artist or both",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "search",
					Description: "Search the catalog and pick a result",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "query",
							Description: "Song title, artist or both",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "queue",
					Description: "Show the queue",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "page",
							Description: "Page to show",
							MinValue:    &minPage,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "skip",
					Description: "Skip to the next track",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "previous",
					Description: "Go back to the previous track, or restart the current one",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "pause",
					Description: "Pause or resume playback",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "seek",
					Description: "Jump to a position in the current track",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "seconds",
							Description: "Position in seconds",
							Required:    true,
							MinValue:    &minSeconds,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "volume",
					Description: "Show or set the volume",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "percent",
							Description: "Volume from 0 to 100",
							MinValue:    &minPercent,
							MaxValue:    maxPercent,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "shuffle",
					Description: "Toggle shuffle",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "repeat",
					Description: "Cycle repeat: off, queue, track",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "nowplaying",
					Description: "Show the current track",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "history",
					Description: "Show recently played tracks",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "stop",
					Description: "Stop playback and clear the queue",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "song",
					Description: "Show details for a song",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "id",
							Description: "Catalog song id or link",
							Required:    true,
						},
					},
				},
			},
		},
		{
			Name:                     "dashboard",
			Description:              "Set up the Kampita dashboard channel",
			DefaultMemberPermissions: &manageChannels,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionChannel,
					Name:         "category",
					Description:  "Category to create the dashboard channel in",
					ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildCategory},
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "channel_name",
					Description: fmt.Sprintf("Dashboard channel name (default: %s)", dashboard.DefaultChannelName),
				},
			},
		},
	}
)

// Deps are the long-lived services the handlers share.
type Deps struct {
	Config    *config.Config
	Registry  *music.Registry
	Catalog   *catalog.Client
	Dashboard *dashboard.Service
}

// Router dispatches gateway events to the feature handlers.
type Router struct {
	config *config.Config

	music              *musiccmd.Handler
	musicListeners     *musiclisteners.Handler
	voice              *musiclisteners.VoiceWatcher
	dashboard          *dashboardcmd.Commands
	dashboardListeners *dashboardlisteners.Handler
	ping               *pingcmd.Commands
	pingListeners      *pinglisteners.Handler
	info               *infocmd.Commands

	commandHandlers map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)
}

func NewRouter(deps Deps) *Router {
	cfg := deps.Config
	searches := search.NewStore()

	r := &Router{
		config: cfg,
		music: &musiccmd.Handler{
			Registry:     deps.Registry,
			Catalog:      deps.Catalog,
			Dashboard:    deps.Dashboard,
			Searches:     searches,
			Placeholder:  cfg.PlaceholderImage,
			MaxQueueSize: cfg.MaxQueueSize,
		},
		musicListeners: &musiclisteners.Handler{
			Registry:     deps.Registry,
			Catalog:      deps.Catalog,
			Dashboard:    deps.Dashboard,
			Searches:     searches,
			Placeholder:  cfg.PlaceholderImage,
			MaxQueueSize: cfg.MaxQueueSize,
		},
		voice:              musiclisteners.NewVoiceWatcher(deps.Registry, deps.Dashboard, time.Duration(cfg.AutoLeaveTimeout)*time.Second),
		dashboard:          &dashboardcmd.Commands{Dashboard: deps.Dashboard},
		dashboardListeners: &dashboardlisteners.Handler{Dashboard: deps.Dashboard, Registry: deps.Registry},
		ping:               &pingcmd.Commands{Registry: deps.Registry},
		pingListeners:      &pinglisteners.Handler{Registry: deps.Registry},
		info: &infocmd.Commands{
			Registry:     deps.Registry,
			StateBackend: string(cfg.StateBackend),
			CatalogURL:   cfg.CatalogURL,
		},
	}

	r.commandHandlers = map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"ping":      r.ping.Ping,
		"info":      r.info.Info,
		"music":     r.handleMusicGroupCommand,
		"dashboard": r.dashboard.Setup,
	}
	return r
}

func (r *Router) handleMusicGroupCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	sub := getSubcommandOption(i.ApplicationCommandData())
	if sub == nil {
		shared.RespondEphemeral(s, i, "Pick a music command.")
		return
	}
	r.music.Handle(s, i, sub)
}

func getSubcommandOption(data discordgo.ApplicationCommandInteractionData) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range data.Options {
		if opt.Type == discordgo.ApplicationCommandOptionSubCommand {
			return opt
		}
	}
	return nil
}

func RegisterCommands(s *discordgo.Session, appID string, guildID string) ([]*discordgo.ApplicationCommand, error) {
	scope := "global"
	if guildID != "" {
		scope = fmt.Sprintf("guild:%s", guildID)
	}

	log.WithField("scope", scope).Infof("registering %d commands", len(CommandList))

	cmds, err := s.ApplicationCommandBulkOverwrite(appID, guildID, CommandList)
	if err != nil {
		return nil, fmt.Errorf("cannot bulk overwrite commands: %w", err)
	}
	return cmds, nil
}

func (r *Router) AddHandlers(s *discordgo.Session) {
	s.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if r.HandleSyncMessage(s, m) {
			return
		}
		r.musicListeners.HandleMessage(s, m)
	})

	s.AddHandler(r.voice.HandleVoiceStateUpdate)

	s.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			data := i.ApplicationCommandData()
			if handler, ok := r.commandHandlers[data.Name]; ok {
				handler(s, i)
			}
		case discordgo.InteractionMessageComponent:
			if r.pingListeners.Route(s, i) {
				return
			}
			if r.musicListeners.RouteComponent(s, i) {
				return
			}
			if r.dashboardListeners.Route(s, i) {
				return
			}
			log.WithField("custom_id", i.MessageComponentData().CustomID).Debug("unhandled component")
		}
	})
}

// Close stops pending auto-leave timers.
func (r *Router) Close() {
	r.voice.Close()
}
