package botinfo

import (
	"fmt"
	"runtime"
	"time"

	"github.com/bwmarrin/discordgo"
	shared "github.com/hxnx/kampita/internal/features/shared"
	log "github.com/sirupsen/logrus"
)

var startedAt = time.Now()

// Info is the runtime summary shown by /info.
type Info struct {
	Guilds       int
	Shards       int
	Players      int
	StateBackend string
	CatalogURL   string
	Uptime       time.Duration
	MemoryMB     float64
	Goroutines   int
}

func Collect(s *discordgo.Session, players int, stateBackend, catalogURL string) Info {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	guilds := 0
	if s != nil && s.State != nil {
		guilds = len(s.State.Guilds)
	}
	shards := 1
	if s != nil {
		shards = max(1, s.ShardCount)
	}

	return Info{
		Guilds:       guilds,
		Shards:       shards,
		Players:      players,
		StateBackend: stateBackend,
		CatalogURL:   catalogURL,
		Uptime:       time.Since(startedAt).Round(time.Second),
		MemoryMB:     float64(mem.Alloc) / 1024.0 / 1024.0,
		Goroutines:   runtime.NumGoroutine(),
	}
}

func BuildInfoComponents(info Info) []discordgo.MessageComponent {
	divider := true
	spacing := discordgo.SeparatorSpacingSizeSmall

	return []discordgo.MessageComponent{
		discordgo.Container{
			AccentColor: &shared.AccentColor,
			Components: []discordgo.MessageComponent{
				discordgo.TextDisplay{Content: "**Kampita**"},
				discordgo.Separator{Divider: &divider, Spacing: &spacing},
				discordgo.TextDisplay{Content: fmt.Sprintf("**Servers:** %d • **Shards:** %d • **Active players:** %d", info.Guilds, info.Shards, info.Players)},
				discordgo.TextDisplay{Content: fmt.Sprintf("**State backend:** %s", info.StateBackend)},
				discordgo.TextDisplay{Content: fmt.Sprintf("**Catalog:** %s", info.CatalogURL)},
				discordgo.TextDisplay{Content: fmt.Sprintf("**Uptime:** %s • **Memory:** %.2f MB • **Goroutines:** %d", info.Uptime, info.MemoryMB, info.Goroutines)},
			},
		},
	}
}

func RespondInfo(s *discordgo.Session, i *discordgo.InteractionCreate, info Info) {
	if s == nil || i == nil {
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Components: BuildInfoComponents(info),
			Flags:      discordgo.MessageFlagsIsComponentsV2 | discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.WithError(err).Warn("failed to respond to info")
	}
}
