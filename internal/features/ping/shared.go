package ping

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	shared "github.com/hxnx/kampita/internal/features/shared"
	log "github.com/sirupsen/logrus"
)

const RefreshCustomID = "ping_refresh"

type Status struct {
	APILatency     time.Duration
	GatewayLatency time.Duration
	Guilds         int
	Shards         int
	Players        int
	CheckedAt      time.Time
}

// CollectStatus reads latency and counts from the session. players is the
// number of guilds with an active player.
func CollectStatus(s *discordgo.Session, players int) Status {
	latency := s.HeartbeatLatency().Round(time.Millisecond)

	gateway := latency
	if !s.LastHeartbeatAck.IsZero() {
		gateway = time.Since(s.LastHeartbeatAck).Round(time.Millisecond)
	}

	guilds := 0
	if s.State != nil {
		guilds = len(s.State.Guilds)
	}

	return Status{
		APILatency:     latency,
		GatewayLatency: gateway,
		Guilds:         guilds,
		Shards:         max(1, s.ShardCount),
		Players:        players,
		CheckedAt:      time.Now(),
	}
}

func BuildPingComponents(status Status) []discordgo.MessageComponent {
	divider := true
	spacing := discordgo.SeparatorSpacingSizeSmall

	return []discordgo.MessageComponent{
		discordgo.Container{
			AccentColor: &shared.AccentColor,
			Components: []discordgo.MessageComponent{
				discordgo.TextDisplay{Content: "**Pong!**"},
				discordgo.Separator{Divider: &divider, Spacing: &spacing},
				discordgo.Section{
					Components: []discordgo.MessageComponent{
						discordgo.TextDisplay{Content: fmt.Sprintf("**API latency:** %s", status.APILatency)},
						discordgo.TextDisplay{Content: fmt.Sprintf("**Gateway latency:** %s", status.GatewayLatency)},
						discordgo.TextDisplay{Content: fmt.Sprintf("**Servers:** %d • **Shards:** %d • **Players:** %d", status.Guilds, status.Shards, status.Players)},
					},
					Accessory: discordgo.Button{
						Style:    discordgo.PrimaryButton,
						Label:    "Refresh",
						CustomID: RefreshCustomID,
					},
				},
				discordgo.TextDisplay{Content: fmt.Sprintf("Updated <t:%d:R>", status.CheckedAt.Unix())},
			},
		},
	}
}

func RespondPing(s *discordgo.Session, i *discordgo.InteractionCreate, respType discordgo.InteractionResponseType, players int) {
	if s == nil || i == nil {
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: respType,
		Data: &discordgo.InteractionResponseData{
			Components: BuildPingComponents(CollectStatus(s, players)),
			Flags:      discordgo.MessageFlagsIsComponentsV2 | discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.WithError(err).Warn("failed to respond to ping")
	}
}
