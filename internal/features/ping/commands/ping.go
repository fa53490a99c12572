package commands

import (
	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/kampita/internal/features/ping"
	"github.com/hxnx/kampita/internal/music"
)

type Commands struct {
	Registry *music.Registry
}

func (c *Commands) Ping(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	ping.RespondPing(s, i, discordgo.InteractionResponseChannelMessageWithSource, c.players())
}

func (c *Commands) players() int {
	if c.Registry == nil {
		return 0
	}
	return c.Registry.Count()
}
