package commands

import (
	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/kampita/internal/features/botinfo"
	"github.com/hxnx/kampita/internal/music"
)

type Commands struct {
	Registry     *music.Registry
	StateBackend string
	CatalogURL   string
}

func (c *Commands) Info(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	players := 0
	if c.Registry != nil {
		players = c.Registry.Count()
	}
	botinfo.RespondInfo(s, i, botinfo.Collect(s, players, c.StateBackend, c.CatalogURL))
}
