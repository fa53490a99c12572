package commands

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/kampita/config"
)

func TestCommandListMusicSubcommands(t *testing.T) {
	var musicCmd *discordgo.ApplicationCommand
	for _, cmd := range CommandList {
		if cmd.Name == "music" {
			musicCmd = cmd
		}
	}
	if musicCmd == nil {
		t.Fatal("music command missing")
	}

	want := []string{"play", "search", "queue", "skip", "previous", "pause", "seek", "volume", "shuffle", "repeat", "nowplaying", "history", "stop", "song"}
	got := make(map[string]*discordgo.ApplicationCommandOption)
	for _, opt := range musicCmd.Options {
		got[opt.Name] = opt
	}
	for _, name := range want {
		if _, ok := got[name]; !ok {
			t.Errorf("missing /music %s", name)
		}
	}

	seek := got["seek"]
	if len(seek.Options) != 1 || seek.Options[0].Name != "seconds" || !seek.Options[0].Required {
		t.Errorf("unexpected seek options %+v", seek.Options)
	}
}

func TestRouterRegistersEveryCommand(t *testing.T) {
	r := NewRouter(Deps{Config: &config.Config{MaxQueueSize: 10, AutoLeaveTimeout: 0}})
	defer r.Close()

	for _, cmd := range CommandList {
		if _, ok := r.commandHandlers[cmd.Name]; !ok {
			t.Errorf("no handler for /%s", cmd.Name)
		}
	}
}

func TestGetSubcommandOption(t *testing.T) {
	data := discordgo.ApplicationCommandInteractionData{
		Options: []*discordgo.ApplicationCommandInteractionDataOption{
			{Name: "skip", Type: discordgo.ApplicationCommandOptionSubCommand},
		},
	}
	if sub := getSubcommandOption(data); sub == nil || sub.Name != "skip" {
		t.Errorf("got %+v", sub)
	}
	if sub := getSubcommandOption(discordgo.ApplicationCommandInteractionData{}); sub != nil {
		t.Errorf("expected nil, got %+v", sub)
	}
}

func TestSyncIgnoresOtherMessages(t *testing.T) {
	r := NewRouter(Deps{Config: &config.Config{OwnerID: "owner"}})
	defer r.Close()

	msg := &discordgo.MessageCreate{Message: &discordgo.Message{
		GuildID: "g",
		Content: "play something",
		Author:  &discordgo.User{ID: "owner"},
	}}
	if r.HandleSyncMessage(&discordgo.Session{}, msg) {
		t.Error("non-sync message was consumed")
	}
}
