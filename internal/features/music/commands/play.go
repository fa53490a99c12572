package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/kampita/internal/catalog"
	search "github.com/hxnx/kampita/internal/features/music/search"
	shared "github.com/hxnx/kampita/internal/features/shared"
	"github.com/hxnx/kampita/internal/music"
	log "github.com/sirupsen/logrus"
)

// Play searches the catalog and plays the first result right away.
func (h *Handler) Play(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	query := strings.TrimSpace(shared.GetOptionString(options, "query"))
	if query == "" {
		shared.RespondEphemeral(s, i, "Tell me what to play.")
		return
	}

	if err := shared.DeferEphemeral(s, i); err != nil {
		log.WithError(err).Warn("play: defer failed")
		return
	}
	reply := func(msg string) { shared.FollowupEphemeral(s, i, msg) }

	ctx, cancel := context.WithTimeout(context.Background(), catalogTimeout)
	defer cancel()

	page, err := h.Catalog.SearchSongs(ctx, query, catalog.PageOptions{Limit: 1})
	if err != nil {
		log.WithField("query", query).WithError(err).Warn("play: search failed")
		reply("Search failed. Try again in a moment.")
		return
	}
	if len(page.Results) == 0 {
		reply(fmt.Sprintf("No results for **%s**.", shared.EscapeMarkdown(query)))
		return
	}

	track, err := h.Catalog.PlayableTrack(ctx, page.Results[0], h.Placeholder)
	if err != nil {
		log.WithField("song", page.Results[0].ID).WithError(err).Warn("play: song has no stream")
		reply("That song can't be streamed.")
		return
	}

	manager, ok := h.joinedManager(ctx, s, i, reply)
	if !ok {
		return
	}

	manager.SetCurrentTrack(&track)
	h.refresh(s, i.GuildID)
	shared.FollowupComponents(s, i, TrackCard("Now playing", track, ""), true)
}

// Search shows up to ten catalog results with menus to play one now or add
// it to the queue.
func (h *Handler) Search(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	query := strings.TrimSpace(shared.GetOptionString(options, "query"))
	if query == "" {
		shared.RespondEphemeral(s, i, "Tell me what to search for.")
		return
	}

	if err := shared.DeferEphemeral(s, i); err != nil {
		log.WithError(err).Warn("search: defer failed")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), catalogTimeout)
	defer cancel()

	page, err := h.Catalog.SearchSongs(ctx, query, catalog.PageOptions{Limit: search.MaxResults})
	if err != nil {
		log.WithField("query", query).WithError(err).Warn("search: catalog request failed")
		shared.FollowupEphemeral(s, i, "Search failed. Try again in a moment.")
		return
	}
	if len(page.Results) == 0 {
		shared.FollowupEphemeral(s, i, fmt.Sprintf("No results for **%s**.", shared.EscapeMarkdown(query)))
		return
	}

	session := h.Searches.Save(search.Session{
		GuildID: i.GuildID,
		UserID:  shared.GetInteractionUserID(i),
		Query:   query,
		Results: catalog.ToTracks(page.Results, h.Placeholder),
	})

	shared.FollowupComponents(s, i, search.BuildSearchComponents(session), true)
}

// TrackCard renders a single track with an optional footer line.
func TrackCard(title string, track music.Track, footer string) []discordgo.MessageComponent {
	divider := true
	spacing := discordgo.SeparatorSpacingSizeSmall

	lines := []string{
		fmt.Sprintf("🎵 **%s**", shared.EscapeMarkdown(track.Name)),
		fmt.Sprintf("👤 %s", shared.EscapeMarkdown(track.Artist)),
		fmt.Sprintf("⏱️ %s", shared.FormatDuration(track.DurationValue())),
	}
	if footer != "" {
		lines = append(lines, footer)
	}
	info := strings.Join(lines, "\n")

	body := []discordgo.MessageComponent{
		discordgo.TextDisplay{Content: title},
		discordgo.Separator{Divider: &divider, Spacing: &spacing},
	}
	if strings.HasPrefix(track.Image, "http") {
		body = append(body, discordgo.Section{
			Components: []discordgo.MessageComponent{discordgo.TextDisplay{Content: info}},
			Accessory: discordgo.Thumbnail{
				Media: discordgo.UnfurledMediaItem{URL: track.Image},
			},
		})
	} else {
		body = append(body, discordgo.TextDisplay{Content: info})
	}

	return []discordgo.MessageComponent{
		discordgo.Container{
			AccentColor: &shared.AccentColor,
			Components:  body,
		},
	}
}
