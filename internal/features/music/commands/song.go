package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/kampita/internal/catalog"
	shared "github.com/hxnx/kampita/internal/features/shared"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	SongCustomIDPrefix = "music_song"
	SongActionPlay     = "play"
	SongActionQueue    = "queue"

	relatedLimit  = 5
	lyricsExcerpt = 600
)

// SongDetails is everything the song card shows.
type SongDetails struct {
	Song         catalog.Song
	Suggestions  []catalog.Song
	MoreByArtist []catalog.Song
}

// Song shows a details card for a catalog song id or link.
func (h *Handler) Song(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ref := strings.TrimSpace(shared.GetOptionString(options, "id"))
	if ref == "" {
		shared.RespondEphemeral(s, i, "Give me a song id or link.")
		return
	}

	if err := shared.DeferEphemeral(s, i); err != nil {
		log.WithError(err).Warn("song: defer failed")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), catalogTimeout)
	defer cancel()

	details, err := FetchSongDetails(ctx, h.Catalog, ref)
	if err != nil {
		if errors.Is(err, catalog.ErrSongNotFound) {
			shared.FollowupEphemeral(s, i, "Song not found.")
			return
		}
		log.WithField("song", ref).WithError(err).Warn("song: lookup failed")
		shared.FollowupEphemeral(s, i, "Could not load that song.")
		return
	}

	shared.FollowupComponents(s, i, BuildSongComponents(details, h.Placeholder), true)
}

// FetchSongDetails loads the song, its suggestions and other songs by its
// primary artist. Only the song itself is required.
func FetchSongDetails(ctx context.Context, c *catalog.Client, ref string) (SongDetails, error) {
	var details SongDetails

	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		songs, err := c.SongByLink(ctx, ref, true)
		if err != nil {
			return SongDetails{}, err
		}
		if len(songs) == 0 {
			return SongDetails{}, catalog.ErrSongNotFound
		}
		details.Song = songs[0]
	} else {
		song, err := c.LookupSong(ctx, ref)
		if err != nil {
			return SongDetails{}, err
		}
		details.Song = song
	}

	song := details.Song
	logger := log.WithField("song", song.ID)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		suggestions, err := c.SongSuggestions(gctx, song.ID, relatedLimit)
		if err != nil {
			logger.WithError(err).Debug("song suggestions unavailable")
			return nil
		}
		details.Suggestions = suggestions
		return nil
	})
	g.Go(func() error {
		artistID := catalog.PrimaryArtistID(song)
		if artistID == catalog.UnknownArtistID {
			return nil
		}
		more, err := c.ArtistSongs(gctx, artistID, catalog.ArtistOptions{})
		if err != nil {
			logger.WithError(err).Debug("artist songs unavailable")
			return nil
		}
		details.MoreByArtist = lo.Filter(more.Songs, func(s catalog.Song, _ int) bool {
			return s.ID != song.ID
		})
		return nil
	})
	if song.HasLyrics && song.Lyrics == nil {
		g.Go(func() error {
			lyrics, err := c.LyricsByID(gctx, song.ID)
			if err != nil {
				logger.WithError(err).Debug("lyrics unavailable")
				return nil
			}
			details.Song.Lyrics = &lyrics
			return nil
		})
	}
	_ = g.Wait()

	details.Suggestions = lo.UniqBy(details.Suggestions, func(s catalog.Song) string { return s.ID })
	if len(details.MoreByArtist) > relatedLimit {
		details.MoreByArtist = details.MoreByArtist[:relatedLimit]
	}
	return details, nil
}

func BuildSongComponents(details SongDetails, placeholder string) []discordgo.MessageComponent {
	song := details.Song
	divider := true
	spacing := discordgo.SeparatorSpacingSizeSmall

	meta := []string{
		fmt.Sprintf("🎵 **%s**", shared.EscapeMarkdown(song.Name)),
		fmt.Sprintf("👤 %s", shared.EscapeMarkdown(catalog.ArtistLine(song.Artists))),
	}
	if song.Album.Name != "" {
		meta = append(meta, fmt.Sprintf("💿 %s", shared.EscapeMarkdown(song.Album.Name)))
	}
	facts := lo.Compact([]string{
		song.Year.String(),
		songLength(song),
		song.Language,
		playCount(song),
	})
	if len(facts) > 0 {
		meta = append(meta, strings.Join(facts, " · "))
	}
	if song.ExplicitContent {
		meta = append(meta, "🅴 Explicit")
	}
	info := strings.Join(meta, "\n")

	body := []discordgo.MessageComponent{
		discordgo.TextDisplay{Content: "🎼 **Song details**"},
		discordgo.Separator{Divider: &divider, Spacing: &spacing},
	}
	if image := catalog.BestImage(song.Image, placeholder); strings.HasPrefix(image, "http") {
		body = append(body, discordgo.Section{
			Components: []discordgo.MessageComponent{discordgo.TextDisplay{Content: info}},
			Accessory:  discordgo.Thumbnail{Media: discordgo.UnfurledMediaItem{URL: image}},
		})
	} else {
		body = append(body, discordgo.TextDisplay{Content: info})
	}

	if links := downloadLinks(song.DownloadURL); links != "" {
		body = append(body,
			discordgo.Separator{Divider: &divider, Spacing: &spacing},
			discordgo.TextDisplay{Content: "⬇️ **Download**\n" + links},
		)
	}

	if song.Lyrics != nil && strings.TrimSpace(song.Lyrics.Lyrics) != "" {
		excerpt := strings.ReplaceAll(song.Lyrics.Lyrics, "<br>", "\n")
		body = append(body,
			discordgo.Separator{Divider: &divider, Spacing: &spacing},
			discordgo.TextDisplay{Content: "📝 **Lyrics**\n" + shared.Truncate(shared.EscapeMarkdown(excerpt), lyricsExcerpt)},
		)
	}

	if list := songList(details.Suggestions); list != "" {
		body = append(body,
			discordgo.Separator{Divider: &divider, Spacing: &spacing},
			discordgo.TextDisplay{Content: "✨ **You might also like**\n" + list},
		)
	}
	if list := songList(details.MoreByArtist); list != "" {
		body = append(body,
			discordgo.Separator{Divider: &divider, Spacing: &spacing},
			discordgo.TextDisplay{Content: "🎤 **More from the artist**\n" + list},
		)
	}

	body = append(body, discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Style:    discordgo.SuccessButton,
				Label:    "Play now",
				CustomID: MakeSongCustomID(SongActionPlay, song.ID),
				Disabled: catalog.StreamURL(song) == "",
			},
			discordgo.Button{
				Style:    discordgo.SecondaryButton,
				Label:    "Add to queue",
				CustomID: MakeSongCustomID(SongActionQueue, song.ID),
				Disabled: catalog.StreamURL(song) == "",
			},
		},
	})

	return []discordgo.MessageComponent{
		discordgo.Container{
			AccentColor: &shared.AccentColor,
			Components:  body,
		},
	}
}

func MakeSongCustomID(action, songID string) string {
	return SongCustomIDPrefix + ":" + action + ":" + songID
}

func ParseSongCustomID(customID string) (action, songID string, ok bool) {
	parts := strings.SplitN(customID, ":", 3)
	if len(parts) != 3 || parts[0] != SongCustomIDPrefix || parts[2] == "" {
		return "", "", false
	}
	if parts[1] != SongActionPlay && parts[1] != SongActionQueue {
		return "", "", false
	}
	return parts[1], parts[2], true
}

func downloadLinks(links []catalog.Link) string {
	parts := lo.FilterMap(links, func(l catalog.Link, _ int) (string, bool) {
		if l.URL == "" {
			return "", false
		}
		quality := l.Quality
		if quality == "" {
			quality = "link"
		}
		return fmt.Sprintf("[%s](%s)", quality, l.URL), true
	})
	return strings.Join(parts, " · ")
}

func songList(songs []catalog.Song) string {
	lines := lo.Map(songs, func(s catalog.Song, idx int) string {
		return fmt.Sprintf("%d. **%s** · %s `%s`",
			idx+1,
			shared.EscapeMarkdown(shared.Truncate(s.Name, 70)),
			shared.EscapeMarkdown(shared.Truncate(catalog.ArtistLine(s.Artists), 50)),
			s.ID)
	})
	return strings.Join(lines, "\n")
}

func songLength(song catalog.Song) string {
	if song.Duration <= 0 {
		return ""
	}
	return catalog.FormatDuration(int(song.Duration))
}

func playCount(song catalog.Song) string {
	n := song.PlayCount.Int()
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("%d plays", n)
}
