package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/hxnx/kampita/internal/catalog"
	"github.com/hxnx/kampita/internal/music"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/samber/lo"
)

const lyricsWidth = 100

func newTable(out io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	if title != "" {
		t.SetTitle(title)
	}
	return t
}

func renderSongs(out io.Writer, songs []catalog.Song, total int) {
	t := newTable(out, fmt.Sprintf("Songs (%d total)", total))
	t.AppendHeader(table.Row{"#", "ID", "Title", "Artists", "Album", "Length"})
	for i, s := range songs {
		t.AppendRow(table.Row{i + 1, s.ID, s.Name, catalog.ArtistLine(s.Artists), s.Album.Name, catalog.FormatDuration(int(s.Duration))})
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 6, Align: text.AlignRight}})
	t.Render()
}

func renderAlbums(out io.Writer, albums []catalog.Album, total int) {
	t := newTable(out, fmt.Sprintf("Albums (%d total)", total))
	t.AppendHeader(table.Row{"#", "ID", "Name", "Artists", "Year", "Songs"})
	for i, a := range albums {
		t.AppendRow(table.Row{i + 1, a.ID, a.Name, catalog.ArtistLine(a.Artists), a.Year.String(), a.SongCount})
	}
	t.Render()
}

func renderArtistRefs(out io.Writer, artists []catalog.ArtistRef, total int) {
	t := newTable(out, fmt.Sprintf("Artists (%d total)", total))
	t.AppendHeader(table.Row{"#", "ID", "Name", "Role"})
	for i, a := range artists {
		t.AppendRow(table.Row{i + 1, a.ID, a.Name, a.Role})
	}
	t.Render()
}

func renderPlaylists(out io.Writer, playlists []catalog.Playlist, total int) {
	t := newTable(out, fmt.Sprintf("Playlists (%d total)", total))
	t.AppendHeader(table.Row{"#", "ID", "Name", "Language", "Songs"})
	for i, p := range playlists {
		t.AppendRow(table.Row{i + 1, p.ID, p.Name, p.Language, p.SongCount})
	}
	t.Render()
}

func renderGlobalSearch(out io.Writer, res catalog.SearchResults) {
	sections := []struct {
		name string
		hits []catalog.SearchHit
	}{
		{"Top result", res.TopQuery.Results},
		{"Songs", res.Songs.Results},
		{"Albums", res.Albums.Results},
		{"Artists", res.Artists.Results},
		{"Playlists", res.Playlists.Results},
	}

	t := newTable(out, "Search")
	t.AppendHeader(table.Row{"Section", "ID", "Title", "Type", "Details"})
	for _, section := range sections {
		for _, hit := range section.hits {
			details := lo.Compact([]string{hit.PrimaryArtists, hit.Album, hit.Description})
			t.AppendRow(table.Row{section.name, hit.ID, hit.Title, hit.Type, firstOr(details, "")})
		}
	}
	t.Render()
}

func renderSong(out io.Writer, song catalog.Song) {
	t := newTable(out, song.Name)
	t.AppendRows([]table.Row{
		{"ID", song.ID},
		{"Artists", catalog.ArtistLine(song.Artists)},
		{"Album", song.Album.Name},
		{"Year", song.Year.String()},
		{"Language", song.Language},
		{"Length", catalog.FormatDuration(int(song.Duration))},
		{"Plays", song.PlayCount.String()},
		{"Explicit", song.ExplicitContent},
	})
	for _, link := range song.DownloadURL {
		t.AppendRow(table.Row{"Download " + link.Quality, link.URL})
	}
	t.Render()

	if song.Lyrics != nil && song.Lyrics.Lyrics != "" {
		lyrics := strings.ReplaceAll(song.Lyrics.Lyrics, "<br>", "\n")
		fmt.Fprintln(out)
		fmt.Fprintln(out, text.WrapSoft(lyrics, lyricsWidth))
	}
}

func renderArtistHeader(out io.Writer, artist catalog.Artist) {
	t := newTable(out, artist.Name)
	t.AppendRows([]table.Row{
		{"ID", artist.ID},
		{"Followers", artist.FollowerCount.String()},
		{"Language", artist.DominantLanguage},
		{"Verified", artist.IsVerified},
	})
	t.Render()
}

func renderState(out io.Writer, key string, state music.PersistedState) {
	current := "-"
	if state.CurrentTrack != nil {
		current = trackLabel(*state.CurrentTrack)
	}
	volume := 1.0
	if state.Volume != nil {
		volume = *state.Volume
	}

	t := newTable(out, key)
	t.AppendRows([]table.Row{
		{"Current", current},
		{"Volume", fmt.Sprintf("%d%%", int(volume*100+0.5))},
		{"Shuffle", state.IsShuffle},
		{"Repeat", string(state.RepeatMode)},
		{"Queued", len(state.Queue)},
		{"History", len(state.PlayHistory)},
	})
	t.Render()

	if len(state.Queue) > 0 {
		q := newTable(out, "Queue")
		q.AppendHeader(table.Row{"#", "ID", "Track", "Length"})
		for i, track := range state.Queue {
			q.AppendRow(table.Row{i + 1, track.ID, trackLabel(track), catalog.FormatDuration(int(track.Duration))})
		}
		q.Render()
	}
}

func renderKeys(out io.Writer, keys []string) {
	t := newTable(out, "Persisted players")
	t.AppendHeader(table.Row{"Key"})
	for _, key := range keys {
		t.AppendRow(table.Row{key})
	}
	t.Render()
}

func trackLabel(track music.Track) string {
	if track.Artist == "" {
		return track.Name
	}
	return track.Name + " · " + track.Artist
}

func firstOr(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	return values[0]
}
