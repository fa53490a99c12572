package commands

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/kampita/internal/catalog"
)

func newCatalog(t *testing.T, handler http.HandlerFunc) *catalog.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return catalog.New(srv.URL+"/api", 2*time.Second)
}

func TestFetchSongDetails(t *testing.T) {
	c := newCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/songs/abc":
			w.Write([]byte(`{"success":true,"data":[{
				"id":"abc","name":"Rain &amp; Sun","hasLyrics":true,
				"artists":{"primary":[{"id":"42","name":"Band"}]},
				"downloadUrl":[{"quality":"12kbps","url":"https://cdn/a12.mp4"},{"quality":"320kbps","url":"https://cdn/a320.mp4"}]
			}]}`))
		case "/api/songs/abc/suggestions":
			w.Write([]byte(`{"success":true,"data":[{"id":"s1","name":"One"},{"id":"s1","name":"One"},{"id":"s2","name":"Two"}]}`))
		case "/api/artists/42/songs":
			w.Write([]byte(`{"success":true,"data":{"total":3,"songs":[{"id":"abc","name":"Rain"},{"id":"m1","name":"Other"}]}}`))
		case "/api/songs/abc/lyrics":
			w.Write([]byte(`{"success":true,"data":{"lyrics":"first line<br>second line"}}`))
		default:
			http.NotFound(w, r)
		}
	})

	details, err := FetchSongDetails(context.Background(), c, "abc")
	if err != nil {
		t.Fatalf("FetchSongDetails() error = %v", err)
	}

	if details.Song.Name != "Rain & Sun" {
		t.Errorf("name = %q", details.Song.Name)
	}
	if len(details.Suggestions) != 2 {
		t.Errorf("suggestions = %d, want 2 after dedupe", len(details.Suggestions))
	}
	if len(details.MoreByArtist) != 1 || details.MoreByArtist[0].ID != "m1" {
		t.Errorf("more by artist = %+v", details.MoreByArtist)
	}
	if details.Song.Lyrics == nil || !strings.Contains(details.Song.Lyrics.Lyrics, "second line") {
		t.Errorf("lyrics = %+v", details.Song.Lyrics)
	}
}

func TestFetchSongDetailsToleratesMissingExtras(t *testing.T) {
	c := newCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/songs/abc" {
			w.Write([]byte(`{"success":true,"data":[{"id":"abc","name":"Solo","artists":{"primary":[{"id":"42","name":"Band"}]}}]}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	})

	details, err := FetchSongDetails(context.Background(), c, "abc")
	if err != nil {
		t.Fatalf("FetchSongDetails() error = %v", err)
	}
	if len(details.Suggestions) != 0 || len(details.MoreByArtist) != 0 {
		t.Errorf("expected no extras, got %+v", details)
	}
}

func TestFetchSongDetailsByLink(t *testing.T) {
	var link string
	c := newCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/songs" {
			link = r.URL.Query().Get("link")
			w.Write([]byte(`{"success":true,"data":[]}`))
			return
		}
		http.NotFound(w, r)
	})

	_, err := FetchSongDetails(context.Background(), c, "https://www.jiosaavn.com/song/x/abc")
	if err != catalog.ErrSongNotFound {
		t.Fatalf("err = %v, want ErrSongNotFound", err)
	}
	if link != "https://www.jiosaavn.com/song/x/abc" {
		t.Errorf("link param = %q", link)
	}
}

func TestBuildSongComponents(t *testing.T) {
	details := SongDetails{
		Song: catalog.Song{
			ID:       "abc",
			Name:     "Rain",
			Duration: 185,
			Artists:  catalog.ArtistGroups{Primary: []catalog.ArtistRef{{Name: "Band"}}},
			DownloadURL: []catalog.Link{
				{Quality: "96kbps", URL: "https://cdn/96.mp4"},
				{Quality: "320kbps", URL: "https://cdn/320.mp4"},
			},
			Lyrics: &catalog.Lyrics{Lyrics: "la la<br>la"},
		},
		Suggestions: []catalog.Song{{ID: "s1", Name: "One"}},
	}

	components := BuildSongComponents(details, catalog.DefaultPlaceholderImage)
	container := components[0].(discordgo.Container)

	var text []string
	var buttons []discordgo.Button
	for _, c := range container.Components {
		switch v := c.(type) {
		case discordgo.TextDisplay:
			text = append(text, v.Content)
		case discordgo.ActionsRow:
			for _, inner := range v.Components {
				buttons = append(buttons, inner.(discordgo.Button))
			}
		}
	}
	all := strings.Join(text, "\n")

	for _, want := range []string{"Rain", "Band", "3:05", "[96kbps](https://cdn/96.mp4)", "[320kbps](https://cdn/320.mp4)", "You might also like", "la la\nla"} {
		if !strings.Contains(all, want) {
			t.Errorf("card missing %q", want)
		}
	}
	if strings.Contains(all, "More from the artist") {
		t.Error("empty artist section rendered")
	}

	if len(buttons) != 2 || buttons[0].CustomID != "music_song:play:abc" || buttons[0].Disabled {
		t.Errorf("unexpected buttons %+v", buttons)
	}
}

func TestBuildSongComponentsWithoutStream(t *testing.T) {
	components := BuildSongComponents(SongDetails{Song: catalog.Song{ID: "x", Name: "Silent"}}, "")
	container := components[0].(discordgo.Container)
	row := container.Components[len(container.Components)-1].(discordgo.ActionsRow)
	for _, inner := range row.Components {
		if !inner.(discordgo.Button).Disabled {
			t.Error("buttons should be disabled when the song has no stream")
		}
	}
}

func TestParseSongCustomID(t *testing.T) {
	action, id, ok := ParseSongCustomID(MakeSongCustomID(SongActionQueue, "a:b"))
	if !ok || action != SongActionQueue || id != "a:b" {
		t.Errorf("got %q, %q, %v", action, id, ok)
	}

	for _, bad := range []string{"music_song:play:", "music_song:drop:x", "music_queue:play:x", "music_song"} {
		if _, _, ok := ParseSongCustomID(bad); ok {
			t.Errorf("ParseSongCustomID(%q) accepted", bad)
		}
	}
}
