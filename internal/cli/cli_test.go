package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hxnx/kampita/internal/catalog"
	"github.com/hxnx/kampita/internal/localstore"
	"github.com/hxnx/kampita/internal/music"
)

func TestRenderSongs(t *testing.T) {
	var buf bytes.Buffer
	renderSongs(&buf, []catalog.Song{
		{ID: "abc", Name: "Rain", Duration: 185, Artists: catalog.ArtistGroups{Primary: []catalog.ArtistRef{{Name: "Band"}}}},
	}, 1)

	out := buf.String()
	for _, want := range []string{"Songs (1 total)", "abc", "Rain", "Band", "3:05"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderSongWithLyrics(t *testing.T) {
	var buf bytes.Buffer
	renderSong(&buf, catalog.Song{
		ID:          "abc",
		Name:        "Rain",
		DownloadURL: []catalog.Link{{Quality: "320kbps", URL: "https://cdn/320.mp4"}},
		Lyrics:      &catalog.Lyrics{Lyrics: "one<br>two"},
	})

	out := buf.String()
	if !strings.Contains(out, "Download 320kbps") || !strings.Contains(out, "https://cdn/320.mp4") {
		t.Errorf("missing download row:\n%s", out)
	}
	if !strings.Contains(out, "one\ntwo") {
		t.Errorf("lyrics not split on <br>:\n%s", out)
	}
}

func TestValidateArtistOptions(t *testing.T) {
	ok := catalog.ArtistOptions{SortBy: catalog.SortByLatest, SortOrder: catalog.SortDesc}
	if err := validateArtistOptions(ok); err != nil {
		t.Errorf("valid options rejected: %v", err)
	}
	if err := validateArtistOptions(catalog.ArtistOptions{SortBy: "plays", SortOrder: catalog.SortAsc}); err == nil {
		t.Error("invalid sort-by accepted")
	}
	if err := validateArtistOptions(catalog.ArtistOptions{SortBy: catalog.SortByLatest, SortOrder: "up"}); err == nil {
		t.Error("invalid sort-order accepted")
	}
}

func TestPrintState(t *testing.T) {
	store, err := localstore.Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	volume := 0.4
	payload, err := music.EncodeState(music.PersistedState{
		Volume:       &volume,
		Queue:        []music.Track{{ID: "q1", Name: "Queued", Artist: "Band", Duration: 60}},
		PlayHistory:  []music.Track{},
		RepeatMode:   music.RepeatAll,
		CurrentTrack: &music.Track{ID: "c", Name: "Current"},
	})
	if err != nil {
		t.Fatalf("EncodeState() error = %v", err)
	}
	ctx := context.Background()
	if err := store.Save(ctx, music.StateKey("g1"), payload); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	var buf bytes.Buffer
	if err := printState(ctx, &buf, store, "g1"); err != nil {
		t.Fatalf("printState() error = %v", err)
	}
	for _, want := range []string{"Current", "40%", "all", "Queued · Band", "1:00"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("state output missing %q:\n%s", want, buf.String())
		}
	}

	buf.Reset()
	if err := printState(ctx, &buf, store, ""); err != nil {
		t.Fatalf("printState() listing error = %v", err)
	}
	if !strings.Contains(buf.String(), music.StateKey("g1")) {
		t.Errorf("key listing missing guild:\n%s", buf.String())
	}

	if err := printState(ctx, &buf, store, "missing"); err == nil {
		t.Error("missing guild should be an error")
	}
}

func TestPrintStateWithoutKeyListing(t *testing.T) {
	if err := printState(context.Background(), &bytes.Buffer{}, music.NewMemoryStore(), ""); err == nil {
		t.Error("memory store cannot list keys")
	}
}

func TestSearchCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/search/songs" || r.URL.Query().Get("query") != "rain song" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"success":true,"data":{"total":1,"start":0,"results":[{"id":"abc","name":"Rain","duration":120}]}}`))
	}))
	defer srv.Close()

	var buf bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&buf)
	root.SetArgs([]string{"search", "rain", "song", "--catalog-url", srv.URL + "/api", "--log-level", "error"})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(buf.String(), "abc") || !strings.Contains(buf.String(), "2:00") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestSearchCommandRejectsUnknownType(t *testing.T) {
	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"search", "x", "--type", "videos", "--catalog-url", "http://127.0.0.1:1", "--log-level", "error"})
	if err := root.Execute(); err == nil {
		t.Error("unknown type accepted")
	}
}
