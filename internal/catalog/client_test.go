package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api/", 2*time.Second)
}

func TestCallBuildsQuery(t *testing.T) {
	var got *url.URL
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL
		w.Write([]byte(`{"success":true,"data":{}}`))
	})

	_, err := c.Call(context.Background(), "search/songs", Params{
		"query":  "tum hi ho",
		"page":   2,
		"lyrics": true,
		"skip":   nil,
	})
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}

	if got.Path != "/api/search/songs" {
		t.Errorf("path = %q", got.Path)
	}
	q := got.Query()
	if q.Get("query") != "tum hi ho" || q.Get("page") != "2" || q.Get("lyrics") != "true" {
		t.Errorf("query = %v", q)
	}
	if _, ok := q["skip"]; ok {
		t.Error("nil parameter was sent")
	}
}

func TestCallErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(t *testing.T, err error)
	}{
		{
			name: "non-2xx status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			check: func(t *testing.T, err error) {
				var rf *RequestFailedError
				if !errors.As(err, &rf) || rf.StatusCode != http.StatusNotFound {
					t.Fatalf("err = %v, want RequestFailedError 404", err)
				}
				if !strings.Contains(rf.URL, "/api/songs/1") {
					t.Errorf("URL = %q", rf.URL)
				}
			},
		},
		{
			name: "body is not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html>oops</html>"))
			},
			check: func(t *testing.T, err error) {
				var te *TransportError
				if !errors.As(err, &te) {
					t.Fatalf("err = %v, want TransportError", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, tt.handler)
			_, err := c.Call(context.Background(), "songs/1", nil)
			tt.check(t, err)
		})
	}
}

func TestCallNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c := New(srv.URL, time.Second)
	srv.Close()

	_, err := c.Call(context.Background(), "search", Params{"query": "x"})
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want TransportError", err)
	}
}

func TestRouteOf(t *testing.T) {
	tests := map[string]string{
		"search":                "search",
		"search/songs":          "search/songs",
		"songs/abc":             "songs/:id",
		"songs/abc/lyrics":      "songs/:id/lyrics",
		"artists/459320/albums": "artists/:id/albums",
		"playlists":             "playlists",
	}
	for in, want := range tests {
		if got := routeOf(in); got != want {
			t.Errorf("routeOf(%q) = %q, want %q", in, got, want)
		}
	}
}

const songJSON = `{
  "success": true,
  "data": [{
    "id": "yDeAS8Eh",
    "name": "Tum Hi Ho &amp; More",
    "year": 2013,
    "duration": 262,
    "playCount": null,
    "url": "https://www.jiosaavn.com/song/tum-hi-ho/yDeAS8Eh",
    "artists": {
      "primary": [{"id": "459320", "name": "Arijit Singh"}],
      "all": [{"id": "459320", "name": "Arijit Singh"}, {"id": "1", "name": "Mithoon"}]
    },
    "image": [{"quality": "50x50", "url": "s.jpg"}, {"quality": "150x150", "url": "m.jpg"}, {"quality": "500x500", "url": "l.jpg"}],
    "downloadUrl": [{"quality": "12kbps", "url": "12.mp4"}, {"quality": "48kbps", "url": "48.mp4"}, {"quality": "96kbps", "url": "96.mp4"}]
  }]
}`

func TestSongByIDDecodesAndMaps(t *testing.T) {
	var lyrics string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		lyrics = r.URL.Query().Get("lyrics")
		w.Write([]byte(songJSON))
	})

	songs, err := c.SongByID(context.Background(), "yDeAS8Eh", true)
	if err != nil {
		t.Fatalf("SongByID() error = %v", err)
	}
	if lyrics != "true" {
		t.Errorf("lyrics param = %q", lyrics)
	}
	if len(songs) != 1 {
		t.Fatalf("got %d songs", len(songs))
	}

	s := songs[0]
	if s.Name != "Tum Hi Ho & More" {
		t.Errorf("name = %q", s.Name)
	}
	if s.URL != "" {
		t.Errorf("catalog site url kept: %q", s.URL)
	}
	if s.Year != "2013" {
		t.Errorf("year = %q", s.Year)
	}

	track := ToTrack(s)
	if track.URL != "96.mp4" || track.Artist != "Arijit Singh" || track.PreviewImage != "l.jpg" {
		t.Errorf("track = %+v", track)
	}
}

func TestEndpointDefaults(t *testing.T) {
	tests := []struct {
		name     string
		call     func(c *Client) error
		path     string
		expected map[string]string
	}{
		{
			name: "search songs",
			call: func(c *Client) error {
				_, err := c.SearchSongs(context.Background(), "q", PageOptions{})
				return err
			},
			path:     "/api/search/songs",
			expected: map[string]string{"query": "q", "page": "1", "limit": "10"},
		},
		{
			name: "suggestions",
			call: func(c *Client) error {
				_, err := c.SongSuggestions(context.Background(), "abc", 0)
				return err
			},
			path:     "/api/songs/abc/suggestions",
			expected: map[string]string{"limit": "10"},
		},
		{
			name: "artist",
			call: func(c *Client) error {
				_, err := c.ArtistByID(context.Background(), "42", ArtistOptions{})
				return err
			},
			path: "/api/artists",
			expected: map[string]string{
				"id": "42", "page": "1", "songCount": "10", "albumCount": "10",
				"sortBy": "popularity", "sortOrder": "asc",
			},
		},
		{
			name: "artist songs",
			call: func(c *Client) error {
				_, err := c.ArtistSongs(context.Background(), "42", ArtistOptions{SortBy: SortByLatest, SortOrder: SortDesc})
				return err
			},
			path:     "/api/artists/42/songs",
			expected: map[string]string{"id": "42", "page": "1", "sortBy": "latest", "sortOrder": "desc"},
		},
		{
			name: "playlist by link",
			call: func(c *Client) error {
				_, err := c.PlaylistByLink(context.Background(), "https://example.com/p", PageOptions{Page: 3})
				return err
			},
			path:     "/api/playlists",
			expected: map[string]string{"link": "https://example.com/p", "page": "3", "limit": "10"},
		},
		{
			name: "lyrics",
			call: func(c *Client) error {
				_, err := c.LyricsByID(context.Background(), "abc")
				return err
			},
			path:     "/api/songs/abc/lyrics",
			expected: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *url.URL
			c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				got = r.URL
				w.Write([]byte(`{"success":true,"data":null}`))
			})

			if err := tt.call(c); err != nil {
				t.Fatalf("call error = %v", err)
			}
			if got.Path != tt.path {
				t.Errorf("path = %q, want %q", got.Path, tt.path)
			}
			q := got.Query()
			if len(q) != len(tt.expected) {
				t.Errorf("query = %v, want %v", q, tt.expected)
			}
			for k, v := range tt.expected {
				if q.Get(k) != v {
					t.Errorf("%s = %q, want %q", k, q.Get(k), v)
				}
			}
		})
	}
}

func TestLookupSongRetriesWithoutLyrics(t *testing.T) {
	var attempts []string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		lyrics := r.URL.Query().Get("lyrics")
		attempts = append(attempts, lyrics)
		if lyrics == "true" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(songJSON))
	})

	song, err := c.LookupSong(context.Background(), "yDeAS8Eh")
	if err != nil {
		t.Fatalf("LookupSong() error = %v", err)
	}
	if song.ID != "yDeAS8Eh" {
		t.Errorf("id = %q", song.ID)
	}
	if strings.Join(attempts, ",") != "true,false" {
		t.Errorf("attempts = %v", attempts)
	}
}

func TestLookupSongNotFound(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[]}`))
	})

	if _, err := c.LookupSong(context.Background(), "nope"); !errors.Is(err, ErrSongNotFound) {
		t.Fatalf("err = %v, want ErrSongNotFound", err)
	}
}

func TestPlayableTrackUsesSearchLinks(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	})

	song := Song{
		ID:   "abc",
		Name: "Song",
		DownloadURL: []Link{
			{Quality: "12kbps", URL: "https://cdn/12.mp4"},
			{Quality: "48kbps", URL: "https://cdn/48.mp4"},
			{Quality: "96kbps", URL: "https://cdn/96.mp4"},
		},
	}

	track, err := c.PlayableTrack(context.Background(), song, "")
	if err != nil {
		t.Fatalf("PlayableTrack() error = %v", err)
	}
	if track.URL != "https://cdn/96.mp4" {
		t.Errorf("url = %q", track.URL)
	}
}

func TestPlayableTrackFetchesMissingLinks(t *testing.T) {
	var paths []string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte(songJSON))
	})

	track, err := c.PlayableTrack(context.Background(), Song{ID: "yDeAS8Eh", Name: "Kun Faya Kun"}, "")
	if err != nil {
		t.Fatalf("PlayableTrack() error = %v", err)
	}
	if track.ID != "yDeAS8Eh" || track.URL == "" {
		t.Errorf("unexpected track %+v", track)
	}
	if len(paths) != 1 || paths[0] != "/api/songs/yDeAS8Eh" {
		t.Errorf("paths = %v", paths)
	}
}

func TestTrackByIDWithoutLinks(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[{"id":"x","name":"No Links"}]}`))
	})

	if _, err := c.TrackByID(context.Background(), "x", ""); !errors.Is(err, ErrSongNotFound) {
		t.Fatalf("err = %v, want ErrSongNotFound", err)
	}
}
