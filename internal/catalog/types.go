package catalog

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Response is the envelope every catalog endpoint answers with.
type Response[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

// Text accepts a JSON string, number or null. The catalog is inconsistent
// about the type of fields like year and playCount.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*t = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*t = Text(n.String())
	}
	return nil
}

func (t Text) String() string {
	return string(t)
}

func (t Text) Int() int64 {
	n, _ := strconv.ParseInt(string(t), 10, 64)
	return n
}

// Link is an image or download URL at a given quality.
type Link struct {
	Quality string `json:"quality"`
	URL     string `json:"url"`
}

type ArtistRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Type  string `json:"type"`
	Image []Link `json:"image"`
	URL   string `json:"url"`
}

type ArtistGroups struct {
	Primary  []ArtistRef `json:"primary"`
	Featured []ArtistRef `json:"featured"`
	All      []ArtistRef `json:"all"`
}

type AlbumRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type Lyrics struct {
	Lyrics    string `json:"lyrics"`
	Copyright string `json:"copyright"`
	Snippet   string `json:"snippet"`
}

type Song struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Type            string       `json:"type"`
	Year            Text         `json:"year"`
	ReleaseDate     Text         `json:"releaseDate"`
	Duration        float64      `json:"duration"`
	Label           string       `json:"label"`
	ExplicitContent bool         `json:"explicitContent"`
	PlayCount       Text         `json:"playCount"`
	Language        string       `json:"language"`
	HasLyrics       bool         `json:"hasLyrics"`
	LyricsID        string       `json:"lyricsId"`
	Lyrics          *Lyrics      `json:"lyrics,omitempty"`
	URL             string       `json:"url"`
	Copyright       string       `json:"copyright"`
	Album           AlbumRef     `json:"album"`
	Artists         ArtistGroups `json:"artists"`
	Image           []Link       `json:"image"`
	DownloadURL     []Link       `json:"downloadUrl"`
}

type Album struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Description     string       `json:"description"`
	Year            Text         `json:"year"`
	Type            string       `json:"type"`
	PlayCount       Text         `json:"playCount"`
	Language        string       `json:"language"`
	ExplicitContent bool         `json:"explicitContent"`
	Artists         ArtistGroups `json:"artists"`
	SongCount       int          `json:"songCount"`
	URL             string       `json:"url"`
	Image           []Link       `json:"image"`
	Songs           []Song       `json:"songs"`
}

type Playlist struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	Type            string      `json:"type"`
	Year            Text        `json:"year"`
	PlayCount       Text        `json:"playCount"`
	Language        string      `json:"language"`
	ExplicitContent bool        `json:"explicitContent"`
	URL             string      `json:"url"`
	SongCount       int         `json:"songCount"`
	Artists         []ArtistRef `json:"artists"`
	Image           []Link      `json:"image"`
	Songs           []Song      `json:"songs"`
}

type Artist struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	URL              string      `json:"url"`
	Type             string      `json:"type"`
	Image            []Link      `json:"image"`
	FollowerCount    Text        `json:"followerCount"`
	FanCount         Text        `json:"fanCount"`
	IsVerified       bool        `json:"isVerified"`
	DominantLanguage string      `json:"dominantLanguage"`
	DominantType     string      `json:"dominantType"`
	TopSongs         []Song      `json:"topSongs"`
	TopAlbums        []Album     `json:"topAlbums"`
	Singles          []Song      `json:"singles"`
	SimilarArtists   []ArtistRef `json:"similarArtists"`
}

// Page is one page of a search endpoint.
type Page[T any] struct {
	Total   int `json:"total"`
	Start   int `json:"start"`
	Results []T `json:"results"`
}

// SearchHit is the reduced item shape of the global search endpoint.
type SearchHit struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Image          []Link `json:"image"`
	Album          string `json:"album"`
	Artist         string `json:"artist"`
	URL            string `json:"url"`
	Type           string `json:"type"`
	Description    string `json:"description"`
	PrimaryArtists string `json:"primaryArtists"`
	Singers        string `json:"singers"`
	Language       string `json:"language"`
	Year           Text   `json:"year"`
}

type SearchSection struct {
	Results  []SearchHit `json:"results"`
	Position int         `json:"position"`
}

type SearchResults struct {
	TopQuery  SearchSection `json:"topQuery"`
	Songs     SearchSection `json:"songs"`
	Albums    SearchSection `json:"albums"`
	Artists   SearchSection `json:"artists"`
	Playlists SearchSection `json:"playlists"`
}

type ArtistSongs struct {
	Total int    `json:"total"`
	Songs []Song `json:"songs"`
}

type ArtistAlbums struct {
	Total  int     `json:"total"`
	Albums []Album `json:"albums"`
}
