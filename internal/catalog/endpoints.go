package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

type SortBy string

const (
	SortByPopularity   SortBy = "popularity"
	SortByLatest       SortBy = "latest"
	SortByAlphabetical SortBy = "alphabetical"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// PageOptions selects a page of results. Zero values take the catalog
// defaults of page 1 and 10 items.
type PageOptions struct {
	Page  int
	Limit int
}

func (o PageOptions) params() Params {
	page, limit := o.Page, o.Limit
	if page <= 0 {
		page = defaultPage
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	return Params{"page": page, "limit": limit}
}

// ArtistOptions controls artist detail and listing endpoints.
type ArtistOptions struct {
	Page       int
	SongCount  int
	AlbumCount int
	SortBy     SortBy
	SortOrder  SortOrder
}

func (o ArtistOptions) withDefaults() ArtistOptions {
	if o.Page <= 0 {
		o.Page = defaultPage
	}
	if o.SongCount <= 0 {
		o.SongCount = defaultLimit
	}
	if o.AlbumCount <= 0 {
		o.AlbumCount = defaultLimit
	}
	if o.SortBy == "" {
		o.SortBy = SortByPopularity
	}
	if o.SortOrder == "" {
		o.SortOrder = SortAsc
	}
	return o
}

func fetch[T any](ctx context.Context, c *Client, endpoint string, params Params) (T, error) {
	var zero T

	raw, err := c.Call(ctx, endpoint, params)
	if err != nil {
		return zero, err
	}

	buf, err := json.Marshal(DecodeEntities(raw))
	if err != nil {
		return zero, fmt.Errorf("re-encoding %s response: %w", endpoint, err)
	}

	var resp Response[T]
	if err := json.Unmarshal(buf, &resp); err != nil {
		return zero, fmt.Errorf("decoding %s response: %w", endpoint, err)
	}
	return resp.Data, nil
}

func (c *Client) GlobalSearch(ctx context.Context, query string) (SearchResults, error) {
	return fetch[SearchResults](ctx, c, "search", Params{"query": query})
}

func (c *Client) SearchSongs(ctx context.Context, query string, opts PageOptions) (Page[Song], error) {
	return fetch[Page[Song]](ctx, c, "search/songs", withQuery(opts.params(), query))
}

func (c *Client) SearchAlbums(ctx context.Context, query string, opts PageOptions) (Page[Album], error) {
	return fetch[Page[Album]](ctx, c, "search/albums", withQuery(opts.params(), query))
}

func (c *Client) SearchArtists(ctx context.Context, query string, opts PageOptions) (Page[ArtistRef], error) {
	return fetch[Page[ArtistRef]](ctx, c, "search/artists", withQuery(opts.params(), query))
}

func (c *Client) SearchPlaylists(ctx context.Context, query string, opts PageOptions) (Page[Playlist], error) {
	return fetch[Page[Playlist]](ctx, c, "search/playlists", withQuery(opts.params(), query))
}

func (c *Client) SongByID(ctx context.Context, id string, lyrics bool) ([]Song, error) {
	return fetch[[]Song](ctx, c, "songs/"+url.PathEscape(id), Params{"lyrics": lyrics})
}

func (c *Client) SongByLink(ctx context.Context, link string, lyrics bool) ([]Song, error) {
	return fetch[[]Song](ctx, c, "songs", Params{"link": link, "lyrics": lyrics})
}

func (c *Client) LyricsByID(ctx context.Context, id string) (Lyrics, error) {
	return fetch[Lyrics](ctx, c, "songs/"+url.PathEscape(id)+"/lyrics", nil)
}

// SongSuggestions returns songs similar to id. A limit of zero means 10.
func (c *Client) SongSuggestions(ctx context.Context, id string, limit int) ([]Song, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	return fetch[[]Song](ctx, c, "songs/"+url.PathEscape(id)+"/suggestions", Params{"limit": limit})
}

func (c *Client) AlbumByID(ctx context.Context, id string) (Album, error) {
	return fetch[Album](ctx, c, "albums", Params{"id": id})
}

func (c *Client) AlbumByLink(ctx context.Context, link string) (Album, error) {
	return fetch[Album](ctx, c, "albums", Params{"link": link})
}

func (c *Client) PlaylistByID(ctx context.Context, id string, opts PageOptions) (Playlist, error) {
	params := opts.params()
	params["id"] = id
	return fetch[Playlist](ctx, c, "playlists", params)
}

func (c *Client) PlaylistByLink(ctx context.Context, link string, opts PageOptions) (Playlist, error) {
	params := opts.params()
	params["link"] = link
	return fetch[Playlist](ctx, c, "playlists", params)
}

func (c *Client) ArtistByID(ctx context.Context, id string, opts ArtistOptions) (Artist, error) {
	opts = opts.withDefaults()
	return fetch[Artist](ctx, c, "artists", Params{
		"id":         id,
		"page":       opts.Page,
		"songCount":  opts.SongCount,
		"albumCount": opts.AlbumCount,
		"sortBy":     string(opts.SortBy),
		"sortOrder":  string(opts.SortOrder),
	})
}

func (c *Client) ArtistSongs(ctx context.Context, id string, opts ArtistOptions) (ArtistSongs, error) {
	opts = opts.withDefaults()
	return fetch[ArtistSongs](ctx, c, "artists/"+url.PathEscape(id)+"/songs", artistListParams(id, opts))
}

func (c *Client) ArtistAlbums(ctx context.Context, id string, opts ArtistOptions) (ArtistAlbums, error) {
	opts = opts.withDefaults()
	return fetch[ArtistAlbums](ctx, c, "artists/"+url.PathEscape(id)+"/albums", artistListParams(id, opts))
}

func artistListParams(id string, opts ArtistOptions) Params {
	return Params{
		"id":        id,
		"page":      opts.Page,
		"sortBy":    string(opts.SortBy),
		"sortOrder": string(opts.SortOrder),
	}
}

func withQuery(params Params, query string) Params {
	params["query"] = query
	return params
}
