package cli

import (
	"fmt"
	"strings"

	"github.com/hxnx/kampita/internal/catalog"
	"github.com/spf13/cobra"
)

const (
	searchAll       = "all"
	searchSongs     = "songs"
	searchAlbums    = "albums"
	searchArtists   = "artists"
	searchPlaylists = "playlists"
)

func newSearchCmd(root *rootOptions) *cobra.Command {
	var (
		kind  string
		page  int
		limit int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			client := root.client()
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			opts := catalog.PageOptions{Page: page, Limit: limit}

			switch kind {
			case searchAll:
				res, err := client.GlobalSearch(ctx, query)
				if err != nil {
					return err
				}
				renderGlobalSearch(out, res)
			case searchSongs:
				res, err := client.SearchSongs(ctx, query, opts)
				if err != nil {
					return err
				}
				renderSongs(out, res.Results, res.Total)
			case searchAlbums:
				res, err := client.SearchAlbums(ctx, query, opts)
				if err != nil {
					return err
				}
				renderAlbums(out, res.Results, res.Total)
			case searchArtists:
				res, err := client.SearchArtists(ctx, query, opts)
				if err != nil {
					return err
				}
				renderArtistRefs(out, res.Results, res.Total)
			case searchPlaylists:
				res, err := client.SearchPlaylists(ctx, query, opts)
				if err != nil {
					return err
				}
				renderPlaylists(out, res.Results, res.Total)
			default:
				return fmt.Errorf("unknown search type %q (want all, songs, albums, artists or playlists)", kind)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "type", "t", searchSongs, "what to search: all, songs, albums, artists, playlists")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "result page")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "results per page")
	return cmd
}

func newSongCmd(root *rootOptions) *cobra.Command {
	var lyrics bool

	cmd := &cobra.Command{
		Use:   "song <id|link>",
		Short: "Show a song's details and download links",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := root.client()
			ref := args[0]

			var songs []catalog.Song
			var err error
			if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
				songs, err = client.SongByLink(cmd.Context(), ref, lyrics)
			} else {
				songs, err = client.SongByID(cmd.Context(), ref, lyrics)
			}
			if err != nil {
				return err
			}
			if len(songs) == 0 {
				return catalog.ErrSongNotFound
			}

			for _, song := range songs {
				renderSong(cmd.OutOrStdout(), song)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&lyrics, "lyrics", false, "include lyrics")
	return cmd
}

func newArtistCmd(root *rootOptions) *cobra.Command {
	var (
		page      int
		sortBy    string
		sortOrder string
	)

	cmd := &cobra.Command{
		Use:   "artist <id>",
		Short: "List an artist's songs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := catalog.ArtistOptions{
				Page:      page,
				SortBy:    catalog.SortBy(sortBy),
				SortOrder: catalog.SortOrder(sortOrder),
			}
			if err := validateArtistOptions(opts); err != nil {
				return err
			}

			client := root.client()
			artist, err := client.ArtistByID(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			songs, err := client.ArtistSongs(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			renderArtistHeader(out, artist)
			renderSongs(out, songs.Songs, songs.Total)
			return nil
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 1, "result page")
	cmd.Flags().StringVar(&sortBy, "sort-by", string(catalog.SortByPopularity), "popularity, latest or alphabetical")
	cmd.Flags().StringVar(&sortOrder, "sort-order", string(catalog.SortAsc), "asc or desc")
	return cmd
}

func validateArtistOptions(opts catalog.ArtistOptions) error {
	switch opts.SortBy {
	case catalog.SortByPopularity, catalog.SortByLatest, catalog.SortByAlphabetical:
	default:
		return fmt.Errorf("invalid --sort-by %q", opts.SortBy)
	}
	switch opts.SortOrder {
	case catalog.SortAsc, catalog.SortDesc:
	default:
		return fmt.Errorf("invalid --sort-order %q", opts.SortOrder)
	}
	return nil
}
