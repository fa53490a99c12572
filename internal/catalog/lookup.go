package catalog

import (
	"context"

	"github.com/hxnx/kampita/internal/music"
)

// LookupSong fetches a song with lyrics, retrying once without lyrics when the
// first attempt fails. Some songs error out upstream when lyrics are requested.
func (c *Client) LookupSong(ctx context.Context, id string) (Song, error) {
	song, err := c.firstSong(ctx, id, true)
	if err == nil {
		return song, nil
	}
	c.logger.WithField("song", id).WithError(err).Debug("song lookup with lyrics failed, retrying without")

	song, err = c.firstSong(ctx, id, false)
	if err != nil {
		if ctx.Err() != nil {
			return Song{}, ctx.Err()
		}
		return Song{}, ErrSongNotFound
	}
	return song, nil
}

func (c *Client) firstSong(ctx context.Context, id string, lyrics bool) (Song, error) {
	songs, err := c.SongByID(ctx, id, lyrics)
	if err != nil {
		return Song{}, err
	}
	if len(songs) == 0 {
		return Song{}, ErrSongNotFound
	}
	return songs[0], nil
}

// PlayableTrack maps song onto a track with a stream URL, fetching the full
// song when the search result carried no download links.
func (c *Client) PlayableTrack(ctx context.Context, song Song, placeholder string) (music.Track, error) {
	track := ToTrackWithPlaceholder(song, placeholder)
	if track.URL != "" {
		return track, nil
	}
	return c.TrackByID(ctx, song.ID, placeholder)
}

// TrackByID looks up a song and maps it onto a playable track.
func (c *Client) TrackByID(ctx context.Context, id string, placeholder string) (music.Track, error) {
	full, err := c.LookupSong(ctx, id)
	if err != nil {
		return music.Track{}, err
	}
	track := ToTrackWithPlaceholder(full, placeholder)
	if track.URL == "" {
		return music.Track{}, ErrSongNotFound
	}
	return track, nil
}
