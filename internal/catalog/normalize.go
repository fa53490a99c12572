package catalog

import (
	"fmt"
	"strings"

	"github.com/hxnx/kampita/internal/music"
	"github.com/samber/lo"
)

const (
	DefaultPlaceholderImage = "/images/placeholder/song.jpg"

	UnknownArtist   = "Unknown Artist"
	UnknownItem     = "Unknown Item"
	UnknownArtistID = "0000"

	// Catalog image and download lists are ordered low to high quality.
	imageSlot        = 0
	previewImageSlot = 2
	downloadSlot     = 2
)

// ToTrack maps a catalog song onto a playable track using the default
// placeholder artwork.
func ToTrack(song Song) music.Track {
	return ToTrackWithPlaceholder(song, DefaultPlaceholderImage)
}

// ToTrackWithPlaceholder maps a catalog song onto a playable track. Missing
// artwork falls back to placeholder.
func ToTrackWithPlaceholder(song Song, placeholder string) music.Track {
	name := strings.TrimSpace(song.Name)
	if name == "" {
		name = UnknownItem
	}

	return music.Track{
		ID:           song.ID,
		Name:         name,
		Artist:       ArtistLine(song.Artists),
		URL:          StreamURL(song),
		Image:        linkAt(song.Image, imageSlot, placeholder),
		PreviewImage: linkAt(song.Image, previewImageSlot, placeholder),
		Duration:     song.Duration,
	}
}

func ToTracks(songs []Song, placeholder string) []music.Track {
	return lo.Map(songs, func(s Song, _ int) music.Track {
		return ToTrackWithPlaceholder(s, placeholder)
	})
}

// ArtistLine joins the names of the first non-empty artist group, in the order
// primary, featured, all.
func ArtistLine(groups ArtistGroups) string {
	artists := firstNonEmpty(groups.Primary, groups.Featured, groups.All)

	names := lo.Uniq(lo.FilterMap(artists, func(a ArtistRef, _ int) (string, bool) {
		name := strings.TrimSpace(a.Name)
		return name, name != ""
	}))
	if len(names) == 0 {
		return UnknownArtist
	}
	return strings.Join(names, ", ")
}

// PrimaryArtistID picks the artist used for "more from this artist" lookups.
func PrimaryArtistID(song Song) string {
	for _, group := range [][]ArtistRef{song.Artists.Primary, song.Artists.Featured, song.Artists.All} {
		if len(group) > 0 && group[0].ID != "" {
			return group[0].ID
		}
	}
	return UnknownArtistID
}

// UniqueArtists lists everyone credited on song, first credit per name wins.
func UniqueArtists(song Song) []ArtistRef {
	return lo.UniqBy(song.Artists.All, func(a ArtistRef) string {
		return a.Name
	})
}

// StreamURL prefers the third download quality and falls back to the best
// quality available.
func StreamURL(song Song) string {
	if u := linkAt(song.DownloadURL, downloadSlot, ""); u != "" {
		return u
	}
	for i := len(song.DownloadURL) - 1; i >= 0; i-- {
		if song.DownloadURL[i].URL != "" {
			return song.DownloadURL[i].URL
		}
	}
	return ""
}

// BestImage returns the highest quality artwork, or placeholder.
func BestImage(images []Link, placeholder string) string {
	for i := len(images) - 1; i >= 0; i-- {
		if images[i].URL != "" {
			return images[i].URL
		}
	}
	return placeholder
}

// FormatDuration renders seconds as m:ss.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func linkAt(links []Link, index int, fallback string) string {
	if index < len(links) && links[index].URL != "" {
		return links[index].URL
	}
	return fallback
}

func firstNonEmpty(groups ...[]ArtistRef) []ArtistRef {
	for _, g := range groups {
		if len(g) > 0 {
			return g
		}
	}
	return nil
}
