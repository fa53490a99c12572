package catalog

import "testing"

func TestToTrack(t *testing.T) {
	images := []Link{{URL: "s.jpg"}, {URL: "m.jpg"}, {URL: "l.jpg"}}

	tests := []struct {
		name        string
		song        Song
		wantArtist  string
		wantURL     string
		wantImage   string
		wantPreview string
		wantName    string
	}{
		{
			name: "primary artists",
			song: Song{
				ID: "1", Name: "One",
				Artists: ArtistGroups{
					Primary:  []ArtistRef{{Name: "A"}, {Name: "B"}, {Name: "A"}},
					Featured: []ArtistRef{{Name: "F"}},
				},
				Image:       images,
				DownloadURL: []Link{{URL: "12"}, {URL: "48"}, {URL: "96"}, {URL: "160"}},
			},
			wantArtist: "A, B", wantURL: "96", wantImage: "s.jpg", wantPreview: "l.jpg", wantName: "One",
		},
		{
			name: "featured fallback",
			song: Song{
				ID: "2", Name: "Two",
				Artists:     ArtistGroups{Featured: []ArtistRef{{Name: "F"}}, All: []ArtistRef{{Name: "X"}}},
				DownloadURL: []Link{{URL: "12"}, {URL: "48"}},
			},
			wantArtist: "F", wantURL: "48", wantImage: "ph", wantPreview: "ph", wantName: "Two",
		},
		{
			name: "all fallback with short images",
			song: Song{
				ID:      "3",
				Artists: ArtistGroups{All: []ArtistRef{{Name: "X"}}},
				Image:   []Link{{URL: "only.jpg"}},
			},
			wantArtist: "X", wantURL: "", wantImage: "only.jpg", wantPreview: "ph", wantName: UnknownItem,
		},
		{
			name:       "no artists",
			song:       Song{ID: "4", Name: "Four"},
			wantArtist: UnknownArtist, wantImage: "ph", wantPreview: "ph", wantName: "Four",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			track := ToTrackWithPlaceholder(tt.song, "ph")
			if track.ID != tt.song.ID {
				t.Errorf("ID = %q", track.ID)
			}
			if track.Artist != tt.wantArtist {
				t.Errorf("Artist = %q, want %q", track.Artist, tt.wantArtist)
			}
			if track.URL != tt.wantURL {
				t.Errorf("URL = %q, want %q", track.URL, tt.wantURL)
			}
			if track.Image != tt.wantImage || track.PreviewImage != tt.wantPreview {
				t.Errorf("images = %q/%q, want %q/%q", track.Image, track.PreviewImage, tt.wantImage, tt.wantPreview)
			}
			if track.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", track.Name, tt.wantName)
			}
		})
	}
}

func TestPrimaryArtistID(t *testing.T) {
	tests := []struct {
		groups ArtistGroups
		want   string
	}{
		{ArtistGroups{Primary: []ArtistRef{{ID: "p"}}, All: []ArtistRef{{ID: "a"}}}, "p"},
		{ArtistGroups{Featured: []ArtistRef{{ID: "f"}}, All: []ArtistRef{{ID: "a"}}}, "f"},
		{ArtistGroups{All: []ArtistRef{{ID: "a"}}}, "a"},
		{ArtistGroups{}, UnknownArtistID},
	}
	for _, tt := range tests {
		if got := PrimaryArtistID(Song{Artists: tt.groups}); got != tt.want {
			t.Errorf("PrimaryArtistID() = %q, want %q", got, tt.want)
		}
	}
}

func TestUniqueArtists(t *testing.T) {
	song := Song{Artists: ArtistGroups{All: []ArtistRef{
		{ID: "1", Name: "A", Role: "singer"},
		{ID: "2", Name: "B"},
		{ID: "1", Name: "A", Role: "composer"},
	}}}

	got := UniqueArtists(song)
	if len(got) != 2 || got[0].Role != "singer" {
		t.Errorf("UniqueArtists() = %+v", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := map[int]string{0: "0:00", 5: "0:05", 65: "1:05", 262: "4:22", 3600: "60:00", -3: "0:00"}
	for in, want := range tests {
		if got := FormatDuration(in); got != want {
			t.Errorf("FormatDuration(%d) = %q, want %q", in, got, want)
		}
	}
}
