package dashboard

import (
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/kampita/internal/music"
)

func buttons(components []discordgo.MessageComponent) map[string]discordgo.Button {
	out := make(map[string]discordgo.Button)
	container := components[0].(discordgo.Container)
	for _, c := range container.Components {
		row, ok := c.(discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if b, ok := inner.(discordgo.Button); ok {
				out[b.CustomID] = b
			}
		}
	}
	return out
}

func TestBuildViewIdle(t *testing.T) {
	v := buildView(music.Snapshot{Repeat: music.RepeatOff}, false, false)
	if v.HasTrack || v.Playing {
		t.Fatalf("idle view reports a track: %+v", v)
	}
	if !strings.Contains(v.Title, "Nothing is playing") {
		t.Errorf("unexpected title %q", v.Title)
	}

	b := buttons(buildComponents(v))
	for _, id := range []string{CustomIDPrevious, CustomIDToggle, CustomIDNext} {
		if !b[id].Disabled {
			t.Errorf("%s should be disabled without a track", id)
		}
	}
	for _, id := range []string{CustomIDShuffle, CustomIDRepeat, CustomIDQueue} {
		if _, ok := b[id]; !ok || b[id].Disabled {
			t.Errorf("%s should be enabled", id)
		}
	}
}

func TestBuildViewPlaying(t *testing.T) {
	snap := music.Snapshot{
		Status:       music.StatusPlaying,
		CurrentTrack: &music.Track{ID: "a", Name: "Song *A*", Artist: "Band", Image: "https://img/a.jpg", Duration: 120},
		Queue:        []music.Track{{ID: "b"}, {ID: "c"}},
		Shuffle:      true,
		Repeat:       music.RepeatAll,
		Volume:       0.5,
		Position:     30 * time.Second,
	}

	v := buildView(snap, true, true)
	if !v.HasTrack || !v.Playing {
		t.Fatalf("expected playing view: %+v", v)
	}
	if !strings.Contains(v.Title, `Song \*A\*`) {
		t.Errorf("title not escaped: %q", v.Title)
	}
	if v.Queue != 2 || v.Volume != 50 || v.Repeat != "queue" || v.Shuffle != "on" {
		t.Errorf("unexpected settings: %+v", v)
	}
	if !strings.Contains(v.Progress, "0:30") || !strings.Contains(v.Progress, "2:00") {
		t.Errorf("unexpected progress %q", v.Progress)
	}
	if v.Thumbnail != "https://img/a.jpg" {
		t.Errorf("thumbnail = %q", v.Thumbnail)
	}

	b := buttons(buildComponents(v))
	if b[CustomIDToggle].Label != "Pause" {
		t.Errorf("toggle label = %q, want Pause", b[CustomIDToggle].Label)
	}
}

func TestBuildViewRelativeImageHasNoThumbnail(t *testing.T) {
	snap := music.Snapshot{
		Status:       music.StatusPaused,
		CurrentTrack: &music.Track{ID: "a", Name: "A", Image: "/images/placeholder/song.jpg"},
	}
	v := buildView(snap, true, false)
	if v.Thumbnail != "" {
		t.Errorf("placeholder path should not be used as a thumbnail, got %q", v.Thumbnail)
	}
	if !strings.Contains(settingsLine(v), "not in voice") {
		t.Errorf("settings line should flag the missing voice connection: %q", settingsLine(v))
	}
	if b := buttons(buildComponents(v)); b[CustomIDToggle].Label != "Play" {
		t.Errorf("toggle label = %q, want Play", b[CustomIDToggle].Label)
	}
}

func TestPlaybackHashBuckets(t *testing.T) {
	base := music.Snapshot{
		Status:       music.StatusPlaying,
		CurrentTrack: &music.Track{ID: "a"},
		Repeat:       music.RepeatOff,
	}

	early := base
	early.Position = time.Second
	later := base
	later.Position = 3 * time.Second
	if playbackHash(early) != playbackHash(later) {
		t.Error("positions in the same bucket should hash equal")
	}

	moved := base
	moved.Position = autoUpdateBucket + time.Second
	if playbackHash(early) == playbackHash(moved) {
		t.Error("positions in different buckets should hash differently")
	}

	paused := early
	paused.Status = music.StatusPaused
	if playbackHash(early) == playbackHash(paused) {
		t.Error("status change should change the hash")
	}
}

func TestShouldAutoUpdate(t *testing.T) {
	d := NewService(nil, nil, nil)
	snap := music.Snapshot{Status: music.StatusPlaying, CurrentTrack: &music.Track{ID: "a"}}

	if !d.shouldAutoUpdate("g", snap) {
		t.Fatal("first render should update")
	}
	d.recordRenderState("g", snap)
	if d.shouldAutoUpdate("g", snap) {
		t.Fatal("unchanged state should not update")
	}

	next := snap
	next.CurrentTrack = &music.Track{ID: "b"}
	if !d.shouldAutoUpdate("g", next) {
		t.Fatal("track change should update")
	}
}

func TestRepeatLabel(t *testing.T) {
	cases := map[music.RepeatMode]string{
		music.RepeatOff: "off",
		music.RepeatAll: "queue",
		music.RepeatOne: "track",
	}
	for mode, want := range cases {
		if got := RepeatLabel(mode); got != want {
			t.Errorf("RepeatLabel(%s) = %q, want %q", mode, got, want)
		}
	}
}

func TestEntryWithoutDatabase(t *testing.T) {
	d := NewService(nil, nil, nil)
	if _, ok := d.Entry("g"); ok {
		t.Fatal("unexpected entry")
	}
	if err := d.Refresh(&discordgo.Session{}, "g"); err != ErrNoDashboard {
		t.Fatalf("Refresh() = %v, want ErrNoDashboard", err)
	}
}
