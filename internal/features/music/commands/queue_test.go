package commands

import (
	"fmt"
	"strings"
	"testing"

	"github.com/hxnx/kampita/internal/music"
)

func TestHistoryListLimit(t *testing.T) {
	history := make([]music.Track, 20)
	for i := range history {
		history[i] = music.Track{ID: fmt.Sprint(i), Name: fmt.Sprintf("Track %d", i), Artist: "A"}
	}

	out := historyList(history, 15)
	lines := strings.Split(out, "\n")
	if len(lines) != 16 {
		t.Fatalf("got %d lines, want 15 tracks plus a summary", len(lines))
	}
	if !strings.HasPrefix(lines[0], "1. **Track 0**") {
		t.Errorf("first line = %q", lines[0])
	}
	if lines[15] != "…and 5 more" {
		t.Errorf("summary = %q", lines[15])
	}
}

func TestStatusLine(t *testing.T) {
	snap := music.Snapshot{
		Status:  music.StatusPlaying,
		Repeat:  music.RepeatOne,
		Shuffle: true,
		Volume:  0.8,
		Queue:   []music.Track{{ID: "a"}},
	}

	got := statusLine(snap)
	for _, want := range []string{"Playing", "🔁 track", "🔀 on", "80%", "1 queued"} {
		if !strings.Contains(got, want) {
			t.Errorf("statusLine() = %q, missing %q", got, want)
		}
	}
}

func TestDescribeCurrent(t *testing.T) {
	if got := describeCurrent(music.Snapshot{}, "Skipped."); got != "Skipped." {
		t.Errorf("got %q", got)
	}

	snap := music.Snapshot{CurrentTrack: &music.Track{Name: "Song_1", Artist: "Band"}}
	if got := describeCurrent(snap, "Went back."); got != `Went back. Now playing **Song\_1** · Band` {
		t.Errorf("got %q", got)
	}
}

func TestPercent(t *testing.T) {
	for in, want := range map[float64]int{0: 0, 0.5: 50, 0.333: 33, 1: 100} {
		if got := percent(in); got != want {
			t.Errorf("percent(%v) = %d, want %d", in, got, want)
		}
	}
}
