package music

import (
	"encoding/json"
	"strings"
	"time"
)

const MaxHistoryLength = 30

// Track is the unit the player operates on. Two tracks with the same ID are the
// same logical track.
type Track struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Artist       string  `json:"artist"`
	URL          string  `json:"url"`
	Image        string  `json:"image"`
	PreviewImage string  `json:"previewImage"`
	Duration     float64 `json:"duration,omitempty"`
}

func (t Track) DurationValue() time.Duration {
	if t.Duration <= 0 {
		return 0
	}
	return time.Duration(t.Duration * float64(time.Second))
}

type RepeatMode string

const (
	RepeatOff RepeatMode = "off"
	RepeatAll RepeatMode = "all"
	RepeatOne RepeatMode = "one"
)

// Next cycles off -> all -> one -> off.
func (r RepeatMode) Next() RepeatMode {
	switch r {
	case RepeatOff:
		return RepeatAll
	case RepeatAll:
		return RepeatOne
	default:
		return RepeatOff
	}
}

func (r RepeatMode) Valid() bool {
	switch r {
	case RepeatOff, RepeatAll, RepeatOne:
		return true
	default:
		return false
	}
}

func ParseRepeatMode(s string) (RepeatMode, bool) {
	mode := RepeatMode(strings.ToLower(strings.TrimSpace(s)))
	if !mode.Valid() {
		return RepeatOff, false
	}
	return mode, true
}

func (r *RepeatMode) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	mode, _ := ParseRepeatMode(s)
	*r = mode
	return nil
}

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusPlaying Status = "playing"
	StatusPaused  Status = "paused"
)

// Snapshot is a read-only copy of a Manager's state.
type Snapshot struct {
	Status       Status
	CurrentTrack *Track
	Queue        []Track
	History      []Track
	Shuffle      bool
	Repeat       RepeatMode
	Volume       float64
	Position     time.Duration
	Duration     time.Duration
}

func (s Snapshot) IsPlaying() bool {
	return s.Status == StatusPlaying
}

func (s Snapshot) IsLoading() bool {
	return s.Status == StatusLoading
}

func (s Snapshot) HasAudioData() bool {
	return s.CurrentTrack != nil || len(s.Queue) > 0 || len(s.History) > 0
}

// PersistedState is the subset of player state written to the state store.
type PersistedState struct {
	Volume       *float64   `json:"volume,omitempty"`
	Queue        []Track    `json:"queue"`
	PlayHistory  []Track    `json:"playHistory"`
	IsShuffle    bool       `json:"isShuffle"`
	RepeatMode   RepeatMode `json:"repeatMode"`
	CurrentTrack *Track     `json:"currentTrack"`
}
