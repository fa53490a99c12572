package music

import (
	"errors"
	"fmt"
)

var (
	ErrNoVoiceChannel    = errors.New("user is not in a voice channel")
	ErrVoiceNotConnected = errors.New("voice connection not established")
	ErrNothingLoaded     = errors.New("no track loaded")
	ErrStateNotFound     = errors.New("player state not found")
)

// PlaybackError describes a failed transport operation. The Manager logs these
// instead of returning them.
type PlaybackError struct {
	Op      string
	TrackID string
	Err     error
}

func (e *PlaybackError) Error() string {
	if e.TrackID != "" {
		return fmt.Sprintf("%s failed for track %s: %v", e.Op, e.TrackID, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *PlaybackError) Unwrap() error {
	return e.Err
}

// MalformedStateError reports persisted state that could not be decoded.
type MalformedStateError struct {
	Key string
	Err error
}

func (e *MalformedStateError) Error() string {
	return fmt.Sprintf("malformed persisted state under %q: %v", e.Key, e.Err)
}

func (e *MalformedStateError) Unwrap() error {
	return e.Err
}
