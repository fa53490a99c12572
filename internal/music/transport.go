package music

import "time"

type EventType int

const (
	EventReady EventType = iota
	EventError
	EventEnded
	EventTimeUpdate
	EventMetadata
)

func (t EventType) String() string {
	switch t {
	case EventReady:
		return "ready"
	case EventError:
		return "error"
	case EventEnded:
		return "ended"
	case EventTimeUpdate:
		return "timeupdate"
	case EventMetadata:
		return "metadata"
	default:
		return "unknown"
	}
}

// Event is emitted by a Transport. Seq is the sequence number passed to the Load
// call the event belongs to.
type Event struct {
	Type     EventType
	Seq      uint64
	Position time.Duration
	Duration time.Duration
	Err      error
}

// Transport is the single audio output a Manager drives. Load starts fetching
// and playing a resource and reports readiness or failure through events.
// Stop halts output and rewinds to 0 while keeping the resource, so a later
// Play starts it again.
type Transport interface {
	Load(seq uint64, track Track)
	Play() error
	Pause()
	Stop()
	Seek(position time.Duration) error
	SetVolume(volume float64)
	Position() time.Duration
	Duration() time.Duration
}
