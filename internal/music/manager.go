package music

import (
	"context"
	"errors"
	"math/rand"
	"slices"
	"sync"
	"time"

	"github.com/hxnx/kampita/internal/metrics"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

const (
	restartThreshold   = 3 * time.Second
	defaultSaveTimeout = 2 * time.Second
)

type ManagerOptions struct {
	Key       string
	Store     StateStore
	Transport Transport
	Logger    *log.Entry

	// DefaultVolume applies when no persisted state exists. Zero means 1.
	DefaultVolume float64

	// Intn picks the shuffle index. Defaults to math/rand.
	Intn func(n int) int
}

// Manager owns one player's state and the transport it drives. All operations
// are serialized; transport events are applied through Dispatch.
type Manager struct {
	mu          sync.Mutex
	key         string
	store       StateStore
	transport   Transport
	logger      *log.Entry
	intn        func(n int) int
	saveTimeout time.Duration
	defaultVol  float64

	status   Status
	current  *Track
	queue    []Track
	history  []Track
	shuffle  bool
	repeat   RepeatMode
	volume   float64
	position time.Duration
	duration time.Duration
	seq      uint64
}

func NewManager(opts ManagerOptions) *Manager {
	if opts.Logger == nil {
		opts.Logger = log.NewEntry(log.StandardLogger())
	}
	if opts.Intn == nil {
		opts.Intn = rand.Intn
	}
	if opts.DefaultVolume <= 0 {
		opts.DefaultVolume = 1
	}

	return &Manager{
		key:         opts.Key,
		store:       opts.Store,
		transport:   opts.Transport,
		logger:      opts.Logger.WithField("player", opts.Key),
		intn:        opts.Intn,
		saveTimeout: defaultSaveTimeout,
		defaultVol:  clampVolume(opts.DefaultVolume),
		status:      StatusIdle,
		queue:       []Track{},
		history:     []Track{},
		repeat:      RepeatOff,
		volume:      clampVolume(opts.DefaultVolume),
	}
}

func (m *Manager) Key() string {
	return m.key
}

// Restore reads the persisted state once. Missing or malformed data leaves the
// defaults in place.
func (m *Manager) Restore(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state := defaultState()
	*state.Volume = m.defaultVol

	if m.store != nil {
		payload, err := m.store.Load(ctx, m.key)
		switch {
		case errors.Is(err, ErrStateNotFound):
		case err != nil:
			m.logger.WithError(err).Warn("failed to read persisted player state")
		default:
			decoded, err := DecodeState(m.key, payload)
			if err != nil {
				m.logger.WithError(err).Warn("discarding persisted player state")
			} else {
				state = decoded
			}
		}
	}

	m.volume = *state.Volume
	m.queue = append([]Track{}, state.Queue...)
	m.history = append([]Track{}, state.PlayHistory...)
	m.shuffle = state.IsShuffle
	m.repeat = state.RepeatMode
	m.current = state.CurrentTrack
	m.status = StatusIdle
	m.position = 0
	m.duration = 0
	if m.current != nil {
		m.queue = removeByID(m.queue, m.current.ID)
		m.duration = m.current.DurationValue()
	}
	m.transport.SetVolume(m.volume)
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	var current *Track
	if m.current != nil {
		t := *m.current
		current = &t
	}

	return Snapshot{
		Status:       m.status,
		CurrentTrack: current,
		Queue:        slices.Clone(m.queue),
		History:      slices.Clone(m.history),
		Shuffle:      m.shuffle,
		Repeat:       m.repeat,
		Volume:       m.volume,
		Position:     m.currentPosition(),
		Duration:     m.duration,
	}
}

func (m *Manager) TogglePlay() {
	m.mu.Lock()
	defer m.mu.Unlock()
	metrics.PlayerOperations.WithLabelValues("toggle_play").Inc()

	if m.current == nil {
		return
	}

	switch m.status {
	case StatusPlaying:
		m.transport.Pause()
		m.status = StatusPaused
	case StatusPaused:
		if err := m.transport.Play(); err != nil {
			if errors.Is(err, ErrNothingLoaded) {
				m.load()
				break
			}
			m.fail("play", err)
			m.status = StatusPaused
			break
		}
		m.status = StatusPlaying
	case StatusIdle:
		m.load()
	case StatusLoading:
	}

	m.save()
}

func (m *Manager) SeekTo(position time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	metrics.PlayerOperations.WithLabelValues("seek").Inc()

	if m.current == nil {
		return
	}

	if position < 0 {
		position = 0
	}
	if m.duration > 0 && position > m.duration {
		position = m.duration
	}
	m.seek(position)
}

func (m *Manager) SetVolume(volume float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	metrics.PlayerOperations.WithLabelValues("set_volume").Inc()

	m.volume = clampVolume(volume)
	m.transport.SetVolume(m.volume)
	m.save()
}

// SetCurrentTrack replaces the current track, recording the previous one in
// history. A nil track stops playback and clears the current track.
func (m *Manager) SetCurrentTrack(track *Track) {
	m.mu.Lock()
	defer m.mu.Unlock()
	metrics.PlayerOperations.WithLabelValues("set_current_track").Inc()

	if m.current != nil {
		m.pushHistory(*m.current)
	}

	if track == nil {
		m.current = nil
		m.seq++
		m.transport.Stop()
		m.status = StatusIdle
		m.position = 0
		m.duration = 0
		m.save()
		return
	}

	next := *track
	m.current = &next
	m.queue = removeByID(m.queue, next.ID)
	m.load()
	m.save()
}

// PlayTrack jumps to the queue entry at index. It reports false when index is
// out of range.
func (m *Manager) PlayTrack(index int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	metrics.PlayerOperations.WithLabelValues("play_track").Inc()

	if index < 0 || index >= len(m.queue) {
		return false
	}

	next := m.queue[index]
	if m.current != nil {
		m.pushHistory(*m.current)
	}
	m.current = &next
	m.queue = removeByID(m.queue, next.ID)
	m.load()
	m.save()
	return true
}

func (m *Manager) AddToQueue(track Track) {
	m.mu.Lock()
	defer m.mu.Unlock()
	metrics.PlayerOperations.WithLabelValues("add_to_queue").Inc()

	m.queue = append(m.queue, track)
	m.save()
}

// RemoveFromQueue drops every queue entry with the given id.
func (m *Manager) RemoveFromQueue(trackID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	metrics.PlayerOperations.WithLabelValues("remove_from_queue").Inc()

	m.queue = removeByID(m.queue, trackID)
	m.save()
}

func (m *Manager) ClearQueue() {
	m.mu.Lock()
	defer m.mu.Unlock()
	metrics.PlayerOperations.WithLabelValues("clear_queue").Inc()

	m.queue = []Track{}
	m.save()
}

func (m *Manager) ToggleShuffle() {
	m.mu.Lock()
	defer m.mu.Unlock()
	metrics.PlayerOperations.WithLabelValues("toggle_shuffle").Inc()

	m.shuffle = !m.shuffle
	m.save()
}

func (m *Manager) ToggleRepeat() {
	m.mu.Lock()
	defer m.mu.Unlock()
	metrics.PlayerOperations.WithLabelValues("toggle_repeat").Inc()

	m.repeat = m.repeat.Next()
	m.save()
}

// PlayNext advances to the next track. It is used both for skips and for the
// transport's end-of-track event.
func (m *Manager) PlayNext() {
	m.mu.Lock()
	defer m.mu.Unlock()
	metrics.PlayerOperations.WithLabelValues("play_next").Inc()

	m.advance()
	m.save()
}

func (m *Manager) PlayPrevious() {
	m.mu.Lock()
	defer m.mu.Unlock()
	metrics.PlayerOperations.WithLabelValues("play_previous").Inc()

	if m.current != nil && m.currentPosition() > restartThreshold {
		m.seek(0)
		return
	}

	if len(m.history) > 0 {
		prev := m.history[0]
		m.history = slices.Clone(m.history[1:])
		if m.current != nil {
			m.queue = append([]Track{*m.current}, m.queue...)
		}
		m.current = &prev
		m.queue = removeByID(m.queue, prev.ID)
		m.load()
		m.save()
		return
	}

	if m.repeat == RepeatAll && m.current != nil {
		ring := append([]Track{*m.current}, m.queue...)
		last := ring[len(ring)-1]
		rest := ring[:len(ring)-1]
		if len(rest) > MaxHistoryLength {
			rest = rest[:MaxHistoryLength]
		}
		m.history = slices.Clone(rest)
		m.queue = []Track{}
		m.current = &last
		m.load()
		m.save()
	}
}

// Dispatch applies a transport event. Events from a superseded load are
// ignored.
func (m *Manager) Dispatch(ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ev.Seq != m.seq {
		return
	}

	switch ev.Type {
	case EventReady:
		if ev.Duration > 0 {
			m.duration = ev.Duration
		}
		if m.status == StatusLoading {
			m.status = StatusPlaying
		}
	case EventError:
		op := "stream"
		if m.status == StatusLoading {
			op = "load"
		}
		m.fail(op, ev.Err)
		switch m.status {
		case StatusLoading:
			m.status = StatusIdle
		case StatusPlaying:
			m.status = StatusPaused
		}
	case EventEnded:
		metrics.PlayerOperations.WithLabelValues("track_ended").Inc()
		m.advance()
		m.save()
	case EventTimeUpdate:
		m.position = ev.Position
	case EventMetadata:
		if ev.Duration > 0 {
			m.duration = ev.Duration
		}
	}
}

// Run applies events until ctx is done or events is closed.
func (m *Manager) Run(ctx context.Context, events <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			m.Dispatch(ev)
		}
	}
}

func (m *Manager) advance() {
	before := slices.Clone(m.history)
	if m.current != nil {
		m.pushHistory(*m.current)
	}

	if m.repeat == RepeatOne && m.current != nil {
		m.restart()
		return
	}

	if len(m.queue) > 0 {
		index := 0
		if m.shuffle {
			index = m.intn(len(m.queue))
		}
		next := m.queue[index]
		m.queue = removeByID(m.queue, next.ID)
		m.current = &next
		m.load()
		return
	}

	if m.repeat == RepeatAll {
		ring := before
		if m.current != nil {
			ring = append(ring, *m.current)
		}
		if len(ring) > 0 {
			slices.Reverse(ring)
			next := ring[0]
			m.history = []Track{}
			m.queue = removeByID(ring[1:], next.ID)
			m.current = &next
			m.load()
			return
		}
	}

	m.transport.Stop()
	m.position = 0
	if m.current != nil {
		m.status = StatusPaused
	} else {
		m.status = StatusIdle
	}
}

func (m *Manager) restart() {
	if err := m.transport.Seek(0); err != nil {
		if errors.Is(err, ErrNothingLoaded) {
			m.load()
			return
		}
		m.fail("restart", err)
		m.status = StatusPaused
		return
	}
	m.position = 0

	if err := m.transport.Play(); err != nil {
		m.fail("restart", err)
		m.status = StatusPaused
		return
	}
	m.status = StatusPlaying
}

func (m *Manager) seek(position time.Duration) {
	wasPlaying := m.status == StatusPlaying

	if err := m.transport.Seek(position); err != nil {
		m.fail("seek", err)
		if wasPlaying {
			m.transport.Pause()
			m.status = StatusPaused
		}
		return
	}
	m.position = position

	if !wasPlaying {
		return
	}
	if err := m.transport.Play(); err != nil {
		m.fail("seek", err)
		m.transport.Pause()
		m.status = StatusPaused
	}
}

func (m *Manager) load() {
	m.seq++
	m.status = StatusLoading
	m.position = 0
	m.duration = m.current.DurationValue()
	m.transport.Load(m.seq, *m.current)
}

func (m *Manager) currentPosition() time.Duration {
	if m.status == StatusPlaying || m.status == StatusPaused {
		return m.transport.Position()
	}
	return m.position
}

func (m *Manager) pushHistory(track Track) {
	m.history = append([]Track{track}, m.history...)
	if len(m.history) > MaxHistoryLength {
		m.history = m.history[:MaxHistoryLength]
	}
}

func (m *Manager) fail(op string, err error) {
	trackID := ""
	if m.current != nil {
		trackID = m.current.ID
	}
	metrics.PlaybackFailures.WithLabelValues(op).Inc()
	m.logger.WithError(&PlaybackError{Op: op, TrackID: trackID, Err: err}).Warn("playback failure")
}

func (m *Manager) save() {
	if m.store == nil {
		return
	}

	volume := m.volume
	payload, err := EncodeState(PersistedState{
		Volume:       &volume,
		Queue:        m.queue,
		PlayHistory:  m.history,
		IsShuffle:    m.shuffle,
		RepeatMode:   m.repeat,
		CurrentTrack: m.current,
	})
	if err != nil {
		m.logger.WithError(err).Error("failed to encode player state")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.saveTimeout)
	defer cancel()

	if err := m.store.Save(ctx, m.key, payload); err != nil {
		m.logger.WithError(err).Warn("failed to persist player state")
	}
}

func removeByID(tracks []Track, id string) []Track {
	return lo.Filter(tracks, func(t Track, _ int) bool {
		return t.ID != id
	})
}
