package music

import (
	"context"
	"encoding/json"
	"sync"
)

const stateKeyPrefix = "audioPlayerState"

// StateStore holds one JSON blob per key. Load returns ErrStateNotFound when
// nothing was saved under key.
type StateStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, payload []byte) error
}

func StateKey(guildID string) string {
	if guildID == "" {
		return stateKeyPrefix
	}
	return stateKeyPrefix + ":" + guildID
}

func EncodeState(state PersistedState) ([]byte, error) {
	if state.Queue == nil {
		state.Queue = []Track{}
	}
	if state.PlayHistory == nil {
		state.PlayHistory = []Track{}
	}
	if !state.RepeatMode.Valid() {
		state.RepeatMode = RepeatOff
	}
	return json.Marshal(state)
}

// DecodeState parses a persisted blob. Missing fields take their defaults and a
// missing or out of range volume becomes 1.
func DecodeState(key string, payload []byte) (PersistedState, error) {
	var state PersistedState
	if err := json.Unmarshal(payload, &state); err != nil {
		return defaultState(), &MalformedStateError{Key: key, Err: err}
	}

	if state.Volume == nil {
		v := 1.0
		state.Volume = &v
	} else {
		v := clampVolume(*state.Volume)
		state.Volume = &v
	}
	if !state.RepeatMode.Valid() {
		state.RepeatMode = RepeatOff
	}
	if len(state.PlayHistory) > MaxHistoryLength {
		state.PlayHistory = state.PlayHistory[:MaxHistoryLength]
	}
	if state.CurrentTrack != nil && state.CurrentTrack.ID == "" {
		state.CurrentTrack = nil
	}

	return state, nil
}

func defaultState() PersistedState {
	v := 1.0
	return PersistedState{
		Volume:      &v,
		Queue:       []Track{},
		PlayHistory: []Track{},
		RepeatMode:  RepeatOff,
	}
}

func clampVolume(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// MemoryStore keeps state in process memory. It backs players when no durable
// store is configured.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, ok := s.data[key]
	if !ok {
		return nil, ErrStateNotFound
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return out, nil
}

func (s *MemoryStore) Save(_ context.Context, key string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(payload))
	copy(stored, payload)
	s.data[key] = stored
	return nil
}
