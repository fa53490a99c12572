package redis

import (
	"context"
	"errors"
	"io"

	"github.com/hxnx/kampita/internal/music"
	redislib "github.com/redis/go-redis/v9"
)

// StateStore keeps each player's state blob as a plain string key.
type StateStore struct {
	client redislib.Cmdable
	closer io.Closer
}

var _ music.StateStore = (*StateStore)(nil)

func NewStateStore(client redislib.Cmdable) *StateStore {
	return &StateStore{client: client}
}

// OpenStateStore connects to cfg and returns a store that owns the client.
func OpenStateStore(ctx context.Context, cfg Config) (*StateStore, error) {
	client, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &StateStore{client: client, closer: client}, nil
}

// Close releases the client if the store opened it.
func (s *StateStore) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func (s *StateStore) Load(ctx context.Context, key string) ([]byte, error) {
	if s.client == nil {
		return nil, errors.New("redis client not initialized")
	}

	payload, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redislib.Nil) {
		return nil, music.ErrStateNotFound
	}
	return payload, err
}

func (s *StateStore) Save(ctx context.Context, key string, payload []byte) error {
	if s.client == nil {
		return errors.New("redis client not initialized")
	}
	return s.client.Set(ctx, key, payload, 0).Err()
}

// Keys lists stored player state keys.
func (s *StateStore) Keys(ctx context.Context) ([]string, error) {
	if s.client == nil {
		return nil, errors.New("redis client not initialized")
	}

	var keys []string
	iter := s.client.Scan(ctx, 0, music.StateKey("")+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	return keys, iter.Err()
}
