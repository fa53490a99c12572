package redis

import (
	"context"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	Retry    Retry
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Retry controls how long Connect keeps pinging a server that is still
// starting up. Zero fields take the defaults.
type Retry struct {
	Attempts    int
	Backoff     time.Duration
	PingTimeout time.Duration
}

func (r Retry) withDefaults() Retry {
	if r.Attempts <= 0 {
		r.Attempts = 5
	}
	if r.Backoff <= 0 {
		r.Backoff = 200 * time.Millisecond
	}
	if r.PingTimeout <= 0 {
		r.PingTimeout = 3 * time.Second
	}
	return r
}

// Connect dials the server and waits for a successful ping. The client is
// closed when every attempt fails.
func Connect(ctx context.Context, cfg Config) (*redislib.Client, error) {
	client := redislib.NewClient(&redislib.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	logger := log.WithField("addr", cfg.Addr())
	ping := func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
	if err := pingWithBackoff(ctx, ping, cfg.Retry, logger); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Addr(), err)
	}

	logger.Info("Redis connection established")
	return client, nil
}

func pingWithBackoff(ctx context.Context, ping func(context.Context) error, retry Retry, logger *log.Entry) error {
	retry = retry.withDefaults()
	backoff := retry.Backoff

	var err error
	for attempt := 1; attempt <= retry.Attempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, retry.PingTimeout)
		err = ping(pingCtx)
		cancel()
		if err == nil {
			return nil
		}

		logger.WithField("attempt", attempt).WithError(err).Warn("Redis ping failed")
		if attempt == retry.Attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}
