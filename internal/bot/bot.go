package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/kampita/config"
	"github.com/hxnx/kampita/internal/catalog"
	"github.com/hxnx/kampita/internal/database"
	commands "github.com/hxnx/kampita/internal/features"
	dashboard "github.com/hxnx/kampita/internal/features/dashboard"
	"github.com/hxnx/kampita/internal/metrics"
	"github.com/hxnx/kampita/internal/music"
	log "github.com/sirupsen/logrus"
)

type Bot struct {
	config       *config.Config
	sessions     []*discordgo.Session
	started      bool
	presenceStop chan struct{}

	registry   *music.Registry
	dashboard  *dashboard.Service
	router     *commands.Router
	closeStore func() error

	metricsCancel context.CancelFunc
}

func New(cfg *config.Config) (*Bot, error) {
	if err := ConnectBackends(cfg); err != nil {
		return nil, err
	}

	store, closeStore, err := OpenStateStore(cfg)
	if err != nil {
		CloseBackends()
		return nil, err
	}
	logger.WithField("backend", cfg.StateBackend).Info("player state store ready")

	registry := music.NewRegistry(music.RegistryOptions{
		Store:         store,
		FFmpegPath:    cfg.FFmpegPath,
		DefaultVolume: cfg.InitialVolume(),
		Logger:        log.WithField("component", "player"),
	})

	client := catalog.New(cfg.CatalogURL, cfg.CatalogTimeoutDuration())
	dash := dashboard.NewService(registry, database.NewGuildRepository(), log.WithField("component", "dashboard"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := dash.LoadEntries(ctx); err != nil {
		logger.WithError(err).Warn("failed to load dashboard entries")
	}

	sessions, err := newSessions(cfg)
	if err != nil {
		registry.Close()
		_ = closeStore()
		CloseBackends()
		return nil, err
	}

	return &Bot{
		config:     cfg,
		sessions:   sessions,
		registry:   registry,
		dashboard:  dash,
		closeStore: closeStore,
		router: commands.NewRouter(commands.Deps{
			Config:    cfg,
			Registry:  registry,
			Catalog:   client,
			Dashboard: dash,
		}),
	}, nil
}

func newSessions(cfg *config.Config) ([]*discordgo.Session, error) {
	shardCount := cfg.ShardCount
	if shardCount < 1 {
		s, err := discordgo.New("Bot " + cfg.DiscordToken)
		if err != nil {
			return nil, err
		}

		if gw, err := s.GatewayBot(); err == nil && gw.Shards > 0 {
			shardCount = gw.Shards
		} else {
			logger.WithError(err).Warn("failed to auto-detect shard count, defaulting to 1")
			shardCount = 1
		}
	}

	sessions := make([]*discordgo.Session, 0, shardCount)
	for shard := 0; shard < shardCount; shard++ {
		s, err := discordgo.New("Bot " + cfg.DiscordToken)
		if err != nil {
			return nil, err
		}

		s.Identify.Intents = discordgo.IntentsGuilds |
			discordgo.IntentsGuildVoiceStates |
			discordgo.IntentsGuildMessages |
			discordgo.IntentsMessageContent

		if shardCount > 1 {
			s.Identify.Shard = &[2]int{shard, shardCount}
			s.ShardCount = shardCount
		}

		sessions = append(sessions, s)
	}
	return sessions, nil
}

func (b *Bot) Start() error {
	if b.started {
		return nil
	}

	if len(b.sessions) == 0 {
		return nil
	}

	for _, s := range b.sessions {
		b.registerHandlers(s)
		b.router.AddHandlers(s)
	}

	if _, err := commands.RegisterCommands(b.sessions[0], b.config.ApplicationID, b.config.GuildID); err != nil {
		logger.WithError(err).Warn("failed to register slash commands")
	}

	for _, s := range b.sessions {
		if err := s.Open(); err != nil {
			return fmt.Errorf("opening shard %d: %w", s.ShardID, err)
		}
	}

	if b.config.MetricsAddr != "" {
		ctx, cancel := context.WithCancel(context.Background())
		b.metricsCancel = cancel
		go func() {
			if err := metrics.Serve(ctx, b.config.MetricsAddr); err != nil {
				logger.WithError(err).Error("metrics server stopped")
			}
		}()
	}

	b.startPresenceUpdater()
	b.started = true
	logger.WithField("shards", len(b.sessions)).Info("bot session opened")
	return nil
}

func (b *Bot) registerHandlers(s *discordgo.Session) {
	s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		if s.State != nil && s.State.User != nil {
			logger.WithField("user", s.State.User.Username).Info("bot ready")
		} else {
			logger.Info("bot ready")
		}
		b.updatePresence()
	})
}

func (b *Bot) Stop() error {
	if !b.started {
		return nil
	}

	b.started = false
	b.stopPresenceUpdater()
	b.router.Close()
	b.dashboard.Close()
	b.registry.Close()

	var firstErr error
	for _, s := range b.sessions {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if b.metricsCancel != nil {
		b.metricsCancel()
	}
	if err := b.closeStore(); err != nil {
		logger.WithError(err).Warn("failed to close state store")
	}
	CloseBackends()

	logger.WithField("shards", len(b.sessions)).Info("bot session closed")
	return firstErr
}
