package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/hxnx/kampita/config"
	"github.com/hxnx/kampita/internal/bot"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newBotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Discord bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading configuration: %w (DISCORD_TOKEN and DISCORD_APPLICATION_ID are required)", err)
			}
			logConfig(cfg)

			b, err := bot.New(cfg)
			if err != nil {
				return fmt.Errorf("creating bot: %w", err)
			}
			if err := b.Start(); err != nil {
				return fmt.Errorf("starting bot: %w", err)
			}
			log.Info("bot is running, press CTRL+C to exit")

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()

			log.Info("shutting down")
			return b.Stop()
		},
	}
}

func logConfig(cfg *config.Config) {
	mode := "production (global commands)"
	if cfg.IsDevelopment() {
		mode = "development (guild " + cfg.GuildID + ")"
	}

	autoLeave := "disabled"
	if cfg.AutoLeaveTimeout > 0 {
		autoLeave = fmt.Sprintf("%ds", cfg.AutoLeaveTimeout)
	}

	shards := "auto"
	if cfg.ShardCount > 0 {
		shards = fmt.Sprint(cfg.ShardCount)
	}

	log.WithFields(log.Fields{
		"mode":           mode,
		"log_level":      cfg.LogLevel,
		"default_volume": cfg.DefaultVolume,
		"max_queue":      cfg.MaxQueueSize,
		"auto_leave":     autoLeave,
		"shards":         shards,
		"catalog":        cfg.CatalogURL,
		"state_backend":  cfg.StateBackend,
		"database":       cfg.HasDatabase(),
		"redis":          cfg.HasRedis(),
		"metrics":        cfg.MetricsAddr,
	}).Info("configuration loaded")
}
