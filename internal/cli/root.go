package cli

import (
	"context"
	"time"

	"github.com/hxnx/kampita/config"
	"github.com/hxnx/kampita/internal/bot"
	"github.com/hxnx/kampita/internal/catalog"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	catalogURL string
	timeout    time.Duration
	logLevel   string
}

// NewRootCmd builds the kampita command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "kampita",
		Short:         "Kampita music bot and catalog tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := opts.logLevel
			if level == "" {
				level = config.Read().LogLevel
			}
			bot.ConfigureLogging(level)
		},
	}

	root.PersistentFlags().StringVar(&opts.catalogURL, "catalog-url", "", "catalog API base URL (default CATALOG_API_URL)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 0, "catalog request timeout (default CATALOG_TIMEOUT)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (default LOG_LEVEL)")

	root.AddCommand(
		newBotCmd(),
		newSearchCmd(opts),
		newSongCmd(opts),
		newArtistCmd(opts),
		newStateCmd(),
	)
	return root
}

func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func (o *rootOptions) client() *catalog.Client {
	cfg := config.Read()

	baseURL := cfg.CatalogURL
	if o.catalogURL != "" {
		baseURL = o.catalogURL
	}
	timeout := cfg.CatalogTimeoutDuration()
	if o.timeout > 0 {
		timeout = o.timeout
	}
	return catalog.New(baseURL, timeout)
}
