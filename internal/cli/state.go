package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/hxnx/kampita/config"
	"github.com/hxnx/kampita/internal/bot"
	"github.com/hxnx/kampita/internal/music"
	"github.com/spf13/cobra"
)

// keyLister is implemented by every persistent StateStore.
type keyLister interface {
	Keys(ctx context.Context) ([]string, error)
}

func newStateCmd() *cobra.Command {
	var guildID string

	cmd := &cobra.Command{
		Use:   "state",
		Short: "Print persisted player state",
		Long:  "Print the persisted player state of one guild, or list every persisted player when --guild is omitted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Read()
			if err := cfg.ValidateRuntime(); err != nil {
				return err
			}
			if err := bot.ConnectBackends(cfg); err != nil {
				return err
			}
			defer bot.CloseBackends()

			store, closeStore, err := bot.OpenStateStore(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			return printState(cmd.Context(), cmd.OutOrStdout(), store, guildID)
		},
	}

	cmd.Flags().StringVarP(&guildID, "guild", "g", "", "guild ID")
	return cmd
}

func printState(ctx context.Context, out io.Writer, store music.StateStore, guildID string) error {
	if guildID == "" {
		lister, ok := store.(keyLister)
		if !ok {
			return errors.New("this state backend cannot list players; pass --guild")
		}
		keys, err := lister.Keys(ctx)
		if err != nil {
			return fmt.Errorf("listing state keys: %w", err)
		}
		sort.Strings(keys)
		renderKeys(out, keys)
		return nil
	}

	key := music.StateKey(guildID)
	payload, err := store.Load(ctx, key)
	if err != nil {
		if errors.Is(err, music.ErrStateNotFound) {
			return fmt.Errorf("no persisted state for guild %s", guildID)
		}
		return err
	}

	state, err := music.DecodeState(key, payload)
	if err != nil {
		return err
	}
	renderState(out, key, state)
	return nil
}
