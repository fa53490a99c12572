package bot

import (
	"fmt"
	"time"
)

const presenceUpdateInterval = 60 * time.Second

func (b *Bot) startPresenceUpdater() {
	if b.presenceStop != nil {
		return
	}
	b.presenceStop = make(chan struct{})
	go func() {
		ticker := time.NewTicker(presenceUpdateInterval)
		defer ticker.Stop()

		b.updatePresence()
		for {
			select {
			case <-b.presenceStop:
				return
			case <-ticker.C:
				b.updatePresence()
			}
		}
	}()
}

func (b *Bot) stopPresenceUpdater() {
	if b.presenceStop == nil {
		return
	}
	close(b.presenceStop)
	b.presenceStop = nil
}

func (b *Bot) updatePresence() {
	players := b.registry.Count()
	for _, s := range b.sessions {
		guildCount := 0
		if s.State != nil {
			guildCount = len(s.State.Guilds)
		}

		if err := s.UpdateGameStatus(0, presenceText(s.ShardID, guildCount, players)); err != nil {
			logger.WithField("shard", s.ShardID).WithError(err).Debug("failed to update presence")
		}
	}
}

func presenceText(shardID, guilds, players int) string {
	return fmt.Sprintf("/music · shard #%d · %d servers · %d playing", max(1, shardID+1), guilds, players)
}
