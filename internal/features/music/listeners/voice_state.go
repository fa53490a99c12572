package listeners

import (
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	dashboard "github.com/hxnx/kampita/internal/features/dashboard"
	shared "github.com/hxnx/kampita/internal/features/shared"
	"github.com/hxnx/kampita/internal/music"
	log "github.com/sirupsen/logrus"
)

// VoiceWatcher leaves a voice channel once nobody but bots has been in it for
// Timeout. A zero Timeout disables auto-leave.
type VoiceWatcher struct {
	registry  *music.Registry
	dashboard *dashboard.Service
	timeout   time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewVoiceWatcher(registry *music.Registry, dash *dashboard.Service, timeout time.Duration) *VoiceWatcher {
	return &VoiceWatcher{
		registry:  registry,
		dashboard: dash,
		timeout:   timeout,
		timers:    make(map[string]*time.Timer),
	}
}

func (w *VoiceWatcher) HandleVoiceStateUpdate(s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
	if s == nil || vs == nil || vs.GuildID == "" {
		return
	}
	botID := botUserID(s)
	if botID == "" {
		return
	}
	guildID := vs.GuildID

	if vs.UserID == botID && vs.ChannelID == "" {
		w.cancel(guildID)
		if _, ok := w.registry.Lookup(guildID); ok {
			log.WithField("guild", guildID).Info("disconnected from voice, dropping player")
			w.registry.Leave(guildID)
			w.refresh(s, guildID)
		}
		return
	}

	channelID := w.registry.VoiceChannel(guildID)
	if channelID == "" {
		w.cancel(guildID)
		return
	}

	if countListeners(guildVoiceStates(s, guildID), channelID, botID, isBot(s, guildID)) > 0 {
		w.cancel(guildID)
		return
	}

	w.schedule(guildID, func() { w.expire(s, guildID, channelID) })
}

func (w *VoiceWatcher) schedule(guildID string, fn func()) {
	if w.timeout <= 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.timers[guildID]; ok {
		return
	}
	w.timers[guildID] = time.AfterFunc(w.timeout, func() {
		w.mu.Lock()
		delete(w.timers, guildID)
		w.mu.Unlock()
		fn()
	})
}

func (w *VoiceWatcher) cancel(guildID string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[guildID]; ok {
		t.Stop()
		delete(w.timers, guildID)
	}
}

func (w *VoiceWatcher) pending(guildID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.timers[guildID]
	return ok
}

// Close stops every pending auto-leave timer.
func (w *VoiceWatcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for guildID, t := range w.timers {
		t.Stop()
		delete(w.timers, guildID)
	}
}

func (w *VoiceWatcher) expire(s *discordgo.Session, guildID, channelID string) {
	if w.registry.VoiceChannel(guildID) != channelID {
		return
	}
	if countListeners(guildVoiceStates(s, guildID), channelID, botUserID(s), isBot(s, guildID)) > 0 {
		return
	}

	logger := log.WithFields(log.Fields{"guild": guildID, "channel": channelID})
	if manager, ok := w.registry.Lookup(guildID); ok && manager.Snapshot().IsPlaying() {
		manager.TogglePlay()
	}
	w.registry.Leave(guildID)
	logger.Info("left empty voice channel")
	w.refresh(s, guildID)

	if w.dashboard == nil {
		return
	}
	entry, ok := w.dashboard.Entry(guildID)
	if !ok || entry.ChannelID == "" {
		return
	}
	msg, err := s.ChannelMessageSendComplex(entry.ChannelID, &discordgo.MessageSend{
		Components: shared.NoticeComponents("🔇 **Left voice**", "Everyone left the voice channel, so playback was paused."),
		Flags:      discordgo.MessageFlagsIsComponentsV2,
	})
	if err != nil {
		logger.WithError(err).Debug("failed to send auto-leave notice")
		return
	}
	scheduleDelete(s, entry.ChannelID, msg.ID, dashboardAutoDeleteDelay)
}

func (w *VoiceWatcher) refresh(s *discordgo.Session, guildID string) {
	if w.dashboard != nil {
		w.dashboard.RefreshQuietly(s, guildID)
	}
}

// countListeners counts the users in channelID other than the bot itself and
// anyone bot reports as a bot account.
func countListeners(states []*discordgo.VoiceState, channelID, botID string, bot func(*discordgo.VoiceState) bool) int {
	n := 0
	for _, state := range states {
		if state == nil || state.ChannelID != channelID || state.UserID == botID {
			continue
		}
		if bot != nil && bot(state) {
			continue
		}
		n++
	}
	return n
}

func isBot(s *discordgo.Session, guildID string) func(*discordgo.VoiceState) bool {
	return func(vs *discordgo.VoiceState) bool {
		if vs.Member != nil && vs.Member.User != nil {
			return vs.Member.User.Bot
		}
		if member, err := s.State.Member(guildID, vs.UserID); err == nil && member.User != nil {
			return member.User.Bot
		}
		return false
	}
}

func guildVoiceStates(s *discordgo.Session, guildID string) []*discordgo.VoiceState {
	if s.State != nil {
		if g, err := s.State.Guild(guildID); err == nil {
			return g.VoiceStates
		}
	}
	g, err := s.Guild(guildID)
	if err != nil {
		return nil
	}
	return g.VoiceStates
}

func botUserID(s *discordgo.Session) string {
	if s.State != nil && s.State.User != nil {
		return s.State.User.ID
	}
	return ""
}
