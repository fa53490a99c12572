package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/kampita/internal/database"
	shared "github.com/hxnx/kampita/internal/features/shared"
	"github.com/hxnx/kampita/internal/music"
	log "github.com/sirupsen/logrus"
)

const DefaultChannelName = "🎵-kampita"

const (
	CustomIDPrevious = "dashboard_previous"
	CustomIDToggle   = "dashboard_toggle"
	CustomIDNext     = "dashboard_next"
	CustomIDShuffle  = "dashboard_shuffle"
	CustomIDRepeat   = "dashboard_repeat"
	CustomIDQueue    = "dashboard_queue"
)

const (
	updateTickerInterval = 8 * time.Second
	autoUpdateBucket     = 8 * time.Second
	minUpdateInterval    = 5 * time.Second
	repoTimeout          = 2 * time.Second
)

var ErrNoDashboard = errors.New("dashboard message not found")

var accent = 0x3C6AA1

type renderState struct {
	lastHash    string
	lastUpdated time.Time
}

// Service tracks each guild's now-playing panel and keeps it current while
// something is playing.
type Service struct {
	registry *music.Registry
	repo     *database.GuildRepository
	logger   *log.Entry

	mu      sync.RWMutex
	entries map[string]database.DashboardEntry

	updMu    sync.Mutex
	updaters map[string]context.CancelFunc

	renderMu sync.Mutex
	render   map[string]renderState
}

func NewService(registry *music.Registry, repo *database.GuildRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &Service{
		registry: registry,
		repo:     repo,
		logger:   logger.WithField("component", "dashboard"),
		entries:  make(map[string]database.DashboardEntry),
		updaters: make(map[string]context.CancelFunc),
		render:   make(map[string]renderState),
	}
}

// LoadEntries warms the in-memory entries from the database.
func (d *Service) LoadEntries(ctx context.Context) error {
	if !d.repo.Enabled() {
		return nil
	}

	entries, err := d.repo.ListDashboardEntries(ctx)
	if err != nil {
		return err
	}

	d.mu.Lock()
	for _, e := range entries {
		d.entries[e.GuildID] = e
	}
	d.mu.Unlock()

	d.logger.WithField("count", len(entries)).Info("loaded dashboard entries")
	return nil
}

func (d *Service) Entry(guildID string) (database.DashboardEntry, bool) {
	d.mu.RLock()
	entry, ok := d.entries[guildID]
	d.mu.RUnlock()
	if ok {
		return entry, true
	}

	if !d.repo.Enabled() {
		return database.DashboardEntry{}, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), repoTimeout)
	defer cancel()

	entry, ok, err := d.repo.GetDashboardEntry(ctx, guildID)
	if err != nil {
		d.logger.WithField("guild", guildID).WithError(err).Warn("failed to load dashboard entry")
		return database.DashboardEntry{}, false
	}
	if !ok {
		return database.DashboardEntry{}, false
	}

	d.mu.Lock()
	d.entries[guildID] = entry
	d.mu.Unlock()
	return entry, true
}

func (d *Service) SetEntry(ctx context.Context, entry database.DashboardEntry) {
	d.mu.Lock()
	d.entries[entry.GuildID] = entry
	d.mu.Unlock()

	if !d.repo.Enabled() {
		return
	}
	if err := d.repo.UpsertDashboardEntry(ctx, entry); err != nil {
		d.logger.WithField("guild", entry.GuildID).WithError(err).Warn("failed to save dashboard entry")
	}
}

func (d *Service) ClearEntry(ctx context.Context, guildID string) {
	d.stopUpdater(guildID)
	d.clearRenderState(guildID)

	d.mu.Lock()
	delete(d.entries, guildID)
	d.mu.Unlock()

	if !d.repo.Enabled() {
		return
	}
	if err := d.repo.DeleteDashboardEntry(ctx, guildID); err != nil {
		d.logger.WithField("guild", guildID).WithError(err).Warn("failed to delete dashboard entry")
	}
}

// DeletePrevious removes the guild's existing panel message, if any.
func (d *Service) DeletePrevious(s *discordgo.Session, guildID string) error {
	entry, ok := d.Entry(guildID)
	if !ok || entry.ChannelID == "" || entry.MessageID == "" {
		return nil
	}
	return s.ChannelMessageDelete(entry.ChannelID, entry.MessageID)
}

type panelState struct {
	snap      music.Snapshot
	hasPlayer bool
	connected bool
}

func (d *Service) state(guildID string) panelState {
	if d.registry == nil {
		return panelState{snap: music.Snapshot{Repeat: music.RepeatOff}}
	}
	manager, ok := d.registry.Lookup(guildID)
	if !ok {
		return panelState{snap: music.Snapshot{Repeat: music.RepeatOff}}
	}
	return panelState{
		snap:      manager.Snapshot(),
		hasPlayer: true,
		connected: d.registry.VoiceChannel(guildID) != "",
	}
}

func (d *Service) Components(guildID string) []discordgo.MessageComponent {
	st := d.state(guildID)
	return buildComponents(buildView(st.snap, st.hasPlayer, st.connected))
}

// Refresh re-renders the guild's panel and starts or stops the periodic
// updater depending on whether something is playing.
func (d *Service) Refresh(s *discordgo.Session, guildID string) error {
	if s == nil || guildID == "" {
		return fmt.Errorf("invalid dashboard update parameters")
	}

	entry, ok := d.Entry(guildID)
	if !ok || entry.ChannelID == "" || entry.MessageID == "" {
		return ErrNoDashboard
	}

	st := d.state(guildID)
	snap := st.snap
	if snap.CurrentTrack != nil && (snap.IsPlaying() || snap.IsLoading()) {
		d.startUpdater(s, guildID)
	} else {
		d.stopUpdater(guildID)
	}

	components := buildComponents(buildView(snap, st.hasPlayer, st.connected))
	_, err := s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         entry.MessageID,
		Channel:    entry.ChannelID,
		Components: &components,
		Flags:      discordgo.MessageFlagsIsComponentsV2,
	})
	if err == nil {
		d.recordRenderState(guildID, snap)
	}
	return err
}

// RefreshQuietly is Refresh for callers that have nothing to do with the
// error beyond logging it.
func (d *Service) RefreshQuietly(s *discordgo.Session, guildID string) {
	if err := d.Refresh(s, guildID); err != nil && !errors.Is(err, ErrNoDashboard) {
		d.logger.WithField("guild", guildID).WithError(err).Warn("failed to update dashboard")
	}
}

// RespondUpdate answers a dashboard button press by re-rendering the panel in
// place.
func (d *Service) RespondUpdate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	shared.UpdateComponents(s, i, d.Components(i.GuildID))

	snap := d.state(i.GuildID).snap
	if snap.CurrentTrack != nil && snap.IsPlaying() {
		d.startUpdater(s, i.GuildID)
	}
	d.recordRenderState(i.GuildID, snap)
}

func (d *Service) Close() {
	d.updMu.Lock()
	updaters := d.updaters
	d.updaters = make(map[string]context.CancelFunc)
	d.updMu.Unlock()

	for _, cancel := range updaters {
		cancel()
	}
}

func (d *Service) startUpdater(s *discordgo.Session, guildID string) {
	d.updMu.Lock()
	if _, exists := d.updaters[guildID]; exists {
		d.updMu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.updaters[guildID] = cancel
	d.updMu.Unlock()

	go func() {
		ticker := time.NewTicker(updateTickerInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				snap := d.state(guildID).snap
				if snap.CurrentTrack != nil && (snap.IsPlaying() || snap.IsLoading()) {
					if d.shouldAutoUpdate(guildID, snap) {
						d.RefreshQuietly(s, guildID)
					}
					continue
				}
				d.stopUpdater(guildID)
				d.RefreshQuietly(s, guildID)
				return
			}
		}
	}()
}

func (d *Service) stopUpdater(guildID string) {
	d.updMu.Lock()
	cancel, ok := d.updaters[guildID]
	if ok {
		delete(d.updaters, guildID)
	}
	d.updMu.Unlock()

	if ok {
		cancel()
	}
}

func (d *Service) shouldAutoUpdate(guildID string, snap music.Snapshot) bool {
	hash := playbackHash(snap)

	d.renderMu.Lock()
	prev, ok := d.render[guildID]
	d.renderMu.Unlock()

	if ok && prev.lastHash == hash && time.Since(prev.lastUpdated) < minUpdateInterval {
		return false
	}
	return !ok || prev.lastHash != hash
}

func (d *Service) recordRenderState(guildID string, snap music.Snapshot) {
	d.renderMu.Lock()
	d.render[guildID] = renderState{lastHash: playbackHash(snap), lastUpdated: time.Now()}
	d.renderMu.Unlock()
}

func (d *Service) clearRenderState(guildID string) {
	d.renderMu.Lock()
	delete(d.render, guildID)
	d.renderMu.Unlock()
}

func playbackHash(snap music.Snapshot) string {
	if snap.CurrentTrack == nil {
		return fmt.Sprintf("stopped:queue=%d:repeat=%s:shuffle=%t", len(snap.Queue), snap.Repeat, snap.Shuffle)
	}
	bucket := int(snap.Position / autoUpdateBucket)
	return fmt.Sprintf("%s:%s:%d:queue=%d:repeat=%s:shuffle=%t",
		snap.Status, snap.CurrentTrack.ID, bucket, len(snap.Queue), snap.Repeat, snap.Shuffle)
}

type view struct {
	Title     string
	Status    string
	Progress  string
	Thumbnail string
	Repeat    string
	Shuffle   string
	Queue     int
	Volume    int
	HasPlayer bool
	HasTrack  bool
	Playing   bool
	Connected bool
}

func buildView(snap music.Snapshot, hasPlayer, connected bool) view {
	v := view{
		Title:     "🟡 **Nothing is playing**",
		Repeat:    RepeatLabel(snap.Repeat),
		Shuffle:   "off",
		Queue:     len(snap.Queue),
		Volume:    int(snap.Volume*100 + 0.5),
		HasPlayer: hasPlayer,
		Connected: connected,
	}
	if snap.Shuffle {
		v.Shuffle = "on"
	}

	track := snap.CurrentTrack
	if track == nil {
		return v
	}

	v.HasTrack = true
	v.Playing = snap.IsPlaying()

	title := strings.TrimSpace(track.Name)
	if title == "" {
		title = "Unknown title"
	}
	v.Title = fmt.Sprintf("🎧 **%s**\n%s", shared.EscapeMarkdown(title), shared.EscapeMarkdown(track.Artist))

	switch snap.Status {
	case music.StatusPlaying:
		v.Status = "▶️ **Playing**"
	case music.StatusLoading:
		v.Status = "⏳ **Loading**"
	default:
		v.Status = "⏸️ **Paused**"
	}

	duration := snap.Duration
	if duration <= 0 {
		duration = track.DurationValue()
	}
	v.Progress = fmt.Sprintf("`%s` `%s` `%s`",
		shared.FormatPosition(snap.Position), shared.ProgressBar(snap.Position, duration, 12), shared.FormatDuration(duration))

	if strings.HasPrefix(track.Image, "http") {
		v.Thumbnail = track.Image
	}
	return v
}

func settingsLine(v view) string {
	line := fmt.Sprintf("🔁 Repeat **%s** · 🔀 Shuffle **%s**", v.Repeat, v.Shuffle)
	if v.HasPlayer {
		line += fmt.Sprintf(" · 🔊 **%d%%**", v.Volume)
	}
	if !v.Connected {
		line += " · 🔇 not in voice"
	}
	return line
}

func RepeatLabel(mode music.RepeatMode) string {
	switch mode {
	case music.RepeatAll:
		return "queue"
	case music.RepeatOne:
		return "track"
	default:
		return "off"
	}
}

func buildComponents(v view) []discordgo.MessageComponent {
	divider := true
	spacing := discordgo.SeparatorSpacingSizeSmall

	components := []discordgo.MessageComponent{
		discordgo.TextDisplay{Content: "▶️ **Now playing**"},
		discordgo.Separator{Divider: &divider, Spacing: &spacing},
	}

	nowPlaying := []discordgo.MessageComponent{discordgo.TextDisplay{Content: v.Title}}
	if v.Progress != "" {
		nowPlaying = append(nowPlaying, discordgo.TextDisplay{Content: v.Progress})
	}
	if v.Thumbnail != "" {
		components = append(components, discordgo.Section{
			Components: nowPlaying,
			Accessory: discordgo.Thumbnail{
				Media: discordgo.UnfurledMediaItem{URL: v.Thumbnail},
			},
		})
	} else {
		components = append(components, nowPlaying...)
	}

	components = append(components,
		discordgo.Separator{Divider: &divider, Spacing: &spacing},
		discordgo.TextDisplay{Content: settingsLine(v)},
		discordgo.TextDisplay{Content: fmt.Sprintf("📋 Queue **%d** tracks", v.Queue)},
	)
	if v.Status != "" {
		components = append(components, discordgo.TextDisplay{Content: v.Status})
	}

	toggleLabel := "Play"
	toggleStyle := discordgo.SuccessButton
	if v.Playing {
		toggleLabel = "Pause"
		toggleStyle = discordgo.SecondaryButton
	}

	components = append(components,
		discordgo.Separator{Divider: &divider, Spacing: &spacing},
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Style: discordgo.SecondaryButton, Label: "Previous", CustomID: CustomIDPrevious, Disabled: !v.HasTrack},
				discordgo.Button{Style: toggleStyle, Label: toggleLabel, CustomID: CustomIDToggle, Disabled: !v.HasTrack},
				discordgo.Button{Style: discordgo.SecondaryButton, Label: "Next", CustomID: CustomIDNext, Disabled: !v.HasTrack},
			},
		},
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Style: discordgo.SecondaryButton, Label: "Shuffle", CustomID: CustomIDShuffle},
				discordgo.Button{Style: discordgo.SecondaryButton, Label: "Repeat", CustomID: CustomIDRepeat},
				discordgo.Button{Style: discordgo.PrimaryButton, Label: "Queue", CustomID: CustomIDQueue},
			},
		},
	)

	return []discordgo.MessageComponent{
		discordgo.Container{
			AccentColor: &accent,
			Components:  components,
		},
	}
}
