package music

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/kampita/internal/metrics"
	log "github.com/sirupsen/logrus"
)

// Output is a Transport that can be bound to a Discord voice connection.
type Output interface {
	Transport
	Events() <-chan Event
	Attach(vc *discordgo.VoiceConnection)
	Detach() *discordgo.VoiceConnection
	Close()
}

type RegistryOptions struct {
	Store         StateStore
	FFmpegPath    string
	DefaultVolume float64
	Logger        *log.Entry
	// NewOutput builds the transport for a guild. Defaults to a VoiceTransport.
	NewOutput func(guildID string) Output
}

type player struct {
	manager   *Manager
	output    Output
	channelID string
	cancel    context.CancelFunc
}

// Registry holds one player per guild.
type Registry struct {
	mu      sync.Mutex
	players map[string]*player
	opts    RegistryOptions
}

func NewRegistry(opts RegistryOptions) *Registry {
	if opts.Store == nil {
		opts.Store = NewMemoryStore()
	}
	if opts.Logger == nil {
		opts.Logger = log.NewEntry(log.StandardLogger())
	}
	if opts.NewOutput == nil {
		ffmpeg := opts.FFmpegPath
		logger := opts.Logger
		opts.NewOutput = func(guildID string) Output {
			return NewVoiceTransport(VoiceOptions{
				FFmpegPath: ffmpeg,
				Logger:     logger.WithField("guild", guildID),
			})
		}
	}

	return &Registry{
		players: make(map[string]*player),
		opts:    opts,
	}
}

// Get returns the guild's Manager, creating and restoring it on first use.
func (r *Registry) Get(ctx context.Context, guildID string) *Manager {
	return r.get(ctx, guildID).manager
}

// Lookup returns the Manager only if the guild already has one.
func (r *Registry) Lookup(guildID string) (*Manager, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[guildID]
	if !ok {
		return nil, false
	}
	return p.manager, true
}

// get restores a new player outside the lock so a slow store does not stall
// other guilds. A concurrent caller that inserted first wins.
func (r *Registry) get(ctx context.Context, guildID string) *player {
	r.mu.Lock()
	p, ok := r.players[guildID]
	r.mu.Unlock()
	if ok {
		return p
	}

	output := r.opts.NewOutput(guildID)
	manager := NewManager(ManagerOptions{
		Key:           StateKey(guildID),
		Store:         r.opts.Store,
		Transport:     output,
		Logger:        r.opts.Logger.WithField("guild", guildID),
		DefaultVolume: r.opts.DefaultVolume,
	})
	manager.Restore(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.players[guildID]; ok {
		output.Close()
		return existing
	}

	runCtx, cancel := context.WithCancel(context.Background())
	go manager.Run(runCtx, output.Events())

	p = &player{manager: manager, output: output, cancel: cancel}
	r.players[guildID] = p
	metrics.ActivePlayers.Set(float64(len(r.players)))
	return p
}

// Join connects the guild's player to channelID. Joining the channel it is
// already in is a no-op.
func (r *Registry) Join(ctx context.Context, s *discordgo.Session, guildID, channelID string) error {
	if s == nil {
		return errors.New("discord session is nil")
	}
	if channelID == "" {
		return ErrNoVoiceChannel
	}

	p := r.get(ctx, guildID)

	r.mu.Lock()
	current := p.channelID
	r.mu.Unlock()
	if current == channelID {
		return nil
	}

	vc, err := s.ChannelVoiceJoin(guildID, channelID, false, true)
	if err != nil {
		return fmt.Errorf("joining voice channel %s: %w", channelID, err)
	}

	p.output.Attach(vc)

	r.mu.Lock()
	p.channelID = channelID
	r.mu.Unlock()
	return nil
}

// JoinUser joins the voice channel userID is currently in and returns it.
func (r *Registry) JoinUser(ctx context.Context, s *discordgo.Session, guildID, userID string) (string, error) {
	channelID, err := FindUserVoiceChannel(s, guildID, userID)
	if err != nil {
		return "", err
	}
	if err := r.Join(ctx, s, guildID, channelID); err != nil {
		return "", err
	}
	return channelID, nil
}

// VoiceChannel reports the channel the guild's player is connected to.
func (r *Registry) VoiceChannel(guildID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.players[guildID]; ok {
		return p.channelID
	}
	return ""
}

// Leave disconnects and drops the guild's player. Its persisted state stays
// in the store and is restored by the next Get.
func (r *Registry) Leave(guildID string) {
	r.mu.Lock()
	p, ok := r.players[guildID]
	if ok {
		delete(r.players, guildID)
		metrics.ActivePlayers.Set(float64(len(r.players)))
	}
	r.mu.Unlock()

	if !ok {
		return
	}
	r.shutdown(guildID, p)
}

func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

func (r *Registry) Guilds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	guilds := make([]string, 0, len(r.players))
	for id := range r.players {
		guilds = append(guilds, id)
	}
	return guilds
}

func (r *Registry) Close() {
	r.mu.Lock()
	players := r.players
	r.players = make(map[string]*player)
	metrics.ActivePlayers.Set(0)
	r.mu.Unlock()

	for guildID, p := range players {
		r.shutdown(guildID, p)
	}
}

func (r *Registry) shutdown(guildID string, p *player) {
	p.cancel()
	p.output.Stop()
	vc := p.output.Detach()
	p.output.Close()

	if vc != nil {
		if err := vc.Disconnect(); err != nil {
			r.opts.Logger.WithField("guild", guildID).WithError(err).Warn("failed to disconnect voice")
		}
	}
}

// FindUserVoiceChannel looks up the voice channel userID is in, preferring the
// state cache over a REST call.
func FindUserVoiceChannel(s *discordgo.Session, guildID, userID string) (string, error) {
	if s == nil {
		return "", errors.New("discord session is nil")
	}

	var guild *discordgo.Guild
	if s.State != nil {
		if g, err := s.State.Guild(guildID); err == nil {
			guild = g
		}
	}
	if guild == nil {
		g, err := s.Guild(guildID)
		if err != nil {
			return "", err
		}
		guild = g
	}

	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID && vs.ChannelID != "" {
			return vs.ChannelID, nil
		}
	}

	return "", ErrNoVoiceChannel
}
