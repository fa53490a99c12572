package music

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const (
	frameDuration     = 20 * time.Millisecond
	timeUpdateFrames  = 50
	frameSendTimeout  = time.Second
	pausePollInterval = 50 * time.Millisecond
)

var errEmptyStream = errors.New("stream produced no audio")

// streamSource opens an Ogg/Opus stream of url starting at offset.
type streamSource func(ctx context.Context, url string, offset time.Duration, volume float64) (io.ReadCloser, error)

type VoiceOptions struct {
	FFmpegPath string
	Logger     *log.Entry
	// EventBuffer sizes the events channel.
	EventBuffer int
}

// VoiceTransport streams tracks into a Discord voice connection through
// ffmpeg. It reports progress on the channel returned by Events.
type VoiceTransport struct {
	source streamSource
	logger *log.Entry
	events chan Event
	closed chan struct{}
	once   sync.Once

	mu        sync.Mutex
	opus      chan<- []byte
	vc        *discordgo.VoiceConnection
	track     *Track
	seq       uint64
	volume    float64
	offset    time.Duration
	frames    int64
	duration  time.Duration
	paused    bool
	streaming bool
	gen       uint64
	cancel    context.CancelFunc
}

func NewVoiceTransport(opts VoiceOptions) *VoiceTransport {
	if opts.FFmpegPath == "" {
		opts.FFmpegPath = "ffmpeg"
	}
	if opts.Logger == nil {
		opts.Logger = log.NewEntry(log.StandardLogger())
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = 16
	}

	return newVoiceTransport(ffmpegSource(opts.FFmpegPath, opts.Logger), opts.Logger, opts.EventBuffer)
}

func newVoiceTransport(source streamSource, logger *log.Entry, buffer int) *VoiceTransport {
	return &VoiceTransport{
		source: source,
		logger: logger,
		events: make(chan Event, buffer),
		closed: make(chan struct{}),
		volume: 1,
	}
}

func (v *VoiceTransport) Events() <-chan Event {
	return v.events
}

// Attach routes audio into vc. A stream already running keeps its old sink
// until it is restarted.
func (v *VoiceTransport) Attach(vc *discordgo.VoiceConnection) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.vc = vc
	if vc != nil {
		v.opus = vc.OpusSend
	} else {
		v.opus = nil
	}
}

func (v *VoiceTransport) attachSink(sink chan<- []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.opus = sink
}

// Detach stops streaming and returns the voice connection that was attached.
func (v *VoiceTransport) Detach() *discordgo.VoiceConnection {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.cancelLocked()
	vc := v.vc
	v.vc = nil
	v.opus = nil
	return vc
}

func (v *VoiceTransport) Load(seq uint64, track Track) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.cancelLocked()
	t := track
	v.track = &t
	v.seq = seq
	v.offset = 0
	v.frames = 0
	v.duration = track.DurationValue()
	v.paused = false
	v.startLocked()
}

func (v *VoiceTransport) Play() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.track == nil {
		return ErrNothingLoaded
	}
	if v.opus == nil {
		return ErrVoiceNotConnected
	}

	v.paused = false
	if !v.streaming {
		v.startLocked()
	}
	return nil
}

func (v *VoiceTransport) Pause() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.paused = true
}

func (v *VoiceTransport) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.cancelLocked()
	v.offset = 0
	v.frames = 0
	v.paused = false
}

// Seek moves a running stream to position. Without a running stream it only
// records the offset that the next Play starts from.
func (v *VoiceTransport) Seek(position time.Duration) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.track == nil {
		return ErrNothingLoaded
	}
	if position < 0 {
		position = 0
	}

	live := v.streaming
	v.cancelLocked()
	v.offset = position
	v.frames = 0
	if live {
		v.startLocked()
	}
	return nil
}

// SetVolume takes effect immediately by restarting the stream at the current
// position.
func (v *VoiceTransport) SetVolume(volume float64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	volume = clampVolume(volume)
	if volume == v.volume {
		return
	}
	v.volume = volume

	if v.streaming {
		v.offset = v.positionLocked()
		v.frames = 0
		v.cancelLocked()
		v.startLocked()
	}
}

func (v *VoiceTransport) Position() time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.positionLocked()
}

func (v *VoiceTransport) Duration() time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.duration
}

func (v *VoiceTransport) Close() {
	v.once.Do(func() {
		v.mu.Lock()
		v.cancelLocked()
		v.mu.Unlock()
		close(v.closed)
	})
}

func (v *VoiceTransport) positionLocked() time.Duration {
	return v.offset + time.Duration(v.frames)*frameDuration
}

// cancelLocked ends the running stream without waiting for it to exit. The
// stream goroutine notices the cancelled context and drops its events.
func (v *VoiceTransport) cancelLocked() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.streaming = false
	v.gen++
}

func (v *VoiceTransport) startLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	v.gen++
	v.cancel = cancel
	v.streaming = true

	go v.stream(ctx, v.gen, v.seq, *v.track, v.offset, v.volume, v.opus)
}

func (v *VoiceTransport) stream(ctx context.Context, gen, seq uint64, track Track, offset time.Duration, volume float64, sink chan<- []byte) {
	logger := v.logger.WithField("track", track.ID)

	fail := func(err error) {
		if ctx.Err() != nil {
			return
		}
		v.finish(gen)
		v.emit(ctx, Event{Type: EventError, Seq: seq, Err: err})
	}

	if sink == nil {
		fail(ErrVoiceNotConnected)
		return
	}
	if track.URL == "" {
		fail(fmt.Errorf("track %s has no stream url", track.ID))
		return
	}

	rc, err := v.source(ctx, track.URL, offset, volume)
	if err != nil {
		fail(err)
		return
	}
	defer rc.Close()

	reader := newOggReader(rc)
	ticker := time.NewTicker(frameDuration)
	defer ticker.Stop()

	sent := 0
	for {
		page, err := reader.NextPage()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, io.EOF) {
				if sent == 0 {
					fail(errEmptyStream)
					return
				}
				logger.WithField("frames", sent).Debug("audio stream ended")
				v.finish(gen)
				v.emit(ctx, Event{Type: EventEnded, Seq: seq})
				return
			}
			fail(fmt.Errorf("reading ogg stream: %w", err))
			return
		}

		if page.header {
			continue
		}

		for _, packet := range page.packets {
			if !v.waitWhilePaused(ctx) {
				return
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			select {
			case sink <- packet:
			case <-ctx.Done():
				return
			case <-time.After(frameSendTimeout):
				logger.WithField("frame", sent).Warn("timed out sending opus frame")
				continue
			}

			sent++
			position, duration, ok := v.advance(gen)
			if !ok {
				return
			}
			if sent == 1 {
				v.emit(ctx, Event{Type: EventReady, Seq: seq, Position: position, Duration: duration})
			} else if sent%timeUpdateFrames == 0 {
				v.notify(Event{Type: EventTimeUpdate, Seq: seq, Position: position})
			}
		}
	}
}

func (v *VoiceTransport) waitWhilePaused(ctx context.Context) bool {
	speaking := true
	for {
		v.mu.Lock()
		paused := v.paused
		vc := v.vc
		v.mu.Unlock()

		if !paused {
			if !speaking {
				safeSpeaking(vc, true)
			}
			return true
		}
		if speaking {
			safeSpeaking(vc, false)
			speaking = false
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(pausePollInterval):
		}
	}
}

func (v *VoiceTransport) advance(gen uint64) (time.Duration, time.Duration, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if gen != v.gen {
		return 0, 0, false
	}
	v.frames++
	return v.positionLocked(), v.duration, true
}

func (v *VoiceTransport) finish(gen uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if gen != v.gen {
		return
	}
	v.streaming = false
	v.cancel = nil
	v.offset = v.positionLocked()
	v.frames = 0
	safeSpeaking(v.vc, false)
}

func (v *VoiceTransport) emit(ctx context.Context, ev Event) {
	select {
	case v.events <- ev:
	case <-ctx.Done():
	case <-v.closed:
	}
}

// notify drops the event when nobody is keeping up.
func (v *VoiceTransport) notify(ev Event) {
	select {
	case v.events <- ev:
	default:
	}
}

func safeSpeaking(vc *discordgo.VoiceConnection, speaking bool) {
	if vc == nil || !vc.Ready {
		return
	}
	_ = vc.Speaking(speaking)
}

type ffmpegStream struct {
	io.ReadCloser
	cmd *exec.Cmd
}

func (s *ffmpegStream) Close() error {
	_ = s.ReadCloser.Close()
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.cmd.Wait()
	return nil
}

func ffmpegSource(path string, logger *log.Entry) streamSource {
	return func(ctx context.Context, url string, offset time.Duration, volume float64) (io.ReadCloser, error) {
		var args []string
		if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
			args = append(args,
				"-reconnect", "1",
				"-reconnect_streamed", "1",
				"-reconnect_delay_max", "5",
			)
		}
		if offset > 0 {
			args = append(args, "-ss", fmt.Sprintf("%.3f", offset.Seconds()))
		}
		args = append(args,
			"-i", url,
			"-af", fmt.Sprintf("volume=%.2f", volume),
			"-c:a", "libopus",
			"-ar", "48000",
			"-ac", "2",
			"-b:a", "96k",
			"-vbr", "on",
			"-frame_duration", "20",
			"-application", "audio",
			"-f", "ogg",
			"-loglevel", "warning",
			"pipe:1",
		)

		cmd := exec.CommandContext(ctx, path, args...)

		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return nil, fmt.Errorf("failed to create ffmpeg stdout pipe: %w", err)
		}
		stderr, err := cmd.StderrPipe()
		if err != nil {
			return nil, fmt.Errorf("failed to create ffmpeg stderr pipe: %w", err)
		}

		if err := cmd.Start(); err != nil {
			return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
		}

		go func() {
			scanner := bufio.NewScanner(stderr)
			for scanner.Scan() {
				logger.WithField("source", "ffmpeg").Debug(scanner.Text())
			}
		}()

		return &ffmpegStream{ReadCloser: stdout, cmd: cmd}, nil
	}
}
