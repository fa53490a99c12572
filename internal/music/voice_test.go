package music

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
)

func oggSource(packets int) (streamSource, *[]time.Duration) {
	var offsets []time.Duration
	return func(_ context.Context, _ string, offset time.Duration, _ float64) (io.ReadCloser, error) {
		offsets = append(offsets, offset)
		var buf bytes.Buffer
		buf.Write(buildOggPage(0x02, []byte("OpusHead-v1")))
		for i := 0; i < packets; i++ {
			buf.Write(buildOggPage(0x00, []byte{byte(i), 0xfc}))
		}
		return io.NopCloser(&buf), nil
	}, &offsets
}

func nextEvent(t *testing.T, v *VoiceTransport) Event {
	t.Helper()
	select {
	case ev := <-v.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for transport event")
		return Event{}
	}
}

func testLogger() *log.Entry {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return log.NewEntry(logger)
}

func TestVoiceTransportPlaysToEnd(t *testing.T) {
	source, offsets := oggSource(3)
	v := newVoiceTransport(source, testLogger(), 8)
	defer v.Close()

	sink := make(chan []byte, 8)
	v.attachSink(sink)
	v.Load(7, Track{ID: "a", URL: "https://cdn.example/a.mp4", Duration: 90})

	ready := nextEvent(t, v)
	if ready.Type != EventReady || ready.Seq != 7 {
		t.Fatalf("first event = %s seq %d, want ready seq 7", ready.Type, ready.Seq)
	}
	if ready.Duration != 90*time.Second {
		t.Errorf("ready duration = %s, want 1m30s", ready.Duration)
	}

	ended := nextEvent(t, v)
	if ended.Type != EventEnded || ended.Seq != 7 {
		t.Fatalf("second event = %s seq %d, want ended seq 7", ended.Type, ended.Seq)
	}

	if len(sink) != 3 {
		t.Errorf("sent %d packets, want 3", len(sink))
	}
	if got := v.Position(); got != 3*frameDuration {
		t.Errorf("position = %s, want %s", got, 3*frameDuration)
	}
	if len(*offsets) != 1 || (*offsets)[0] != 0 {
		t.Errorf("stream offsets = %v", *offsets)
	}
}

func TestVoiceTransportWithoutSinkReportsError(t *testing.T) {
	source, _ := oggSource(1)
	v := newVoiceTransport(source, testLogger(), 8)
	defer v.Close()

	v.Load(1, Track{ID: "a", URL: "u"})

	ev := nextEvent(t, v)
	if ev.Type != EventError || !errors.Is(ev.Err, ErrVoiceNotConnected) {
		t.Fatalf("event = %s %v, want error ErrVoiceNotConnected", ev.Type, ev.Err)
	}
}

func TestVoiceTransportEmptyStreamIsAnError(t *testing.T) {
	source, _ := oggSource(0)
	v := newVoiceTransport(source, testLogger(), 8)
	defer v.Close()

	v.attachSink(make(chan []byte, 1))
	v.Load(1, Track{ID: "a", URL: "u"})

	ev := nextEvent(t, v)
	if ev.Type != EventError || !errors.Is(ev.Err, errEmptyStream) {
		t.Fatalf("event = %s %v, want empty stream error", ev.Type, ev.Err)
	}
}

func TestVoiceTransportNothingLoaded(t *testing.T) {
	source, _ := oggSource(1)
	v := newVoiceTransport(source, testLogger(), 8)
	defer v.Close()

	if err := v.Play(); !errors.Is(err, ErrNothingLoaded) {
		t.Errorf("Play() = %v, want ErrNothingLoaded", err)
	}
	if err := v.Seek(time.Second); !errors.Is(err, ErrNothingLoaded) {
		t.Errorf("Seek() = %v, want ErrNothingLoaded", err)
	}
}

func TestVoiceTransportSeekRestartsRunningStream(t *testing.T) {
	source, offsets := oggSource(50)
	v := newVoiceTransport(source, testLogger(), 8)
	defer v.Close()

	v.attachSink(make(chan []byte, 128))
	v.Load(1, Track{ID: "a", URL: "u"})
	if ev := nextEvent(t, v); ev.Type != EventReady {
		t.Fatalf("first event = %s, want ready", ev.Type)
	}

	if err := v.Seek(30 * time.Second); err != nil {
		t.Fatal(err)
	}
	for ev := nextEvent(t, v); ev.Type != EventEnded; ev = nextEvent(t, v) {
	}

	if len(*offsets) != 2 || (*offsets)[1] != 30*time.Second {
		t.Errorf("stream offsets = %v, want second stream at 30s", *offsets)
	}
	if got := v.Position(); got != 30*time.Second+50*frameDuration {
		t.Errorf("position = %s", got)
	}
}

func TestVoiceTransportSeekAfterEndWaitsForPlay(t *testing.T) {
	source, offsets := oggSource(2)
	v := newVoiceTransport(source, testLogger(), 8)
	defer v.Close()

	sink := make(chan []byte, 8)
	v.attachSink(sink)
	v.Load(1, Track{ID: "a", URL: "u"})
	for ev := nextEvent(t, v); ev.Type != EventEnded; ev = nextEvent(t, v) {
	}
	for len(sink) > 0 {
		<-sink
	}

	if err := v.Seek(30 * time.Second); err != nil {
		t.Fatal(err)
	}
	if got := v.Position(); got != 30*time.Second {
		t.Errorf("position after seek = %s, want 30s", got)
	}

	select {
	case <-sink:
		t.Fatal("seek without a running stream sent audio")
	case <-time.After(100 * time.Millisecond):
	}

	if err := v.Play(); err != nil {
		t.Fatal(err)
	}
	for ev := nextEvent(t, v); ev.Type != EventEnded; ev = nextEvent(t, v) {
	}

	if len(*offsets) != 2 || (*offsets)[1] != 30*time.Second {
		t.Errorf("stream offsets = %v, want second stream at 30s", *offsets)
	}
	if got := v.Position(); got != 30*time.Second+2*frameDuration {
		t.Errorf("position = %s", got)
	}
}
