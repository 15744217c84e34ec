package live

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/casavoz/casavoz/pkg/audio/capture"
	"github.com/casavoz/casavoz/pkg/audio/pcm"
	"github.com/casavoz/casavoz/pkg/audio/playback"
)

// State is the connection lifecycle of a Session.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateConnected
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Config configures a Session. URL, Mic, Sink and Clock are required.
type Config struct {
	// URL of the realtime endpoint (ws:// or wss://).
	URL string
	// SpaceID selects the property being walked through; sent as the
	// spaceId query parameter.
	SpaceID string
	// Header carries extra handshake headers, typically authorization.
	Header http.Header

	// Mic feeds the capture pipeline. Its ReadBlock must unblock and fail
	// once the source is closed.
	Mic capture.Source
	// Camera is optional; without one the session is audio-only.
	Camera FrameSource
	// Sink and Clock drive the playback scheduler.
	Sink  playback.Sink
	Clock playback.Clock

	// CaptureFormat defaults to pcm.L16Mono16K, PlaybackFormat to
	// pcm.L16Mono24K.
	CaptureFormat  pcm.Format
	PlaybackFormat pcm.Format

	// FrameInterval is the video capture period, default 500ms.
	// JPEGQuality is the encode quality, default 60.
	FrameInterval time.Duration
	JPEGQuality   int

	// Tools handles inbound function calls; defaults to an empty router.
	Tools *ToolRouter

	// OnUtterance fires after each transcript fragment with the updated
	// utterance. OnState fires on every lifecycle transition. Both are
	// called from session goroutines and must not call Close.
	OnUtterance func(Utterance)
	OnState     func(State)
}

// Session is one live conversation: microphone and camera up, synthesized
// audio, transcripts and tool calls down.
type Session struct {
	cfg    Config
	mic    *capture.Pipeline
	sched  *playback.Scheduler
	tools  *ToolRouter
	script *Transcript

	cameraOn  atomic.Bool
	frameStop chan struct{}
	started   sync.Once
	closeOnce sync.Once
	wg        sync.WaitGroup

	mu     sync.Mutex
	state  State
	tr     *transport
	closed bool
}

// NewSession validates cfg, applies defaults and builds the session's
// capture pipeline and playback scheduler. No I/O happens until Connect.
func NewSession(cfg Config) (*Session, error) {
	if cfg.URL == "" {
		return nil, errors.New("live: missing endpoint URL")
	}
	if cfg.Mic == nil {
		return nil, errors.New("live: missing microphone source")
	}
	if cfg.Sink == nil || cfg.Clock == nil {
		return nil, errors.New("live: missing playback sink or clock")
	}
	if cfg.CaptureFormat == 0 {
		cfg.CaptureFormat = pcm.L16Mono16K
	}
	if cfg.PlaybackFormat == 0 {
		cfg.PlaybackFormat = pcm.L16Mono24K
	}
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = 500 * time.Millisecond
	}
	if cfg.JPEGQuality <= 0 {
		cfg.JPEGQuality = 60
	}
	if cfg.Tools == nil {
		cfg.Tools = NewToolRouter()
	}

	s := &Session{
		cfg:       cfg,
		sched:     playback.NewScheduler(cfg.Clock, cfg.Sink, cfg.PlaybackFormat),
		tools:     cfg.Tools,
		script:    NewTranscript(),
		frameStop: make(chan struct{}),
	}
	s.mic = capture.NewPipeline(cfg.Mic, cfg.CaptureFormat, func(frame []byte) {
		if err := s.SendAudio(frame); err != nil {
			slog.Debug("live: dropping capture frame", "err", err)
		}
	})
	s.cameraOn.Store(cfg.Camera != nil)
	return s, nil
}

// Connect dials the realtime endpoint and, on the first successful call,
// starts the capture pipeline and the video frame dispatcher. It returns an
// error if the session is closed, already connected, or the dial fails; a
// failed dial leaves the session disconnected and safe to retry.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.state == StateConnecting || s.state == StateConnected {
		s.mu.Unlock()
		return errors.New("live: already connected")
	}
	s.state = StateConnecting
	s.mu.Unlock()
	s.notifyState(StateConnecting)

	tr, err := dialTransport(ctx, s.cfg.URL, s.cfg.SpaceID, s.cfg.Header)
	if err != nil {
		s.setState(StateDisconnected)
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		tr.close()
		return ErrClosed
	}
	s.tr = tr
	s.state = StateConnected
	s.mu.Unlock()
	s.notifyState(StateConnected)

	s.started.Do(func() {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.mic.Run(); err != nil {
				slog.Error("live: capture pipeline failed", "err", err)
				s.markDisconnected(nil)
			}
		}()
		if s.cfg.Camera != nil {
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.frameLoop()
			}()
		}
	})

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.recvLoop(context.WithoutCancel(ctx), tr)
	}()
	return nil
}

// SendAudio transmits one captured PCM16 frame. While the channel is not
// open the frame is silently dropped and SendAudio returns nil.
func (s *Session) SendAudio(frame []byte) error {
	tr := s.openTransport()
	if tr == nil {
		return nil
	}
	if err := tr.sendMediaChunks(audioChunk(frame)); err != nil {
		return wrapError(err, "send audio")
	}
	return nil
}

// SetMuted gates the microphone at the capture stage; muted blocks are
// discarded before encoding, so nothing reaches the wire.
func (s *Session) SetMuted(muted bool) { s.mic.SetMuted(muted) }

// Muted reports whether the microphone is gated.
func (s *Session) Muted() bool { return s.mic.Muted() }

// SetCameraEnabled toggles video frame dispatch. Disabled ticks are skipped
// silently; the timer keeps running.
func (s *Session) SetCameraEnabled(on bool) { s.cameraOn.Store(on && s.cfg.Camera != nil) }

// CameraEnabled reports whether video frames are being dispatched.
func (s *Session) CameraEnabled() bool { return s.cameraOn.Load() }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Transcript returns the session's utterance log.
func (s *Session) Transcript() *Transcript { return s.script }

// Tools returns the session's tool router for handler registration.
func (s *Session) Tools() *ToolRouter { return s.tools }

// Playback returns the session's playback scheduler.
func (s *Session) Playback() *playback.Scheduler { return s.sched }

// Close releases the devices, stops playback and closes the connection.
// Safe to call multiple times and from any goroutine; only the first call
// does the work.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		tr := s.tr
		s.tr = nil
		prev := s.state
		s.state = StateDisconnected
		s.mu.Unlock()

		close(s.frameStop)
		if cerr := s.mic.Close(); cerr != nil {
			slog.Warn("live: closing microphone", "err", cerr)
		}
		if s.cfg.Camera != nil {
			if cerr := s.cfg.Camera.Close(); cerr != nil {
				slog.Warn("live: closing camera", "err", cerr)
			}
		}
		if tr != nil {
			err = tr.close()
		}
		// Drain the receive loop before flushing: a batch already dequeued
		// may still schedule audio, and every source must be stopped by the
		// time Close returns.
		s.wg.Wait()
		s.sched.Flush()
		if prev != StateDisconnected {
			s.notifyState(StateDisconnected)
		}
	})
	return err
}

func (s *Session) recvLoop(ctx context.Context, tr *transport) {
	for payloads, err := range tr.batches() {
		if err != nil {
			slog.Warn("live: connection lost", "err", err)
			s.markDisconnected(tr)
			return
		}
		s.handlePayloads(ctx, tr, payloads)
	}
}

// handlePayloads applies one server message's payloads in wire order.
func (s *Session) handlePayloads(ctx context.Context, tr *transport, payloads []Payload) {
	for _, p := range payloads {
		switch p := p.(type) {
		case Interrupted:
			s.sched.Flush()
		case TranscriptFragment:
			u, _ := s.script.Append(p.Role, p.Text)
			if s.cfg.OnUtterance != nil {
				s.cfg.OnUtterance(u)
			}
		case AudioChunk:
			s.sched.Schedule(p.Data)
		case ToolCallBatch:
			responses := s.tools.Dispatch(ctx, p.Calls)
			if err := tr.sendToolResponses(responses); err != nil {
				slog.Warn("live: sending tool responses", "err", err)
			}
		}
	}
}

// openTransport returns the transport if the channel is open, else nil.
func (s *Session) openTransport() *transport {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateConnected {
		return nil
	}
	return s.tr
}

// markDisconnected records the loss of the connection identified by tr (or
// any current connection when tr is nil). The devices stay open; the caller
// may Connect again or Close.
func (s *Session) markDisconnected(tr *transport) {
	s.mu.Lock()
	if tr != nil && s.tr != tr {
		s.mu.Unlock()
		return
	}
	old := s.tr
	s.tr = nil
	changed := s.state == StateConnected || s.state == StateConnecting
	if changed {
		s.state = StateDisconnected
	}
	s.mu.Unlock()

	if old != nil {
		old.close()
	}
	if changed {
		s.notifyState(StateDisconnected)
	}
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	s.notifyState(st)
}

func (s *Session) notifyState(st State) {
	if s.cfg.OnState != nil {
		s.cfg.OnState(st)
	}
}
