// Package playback turns an arbitrarily-timed stream of inbound audio
// chunks into continuous, gapless output.
//
// Chunks arrive from the network in bursts, often faster than real time.
// The Scheduler assigns each decoded chunk a start offset on the output
// graph's clock so consecutive chunks play back-to-back, and keeps a
// registry of every not-yet-finished buffer so an interruption can stop
// them all at once:
//
//	sched := playback.NewScheduler(clock, sink, pcm.L16Mono24K)
//	sched.Schedule(chunk) // start = max(cursor, now), cursor += duration
//	sched.Flush()         // barge-in: hard-stop everything, cursor = now
//
// Chunks are assumed to arrive in play order; the scheduler performs no
// reordering and carries no sequence numbers.
package playback

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/casavoz/casavoz/pkg/audio/pcm"
)

// Clock reports the current time of the audio output graph. The zero offset
// is whenever the graph started; only differences matter.
type Clock interface {
	Now() time.Duration
}

// Sink registers PCM16 buffers with the audio output graph.
//
// Play must not invoke done before it returns; done is called exactly once
// when the buffer finishes playing naturally, and never after Stop.
type Sink interface {
	Play(data []byte, at time.Duration, done func()) (Handle, error)
}

// Handle refers to one buffer registered with the output graph.
type Handle interface {
	// Stop halts playback immediately. Stopping an already-finished buffer
	// is a no-op.
	Stop()
}

// Scheduler schedules inbound chunks for gapless playback.
type Scheduler struct {
	clock  Clock
	sink   Sink
	format pcm.Format

	mu     sync.Mutex
	cursor time.Duration
	active map[string]Handle
}

// NewScheduler creates a Scheduler that plays chunks of the given format
// through sink, timed against clock.
func NewScheduler(clock Clock, sink Sink, format pcm.Format) *Scheduler {
	return &Scheduler{
		clock:  clock,
		sink:   sink,
		format: format,
		active: make(map[string]Handle),
	}
}

// Schedule queues one PCM16 chunk to start the instant the previous chunk
// ends, or immediately if playback has drained. Malformed chunks (empty or
// odd-length) are dropped; a bad chunk never halts the stream.
func (s *Scheduler) Schedule(data []byte) {
	if len(data) == 0 || len(data)%2 != 0 {
		slog.Debug("playback: dropping malformed chunk", "len", len(data))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if s.cursor < now {
		// Previous chunk already finished (or this is the first): start now.
		s.cursor = now
	}
	start := s.cursor
	dur := s.format.Duration(int64(len(data)))

	id := uuid.NewString()
	handle, err := s.sink.Play(data, start, func() { s.sourceDone(id) })
	if err != nil {
		slog.Debug("playback: sink rejected chunk", "err", err)
		return
	}
	s.active[id] = handle
	s.cursor = start + dur
}

// Flush hard-stops every scheduled and playing buffer and resets the cursor
// to the graph's current time. A chunk scheduled immediately after Flush
// starts at that reset cursor, never at a pre-flush time.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, handle := range s.active {
		handle.Stop()
		delete(s.active, id)
	}
	s.cursor = s.clock.Now()
}

// Active returns the number of buffers currently registered with the graph.
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

// Cursor returns the next scheduled start offset.
func (s *Scheduler) Cursor() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

func (s *Scheduler) sourceDone(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, id)
}
