package playback

import (
	"sync"
	"time"

	"github.com/casavoz/casavoz/pkg/audio/resampler"
)

// WallClock returns a Clock driven by the process monotonic clock, with zero
// at the moment of the call. Suitable when the output device consumes audio
// in real time.
func WallClock() Clock {
	return wallClock{start: time.Now()}
}

type wallClock struct {
	start time.Time
}

func (c wallClock) Now() time.Duration {
	return time.Since(c.start)
}

// ResamplingSink wraps a sink whose device runs at a different sample rate
// than the inbound audio. Each buffer is converted before registration; the
// scheduled start offset is unchanged, since resampling preserves duration.
func ResamplingSink(inner Sink, src, dst resampler.Format) (Sink, error) {
	conv, err := resampler.New(src, dst)
	if err != nil {
		return nil, err
	}
	return &resamplingSink{inner: inner, conv: conv}, nil
}

type resamplingSink struct {
	inner Sink

	mu   sync.Mutex
	conv *resampler.Converter
}

func (s *resamplingSink) Play(data []byte, at time.Duration, done func()) (Handle, error) {
	s.mu.Lock()
	converted, err := s.conv.Convert(data)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.inner.Play(converted, at, done)
}

// WriterSink adapts a timed byte writer (a file, a device FIFO) into a Sink.
// Buffers are written when their start offset is reached on clock; Stop
// before the deadline cancels the write. Completion fires after the buffer's
// play time has elapsed.
func WriterSink(clock Clock, write func(data []byte), dur func(data []byte) time.Duration) Sink {
	return &writerSink{clock: clock, write: write, dur: dur}
}

type writerSink struct {
	clock Clock
	write func(data []byte)
	dur   func(data []byte) time.Duration
}

func (s *writerSink) Play(data []byte, at time.Duration, done func()) (Handle, error) {
	h := &writerHandle{stopped: make(chan struct{})}
	go func() {
		if wait := at - s.clock.Now(); wait > 0 {
			select {
			case <-time.After(wait):
			case <-h.stopped:
				return
			}
		}
		select {
		case <-h.stopped:
			return
		default:
		}
		s.write(data)
		select {
		case <-time.After(s.dur(data)):
			done()
		case <-h.stopped:
		}
	}()
	return h, nil
}

type writerHandle struct {
	once    sync.Once
	stopped chan struct{}
}

func (h *writerHandle) Stop() {
	h.once.Do(func() { close(h.stopped) })
}
