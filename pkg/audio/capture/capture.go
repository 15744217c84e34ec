// Package capture runs the microphone side of a live call.
//
// A Source produces blocks of normalized float samples the way an audio
// processing graph delivers them. The Pipeline encodes each block to PCM16
// and hands the frame to the session for transport. Muting gates at the
// source: while muted, captured blocks are discarded and nothing reaches
// the frame callback.
package capture

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/casavoz/casavoz/pkg/audio/pcm"
)

// Source produces blocks of float32 samples in [-1, 1] at a fixed rate.
// Implementations wrap real capture devices or, in tests, scripted sample
// data.
type Source interface {
	// ReadBlock returns the next captured block. It returns io.EOF when the
	// device stops producing data.
	ReadBlock() ([]float32, error)

	Close() error
}

// Pipeline encodes captured float blocks into PCM16 frames.
type Pipeline struct {
	src    Source
	format pcm.Format
	emit   func(frame []byte)

	muted  atomic.Bool
	closed atomic.Bool

	closeOnce sync.Once
	closeErr  error
}

// NewPipeline creates a capture pipeline that reads from src and forwards
// each encoded frame to emit. Frames are emitted in capture order; ownership
// of a frame transfers to emit.
func NewPipeline(src Source, format pcm.Format, emit func(frame []byte)) *Pipeline {
	return &Pipeline{
		src:    src,
		format: format,
		emit:   emit,
	}
}

// Run reads blocks until the source is exhausted or the pipeline is closed.
// It returns nil on clean shutdown (source EOF or Close) and the read error
// otherwise.
func (p *Pipeline) Run() error {
	for {
		block, err := p.src.ReadBlock()
		if err != nil {
			if p.closed.Load() || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if p.closed.Load() {
			return nil
		}
		if p.muted.Load() || len(block) == 0 {
			continue
		}
		p.emit(pcm.EncodeFloat32(block))
	}
}

// SetMuted toggles the mute gate.
func (p *Pipeline) SetMuted(muted bool) {
	p.muted.Store(muted)
}

// Muted reports whether the mute gate is engaged.
func (p *Pipeline) Muted() bool {
	return p.muted.Load()
}

// Format returns the capture format.
func (p *Pipeline) Format() pcm.Format {
	return p.format
}

// Close releases the capture device. Safe to call multiple times.
func (p *Pipeline) Close() error {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		p.closeErr = p.src.Close()
	})
	return p.closeErr
}
