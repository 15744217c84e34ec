// Package resampler converts PCM16 audio between sample rates.
//
// Playback schedulers receive synthesized audio at a fixed rate (24kHz for
// live calls) while output devices may run at another rate. A Converter
// bridges the two without CGO, using a pure Go resampling implementation.
package resampler

import (
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"

	"github.com/casavoz/casavoz/pkg/audio/pcm"
)

// Format describes the audio format for resampling. Only 16-bit signed
// little-endian mono samples are supported.
type Format struct {
	// SampleRate is the sample rate in Hz (e.g., 24000, 48000).
	SampleRate int
}

// Converter resamples successive PCM16 buffers from a source rate to a
// destination rate. Filter state carries across calls, so feeding
// consecutive chunks of one stream produces a continuous output stream.
// A Converter is not safe for concurrent use.
type Converter struct {
	src, dst Format
	rs       resampling.Resampler
}

// New creates a Converter from src to dst. If the rates match, Convert is a
// pass-through.
func New(src, dst Format) (*Converter, error) {
	c := &Converter{src: src, dst: dst}
	if src.SampleRate == dst.SampleRate {
		return c, nil
	}

	rs, err := resampling.New(&resampling.Config{
		InputRate:  float64(src.SampleRate),
		OutputRate: float64(dst.SampleRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("resampler: %w", err)
	}
	c.rs = rs
	return c, nil
}

// Convert resamples one PCM16 buffer. The returned slice is freshly
// allocated; data is not retained. Trailing odd bytes are dropped.
func (c *Converter) Convert(data []byte) ([]byte, error) {
	if c.rs == nil {
		out := make([]byte, len(data)/2*2)
		copy(out, data)
		return out, nil
	}

	samples := pcm.DecodeFloat32(data)
	input := make([]float64, len(samples))
	for i, s := range samples {
		input[i] = float64(s)
	}

	output, err := c.rs.Process(input)
	if err != nil {
		return nil, fmt.Errorf("resampler: %w", err)
	}

	normalized := make([]float32, len(output))
	for i, v := range output {
		normalized[i] = float32(v)
	}
	return pcm.EncodeFloat32(normalized), nil
}
