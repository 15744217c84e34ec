package pcm

import (
	"encoding/binary"
	"time"
)

const (
	// L16Mono16K represents audio/L16; rate=16000; channels=1 (capture).
	L16Mono16K Format = iota
	// L16Mono24K represents audio/L16; rate=24000; channels=1 (playback).
	L16Mono24K
	// L16Mono48K represents audio/L16; rate=48000; channels=1 (output devices).
	L16Mono48K
)

// Format represents a fixed PCM audio configuration.
type Format int

// SampleRate returns the sample rate in Hz.
func (f Format) SampleRate() int {
	switch f {
	case L16Mono16K:
		return 16000
	case L16Mono24K:
		return 24000
	case L16Mono48K:
		return 48000
	}
	panic("pcm: invalid format")
}

// Channels returns the number of audio channels.
func (f Format) Channels() int {
	switch f {
	case L16Mono16K, L16Mono24K, L16Mono48K:
		return 1
	}
	panic("pcm: invalid format")
}

// Depth returns the bit depth.
func (f Format) Depth() int {
	switch f {
	case L16Mono16K, L16Mono24K, L16Mono48K:
		return 16
	}
	panic("pcm: invalid format")
}

// SampleBytes returns the byte size of one sample frame.
func (f Format) SampleBytes() int {
	return f.Channels() * f.Depth() / 8
}

// BytesRate returns the byte rate of audio in this format.
func (f Format) BytesRate() int {
	return f.SampleRate() * f.SampleBytes()
}

// Samples returns the number of sample frames in the given number of bytes.
func (f Format) Samples(bytes int64) int64 {
	return bytes / int64(f.SampleBytes())
}

// SamplesInDuration returns the number of sample frames in the given duration.
func (f Format) SamplesInDuration(d time.Duration) int64 {
	return int64(time.Duration(f.SampleRate()) * d / time.Second)
}

// BytesInDuration returns the number of bytes in the given duration.
func (f Format) BytesInDuration(d time.Duration) int64 {
	return f.SamplesInDuration(d) * int64(f.SampleBytes())
}

// Duration returns the play time of the given number of bytes.
func (f Format) Duration(bytes int64) time.Duration {
	return time.Duration(f.Samples(bytes)) * time.Second / time.Duration(f.SampleRate())
}

// String returns the MIME-style description of the format.
func (f Format) String() string {
	switch f {
	case L16Mono16K:
		return "audio/L16; rate=16000; channels=1"
	case L16Mono24K:
		return "audio/L16; rate=24000; channels=1"
	case L16Mono48K:
		return "audio/L16; rate=48000; channels=1"
	}
	panic("pcm: invalid format")
}

// Silence returns a zeroed buffer of the given duration.
func (f Format) Silence(d time.Duration) []byte {
	return make([]byte, f.BytesInDuration(d))
}

// Sample reads the i-th int16 sample from little-endian PCM16 data.
func Sample(data []byte, i int) int16 {
	return int16(binary.LittleEndian.Uint16(data[i*2:]))
}

// PutSample writes s as the i-th little-endian int16 sample of data.
func PutSample(data []byte, i int, s int16) {
	binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
}
