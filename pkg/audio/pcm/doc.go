// Package pcm provides PCM audio formats and sample conversion helpers.
//
// A live call captures microphone audio at 16kHz and plays synthesized
// audio at 24kHz, both as 16-bit signed little-endian mono PCM. Format
// describes one of these fixed configurations and converts between byte
// counts, sample counts and durations:
//
//	format := pcm.L16Mono24K
//	d := format.Duration(int64(len(chunk))) // playback time of a chunk
//
// EncodeFloat32 converts the float blocks produced by a capture graph
// into wire-ready PCM16 frames; DecodeFloat32 is its inverse for playback
// pipelines that operate on normalized samples.
package pcm
