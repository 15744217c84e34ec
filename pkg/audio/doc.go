// Package audio is the umbrella for the call audio sub-packages:
//
//   - pcm: PCM16 formats and float32 sample conversion
//   - capture: microphone pipeline with mute gating
//   - playback: gapless playback scheduling and interruption flush
//   - resampler: sample-rate conversion for mismatched output devices
package audio
