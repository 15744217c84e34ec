package pcm

// EncodeFloat32 converts normalized float samples into little-endian PCM16.
// Samples are hard-clamped to [-1, 1] before scaling; negative values scale
// by 32768 and non-negative values by 32767, truncated toward zero. Malformed
// input (NaN, out of range) is clamped, never rejected.
func EncodeFloat32(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		PutSample(out, i, encodeSample(s))
	}
	return out
}

// AppendFloat32 appends the PCM16 encoding of samples to dst and returns the
// extended slice.
func AppendFloat32(dst []byte, samples []float32) []byte {
	n := len(dst)
	dst = append(dst, make([]byte, len(samples)*2)...)
	for i, s := range samples {
		PutSample(dst[n:], i, encodeSample(s))
	}
	return dst
}

func encodeSample(s float32) int16 {
	switch {
	case s != s: // NaN
		return 0
	case s <= -1:
		return -32768
	case s >= 1:
		return 32767
	case s < 0:
		return int16(s * 32768)
	default:
		return int16(s * 32767)
	}
}

// DecodeFloat32 converts little-endian PCM16 data into normalized float
// samples in [-1, 1). Trailing odd bytes are ignored.
func DecodeFloat32(data []byte) []float32 {
	n := len(data) / 2
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(Sample(data, i)) / 32768
	}
	return out
}
