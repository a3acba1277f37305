// SPDX-License-Identifier: EPL-2.0

package utils

// PCMScale returns the full-scale magnitude of signed integer PCM with the
// given bit depth, e.g. 32768 for 16-bit. Unknown depths fall back to 16-bit.
func PCMScale(bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return 128.0
	case 16:
		return 32768.0
	case 24:
		return 8388608.0
	case 32:
		return 2147483648.0
	default:
		return 32768.0
	}
}

// IntToFloat32 normalizes a signed PCM sample into [-1, 1).
func IntToFloat32(v int, bitDepth int) float32 {
	return float32(v) / PCMScale(bitDepth)
}

// ClampSample limits x to [-1, 1]. NaN becomes 0.
func ClampSample(x float32) float32 {
	switch {
	case x > 1:
		return 1
	case x < -1:
		return -1
	case x != x:
		return 0
	}
	return x
}
