// SPDX-License-Identifier: EPL-2.0

package utils

// Float32ToInt16 clamps x to [-1, 1] and scales it to 16-bit PCM.
// 32767 is used for both directions so +1 does not overflow.
func Float32ToInt16(x float32) int16 {
	return int16(ClampSample(x) * 32767.0)
}

// Float32ToInt scales x to signed PCM of the given bit depth, as stored in a
// go-audio IntBuffer.
func Float32ToInt(x float32, bitDepth int) int {
	if bitDepth == 16 {
		return int(Float32ToInt16(x))
	}
	return int(float64(ClampSample(x)) * (float64(PCMScale(bitDepth)) - 1))
}
