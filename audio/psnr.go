// Package audio is made to handle psnr for audios
package audio

import (
	"math"
)

// CalculatePSNR measures the distortion a stego stream introduces against the
// original samples, in dB, relative to full scale at the given bit depth.
func CalculatePSNR(original, stego []int, bitDepth int) float64 {
	if len(original) != len(stego) {
		return 0.0
	}

	if len(original) == 0 {
		return 0.0
	}

	var mse float64
	for i := range original {
		diff := float64(original[i] - stego[i])
		mse += diff * diff
	}
	mse /= float64(len(original))

	// If MSE is 0, signals are identical
	if mse == 0 {
		return math.Inf(1)
	}

	// 8-bit WAV samples are unsigned, full scale 255; wider depths are
	// signed, full scale 2^(depth-1)-1.
	var maxSignalValue float64
	if bitDepth == 8 {
		maxSignalValue = 255.0
	} else {
		maxSignalValue = float64(int64(1)<<(bitDepth-1)) - 1
	}

	// PSNR = 20 * log10(MAX_SIGNAL_VALUE / sqrt(MSE))
	psnr := 20 * math.Log10(maxSignalValue/math.Sqrt(mse))

	return psnr
}

func ValidatePSNR(psnr float64, threshold float64) bool {
	if math.IsInf(psnr, 1) {
		return true // Infinite PSNR is always good
	}
	return psnr >= threshold
}
