package melspec

import "math"

// HzToMel converts a frequency in Hz to the mel scale.
func HzToMel(hz float64) float64 {
	return 2595.0 * math.Log10(1.0+hz/700.0)
}

// MelToHz converts a mel value back to Hz.
func MelToHz(mel float64) float64 {
	return 700.0 * (math.Pow(10.0, mel/2595.0) - 1.0)
}

// FullMelRange returns the displayable mel range for a sample rate:
// mel(FreqMin) to mel(min(FreqMax, sampleRate/2)).
func FullMelRange(sampleRate int) (lo, hi float64) {
	fMax := math.Min(FreqMax, float64(sampleRate)/2.0)
	return HzToMel(FreqMin), HzToMel(fMax)
}

// melFilter is one triangular filter: weights applied to power-spectrum
// bins starting at bin start.
type melFilter struct {
	start   int
	weights []float64
}

// buildFilterbank constructs nMels triangular filters with centers evenly
// spaced on the mel scale across [fMin, fMax]. Each filter ramps linearly
// from its left neighbor bin up to unit peak at its center bin and back
// down to its right neighbor bin.
func buildFilterbank(sampleRate, fftSize, nMels int, fMin, fMax float64) []melFilter {
	nFreqs := fftSize/2 + 1
	melMin := HzToMel(fMin)
	melMax := HzToMel(fMax)

	binPoints := make([]int, nMels+2)
	for i := range binPoints {
		mel := melMin + (melMax-melMin)*float64(i)/float64(nMels+1)
		hz := MelToHz(mel)
		binPoints[i] = int(math.Floor(float64(fftSize+1) * hz / float64(sampleRate)))
	}

	filters := make([]melFilter, nMels)
	for m := 0; m < nMels; m++ {
		left, center, right := binPoints[m], binPoints[m+1], binPoints[m+2]
		// Widen degenerate filters so every band has nonzero support.
		if center == left {
			center = left + 1
		}
		if right == center {
			right = center + 1
		}
		end := right
		if end > nFreqs {
			end = nFreqs
		}
		if end <= left {
			filters[m] = melFilter{start: left}
			continue
		}
		weights := make([]float64, end-left)
		for j := left; j < center && j < end; j++ {
			weights[j-left] = float64(j-left) / float64(center-left)
		}
		for j := center; j < end; j++ {
			weights[j-left] = float64(right-j) / float64(right-center)
		}
		filters[m] = melFilter{start: left, weights: weights}
	}
	return filters
}
