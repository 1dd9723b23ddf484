package melspec

import (
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
)

const (
	// DefaultFFTSize is the frame length used when no setting overrides it.
	DefaultFFTSize = 2048

	// NumMelBands is the fixed vertical resolution of the spectrogram.
	NumMelBands = 256

	// FreqMin and FreqMax bound the analyzed frequency range in Hz. FreqMax
	// is additionally capped at Nyquist.
	FreqMin = 20.0
	FreqMax = 22050.0

	powerFloor = 1e-10
)

// FFTSizes lists the frame lengths a settings file may select.
var FFTSizes = []int{512, 1024, 2048, 4096, 8192}

// ValidFFTSize reports whether n is an allowed frame length.
func ValidFFTSize(n int) bool {
	for _, s := range FFTSizes {
		if n == s {
			return true
		}
	}
	return false
}

// Spectrogram holds a mel-scaled power spectrogram in dB. Data is indexed
// [mel band][frame], band 0 being the lowest frequency.
type Spectrogram struct {
	Data       [][]float64
	FFTSize    int
	Window     Window
	SampleRate int
}

// Frames returns the number of STFT frames.
func (s *Spectrogram) Frames() int {
	if len(s.Data) == 0 {
		return 0
	}
	return len(s.Data[0])
}

// Compute renders the mel spectrogram of the channel-averaged mono mix.
// The hop is a quarter of the frame length and frames never extend past
// the end of the signal. Returns nil when the mix is shorter than one
// frame; the display treats that as spectrogram-unavailable rather than
// an error.
func Compute(channels [][]float64, sampleRate, fftSize int, window Window) (*Spectrogram, error) {
	if len(channels) == 0 || sampleRate <= 0 || fftSize <= 0 {
		return nil, nil
	}
	mono := mixdown(channels)
	if len(mono) < fftSize {
		return nil, nil
	}

	plan, err := algofft.NewPlanReal64(fftSize)
	if err != nil {
		return nil, err
	}

	hop := fftSize / 4
	frames := 1 + (len(mono)-fftSize)/hop
	nBins := fftSize/2 + 1

	win := window.Coefficients(fftSize)
	var winSum float64
	for _, v := range win {
		winSum += v
	}
	scale := 1.0 / winSum

	fMax := math.Min(FreqMax, float64(sampleRate)/2.0)
	filters := buildFilterbank(sampleRate, fftSize, NumMelBands, FreqMin, fMax)

	out := make([][]float64, NumMelBands)
	for m := range out {
		out[m] = make([]float64, frames)
	}

	buf := make([]float64, fftSize)
	spec := make([]complex128, nBins)
	power := make([]float64, nBins)
	for f := 0; f < frames; f++ {
		pos := f * hop
		for i := 0; i < fftSize; i++ {
			buf[i] = mono[pos+i] * win[i]
		}
		plan.Forward(spec, buf)
		for k := 0; k < nBins; k++ {
			mag := cmplx.Abs(spec[k]) * scale
			power[k] = mag * mag
		}
		for m, flt := range filters {
			var acc float64
			for j, w := range flt.weights {
				acc += w * power[flt.start+j]
			}
			out[m][f] = 10 * math.Log10(math.Max(acc, powerFloor))
		}
	}

	return &Spectrogram{
		Data:       out,
		FFTSize:    fftSize,
		Window:     window,
		SampleRate: sampleRate,
	}, nil
}

// mixdown averages the channels into a mono signal, truncated to the
// shortest channel.
func mixdown(channels [][]float64) []float64 {
	if len(channels) == 1 {
		return channels[0]
	}
	n := len(channels[0])
	for _, ch := range channels[1:] {
		if len(ch) < n {
			n = len(ch)
		}
	}
	mono := make([]float64, n)
	inv := 1.0 / float64(len(channels))
	for _, ch := range channels {
		for i := 0; i < n; i++ {
			mono[i] += ch[i] * inv
		}
	}
	return mono
}
