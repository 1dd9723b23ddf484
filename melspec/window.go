package melspec

import (
	"fmt"
	"math"
)

// Window selects the analysis window applied to each STFT frame.
type Window int

const (
	WindowHann Window = iota
	WindowHamming
	WindowBlackmanHarris
)

// String returns the canonical name used in settings files.
func (w Window) String() string {
	switch w {
	case WindowHann:
		return "hann"
	case WindowHamming:
		return "hamming"
	case WindowBlackmanHarris:
		return "blackmanharris"
	}
	return fmt.Sprintf("window(%d)", int(w))
}

// ParseWindow maps a settings-file name to a Window.
func ParseWindow(s string) (Window, error) {
	switch s {
	case "hann":
		return WindowHann, nil
	case "hamming":
		return WindowHamming, nil
	case "blackmanharris", "blackman_harris":
		return WindowBlackmanHarris, nil
	}
	return 0, fmt.Errorf("melspec: unknown window %q", s)
}

// Coefficients returns the symmetric window of length n.
func (w Window) Coefficients(n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = 1
		return out
	}
	for i := range out {
		x := 2 * math.Pi * float64(i) / float64(n-1)
		switch w {
		case WindowHamming:
			out[i] = 0.54 - 0.46*math.Cos(x)
		case WindowBlackmanHarris:
			out[i] = 0.35875 - 0.48829*math.Cos(x) + 0.14128*math.Cos(2*x) - 0.01168*math.Cos(3*x)
		default: // Hann
			out[i] = 0.5 - 0.5*math.Cos(x)
		}
	}
	return out
}
