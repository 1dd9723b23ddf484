package wave

import "math"

// PeakMarker locates the single highest-|amplitude| sample across all
// channels. DB is -Inf for silence.
type PeakMarker struct {
	Sample    int
	Channel   int
	Amplitude float64
	DB        float64
}

// RmsMaxMarker locates the window with the highest cross-channel mean
// square over the whole buffer. Sample is offset by window/2 to report the
// window's temporal center.
type RmsMaxMarker struct {
	Sample    int
	DB        float64
	Amplitude float64
}

// RmsEngine derives windowed RMS envelopes from per-channel cumulative
// sums of squared samples and locates the peak and RMS-max markers lazily.
// The cumulative sums are built once per buffer; window changes re-dirty
// the RMS-max marker but never the sums.
type RmsEngine struct {
	channels [][]float64
	window   int
	cumsums  [][]float64

	peak   lazy[PeakMarker]
	rmsMax lazy[RmsMaxMarker]

	envKey      envelopeKey
	envValid    bool
	envChannels [][]float64
	envCombined []float64
}

type envelopeKey struct {
	width     int
	viewStart int
	viewEnd   int
	window    int
}

// SetBuffer installs new channel data. Both markers become dirty and are
// recomputed on first access; cumulative sums are rebuilt on first need.
func (e *RmsEngine) SetBuffer(channels [][]float64) {
	e.channels = channels
	e.cumsums = nil
	e.peak.invalidate()
	e.rmsMax.invalidate()
	e.envValid = false
}

// SetPrecomputed installs a background-computed bundle: channel data,
// cumulative sums, and both markers already evaluated for the given RMS
// window.
func (e *RmsEngine) SetPrecomputed(channels, cumsums [][]float64, window int, peak PeakMarker, rmsMax RmsMaxMarker) {
	e.channels = channels
	e.cumsums = cumsums
	e.window = window
	e.peak.set(peak)
	e.rmsMax.set(rmsMax)
	e.envValid = false
}

// SetWindow updates the RMS window length in samples. The RMS-max marker
// is re-dirtied; cumulative sums and the peak marker stay valid.
func (e *RmsEngine) SetWindow(samples int) {
	if samples < 0 {
		samples = 0
	}
	if samples == e.window {
		return
	}
	e.window = samples
	e.rmsMax.invalidate()
	e.envValid = false
}

// Window returns the current RMS window length in samples.
func (e *RmsEngine) Window() int { return e.window }

// PeakMarker returns the highest-|amplitude| sample, computing it on first
// access after a buffer change. ok is false when no buffer is loaded.
func (e *RmsEngine) PeakMarker() (PeakMarker, bool) {
	if len(e.channels) == 0 {
		return PeakMarker{}, false
	}
	return e.peak.get(func() PeakMarker {
		return ComputePeakMarker(e.channels)
	}), true
}

// RmsMaxMarker returns the loudest-window marker, computing it on first
// access after a buffer or window change. ok is false when no buffer is
// loaded or the window is zero.
func (e *RmsEngine) RmsMaxMarker() (RmsMaxMarker, bool) {
	if len(e.channels) == 0 || e.window <= 0 {
		return RmsMaxMarker{}, false
	}
	return e.rmsMax.get(func() RmsMaxMarker {
		e.ensureCumsums()
		return ComputeRmsMax(e.channels, e.cumsums, e.window)
	}), true
}

// Envelope returns per-channel and combined RMS envelopes of length width
// for samples [viewStart, viewEnd). Each pixel holds the square root of
// the maximum windowed mean square in its sample range (max-hold, so
// transients survive downsampling). The combined envelope averages the
// channels in the power domain before the square root.
func (e *RmsEngine) Envelope(viewStart, viewEnd, width int) ([][]float64, []float64) {
	if len(e.channels) == 0 || width <= 0 || e.window <= 0 || viewEnd <= viewStart {
		return nil, nil
	}
	key := envelopeKey{width: width, viewStart: viewStart, viewEnd: viewEnd, window: e.window}
	if e.envValid && e.envKey == key {
		return e.envChannels, e.envCombined
	}
	e.ensureCumsums()

	win := e.window
	perChannel := make([][]float64, len(e.channels))
	minLen := math.MaxInt
	for i, ch := range e.channels {
		wl := wmLen(len(ch), win)
		if wl < minLen {
			minLen = wl
		}
		perChannel[i] = downsampleMeanSquare(func(k int) float64 {
			return meanSquareAt(e.cumsums[i], len(ch), win, k)
		}, wl, viewStart, viewEnd, width, win)
	}

	nch := float64(len(e.channels))
	combined := downsampleMeanSquare(func(k int) float64 {
		var sum float64
		for i, ch := range e.channels {
			sum += meanSquareAt(e.cumsums[i], len(ch), win, k)
		}
		return sum / nch
	}, minLen, viewStart, viewEnd, width, win)

	e.envKey = key
	e.envValid = true
	e.envChannels = perChannel
	e.envCombined = combined
	return perChannel, combined
}

// ensureCumsums builds the per-channel cumulative sums if they have not
// been handed in by a background load.
func (e *RmsEngine) ensureCumsums() {
	if len(e.cumsums) == len(e.channels) {
		return
	}
	e.cumsums = BuildCumulativeSums(e.channels)
}

// BuildCumulativeSums returns, per channel, cs of length n+1 with cs[0]=0
// and cs[k] the sum of squared samples over [0, k).
func BuildCumulativeSums(channels [][]float64) [][]float64 {
	out := make([][]float64, len(channels))
	for i, ch := range channels {
		cs := make([]float64, len(ch)+1)
		var acc float64
		for j, v := range ch {
			acc += v * v
			cs[j+1] = acc
		}
		out[i] = cs
	}
	return out
}

// ComputePeakMarker scans all channels for the highest-|amplitude| sample.
func ComputePeakMarker(channels [][]float64) PeakMarker {
	m := PeakMarker{Sample: -1, Channel: -1, DB: math.Inf(-1)}
	bestAbs := -1.0
	for ci, ch := range channels {
		for si, v := range ch {
			if a := math.Abs(v); a > bestAbs {
				bestAbs = a
				m.Sample = si
				m.Channel = ci
				m.Amplitude = v
			}
		}
	}
	if bestAbs > 0 {
		m.DB = 20 * math.Log10(bestAbs)
	}
	return m
}

// ComputeRmsMax finds the global maximum of the cross-channel mean square
// over the entire buffer and reports the center of the winning window.
// Channels shorter than the window contribute a single zero-power point,
// which also caps the searchable range.
func ComputeRmsMax(channels, cumsums [][]float64, window int) RmsMaxMarker {
	m := RmsMaxMarker{Sample: -1, DB: math.Inf(-1)}
	if len(channels) == 0 || window <= 0 || len(cumsums) != len(channels) {
		return m
	}
	minLen := math.MaxInt
	for _, ch := range channels {
		if wl := wmLen(len(ch), window); wl < minLen {
			minLen = wl
		}
	}
	if minLen <= 0 {
		return m
	}
	nch := float64(len(channels))
	best := -1.0
	bestIdx := 0
	for k := 0; k < minLen; k++ {
		var sum float64
		for i, ch := range channels {
			sum += meanSquareAt(cumsums[i], len(ch), window, k)
		}
		if v := sum / nch; v > best {
			best = v
			bestIdx = k
		}
	}
	m.Sample = bestIdx + window/2
	m.Amplitude = math.Sqrt(math.Max(best, 0))
	if m.Amplitude > 0 {
		m.DB = 20 * math.Log10(m.Amplitude)
	}
	return m
}

// wmLen is the number of valid window positions for a channel of n
// samples: n-window+1, or a single degenerate point when n <= window.
func wmLen(n, window int) int {
	if n <= window {
		return 1
	}
	return n - window + 1
}

// meanSquareAt returns the windowed mean square at offset k, derived from
// the cumulative sum. Channels shorter than the window read as zero.
func meanSquareAt(cs []float64, n, window, k int) float64 {
	if n <= window {
		return 0
	}
	return (cs[k+window] - cs[k]) / float64(window)
}

// downsampleMeanSquare reduces a windowed mean-square series to width
// pixels with max-hold: each pixel takes the maximum mean square whose
// window center falls in the pixel's sample range, then the square root.
// Empty ranges after clamping fall back to the nearest valid position.
func downsampleMeanSquare(ms func(int) float64, length, viewStart, viewEnd, width, window int) []float64 {
	out := make([]float64, width)
	if length <= 0 {
		return out
	}
	viewLen := viewEnd - viewStart
	halfWin := window / 2
	for i := 0; i < width; i++ {
		lo := viewStart + i*viewLen/width - halfWin
		hi := viewStart + (i+1)*viewLen/width - halfWin
		if lo < 0 {
			lo = 0
		}
		if lo > length-1 {
			lo = length - 1
		}
		if hi > length {
			hi = length
		}
		if hi <= lo {
			hi = lo + 1
		}
		best := ms(lo)
		for k := lo + 1; k < hi; k++ {
			if v := ms(k); v > best {
				best = v
			}
		}
		out[i] = math.Sqrt(math.Max(best, 0))
	}
	return out
}
