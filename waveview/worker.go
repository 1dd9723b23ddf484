package waveview

import (
	"sync/atomic"

	"github.com/bzeiss/sessionprep-sub001/audio"
	"github.com/bzeiss/sessionprep-sub001/melspec"
	"github.com/bzeiss/sessionprep-sub001/wave"
)

// LoadResult bundles everything the full-load worker derives from a
// buffer: markers, RMS cumulative sums, and the mel spectrogram. Spec is
// nil when the buffer is too short to analyze.
type LoadResult struct {
	Buffer     *audio.Buffer
	Peak       wave.PeakMarker
	RmsMax     wave.RmsMaxMarker
	CumSums    [][]float64
	Spec       *melspec.Spectrogram
	RmsWindow  int
	Generation uint64
}

// loadTask is one in-flight full load. The worker polls cancelled
// between stages and closes results without sending when it loses.
type loadTask struct {
	cancelled atomic.Bool
	results   chan *LoadResult
}

func (t *loadTask) cancel() { t.cancelled.Store(true) }

// startFullLoad derives markers, cumulative sums, and the spectrogram
// from buf on a background goroutine. Cancellation is checked at every
// stage boundary so a superseded load stops early.
func startFullLoad(buf *audio.Buffer, rmsWindow, fftSize int, window melspec.Window, generation uint64) *loadTask {
	t := &loadTask{results: make(chan *LoadResult, 1)}
	go func() {
		defer close(t.results)

		channels := buf.Channels()
		peak := wave.ComputePeakMarker(channels)
		if t.cancelled.Load() {
			return
		}

		cumsums := wave.BuildCumulativeSums(channels)
		if t.cancelled.Load() {
			return
		}

		rmsMax := wave.ComputeRmsMax(channels, cumsums, rmsWindow)
		if t.cancelled.Load() {
			return
		}

		spec, err := melspec.Compute(channels, buf.SampleRate(), fftSize, window)
		if err != nil {
			spec = nil
		}
		if t.cancelled.Load() {
			return
		}

		t.results <- &LoadResult{
			Buffer:     buf,
			Peak:       peak,
			RmsMax:     rmsMax,
			CumSums:    cumsums,
			Spec:       spec,
			RmsWindow:  rmsWindow,
			Generation: generation,
		}
	}()
	return t
}

// specResult carries a recomputed spectrogram. Spec is nil when the
// buffer is too short for the new FFT size.
type specResult struct {
	spec       *melspec.Spectrogram
	generation uint64
}

type specTask struct {
	cancelled atomic.Bool
	results   chan specResult
}

func (t *specTask) cancel() { t.cancelled.Store(true) }

// startSpecRecompute rebuilds only the spectrogram, for FFT size or
// window changes that leave the rest of the track state intact.
func startSpecRecompute(buf *audio.Buffer, fftSize int, window melspec.Window, generation uint64) *specTask {
	t := &specTask{results: make(chan specResult, 1)}
	go func() {
		defer close(t.results)

		spec, err := melspec.Compute(buf.Channels(), buf.SampleRate(), fftSize, window)
		if err != nil {
			spec = nil
		}
		if t.cancelled.Load() {
			return
		}
		t.results <- specResult{spec: spec, generation: generation}
	}()
	return t
}
