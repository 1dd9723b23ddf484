// Package waveview ties the viewport model, peak and RMS caches, and the
// spectrogram pipeline together behind a single facade. Heavy work runs
// on background goroutines; the interactive loop installs finished
// results by calling Pump and owns every cache exclusively.
package waveview

import (
	"fmt"
	"image"

	"github.com/bzeiss/sessionprep-sub001/audio"
	"github.com/bzeiss/sessionprep-sub001/colormap"
	"github.com/bzeiss/sessionprep-sub001/melspec"
	"github.com/bzeiss/sessionprep-sub001/preset"
	"github.com/bzeiss/sessionprep-sub001/render"
	"github.com/bzeiss/sessionprep-sub001/view"
	"github.com/bzeiss/sessionprep-sub001/wave"
)

// Engine is the single entry point for one track's visualization state.
// Not safe for concurrent use: all methods belong to the interactive
// loop, which hands work to background goroutines only through Load and
// the Set* methods and collects it back through Pump.
type Engine struct {
	view   view.Model
	rms    wave.RmsEngine
	peaks  wave.PeakCache
	images render.ImageCache

	buffer *audio.Buffer
	spec   *melspec.Spectrogram

	fftSize      int
	window       melspec.Window
	colormapName string
	dbFloor      float64
	dbCeil       float64
	rmsWindowMS  float64

	generation uint64
	load       *loadTask
	recompute  *specTask

	// OnLoad and OnSpectrogram, when set, fire from Pump after a result
	// is installed.
	OnLoad        func(*LoadResult)
	OnSpectrogram func(*melspec.Spectrogram)
}

// NewEngine returns an engine with default display settings: 2048-point
// Hann spectrogram, magma colormap, -80..0 dB display range.
func NewEngine() *Engine {
	return &Engine{
		fftSize:      melspec.DefaultFFTSize,
		window:       melspec.WindowHann,
		colormapName: colormap.DefaultName,
		dbFloor:      -80,
		dbCeil:       0,
	}
}

// Load validates and installs a new track, cancels any in-flight work,
// and starts the full background load: markers, RMS cumulative sums,
// and the mel spectrogram. The track is interactive immediately; marker
// queries before the load finishes compute on demand.
func (e *Engine) Load(channels [][]float64, sampleRate int) error {
	buf, err := audio.NewBuffer(channels, sampleRate)
	if err != nil {
		return err
	}

	e.generation++
	e.cancelWork()

	e.buffer = buf
	e.spec = nil
	e.peaks.Invalidate()
	e.images.Invalidate()
	e.view.SetTrack(buf.TotalSamples(), buf.SampleRate())
	e.rms.SetBuffer(buf.Channels())
	e.rms.SetWindow(e.rmsWindowSamples())

	e.load = startFullLoad(buf, e.rmsWindowSamples(), e.fftSize, e.window, e.generation)
	return nil
}

// Unload drops the track and cancels all in-flight work.
func (e *Engine) Unload() {
	e.generation++
	e.cancelWork()
	e.buffer = nil
	e.spec = nil
	e.peaks.Invalidate()
	e.images.Invalidate()
	e.view.SetTrack(0, 0)
	e.rms.SetBuffer(nil)
}

func (e *Engine) cancelWork() {
	if e.load != nil {
		e.load.cancel()
		e.load = nil
	}
	if e.recompute != nil {
		e.recompute.cancel()
		e.recompute = nil
	}
}

// Pump drains finished background results without blocking and installs
// those that still match the current generation. Returns true when
// anything was installed.
func (e *Engine) Pump() bool {
	installed := false
	if e.load != nil {
		select {
		case res, ok := <-e.load.results:
			e.load = nil
			if ok && res.Generation == e.generation {
				e.install(res)
				installed = true
			}
		default:
		}
	}
	if e.recompute != nil {
		select {
		case res, ok := <-e.recompute.results:
			e.recompute = nil
			if ok && res.generation == e.generation {
				e.spec = res.spec
				e.images.Invalidate()
				installed = true
				if e.OnSpectrogram != nil {
					e.OnSpectrogram(res.spec)
				}
			}
		default:
		}
	}
	return installed
}

func (e *Engine) install(res *LoadResult) {
	// The RMS window may have changed while the load ran. A matching
	// result installs verbatim; otherwise the markers recompute lazily
	// from the delivered cumulative sums.
	if res.RmsWindow == e.rmsWindowSamples() {
		e.rms.SetPrecomputed(res.Buffer.Channels(), res.CumSums, res.RmsWindow, res.Peak, res.RmsMax)
	} else {
		e.rms.SetBuffer(res.Buffer.Channels())
		e.rms.SetWindow(e.rmsWindowSamples())
	}
	e.spec = res.Spec
	e.images.Invalidate()
	if e.OnLoad != nil {
		e.OnLoad(res)
	}
}

// Busy reports whether any background computation is still in flight.
func (e *Engine) Busy() bool { return e.load != nil || e.recompute != nil }

// View exposes the viewport model for zoom and scroll operations.
func (e *Engine) View() *view.Model { return &e.view }

// Loaded reports whether a track is installed.
func (e *Engine) Loaded() bool { return e.buffer != nil }

// Buffer returns the loaded track, or nil.
func (e *Engine) Buffer() *audio.Buffer { return e.buffer }

// SetRMSWindowMS sets the RMS window length in milliseconds. The marker
// and envelopes follow on their next query.
func (e *Engine) SetRMSWindowMS(ms float64) {
	if ms < 0 {
		ms = 0
	}
	e.rmsWindowMS = ms
	if e.buffer != nil {
		e.rms.SetWindow(e.rmsWindowSamples())
	}
}

// RMSWindowMS returns the configured RMS window in milliseconds.
func (e *Engine) RMSWindowMS() float64 { return e.rmsWindowMS }

func (e *Engine) rmsWindowSamples() int {
	if e.buffer == nil {
		return 0
	}
	return int(e.rmsWindowMS * float64(e.buffer.SampleRate()) / 1000.0)
}

// SetFFTParams changes the spectrogram FFT size and window. A no-op when
// both are unchanged; otherwise the current spectrogram is dropped and a
// background recompute starts.
func (e *Engine) SetFFTParams(fftSize int, window melspec.Window) error {
	if !melspec.ValidFFTSize(fftSize) {
		return fmt.Errorf("waveview: invalid fft size %d", fftSize)
	}
	if fftSize == e.fftSize && window == e.window {
		return nil
	}
	e.fftSize = fftSize
	e.window = window
	if e.recompute != nil {
		e.recompute.cancel()
		e.recompute = nil
	}
	e.spec = nil
	e.images.Invalidate()
	if e.buffer != nil {
		e.recompute = startSpecRecompute(e.buffer, e.fftSize, e.window, e.generation)
	}
	return nil
}

// FFTParams returns the current FFT size and window.
func (e *Engine) FFTParams() (int, melspec.Window) { return e.fftSize, e.window }

// SetColormap selects the spectrogram colormap by name.
func (e *Engine) SetColormap(name string) error {
	if _, err := colormap.Lookup(name); err != nil {
		return err
	}
	if name != e.colormapName {
		e.colormapName = name
		e.images.Invalidate()
	}
	return nil
}

// Colormap returns the active colormap name.
func (e *Engine) Colormap() string { return e.colormapName }

// SetDBRange sets the display normalization range in dB.
func (e *Engine) SetDBRange(floor, ceil float64) {
	if floor == e.dbFloor && ceil == e.dbCeil {
		return
	}
	e.dbFloor = floor
	e.dbCeil = ceil
	e.images.Invalidate()
}

// DBRange returns the display normalization range.
func (e *Engine) DBRange() (floor, ceil float64) { return e.dbFloor, e.dbCeil }

// Peaks returns per-channel min/max envelopes of the visible range at
// the given draw width, served from the incremental peak cache.
func (e *Engine) Peaks(width int) []wave.ChannelPeaks {
	if e.buffer == nil || width <= 0 {
		return nil
	}
	start, end := e.view.View()
	return e.peaks.Peaks(e.buffer.Channels(), start, end, width)
}

// RMSEnvelope returns per-channel and combined RMS envelopes of the
// visible range. Both are nil when no RMS window is configured.
func (e *Engine) RMSEnvelope(width int) (perChannel [][]float64, combined []float64) {
	if e.buffer == nil || width <= 0 {
		return nil, nil
	}
	start, end := e.view.View()
	return e.rms.Envelope(start, end, width)
}

// PeakMarker returns the track's peak sample marker.
func (e *Engine) PeakMarker() (wave.PeakMarker, bool) { return e.rms.PeakMarker() }

// RMSMaxMarker returns the track's loudest-window marker.
func (e *Engine) RMSMaxMarker() (wave.RmsMaxMarker, bool) { return e.rms.RmsMaxMarker() }

// SpectrogramAvailable reports whether a spectrogram is installed. False
// while the initial load or a recompute is still running, and for tracks
// shorter than one FFT frame.
func (e *Engine) SpectrogramAvailable() bool { return e.spec != nil }

// ApplySettings applies a full display configuration: colormap, FFT
// parameters, dB range, and RMS window.
func (e *Engine) ApplySettings(s *preset.Settings) error {
	if s == nil {
		return nil
	}
	if err := e.SetColormap(s.Colormap); err != nil {
		return err
	}
	if err := e.SetFFTParams(s.FFTSize, s.Window); err != nil {
		return err
	}
	e.SetDBRange(s.DBFloor, s.DBCeil)
	e.SetRMSWindowMS(s.RMSWindowMS)
	return nil
}

// SpectrogramImage rasterizes the visible spectrogram region at the
// given draw size, through the image cache. Nil when no spectrogram is
// available.
func (e *Engine) SpectrogramImage(width, height int) *image.NRGBA {
	if e.spec == nil || e.buffer == nil {
		return nil
	}
	start, end := e.view.View()
	melMin, melMax := e.view.MelRange()
	return e.images.Image(e.spec, render.Params{
		ViewStart:    start,
		ViewEnd:      end,
		TotalSamples: e.buffer.TotalSamples(),
		MelMin:       melMin,
		MelMax:       melMax,
		Width:        width,
		Height:       height,
		Colormap:     e.colormapName,
		DBFloor:      e.dbFloor,
		DBCeil:       e.dbCeil,
	})
}
