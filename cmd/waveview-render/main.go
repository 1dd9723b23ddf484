package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"time"

	"github.com/bzeiss/sessionprep-sub001/internal/wavio"
	"github.com/bzeiss/sessionprep-sub001/melspec"
	"github.com/bzeiss/sessionprep-sub001/preset"
	"github.com/bzeiss/sessionprep-sub001/wave"
	"github.com/bzeiss/sessionprep-sub001/waveview"
)

var channelColors = []color.NRGBA{
	{0x44, 0xaa, 0x44, 0xff}, {0x44, 0xaa, 0xaa, 0xff},
	{0xaa, 0x44, 0xaa, 0xff}, {0xaa, 0xaa, 0x44, 0xff},
	{0x44, 0x88, 0xcc, 0xff}, {0xcc, 0x88, 0x44, 0xff},
	{0x88, 0xcc, 0x44, 0xff}, {0xcc, 0x44, 0x88, 0xff},
}

var background = color.NRGBA{0x1e, 0x1e, 0x1e, 0xff}

func main() {
	// Command-line flags
	input := flag.String("input", "", "Input WAV file path (required)")
	specOut := flag.String("spectrogram-out", "", "Spectrogram PNG output path")
	waveOut := flag.String("waveform-out", "", "Waveform PNG output path")
	width := flag.Int("width", 1024, "Output image width in pixels")
	height := flag.Int("height", 512, "Output image height in pixels")
	settingsPath := flag.String("settings", "", "Display settings JSON file path (optional)")
	colormapName := flag.String("colormap", "", "Colormap override (magma, viridis, grayscale)")
	fftSize := flag.Int("fft-size", 0, "FFT size override (512, 1024, 2048, 4096, 8192)")
	windowName := flag.String("window", "", "Analysis window override (hann, hamming, blackmanharris)")
	dbFloor := flag.Float64("db-floor", math.NaN(), "Display dB floor override")
	dbCeil := flag.Float64("db-ceil", math.NaN(), "Display dB ceiling override")
	rmsWindowMS := flag.Float64("rms-window-ms", math.NaN(), "RMS window length in milliseconds override")
	targetRate := flag.Int("sample-rate", 0, "Resample to this rate before analysis (0 = keep)")
	startSec := flag.Float64("start", 0, "View range start in seconds")
	endSec := flag.Float64("end", 0, "View range end in seconds (0 = end of file)")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "missing -input")
		flag.Usage()
		os.Exit(1)
	}

	settings := preset.NewDefaultSettings()
	if *settingsPath != "" {
		loaded, err := preset.LoadJSON(*settingsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading settings %q: %v\n", *settingsPath, err)
			os.Exit(1)
		}
		settings = loaded
	}
	if *colormapName != "" {
		settings.Colormap = *colormapName
	}
	if *fftSize != 0 {
		settings.FFTSize = *fftSize
	}
	if *windowName != "" {
		w, err := melspec.ParseWindow(*windowName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		settings.Window = w
	}
	if !math.IsNaN(*dbFloor) {
		settings.DBFloor = *dbFloor
	}
	if !math.IsNaN(*dbCeil) {
		settings.DBCeil = *dbCeil
	}
	if !math.IsNaN(*rmsWindowMS) {
		settings.RMSWindowMS = *rmsWindowMS
	}

	channels, rate, err := wavio.ReadWAV(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %q: %v\n", *input, err)
		os.Exit(1)
	}
	if *targetRate != 0 && *targetRate != rate {
		channels, err = wavio.ResampleIfNeeded(channels, rate, *targetRate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error resampling: %v\n", err)
			os.Exit(1)
		}
		rate = *targetRate
	}

	fmt.Printf("Loaded %s: %d channels, %d samples at %d Hz (%.2f s)\n",
		*input, len(channels), len(channels[0]), rate,
		float64(len(channels[0]))/float64(rate))

	engine := waveview.NewEngine()
	if err := engine.ApplySettings(settings); err != nil {
		fmt.Fprintf(os.Stderr, "Error applying settings: %v\n", err)
		os.Exit(1)
	}
	if err := engine.Load(channels, rate); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading track: %v\n", err)
		os.Exit(1)
	}
	for engine.Busy() {
		engine.Pump()
		time.Sleep(5 * time.Millisecond)
	}

	applyViewRange(engine, *startSec, *endSec, rate)

	if peak, ok := engine.PeakMarker(); ok {
		fmt.Printf("Peak:    %.2f dBFS at sample %d (channel %d, %.3f s)\n",
			peak.DB, peak.Sample, peak.Channel, float64(peak.Sample)/float64(rate))
	}
	if rms, ok := engine.RMSMaxMarker(); ok {
		fmt.Printf("RMS max: %.2f dBFS at sample %d (%.3f s, window %.0f ms)\n",
			rms.DB, rms.Sample, float64(rms.Sample)/float64(rate), settings.RMSWindowMS)
	}

	if *specOut != "" {
		img := engine.SpectrogramImage(*width, *height)
		if img == nil {
			fmt.Fprintln(os.Stderr, "Spectrogram unavailable (file shorter than one FFT frame)")
		} else {
			if err := writePNG(*specOut, img); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", *specOut, err)
				os.Exit(1)
			}
			fmt.Printf("Wrote spectrogram to %s\n", *specOut)
		}
	}

	if *waveOut != "" {
		img := renderWaveform(engine, *width, *height)
		if img == nil {
			fmt.Fprintln(os.Stderr, "Waveform unavailable")
			os.Exit(1)
		}
		if err := writePNG(*waveOut, img); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", *waveOut, err)
			os.Exit(1)
		}
		fmt.Printf("Wrote waveform to %s\n", *waveOut)
	}
}

// applyViewRange narrows the engine view to [startSec, endSec] when a
// range is given.
func applyViewRange(engine *waveview.Engine, startSec, endSec float64, rate int) {
	if startSec <= 0 && endSec <= 0 {
		return
	}
	v := engine.View()
	total := v.TotalSamples()
	start := int(startSec * float64(rate))
	end := total
	if endSec > 0 {
		end = int(endSec * float64(rate))
	}
	if start < 0 {
		start = 0
	}
	if end > total {
		end = total
	}
	if end <= start {
		return
	}
	v.SetView(start, end)
}

// renderWaveform draws per-channel min/max envelopes into stacked lanes,
// one color per channel.
func renderWaveform(engine *waveview.Engine, width, height int) *image.NRGBA {
	peaks := engine.Peaks(width)
	if len(peaks) == 0 {
		return nil
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, background)
		}
	}

	nch := len(peaks)
	laneH := float64(height) / float64(nch)
	vscale := engine.View().VScale()
	for ch, p := range peaks {
		col := channelColors[ch%len(channelColors)]
		yOff := float64(ch) * laneH
		midY := yOff + laneH/2
		scale := (laneH / 2) * 0.85 * vscale
		drawColumns(img, p, col, yOff, laneH, midY, scale)
	}
	return img
}

func drawColumns(img *image.NRGBA, p wave.ChannelPeaks, col color.NRGBA, yOff, laneH, midY, scale float64) {
	laneTop := int(yOff)
	laneBot := int(yOff + laneH)
	for x := 0; x < len(p.Mins); x++ {
		top := int(midY - p.Maxs[x]*scale)
		bot := int(midY - p.Mins[x]*scale)
		if top < laneTop {
			top = laneTop
		}
		if bot >= laneBot {
			bot = laneBot - 1
		}
		for y := top; y <= bot; y++ {
			img.SetNRGBA(x, y, col)
		}
	}
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return err
	}
	return f.Close()
}
