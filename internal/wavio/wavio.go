// Package wavio reads and writes WAV files as deinterleaved float64
// channel slices.
package wavio

import (
	"fmt"
	"os"
	"path/filepath"

	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/cwbudde/wav"
	goaudio "github.com/go-audio/audio"
)

// ReadWAV decodes all channels of a WAV file into separate float64
// slices, normalized to [-1, 1], and returns them with the sample rate.
func ReadWAV(path string) ([][]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, err
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, 0, fmt.Errorf("invalid wav buffer: %s", path)
	}
	nch := buf.Format.NumChannels
	frames := len(buf.Data) / nch
	channels := make([][]float64, nch)
	for c := range channels {
		channels[c] = make([]float64, frames)
	}
	for i := 0; i < frames; i++ {
		for c := 0; c < nch; c++ {
			channels[c][i] = float64(buf.Data[i*nch+c])
		}
	}
	return channels, buf.Format.SampleRate, nil
}

// ResampleIfNeeded converts every channel from fromRate to toRate. The
// input is returned unchanged when the rates already match.
func ResampleIfNeeded(channels [][]float64, fromRate, toRate int) ([][]float64, error) {
	if fromRate == toRate {
		return channels, nil
	}
	out := make([][]float64, len(channels))
	for i, ch := range channels {
		r, err := dspresample.NewForRates(
			float64(fromRate),
			float64(toRate),
			dspresample.WithQuality(dspresample.QualityBest),
		)
		if err != nil {
			return nil, err
		}
		out[i] = r.Process(ch)
	}
	return out, nil
}

// WriteWAV encodes deinterleaved channels as a 16-bit WAV file.
func WriteWAV(path string, channels [][]float64, sampleRate int) error {
	if len(channels) == 0 {
		return fmt.Errorf("no channels to write")
	}
	frames := len(channels[0])
	for _, ch := range channels[1:] {
		if len(ch) != frames {
			return fmt.Errorf("channel length mismatch")
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	nch := len(channels)
	enc := wav.NewEncoder(f, sampleRate, 16, nch, 1)
	defer enc.Close()

	data := make([]float32, frames*nch)
	for i := 0; i < frames; i++ {
		for c := 0; c < nch; c++ {
			data[i*nch+c] = float32(channels[c][i])
		}
	}
	buf := &goaudio.Float32Buffer{
		Format: &goaudio.Format{
			SampleRate:  sampleRate,
			NumChannels: nch,
		},
		Data:           data,
		SourceBitDepth: 16,
	}
	return enc.Write(buf)
}
