package wavio

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteReadRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tone.wav")

	const rate = 48000
	const n = 4800
	left := make([]float64, n)
	right := make([]float64, n)
	for i := range left {
		left[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/rate)
		right[i] = 0.25 * math.Sin(2*math.Pi*880*float64(i)/rate)
	}

	if err := WriteWAV(path, [][]float64{left, right}, rate); err != nil {
		t.Fatalf("write: %v", err)
	}
	channels, gotRate, err := ReadWAV(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if gotRate != rate {
		t.Fatalf("sample rate mismatch: %d", gotRate)
	}
	if len(channels) != 2 || len(channels[0]) != n {
		t.Fatalf("shape mismatch: %d channels, %d frames", len(channels), len(channels[0]))
	}
	// 16-bit quantization: 1/32768 per step, allow a couple of steps.
	const tol = 3.0 / 32768.0
	for i := 0; i < n; i++ {
		if math.Abs(channels[0][i]-left[i]) > tol {
			t.Fatalf("left sample %d: got %g want %g", i, channels[0][i], left[i])
		}
		if math.Abs(channels[1][i]-right[i]) > tol {
			t.Fatalf("right sample %d: got %g want %g", i, channels[1][i], right[i])
		}
	}
}

func TestReadWAVRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "junk.wav")
	if err := os.WriteFile(path, []byte("not a wav file"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := ReadWAV(path); err == nil {
		t.Fatalf("expected error for non-wav data")
	}
}

func TestResampleIfNeededSameRatePassthrough(t *testing.T) {
	in := [][]float64{{0.1, 0.2, 0.3}}
	out, err := ResampleIfNeeded(in, 48000, 48000)
	if err != nil {
		t.Fatalf("resample: %v", err)
	}
	if &out[0][0] != &in[0][0] {
		t.Fatalf("same-rate resample must return the input unchanged")
	}
}

func TestResampleIfNeededChangesLength(t *testing.T) {
	const n = 48000
	ch := make([]float64, n)
	for i := range ch {
		ch[i] = math.Sin(2 * math.Pi * 440 * float64(i) / n)
	}
	out, err := ResampleIfNeeded([][]float64{ch}, 48000, 44100)
	if err != nil {
		t.Fatalf("resample: %v", err)
	}
	want := 44100
	got := len(out[0])
	if got < want-100 || got > want+100 {
		t.Fatalf("expected about %d samples, got %d", want, got)
	}
}
