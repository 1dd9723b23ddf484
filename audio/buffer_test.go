package audio

import (
	"errors"
	"testing"
	"time"
)

func TestNewBufferValidatesChannelLengths(t *testing.T) {
	_, err := NewBuffer([][]float64{make([]float64, 10), make([]float64, 9)}, 48000)
	if err == nil {
		t.Fatalf("expected error for mismatched channel lengths")
	}
	if !errors.Is(err, ErrChannelLength) {
		t.Fatalf("expected ErrChannelLength, got %v", err)
	}
}

func TestNewBufferRejectsEmptyAndBadRate(t *testing.T) {
	if _, err := NewBuffer(nil, 48000); err == nil {
		t.Fatalf("expected error for no channels")
	}
	if _, err := NewBuffer([][]float64{{0, 0}}, 0); err == nil {
		t.Fatalf("expected error for zero sample rate")
	}
}

func TestBufferAccessors(t *testing.T) {
	left := []float64{0.1, -0.2, 0.3, 0}
	right := []float64{0, 0.5, -0.5, 0.25}
	b, err := NewBuffer([][]float64{left, right}, 4)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	if b.NumChannels() != 2 {
		t.Fatalf("channel count mismatch: %d", b.NumChannels())
	}
	if b.TotalSamples() != 4 {
		t.Fatalf("total samples mismatch: %d", b.TotalSamples())
	}
	if b.SampleRate() != 4 {
		t.Fatalf("sample rate mismatch: %d", b.SampleRate())
	}
	if b.Duration() != time.Second {
		t.Fatalf("duration mismatch: %v", b.Duration())
	}
	if got := b.Channel(1)[1]; got != 0.5 {
		t.Fatalf("channel data mismatch: %f", got)
	}
}
