// Package audio holds immutable multi-channel sample buffers handed to the
// visualization engine by the decoding layer.
package audio

import (
	"errors"
	"fmt"
	"time"
)

// ErrChannelLength reports channels of unequal length passed to NewBuffer.
// This is a caller contract violation, detected at load time.
var ErrChannelLength = errors.New("channel length mismatch")

// Buffer holds per-channel sample data for one loaded file. A Buffer is
// never mutated after construction; the next load replaces it wholesale.
type Buffer struct {
	channels     [][]float64
	sampleRate   int
	totalSamples int
}

// NewBuffer validates and wraps decoded channel data. All channels must
// have equal length and the sample rate must be positive. The caller hands
// over ownership of the slices.
func NewBuffer(channels [][]float64, sampleRate int) (*Buffer, error) {
	if len(channels) == 0 {
		return nil, fmt.Errorf("audio: no channels")
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("audio: invalid sample rate %d", sampleRate)
	}
	total := len(channels[0])
	for i, ch := range channels[1:] {
		if len(ch) != total {
			return nil, fmt.Errorf("audio: %w: channel 0 has %d samples, channel %d has %d",
				ErrChannelLength, total, i+1, len(ch))
		}
	}
	return &Buffer{
		channels:     channels,
		sampleRate:   sampleRate,
		totalSamples: total,
	}, nil
}

// Channels returns the per-channel sample slices. Callers must treat the
// returned data as read-only.
func (b *Buffer) Channels() [][]float64 { return b.channels }

// Channel returns the samples of one channel.
func (b *Buffer) Channel(i int) []float64 { return b.channels[i] }

// NumChannels returns the channel count.
func (b *Buffer) NumChannels() int { return len(b.channels) }

// SampleRate returns the sample rate in Hz.
func (b *Buffer) SampleRate() int { return b.sampleRate }

// TotalSamples returns the per-channel sample count.
func (b *Buffer) TotalSamples() int { return b.totalSamples }

// Duration returns the buffer length as wall-clock time.
func (b *Buffer) Duration() time.Duration {
	return time.Duration(float64(b.totalSamples) / float64(b.sampleRate) * float64(time.Second))
}
