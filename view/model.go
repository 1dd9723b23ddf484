// Package view tracks the visible sample range, vertical amplitude scale,
// and mel frequency range of a loaded track, with zoom and scroll
// operations that keep every value inside its clamps.
package view

import (
	"math"

	"github.com/bzeiss/sessionprep-sub001/melspec"
)

const (
	// MinViewSamples is the shortest horizontal zoom in samples.
	MinViewSamples = 100

	// MinMelSpan is the narrowest mel frequency zoom.
	MinMelSpan = 50.0

	// MinVScale and MaxVScale bound the vertical amplitude scale.
	MinVScale = 0.1
	MaxVScale = 20.0

	vscaleStep = 1.5
)

// Model holds the viewport state for one track. The zero value is an
// empty model with no track loaded.
type Model struct {
	totalSamples int
	sampleRate   int

	viewStart int
	viewEnd   int
	cursor    int

	vscale float64

	melMin float64
	melMax float64
}

// SetTrack installs a new track and resets the viewport to show all of
// it: full sample range, unit vertical scale, full mel range.
func (m *Model) SetTrack(totalSamples, sampleRate int) {
	m.totalSamples = totalSamples
	m.sampleRate = sampleRate
	m.cursor = 0
	m.ZoomFit()
}

// TotalSamples returns the loaded track length in samples.
func (m *Model) TotalSamples() int { return m.totalSamples }

// SampleRate returns the loaded track's sample rate.
func (m *Model) SampleRate() int { return m.sampleRate }

// View returns the visible sample range [start, end).
func (m *Model) View() (start, end int) { return m.viewStart, m.viewEnd }

// ViewLen returns the visible range length in samples.
func (m *Model) ViewLen() int { return m.viewEnd - m.viewStart }

// VScale returns the vertical amplitude scale factor.
func (m *Model) VScale() float64 { return m.vscale }

// MelRange returns the visible mel frequency range.
func (m *Model) MelRange() (lo, hi float64) { return m.melMin, m.melMax }

// Cursor returns the cursor position in samples.
func (m *Model) Cursor() int { return m.cursor }

// SetCursor moves the cursor, clamped to the track.
func (m *Model) SetCursor(sample int) {
	if sample < 0 {
		sample = 0
	}
	if sample > m.totalSamples {
		sample = m.totalSamples
	}
	m.cursor = sample
}

// ZoomFit resets to the full track: entire sample range, vscale 1, full
// mel range.
func (m *Model) ZoomFit() {
	m.viewStart = 0
	m.viewEnd = m.totalSamples
	m.vscale = 1.0
	m.ResetFreqView()
}

// ZoomIn halves the visible range, centered on the cursor. A view at the
// minimum length is left untouched.
func (m *Model) ZoomIn() {
	viewLen := m.ViewLen()
	if viewLen <= MinViewSamples {
		return
	}
	center := clampInt(m.cursor, m.viewStart, m.viewEnd)
	newLen := viewLen / 2
	if newLen < MinViewSamples {
		newLen = MinViewSamples
	}
	m.applyView(center-newLen/2, newLen)
}

// ZoomOut doubles the visible range, centered on the cursor.
func (m *Model) ZoomOut() {
	viewLen := m.ViewLen()
	if viewLen >= m.totalSamples {
		return
	}
	center := clampInt(m.cursor, m.viewStart, m.viewEnd)
	newLen := viewLen * 2
	if newLen > m.totalSamples {
		newLen = m.totalSamples
	}
	m.applyView(center-newLen/2, newLen)
}

// ZoomAt zooms by one wheel step about an anchor sample that sits at
// fraction frac of the draw width. Zooming in shrinks the range to 2/3,
// zooming out grows it to 3/2.
func (m *Model) ZoomAt(anchorSample int, frac float64, in bool) {
	viewLen := m.ViewLen()
	var newLen int
	if in {
		newLen = viewLen * 2 / 3
		if newLen < MinViewSamples {
			newLen = MinViewSamples
		}
	} else {
		newLen = viewLen * 3 / 2
		if newLen > m.totalSamples {
			newLen = m.totalSamples
		}
	}
	if newLen == viewLen {
		return
	}
	anchor := clampInt(anchorSample, m.viewStart, m.viewEnd)
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	m.applyView(anchor-int(frac*float64(newLen)), newLen)
}

// SetView shows the sample range [start, end), clamped to the track and
// to the minimum view length.
func (m *Model) SetView(start, end int) {
	length := end - start
	if length < MinViewSamples {
		length = MinViewSamples
	}
	if length > m.totalSamples {
		length = m.totalSamples
	}
	m.applyView(start, length)
}

// Scroll pans the view by delta samples, preserving the view length.
func (m *Model) Scroll(delta int) {
	viewLen := m.ViewLen()
	m.applyView(m.viewStart+delta, viewLen)
}

// applyView clamps a candidate [start, start+length) range to the track.
func (m *Model) applyView(start, length int) {
	end := start + length
	if start < 0 {
		start = 0
		end = length
		if end > m.totalSamples {
			end = m.totalSamples
		}
	}
	if end > m.totalSamples {
		end = m.totalSamples
		start = end - length
		if start < 0 {
			start = 0
		}
	}
	m.viewStart = start
	m.viewEnd = end
}

// SetVScale sets the vertical amplitude scale, clamped to its bounds.
func (m *Model) SetVScale(s float64) {
	if s < MinVScale {
		s = MinVScale
	}
	if s > MaxVScale {
		s = MaxVScale
	}
	m.vscale = s
}

// ScaleUp increases the vertical amplitude scale by one step.
func (m *Model) ScaleUp() { m.SetVScale(m.vscale * vscaleStep) }

// ScaleDown decreases the vertical amplitude scale by one step.
func (m *Model) ScaleDown() { m.SetVScale(m.vscale / vscaleStep) }

// FreqZoom scales the mel range by factor around anchorMel. The anchor
// keeps its on-screen position; the new range is clamped between
// MinMelSpan and the full displayable range.
func (m *Model) FreqZoom(factor, anchorMel float64) {
	fullMin, fullMax := melspec.FullMelRange(m.sampleRate)
	melRange := m.melMax - m.melMin

	anchor := anchorMel
	if anchor < m.melMin {
		anchor = m.melMin
	}
	if anchor > m.melMax {
		anchor = m.melMax
	}
	frac := 0.5
	if melRange > 0 {
		frac = (anchor - m.melMin) / melRange
	}

	newRange := melRange * factor
	if newRange > fullMax-fullMin {
		newRange = fullMax - fullMin
	}
	if newRange < MinMelSpan {
		newRange = MinMelSpan
	}
	newMin := anchor - frac*newRange
	newMax := newMin + newRange
	if newMin < fullMin {
		newMin = fullMin
		newMax = newMin + newRange
	}
	if newMax > fullMax {
		newMax = fullMax
		newMin = newMax - newRange
	}
	m.melMin = math.Max(newMin, fullMin)
	m.melMax = math.Min(newMax, fullMax)
}

// FreqZoomCenter zooms the mel range about its center.
func (m *Model) FreqZoomCenter(factor float64) {
	m.FreqZoom(factor, (m.melMin+m.melMax)/2)
}

// ScrollFreq pans the mel range by deltaMel, clamped to the full range.
func (m *Model) ScrollFreq(deltaMel float64) {
	fullMin, fullMax := melspec.FullMelRange(m.sampleRate)
	melRange := m.melMax - m.melMin
	newMin := m.melMin + deltaMel
	newMax := m.melMax + deltaMel
	if newMin < fullMin {
		newMin = fullMin
		newMax = newMin + melRange
	}
	if newMax > fullMax {
		newMax = fullMax
		newMin = newMax - melRange
	}
	m.melMin = math.Max(newMin, fullMin)
	m.melMax = math.Min(newMax, fullMax)
}

// ResetFreqView restores the full displayable mel range.
func (m *Model) ResetFreqView() {
	m.melMin, m.melMax = melspec.FullMelRange(m.sampleRate)
}

// PixelToSample maps a draw-area x position to a sample index, clamped
// to the track.
func (m *Model) PixelToSample(x, width int) int {
	if width < 1 {
		width = 1
	}
	s := m.viewStart + int(float64(x)/float64(width)*float64(m.ViewLen()))
	return clampInt(s, 0, m.totalSamples)
}

// SampleToPixel maps a sample index to a draw-area x position.
func (m *Model) SampleToPixel(sample, width int) int {
	viewLen := m.ViewLen()
	if viewLen <= 0 {
		return 0
	}
	return (sample - m.viewStart) * width / viewLen
}

// PixelToMel maps a draw-area y position to a mel value, y 0 being the
// top of the draw area.
func (m *Model) PixelToMel(y, height int) float64 {
	if height < 1 {
		height = 1
	}
	frac := 1.0 - float64(y)/float64(height)
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return m.melMin + frac*(m.melMax-m.melMin)
}

// MelToPixel maps a mel value to a draw-area y position.
func (m *Model) MelToPixel(mel float64, height int) int {
	melRange := m.melMax - m.melMin
	if melRange <= 0 {
		return 0
	}
	frac := (mel - m.melMin) / melRange
	return int(float64(height) * (1.0 - frac))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
