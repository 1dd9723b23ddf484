// Package wave computes the per-pixel statistics backing the waveform
// display: min/max peak envelopes, windowed RMS envelopes, and the peak
// and RMS-max markers.
package wave

import "math"

// ChannelPeaks is one channel's downsampled envelope: one (min, max) pair
// per horizontal pixel, with Mins[i] <= Maxs[i]. The slices are owned by
// the PeakCache and valid until its next update.
type ChannelPeaks struct {
	Mins []float64
	Maxs []float64
}

// PeakCache downsamples channel data to one (min, max) pair per pixel and
// caches the result for the exact (width, viewStart, viewEnd) that produced
// it. A horizontal scroll that preserves width and view length is serviced
// incrementally: the overlapping bins of the previous result are shifted
// and only the fringe is recomputed from raw samples.
type PeakCache struct {
	width     int
	viewStart int
	viewEnd   int
	mins      [][]float64
	maxs      [][]float64

	fullBuilds  int
	shiftBuilds int
}

// Invalidate drops the cached envelope, forcing a full rebuild on the next
// request. Called on zoom changes, resizes, and track switches.
func (c *PeakCache) Invalidate() {
	c.width = 0
	c.viewStart = 0
	c.viewEnd = 0
	c.mins = nil
	c.maxs = nil
}

// Peaks returns per-channel (min, max) arrays of length width covering
// samples [viewStart, viewEnd). Results come from the cache on an exact
// key match, from the incremental shift path on a same-length scroll, and
// from a full rebuild otherwise.
func (c *PeakCache) Peaks(channels [][]float64, viewStart, viewEnd, width int) []ChannelPeaks {
	if len(channels) == 0 || width <= 0 || viewEnd <= viewStart {
		c.Invalidate()
		return nil
	}
	if c.width == width && c.viewStart == viewStart && c.viewEnd == viewEnd &&
		len(c.mins) == len(channels) {
		return c.snapshot()
	}
	if !c.tryShift(channels, viewStart, viewEnd, width) {
		c.mins = make([][]float64, len(channels))
		c.maxs = make([][]float64, len(channels))
		for i, ch := range channels {
			c.mins[i], c.maxs[i] = peaksForView(ch, viewStart, viewEnd, width)
		}
		c.fullBuilds++
	}
	c.width = width
	c.viewStart = viewStart
	c.viewEnd = viewEnd
	return c.snapshot()
}

// tryShift reuses the overlap of the previous result when only viewStart
// changed. Returns false when the request needs a full rebuild.
func (c *PeakCache) tryShift(channels [][]float64, viewStart, viewEnd, width int) bool {
	viewLen := viewEnd - viewStart
	if len(c.mins) != len(channels) || c.width != width ||
		c.viewEnd-c.viewStart != viewLen || c.viewStart == viewStart {
		return false
	}
	shift := int(math.Round(float64(viewStart-c.viewStart) * float64(width) / float64(viewLen)))
	if shift == 0 || shift >= width || shift <= -width {
		return false
	}
	for i, ch := range channels {
		oldMins, oldMaxs := c.mins[i], c.maxs[i]
		mins := make([]float64, width)
		maxs := make([]float64, width)
		if shift > 0 {
			keep := width - shift
			copy(mins[:keep], oldMins[shift:])
			copy(maxs[:keep], oldMaxs[shift:])
			fringeStart := viewStart + keep*viewLen/width
			nm, nx := peaksForView(ch, fringeStart, viewEnd, shift)
			copy(mins[keep:], nm)
			copy(maxs[keep:], nx)
		} else {
			sb := -shift
			keep := width - sb
			copy(mins[sb:], oldMins[:keep])
			copy(maxs[sb:], oldMaxs[:keep])
			fringeEnd := viewStart + sb*viewLen/width
			nm, nx := peaksForView(ch, viewStart, fringeEnd, sb)
			copy(mins[:sb], nm)
			copy(maxs[:sb], nx)
		}
		c.mins[i] = mins
		c.maxs[i] = maxs
	}
	c.shiftBuilds++
	return true
}

func (c *PeakCache) snapshot() []ChannelPeaks {
	out := make([]ChannelPeaks, len(c.mins))
	for i := range c.mins {
		out[i] = ChannelPeaks{Mins: c.mins[i], Maxs: c.maxs[i]}
	}
	return out
}

// peaksForView computes (mins, maxs) of length width for samples
// [viewStart, viewEnd) of one channel. With more samples than pixels each
// pixel reduces a contiguous run; with fewer, each occupied pixel carries a
// single sample and empty slots stay zero.
func peaksForView(data []float64, viewStart, viewEnd, width int) ([]float64, []float64) {
	mins := make([]float64, width)
	maxs := make([]float64, width)
	if viewStart < 0 {
		viewStart = 0
	}
	if viewEnd > len(data) {
		viewEnd = len(data)
	}
	n := viewEnd - viewStart
	if n <= 0 || width <= 0 {
		return mins, maxs
	}
	view := data[viewStart:viewEnd]
	for i := 0; i < width; i++ {
		lo := i * n / width
		hi := (i + 1) * n / width
		if hi > n {
			hi = n
		}
		if n >= width && hi <= lo {
			hi = lo + 1
		}
		if hi <= lo {
			continue
		}
		mn, mx := view[lo], view[lo]
		for _, v := range view[lo+1 : hi] {
			if v < mn {
				mn = v
			}
			if v > mx {
				mx = v
			}
		}
		mins[i], maxs[i] = mn, mx
	}
	return mins, maxs
}
