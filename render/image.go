// Package render rasterizes the visible portion of a mel spectrogram into
// a colormapped image sized to the draw area.
package render

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/bzeiss/sessionprep-sub001/colormap"
	"github.com/bzeiss/sessionprep-sub001/melspec"
)

// Params selects the spectrogram region and display mapping for one
// raster. It doubles as the cache key.
type Params struct {
	ViewStart    int
	ViewEnd      int
	TotalSamples int
	MelMin       float64
	MelMax       float64
	Width        int
	Height       int
	Colormap     string
	DBFloor      float64
	DBCeil       float64
}

// ImageCache rebuilds the spectrogram raster only when the parameters or
// the underlying spectrogram change. Not safe for concurrent use; the
// interactive loop is its sole owner.
type ImageCache struct {
	spec   *melspec.Spectrogram
	params Params
	img    *image.NRGBA
	valid  bool
}

// Invalidate drops the cached raster.
func (c *ImageCache) Invalidate() {
	c.valid = false
	c.img = nil
}

// Image returns the raster for spec under p, reusing the cached image
// when both are unchanged since the previous call. Returns nil when spec
// is nil or the draw area is degenerate.
func (c *ImageCache) Image(spec *melspec.Spectrogram, p Params) *image.NRGBA {
	if spec == nil || p.Width <= 0 || p.Height <= 0 || p.TotalSamples <= 0 {
		return nil
	}
	if c.valid && c.spec == spec && c.params == p {
		return c.img
	}
	img := rasterize(spec, p)
	c.spec = spec
	c.params = p
	c.img = img
	c.valid = img != nil
	return img
}

func rasterize(spec *melspec.Spectrogram, p Params) *image.NRGBA {
	nMels := len(spec.Data)
	nFrames := spec.Frames()
	if nMels == 0 || nFrames == 0 {
		return nil
	}

	frameStart := p.ViewStart * nFrames / p.TotalSamples
	if frameStart < 0 {
		frameStart = 0
	}
	frameEnd := p.ViewEnd * nFrames / p.TotalSamples
	if frameEnd > nFrames {
		frameEnd = nFrames
	}
	if frameEnd <= frameStart {
		frameEnd = frameStart + 1
		if frameEnd > nFrames {
			frameEnd = nFrames
		}
	}
	if frameEnd <= frameStart {
		return nil
	}

	fullMin, fullMax := melspec.FullMelRange(spec.SampleRate)
	fullRange := fullMax - fullMin
	if fullRange <= 0 {
		return nil
	}
	rowLo := int((p.MelMin - fullMin) / fullRange * float64(nMels-1))
	rowHi := int(math.Ceil((p.MelMax - fullMin) / fullRange * float64(nMels-1)))
	if rowLo < 0 {
		rowLo = 0
	}
	if rowLo > nMels-1 {
		rowLo = nMels - 1
	}
	rowHi++
	if rowHi > nMels {
		rowHi = nMels
	}
	if rowHi < rowLo+1 {
		rowHi = rowLo + 1
	}

	lut, err := colormap.Lookup(p.Colormap)
	if err != nil {
		lut = colormap.Default()
	}
	span := p.DBCeil - p.DBFloor
	if span < 1 {
		span = 1
	}

	natW := frameEnd - frameStart
	natH := rowHi - rowLo
	native := image.NewNRGBA(image.Rect(0, 0, natW, natH))
	for y := 0; y < natH; y++ {
		// Flip vertically so the lowest band lands at the bottom.
		row := spec.Data[rowHi-1-y]
		base := y * native.Stride
		for x := 0; x < natW; x++ {
			norm := (row[frameStart+x] - p.DBFloor) / span
			if norm < 0 {
				norm = 0
			}
			if norm > 1 {
				norm = 1
			}
			cl := lut[int(norm*255)]
			o := base + x*4
			native.Pix[o] = cl.R
			native.Pix[o+1] = cl.G
			native.Pix[o+2] = cl.B
			native.Pix[o+3] = cl.A
		}
	}

	if natW == p.Width && natH == p.Height {
		return native
	}
	out := image.NewNRGBA(image.Rect(0, 0, p.Width, p.Height))
	xdraw.BiLinear.Scale(out, out.Bounds(), native, native.Bounds(), xdraw.Src, nil)
	return out
}
