// Package colormap provides 256-entry color lookup tables for rendering
// spectrograms, interpolated from fixed control points.
package colormap

import (
	"fmt"
	"image/color"
	"sort"
)

// Table maps a normalized intensity, quantized to 0..255, to a display
// color. Entry 0 is the darkest (lowest dB), entry 255 the brightest.
type Table [256]color.NRGBA

type controlPoint struct {
	pos     float64
	r, g, b uint8
}

var tables = map[string]*Table{}

// DefaultName is the colormap used when no setting overrides it.
const DefaultName = "magma"

func init() {
	register("magma", []controlPoint{
		{0.0, 0, 0, 4},
		{0.25, 81, 18, 124},
		{0.5, 183, 55, 121},
		{0.75, 254, 159, 109},
		{1.0, 252, 253, 191},
	})
	register("viridis", []controlPoint{
		{0.0, 68, 1, 84},
		{0.25, 59, 82, 139},
		{0.5, 33, 145, 140},
		{0.75, 94, 201, 98},
		{1.0, 253, 231, 37},
	})
	register("grayscale", []controlPoint{
		{0.0, 0, 0, 0},
		{1.0, 255, 255, 255},
	})
}

// register builds a table by linear interpolation between control points.
func register(name string, points []controlPoint) {
	var t Table
	for i := range t {
		pos := float64(i) / 255.0
		seg := len(points) - 2
		for j := 0; j < len(points)-1; j++ {
			if pos <= points[j+1].pos {
				seg = j
				break
			}
		}
		a, b := points[seg], points[seg+1]
		f := 0.0
		if b.pos > a.pos {
			f = (pos - a.pos) / (b.pos - a.pos)
		}
		t[i] = color.NRGBA{
			R: lerp8(a.r, b.r, f),
			G: lerp8(a.g, b.g, f),
			B: lerp8(a.b, b.b, f),
			A: 255,
		}
	}
	tables[name] = &t
}

func lerp8(a, b uint8, f float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*f + 0.5)
}

// Lookup returns the table registered under name.
func Lookup(name string) (*Table, error) {
	t, ok := tables[name]
	if !ok {
		return nil, fmt.Errorf("colormap: unknown colormap %q", name)
	}
	return t, nil
}

// Default returns the magma table.
func Default() *Table {
	return tables[DefaultName]
}

// Names returns the registered colormap names in sorted order.
func Names() []string {
	out := make([]string, 0, len(tables))
	for name := range tables {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
