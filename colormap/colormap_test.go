package colormap

import (
	"image/color"
	"testing"
)

func TestNamesSorted(t *testing.T) {
	names := Names()
	want := []string{"grayscale", "magma", "viridis"}
	if len(names) != len(want) {
		t.Fatalf("expected %d colormaps, got %v", len(want), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, err := Lookup("plasma"); err == nil {
		t.Fatalf("expected error for unregistered colormap")
	}
}

func TestControlPointEndpoints(t *testing.T) {
	cases := []struct {
		name   string
		lo, hi color.NRGBA
	}{
		{"magma", color.NRGBA{0, 0, 4, 255}, color.NRGBA{252, 253, 191, 255}},
		{"viridis", color.NRGBA{68, 1, 84, 255}, color.NRGBA{253, 231, 37, 255}},
		{"grayscale", color.NRGBA{0, 0, 0, 255}, color.NRGBA{255, 255, 255, 255}},
	}
	for _, tc := range cases {
		tbl, err := Lookup(tc.name)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if tbl[0] != tc.lo {
			t.Fatalf("%s: entry 0 = %v, want %v", tc.name, tbl[0], tc.lo)
		}
		if tbl[255] != tc.hi {
			t.Fatalf("%s: entry 255 = %v, want %v", tc.name, tbl[255], tc.hi)
		}
	}
}

func TestGrayscaleIsLinear(t *testing.T) {
	tbl, _ := Lookup("grayscale")
	for i, c := range tbl {
		if c.R != c.G || c.G != c.B {
			t.Fatalf("entry %d not gray: %v", i, c)
		}
		if int(c.R) != i {
			t.Fatalf("entry %d: expected level %d, got %d", i, i, c.R)
		}
	}
}

func TestTablesFullyOpaque(t *testing.T) {
	for _, name := range Names() {
		tbl, _ := Lookup(name)
		for i, c := range tbl {
			if c.A != 255 {
				t.Fatalf("%s entry %d not opaque", name, i)
			}
		}
	}
}

func TestDefaultIsMagma(t *testing.T) {
	magma, _ := Lookup("magma")
	if Default() != magma {
		t.Fatalf("default colormap must be magma")
	}
}
