package wave

import (
	"math"
	"testing"
)

func constChannel(n int, amp float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp
	}
	return out
}

func TestCombinedEnvelopeAveragesInPowerDomain(t *testing.T) {
	const n = 10_000
	const win = 100
	a, b := 0.5, 0.1
	var e RmsEngine
	e.SetBuffer([][]float64{constChannel(n, a), constChannel(n, b)})
	e.SetWindow(win)

	perCh, combined := e.Envelope(0, n, 64)
	if len(perCh) != 2 || len(combined) != 64 {
		t.Fatalf("unexpected envelope shape: %d channels, %d combined pixels", len(perCh), len(combined))
	}
	want := math.Sqrt((a*a + b*b) / 2)
	for i, v := range combined {
		if math.Abs(v-want) > 1e-9 {
			t.Fatalf("combined pixel %d: got %g want %g (power-domain mean)", i, v, want)
		}
	}
	for i, v := range perCh[0] {
		if math.Abs(v-a) > 1e-9 {
			t.Fatalf("channel 0 pixel %d: got %g want %g", i, v, a)
		}
	}
}

func TestRmsMaxMarkerFindsBurst(t *testing.T) {
	const rate = 48000
	const win = 4800 // 100 ms
	const total = 2 * rate
	const burstStart = 30000
	const burstLen = 2400 // 50 ms

	ch := make([]float64, total)
	for i := burstStart; i < burstStart+burstLen; i++ {
		ch[i] = 0.8
	}
	var e RmsEngine
	e.SetBuffer([][]float64{ch})
	e.SetWindow(win)

	m, ok := e.RmsMaxMarker()
	if !ok {
		t.Fatalf("expected marker")
	}
	lo := burstStart - win/2
	hi := burstStart + burstLen + win/2
	if m.Sample < lo || m.Sample > hi {
		t.Fatalf("marker sample %d outside burst range [%d, %d]", m.Sample, lo, hi)
	}
	if math.IsInf(m.DB, -1) || m.Amplitude <= 0 {
		t.Fatalf("burst marker should have finite level: db=%g amp=%g", m.DB, m.Amplitude)
	}
}

func TestRmsMaxMarkerRespondsToWindowChangeOnly(t *testing.T) {
	const rate = 48000
	ch := make([]float64, rate)
	for i := 20000; i < 21000; i++ {
		ch[i] = 0.9
	}
	var e RmsEngine
	e.SetBuffer([][]float64{ch})
	e.SetWindow(2400)

	first, _ := e.RmsMaxMarker()

	// Envelope requests for arbitrary views are whole-file invariant.
	e.Envelope(0, rate, 400)
	e.Envelope(1000, 5000, 97)
	again, _ := e.RmsMaxMarker()
	if again != first {
		t.Fatalf("marker changed under view-only activity: %+v vs %+v", again, first)
	}

	e.SetWindow(9600)
	changed, _ := e.RmsMaxMarker()
	if changed.DB == first.DB {
		t.Fatalf("marker level should change with window length: %g", changed.DB)
	}
}

func TestPeakMarkerSilenceIsMinusInfinity(t *testing.T) {
	var e RmsEngine
	e.SetBuffer([][]float64{make([]float64, 1000), make([]float64, 1000)})
	m, ok := e.PeakMarker()
	if !ok {
		t.Fatalf("expected marker for loaded silence")
	}
	if !math.IsInf(m.DB, -1) {
		t.Fatalf("silence peak must be -Inf dB, got %g", m.DB)
	}
	if m.Amplitude != 0 {
		t.Fatalf("silence peak amplitude must be 0, got %g", m.Amplitude)
	}
}

func TestPeakMarkerLocatesSampleAndChannel(t *testing.T) {
	ch0 := make([]float64, 100)
	ch1 := make([]float64, 100)
	ch0[40] = 0.5
	ch1[73] = -0.9
	var e RmsEngine
	e.SetBuffer([][]float64{ch0, ch1})

	m, ok := e.PeakMarker()
	if !ok {
		t.Fatalf("expected marker")
	}
	if m.Channel != 1 || m.Sample != 73 {
		t.Fatalf("wrong location: channel=%d sample=%d", m.Channel, m.Sample)
	}
	if m.Amplitude != -0.9 {
		t.Fatalf("amplitude must keep sign: %g", m.Amplitude)
	}
	want := 20 * math.Log10(0.9)
	if math.Abs(m.DB-want) > 1e-12 {
		t.Fatalf("db mismatch: got %g want %g", m.DB, want)
	}
}

func TestEnvelopeDegenerateShortChannel(t *testing.T) {
	var e RmsEngine
	e.SetBuffer([][]float64{constChannel(50, 0.5)})
	e.SetWindow(100)

	perCh, combined := e.Envelope(0, 50, 20)
	if len(perCh[0]) != 20 || len(combined) != 20 {
		t.Fatalf("degenerate envelope must still span the viewport")
	}
	for i := range combined {
		if perCh[0][i] != 0 || combined[i] != 0 {
			t.Fatalf("short channel must read as zero, pixel %d", i)
		}
	}
}

func TestEnvelopeMaxHoldPreservesTransient(t *testing.T) {
	const n = 200_000
	const win = 480
	ch := make([]float64, n)
	for i := 100_000; i < 100_000+win; i++ {
		ch[i] = 1.0
	}
	var e RmsEngine
	e.SetBuffer([][]float64{ch})
	e.SetWindow(win)

	// Zoomed all the way out: each pixel covers 20k samples. Averaging
	// would bury the burst; max-hold must keep it at full level.
	_, combined := e.Envelope(0, n, 10)
	best := 0.0
	for _, v := range combined {
		if v > best {
			best = v
		}
	}
	if math.Abs(best-1.0) > 1e-9 {
		t.Fatalf("transient lost in downsampling: max pixel %g", best)
	}
}

func TestSetPrecomputedKeepsMarkersClean(t *testing.T) {
	channels := [][]float64{constChannel(1000, 0.25)}
	peak := PeakMarker{Sample: 42, Channel: 0, Amplitude: 0.25, DB: 20 * math.Log10(0.25)}
	rmsMax := RmsMaxMarker{Sample: 99, DB: -12.04, Amplitude: 0.25}

	var e RmsEngine
	e.SetPrecomputed(channels, BuildCumulativeSums(channels), 100, peak, rmsMax)

	gotPeak, _ := e.PeakMarker()
	gotRms, _ := e.RmsMaxMarker()
	if gotPeak != peak {
		t.Fatalf("precomputed peak marker was recomputed: %+v", gotPeak)
	}
	if gotRms != rmsMax {
		t.Fatalf("precomputed rms marker was recomputed: %+v", gotRms)
	}
}

func TestEnvelopeCacheHitReturnsSameSlices(t *testing.T) {
	var e RmsEngine
	e.SetBuffer([][]float64{constChannel(5000, 0.3)})
	e.SetWindow(200)

	a, _ := e.Envelope(0, 5000, 33)
	b, _ := e.Envelope(0, 5000, 33)
	if &a[0][0] != &b[0][0] {
		t.Fatalf("expected cached envelope on exact key match")
	}
}
