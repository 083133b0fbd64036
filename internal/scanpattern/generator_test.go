package scanpattern

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustGenerate(t *testing.T, p ScanParameters) *Pattern {
	t.Helper()
	pat, err := Generate(p)
	require.NoError(t, err, "Generate(%s)", p.Name())
	return pat
}

func TestGenerate_ConcreteScenario(t *testing.T) {
	t.Parallel()

	p := ScanParameters{MirrorFrequencyHz: 250, HorizontalFOVDeg: 70, VerticalFOVDeg: 30,
		HorizontalResDeciDeg: 4, ScanlinesUp: 200, ScanlinesDown: 200}
	pat := mustGenerate(t, p)

	assert.InDelta(t, 0.8, pat.FramePeriodS(), 1e-12)
	assert.Equal(t, int64(800_000_000), pat.FramePeriodNs())
	assert.InDelta(t, 1.25, pat.FrameRateHz(), 1e-9)
	assert.Equal(t, 400, pat.NumScanlines())

	// 80° / 0.4° = 200 samples per half-period before clipping.
	assert.Len(t, halfPeriodTimes(250, 4), 200)
	assert.Len(t, pat.Trace().TimesS, 200*400)

	// Retained angles run from 34.8° to -34.8°; ±35° falls between samples.
	assert.Equal(t, 175, pat.PointsPerLine())
	assert.Equal(t, 175*400, pat.TotalPoints())

	az := pat.AzimuthsDeg()
	assert.Equal(t, 34.8, az[0])
	assert.Equal(t, -34.8, az[174])
	// The next scanline sweeps back.
	assert.Equal(t, -34.8, az[175])
	assert.Equal(t, 34.8, az[349])

	env := pat.Envelope()
	assert.InDelta(t, 0.4, env.TransitionS, 1e-12)
	assert.InDelta(t, 0.8, env.FramePeriodS, 1e-12)
}

func TestGenerate_Defaults(t *testing.T) {
	t.Parallel()

	pat := mustGenerate(t, DefaultScanParameters())
	// 36° is on the 0.4° grid, so both edges are kept.
	assert.Equal(t, 181, pat.PointsPerLine())
	assert.Equal(t, 181*400, pat.TotalPoints())
	assert.Equal(t, 36.0, pat.AzimuthsDeg()[0])
	omega := 2 * math.Pi * 250
	assert.InDelta(t, math.Acos(36.0/40)/omega*1e9, float64(pat.FireTimesNs()[0]), 1)
}

func TestGenerate_ReshapeInvariant(t *testing.T) {
	t.Parallel()

	for _, hfov := range []int{1, 2, 35, 36, 71, 72} {
		for res := MinHorizontalResDeciDeg; res <= MaxHorizontalResDeciDeg; res++ {
			for _, lines := range [][2]int{{1, 1}, {7, 3}, {200, 1}} {
				p := ScanParameters{MirrorFrequencyHz: 250, HorizontalFOVDeg: hfov, VerticalFOVDeg: 30,
					HorizontalResDeciDeg: res, ScanlinesUp: lines[0], ScanlinesDown: lines[1]}
				require.NoError(t, p.Validate())

				pat := mustGenerate(t, p)
				assert.Equal(t, 0, pat.TotalPoints()%pat.NumScanlines(), p.Name())
				assert.Equal(t, pat.PointsPerLine()*pat.NumScanlines(), pat.TotalPoints(), p.Name())
				assert.GreaterOrEqual(t, pat.PointsPerLine(), 1, p.Name())
				assert.Len(t, pat.AzimuthsDeg(), pat.TotalPoints())
				assert.Len(t, pat.ElevationsDeg(), pat.TotalPoints())
			}
		}
	}
}

func TestGenerate_FireTimes(t *testing.T) {
	t.Parallel()

	for _, p := range []ScanParameters{
		DefaultScanParameters(),
		{MirrorFrequencyHz: 250, HorizontalFOVDeg: 13, VerticalFOVDeg: 10, HorizontalResDeciDeg: 7, ScanlinesUp: 3, ScanlinesDown: 50},
	} {
		pat := mustGenerate(t, p)
		times := pat.FireTimesNs()
		limit := pat.FramePeriodNs()

		require.NotEmpty(t, times)
		assert.GreaterOrEqual(t, times[0], int64(0))
		for i, ns := range times {
			require.LessOrEqual(t, ns, limit, "%s pulse %d", p.Name(), i)
			if i > 0 {
				require.GreaterOrEqual(t, ns, times[i-1], "%s pulse %d", p.Name(), i)
			}
		}
	}
}

func TestGenerate_ClippingContract(t *testing.T) {
	t.Parallel()

	for _, hfov := range []int{1, 10, 45, 72} {
		p := DefaultScanParameters()
		p.HorizontalFOVDeg = hfov
		pat := mustGenerate(t, p)

		half := float64(hfov) / 2
		for i, az := range pat.AzimuthsDeg() {
			require.LessOrEqual(t, math.Abs(az), half, "%s pulse %d", p.Name(), i)
		}

		// Every unclipped sample outside the FOV was dropped.
		outside := 0
		for _, h := range pat.Trace().HorizontalDeg {
			if math.Abs(h) > half {
				outside++
			}
		}
		assert.Equal(t, len(pat.Trace().HorizontalDeg)-outside, pat.TotalPoints())
	}
}

func TestGenerate_FullMechanicalRangeKeepsEverything(t *testing.T) {
	t.Parallel()

	p := DefaultScanParameters()
	p.HorizontalFOVDeg = 80
	pat := mustGenerate(t, p)
	assert.Equal(t, 200, pat.PointsPerLine())
	assert.Equal(t, len(pat.Trace().TimesS), pat.TotalPoints())
}

func TestGenerate_ShortLastStep(t *testing.T) {
	t.Parallel()

	// 0.7° does not divide 80°: 115 samples, the last at -39.8°.
	times := halfPeriodTimes(250, 7)
	require.Len(t, times, 115)

	omega := 2 * math.Pi * 250
	assert.InDelta(t, 40.0, MirrorAmplitudeDeg*math.Cos(omega*times[0]), 1e-9)
	assert.InDelta(t, -39.8, MirrorAmplitudeDeg*math.Cos(omega*times[114]), 1e-9)
	assert.Less(t, times[114], 1.0/(2*250))
}

func TestGenerate_ElevationEnvelope(t *testing.T) {
	t.Parallel()

	p := DefaultScanParameters()
	p.ScanlinesUp, p.ScanlinesDown = 120, 40
	pat := mustGenerate(t, p)
	env := pat.Envelope()
	trace := pat.Trace()
	amp := 0.5 * float64(p.VerticalFOVDeg)

	assert.InDelta(t, 0.0, env.At(0), 1e-12)
	assert.InDelta(t, 0.0, env.At(pat.FramePeriodS()), 1e-12)
	assert.InDelta(t, 1.0, env.At(env.TransitionS), 1e-12)
	assert.InDelta(t, 0.75*pat.FramePeriodS(), env.TransitionS, 1e-12)
	assert.Equal(t, 0.0, trace.VerticalDeg[0])

	peakIdx := 0
	for i, v := range trace.VerticalDeg {
		require.LessOrEqual(t, math.Abs(v), amp*env.At(trace.TimesS[i])+0.005, "sample %d", i)
		if math.Abs(v) > math.Abs(trace.VerticalDeg[peakIdx]) {
			peakIdx = i
		}
	}
	// The largest excursion sits within one mirror period of the transition.
	assert.InDelta(t, env.TransitionS, trace.TimesS[peakIdx], 1.0/float64(p.MirrorFrequencyHz))
	assert.InDelta(t, amp, math.Abs(trace.VerticalDeg[peakIdx]), 0.1)
}

func TestGenerate_Idempotent(t *testing.T) {
	t.Parallel()

	p := ScanParameters{MirrorFrequencyHz: 250, HorizontalFOVDeg: 50, VerticalFOVDeg: 20,
		HorizontalResDeciDeg: 6, ScanlinesUp: 30, ScanlinesDown: 70}
	a := mustGenerate(t, p)
	b := mustGenerate(t, p)

	assert.Equal(t, a.FireTimesNs(), b.FireTimesNs())
	assert.Equal(t, a.AzimuthsDeg(), b.AzimuthsDeg())
	assert.Equal(t, a.ElevationsDeg(), b.ElevationsDeg())
	assert.Equal(t, a.Trace(), b.Trace())
	assert.Equal(t, a.Summary(), b.Summary())
}

func TestGenerate_SmallestFrame(t *testing.T) {
	t.Parallel()

	p := ScanParameters{MirrorFrequencyHz: 250, HorizontalFOVDeg: 1, VerticalFOVDeg: 1,
		HorizontalResDeciDeg: 10, ScanlinesUp: 1, ScanlinesDown: 1}
	require.NoError(t, p.Validate())
	pat := mustGenerate(t, p)

	// Only the 0° crossing lies within ±0.5°.
	assert.Equal(t, 1, pat.PointsPerLine())
	assert.Equal(t, 2, pat.TotalPoints())
	assert.Equal(t, []float64{0, 0}, pat.AzimuthsDeg())
	assert.InDelta(t, 0.004, pat.FramePeriodS(), 1e-15)
	// Quarter period on each half-sweep.
	assert.Equal(t, []int64{1_000_000, 3_000_000}, pat.FireTimesNs())
}

func TestGenerate_Degenerate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(p *ScanParameters)
	}{
		{"zero frequency", func(p *ScanParameters) { p.MirrorFrequencyHz = 0 }},
		{"zero resolution", func(p *ScanParameters) { p.HorizontalResDeciDeg = 0 }},
		{"no scanlines", func(p *ScanParameters) { p.ScanlinesUp, p.ScanlinesDown = 0, 0 }},
		{"negative scanlines", func(p *ScanParameters) { p.ScanlinesDown = -1 }},
		{"no ramp-up", func(p *ScanParameters) { p.ScanlinesUp = 0 }},
		{"no ramp-down", func(p *ScanParameters) { p.ScanlinesDown = 0 }},
		{"nothing inside FOV", func(p *ScanParameters) { p.HorizontalFOVDeg = 0; p.HorizontalResDeciDeg = 7 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := DefaultScanParameters()
			p.ScanlinesUp, p.ScanlinesDown = 4, 4
			tt.mutate(&p)

			pat, err := Generate(p)
			require.Error(t, err)
			assert.Nil(t, pat)
			assert.True(t, errors.Is(err, ErrComputation), "got %v", err)
		})
	}
}

func TestPattern_AccessorsReturnCopies(t *testing.T) {
	t.Parallel()

	p := DefaultScanParameters()
	p.ScanlinesUp, p.ScanlinesDown = 2, 2
	pat := mustGenerate(t, p)

	times := pat.FireTimesNs()
	times[0] = -1
	az := pat.AzimuthsDeg()
	az[0] = 999
	trace := pat.Trace()
	trace.HorizontalDeg[0] = 999

	assert.Equal(t, secondsToNanos(halfPeriodTimes(250, 4)[10]), pat.FireTimesNs()[0])
	assert.Equal(t, 36.0, pat.AzimuthsDeg()[0])
	assert.Equal(t, 40.0, pat.Trace().HorizontalDeg[0])
	assert.Equal(t, p, pat.Params())
}

func TestRounding(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.13, roundCentiDeg(0.125))
	assert.Equal(t, -0.13, roundCentiDeg(-0.125))
	assert.Equal(t, 12.35, roundCentiDeg(12.3456))
	assert.False(t, math.Signbit(roundCentiDeg(-0.001)))

	assert.Equal(t, int64(2), secondsToNanos(1.6e-9))
	assert.Equal(t, int64(1), secondsToNanos(1.4e-9))
	assert.Equal(t, int64(800_000_000), secondsToNanos(0.8))
}
