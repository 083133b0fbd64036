package scanpattern

import (
	"math"
	"slices"
)

// MirrorTrace is the unclipped mirror motion over the whole frame. It is
// kept for plotting only and never reaches the emitted record.
type MirrorTrace struct {
	TimesS        []float64
	HorizontalDeg []float64
	VerticalDeg   []float64
}

// Pattern is the per-pulse timing and pointing of one frame. It is built
// once by Generate and exposes copies of its sequences, so a Pattern is
// never modified after construction.
type Pattern struct {
	params        ScanParameters
	envelope      RampEnvelope
	framePeriodS  float64
	pointsPerLine int
	numScanlines  int

	fireTimesNs   []int64
	azimuthsDeg   []float64
	elevationsDeg []float64

	trace MirrorTrace
}

// Generate computes the scan pattern for p. It does not call Validate; the
// caller decides which bounds apply. Degenerate inputs that would divide by
// zero or produce an empty or ragged frame return ErrComputation.
func Generate(p ScanParameters) (*Pattern, error) {
	pat, err := generate(p)
	if err != nil {
		opsf("generation failed for %s: %v", p.Name(), err)
		return nil, err
	}
	diagf("%s: frame %.4f s (%.3f Hz), %d scanlines x %d pulses = %d",
		p.Name(), pat.framePeriodS, pat.FrameRateHz(), pat.numScanlines, pat.pointsPerLine, pat.TotalPoints())
	return pat, nil
}

func generate(p ScanParameters) (*Pattern, error) {
	if p.MirrorFrequencyHz <= 0 {
		return nil, computationErrorf("mirror frequency must be positive, got %d Hz", p.MirrorFrequencyHz)
	}
	if p.HorizontalResDeciDeg <= 0 {
		return nil, computationErrorf("horizontal resolution must be positive, got %d", p.HorizontalResDeciDeg)
	}
	if p.ScanlinesUp < 0 || p.ScanlinesDown < 0 || p.TotalScanlines() == 0 {
		return nil, computationErrorf("invalid scanline counts up=%d down=%d", p.ScanlinesUp, p.ScanlinesDown)
	}

	totalLines := p.TotalScanlines()
	rampTransition := float64(p.ScanlinesUp) / float64(totalLines)
	periodPerLineS := 1 / float64(p.MirrorFrequencyHz)
	// One scanline per mirror half-sweep.
	halfPeriodS := periodPerLineS / 2
	framePeriodS := float64(totalLines) * periodPerLineS / 2

	env, err := NewRampEnvelope(rampTransition*framePeriodS, framePeriodS)
	if err != nil {
		return nil, err
	}

	template := halfPeriodTimes(p.MirrorFrequencyHz, p.HorizontalResDeciDeg)
	omega := 2 * math.Pi * float64(p.MirrorFrequencyHz)
	halfFOV := float64(p.HorizontalFOVDeg) / 2
	verticalAmp := 0.5 * float64(p.VerticalFOVDeg)

	n := len(template) * totalLines
	trace := MirrorTrace{
		TimesS:        make([]float64, 0, n),
		HorizontalDeg: make([]float64, 0, n),
		VerticalDeg:   make([]float64, 0, n),
	}
	pat := &Pattern{
		params:       p,
		envelope:     env,
		framePeriodS: framePeriodS,
		numScanlines: totalLines,
	}

	for line := 0; line < totalLines; line++ {
		offsetS := float64(line) * halfPeriodS
		kept := 0
		for _, ts := range template {
			t := ts + offsetS
			h := roundCentiDeg(MirrorAmplitudeDeg * math.Cos(omega*t))
			v := roundCentiDeg(verticalAmp * math.Sin(omega*t) * env.At(t))
			if math.IsNaN(h) || math.IsNaN(v) || math.IsInf(h, 0) || math.IsInf(v, 0) {
				return nil, computationErrorf("non-finite sample at t=%g s on scanline %d", t, line)
			}

			trace.TimesS = append(trace.TimesS, t)
			trace.HorizontalDeg = append(trace.HorizontalDeg, h)
			trace.VerticalDeg = append(trace.VerticalDeg, v)

			if math.Abs(h) > halfFOV {
				continue
			}
			pat.fireTimesNs = append(pat.fireTimesNs, secondsToNanos(t))
			pat.azimuthsDeg = append(pat.azimuthsDeg, h)
			pat.elevationsDeg = append(pat.elevationsDeg, v)
			kept++
		}

		if line == 0 {
			pat.pointsPerLine = kept
		} else if kept != pat.pointsPerLine {
			return nil, computationErrorf("scanline %d retained %d pulses, scanline 0 retained %d", line, kept, pat.pointsPerLine)
		}
		tracef("scanline %d: offset %.6f s, %d of %d samples inside ±%.1f°", line, offsetS, kept, len(template), halfFOV)
	}

	if pat.pointsPerLine == 0 {
		return nil, computationErrorf("no pulses inside ±%.1f° at %.1f° resolution", halfFOV, p.HorizontalResDeg())
	}
	pat.trace = trace
	return pat, nil
}

// halfPeriodTimes returns, for one mirror half-period, the instants at which
// the horizontal mirror crosses a descending grid of angles from
// +MirrorAmplitudeDeg towards -MirrorAmplitudeDeg (exclusive). The grid is
// built in millidegrees so the sample count does not drift with float error;
// when the step does not divide the sweep the last step is short.
func halfPeriodTimes(freqHz, resDeciDeg int) []float64 {
	ampMdeg := int(MirrorAmplitudeDeg * 1000)
	stepMdeg := resDeciDeg * 100
	n := (2*ampMdeg + stepMdeg - 1) / stepMdeg

	omega := 2 * math.Pi * float64(freqHz)
	times := make([]float64, n)
	for k := range times {
		theta := float64(ampMdeg-k*stepMdeg) / 1000
		times[k] = math.Acos(2*theta/(2*MirrorAmplitudeDeg)) / omega
	}
	return times
}

// roundCentiDeg rounds half away from zero to 0.01° and folds -0 into 0.
func roundCentiDeg(x float64) float64 {
	r := math.Round(x*100) / 100
	if r == 0 {
		return 0
	}
	return r
}

// secondsToNanos rounds half away from zero to the nearest nanosecond.
func secondsToNanos(s float64) int64 {
	return int64(math.Round(s * 1e9))
}

// Params returns the parameters the pattern was generated from.
func (p *Pattern) Params() ScanParameters { return p.params }

// Envelope returns the vertical ramp envelope of the frame.
func (p *Pattern) Envelope() RampEnvelope { return p.envelope }

// FramePeriodS is the duration of one frame in seconds.
func (p *Pattern) FramePeriodS() float64 { return p.framePeriodS }

// FramePeriodNs is FramePeriodS rounded to nanoseconds.
func (p *Pattern) FramePeriodNs() int64 { return secondsToNanos(p.framePeriodS) }

// FrameRateHz is the number of frames per second.
func (p *Pattern) FrameRateHz() float64 { return 1 / p.framePeriodS }

// PointsPerLine is the number of retained pulses on each scanline.
func (p *Pattern) PointsPerLine() int { return p.pointsPerLine }

// NumScanlines is the number of scanlines in the frame.
func (p *Pattern) NumScanlines() int { return p.numScanlines }

// TotalPoints is the number of retained pulses in the frame.
func (p *Pattern) TotalPoints() int { return len(p.fireTimesNs) }

// FireTimesNs returns the fire time of each pulse, relative to frame start.
func (p *Pattern) FireTimesNs() []int64 { return slices.Clone(p.fireTimesNs) }

// AzimuthsDeg returns the azimuth of each pulse.
func (p *Pattern) AzimuthsDeg() []float64 { return slices.Clone(p.azimuthsDeg) }

// ElevationsDeg returns the elevation of each pulse.
func (p *Pattern) ElevationsDeg() []float64 { return slices.Clone(p.elevationsDeg) }

// Trace returns a copy of the unclipped mirror motion.
func (p *Pattern) Trace() MirrorTrace {
	return MirrorTrace{
		TimesS:        slices.Clone(p.trace.TimesS),
		HorizontalDeg: slices.Clone(p.trace.HorizontalDeg),
		VerticalDeg:   slices.Clone(p.trace.VerticalDeg),
	}
}
