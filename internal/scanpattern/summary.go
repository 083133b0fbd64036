package scanpattern

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the pulse spacing of a pattern. Intervals and steps are
// measured between neighbouring pulses on the same scanline only.
type Summary struct {
	PulseIntervalMeanNs float64
	PulseIntervalStdNs  float64
	PulseIntervalMinNs  float64
	PulseIntervalMaxNs  float64
	AzimuthStepMeanDeg  float64
	ElevationMinDeg     float64
	ElevationMaxDeg     float64
}

// Summary computes pulse spacing statistics for diagnostics.
func (p *Pattern) Summary() Summary {
	var s Summary
	ppl := p.pointsPerLine
	intervals := make([]float64, 0, p.numScanlines*max(ppl-1, 0))
	steps := make([]float64, 0, cap(intervals))
	for line := 0; line < p.numScanlines; line++ {
		base := line * ppl
		for j := base + 1; j < base+ppl; j++ {
			intervals = append(intervals, float64(p.fireTimesNs[j]-p.fireTimesNs[j-1]))
			steps = append(steps, math.Abs(p.azimuthsDeg[j]-p.azimuthsDeg[j-1]))
		}
	}

	if len(intervals) > 0 {
		s.PulseIntervalMeanNs = stat.Mean(intervals, nil)
		s.PulseIntervalMinNs = floats.Min(intervals)
		s.PulseIntervalMaxNs = floats.Max(intervals)
		s.AzimuthStepMeanDeg = stat.Mean(steps, nil)
	}
	if len(intervals) > 1 {
		s.PulseIntervalStdNs = stat.StdDev(intervals, nil)
	}
	if len(p.elevationsDeg) > 0 {
		s.ElevationMinDeg = floats.Min(p.elevationsDeg)
		s.ElevationMaxDeg = floats.Max(p.elevationsDeg)
	}
	return s
}
