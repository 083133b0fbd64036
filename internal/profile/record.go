// Package profile turns a generated scan pattern into the sensor description
// record consumed by the simulator's ray-based LiDAR model.
package profile

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/scanpattern/internal/scanpattern"
)

// Record is the top level of the sensor description document.
type Record struct {
	Name         string  `json:"name"`
	Class        string  `json:"class"`
	Type         string  `json:"type"`
	DriveWorksID string  `json:"driveWorksId"`
	Profile      Profile `json:"profile"`
}

// Profile holds the sensor properties and the per-pulse emitter state.
type Profile struct {
	ScanType            string  `json:"scanType"`
	IntensityProcessing string  `json:"intensityProcessing"`
	RayType             string  `json:"rayType"`
	NearRangeM          float64 `json:"nearRangeM"`
	FarRangeM           float64 `json:"farRangeM"`

	EffectiveApertureSize float64 `json:"effectiveApertureSize"`
	FocusDistM            float64 `json:"focusDistM"`

	StartAzimuthDeg  float64 `json:"startAzimuthDeg"`
	EndAzimuthDeg    float64 `json:"endAzimuthDeg"`
	UpElevationDeg   float64 `json:"upElevationDeg"`
	DownElevationDeg float64 `json:"downElevationDeg"`

	RangeResolutionM    float64 `json:"rangeResolutionM"`
	RangeAccuracyM      float64 `json:"rangeAccuracyM"`
	AvgPowerW           float64 `json:"avgPowerW"`
	MinReflectance      float64 `json:"minReflectance"`
	MinReflectanceRange float64 `json:"minReflectanceRange"`
	WavelengthNm        float64 `json:"wavelengthNm"`
	PulseTimeNs         int     `json:"pulseTimeNs"`
	MaxReturns          int     `json:"maxReturns"`

	ScanRateBaseHz   float64 `json:"scanRateBaseHz"`
	ReportRateBaseHz float64 `json:"reportRateBaseHz"`
	NumberOfEmitters int     `json:"numberOfEmitters"`
	NumberOfChannels int     `json:"numberOfChannels"`

	AzimuthErrorMean   float64 `json:"azimuthErrorMean"`
	AzimuthErrorStd    float64 `json:"azimuthErrorStd"`
	ElevationErrorMean float64 `json:"elevationErrorMean"`
	ElevationErrorStd  float64 `json:"elevationErrorStd"`

	NumLines          int            `json:"numLines"`
	NumRaysPerLine    []int          `json:"numRaysPerLine"`
	EmitterStateCount int            `json:"emitterStateCount"`
	EmitterStates     []EmitterState `json:"emitterStates"`

	IntensityMappingType string `json:"intensityMappingType"`
}

// EmitterState holds row-major numLines x raysPerLine matrices.
type EmitterState struct {
	AzimuthDeg   [][]float64 `json:"azimuthDeg"`
	ElevationDeg [][]float64 `json:"elevationDeg"`
	FireTimeNs   [][]int64   `json:"fireTimeNs"`
}

// Build assembles the record for pat. A shape error here means the
// generator broke its one-row-per-scanline guarantee and is reported as
// scanpattern.ErrSerialization.
func Build(pat *scanpattern.Pattern, c SensorConstants) (*Record, error) {
	p := pat.Params()
	lines, perLine := pat.NumScanlines(), pat.PointsPerLine()

	az, err := reshape(pat.AzimuthsDeg(), lines, perLine)
	if err != nil {
		return nil, fmt.Errorf("azimuth: %w", err)
	}
	el, err := reshape(pat.ElevationsDeg(), lines, perLine)
	if err != nil {
		return nil, fmt.Errorf("elevation: %w", err)
	}
	fire, err := reshapeNanos(pat.FireTimesNs(), lines, perLine)
	if err != nil {
		return nil, fmt.Errorf("fire time: %w", err)
	}

	raysPerLine := make([]int, lines)
	for i := range raysPerLine {
		raysPerLine[i] = perLine
	}

	halfH := float64(p.HorizontalFOVDeg) / 2
	halfV := float64(p.VerticalFOVDeg) / 2
	rate := pat.FrameRateHz()

	rec := &Record{
		Name:         p.Name(),
		Class:        "sensor",
		Type:         "lidar",
		DriveWorksID: c.DriveWorksID,
		Profile: Profile{
			ScanType:              c.ScanType,
			IntensityProcessing:   c.IntensityProcessing,
			RayType:               c.RayType,
			NearRangeM:            c.NearRangeM,
			FarRangeM:             c.FarRangeM,
			EffectiveApertureSize: c.EffectiveApertureSize,
			FocusDistM:            c.FocusDistM,
			StartAzimuthDeg:       -halfH,
			EndAzimuthDeg:         halfH,
			UpElevationDeg:        halfV,
			// Same sign as UpElevationDeg, as in the reference Cube1 profiles.
			DownElevationDeg:    halfV,
			RangeResolutionM:    c.RangeResolutionM,
			RangeAccuracyM:      c.RangeAccuracyM,
			AvgPowerW:           c.AvgPowerW,
			MinReflectance:      c.MinReflectance,
			MinReflectanceRange: c.MinReflectanceRangeM,
			WavelengthNm:        c.WavelengthNm,
			PulseTimeNs:         c.PulseTimeNs,
			MaxReturns:          c.MaxReturns,
			ScanRateBaseHz:      rate,
			ReportRateBaseHz:    rate,
			NumberOfEmitters:    pat.TotalPoints(),
			NumberOfChannels:    pat.TotalPoints(),
			AzimuthErrorMean:    c.AzimuthErrorMean,
			AzimuthErrorStd:     c.AzimuthErrorStd,
			ElevationErrorMean:  c.ElevationErrorMean,
			ElevationErrorStd:   c.ElevationErrorStd,
			NumLines:            lines,
			NumRaysPerLine:      raysPerLine,
			EmitterStateCount:   1,
			EmitterStates: []EmitterState{{
				AzimuthDeg:   az,
				ElevationDeg: el,
				FireTimeNs:   fire,
			}},
			IntensityMappingType: c.IntensityMappingType,
		},
	}
	diagf("%s: built %d x %d emitter state at %.3f Hz", rec.Name, lines, perLine, rate)
	return rec, nil
}

// reshape lays data out row-major as rows x cols.
func reshape(data []float64, rows, cols int) ([][]float64, error) {
	if rows <= 0 || cols <= 0 || len(data) != rows*cols {
		return nil, fmt.Errorf("%w: cannot reshape %d values into %d x %d",
			scanpattern.ErrSerialization, len(data), rows, cols)
	}
	m := mat.NewDense(rows, cols, data)
	out := make([][]float64, rows)
	for i := range out {
		out[i] = mat.Row(nil, i, m)
	}
	tracef("reshaped %d values into %d x %d", len(data), rows, cols)
	return out, nil
}

// maxExactNanos is the largest magnitude a float64 holds without losing
// integer precision.
const maxExactNanos = 1 << 53

func reshapeNanos(data []int64, rows, cols int) ([][]int64, error) {
	asFloat := make([]float64, len(data))
	for i, ns := range data {
		if ns > maxExactNanos || ns < -maxExactNanos {
			return nil, fmt.Errorf("%w: fire time %d ns not representable", scanpattern.ErrSerialization, ns)
		}
		asFloat[i] = float64(ns)
	}
	m, err := reshape(asFloat, rows, cols)
	if err != nil {
		return nil, err
	}
	out := make([][]int64, rows)
	for i, row := range m {
		out[i] = make([]int64, cols)
		for j, v := range row {
			out[i][j] = int64(math.Round(v))
		}
	}
	return out, nil
}
