package scanpattern

import "fmt"

// MirrorAmplitudeDeg is the mechanical half-amplitude of the horizontal
// mirror. The Cube1 sweeps 80° peak-to-peak and this is not configurable.
const MirrorAmplitudeDeg = 40.0

// Parameter bounds accepted by Validate.
const (
	DefaultMirrorFrequencyHz = 250

	MinHorizontalFOVDeg = 1
	MaxHorizontalFOVDeg = 72

	MinVerticalFOVDeg = 1
	MaxVerticalFOVDeg = 30

	MinHorizontalResDeciDeg = 4
	MaxHorizontalResDeciDeg = 10

	MinScanlines = 1
	MaxScanlines = 200
)

// ScanParameters are the user-facing knobs of a Cube1 scan pattern.
type ScanParameters struct {
	MirrorFrequencyHz    int `json:"freq" yaml:"freq"`
	HorizontalFOVDeg     int `json:"hor_meas_fov" yaml:"hor_meas_fov"`
	VerticalFOVDeg       int `json:"ver_meas_fov" yaml:"ver_meas_fov"`
	HorizontalResDeciDeg int `json:"hor_ang_res" yaml:"hor_ang_res"`
	ScanlinesUp          int `json:"num_scan_up" yaml:"num_scan_up"`
	ScanlinesDown        int `json:"num_scan_down" yaml:"num_scan_down"`
}

// DefaultScanParameters returns the factory Cube1 configuration.
func DefaultScanParameters() ScanParameters {
	return ScanParameters{
		MirrorFrequencyHz:    DefaultMirrorFrequencyHz,
		HorizontalFOVDeg:     72,
		VerticalFOVDeg:       30,
		HorizontalResDeciDeg: 4,
		ScanlinesUp:          200,
		ScanlinesDown:        200,
	}
}

// Validate reports the first field that is outside its bounds. Fields are
// checked in flag order so the message always names the same field for the
// same input.
func (p ScanParameters) Validate() error {
	if p.MirrorFrequencyHz < 1 {
		return &ParameterError{Field: "FREQ", Value: p.MirrorFrequencyHz, Min: 1}
	}
	checks := []struct {
		field    string
		value    int
		min, max int
	}{
		{"HOR_MEAS_FOV", p.HorizontalFOVDeg, MinHorizontalFOVDeg, MaxHorizontalFOVDeg},
		{"VER_MEAS_FOV", p.VerticalFOVDeg, MinVerticalFOVDeg, MaxVerticalFOVDeg},
		{"HOR_ANG_RES", p.HorizontalResDeciDeg, MinHorizontalResDeciDeg, MaxHorizontalResDeciDeg},
		{"NUM_SCAN_UP", p.ScanlinesUp, MinScanlines, MaxScanlines},
		{"NUM_SCAN_DOWN", p.ScanlinesDown, MinScanlines, MaxScanlines},
	}
	for _, c := range checks {
		if c.value < c.min || c.value > c.max {
			return &ParameterError{Field: c.field, Value: c.value, Min: c.min, Max: c.max}
		}
	}
	return nil
}

// Name encodes every parameter so an output can be traced back to the run
// that produced it, e.g. BF1_250_72_30_4_200_200.
func (p ScanParameters) Name() string {
	return fmt.Sprintf("BF1_%d_%d_%d_%d_%d_%d",
		p.MirrorFrequencyHz, p.HorizontalFOVDeg, p.VerticalFOVDeg,
		p.HorizontalResDeciDeg, p.ScanlinesUp, p.ScanlinesDown)
}

// Filename is Name with the .json extension.
func (p ScanParameters) Filename() string {
	return p.Name() + ".json"
}

// TotalScanlines is the number of scanlines in one frame.
func (p ScanParameters) TotalScanlines() int {
	return p.ScanlinesUp + p.ScanlinesDown
}

// HorizontalResDeg is the angular step between pulses in degrees.
func (p ScanParameters) HorizontalResDeg() float64 {
	return float64(p.HorizontalResDeciDeg) / 10
}
