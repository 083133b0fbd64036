package profile

// SensorConstants are the physical properties of the sensor that the scan
// pattern does not determine. They pass through to the record unchanged.
type SensorConstants struct {
	DriveWorksID         string
	ScanType             string
	IntensityProcessing  string
	RayType              string
	IntensityMappingType string

	NearRangeM            float64
	FarRangeM             float64
	EffectiveApertureSize float64
	FocusDistM            float64
	RangeResolutionM      float64
	RangeAccuracyM        float64
	AvgPowerW             float64
	MinReflectance        float64
	MinReflectanceRangeM  float64
	WavelengthNm          float64
	PulseTimeNs           int
	MaxReturns            int

	AzimuthErrorMean   float64
	AzimuthErrorStd    float64
	ElevationErrorMean float64
	ElevationErrorStd  float64
}

// Cube1Constants returns the data-sheet values for a Blickfeld Cube1.
func Cube1Constants() SensorConstants {
	return SensorConstants{
		DriveWorksID:         "GENERIC",
		ScanType:             "solidState",
		IntensityProcessing:  "normalization",
		RayType:              "IDEALIZED",
		IntensityMappingType: "LINEAR",

		NearRangeM:            1.5,
		FarRangeM:             250.0,
		EffectiveApertureSize: 0.01,
		FocusDistM:            0.12,
		RangeResolutionM:      0.01,
		RangeAccuracyM:        0.02,
		AvgPowerW:             0.002,
		MinReflectance:        0.1,
		MinReflectanceRangeM:  75.0,
		WavelengthNm:          905.0,
		PulseTimeNs:           6,
		MaxReturns:            2,

		AzimuthErrorMean:   0.0,
		AzimuthErrorStd:    0.015,
		ElevationErrorMean: 0.0,
		ElevationErrorStd:  0.015,
	}
}
