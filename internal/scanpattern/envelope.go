package scanpattern

// RampEnvelope is the triangular amplitude multiplier applied to the
// vertical mirror. It rises linearly from 0 to 1 over the ramp-up window and
// falls back to 0 at the end of the frame.
type RampEnvelope struct {
	TransitionS  float64 // instant where ramp-up switches to ramp-down
	FramePeriodS float64
}

// NewRampEnvelope rejects windows that would divide by zero on either side
// of the transition.
func NewRampEnvelope(transitionS, framePeriodS float64) (RampEnvelope, error) {
	if !(framePeriodS > 0) {
		return RampEnvelope{}, computationErrorf("frame period must be positive, got %g s", framePeriodS)
	}
	if !(transitionS > 0) {
		return RampEnvelope{}, computationErrorf("ramp-up window is empty (transition at %g s)", transitionS)
	}
	if transitionS >= framePeriodS {
		return RampEnvelope{}, computationErrorf("ramp-down window is empty (transition %g s, frame %g s)", transitionS, framePeriodS)
	}
	return RampEnvelope{TransitionS: transitionS, FramePeriodS: framePeriodS}, nil
}

// At evaluates the envelope at t seconds from frame start, t in
// [0, FramePeriodS].
func (e RampEnvelope) At(t float64) float64 {
	if t <= e.TransitionS {
		return t / e.TransitionS
	}
	return (e.FramePeriodS - t) / (e.FramePeriodS - e.TransitionS)
}
