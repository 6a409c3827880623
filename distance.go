package madness

import (
	"fmt"
)

// Frame tags which origin the orbit passed to the distance oracle is
// expressed in.
type Frame uint8

const (
	// Heliocentric elements: Earth's position is subtracted.
	Heliocentric Frame = iota + 1
	// EarthCentered elements: the position already is relative to Earth.
	EarthCentered
)

func (f Frame) String() string {
	switch f {
	case Heliocentric:
		return "heliocentric"
	case EarthCentered:
		return "earth-centered"
	default:
		return fmt.Sprintf("frame(%d)", uint8(f))
	}
}

// DistanceFunc is the distance to Earth (km) as a function of time.
type DistanceFunc func(t ET) (float64, error)

// DistanceSample is a distance evaluated at a given time.
type DistanceSample struct {
	Time     ET
	Distance float64 // km
}

// Oracle computes the distance between a small body and the Earth.
type Oracle struct {
	Ephemeris Ephemeris
	Constants Constants
	Metrics   *Metrics // may be nil
}

// NewOracle returns an oracle on the provided ephemeris.
func NewOracle(eph Ephemeris, c Constants) *Oracle {
	return &Oracle{Ephemeris: eph, Constants: c}
}

// Distance returns the distance in km between the body on orbit and the Earth at t.
func (o *Oracle) Distance(t ET, orbit Orbit, frame Frame) (float64, error) {
	var want int
	switch frame {
	case Heliocentric:
		want = o.Constants.SunID
	case EarthCentered:
		want = o.Constants.EarthID
	default:
		return 0, fmt.Errorf("%w: %s", ErrInvalidParameter, frame)
	}
	if orbit.Origin.ID != want {
		return 0, fmt.Errorf("%w: %s orbit used as %s", ErrFrameMismatch, orbit.Origin.Name, frame)
	}
	R, err := orbit.R(t)
	if err != nil {
		return 0, err
	}
	o.Metrics.evaluation(frame)
	if frame == EarthCentered {
		return Norm(R), nil
	}
	earthR, _, err := o.Ephemeris.State(o.Constants.EarthID, o.Constants.SunID, t)
	if err != nil {
		return 0, fmt.Errorf("earth state at %s: %w", t, err)
	}
	return Norm(Sub(R, earthR)), nil
}

// DistanceFunc binds an orbit and a frame to the oracle.
func (o *Oracle) DistanceFunc(orbit Orbit, frame Frame) DistanceFunc {
	return func(t ET) (float64, error) {
		return o.Distance(t, orbit, frame)
	}
}
