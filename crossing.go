package madness

import (
	"fmt"

	"github.com/Space-Marine-NASA-Hackathon-25/Madness/tools"
)

// DefaultTolerance is the absolute time tolerance in seconds of the crossing refinement.
const DefaultTolerance = 1e-6

// Direction of a threshold crossing.
type Direction uint8

const (
	// Entering stops on the first sample at or below the threshold.
	Entering Direction = iota + 1
	// Exiting stops on the first sample at or above the threshold.
	Exiting
)

func (d Direction) String() string {
	switch d {
	case Entering:
		return "entering"
	case Exiting:
		return "exiting"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// reached returns whether distance satisfies the stop condition.
func (d Direction) reached(distance, threshold float64) bool {
	if d == Entering {
		return distance <= threshold
	}
	return distance >= threshold
}

// Crossing is a refined threshold crossing.
type Crossing struct {
	Time       ET
	Distance   float64 // km, at Time
	Direction  Direction
	Iterations int // samples taken before the one which met the condition
}

// CrossingSearch parametrizes FindCrossing.
type CrossingSearch struct {
	Start         ET
	Step          float64 // seconds
	Threshold     float64 // km
	Direction     Direction
	MaxIterations int
	Tolerance     float64 // seconds, DefaultTolerance if zero
}

func (s CrossingSearch) validate() error {
	switch {
	case !(s.Step > 0):
		return fmt.Errorf("%w: step must be positive (got %g)", ErrInvalidParameter, s.Step)
	case !(s.Threshold > 0):
		return fmt.Errorf("%w: threshold must be positive (got %g)", ErrInvalidParameter, s.Threshold)
	case s.MaxIterations <= 0:
		return fmt.Errorf("%w: max iterations must be positive (got %d)", ErrInvalidParameter, s.MaxIterations)
	case s.Direction != Entering && s.Direction != Exiting:
		return fmt.Errorf("%w: %s", ErrInvalidParameter, s.Direction)
	case s.Tolerance < 0:
		return fmt.Errorf("%w: tolerance must not be negative", ErrInvalidParameter)
	}
	return nil
}

// FindCrossing advances from s.Start by s.Step until f meets the threshold in
// the search direction, then refines the crossing with Brent's method on the
// last step. The step must be small enough for f not to cross and come back
// within one step.
func FindCrossing(f DistanceFunc, s CrossingSearch) (Crossing, error) {
	if err := s.validate(); err != nil {
		return Crossing{}, err
	}
	tol := s.Tolerance
	if tol == 0 {
		tol = DefaultTolerance
	}
	t := s.Start
	for it := 0; it < s.MaxIterations; it++ {
		d, err := f(t)
		if err != nil {
			return Crossing{Iterations: it}, fmt.Errorf("distance at %s: %w", t, err)
		}
		if !s.Direction.reached(d, s.Threshold) {
			t = t.Add(s.Step)
			continue
		}
		g := func(x float64) (float64, error) {
			dx, err := f(ET(x))
			return dx - s.Threshold, err
		}
		root, err := tools.Brent(g, float64(t.Add(-s.Step)), float64(t), tol, 0)
		if err != nil {
			return Crossing{Iterations: it}, fmt.Errorf("refining %s crossing in [%s, %s]: %w", s.Direction, t.Add(-s.Step), t, err)
		}
		dRoot, err := f(ET(root))
		if err != nil {
			return Crossing{Iterations: it}, fmt.Errorf("distance at %s: %w", ET(root), err)
		}
		return Crossing{ET(root), dRoot, s.Direction, it}, nil
	}
	return Crossing{Iterations: s.MaxIterations}, fmt.Errorf("%w: %s %.1f km within %d steps of %g s from %s", ErrCrossingNotFound, s.Direction, s.Threshold, s.MaxIterations, s.Step, s.Start)
}
