package madness

import (
	"fmt"
	"math"

	"github.com/Space-Marine-NASA-Hackathon-25/Madness/tools"
)

// TrackerState is the state of the closest approach scan.
type TrackerState uint8

const (
	// Scanning is the state while the window is filling or sliding.
	Scanning TrackerState = iota + 1
	// Found means a three point minimum was confirmed and fitted.
	Found
	// Exhausted means the scan ended without a confirmed minimum: either the
	// iteration budget was spent or the body left the SOI. The best raw sample
	// is then reported.
	Exhausted
)

func (s TrackerState) String() string {
	switch s {
	case Scanning:
		return "scanning"
	case Found:
		return "found"
	case Exhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// window is a FIFO of the last three samples on fixed storage.
type window struct {
	buf      [3]DistanceSample
	first, n int
}

func (w *window) push(s DistanceSample) {
	if w.n == len(w.buf) {
		w.evict()
	}
	w.buf[(w.first+w.n)%len(w.buf)] = s
	w.n++
}

// evict drops the oldest sample.
func (w *window) evict() {
	if w.n == 0 {
		return
	}
	w.first = (w.first + 1) % len(w.buf)
	w.n--
}

func (w *window) full() bool {
	return w.n == len(w.buf)
}

// at returns the i-th sample, oldest first.
func (w *window) at(i int) DistanceSample {
	return w.buf[(w.first+i)%len(w.buf)]
}

// FitMinimum returns the time of the vertex of the parabola through the three
// samples, which must bracket a minimum.
func FitMinimum(p1, p2, p3 DistanceSample) (ET, error) {
	tMin, _, err := tools.QuadraticVertex(
		[3]float64{float64(p1.Time), float64(p2.Time), float64(p3.Time)},
		[3]float64{p1.Distance, p2.Distance, p3.Distance})
	if err != nil {
		return ET(math.NaN()), err
	}
	return ET(tMin), nil
}

// ApproachSearch parametrizes TrackApproach.
type ApproachSearch struct {
	Start         ET
	Step          float64 // seconds, while looking for the minimum
	WidenedStep   float64 // seconds, once the minimum is found
	Threshold     float64 // km, the scan stops if a sample reaches it
	MaxIterations int
}

func (s ApproachSearch) validate() error {
	switch {
	case !(s.Step > 0):
		return fmt.Errorf("%w: step must be positive (got %g)", ErrInvalidParameter, s.Step)
	case !(s.WidenedStep > 0):
		return fmt.Errorf("%w: widened step must be positive (got %g)", ErrInvalidParameter, s.WidenedStep)
	case !(s.Threshold > 0):
		return fmt.Errorf("%w: threshold must be positive (got %g)", ErrInvalidParameter, s.Threshold)
	case s.MaxIterations <= 0:
		return fmt.Errorf("%w: max iterations must be positive (got %d)", ErrInvalidParameter, s.MaxIterations)
	}
	return nil
}

// Approach is the closest approach found by TrackApproach.
type Approach struct {
	Time     ET
	Distance float64 // km
	State    TrackerState
	// Best is the smallest raw sample seen while scanning.
	Best DistanceSample
	// Resume and ResumeStep are where and how the exit search should continue.
	Resume     ET
	ResumeStep float64
	Iterations int
}

// Fitted returns whether the approach comes from a quadratic fit rather than
// from the best raw sample.
func (a Approach) Fitted() bool {
	return a.State == Found
}

// TrackApproach scans f from s.Start with a sliding window of three samples
// until the middle one is a strict local minimum, in which case the minimum is
// refined by a quadratic fit and the scan step is widened for what follows.
func TrackApproach(f DistanceFunc, s ApproachSearch) (Approach, error) {
	if err := s.validate(); err != nil {
		return Approach{}, err
	}
	var w window
	best := DistanceSample{Time: s.Start, Distance: math.Inf(1)}
	t := s.Start
	for it := 0; it < s.MaxIterations; it++ {
		d, err := f(t)
		if err != nil {
			return Approach{State: Scanning, Best: best, Iterations: it}, fmt.Errorf("distance at %s: %w", t, err)
		}
		sample := DistanceSample{t, d}
		if d < best.Distance {
			best = sample
		}
		if it > 0 && d >= s.Threshold {
			// Left without a confirmed minimum: it was at the start boundary.
			prev := t.Add(-s.Step)
			return Approach{best.Time, best.Distance, Exhausted, best, prev, s.Step, it + 1}, nil
		}
		w.push(sample)
		if w.full() {
			p1, p2, p3 := w.at(0), w.at(1), w.at(2)
			if p2.Distance < p1.Distance && p2.Distance < p3.Distance {
				tMin, err := FitMinimum(p1, p2, p3)
				if err != nil {
					return Approach{State: Scanning, Best: best, Iterations: it + 1}, fmt.Errorf("fitting minimum around %s: %w", p2.Time, err)
				}
				dMin, err := f(tMin)
				if err != nil {
					return Approach{State: Scanning, Best: best, Iterations: it + 1}, fmt.Errorf("distance at %s: %w", tMin, err)
				}
				return Approach{tMin, dMin, Found, best, tMin.Add(s.WidenedStep), s.WidenedStep, it + 1}, nil
			}
			w.evict()
		}
		t = t.Add(s.Step)
	}
	return Approach{best.Time, best.Distance, Exhausted, best, t, s.Step, s.MaxIterations}, nil
}
