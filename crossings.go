package madness

import (
	"fmt"
	"os"

	kitlog "github.com/go-kit/kit/log"
)

// Result holds the events of one passage through the SOI.
type Result struct {
	Crossings     []Crossing // entry then exit
	Approach      Approach
	EarthRelative Orbit // osculating Earth-centered orbit at entry
}

// ApproachTime returns the time of closest approach.
func (r Result) ApproachTime() ET {
	return r.Approach.Time
}

// ApproachDistance returns the closest approach distance in km.
func (r Result) ApproachDistance() float64 {
	return r.Approach.Distance
}

// Calculator finds the SOI crossings and the closest approach of a small body.
// It holds no state between calls.
type Calculator struct {
	Oracle *Oracle
	Scan   ScanConfig
	logger kitlog.Logger
}

// NewCalculator returns a calculator on the provided ephemeris. A nil logger
// logs in logfmt to stdout.
func NewCalculator(cfg Config, eph Ephemeris, logger kitlog.Logger, m *Metrics) *Calculator {
	if logger == nil {
		logger = kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	}
	oracle := NewOracle(eph, cfg.Constants)
	oracle.Metrics = m
	return &Calculator{oracle, cfg.Scan, logger}
}

// CalculateCrossings returns the first SOI entry after start, the closest
// approach and the following SOI exit of the body on the heliocentric orbit
// pha. The interior is propagated on the osculating Earth-centered orbit at entry.
func (c *Calculator) CalculateCrossings(pha Orbit, start ET) (Result, error) {
	consts := c.Oracle.Constants
	if err := consts.Validate(); err != nil {
		return Result{}, err
	}
	if err := c.Scan.Validate(); err != nil {
		return Result{}, err
	}
	logger := kitlog.With(c.logger, "subsys", "soi")
	metrics := c.Oracle.Metrics

	entry, err := FindCrossing(c.Oracle.DistanceFunc(pha, Heliocentric), CrossingSearch{
		Start:         start,
		Step:          c.Scan.CoarseStep,
		Threshold:     consts.SOIRadius,
		Direction:     Entering,
		MaxIterations: c.Scan.MaxIterations,
		Tolerance:     c.Scan.Tolerance,
	})
	metrics.sampled(PhaseEntry, entry.Iterations+1)
	if err != nil {
		metrics.outcome(PhaseEntry, "error")
		return Result{}, &PhaseError{PhaseEntry, err}
	}
	metrics.outcome(PhaseEntry, "found")
	logger.Log("level", "notice", "event", "entry", "utc", entry.Time.Calendar(), "distance(LD)", entry.Distance/consts.LunarDistance)

	rel, err := c.earthRelative(pha, entry.Time)
	if err != nil {
		return Result{}, &PhaseError{PhaseInterior, err}
	}
	logger.Log("level", "info", "event", "reframe", "perigee(km)", rel.Periapsis(), "eccentricity", rel.Eccentricity(), "vinf(km/s)", rel.VInfinity())

	geocentric := c.Oracle.DistanceFunc(*rel, EarthCentered)
	approach, err := TrackApproach(geocentric, ApproachSearch{
		Start:         entry.Time,
		Step:          c.Scan.FineStep,
		WidenedStep:   c.Scan.ExitStep,
		Threshold:     consts.SOIRadius,
		MaxIterations: c.Scan.MaxIterations,
	})
	metrics.sampled(PhaseInterior, approach.Iterations)
	if err != nil {
		metrics.outcome(PhaseInterior, "error")
		return Result{}, &PhaseError{PhaseInterior, err}
	}
	metrics.outcome(PhaseInterior, approach.State.String())
	if approach.Fitted() {
		logger.Log("level", "notice", "event", "closest approach", "utc", approach.Time.ISO(3), "distance(km)", approach.Distance)
	} else {
		logger.Log("level", "warning", "event", "closest approach", "message", "no three point minimum, using best sample", "utc", approach.Time.ISO(3), "distance(km)", approach.Distance)
	}

	exit, err := FindCrossing(geocentric, CrossingSearch{
		Start:         approach.Resume,
		Step:          approach.ResumeStep,
		Threshold:     consts.SOIRadius,
		Direction:     Exiting,
		MaxIterations: c.Scan.MaxIterations,
		Tolerance:     c.Scan.Tolerance,
	})
	metrics.sampled(PhaseExit, exit.Iterations+1)
	if err != nil {
		metrics.outcome(PhaseExit, "error")
		return Result{}, &PhaseError{PhaseExit, err}
	}
	metrics.outcome(PhaseExit, "found")
	logger.Log("level", "notice", "event", "exit", "utc", exit.Time.Calendar(), "distance(LD)", exit.Distance/consts.LunarDistance)

	if !inOrder(entry.Time, approach, exit.Time) {
		return Result{}, fmt.Errorf("%w: entry %s, approach %s, exit %s", ErrOrdering, entry.Time, approach.Time, exit.Time)
	}
	logger.Log("level", "info", "event", "summary", "closest(km)", approach.Distance, "utc", approach.Time.ISO(3))
	return Result{[]Crossing{entry, exit}, approach, *rel}, nil
}

// earthRelative returns the osculating Earth-centered orbit of the body at t.
func (c *Calculator) earthRelative(pha Orbit, t ET) (*Orbit, error) {
	consts := c.Oracle.Constants
	R, V, err := pha.RV(t)
	if err != nil {
		return nil, err
	}
	eR, eV, err := c.Oracle.Ephemeris.State(consts.EarthID, consts.SunID, t)
	if err != nil {
		return nil, fmt.Errorf("earth state at %s: %w", t, err)
	}
	return NewOrbitFromRV(Sub(R, eR), Sub(V, eV), t, consts.Central())
}

// inOrder checks entry < approach < exit. A best-sample approach may sit on
// the entry itself.
func inOrder(entry ET, a Approach, exit ET) bool {
	if a.Time >= exit {
		return false
	}
	if a.Fitted() {
		return entry < a.Time
	}
	return entry <= a.Time
}
