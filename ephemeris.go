package madness

import (
	"fmt"
	"math"
	"sync"

	"github.com/soniakeys/meeus/v3/planetposition"
)

// vsop87Δt is the half width in seconds of the central difference used to
// get velocities out of the VSOP87 positions.
const vsop87Δt = 60.0

// Ephemeris provides the state of a body relative to an observer body, both
// identified by their NAIF ID, in the ecliptic J2000 frame (km and km/s).
type Ephemeris interface {
	State(target, observer int, t ET) (R, V []float64, err error)
}

// ConicEphemeris models each body on a heliocentric two-body orbit.
// It is deterministic and needs no data files.
type ConicEphemeris struct {
	sunID  int
	bodies map[int]Orbit
}

// NewConicEphemeris returns an ephemeris with the provided heliocentric orbits,
// keyed by NAIF ID. The Sun is always at the origin.
func NewConicEphemeris(sunID int, bodies map[int]Orbit) *ConicEphemeris {
	b := make(map[int]Orbit, len(bodies))
	for id, o := range bodies {
		b[id] = o
	}
	return &ConicEphemeris{sunID, b}
}

// NewMeanEarthEphemeris returns a ConicEphemeris with Earth on its J2000 mean elements.
func NewMeanEarthEphemeris(c Constants) *ConicEphemeris {
	return NewConicEphemeris(c.SunID, map[int]Orbit{c.EarthID: EarthMeanOrbit(c.Primary())})
}

// EarthMeanOrbit returns the heliocentric orbit of the Earth-Moon barycenter from
// the J2000 mean elements (Standish, valid 1800-2050), with the slightly negative
// mean inclination written as a positive one with the node flipped.
func EarthMeanOrbit(sun CelestialObject) Orbit {
	const (
		a  = 1.00000261 * AU
		e  = 0.01671123
		ϖ  = 102.93768193
		L0 = 100.46457166
	)
	o, err := NewOrbitFromKeplerian(a, e, 0.00001531, 180, ϖ-180, L0-ϖ, 0, sun)
	if err != nil {
		panic(fmt.Errorf("invalid Earth mean elements: %s", err))
	}
	return *o
}

// State implements Ephemeris.
func (c *ConicEphemeris) State(target, observer int, t ET) (R, V []float64, err error) {
	if R, V, err = c.helio(target, t); err != nil {
		return nil, nil, err
	}
	if observer == c.sunID {
		return R, V, nil
	}
	oR, oV, err := c.helio(observer, t)
	if err != nil {
		return nil, nil, err
	}
	return Sub(R, oR), Sub(V, oV), nil
}

func (c *ConicEphemeris) helio(id int, t ET) (R, V []float64, err error) {
	if id == c.sunID {
		return []float64{0, 0, 0}, []float64{0, 0, 0}, nil
	}
	o, ok := c.bodies[id]
	if !ok {
		return nil, nil, fmt.Errorf("%w: NAIF ID %d in conic ephemeris", ErrUnknownBody, id)
	}
	return o.RV(t)
}

// VSOP87Ephemeris provides the Earth heliocentric state from the VSOP87 theory.
// The planet file is loaded on first use from the directory.
type VSOP87Ephemeris struct {
	dir            string
	sunID, earthID int
	once           sync.Once
	earth          *planetposition.V87Planet
	loadErr        error
}

// NewVSOP87Ephemeris returns an ephemeris reading the VSOP87B files in dir.
func NewVSOP87Ephemeris(dir string, c Constants) *VSOP87Ephemeris {
	return &VSOP87Ephemeris{dir: dir, sunID: c.SunID, earthID: c.EarthID}
}

func (v *VSOP87Ephemeris) load() error {
	v.once.Do(func() {
		planet, err := planetposition.LoadPlanetPath(planetposition.Earth, v.dir)
		if err != nil {
			v.loadErr = fmt.Errorf("could not load VSOP87 Earth from %s: %w", v.dir, err)
			return
		}
		v.earth = planet
	})
	return v.loadErr
}

// position returns the heliocentric ecliptic J2000 position of Earth.
func (v *VSOP87Ephemeris) position(t ET) []float64 {
	l, b, r := v.earth.Position2000(t.JDE())
	r *= AU
	// Get the Cartesian coordinates from L,B,R.
	sB, cB := math.Sincos(b.Rad())
	sL, cL := math.Sincos(l.Rad())
	return []float64{r * cB * cL, r * cB * sL, r * sB}
}

// State implements Ephemeris. Only the Sun and the Earth are supported.
func (v *VSOP87Ephemeris) State(target, observer int, t ET) (R, V []float64, err error) {
	helio := func(id int) ([]float64, []float64, error) {
		switch id {
		case v.sunID:
			return []float64{0, 0, 0}, []float64{0, 0, 0}, nil
		case v.earthID:
			if err := v.load(); err != nil {
				return nil, nil, err
			}
			before := v.position(t.Add(-vsop87Δt))
			after := v.position(t.Add(vsop87Δt))
			vel := Sub(after, before)
			for k := range vel {
				vel[k] /= 2 * vsop87Δt
			}
			return v.position(t), vel, nil
		default:
			return nil, nil, fmt.Errorf("%w: NAIF ID %d in VSOP87 ephemeris", ErrUnknownBody, id)
		}
	}
	if R, V, err = helio(target); err != nil {
		return nil, nil, err
	}
	oR, oV, err := helio(observer)
	if err != nil {
		return nil, nil, err
	}
	return Sub(R, oR), Sub(V, oV), nil
}

// NewEphemeris returns the ephemeris selected by the configuration.
func NewEphemeris(cfg Config) Ephemeris {
	if cfg.VSOP87 {
		return NewVSOP87Ephemeris(cfg.VSOP87Dir, cfg.Constants)
	}
	return NewMeanEarthEphemeris(cfg.Constants)
}
