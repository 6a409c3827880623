package madness

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// AU is one astronomical unit in kilometers.
	AU = 1.49597870700e8
	// LD is one lunar distance in kilometers.
	LD = 384400.0
	// NAIF identifiers of the bodies known to this package.
	SunID   = 10
	EarthID = 399
)

// ErrUnknownBody is returned when a body lookup fails.
var ErrUnknownBody = errors.New("unknown body")

// CelestialObject defines a celestial object.
type CelestialObject struct {
	Name   string
	ID     int     // NAIF identifier
	Radius float64 // km
	μ      float64
	SOI    float64 // With respect to the Sun, -1 for the Sun itself
}

// GM returns μ (which is unexported because it's a lowercase letter)
func (c CelestialObject) GM() float64 {
	return c.μ
}

// WithGM returns a copy of this object with a different gravitational parameter.
func (c CelestialObject) WithGM(μ float64) CelestialObject {
	c.μ = μ
	return c
}

// String implements the Stringer interface.
func (c CelestialObject) String() string {
	return c.Name + " body"
}

// Equals returns whether the provided celestial object is the same.
func (c CelestialObject) Equals(b CelestialObject) bool {
	return c.Name == b.Name && c.ID == b.ID && c.μ == b.μ
}

// CelestialObjectFromString returns the object from its name
func CelestialObjectFromString(name string) (CelestialObject, error) {
	switch strings.ToLower(name) {
	case "sun":
		return Sun, nil
	case "earth":
		return Earth, nil
	default:
		return CelestialObject{}, fmt.Errorf("%w: '%s'", ErrUnknownBody, name)
	}
}

// CelestialObjectFromID returns the object from its NAIF identifier.
func CelestialObjectFromID(id int) (CelestialObject, error) {
	switch id {
	case SunID:
		return Sun, nil
	case EarthID:
		return Earth, nil
	default:
		return CelestialObject{}, fmt.Errorf("%w: NAIF ID %d", ErrUnknownBody, id)
	}
}

/* Definitions */

// Sun is our closest star.
var Sun = CelestialObject{"Sun", SunID, 695700, 1.32712440018e11, -1}

// Earth is home.
var Earth = CelestialObject{"Earth", EarthID, 6378.1363, 398600.4418, 924645.0}

// Constants gathers the physical constants and body identifiers of one
// crossing computation. A zero Constants is not usable, start from
// DefaultConstants.
type Constants struct {
	LunarDistance float64 // km, reporting unit only
	GMEarth       float64 // km^3/s^2
	EarthID       int
	SunID         int
	SOIRadius     float64 // km
}

// DefaultConstants returns the constants of an Earth close approach.
func DefaultConstants() Constants {
	return Constants{
		LunarDistance: LD,
		GMEarth:       Earth.μ,
		EarthID:       EarthID,
		SunID:         SunID,
		SOIRadius:     929000,
	}
}

// Validate checks that the constants can drive a computation.
func (c Constants) Validate() error {
	if c.LunarDistance <= 0 {
		return fmt.Errorf("%w: lunar distance must be positive", ErrInvalidParameter)
	}
	if c.GMEarth <= 0 {
		return fmt.Errorf("%w: GM of Earth must be positive", ErrInvalidParameter)
	}
	if c.SOIRadius <= 0 {
		return fmt.Errorf("%w: SOI radius must be positive", ErrInvalidParameter)
	}
	if c.EarthID == c.SunID {
		return fmt.Errorf("%w: Earth and Sun share NAIF ID %d", ErrInvalidParameter, c.EarthID)
	}
	return nil
}

// Central returns the body around which the Earth-relative orbit is built,
// carrying the configured GM.
func (c Constants) Central() CelestialObject {
	e := Earth.WithGM(c.GMEarth)
	e.ID = c.EarthID
	return e
}

// Primary returns the Sun as identified by these constants.
func (c Constants) Primary() CelestialObject {
	s := Sun
	s.ID = c.SunID
	return s
}
