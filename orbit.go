package madness

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

const (
	circularε   = 1e-11 // below this eccentricity, the periapsis direction is undefined
	parabolicε  = 1e-10 // |e-1| below this is handled by Barker's equation
	equatorialε = 1e-12 // relative norm of the node vector below which the orbit is equatorial
	keplerε     = 1e-14
	keplerMaxIt = 100
)

// ErrKeplerNoConvergence is returned when Kepler's equation could not be solved.
var ErrKeplerNoConvergence = errors.New("kepler equation did not converge")

// Orbit defines a two-body orbit via its elements at an epoch: perifocal
// distance, eccentricity, inclination, RAAN, argument of periapsis and mean
// anomaly at epoch, around the Origin. Orbits are not modified once created,
// a frame change creates a new Orbit.
type Orbit struct {
	rP, e, i, Ω, ω, M0 float64
	epoch              ET
	Origin             CelestialObject // Orbit origin
}

// NewOrbitFromOE creates an orbit from the orbital elements.
// WARNING: Angles must be in degrees not radian.
func NewOrbitFromOE(rP, e, i, Ω, ω, M0 float64, epoch ET, c CelestialObject) (*Orbit, error) {
	if !(rP > 0) {
		return nil, fmt.Errorf("%w: perifocal distance must be positive (got %f)", ErrInvalidParameter, rP)
	}
	if e < 0 || math.IsNaN(e) {
		return nil, fmt.Errorf("%w: eccentricity must be non negative (got %f)", ErrInvalidParameter, e)
	}
	if !(c.μ > 0) {
		return nil, fmt.Errorf("%w: %s has no gravitational parameter", ErrInvalidParameter, c.Name)
	}
	o := Orbit{rP, e, Deg2rad(i), Deg2rad(Ω), Deg2rad(ω), M0 * deg2rad, epoch, c}
	if o.e < 1 {
		o.M0 = wrap2π(o.M0)
	}
	return &o, nil
}

// NewOrbitFromKeplerian creates an elliptic orbit from its semi major axis.
// WARNING: Angles must be in degrees not radian.
func NewOrbitFromKeplerian(a, e, i, Ω, ω, M0 float64, epoch ET, c CelestialObject) (*Orbit, error) {
	if e >= 1 {
		return nil, fmt.Errorf("%w: semi major axis form only supports elliptic orbits (e=%f)", ErrInvalidParameter, e)
	}
	return NewOrbitFromOE(a*(1-e), e, i, Ω, ω, M0, epoch, c)
}

// NewOrbitFromRV returns the osculating elements at t from the R and V vectors.
// From Vallado's RV2COE, page 113, with the angles computed by atan2 in the
// orbit plane so that equatorial and circular orbits are handled.
func NewOrbitFromRV(R, V []float64, t ET, c CelestialObject) (*Orbit, error) {
	if !(c.μ > 0) {
		return nil, fmt.Errorf("%w: %s has no gravitational parameter", ErrInvalidParameter, c.Name)
	}
	r := Norm(R)
	v := Norm(V)
	if r == 0 {
		return nil, fmt.Errorf("%w: position is at the center of %s", ErrInvalidParameter, c.Name)
	}
	hVec := Cross(R, V)
	h := Norm(hVec)
	if scalar.EqualWithinAbs(h, 0, 1e-12*r*math.Max(v, 1)) {
		return nil, fmt.Errorf("%w: rectilinear orbits are not supported", ErrInvalidParameter)
	}
	hHat := unit(hVec)
	n := Cross([]float64{0, 0, 1}, hVec)
	eVec := make([]float64, 3)
	rDotV := Dot(R, V)
	for k := 0; k < 3; k++ {
		eVec[k] = ((v*v-c.μ/r)*R[k] - rDotV*V[k]) / c.μ
	}
	e := Norm(eVec)
	i := math.Acos(math.Max(-1, math.Min(1, hVec[2]/h)))

	nHat := []float64{1, 0, 0}
	Ω := 0.0
	if Norm(n) > equatorialε*h {
		nHat = unit(n)
		Ω = math.Atan2(nHat[1], nHat[0])
	}
	var ω, ν float64
	if e > circularε {
		eHat := unit(eVec)
		ω = math.Atan2(Dot(Cross(nHat, eHat), hHat), Dot(nHat, eHat))
		ν = math.Atan2(Dot(Cross(eHat, R), hHat), Dot(eHat, R))
	} else {
		// Circular: measure from the node (or the x axis if also equatorial).
		e = 0
		ν = math.Atan2(Dot(Cross(nHat, R), hHat), Dot(nHat, R))
	}
	p := h * h / c.μ
	o := Orbit{p / (1 + e), e, i, wrap2π(Ω), wrap2π(ω), meanAnomaly(e, ν), t, c}
	return &o, nil
}

// meanAnomaly returns the mean anomaly (or its parabolic and hyperbolic
// equivalents) for the true anomaly ν in radians.
func meanAnomaly(e, ν float64) float64 {
	sinν, cosν := math.Sincos(ν)
	switch {
	case math.Abs(e-1) < parabolicε:
		D := math.Tan(ν / 2)
		return D + D*D*D/3
	case e < 1:
		E := math.Atan2(math.Sqrt(1-e*e)*sinν, e+cosν)
		return wrap2π(E - e*math.Sin(E))
	default:
		H := math.Asinh(math.Sqrt(e*e-1) * sinν / (1 + e*cosν))
		return e*math.Sinh(H) - H
	}
}

// MeanMotion returns the mean motion in radians per second. For parabolic
// orbits, this is the rate of Barker's equation right hand side.
func (o Orbit) MeanMotion() float64 {
	switch {
	case o.Parabolic():
		return math.Sqrt(o.Origin.μ / (2 * o.rP * o.rP * o.rP))
	default:
		a := math.Abs(o.SemiMajorAxis())
		return math.Sqrt(o.Origin.μ / (a * a * a))
	}
}

// Parabolic returns whether this orbit is handled as a parabola.
func (o Orbit) Parabolic() bool {
	return math.Abs(o.e-1) < parabolicε
}

// Hyperbolic returns whether this orbit is unbound and not parabolic.
func (o Orbit) Hyperbolic() bool {
	return o.e > 1 && !o.Parabolic()
}

// SemiMajorAxis returns the semi major axis, negative for hyperbolas and infinite for parabolas.
func (o Orbit) SemiMajorAxis() float64 {
	if o.Parabolic() {
		return math.Inf(1)
	}
	return o.rP / (1 - o.e)
}

// SemiParameter returns the semi parameter (semilatus rectum).
func (o Orbit) SemiParameter() float64 {
	return o.rP * (1 + o.e)
}

// Periapsis returns the perifocal distance.
func (o Orbit) Periapsis() float64 {
	return o.rP
}

// Eccentricity returns the eccentricity.
func (o Orbit) Eccentricity() float64 {
	return o.e
}

// Epoch returns the epoch of the mean anomaly.
func (o Orbit) Epoch() ET {
	return o.epoch
}

// Energyξ returns the specific mechanical energy ξ.
func (o Orbit) Energyξ() float64 {
	if o.Parabolic() {
		return 0
	}
	return -o.Origin.μ / (2 * o.SemiMajorAxis())
}

// VInfinity returns the hyperbolic excess velocity, or zero for bound orbits.
func (o Orbit) VInfinity() float64 {
	if !o.Hyperbolic() {
		return 0
	}
	return math.Sqrt(2 * o.Energyξ())
}

// Elements returns the six elements with the angles in radians.
func (o Orbit) Elements() (rP, e, i, Ω, ω, M0 float64) {
	return o.rP, o.e, o.i, o.Ω, o.ω, o.M0
}

// RV returns the radius and velocity vectors at time t by propagating the
// conic from its epoch.
func (o Orbit) RV(t ET) (R, V []float64, err error) {
	ν, err := o.TrueAnomaly(t)
	if err != nil {
		return nil, nil, err
	}
	p := o.SemiParameter()
	R = make([]float64, 3)
	V = make([]float64, 3)
	sinν, cosν := math.Sincos(ν)
	r := p / (1 + o.e*cosν)
	R[0] = r * cosν
	R[1] = r * sinν
	R = PQW2ECI(o.i, o.ω, o.Ω, R)

	vp := math.Sqrt(o.Origin.μ / p)
	V[0] = -vp * sinν
	V[1] = vp * (o.e + cosν)
	V = PQW2ECI(o.i, o.ω, o.Ω, V)
	return R, V, nil
}

// R returns the radius vector at time t.
func (o Orbit) R(t ET) ([]float64, error) {
	R, _, err := o.RV(t)
	return R, err
}

// TrueAnomaly returns the true anomaly in radians at time t.
func (o Orbit) TrueAnomaly(t ET) (float64, error) {
	M := o.M0 + o.MeanMotion()*t.Sub(o.epoch)
	switch {
	case o.Parabolic():
		// Barker's equation D + D³/3 = M, solved in closed form.
		B := 1.5 * M
		A := math.Cbrt(B + math.Sqrt(1+B*B))
		return 2 * math.Atan(A-1/A), nil
	case o.e < 1:
		E, err := solveKeplerElliptic(o.e, M)
		if err != nil {
			return math.NaN(), err
		}
		sinE, cosE := math.Sincos(E)
		return math.Atan2(math.Sqrt(1-o.e*o.e)*sinE, cosE-o.e), nil
	default:
		H, err := solveKeplerHyperbolic(o.e, M)
		if err != nil {
			return math.NaN(), err
		}
		return 2 * math.Atan(math.Sqrt((o.e+1)/(o.e-1))*math.Tanh(H/2)), nil
	}
}

// solveKeplerElliptic solves M = E - e·sin(E) by Newton iterations.
func solveKeplerElliptic(e, M float64) (float64, error) {
	M = math.Remainder(M, 2*math.Pi)
	E := M
	if e > 0.8 {
		E = math.Pi * sign(M)
	}
	for it := 0; it < keplerMaxIt; it++ {
		sinE, cosE := math.Sincos(E)
		δ := (E - e*sinE - M) / (1 - e*cosE)
		E -= δ
		if math.Abs(δ) < keplerε {
			return E, nil
		}
	}
	return math.NaN(), fmt.Errorf("%w: e=%f M=%f", ErrKeplerNoConvergence, e, M)
}

// solveKeplerHyperbolic solves M = e·sinh(H) - H by Newton iterations.
func solveKeplerHyperbolic(e, M float64) (float64, error) {
	H := math.Asinh(M / e)
	if math.Abs(M) > 6*e {
		H = sign(M) * math.Log(2*math.Abs(M)/e+1.8)
	}
	for it := 0; it < keplerMaxIt; it++ {
		δ := (e*math.Sinh(H) - H - M) / (e*math.Cosh(H) - 1)
		H -= δ
		if math.Abs(δ) < keplerε*math.Max(1, math.Abs(H)) {
			return H, nil
		}
	}
	return math.NaN(), fmt.Errorf("%w: e=%f M=%f", ErrKeplerNoConvergence, e, M)
}

// String implements the stringer interface (hence the value receiver)
func (o Orbit) String() string {
	return fmt.Sprintf("rP=%.1f e=%.6f i=%.3f Ω=%.3f ω=%.3f M0=%.3f epoch=%s (%s)", o.rP, o.e, Rad2deg(o.i), Rad2deg(o.Ω), Rad2deg(o.ω), o.M0/deg2rad, o.epoch, o.Origin.Name)
}

// Equals returns whether two orbits are identical within the provided tolerances
// on distance (km) and angles (radians), comparing the state at the first epoch.
func (o Orbit) Equals(o1 Orbit, distanceε, angleε float64) (bool, error) {
	if !o.Origin.Equals(o1.Origin) {
		return false, errors.New("different origin")
	}
	if !scalar.EqualWithinAbs(o.rP, o1.rP, distanceε) {
		return false, errors.New("perifocal distance invalid")
	}
	if !scalar.EqualWithinAbs(o.e, o1.e, 1e-9) {
		return false, errors.New("eccentricity invalid")
	}
	if !anglesWithin(o.i, o1.i, angleε) {
		return false, errors.New("inclination invalid")
	}
	R0, _, err := o.RV(o.epoch)
	if err != nil {
		return false, err
	}
	R1, _, err := o1.RV(o.epoch)
	if err != nil {
		return false, err
	}
	if !floats.EqualApprox(R0, R1, distanceε) {
		return false, errors.New("position at epoch invalid")
	}
	return true, nil
}

func anglesWithin(a, b, ε float64) bool {
	return math.Abs(math.Remainder(a-b, 2*math.Pi)) < ε
}
