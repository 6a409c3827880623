package madness

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// PQW2ECI converts a given vector from the perifocal frame to the inertial frame
// of the orbit origin (ecliptic J2000 for every body handled here).
func PQW2ECI(i, ω, Ω float64, vI []float64) []float64 {
	return MxV33(R3R1R3(i, ω, Ω), vI)
}

// R3R1R3 is the 3-1-3 rotation matrix R3(-Ω)·R1(-i)·R3(-ω) written out.
func R3R1R3(i, ω, Ω float64) *mat.Dense {
	si, ci := math.Sincos(i)
	sω, cω := math.Sincos(ω)
	sΩ, cΩ := math.Sincos(Ω)
	return mat.NewDense(3, 3, []float64{cΩ*cω - sΩ*sω*ci, -1*cΩ*sω - sΩ*cω*ci, sΩ * si,
		sΩ*cω + cΩ*sω*ci, cΩ*cω*ci - sΩ*sω, -1 * cΩ * si,
		sω * si, cω * si, ci})
}

// R1 rotation about the 1st axis.
func R1(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, c, s, 0, -s, c})
}

// R3 rotation about the 3rd axis.
func R3(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{c, s, 0, -s, c, 0, 0, 0, 1})
}

// MxV33 multiplies a matrix with a vector. Note that there is no dimension check!
func MxV33(m mat.Matrix, v []float64) (o []float64) {
	vVec := mat.NewVecDense(len(v), v)
	var rVec mat.VecDense
	rVec.MulVec(m, vVec)
	return []float64{rVec.AtVec(0), rVec.AtVec(1), rVec.AtVec(2)}
}
