package tools

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// curvatureε is the smallest relative curvature (a·h² over the sample scale)
// accepted as a real extremum.
const curvatureε = 1e-12

// ErrDegenerateFit is returned when the three samples do not define a minimum.
var ErrDegenerateFit = errors.New("degenerate quadratic fit")

// QuadraticVertex fits the parabola a·x² + b·x + c through three samples
// (t[k], d[k]) and returns the abscissa and value of its vertex. The times are
// shifted by their mean before the solve since ephemeris times are large.
// The fit fails with ErrDegenerateFit unless the parabola opens upwards and its
// vertex lies within [t[0], t[2]].
func QuadraticVertex(t, d [3]float64) (tMin, dMin float64, err error) {
	if !(t[0] < t[1] && t[1] < t[2]) {
		return math.NaN(), math.NaN(), fmt.Errorf("%w: times %v not strictly increasing", ErrDegenerateFit, t)
	}
	mean := (t[0] + t[1] + t[2]) / 3
	A := mat.NewDense(3, 3, nil)
	for k := 0; k < 3; k++ {
		x := t[k] - mean
		A.Set(k, 0, x*x)
		A.Set(k, 1, x)
		A.Set(k, 2, 1)
	}
	var coef mat.VecDense
	if serr := coef.SolveVec(A, mat.NewVecDense(3, d[:])); serr != nil {
		return math.NaN(), math.NaN(), fmt.Errorf("%w: %s", ErrDegenerateFit, serr)
	}
	a, b, c := coef.AtVec(0), coef.AtVec(1), coef.AtVec(2)

	h := 0.5 * (t[2] - t[0])
	scale := math.Max(math.Max(math.Abs(d[0]), math.Abs(d[1])), math.Abs(d[2]))
	if scale == 0 {
		scale = 1
	}
	if a*h*h <= curvatureε*scale {
		return math.NaN(), math.NaN(), fmt.Errorf("%w: curvature %g", ErrDegenerateFit, a)
	}
	xMin := -b / (2 * a)
	tMin = xMin + mean
	if tMin < t[0] || tMin > t[2] {
		return math.NaN(), math.NaN(), fmt.Errorf("%w: vertex %g outside [%g, %g]", ErrDegenerateFit, tMin, t[0], t[2])
	}
	dMin = c - b*b/(4*a)
	return tMin, dMin, nil
}
