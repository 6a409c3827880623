package madness

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

const eps = 1e-6

// vectorsEqual returns whether two vectors are equal within the relative tolerance eps.
func vectorsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := len(a) - 1; i >= 0; i-- {
		if !scalar.EqualWithinRel(a[i], b[i], eps) {
			return false
		}
	}
	return true
}

// closeVectors compares two 3x1 vectors relative to the norm of the first one.
func closeVectors(a, b []float64, rel float64) bool {
	return Norm(Sub(a, b)) <= rel*Norm(a)
}

// anglesEqual returns whether two angles in radians are equal.
func anglesEqual(a, b float64) (bool, error) {
	diff := math.Abs(math.Remainder(a-b, 2*math.Pi))
	if diff < eps {
		return true, nil
	}
	return false, fmt.Errorf("difference of %3.10fπ", diff/math.Pi)
}
