package tools

import (
	"errors"
	"fmt"
	"math"
)

const (
	// BrentMaxIterations is the default iteration cap of the root finder.
	BrentMaxIterations = 100
	machε              = 2.220446049250313e-16
)

var (
	// ErrInvalidBracket is returned when f(a) and f(b) have the same sign.
	ErrInvalidBracket = errors.New("bracket does not contain a sign change")
	// ErrNoConvergence is returned when the root finder runs out of iterations.
	ErrNoConvergence = errors.New("root finder did not converge")
)

// Func is a scalar function which may fail to evaluate.
type Func func(x float64) (float64, error)

// Brent finds a root of f in [a, b] with Brent's method (inverse quadratic
// interpolation, secant and bisection steps). f(a) and f(b) must have opposite
// signs or one of them must be zero. tol is the absolute tolerance on x.
func Brent(f Func, a, b, tol float64, maxIter int) (float64, error) {
	if maxIter <= 0 {
		maxIter = BrentMaxIterations
	}
	if a > b {
		a, b = b, a
	}
	fa, err := f(a)
	if err != nil {
		return math.NaN(), err
	}
	fb, err := f(b)
	if err != nil {
		return math.NaN(), err
	}
	if fa == 0 {
		return a, nil
	}
	if fb == 0 {
		return b, nil
	}
	if (fa > 0) == (fb > 0) {
		return math.NaN(), fmt.Errorf("%w: f(%g)=%g f(%g)=%g", ErrInvalidBracket, a, fa, b, fb)
	}

	c, fc := b, fb
	var d, e float64
	for iter := 0; iter < maxIter; iter++ {
		if (fb > 0) == (fc > 0) {
			// Root lies between a and b: rename so that c is the other end.
			c, fc = a, fa
			d = b - a
			e = d
		}
		if math.Abs(fc) < math.Abs(fb) {
			a, b, c = b, c, b
			fa, fb, fc = fb, fc, fb
		}
		tol1 := 2*machε*math.Abs(b) + 0.5*tol
		xm := 0.5 * (c - b)
		if math.Abs(xm) <= tol1 || fb == 0 {
			return b, nil
		}
		if math.Abs(e) >= tol1 && math.Abs(fa) > math.Abs(fb) {
			var p, q float64
			s := fb / fa
			if a == c {
				// Secant.
				p = 2 * xm * s
				q = 1 - s
			} else {
				// Inverse quadratic interpolation.
				q = fa / fc
				r := fb / fc
				p = s * (2*xm*q*(q-r) - (b-a)*(r-1))
				q = (q - 1) * (r - 1) * (s - 1)
			}
			if p > 0 {
				q = -q
			}
			p = math.Abs(p)
			min1 := 3*xm*q - math.Abs(tol1*q)
			min2 := math.Abs(e * q)
			if 2*p < math.Min(min1, min2) {
				e = d
				d = p / q
			} else {
				d = xm
				e = d
			}
		} else {
			d = xm
			e = d
		}
		a, fa = b, fb
		if math.Abs(d) > tol1 {
			b += d
		} else {
			b += math.Copysign(tol1, xm)
		}
		if fb, err = f(b); err != nil {
			return math.NaN(), err
		}
	}
	return b, fmt.Errorf("%w after %d iterations", ErrNoConvergence, maxIter)
}
