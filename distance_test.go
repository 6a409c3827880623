package madness

import (
	"errors"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gonum.org/v1/gonum/floats/scalar"
)

// circularEarth returns an ephemeris with Earth on a circular orbit of 1 AU.
func circularEarth(t *testing.T) (*ConicEphemeris, Orbit) {
	t.Helper()
	earth, err := NewOrbitFromOE(AU, 0, 0, 0, 0, 0, 0, Sun)
	if err != nil {
		t.Fatal(err)
	}
	return NewConicEphemeris(SunID, map[int]Orbit{EarthID: *earth}), *earth
}

func TestOracleHeliocentric(t *testing.T) {
	eph, _ := circularEarth(t)
	oracle := NewOracle(eph, DefaultConstants())
	// Same orbit, one degree ahead.
	pha, err := NewOrbitFromOE(AU, 0, 0, 0, 0, 1, 0, Sun)
	if err != nil {
		t.Fatal(err)
	}
	exp := 2 * AU * math.Sin(Deg2rad(0.5))
	for _, at := range []ET{0, 1234, -8.64e6} {
		d, err := oracle.Distance(at, *pha, Heliocentric)
		if err != nil {
			t.Fatal(err)
		}
		if !scalar.EqualWithinRel(d, exp, 1e-9) {
			t.Fatalf("d=%f exp %f", d, exp)
		}
	}
}

func TestOracleEarthCentered(t *testing.T) {
	eph, _ := circularEarth(t)
	c := DefaultConstants()
	oracle := NewOracle(eph, c)
	o, err := NewOrbitFromOE(47386.78, 4.098, 89.9, 0, 0, 0, 0, c.Central())
	if err != nil {
		t.Fatal(err)
	}
	d, err := oracle.DistanceFunc(*o, EarthCentered)(0)
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinAbs(d, 47386.78, 1e-6) {
		t.Fatalf("perigee distance %f", d)
	}
}

func TestOracleFrameMismatch(t *testing.T) {
	eph, earth := circularEarth(t)
	c := DefaultConstants()
	oracle := NewOracle(eph, c)
	geo, _ := NewOrbitFromOE(42164, 0, 0, 0, 0, 0, 0, c.Central())
	if _, err := oracle.Distance(0, *geo, Heliocentric); !errors.Is(err, ErrFrameMismatch) {
		t.Fatalf("earth-centered elements as heliocentric: %v", err)
	}
	if _, err := oracle.Distance(0, earth, EarthCentered); !errors.Is(err, ErrFrameMismatch) {
		t.Fatalf("heliocentric elements as earth-centered: %v", err)
	}
	if _, err := oracle.Distance(0, earth, Frame(42)); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("unknown frame: %v", err)
	}
}

func TestOracleMetrics(t *testing.T) {
	eph, earth := circularEarth(t)
	c := DefaultConstants()
	m, err := NewMetrics(prometheus.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	oracle := NewOracle(eph, c)
	oracle.Metrics = m
	f := oracle.DistanceFunc(earth, Heliocentric)
	for k := 0; k < 5; k++ {
		if _, err := f(ET(k)); err != nil {
			t.Fatal(err)
		}
	}
	oracle.Distance(0, earth, EarthCentered) // mismatch, not counted
	if n := testutil.ToFloat64(m.evaluations.WithLabelValues("heliocentric")); n != 5 {
		t.Fatalf("%f heliocentric evaluations", n)
	}
	if n := testutil.CollectAndCount(m.evaluations); n != 1 {
		t.Fatalf("%d frames counted", n)
	}
}
