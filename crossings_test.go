package madness

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	kitlog "github.com/go-kit/kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gonum.org/v1/gonum/floats/scalar"
)

// closePass is on Earth's circular orbit, inclined by 10 degrees and 60000 km
// ahead along track at J2000.
func closePass(t *testing.T) Orbit {
	t.Helper()
	pha, err := NewOrbitFromOE(AU, 0, 10, 0, 0, Rad2deg(60000/AU), 0, Sun)
	if err != nil {
		t.Fatal(err)
	}
	return *pha
}

func TestCalculateCrossings(t *testing.T) {
	eph, _ := circularEarth(t)
	cfg := DefaultConfig()
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	if err != nil {
		t.Fatal(err)
	}
	var logs bytes.Buffer
	calc := NewCalculator(cfg, eph, kitlog.NewLogfmtLogger(&logs), m)
	rslt, err := calc.CalculateCrossings(closePass(t), ET(-30*SecondsPerDay))
	if err != nil {
		t.Fatal(err)
	}
	if len(rslt.Crossings) != 2 {
		t.Fatalf("%d crossings", len(rslt.Crossings))
	}
	entry, exit := rslt.Crossings[0], rslt.Crossings[1]
	if entry.Direction != Entering || exit.Direction != Exiting {
		t.Fatalf("directions %s then %s", entry.Direction, exit.Direction)
	}
	for _, c := range rslt.Crossings {
		if !scalar.EqualWithinAbs(c.Distance, cfg.Constants.SOIRadius, 1e-3) {
			t.Fatalf("%s at %f km", c.Direction, c.Distance)
		}
	}
	if !scalar.EqualWithinAbs(float64(entry.Time), -179609.656488, 1e-3) || entry.Iterations != 120620 {
		t.Fatalf("entry at %f after %d", entry.Time, entry.Iterations)
	}
	if !rslt.Approach.Fitted() {
		t.Fatalf("approach state %s", rslt.Approach.State)
	}
	if !scalar.EqualWithinAbs(float64(rslt.ApproachTime()), -5248.653504, 1e-3) || rslt.Approach.Iterations != 174363 {
		t.Fatalf("closest approach at %f after %d", rslt.ApproachTime(), rslt.Approach.Iterations)
	}
	if d := rslt.ApproachDistance(); !scalar.EqualWithinAbs(d, 47386.778941, 1e-3) || d <= 0 || d >= cfg.Constants.SOIRadius {
		t.Fatalf("closest approach %f km", d)
	}
	if !scalar.EqualWithinAbs(float64(exit.Time), 169112.349479, 1e-3) || exit.Iterations != 17436 {
		t.Fatalf("exit at %f after %d", exit.Time, exit.Iterations)
	}
	if !(entry.Time < rslt.ApproachTime() && rslt.ApproachTime() < exit.Time) {
		t.Fatal("events out of order")
	}

	rel := rslt.EarthRelative
	if rel.Origin.ID != EarthID || rel.Epoch() != entry.Time {
		t.Fatalf("earth-relative orbit %s", rel)
	}
	if !scalar.EqualWithinAbs(rel.Eccentricity(), 4.0984304, 1e-6) || !scalar.EqualWithinAbs(rel.Periapsis(), 47386.779, 1e-2) {
		t.Fatalf("earth-relative orbit %s", rel)
	}

	for phase, exp := range map[string]float64{"entry": 120621, "interior": 174363, "exit": 17437} {
		if n := testutil.ToFloat64(m.samples.WithLabelValues(phase)); n != exp {
			t.Fatalf("%f %s samples, exp %f", n, phase, exp)
		}
		if n := testutil.ToFloat64(m.outcomes.WithLabelValues(phase, "found")); n != 1 {
			t.Fatalf("%s outcome not counted", phase)
		}
	}
	if n := testutil.ToFloat64(m.evaluations.WithLabelValues("heliocentric")); n <= 120621 {
		t.Fatalf("%f heliocentric evaluations", n)
	}
	for _, event := range []string{"event=entry", "event=reframe", `event="closest approach"`, "event=exit", "event=summary"} {
		if !strings.Contains(logs.String(), event) {
			t.Fatalf("%s not logged:\n%s", event, logs.String())
		}
	}
}

func TestCalculateCrossingsNoEntry(t *testing.T) {
	eph, _ := circularEarth(t)
	cfg := DefaultConfig()
	cfg.Scan.MaxIterations = 100
	far, err := NewOrbitFromOE(2*AU, 0, 0, 0, 0, 0, 0, Sun)
	if err != nil {
		t.Fatal(err)
	}
	_, err = NewCalculator(cfg, eph, kitlog.NewNopLogger(), nil).CalculateCrossings(*far, 0)
	var perr *PhaseError
	if !errors.As(err, &perr) || perr.Phase != PhaseEntry {
		t.Fatalf("expected an entry error, got %v", err)
	}
	if !errors.Is(err, ErrCrossingNotFound) {
		t.Fatalf("expected crossing not found, got %v", err)
	}
}

func TestCalculateCrossingsFrameMismatch(t *testing.T) {
	eph, _ := circularEarth(t)
	cfg := DefaultConfig()
	geo, err := NewOrbitFromOE(42164, 0, 0, 0, 0, 0, 0, cfg.Constants.Central())
	if err != nil {
		t.Fatal(err)
	}
	_, err = NewCalculator(cfg, eph, kitlog.NewNopLogger(), nil).CalculateCrossings(*geo, 0)
	if !errors.Is(err, ErrFrameMismatch) {
		t.Fatalf("expected a frame mismatch, got %v", err)
	}
}

func TestCalculateCrossingsInvalidConfig(t *testing.T) {
	eph, _ := circularEarth(t)
	cfg := DefaultConfig()
	cfg.Scan.CoarseStep = 0
	if _, err := NewCalculator(cfg, eph, kitlog.NewNopLogger(), nil).CalculateCrossings(closePass(t), 0); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected an invalid parameter, got %v", err)
	}
	cfg = DefaultConfig()
	cfg.Constants.SOIRadius = -1
	if _, err := NewCalculator(cfg, eph, kitlog.NewNopLogger(), nil).CalculateCrossings(closePass(t), 0); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected an invalid parameter, got %v", err)
	}
}

func TestInOrder(t *testing.T) {
	fitted := Approach{Time: 10, State: Found}
	best := Approach{Time: 0, State: Exhausted}
	for _, tc := range []struct {
		entry, exit ET
		a           Approach
		exp         bool
	}{
		{0, 20, fitted, true},
		{10, 20, fitted, false},
		{0, 10, fitted, false},
		{0, 20, best, true},
		{1, 20, best, false},
		{-5, 0, best, false},
	} {
		if got := inOrder(tc.entry, tc.a, tc.exit); got != tc.exp {
			t.Fatalf("inOrder(%s, %+v, %s)=%t", tc.entry, tc.a, tc.exit, got)
		}
	}
}

func TestPhaseError(t *testing.T) {
	err := error(&PhaseError{PhaseExit, ErrCrossingNotFound})
	if err.Error() != "exit: crossing not found" {
		t.Fatal(err)
	}
	if !errors.Is(err, ErrCrossingNotFound) {
		t.Fatal("PhaseError does not unwrap")
	}
}
