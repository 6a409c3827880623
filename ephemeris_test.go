package madness

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestMeanEarthEphemeris(t *testing.T) {
	c := DefaultConstants()
	eph := NewMeanEarthEphemeris(c)
	R, V, err := eph.State(c.EarthID, c.SunID, 0)
	if err != nil {
		t.Fatal(err)
	}
	// Early January: close to perihelion.
	if r := Norm(R) / AU; !scalar.EqualWithinAbs(r, 0.9833, 1e-3) {
		t.Fatalf("r=%f AU", r)
	}
	if v := Norm(V); !scalar.EqualWithinAbs(v, 30.29, 1e-2) {
		t.Fatalf("v=%f km/s", v)
	}
	if λ := Rad2deg(math.Atan2(R[1], R[0])); !scalar.EqualWithinAbs(λ, 100.38, 0.05) {
		t.Fatalf("longitude=%f deg", λ)
	}
	if math.Abs(R[2]) > 1e-6*Norm(R) {
		t.Fatalf("Earth is off the ecliptic: z=%f", R[2])
	}
	sR, sV, err := eph.State(c.SunID, c.EarthID, 0)
	if err != nil {
		t.Fatal(err)
	}
	for k := 0; k < 3; k++ {
		if sR[k] != -R[k] || sV[k] != -V[k] {
			t.Fatalf("observer swap is not antisymmetric: %v %v", sR, R)
		}
	}
	if R, V, err := eph.State(c.SunID, c.SunID, 0); err != nil || Norm(R) != 0 || Norm(V) != 0 {
		t.Fatalf("Sun seen from the Sun: %v %v %v", R, V, err)
	}
}

func TestConicEphemerisUnknown(t *testing.T) {
	eph := NewMeanEarthEphemeris(DefaultConstants())
	if _, _, err := eph.State(301, SunID, 0); !errors.Is(err, ErrUnknownBody) {
		t.Fatalf("target: %v", err)
	}
	if _, _, err := eph.State(EarthID, 301, 0); !errors.Is(err, ErrUnknownBody) {
		t.Fatalf("observer: %v", err)
	}
}

func TestConicEphemerisCopiesBodies(t *testing.T) {
	bodies := map[int]Orbit{EarthID: EarthMeanOrbit(Sun)}
	eph := NewConicEphemeris(SunID, bodies)
	delete(bodies, EarthID)
	if _, _, err := eph.State(EarthID, SunID, 0); err != nil {
		t.Fatalf("ephemeris shares the map of the caller: %s", err)
	}
}

func TestVSOP87EphemerisMissingData(t *testing.T) {
	eph := NewVSOP87Ephemeris(t.TempDir(), DefaultConstants())
	if R, _, err := eph.State(SunID, SunID, 0); err != nil || Norm(R) != 0 {
		t.Fatalf("Sun should not need the planet file: %v", err)
	}
	if _, _, err := eph.State(301, SunID, 0); !errors.Is(err, ErrUnknownBody) {
		t.Fatalf("301: %v", err)
	}
	_, _, err := eph.State(EarthID, SunID, 0)
	if err == nil {
		t.Fatal("expected an error without VSOP87 files")
	}
	if _, _, err2 := eph.State(EarthID, SunID, 100); err2 == nil || err2.Error() != err.Error() {
		t.Fatalf("load error not kept: %v", err2)
	}
}

func TestNewEphemeris(t *testing.T) {
	cfg := DefaultConfig()
	if _, ok := NewEphemeris(cfg).(*ConicEphemeris); !ok {
		t.Fatal("default ephemeris should be the mean Earth conic")
	}
	cfg.VSOP87 = true
	cfg.VSOP87Dir = "/nonexistent"
	if _, ok := NewEphemeris(cfg).(*VSOP87Ephemeris); !ok {
		t.Fatal("expected the VSOP87 ephemeris")
	}
}
