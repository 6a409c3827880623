package main

import (
	"fmt"

	madness "github.com/Space-Marine-NASA-Hackathon-25/Madness"
	"github.com/spf13/viper"
)

// Scenario is a small body and the time from which to look for its next SOI passage.
type Scenario struct {
	Name  string
	Orbit madness.Orbit
	Start madness.ET
}

func (s Scenario) String() string {
	return fmt.Sprintf("%s from %s: %s", s.Name, s.Start.Calendar(), s.Orbit)
}

// readScenario reads the [pha] and [search] tables. Angles are in degrees,
// distances in km. Epochs may be given as a JDE (`*_jde`) or as a date.
func readScenario(v *viper.Viper) (Scenario, error) {
	epoch, err := confReadET(v, "pha.epoch")
	if err != nil {
		return Scenario{}, err
	}
	start, err := confReadET(v, "search.start")
	if err != nil {
		return Scenario{}, err
	}
	var o *madness.Orbit
	if v.IsSet("pha.a") {
		o, err = madness.NewOrbitFromKeplerian(v.GetFloat64("pha.a")*madness.AU, v.GetFloat64("pha.e"), v.GetFloat64("pha.i"), v.GetFloat64("pha.raan"), v.GetFloat64("pha.argp"), v.GetFloat64("pha.m0"), epoch, madness.Sun)
	} else {
		o, err = madness.NewOrbitFromOE(v.GetFloat64("pha.rp"), v.GetFloat64("pha.e"), v.GetFloat64("pha.i"), v.GetFloat64("pha.raan"), v.GetFloat64("pha.argp"), v.GetFloat64("pha.m0"), epoch, madness.Sun)
	}
	if err != nil {
		return Scenario{}, fmt.Errorf("pha: %w", err)
	}
	name := v.GetString("pha.name")
	if name == "" {
		name = "pha"
	}
	return Scenario{name, *o, start}, nil
}

func confReadET(v *viper.Viper, key string) (madness.ET, error) {
	if jde := v.GetFloat64(key + "_jde"); jde != 0 {
		return madness.ETFromJDE(jde), nil
	}
	if !v.IsSet(key) {
		return 0, fmt.Errorf("missing `%s`", key)
	}
	et, err := madness.ParseET(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("could not understand `%s`: %w", key, err)
	}
	return et, nil
}
