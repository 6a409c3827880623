package madness

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

const (
	// J2000 is the Julian ephemeris date of the ET origin.
	J2000 = 2451545.0
	// SecondsPerDay in the ephemeris time scale.
	SecondsPerDay = 86400.0
)

// ET is an ephemeris time: seconds past J2000 on a uniform time scale.
// The calendar conversions below ignore the TDB-UTC offset (about a minute),
// they are only used for reporting.
type ET float64

// ETFromTime converts a calendar time to ET.
func ETFromTime(dt time.Time) ET {
	return ET((julian.TimeToJD(dt.UTC()) - J2000) * SecondsPerDay)
}

// ETFromJDE converts a Julian ephemeris date to ET.
func ETFromJDE(jde float64) ET {
	return ET((jde - J2000) * SecondsPerDay)
}

// ParseET accepts either a number of seconds past J2000 or a calendar date.
func ParseET(s string) (ET, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return ET(v), nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if dt, err := time.Parse(layout, s); err == nil {
			return ETFromTime(dt), nil
		}
	}
	return 0, fmt.Errorf("%w: could not understand time '%s'", ErrInvalidParameter, s)
}

// Add returns the time shifted by the provided number of seconds.
func (t ET) Add(seconds float64) ET {
	return t + ET(seconds)
}

// Sub returns t - u in seconds.
func (t ET) Sub(u ET) float64 {
	return float64(t - u)
}

// JDE returns the Julian ephemeris date.
func (t ET) JDE() float64 {
	return J2000 + float64(t)/SecondsPerDay
}

// Time returns the calendar time in UTC.
func (t ET) Time() time.Time {
	return julian.JDToTime(t.JDE()).UTC()
}

// Calendar returns the date as "2029 APR 13 21:46:10".
func (t ET) Calendar() string {
	return strings.ToUpper(t.Time().Format("2006 Jan 02 15:04:05"))
}

// ISO returns the ISO 8601 date with the requested number of decimals on the seconds.
func (t ET) ISO(precision int) string {
	layout := "2006-01-02T15:04:05"
	if precision > 9 {
		precision = 9
	}
	if precision > 0 {
		layout += "." + strings.Repeat("0", precision)
	}
	return t.Time().Format(layout)
}

// String implements the Stringer interface.
func (t ET) String() string {
	return t.ISO(3)
}
