// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package criteria

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/baptistehamon/nzlusdb"
	"github.com/baptistehamon/nzlusdb/grid"
)

// Clip is a pre-processing of an indicator
// that limits its values to a range.
type Clip struct {
	Min, Max float64
}

// NoClip is a clip without limits.
var NoClip = Clip{Min: math.Inf(-1), Max: math.Inf(1)}

func (c Clip) apply(x float64) float64 {
	if math.IsNaN(x) {
		return x
	}
	return math.Min(math.Max(x, c.Min), c.Max)
}

// Since is a pre-processing of a day of the year indicator
// that converts it into the number of days
// since a date of the season start
// (for example, days since November 1st).
// Days before the date are counted
// in the following year.
type Since struct {
	Month time.Month
	Day   int
}

// ParseSince parses a date in the form "MM-DD".
func ParseSince(s string) (Since, error) {
	m, d, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return Since{}, fmt.Errorf("date %q: expecting MM-DD: %w", s, nzlusdb.ErrConfig)
	}
	mm, err := strconv.Atoi(m)
	if err != nil || mm < 1 || mm > 12 {
		return Since{}, fmt.Errorf("date %q: invalid month: %w", s, nzlusdb.ErrConfig)
	}
	dd, err := strconv.Atoi(d)
	if err != nil || dd < 1 || dd > 31 {
		return Since{}, fmt.Errorf("date %q: invalid day: %w", s, nzlusdb.ErrConfig)
	}
	// a non leap year
	t := time.Date(2001, time.Month(mm), dd, 0, 0, 0, 0, time.UTC)
	if t.Month() != time.Month(mm) {
		return Since{}, fmt.Errorf("date %q: invalid day: %w", s, nzlusdb.ErrConfig)
	}
	return Since{Month: time.Month(mm), Day: dd}, nil
}

// String returns the date in the form "MM-DD".
func (s Since) String() string {
	return fmt.Sprintf("%02d-%02d", int(s.Month), s.Day)
}

// Days returns the number of days
// from the date to a day of the year,
// in the given year
// of the standard calendar.
func (s Since) Days(doy float64, year int) float64 {
	if math.IsNaN(doy) {
		return doy
	}
	start := time.Date(year, s.Month, s.Day, 0, 0, 0, 0, time.UTC).YearDay()
	n := 365.0
	if time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay() == 366 {
		n = 366
	}
	d := math.Mod(doy-float64(start), n)
	if d < 0 {
		d += n
	}
	return d
}

// field applies the day conversion to a field.
// If the field has a time axis in years,
// the year of each value is used;
// otherwise values are taken from a non leap year.
func (s Since) field(f *grid.Field) *grid.Field {
	const noLeap = 2001

	out := f.Copy()
	vals := out.Values()

	d := f.Dim(grid.Time)
	tAx, _ := f.Axis(grid.Time)
	if d < 0 || tAx.IsLabel() {
		for i, v := range vals {
			vals[i] = s.Days(v, noLeap)
		}
		return out
	}

	inner := 1
	for _, n := range f.Shape()[d+1:] {
		inner *= n
	}
	nt := tAx.Len()
	for i, v := range vals {
		y := int(tAx.Values[(i/inner)%nt])
		vals[i] = s.Days(v, y)
	}
	return out
}
