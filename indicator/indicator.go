// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package indicator implements crop specific climate indicators
// used as criteria of a land suitability analysis.
package indicator

import (
	"fmt"
	"math"

	"github.com/baptistehamon/nzlusdb"
	"github.com/baptistehamon/nzlusdb/grid"
	"github.com/baptistehamon/nzlusdb/standard"
)

// Names of the sub-annual axes.
const (
	Day  = "day"
	Hour = "hour"
)

// Survival returns the survival over a season
// from a series of daily values:
//
//	S = Π (1 - (1 - f(x)) · w)
//
// where f is the daily survival given by a curve,
// and w is the weight of the day.
// If weights is nil,
// all days have a weight of 1.
// If any value is NaN,
// it returns NaN.
func Survival(daily, weights []float64, c standard.Curve) (float64, error) {
	if weights != nil && len(weights) != len(daily) {
		return 0, fmt.Errorf("survival: %d weights for %d days: %w", len(weights), len(daily), nzlusdb.ErrConfig)
	}

	s := 1.0
	for i, x := range daily {
		if math.IsNaN(x) {
			return math.NaN(), nil
		}
		f, err := c.Eval(x)
		if err != nil {
			return 0, fmt.Errorf("survival: %w", err)
		}
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		s *= 1 - (1-f)*w
	}
	return s, nil
}

// SurvivalField returns the survival of a field
// with a daily axis,
// reducing the daily axis.
func SurvivalField(name string, f *grid.Field, weights []float64, c standard.Curve) (*grid.Field, error) {
	var sErr error
	out, err := grid.Reduce(f, Day, func(xs []float64) float64 {
		if sErr != nil {
			return math.NaN()
		}
		s, err := Survival(xs, weights, c)
		if err != nil {
			sErr = err
			return math.NaN()
		}
		return s
	})
	if err != nil {
		return nil, fmt.Errorf("survival %q: %w", name, err)
	}
	if sErr != nil {
		return nil, fmt.Errorf("survival %q: %w", name, sErr)
	}
	out.Name = name
	out.Attrs = map[string]string{
		"long_name": "Survival",
		"units":     "1",
		"func":      c.Name(),
	}
	return out, nil
}

// DayFullBloom returns the day of the year of full bloom
// from the mean maximum temperature
// of August and September.
func DayFullBloom(tmax float64) float64 {
	return math.RoundToEven(367 - 5.5*tmax)
}

// DayBudbreak returns the day of the year of budbreak
// from the mean temperature
// of May to July.
func DayBudbreak(tmean float64) float64 {
	return math.RoundToEven(math.Min(335, 225+math.Exp(0.267*tmean)))
}

// ChillingHours returns the number of hours
// with a temperature t in the range low < t ≤ high.
// Hours without data are ignored,
// and if there is no data at all,
// it returns NaN.
func ChillingHours(hourly []float64, low, high float64) float64 {
	var n, valid int
	for _, t := range hourly {
		if math.IsNaN(t) {
			continue
		}
		valid++
		if t > low && t <= high {
			n++
		}
	}
	if valid == 0 {
		return math.NaN()
	}
	return float64(n)
}

// ChillingField returns the chilling hours of a field
// with an hourly axis,
// reducing the hourly axis.
func ChillingField(name string, f *grid.Field, low, high float64) (*grid.Field, error) {
	out, err := grid.Reduce(f, Hour, func(xs []float64) float64 {
		return ChillingHours(xs, low, high)
	})
	if err != nil {
		return nil, fmt.Errorf("chilling hours %q: %w", name, err)
	}
	out.Name = name
	out.Attrs = map[string]string{
		"long_name": "Chilling hours",
		"units":     "h",
	}
	return out, nil
}
