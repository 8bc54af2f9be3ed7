// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package ensemble

import (
	"math"
	"slices"
	"sort"

	"github.com/baptistehamon/nzlusdb/grid"
	"gonum.org/v1/gonum/stat"
)

// Robustness categories.
const (
	Robust = iota
	NoChange
	Conflicting
)

// CategoryNames are the names of the robustness categories,
// in the order of its flag values.
var CategoryNames = []string{
	"robust",
	"no_change_or_signal",
	"conflicting",
}

// Thresholds used to classify a change.
const (
	// ChangedFrac is the minimum fraction of realizations
	// with a significant change.
	ChangedFrac = 0.66

	// AgreeFrac is the minimum fraction of realizations
	// that must agree in the sign of the change.
	AgreeFrac = 0.8
)

// Fractions are the fractions of realizations
// that show a change between a reference
// and a future period.
type Fractions struct {
	// Number of valid realizations
	Valid int

	// Fraction of realizations
	// with a significant change
	Changed float64

	// Fraction of realizations
	// with a positive change
	Positive float64

	// Fraction of realizations
	// with a negative change
	Negative float64

	// Fraction of realizations
	// that agree in the sign of the change
	Agree float64
}

// Robustness returns the robustness fractions
// of a set of realizations,
// following the approach C of the IPCC AR6 atlas.
//
// For each realization,
// ref is the annual series of the reference period,
// at the given years,
// and fut the annual series of the future period.
// The change of a realization is significant
// if the difference between the future and reference means
// is larger than the variability threshold
// of the reference series
// (see Threshold).
//
// Realizations with an undefined change
// or threshold are not counted.
func Robustness(years []float64, ref, fut [][]float64) Fractions {
	var fr Fractions
	var changed, pos, neg int
	for r := range ref {
		delta := grid.NaNMean(fut[r]) - grid.NaNMean(ref[r])
		gamma := Threshold(years, ref[r])
		if math.IsNaN(delta) || math.IsNaN(gamma) {
			continue
		}
		fr.Valid++
		if math.Abs(delta) > gamma {
			changed++
		}
		if delta > 0 {
			pos++
		} else if delta < 0 {
			neg++
		}
	}
	if fr.Valid == 0 {
		nan := math.NaN()
		fr.Changed, fr.Positive, fr.Negative, fr.Agree = nan, nan, nan, nan
		return fr
	}

	n := float64(fr.Valid)
	fr.Changed = float64(changed) / n
	fr.Positive = float64(pos) / n
	fr.Negative = float64(neg) / n
	fr.Agree = math.Max(fr.Positive, fr.Negative)
	return fr
}

// Category returns the robustness category
// of a set of fractions.
// It returns NaN if there are no valid realizations.
func (fr Fractions) Category() float64 {
	switch {
	case fr.Valid == 0:
		return math.NaN()
	case fr.Changed >= ChangedFrac && fr.Agree < AgreeFrac:
		return Conflicting
	case fr.Changed >= ChangedFrac:
		return Robust
	}
	return NoChange
}

// Threshold returns the variability threshold
// of an annual series:
//
//	γ = sqrt(2/20) · 1.645 · σ
//
// where σ is the population standard deviation
// of the linearly detrended series.
// NaN values are ignored.
// It returns NaN if there are less than two valid values.
func Threshold(years, series []float64) float64 {
	x := make([]float64, 0, len(series))
	y := make([]float64, 0, len(series))
	for i, v := range series {
		if math.IsNaN(v) {
			continue
		}
		x = append(x, years[i])
		y = append(y, v)
	}
	if len(y) < 2 {
		return math.NaN()
	}

	alpha, beta := stat.LinearRegression(x, y, nil, false)
	for i := range y {
		y[i] -= alpha + beta*x[i]
	}
	_, v := stat.MeanVariance(y, nil)
	n := float64(len(y))
	v = v * (n - 1) / n
	return math.Sqrt(2.0/20) * 1.645 * math.Sqrt(v)
}

// Coefficient returns the robustness coefficient
// of Knutti & Sedláček (2013):
//
//	R = 1 - A1/A2
//
// where A1 is the integrated squared difference
// between the distribution of all future values
// and the distribution of the realization means,
// and A2 is the same difference
// between the reference series
// and the distribution of the realization means.
//
// Realizations without valid values are ignored.
// It returns NaN if there are no valid values
// or the reference distribution
// is the same as the distribution of the realization means.
func Coefficient(ref []float64, fut [][]float64) float64 {
	var all, means []float64
	for _, f := range fut {
		m := grid.NaNMean(f)
		if math.IsNaN(m) {
			continue
		}
		means = append(means, m)
		for _, v := range f {
			if !math.IsNaN(v) {
				all = append(all, v)
			}
		}
	}
	var rv []float64
	for _, v := range ref {
		if !math.IsNaN(v) {
			rv = append(rv, v)
		}
	}
	if len(means) == 0 || len(rv) == 0 {
		return math.NaN()
	}

	slices.Sort(all)
	slices.Sort(means)
	slices.Sort(rv)
	a2 := cdfArea(rv, means)
	if a2 == 0 {
		return math.NaN()
	}
	return 1 - cdfArea(all, means)/a2
}

// cdfArea returns the exact integral
// of the squared difference
// between the empirical distributions
// of two sorted samples.
func cdfArea(x1, x2 []float64) float64 {
	x := make([]float64, 0, len(x1)+len(x2))
	x = append(x, x1...)
	x = append(x, x2...)
	slices.Sort(x)

	var area float64
	for i := 0; i < len(x)-1; i++ {
		d := x[i+1] - x[i]
		if d == 0 {
			continue
		}
		y := ecdf(x1, x[i]) - ecdf(x2, x[i])
		area += d * y * y
	}
	return area
}

// ecdf returns the proportion of values
// of a sorted sample
// lesser or equal than v.
func ecdf(s []float64, v float64) float64 {
	n := sort.Search(len(s), func(i int) bool {
		return s[i] > v
	})
	return float64(n) / float64(len(s))
}
