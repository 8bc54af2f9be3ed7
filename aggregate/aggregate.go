// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package aggregate implements the aggregation
// of several score fields into a single field.
//
// Fields are aligned by axis name
// (a field without an axis is repeated along it).
// If any input is NaN at a cell,
// the output is NaN at that cell.
package aggregate

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/baptistehamon/nzlusdb"
	"github.com/baptistehamon/nzlusdb/grid"
	"gonum.org/v1/gonum/floats"
)

// Method is an aggregation method.
type Method string

// Valid aggregation methods.
const (
	// Mean is the arithmetic mean.
	Mean Method = "mean"

	// WMean is the weighted arithmetic mean.
	WMean Method = "wmean"

	// GMean is the geometric mean.
	GMean Method = "gmean"

	// WGMean is the weighted geometric mean.
	// It is the default method.
	WGMean Method = "wgmean"

	// Median is the median.
	Median Method = "median"

	// LimFactor is the limiting factor
	// (i.e. the minimum).
	LimFactor Method = "limfactor"
)

// Default is the default aggregation method.
const Default = WGMean

// ParseMethod returns a method from its name.
// An empty name returns the default method.
func ParseMethod(name string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(name)))
	switch m {
	case "":
		return Default, nil
	case Mean, WMean, GMean, WGMean, Median, LimFactor:
		return m, nil
	}
	return "", fmt.Errorf("unknown aggregation method %q: %w", name, nzlusdb.ErrConfig)
}

// Geometric returns true if the method
// is defined only for non-negative values.
func (m Method) Geometric() bool {
	return m == GMean || m == WGMean
}

// Aggregate returns a new field with the aggregation
// of the given fields.
//
// Weights are used by wmean and wgmean,
// if weights is nil,
// all fields will have the same weight.
// Otherwise it must have a positive weight for each field.
func Aggregate(name string, fields []*grid.Field, m Method, weights []float64) (*grid.Field, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("aggregate %q: no fields: %w", name, nzlusdb.ErrConfig)
	}
	if weights == nil {
		weights = make([]float64, len(fields))
		for i := range weights {
			weights[i] = 1
		}
	}
	if len(weights) != len(fields) {
		return nil, fmt.Errorf("aggregate %q: %d weights for %d fields: %w", name, len(weights), len(fields), nzlusdb.ErrConfig)
	}
	for i, w := range weights {
		if !(w > 0) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("aggregate %q: field %q: invalid weight %g: %w", name, fields[i].Name, w, nzlusdb.ErrConfig)
		}
	}

	var fn func(xs []float64) float64
	switch m {
	case Mean:
		fn = mean
	case WMean:
		fn = wmean(weights)
	case GMean:
		fn = gmean
	case WGMean:
		fn = wgmean(weights)
	case Median:
		fn = median
	case LimFactor:
		fn = limfactor
	default:
		return nil, fmt.Errorf("aggregate %q: unknown method %q: %w", name, m, nzlusdb.ErrConfig)
	}

	out, err := grid.Apply(name, func(xs []float64) float64 {
		if floats.HasNaN(xs) {
			return math.NaN()
		}
		if m.Geometric() && floats.Min(xs) < 0 {
			return math.NaN()
		}
		return fn(xs)
	}, fields...)
	if err != nil {
		return nil, fmt.Errorf("aggregate %q: %w", name, err)
	}
	return out, nil
}

func mean(xs []float64) float64 {
	return floats.Sum(xs) / float64(len(xs))
}

func wmean(weights []float64) func([]float64) float64 {
	sum := floats.Sum(weights)
	return func(xs []float64) float64 {
		return floats.Dot(xs, weights) / sum
	}
}

func gmean(xs []float64) float64 {
	e := 1 / float64(len(xs))
	p := 1.0
	for _, x := range xs {
		p *= math.Pow(x, e)
	}
	return p
}

func wgmean(weights []float64) func([]float64) float64 {
	sum := floats.Sum(weights)
	exp := make([]float64, len(weights))
	for i, w := range weights {
		exp[i] = w / sum
	}
	return func(xs []float64) float64 {
		p := 1.0
		for i, x := range xs {
			p *= math.Pow(x, exp[i])
		}
		return p
	}
}

func median(xs []float64) float64 {
	s := slices.Clone(xs)
	slices.Sort(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

func limfactor(xs []float64) float64 {
	return floats.Min(xs)
}

// A DomainError reports the number of negative values
// found in the inputs of a geometric method.
type DomainError struct {
	Method Method
	Field  string
	Cells  int
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: field %q: %d negative cells", e.Method, e.Field, e.Cells)
}

func (e *DomainError) Unwrap() error {
	return nzlusdb.ErrDomain
}

// Domain checks that the fields are in the domain
// of the method.
// Geometric methods are only defined for non-negative values;
// for each field with negative values
// it returns a DomainError.
// The aggregation of such cells is NaN.
func Domain(fields []*grid.Field, m Method) []error {
	if !m.Geometric() {
		return nil
	}

	var errs []error
	for _, f := range fields {
		var n int
		for _, v := range f.Values() {
			if v < 0 {
				n++
			}
		}
		if n > 0 {
			errs = append(errs, &DomainError{Method: m, Field: f.Name, Cells: n})
		}
	}
	return errs
}
