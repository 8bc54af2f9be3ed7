// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package criteria implements the criteria
// of a land suitability analysis.
//
// A criterion links an indicator
// (for example the growing degree days,
// or the soil drainage class)
// with a standardisation curve,
// a weight,
// and a category.
package criteria

import (
	"fmt"
	"math"
	"strings"

	"github.com/baptistehamon/nzlusdb"
	"github.com/baptistehamon/nzlusdb/grid"
	"github.com/baptistehamon/nzlusdb/standard"
)

// Category is the category of a criterion.
type Category string

// Valid categories.
const (
	Climate     Category = "climate"
	SoilTerrain Category = "soilTerrain"
)

// Categories returns the valid categories
// in the order used in outputs.
func Categories() []Category {
	return []Category{Climate, SoilTerrain}
}

// ParseCategory returns a category from its name.
func ParseCategory(name string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "climate":
		return Climate, nil
	case "soilterrain", "soil", "terrain":
		return SoilTerrain, nil
	}
	return "", fmt.Errorf("unknown category %q: %w", name, nzlusdb.ErrConfig)
}

// A Criterion is a criterion
// of a land suitability analysis.
type Criterion struct {
	// Name is the short name of the criterion
	// (for example "tas_gs_gdd").
	Name string

	// LongName is a descriptive name.
	LongName string

	// Category of the criterion.
	Category Category

	// Weight of the criterion
	// in the aggregation of its category.
	Weight float64

	// Curve used to standardise the indicator.
	// It is nil for computed criteria.
	Curve standard.Curve

	// If Computed is true,
	// the indicator is already a score.
	Computed bool

	// Clip is the range of valid indicator values.
	// If nil,
	// the indicator is not clipped.
	Clip *Clip

	// Since converts a day of the year indicator
	// into days since a date.
	// If nil,
	// the indicator is used as is.
	Since *Since

	// File is the prefix of the indicator file.
	File string

	// Variable is the name of the indicator
	// in the file.
	// If empty,
	// the file must have a single variable.
	Variable string

	indicator *grid.Field
}

// Validate returns an error
// if the criterion is not valid.
func (c Criterion) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("criterion without name: %w", nzlusdb.ErrConfig)
	}
	if c.Category != Climate && c.Category != SoilTerrain {
		return fmt.Errorf("criterion %q: invalid category %q: %w", c.Name, c.Category, nzlusdb.ErrConfig)
	}
	if !(c.Weight > 0) || math.IsInf(c.Weight, 0) {
		return fmt.Errorf("criterion %q: invalid weight %g: %w", c.Name, c.Weight, nzlusdb.ErrConfig)
	}
	if c.Computed == (c.Curve != nil) {
		return fmt.Errorf("criterion %q: expecting either a curve or a computed score: %w", c.Name, nzlusdb.ErrConfig)
	}
	if c.Clip != nil && !(c.Clip.Min <= c.Clip.Max) {
		return fmt.Errorf("criterion %q: invalid clip [%g, %g]: %w", c.Name, c.Clip.Min, c.Clip.Max, nzlusdb.ErrConfig)
	}
	return nil
}

// Bind returns a copy of the criterion
// bound to the given indicator.
// The pre-processing of the criterion
// (day conversion and then clip)
// is applied to a copy of the indicator.
func (c Criterion) Bind(ind *grid.Field) Criterion {
	if c.Since != nil {
		ind = c.Since.field(ind)
		ind.Attrs["units"] = "days since " + c.Since.String()
	}
	if c.Clip != nil {
		attrs := ind.Attrs
		ind = ind.Map(ind.Name, c.Clip.apply)
		for k, v := range attrs {
			ind.Attrs[k] = v
		}
	}
	c.indicator = ind
	return c
}

// Indicator returns the bound indicator,
// or nil if the criterion is unbound.
func (c Criterion) Indicator() *grid.Field {
	return c.indicator
}

// Compute returns the scores of the criterion.
func (c Criterion) Compute() (*grid.Field, error) {
	if c.indicator == nil {
		return nil, fmt.Errorf("criterion %q: %w", c.Name, nzlusdb.ErrUnbound)
	}

	var s *grid.Field
	if c.Computed {
		s = c.indicator.Copy()
	} else {
		var err error
		s, err = standard.Apply(c.Curve, c.indicator)
		if err != nil {
			return nil, fmt.Errorf("criterion %q: %w", c.Name, err)
		}
	}
	s.Name = c.Name
	s.Attrs = map[string]string{
		"long_name": c.LongName + " suitability",
		"units":     "1",
		"category":  string(c.Category),
		"weight":    fmt.Sprintf("%g", c.Weight),
	}
	if c.Curve != nil {
		s.Attrs["func"] = c.Curve.Name()
		s.Attrs["func_params"] = c.Curve.Params()
	}
	return s, nil
}
