// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package lsa implements a land suitability analysis
// for a land use.
//
// The analysis scores each criterion of the land use,
// aggregates the scores of each category
// (climate and soilTerrain)
// with a weighted geometric mean,
// and then aggregates both categories
// into the final suitability,
// weighting each category
// by the sum of the weights of its criteria.
//
// Climate scores are defined on a coarser grid
// and they are regridded onto the soil grid
// by nearest neighbour.
package lsa

import (
	"fmt"
	"strings"
	"sync"

	"github.com/baptistehamon/nzlusdb"
	"github.com/baptistehamon/nzlusdb/aggregate"
	"github.com/baptistehamon/nzlusdb/criteria"
	"github.com/baptistehamon/nzlusdb/grid"
)

// Names of the aggregated fields.
const (
	Climate     = "climate"
	SoilTerrain = "soilTerrain"
	Suitability = "suitability"
)

// A Loader loads the indicator of a criterion.
//
// Soil and terrain indicators do not depend on the scenario,
// and they are requested with an empty scenario.
// If model is not empty,
// climate indicators must be restricted to that model.
type Loader interface {
	Load(c criteria.Criterion, scenario, model string) (*grid.Field, error)
}

// An Analysis is a land suitability analysis
// for a land use at a given resolution.
type Analysis struct {
	// Set is the criteria of the land use.
	Set *criteria.Set

	// Resolution of the analysis.
	Resolution Resolution

	// Version of the database.
	Version string

	// Attrs are global attributes
	// copied into the outputs.
	Attrs map[string]string

	mu   sync.Mutex
	soil *soilScores
}

// soilScores are the scores of the soil and terrain criteria,
// that are shared by all scenarios.
type soilScores struct {
	scores   []*grid.Field
	agg      *grid.Field
	warnings []error
}

// New returns a new analysis.
func New(set *criteria.Set, res Resolution) *Analysis {
	return &Analysis{
		Set:        set,
		Resolution: res,
		Version:    nzlusdb.Version,
		Attrs:      make(map[string]string),
	}
}

// Run runs the analysis for a scenario.
// If model is not empty,
// it uses only that climate model.
//
// Soil and terrain scores are computed on the first run,
// and reused by later runs.
// Run can be called concurrently.
func (a *Analysis) Run(scenario, model string, ld Loader) (*grid.Dataset, error) {
	soil, err := a.soilTerrain(ld)
	if err != nil {
		return nil, err
	}

	clim := a.Set.ByCategory(criteria.Climate)
	scores, err := compute(clim, scenario, model, ld)
	if err != nil {
		return nil, fmt.Errorf("land use %q: scenario %q: %w", a.Set.LandUse, scenario, err)
	}
	warnings := append([]error{}, soil.warnings...)
	warnings = append(warnings, aggregate.Domain(scores, aggregate.WGMean)...)

	var climAgg *grid.Field
	if len(scores) > 0 {
		climAgg, err = aggregate.Aggregate(Climate, scores, aggregate.WGMean, weights(clim))
		if err != nil {
			return nil, fmt.Errorf("land use %q: scenario %q: %w", a.Set.LandUse, scenario, err)
		}
		climAgg.Attrs["long_name"] = "Climate suitability"
	}

	// regrid climate onto the soil grid
	if soil.agg != nil {
		for i, s := range scores {
			r, err := grid.Nearest(s, soil.agg)
			if err != nil {
				return nil, fmt.Errorf("land use %q: scenario %q: %w", a.Set.LandUse, scenario, err)
			}
			r.Attrs = s.Attrs
			scores[i] = r
		}
		if climAgg != nil {
			r, err := grid.Nearest(climAgg, soil.agg)
			if err != nil {
				return nil, fmt.Errorf("land use %q: scenario %q: %w", a.Set.LandUse, scenario, err)
			}
			r.Attrs = climAgg.Attrs
			climAgg = r
		}
	}

	var cats []*grid.Field
	var cw []float64
	if climAgg != nil {
		cats = append(cats, climAgg)
		cw = append(cw, a.Set.Weight(criteria.Climate))
	}
	if soil.agg != nil {
		cats = append(cats, soil.agg)
		cw = append(cw, a.Set.Weight(criteria.SoilTerrain))
	}
	suit, err := aggregate.Aggregate(Suitability, cats, aggregate.WGMean, cw)
	if err != nil {
		return nil, fmt.Errorf("land use %q: scenario %q: %w", a.Set.LandUse, scenario, err)
	}
	suit.Attrs["long_name"] = "Suitability"
	suit.Attrs["units"] = "1"

	ds := grid.NewDataset()
	for _, s := range soil.scores {
		ds.Add(s)
	}
	for _, s := range scores {
		ds.Add(s)
	}
	for _, f := range cats {
		ds.Add(f)
	}
	ds.Add(suit)
	ds.Warnings = warnings

	cd := a.Resolution.ClimateDataset()
	models := strings.Join(cd.Models, ", ")
	if model != "" {
		models = model
	}
	for k, v := range a.Attrs {
		ds.Attrs[k] = v
	}
	ds.Attrs["land_use"] = a.Set.LandUse
	ds.Attrs["long_name"] = a.Set.LongName + " Suitability"
	ds.Attrs["criteria"] = strings.Join(a.Set.Names(), ", ")
	ds.Attrs["scenario"] = scenario
	ds.Attrs["models"] = models
	ds.Attrs["resolution"] = string(a.Resolution)
	ds.Attrs["version"] = a.Version
	ds.Attrs["source"] = cd.Name
	return ds, nil
}

// soilTerrain returns the soil and terrain scores,
// computing them if they are not already computed.
func (a *Analysis) soilTerrain(ld Loader) (*soilScores, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.soil != nil {
		return a.soil, nil
	}

	soil := a.Set.ByCategory(criteria.SoilTerrain)
	scores, err := compute(soil, "", "", ld)
	if err != nil {
		return nil, fmt.Errorf("land use %q: %w", a.Set.LandUse, err)
	}
	ss := &soilScores{
		scores:   scores,
		warnings: aggregate.Domain(scores, aggregate.WGMean),
	}
	if len(scores) > 0 {
		agg, err := aggregate.Aggregate(SoilTerrain, scores, aggregate.WGMean, weights(soil))
		if err != nil {
			return nil, fmt.Errorf("land use %q: %w", a.Set.LandUse, err)
		}
		agg.Attrs["long_name"] = "Soil and terrain suitability"
		ss.agg = agg
	}
	a.soil = ss
	return ss, nil
}

func compute(cs []criteria.Criterion, scenario, model string, ld Loader) ([]*grid.Field, error) {
	scores := make([]*grid.Field, 0, len(cs))
	for _, c := range cs {
		ind, err := ld.Load(c, scenario, model)
		if err != nil {
			return nil, fmt.Errorf("criterion %q: %w", c.Name, err)
		}
		s, err := c.Bind(ind).Compute()
		if err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	return scores, nil
}

func weights(cs []criteria.Criterion) []float64 {
	w := make([]float64, len(cs))
	for i, c := range cs {
		w[i] = c.Weight
	}
	return w
}
