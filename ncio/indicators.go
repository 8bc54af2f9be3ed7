// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package ncio

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/baptistehamon/nzlusdb/criteria"
	"github.com/baptistehamon/nzlusdb/grid"
	"github.com/baptistehamon/nzlusdb/lsa"
)

// Indicators loads the indicators of the criteria
// from NetCDF files in a directory.
//
// Climate indicators are stored in files named
// "<file>_<scenario>_<climate resolution>.nc",
// and soil and terrain indicators
// in files named "<file>_NZ<resolution>.nc".
//
// The indicators of a projected scenario
// are joined with the historical indicators
// if the projection starts after the end of the historical series.
//
// Soil and terrain indicators,
// and historical climate indicators,
// are shared by all scenarios,
// so they are kept in memory after the first read.
// Projected climate indicators are read on each call.
type Indicators struct {
	// Dir is the directory with the indicator files.
	Dir string

	// Resolution of the analysis.
	Resolution lsa.Resolution

	// Historical is the name of the historical scenario.
	Historical string

	mu    sync.Mutex
	cache map[string]*grid.Field
}

// NewIndicators returns a new indicator loader.
func NewIndicators(dir string, res lsa.Resolution) *Indicators {
	return &Indicators{
		Dir:        dir,
		Resolution: res,
		Historical: lsa.Historical,
		cache:      make(map[string]*grid.Field),
	}
}

// Path returns the path of the indicator file
// of a criterion.
// Use an empty scenario for soil and terrain criteria.
func (ind *Indicators) Path(c criteria.Criterion, scenario string) string {
	if c.Category == criteria.SoilTerrain || scenario == "" {
		return filepath.Join(ind.Dir, fmt.Sprintf("%s_NZ%s.nc", c.File, ind.Resolution))
	}
	cd := ind.Resolution.ClimateDataset()
	return filepath.Join(ind.Dir, fmt.Sprintf("%s_%s_%s.nc", c.File, scenario, cd.Resolution))
}

// Load returns the indicator of a criterion.
// If model is not empty,
// only the realization of that model is returned.
func (ind *Indicators) Load(c criteria.Criterion, scenario, model string) (*grid.Field, error) {
	f, err := ind.read(c, scenario)
	if err != nil {
		return nil, err
	}

	if c.Category == criteria.Climate && scenario != ind.Historical {
		f, err = ind.joinHistorical(c, f)
		if err != nil {
			return nil, err
		}
	}

	if model != "" && f.Dim(grid.Realization) >= 0 {
		f, err = grid.SelectLabel(f, grid.Realization, model)
		if err != nil {
			return nil, fmt.Errorf("indicator %q: %w", c.Name, err)
		}
		f, err = grid.Expand(f, grid.LabelAxis(grid.Realization, []string{model}))
		if err != nil {
			return nil, fmt.Errorf("indicator %q: %w", c.Name, err)
		}
	}
	return f, nil
}

func (ind *Indicators) joinHistorical(c criteria.Criterion, f *grid.Field) (*grid.Field, error) {
	tAx, ok := f.Axis(grid.Time)
	if !ok || tAx.IsLabel() || tAx.Len() == 0 {
		return f, nil
	}

	h, err := ind.read(c, ind.Historical)
	if errors.Is(err, fs.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, err
	}
	hAx, ok := h.Axis(grid.Time)
	if !ok || hAx.IsLabel() || hAx.Len() == 0 {
		return f, nil
	}
	if hAx.Values[hAx.Len()-1] >= tAx.Values[0] {
		return f, nil
	}

	h, err = grid.Transpose(h, axesOrder(f)...)
	if err != nil {
		return nil, fmt.Errorf("indicator %q: %w", c.Name, err)
	}
	j, err := grid.Concat(grid.Time, h, f)
	if err != nil {
		return nil, fmt.Errorf("indicator %q: %w", c.Name, err)
	}
	j.Attrs = f.Attrs
	return j, nil
}

func axesOrder(f *grid.Field) []string {
	var names []string
	for _, a := range f.Axes() {
		names = append(names, a.Name)
	}
	return names
}

func (ind *Indicators) read(c criteria.Criterion, scenario string) (*grid.Field, error) {
	path := ind.Path(c, scenario)
	if c.Category == criteria.Climate && scenario != "" && scenario != ind.Historical {
		f, err := Read(path, c.Variable)
		if err != nil {
			return nil, fmt.Errorf("indicator %q: %w", c.Name, err)
		}
		return f, nil
	}
	key := path + ":" + c.Variable

	ind.mu.Lock()
	defer ind.mu.Unlock()
	if ind.cache == nil {
		ind.cache = make(map[string]*grid.Field)
	}
	if f, ok := ind.cache[key]; ok {
		return f, nil
	}

	f, err := Read(path, c.Variable)
	if err != nil {
		return nil, fmt.Errorf("indicator %q: %w", c.Name, err)
	}
	ind.cache[key] = f
	return f, nil
}
