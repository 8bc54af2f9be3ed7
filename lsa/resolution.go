// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package lsa

import (
	"fmt"
	"strings"

	"github.com/baptistehamon/nzlusdb"
)

// Resolution is the spatial resolution
// of an analysis.
type Resolution string

// Valid resolutions.
const (
	Res1km Resolution = "1km"
	Res5km Resolution = "5km"
)

// ParseResolution returns a resolution from its name.
func ParseResolution(s string) (Resolution, error) {
	r := Resolution(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case Res1km, Res5km:
		return r, nil
	}
	return "", fmt.Errorf("unknown resolution %q: %w", s, nzlusdb.ErrConfig)
}

// Scenario names.
const (
	Historical = "historical"
	SSP126     = "ssp126"
	SSP245     = "ssp245"
	SSP370     = "ssp370"
	SSP585     = "ssp585"
)

// A ClimateDataset is the source of the climate indicators
// used at a resolution.
type ClimateDataset struct {
	// Name of the dataset
	Name string

	// Resolution of the climate indicators
	Resolution string

	// Climate models
	// (realizations)
	// of the dataset
	Models []string

	// Historical scenario
	Historical string

	// Projected scenarios
	Projections []string
}

// Source returns the description of the dataset
// stored in the output attributes.
func (cd ClimateDataset) Source() string {
	return cd.Name + ": " + strings.Join(cd.Models, ", ")
}

// Scenarios returns all scenarios of the dataset,
// starting with the historical scenario.
func (cd ClimateDataset) Scenarios() []string {
	return append([]string{cd.Historical}, cd.Projections...)
}

// ClimateDataset returns the climate dataset
// used at a resolution.
//
// The 5 km analysis uses the 25 km NEX-GDDP-CMIP6 data,
// and the 1 km analysis uses the 5 km NIWA downscaled data.
func (r Resolution) ClimateDataset() ClimateDataset {
	projections := []string{SSP126, SSP245, SSP370, SSP585}
	if r == Res1km {
		return ClimateDataset{
			Name:        "NIWA CMIP6 Downscaling",
			Resolution:  "5km",
			Models:      []string{"ACCESS-CM2", "AWI-CM-1-1-MR", "CNRM-CM6-1", "EC-Earth3", "GFDL-ESM4", "NorESM2-MM"},
			Historical:  Historical,
			Projections: projections,
		}
	}
	return ClimateDataset{
		Name:        "NEX-GDDP-CMIP6",
		Resolution:  "25km",
		Models:      []string{"ACCESS-CM2", "CNRM-CM6-1", "EC-Earth3", "GFDL-ESM4", "NorESM2-MM"},
		Historical:  Historical,
		Projections: projections,
	}
}

// PerModel returns true if the analysis at the resolution
// is run for each climate model independently.
func (r Resolution) PerModel() bool {
	return r == Res1km
}

// CellArea returns the nominal area of a cell,
// in km²,
// i.e., the square of the resolution.
func (r Resolution) CellArea() float64 {
	switch r {
	case Res1km:
		return 1
	case Res5km:
		return 25
	}
	return 0
}
