// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package stats implements area statistics
// of suitability fields.
//
// For each time key of a field,
// the area of the valid cells is distributed
// in ten bins of suitability
// ([0, 0.1), [0.1, 0.2), ..., [0.9, 1]),
// and the area weighted mean,
// standard deviation,
// and median are computed.
package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/baptistehamon/nzlusdb"
	"github.com/baptistehamon/nzlusdb/ensemble"
	"github.com/baptistehamon/nzlusdb/grid"
	"github.com/js-arias/earth"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Bins are the limits of the suitability bins.
var Bins = []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1}

// Row are the statistics of a time key.
type Row struct {
	Key      string
	Period   string
	Scenario string

	// Number of valid cells
	Cells int

	// Area of the valid cells
	// in km².
	Area float64

	Mean   float64
	StdDev float64
	Median float64

	// Area of each suitability bin
	// in km².
	Bins []float64
}

// Summary is a collection of statistics
// of a field.
type Summary struct {
	Variable string
	Rows     []Row
}

// Options are the options for the statistics.
type Options struct {
	// CellArea is the area of each cell in km².
	// If zero,
	// the area of each cell
	// is calculated on a spherical Earth.
	CellArea float64

	// Mask is a lat-lon field.
	// Only cells with a non-zero, non-NaN value
	// in the mask are used.
	Mask *grid.Field
}

// Compute returns the area statistics of a field.
// The field must have lat and lon axes,
// and at most another axis,
// used as the time key.
// Values outside the range [0, 1] are ignored.
func Compute(f *grid.Field, opt Options) (*Summary, error) {
	latAx, okLat := f.Axis(grid.Lat)
	lonAx, okLon := f.Axis(grid.Lon)
	if !okLat || !okLon {
		return nil, fmt.Errorf("stats %q: without lat-lon axes: %w", f.Name, nzlusdb.ErrShape)
	}

	var key grid.Axis
	var err error
	switch len(f.Axes()) {
	case 2:
		f, err = grid.Transpose(f, grid.Lat, grid.Lon)
	case 3:
		for _, ax := range f.Axes() {
			if ax.Name != grid.Lat && ax.Name != grid.Lon {
				key = ax
			}
		}
		f, err = grid.Transpose(f, key.Name, grid.Lat, grid.Lon)
	default:
		return nil, fmt.Errorf("stats %q: %d axes: %w", f.Name, len(f.Axes()), nzlusdb.ErrShape)
	}
	if err != nil {
		return nil, fmt.Errorf("stats %q: %w", f.Name, err)
	}

	areas := CellAreas(latAx, lonAx)
	if opt.CellArea > 0 {
		for i := range areas {
			areas[i] = opt.CellArea
		}
	}
	if opt.Mask != nil {
		m, err := grid.Transpose(opt.Mask, grid.Lat, grid.Lon)
		if err != nil {
			return nil, fmt.Errorf("stats %q: mask: %w", f.Name, err)
		}
		ax := m.Axes()
		if !ax[0].Equal(latAx) || !ax[1].Equal(lonAx) {
			return nil, fmt.Errorf("stats %q: mask with a different grid: %w", f.Name, nzlusdb.ErrShape)
		}
		for i, v := range m.Values() {
			if math.IsNaN(v) || v == 0 {
				areas[i] = 0
			}
		}
	}

	nKeys := 1
	if key.Name != "" {
		nKeys = key.Len()
	}
	nCells := len(areas)
	vals := f.Values()

	s := &Summary{Variable: f.Name}
	for k := 0; k < nKeys; k++ {
		r := newRow(vals[k*nCells:(k+1)*nCells], areas)
		if key.Name != "" {
			r.Key = key.Label(k)
			if pk, err := ensemble.ParseKey(r.Key); err == nil {
				r.Period = pk.Period.String()
				r.Scenario = pk.Scenario
			}
		}
		s.Rows = append(s.Rows, r)
	}
	return s, nil
}

func newRow(vals, areas []float64) Row {
	var xs, ws []float64
	for i, v := range vals {
		if math.IsNaN(v) || areas[i] == 0 {
			continue
		}
		if v < Bins[0] || v > Bins[len(Bins)-1] {
			continue
		}
		xs = append(xs, v)
		ws = append(ws, areas[i])
	}
	sort.Sort(byValue{xs, ws})

	// the last bin includes its upper limit
	div := make([]float64, len(Bins))
	copy(div, Bins)
	div[len(div)-1] = math.Nextafter(Bins[len(Bins)-1], math.Inf(1))

	r := Row{
		Cells: len(xs),
		Area:  floats.Sum(ws),
		Bins:  stat.Histogram(nil, div, xs, ws),
	}
	if len(xs) == 0 {
		r.Mean = math.NaN()
		r.StdDev = math.NaN()
		r.Median = math.NaN()
		return r
	}
	r.Mean = stat.Mean(xs, ws)
	r.StdDev = math.Sqrt(stat.Moment(2, xs, ws))
	r.Median = stat.Quantile(0.5, stat.Empirical, xs, ws)
	return r
}

type byValue struct {
	xs, ws []float64
}

func (b byValue) Len() int           { return len(b.xs) }
func (b byValue) Less(i, j int) bool { return b.xs[i] < b.xs[j] }
func (b byValue) Swap(i, j int) {
	b.xs[i], b.xs[j] = b.xs[j], b.xs[i]
	b.ws[i], b.ws[j] = b.ws[j], b.ws[i]
}

// CellAreas returns the area,
// in km²,
// of each cell of a regular lat-lon grid
// on a spherical Earth.
// Cells are in lat-lon order.
func CellAreas(lat, lon grid.Axis) []float64 {
	dLat := spacing(lat.Values) * math.Pi / 180
	dLon := spacing(lon.Values) * math.Pi / 180
	r := earth.Radius / 1000.0

	areas := make([]float64, 0, lat.Len()*lon.Len())
	for _, l := range lat.Values {
		phi := l * math.Pi / 180
		south := math.Max(phi-dLat/2, -math.Pi/2)
		north := math.Min(phi+dLat/2, math.Pi/2)
		a := r * r * dLon * (math.Sin(north) - math.Sin(south))
		for range lon.Values {
			areas = append(areas, a)
		}
	}
	return areas
}

// spacing returns the mean distance
// between consecutive coordinates.
func spacing(v []float64) float64 {
	if len(v) < 2 {
		return 0
	}
	return math.Abs(v[len(v)-1]-v[0]) / float64(len(v)-1)
}
