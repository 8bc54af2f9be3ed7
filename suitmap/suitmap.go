// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package suitmap implements a map image
// for a lat-lon field,
// in a plate carrée (equirectangular) projection,
// with an optional hatching
// of the robustness categories of a change.
package suitmap

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/baptistehamon/nzlusdb"
	"github.com/baptistehamon/nzlusdb/ensemble"
	"github.com/baptistehamon/nzlusdb/grid"
)

// HatchStep is the distance in pixels
// between the lines of a hatch.
const HatchStep = 6

var (
	background = color.RGBA{255, 255, 255, 255}
	noData     = color.RGBA{211, 211, 211, 255}
	hatch      = color.RGBA{A: 255}
)

// An Image is a map of a lat-lon field.
type Image struct {
	// Range of values of the color scale.
	Min, Max float64

	// A Gradient color scheme
	Gradient Gradienter

	// If true,
	// cells with NaN values will be drawn
	// in light gray,
	// instead of the background color.
	ShowNaN bool

	name     string
	lat, lon grid.Axis
	field    []float64
	cats     []float64

	rows []int // lat index of each image row
	cols []int // lon index of each image column
}

// New creates a new image from a field
// with lat and lon axes.
// By default,
// the color scale uses the [0, 1] range.
func New(f *grid.Field, cols int) (*Image, error) {
	if len(f.Axes()) != 2 {
		return nil, fmt.Errorf("map %q: %d axes, want lat and lon: %w", f.Name, len(f.Axes()), nzlusdb.ErrShape)
	}
	if cols < 1 {
		return nil, fmt.Errorf("map %q: invalid number of columns %d: %w", f.Name, cols, nzlusdb.ErrConfig)
	}
	tf, err := grid.Transpose(f, grid.Lat, grid.Lon)
	if err != nil {
		return nil, fmt.Errorf("map %q: %w", f.Name, err)
	}

	axes := tf.Axes()
	lat, lon := axes[0].Values, axes[1].Values
	dLat, dLon := spacing(lat), spacing(lon)
	if dLat == 0 {
		dLat = dLon
	}
	if dLon == 0 {
		dLon = dLat
	}
	if dLat == 0 {
		dLat, dLon = 1, 1
	}

	west, east := extent(lon, dLon)
	south, north := extent(lat, dLat)
	step := (east - west) / float64(cols)
	nRows := int(math.Ceil((north-south)/step - 1e-9))

	img := &Image{
		Min:      0,
		Max:      1,
		Gradient: Iridescent{},
		name:     f.Name,
		lat:      axes[0],
		lon:      axes[1],
		field:    tf.Values(),
		rows:     make([]int, nRows),
		cols:     make([]int, cols),
	}
	for y := range img.rows {
		img.rows[y] = nearest(lat, north-(float64(y)+0.5)*step, dLat/2)
	}
	for x := range img.cols {
		img.cols[x] = nearest(lon, west+(float64(x)+0.5)*step, dLon/2)
	}
	return img, nil
}

// SetRobustness sets a field of robustness categories
// used to hatch the image.
// Cells with no change are hatched with diagonal lines,
// and cells with conflicting signals
// are cross hatched.
func (i *Image) SetRobustness(cats *grid.Field) error {
	if len(cats.Axes()) != 2 {
		return fmt.Errorf("map %q: robustness: %d axes, want lat and lon: %w", i.name, len(cats.Axes()), nzlusdb.ErrShape)
	}
	c, err := grid.Transpose(cats, grid.Lat, grid.Lon)
	if err != nil {
		return fmt.Errorf("map %q: robustness: %w", i.name, err)
	}
	axes := c.Axes()
	if !axes[0].Equal(i.lat) || !axes[1].Equal(i.lon) {
		return fmt.Errorf("map %q: robustness with a different grid: %w", i.name, nzlusdb.ErrShape)
	}
	i.cats = c.Values()
	return nil
}

func (i *Image) ColorModel() color.Model { return color.RGBAModel }
func (i *Image) Bounds() image.Rectangle { return image.Rect(0, 0, len(i.cols), len(i.rows)) }
func (i *Image) At(x, y int) color.Color {
	if x < 0 || x >= len(i.cols) || y < 0 || y >= len(i.rows) {
		return background
	}
	r, c := i.rows[y], i.cols[x]
	if r < 0 || c < 0 {
		return background
	}
	px := r*i.lon.Len() + c

	v := i.field[px]
	if math.IsNaN(v) {
		if i.ShowNaN {
			return noData
		}
		return background
	}

	if i.cats != nil {
		switch i.cats[px] {
		case ensemble.NoChange:
			if (x+y)%HatchStep == 0 {
				return hatch
			}
		case ensemble.Conflicting:
			if (x+y)%HatchStep == 0 || (x-y)%HatchStep == 0 {
				return hatch
			}
		}
	}

	scale := i.Max - i.Min
	if scale == 0 {
		return i.Gradient.Gradient(0)
	}
	return i.Gradient.Gradient((v - i.Min) / scale)
}

// extent returns the limits of an axis
// with cells centered on the coordinates.
func extent(v []float64, d float64) (min, max float64) {
	min, max = v[0], v[0]
	for _, x := range v {
		min = math.Min(min, x)
		max = math.Max(max, x)
	}
	return min - d/2, max + d/2
}

// nearest returns the index of the coordinate
// closest to a value,
// or -1 if the value is outside the cell.
func nearest(v []float64, x, half float64) int {
	idx := -1
	best := math.Inf(1)
	for i, c := range v {
		d := math.Abs(c - x)
		if d < best {
			best = d
			idx = i
		}
	}
	if best > half+1e-9 {
		return -1
	}
	return idx
}

func spacing(v []float64) float64 {
	if len(v) < 2 {
		return 0
	}
	return math.Abs(v[len(v)-1]-v[0]) / float64(len(v)-1)
}
