// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package grid

import (
	"fmt"
	"math"

	"github.com/baptistehamon/nzlusdb"
)

// Nearest returns a new field
// with the values of f
// in the latitude and longitude coordinates
// of the target field,
// using the nearest neighbour
// of each coordinate.
//
// Target coordinates farther than half a cell
// from the coordinate range of f
// are set to NaN.
func Nearest(f, target *Field) (*Field, error) {
	lat, ok := target.Axis(Lat)
	if !ok {
		return nil, fmt.Errorf("regrid %q: target %q without %q axis: %w", f.Name, target.Name, Lat, nzlusdb.ErrShape)
	}
	lon, ok := target.Axis(Lon)
	if !ok {
		return nil, fmt.Errorf("regrid %q: target %q without %q axis: %w", f.Name, target.Name, Lon, nzlusdb.ErrShape)
	}

	out := f
	for _, ax := range []Axis{lat, lon} {
		d, err := out.dimension(ax.Name)
		if err != nil {
			return nil, err
		}
		src := out.axes[d]
		if src.Equal(ax) {
			continue
		}
		if src.IsLabel() || ax.IsLabel() {
			return nil, fmt.Errorf("regrid %q: axis %q is not numeric: %w", f.Name, ax.Name, nzlusdb.ErrShape)
		}
		out = out.take(d, nearestIndex(src.Values, ax.Values), ax.clone())
	}
	if out == f {
		out = f.Copy()
	}
	return out, nil
}

// nearestIndex returns the index of the nearest source coordinate
// for each target coordinate.
func nearestIndex(src, tgt []float64) []int {
	idx := make([]int, len(tgt))
	if len(src) == 0 {
		for i := range idx {
			idx[i] = -1
		}
		return idx
	}

	lo, hi := src[0], src[0]
	for _, v := range src {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	var half float64
	if len(src) > 1 {
		half = (hi - lo) / float64(len(src)-1) / 2
	}
	lo -= half
	hi += half

	for i, t := range tgt {
		if t < lo || t > hi {
			idx[i] = -1
			continue
		}
		best, dist := 0, math.Inf(1)
		for j, v := range src {
			if d := math.Abs(v - t); d < dist {
				best, dist = j, d
			}
		}
		idx[i] = best
	}
	return idx
}
