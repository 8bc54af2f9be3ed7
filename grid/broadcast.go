// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package grid

import (
	"fmt"

	"github.com/baptistehamon/nzlusdb"
)

// Broadcast returns the axes of the grid
// that spans all the given fields.
//
// Axes are matched by name.
// The axes of the field with more dimensions
// are used first,
// and any missing axis of the other fields
// is added at the end,
// in order of appearance.
// If two fields share an axis name
// with different coordinates,
// it returns an error.
func Broadcast(fields ...*Field) ([]Axis, error) {
	if len(fields) == 0 {
		return nil, nil
	}

	base := fields[0]
	for _, f := range fields[1:] {
		if len(f.axes) > len(base.axes) {
			base = f
		}
	}

	axes := base.Axes()
	for _, f := range fields {
		for _, a := range f.axes {
			found := false
			for _, b := range axes {
				if a.Name != b.Name {
					continue
				}
				found = true
				if !a.Equal(b) {
					return nil, fmt.Errorf("fields %q and %q: axis %q: %w", base.Name, f.Name, a.Name, nzlusdb.ErrShape)
				}
				break
			}
			if !found {
				axes = append(axes, a)
			}
		}
	}
	return axes, nil
}

// Apply returns a new field
// defined on the broadcast grid of the given fields
// in which the value of each cell
// is the result of fn.
// The slice xs holds the values of each field
// at the cell,
// in the same order as the fields;
// it is reused between calls.
func Apply(name string, fn func(xs []float64) float64, fields ...*Field) (*Field, error) {
	axes, err := Broadcast(fields...)
	if err != nil {
		return nil, err
	}
	out := New(name, axes...)

	shape := out.Shape()
	strides := make([][]int, len(fields))
	for i, f := range fields {
		strides[i] = f.strides(axes)
	}

	xs := make([]float64, len(fields))
	pos := make([]int, len(fields))
	idx := make([]int, len(shape))
	for c := range out.data.Elements {
		for i, f := range fields {
			xs[i] = f.data.Elements[pos[i]]
		}
		out.data.Elements[c] = fn(xs)

		// next cell
		for d := len(shape) - 1; d >= 0; d-- {
			idx[d]++
			for i := range fields {
				pos[i] += strides[i][d]
			}
			if idx[d] < shape[d] {
				break
			}
			for i := range fields {
				pos[i] -= strides[i][d] * shape[d]
			}
			idx[d] = 0
		}
	}
	return out, nil
}

// strides returns the step in the values of the field
// for a step in each of the given axes.
// Axes not in the field have a step of 0.
func (f *Field) strides(axes []Axis) []int {
	own := make(map[string]int, len(f.axes))
	step := 1
	for i := len(f.axes) - 1; i >= 0; i-- {
		own[f.axes[i].Name] = step
		step *= f.axes[i].Len()
	}

	st := make([]int, len(axes))
	for i, a := range axes {
		st[i] = own[a.Name]
	}
	return st
}
