// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package grid

import (
	"fmt"
	"math"

	"github.com/baptistehamon/nzlusdb"
)

// blocks returns the number of cells before
// and after the given dimension.
func (f *Field) blocks(dim int) (outer, inner int) {
	outer, inner = 1, 1
	for i, a := range f.axes {
		switch {
		case i < dim:
			outer *= a.Len()
		case i > dim:
			inner *= a.Len()
		}
	}
	return outer, inner
}

// take returns a new field in which the axis dim
// is replaced by ax,
// and the coordinate j of ax
// takes the values of the coordinate idx[j]
// of the original axis.
// A negative index produces NaN.
func (f *Field) take(dim int, idx []int, ax Axis) *Field {
	axes := f.Axes()
	axes[dim] = ax
	out := New(f.Name, axes...)
	for k, v := range f.Attrs {
		out.Attrs[k] = v
	}

	outer, inner := f.blocks(dim)
	n := f.axes[dim].Len()
	src := f.data.Elements
	dst := out.data.Elements
	for o := 0; o < outer; o++ {
		for j, k := range idx {
			d := (o*len(idx) + j) * inner
			if k < 0 {
				for i := 0; i < inner; i++ {
					dst[d+i] = math.NaN()
				}
				continue
			}
			s := (o*n + k) * inner
			copy(dst[d:d+inner], src[s:s+inner])
		}
	}
	return out
}

func (f *Field) dimension(name string) (int, error) {
	d := f.Dim(name)
	if d < 0 {
		return 0, fmt.Errorf("field %q: axis %q not found: %w", f.Name, name, nzlusdb.ErrShape)
	}
	return d, nil
}

// SelectRange returns a new field
// with the coordinates of a numeric axis
// between min and max
// (inclusive).
func SelectRange(f *Field, name string, min, max float64) (*Field, error) {
	d, err := f.dimension(name)
	if err != nil {
		return nil, err
	}
	a := f.axes[d]
	if a.IsLabel() {
		return nil, fmt.Errorf("field %q: axis %q is not numeric: %w", f.Name, name, nzlusdb.ErrConfig)
	}

	var idx []int
	var vals []float64
	for i, v := range a.Values {
		if v < min || v > max {
			continue
		}
		idx = append(idx, i)
		vals = append(vals, v)
	}
	if len(idx) == 0 {
		return nil, fmt.Errorf("field %q: axis %q: no coordinates in [%g, %g]: %w", f.Name, name, min, max, nzlusdb.ErrConfig)
	}
	return f.take(d, idx, NewAxis(name, vals)), nil
}

// Select returns a new field
// with the coordinate i of the given axis,
// and without that axis.
func Select(f *Field, name string, i int) (*Field, error) {
	d, err := f.dimension(name)
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= f.axes[d].Len() {
		return nil, fmt.Errorf("field %q: axis %q: index %d out of range: %w", f.Name, name, i, nzlusdb.ErrShape)
	}

	t := f.take(d, []int{i}, NewAxis(name, []float64{0}))
	axes := append(t.Axes()[:d:d], t.axes[d+1:]...)
	out := New(f.Name, axes...)
	copy(out.data.Elements, t.data.Elements)
	for k, v := range f.Attrs {
		out.Attrs[k] = v
	}
	return out, nil
}

// SelectLabel returns a new field
// with the coordinate of the given axis
// with a given label,
// and without that axis.
func SelectLabel(f *Field, name, label string) (*Field, error) {
	d, err := f.dimension(name)
	if err != nil {
		return nil, err
	}
	a := f.axes[d]
	for i := 0; i < a.Len(); i++ {
		if a.Label(i) == label {
			return Select(f, name, i)
		}
	}
	return nil, fmt.Errorf("field %q: axis %q: label %q not found: %w", f.Name, name, label, nzlusdb.ErrConfig)
}

// Reduce returns a new field without the given axis
// in which each cell is the result of fn
// over the values along the axis.
// The slice passed to fn is reused between calls.
func Reduce(f *Field, name string, fn func(xs []float64) float64) (*Field, error) {
	d, err := f.dimension(name)
	if err != nil {
		return nil, err
	}
	axes := append(f.Axes()[:d:d], f.axes[d+1:]...)
	out := New(f.Name, axes...)
	for k, v := range f.Attrs {
		out.Attrs[k] = v
	}

	outer, inner := f.blocks(d)
	n := f.axes[d].Len()
	xs := make([]float64, n)
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			for k := 0; k < n; k++ {
				xs[k] = f.data.Elements[(o*n+k)*inner+i]
			}
			out.data.Elements[o*inner+i] = fn(xs)
		}
	}
	return out, nil
}

// Mean returns a new field with the mean
// along the given axis.
// NaN values are skipped.
func Mean(f *Field, name string) (*Field, error) {
	return Reduce(f, name, NaNMean)
}

// NaNMean returns the mean of the non-NaN values.
// If all values are NaN,
// it returns NaN.
func NaNMean(xs []float64) float64 {
	var sum float64
	var n int
	for _, x := range xs {
		if math.IsNaN(x) {
			continue
		}
		sum += x
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// Concat returns a new field
// with the fields joined along an existing axis.
// All other axes must be equal.
func Concat(name string, fields ...*Field) (*Field, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("concat on %q: no fields: %w", name, nzlusdb.ErrConfig)
	}
	first := fields[0]
	d, err := first.dimension(name)
	if err != nil {
		return nil, err
	}

	ax := Axis{Name: name}
	for _, f := range fields {
		if len(f.axes) != len(first.axes) {
			return nil, fmt.Errorf("concat on %q: fields %q and %q: %w", name, first.Name, f.Name, nzlusdb.ErrShape)
		}
		for i, a := range f.axes {
			if i == d {
				continue
			}
			if !a.Equal(first.axes[i]) {
				return nil, fmt.Errorf("concat on %q: fields %q and %q: axis %q: %w", name, first.Name, f.Name, a.Name, nzlusdb.ErrShape)
			}
		}
		a := f.axes[d]
		if a.Name != name || a.IsLabel() != first.axes[d].IsLabel() {
			return nil, fmt.Errorf("concat on %q: fields %q and %q: %w", name, first.Name, f.Name, nzlusdb.ErrShape)
		}
		if a.IsLabel() {
			ax.Labels = append(ax.Labels, a.Labels...)
		} else {
			ax.Values = append(ax.Values, a.Values...)
		}
	}

	axes := first.Axes()
	axes[d] = ax
	out := New(first.Name, axes...)
	for k, v := range first.Attrs {
		out.Attrs[k] = v
	}

	outer, inner := first.blocks(d)
	pos := 0
	for o := 0; o < outer; o++ {
		for _, f := range fields {
			sz := f.axes[d].Len() * inner
			copy(out.data.Elements[pos:pos+sz], f.data.Elements[o*sz:(o+1)*sz])
			pos += sz
		}
	}
	return out, nil
}

// Stack returns a new field
// with the fields joined along a new leading axis.
// All fields must have the same axes,
// and the axis must have a coordinate
// for each field.
func Stack(ax Axis, fields ...*Field) (*Field, error) {
	if len(fields) == 0 || ax.Len() != len(fields) {
		return nil, fmt.Errorf("stack on %q: %d coordinates for %d fields: %w", ax.Name, ax.Len(), len(fields), nzlusdb.ErrConfig)
	}
	first := fields[0]
	if first.Dim(ax.Name) >= 0 {
		return nil, fmt.Errorf("stack on %q: field %q already has the axis: %w", ax.Name, first.Name, nzlusdb.ErrShape)
	}
	for _, f := range fields[1:] {
		if err := SameGrid(first, f); err != nil {
			return nil, err
		}
	}

	axes := append([]Axis{ax}, first.axes...)
	out := New(first.Name, axes...)
	for k, v := range first.Attrs {
		out.Attrs[k] = v
	}
	sz := first.Len()
	for i, f := range fields {
		copy(out.data.Elements[i*sz:(i+1)*sz], f.data.Elements)
	}
	return out, nil
}

// Expand returns a field with a new leading axis
// of length one,
// if the field does not have an axis with that name.
// Otherwise it returns the same field.
func Expand(f *Field, ax Axis) (*Field, error) {
	if f.Dim(ax.Name) >= 0 {
		return f, nil
	}
	if ax.Len() != 1 {
		return nil, fmt.Errorf("expand %q: axis %q with %d coordinates: %w", f.Name, ax.Name, ax.Len(), nzlusdb.ErrConfig)
	}
	return Stack(ax, f)
}

// Transpose returns a new field
// with the axes in the given order.
// Axes not in the list are kept after the listed ones,
// in their original order.
func Transpose(f *Field, names ...string) (*Field, error) {
	perm := make([]int, 0, len(f.axes))
	used := make(map[int]bool, len(f.axes))
	for _, n := range names {
		d, err := f.dimension(n)
		if err != nil {
			return nil, err
		}
		if used[d] {
			return nil, fmt.Errorf("transpose %q: repeated axis %q: %w", f.Name, n, nzlusdb.ErrConfig)
		}
		used[d] = true
		perm = append(perm, d)
	}
	for d := range f.axes {
		if !used[d] {
			perm = append(perm, d)
		}
	}

	axes := make([]Axis, len(perm))
	for i, d := range perm {
		axes[i] = f.axes[d]
	}
	out := New(f.Name, axes...)
	for k, v := range f.Attrs {
		out.Attrs[k] = v
	}

	src := f.strides(axes)
	shape := out.Shape()
	idx := make([]int, len(shape))
	pos := 0
	for c := range out.data.Elements {
		out.data.Elements[c] = f.data.Elements[pos]
		for d := len(shape) - 1; d >= 0; d-- {
			idx[d]++
			pos += src[d]
			if idx[d] < shape[d] {
				break
			}
			pos -= src[d] * shape[d]
			idx[d] = 0
		}
	}
	return out, nil
}
