// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package grid implements labelled N-dimensional fields
// of float64 values.
//
// A field is a dense array
// in which each dimension is an axis
// with a name
// (for example lat, lon, time, realization, or scenario)
// and its coordinates.
// Missing values are stored as NaN.
//
// Operations on fields never modify their inputs,
// they always return a new field.
package grid

import (
	"fmt"
	"math"
	"strconv"

	"github.com/baptistehamon/nzlusdb"
	"github.com/ctessum/sparse"
)

// Common axis names.
const (
	Lat         = "lat"
	Lon         = "lon"
	Time        = "time"
	Realization = "realization"
	Scenario    = "scenario"
)

// An Axis is a named dimension of a field.
//
// An axis has either numeric coordinates
// (Values)
// or categorical coordinates
// (Labels).
type Axis struct {
	Name   string
	Values []float64
	Labels []string
}

// NewAxis returns an axis with numeric coordinates.
func NewAxis(name string, values []float64) Axis {
	return Axis{Name: name, Values: values}
}

// LabelAxis returns an axis with categorical coordinates.
func LabelAxis(name string, labels []string) Axis {
	return Axis{Name: name, Labels: labels}
}

// Years returns a time axis
// with a coordinate for each year
// between first and last
// (inclusive).
func Years(first, last int) Axis {
	v := make([]float64, 0, last-first+1)
	for y := first; y <= last; y++ {
		v = append(v, float64(y))
	}
	return NewAxis(Time, v)
}

// Len returns the number of coordinates of the axis.
func (a Axis) Len() int {
	if a.Labels != nil {
		return len(a.Labels)
	}
	return len(a.Values)
}

// IsLabel returns true if the axis
// has categorical coordinates.
func (a Axis) IsLabel() bool {
	return a.Labels != nil
}

// Label returns the coordinate i as a string.
func (a Axis) Label(i int) string {
	if a.Labels != nil {
		return a.Labels[i]
	}
	return strconv.FormatFloat(a.Values[i], 'g', -1, 64)
}

// Equal returns true if both axes
// have the same name
// and the same coordinates.
func (a Axis) Equal(b Axis) bool {
	if a.Name != b.Name {
		return false
	}
	if a.IsLabel() != b.IsLabel() {
		return false
	}
	if a.Len() != b.Len() {
		return false
	}
	if a.IsLabel() {
		for i, l := range a.Labels {
			if b.Labels[i] != l {
				return false
			}
		}
		return true
	}
	for i, v := range a.Values {
		if b.Values[i] != v {
			return false
		}
	}
	return true
}

func (a Axis) clone() Axis {
	c := Axis{Name: a.Name}
	if a.Labels != nil {
		c.Labels = append([]string{}, a.Labels...)
	}
	if a.Values != nil {
		c.Values = append([]float64{}, a.Values...)
	}
	return c
}

// A Field is a labelled N-dimensional array.
type Field struct {
	// Name of the field
	Name string

	// Attributes of the field
	// (for example units or long_name).
	Attrs map[string]string

	axes []Axis
	data *sparse.DenseArray
}

// New returns a new field with the given axes,
// filled with zeros.
func New(name string, axes ...Axis) *Field {
	dims := make([]int, len(axes))
	ax := make([]Axis, len(axes))
	for i, a := range axes {
		dims[i] = a.Len()
		ax[i] = a.clone()
	}
	data := sparse.ZerosDense(dims...)
	if len(dims) == 0 {
		// a scalar
		data.Elements = make([]float64, 1)
	}
	return &Field{
		Name:  name,
		Attrs: make(map[string]string),
		axes:  ax,
		data:  data,
	}
}

// FromValues returns a new field with the given axes
// and values.
// Values are copied,
// and they must be in row-major order.
func FromValues(name string, values []float64, axes ...Axis) (*Field, error) {
	f := New(name, axes...)
	if len(values) != len(f.data.Elements) {
		return nil, fmt.Errorf("field %q: %d values for %d cells: %w", name, len(values), len(f.data.Elements), nzlusdb.ErrShape)
	}
	copy(f.data.Elements, values)
	return f, nil
}

// Axes returns the axes of the field.
func (f *Field) Axes() []Axis {
	ax := make([]Axis, len(f.axes))
	copy(ax, f.axes)
	return ax
}

// Axis returns an axis of the field by its name.
func (f *Field) Axis(name string) (Axis, bool) {
	i := f.Dim(name)
	if i < 0 {
		return Axis{}, false
	}
	return f.axes[i], true
}

// Dim returns the position of the axis with the given name,
// or -1 if the field does not have that axis.
func (f *Field) Dim(name string) int {
	for i, a := range f.axes {
		if a.Name == name {
			return i
		}
	}
	return -1
}

// Shape returns the length of each axis.
func (f *Field) Shape() []int {
	s := make([]int, len(f.axes))
	for i, a := range f.axes {
		s[i] = a.Len()
	}
	return s
}

// Len returns the number of cells of the field.
func (f *Field) Len() int {
	return len(f.data.Elements)
}

// Values returns the values of the field
// in row-major order.
// The returned slice is shared with the field.
func (f *Field) Values() []float64 {
	return f.data.Elements
}

// At returns the value at the given index.
func (f *Field) At(index ...int) float64 {
	return f.data.Elements[f.offset(index)]
}

// Set sets the value at the given index.
func (f *Field) Set(v float64, index ...int) {
	f.data.Elements[f.offset(index)] = v
}

func (f *Field) offset(index []int) int {
	if len(index) != len(f.axes) {
		panic(fmt.Sprintf("field %q: index with %d dimensions, want %d", f.Name, len(index), len(f.axes)))
	}
	var off int
	for i, a := range f.axes {
		off = off*a.Len() + index[i]
	}
	return off
}

// Fill sets all the cells of the field to v.
func (f *Field) Fill(v float64) {
	for i := range f.data.Elements {
		f.data.Elements[i] = v
	}
}

// Copy returns a copy of the field.
func (f *Field) Copy() *Field {
	c := New(f.Name, f.axes...)
	copy(c.data.Elements, f.data.Elements)
	for k, v := range f.Attrs {
		c.Attrs[k] = v
	}
	return c
}

// Map returns a new field
// with the same axes
// in which each value is the result of fn.
func (f *Field) Map(name string, fn func(float64) float64) *Field {
	c := New(name, f.axes...)
	for i, v := range f.data.Elements {
		c.data.Elements[i] = fn(v)
	}
	return c
}

// Valid returns the number of non-NaN cells.
func (f *Field) Valid() int {
	var n int
	for _, v := range f.data.Elements {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

// Range returns the minimum and maximum
// non-NaN values of the field.
// If all values are NaN,
// it returns NaN.
func (f *Field) Range() (min, max float64) {
	min, max = math.NaN(), math.NaN()
	for _, v := range f.data.Elements {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(min) || v < min {
			min = v
		}
		if math.IsNaN(max) || v > max {
			max = v
		}
	}
	return min, max
}

// SameGrid returns an error
// if both fields do not have
// exactly the same axes.
func SameGrid(a, b *Field) error {
	if len(a.axes) != len(b.axes) {
		return fmt.Errorf("fields %q and %q: %d and %d dimensions: %w", a.Name, b.Name, len(a.axes), len(b.axes), nzlusdb.ErrShape)
	}
	for i, ax := range a.axes {
		if !ax.Equal(b.axes[i]) {
			return fmt.Errorf("fields %q and %q: axis %q: %w", a.Name, b.Name, ax.Name, nzlusdb.ErrShape)
		}
	}
	return nil
}
