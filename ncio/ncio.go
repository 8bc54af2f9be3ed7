// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package ncio implements reading and writing
// of fields in NetCDF classic files.
//
// Numeric axes are stored as double coordinate variables,
// and axes with labels are stored as global attributes
// named "<axis>_labels",
// with the labels separated by commas.
// Fields are stored as float variables
// with NaN as fill value.
package ncio

import (
	"fmt"
	"math"
	"os"
	"slices"
	"strings"

	"github.com/baptistehamon/nzlusdb"
	"github.com/baptistehamon/nzlusdb/grid"
	"github.com/ctessum/cdf"
)

// LabelSuffix is the suffix of the global attribute
// that stores the labels of an axis.
const LabelSuffix = "_labels"

// axis names used by some data providers
var axisNames = map[string]string{
	"latitude":  grid.Lat,
	"longitude": grid.Lon,
}

// attributes managed by the reader
var skipAttrs = map[string]bool{
	"_FillValue":    true,
	"missing_value": true,
	"scale_factor":  true,
	"add_offset":    true,
}

// Read reads a variable from a NetCDF file.
// If variable is empty,
// the file must have a single data variable.
func Read(name, variable string) (*grid.Field, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	nc, err := cdf.Open(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}

	if variable == "" {
		vars := dataVariables(nc.Header)
		if len(vars) != 1 {
			return nil, fmt.Errorf("on file %q: found %d variables, a variable name is required: %w", name, len(vars), nzlusdb.ErrConfig)
		}
		variable = vars[0]
	}
	if !slices.Contains(nc.Header.Variables(), variable) {
		return nil, fmt.Errorf("on file %q: variable %q not found: %w", name, variable, nzlusdb.ErrConfig)
	}

	fld, err := readField(nc, variable)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %w", name, err)
	}
	return fld, nil
}

// ReadDataset reads all data variables
// and the global attributes
// of a NetCDF file.
func ReadDataset(name string) (*grid.Dataset, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	nc, err := cdf.Open(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}

	ds := grid.NewDataset()
	for _, a := range nc.Header.Attributes("") {
		if strings.HasSuffix(a, LabelSuffix) {
			continue
		}
		if s, ok := attrString(nc.Header, "", a); ok {
			ds.Attrs[a] = s
		}
	}
	for _, v := range dataVariables(nc.Header) {
		fld, err := readField(nc, v)
		if err != nil {
			return nil, fmt.Errorf("on file %q: %w", name, err)
		}
		ds.Add(fld)
	}
	return ds, nil
}

// dataVariables returns the variables
// that are not coordinates.
func dataVariables(h *cdf.Header) []string {
	var vars []string
	for _, v := range h.Variables() {
		dims := h.Dimensions(v)
		if len(dims) > 0 && dims[0] == v {
			continue
		}
		if v == "time_bnds" || v == "lat_bnds" || v == "lon_bnds" || v == "crs" || v == "spatial_ref" {
			continue
		}
		vars = append(vars, v)
	}
	return vars
}

func readField(nc *cdf.File, v string) (*grid.Field, error) {
	h := nc.Header
	dims := h.Dimensions(v)
	lens := h.Lengths(v)
	axes := make([]grid.Axis, len(dims))
	for i, d := range dims {
		ax, err := readAxis(nc, d, lens[i])
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", v, err)
		}
		axes[i] = ax
	}

	vals, err := readValues(nc, v)
	if err != nil {
		return nil, fmt.Errorf("variable %q: %v", v, err)
	}

	var fill []float64
	for _, a := range []string{"_FillValue", "missing_value"} {
		if x, ok := attrFloat(h, v, a); ok {
			fill = append(fill, x)
		}
	}
	scale, okScale := attrFloat(h, v, "scale_factor")
	offset, okOffset := attrFloat(h, v, "add_offset")
	for i, x := range vals {
		if isFill(x, fill) {
			vals[i] = math.NaN()
			continue
		}
		if okScale {
			x *= scale
		}
		if okOffset {
			x += offset
		}
		vals[i] = x
	}

	fld, err := grid.FromValues(v, vals, axes...)
	if err != nil {
		return nil, err
	}
	for _, a := range h.Attributes(v) {
		if skipAttrs[a] {
			continue
		}
		if s, ok := attrString(h, v, a); ok {
			fld.Attrs[a] = s
		}
	}
	return fld, nil
}

func isFill(x float64, fill []float64) bool {
	if math.IsNaN(x) {
		return true
	}
	for _, f := range fill {
		if x == f {
			return true
		}
		// fill values stored as float
		if float64(float32(f)) == x {
			return true
		}
	}
	return false
}

func readAxis(nc *cdf.File, d string, n int) (grid.Axis, error) {
	h := nc.Header
	name := d
	if nn, ok := axisNames[d]; ok {
		name = nn
	}

	if s, ok := attrString(h, "", d+LabelSuffix); ok {
		labels := strings.Split(s, ",")
		if len(labels) != n {
			return grid.Axis{}, fmt.Errorf("axis %q: %d labels for %d coordinates: %w", d, len(labels), n, nzlusdb.ErrShape)
		}
		return grid.LabelAxis(name, labels), nil
	}

	if !slices.Contains(h.Variables(), d) {
		vals := make([]float64, n)
		for i := range vals {
			vals[i] = float64(i)
		}
		return grid.NewAxis(name, vals), nil
	}

	// string coordinates
	if dims := h.Dimensions(d); len(dims) == 2 {
		r := nc.Reader(d, nil, nil)
		buf := r.Zero(-1)
		if _, err := r.Read(buf); err != nil {
			return grid.Axis{}, fmt.Errorf("axis %q: %v", d, err)
		}
		b, ok := buf.([]byte)
		if !ok {
			return grid.Axis{}, fmt.Errorf("axis %q: unsupported coordinate type: %w", d, nzlusdb.ErrShape)
		}
		sz := len(b) / n
		labels := make([]string, n)
		for i := range labels {
			labels[i] = strings.TrimRight(string(b[i*sz:(i+1)*sz]), "\x00 ")
		}
		return grid.LabelAxis(name, labels), nil
	}

	vals, err := readValues(nc, d)
	if err != nil {
		return grid.Axis{}, fmt.Errorf("axis %q: %v", d, err)
	}
	if name == grid.Time {
		units, _ := attrString(h, d, "units")
		calendar, _ := attrString(h, d, "calendar")
		vals, err = Years(vals, units, calendar)
		if err != nil {
			return grid.Axis{}, fmt.Errorf("axis %q: %w", d, err)
		}
	}
	return grid.NewAxis(name, vals), nil
}

func readValues(nc *cdf.File, v string) ([]float64, error) {
	r := nc.Reader(v, nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, err
	}

	var vals []float64
	switch b := buf.(type) {
	case []float64:
		vals = b
	case []float32:
		vals = make([]float64, len(b))
		for i, x := range b {
			vals[i] = float64(x)
		}
	case []int32:
		vals = make([]float64, len(b))
		for i, x := range b {
			vals[i] = float64(x)
		}
	case []int16:
		vals = make([]float64, len(b))
		for i, x := range b {
			vals[i] = float64(x)
		}
	case []byte:
		vals = make([]float64, len(b))
		for i, x := range b {
			vals[i] = float64(x)
		}
	default:
		return nil, fmt.Errorf("unsupported type %T", buf)
	}
	return vals, nil
}

func attrString(h *cdf.Header, v, a string) (string, bool) {
	switch x := h.GetAttribute(v, a).(type) {
	case string:
		return x, true
	case []byte:
		return string(x), true
	case []float64:
		if len(x) == 1 {
			return fmt.Sprintf("%g", x[0]), true
		}
	case []float32:
		if len(x) == 1 {
			return fmt.Sprintf("%g", x[0]), true
		}
	case []int32:
		if len(x) == 1 {
			return fmt.Sprintf("%d", x[0]), true
		}
	case []int16:
		if len(x) == 1 {
			return fmt.Sprintf("%d", x[0]), true
		}
	}
	return "", false
}

func attrFloat(h *cdf.Header, v, a string) (float64, bool) {
	switch x := h.GetAttribute(v, a).(type) {
	case []float64:
		if len(x) > 0 {
			return x[0], true
		}
	case []float32:
		if len(x) > 0 {
			return float64(x[0]), true
		}
	case []int32:
		if len(x) > 0 {
			return float64(x[0]), true
		}
	case []int16:
		if len(x) > 0 {
			return float64(x[0]), true
		}
	}
	return 0, false
}

// Write writes a dataset into a NetCDF file.
func Write(name string, ds *grid.Dataset) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	if err := Encode(f, ds); err != nil {
		return fmt.Errorf("while writing file %q: %w", name, err)
	}
	return nil
}

// Encode writes a dataset
// into a NetCDF writer.
// Axes with the same name in different fields
// must be equal.
func Encode(w cdf.ReaderWriterAt, ds *grid.Dataset) error {
	var axes []grid.Axis
	pos := make(map[string]int)
	for _, f := range ds.Fields() {
		for _, a := range f.Axes() {
			if i, ok := pos[a.Name]; ok {
				if !axes[i].Equal(a) {
					return fmt.Errorf("field %q: axis %q differs from other fields: %w", f.Name, a.Name, nzlusdb.ErrShape)
				}
				continue
			}
			if a.Len() == 0 {
				return fmt.Errorf("field %q: empty axis %q: %w", f.Name, a.Name, nzlusdb.ErrShape)
			}
			pos[a.Name] = len(axes)
			axes = append(axes, a)
		}
	}

	dims := make([]string, len(axes))
	lens := make([]int, len(axes))
	for i, a := range axes {
		dims[i] = a.Name
		lens[i] = a.Len()
	}
	h := cdf.NewHeader(dims, lens)

	keys := make([]string, 0, len(ds.Attrs))
	for k := range ds.Attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if ds.Attrs[k] == "" {
			continue
		}
		h.AddAttribute("", k, ds.Attrs[k])
	}

	for _, a := range axes {
		if a.IsLabel() {
			h.AddAttribute("", a.Name+LabelSuffix, strings.Join(a.Labels, ","))
			continue
		}
		h.AddVariable(a.Name, []string{a.Name}, []float64{0})
		attrs := axisAttrs(a.Name)
		keys := make([]string, 0, len(attrs))
		for k := range attrs {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			h.AddAttribute(a.Name, k, attrs[k])
		}
	}

	for _, f := range ds.Fields() {
		fd := make([]string, 0, len(f.Axes()))
		for _, a := range f.Axes() {
			fd = append(fd, a.Name)
		}
		h.AddVariable(f.Name, fd, []float32{0})
		h.AddAttribute(f.Name, "_FillValue", []float32{float32(math.NaN())})

		keys := make([]string, 0, len(f.Attrs))
		for k := range f.Attrs {
			if skipAttrs[k] || f.Attrs[k] == "" {
				continue
			}
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			h.AddAttribute(f.Name, k, f.Attrs[k])
		}
	}
	h.Define()

	nc, err := cdf.Create(w, h)
	if err != nil {
		return err
	}

	for _, a := range axes {
		if a.IsLabel() {
			continue
		}
		start := []int{0}
		end := []int{a.Len()}
		if _, err := nc.Writer(a.Name, start, end).Write(a.Values); err != nil {
			return fmt.Errorf("axis %q: %v", a.Name, err)
		}
	}

	for _, f := range ds.Fields() {
		data32 := make([]float32, f.Len())
		for i, v := range f.Values() {
			data32[i] = float32(v)
		}
		end := f.Shape()
		start := make([]int, len(end))
		if _, err := nc.Writer(f.Name, start, end).Write(data32); err != nil {
			return fmt.Errorf("field %q: %v", f.Name, err)
		}
	}

	if err := cdf.UpdateNumRecs(w); err != nil {
		return err
	}
	return nil
}

func axisAttrs(name string) map[string]string {
	switch name {
	case grid.Lat:
		return map[string]string{
			"long_name":     "latitude",
			"standard_name": "latitude",
			"units":         "degrees_north",
		}
	case grid.Lon:
		return map[string]string{
			"long_name":     "longitude",
			"standard_name": "longitude",
			"units":         "degrees_east",
		}
	case grid.Time:
		return map[string]string{
			"long_name": "time",
			"units":     "years",
		}
	}
	return nil
}
