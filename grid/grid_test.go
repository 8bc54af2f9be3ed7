// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package grid_test

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/baptistehamon/nzlusdb"
	"github.com/baptistehamon/nzlusdb/grid"
)

func newField(t testing.TB, name string, values []float64, axes ...grid.Axis) *grid.Field {
	t.Helper()

	f, err := grid.FromValues(name, values, axes...)
	if err != nil {
		t.Fatalf("field %q: %v", name, err)
	}
	return f
}

func testValues(t testing.TB, f *grid.Field, want []float64) {
	t.Helper()

	got := f.Values()
	if len(got) != len(want) {
		t.Fatalf("field %q: got %d values, want %d", f.Name, len(got), len(want))
	}
	for i, v := range want {
		if math.IsNaN(v) && math.IsNaN(got[i]) {
			continue
		}
		if got[i] != v {
			t.Errorf("field %q: value %d: got %g, want %g", f.Name, i, got[i], v)
		}
	}
}

func TestField(t *testing.T) {
	lat := grid.NewAxis(grid.Lat, []float64{-40, -41})
	lon := grid.NewAxis(grid.Lon, []float64{172, 173, 174})
	f := newField(t, "tas", []float64{1, 2, 3, 4, 5, 6}, lat, lon)

	if !reflect.DeepEqual(f.Shape(), []int{2, 3}) {
		t.Errorf("shape: got %v, want %v", f.Shape(), []int{2, 3})
	}
	if v := f.At(1, 2); v != 6 {
		t.Errorf("at (1, 2): got %g, want %g", v, 6.0)
	}
	f.Set(math.NaN(), 0, 1)
	if v := f.Valid(); v != 5 {
		t.Errorf("valid: got %d, want %d", v, 5)
	}
	min, max := f.Range()
	if min != 1 || max != 6 {
		t.Errorf("range: got %g-%g, want %g-%g", min, max, 1.0, 6.0)
	}

	c := f.Map("double", func(x float64) float64 { return 2 * x })
	testValues(t, c, []float64{2, math.NaN(), 6, 8, 10, 12})
	testValues(t, f, []float64{1, math.NaN(), 3, 4, 5, 6})

	if _, err := grid.FromValues("bad", []float64{1}, lat, lon); !errors.Is(err, nzlusdb.ErrShape) {
		t.Errorf("from values: got error %v, want %v", err, nzlusdb.ErrShape)
	}
}

func TestApply(t *testing.T) {
	lat := grid.NewAxis(grid.Lat, []float64{-40, -41})
	lon := grid.NewAxis(grid.Lon, []float64{172, 173})
	years := grid.Years(2000, 2002)

	soil := newField(t, "soil", []float64{1, 2, 3, 4}, lat, lon)
	clim := newField(t, "clim", []float64{
		10, 20, 30, 40,
		11, 21, 31, 41,
		12, 22, 32, 42,
	}, years, lat, lon)

	sum, err := grid.Apply("sum", func(xs []float64) float64 {
		return xs[0] + xs[1]
	}, soil, clim)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	if !reflect.DeepEqual(sum.Shape(), []int{3, 2, 2}) {
		t.Fatalf("shape: got %v, want %v", sum.Shape(), []int{3, 2, 2})
	}
	testValues(t, sum, []float64{
		11, 22, 33, 44,
		12, 23, 34, 45,
		13, 24, 35, 46,
	})

	other := newField(t, "other", []float64{1, 2}, grid.NewAxis(grid.Lat, []float64{-40, -42}))
	if _, err := grid.Apply("bad", func(xs []float64) float64 { return 0 }, soil, other); !errors.Is(err, nzlusdb.ErrShape) {
		t.Errorf("apply: got error %v, want %v", err, nzlusdb.ErrShape)
	}
}

func TestSelectAndReduce(t *testing.T) {
	years := grid.Years(2000, 2003)
	rz := grid.LabelAxis(grid.Realization, []string{"a", "b"})
	f := newField(t, "tas", []float64{
		1, 2, 3, math.NaN(),
		5, 6, 7, 8,
	}, rz, years)

	s, err := grid.SelectRange(f, grid.Time, 2001, 2002)
	if err != nil {
		t.Fatalf("select range: %v", err)
	}
	testValues(t, s, []float64{2, 3, 6, 7})
	ax, _ := s.Axis(grid.Time)
	if !reflect.DeepEqual(ax.Values, []float64{2001, 2002}) {
		t.Errorf("time: got %v, want %v", ax.Values, []float64{2001, 2002})
	}

	m, err := grid.Mean(f, grid.Time)
	if err != nil {
		t.Fatalf("mean: %v", err)
	}
	testValues(t, m, []float64{2, 6.5})

	b, err := grid.SelectLabel(f, grid.Realization, "b")
	if err != nil {
		t.Fatalf("select label: %v", err)
	}
	testValues(t, b, []float64{5, 6, 7, 8})
	if b.Dim(grid.Realization) >= 0 {
		t.Errorf("select label: realization axis not removed")
	}

	if _, err := grid.SelectRange(f, grid.Time, 1900, 1910); !errors.Is(err, nzlusdb.ErrConfig) {
		t.Errorf("select range: got error %v, want %v", err, nzlusdb.ErrConfig)
	}
}

func TestConcatStackTranspose(t *testing.T) {
	lat := grid.NewAxis(grid.Lat, []float64{-40, -41})
	a := newField(t, "x", []float64{1, 2, 3, 4}, grid.Years(2000, 2001), lat)
	b := newField(t, "x", []float64{5, 6}, grid.Years(2002, 2002), lat)

	c, err := grid.Concat(grid.Time, a, b)
	if err != nil {
		t.Fatalf("concat: %v", err)
	}
	testValues(t, c, []float64{1, 2, 3, 4, 5, 6})

	tr, err := grid.Transpose(c, grid.Lat)
	if err != nil {
		t.Fatalf("transpose: %v", err)
	}
	testValues(t, tr, []float64{1, 3, 5, 2, 4, 6})

	s, err := grid.Stack(grid.LabelAxis(grid.Scenario, []string{"ssp126", "ssp585"}), c, c)
	if err != nil {
		t.Fatalf("stack: %v", err)
	}
	if !reflect.DeepEqual(s.Shape(), []int{2, 3, 2}) {
		t.Errorf("stack shape: got %v, want %v", s.Shape(), []int{2, 3, 2})
	}
}

func TestNearest(t *testing.T) {
	coarse := newField(t, "clim", []float64{
		1, 2,
		3, 4,
	},
		grid.NewAxis(grid.Lat, []float64{-40, -45}),
		grid.NewAxis(grid.Lon, []float64{170, 175}),
	)
	fine := grid.New("soil",
		grid.NewAxis(grid.Lat, []float64{-39, -41, -44, -60}),
		grid.NewAxis(grid.Lon, []float64{171, 174}),
	)

	r, err := grid.Nearest(coarse, fine)
	if err != nil {
		t.Fatalf("nearest: %v", err)
	}
	testValues(t, r, []float64{
		1, 2,
		1, 2,
		3, 4,
		math.NaN(), math.NaN(),
	})
}

func TestDataset(t *testing.T) {
	d := grid.NewDataset()
	d.Add(grid.New("a"))
	d.Add(grid.New("b"))
	d.Add(grid.New("a"))

	if !reflect.DeepEqual(d.Names(), []string{"a", "b"}) {
		t.Errorf("names: got %v, want %v", d.Names(), []string{"a", "b"})
	}
	if d.Field("c") != nil {
		t.Errorf("field %q: found", "c")
	}
}
