// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package criteria_test

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/baptistehamon/nzlusdb"
	"github.com/baptistehamon/nzlusdb/criteria"
	"github.com/baptistehamon/nzlusdb/grid"
	"github.com/baptistehamon/nzlusdb/standard"
)

func newSet(t testing.TB) *criteria.Set {
	t.Helper()

	s, err := criteria.NewSet("citrus", "Citrus",
		criteria.Criterion{
			Name:     "tn_mean",
			LongName: "Mean minimum temperature",
			Category: criteria.Climate,
			Weight:   1,
			Curve:    standard.Logistic{A: 1.5, B: 2},
			Clip:     &criteria.Clip{Min: 0, Max: math.Inf(1)},
		},
		criteria.Criterion{
			Name:     "drainage",
			LongName: "Drainage class",
			Category: criteria.SoilTerrain,
			Weight:   2,
			Curve:    standard.Discrete{Rules: map[int]float64{1: 0, 2: 0.5, 3: 1}},
		},
		criteria.Criterion{
			Name:     "lsi",
			LongName: "Land suitability index",
			Category: criteria.SoilTerrain,
			Weight:   0.5,
			Computed: true,
		},
	)
	if err != nil {
		t.Fatalf("new set: %v", err)
	}
	return s
}

func TestSet(t *testing.T) {
	s := newSet(t)

	if !reflect.DeepEqual(s.Names(), []string{"tn_mean", "drainage", "lsi"}) {
		t.Errorf("names: got %v", s.Names())
	}
	if w := s.Weight(criteria.SoilTerrain); w != 2.5 {
		t.Errorf("soil weight: got %g, want %g", w, 2.5)
	}
	if w := s.Weight(criteria.Climate); w != 1 {
		t.Errorf("climate weight: got %g, want %g", w, 1.0)
	}
	if n := len(s.ByCategory(criteria.SoilTerrain)); n != 2 {
		t.Errorf("soil criteria: got %d, want %d", n, 2)
	}
	if _, ok := s.Criterion("rain"); ok {
		t.Errorf("criterion %q: found", "rain")
	}
}

func TestSetErrors(t *testing.T) {
	c := criteria.Criterion{
		Name:     "tas",
		Category: criteria.Climate,
		Weight:   1,
		Curve:    standard.Logistic{A: 1, B: 1},
	}

	tests := map[string]func(c criteria.Criterion) criteria.Criterion{
		"zero weight":      func(c criteria.Criterion) criteria.Criterion { c.Weight = 0; return c },
		"negative weight":  func(c criteria.Criterion) criteria.Criterion { c.Weight = -1; return c },
		"invalid category": func(c criteria.Criterion) criteria.Criterion { c.Category = "water"; return c },
		"without curve":    func(c criteria.Criterion) criteria.Criterion { c.Curve = nil; return c },
		"curve and computed": func(c criteria.Criterion) criteria.Criterion {
			c.Computed = true
			return c
		},
		"inverted clip": func(c criteria.Criterion) criteria.Criterion {
			c.Clip = &criteria.Clip{Min: 1, Max: 0}
			return c
		},
	}
	for name, fn := range tests {
		if _, err := criteria.NewSet("x", "X", fn(c)); !errors.Is(err, nzlusdb.ErrConfig) {
			t.Errorf("%s: got error %v, want %v", name, err, nzlusdb.ErrConfig)
		}
	}

	if _, err := criteria.NewSet("x", "X", c, c); !errors.Is(err, nzlusdb.ErrConfig) {
		t.Errorf("repeated: got error %v, want %v", err, nzlusdb.ErrConfig)
	}
}

func TestCompute(t *testing.T) {
	s := newSet(t)
	lat := grid.NewAxis(grid.Lat, []float64{-40, -41, -42})

	tn, _ := s.Criterion("tn_mean")
	if _, err := tn.Compute(); !errors.Is(err, nzlusdb.ErrUnbound) {
		t.Errorf("unbound: got error %v, want %v", err, nzlusdb.ErrUnbound)
	}

	ind, err := grid.FromValues("tn_mean", []float64{-3, 2, math.NaN()}, lat)
	if err != nil {
		t.Fatalf("field: %v", err)
	}
	b := tn.Bind(ind)
	sc, err := b.Compute()
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	want0, _ := standard.Logistic{A: 1.5, B: 2}.Eval(0)
	got := sc.Values()
	if got[0] != want0 || got[1] != 0.5 || !math.IsNaN(got[2]) {
		t.Errorf("compute: got %v, want [%g 0.5 NaN]", got, want0)
	}
	if sc.Name != "tn_mean" {
		t.Errorf("compute: name %q, want %q", sc.Name, "tn_mean")
	}

	// binding does not modify the set
	// or the indicator
	if c, _ := s.Criterion("tn_mean"); c.Indicator() != nil {
		t.Errorf("set criterion bound after bind")
	}
	if v := ind.Values()[0]; v != -3 {
		t.Errorf("indicator modified by clip: got %g, want %g", v, -3.0)
	}

	lsi, _ := s.Criterion("lsi")
	sc, err = lsi.Bind(ind).Compute()
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if v := sc.Values()[1]; v != 2 {
		t.Errorf("computed criterion: got %g, want %g", v, 2.0)
	}
}

func TestClipZero(t *testing.T) {
	lat := grid.NewAxis(grid.Lat, []float64{-40, -41})
	c := criteria.Criterion{
		Name:     "tn_mean",
		Category: criteria.Climate,
		Weight:   1,
		Computed: true,
		Clip:     &criteria.Clip{Min: 0, Max: 0},
	}
	if _, err := criteria.NewSet("x", "X", c); err != nil {
		t.Fatalf("new set: %v", err)
	}

	ind, err := grid.FromValues("tn_mean", []float64{-3, 5}, lat)
	if err != nil {
		t.Fatalf("field: %v", err)
	}
	sc, err := c.Bind(ind).Compute()
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if got := sc.Values(); !reflect.DeepEqual(got, []float64{0, 0}) {
		t.Errorf("clip [0, 0]: got %v, want %v", got, []float64{0, 0})
	}
}

func TestSince(t *testing.T) {
	s, err := criteria.ParseSince("11-01")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.String() != "11-01" {
		t.Errorf("string: got %q, want %q", s.String(), "11-01")
	}

	tests := map[string]struct {
		doy  float64
		year int
		want float64
	}{
		"start":          {doy: 305, year: 2001, want: 0},
		"december 30":    {doy: 364, year: 2001, want: 59},
		"october 31":     {doy: 304, year: 2001, want: 364},
		"leap start":     {doy: 306, year: 2004, want: 0},
		"leap october":   {doy: 305, year: 2004, want: 365},
		"leap january 1": {doy: 1, year: 2004, want: 61},
	}
	for name, test := range tests {
		if got := s.Days(test.doy, test.year); got != test.want {
			t.Errorf("%s: got %g, want %g", name, got, test.want)
		}
	}
	if got := s.Days(math.NaN(), 2001); !math.IsNaN(got) {
		t.Errorf("NaN: got %g", got)
	}

	for _, bad := range []string{"1101", "13-01", "02-30", "xx-01", "04-31"} {
		if _, err := criteria.ParseSince(bad); !errors.Is(err, nzlusdb.ErrConfig) {
			t.Errorf("parse %q: got error %v, want %v", bad, err, nzlusdb.ErrConfig)
		}
	}
}

func TestBindSince(t *testing.T) {
	s, _ := criteria.ParseSince("11-01")
	c := criteria.Criterion{
		Name:     "maturity_date",
		Category: criteria.Climate,
		Weight:   0.25,
		Curve:    standard.Boolean{Op: standard.LessEq, Thresh: 363},
		Since:    &s,
	}
	if _, err := criteria.NewSet("maizeearly", "Maize", c); err != nil {
		t.Fatalf("new set: %v", err)
	}

	lat := grid.NewAxis(grid.Lat, []float64{-40, -41})
	ind, err := grid.FromValues("maturity_date", []float64{
		364, 304, // 2001
		305, math.NaN(), // 2004
	}, grid.NewAxis(grid.Time, []float64{2001, 2004}), lat)
	if err != nil {
		t.Fatalf("field: %v", err)
	}

	b := c.Bind(ind)
	if got, want := b.Indicator().Values(), []float64{59, 364, 365}; !reflect.DeepEqual(got[:3], want) || !math.IsNaN(got[3]) {
		t.Errorf("days since: got %v, want %v", got, append(want, math.NaN()))
	}
	if u := b.Indicator().Attrs["units"]; u != "days since 11-01" {
		t.Errorf("units: got %q", u)
	}
	if v := ind.Values()[0]; v != 364 {
		t.Errorf("indicator modified: got %g, want %g", v, 364.0)
	}

	sc, err := b.Compute()
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	got := sc.Values()
	if got[0] != 1 || got[1] != 0 || got[2] != 0 || !math.IsNaN(got[3]) {
		t.Errorf("compute: got %v, want [1 0 0 NaN]", got)
	}
}
