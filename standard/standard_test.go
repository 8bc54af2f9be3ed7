// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package standard_test

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/baptistehamon/nzlusdb"
	"github.com/baptistehamon/nzlusdb/grid"
	"github.com/baptistehamon/nzlusdb/standard"
)

func eval(t testing.TB, c standard.Curve, x float64) float64 {
	t.Helper()

	v, err := c.Eval(x)
	if err != nil {
		t.Fatalf("%s(%g): unexpected error: %v", c.Name(), x, err)
	}
	return v
}

func TestLogistic(t *testing.T) {
	c := standard.Logistic{A: -10.30, B: 0.45}
	if v := eval(t, c, 0.45); v != 0.5 {
		t.Errorf("logistic at b: got %g, want %g", v, 0.5)
	}
	if eval(t, c, 0.1) <= eval(t, c, 0.9) {
		t.Errorf("logistic with a < 0: want a decreasing curve")
	}
	if v := eval(t, c, math.NaN()); !math.IsNaN(v) {
		t.Errorf("logistic at NaN: got %g, want NaN", v)
	}
}

func TestCurvesRange(t *testing.T) {
	curves := []standard.Curve{
		standard.Logistic{A: 1.5, B: 3},
		standard.Vetharaniam2022Eq3{A: 0.5, B: 10},
		standard.Vetharaniam2022Eq5{A: 1.2, B: 600},
		standard.Vetharaniam2024Eq8{A: 0.015, B: 17, C: 2},
		standard.Vetharaniam2024Eq10{A: 0.002, B: 1500, C: 2},
		standard.Sigmoid{A: 5, B: -0.75},
		standard.CappedExp{A: 1.1, B: -20},
	}
	xs := []float64{0, 1, 5, 17, 100, 600, 1500, 5000}

	for _, c := range curves {
		for _, x := range xs {
			v := eval(t, c, x)
			if v < 0 || v > 1 {
				t.Errorf("%s(%g): got %g, want a value in [0, 1]", c.Name(), x, v)
			}
		}
		if v := eval(t, c, math.NaN()); !math.IsNaN(v) {
			t.Errorf("%s(NaN): got %g, want NaN", c.Name(), v)
		}
	}

	if v := eval(t, standard.Vetharaniam2024Eq8{A: 0.015, B: 17, C: 2}, 17); v != 1 {
		t.Errorf("vetharaniam2024_eq8 at b: got %g, want %g", v, 1.0)
	}
	if v := eval(t, standard.Vetharaniam2024Eq10{A: 0.002, B: 1500, C: 2}, 1500); v != 1 {
		t.Errorf("vetharaniam2024_eq10 at b: got %g, want %g", v, 1.0)
	}
	if v := eval(t, standard.Vetharaniam2022Eq3{A: 1000, B: 0}, 10); v != 1 {
		t.Errorf("vetharaniam2022_eq3 overflow: got %g, want %g", v, 1.0)
	}
}

func TestDiscrete(t *testing.T) {
	d := standard.Discrete{Rules: map[int]float64{0: 0.1, 1: 0.9}}
	if v := eval(t, d, 1); v != 0.9 {
		t.Errorf("discrete(1): got %g, want %g", v, 0.9)
	}
	if _, err := d.Eval(5); !errors.Is(err, nzlusdb.ErrConfig) {
		t.Errorf("discrete(5): got error %v, want %v", err, nzlusdb.ErrConfig)
	}
	if _, err := d.Eval(0.5); !errors.Is(err, nzlusdb.ErrConfig) {
		t.Errorf("discrete(0.5): got error %v, want %v", err, nzlusdb.ErrConfig)
	}
}

func TestBoolean(t *testing.T) {
	tests := map[string]struct {
		op   standard.Op
		x    float64
		want float64
	}{
		"less":          {standard.Less, 0.05, 1},
		"less false":    {standard.Less, 0.1, 0},
		"less eq":       {standard.LessEq, 0.1, 1},
		"greater":       {standard.Greater, 0.2, 1},
		"greater eq":    {standard.GreaterEq, 0.05, 0},
		"equal":         {standard.Equal, 0.1, 1},
		"equal (false)": {standard.Equal, 0.2, 0},
	}

	for name, test := range tests {
		b := standard.Boolean{Op: test.op, Thresh: 0.1}
		if v := eval(t, b, test.x); v != test.want {
			t.Errorf("%s: got %g, want %g", name, v, test.want)
		}
	}
}

func TestApply(t *testing.T) {
	f, err := grid.FromValues("drainage", []float64{0, 1, math.NaN()}, grid.NewAxis(grid.Lat, []float64{-40, -41, -42}))
	if err != nil {
		t.Fatalf("field: %v", err)
	}

	d := standard.Discrete{Rules: map[int]float64{0: 0.1, 1: 0.9}}
	s, err := standard.Apply(d, f)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	got := s.Values()
	if got[0] != 0.1 || got[1] != 0.9 || !math.IsNaN(got[2]) {
		t.Errorf("apply: got %v, want [0.1 0.9 NaN]", got)
	}

	f.Set(7, 2)
	if _, err := standard.Apply(d, f); !errors.Is(err, nzlusdb.ErrConfig) {
		t.Errorf("apply: got error %v, want %v", err, nzlusdb.ErrConfig)
	}
}

func TestParse(t *testing.T) {
	curves := []standard.Curve{
		standard.Logistic{A: -10.3, B: 0.45},
		standard.Vetharaniam2022Eq3{A: 0.5, B: 10},
		standard.Vetharaniam2022Eq5{A: 1.2, B: 600},
		standard.Vetharaniam2024Eq8{A: 0.015, B: 17, C: 2},
		standard.Vetharaniam2024Eq10{A: 0.002, B: 1500, C: 2},
		standard.Sigmoid{A: 5, B: -0.75},
		standard.CappedExp{A: 1.1, B: -20},
		standard.Discrete{Rules: map[int]float64{1: 0, 2: 0.3, 5: 1}},
		standard.Boolean{Op: standard.LessEq, Thresh: 363},
		standard.Boolean{Op: standard.Equal, Thresh: 1},
	}

	for _, c := range curves {
		p, err := standard.Parse(c.Name(), c.Params())
		if err != nil {
			t.Errorf("parse %s %q: %v", c.Name(), c.Params(), err)
			continue
		}
		if !reflect.DeepEqual(p, c) {
			t.Errorf("parse %s %q: got %v, want %v", c.Name(), c.Params(), p, c)
		}
	}

	bad := map[string][2]string{
		"unknown curve":     {"gaussian", "a=1,b=2"},
		"missing parameter": {"logistic", "a=1"},
		"bad number":        {"logistic", "a=1,b=x"},
		"bad operator":      {"boolean", "op=!=,thresh=1"},
		"no rules":          {"discrete", ""},
		"no key value":      {"logistic", "a"},
	}
	for name, b := range bad {
		if _, err := standard.Parse(b[0], b[1]); !errors.Is(err, nzlusdb.ErrConfig) {
			t.Errorf("%s: got error %v, want %v", name, err, nzlusdb.ErrConfig)
		}
	}
}
