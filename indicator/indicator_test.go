// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package indicator_test

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/baptistehamon/nzlusdb"
	"github.com/baptistehamon/nzlusdb/grid"
	"github.com/baptistehamon/nzlusdb/indicator"
	"github.com/baptistehamon/nzlusdb/standard"
)

var aboveZero = standard.Boolean{Op: standard.Greater, Thresh: 0}

func TestSurvival(t *testing.T) {
	s, err := indicator.Survival([]float64{1, -1, 2}, []float64{1, 0.5, 1}, aboveZero)
	if err != nil {
		t.Fatalf("survival: %v", err)
	}
	if s != 0.5 {
		t.Errorf("survival: got %g, want %g", s, 0.5)
	}

	s, err = indicator.Survival([]float64{1, -1, -2}, nil, aboveZero)
	if err != nil {
		t.Fatalf("survival: %v", err)
	}
	if s != 0 {
		t.Errorf("survival without weights: got %g, want %g", s, 0.0)
	}

	l := standard.Logistic{A: 1.099, B: -3.4}
	daily := []float64{-5, 0, 2}
	want := 1.0
	for _, x := range daily {
		f, _ := l.Eval(x)
		want *= f
	}
	s, err = indicator.Survival(daily, nil, l)
	if err != nil {
		t.Fatalf("survival: %v", err)
	}
	if math.Abs(s-want) > 1e-15 {
		t.Errorf("logistic survival: got %g, want %g", s, want)
	}

	s, _ = indicator.Survival([]float64{1, math.NaN()}, nil, aboveZero)
	if !math.IsNaN(s) {
		t.Errorf("survival with NaN: got %g, want NaN", s)
	}

	if _, err := indicator.Survival([]float64{1, 2}, []float64{1}, aboveZero); !errors.Is(err, nzlusdb.ErrConfig) {
		t.Errorf("survival: got error %v, want %v", err, nzlusdb.ErrConfig)
	}
}

func TestSurvivalField(t *testing.T) {
	f, err := grid.FromValues("tasmin", []float64{
		// 2000
		1, 2, 3,
		-1, 2, 3,
		// 2001
		1, -2, -3,
		1, 2, 3,
	},
		grid.Years(2000, 2001),
		grid.NewAxis(grid.Lat, []float64{-40, -41}),
		grid.NewAxis(indicator.Day, []float64{1, 2, 3}),
	)
	if err != nil {
		t.Fatalf("field: %v", err)
	}

	s, err := indicator.SurvivalField("frost_survival", f, nil, aboveZero)
	if err != nil {
		t.Fatalf("survival field: %v", err)
	}
	if !reflect.DeepEqual(s.Shape(), []int{2, 2}) {
		t.Fatalf("shape: got %v, want %v", s.Shape(), []int{2, 2})
	}
	want := []float64{1, 0, 0, 1}
	if !reflect.DeepEqual(s.Values(), want) {
		t.Errorf("survival field: got %v, want %v", s.Values(), want)
	}
	if s.Name != "frost_survival" {
		t.Errorf("name: got %q", s.Name)
	}

	bad := standard.Boolean{Op: "~", Thresh: 0}
	if _, err := indicator.SurvivalField("frost_survival", f, nil, bad); !errors.Is(err, nzlusdb.ErrConfig) {
		t.Errorf("survival field: got error %v, want %v", err, nzlusdb.ErrConfig)
	}
}

func TestPhenology(t *testing.T) {
	tests := []struct {
		name string
		fn   func(float64) float64
		t    float64
		want float64
	}{
		{"full bloom", indicator.DayFullBloom, 20, 257},
		{"full bloom half", indicator.DayFullBloom, 19, 262},
		{"budbreak", indicator.DayBudbreak, 0, 226},
		{"budbreak max", indicator.DayBudbreak, 30, 335},
	}
	for _, test := range tests {
		if got := test.fn(test.t); got != test.want {
			t.Errorf("%s: got %g, want %g", test.name, got, test.want)
		}
	}
}

func TestChillingHours(t *testing.T) {
	hourly := []float64{-1, 0, 0.5, 7, 7.5, math.NaN()}
	if got := indicator.ChillingHours(hourly, 0, 7); got != 2 {
		t.Errorf("chilling hours: got %g, want %g", got, 2.0)
	}

	f, err := grid.FromValues("tas", hourly, grid.NewAxis(indicator.Hour, []float64{0, 1, 2, 3, 4, 5}))
	if err != nil {
		t.Fatalf("field: %v", err)
	}
	ch, err := indicator.ChillingField("chilling_hours", f, math.Inf(-1), 7)
	if err != nil {
		t.Fatalf("chilling field: %v", err)
	}
	if got := ch.Values()[0]; got != 4 {
		t.Errorf("chilling field: got %g, want %g", got, 4.0)
	}

	if got := indicator.ChillingHours([]float64{math.NaN(), math.NaN()}, 0, 7); !math.IsNaN(got) {
		t.Errorf("chilling hours without data: got %g, want NaN", got)
	}

	// a cell without data
	nan := math.NaN()
	hours := grid.NewAxis(indicator.Hour, []float64{0, 1, 2})
	f, err = grid.FromValues("tas", []float64{1, 4, 9, nan, nan, nan}, grid.NewAxis(grid.Lat, []float64{-40, -41}), hours)
	if err != nil {
		t.Fatalf("field: %v", err)
	}
	ch, err = indicator.ChillingField("chilling_hours", f, 0, 7)
	if err != nil {
		t.Fatalf("chilling field: %v", err)
	}
	if v := ch.Values(); v[0] != 2 || !math.IsNaN(v[1]) {
		t.Errorf("chilling field: got %v, want [2 NaN]", v)
	}
}
