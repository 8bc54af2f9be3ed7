// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package lsa_test

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sync"
	"testing"

	"github.com/baptistehamon/nzlusdb"
	"github.com/baptistehamon/nzlusdb/aggregate"
	"github.com/baptistehamon/nzlusdb/criteria"
	"github.com/baptistehamon/nzlusdb/grid"
	"github.com/baptistehamon/nzlusdb/lsa"
)

type fakeLoader struct {
	mu     sync.Mutex
	calls  map[string]int
	fields map[string]*grid.Field
}

func (ld *fakeLoader) Load(c criteria.Criterion, scenario, model string) (*grid.Field, error) {
	ld.mu.Lock()
	defer ld.mu.Unlock()

	ld.calls[c.Name]++
	f, ok := ld.fields[c.Name]
	if !ok {
		return nil, fmt.Errorf("indicator %q: not found", c.Name)
	}
	return f, nil
}

var (
	soilLat = []float64{0, 0.4, 1, 1.4}
	climLat = []float64{0, 1}
	climVal = []float64{
		// year 2000
		0.8, 0.2,
		// year 2001
		0.5, 0,
	}
	soilVal = []float64{0.9, 0.1, 0.4, 1}
)

func newLoader(t testing.TB) *fakeLoader {
	t.Helper()

	lon := grid.NewAxis(grid.Lon, []float64{170})
	clim, err := grid.FromValues("tas", climVal, grid.Years(2000, 2001), grid.NewAxis(grid.Lat, climLat), lon)
	if err != nil {
		t.Fatalf("climate indicator: %v", err)
	}
	soil, err := grid.FromValues("ph", soilVal, grid.NewAxis(grid.Lat, soilLat), lon)
	if err != nil {
		t.Fatalf("soil indicator: %v", err)
	}
	return &fakeLoader{
		calls: make(map[string]int),
		fields: map[string]*grid.Field{
			"tas": clim,
			"ph":  soil,
		},
	}
}

func newAnalysis(t testing.TB) *lsa.Analysis {
	t.Helper()

	s, err := criteria.NewSet("test", "Test",
		criteria.Criterion{
			Name:     "tas",
			Category: criteria.Climate,
			Weight:   3,
			Computed: true,
		},
		criteria.Criterion{
			Name:     "ph",
			Category: criteria.SoilTerrain,
			Weight:   1,
			Computed: true,
		},
	)
	if err != nil {
		t.Fatalf("new set: %v", err)
	}
	return lsa.New(s, lsa.Res1km)
}

func TestRun(t *testing.T) {
	a := newAnalysis(t)
	ld := newLoader(t)

	ds, err := a.Run(lsa.SSP245, "ACCESS-CM2", ld)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	want := []string{"ph", "tas", lsa.Climate, lsa.SoilTerrain, lsa.Suitability}
	if !reflect.DeepEqual(ds.Names(), want) {
		t.Errorf("fields: got %v, want %v", ds.Names(), want)
	}

	suit := ds.Field(lsa.Suitability)
	if !reflect.DeepEqual(suit.Shape(), []int{2, 4, 1}) {
		t.Fatalf("suitability shape: got %v, want %v", suit.Shape(), []int{2, 4, 1})
	}

	// nearest climate row for each soil row
	near := []int{0, 0, 1, 1}
	for y := 0; y < 2; y++ {
		for i := range soilLat {
			c := climVal[y*2+near[i]]
			s := soilVal[i]
			w := math.Pow(c, 0.75) * math.Pow(s, 0.25)
			if got := suit.At(y, i, 0); math.Abs(got-w) > 1e-12 {
				t.Errorf("suitability [%d, %d]: got %g, want %g", y, i, got, w)
			}
		}
	}

	// zero veto
	if got := suit.At(1, 2, 0); got != 0 {
		t.Errorf("suitability [1, 2]: got %g, want 0", got)
	}

	clim := ds.Field(lsa.Climate)
	if lat, _ := clim.Axis(grid.Lat); !reflect.DeepEqual(lat.Values, soilLat) {
		t.Errorf("climate latitude: got %v, want %v", lat.Values, soilLat)
	}

	attrs := map[string]string{
		"land_use":   "test",
		"scenario":   lsa.SSP245,
		"models":     "ACCESS-CM2",
		"resolution": "1km",
		"criteria":   "tas, ph",
		"version":    nzlusdb.Version,
	}
	for k, v := range attrs {
		if ds.Attrs[k] != v {
			t.Errorf("attribute %q: got %q, want %q", k, ds.Attrs[k], v)
		}
	}
}

func TestRunSoilCache(t *testing.T) {
	a := newAnalysis(t)
	ld := newLoader(t)

	var wg sync.WaitGroup
	res := make([]*grid.Field, 4)
	for i := range res {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ds, err := a.Run(lsa.Historical, "", ld)
			if err != nil {
				t.Errorf("run %d: %v", i, err)
				return
			}
			res[i] = ds.Field(lsa.Suitability)
		}(i)
	}
	wg.Wait()

	if ld.calls["ph"] != 1 {
		t.Errorf("soil indicator: loaded %d times, want 1", ld.calls["ph"])
	}
	if ld.calls["tas"] != len(res) {
		t.Errorf("climate indicator: loaded %d times, want %d", ld.calls["tas"], len(res))
	}
	for i := 1; i < len(res); i++ {
		if res[i] == nil || res[0] == nil {
			continue
		}
		if !reflect.DeepEqual(res[i].Values(), res[0].Values()) {
			t.Errorf("run %d: got %v, want %v", i, res[i].Values(), res[0].Values())
		}
	}
}

func TestRunDomain(t *testing.T) {
	s, err := criteria.NewSet("test", "Test",
		criteria.Criterion{
			Name:     "tas",
			Category: criteria.Climate,
			Weight:   1,
			Computed: true,
		},
		criteria.Criterion{
			Name:     "ph",
			Category: criteria.SoilTerrain,
			Weight:   1,
			Computed: true,
		},
	)
	if err != nil {
		t.Fatalf("new set: %v", err)
	}
	ld := newLoader(t)
	ld.fields["ph"] = ld.fields["ph"].Map("ph", func(x float64) float64 { return x - 0.5 })

	ds, err := lsa.New(s, lsa.Res5km).Run(lsa.Historical, "", ld)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(ds.Warnings) == 0 {
		t.Fatalf("expecting domain warnings")
	}
	var de *aggregate.DomainError
	if !errors.As(ds.Warnings[0], &de) {
		t.Fatalf("warning: got %v, want a domain error", ds.Warnings[0])
	}
	if de.Field != "ph" {
		t.Errorf("warning field: got %q, want %q", de.Field, "ph")
	}
}

func TestRunErrors(t *testing.T) {
	a := newAnalysis(t)
	ld := newLoader(t)
	delete(ld.fields, "tas")

	if _, err := a.Run(lsa.SSP126, "", ld); err == nil {
		t.Errorf("run: expecting error on missing indicator")
	}
}

func TestResolution(t *testing.T) {
	r, err := lsa.ParseResolution("5KM")
	if err != nil {
		t.Fatalf("parse resolution: %v", err)
	}
	cd := r.ClimateDataset()
	if cd.Resolution != "25km" || cd.Name != "NEX-GDDP-CMIP6" {
		t.Errorf("5km climate: got %s at %s", cd.Name, cd.Resolution)
	}
	if r.PerModel() {
		t.Errorf("5km: unexpected per model analysis")
	}

	cd = lsa.Res1km.ClimateDataset()
	if cd.Resolution != "5km" || len(cd.Models) != 6 {
		t.Errorf("1km climate: got %d models at %s", len(cd.Models), cd.Resolution)
	}
	if got := cd.Scenarios(); got[0] != lsa.Historical || len(got) != 5 {
		t.Errorf("scenarios: got %v", got)
	}

	if a := lsa.Res5km.CellArea(); a != 25 {
		t.Errorf("5km cell area: got %g, want %g", a, 25.0)
	}
	if a := lsa.Res1km.CellArea(); a != 1 {
		t.Errorf("1km cell area: got %g, want %g", a, 1.0)
	}

	if _, err := lsa.ParseResolution("10km"); !errors.Is(err, nzlusdb.ErrConfig) {
		t.Errorf("parse %q: got error %v, want %v", "10km", err, nzlusdb.ErrConfig)
	}
}

func TestFileNames(t *testing.T) {
	tests := map[string]struct {
		got  string
		want string
	}{
		"suitability": {
			got:  lsa.SuitabilityFile("apple", lsa.SSP245, "", lsa.Res5km, "1.0.0"),
			want: "apple_suitability_ssp245_5km_v1.0.0.nc",
		},
		"suitability by model": {
			got:  lsa.SuitabilityFile("apple", lsa.Historical, "EC-Earth3", lsa.Res1km, "1.0.0"),
			want: "apple_suitability_historical_EC-Earth3_1km_v1.0.0.nc",
		},
		"soil and terrain": {
			got:  lsa.SoilTerrainFile("kiwifruit", lsa.Res1km, "1.0.0"),
			want: "kiwifruit_soilTerrain-suitability_1km_v1.0.0.nc",
		},
		"change": {
			got:  lsa.ChangeFile("apple", lsa.Suitability, lsa.Res5km, "1.0.0"),
			want: "apple_suitability-MMM-change-robustness_5km_v1.0.0.nc",
		},
		"stats": {
			got:  lsa.StatsFile("apple", lsa.Res5km, "1.0.0"),
			want: "apple_suitability_stats_summary_5km_v1.0.0.tab",
		},
	}
	for name, test := range tests {
		if test.got != test.want {
			t.Errorf("%s: got %q, want %q", name, test.got, test.want)
		}
	}
}
