// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package crops_test

import (
	"bytes"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/baptistehamon/nzlusdb"
	"github.com/baptistehamon/nzlusdb/criteria"
	"github.com/baptistehamon/nzlusdb/crops"
	"github.com/baptistehamon/nzlusdb/grid"
	"github.com/baptistehamon/nzlusdb/standard"
)

func TestDefault(t *testing.T) {
	cat := crops.Default()

	want := []string{
		"apple",
		"avocado",
		"blueberry",
		"cherry",
		"citrus",
		"hops",
		"kiwifruit",
		"maizeearly",
		"manuka",
		"pinotnoir",
		"wheatearly",
	}
	if !reflect.DeepEqual(cat.LandUses(), want) {
		t.Errorf("land uses: got %v, want %v", cat.LandUses(), want)
	}

	apple, err := cat.Set("apple")
	if err != nil {
		t.Fatalf("set %q: %v", "apple", err)
	}
	if apple.LongName != "Apple" {
		t.Errorf("apple long name: got %q", apple.LongName)
	}
	if n := len(apple.Criteria()); n != 9 {
		t.Errorf("apple criteria: got %d, want %d", n, 9)
	}
	if w := apple.Weight(criteria.SoilTerrain); w != 4.5 {
		t.Errorf("apple soil weight: got %g, want %g", w, 4.5)
	}
	if w := apple.Weight(criteria.Climate); w != 5.5 {
		t.Errorf("apple climate weight: got %g, want %g", w, 5.5)
	}

	slope, ok := apple.Criterion("slope")
	if !ok {
		t.Fatalf("apple: criterion %q not found", "slope")
	}
	if !reflect.DeepEqual(slope.Curve, standard.Logistic{A: -0.5, B: 19}) {
		t.Errorf("apple slope: got %v", slope.Curve)
	}
	if slope.File != "New-Zealand-Gridded-Land-Information-Dataset" || slope.Variable != "slope" {
		t.Errorf("apple slope: file %q, variable %q", slope.File, slope.Variable)
	}

	frost, _ := apple.Criterion("frost_survival")
	if !frost.Computed || frost.Curve != nil {
		t.Errorf("apple frost survival: want a computed criterion")
	}

	citrus, err := cat.Set("citrus")
	if err != nil {
		t.Fatalf("set %q: %v", "citrus", err)
	}
	tn, _ := citrus.Criterion("tn_mean")
	if tn.Clip == nil || tn.Clip.Min != 0 || !math.IsInf(tn.Clip.Max, 1) {
		t.Errorf("citrus tn_mean: clip %v, want [0, +Inf]", tn.Clip)
	}

	maize, err := cat.Set("maizeearly")
	if err != nil {
		t.Fatalf("set %q: %v", "maizeearly", err)
	}
	md, _ := maize.Criterion("maturity_date")
	if !reflect.DeepEqual(md.Curve, standard.Boolean{Op: standard.LessEq, Thresh: 363}) {
		t.Errorf("maize maturity date: got %v", md.Curve)
	}
	if md.Since == nil || md.Since.String() != "11-01" {
		t.Errorf("maize maturity date: since %v, want 11-01", md.Since)
	}
	if md.Clip != nil {
		t.Errorf("maize maturity date: clip %v, want nil", md.Clip)
	}

	if _, err := cat.Set("rice"); !errors.Is(err, nzlusdb.ErrConfig) {
		t.Errorf("set %q: got error %v, want %v", "rice", err, nzlusdb.ErrConfig)
	}
}

func TestReadWrite(t *testing.T) {
	cat := crops.Default()

	var buf bytes.Buffer
	if err := cat.Write(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}

	nc, err := crops.Read(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(nc.LandUses(), cat.LandUses()) {
		t.Fatalf("land uses: got %v, want %v", nc.LandUses(), cat.LandUses())
	}
	for _, lu := range cat.LandUses() {
		want, _ := cat.Set(lu)
		got, _ := nc.Set(lu)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("land use %q: got %v, want %v", lu, got, want)
		}
	}
}

func TestReadErrors(t *testing.T) {
	head := "landuse\tcriterion\tlong_name\tcategory\tweight\tfunc\tparams\tpreprocess\tfile\tvariable\n"
	tests := map[string]string{
		"missing field": "landuse\tcriterion\n" + "apple\tslope\n",
		"bad weight":    head + "apple\tslope\tSlope\tsoilTerrain\tx\tlogistic\ta=1,b=2\t\tsoil\tslope\n",
		"zero weight":   head + "apple\tslope\tSlope\tsoilTerrain\t0\tlogistic\ta=1,b=2\t\tsoil\tslope\n",
		"bad category":  head + "apple\tslope\tSlope\twater\t1\tlogistic\ta=1,b=2\t\tsoil\tslope\n",
		"bad function":  head + "apple\tslope\tSlope\tsoilTerrain\t1\tgauss\ta=1,b=2\t\tsoil\tslope\n",
		"bad clip":      head + "apple\tslope\tSlope\tsoilTerrain\t1\tlogistic\ta=1,b=2\tlow=0\tsoil\tslope\n",
		"bad since":     head + "apple\tbloom\tBloom\tclimate\t1\tlogistic\ta=1,b=2\tsince=13-01\tsoil\tbloom\n",
		"inverted clip": head + "apple\tslope\tSlope\tsoilTerrain\t1\tlogistic\ta=1,b=2\tmin=1,max=0\tsoil\tslope\n",
		"without file":  head + "apple\tslope\tSlope\tsoilTerrain\t1\tlogistic\ta=1,b=2\t\t\tslope\n",
		"empty":         head,
	}

	for name, data := range tests {
		if _, err := crops.Read(strings.NewReader(data)); !errors.Is(err, nzlusdb.ErrConfig) {
			t.Errorf("%s: got error %v, want %v", name, err, nzlusdb.ErrConfig)
		}
	}
}

func TestMaturityDate(t *testing.T) {
	cat := crops.Default()
	tests := map[string]struct {
		year float64
		doy  []float64
		want []float64
	}{
		// days since November 1st
		"maizeearly": {
			year: 2001,
			doy:  []float64{364, 304, 305},
			want: []float64{1, 0, 1},
		},
		// days since April 1st,
		// in a leap year
		"wheatearly": {
			year: 2004,
			doy:  []float64{90, 91, 92},
			want: []float64{1, 0, 1},
		},
	}

	lat := grid.NewAxis(grid.Lat, []float64{-40, -41, -42})
	for lu, test := range tests {
		set, err := cat.Set(lu)
		if err != nil {
			t.Fatalf("set %q: %v", lu, err)
		}
		md, ok := set.Criterion("maturity_date")
		if !ok {
			t.Fatalf("%s: criterion %q not found", lu, "maturity_date")
		}
		ind, err := grid.FromValues("maturity_date", test.doy, grid.NewAxis(grid.Time, []float64{test.year}), lat)
		if err != nil {
			t.Fatalf("field: %v", err)
		}
		sc, err := md.Bind(ind).Compute()
		if err != nil {
			t.Fatalf("%s: compute: %v", lu, err)
		}
		if got := sc.Values(); !reflect.DeepEqual(got, test.want) {
			t.Errorf("%s: got %v, want %v", lu, got, test.want)
		}
	}
}
