// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package ensemble implements the multi-model mean,
// the changes,
// and the robustness of the changes,
// of an ensemble of climate realizations.
//
// The robustness of the changes follows the approach
// of the IPCC AR6 atlas:
// a change is robust if at least 66% of the realizations
// show a significant change,
// and at least 80% of the realizations
// agree in the sign of the change.
package ensemble

import (
	"fmt"
	"math"
	"runtime"
	"strings"
	"sync"

	"github.com/baptistehamon/nzlusdb"
	"github.com/baptistehamon/nzlusdb/grid"
	"github.com/baptistehamon/nzlusdb/period"
)

// Names of the output fields.
const (
	Change          = "change"
	Categories      = "robustness_categories"
	CoefficientName = "robustness_coefficient"
)

// Historical is the scenario label
// of the reference period.
const Historical = "historical"

// Delta is the method used to compute the change.
type Delta string

// Valid delta methods.
const (
	Absolute Delta = "absolute"
	Relative Delta = "relative"
)

// ParseDelta returns a delta method from its name.
func ParseDelta(s string) (Delta, error) {
	d := Delta(strings.ToLower(strings.TrimSpace(s)))
	switch d {
	case Absolute, Relative:
		return d, nil
	}
	return "", fmt.Errorf("unknown delta method %q: %w", s, nzlusdb.ErrConfig)
}

// A Key is a composite key
// of a period and a scenario.
type Key struct {
	Period   period.Period
	Scenario string
}

// String returns the key in the form "2010-2039/ssp245".
func (k Key) String() string {
	return k.Period.String() + "/" + k.Scenario
}

// ParseKey parses a key in the form "2010-2039/ssp245".
func ParseKey(s string) (Key, error) {
	p, sc, ok := strings.Cut(s, "/")
	if !ok || sc == "" {
		return Key{}, fmt.Errorf("key %q: expecting <period>/<scenario>: %w", s, nzlusdb.ErrConfig)
	}
	pp, err := period.Parse(p)
	if err != nil {
		return Key{}, fmt.Errorf("key %q: %w", s, err)
	}
	return Key{Period: pp, Scenario: sc}, nil
}

// Options are the options of an ensemble computation.
type Options struct {
	// Periods used in the computation.
	// The first period is the reference.
	// If nil,
	// the standard periods will be used.
	Periods period.Set

	// Delta is the method used for the change.
	// By default it is absolute.
	Delta Delta

	// Scenario is the label used
	// when the field does not have a scenario axis.
	// If empty,
	// the "scenario" attribute of the field will be used.
	Scenario string

	// CPU is the number of goroutines
	// used in the computation.
	// If zero,
	// it will use all available CPUs.
	CPU int
}

// Compute computes the multi-model mean,
// the change,
// and the robustness of the change,
// of a field with time
// (in years),
// and realization axes.
// If the field has a scenario axis,
// each scenario will be processed independently.
//
// The returned dataset has a composite time axis
// with the reference period first
// (with the "historical" scenario),
// and then each future period and scenario.
// Fields in the output are:
// the multi-model mean
// (with the name of the input field),
// the change from the reference multi-model mean,
// the robustness categories,
// and the robustness coefficient.
// Change and robustness are NaN in the reference period.
func Compute(f *grid.Field, opt Options) (*grid.Dataset, error) {
	if opt.Periods == nil {
		opt.Periods = period.Standard()
	}
	if err := opt.Periods.Validate(); err != nil {
		return nil, fmt.Errorf("ensemble %q: %w", f.Name, err)
	}
	if opt.Delta == "" {
		opt.Delta = Absolute
	}
	if _, err := ParseDelta(string(opt.Delta)); err != nil {
		return nil, fmt.Errorf("ensemble %q: %w", f.Name, err)
	}
	if opt.CPU <= 0 {
		opt.CPU = runtime.NumCPU()
	}

	if _, ok := f.Axis(grid.Realization); !ok {
		return nil, fmt.Errorf("ensemble %q: without %q axis: %w", f.Name, grid.Realization, nzlusdb.ErrShape)
	}
	if tAx, ok := f.Axis(grid.Time); !ok || tAx.IsLabel() {
		return nil, fmt.Errorf("ensemble %q: without %q axis in years: %w", f.Name, grid.Time, nzlusdb.ErrShape)
	}
	if _, ok := f.Axis(grid.Scenario); !ok {
		label := opt.Scenario
		if label == "" {
			label = f.Attrs["scenario"]
		}
		if label == "" {
			return nil, fmt.Errorf("ensemble %q: without scenario: %w", f.Name, nzlusdb.ErrConfig)
		}
		var err error
		f, err = grid.Expand(f, grid.LabelAxis(grid.Scenario, []string{label}))
		if err != nil {
			return nil, fmt.Errorf("ensemble %q: %w", f.Name, err)
		}
	}

	data, err := grid.Transpose(f, grid.Scenario, grid.Realization, grid.Time)
	if err != nil {
		return nil, fmt.Errorf("ensemble %q: %w", f.Name, err)
	}
	axes := data.Axes()
	e := &engine{
		in:    data.Values(),
		nS:    axes[0].Len(),
		nR:    axes[1].Len(),
		nT:    axes[2].Len(),
		nC:    1,
		delta: opt.Delta,
	}
	rest := axes[3:]
	for _, ax := range rest {
		e.nC *= ax.Len()
	}

	years := axes[2].Values
	for _, p := range opt.Periods {
		var idx []int
		for t, y := range years {
			if p.Contains(int(y)) {
				idx = append(idx, t)
			}
		}
		if len(idx) == 0 {
			return nil, fmt.Errorf("ensemble %q: period %s: no data: %w", f.Name, p, nzlusdb.ErrConfig)
		}
		e.periods = append(e.periods, idx)
	}
	for _, t := range e.periods[0] {
		e.refYears = append(e.refYears, years[t])
	}

	keys := []string{Key{opt.Periods.Baseline(), Historical}.String()}
	for _, p := range opt.Periods.Future() {
		for s := 0; s < e.nS; s++ {
			keys = append(keys, Key{p, axes[0].Label(s)}.String())
		}
	}
	outAxes := append([]grid.Axis{grid.LabelAxis(grid.Time, keys)}, rest...)

	mean := grid.New(f.Name, outAxes...)
	for k, v := range f.Attrs {
		mean.Attrs[k] = v
	}
	delete(mean.Attrs, "scenario")
	change := grid.New(Change, outAxes...)
	change.Attrs["long_name"] = "Change"
	if opt.Delta == Relative {
		change.Attrs["units"] = "%"
	} else if u, ok := f.Attrs["units"]; ok {
		change.Attrs["units"] = u
	}
	cats := grid.New(Categories, outAxes...)
	cats.Attrs["long_name"] = "Robustness categories"
	cats.Attrs["flag_values"] = "0 1 2"
	cats.Attrs["flag_meanings"] = strings.Join(CategoryNames, " ")
	coef := grid.New(CoefficientName, outAxes...)
	coef.Attrs["long_name"] = "Robustness coefficient"
	coef.Attrs["units"] = "1"

	e.mean = mean.Values()
	e.change = change.Values()
	e.cats = cats.Values()
	e.coef = coef.Values()
	e.run(opt.CPU)

	ds := grid.NewDataset()
	ds.Add(mean)
	ds.Add(change)
	ds.Add(cats)
	ds.Add(coef)
	ds.Attrs["delta_method"] = string(opt.Delta)
	ds.Attrs["reference_period"] = opt.Periods.Baseline().String()
	return ds, nil
}

// engine computes the ensemble statistics
// of a set of cells.
// The input is in [scenario, realization, time, cell] order,
// and the outputs are in [key, cell] order.
type engine struct {
	in             []float64
	nS, nR, nT, nC int
	periods        [][]int
	refYears       []float64
	delta          Delta

	mean, change, cats, coef []float64
}

type cellJob struct {
	start, end int
	wg         *sync.WaitGroup
}

func (e *engine) run(cpu int) {
	jobs := make(chan cellJob, cpu*2)
	for range cpu {
		go e.worker(jobs)
	}

	var wg sync.WaitGroup
	chunk := max(1, e.nC/(cpu*4))
	for c := 0; c < e.nC; c += chunk {
		wg.Add(1)
		jobs <- cellJob{
			start: c,
			end:   min(c+chunk, e.nC),
			wg:    &wg,
		}
	}
	wg.Wait()
	close(jobs)
}

func (e *engine) worker(jobs chan cellJob) {
	w := &workspace{
		base:  make([]float64, e.nR),
		means: make([]float64, e.nR),
		diff:  make([]float64, e.nR),
		ref:   make([][]float64, e.nR),
		fut:   make([][]float64, e.nR),
	}
	for j := range jobs {
		for c := j.start; c < j.end; c++ {
			e.cell(c, w)
		}
		j.wg.Done()
	}
}

// workspace are the buffers
// used by a worker.
type workspace struct {
	base, means, diff []float64
	ref, fut          [][]float64
	refMean           []float64
}

func (e *engine) series(dst []float64, s, r int, idx []int, c int) []float64 {
	dst = dst[:0]
	for _, t := range idx {
		dst = append(dst, e.in[((s*e.nR+r)*e.nT+t)*e.nC+c])
	}
	return dst
}

func (e *engine) cell(c int, w *workspace) {
	ref := e.periods[0]

	// reference mean of each realization
	// in the first scenario
	for r := 0; r < e.nR; r++ {
		w.ref[r] = e.series(w.ref[r], 0, r, ref, c)
		w.base[r] = grid.NaNMean(w.ref[r])
	}
	nan := math.NaN()
	e.mean[c] = grid.NaNMean(w.base)
	e.change[c] = nan
	e.cats[c] = nan
	e.coef[c] = nan

	k := 1
	for _, fut := range e.periods[1:] {
		for s := 0; s < e.nS; s++ {
			o := k*e.nC + c
			k++

			for r := 0; r < e.nR; r++ {
				w.ref[r] = e.series(w.ref[r], s, r, ref, c)
				w.fut[r] = e.series(w.fut[r], s, r, fut, c)
				w.means[r] = grid.NaNMean(w.fut[r])
				switch e.delta {
				case Relative:
					w.diff[r] = (w.means[r] - w.base[r]) / w.base[r] * 100
				default:
					w.diff[r] = w.means[r] - w.base[r]
				}
			}
			e.mean[o] = grid.NaNMean(w.means)
			e.change[o] = grid.NaNMean(w.diff)
			e.cats[o] = Robustness(e.refYears, w.ref, w.fut).Category()

			// multi-model mean of the reference series
			w.refMean = w.refMean[:0]
			for t := range ref {
				var sum float64
				var n int
				for r := 0; r < e.nR; r++ {
					if v := w.ref[r][t]; !math.IsNaN(v) {
						sum += v
						n++
					}
				}
				if n == 0 {
					w.refMean = append(w.refMean, nan)
					continue
				}
				w.refMean = append(w.refMean, sum/float64(n))
			}
			e.coef[o] = Coefficient(w.refMean, w.fut)
		}
	}
}
