// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package runcmd implements a command to run
// a land suitability analysis.
package runcmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/baptistehamon/nzlusdb/grid"
	"github.com/baptistehamon/nzlusdb/lsa"
	"github.com/baptistehamon/nzlusdb/ncio"
	"github.com/baptistehamon/nzlusdb/project"
	"github.com/js-arias/command"
	"golang.org/x/sync/errgroup"
)

var Command = &command.Command{
	Usage: `run [--scenario <name>] [--model <name>] [--rerun]
	[--cpu <number>] <project-file> <land-use>`,
	Short: "run a land suitability analysis",
	Long: `
Command run reads a NZLUSDB project and runs the land suitability analysis of
a land use.

The first argument of the command is the name of the project file. The second
argument is the name of the land use, as defined in the criteria catalog of
the project.

The criteria of the land use are scored with their standardisation functions,
the scores of each category (climate and soil and terrain) are aggregated
with a weighted geometric mean, and both categories are aggregated into the
final suitability, weighting each category by the sum of the weights of its
criteria.

By default, all scenarios defined in the run parameters of the project are
run. Use the flag --scenario to run a single scenario. At 1km, the analysis is
run for each climate model; use the flag --model to run a single model.

By default, if an output file already exists, the run will be skipped. Use the
flag --rerun to run it again.

Indicator values outside the domain of the aggregation function (for example,
negative scores) are reported in the standard error, and the output has NaN
values at those cells.

By default, all available CPUs are used to run the scenarios. Use the flag
--cpu to set a different number of CPUs.

The output files are stored in the output directory of the project. See
'nzlusdb help outputs' for a description of the output files.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var scenarioFlag string
var modelFlag string
var rerun bool
var numCPU int

func setFlags(c *command.Command) {
	c.Flags().StringVar(&scenarioFlag, "scenario", "", "")
	c.Flags().StringVar(&modelFlag, "model", "", "")
	c.Flags().BoolVar(&rerun, "rerun", false, "")
	c.Flags().IntVar(&numCPU, "cpu", runtime.NumCPU(), "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}
	if len(args) < 2 {
		return c.UsageError("expecting land use")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}
	rp, err := p.Params()
	if err != nil {
		return err
	}
	cat, err := p.Catalog()
	if err != nil {
		return err
	}
	set, err := cat.Set(args[1])
	if err != nil {
		return err
	}
	attrs, err := p.Attrs()
	if err != nil {
		return err
	}
	ind, err := p.Indicators(rp)
	if err != nil {
		return err
	}
	out, err := p.OutputDir()
	if err != nil {
		return err
	}

	a := lsa.New(set, rp.Resolution())
	a.Version = rp.Version()
	a.Attrs = attrs

	scenarios := rp.Scenarios()
	if scenarioFlag != "" {
		scenarios = []string{scenarioFlag}
	}
	models := []string{""}
	if rp.Resolution().PerModel() {
		models = rp.Models()
		if modelFlag != "" {
			models = []string{modelFlag}
		}
	}

	r := &runner{
		c:        c,
		a:        a,
		ind:      ind,
		out:      out,
		landUse:  set.LandUse,
		res:      rp.Resolution(),
		version:  rp.Version(),
		perModel: rp.Resolution().PerModel(),
	}

	var g errgroup.Group
	g.SetLimit(max(1, numCPU))
	for _, s := range scenarios {
		for _, m := range models {
			g.Go(func() error {
				return r.run(s, m)
			})
		}
	}
	return g.Wait()
}

type runner struct {
	c   *command.Command
	a   *lsa.Analysis
	ind *ncio.Indicators
	out string

	landUse  string
	res      lsa.Resolution
	version  string
	perModel bool

	mu       sync.Mutex // guards the standard output
	soilOnce sync.Once
	soilErr  error
}

func (r *runner) run(scenario, model string) error {
	name := filepath.Join(r.out, lsa.SuitabilityFile(r.landUse, scenario, model, r.res, r.version))
	if !rerun && exists(name) {
		r.printf("%s: skipped: file %q already exists\n", runName(scenario, model), name)
		return nil
	}

	ds, err := r.a.Run(scenario, model, r.ind)
	if err != nil {
		return err
	}
	for _, w := range ds.Warnings {
		r.eprintf("%s: warning: %v\n", runName(scenario, model), w)
	}

	if r.perModel {
		soil, clim := splitTime(ds)
		r.soilOnce.Do(func() {
			sn := filepath.Join(r.out, lsa.SoilTerrainFile(r.landUse, r.res, r.version))
			if !rerun && exists(sn) {
				return
			}
			r.soilErr = ncio.Write(sn, soil)
		})
		if r.soilErr != nil {
			return r.soilErr
		}
		ds = clim
	}

	if err := ncio.Write(name, ds); err != nil {
		return err
	}
	r.printf("%s: %s\n", runName(scenario, model), name)
	return nil
}

func (r *runner) printf(format string, a ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.c.Stdout(), format, a...)
}

func (r *runner) eprintf(format string, a ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.c.Stderr(), format, a...)
}

// splitTime splits a dataset
// into the fields without a time axis
// and the fields with a time axis.
func splitTime(ds *grid.Dataset) (static, dynamic *grid.Dataset) {
	static = grid.NewDataset()
	dynamic = grid.NewDataset()
	for k, v := range ds.Attrs {
		static.Attrs[k] = v
		dynamic.Attrs[k] = v
	}
	delete(static.Attrs, "scenario")
	delete(static.Attrs, "models")
	for _, f := range ds.Fields() {
		if f.Dim(grid.Time) < 0 {
			static.Add(f)
			continue
		}
		dynamic.Add(f)
	}
	return static, dynamic
}

func runName(scenario, model string) string {
	if model == "" {
		return scenario
	}
	return scenario + "/" + model
}

func exists(name string) bool {
	_, err := os.Stat(name)
	return !errors.Is(err, fs.ErrNotExist)
}
