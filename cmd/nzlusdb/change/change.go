// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package change implements a command to compute
// the multi-model mean,
// the change,
// and the robustness of the change,
// of the suitability of a land use.
package change

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/baptistehamon/nzlusdb/ensemble"
	"github.com/baptistehamon/nzlusdb/grid"
	"github.com/baptistehamon/nzlusdb/lsa"
	"github.com/baptistehamon/nzlusdb/ncio"
	"github.com/baptistehamon/nzlusdb/period"
	"github.com/baptistehamon/nzlusdb/project"
	"github.com/baptistehamon/nzlusdb/runparam"
	"github.com/js-arias/command"
)

var Command = &command.Command{
	Usage: `change [--delta <method>] [--var <name>]
	[--cpu <number>] <project-file> <land-use>`,
	Short: "compute the change and robustness of the suitability",
	Long: `
Command change reads the output of the command 'nzlusdb run' for a land use,
and computes the multi-model mean, the change from the reference period, and
the robustness of the change, for each period and projected scenario.

The first argument of the command is the name of the project file. The second
argument is the name of the land use.

The robustness of the change follows the approach of the IPCC AR6 atlas: a
change is robust if at least 66% of the climate models show a significant
change and at least 80% of the models agree on the sign of the change; there
is no change if less than 66% of the models show a significant change; and
there are conflicting signals otherwise. The robustness coefficient of Knutti
and Sedláček (2013) is also computed.

By default, the change is computed as defined in the run parameters of the
project. Use the flag --delta to set a different method, either "absolute" or
"relative" (in percentage).

By default, the suitability is used. Use the flag --var to use a different
variable of the run output (for example "climate").

By default, all available CPUs are used. Use the flag --cpu to set a different
number of CPUs.

The output file is stored in the output directory of the project.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var deltaFlag string
var varFlag string
var numCPU int

func setFlags(c *command.Command) {
	c.Flags().StringVar(&deltaFlag, "delta", "", "")
	c.Flags().StringVar(&varFlag, "var", lsa.Suitability, "")
	c.Flags().IntVar(&numCPU, "cpu", runtime.NumCPU(), "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}
	if len(args) < 2 {
		return c.UsageError("expecting land use")
	}
	landUse := args[1]

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}
	rp, err := p.Params()
	if err != nil {
		return err
	}
	if deltaFlag != "" {
		if err := rp.SetDelta(deltaFlag); err != nil {
			return err
		}
	}
	periods, err := p.Periods()
	if err != nil {
		return err
	}
	attrs, err := p.Attrs()
	if err != nil {
		return err
	}
	out, err := p.OutputDir()
	if err != nil {
		return err
	}

	var scenarios []string
	for _, s := range rp.Scenarios() {
		if s == rp.Historical() {
			continue
		}
		scenarios = append(scenarios, s)
	}
	if len(scenarios) == 0 {
		return fmt.Errorf("project %q: without projected scenarios", args[0])
	}

	rd := reader{
		dir:     out,
		landUse: landUse,
		rp:      rp,
	}
	hist, err := rd.read(rp.Historical())
	if err != nil {
		return err
	}

	var fields []*grid.Field
	for _, s := range scenarios {
		f, err := rd.read(s)
		if err != nil {
			return err
		}
		f, err = joinReference(hist, f, periods)
		if err != nil {
			return fmt.Errorf("scenario %q: %v", s, err)
		}
		fields = append(fields, f)
	}

	data, err := grid.Stack(grid.LabelAxis(grid.Scenario, scenarios), fields...)
	if err != nil {
		return err
	}
	data.Name = varFlag
	data.Attrs = fields[0].Attrs

	ds, err := ensemble.Compute(data, ensemble.Options{
		Periods: periods,
		Delta:   rp.Delta(),
		CPU:     numCPU,
	})
	if err != nil {
		return err
	}

	cd := rp.Resolution().ClimateDataset()
	for k, v := range attrs {
		ds.Attrs[k] = v
	}
	ds.Attrs["land_use"] = landUse
	ds.Attrs["resolution"] = string(rp.Resolution())
	ds.Attrs["version"] = rp.Version()
	ds.Attrs["source"] = cd.Source()

	name := filepath.Join(out, lsa.ChangeFile(landUse, varFlag, rp.Resolution(), rp.Version()))
	if err := ncio.Write(name, ds); err != nil {
		return err
	}
	fmt.Fprintf(c.Stdout(), "%s\n", name)
	return nil
}

// reader reads the output of the runs.
type reader struct {
	dir     string
	landUse string
	rp      *runparam.RP
}

// read reads the run output of a scenario,
// joining the output of each model
// if the run is by climate model.
func (rd reader) read(scenario string) (*grid.Field, error) {
	res := rd.rp.Resolution()
	if !res.PerModel() {
		name := filepath.Join(rd.dir, lsa.SuitabilityFile(rd.landUse, scenario, "", res, rd.rp.Version()))
		return ncio.Read(name, varFlag)
	}

	var fields []*grid.Field
	for _, m := range rd.rp.Models() {
		name := filepath.Join(rd.dir, lsa.SuitabilityFile(rd.landUse, scenario, m, res, rd.rp.Version()))
		f, err := ncio.Read(name, varFlag)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	f, err := grid.Concat(grid.Realization, fields...)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %v", scenario, err)
	}
	f.Attrs = fields[0].Attrs
	return f, nil
}

// joinReference adds the historical values
// to a projection
// that does not include the reference period.
func joinReference(hist, f *grid.Field, periods period.Set) (*grid.Field, error) {
	tAx, ok := f.Axis(grid.Time)
	if !ok || tAx.Len() == 0 {
		return nil, fmt.Errorf("field %q: without time axis", f.Name)
	}
	ref := periods.Baseline()
	if tAx.Values[0] <= float64(ref.End) {
		return f, nil
	}

	var names []string
	for _, ax := range f.Axes() {
		names = append(names, ax.Name)
	}
	h, err := grid.Transpose(hist, names...)
	if err != nil {
		return nil, err
	}
	j, err := grid.Concat(grid.Time, h, f)
	if err != nil {
		return nil, err
	}
	j.Attrs = f.Attrs
	return j, nil
}
