// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package statscmd implements a command to compute
// the area statistics of the suitability of a land use.
package statscmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/baptistehamon/nzlusdb/lsa"
	"github.com/baptistehamon/nzlusdb/ncio"
	"github.com/baptistehamon/nzlusdb/project"
	"github.com/baptistehamon/nzlusdb/stats"
	"github.com/js-arias/command"
)

var Command = &command.Command{
	Usage: `stats [--cell-area <km2>] [--nominal]
	[-o|--output <file>] <project-file> <land-use>`,
	Short: "compute area statistics of the suitability",
	Long: `
Command stats reads the output of the command 'nzlusdb change' for a land use,
and computes, for each period and scenario, the area of each suitability bin
(0-0.1, 0.1-0.2, ..., 0.9-1), and the area weighted mean, standard deviation,
and median of the suitability.

The first argument of the command is the name of the project file. The second
argument is the name of the land use.

If the project defines a mask, only the cells with a non-zero value in the
mask are used.

By default, the area of each cell is calculated on a spherical Earth. Use the
flag --cell-area to set a fixed area for each cell (in km2), or the flag
--nominal to use the square of the resolution of the analysis (for example 25
km2 at 5km).

The output is a tab-delimited file with areas in km2, stored in the output
directory of the project. Use the flag --output, or -o, to set a different
output file name; use '-' to print the output in the standard output.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var cellArea float64
var nominal bool
var output string

func setFlags(c *command.Command) {
	c.Flags().Float64Var(&cellArea, "cell-area", 0, "")
	c.Flags().BoolVar(&nominal, "nominal", false, "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
}

func run(c *command.Command, args []string) (err error) {
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
	mask, err := p.Mask()
	if err != nil {
		return err
	}
	out, err := p.OutputDir()
	if err != nil {
		return err
	}

	name := filepath.Join(out, lsa.ChangeFile(landUse, lsa.Suitability, rp.Resolution(), rp.Version()))
	f, err := ncio.Read(name, lsa.Suitability)
	if err != nil {
		return err
	}

	opt := stats.Options{
		CellArea: cellArea,
		Mask:     mask,
	}
	if nominal {
		opt.CellArea = rp.Resolution().CellArea()
	}
	s, err := stats.Compute(f, opt)
	if err != nil {
		return err
	}

	if output == "-" {
		return s.Write(c.Stdout())
	}
	if output == "" {
		output = filepath.Join(out, lsa.StatsFile(landUse, rp.Resolution(), rp.Version()))
	}

	w, err := os.Create(output)
	if err != nil {
		return err
	}
	defer func() {
		e := w.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	if err := s.Write(w); err != nil {
		return fmt.Errorf("while writing file %q: %v", output, err)
	}
	return nil
}
