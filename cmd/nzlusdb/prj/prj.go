// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package prj implements a command to print
// the basic information of a project.
package prj

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/baptistehamon/nzlusdb/grid"
	"github.com/baptistehamon/nzlusdb/project"
	"github.com/baptistehamon/nzlusdb/runparam"
	"github.com/js-arias/command"
)

var Command = &command.Command{
	Usage: "prj <project-file>",
	Short: "print information about a project",
	Long: `
Command prj reads a NZLUSDB project and prints the information of the
different project elements into the standard output.

The argument of the command is the name of the project file.
	`,
	Run: run,
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}
	w := c.Stdout()

	rp, err := p.Params()
	if err != nil {
		return err
	}
	printParams(w, p, rp)

	periods, err := p.Periods()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Periods:\n")
	if f := p.Path(project.Periods); f != "" {
		fmt.Fprintf(w, "\tfile: %s\n", f)
	}
	fmt.Fprintf(w, "\treference: %s\n", periods.Baseline())
	for _, pp := range periods.Future() {
		fmt.Fprintf(w, "\tfuture: %s\n", pp)
	}
	fmt.Fprintf(w, "\n")

	cat, err := p.Catalog()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Criteria catalog:\n")
	if f := p.Path(project.Catalog); f != "" {
		fmt.Fprintf(w, "\tfile: %s\n", f)
	} else {
		fmt.Fprintf(w, "\tfile: <default>\n")
	}
	fmt.Fprintf(w, "\tland uses: %s\n", strings.Join(cat.LandUses(), ", "))
	fmt.Fprintf(w, "\n")

	if f := p.Path(project.Indicators); f != "" {
		fmt.Fprintf(w, "Indicators:\n\tdirectory: %s\n\n", p.Resolve(project.Indicators))
	}
	if f := p.Path(project.Output); f != "" {
		fmt.Fprintf(w, "Output:\n\tdirectory: %s\n\n", p.Resolve(project.Output))
	}

	attrs, err := p.Attrs()
	if err != nil {
		return err
	}
	if len(attrs) > 0 {
		fmt.Fprintf(w, "Global attributes:\n")
		fmt.Fprintf(w, "\tfile: %s\n", p.Path(project.Attrs))
		fmt.Fprintf(w, "\tattributes: %d\n", len(attrs))
		fmt.Fprintf(w, "\n")
	}

	mask, err := p.Mask()
	if err != nil {
		return err
	}
	if mask != nil {
		printMask(w, p.Path(project.Mask), mask)
	}
	return nil
}

func printParams(w io.Writer, p *project.Project, rp *runparam.RP) {
	cd := rp.Resolution().ClimateDataset()
	fmt.Fprintf(w, "Run parameters:\n")
	if f := p.Path(project.Params); f != "" {
		fmt.Fprintf(w, "\tfile: %s\n", f)
	}
	fmt.Fprintf(w, "\tresolution: %s\n", rp.Resolution())
	fmt.Fprintf(w, "\tclimate data: %s\n", cd.Source())
	fmt.Fprintf(w, "\tdelta: %s\n", rp.Delta())
	fmt.Fprintf(w, "\tversion: %s\n", rp.Version())
	fmt.Fprintf(w, "\tscenarios: %s\n", strings.Join(rp.Scenarios(), ", "))
	fmt.Fprintf(w, "\tmodels: %d\n", len(rp.Models()))
	fmt.Fprintf(w, "\n")
}

func printMask(w io.Writer, name string, mask *grid.Field) {
	fmt.Fprintf(w, "Mask:\n")
	fmt.Fprintf(w, "\tfile: %s\n", name)
	var used int
	for _, v := range mask.Values() {
		if v != 0 && !math.IsNaN(v) {
			used++
		}
	}
	fmt.Fprintf(w, "\tcells: %d [%d used]\n", mask.Len(), used)
	fmt.Fprintf(w, "\n")
}
