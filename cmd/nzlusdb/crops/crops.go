// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package crops implements a command to print
// the land uses and criteria of a catalog.
package crops

import (
	"fmt"
	"os"

	"github.com/baptistehamon/nzlusdb/criteria"
	catalog "github.com/baptistehamon/nzlusdb/crops"
	"github.com/js-arias/command"
)

var Command = &command.Command{
	Usage: "crops [--catalog <file>] [--tsv] [<land-use>]",
	Short: "print the land uses of a criteria catalog",
	Long: `
Command crops prints the land uses defined in a criteria catalog.

By default, the default catalog is used. To use a different catalog, use the
flag --catalog with the name of the catalog file.

If a land use is given as an argument, it prints the criteria of that land
use, with their category, weight, and standardisation function.

If the flag --tsv is defined, the full catalog is printed as a tab-delimited
file, that can be used as a template for a new catalog.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var catFile string
var tsvFlag bool

func setFlags(c *command.Command) {
	c.Flags().StringVar(&catFile, "catalog", "", "")
	c.Flags().BoolVar(&tsvFlag, "tsv", false, "")
}

func run(c *command.Command, args []string) error {
	cat := catalog.Default()
	if catFile != "" {
		f, err := os.Open(catFile)
		if err != nil {
			return err
		}
		defer f.Close()

		cat, err = catalog.Read(f)
		if err != nil {
			return fmt.Errorf("on file %q: %v", catFile, err)
		}
	}

	if tsvFlag {
		return cat.Write(c.Stdout())
	}

	if len(args) == 0 {
		for _, lu := range cat.LandUses() {
			s, err := cat.Set(lu)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.Stdout(), "%s\t%s\t%d criteria\n", lu, s.LongName, len(s.Criteria()))
		}
		return nil
	}

	s, err := cat.Set(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Stdout(), "%s: %s\n", s.LandUse, s.LongName)
	for _, cg := range criteria.Categories() {
		fmt.Fprintf(c.Stdout(), "\n%s [weight %.3f]:\n", cg, s.Weight(cg))
		for _, cr := range s.ByCategory(cg) {
			fn := "computed"
			if cr.Curve != nil {
				fn = fmt.Sprintf("%s(%s)", cr.Curve.Name(), cr.Curve.Params())
			}
			fmt.Fprintf(c.Stdout(), "\t%s\t%s\t%.3f\t%s\n", cr.Name, cr.LongName, cr.Weight, fn)
		}
	}
	return nil
}
