// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package mapcmd implements a command to draw
// the suitability maps of a land use.
package mapcmd

import (
	"fmt"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/baptistehamon/nzlusdb/ensemble"
	"github.com/baptistehamon/nzlusdb/grid"
	"github.com/baptistehamon/nzlusdb/lsa"
	"github.com/baptistehamon/nzlusdb/ncio"
	"github.com/baptistehamon/nzlusdb/project"
	"github.com/baptistehamon/nzlusdb/suitmap"
	"github.com/js-arias/command"
)

var Command = &command.Command{
	Usage: `map [-c|--columns <value>] [--scheme <name>] [--key <key>]
	[--nan] [--no-change] <project-file> <land-use>`,
	Short: "draw suitability maps",
	Long: `
Command map reads the output of the command 'nzlusdb change' for a land use,
and draws a map of the multi-model mean of the suitability for each period and
scenario. For projected periods, it also draws a map of the change in
suitability, hatched by the robustness of the change: cells with no change are
hatched with diagonal lines, and cells with conflicting signals are cross
hatched.

The first argument of the command is the name of the project file. The second
argument is the name of the land use.

By default, the map will be 1000 pixels wide. Use the flag --columns, or -c,
to define a different number of columns.

By default, the iridescent color scheme will be used for the suitability. Use
the flag --scheme to set a different color scheme. Valid schemes are:

	gray         a gray scale
	incandescent a color-blind safe scheme from Paul Tol
	iridescent   a color-blind safe scheme from Paul Tol (default)
	rainbow      the rainbow color scheme from Paul Tol

The change maps always use a diverging pink to green scheme, centered at zero.

By default, all periods and scenarios will be drawn. Use the flag --key to
draw a single map, for example "2070-2099/ssp585".

By default, cells without data use the background color. Use the flag --nan
to draw them in light gray.

Use the flag --no-change to skip the change maps.

The images are stored in the output directory of the project, as PNG files.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var colsFlag int
var schemeFlag string
var keyFlag string
var nanFlag bool
var noChange bool

func setFlags(c *command.Command) {
	c.Flags().IntVar(&colsFlag, "columns", 1000, "")
	c.Flags().IntVar(&colsFlag, "c", 1000, "")
	c.Flags().StringVar(&schemeFlag, "scheme", "iridescent", "")
	c.Flags().StringVar(&keyFlag, "key", "", "")
	c.Flags().BoolVar(&nanFlag, "nan", false, "")
	c.Flags().BoolVar(&noChange, "no-change", false, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}
	if len(args) < 2 {
		return c.UsageError("expecting land use")
	}
	landUse := args[1]

	gradient, err := suitmap.ParseGradient(schemeFlag)
	if err != nil {
		return err
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}
	rp, err := p.Params()
	if err != nil {
		return err
	}
	out, err := p.OutputDir()
	if err != nil {
		return err
	}

	name := filepath.Join(out, lsa.ChangeFile(landUse, lsa.Suitability, rp.Resolution(), rp.Version()))
	ds, err := ncio.ReadDataset(name)
	if err != nil {
		return err
	}
	suit := ds.Field(lsa.Suitability)
	if suit == nil {
		return fmt.Errorf("on file %q: variable %q not found", name, lsa.Suitability)
	}
	change := ds.Field(ensemble.Change)
	cats := ds.Field(ensemble.Categories)

	tAx, ok := suit.Axis(grid.Time)
	if !ok || !tAx.IsLabel() {
		return fmt.Errorf("on file %q: variable %q: without period keys", name, lsa.Suitability)
	}

	var keys []string
	for i := 0; i < tAx.Len(); i++ {
		k := tAx.Label(i)
		if keyFlag != "" && k != keyFlag {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return fmt.Errorf("key %q not found", keyFlag)
	}

	for _, k := range keys {
		key, err := ensemble.ParseKey(k)
		if err != nil {
			return err
		}
		prefix := fmt.Sprintf("%s_suitability_%s_%s_%s_v%s", landUse, key.Period, key.Scenario, rp.Resolution(), rp.Version())

		sf, err := grid.SelectLabel(suit, grid.Time, k)
		if err != nil {
			return err
		}
		m, err := suitmap.New(sf, colsFlag)
		if err != nil {
			return err
		}
		m.Gradient = gradient
		m.ShowNaN = nanFlag
		if err := writeImage(c, filepath.Join(out, fileName(prefix)+".png"), m); err != nil {
			return err
		}

		if noChange || change == nil || cats == nil || key.Scenario == ensemble.Historical {
			continue
		}
		m, err = changeMap(change, cats, k)
		if err != nil {
			return err
		}
		if m == nil {
			continue
		}
		if err := writeImage(c, filepath.Join(out, fileName(prefix)+"_change.png"), m); err != nil {
			return err
		}
	}
	return nil
}

// changeMap returns the map of the change
// at a period key,
// hatched by the robustness categories.
// It returns nil if there are no changes to draw.
func changeMap(change, cats *grid.Field, key string) (*suitmap.Image, error) {
	cf, err := grid.SelectLabel(change, grid.Time, key)
	if err != nil {
		return nil, err
	}
	if cf.Valid() == 0 {
		return nil, nil
	}
	rf, err := grid.SelectLabel(cats, grid.Time, key)
	if err != nil {
		return nil, err
	}

	m, err := suitmap.New(cf, colsFlag)
	if err != nil {
		return nil, err
	}
	min, max := cf.Range()
	lim := math.Max(math.Abs(min), math.Abs(max))
	if lim == 0 {
		lim = 1
	}
	m.Min, m.Max = -lim, lim
	m.Gradient = suitmap.PinkGreen{}
	m.ShowNaN = nanFlag
	if err := m.SetRobustness(rf); err != nil {
		return nil, err
	}
	return m, nil
}

func fileName(s string) string {
	return strings.ReplaceAll(s, "/", "_")
}

func writeImage(c *command.Command, name string, m *suitmap.Image) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	if err := png.Encode(f, m); err != nil {
		return fmt.Errorf("when encoding image file %q: %v", name, err)
	}
	fmt.Fprintf(c.Stdout(), "%s\n", name)
	return nil
}
