// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package plot implements a command to plot
// the area statistics of the suitability of a land use.
package plot

import (
	"cmp"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/baptistehamon/nzlusdb/ensemble"
	"github.com/baptistehamon/nzlusdb/lsa"
	"github.com/baptistehamon/nzlusdb/project"
	"github.com/baptistehamon/nzlusdb/stats"
	"github.com/js-arias/blind"
	"github.com/js-arias/command"
	"golang.org/x/exp/slices"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var Command = &command.Command{
	Usage: `plot [--bins] [-o|--output <prefix>]
	<project-file> <land-use>`,
	Short: "plot the area statistics of the suitability",
	Long: `
Command plot reads the output of the command 'nzlusdb stats' for a land use,
and draws the mean suitability of each scenario along the analysis periods.
The reference period is shared by all scenarios. The error bars are the
standard deviation of the suitability.

The first argument of the command is the name of the project file. The second
argument is the name of the land use.

If the flag --bins is defined, it also draws, for each period and scenario, a
bar chart with the area of each suitability bin.

The images are stored in the output directory of the project, as PNG files.
Use the flag --output, or -o, to set a different prefix for the image files.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var binsFlag bool
var output string

func setFlags(c *command.Command) {
	c.Flags().BoolVar(&binsFlag, "bins", false, "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
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
	out, err := p.OutputDir()
	if err != nil {
		return err
	}

	name := filepath.Join(out, lsa.StatsFile(landUse, rp.Resolution(), rp.Version()))
	s, err := readSummary(name)
	if err != nil {
		return err
	}

	if output == "" {
		output = filepath.Join(out, fmt.Sprintf("%s_suitability_%s_v%s", landUse, rp.Resolution(), rp.Version()))
	}

	mn := output + "_mean.png"
	if err := meanPlot(s, mn); err != nil {
		return err
	}
	fmt.Fprintf(c.Stdout(), "%s\n", mn)

	if !binsFlag {
		return nil
	}
	for _, r := range s.Rows {
		bn := fmt.Sprintf("%s_%s_bins.png", output, strings.ReplaceAll(r.Key, "/", "_"))
		if err := binsPlot(r, bn); err != nil {
			return err
		}
		fmt.Fprintf(c.Stdout(), "%s\n", bn)
	}
	return nil
}

func readSummary(name string) (*stats.Summary, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := stats.Read(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return s, nil
}

// meanPlot draws a line for each scenario
// with the mean suitability at each period.
func meanPlot(s *stats.Summary, name string) error {
	var ref *stats.Row
	series := make(map[string][]stats.Row)
	for i, r := range s.Rows {
		if r.Scenario == ensemble.Historical {
			ref = &s.Rows[i]
			continue
		}
		series[r.Scenario] = append(series[r.Scenario], r)
	}
	scenarios := make([]string, 0, len(series))
	for sc := range series {
		scenarios = append(scenarios, sc)
	}
	slices.Sort(scenarios)

	p := plot.New()
	p.Title.Text = s.Variable
	p.X.Label.Text = "year"
	p.Y.Label.Text = "mean " + s.Variable
	p.Y.Min = 0
	p.Y.Max = 1
	p.Legend.Top = true

	if ref != nil && !math.IsNaN(ref.Mean) {
		pts := plotter.XYs{{X: midYear(*ref), Y: ref.Mean}}
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return err
		}
		sc.Color = color.Black
		p.Add(sc)
		p.Legend.Add(ensemble.Historical, sc)
	}

	for i, sc := range scenarios {
		rows := series[sc]
		slices.SortFunc(rows, func(a, b stats.Row) int {
			return cmp.Compare(midYear(a), midYear(b))
		})
		if ref != nil {
			rows = append([]stats.Row{*ref}, rows...)
		}

		var xys plotter.XYs
		var errs plotter.YErrors
		for _, r := range rows {
			if math.IsNaN(r.Mean) {
				continue
			}
			xys = append(xys, plotter.XY{X: midYear(r), Y: r.Mean})
			sd := r.StdDev
			if math.IsNaN(sd) {
				sd = 0
			}
			errs = append(errs, struct{ Low, High float64 }{sd, sd})
		}
		if len(xys) == 0 {
			continue
		}

		col := scenarioColor(i, len(scenarios))
		ln, pts, err := plotter.NewLinePoints(xys)
		if err != nil {
			return err
		}
		ln.Color = col
		pts.Color = col

		eb, err := plotter.NewYErrorBars(errorPoints{xys, errs})
		if err != nil {
			return err
		}
		eb.Color = col

		p.Add(ln, pts, eb)
		p.Legend.Add(sc, ln, pts)
	}

	return p.Save(6*vg.Inch, 4*vg.Inch, name)
}

// binsPlot draws a bar chart
// with the area of each suitability bin.
func binsPlot(r stats.Row, name string) error {
	p := plot.New()
	p.Title.Text = r.Key
	p.X.Label.Text = "suitability"
	p.Y.Label.Text = "area (km²)"

	vals := make(plotter.Values, len(r.Bins))
	copy(vals, r.Bins)
	bars, err := plotter.NewBarChart(vals, vg.Points(20))
	if err != nil {
		return err
	}
	bars.LineStyle.Width = vg.Length(0)
	bars.Color = blind.Sequential(blind.Iridescent, 0.5)
	p.Add(bars)

	labels := make([]string, len(r.Bins))
	for i := range labels {
		labels[i] = stats.BinLabel(i)
	}
	p.NominalX(labels...)

	return p.Save(6*vg.Inch, 4*vg.Inch, name)
}

func midYear(r stats.Row) float64 {
	k, err := ensemble.ParseKey(r.Key)
	if err != nil {
		return 0
	}
	return float64(k.Period.Start+k.Period.End) / 2
}

func scenarioColor(i, n int) color.Color {
	if n < 2 {
		return blind.Sequential(blind.RainbowPurpleToRed, 1)
	}
	return blind.Sequential(blind.RainbowPurpleToRed, float64(i)/float64(n-1))
}

// errorPoints implements the plotter.XYer
// and the plotter.YErrorer interfaces.
type errorPoints struct {
	plotter.XYs
	plotter.YErrors
}
