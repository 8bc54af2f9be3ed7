// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package index implements a command to compute
// crop specific climate indicators.
package index

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/baptistehamon/nzlusdb/grid"
	"github.com/baptistehamon/nzlusdb/indicator"
	"github.com/baptistehamon/nzlusdb/ncio"
	"github.com/baptistehamon/nzlusdb/standard"
	"github.com/js-arias/command"
)

var Command = &command.Command{
	Usage: `index [--chill <low>,<high>]
	[--survival <function> --params <values> [--weight <value>]]
	[--phenology <stage>]
	[--var <name>] [--in <variable>] -o|--output <file> <netcdf-file>`,
	Short: "compute crop specific climate indicators",
	Long: `
Command index reads a NetCDF file with climate data and computes a crop
specific climate indicator that can be used as a criterion in a land
suitability analysis.

The argument of the command is the name of the input NetCDF file. If the file
has more than one variable, use the flag --in to set the variable to be used.

One of the following indicators must be defined:

--chill <low>,<high>
	The number of chilling hours of each year, i.e., the number of hours
	with a temperature t in the range low < t <= high. The input must be
	an hourly temperature, either with an "hour" axis, or as a time
	series.

--survival <function>
	The survival over a season:

		S = prod(1 - (1 - f(x)) w)

	where f is the daily survival given by a standardisation function
	with the parameters defined with the flag --params (see 'nzlusdb help
	catalog'), and w is the weight of each day, defined with the flag
	--weight (default 1). The input must be a daily variable, either with
	a "day" axis, or as a time series.

--phenology <stage>
	The day of the year of a phenological stage of apple. Valid stages
	are "bloom", from the mean maximum temperature of August and
	September, and "budbreak", from the mean temperature of May to
	July. The input must be the mean temperature of the months used by
	the stage.

If the input is a time series, the indicator is computed for each year.

By default, the output variable has the name of the indicator. Use the flag
--var to set a different name.

The flag --output, or -o, is required, and sets the name of the output NetCDF
file.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var chillFlag string
var survivalFlag string
var paramsFlag string
var weightFlag float64
var phenoFlag string
var varFlag string
var inFlag string
var output string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&chillFlag, "chill", "", "")
	c.Flags().StringVar(&survivalFlag, "survival", "", "")
	c.Flags().StringVar(&paramsFlag, "params", "", "")
	c.Flags().Float64Var(&weightFlag, "weight", 1, "")
	c.Flags().StringVar(&phenoFlag, "phenology", "", "")
	c.Flags().StringVar(&varFlag, "var", "", "")
	c.Flags().StringVar(&inFlag, "in", "", "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting input NetCDF file")
	}
	if output == "" {
		return c.UsageError("flag --output must be defined")
	}

	var n int
	for _, f := range []string{chillFlag, survivalFlag, phenoFlag} {
		if f != "" {
			n++
		}
	}
	if n != 1 {
		return c.UsageError("one indicator must be defined")
	}

	f, err := ncio.Read(args[0], inFlag)
	if err != nil {
		return err
	}

	var out *grid.Field
	switch {
	case chillFlag != "":
		out, err = chill(f)
	case survivalFlag != "":
		out, err = survival(f)
	case phenoFlag != "":
		out, err = phenology(f)
	}
	if err != nil {
		return err
	}
	if varFlag != "" {
		out.Name = varFlag
	}

	ds := grid.NewDataset()
	ds.Add(out)
	ds.Attrs["source"] = args[0]
	ds.Attrs["input_variable"] = f.Name
	if err := ncio.Write(output, ds); err != nil {
		return err
	}
	return nil
}

func chill(f *grid.Field) (*grid.Field, error) {
	low, high, ok := strings.Cut(chillFlag, ",")
	if !ok {
		return nil, fmt.Errorf("flag --chill: invalid value %q: expecting <low>,<high>", chillFlag)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(low), 64)
	if err != nil {
		return nil, fmt.Errorf("flag --chill: invalid value %q: %v", chillFlag, err)
	}
	hi, err := strconv.ParseFloat(strings.TrimSpace(high), 64)
	if err != nil {
		return nil, fmt.Errorf("flag --chill: invalid value %q: %v", chillFlag, err)
	}
	if lo >= hi {
		return nil, fmt.Errorf("flag --chill: invalid range %q", chillFlag)
	}

	return byYear(f, indicator.Hour, func(h *grid.Field) (*grid.Field, error) {
		return indicator.ChillingField("chill", h, lo, hi)
	})
}

func survival(f *grid.Field) (*grid.Field, error) {
	cv, err := standard.Parse(survivalFlag, paramsFlag)
	if err != nil {
		return nil, fmt.Errorf("flag --survival: %v", err)
	}
	if weightFlag < 0 || weightFlag > 1 {
		return nil, fmt.Errorf("flag --weight: invalid value %.6f", weightFlag)
	}

	return byYear(f, indicator.Day, func(d *grid.Field) (*grid.Field, error) {
		ax, _ := d.Axis(indicator.Day)
		w := make([]float64, ax.Len())
		for i := range w {
			w[i] = weightFlag
		}
		return indicator.SurvivalField("survival", d, w, cv)
	})
}

func phenology(f *grid.Field) (*grid.Field, error) {
	var out *grid.Field
	switch strings.ToLower(phenoFlag) {
	case "bloom":
		out = f.Map("full_bloom", dayOfYear(indicator.DayFullBloom))
		out.Attrs["long_name"] = "Day of full bloom"
	case "budbreak":
		out = f.Map("budbreak", dayOfYear(indicator.DayBudbreak))
		out.Attrs["long_name"] = "Day of budbreak"
	default:
		return nil, fmt.Errorf("flag --phenology: unknown stage %q", phenoFlag)
	}
	out.Attrs["units"] = "day of year"
	return out, nil
}

func dayOfYear(fn func(float64) float64) func(float64) float64 {
	return func(x float64) float64 {
		if math.IsNaN(x) {
			return x
		}
		return fn(x)
	}
}

// byYear computes an indicator for each year
// of a time series.
// If the field does not have a time axis,
// it must have the sub-annual axis.
func byYear(f *grid.Field, sub string, fn func(*grid.Field) (*grid.Field, error)) (*grid.Field, error) {
	if f.Dim(sub) >= 0 {
		return fn(f)
	}
	tAx, ok := f.Axis(grid.Time)
	if !ok || tAx.IsLabel() {
		return nil, fmt.Errorf("field %q: without %q or %q axis", f.Name, sub, grid.Time)
	}

	var years []float64
	for _, y := range tAx.Values {
		if len(years) > 0 && years[len(years)-1] == y {
			continue
		}
		years = append(years, y)
	}

	fields := make([]*grid.Field, 0, len(years))
	for _, y := range years {
		s, err := grid.SelectRange(f, grid.Time, y, y)
		if err != nil {
			return nil, err
		}
		axes := s.Axes()
		axes[s.Dim(grid.Time)].Name = sub
		r, err := grid.FromValues(f.Name, s.Values(), axes...)
		if err != nil {
			return nil, err
		}
		o, err := fn(r)
		if err != nil {
			return nil, fmt.Errorf("year %.0f: %v", y, err)
		}
		fields = append(fields, o)
	}

	out, err := grid.Stack(grid.NewAxis(grid.Time, years), fields...)
	if err != nil {
		return nil, err
	}
	out.Attrs = fields[0].Attrs
	return out, nil
}
