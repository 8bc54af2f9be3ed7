// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package main

import "github.com/js-arias/command"

func init() {
	app.Add(attrsGuide)
	app.Add(catalogGuide)
	app.Add(outputGuide)
	app.Add(paramsGuide)
	app.Add(projectsGuide)
}

var projectsGuide = &command.Command{
	Usage: "projects",
	Short: "about project files",
	Long: `
NZLUSDB requires several files and directories to run a land suitability
analysis. To reduce the burden of keeping track of many files, a single
project file is used to hold the reference of all files required in the
analysis.

A project file is a tab-delimited file with the following fields:

	- dataset  for the kind of file
	- path     for the path of the file

Here is an example file:

	# nzlusdb project files
	dataset	path
	indicators	indicators
	output	output
	attrs	attrs.yaml
	params	params.tab

Relative paths are read from the directory of the project file.

The valid file types are:

- Indicators. Defined by the dataset keyword "indicators". It is the
  directory with the NetCDF files of the indicators. Climate indicators are
  stored in files named '<file>_<scenario>_<climate-resolution>.nc', and
  soil and terrain indicators in files named '<file>_NZ<resolution>.nc'.
  This dataset is required.
- Output. Defined by the dataset keyword "output". It is the directory used
  for the output files. This dataset is required.
- Global attributes. Defined by the dataset keyword "attrs". A YAML file with
  the global attributes of the output files. See 'nzlusdb help attrs'.
- Catalog. Defined by the dataset keyword "catalog". A tab-delimited file
  with the criteria of each land use. If it is not defined, the default
  catalog will be used. See 'nzlusdb help catalog'.
- Run parameters. Defined by the dataset keyword "params". A tab-delimited
  file with the parameters of the run. See 'nzlusdb help params'.
- Periods. Defined by the dataset keyword "periods". A tab-delimited file
  with the start and end years of the analysis periods. The first period is
  the reference period. If it is not defined, the periods 1980-2009,
  2010-2039, 2040-2069, and 2070-2099 will be used.
- Mask. Defined by the dataset keyword "mask". A NetCDF file with a lat-lon
  variable. Only the cells with a non-zero value in the mask are used for
  the statistics.
	`,
}

var attrsGuide = &command.Command{
	Usage: "attrs",
	Short: "about global attributes files",
	Long: `
The global attributes file is a YAML mapping with the attributes copied into
each output NetCDF file. Values can be strings, numbers, or lists (lists are
joined with commas). Nested mappings are not allowed.

Here is an example file:

	title: New Zealand Land Use Suitability Database
	institution: The New Zealand Institute for Plant and Food Research
	contact: someone@example.org
	keywords:
	  - land suitability
	  - climate change
	`,
}

var catalogGuide = &command.Command{
	Usage: "catalog",
	Short: "about criteria catalog files",
	Long: `
A criteria catalog is a tab-delimited file with the criteria of each land
use. It has the following fields:

	- landuse    the short name of the land use
	- criterion  the name of the criterion
	- long_name  a descriptive name of the criterion
	- category   either "climate" or "soilTerrain"
	- weight     the weight of the criterion
	- func       the standardisation function, or "computed" if the
	             indicator is already a score in [0, 1]
	- params     the parameters of the function, as <key>=<value> pairs
	             separated by commas
	- preprocess the pre-processing of the indicator, as <key>=<value>
	             pairs separated by commas: "min" and "max" clip the
	             indicator to a range, and "since" converts a day of the
	             year into the days since a date in the form MM-DD (for
	             example "since=11-01"), it can be empty
	- file       the prefix of the indicator file
	- variable   the name of the variable in the indicator file

The valid standardisation functions are:

	- logistic              1/(1+exp(-a(x-b)))
	- vetharaniam2022_eq3   exp(a(x-b))/(1+exp(a(x-b)))
	- vetharaniam2022_eq5   1/(1+exp(a(sqrt(x)-sqrt(b))))
	- vetharaniam2024_eq8   exp(-a|x-b|^c)
	- vetharaniam2024_eq10  2/(1+exp(a|x-b|^c))
	- sigmoid               1/(1+exp((a-x)/b))
	- capped_exp            min(a exp(b/x), 1)
	- discrete              a mapping from class codes to scores
	- boolean               1 if a comparison with a threshold is true

Use the command 'nzlusdb crops' to print the default catalog.
	`,
}

var paramsGuide = &command.Command{
	Usage: "params",
	Short: "about run parameter files",
	Long: `
A run parameters file is a tab-delimited file with the following fields:

	- parameter  the name of the parameter
	- value      the value of the parameter

The valid parameters are:

	- resolution  the resolution of the analysis, either "1km" or "5km"
	              (default "5km")
	- delta       the method for the change, either "absolute" or
	              "relative" (default "absolute")
	- version     the version of the database
	- historical  the name of the historical scenario
	              (default "historical")
	- scenarios   a comma separated list of the scenarios to run
	              (default all scenarios of the climate dataset)
	- models      a comma separated list of the climate models to run
	              (default all models of the climate dataset)

Here is an example file:

	# nzlusdb run parameters
	parameter	value
	resolution	5km
	delta	absolute
	version	1.0.0
	scenarios	historical,ssp245,ssp585

At 5km the climate indicators are from the 25km NEX-GDDP-CMIP6 dataset, and
at 1km from the 5km NIWA CMIP6 downscaled dataset. At 1km, the analysis is
run for each climate model.
	`,
}

var outputGuide = &command.Command{
	Usage: "outputs",
	Short: "about output files",
	Long: `
The output files are stored in the output directory of the project. They are:

	<land-use>_suitability_<scenario>_<res>_v<version>.nc
		the output of the command 'nzlusdb run' (at 1km, there is a
		file for each climate model, with the name of the model after
		the scenario). It contains the criteria scores, the climate and
		soil and terrain suitability, and the final suitability.
	<land-use>_soilTerrain-suitability_<res>_v<version>.nc
		the soil and terrain scores of a run by climate model.
	<land-use>_suitability-MMM-change-robustness_<res>_v<version>.nc
		the output of the command 'nzlusdb change'. It contains the
		multi-model mean, the change, the robustness categories, and the
		robustness coefficient, for each period and scenario.
	<land-use>_suitability_stats_summary_<res>_v<version>.tab
		the output of the command 'nzlusdb stats'.

Robustness categories are coded as 0 (robust change), 1 (robust no change),
and 2 (conflicting signals).
	`,
}
