// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package runparam implements reading and writing
// of the parameters of a land suitability run.
package runparam

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/baptistehamon/nzlusdb"
	"github.com/baptistehamon/nzlusdb/ensemble"
	"github.com/baptistehamon/nzlusdb/lsa"
)

// Param is a keyword to identify
// the type of parameter in a run parameters file.
type Param string

// Valid parameters.
const (
	// Resolution of the analysis
	// (either 1km or 5km).
	Resolution Param = "resolution"

	// Delta is the method used for the change
	// (either absolute or relative).
	Delta Param = "delta"

	// Version of the database.
	Version Param = "version"

	// Historical is the name of the historical scenario.
	Historical Param = "historical"

	// Scenarios is a comma separated list
	// of the scenarios to run.
	Scenarios Param = "scenarios"

	// Models is a comma separated list
	// of the climate models to run.
	Models Param = "models"
)

// RP represents a collection of run parameters.
type RP struct {
	name string // file name

	res     lsa.Resolution
	delta   ensemble.Delta
	version string
	hist    string

	scenarios []string
	models    []string
}

// New creates a new parameter collection
// with default values.
func New(name string) *RP {
	return &RP{
		name:    name,
		res:     lsa.Res5km,
		delta:   ensemble.Absolute,
		version: nzlusdb.Version,
		hist:    lsa.Historical,
	}
}

var header = []string{
	"parameter",
	"value",
}

// Read reads a run parameters file from a TSV file.
//
// The TSV must contains the following fields:
//
//   - parameter, the name of the parameter
//   - value, the value of the parameter
//
// Here is an example file:
//
//	# nzlusdb run parameters
//	parameter	value
//	resolution	5km
//	delta	absolute
//	version	1.0.0
//	historical	historical
//	scenarios	historical,ssp245,ssp585
//	models	ACCESS-CM2,EC-Earth3
func Read(name string) (*RP, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tsv := csv.NewReader(f)
	tsv.Comma = '\t'
	tsv.Comment = '#'

	head, err := tsv.Read()
	if err != nil {
		return nil, fmt.Errorf("on file %q: header: %v", name, err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(h)
		fields[h] = i
	}
	for _, h := range header {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("on file %q: expecting field %q: %w", name, h, nzlusdb.ErrConfig)
		}
	}

	rp := New(name)
	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on file %q: on row %d: %v", name, ln, err)
		}

		f := "parameter"
		p := Param(strings.ToLower(strings.TrimSpace(row[fields[f]])))

		f = "value"
		v := row[fields[f]]
		switch p {
		case Resolution:
			err = rp.SetResolution(v)
		case Delta:
			err = rp.SetDelta(v)
		case Version:
			rp.SetVersion(v)
		case Historical:
			rp.SetHistorical(v)
		case Scenarios:
			rp.SetScenarios(splitList(v))
		case Models:
			rp.SetModels(splitList(v))
		default:
			err = fmt.Errorf("unknown parameter %q: %w", p, nzlusdb.ErrConfig)
		}
		if err != nil {
			return nil, fmt.Errorf("on file %q: on row %d, field %q: %w", name, ln, f, err)
		}
	}
	if err := rp.Validate(); err != nil {
		return nil, fmt.Errorf("on file %q: %w", name, err)
	}
	return rp, nil
}

func splitList(s string) []string {
	var ls []string
	for _, v := range strings.Split(s, ",") {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		ls = append(ls, v)
	}
	return ls
}

// Delta returns the method used for the change.
func (rp *RP) Delta() ensemble.Delta {
	return rp.delta
}

// Historical returns the name of the historical scenario.
func (rp *RP) Historical() string {
	return rp.hist
}

// Models returns the climate models of the run.
// By default,
// it returns all the models of the climate dataset
// of the resolution.
func (rp *RP) Models() []string {
	if len(rp.models) == 0 {
		return rp.res.ClimateDataset().Models
	}
	return slices.Clone(rp.models)
}

// Name returns the file name of the parameters.
func (rp *RP) Name() string {
	return rp.name
}

// Resolution returns the resolution of the analysis.
func (rp *RP) Resolution() lsa.Resolution {
	return rp.res
}

// Scenarios returns the scenarios of the run.
// By default,
// it returns the historical scenario
// and all projected scenarios
// of the climate dataset of the resolution.
func (rp *RP) Scenarios() []string {
	if len(rp.scenarios) == 0 {
		cd := rp.res.ClimateDataset()
		return append([]string{rp.hist}, cd.Projections...)
	}
	return slices.Clone(rp.scenarios)
}

// Version returns the version of the database.
func (rp *RP) Version() string {
	return rp.version
}

// SetDelta sets the method used for the change.
func (rp *RP) SetDelta(d string) error {
	dd, err := ensemble.ParseDelta(d)
	if err != nil {
		return err
	}
	rp.delta = dd
	return nil
}

// SetHistorical sets the name of the historical scenario.
func (rp *RP) SetHistorical(h string) {
	h = strings.TrimSpace(h)
	if h == "" {
		return
	}
	rp.hist = h
}

// SetModels sets the climate models of the run.
// Use nil to use all models.
func (rp *RP) SetModels(models []string) {
	rp.models = slices.Clone(models)
}

// SetName sets the file name of the parameters.
func (rp *RP) SetName(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	rp.name = name
}

// SetResolution sets the resolution of the analysis.
func (rp *RP) SetResolution(r string) error {
	res, err := lsa.ParseResolution(r)
	if err != nil {
		return err
	}
	rp.res = res
	return nil
}

// SetScenarios sets the scenarios of the run.
// Use nil to use all scenarios.
func (rp *RP) SetScenarios(sc []string) {
	rp.scenarios = slices.Clone(sc)
}

// SetVersion sets the version of the database.
func (rp *RP) SetVersion(v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	rp.version = v
}

// Validate checks that the scenarios and models
// are defined for the climate dataset of the resolution.
func (rp *RP) Validate() error {
	cd := rp.res.ClimateDataset()
	for _, s := range rp.scenarios {
		if s == rp.hist {
			continue
		}
		if !slices.Contains(cd.Projections, s) {
			return fmt.Errorf("scenario %q not defined for %s: %w", s, cd.Name, nzlusdb.ErrConfig)
		}
	}
	for _, m := range rp.models {
		if !slices.Contains(cd.Models, m) {
			return fmt.Errorf("model %q not defined for %s: %w", m, cd.Name, nzlusdb.ErrConfig)
		}
	}
	return nil
}

// Write writes a parameter collection into a file.
func (rp *RP) Write() (err error) {
	f, err := os.Create(rp.name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	bw := bufio.NewWriter(f)
	fmt.Fprintf(bw, "# nzlusdb run parameters\n")
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))
	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	if err := tsv.Write(header); err != nil {
		return fmt.Errorf("on file %q: while writing header: %v", rp.name, err)
	}

	rows := [][]string{
		{string(Resolution), string(rp.res)},
		{string(Delta), string(rp.delta)},
		{string(Version), rp.version},
		{string(Historical), rp.hist},
	}
	if len(rp.scenarios) > 0 {
		rows = append(rows, []string{string(Scenarios), strings.Join(rp.scenarios, ",")})
	}
	if len(rp.models) > 0 {
		rows = append(rows, []string{string(Models), strings.Join(rp.models, ",")})
	}
	for _, row := range rows {
		if err := tsv.Write(row); err != nil {
			return fmt.Errorf("on file %q: %v", rp.name, err)
		}
	}

	tsv.Flush()
	if err := tsv.Error(); err != nil {
		return fmt.Errorf("on file %q: while writing data: %v", rp.name, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("on file %q: while writing data: %v", rp.name, err)
	}
	return nil
}
