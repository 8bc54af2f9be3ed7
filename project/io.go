// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package project

import (
	"fmt"
	"os"
	"strings"

	"github.com/baptistehamon/nzlusdb"
	"github.com/baptistehamon/nzlusdb/crops"
	"github.com/baptistehamon/nzlusdb/grid"
	"github.com/baptistehamon/nzlusdb/ncio"
	"github.com/baptistehamon/nzlusdb/period"
	"github.com/baptistehamon/nzlusdb/runparam"
	"gopkg.in/yaml.v3"
)

// Attrs reads the global attributes
// as defined in a project.
// If no attributes are defined,
// it returns an empty map.
//
// The attributes file is a YAML mapping,
// for example:
//
//	title: New Zealand Land Use Suitability Database
//	institution: The New Zealand Institute for Plant and Food Research
//	contact: someone@example.org
func (p *Project) Attrs() (map[string]string, error) {
	attrs := make(map[string]string)
	name := p.Resolve(Attrs)
	if name == "" {
		return attrs, nil
	}

	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("on file %q: %v: %w", name, err, nzlusdb.ErrConfig)
	}
	for k, v := range m {
		switch x := v.(type) {
		case nil:
			continue
		case string:
			attrs[k] = x
		case []any:
			ls := make([]string, 0, len(x))
			for _, e := range x {
				ls = append(ls, fmt.Sprint(e))
			}
			attrs[k] = strings.Join(ls, ", ")
		case map[string]any:
			return nil, fmt.Errorf("on file %q: attribute %q: nested mappings not allowed: %w", name, k, nzlusdb.ErrConfig)
		default:
			attrs[k] = fmt.Sprint(x)
		}
	}
	return attrs, nil
}

// Catalog reads the criteria catalog
// as defined in a project.
// If no catalog is defined,
// it returns the default catalog.
func (p *Project) Catalog() (*crops.Catalog, error) {
	name := p.Resolve(Catalog)
	if name == "" {
		return crops.Default(), nil
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := crops.Read(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %w", name, err)
	}
	return c, nil
}

// Indicators returns an indicator loader
// for the indicators directory
// as defined in a project.
func (p *Project) Indicators(rp *runparam.RP) (*ncio.Indicators, error) {
	dir := p.Resolve(Indicators)
	if dir == "" {
		return nil, fmt.Errorf("indicators not defined in project %q: %w", p.name, nzlusdb.ErrConfig)
	}
	ind := ncio.NewIndicators(dir, rp.Resolution())
	ind.Historical = rp.Historical()
	return ind, nil
}

// Mask reads the land mask
// as defined in a project.
// If no mask is defined,
// it returns nil.
func (p *Project) Mask() (*grid.Field, error) {
	name := p.Resolve(Mask)
	if name == "" {
		return nil, nil
	}
	return ncio.Read(name, "")
}

// OutputDir returns the output directory
// as defined in a project.
// If the directory does not exist,
// it will be created.
func (p *Project) OutputDir() (string, error) {
	dir := p.Resolve(Output)
	if dir == "" {
		return "", fmt.Errorf("output not defined in project %q: %w", p.name, nzlusdb.ErrConfig)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// Params reads the run parameters
// as defined in a project.
// If no parameters are defined,
// it returns the default parameters.
func (p *Project) Params() (*runparam.RP, error) {
	name := p.Resolve(Params)
	if name == "" {
		return runparam.New(""), nil
	}
	return runparam.Read(name)
}

// Periods reads the analysis periods
// as defined in a project.
// If no periods are defined,
// it returns the standard periods.
func (p *Project) Periods() (period.Set, error) {
	name := p.Resolve(Periods)
	if name == "" {
		return period.Standard(), nil
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := period.Read(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %w", name, err)
	}
	return s, nil
}
