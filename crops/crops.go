// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package crops implements the catalog
// of land suitability criteria
// for the land uses of the database.
//
// The default catalog is compiled into the package,
// and a different catalog can be read from a TSV file.
package crops

import (
	"bufio"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/baptistehamon/nzlusdb"
	"github.com/baptistehamon/nzlusdb/criteria"
	"github.com/baptistehamon/nzlusdb/standard"
)

//go:embed catalog.tab
var catalogData string

// Computed is the function name used in catalog files
// for criteria with an indicator
// that is already a score.
const Computed = "computed"

// Long names of the land uses of the database.
var longNames = map[string]string{
	"apple":      "Apple",
	"avocado":    "Avocado",
	"blueberry":  "Blueberry",
	"cherry":     "Cherry",
	"citrus":     "Citrus",
	"hops":       "Hops",
	"kiwifruit":  "Kiwifruit",
	"maizeearly": "Early Maize",
	"manuka":     "Mānuka",
	"pinotnoir":  "Pinot Noir",
	"wheatearly": "Early Wheat",
}

// LongName returns the descriptive name of a land use.
func LongName(landUse string) string {
	if n, ok := longNames[landUse]; ok {
		return n
	}
	if landUse == "" {
		return ""
	}
	return strings.ToUpper(landUse[:1]) + landUse[1:]
}

// A Catalog is a collection of criteria sets
// indexed by land use.
type Catalog struct {
	sets map[string]*criteria.Set
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := Read(strings.NewReader(catalogData))
	if err != nil {
		panic(fmt.Sprintf("crops: default catalog: %v", err))
	}
	return c
})

// Default returns the default catalog.
func Default() *Catalog {
	return defaultCatalog()
}

// LandUses returns the land uses defined in the catalog.
func (c *Catalog) LandUses() []string {
	lu := make([]string, 0, len(c.sets))
	for n := range c.sets {
		lu = append(lu, n)
	}
	slices.Sort(lu)
	return lu
}

// Set returns the criteria set of a land use.
func (c *Catalog) Set(landUse string) (*criteria.Set, error) {
	s, ok := c.sets[landUse]
	if !ok {
		return nil, fmt.Errorf("land use %q: not in catalog: %w", landUse, nzlusdb.ErrConfig)
	}
	return s, nil
}

var header = []string{
	"landuse",
	"criterion",
	"long_name",
	"category",
	"weight",
	"func",
	"params",
	"preprocess",
	"file",
	"variable",
}

// Read reads a catalog from a TSV file.
//
// The TSV must contain the following fields:
//
//   - landuse, the short name of the land use
//   - criterion, the name of the criterion
//   - long_name, a descriptive name of the criterion
//   - category, either climate or soilTerrain
//   - weight, the weight of the criterion
//   - func, the standardisation function,
//     or "computed" if the indicator is already a score
//   - params, the parameters of the function
//   - preprocess, the pre-processing of the indicator,
//     as key=value pairs separated by commas:
//     "min" and "max" clip the indicator to a range,
//     and "since" converts a day of the year
//     into days since a date in the form MM-DD
//     (for example "since=11-01"),
//     it can be empty
//   - file, the prefix of the indicator file
//   - variable, the name of the indicator in the file,
//     it can be empty
//
// Here is an example file:
//
//	# nzlusdb crop criteria catalog
//	landuse	criterion	long_name	category	weight	func	params	preprocess	file	variable
//	apple	slope	Slope	soilTerrain	0.5	logistic	a=-0.5,b=19		New-Zealand-Gridded-Land-Information-Dataset	slope
//	apple	chill_units	Chill units between May 1 and Aug 31	climate	1	logistic	a=0.005,b=700		cu_0501-0831_annual
//	apple	frost_survival	Frost survival	climate	2	computed			apple_frost-survival_dfb-0430_annual
func Read(r io.Reader) (*Catalog, error) {
	tsv := csv.NewReader(r)
	tsv.Comma = '\t'
	tsv.Comment = '#'

	head, err := tsv.Read()
	if err != nil {
		return nil, fmt.Errorf("while reading header: %v", err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(h)
		fields[h] = i
	}
	for _, h := range header {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("expecting field %q: %w", h, nzlusdb.ErrConfig)
		}
	}

	var order []string
	cs := make(map[string][]criteria.Criterion)
	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		f := "landuse"
		lu := strings.ToLower(strings.TrimSpace(row[fields[f]]))
		if lu == "" {
			return nil, fmt.Errorf("on row %d: field %q: empty land use: %w", ln, f, nzlusdb.ErrConfig)
		}

		c, err := readCriterion(row, fields)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %w", ln, err)
		}

		if _, ok := cs[lu]; !ok {
			order = append(order, lu)
		}
		cs[lu] = append(cs[lu], c)
	}
	if len(order) == 0 {
		return nil, fmt.Errorf("empty catalog: %w", nzlusdb.ErrConfig)
	}

	cat := &Catalog{sets: make(map[string]*criteria.Set, len(order))}
	for _, lu := range order {
		s, err := criteria.NewSet(lu, LongName(lu), cs[lu]...)
		if err != nil {
			return nil, err
		}
		cat.sets[lu] = s
	}
	return cat, nil
}

func readCriterion(row []string, fields map[string]int) (criteria.Criterion, error) {
	c := criteria.Criterion{
		Name:     strings.TrimSpace(row[fields["criterion"]]),
		LongName: strings.TrimSpace(row[fields["long_name"]]),
		File:     strings.TrimSpace(row[fields["file"]]),
		Variable: strings.TrimSpace(row[fields["variable"]]),
	}

	f := "category"
	cat, err := criteria.ParseCategory(row[fields[f]])
	if err != nil {
		return c, fmt.Errorf("field %q: %w", f, err)
	}
	c.Category = cat

	f = "weight"
	w, err := strconv.ParseFloat(strings.TrimSpace(row[fields[f]]), 64)
	if err != nil {
		return c, fmt.Errorf("field %q: %v: %w", f, err, nzlusdb.ErrConfig)
	}
	c.Weight = w

	f = "func"
	fn := strings.ToLower(strings.TrimSpace(row[fields[f]]))
	if fn == Computed {
		c.Computed = true
	} else {
		cv, err := standard.Parse(fn, row[fields["params"]])
		if err != nil {
			return c, fmt.Errorf("field %q: %w", f, err)
		}
		c.Curve = cv
	}

	f = "preprocess"
	if err := parsePreprocess(&c, row[fields[f]]); err != nil {
		return c, fmt.Errorf("field %q: %w", f, err)
	}

	if c.File == "" {
		return c, fmt.Errorf("criterion %q: without indicator file: %w", c.Name, nzlusdb.ErrConfig)
	}
	return c, nil
}

func parsePreprocess(c *criteria.Criterion, s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	var clip *criteria.Clip
	for _, p := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			return fmt.Errorf("preprocess %q: expecting key=value: %w", s, nzlusdb.ErrConfig)
		}
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "since" {
			since, err := criteria.ParseSince(v)
			if err != nil {
				return fmt.Errorf("preprocess %q: %w", s, err)
			}
			c.Since = &since
			continue
		}

		x, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("preprocess %q: %v: %w", s, err, nzlusdb.ErrConfig)
		}
		if clip == nil {
			nc := criteria.NoClip
			clip = &nc
		}
		switch k {
		case "min":
			clip.Min = x
		case "max":
			clip.Max = x
		default:
			return fmt.Errorf("preprocess %q: unknown key %q: %w", s, k, nzlusdb.ErrConfig)
		}
	}
	c.Clip = clip
	return nil
}

func formatPreprocess(c criteria.Criterion) string {
	var p []string
	if c.Since != nil {
		p = append(p, "since="+c.Since.String())
	}
	if c.Clip != nil {
		if !math.IsInf(c.Clip.Min, -1) {
			p = append(p, "min="+strconv.FormatFloat(c.Clip.Min, 'g', -1, 64))
		}
		if !math.IsInf(c.Clip.Max, 1) {
			p = append(p, "max="+strconv.FormatFloat(c.Clip.Max, 'g', -1, 64))
		}
	}
	return strings.Join(p, ",")
}

// Write writes a catalog into a TSV file.
func (c *Catalog) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# nzlusdb crop criteria catalog\n")
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))
	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	if err := tsv.Write(header); err != nil {
		return fmt.Errorf("while writing header: %v", err)
	}

	for _, lu := range c.LandUses() {
		for _, cr := range c.sets[lu].Criteria() {
			fn, params := Computed, ""
			if cr.Curve != nil {
				fn = cr.Curve.Name()
				params = cr.Curve.Params()
			}
			row := []string{
				lu,
				cr.Name,
				cr.LongName,
				string(cr.Category),
				strconv.FormatFloat(cr.Weight, 'g', -1, 64),
				fn,
				params,
				formatPreprocess(cr),
				cr.File,
				cr.Variable,
			}
			if err := tsv.Write(row); err != nil {
				return err
			}
		}
	}

	tsv.Flush()
	if err := tsv.Error(); err != nil {
		return fmt.Errorf("while writing data: %v", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("while writing data: %v", err)
	}
	return nil
}
