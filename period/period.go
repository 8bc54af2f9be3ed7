// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package period implements the analysis periods
// of the climate projections.
//
// A period is an inclusive range of years.
// The first period of a set is the reference
// (baseline)
// period,
// and the periods of a set
// must cover a range of years
// without gaps or overlaps.
package period

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/baptistehamon/nzlusdb"
)

// A Period is an inclusive range of years.
type Period struct {
	Start, End int
}

// The standard periods.
var (
	Baseline = Period{1980, 2009}
	Near     = Period{2010, 2039}
	Mid      = Period{2040, 2069}
	Far      = Period{2070, 2099}
)

// Parse parses a period in the form "1980-2009".
func Parse(s string) (Period, error) {
	a, b, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return Period{}, fmt.Errorf("period %q: expecting <start>-<end>: %w", s, nzlusdb.ErrConfig)
	}
	start, err := strconv.Atoi(a)
	if err != nil {
		return Period{}, fmt.Errorf("period %q: %v: %w", s, err, nzlusdb.ErrConfig)
	}
	end, err := strconv.Atoi(b)
	if err != nil {
		return Period{}, fmt.Errorf("period %q: %v: %w", s, err, nzlusdb.ErrConfig)
	}
	if end < start {
		return Period{}, fmt.Errorf("period %q: end before start: %w", s, nzlusdb.ErrConfig)
	}
	return Period{Start: start, End: end}, nil
}

// String returns the period in the form "1980-2009".
func (p Period) String() string {
	return fmt.Sprintf("%d-%d", p.Start, p.End)
}

// Contains returns true if the year is in the period.
func (p Period) Contains(year int) bool {
	return year >= p.Start && year <= p.End
}

// Years returns the number of years of the period.
func (p Period) Years() int {
	return p.End - p.Start + 1
}

// A Set is a sorted collection of periods.
type Set []Period

// Standard returns the standard periods:
// the baseline 1980-2009,
// and the projections 2010-2039,
// 2040-2069,
// and 2070-2099.
func Standard() Set {
	return Set{Baseline, Near, Mid, Far}
}

// Baseline returns the reference period of the set.
func (s Set) Baseline() Period {
	return s[0]
}

// Future returns the projected periods of the set.
func (s Set) Future() []Period {
	return s[1:]
}

// Of returns the period that contains a year.
func (s Set) Of(year int) (Period, bool) {
	for _, p := range s {
		if p.Contains(year) {
			return p, true
		}
	}
	return Period{}, false
}

// Validate returns an error if the periods of the set
// are not sorted,
// overlap,
// or have gaps between them.
func (s Set) Validate() error {
	if len(s) < 2 {
		return fmt.Errorf("expecting a baseline and at least a projected period: %w", nzlusdb.ErrConfig)
	}
	for i, p := range s {
		if p.End < p.Start {
			return fmt.Errorf("period %s: end before start: %w", p, nzlusdb.ErrConfig)
		}
		if i == 0 {
			continue
		}
		if prev := s[i-1]; p.Start != prev.End+1 {
			return fmt.Errorf("periods %s and %s: not contiguous: %w", prev, p, nzlusdb.ErrConfig)
		}
	}
	return nil
}

// Read reads a set of periods from a TSV file.
//
// The TSV must be without header,
// the first column is the first year of the period,
// and the second column the last year.
// Any other columns will be ignored.
//
// Here is an example file:
//
//	# analysis periods
//	1980	2009
//	2010	2039
//	2040	2069
//	2070	2099
func Read(r io.Reader) (Set, error) {
	tsv := csv.NewReader(r)
	tsv.Comma = '\t'
	tsv.Comment = '#'
	tsv.FieldsPerRecord = -1

	var s Set
	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on line %d: %v", ln, err)
		}
		if len(row) < 2 {
			return nil, fmt.Errorf("on line %d: expecting start and end years: %w", ln, nzlusdb.ErrConfig)
		}

		var p Period
		for i, v := range []*int{&p.Start, &p.End} {
			y, err := strconv.Atoi(strings.TrimSpace(row[i]))
			if err != nil {
				return nil, fmt.Errorf("on line %d: read %q: %v: %w", ln, row[i], err, nzlusdb.ErrConfig)
			}
			*v = y
		}
		s = append(s, p)
	}

	slices.SortFunc(s, func(a, b Period) int { return a.Start - b.Start })
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Write writes a set of periods into a tab-delimited file.
func (s Set) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# analysis periods\n")
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))

	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	for _, p := range s {
		row := []string{
			strconv.Itoa(p.Start),
			strconv.Itoa(p.End),
		}
		if err := tsv.Write(row); err != nil {
			return err
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
