// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package stats

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/baptistehamon/nzlusdb"
)

var header = []string{
	"variable",
	"key",
	"period",
	"scenario",
	"cells",
	"area",
	"mean",
	"stddev",
	"median",
}

// BinLabel returns the label of a bin,
// for example "0.2-0.3".
func BinLabel(i int) string {
	return fmt.Sprintf("%.1f-%.1f", Bins[i], Bins[i+1])
}

// Write writes a summary into a tab-delimited file.
// Areas are in km².
func (s *Summary) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# suitability area statistics [km2]\n")
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))

	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	head := append([]string{}, header...)
	for i := 0; i < len(Bins)-1; i++ {
		head = append(head, BinLabel(i))
	}
	if err := tsv.Write(head); err != nil {
		return fmt.Errorf("while writing header: %v", err)
	}

	for _, r := range s.Rows {
		row := []string{
			s.Variable,
			r.Key,
			r.Period,
			r.Scenario,
			strconv.Itoa(r.Cells),
			strconv.FormatFloat(r.Area, 'f', 3, 64),
			strconv.FormatFloat(r.Mean, 'f', 6, 64),
			strconv.FormatFloat(r.StdDev, 'f', 6, 64),
			strconv.FormatFloat(r.Median, 'f', 6, 64),
		}
		for _, a := range r.Bins {
			row = append(row, strconv.FormatFloat(a, 'f', 3, 64))
		}
		if err := tsv.Write(row); err != nil {
			return fmt.Errorf("while writing data: %v", err)
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

// Read reads a summary from a tab-delimited file.
func Read(r io.Reader) (*Summary, error) {
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
	for i := 0; i < len(Bins)-1; i++ {
		if _, ok := fields[BinLabel(i)]; !ok {
			return nil, fmt.Errorf("expecting field %q: %w", BinLabel(i), nzlusdb.ErrConfig)
		}
	}

	s := &Summary{}
	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		f := "variable"
		v := row[fields[f]]
		if s.Variable == "" {
			s.Variable = v
		} else if v != s.Variable {
			return nil, fmt.Errorf("on row %d: field %q: got %q, want %q: %w", ln, f, v, s.Variable, nzlusdb.ErrConfig)
		}

		rw := Row{
			Key:      row[fields["key"]],
			Period:   row[fields["period"]],
			Scenario: row[fields["scenario"]],
		}

		f = "cells"
		rw.Cells, err = strconv.Atoi(row[fields[f]])
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %v", ln, f, err)
		}

		for _, p := range []struct {
			f string
			v *float64
		}{
			{"area", &rw.Area},
			{"mean", &rw.Mean},
			{"stddev", &rw.StdDev},
			{"median", &rw.Median},
		} {
			x, err := strconv.ParseFloat(row[fields[p.f]], 64)
			if err != nil {
				return nil, fmt.Errorf("on row %d: field %q: %v", ln, p.f, err)
			}
			*p.v = x
		}

		for i := 0; i < len(Bins)-1; i++ {
			f = BinLabel(i)
			x, err := strconv.ParseFloat(row[fields[f]], 64)
			if err != nil {
				return nil, fmt.Errorf("on row %d: field %q: %v", ln, f, err)
			}
			rw.Bins = append(rw.Bins, x)
		}
		s.Rows = append(s.Rows, rw)
	}
	return s, nil
}
