// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package period_test

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/baptistehamon/nzlusdb"
	"github.com/baptistehamon/nzlusdb/period"
)

func TestStandard(t *testing.T) {
	s := period.Standard()
	if err := s.Validate(); err != nil {
		t.Fatalf("standard periods: %v", err)
	}

	// every year between 1980 and 2099
	// is in exactly one period
	for y := 1980; y <= 2099; y++ {
		var n int
		for _, p := range s {
			if p.Contains(y) {
				n++
			}
		}
		if n != 1 {
			t.Errorf("year %d: in %d periods, want 1", y, n)
		}
	}
	for _, y := range []int{1979, 2100} {
		if p, ok := s.Of(y); ok {
			t.Errorf("year %d: in period %s", y, p)
		}
	}

	if s.Baseline() != period.Baseline {
		t.Errorf("baseline: got %s, want %s", s.Baseline(), period.Baseline)
	}
	for _, p := range s {
		if p.Years() != 30 {
			t.Errorf("period %s: got %d years, want %d", p, p.Years(), 30)
		}
	}
}

func TestParse(t *testing.T) {
	p, err := period.Parse("2040-2069")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p != period.Mid {
		t.Errorf("parse: got %s, want %s", p, period.Mid)
	}
	if p.String() != "2040-2069" {
		t.Errorf("string: got %q, want %q", p.String(), "2040-2069")
	}

	for _, s := range []string{"2040", "a-b", "2069-2040"} {
		if _, err := period.Parse(s); !errors.Is(err, nzlusdb.ErrConfig) {
			t.Errorf("parse %q: got error %v, want %v", s, err, nzlusdb.ErrConfig)
		}
	}
}

func TestReadWrite(t *testing.T) {
	want := period.Standard()

	var buf bytes.Buffer
	if err := want.Write(&buf); err != nil {
		t.Fatalf("unable to write data: %v", err)
	}

	got, err := period.Read(&buf)
	if err != nil {
		t.Logf("input data:\n%s\n", buf.String())
		t.Fatalf("unable to read data: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("read: got %v, want %v", got, want)
	}
}

func TestValidate(t *testing.T) {
	tests := map[string]string{
		"gap":     "1980\t2009\n2011\t2039\n",
		"overlap": "1980\t2009\n2009\t2039\n",
		"single":  "1980\t2009\n",
	}
	for name, data := range tests {
		if _, err := period.Read(strings.NewReader(data)); !errors.Is(err, nzlusdb.ErrConfig) {
			t.Errorf("%s: got error %v, want %v", name, err, nzlusdb.ErrConfig)
		}
	}
}
