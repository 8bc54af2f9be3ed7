// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package project_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"testing"

	"github.com/baptistehamon/nzlusdb"
	"github.com/baptistehamon/nzlusdb/lsa"
	"github.com/baptistehamon/nzlusdb/period"
	"github.com/baptistehamon/nzlusdb/project"
)

type setPath struct {
	set  project.Dataset
	path string
}

func TestProject(t *testing.T) {
	p := project.New()

	sets := []setPath{
		{project.Indicators, "indicators"},
		{project.Output, "output"},
		{project.Attrs, "attrs.yaml"},
		{project.Catalog, "catalog.tab"},
		{project.Params, "params.tab"},
		{project.Periods, "periods.tab"},
	}

	for _, s := range sets {
		p.Add(s.set, s.path)
	}
	testProject(t, p, sets)

	name := "tmp-project-for-test.tab"
	defer os.Remove(name)

	p.SetName(name)
	if err := p.Write(); err != nil {
		t.Fatalf("error when writing data: %v", err)
	}

	np, err := project.Read(name)
	if err != nil {
		t.Fatalf("error when reading data: %v", err)
	}
	testProject(t, np, sets)
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	p := project.New()
	p.SetName(filepath.Join(dir, "project.tab"))
	p.Add(project.Indicators, "indicators")
	abs := filepath.Join(dir, "out")
	p.Add(project.Output, abs)

	if got, want := p.Resolve(project.Indicators), filepath.Join(dir, "indicators"); got != want {
		t.Errorf("indicators: got %q, want %q", got, want)
	}
	if got := p.Resolve(project.Output); got != abs {
		t.Errorf("output: got %q, want %q", got, abs)
	}
	if got := p.Resolve(project.Mask); got != "" {
		t.Errorf("mask: got %q, want empty path", got)
	}

	out, err := p.OutputDir()
	if err != nil {
		t.Fatalf("output dir: %v", err)
	}
	if st, err := os.Stat(out); err != nil || !st.IsDir() {
		t.Errorf("output dir %q: not created", out)
	}
}

func TestDefaults(t *testing.T) {
	p := project.New()
	p.SetName(filepath.Join(t.TempDir(), "project.tab"))

	attrs, err := p.Attrs()
	if err != nil {
		t.Fatalf("attrs: %v", err)
	}
	if len(attrs) != 0 {
		t.Errorf("attrs: got %v, want empty", attrs)
	}

	c, err := p.Catalog()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if !slices.Contains(c.LandUses(), "apple") {
		t.Errorf("catalog: land uses %v, without %q", c.LandUses(), "apple")
	}

	ps, err := p.Periods()
	if err != nil {
		t.Fatalf("periods: %v", err)
	}
	if !reflect.DeepEqual(ps, period.Standard()) {
		t.Errorf("periods: got %v, want %v", ps, period.Standard())
	}

	rp, err := p.Params()
	if err != nil {
		t.Fatalf("params: %v", err)
	}
	if rp.Resolution() != lsa.Res5km {
		t.Errorf("params: resolution %q, want %q", rp.Resolution(), lsa.Res5km)
	}

	m, err := p.Mask()
	if err != nil || m != nil {
		t.Errorf("mask: got %v, %v, want nil", m, err)
	}

	if _, err := p.Indicators(rp); !errors.Is(err, nzlusdb.ErrConfig) {
		t.Errorf("indicators: got error %v, want %v", err, nzlusdb.ErrConfig)
	}
	if _, err := p.OutputDir(); !errors.Is(err, nzlusdb.ErrConfig) {
		t.Errorf("output: got error %v, want %v", err, nzlusdb.ErrConfig)
	}
}

func TestAttrs(t *testing.T) {
	dir := t.TempDir()
	data := []byte(`title: New Zealand Land Use Suitability Database
institution: Plant and Food Research
year: 2024
keywords:
  - land suitability
  - climate change
empty:
`)
	if err := os.WriteFile(filepath.Join(dir, "attrs.yaml"), data, 0o644); err != nil {
		t.Fatalf("write attrs: %v", err)
	}

	p := project.New()
	p.SetName(filepath.Join(dir, "project.tab"))
	p.Add(project.Attrs, "attrs.yaml")

	got, err := p.Attrs()
	if err != nil {
		t.Fatalf("attrs: %v", err)
	}
	want := map[string]string{
		"title":       "New Zealand Land Use Suitability Database",
		"institution": "Plant and Food Research",
		"year":        "2024",
		"keywords":    "land suitability, climate change",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("attrs: got %v, want %v", got, want)
	}

	nested := []byte("creator:\n  name: someone\n")
	if err := os.WriteFile(filepath.Join(dir, "attrs.yaml"), nested, 0o644); err != nil {
		t.Fatalf("write attrs: %v", err)
	}
	if _, err := p.Attrs(); !errors.Is(err, nzlusdb.ErrConfig) {
		t.Errorf("nested attrs: got error %v, want %v", err, nzlusdb.ErrConfig)
	}
}

func testProject(t testing.TB, p *project.Project, sets []setPath) {
	t.Helper()

	for _, s := range sets {
		if path := p.Path(s.set); path != s.path {
			t.Errorf("set %s: got path %q, want %q", s.set, path, s.path)
		}
	}
	datasets := make([]project.Dataset, 0, len(sets))
	for _, v := range sets {
		datasets = append(datasets, v.set)
	}
	slices.Sort(datasets)

	if ls := p.Sets(); !reflect.DeepEqual(ls, datasets) {
		t.Errorf("sets: got %v, want %v", ls, datasets)
	}
}
