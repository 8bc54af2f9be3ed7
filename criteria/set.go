// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package criteria

import (
	"fmt"

	"github.com/baptistehamon/nzlusdb"
)

// A Set is an ordered collection of criteria
// used to evaluate the suitability of a land use.
// A Set is not modified after it is created.
type Set struct {
	// LandUse is the short name of the land use
	// (for example "apple").
	LandUse string

	// LongName is the descriptive name
	// of the land use.
	LongName string

	criteria []Criterion
}

// NewSet returns a new set of criteria
// for a land use.
func NewSet(landUse, longName string, cs ...Criterion) (*Set, error) {
	if len(cs) == 0 {
		return nil, fmt.Errorf("land use %q: without criteria: %w", landUse, nzlusdb.ErrConfig)
	}
	names := make(map[string]bool, len(cs))
	for _, c := range cs {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("land use %q: %w", landUse, err)
		}
		if names[c.Name] {
			return nil, fmt.Errorf("land use %q: repeated criterion %q: %w", landUse, c.Name, nzlusdb.ErrConfig)
		}
		names[c.Name] = true
	}

	s := &Set{
		LandUse:  landUse,
		LongName: longName,
		criteria: make([]Criterion, len(cs)),
	}
	for i, c := range cs {
		c.indicator = nil
		s.criteria[i] = c
	}
	return s, nil
}

// Criteria returns the criteria of the set
// in definition order.
func (s *Set) Criteria() []Criterion {
	cs := make([]Criterion, len(s.criteria))
	copy(cs, s.criteria)
	return cs
}

// Names returns the names of the criteria
// in definition order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.criteria))
	for _, c := range s.criteria {
		names = append(names, c.Name)
	}
	return names
}

// Criterion returns a criterion by its name.
func (s *Set) Criterion(name string) (Criterion, bool) {
	for _, c := range s.criteria {
		if c.Name == name {
			return c, true
		}
	}
	return Criterion{}, false
}

// ByCategory returns the criteria of a category
// in definition order.
func (s *Set) ByCategory(cat Category) []Criterion {
	var cs []Criterion
	for _, c := range s.criteria {
		if c.Category == cat {
			cs = append(cs, c)
		}
	}
	return cs
}

// Weight returns the sum of the weights
// of the criteria of a category.
func (s *Set) Weight(cat Category) float64 {
	var w float64
	for _, c := range s.criteria {
		if c.Category == cat {
			w += c.Weight
		}
	}
	return w
}
