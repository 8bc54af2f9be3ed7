// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package grid

// A Dataset is an ordered collection of fields
// with global attributes.
type Dataset struct {
	// Global attributes
	Attrs map[string]string

	// Warnings are non-fatal problems
	// found while building the dataset.
	Warnings []error

	fields []*Field
}

// NewDataset returns an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{
		Attrs: make(map[string]string),
	}
}

// Add adds a field to the dataset.
// If a field with the same name is already in the dataset,
// it will be replaced.
func (d *Dataset) Add(f *Field) {
	for i, o := range d.fields {
		if o.Name == f.Name {
			d.fields[i] = f
			return
		}
	}
	d.fields = append(d.fields, f)
}

// Field returns a field by its name,
// or nil if the field is not in the dataset.
func (d *Dataset) Field(name string) *Field {
	for _, f := range d.fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Fields returns the fields of the dataset
// in the order they were added.
func (d *Dataset) Fields() []*Field {
	fs := make([]*Field, len(d.fields))
	copy(fs, d.fields)
	return fs
}

// Names returns the names of the fields
// in the order they were added.
func (d *Dataset) Names() []string {
	names := make([]string, 0, len(d.fields))
	for _, f := range d.fields {
		names = append(names, f.Name)
	}
	return names
}
