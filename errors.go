// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package nzlusdb

import "errors"

// Error kinds.
// Errors returned by the packages of the database
// wrap one of these values,
// so they can be tested with errors.Is.
var (
	// ErrConfig is returned when a parameter,
	// a weight,
	// or a method is invalid.
	ErrConfig = errors.New("invalid configuration")

	// ErrUnbound is returned when a criterion
	// is evaluated without an indicator.
	ErrUnbound = errors.New("unbound indicator")

	// ErrShape is returned when two fields
	// do not share the same grid.
	ErrShape = errors.New("shape mismatch")

	// ErrDomain is returned when a value
	// is outside the domain of a method
	// (for example a negative value
	// in a geometric mean).
	ErrDomain = errors.New("domain violation")
)
