// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package standard implements the standardisation functions
// that transform an indicator value
// into a suitability score between 0 and 1.
//
// The set of curves is closed:
// each curve is a type of this package
// with its own parameters.
// NaN values are always mapped to NaN.
package standard

import (
	"fmt"
	"math"

	"github.com/baptistehamon/nzlusdb"
	"github.com/baptistehamon/nzlusdb/grid"
)

// A Curve is a standardisation function.
type Curve interface {
	// Eval returns the score of a value.
	Eval(x float64) (float64, error)

	// Name returns the name of the curve
	// as used in catalog files.
	Name() string

	// Params returns the parameters of the curve
	// as used in catalog files.
	Params() string

	curve()
}

// Apply returns a new field
// with the score of each value of the field.
func Apply(c Curve, f *grid.Field) (*grid.Field, error) {
	var err error
	out := f.Map(f.Name, func(x float64) float64 {
		if err != nil {
			return math.NaN()
		}
		v, e := c.Eval(x)
		if e != nil {
			err = e
		}
		return v
	})
	if err != nil {
		return nil, fmt.Errorf("field %q: %s: %w", f.Name, c.Name(), err)
	}
	return out, nil
}

// Logistic is the logistic curve
// 1 / (1 + exp(-A (x - B))).
// The score at B is 0.5;
// with a positive A the score increases with x.
type Logistic struct {
	A, B float64
}

func (l Logistic) Eval(x float64) (float64, error) {
	if math.IsNaN(x) {
		return x, nil
	}
	return 1 / (1 + math.Exp(-l.A*(x-l.B))), nil
}

// Vetharaniam2022Eq3 is the equation 3
// of Vetharaniam et al. (2022)
// exp(A (x - B)) / (1 + exp(A (x - B))).
type Vetharaniam2022Eq3 struct {
	A, B float64
}

func (v Vetharaniam2022Eq3) Eval(x float64) (float64, error) {
	if math.IsNaN(x) {
		return x, nil
	}
	e := math.Exp(v.A * (x - v.B))
	if math.IsInf(e, 1) {
		return 1, nil
	}
	return e / (1 + e), nil
}

// Vetharaniam2022Eq5 is the equation 5
// of Vetharaniam et al. (2022)
// 1 / (1 + exp(A (sqrt(x) - sqrt(B)))).
// It is defined for non-negative values.
type Vetharaniam2022Eq5 struct {
	A, B float64
}

func (v Vetharaniam2022Eq5) Eval(x float64) (float64, error) {
	if math.IsNaN(x) {
		return x, nil
	}
	return 1 / (1 + math.Exp(v.A*(math.Sqrt(x)-math.Sqrt(v.B)))), nil
}

// Vetharaniam2024Eq8 is the equation 8
// of Vetharaniam et al. (2024)
// exp(-A |x - B|^C).
// The maximum score (1) is at B.
type Vetharaniam2024Eq8 struct {
	A, B, C float64
}

func (v Vetharaniam2024Eq8) Eval(x float64) (float64, error) {
	if math.IsNaN(x) {
		return x, nil
	}
	return math.Exp(-v.A * math.Pow(math.Abs(x-v.B), v.C)), nil
}

// Vetharaniam2024Eq10 is the equation 10
// of Vetharaniam et al. (2024)
// 2 / (1 + exp(A |x - B|^C)).
// The maximum score (1) is at B.
type Vetharaniam2024Eq10 struct {
	A, B, C float64
}

func (v Vetharaniam2024Eq10) Eval(x float64) (float64, error) {
	if math.IsNaN(x) {
		return x, nil
	}
	return 2 / (1 + math.Exp(v.A*math.Pow(math.Abs(x-v.B), v.C))), nil
}

// Sigmoid is the sigmoid curve
// 1 / (1 + exp((A - x) / B))
// used for the number of frost and heat days
// of annual crops.
type Sigmoid struct {
	A, B float64
}

func (s Sigmoid) Eval(x float64) (float64, error) {
	if math.IsNaN(x) {
		return x, nil
	}
	return 1 / (1 + math.Exp((s.A-x)/s.B)), nil
}

// CappedExp is the exponential curve
// min(A exp(B / x), 1).
type CappedExp struct {
	A, B float64
}

func (c CappedExp) Eval(x float64) (float64, error) {
	if math.IsNaN(x) {
		return x, nil
	}
	return math.Min(c.A*math.Exp(c.B/x), 1), nil
}

// Discrete maps integer class codes
// (for example soil drainage classes)
// into scores.
type Discrete struct {
	Rules map[int]float64
}

func (d Discrete) Eval(x float64) (float64, error) {
	if math.IsNaN(x) {
		return x, nil
	}
	if x != math.Trunc(x) {
		return 0, fmt.Errorf("discrete: value %g is not a class code: %w", x, nzlusdb.ErrConfig)
	}
	v, ok := d.Rules[int(x)]
	if !ok {
		return 0, fmt.Errorf("discrete: class %d without rule: %w", int(x), nzlusdb.ErrConfig)
	}
	return v, nil
}

// Op is a comparison operator.
type Op string

// Valid comparison operators.
const (
	Less      Op = "<"
	LessEq    Op = "<="
	Greater   Op = ">"
	GreaterEq Op = ">="
	Equal     Op = "=="
)

// Boolean returns 1 if the comparison
// of the value with the threshold is true,
// and 0 otherwise.
type Boolean struct {
	Op     Op
	Thresh float64
}

func (b Boolean) Eval(x float64) (float64, error) {
	if math.IsNaN(x) {
		return x, nil
	}
	var ok bool
	switch b.Op {
	case Less:
		ok = x < b.Thresh
	case LessEq:
		ok = x <= b.Thresh
	case Greater:
		ok = x > b.Thresh
	case GreaterEq:
		ok = x >= b.Thresh
	case Equal:
		ok = x == b.Thresh
	default:
		return 0, fmt.Errorf("boolean: unknown operator %q: %w", b.Op, nzlusdb.ErrConfig)
	}
	if ok {
		return 1, nil
	}
	return 0, nil
}

func (Logistic) curve()            {}
func (Vetharaniam2022Eq3) curve()  {}
func (Vetharaniam2022Eq5) curve()  {}
func (Vetharaniam2024Eq8) curve()  {}
func (Vetharaniam2024Eq10) curve() {}
func (Sigmoid) curve()             {}
func (CappedExp) curve()           {}
func (Discrete) curve()            {}
func (Boolean) curve()             {}
