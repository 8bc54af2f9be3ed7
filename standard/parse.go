// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package standard

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/baptistehamon/nzlusdb"
)

// Curve names used in catalog files.
const (
	LogisticName            = "logistic"
	Vetharaniam2022Eq3Name  = "vetharaniam2022_eq3"
	Vetharaniam2022Eq5Name  = "vetharaniam2022_eq5"
	Vetharaniam2024Eq8Name  = "vetharaniam2024_eq8"
	Vetharaniam2024Eq10Name = "vetharaniam2024_eq10"
	SigmoidName             = "sigmoid"
	CappedExpName           = "capped_exp"
	DiscreteName            = "discrete"
	BooleanName             = "boolean"
)

func (Logistic) Name() string            { return LogisticName }
func (Vetharaniam2022Eq3) Name() string  { return Vetharaniam2022Eq3Name }
func (Vetharaniam2022Eq5) Name() string  { return Vetharaniam2022Eq5Name }
func (Vetharaniam2024Eq8) Name() string  { return Vetharaniam2024Eq8Name }
func (Vetharaniam2024Eq10) Name() string { return Vetharaniam2024Eq10Name }
func (Sigmoid) Name() string             { return SigmoidName }
func (CappedExp) Name() string           { return CappedExpName }
func (Discrete) Name() string            { return DiscreteName }
func (Boolean) Name() string             { return BooleanName }

func (l Logistic) Params() string            { return formatParams("a", l.A, "b", l.B) }
func (v Vetharaniam2022Eq3) Params() string  { return formatParams("a", v.A, "b", v.B) }
func (v Vetharaniam2022Eq5) Params() string  { return formatParams("a", v.A, "b", v.B) }
func (v Vetharaniam2024Eq8) Params() string  { return formatParams("a", v.A, "b", v.B, "c", v.C) }
func (v Vetharaniam2024Eq10) Params() string { return formatParams("a", v.A, "b", v.B, "c", v.C) }
func (s Sigmoid) Params() string             { return formatParams("a", s.A, "b", s.B) }
func (c CappedExp) Params() string           { return formatParams("a", c.A, "b", c.B) }

func (d Discrete) Params() string {
	codes := make([]int, 0, len(d.Rules))
	for c := range d.Rules {
		codes = append(codes, c)
	}
	slices.Sort(codes)

	p := make([]string, 0, len(codes))
	for _, c := range codes {
		p = append(p, strconv.Itoa(c)+"="+strconv.FormatFloat(d.Rules[c], 'g', -1, 64))
	}
	return strings.Join(p, ",")
}

func (b Boolean) Params() string {
	return "op=" + string(b.Op) + ",thresh=" + strconv.FormatFloat(b.Thresh, 'g', -1, 64)
}

func formatParams(kv ...any) string {
	p := make([]string, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		p = append(p, kv[i].(string)+"="+strconv.FormatFloat(kv[i+1].(float64), 'g', -1, 64))
	}
	return strings.Join(p, ",")
}

// Parse returns a curve from its name
// and its parameters.
//
// Parameters are a comma separated list of key=value pairs,
// for example:
//
//	logistic	a=-10.3,b=0.45
//	vetharaniam2024_eq8	a=0.015,b=17,c=2
//	discrete	0=0,1=0.3,2=0.6,3=0.9,4=1
//	boolean	op=<=,thresh=363
func Parse(name, params string) (Curve, error) {
	kv, err := splitParams(params)
	if err != nil {
		return nil, fmt.Errorf("curve %q: %w", name, err)
	}

	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case DiscreteName:
		d := Discrete{Rules: make(map[int]float64, len(kv))}
		for k, v := range kv {
			c, err := strconv.Atoi(k)
			if err != nil {
				return nil, fmt.Errorf("curve %q: class %q: %v: %w", name, k, err, nzlusdb.ErrConfig)
			}
			s, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("curve %q: class %q: %v: %w", name, k, err, nzlusdb.ErrConfig)
			}
			d.Rules[c] = s
		}
		if len(d.Rules) == 0 {
			return nil, fmt.Errorf("curve %q: without rules: %w", name, nzlusdb.ErrConfig)
		}
		return d, nil
	case BooleanName:
		op, ok := kv["op"]
		if !ok {
			return nil, fmt.Errorf("curve %q: expecting parameter %q: %w", name, "op", nzlusdb.ErrConfig)
		}
		b := Boolean{Op: Op(op)}
		switch b.Op {
		case Less, LessEq, Greater, GreaterEq, Equal:
		default:
			return nil, fmt.Errorf("curve %q: unknown operator %q: %w", name, op, nzlusdb.ErrConfig)
		}
		th, err := floatParam(kv, "thresh")
		if err != nil {
			return nil, fmt.Errorf("curve %q: %w", name, err)
		}
		b.Thresh = th
		return b, nil
	}

	var keys []string
	switch name {
	case LogisticName, Vetharaniam2022Eq3Name, Vetharaniam2022Eq5Name, SigmoidName, CappedExpName:
		keys = []string{"a", "b"}
	case Vetharaniam2024Eq8Name, Vetharaniam2024Eq10Name:
		keys = []string{"a", "b", "c"}
	default:
		return nil, fmt.Errorf("unknown curve %q: %w", name, nzlusdb.ErrConfig)
	}
	p := make([]float64, len(keys))
	for i, k := range keys {
		v, err := floatParam(kv, k)
		if err != nil {
			return nil, fmt.Errorf("curve %q: %w", name, err)
		}
		p[i] = v
	}

	switch name {
	case LogisticName:
		return Logistic{A: p[0], B: p[1]}, nil
	case Vetharaniam2022Eq3Name:
		return Vetharaniam2022Eq3{A: p[0], B: p[1]}, nil
	case Vetharaniam2022Eq5Name:
		return Vetharaniam2022Eq5{A: p[0], B: p[1]}, nil
	case SigmoidName:
		return Sigmoid{A: p[0], B: p[1]}, nil
	case CappedExpName:
		return CappedExp{A: p[0], B: p[1]}, nil
	case Vetharaniam2024Eq8Name:
		return Vetharaniam2024Eq8{A: p[0], B: p[1], C: p[2]}, nil
	}
	return Vetharaniam2024Eq10{A: p[0], B: p[1], C: p[2]}, nil
}

func splitParams(params string) (map[string]string, error) {
	kv := make(map[string]string)
	for _, p := range strings.Split(params, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("parameter %q: expecting key=value: %w", p, nzlusdb.ErrConfig)
		}
		k = strings.ToLower(strings.TrimSpace(k))
		if _, dup := kv[k]; dup {
			return nil, fmt.Errorf("parameter %q: repeated: %w", k, nzlusdb.ErrConfig)
		}
		kv[k] = strings.TrimSpace(v)
	}
	return kv, nil
}

func floatParam(kv map[string]string, key string) (float64, error) {
	s, ok := kv[key]
	if !ok {
		return 0, fmt.Errorf("expecting parameter %q: %w", key, nzlusdb.ErrConfig)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parameter %q: %v: %w", key, err, nzlusdb.ErrConfig)
	}
	return v, nil
}
