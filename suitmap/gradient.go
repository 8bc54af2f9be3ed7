// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package suitmap

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/baptistehamon/nzlusdb"
	"github.com/js-arias/blind"
)

// Gradienter is an interface for types
// that return a color gradient
type Gradienter interface {
	Gradient(v float64) color.Color
}

// ParseGradient returns a gradient from its name.
func ParseGradient(name string) (Gradienter, error) {
	switch strings.ToLower(name) {
	case "", "iridescent":
		return Iridescent{}, nil
	case "incandescent":
		return Incandescent{}, nil
	case "rainbow":
		return RainbowPurpleToRed{}, nil
	case "gray":
		return LightGrayScale{}, nil
	case "change", "diverging":
		return PinkGreen{}, nil
	}
	return nil, fmt.Errorf("unknown color scheme %q: %w", name, nzlusdb.ErrConfig)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// LightGrayScale returns a gray scale
// between 0 (black)
// to 200 (light gray).
type LightGrayScale struct{}

func (l LightGrayScale) Gradient(v float64) color.Color {
	v = clamp(v)
	c := 200 - uint8(v*200)
	return color.RGBA{c, c, c, 255}
}

// Incandescent is the incandescent color scheme
// of Paul Tol
// <https://personal.sron.nl/~pault/#fig:scheme_incandescent>.
type Incandescent struct{}

func (i Incandescent) Gradient(v float64) color.Color {
	return blind.Sequential(blind.Incandescent, clamp(v))
}

// Iridescent is the iridescent color scheme
// of Paul Tol
// <https://personal.sron.nl/~pault/#fig:scheme_iridescent>.
type Iridescent struct{}

func (i Iridescent) Gradient(v float64) color.Color {
	return blind.Sequential(blind.Iridescent, clamp(v))
}

// RainbowPurpleToRed is the rainbow color scheme
// of Paul Tol
// <https://personal.sron.nl/~pault/#fig:scheme_rainbow_smooth>
// starting at purple and ending at red.
type RainbowPurpleToRed struct{}

func (r RainbowPurpleToRed) Gradient(v float64) color.Color {
	return blind.Sequential(blind.RainbowPurpleToRed, clamp(v))
}

// pink to green anchors,
// with white at the center
var pinkGreen = []color.RGBA{
	{142, 1, 82, 255},
	{222, 119, 174, 255},
	{247, 247, 247, 255},
	{127, 188, 65, 255},
	{39, 100, 25, 255},
}

// PinkGreen is a diverging color scheme
// for changes,
// from pink (negative)
// to green (positive),
// with 0.5 as white.
type PinkGreen struct{}

func (p PinkGreen) Gradient(v float64) color.Color {
	v = clamp(v) * float64(len(pinkGreen)-1)
	i := int(v)
	if i >= len(pinkGreen)-1 {
		return pinkGreen[len(pinkGreen)-1]
	}
	f := v - float64(i)
	a, b := pinkGreen[i], pinkGreen[i+1]
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*f + 0.5)
	}
	return color.RGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), 255}
}
