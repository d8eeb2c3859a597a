// Package colormap provides parsed colormap objects for palette-based
// rescaling. A Colormap is an ordered sequence of control points mapping
// an input value to a display color; its input domain can be reassigned
// to match the physical range of a product.
package colormap

import (
	"fmt"
	"image/color"
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color holds RGBA components in the [0, 1] range.
type Color struct {
	R, G, B, A float64
}

func (c Color) blend(other Color, t float64) Color {
	c1 := colorful.Color{R: c.R, G: c.G, B: c.B}
	c2 := colorful.Color{R: other.R, G: other.G, B: other.B}
	blended := c1.BlendRgb(c2, t)
	return Color{
		R: blended.R,
		G: blended.G,
		B: blended.B,
		A: c.A + t*(other.A-c.A),
	}
}

// Colormap is an ordered list of (value, color) control points. Values
// are strictly increasing.
type Colormap struct {
	Values []float64
	Colors []Color
}

func New(values []float64, colors []Color) (*Colormap, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("colormap requires at least one control point")
	}
	if len(values) != len(colors) {
		return nil, fmt.Errorf("colormap has %d values but %d colors", len(values), len(colors))
	}
	for i := 1; i < len(values); i++ {
		if values[i] <= values[i-1] {
			return nil, fmt.Errorf("colormap values are not strictly increasing at index %d", i)
		}
	}
	return &Colormap{Values: values, Colors: colors}, nil
}

func (c *Colormap) Len() int {
	return len(c.Values)
}

// SetRange linearly remaps the control point values onto [minIn, maxIn].
func (c *Colormap) SetRange(minIn, maxIn float64) {
	oldMin := c.Values[0]
	oldMax := c.Values[len(c.Values)-1]
	if oldMax == oldMin {
		c.Values[0] = minIn
		return
	}
	scale := (maxIn - minIn) / (oldMax - oldMin)
	for i, v := range c.Values {
		c.Values[i] = minIn + (v-oldMin)*scale
	}
}

// Index returns the control point index for a value: the last control
// point whose value is less than or equal to v, clipped to the table.
func (c *Colormap) Index(v float64) int {
	idx := sort.SearchFloat64s(c.Values, v)
	if idx >= len(c.Values) || c.Values[idx] != v {
		idx--
	}
	if idx < 0 {
		idx = 0
	}
	if idx > len(c.Values)-1 {
		idx = len(c.Values) - 1
	}
	return idx
}

// ColorAt returns the piecewise-linearly interpolated color for a value.
// Values outside the domain take the first or last color.
func (c *Colormap) ColorAt(v float64) Color {
	if v <= c.Values[0] {
		return c.Colors[0]
	}
	last := len(c.Values) - 1
	if v >= c.Values[last] {
		return c.Colors[last]
	}
	seg := sort.SearchFloat64s(c.Values, v)
	if c.Values[seg] > v {
		seg--
	}
	if seg >= last {
		return c.Colors[last]
	}
	t := (v - c.Values[seg]) / (c.Values[seg+1] - c.Values[seg])
	return c.Colors[seg].blend(c.Colors[seg+1], t)
}

// WithoutFirst returns a copy of the colormap with the first control
// point removed. Palettize uses this when the first entry is reserved
// for invalid data.
func (c *Colormap) WithoutFirst() *Colormap {
	values := make([]float64, len(c.Values)-1)
	colors := make([]Color, len(c.Colors)-1)
	copy(values, c.Values[1:])
	copy(colors, c.Colors[1:])
	return &Colormap{Values: values, Colors: colors}
}

// Clone returns an independent copy. Resolvers clone before calling
// SetRange so a shared built-in colormap is never mutated.
func (c *Colormap) Clone() *Colormap {
	values := make([]float64, len(c.Values))
	colors := make([]Color, len(c.Colors))
	copy(values, c.Values)
	copy(colors, c.Colors)
	return &Colormap{Values: values, Colors: colors}
}

// Ramp samples the colormap into an n-colour gradient palette across its
// input domain.
func (c *Colormap) Ramp(n int) []color.RGBA {
	ramp := make([]color.RGBA, n)
	minIn := c.Values[0]
	maxIn := c.Values[len(c.Values)-1]
	for i := 0; i < n; i++ {
		v := minIn
		if n > 1 {
			v = minIn + float64(i)*(maxIn-minIn)/float64(n-1)
		}
		col := c.ColorAt(v)
		ramp[i] = color.RGBA{
			R: uint8(col.R*255.0 + 0.5),
			G: uint8(col.G*255.0 + 0.5),
			B: uint8(col.B*255.0 + 0.5),
			A: uint8(col.A*255.0 + 0.5),
		}
	}
	return ramp
}
