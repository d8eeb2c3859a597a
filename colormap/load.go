package colormap

import (
	"fmt"
	"io/ioutil"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// FromColorTableFile parses an on-disk color table into a Colormap. Each
// non-comment line holds "value,R,G,B" or "value,R,G,B,A" with color
// components as 0-255 integers. Lines starting with '#' are comments.
func FromColorTableFile(filename string) (*Colormap, error) {
	contents, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var values []float64
	var colors []Color
	for lineNum, line := range strings.Split(string(contents), "\n") {
		line = strings.TrimSpace(line)
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, ",")
		if len(fields) != 4 && len(fields) != 5 {
			return nil, fmt.Errorf("%s:%d: expected 'value,R,G,B[,A]', found '%s'", filename, lineNum+1, line)
		}

		value, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: invalid value '%s': %v", filename, lineNum+1, fields[0], err)
		}

		comps := [4]float64{0, 0, 0, 255}
		for i, field := range fields[1:] {
			comp, err := strconv.ParseInt(strings.TrimSpace(field), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: invalid color component '%s': %v", filename, lineNum+1, field, err)
			}
			if comp < 0 || comp > 255 {
				return nil, fmt.Errorf("%s:%d: color component %d out of range", filename, lineNum+1, comp)
			}
			comps[i] = float64(comp)
		}

		values = append(values, value)
		colors = append(colors, Color{
			R: comps[0] / 255.0,
			G: comps[1] / 255.0,
			B: comps[2] / 255.0,
			A: comps[3] / 255.0,
		})
	}

	return New(values, colors)
}

func hexRamp(hexColors ...string) []Color {
	colors := make([]Color, len(hexColors))
	for i, h := range hexColors {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(fmt.Sprintf("builtin colormap has invalid hex color '%s': %v", h, err))
		}
		colors[i] = Color{R: c.R, G: c.G, B: c.B, A: 1.0}
	}
	return colors
}

func evenValues(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = float64(i) / float64(n-1)
	}
	return values
}

func mustNew(values []float64, colors []Color) *Colormap {
	cmap, err := New(values, colors)
	if err != nil {
		panic(err)
	}
	return cmap
}

// Built-in colormaps available by name from rescale configuration. The
// domain of each is [0, 1] until SetRange reassigns it.
var builtins = map[string]*Colormap{
	"greys": mustNew(evenValues(2), hexRamp("#000000", "#ffffff")),
	"spectral": mustNew(evenValues(6), hexRamp(
		"#9e0142", "#f46d43", "#ffffbf", "#66c2a5", "#5e4fa2", "#2c1e50")),
	"rdbu": mustNew(evenValues(3), hexRamp("#b2182b", "#f7f7f7", "#2166ac")),
	"water_temperature": mustNew(evenValues(5), hexRamp(
		"#08306b", "#2171b5", "#6baed6", "#fcae91", "#a50f15")),
}

// Builtin returns a copy of a named built-in colormap.
func Builtin(name string) (*Colormap, error) {
	cmap, found := builtins[name]
	if !found {
		return nil, fmt.Errorf("unknown builtin colormap '%s'", name)
	}
	return cmap.Clone(), nil
}

// Load resolves a colormap reference from rescale configuration: a path
// to a color table file, or the name of a built-in colormap.
func Load(nameOrPath string) (*Colormap, error) {
	cmap, err := FromColorTableFile(nameOrPath)
	if err == nil {
		return cmap, nil
	}

	cmap, builtinErr := Builtin(nameOrPath)
	if builtinErr != nil {
		return nil, fmt.Errorf("colormap '%s' is neither a readable color table file (%v) nor a builtin", nameOrPath, err)
	}
	return cmap, nil
}
