package rescale

import (
	"fmt"
)

// PalettizeScale maps a single-band buffer through the resolved colormap
// into palette indices; with colorize set it produces the colors
// themselves. Unlike the other scaling functions it receives the full
// buffer plus the validity mask, because the fill handling depends on
// whether an alpha band is produced:
//
//   - With an alpha band, invalid pixels carry alpha 0 and valid pixels
//     alpha maxOut+1, and indices/colors are used as-is.
//   - Without one, the first colormap entry is treated as reserved for
//     invalid data: indices are computed against the remaining entries,
//     incremented by one, and invalid pixels are forced to zero.
//
// The returned buffer replaces the input one; its band count differs
// from the input (index+alpha, or color bands).
func PalettizeScale(data []float64, mask []bool, opts *ScaleOptions, colorize bool) ([]float64, error) {
	if opts.Colormap == nil {
		return nil, fmt.Errorf("'colormap' is required for '%s' rescaling", opts.Method)
	}

	minIn := orDefault(opts.MinIn, 0)
	maxIn := orDefault(opts.MaxIn, 1)
	if minIn > maxIn {
		return nil, fmt.Errorf("'%s' rescaling requires 'min_in' <= 'max_in', found %f > %f", opts.Method, minIn, maxIn)
	}

	cmap := opts.Colormap.Clone()
	if !opts.Alpha && cmap.Len() > 1 {
		cmap = cmap.WithoutFirst()
	}
	cmap.SetRange(minIn, maxIn)

	n := len(data)
	alphaHigh := opts.MaxOut + 1

	if opts.Alpha {
		if colorize {
			out := make([]float64, 4*n)
			for i, v := range data {
				if !mask[i] {
					continue
				}
				col := cmap.ColorAt(v)
				out[i] = col.R * alphaHigh
				out[n+i] = col.G * alphaHigh
				out[2*n+i] = col.B * alphaHigh
				out[3*n+i] = alphaHigh
			}
			return out, nil
		}

		out := make([]float64, 2*n)
		for i, v := range data {
			if !mask[i] {
				continue
			}
			out[i] = float64(cmap.Index(v))
			out[n+i] = alphaHigh
		}
		return out, nil
	}

	if colorize {
		out := make([]float64, 3*n)
		for i, v := range data {
			if !mask[i] {
				continue
			}
			col := cmap.ColorAt(v)
			out[i] = col.R * alphaHigh
			out[n+i] = col.G * alphaHigh
			out[2*n+i] = col.B * alphaHigh
		}
		return out, nil
	}

	for i, v := range data {
		if !mask[i] {
			data[i] = 0
			continue
		}
		data[i] = float64(cmap.Index(v) + 1)
	}
	return data, nil
}

// WaterTempPalettize assumes the data has already been indexed into the
// colormap upstream and only compresses three colliding index ranges so
// everything fits in 8-bit space: 150 -> 31, 199 -> 18 and everything at
// or above 200 shifts down by 100. This is a narrow exception table for
// the water temperature product, not a general transform.
func WaterTempPalettize(data []float64, opts *ScaleOptions) ([]float64, error) {
	if opts.Colormap == nil {
		return nil, fmt.Errorf("'colormap' is required for '%s' rescaling", opts.Method)
	}

	for i, v := range data {
		switch {
		case v == 150:
			data[i] = 31
		case v == 199:
			data[i] = 18
		case v >= 200:
			data[i] = v - 100
		}
	}
	return data, nil
}
