package rescale

import (
	"fmt"
	"log"
	"math"
)

// GriddedProduct is the engine's view of a remapped product: its
// identification attributes, a mutable data buffer and a validity mask.
// The buffer holds bands contiguously (band-major); the mask is parallel
// to the buffer with true marking usable pixels. Rescaling mutates the
// buffer and mask in place.
type GriddedProduct interface {
	GetMeta() ProductMeta
	GetData() []float64
	GetMask() []bool
	GetBands() int
}

func methodName(opts *ScaleOptions) string {
	if opts.Method == MethodCustom {
		return opts.CustomName
	}
	return string(opts.Method)
}

// inRange returns the configured input range for methods that cannot
// auto-range, erroring when a hand-built options bundle left it unset.
func (o *ScaleOptions) inRange() (float64, float64, error) {
	if o.MinIn == nil || o.MaxIn == nil {
		return 0, 0, fmt.Errorf("method '%s' requires 'min_in' and 'max_in'", methodName(o))
	}
	return *o.MinIn, *o.MaxIn, nil
}

// invokeMethod runs the scaling function selected by the options over
// the valid-only data subset. Methods with optional input ranges apply
// their documented defaults here.
func invokeMethod(good []float64, opts *ScaleOptions) ([]float64, error) {
	switch opts.Method {
	case MethodLinear:
		return LinearFlexibleScale(good, opts.MinOut, opts.MaxOut, opts.MinIn, opts.MaxIn, opts.Flip, opts.Offset), nil
	case MethodLinearBasic:
		return LinearBasicScale(good, opts.M, opts.B), nil
	case MethodUnlinear:
		return UnlinearScale(good, opts.M, opts.B), nil
	case MethodRaw:
		return PassiveScale(good), nil
	case MethodSqrt:
		return SqrtScale(good, opts.MinOut, opts.MaxOut, opts.InnerMult, opts.OuterMult,
			orDefault(opts.MinIn, 0), orDefault(opts.MaxIn, 1), opts.Units)
	case MethodLookup:
		minIn, maxIn, err := opts.inRange()
		if err != nil {
			return nil, err
		}
		return LookupScale(good, opts.MinOut, opts.MaxOut, minIn, maxIn, opts.TableName)
	case MethodBrightnessTemperature:
		minIn, maxIn, err := opts.inRange()
		if err != nil {
			return nil, err
		}
		return BrightnessTemperatureScale(good, opts.Threshold, minIn, maxIn,
			opts.MinOut, opts.MaxOut, opts.ThresholdOut, opts.Units), nil
	case MethodLinearBrightnessTemperature:
		return LinearBrightnessTemperatureScale(good, opts.MinOut, opts.MaxOut, opts.MinIn, opts.MaxIn, opts.Units, opts.Flip), nil
	case MethodTemperatureDifference:
		minIn, maxIn, err := opts.inRange()
		if err != nil {
			return nil, err
		}
		return TemperatureDifferenceScale(good, minIn, maxIn, opts.MinOut, opts.MaxOut), nil
	case MethodLst:
		minIn, maxIn, err := opts.inRange()
		if err != nil {
			return nil, err
		}
		return LstScale(good, opts.MinOut, opts.MaxOut, minIn, maxIn, opts.FillOut), nil
	case MethodCtt:
		return CttScale(good, opts.MinOut, opts.MaxOut, opts.MinIn, opts.MaxIn, opts.Flip), nil
	case MethodNdvi:
		return NdviScale(good, opts.MinOut, opts.MaxOut,
			orDefault(opts.MinIn, -1), orDefault(opts.MaxIn, 1), opts.Threshold, opts.ThresholdOut), nil
	case MethodDebug:
		return DebugScale(good, opts.MinOut, opts.MaxOut, opts.MinIn, opts.MaxIn, opts.Percent), nil
	case MethodExpression:
		return ExpressionScale(good, opts.Expr, opts.MinOut, opts.MaxOut, opts.MinIn, opts.MaxIn)
	case MethodCustom:
		return opts.Func(good, opts)
	}
	return nil, fmt.Errorf("unknown rescaling method '%s'", opts.Method)
}

func applyColormapped(data []float64, mask []bool, opts *ScaleOptions) ([]float64, error) {
	switch opts.Method {
	case MethodPalettize:
		return PalettizeScale(data, mask, opts, false)
	case MethodColorize:
		return PalettizeScale(data, mask, opts, true)
	case MethodWaterTempPalettize:
		return WaterTempPalettize(data, opts)
	}
	return nil, fmt.Errorf("method '%s' is not colormapped", opts.Method)
}

// Apply rescales one band in place under its validity mask:
//
//  1. Colormapped methods get the full buffer plus the mask and their
//     result is returned unchanged; clipping and increment-by-one do not
//     apply to palette output.
//  2. Everything else runs on the valid-only subset. With clipping on,
//     mask_clip first converts out-of-range values to NaN ("min", "max"
//     or "both" side), then the subset is clipped into the output range.
//     When the floor is zero and increment-by-one is off the clip floor
//     is 1 instead, keeping zero exclusively for the fill sentinel.
//  3. The mask is recomputed afterwards since a scaling method may
//     legitimately produce NaN; every invalid pixel is set to the fill
//     value, and increment-by-one then shifts the remaining valid
//     pixels up by one.
//
// Failures are logged with the method and options for diagnosis and
// returned to the caller, which decides whether to skip the product or
// abort.
func Apply(data []float64, mask []bool, opts *ScaleOptions) ([]float64, error) {
	if len(mask) != len(data) {
		return nil, fmt.Errorf("mask length %d does not match data length %d", len(mask), len(data))
	}

	if opts.Method.IsColormapped() {
		out, err := applyColormapped(data, mask, opts)
		if err != nil {
			log.Printf("rescale: method %s failed: %v", methodName(opts), err)
			return nil, err
		}
		return out, nil
	}

	nValid := 0
	for _, ok := range mask {
		if ok {
			nValid++
		}
	}
	good := make([]float64, 0, nValid)
	positions := make([]int, 0, nValid)
	for i, ok := range mask {
		if ok {
			good = append(good, data[i])
			positions = append(positions, i)
		}
	}

	scaled, err := invokeMethod(good, opts)
	if err != nil {
		log.Printf("rescale: method %s with options %+v failed: %v", methodName(opts), opts, err)
		return nil, err
	}

	if opts.Clip {
		if opts.MaskClip == "min" || opts.MaskClip == "both" {
			for i, v := range scaled {
				if v < opts.MinOut {
					scaled[i] = math.NaN()
				}
			}
		}
		if opts.MaskClip == "max" || opts.MaskClip == "both" {
			for i, v := range scaled {
				if v > opts.MaxOut {
					scaled[i] = math.NaN()
				}
			}
		}

		lo := opts.MinOut
		if opts.MinOut == 0 && !opts.IncByOne {
			lo = 1
		}
		clipInPlace(scaled, lo, opts.MaxOut)
	}

	for j, pos := range positions {
		data[pos] = scaled[j]
		if math.IsNaN(scaled[j]) {
			mask[pos] = false
		}
	}
	for i := range data {
		if !mask[i] {
			data[i] = opts.FillOut
		}
	}
	if opts.IncByOne {
		for i := range data {
			if mask[i] {
				data[i]++
			}
		}
	}

	return data, nil
}

// Rescaler is the public entry point: rule resolution plus masked
// application in one per-product call.
type Rescaler struct {
	rules *RuleSet
}

func NewRescaler(rules *RuleSet) *Rescaler {
	return &Rescaler{rules: rules}
}

// LoadRescaler builds a Rescaler from ordered YAML configuration files.
func LoadRescaler(configFiles ...string) (*Rescaler, error) {
	rules, err := LoadRuleSet(configFiles...)
	if err != nil {
		return nil, err
	}
	return NewRescaler(rules), nil
}

// GetRescaleOptions resolves the configured options for a product
// without applying them, mainly for callers that rescale several
// products sharing one configuration lookup.
func (r *Rescaler) GetRescaleOptions(meta ProductMeta, dataType string, incByOne bool, fillValue float64) (*ScaleOptions, error) {
	return r.rules.Resolve(meta, dataType, incByOne, fillValue)
}

// RescaleProduct rescales a product's buffer in place for the given
// output data type. A nil opts resolves the configuration first. A
// 3-band buffer is processed band by band with the same resolved
// options unless separate_rgb is disabled, so the three channels end up
// on a consistent scale. Returns the rescaled buffer, which for
// colormapped methods is a new buffer with a different band count.
func (r *Rescaler) RescaleProduct(product GriddedProduct, dataType string, incByOne bool, fillValue float64, opts *ScaleOptions) ([]float64, error) {
	meta := product.GetMeta()
	if opts == nil {
		var err error
		opts, err = r.GetRescaleOptions(meta, dataType, incByOne, fillValue)
		if err != nil {
			return nil, err
		}
	}

	data := product.GetData()
	mask := product.GetMask()
	bands := product.GetBands()
	if bands <= 0 {
		bands = 1
	}
	if len(data)%bands != 0 {
		return nil, fmt.Errorf("product %s: buffer length %d not divisible by %d bands", meta.ProductName, len(data), bands)
	}
	if len(mask) != len(data) {
		return nil, fmt.Errorf("product %s: mask length %d does not match data length %d", meta.ProductName, len(mask), len(data))
	}

	if bands == 3 && opts.SeparateRGB && !opts.Method.IsColormapped() {
		n := len(data) / 3
		for band := 0; band < 3; band++ {
			if _, err := Apply(data[band*n:(band+1)*n], mask[band*n:(band+1)*n], opts); err != nil {
				return nil, fmt.Errorf("product %s band %d: %v", meta.ProductName, band, err)
			}
		}
		return data, nil
	}

	if bands > 1 && opts.Method.IsColormapped() {
		return nil, fmt.Errorf("product %s: cannot %s a %d-band buffer", meta.ProductName, opts.Method, bands)
	}

	out, err := Apply(data, mask, opts)
	if err != nil {
		return nil, fmt.Errorf("product %s: %v", meta.ProductName, err)
	}
	return out, nil
}
