package rescale

import (
	"fmt"

	"github.com/wroberts4/polar2grid/colormap"
	"github.com/wroberts4/polar2grid/utils"
)

// Method identifies one of the scaling algorithms in the catalog.
type Method string

const (
	MethodLinear                      Method = "linear"
	MethodLinearBasic                 Method = "linear_basic"
	MethodUnlinear                    Method = "unlinear"
	MethodRaw                         Method = "raw"
	MethodSqrt                        Method = "sqrt"
	MethodLookup                      Method = "lookup"
	MethodBrightnessTemperature       Method = "brightness_temperature"
	MethodLinearBrightnessTemperature Method = "linear_brightness_temperature"
	MethodTemperatureDifference       Method = "temperature_difference"
	MethodLst                         Method = "lst"
	MethodCtt                         Method = "ctt"
	MethodNdvi                        Method = "ndvi"
	MethodDebug                       Method = "debug"
	MethodPalettize                   Method = "palettize"
	MethodColorize                    Method = "colorize"
	MethodWaterTempPalettize          Method = "water_temp_palettize"
	MethodExpression                  Method = "expression"

	// MethodCustom marks a caller-registered scaling function. The
	// function travels in ScaleOptions.Func; CustomName holds the name it
	// was registered under.
	MethodCustom Method = "custom"
)

// IsColormapped reports whether the method maps data through a colormap.
// Colormapped output bypasses clipping and increment-by-one since the
// produced values must match the colormap, not the output range.
func (m Method) IsColormapped() bool {
	switch m {
	case MethodPalettize, MethodColorize, MethodWaterTempPalettize:
		return true
	}
	return false
}

var builtinMethods = map[string]Method{
	string(MethodLinear):                      MethodLinear,
	string(MethodLinearBasic):                 MethodLinearBasic,
	string(MethodUnlinear):                    MethodUnlinear,
	string(MethodRaw):                         MethodRaw,
	string(MethodSqrt):                        MethodSqrt,
	string(MethodLookup):                      MethodLookup,
	string(MethodBrightnessTemperature):       MethodBrightnessTemperature,
	string(MethodLinearBrightnessTemperature): MethodLinearBrightnessTemperature,
	string(MethodTemperatureDifference):       MethodTemperatureDifference,
	string(MethodLst):                         MethodLst,
	string(MethodCtt):                         MethodCtt,
	string(MethodNdvi):                        MethodNdvi,
	string(MethodDebug):                       MethodDebug,
	string(MethodPalettize):                   MethodPalettize,
	string(MethodColorize):                    MethodColorize,
	string(MethodWaterTempPalettize):          MethodWaterTempPalettize,
	string(MethodExpression):                  MethodExpression,
}

// ScaleFunc is a caller-supplied scaling function. It receives the
// valid-only subset of a product's data and the fully resolved options,
// mutates the data in place and returns it.
type ScaleFunc func(data []float64, opts *ScaleOptions) ([]float64, error)

var customMethods = map[string]ScaleFunc{}

// RegisterMethod installs a named scaling function so configuration
// files can select it like a builtin. Must be called during program
// initialization, before any rule resolution; the registry is read-only
// afterwards.
func RegisterMethod(name string, fn ScaleFunc) error {
	if _, found := builtinMethods[name]; found {
		return fmt.Errorf("cannot register rescaling method '%s': name is taken by a builtin", name)
	}
	if _, found := customMethods[name]; found {
		return fmt.Errorf("rescaling method '%s' is already registered", name)
	}
	if fn == nil {
		return fmt.Errorf("cannot register rescaling method '%s': nil function", name)
	}
	customMethods[name] = fn
	return nil
}

func lookupMethod(name string) (Method, ScaleFunc, error) {
	if m, found := builtinMethods[name]; found {
		return m, nil, nil
	}
	if fn, found := customMethods[name]; found {
		return MethodCustom, fn, nil
	}
	return "", nil, fmt.Errorf("unknown rescaling method '%s'", name)
}

// ScaleOptions is the fully defaulted parameter bundle produced by rule
// resolution for one product. The masked application layer consumes it
// read-only; a ScaleOptions value is never mutated after Resolve returns
// so it can be shared across bands and concurrent calls.
type ScaleOptions struct {
	Method     Method
	CustomName string
	Func       ScaleFunc

	// Output range and the sentinel written into invalid pixels.
	MinOut  float64
	MaxOut  float64
	FillOut float64

	// Input range. Nil means "not configured": methods that can
	// auto-range compute it from the data, others apply their own
	// documented defaults.
	MinIn *float64
	MaxIn *float64

	// linear_basic / unlinear coefficients.
	M float64
	B float64

	Flip   bool
	Offset float64

	// sqrt multipliers; nil derives them from the input/output ranges.
	InnerMult *float64
	OuterMult *float64

	Threshold    float64
	ThresholdOut *float64

	Units     string
	TableName string
	Percent   float64

	Expr *utils.ParamExpression

	Colormap *colormap.Colormap
	Alpha    bool

	// Application policy.
	SeparateRGB bool
	Clip        bool
	MaskClip    string
	IncByOne    bool
}

func float64Ptr(v float64) *float64 {
	return &v
}

func orDefault(v *float64, def float64) float64 {
	if v != nil {
		return *v
	}
	return def
}
