package rescale

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property-based test: unlinear undoes linear_basic
func TestLinearBasic_PropertyRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("unlinear inverts linear_basic", prop.ForAll(
		func(m, b, x float64) bool {
			out := UnlinearScale(LinearBasicScale([]float64{x}, m, b), m, b)
			return math.Abs(out[0]-x) <= 1e-6*math.Max(1, math.Abs(x))
		},
		gen.Float64Range(0.5, 100),
		gen.Float64Range(-1000, 1000),
		gen.Float64Range(-1e6, 1e6),
	))

	properties.TestingRun(t)
}

// Property-based test: linear scaling preserves order, flip reverses it
func TestLinearFlexible_PropertyMonotonic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	minIn, maxIn := -50.0, 50.0

	properties.Property("scaling preserves pixel order", prop.ForAll(
		func(x1, x2 float64) bool {
			if x1 > x2 {
				x1, x2 = x2, x1
			}
			out := LinearFlexibleScale([]float64{x1, x2}, 0, 255, &minIn, &maxIn, false, 0)
			return out[0] <= out[1]
		},
		gen.Float64Range(-50, 50),
		gen.Float64Range(-50, 50),
	))

	properties.Property("flipped scaling reverses pixel order", prop.ForAll(
		func(x1, x2 float64) bool {
			if x1 > x2 {
				x1, x2 = x2, x1
			}
			out := LinearFlexibleScale([]float64{x1, x2}, 0, 255, &minIn, &maxIn, true, 0)
			return out[0] >= out[1]
		},
		gen.Float64Range(-50, 50),
		gen.Float64Range(-50, 50),
	))

	properties.TestingRun(t)
}

// Property-based test: constant products never produce NaN or Inf
func TestLinearFlexible_PropertyDegenerate(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("constant data scales to finite values", prop.ForAll(
		func(v float64, n int) bool {
			data := make([]float64, n)
			for i := range data {
				data[i] = v
			}
			out := LinearFlexibleScale(data, 0, 255, nil, nil, false, 0)
			for _, o := range out {
				if math.IsNaN(o) || math.IsInf(o, 0) {
					return false
				}
			}
			return true
		},
		gen.Float64Range(-1e6, 1e6),
		gen.IntRange(1, 64),
	))

	properties.TestingRun(t)
}

// Property-based test: sqrt output is integral and non-negative
func TestSqrt_PropertyIntegral(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("sqrt output is a non-negative integer within range", prop.ForAll(
		func(xs []float64) bool {
			out, err := SqrtScale(xs, 0, 255, nil, nil, 0, 1, "")
			if err != nil {
				return false
			}
			for _, v := range out {
				if v != math.Trunc(v) || v < 0 || v > 255 {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Float64Range(-2, 1)),
	))

	properties.TestingRun(t)
}

// Property-based test: colder brightness temperatures come out brighter
func TestBrightnessTemperature_PropertyNonIncreasing(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("output never increases with temperature", prop.ForAll(
		func(x1, x2 float64) bool {
			if x1 > x2 {
				x1, x2 = x2, x1
			}
			out := BrightnessTemperatureScale([]float64{x1, x2}, 242, 163, 330, 0, 255, nil, "kelvin")
			return out[0] >= out[1]-1e-9
		},
		gen.Float64Range(163, 330),
		gen.Float64Range(163, 330),
	))

	properties.TestingRun(t)
}
