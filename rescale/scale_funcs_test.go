package rescale

import (
	"math"
	"testing"
)

const tol = 1e-9

func assertNear(t *testing.T, name string, got, expected []float64, tolerance float64) {
	t.Helper()
	if len(got) != len(expected) {
		t.Errorf("%s: expecting %d values, actual %d", name, len(expected), len(got))
		return
	}
	for i := range got {
		if math.Abs(got[i]-expected[i]) > tolerance {
			t.Errorf("%s: expecting %v, actual %v", name, expected, got)
			return
		}
	}
}

func TestLinearBasicScale(t *testing.T) {
	out := LinearBasicScale([]float64{0, 1, 2}, 2, 5)
	assertNear(t, "linear_basic", out, []float64{5, 7, 9}, tol)

	// identity coefficients leave the data untouched
	out = LinearBasicScale([]float64{3, 4}, 1, 0)
	assertNear(t, "linear_basic identity", out, []float64{3, 4}, 0)
}

func TestUnlinearScale(t *testing.T) {
	out := UnlinearScale([]float64{5, 7, 9}, 2, 5)
	assertNear(t, "unlinear", out, []float64{0, 1, 2}, tol)
}

func TestLinearFlexibleScale(t *testing.T) {
	minIn, maxIn := 0.0, 10.0

	out := LinearFlexibleScale([]float64{0, 5, 10}, 0, 100, &minIn, &maxIn, false, 0)
	assertNear(t, "linear explicit range", out, []float64{0, 50, 100}, tol)

	out = LinearFlexibleScale([]float64{0, 5, 10}, 0, 100, &minIn, &maxIn, true, 0)
	assertNear(t, "linear flipped", out, []float64{100, 50, 0}, tol)

	// input range computed from the data
	out = LinearFlexibleScale([]float64{2, 4, 6}, 0, 100, nil, nil, false, 0)
	assertNear(t, "linear auto range", out, []float64{0, 50, 100}, tol)

	// offset shifts the output floor
	out = LinearFlexibleScale([]float64{0, 10}, 0, 100, &minIn, &maxIn, false, 10)
	assertNear(t, "linear offset", out, []float64{10, 100}, tol)
}

func TestLinearFlexibleScaleDegenerate(t *testing.T) {
	// constant data must never produce NaN or Inf
	out := LinearFlexibleScale([]float64{7, 7, 7}, 0, 255, nil, nil, false, 0)
	for i, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("degenerate input produced non-finite value %v at %d", v, i)
		}
	}
	assertNear(t, "degenerate", out, []float64{0, 0, 0}, tol)
}

func TestSqrtScale(t *testing.T) {
	out, err := SqrtScale([]float64{0, 0.25, 1}, 0, 255, nil, nil, 0, 1, "")
	if err != nil {
		t.Fatalf("sqrt scale failed: %v", err)
	}
	assertNear(t, "sqrt", out, []float64{0, 128, 255}, tol)

	// negatives are clipped to zero before the square root
	out, err = SqrtScale([]float64{-4}, 0, 255, nil, nil, 0, 1, "")
	if err != nil {
		t.Fatalf("sqrt scale failed: %v", err)
	}
	assertNear(t, "sqrt negative", out, []float64{0}, tol)

	// percentage units widen the input range
	out, err = SqrtScale([]float64{100}, 0, 255, nil, nil, 0, 1, "%")
	if err != nil {
		t.Fatalf("sqrt scale failed: %v", err)
	}
	assertNear(t, "sqrt percent", out, []float64{255}, tol)

	if _, err = SqrtScale([]float64{1}, 5, 255, nil, nil, 5, 1, ""); err == nil {
		t.Errorf("sqrt scale accepted a non-zero-anchored range")
	}
}

func TestLookupScaleControlPoints(t *testing.T) {
	out, err := LookupScale([]float64{0, 25, 40, 55, 100, 255}, 0, 255, 0, 255, "crefl")
	if err != nil {
		t.Fatalf("lookup scale failed: %v", err)
	}
	assertNear(t, "lookup crefl", out, []float64{0, 90, 115, 140, 175, 255}, tol)
}

func TestLookupScaleDense(t *testing.T) {
	out, err := LookupScale([]float64{0, 25, 255}, 0, 255, 0, 255, "crefl_old")
	if err != nil {
		t.Fatalf("lookup scale failed: %v", err)
	}
	assertNear(t, "lookup crefl_old", out, []float64{0, 90, 255}, tol)
}

func TestLookupScalePropagatesNaN(t *testing.T) {
	for _, tableName := range []string{"crefl", "crefl_old"} {
		out, err := LookupScale([]float64{math.NaN(), 25}, 0, 255, 0, 255, tableName)
		if err != nil {
			t.Fatalf("%s: lookup scale failed: %v", tableName, err)
		}
		if !math.IsNaN(out[0]) {
			t.Errorf("%s: expecting NaN to propagate, actual %v", tableName, out[0])
		}
		if math.Abs(out[1]-90) > tol {
			t.Errorf("%s: expecting 90 for 25, actual %v", tableName, out[1])
		}
	}
}

func TestLookupScaleUnknownTable(t *testing.T) {
	if _, err := LookupScale([]float64{0}, 0, 255, 0, 1, "no_such_table"); err == nil {
		t.Errorf("lookup scale accepted an unknown table")
	}
}

func TestBrightnessTemperatureScale(t *testing.T) {
	// threshold_out defaults to 176/255*255 = 176 for 8-bit output
	out := BrightnessTemperatureScale([]float64{163, 241.5, 242, 330}, 242, 163, 330, 0, 255, nil, "kelvin")
	assertNear(t, "bt", out, []float64{255, 176.5, 176, 0}, 1e-6)
}

func TestBrightnessTemperatureScaleBranching(t *testing.T) {
	// the threshold itself routes to the high branch; just below it to the low
	out := BrightnessTemperatureScale([]float64{241.999, 242.0}, 242, 163, 330, 0, 255, nil, "kelvin")
	if out[0] <= 176 {
		t.Errorf("value below threshold landed in the high branch: %v", out[0])
	}
	if out[1] > 176+tol {
		t.Errorf("threshold value landed in the low branch: %v", out[1])
	}
}

func TestBrightnessTemperatureScaleCelsius(t *testing.T) {
	// converting the limits to Celsius must not change the mapping
	kelvin := BrightnessTemperatureScale([]float64{200, 300}, 242, 163, 330, 0, 255, nil, "kelvin")
	celsius := BrightnessTemperatureScale([]float64{200 - 273.15, 300 - 273.15}, 242, 163, 330, 0, 255, nil, "celsius")
	assertNear(t, "bt celsius", celsius, kelvin, 1e-6)
}

func TestLinearBrightnessTemperatureScale(t *testing.T) {
	minIn, maxIn := 200.0, 300.0
	out := LinearBrightnessTemperatureScale([]float64{200, 300}, 0, 255, &minIn, &maxIn, "kelvin", true)
	assertNear(t, "linear_bt", out, []float64{255, 0}, tol)
}

func TestTemperatureDifferenceScale(t *testing.T) {
	// -10..10 lands in 5..204 for 8-bit output; outliers become 4 and 205
	out := TemperatureDifferenceScale([]float64{0, -20, 20}, -10, 10, 0, 255)
	assertNear(t, "temperature_difference", out, []float64{104.5, 4, 205}, tol)
}

func TestLstScale(t *testing.T) {
	out := LstScale([]float64{0, 1, 1.1, -0.1}, 0, 255, 0, 1, -1)
	assertNear(t, "lst", out, []float64{5, 250, 250, -1}, tol)
}

func TestCttScale(t *testing.T) {
	minIn, maxIn := 0.0, 1.0
	out := CttScale([]float64{0, 1, 0.5}, 0, 255, &minIn, &maxIn, true)
	assertNear(t, "ctt", out, []float64{250, 10, 130}, tol)
}

func TestNdviScale(t *testing.T) {
	out := NdviScale([]float64{-1, 0, 1}, 0, 255, -1, 1, 0, nil)
	assertNear(t, "ndvi", out, []float64{0, 49, 255}, tol)

	// out-of-range inputs are clipped before scaling
	out = NdviScale([]float64{-2, 2}, 0, 255, -1, 1, 0, nil)
	assertNear(t, "ndvi clipped", out, []float64{0, 255}, tol)
}

func TestDebugScale(t *testing.T) {
	minIn, maxIn := 0.0, 1.0
	out := DebugScale([]float64{0, 1}, 0, 200, &minIn, &maxIn, 0.5)
	assertNear(t, "debug", out, []float64{100, 200}, tol)
}

func TestPassiveScale(t *testing.T) {
	out := PassiveScale([]float64{1.5, -2})
	assertNear(t, "raw", out, []float64{1.5, -2}, 0)
}
