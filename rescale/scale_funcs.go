// Package rescale converts calibrated satellite measurements into
// display-ready values for an integer output type. A configuration rule
// set picks a scaling method and parameters per product; the scaling
// functions transform the valid pixels; the application layer handles
// masking, clipping and fill-value bookkeeping around them.
//
// Scaling functions mutate and return their input slice. Ownership of
// the slice passes to the function for the duration of the call.
package rescale

import (
	"fmt"
	"log"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"

	"github.com/wroberts4/polar2grid/utils"
)

const kelvinToCelsius = -273.15

// LinearBasicScale computes y = m*x + b in place.
func LinearBasicScale(data []float64, m, b float64) []float64 {
	if m != 1 {
		floats.Scale(m, data)
	}
	if b != 0 {
		floats.AddConst(b, data)
	}
	return data
}

// UnlinearScale inverts LinearBasicScale: y = (x - b) / m.
func UnlinearScale(data []float64, m, b float64) []float64 {
	if b != 0 {
		floats.AddConst(-b, data)
	}
	if m != 1 {
		for i := range data {
			data[i] /= m
		}
	}
	return data
}

// PassiveScale leaves the data untouched for products that need no
// rescaling or have been pre-scaled upstream.
func PassiveScale(data []float64) []float64 {
	return data
}

// LinearFlexibleScale solves the linear coefficients from the desired
// output range and the input range instead of taking them directly. A
// nil minIn/maxIn is computed from the data, which is the expensive
// branch. Flip reverses polarity: minIn maps to maxOut. A degenerate
// input range (min equals max) is widened by 1.0 and logged rather than
// failed, so an all-constant product still produces finite output.
func LinearFlexibleScale(data []float64, minOut, maxOut float64, minIn, maxIn *float64, flip bool, offset float64) []float64 {
	if offset != 0 {
		minOut += offset
	}

	if len(data) == 0 {
		return data
	}

	mn := orDefault(minIn, 0)
	if minIn == nil {
		mn = floats.Min(data)
	}
	mx := orDefault(maxIn, 0)
	if maxIn == nil {
		mx = floats.Max(data)
	}
	if mn == mx {
		log.Printf("rescale: data does not differ (min/max are the same), can not scale properly")
		mx = mn + 1.0
	}

	var m, b float64
	if flip {
		m = (minOut - maxOut) / (mx - mn)
		b = maxOut - m*mn
	} else {
		m = (maxOut - minOut) / (mx - mn)
		b = minOut - m*mn
	}

	return LinearBasicScale(data, m, b)
}

// SqrtScale applies a square root enhancement. Negative inputs are
// clipped to zero first; the default multipliers implement
// sqrt(x * 100.0) * 25.5 for 8-bit output. Only a zero-anchored range is
// supported. Percentage units widen maxIn by 100. Results are rounded to
// the nearest integer.
func SqrtScale(data []float64, minOut, maxOut float64, innerMult, outerMult *float64, minIn, maxIn float64, units string) ([]float64, error) {
	if minOut != 0 && minIn != 0 {
		return nil, fmt.Errorf("'sqrt' rescaling does not support a 'min_out' or 'min_in' not equal to 0")
	}
	if units == "%" {
		maxIn *= 100.0
	}

	im := orDefault(innerMult, 100.0/maxIn)
	om := orDefault(outerMult, maxOut/math.Sqrt(im*maxIn))

	for i, v := range data {
		if v < 0 {
			data[i] = 0
		}
	}
	if im != 1 {
		floats.Scale(im, data)
	}
	for i := range data {
		data[i] = math.Sqrt(data[i])
	}
	if om != 1 {
		floats.Scale(om, data)
	}
	for i := range data {
		data[i] = math.Round(data[i])
	}

	return data, nil
}

// LookupScale maps data through a named lookup table. Control-point
// tables interpolate piecewise-linearly between their input and output
// domains; dense tables are integer-indexed. Either way the input is
// first scaled into the table's domain and the looked-up values are then
// scaled into the output range.
func LookupScale(data []float64, minOut, maxOut, minIn, maxIn float64, tableName string) ([]float64, error) {
	table, err := lookupTableByName(tableName)
	if err != nil {
		return nil, err
	}

	if table.IsDense() {
		tmpMaxOut := float64(len(table.Dense) - 1)
		data = LinearFlexibleScale(data, 0, tmpMaxOut, &minIn, &maxIn, false, 0)
		clipInPlace(data, 0, tmpMaxOut)
		for i, v := range data {
			// NaN survives clipping; keep it so the application layer
			// remasks the pixel instead of indexing with it
			if math.IsNaN(v) {
				continue
			}
			data[i] = table.Dense[int(v)]
		}
		lutMin, lutMax := floats.Min(table.Dense), floats.Max(table.Dense)
		return LinearFlexibleScale(data, minOut, maxOut, &lutMin, &lutMax, false, 0), nil
	}

	interpInMin := table.InterpIn[0]
	interpInMax := table.InterpIn[len(table.InterpIn)-1]
	data = LinearFlexibleScale(data, interpInMin, interpInMax, &minIn, &maxIn, false, 0)
	clipInPlace(data, interpInMin, interpInMax)

	var pl interp.PiecewiseLinear
	if err := pl.Fit(table.InterpIn, table.InterpOut); err != nil {
		return nil, fmt.Errorf("lookup table '%s' is not interpolatable: %v", tableName, err)
	}
	for i, v := range data {
		if math.IsNaN(v) {
			continue
		}
		data[i] = pl.Predict(v)
	}

	interpOutMin := floats.Min(table.InterpOut)
	interpOutMax := floats.Max(table.InterpOut)
	return LinearFlexibleScale(data, minOut, maxOut, &interpOutMin, &interpOutMax, false, 0), nil
}

// BrightnessTemperatureScale is a piecewise function of two linear
// segments meeting at threshold. Values below threshold map into
// (thresholdOut, maxOut]; values at or above threshold map into
// [minOut, thresholdOut]. Colder scenes end up brighter, which is the
// display convention for brightness temperatures. With units "celsius"
// the in parameters and threshold are converted from Kelvin first.
func BrightnessTemperatureScale(data []float64, threshold, minIn, maxIn, minOut, maxOut float64, thresholdOut *float64, units string) []float64 {
	if units == "celsius" {
		minIn += kelvinToCelsius
		maxIn += kelvinToCelsius
		threshold += kelvinToCelsius
	}

	to := orDefault(thresholdOut, 176.0/255.0*maxOut)
	lowFactor := (to - maxOut) / (minIn - threshold)
	lowOffset := maxOut + lowFactor*minIn
	highFactor := (to - minOut) / (maxIn - threshold)
	highOffset := minOut + highFactor*maxIn

	for i, v := range data {
		if v >= threshold {
			data[i] = highOffset - highFactor*v
		} else {
			data[i] = lowOffset - lowFactor*v
		}
	}
	return data
}

// LinearBrightnessTemperatureScale linearly scales brightness
// temperatures, flipped by default so cold is bright. With units
// "celsius" the configured input range is converted from Kelvin first.
func LinearBrightnessTemperatureScale(data []float64, minOut, maxOut float64, minIn, maxIn *float64, units string, flip bool) []float64 {
	if units == "celsius" {
		if minIn != nil {
			minIn = float64Ptr(*minIn + kelvinToCelsius)
		}
		if maxIn != nil {
			maxIn = float64Ptr(*maxIn + kelvinToCelsius)
		}
	}
	return LinearFlexibleScale(data, minOut, maxOut, minIn, maxIn, flip, 0)
}

// TemperatureDifferenceScale scales linearly into a narrowed clip window
// (minOut+5 to 0.8*(maxOut-minOut)). Values outside the window are set
// one past it rather than dropped, so clipped pixels stay
// distinguishable from in-window extremes.
func TemperatureDifferenceScale(data []float64, minIn, maxIn, minOut, maxOut float64) []float64 {
	clipMin := minOut + 5
	clipMax := 0.8 * (maxOut - minOut)
	data = LinearFlexibleScale(data, clipMin, clipMax, &minIn, &maxIn, false, 0)
	for i, v := range data {
		if v < clipMin {
			data[i] = clipMin - 1
		} else if v > clipMax {
			data[i] = clipMax + 1
		}
	}
	return data
}

// LstScale scales land surface temperature into [minOut+5, maxOut-5].
// Overflow is clamped to the top of the window; underflow becomes the
// fill value. The asymmetry is intentional: too-cold values are treated
// as invalid, too-hot values as saturated.
func LstScale(data []float64, minOut, maxOut, minIn, maxIn, fillOut float64) []float64 {
	newMin := minOut + 5
	newMax := maxOut - 5
	data = LinearFlexibleScale(data, newMin, newMax, &minIn, &maxIn, false, 0)
	for i, v := range data {
		if v > newMax {
			data[i] = newMax
		} else if v < newMin {
			data[i] = fillOut
		}
	}
	return data
}

// CttScale scales cloud top temperature into [minOut+10, maxOut-5],
// flipped by default, then hard-clips to the same window.
func CttScale(data []float64, minOut, maxOut float64, minIn, maxIn *float64, flip bool) []float64 {
	data = LinearFlexibleScale(data, minOut+10, maxOut-5, minIn, maxIn, flip, 0)
	clipInPlace(data, minOut+10, maxOut-5)
	return data
}

// NdviScale clips data to [minIn, maxIn] then scales the two sides of
// threshold independently: below-threshold values into
// [minOut, thresholdOut], the rest into [thresholdOut, maxOut].
// thresholdOut defaults to 49/255 of maxOut, putting the vegetation
// break at about 19.2% of the output range.
func NdviScale(data []float64, minOut, maxOut, minIn, maxIn, threshold float64, thresholdOut *float64) []float64 {
	clipInPlace(data, minIn, maxIn)

	to := orDefault(thresholdOut, 49.0/255.0*maxOut)

	var negIdx, posIdx []int
	var negative, posZero []float64
	for i, v := range data {
		if v < threshold {
			negIdx = append(negIdx, i)
			negative = append(negative, v)
		} else {
			posIdx = append(posIdx, i)
			posZero = append(posZero, v)
		}
	}

	negative = LinearFlexibleScale(negative, minOut, to, &minIn, &threshold, false, 0)
	posZero = LinearFlexibleScale(posZero, to, maxOut, &threshold, &maxIn, false, 0)
	for j, i := range negIdx {
		data[i] = negative[j]
	}
	for j, i := range posIdx {
		data[i] = posZero[j]
	}
	return data
}

// DebugScale pushes all valid data into the top percent fraction of the
// output range, which makes valid coverage obvious at a glance.
func DebugScale(data []float64, minOut, maxOut float64, minIn, maxIn *float64, percent float64) []float64 {
	newRange := (maxOut - minOut) * percent
	return LinearFlexibleScale(data, maxOut-newRange, maxOut, minIn, maxIn, false, 0)
}

// ExpressionScale evaluates a configured formula per valid pixel. The
// formula sees the pixel value as 'x' plus the resolved input and output
// ranges.
func ExpressionScale(data []float64, expr *utils.ParamExpression, minOut, maxOut float64, minIn, maxIn *float64) ([]float64, error) {
	if expr == nil {
		return nil, fmt.Errorf("'expression' rescaling requires an 'expr' parameter")
	}

	parameters := map[string]interface{}{
		"min_out": minOut,
		"max_out": maxOut,
	}
	if minIn != nil {
		parameters["min_in"] = *minIn
	}
	if maxIn != nil {
		parameters["max_in"] = *maxIn
	}

	for i, v := range data {
		parameters["x"] = v
		result, err := expr.Evaluate(parameters)
		if err != nil {
			return nil, err
		}
		data[i] = result
	}
	return data, nil
}

func clipInPlace(data []float64, lo, hi float64) {
	for i, v := range data {
		if v < lo {
			data[i] = lo
		} else if v > hi {
			data[i] = hi
		}
	}
}
