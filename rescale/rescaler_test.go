package rescale

import (
	"math"
	"testing"

	"github.com/wroberts4/polar2grid/utils"
)

func TestApplyMaskedFill(t *testing.T) {
	opts := &ScaleOptions{
		Method:  MethodLinear,
		MinOut:  0,
		MaxOut:  100,
		MinIn:   float64Ptr(0),
		MaxIn:   float64Ptr(10),
		FillOut: -1,
	}

	data := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	mask := []bool{true, true, false, true, true, false, true, false, true, true}

	out, err := Apply(data, mask, opts)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	for i, ok := range mask {
		if !ok {
			if out[i] != -1 {
				t.Errorf("invalid pixel %d: expecting fill -1, actual %v", i, out[i])
			}
			continue
		}
		expected := float64(i) * 10
		if math.Abs(out[i]-expected) > tol {
			t.Errorf("pixel %d: expecting %v, actual %v", i, expected, out[i])
		}
	}
}

func TestApplyClipReservesZero(t *testing.T) {
	// with a zero floor and no increment, the clip floor moves to 1 so
	// zero stays exclusively the fill value
	opts := &ScaleOptions{
		Method: MethodRaw,
		MinOut: 0,
		MaxOut: 255,
		Clip:   true,
	}

	data := []float64{0, 0.5, 10, 300}
	mask := []bool{true, true, true, true}

	out, err := Apply(data, mask, opts)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	assertNear(t, "clip zero floor", out, []float64{1, 1, 10, 255}, tol)
}

func TestApplyIncByOne(t *testing.T) {
	opts := &ScaleOptions{
		Method:   MethodLinear,
		MinOut:   0,
		MaxOut:   254,
		MinIn:    float64Ptr(0),
		MaxIn:    float64Ptr(10),
		FillOut:  0,
		Clip:     true,
		IncByOne: true,
	}

	data := []float64{0, 5, 10, 3}
	mask := []bool{true, true, true, false}

	out, err := Apply(data, mask, opts)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	assertNear(t, "inc_by_one", out, []float64{1, 128, 255, 0}, tol)

	for i, ok := range mask {
		if ok && out[i] == 0 {
			t.Errorf("valid pixel %d collided with the fill value", i)
		}
	}
}

func TestApplyMaskClip(t *testing.T) {
	opts := &ScaleOptions{
		Method:   MethodLinearBasic,
		M:        1,
		B:        0,
		MinOut:   0,
		MaxOut:   255,
		FillOut:  -1,
		Clip:     true,
		MaskClip: "max",
	}

	data := []float64{10, 300}
	mask := []bool{true, true}

	out, err := Apply(data, mask, opts)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if out[0] != 10 {
		t.Errorf("in-range pixel: expecting 10, actual %v", out[0])
	}
	if out[1] != -1 {
		t.Errorf("over-range pixel: expecting fill -1, actual %v", out[1])
	}
	if mask[1] {
		t.Errorf("over-range pixel was not masked out")
	}
}

func TestApplyRecomputesMaskOnNaN(t *testing.T) {
	opts := &ScaleOptions{
		Method:     MethodCustom,
		CustomName: "nan_negatives",
		Func: func(data []float64, _ *ScaleOptions) ([]float64, error) {
			for i, v := range data {
				if v < 0 {
					data[i] = math.NaN()
				}
			}
			return data, nil
		},
		FillOut: -5,
	}

	data := []float64{-1, 2}
	mask := []bool{true, true}

	out, err := Apply(data, mask, opts)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if out[0] != -5 || mask[0] {
		t.Errorf("NaN pixel: expecting fill -5 and cleared mask, actual %v / %v", out[0], mask[0])
	}
	if out[1] != 2 || !mask[1] {
		t.Errorf("valid pixel: expecting 2 and set mask, actual %v / %v", out[1], mask[1])
	}
}

func TestApplyMaskLengthMismatch(t *testing.T) {
	opts := &ScaleOptions{Method: MethodRaw}
	if _, err := Apply([]float64{1, 2}, []bool{true}, opts); err == nil {
		t.Errorf("apply accepted a mask shorter than the data")
	}
}

func TestRescaleProductRGB(t *testing.T) {
	opts := &ScaleOptions{
		Method:      MethodLinear,
		MinOut:      0,
		MaxOut:      100,
		MinIn:       float64Ptr(0),
		MaxIn:       float64Ptr(10),
		FillOut:     -1,
		SeparateRGB: true,
	}

	data := []float64{0, 10, 2, 8, 5, 5}
	mask := []bool{true, true, true, true, true, true}

	// the reference: each band rescaled on its own
	expected := make([]float64, len(data))
	copy(expected, data)
	for band := 0; band < 3; band++ {
		bandOpts := *opts
		if _, err := Apply(expected[band*2:(band+1)*2], []bool{true, true}, &bandOpts); err != nil {
			t.Fatalf("reference apply failed: %v", err)
		}
	}

	product := &fakeProduct{
		meta:  ProductMeta{ProductName: "true_color"},
		data:  data,
		mask:  mask,
		bands: 3,
	}
	r := NewRescaler(NewRuleSet(nil))
	out, err := r.RescaleProduct(product, "Byte", false, -1, opts)
	if err != nil {
		t.Fatalf("rescale failed: %v", err)
	}
	assertNear(t, "rgb fan-out", out, expected, tol)
}

func TestRescaleProductMaskLengthMismatch(t *testing.T) {
	opts := &ScaleOptions{
		Method:      MethodLinear,
		MinOut:      0,
		MaxOut:      255,
		MinIn:       float64Ptr(0),
		MaxIn:       float64Ptr(10),
		SeparateRGB: true,
	}
	// mask covering one band only, not the full 3-band buffer
	product := &fakeProduct{
		meta:  ProductMeta{ProductName: "true_color"},
		data:  make([]float64, 6),
		mask:  make([]bool, 2),
		bands: 3,
	}
	r := NewRescaler(NewRuleSet(nil))
	if _, err := r.RescaleProduct(product, "Byte", false, 0, opts); err == nil {
		t.Errorf("rescale accepted a mask shorter than the buffer")
	}
}

func TestRescaleProductColormappedMultiband(t *testing.T) {
	opts := &ScaleOptions{
		Method:      MethodPalettize,
		SeparateRGB: true,
	}
	product := &fakeProduct{
		meta:  ProductMeta{ProductName: "true_color"},
		data:  make([]float64, 6),
		mask:  make([]bool, 6),
		bands: 3,
	}
	r := NewRescaler(NewRuleSet(nil))
	if _, err := r.RescaleProduct(product, "Byte", false, 0, opts); err == nil {
		t.Errorf("rescale accepted a multi-band buffer for a colormapped method")
	}
}

func TestRescaleProductResolvesConfig(t *testing.T) {
	rules := NewRuleSet([]Rule{
		{
			ProductName: "sst",
			Method:      "linear",
			MinIn:       utils.Float(0),
			MaxIn:       utils.Float(10),
		},
	})
	r := NewRescaler(rules)

	product := &fakeProduct{
		meta: ProductMeta{ProductName: "sst"},
		data: []float64{0, 5, 10},
		mask: []bool{true, true, true},
	}
	out, err := r.RescaleProduct(product, "Byte", false, -1, nil)
	if err != nil {
		t.Fatalf("rescale failed: %v", err)
	}
	// clipping reserves zero, hence the floor of 1
	assertNear(t, "resolved linear", out, []float64{1, 127.5, 255}, tol)
}

type fakeProduct struct {
	meta  ProductMeta
	data  []float64
	mask  []bool
	bands int
}

func (p *fakeProduct) GetMeta() ProductMeta { return p.meta }
func (p *fakeProduct) GetData() []float64   { return p.data }
func (p *fakeProduct) GetMask() []bool      { return p.mask }
func (p *fakeProduct) GetBands() int        { return p.bands }
