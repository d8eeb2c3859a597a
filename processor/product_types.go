// Package processor runs the rescaling engine as a channel pipeline
// stage. Products are independent of each other, so the stage fans them
// out over a bounded number of goroutines; the rule set inside the
// shared Rescaler is immutable after loading and safe for that.
package processor

import (
	"github.com/wroberts4/polar2grid/rescale"
)

// Product is a remapped, gridded product ready for rescaling. Data is
// band-major ([band][row][col] flattened); Mask parallels Data with true
// marking usable pixels. FillValue is written into invalid output
// pixels.
type Product struct {
	Meta          rescale.ProductMeta
	Data          []float64
	Mask          []bool
	Bands         int
	Height, Width int
	FillValue     float64
}

func (p *Product) GetMeta() rescale.ProductMeta {
	return p.Meta
}

func (p *Product) GetData() []float64 {
	return p.Data
}

func (p *Product) GetMask() []bool {
	return p.Mask
}

func (p *Product) GetBands() int {
	if p.Bands <= 0 {
		return 1
	}
	return p.Bands
}
