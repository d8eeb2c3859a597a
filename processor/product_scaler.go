package processor

import (
	"fmt"
	"log"

	"github.com/wroberts4/polar2grid/metrics"
	"github.com/wroberts4/polar2grid/rescale"
)

const defaultConcLevel = 4

// ProductRescaler rescales every product flowing through In to the
// configured output data type. Failed products are reported on Error
// and dropped; successful ones continue on Out with their buffer
// mutated in place.
type ProductRescaler struct {
	In    chan *Product
	Out   chan *Product
	Error chan error

	DataType string
	IncByOne bool

	Rescaler  *rescale.Rescaler
	Collector metrics.Logger
	CLevel    int
}

func NewProductRescaler(rescaler *rescale.Rescaler, dataType string, incByOne bool, errChan chan error) *ProductRescaler {
	return &ProductRescaler{
		In:       make(chan *Product, 100),
		Out:      make(chan *Product, 100),
		Error:    errChan,
		DataType: dataType,
		IncByOne: incByOne,
		Rescaler: rescaler,
		CLevel:   defaultConcLevel,
	}
}

func (pr *ProductRescaler) Run() {
	defer close(pr.Out)

	cLimiter := newConcLimiter(pr.CLevel)
	for product := range pr.In {
		cLimiter.Acquire()
		go func(p *Product) {
			defer cLimiter.Release()
			pr.rescaleOne(p)
		}(product)
	}
	cLimiter.Wait()
}

func (pr *ProductRescaler) rescaleOne(p *Product) {
	collector := metrics.NewRescaleCollector(pr.Collector)
	info := collector.Info
	info.ProductName = p.Meta.ProductName
	info.DataKind = p.Meta.DataKind
	info.Satellite = p.Meta.Satellite
	info.Instrument = p.Meta.Instrument
	info.DataType = pr.DataType
	info.IncByOne = pr.IncByOne
	info.NumPixels = len(p.Data)

	opts, err := pr.Rescaler.GetRescaleOptions(p.Meta, pr.DataType, pr.IncByOne, p.FillValue)
	if err != nil {
		info.Error = err.Error()
		collector.Log()
		pr.reportError(p, err)
		return
	}
	info.Method = string(opts.Method)

	out, err := pr.Rescaler.RescaleProduct(p, pr.DataType, pr.IncByOne, p.FillValue, opts)
	if err != nil {
		info.Error = err.Error()
		collector.Log()
		pr.reportError(p, err)
		return
	}

	// Colormapped methods replace the buffer and may change the band
	// count (index+alpha, or color bands).
	p.Data = out
	if p.Height > 0 && p.Width > 0 {
		p.Bands = len(out) / (p.Height * p.Width)
	}

	pr.finishInfo(collector, p)
	pr.Out <- p
}

// reportError hands a failure to the caller's error channel without
// ever blocking the stage: a full or nil channel must not wedge the
// fan-out while Run is still draining In.
func (pr *ProductRescaler) reportError(p *Product, err error) {
	select {
	case pr.Error <- err:
	default:
		log.Printf("processor: error channel full, dropping error for %s: %v", p.Meta.ProductName, err)
	}
}

func (pr *ProductRescaler) finishInfo(collector *metrics.RescaleCollector, p *Product) {
	if pr.Collector == nil {
		collector.Log()
		return
	}

	numValid := 0
	var outMin, outMax float64
	for i, ok := range p.Mask {
		if !ok || i >= len(p.Data) {
			continue
		}
		v := p.Data[i]
		if numValid == 0 {
			outMin, outMax = v, v
		} else {
			if v < outMin {
				outMin = v
			}
			if v > outMax {
				outMax = v
			}
		}
		numValid++
	}

	collector.Info.NumValid = numValid
	if numValid > 0 {
		collector.Info.OutMin = &outMin
		collector.Info.OutMax = &outMax
	}
	collector.Log()
}

// Drain consumes the stage's output when a caller only cares about the
// side effects, e.g. the CLI writing each product as it completes.
func Drain(out chan *Product, handle func(*Product) error, errChan chan error) {
	for p := range out {
		if err := handle(p); err != nil {
			errChan <- fmt.Errorf("product %s: %v", p.Meta.ProductName, err)
		}
	}
}
