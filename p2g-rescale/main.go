package main

import (
	"encoding/binary"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strings"

	"github.com/wroberts4/polar2grid/metrics"
	"github.com/wroberts4/polar2grid/processor"
	"github.com/wroberts4/polar2grid/rescale"
)

// p2g-rescale is a debugging aid for rescale configurations: it resolves
// the rule that would fire for a product described on the command line
// and optionally rescales a flat float32 buffer with it. It is not the
// production rescaling path.

func optionsSummary(opts *rescale.ScaleOptions) map[string]interface{} {
	summary := map[string]interface{}{
		"method":       string(opts.Method),
		"min_out":      opts.MinOut,
		"max_out":      opts.MaxOut,
		"fill_out":     opts.FillOut,
		"units":        opts.Units,
		"flip":         opts.Flip,
		"clip":         opts.Clip,
		"inc_by_one":   opts.IncByOne,
		"separate_rgb": opts.SeparateRGB,
	}
	if opts.Method == rescale.MethodCustom {
		summary["method"] = opts.CustomName
	}
	if opts.MinIn != nil {
		summary["min_in"] = *opts.MinIn
	}
	if opts.MaxIn != nil {
		summary["max_in"] = *opts.MaxIn
	}
	if opts.ThresholdOut != nil {
		summary["threshold_out"] = *opts.ThresholdOut
	}
	if opts.MaskClip != "" {
		summary["mask_clip"] = opts.MaskClip
	}
	if opts.TableName != "" {
		summary["table_name"] = opts.TableName
	}
	if opts.Colormap != nil {
		summary["colormap_len"] = opts.Colormap.Len()
	}
	return summary
}

func readFloat32File(filename string, fillIn float64) ([]float64, []bool, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	if stat.Size()%4 != 0 {
		return nil, nil, fmt.Errorf("input file size %d is not a multiple of 4 bytes", stat.Size())
	}

	raw := make([]float32, stat.Size()/4)
	if err := binary.Read(f, binary.LittleEndian, raw); err != nil {
		return nil, nil, err
	}

	data := make([]float64, len(raw))
	mask := make([]bool, len(raw))
	for i, v := range raw {
		data[i] = float64(v)
		if math.IsNaN(fillIn) {
			mask[i] = !math.IsNaN(data[i])
		} else {
			mask[i] = data[i] != fillIn
		}
	}
	return data, mask, nil
}

func writeFloat32File(filename string, data []float64) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	raw := make([]float32, len(data))
	for i, v := range data {
		raw[i] = float32(v)
	}
	return binary.Write(f, binary.LittleEndian, raw)
}

func main() {
	configs := flag.String("config", "", "comma-separated rescale configuration files, later files override earlier ones")
	productName := flag.String("product", "", "product name to resolve")
	dataKind := flag.String("data_kind", "", "product data kind")
	satellite := flag.String("satellite", "", "satellite name")
	instrument := flag.String("instrument", "", "instrument name")
	gridName := flag.String("grid", "", "grid name")
	reader := flag.String("reader", "", "reader name")
	units := flag.String("units", "", "data units")
	dataType := flag.String("dtype", "Byte", "output raster type (Byte, UInt16, ...)")
	incByOne := flag.Bool("inc_by_one", false, "reserve output zero as the fill value by incrementing valid data")
	fillOut := flag.Float64("fill", 0, "output fill value for invalid pixels")
	fillIn := flag.Float64("fill_in", math.NaN(), "input fill value marking invalid pixels")
	input := flag.String("input", "", "optional flat little-endian float32 file to rescale")
	bands := flag.Int("bands", 1, "number of bands in the input file")
	output := flag.String("output", "", "output file for the rescaled float32 buffer")
	verbose := flag.Bool("verbose", false, "log per-product rescale metrics to stdout")
	logDir := flag.String("log_dir", "", "write per-product rescale metrics to rotating files in this directory instead of stdout")
	flag.Parse()

	if *configs == "" {
		log.Fatalf("at least one -config file is required")
	}

	rescaler, err := rescale.LoadRescaler(strings.Split(*configs, ",")...)
	if err != nil {
		log.Fatalf("%v", err)
	}

	meta := rescale.ProductMeta{
		ProductName: *productName,
		DataKind:    *dataKind,
		Satellite:   *satellite,
		Instrument:  *instrument,
		GridName:    *gridName,
		Reader:      *reader,
		Units:       *units,
	}

	opts, err := rescaler.GetRescaleOptions(meta, *dataType, *incByOne, *fillOut)
	if err != nil {
		log.Fatalf("%v", err)
	}

	summary, err := json.MarshalIndent(optionsSummary(opts), "", "  ")
	if err != nil {
		log.Fatalf("%v", err)
	}
	fmt.Printf("%s\n", summary)

	if *input == "" {
		return
	}
	if *output == "" {
		log.Fatalf("-output is required when -input is given")
	}

	data, mask, err := readFloat32File(*input, *fillIn)
	if err != nil {
		log.Fatalf("reading '%s': %v", *input, err)
	}

	errChan := make(chan error, 10)
	stage := processor.NewProductRescaler(rescaler, *dataType, *incByOne, errChan)
	if *logDir != "" {
		stage.Collector = metrics.NewFileLogger(*logDir, 0, 0, *verbose)
	} else if *verbose {
		stage.Collector = metrics.NewStdoutLogger()
	}

	go stage.Run()
	stage.In <- &processor.Product{
		Meta:      meta,
		Data:      data,
		Mask:      mask,
		Bands:     *bands,
		FillValue: *fillOut,
	}
	close(stage.In)

	for p := range stage.Out {
		if err := writeFloat32File(*output, p.Data); err != nil {
			log.Fatalf("writing '%s': %v", *output, err)
		}
		log.Printf("rescaled %d values to '%s'", len(p.Data), *output)
	}

	select {
	case err := <-errChan:
		log.Fatalf("%v", err)
	default:
	}
}
