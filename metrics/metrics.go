// Package metrics records per-product rescaling telemetry. Each
// rescaled product produces one RescaleInfo line of JSON so a batch run
// can be audited afterwards: which rule fired, how long scaling took and
// what output range it produced.
package metrics

import (
	"bytes"
	"encoding/json"
	"time"
)

type RescaleInfo struct {
	ReqTime     string        `json:"req_time"`
	ReqDuration time.Duration `json:"req_duration"`
	ProductName string        `json:"product_name"`
	DataKind    string        `json:"data_kind"`
	Satellite   string        `json:"satellite"`
	Instrument  string        `json:"instrument"`
	Method      string        `json:"method"`
	DataType    string        `json:"data_type"`
	IncByOne    bool          `json:"inc_by_one"`
	NumPixels   int           `json:"num_pixels"`
	NumValid    int           `json:"num_valid"`
	OutMin      *float64      `json:"out_min,omitempty"`
	OutMax      *float64      `json:"out_max,omitempty"`
	Error       string        `json:"error,omitempty"`
}

type RescaleCollector struct {
	Info      *RescaleInfo
	logger    Logger
	startTime time.Time
}

func NewRescaleCollector(logger Logger) *RescaleCollector {
	return &RescaleCollector{
		Info:      &RescaleInfo{ReqTime: time.Now().Format(time.RFC3339)},
		logger:    logger,
		startTime: time.Now(),
	}
}

// Log finalises the duration and hands the record to the logger.
func (m *RescaleCollector) Log() {
	m.Info.ReqDuration = time.Since(m.startTime)
	if m.logger != nil {
		m.logger.Log(m.Info)
	}
}

func (i *RescaleInfo) ToJSON() (string, error) {
	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	err := enc.Encode(i)
	if err == nil {
		return buf.String(), nil
	}
	return "", err
}
