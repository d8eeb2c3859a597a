package metrics

import (
	"encoding/json"
	"strings"
	"testing"
)

type captureLogger struct {
	infos []*RescaleInfo
}

func (l *captureLogger) Log(info *RescaleInfo) {
	l.infos = append(l.infos, info)
}

func TestCollectorLog(t *testing.T) {
	logger := &captureLogger{}
	collector := NewRescaleCollector(logger)
	collector.Info.ProductName = "sst"
	collector.Info.Method = "linear"
	collector.Log()

	if len(logger.infos) != 1 {
		t.Fatalf("expecting 1 record, actual %d", len(logger.infos))
	}
	if logger.infos[0].ProductName != "sst" {
		t.Errorf("record lost the product name: %+v", logger.infos[0])
	}
	if logger.infos[0].ReqDuration < 0 {
		t.Errorf("negative duration: %v", logger.infos[0].ReqDuration)
	}
}

func TestCollectorNilLogger(t *testing.T) {
	collector := NewRescaleCollector(nil)
	collector.Log()
}

func TestToJSON(t *testing.T) {
	outMin, outMax := 1.0, 255.0
	info := &RescaleInfo{
		ProductName: "sst",
		Method:      "linear",
		DataType:    "Byte",
		NumPixels:   4,
		NumValid:    3,
		OutMin:      &outMin,
		OutMax:      &outMax,
	}

	line, err := info.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	if !strings.HasSuffix(line, "\n") {
		t.Errorf("record is not newline terminated")
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(line), &decoded); err != nil {
		t.Fatalf("record is not valid JSON: %v", err)
	}
	if decoded["product_name"] != "sst" {
		t.Errorf("unexpected product_name: %v", decoded["product_name"])
	}
	if decoded["out_max"] != 255.0 {
		t.Errorf("unexpected out_max: %v", decoded["out_max"])
	}

	// omitempty keeps success records free of error noise
	if strings.Contains(line, "\"error\"") {
		t.Errorf("empty error was serialised: %s", line)
	}
}
