package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/orrery/internal/dynamo"
)

type ExportData struct {
	Integrator string             `json:"integrator"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Adaptive   bool               `json:"adaptive"`
	Bodies     []string           `json:"bodies"`
	Steps      int                `json:"steps"`
	Times      []float64          `json:"times"`
	States     [][]float64        `json:"states"`
	Metrics    map[string]float64 `json:"metrics"`
}

func NewExportData(info RunInfo, result *dynamo.Result) ExportData {
	data := ExportData{
		Integrator: info.Integrator,
		Dt:         info.Dt,
		Duration:   info.Duration,
		Adaptive:   info.Adaptive,
		Bodies:     info.Bodies,
		Steps:      len(result.Times),
		Times:      result.Times,
		States:     make([][]float64, len(result.States)),
		Metrics:    result.Metrics,
	}
	for i, s := range result.States {
		data.States[i] = s
	}
	return data
}

// WriteJSON encodes a run as indented JSON.
func WriteJSON(w io.Writer, info RunInfo, result *dynamo.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewExportData(info, result))
}

// ExportJSON writes a run to path, or to stdout when path is "-".
func ExportJSON(path string, info RunInfo, result *dynamo.Result) error {
	if path == "-" {
		return WriteJSON(os.Stdout, info, result)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteJSON(file, info, result); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func writeJSONFile(path string, v any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
