package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/sim"
)

type ExportData struct {
	Scene       string             `json:"scene"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	Gravity     [2]float64         `json:"gravity"`
	Friction    float64            `json:"friction"`
	Steps       int                `json:"steps"`
	EnergyDrift float64            `json:"energy_drift"`
	Times       []float64          `json:"times"`
	Frames      []sim.Frame        `json:"frames"`
	Metrics     map[string]float64 `json:"metrics"`
}

func NewExportData(scene string, cfg *config.Config, result *sim.Result) ExportData {
	return ExportData{
		Scene:       scene,
		Dt:          cfg.Dt,
		Duration:    cfg.Duration,
		Gravity:     cfg.Gravity,
		Friction:    cfg.Friction,
		Steps:       result.StepsTaken,
		EnergyDrift: result.EnergyDrift,
		Times:       result.Times,
		Frames:      result.Frames,
		Metrics:     result.Metrics,
	}
}

func ExportJSON(path, scene string, cfg *config.Config, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, NewExportData(scene, cfg, result))
}

func WriteJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Export writes a stored run in the JSON export format.
func (s *Store) Export(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	frames, times, err := s.LoadFrames(runID)
	if err != nil {
		return err
	}
	return WriteJSON(w, ExportData{
		Scene:       meta.Scene,
		Dt:          meta.Dt,
		Duration:    meta.Duration,
		Gravity:     meta.Gravity,
		Friction:    meta.Friction,
		Steps:       meta.Steps,
		EnergyDrift: meta.EnergyDrift,
		Times:       times,
		Frames:      frames,
		Metrics:     meta.Metrics,
	})
}
