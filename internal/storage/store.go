package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	bodiesFile   = "bodies.csv"
)

// bodyColumns are written per body, in this order, after the time column.
var bodyColumns = [...]string{"x", "y", "angle", "vx", "vy", "omega"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Scene       string             `json:"scene"`
	Timestamp   time.Time          `json:"timestamp"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	Gravity     [2]float64         `json:"gravity"`
	Friction    float64            `json:"friction"`
	Broadphase  string             `json:"broadphase"`
	Iterations  int                `json:"iterations"`
	BodyIDs     []int              `json:"body_ids"`
	Steps       int                `json:"steps"`
	WallTimeMs  float64            `json:"wall_time_ms"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Save writes a run directory named after the scene and the current time
// and returns its id.
func (s *Store) Save(scene string, cfg *config.Config, result *sim.Result) (string, error) {
	runID, runDir, err := s.newRunDir(scene)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Scene:       scene,
		Timestamp:   time.Now(),
		Dt:          cfg.Dt,
		Duration:    cfg.Duration,
		Gravity:     cfg.Gravity,
		Friction:    cfg.Friction,
		Broadphase:  cfg.Broadphase,
		Iterations:  cfg.Solver.Iterations,
		Steps:       result.StepsTaken,
		WallTimeMs:  float64(result.WallTime.Microseconds()) / 1000,
		EnergyDrift: result.EnergyDrift,
		Metrics:     result.Metrics,
	}
	if len(result.Frames) > 0 {
		for _, b := range result.Frames[0] {
			meta.BodyIDs = append(meta.BodyIDs, b.ID)
		}
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeFrames(filepath.Join(runDir, bodiesFile), result); err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Store) newRunDir(scene string) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}
	base := fmt.Sprintf("%s_%d", scene, time.Now().Unix())
	for n := 0; ; n++ {
		runID := base
		if n > 0 {
			runID = fmt.Sprintf("%s_%d", base, n)
		}
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
	}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeFrames(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if len(result.Frames) == 0 {
		w.Flush()
		return w.Error()
	}

	header := []string{"time"}
	for i := range result.Frames[0] {
		for _, col := range bodyColumns {
			header = append(header, fmt.Sprintf("b%d_%s", i, col))
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, frame := range result.Frames {
		row := make([]string, 0, len(header))
		row = append(row, strconv.FormatFloat(result.Times[i], 'f', 6, 64))
		for _, b := range frame {
			for _, v := range [...]float64{b.X, b.Y, b.Angle, b.VX, b.VY, b.Omega} {
				row = append(row, strconv.FormatFloat(v, 'g', 10, 64))
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns the stored runs, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s metadata: %w", runID, err)
	}
	return &meta, nil
}

// LoadFrames reads the sampled body states of a run. Body ids come from
// the run metadata.
func (s *Store) LoadFrames(runID string) ([]sim.Frame, []float64, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, bodiesFile))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return []sim.Frame{}, []float64{}, nil
	}

	n := len(bodyColumns)
	times := make([]float64, 0, len(records)-1)
	frames := make([]sim.Frame, 0, len(records)-1)

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) == 0 || (len(record)-1)%n != 0 {
			return nil, nil, fmt.Errorf("storage: %s row %d has %d columns", runID, i, len(record))
		}

		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("storage: %s row %d: %w", runID, i, err)
			}
			vals[j] = v
		}

		times = append(times, vals[0])
		frame := make(sim.Frame, (len(vals)-1)/n)
		for b := range frame {
			c := vals[1+b*n:]
			frame[b] = sim.BodyState{X: c[0], Y: c[1], Angle: c[2], VX: c[3], VY: c[4], Omega: c[5]}
			if b < len(meta.BodyIDs) {
				frame[b].ID = meta.BodyIDs[b]
			}
		}
		frames = append(frames, frame)
	}

	return frames, times, nil
}
