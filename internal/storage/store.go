package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/orrery/internal/dynamo"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunInfo describes how a run was produced.
type RunInfo struct {
	Integrator string
	Dt         float64
	Duration   float64
	Adaptive   bool
	Bodies     []string
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Integrator string             `json:"integrator"`
	Adaptive   bool               `json:"adaptive"`
	Bodies     []string           `json:"bodies"`
	Steps      int                `json:"steps"`
	Rejected   int                `json:"rejected,omitempty"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes metadata.json and states.csv into a new run directory and
// returns the run id.
func (s *Store) Save(info RunInfo, result *dynamo.Result) (string, error) {
	ts := s.now()
	runID := fmt.Sprintf("orrery_%s", ts.Format("20060102T150405.000000"))
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Timestamp:  ts,
		Dt:         info.Dt,
		Duration:   info.Duration,
		Integrator: info.Integrator,
		Adaptive:   info.Adaptive,
		Bodies:     info.Bodies,
		Steps:      result.StepsTaken,
		Rejected:   result.Rejected,
		Metrics:    result.Metrics,
	}

	if err := writeJSONFile(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "states.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := writeStates(csvFile, info.Bodies, result); err != nil {
		return "", fmt.Errorf("storage: write states: %w", err)
	}
	return runID, csvFile.Close()
}

// Header returns the states.csv column names for a state of dim entries.
// With one name per body the columns are angle_<body> then rate_<body>.
func Header(bodies []string, dim int) []string {
	header := []string{"time"}
	if 2*len(bodies) == dim {
		for _, b := range bodies {
			header = append(header, "angle_"+b)
		}
		for _, b := range bodies {
			header = append(header, "rate_"+b)
		}
		return header
	}
	for i := 0; i < dim; i++ {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	return header
}

func writeStates(out io.Writer, bodies []string, result *dynamo.Result) error {
	w := csv.NewWriter(out)
	if len(result.States) == 0 {
		w.Flush()
		return w.Error()
	}

	if err := w.Write(Header(bodies, len(result.States[0]))); err != nil {
		return err
	}
	for i, x := range result.States {
		row := make([]string, 0, len(x)+1)
		row = append(row, strconv.FormatFloat(result.Times[i], 'g', -1, 64))
		for _, val := range x {
			row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s metadata: %w", runID, err)
	}
	return &meta, nil
}

// LoadStates reads states.csv back. Rows that fail to parse are skipped.
func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
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
		return [][]float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([][]float64, 0, len(records)-1)

rows:
	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		state := make([]float64, 0, len(record)-1)
		for _, field := range record[1:] {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				continue rows
			}
			state = append(state, val)
		}
		times = append(times, t)
		states = append(states, state)
	}

	return states, times, nil
}

// LoadResult rebuilds a stored run as a result, for re-export.
func (s *Store) LoadResult(runID string) (RunInfo, *dynamo.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return RunInfo{}, nil, err
	}
	states, times, err := s.LoadStates(runID)
	if err != nil {
		return RunInfo{}, nil, err
	}

	result := &dynamo.Result{
		States:     make([]dynamo.State, len(states)),
		Times:      times,
		Metrics:    meta.Metrics,
		StepsTaken: meta.Steps,
		Rejected:   meta.Rejected,
	}
	for i, st := range states {
		result.States[i] = st
	}
	info := RunInfo{
		Integrator: meta.Integrator,
		Dt:         meta.Dt,
		Duration:   meta.Duration,
		Adaptive:   meta.Adaptive,
		Bodies:     meta.Bodies,
	}
	return info, result, nil
}
