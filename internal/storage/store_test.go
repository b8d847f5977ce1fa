package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/orrery/internal/dynamo"
)

var bodies = []string{"Earth", "Luna"}

func sampleResult() *dynamo.Result {
	return &dynamo.Result{
		States: []dynamo.State{
			{0.0, 1.5707963267948966, 1.2566370614359172, 6.283185307179586},
			{0.012566370614359172, 1.6336281798666925, 1.2566370614359172, 6.283185307179586},
		},
		Times:      []float64{0.0, 0.01},
		StepsTaken: 1,
		Metrics: map[string]float64{
			"phase_error": 0,
		},
	}
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	info := RunInfo{Integrator: "rk4", Dt: 0.01, Duration: 0.01, Bodies: bodies}
	runID, err := st.Save(info, sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "orrery_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Integrator != "rk4" || meta.Steps != 1 {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if len(meta.Bodies) != 2 || meta.Bodies[1] != "Luna" {
		t.Errorf("bodies not stored: %v", meta.Bodies)
	}
	if _, ok := meta.Metrics["phase_error"]; !ok {
		t.Error("metric not stored")
	}

	states, times, err := st.LoadStates(runID)
	if err != nil {
		t.Fatalf("load states failed: %v", err)
	}
	if len(states) != 2 || len(times) != 2 {
		t.Fatalf("expected 2 rows, got %d states and %d times", len(states), len(times))
	}

	// Values are written at full precision.
	want := sampleResult().States[1]
	for i, v := range states[1] {
		if v != want[i] {
			t.Errorf("state[1][%d] = %v, want %v", i, v, want[i])
		}
	}
}

func TestStoreHeader(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(RunInfo{Bodies: bodies}, sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(st.baseDir, runID, "states.csv"))
	if err != nil {
		t.Fatal(err)
	}
	first := strings.SplitN(string(data), "\n", 2)[0]
	if first != "time,angle_Earth,angle_Luna,rate_Earth,rate_Luna" {
		t.Errorf("unexpected header %q", first)
	}
}

func TestHeader_Unlabelled(t *testing.T) {
	got := Header(nil, 3)
	want := []string{"time", "x0", "x1", "x2"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Header = %v, want %v", got, want)
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	st.now = fixedClock(base.Add(time.Minute))
	late, err := st.Save(RunInfo{Bodies: bodies}, sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	st.now = fixedClock(base)
	early, err := st.Save(RunInfo{Bodies: bodies}, sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != early || runs[1].ID != late {
		t.Errorf("runs not ordered by time: %s, %s", runs[0].ID, runs[1].ID)
	}
}

func TestStoreList_MissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "nope"))
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
}

func TestStoreLoad_NotFound(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
	if _, _, err := st.LoadStates("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	info := RunInfo{Integrator: "rk45", Dt: 0.01, Duration: 0.01, Adaptive: true, Bodies: bodies}
	if err := WriteJSON(&buf, info, sampleResult()); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Integrator != "rk45" || !got.Adaptive || got.Steps != 2 || len(got.States) != 2 {
		t.Errorf("unexpected export: %+v", got)
	}
}

func TestExportJSON_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	if err := ExportJSON(path, RunInfo{Bodies: bodies}, sampleResult()); err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("export file not created: %v", err)
	}
}

func TestStoreLoadResult(t *testing.T) {
	st := New(t.TempDir())
	info := RunInfo{Integrator: "rk45", Dt: 0.01, Duration: 0.01, Adaptive: true, Bodies: bodies}
	runID, err := st.Save(info, sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	gotInfo, res, err := st.LoadResult(runID)
	if err != nil {
		t.Fatalf("load result failed: %v", err)
	}
	if gotInfo.Integrator != "rk45" || !gotInfo.Adaptive || len(gotInfo.Bodies) != 2 {
		t.Errorf("unexpected run info: %+v", gotInfo)
	}
	if res.StepsTaken != 1 || len(res.States) != 2 || res.Final()[1] != sampleResult().States[1][1] {
		t.Errorf("unexpected result: %+v", res)
	}

	if _, _, err := st.LoadResult("orrery_missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}
