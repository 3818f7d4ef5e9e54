package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/masersim/internal/config"
	"github.com/san-kum/masersim/internal/linalg"
	"github.com/san-kum/masersim/internal/sample"
)

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
	ID              string               `json:"id"`
	Timestamp       time.Time            `json:"timestamp"`
	Integrator      string               `json:"integrator"`
	Adaptive        bool                 `json:"adaptive"`
	Dt              float64              `json:"dt"`
	Duration        float64              `json:"duration"`
	SnapshotDt      float64              `json:"snapshot_dt"`
	Physics         config.PhysicsConfig `json:"physics"`
	Observables     []string             `json:"observables"`
	Metrics         map[string]float64   `json:"metrics"`
	Renormalized    int                  `json:"renormalized"`
	MissedSnapshots []float64            `json:"missed_snapshots,omitempty"`
}

// snapshotFile is the on-disk form of the density-matrix snapshots,
// each matrix flattened row-major into [re, im] pairs.
type snapshotFile struct {
	Dim    int            `json:"dim"`
	Times  []float64      `json:"times"`
	States [][][2]float64 `json:"states"`
}

// Save persists one run: metadata.json, expectations.csv with Re/Im
// column pairs per observable, and snapshots.json.
func (s *Store) Save(meta RunMetadata, rec *sample.Recorder) (string, error) {
	runID := fmt.Sprintf("maser_%d", time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()
	for _, o := range rec.Observables() {
		meta.Observables = append(meta.Observables, o.Name)
	}
	meta.MissedSnapshots = rec.Missed()

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := s.writeExpectations(runDir, rec); err != nil {
		return "", err
	}
	if err := s.writeSnapshots(runDir, rec.Snapshots()); err != nil {
		return "", err
	}

	return runID, nil
}

func (s *Store) writeExpectations(runDir string, rec *sample.Recorder) error {
	f, err := os.Create(filepath.Join(runDir, "expectations.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	obs := rec.Observables()
	header := []string{"time"}
	for _, o := range obs {
		header = append(header, o.Name+"_re", o.Name+"_im")
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range rec.Records() {
		row := []string{strconv.FormatFloat(r.T, 'g', 12, 64)}
		for _, o := range obs {
			v := r.Values[o.Name]
			row = append(row,
				strconv.FormatFloat(real(v), 'g', 12, 64),
				strconv.FormatFloat(imag(v), 'g', 12, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) writeSnapshots(runDir string, snaps []sample.Snapshot) error {
	sf := snapshotFile{}
	for _, snap := range snaps {
		sf.Dim = snap.Rho.N
		sf.Times = append(sf.Times, snap.T)
		flat := make([][2]float64, len(snap.Rho.Data))
		for i, v := range snap.Rho.Data {
			flat[i] = [2]float64{real(v), imag(v)}
		}
		sf.States = append(sf.States, flat)
	}

	f, err := os.Create(filepath.Join(runDir, "snapshots.json"))
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(sf)
}

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

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadSeries reads the expectation CSV back as times plus one real
// column per observable (the _re columns; imaginary parts of the
// sampled observables vanish for hermitian operators).
func (s *Store) LoadSeries(runID string) ([]float64, map[string][]float64, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "expectations.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return []float64{}, map[string][]float64{}, nil
	}

	header := records[0]
	times := make([]float64, 0, len(records)-1)
	series := make(map[string][]float64)

	for _, row := range records[1:] {
		if len(row) != len(header) {
			continue
		}
		t, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			continue
		}
		times = append(times, t)

		for col := 1; col < len(header); col++ {
			name := header[col]
			if len(name) > 3 && name[len(name)-3:] == "_re" {
				v, err := strconv.ParseFloat(row[col], 64)
				if err != nil {
					v = 0
				}
				key := name[:len(name)-3]
				series[key] = append(series[key], v)
			}
		}
	}

	return times, series, nil
}

// LoadSnapshots reads the stored density matrices back.
func (s *Store) LoadSnapshots(runID string) ([]sample.Snapshot, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "snapshots.json"))
	if err != nil {
		return nil, err
	}

	var sf snapshotFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, err
	}
	if len(sf.States) != len(sf.Times) {
		return nil, fmt.Errorf("snapshots truncated: %d states for %d times", len(sf.States), len(sf.Times))
	}

	snaps := make([]sample.Snapshot, 0, len(sf.Times))
	for i, t := range sf.Times {
		if len(sf.States[i]) != sf.Dim*sf.Dim {
			return nil, fmt.Errorf("snapshot %d: %d entries for dim %d", i, len(sf.States[i]), sf.Dim)
		}
		m := linalg.New(sf.Dim)
		for k, pair := range sf.States[i] {
			m.Data[k] = complex(pair[0], pair[1])
		}
		snaps = append(snaps, sample.Snapshot{T: t, Rho: m})
	}
	return snaps, nil
}
