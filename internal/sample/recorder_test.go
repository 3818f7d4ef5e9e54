package sample

import (
	"math"
	"testing"

	"github.com/san-kum/masersim/internal/linalg"
)

func diagonal(vals ...complex128) *linalg.Matrix {
	m := linalg.New(len(vals))
	for i, v := range vals {
		m.Set(i, i, v)
	}
	return m
}

func TestRecorderExpectations(t *testing.T) {
	num := diagonal(0, 1, 2)
	rec, missed, err := NewRecorder([]Observable{{Name: "n", Op: num}}, 0.5, 1.0, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(missed) != 0 {
		t.Fatalf("unexpected missed targets: %v", missed)
	}

	rho := diagonal(0.5, 0.25, 0.25)
	for step, tm := range []float64{0, 0.5, 1.0} {
		if err := rec.Visit(step, tm, rho); err != nil {
			t.Fatal(err)
		}
	}

	records := rec.Records()
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	want := 0.25*1 + 0.25*2
	for _, r := range records {
		if math.Abs(real(r.Values["n"])-want) > 1e-15 {
			t.Errorf("at t=%v: <n> = %v, want %v", r.T, r.Values["n"], want)
		}
	}

	series := rec.Series("n")
	times := rec.Times()
	if len(series) != 3 || len(times) != 3 {
		t.Fatalf("series/times lengths %d/%d, want 3/3", len(series), len(times))
	}
	if times[1] != 0.5 {
		t.Errorf("times[1] = %v, want 0.5", times[1])
	}
}

func TestSnapshotScheduleByIndex(t *testing.T) {
	op := diagonal(1, 1)
	rec, missed, err := NewRecorder([]Observable{{Name: "id", Op: op}}, 0.1, 1.0, 0.5, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(missed) != 0 {
		t.Fatalf("unexpected missed targets: %v", missed)
	}

	rho := diagonal(1, 0)
	for step := 0; step <= 10; step++ {
		// deliberately drifted times: scheduling is by step index
		tm := 0.1*float64(step) + 1e-13
		if err := rec.Visit(step, tm, rho); err != nil {
			t.Fatal(err)
		}
	}

	snaps := rec.Snapshots()
	if len(snaps) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(snaps))
	}
	for i, wantStep := range []int{0, 5, 10} {
		want := 0.1*float64(wantStep) + 1e-13
		if snaps[i].T != want {
			t.Errorf("snapshot %d at t=%v, want %v", i, snaps[i].T, want)
		}
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	rec, _, err := NewRecorder(nil, 1.0, 1.0, 1.0, 0)
	if err != nil {
		t.Fatal(err)
	}

	rho := diagonal(1, 0)
	if err := rec.Visit(0, 0, rho); err != nil {
		t.Fatal(err)
	}
	rho.Set(0, 0, 0.5) // mutate after the visit

	snap := rec.Snapshots()[0]
	if snap.Rho.At(0, 0) != 1 {
		t.Error("snapshot tracked later mutation; expected a deep copy")
	}
}

func TestSlotFillsAtMostOnce(t *testing.T) {
	rec, _, err := NewRecorder(nil, 1.0, 2.0, 1.0, 0)
	if err != nil {
		t.Fatal(err)
	}

	rho := diagonal(1, 0)
	// visit the same step twice; the second must not duplicate the slot
	rec.Visit(1, 1.0, rho)
	rec.Visit(1, 1.0, rho)

	count := 0
	for _, s := range rec.Snapshots() {
		if s.T == 1.0 {
			count++
		}
	}
	if count != 1 {
		t.Errorf("snapshot slot filled %d times, want 1", count)
	}
}

func TestGridMismatchReported(t *testing.T) {
	// snapshot spacing 0.25 with fine step 0.1: t=0.25 and 0.75 miss
	// the grid, t=0, 0.5, 1.0 align.
	rec, missed, err := NewRecorder(nil, 0.1, 1.0, 0.25, 1e-9)
	if err != nil {
		t.Fatal(err)
	}
	if len(missed) != 2 {
		t.Fatalf("expected 2 missed targets, got %v", missed)
	}
	if missed[0] != 0.25 || missed[1] != 0.75 {
		t.Errorf("missed = %v, want [0.25 0.75]", missed)
	}
	if len(rec.Missed()) != 2 {
		t.Errorf("recorder should retain missed targets")
	}

	rho := diagonal(1, 0)
	for step := 0; step <= 10; step++ {
		rec.Visit(step, 0.1*float64(step), rho)
	}
	if len(rec.Snapshots()) != 3 {
		t.Errorf("expected 3 filled slots, got %d", len(rec.Snapshots()))
	}
}

func TestTargetBeyondGridReportedMissed(t *testing.T) {
	// duration 45 with spacing 10 rounds up to a target at t=50, past
	// the last grid step; it must be reported, not silently skipped.
	rec, missed, err := NewRecorder(nil, 0.1, 45, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(missed) != 1 || missed[0] != 50 {
		t.Fatalf("missed = %v, want [50]", missed)
	}

	rho := diagonal(1, 0)
	for step := 0; step <= 450; step++ {
		rec.Visit(step, 0.1*float64(step), rho)
	}
	if got := len(rec.Snapshots()); got != 5 {
		t.Errorf("expected 5 filled slots (t=0..40), got %d", got)
	}
}

func TestRecorderValidation(t *testing.T) {
	if _, _, err := NewRecorder(nil, 0, 1, 0.5, 0); err == nil {
		t.Error("expected error for zero dt")
	}
	if _, _, err := NewRecorder(nil, 0.1, 1, -0.5, 0); err == nil {
		t.Error("expected error for negative snapshot spacing")
	}
}
