package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestRunRecordValidate(t *testing.T) {
	if err := (RunRecord{}).Validate(); !errors.Is(err, ErrMissingRunID) {
		t.Fatalf("expected ErrMissingRunID, got %v", err)
	}
	if err := (RunRecord{ID: "r1"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunRecordCloneIsDeep(t *testing.T) {
	orig := RunRecord{
		ID:          "r1",
		Config:      json.RawMessage(`{"pipeline":"ribbon"}`),
		Diagnostics: []string{"unknown particle type"},
		Artifacts:   []ArtifactRecord{{Kind: ArtifactCell, Key: "a.cell"}},
	}
	cp := orig.Clone()
	cp.Config[2] = 'X'
	cp.Diagnostics[0] = "changed"
	cp.Artifacts[0].Key = "b.cell"
	if string(orig.Config) != `{"pipeline":"ribbon"}` || orig.Diagnostics[0] != "unknown particle type" || orig.Artifacts[0].Key != "a.cell" {
		t.Fatalf("clone shares storage with original: %+v", orig)
	}
}

func TestRunRecordArtifactAndDuration(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r := RunRecord{
		StartedAt:  start,
		FinishedAt: start.Add(1500 * time.Millisecond),
		Artifacts:  []ArtifactRecord{{Kind: ArtifactCell, Key: "a.cell"}, {Kind: ArtifactCtl, Key: "a.ctl"}},
	}
	if r.Duration() != 1500*time.Millisecond {
		t.Fatalf("duration = %v", r.Duration())
	}
	if a, ok := r.Artifact(ArtifactCtl); !ok || a.Key != "a.ctl" {
		t.Fatalf("ctl artifact = %+v %v", a, ok)
	}
	if _, ok := (RunRecord{}).Artifact(ArtifactCell); ok {
		t.Fatalf("expected no artifact")
	}
}

func TestSortRuns(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	runs := []RunRecord{
		{ID: "c", StartedAt: t0.Add(time.Second)},
		{ID: "b", StartedAt: t0},
		{ID: "a", StartedAt: t0},
	}
	SortRuns(runs)
	if runs[0].ID != "a" || runs[1].ID != "b" || runs[2].ID != "c" {
		t.Fatalf("unexpected order: %v %v %v", runs[0].ID, runs[1].ID, runs[2].ID)
	}
}
