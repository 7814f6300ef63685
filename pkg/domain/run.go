// Package domain holds the records the generator persists about its runs.
package domain

import (
	"encoding/json"
	"errors"
	"sort"
	"time"
)

// ArtifactKind distinguishes the two files produced per run.
type ArtifactKind string

const (
	ArtifactCell ArtifactKind = "cell" // Jmol visualization
	ArtifactCtl  ArtifactKind = "ctl"  // simulator control file
)

// ArtifactRecord points at one published artifact.
type ArtifactRecord struct {
	Kind ArtifactKind `json:"kind"`
	Key  string       `json:"key"`
	ETag string       `json:"etag,omitempty"`
	Size int64        `json:"size_bytes"`
	URL  string       `json:"url,omitempty"`
}

// RunRecord summarizes one successful generation run.
type RunRecord struct {
	ID           string           `json:"id"`
	Pipeline     string           `json:"pipeline"`
	ParticleType string           `json:"particle_type"`
	Config       json.RawMessage  `json:"config,omitempty"`
	Total        int              `json:"total_clusters"`
	Topological  int              `json:"topological_clusters"`
	Defects      int              `json:"defect_clusters"`
	Points       int              `json:"points"`
	Diagnostics  []string         `json:"diagnostics,omitempty"`
	Artifacts    []ArtifactRecord `json:"artifacts"`
	StartedAt    time.Time        `json:"started_at"`
	FinishedAt   time.Time        `json:"finished_at"`
}

// ErrMissingRunID is returned when saving a record without an ID.
var ErrMissingRunID = errors.New("domain: run id required")

// Validate checks the fields every backend relies on.
func (r RunRecord) Validate() error {
	if r.ID == "" {
		return ErrMissingRunID
	}
	return nil
}

// Duration is the wall time of the run.
func (r RunRecord) Duration() time.Duration { return r.FinishedAt.Sub(r.StartedAt) }

// Artifact returns the artifact of the given kind.
func (r RunRecord) Artifact(kind ArtifactKind) (ArtifactRecord, bool) {
	for _, a := range r.Artifacts {
		if a.Kind == kind {
			return a, true
		}
	}
	return ArtifactRecord{}, false
}

// Clone returns a deep copy so stores never share slices with callers.
func (r RunRecord) Clone() RunRecord {
	out := r
	if r.Config != nil {
		out.Config = append(json.RawMessage(nil), r.Config...)
	}
	if r.Diagnostics != nil {
		out.Diagnostics = append([]string(nil), r.Diagnostics...)
	}
	if r.Artifacts != nil {
		out.Artifacts = append([]ArtifactRecord(nil), r.Artifacts...)
	}
	return out
}

// SortRuns orders runs by start time, then ID.
func SortRuns(runs []RunRecord) {
	sort.SliceStable(runs, func(i, j int) bool {
		if !runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].StartedAt.Before(runs[j].StartedAt)
		}
		return runs[i].ID < runs[j].ID
	})
}
