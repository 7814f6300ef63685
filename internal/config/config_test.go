package config_test

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"latticegen/internal/config"
	"latticegen/internal/core"
	"latticegen/pkg/lattice"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func envMap(kv map[string]string) func(string) string {
	return func(k string) string { return kv[k] }
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	l := &config.Loader{Getenv: envMap(nil)}
	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, core.DefaultConfig(core.PipelineRibbon), cfg)
	assert.Equal(t, []string{"defaults:ribbon"}, l.Sources())
}

func TestLoadYAMLOverlaysPipelineDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "run.yaml", `
pipeline: embedded
particle_type: t
embedded:
  topological_radius: 7
  defect_cells: []
output:
  cell: out/tri.cell
  ctl: out/tri.ctl
`)
	l := &config.Loader{Path: path, Getenv: envMap(nil)}
	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, core.PipelineEmbedded, cfg.Pipeline)
	assert.Equal(t, "t", cfg.ParticleType)
	assert.Equal(t, 7, cfg.Embedded.TopologicalRadius)
	assert.Equal(t, 21, cfg.Embedded.SupercellSize, "unset fields keep embedded defaults")
	assert.NotNil(t, cfg.Embedded.DefectCells)
	assert.Empty(t, cfg.Embedded.DefectCells)
	assert.Equal(t, "out/tri.ctl", cfg.Output.CtlKey)
	assert.Equal(t, []string{"defaults:embedded", path}, l.Sources())
}

func TestLoadEnvironmentWins(t *testing.T) {
	path := writeFile(t, t.TempDir(), "run.yaml", "pipeline: embedded\ntrivial_cluster_radius: 0.3\n")
	l := &config.Loader{Path: path, Getenv: envMap(map[string]string{
		"LATTICEGEN_TRIVIAL_CLUSTER_RADIUS": "0.25",
		"LATTICEGEN_SUPERCELL_SIZE":         "31",
		"LATTICEGEN_OUTPUT_CELL":            "env.cell",
	})}
	cfg, err := l.Load()
	require.NoError(t, err)
	assert.InDelta(t, 0.25, cfg.TrivialClusterRadius, 1e-12)
	assert.Equal(t, 31, cfg.Embedded.SupercellSize)
	assert.Equal(t, "env.cell", cfg.Output.CellKey)
	assert.Contains(t, l.Sources(), "environment")
}

func TestLoadPipelinePrecedence(t *testing.T) {
	path := writeFile(t, t.TempDir(), "run.yaml", "pipeline: embedded\n")

	cfg, err := (&config.Loader{Path: path, Getenv: envMap(map[string]string{"LATTICEGEN_PIPELINE": "ribbon"})}).Load()
	require.NoError(t, err)
	assert.Equal(t, core.PipelineRibbon, cfg.Pipeline)
	assert.Equal(t, 13, cfg.Ribbon.SupercellX)

	cfg, err = (&config.Loader{Path: path, Pipeline: core.PipelineEmbedded, Getenv: envMap(map[string]string{"LATTICEGEN_PIPELINE": "ribbon"})}).Load()
	require.NoError(t, err)
	assert.Equal(t, core.PipelineEmbedded, cfg.Pipeline)
	assert.Equal(t, "output_silicon_embedded.cell", cfg.Output.CellKey)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := config.Load(filepath.Join(dir, "missing.yaml"), "")
	assert.ErrorContains(t, err, "read config")

	typo := writeFile(t, dir, "typo.yaml", "pipline: ribbon\n")
	_, err = (&config.Loader{Path: typo, Getenv: envMap(nil)}).Load()
	assert.ErrorContains(t, err, "pipline")

	_, err = (&config.Loader{Getenv: envMap(map[string]string{"LATTICEGEN_BANDS": "many"})}).Load()
	assert.ErrorContains(t, err, "LATTICEGEN_BANDS")
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.yaml", "")
	cfg, err := (&config.Loader{Path: path, Getenv: envMap(nil)}).Load()
	require.NoError(t, err)
	assert.Equal(t, core.PipelineRibbon, cfg.Pipeline)
}

func TestLoadedDefectCellsValidate(t *testing.T) {
	path := writeFile(t, t.TempDir(), "run.yaml", `
pipeline: embedded
embedded:
  defect_cells:
    - {one: 10, two: 10}
`)
	cfg, err := (&config.Loader{Path: path, Getenv: envMap(nil)}).Load()
	require.NoError(t, err)
	assert.Equal(t, []lattice.Cell{{One: 10, Two: 10}}, cfg.Embedded.DefectCells)
	assert.NoError(t, core.Validate(cfg))
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "run.yaml", "pipeline: ribbon\n")
	w, err := config.NewWatcher(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	w.SetDebounce(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var reloads atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(context.Context) error {
			reloads.Add(1)
			return nil
		})
	}()

	writeFile(t, dir, "other.yaml", "ignored: true\n")
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("pipeline: embedded\n"), 0o600)
		return reloads.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
