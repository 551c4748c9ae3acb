package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	testutil "github.com/aristath/gridsweep/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sweepEnv points configuration at temporary directories and returns the sweep directory.
func sweepEnv(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("SWEEP_DATA_DIR", filepath.Join(tmp, "data"))
	t.Setenv("SWEEP_DIR", filepath.Join(tmp, "grid_search"))
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_PRETTY", "false")
	t.Setenv("ARCHIVE_SCHEDULE", "")
	t.Setenv("S3_BUCKET", "")
	t.Setenv("WORKER_PROCESS_NAME", "gridsweep-no-such-worker")

	dir := filepath.Join(tmp, "grid_search")
	require.NoError(t, os.MkdirAll(dir, 0755))
	return dir
}

func execute(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer

	err := run(ctx, &app{}, args, &stdout, &stderr)
	return stdout.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, context.Background(), args...)
	require.NoError(t, err)
	return out
}

func TestAggregateCmd_JSON(t *testing.T) {
	dir := sweepEnv(t)
	testutil.WriteSweep(t, dir, testutil.NewSweepFixtures()...)
	testutil.WriteJunk(t, dir, "stderr.log")

	var rows []struct {
		Value float64 `json:"value"`
		Mean  float64 `json:"mean"`
		Count int     `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "aggregate", "lr", "--json")), &rows))

	require.Len(t, rows, 2)
	assert.Equal(t, 0.1, rows[0].Value)
	assert.InDelta(t, 1.5, rows[0].Mean, 1e-9)
	assert.Equal(t, 0.2, rows[1].Value)
	assert.InDelta(t, 4.0, rows[1].Mean, 1e-9)
	assert.Equal(t, 2, rows[1].Count)
}

func TestAggregateCmd_Table(t *testing.T) {
	dir := sweepEnv(t)
	testutil.WriteSweep(t, dir, testutil.NewSweepFixtures()...)

	out := mustRun(t, "aggregate", "window")
	assert.Contains(t, out, "WINDOW")
	assert.Contains(t, out, "SHARPE RATIO")
	assert.Contains(t, out, "20")
	assert.Contains(t, out, "40")
}

func TestAggregateCmd_DirFlagOverridesEnvironment(t *testing.T) {
	sweepEnv(t)
	other := t.TempDir()
	testutil.WriteSweep(t, other, testutil.NewSweepFixtures()[:1]...)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "aggregate", "lr", "--dir", other, "--json")), &rows))
	assert.Len(t, rows, 1)
}

func TestAggregateCmd_MissingDirectory(t *testing.T) {
	sweepEnv(t)

	_, err := execute(t, context.Background(), "aggregate", "lr", "--dir", filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestRun_ClosesLedgerWhenCommandFails(t *testing.T) {
	sweepEnv(t)
	a := &app{}

	err := run(context.Background(), a, []string{"aggregate", "lr", "--dir", filepath.Join(t.TempDir(), "missing")}, io.Discard, io.Discard)
	require.Error(t, err)

	assert.NotNil(t, a.jobs, "the command wired the container")
	assert.Nil(t, a.container)
}

func TestAggregateCmd_NaNValueIsNull(t *testing.T) {
	dir := sweepEnv(t)
	testutil.WriteSweep(t, dir,
		testutil.NewRecord(map[string]any{"stop": math.NaN()}, 1.0),
		testutil.NewRecord(map[string]any{"stop": 0.05}, 2.0),
	)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "aggregate", "stop", "--json")), &rows))

	require.Len(t, rows, 2)
	assert.Nil(t, rows[0]["value"])
	assert.Equal(t, 0.05, rows[1]["value"])
}

func TestRangesCmd_JSON(t *testing.T) {
	dir := sweepEnv(t)
	testutil.WriteSweep(t, dir, testutil.NewSweepFixtures()...)

	var ranges map[string][]float64
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "ranges", "--json")), &ranges))

	assert.Len(t, ranges, 2)
	assert.ElementsMatch(t, []float64{0.1, 0.1, 0.2, 0.2}, ranges["lr"])
	assert.ElementsMatch(t, []float64{20, 40, 20, 40}, ranges["window"])
	assert.NotContains(t, ranges, "mode")
}

func TestParamsCmd(t *testing.T) {
	dir := sweepEnv(t)
	paths := testutil.WriteSweep(t, dir, testutil.NewSweepFixtures()[0])

	assert.Equal(t, "lr\nmode\nwindow\n", mustRun(t, "params", paths[0]))
}

func TestArchiveCmd_RecordsHistory(t *testing.T) {
	dir := sweepEnv(t)
	testutil.WriteSweep(t, dir, testutil.NewSweepFixtures()...)
	testutil.WriteJunk(t, dir, "stderr.log")

	var res struct {
		RunID   string   `json:"run_id"`
		Dir     string   `json:"dir"`
		Moved   []string `json:"moved"`
		Skipped []string `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "archive", "--json")), &res))

	assert.Len(t, res.Moved, 4)
	assert.Equal(t, []string{"stderr.log"}, res.Skipped)
	assert.DirExists(t, res.Dir)

	var runs []struct {
		ID       string `json:"id"`
		Kind     string `json:"kind"`
		Affected int    `json:"affected"`
	}
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "history", "--json")), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, res.RunID, runs[0].ID)
	assert.Equal(t, "archive", runs[0].Kind)
	assert.Equal(t, 4, runs[0].Affected)

	var entries []struct {
		Name   string `json:"name"`
		Action string `json:"action"`
	}
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "history", res.RunID, "--json")), &entries))
	assert.Len(t, entries, 5)
}

func TestPruneCmd_NothingToPrune(t *testing.T) {
	dir := sweepEnv(t)
	testutil.WriteJunk(t, dir, "notes.txt")

	assert.Equal(t, "Nothing to prune\n", mustRun(t, "prune"))
}

func TestPruneCmd_KeepsRecentBurst(t *testing.T) {
	dir := sweepEnv(t)
	for _, name := range []string{"0001_a", "0002_b"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}

	out := mustRun(t, "prune", "--max-gap", "1h")
	assert.Contains(t, out, "Kept 2, deleted 0")
	assert.FileExists(t, filepath.Join(dir, "0001_a"))
}

func TestPathCmds(t *testing.T) {
	sweepEnv(t)
	dataDir := os.Getenv("SWEEP_DATA_DIR")
	base := t.TempDir()
	nested := filepath.Join(base, "a", "b")
	file := filepath.Join(nested, "summary.txt")

	mustRun(t, "mkdirs", nested, nested)
	assert.DirExists(t, nested)

	mustRun(t, "dump", file, "best lr: 0.2", "best window: 20")
	content, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(content), "best lr: 0.2")
	assert.Contains(t, string(content), "best window: 20")

	out := mustRun(t, "rm", filepath.Join(base, "a"), filepath.Join(base, "missing"))
	assert.Equal(t, "removed "+filepath.Join(base, "a")+"\n", out)
	assert.NoDirExists(t, filepath.Join(base, "a"))

	// Path commands never open the ledger, so its directory is not created
	assert.NoDirExists(t, dataDir)
}

func TestKillLatestCmd_NoWorker(t *testing.T) {
	sweepEnv(t)

	assert.Equal(t, "No worker process running\n", mustRun(t, "kill-latest"))
}

func TestProcsCmd_NoWorker(t *testing.T) {
	sweepEnv(t)

	assert.Equal(t, "[]\n", mustRun(t, "procs", "--json"))
}

func TestWatchCmd_StopsOnCancel(t *testing.T) {
	dir := sweepEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "0001_a"), nil, 0644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := execute(t, ctx, "watch", "--run-now")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "0001_a"))
}
