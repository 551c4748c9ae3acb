package ledger

import (
	"testing"
	"time"

	"github.com/aristath/gridsweep/internal/archive"
	"github.com/aristath/gridsweep/internal/prune"
	testutil "github.com/aristath/gridsweep/internal/testing"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) *Repository {
	t.Helper()
	return NewRepository(testutil.NewTestDB(t, "ledger"), zerolog.Nop())
}

func TestRecordArchive(t *testing.T) {
	repo := newRepo(t)

	id, err := repo.RecordArchive(&archive.Result{
		Dir:     "/sweeps/2024_05_01_1330",
		Moved:   []string{"run_000.msgpack", "run_001.msgpack"},
		Skipped: []string{"sweep.log"},
	})
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)

	runs, err := repo.Recent(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
	assert.Equal(t, KindArchive, runs[0].Kind)
	assert.Equal(t, "/sweeps/2024_05_01_1330", runs[0].Path)
	assert.Equal(t, 2, runs[0].Affected)
	assert.Equal(t, 1, runs[0].Untouched)

	entries, err := repo.Entries(id)
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Name: "run_000.msgpack", Action: ActionMoved},
		{Name: "run_001.msgpack", Action: ActionMoved},
		{Name: "sweep.log", Action: ActionSkipped},
	}, entries)
}

func TestRecordPrune(t *testing.T) {
	repo := newRepo(t)

	id, err := repo.RecordPrune("/sweeps", &prune.Result{
		BreakPoint: 1,
		Kept:       []string{"2024_05_01_1330"},
		Deleted:    []string{"2024_04_01_0900", "2024_03_01_0900"},
	})
	require.NoError(t, err)

	runs, err := repo.Recent(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, KindPrune, runs[0].Kind)
	assert.Equal(t, 2, runs[0].Affected)
	assert.Equal(t, 1, runs[0].Untouched)

	entries, err := repo.Entries(id)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Equal(t, ActionDeleted, entries[0].Action)
}

func TestRecent_NewestFirstWithLimit(t *testing.T) {
	repo := newRepo(t)
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return clock }

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := repo.RecordPrune("/sweeps", &prune.Result{BreakPoint: prune.NoBreakPoint})
		require.NoError(t, err)
		ids = append(ids, id)
		clock = clock.Add(time.Hour)
	}

	runs, err := repo.Recent(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[1], runs[1].ID)
	assert.Equal(t, time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC).Unix(), runs[0].CreatedAt.Unix())
}

func TestEntries_UnknownRun(t *testing.T) {
	repo := newRepo(t)

	entries, err := repo.Entries("missing")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
