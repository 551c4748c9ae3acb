package scheduler

import (
	"errors"
	"time"

	"github.com/aristath/gridsweep/internal/prune"
	"github.com/rs/zerolog"
)

// PruneJob deletes everything older than the most recent burst of activity in the sweep
// directory and records what it removed.
type PruneJob struct {
	pruner   *prune.Pruner
	recorder PruneRecorder
	dir      string
	maxGap   time.Duration
	log      zerolog.Logger
}

// NewPruneJob creates a new prune job. recorder may be nil.
func NewPruneJob(pruner *prune.Pruner, recorder PruneRecorder, dir string, maxGap time.Duration, log zerolog.Logger) *PruneJob {
	return &PruneJob{
		pruner:   pruner,
		recorder: recorder,
		dir:      dir,
		maxGap:   maxGap,
		log:      log.With().Str("job", "prune").Logger(),
	}
}

// Run executes the prune job. A directory without candidates is not an error.
func (j *PruneJob) Run() error {
	res, err := j.pruner.Prune(j.dir, j.maxGap)
	if errors.Is(err, prune.ErrNoCandidates) {
		j.log.Debug().Str("dir", j.dir).Msg("Nothing to prune")
		return nil
	}
	if err != nil {
		j.log.Error().Err(err).Str("dir", j.dir).Msg("Failed to prune sweep directory")
		return err
	}

	if len(res.Deleted) == 0 || j.recorder == nil {
		return nil
	}

	if _, err := j.recorder.RecordPrune(j.dir, res); err != nil {
		j.log.Warn().Err(err).Msg("Failed to record prune run")
	}

	return nil
}

// Name returns the job name for scheduling and logging.
func (j *PruneJob) Name() string {
	return "prune"
}
