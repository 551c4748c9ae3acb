package scheduler

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/aristath/gridsweep/internal/archive"
	"github.com/rs/zerolog"
)

// OffloadTimeout bounds a single archive upload.
const OffloadTimeout = 10 * time.Minute

// ArchiveJob moves finished records into a timestamped directory, records the run and uploads
// the new directory when an offloader is configured.
type ArchiveJob struct {
	archiver  *archive.Archiver
	recorder  ArchiveRecorder
	offloader Offloader
	dir       string
	log       zerolog.Logger
}

// NewArchiveJob creates a new archive job. recorder and offloader may be nil.
func NewArchiveJob(archiver *archive.Archiver, recorder ArchiveRecorder, offloader Offloader, dir string, log zerolog.Logger) *ArchiveJob {
	return &ArchiveJob{
		archiver:  archiver,
		recorder:  recorder,
		offloader: offloader,
		dir:       dir,
		log:       log.With().Str("job", "archive").Logger(),
	}
}

// Run executes the archive job. A run that finds no records leaves no directory behind.
func (j *ArchiveJob) Run() error {
	res, err := j.archiver.Archive(j.dir)
	if errors.Is(err, archive.ErrArchiveExists) {
		j.log.Debug().Str("dir", j.dir).Msg("Already archived this minute")
		return nil
	}
	if err != nil {
		j.log.Error().Err(err).Str("dir", j.dir).Msg("Failed to archive sweep directory")
		return err
	}

	if len(res.Moved) == 0 {
		if err := os.Remove(res.Dir); err != nil {
			j.log.Warn().Err(err).Str("path", res.Dir).Msg("Failed to remove empty archive directory")
		}
		return nil
	}

	if j.recorder != nil {
		if _, err := j.recorder.RecordArchive(res); err != nil {
			j.log.Warn().Err(err).Msg("Failed to record archive run")
		}
	}

	if j.offloader == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), OffloadTimeout)
	defer cancel()

	if _, err := j.offloader.Offload(ctx, res.Dir); err != nil {
		j.log.Error().Err(err).Str("path", res.Dir).Msg("Failed to offload archive")
		return err
	}

	return nil
}

// Name returns the job name for scheduling and logging.
func (j *ArchiveJob) Name() string {
	return "archive"
}
