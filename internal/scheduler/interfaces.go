package scheduler

import (
	"context"

	"github.com/aristath/gridsweep/internal/archive"
	"github.com/aristath/gridsweep/internal/prune"
)

// PruneRecorder stores the outcome of a prune run
type PruneRecorder interface {
	RecordPrune(dir string, res *prune.Result) (string, error)
}

// ArchiveRecorder stores the outcome of an archive run
type ArchiveRecorder interface {
	RecordArchive(res *archive.Result) (string, error)
}

// Offloader ships an archive directory to object storage
type Offloader interface {
	Offload(ctx context.Context, dir string) (string, error)
}
