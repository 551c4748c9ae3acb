// Package ledger keeps a history of archive and prune runs so that it is possible to tell,
// after the fact, where a sweep's records went and what a prune removed.
package ledger

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/aristath/gridsweep/internal/archive"
	"github.com/aristath/gridsweep/internal/database"
	"github.com/aristath/gridsweep/internal/prune"
	"github.com/aristath/gridsweep/internal/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Kind is the type of a recorded run.
type Kind string

const (
	KindArchive Kind = "archive"
	KindPrune   Kind = "prune"
)

// Entry actions
const (
	ActionMoved   = "moved"
	ActionSkipped = "skipped"
	ActionDeleted = "deleted"
	ActionKept    = "kept"
)

// Run is one recorded archive or prune run.
type Run struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Path      string    `json:"path"`
	Affected  int       `json:"affected"`  // records moved or entries deleted
	Untouched int       `json:"untouched"` // entries skipped or kept
	CreatedAt time.Time `json:"created_at"`
}

// Entry is a directory entry touched (or deliberately left alone) by a run.
type Entry struct {
	Name   string `json:"name"`
	Action string `json:"action"`
}

// Repository stores runs in the ledger database.
type Repository struct {
	db  *database.DB
	now func() time.Time
	log zerolog.Logger
}

// NewRepository creates a new ledger repository
func NewRepository(db *database.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		now: time.Now,
		log: log.With().Str("repo", "ledger").Logger(),
	}
}

// RecordArchive stores an archive run and returns its id.
func (r *Repository) RecordArchive(res *archive.Result) (string, error) {
	entries := make([]Entry, 0, len(res.Moved)+len(res.Skipped))
	for _, name := range res.Moved {
		entries = append(entries, Entry{Name: name, Action: ActionMoved})
	}
	for _, name := range res.Skipped {
		entries = append(entries, Entry{Name: name, Action: ActionSkipped})
	}

	return r.insert(KindArchive, res.Dir, len(res.Moved), len(res.Skipped), entries)
}

// RecordPrune stores a prune run over dir and returns its id.
func (r *Repository) RecordPrune(dir string, res *prune.Result) (string, error) {
	entries := make([]Entry, 0, len(res.Deleted)+len(res.Kept))
	for _, name := range res.Deleted {
		entries = append(entries, Entry{Name: name, Action: ActionDeleted})
	}
	for _, name := range res.Kept {
		entries = append(entries, Entry{Name: name, Action: ActionKept})
	}

	return r.insert(KindPrune, dir, len(res.Deleted), len(res.Kept), entries)
}

func (r *Repository) insert(kind Kind, path string, affected, untouched int, entries []Entry) (string, error) {
	done := utils.MeasureDBQuery("insert_run", r.log)
	id := uuid.New().String()

	err := database.WithTransaction(r.db.Conn(), func(tx *sql.Tx) error {
		_, err := tx.Exec(
			`INSERT INTO sweep_runs (id, kind, path, affected, untouched, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			id, string(kind), path, affected, untouched, r.now().Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		stmt, err := tx.Prepare(`INSERT INTO sweep_run_entries (run_id, name, action) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare entry insert: %w", err)
		}
		defer stmt.Close()

		for _, e := range entries {
			if _, err := stmt.Exec(id, e.Name, e.Action); err != nil {
				return fmt.Errorf("failed to insert entry %s: %w", e.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	done(int64(1 + len(entries)))
	return id, nil
}

// Recent returns up to limit runs, newest first. A negative limit returns every run.
func (r *Repository) Recent(limit int) ([]Run, error) {
	rows, err := r.db.Conn().Query(
		`SELECT id, kind, path, affected, untouched, created_at
		 FROM sweep_runs
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0, max(limit, 0))
	for rows.Next() {
		var (
			run       Run
			kind      string
			createdAt int64
		)
		if err := rows.Scan(&run.ID, &kind, &run.Path, &run.Affected, &run.Untouched, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Kind = Kind(kind)
		run.CreatedAt = time.Unix(createdAt, 0)
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// Entries returns the entries recorded for a run, ordered by action then name.
func (r *Repository) Entries(runID string) ([]Entry, error) {
	rows, err := r.db.Conn().Query(
		`SELECT name, action FROM sweep_run_entries WHERE run_id = ? ORDER BY action, name`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query run entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.Action); err != nil {
			return nil, fmt.Errorf("failed to scan run entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
