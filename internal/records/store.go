package records

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aristath/gridsweep/internal/fsutil"
	"github.com/rs/zerolog"
)

// Store reads and writes record files through a Codec.
type Store struct {
	codec Codec
	log   zerolog.Logger
}

// NewStore creates a store using the msgpack codec.
func NewStore(log zerolog.Logger) *Store {
	return NewStoreWithCodec(MsgpackCodec{}, log)
}

// NewStoreWithCodec creates a store using the given codec.
func NewStoreWithCodec(codec Codec, log zerolog.Logger) *Store {
	return &Store{
		codec: codec,
		log:   log.With().Str("component", "record_store").Logger(),
	}
}

// Load decodes every record in dir.
//
// Loading is best-effort: entries that are not regular files or that fail to decode are
// reported in LoadResult.Skipped and never turn into an error. An error is returned only when
// the directory itself cannot be listed; a missing directory wraps ErrDirNotFound.
// Entries are visited in file name order.
func (s *Store) Load(dir string) (*LoadResult, error) {
	entries, err := fsutil.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	result := &LoadResult{
		Records: make([]Entry, 0, len(entries)),
	}

	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() {
			result.Skipped = append(result.Skipped, Skip{Name: name, Err: ErrNotRecord})
			continue
		}

		rec, err := s.ReadFile(filepath.Join(dir, name))
		if err != nil {
			s.log.Debug().Str("file", name).Err(err).Msg("Skipping undecodable entry")
			result.Skipped = append(result.Skipped, Skip{Name: name, Err: err})
			continue
		}

		result.Records = append(result.Records, Entry{Name: name, Record: rec})
	}

	s.log.Debug().
		Str("dir", dir).
		Int("records", len(result.Records)).
		Int("skipped", len(result.Skipped)).
		Msg("Loaded record directory")

	return result, nil
}

// ReadFile decodes a single record file.
func (s *Store) ReadFile(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("failed to read record %s: %w", filepath.Base(path), err)
	}
	return s.codec.Decode(data)
}

// ParamNames returns the sorted parameter names of the record stored at path.
func (s *Store) ParamNames(path string) ([]string, error) {
	rec, err := s.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return rec.ParamNames(), nil
}

// Write encodes rec and stores it at path. The file is written to a temporary sibling first
// and renamed into place so readers never observe a partially written record.
func (s *Store) Write(path string, rec Record) error {
	data, err := s.codec.Encode(rec)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary record file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close record file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to move record into place: %w", err)
	}

	return nil
}
