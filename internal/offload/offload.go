// Package offload ships archive directories to object storage as tar.gz bundles.
package offload

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/aristath/gridsweep/internal/utils"
	"github.com/rs/zerolog"
)

// Uploader stores an object under key.
type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64) error
}

// Offloader bundles archive directories and uploads them.
type Offloader struct {
	uploader Uploader
	prefix   string
	log      zerolog.Logger
}

// NewOffloader creates an offloader that uploads bundles under prefix.
func NewOffloader(uploader Uploader, prefix string, log zerolog.Logger) *Offloader {
	return &Offloader{
		uploader: uploader,
		prefix:   prefix,
		log:      log.With().Str("service", "offload").Logger(),
	}
}

// Key returns the object key the bundle of dir is stored under.
func (o *Offloader) Key(dir string) string {
	return o.prefix + filepath.Base(dir) + ".tar.gz"
}

// Offload bundles dir into a temporary tar.gz and uploads it. The local directory is left
// untouched; removing it is up to the pruner. Returns the object key.
func (o *Offloader) Offload(ctx context.Context, dir string) (string, error) {
	timer := utils.NewTimer("offload", o.log)
	defer timer.Stop()
	key := o.Key(dir)

	staging, err := os.CreateTemp("", "gridsweep-offload-*.tar.gz")
	if err != nil {
		return "", fmt.Errorf("failed to create staging file: %w", err)
	}
	stagingPath := staging.Name()
	defer os.Remove(stagingPath)
	defer staging.Close()

	files, err := writeBundle(staging, dir)
	if err != nil {
		return "", fmt.Errorf("failed to bundle %s: %w", dir, err)
	}

	size, err := staging.Seek(0, io.SeekCurrent)
	if err != nil {
		return "", fmt.Errorf("failed to size bundle: %w", err)
	}
	if _, err := staging.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind bundle: %w", err)
	}

	if err := o.uploader.Upload(ctx, key, staging, size); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	o.log.Info().
		Str("key", key).
		Int("files", files).
		Int64("size_kb", size/1024).
		Dur("duration_ms", timer.Elapsed()).
		Msg("Offloaded archive")

	return key, nil
}

// writeBundle writes a tar.gz of every regular file under dir to w, with paths relative to dir.
func writeBundle(w io.Writer, dir string) (int, error) {
	gzipWriter := gzip.NewWriter(w)
	tarWriter := tar.NewWriter(gzipWriter)

	files := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if err := addFileToArchive(tarWriter, path, filepath.ToSlash(rel)); err != nil {
			return fmt.Errorf("failed to add %s: %w", rel, err)
		}
		files++
		return nil
	})
	if err != nil {
		return files, err
	}

	if err := tarWriter.Close(); err != nil {
		return files, err
	}
	return files, gzipWriter.Close()
}

// addFileToArchive adds a single file to a tar archive
func addFileToArchive(tarWriter *tar.Writer, filePath, nameInArchive string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header := &tar.Header{
		Name:    nameInArchive,
		Size:    info.Size(),
		Mode:    int64(info.Mode().Perm()),
		ModTime: info.ModTime(),
	}

	if err := tarWriter.WriteHeader(header); err != nil {
		return err
	}

	_, err = io.Copy(tarWriter, file)
	return err
}
