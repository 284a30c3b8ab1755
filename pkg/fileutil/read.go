package fileutil

import (
	"io"
	"os"

	"github.com/thoreinstein/savekeep/internal/errors"
)

// MaxFileSize is the maximum size of a metadata file (manifest, catalog) we'll read (64MB).
// Large community catalogs run to tens of megabytes; anything beyond this is not ours.
const MaxFileSize = 64 * 1024 * 1024

// ErrFileTooLarge indicates that a file exceeded MaxFileSize.
var ErrFileTooLarge = errors.Newf("file exceeds maximum size of %d bytes", MaxFileSize)

// ReadFileWithLimit reads a file up to MaxFileSize.
// It returns an error if the file is larger than the limit.
func ReadFileWithLimit(path string) ([]byte, error) {
	return readFileWithLimit(path, MaxFileSize)
}

func readFileWithLimit(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening file")
	}
	defer f.Close()

	// Fail fast if size is already too large
	if info, err := f.Stat(); err == nil && info.Size() > limit {
		return nil, ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}

	if int64(len(data)) > limit {
		return nil, ErrFileTooLarge
	}

	return data, nil
}
