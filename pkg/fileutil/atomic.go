// Package fileutil provides file system utilities including atomic write operations.
package fileutil

import (
	_ "crypto/sha256" // registers the canonical digest algorithm
	"io"
	"os"
	"path/filepath"

	"github.com/opencontainers/go-digest"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/savekeep/internal/errors"
)

// tempPattern names in-flight files so they are easy to recognise and ignore.
const tempPattern = ".savekeep-atomic-*.tmp"

// IsTempFile reports whether name is an in-flight or abandoned atomic write.
func IsTempFile(name string) bool {
	ok, _ := filepath.Match(tempPattern, name)
	return ok
}

// AtomicWriteYAMLWithPerm writes v as YAML to path atomically with specified permissions.
// Appends a trailing newline for POSIX compliance.
//
// The caller is responsible for ensuring the parent directory exists.
func AtomicWriteYAMLWithPerm(path string, v any, perm os.FileMode) (err error) {
	// yaml.Marshal panics on unmarshalable types; recover and return error
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("marshaling YAML: %v", r)
		}
	}()

	data, err := yaml.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshaling YAML")
	}

	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}

	return atomicWrite(path, perm, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// AtomicWriteYAML writes v as YAML to path atomically.
// The file is created with 0644 permissions.
func AtomicWriteYAML(path string, v any) error {
	return AtomicWriteYAMLWithPerm(path, v, 0o644)
}

// CopyResult describes the bytes that landed at the destination of a copy.
type CopyResult struct {
	Digest digest.Digest
	Size   int64
}

// AtomicCopyFile copies src to dst through a temp file in dst's directory,
// digesting the bytes as they stream. dst is replaced only once the copy is
// complete, so a reader never observes a half-written file.
//
// The destination keeps the source's permission bits.
// The caller is responsible for ensuring the parent directory exists.
func AtomicCopyFile(src, dst string) (CopyResult, error) {
	in, err := os.Open(src)
	if err != nil {
		return CopyResult{}, errors.Wrap(err, "opening source file")
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return CopyResult{}, errors.Wrap(err, "stat source file")
	}

	var res CopyResult
	err = atomicWrite(dst, info.Mode().Perm(), func(w io.Writer) error {
		digester := digest.Canonical.Digester()
		n, err := io.Copy(io.MultiWriter(w, digester.Hash()), in)
		if err != nil {
			return err
		}
		res = CopyResult{Digest: digester.Digest(), Size: n}
		return nil
	})
	if err != nil {
		return CopyResult{}, err
	}
	return res, nil
}

func atomicWrite(path string, perm os.FileMode, fill func(io.Writer) error) error {
	dir := filepath.Dir(path)

	// Create temp file in same directory for atomic rename (same filesystem required)
	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}

	tmpName := tmp.Name()
	defer func() {
		// Only remove if rename failed (file still exists)
		if _, statErr := os.Stat(tmpName); statErr == nil {
			os.Remove(tmpName)
		}
	}()

	if err := fill(tmp); err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing temp file")
	}

	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return errors.Wrap(err, "setting file permissions")
	}

	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}

	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrap(err, "renaming temp file")
	}

	return nil
}
