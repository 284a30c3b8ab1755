package backup

import (
	"fmt"
	"time"

	"github.com/thoreinstein/savekeep/internal/errors"
)

// Sentinel errors for backup and restore operations.
var (
	// ErrDirectoryCreation indicates the application's archive directory, or
	// a live parent directory on restore, could not be created. Fatal for
	// that application.
	ErrDirectoryCreation = errors.New("directory creation failed")

	// ErrApplicationNotFound indicates a restore for an application that is
	// not installed on this machine.
	ErrApplicationNotFound = errors.New("application not found")

	// ErrCorruptedArchive indicates an archived file is missing or no longer
	// matches its manifest digest. The restore is aborted before any copy.
	ErrCorruptedArchive = errors.New("corrupted archive")

	// ErrArchiveCollision indicates two different portable paths would be
	// stored under the same archive file name.
	ErrArchiveCollision = errors.New("archive file name collision")
)

// CorruptedFileError names the archived file that failed verification.
type CorruptedFileError struct {
	// File is the path of the archived file.
	File string

	// Reason describes the failure ("missing", "digest mismatch", ...).
	Reason string
}

func (e *CorruptedFileError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", ErrCorruptedArchive, e.File, e.Reason)
}

// Unwrap returns ErrCorruptedArchive so errors.Is matches the sentinel.
func (e *CorruptedFileError) Unwrap() error {
	return ErrCorruptedArchive
}

// Policy decides what a batch backup does with a malformed manifest.
type Policy string

const (
	// PolicyAbort reports the application as failed.
	PolicyAbort Policy = "abort"

	// PolicyRebuild ignores the malformed manifest and backs up as if there
	// were none.
	PolicyRebuild Policy = "rebuild"
)

// Valid reports whether p is a known policy.
func (p Policy) Valid() bool {
	return p == PolicyAbort || p == PolicyRebuild
}

// Operation names the kind of batch run.
type Operation string

const (
	OperationBackup  Operation = "backup"
	OperationRestore Operation = "restore"
)

// Result is the outcome for one application in a batch.
type Result struct {
	Application string        `json:"application"`
	Changed     bool          `json:"changed"`
	Err         error         `json:"-"`
	Duration    time.Duration `json:"duration"`
}

// Report is the outcome of one batch run.
type Report struct {
	RunID     string    `json:"run_id"`
	Operation Operation `json:"operation"`
	Results   []Result  `json:"results"`
}

// Changed counts the applications whose archive or live files were written.
func (r *Report) Changed() int {
	n := 0
	for _, res := range r.Results {
		if res.Changed {
			n++
		}
	}
	return n
}

// Failed counts the applications that returned an error.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}
