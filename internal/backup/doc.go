// Package backup implements incremental backup and verified restore of
// application save files.
//
// # Archive Layout
//
// Each application gets one flat directory under the archive root, named by
// [SanitizeName]:
//
//	<archive>/
//	└── Example/
//	    ├── manifest.yaml
//	    ├── save.dat
//	    └── options.ini
//
// Files are stored under their base name only. Two portable paths that would
// share a name are rejected with [ErrArchiveCollision] before anything is
// copied.
//
// # Backup
//
// [Engine.Backup] discovers live files, skips those whose modification time
// is not newer than their manifest entry, hashes the rest and copies those
// whose digest changed. The manifest is rewritten only when at least one
// file was copied, so repeated runs leave the archive byte-identical.
// Entries for files that are no longer found are kept.
//
// # Restore
//
// [Engine.Restore] verifies every archived file first and fails with a
// [*CorruptedFileError] before writing anything when one is missing or
// modified. Live files that already match are skipped; copied files get the
// manifest modification time back.
//
// # Batches
//
// [Batch] runs many applications sequentially, records a [Result] per
// application and combines failures with go-multierror.
package backup
