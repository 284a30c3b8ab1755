// Package manifest defines the per-application archive ledger and its YAML
// persistence.
//
// A manifest lists every archived file by portable path together with its
// sha256 content digest, size and modification time:
//
//	application_name: Example
//	entries:
//	  - portable_path: '{Documents}/Example/save.dat'
//	    content_hash: sha256:9f86d081884c7d65...
//	    size_bytes: 4
//	    modified_at: 2025-03-01T10:00:00.123456789Z
//
// Manifests are only ever replaced whole through an atomic rename.
package manifest
