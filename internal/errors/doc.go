// Package errors provides error handling conventions for the savekeep CLI.
//
// It is a thin facade over github.com/cockroachdb/errors so that every
// package wraps errors the same way (with stack traces and hints), plus an
// ExitError type for CLI exit code handling.
//
// # Wrapping
//
//	if err := os.MkdirAll(dir, 0o755); err != nil {
//	    return errors.Wrapf(err, "creating %s", dir)
//	}
//
// Domain packages declare their own sentinels (for example
// manifest.ErrMalformedManifest) with [New] and callers test for them with
// [Is].
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): User-related error (invalid input, configuration, etc.)
//   - ExitSystem (2): System-related error (I/O, corrupted archive, etc.)
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional suggestion:
//
//	err := errors.NewUserError(errors.ErrInvalidConfig, "Check your config file")
//	var exitErr *errors.ExitError
//	if errors.As(err, &exitErr) {
//	    os.Exit(exitErr.Code)
//	}
package errors
