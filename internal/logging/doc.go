// Package logging provides structured logging for the savekeep CLI using slog.
//
// The console handler is colorized on terminals; JSON output is available
// for machines, and a log file always receives JSON. Attributes whose keys
// look like credentials or account ids are masked before they are written.
//
// # Basic Usage
//
//	logger := logging.New(logging.Config{
//		Level:  logging.LevelFromVerbosity(verbose),
//		Format: logging.FormatText,
//		Output: os.Stderr,
//	})
//	ctx = logging.NewContext(ctx, logger)
//	logging.FromContext(ctx).Info("backup finished", "application", name)
//
// # Testing
//
// For tests, use [ForTest] or [TestContext] to capture log output via the
// testing framework:
//
//	func TestSomething(t *testing.T) {
//		ctx := logging.TestContext(t)
//		// logs appear in test output on failure
//	}
package logging
