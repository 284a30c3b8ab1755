// Package discovery turns an application's portable rules into the concrete
// save files present on the live filesystem.
package discovery

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/thoreinstein/savekeep/internal/errors"
	"github.com/thoreinstein/savekeep/internal/logging"
	"github.com/thoreinstein/savekeep/internal/placeholder"
	"github.com/thoreinstein/savekeep/pkg/fileutil"
)

// ErrUnresolvableRule marks a rule that was skipped because it could not be
// expanded or was not a valid glob.
var ErrUnresolvableRule = errors.New("unresolvable rule")

// blocklist holds base names that are never save data.
var blocklist = map[string]bool{
	"steam_autocloud.vdf": true,
}

// blocked reports whether a matched file is never save data, including
// temp files left behind by an interrupted atomic write.
func blocked(path string) bool {
	name := filepath.Base(path)
	return blocklist[name] || fileutil.IsTempFile(name)
}

// Expander expands a portable rule into a concrete directory and a glob
// below it. *placeholder.Resolver satisfies it.
type Expander interface {
	Split(template string) (placeholder.Expansion, error)
}

// Result is the outcome of one discovery pass.
type Result struct {
	// Files are the discovered files in first-seen order, without duplicates.
	Files []string

	// Skipped holds one error per rule that could not be used. Each wraps
	// ErrUnresolvableRule.
	Skipped []error
}

// Discover expands every rule, globs it against the filesystem and returns
// the matching regular files. A bad rule never aborts the pass.
func Discover(ctx context.Context, r Expander, rules []string) (Result, error) {
	logger := logging.FromContext(ctx)

	var res Result
	seen := make(map[string]bool)

	for _, rule := range rules {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		x, err := r.Split(rule)
		if err != nil {
			logger.Warn("skipping rule", "rule", rule, "error", err)
			res.Skipped = append(res.Skipped, errors.Wrapf(ErrUnresolvableRule, "%s: %v", rule, err))
			continue
		}
		pattern := x.Path()

		matches, err := x.Glob()
		if err != nil {
			logger.Warn("skipping rule with invalid pattern", "rule", rule, "pattern", pattern, "error", err)
			res.Skipped = append(res.Skipped, errors.Wrapf(ErrUnresolvableRule, "%s: %v", rule, err))
			continue
		}

		for _, match := range matches {
			if seen[match] || blocked(match) {
				continue
			}
			info, err := os.Stat(match)
			if err != nil {
				logger.Debug("match vanished during discovery", "path", match, "error", err)
				continue
			}
			if info.IsDir() {
				logger.Warn("rule matched a directory, ignoring it", "rule", rule, "path", match)
				continue
			}
			seen[match] = true
			res.Files = append(res.Files, match)
		}

		logger.Log(ctx, logging.LevelTrace, "rule expanded",
			slog.String("rule", rule), slog.String("pattern", pattern), slog.Int("matches", len(matches)))
	}

	return res, nil
}
