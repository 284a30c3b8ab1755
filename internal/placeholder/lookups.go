package placeholder

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/thoreinstein/savekeep/internal/errors"
)

// DefaultSteamDir is used when the Steam install directory cannot be found.
const DefaultSteamDir = "C:/Program Files (x86)/Steam"

// SteamDirFinder locates the Steam install directory on a Windows host.
type SteamDirFinder func() (string, error)

// Lookups caches expensive host lookups for the lifetime of one process.
// A single value is shared by every Resolver in a run. Results are computed
// on first use and never invalidated.
type Lookups struct {
	findSteam SteamDirFinder

	steamOnce sync.Once
	steamDir  string
}

// LookupsOption configures Lookups.
type LookupsOption func(*Lookups)

// WithSteamDirFinder replaces the default Steam directory probe.
func WithSteamDirFinder(f SteamDirFinder) LookupsOption {
	return func(l *Lookups) {
		l.findSteam = f
	}
}

// NewLookups creates an empty lookup cache.
func NewLookups(opts ...LookupsOption) *Lookups {
	l := &Lookups{findSteam: probeSteamDir}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SteamDir returns the Steam install directory, falling back to
// DefaultSteamDir when the lookup fails.
func (l *Lookups) SteamDir() string {
	l.steamOnce.Do(func() {
		dir, err := l.findSteam()
		if err != nil || dir == "" {
			slog.Debug("steam install directory not found, using default",
				"default", DefaultSteamDir, "error", err)
			l.steamDir = DefaultSteamDir
			return
		}
		l.steamDir = filepath.ToSlash(dir)
	})
	return l.steamDir
}

// probeSteamDir checks the standard Program Files locations.
func probeSteamDir() (string, error) {
	candidates := []string{
		os.Getenv("ProgramFiles(x86)"),
		os.Getenv("ProgramFiles"),
	}
	for _, base := range candidates {
		if base == "" {
			continue
		}
		dir := filepath.Join(base, "Steam")
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, nil
		}
	}
	return "", errors.New("steam install directory not found")
}
