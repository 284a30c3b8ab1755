package paths

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"

	"github.com/thoreinstein/savekeep/internal/errors"
)

// AppName is the directory name savekeep uses under the XDG roots.
const AppName = "savekeep"

// Sentinel errors for path resolution.
var (
	// ErrHomeDirNotFound indicates the user's home directory could not be determined.
	ErrHomeDirNotFound = errors.New("home directory not found")
)

// DefaultDirPerm is the default permission for newly created directories.
const DefaultDirPerm = 0o755

// HostDirs is a snapshot of the directories of the machine savekeep runs on.
//
// Placeholder resolution reads from this value instead of the environment so
// that it can be exercised for any OS family from any host.
type HostDirs struct {
	// Home is the user's home directory.
	Home string

	// ConfigHome is the XDG config root (~/.config on Linux).
	ConfigHome string

	// DataHome is the XDG data root (~/.local/share on Linux).
	DataHome string

	// Documents is the user's documents directory as reported by XDG user dirs.
	Documents string

	// RoamingAppData is %APPDATA% on Windows hosts.
	RoamingAppData string

	// LocalAppData is %LOCALAPPDATA% on Windows hosts.
	LocalAppData string

	// ApplicationSupport is ~/Library/Application Support on macOS hosts.
	ApplicationSupport string

	// Username is the login name of the current user.
	Username string
}

// EnsureDir creates the directory and any necessary parents with specified permissions.
// If perm is 0, DefaultDirPerm is used.
// This function is idempotent; it returns nil if the directory already exists.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

// ResolveHome returns the user's home directory.
// Returns ErrHomeDirNotFound if the directory cannot be determined.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return home, nil
}

// Detect captures the directories of the current host.
func Detect() (HostDirs, error) {
	home := xdg.Home
	if home == "" {
		h, err := ResolveHome()
		if err != nil {
			return HostDirs{}, err
		}
		home = h
	}

	dirs := HostDirs{
		Home:               home,
		ConfigHome:         xdg.ConfigHome,
		DataHome:           xdg.DataHome,
		Documents:          xdg.UserDirs.Documents,
		RoamingAppData:     envOr("APPDATA", filepath.Join(home, "AppData", "Roaming")),
		LocalAppData:       envOr("LOCALAPPDATA", filepath.Join(home, "AppData", "Local")),
		ApplicationSupport: filepath.Join(home, "Library", "Application Support"),
		Username:           Username(),
	}
	if dirs.Documents == "" {
		dirs.Documents = filepath.Join(home, "Documents")
	}
	return dirs, nil
}

// Username returns the current user's login name, preferring the USER
// (or USERNAME on Windows) environment variable over the user database.
func Username() string {
	key := "USER"
	if runtime.GOOS == "windows" {
		key = "USERNAME"
	}
	if name := os.Getenv(key); name != "" {
		return name
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return ""
}

// ConfigHome returns the XDG config home directory.
// On Linux: ~/.config
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func ConfigHome() string {
	return xdg.ConfigHome
}

// DataHome returns the XDG data home directory.
// On Linux: ~/.local/share
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func DataHome() string {
	return xdg.DataHome
}

// ConfigDir returns savekeep's own configuration directory: <ConfigHome>/savekeep,
// unless SAVEKEEP_CONFIG_DIR overrides it.
func ConfigDir() string {
	return envOr("SAVEKEEP_CONFIG_DIR", filepath.Join(ConfigHome(), AppName))
}

// DefaultArchiveDir returns the default archive root: <DataHome>/savekeep.
func DefaultArchiveDir() string {
	return filepath.Join(DataHome(), AppName)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
