package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestResolveHome(t *testing.T) {
	got, err := ResolveHome()
	want, _ := os.UserHomeDir()

	if err != nil {
		if !strings.Contains(err.Error(), ErrHomeDirNotFound.Error()) {
			t.Errorf("unexpected error type: %v", err)
		}
	} else if got != want {
		t.Errorf("ResolveHome() = %q, want %q", got, want)
	}
}

func TestDetect(t *testing.T) {
	host, err := Detect()
	if err != nil {
		t.Skipf("could not detect host directories: %v", err)
	}

	for name, dir := range map[string]string{
		"Home":               host.Home,
		"ConfigHome":         host.ConfigHome,
		"DataHome":           host.DataHome,
		"Documents":          host.Documents,
		"RoamingAppData":     host.RoamingAppData,
		"LocalAppData":       host.LocalAppData,
		"ApplicationSupport": host.ApplicationSupport,
	} {
		if dir == "" {
			t.Errorf("%s is empty", name)
			continue
		}
		if !filepath.IsAbs(dir) {
			t.Errorf("%s = %q, want absolute path", name, dir)
		}
	}

	wantSupport := filepath.Join(host.Home, "Library", "Application Support")
	if host.ApplicationSupport != wantSupport {
		t.Errorf("ApplicationSupport = %q, want %q", host.ApplicationSupport, wantSupport)
	}
}

func TestDetect_WindowsEnvOverrides(t *testing.T) {
	t.Setenv("APPDATA", filepath.Join(string(filepath.Separator), "roam"))
	t.Setenv("LOCALAPPDATA", filepath.Join(string(filepath.Separator), "local"))

	host, err := Detect()
	if err != nil {
		t.Skipf("could not detect host directories: %v", err)
	}
	if host.RoamingAppData != filepath.Join(string(filepath.Separator), "roam") {
		t.Errorf("RoamingAppData = %q", host.RoamingAppData)
	}
	if host.LocalAppData != filepath.Join(string(filepath.Separator), "local") {
		t.Errorf("LocalAppData = %q", host.LocalAppData)
	}
}

func TestUsername_FromEnv(t *testing.T) {
	key := "USER"
	if runtime.GOOS == "windows" {
		key = "USERNAME"
	}
	t.Setenv(key, "savetester")

	if got := Username(); got != "savetester" {
		t.Errorf("Username() = %q, want %q", got, "savetester")
	}
}

func TestOwnDirs(t *testing.T) {
	t.Setenv("SAVEKEEP_CONFIG_DIR", "")
	if !strings.HasSuffix(ConfigDir(), AppName) {
		t.Errorf("ConfigDir() = %q, want suffix %q", ConfigDir(), AppName)
	}
	if !strings.HasPrefix(DefaultArchiveDir(), DataHome()) {
		t.Errorf("DefaultArchiveDir() = %q, want under %q", DefaultArchiveDir(), DataHome())
	}
}

func TestConfigDir_Override(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SAVEKEEP_CONFIG_DIR", dir)
	if got := ConfigDir(); got != dir {
		t.Errorf("ConfigDir() = %q, want %q", got, dir)
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := EnsureDir(dir, 0); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}
	if err := EnsureDir(dir, 0); err != nil {
		t.Fatalf("EnsureDir() second call error = %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected directory at %s", dir)
	}
}
