package commands

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/thoreinstein/savekeep/internal/backup"
	"github.com/thoreinstein/savekeep/internal/config"
	"github.com/thoreinstein/savekeep/internal/errors"
	"github.com/thoreinstein/savekeep/internal/logging"
)

func TestSetupLogging_VerbosityFlags(t *testing.T) {
	origVerbosity := verbosity
	defer func() { verbosity = origVerbosity }()
	t.Setenv("SAVEKEEP_DEBUG", "")

	tests := []struct {
		name      string
		verbosity int
		wantLevel slog.Level
	}{
		{"default (0)", 0, slog.LevelWarn},
		{"verbose (1)", 1, slog.LevelInfo},
		{"debug (2)", 2, slog.LevelDebug},
		{"trace (3)", 3, logging.LevelTrace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verbosity = tt.verbosity
			if err := setupLogging(rootCmd); err != nil {
				t.Fatalf("setupLogging failed: %v", err)
			}

			logger := slog.Default()
			if !logger.Enabled(t.Context(), tt.wantLevel) {
				t.Errorf("expected level %v to be enabled", tt.wantLevel)
			}
			if tt.wantLevel > logging.LevelTrace {
				shouldBeDisabled := tt.wantLevel - 4
				if logger.Enabled(t.Context(), shouldBeDisabled) {
					t.Errorf("expected level %v to be disabled", shouldBeDisabled)
				}
			}
		})
	}
}

func TestSetupLogging_EnvVar(t *testing.T) {
	origVerbosity := verbosity
	defer func() { verbosity = origVerbosity }()

	tests := []struct {
		name      string
		envVal    string
		wantLevel slog.Level
	}{
		{"SAVEKEEP_DEBUG=1", "1", slog.LevelDebug},
		{"SAVEKEEP_DEBUG=true", "true", slog.LevelDebug},
		{"SAVEKEEP_DEBUG=2", "2", logging.LevelTrace},
		{"SAVEKEEP_DEBUG=0", "0", slog.LevelWarn},
		{"SAVEKEEP_DEBUG=unknown", "foo", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verbosity = 0
			t.Setenv("SAVEKEEP_DEBUG", tt.envVal)

			if err := setupLogging(rootCmd); err != nil {
				t.Fatalf("setupLogging failed: %v", err)
			}

			logger := slog.Default()
			if !logger.Enabled(t.Context(), tt.wantLevel) {
				t.Errorf("expected level %v to be enabled", tt.wantLevel)
			}
			if tt.wantLevel == slog.LevelDebug && logger.Enabled(t.Context(), logging.LevelTrace) {
				t.Error("expected Trace level to be disabled when SAVEKEEP_DEBUG=1")
			}
		})
	}
}

func TestSetupLogging_FlagPrecedence(t *testing.T) {
	origVerbosity := verbosity
	defer func() { verbosity = origVerbosity }()

	t.Setenv("SAVEKEEP_DEBUG", "2")
	verbosity = 1

	if err := setupLogging(rootCmd); err != nil {
		t.Fatalf("setupLogging failed: %v", err)
	}

	logger := slog.Default()
	if !logger.Enabled(t.Context(), slog.LevelInfo) {
		t.Error("expected Info level to be enabled")
	}
	if logger.Enabled(t.Context(), slog.LevelDebug) {
		t.Error("expected Debug level to be disabled (flag should override env var)")
	}
}

func TestSetupLogging_Quiet(t *testing.T) {
	origQuiet := quiet
	origVerbosity := verbosity
	defer func() {
		quiet = origQuiet
		verbosity = origVerbosity
	}()

	quiet = true
	verbosity = 0

	if err := setupLogging(rootCmd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger := slog.Default()
	if !logger.Enabled(t.Context(), slog.LevelError) {
		t.Error("expected Error level to be enabled")
	}
	if logger.Enabled(t.Context(), slog.LevelWarn) {
		t.Error("expected Warn level to be disabled")
	}
}

func TestSetupLogging_QuietMutualExclusion(t *testing.T) {
	origVerbosity := verbosity
	origQuiet := quiet
	defer func() {
		verbosity = origVerbosity
		quiet = origQuiet
	}()

	verbosity = 1
	quiet = true

	err := setupLogging(rootCmd)
	var exitErr *errors.ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != errors.ExitUser {
		t.Errorf("expected a user error when both quiet and verbose are set, got %v", err)
	}
}

func TestSetupLogging_LogFile(t *testing.T) {
	origVerbosity, origFile := verbosity, logFile
	defer func() {
		verbosity = origVerbosity
		logFile = origFile
	}()

	verbosity = 1
	logFile = filepath.Join(t.TempDir(), "savekeep.log")

	if err := setupLogging(rootCmd); err != nil {
		t.Fatalf("setupLogging failed: %v", err)
	}
	logging.FromContext(rootCmd.Context()).Info("backup written", "application", "Example")

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"backup written"`) {
		t.Errorf("expected JSON record in log file, got %s", data)
	}
}

func TestCheckConfig(t *testing.T) {
	origCfg, origErr := loadedConfig, configLoadErr
	defer func() { loadedConfig, configLoadErr = origCfg, origErr }()

	valid := &config.Config{Version: 1, MalformedManifest: backup.PolicyAbort}

	tests := []struct {
		name    string
		cfg     *config.Config
		loadErr error
		command string
		wantErr bool
	}{
		{"valid", valid, nil, "backup", false},
		{"load error", nil, errors.New("boom"), "backup", true},
		{"load error skipped for version", nil, errors.New("boom"), "version", false},
		{"load error skipped for config path", nil, errors.New("boom"), "path", false},
		{"invalid config", &config.Config{Version: 0, MalformedManifest: "x"}, nil, "restore", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loadedConfig, configLoadErr = tt.cfg, tt.loadErr

			var target = backupCmd
			switch tt.command {
			case "version":
				target = versionCmd
			case "path":
				target = configPathCmd
			case "restore":
				target = restoreCmd
			}
			target.SetContext(logging.TestContext(t))

			err := checkConfig(target, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("checkConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var exitErr *errors.ExitError
				if !errors.As(err, &exitErr) || exitErr.Code != errors.ExitUser {
					t.Errorf("expected a config error, got %v", err)
				}
				if tt.loadErr == nil && !errors.Is(err, errors.ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			}
		})
	}
}
