package config

import (
	"path/filepath"
	"strings"

	"github.com/thoreinstein/savekeep/internal/account"
	"github.com/thoreinstein/savekeep/internal/errors"
)

// Validation errors for configuration fields.
var (
	// ErrVersionTooLow indicates the version field is below the minimum.
	ErrVersionTooLow = errors.New("version must be >= 1")

	// ErrInvalidPolicy indicates an unknown malformed_manifest value.
	ErrInvalidPolicy = errors.New("malformed_manifest must be abort or rebuild")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")

	// ErrInvalidApplication indicates an applications entry without a name.
	ErrInvalidApplication = errors.New("application name is required")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if cfg.Version < 1 {
		errs = append(errs, ErrVersionTooLow)
	}

	if !cfg.MalformedManifest.Valid() {
		errs = append(errs, &FieldError{
			Field: "malformed_manifest",
			Value: string(cfg.MalformedManifest),
			Err:   ErrInvalidPolicy,
		})
	}

	if cfg.AccountID != "" {
		if _, err := account.Normalize(cfg.AccountID); err != nil {
			errs = append(errs, &FieldError{Field: "account_id", Value: cfg.AccountID, Err: account.ErrInvalidID})
		}
	}

	if err := validatePath(cfg.ArchiveDir); err != nil {
		errs = append(errs, &FieldError{Field: "archive_dir", Value: cfg.ArchiveDir, Err: err})
	}
	for _, c := range cfg.Catalogs {
		if c == "" {
			errs = append(errs, &FieldError{Field: "catalogs", Value: c, Err: ErrInvalidPath})
			continue
		}
		if err := validatePath(c); err != nil {
			errs = append(errs, &FieldError{Field: "catalogs", Value: c, Err: err})
		}
	}

	for _, app := range cfg.Applications {
		if strings.TrimSpace(app.Name) == "" {
			errs = append(errs, &FieldError{Field: "applications", Value: app.InstallDir, Err: ErrInvalidApplication})
			continue
		}
		for field, p := range map[string]string{"install_dir": app.InstallDir, "prefix": app.Prefix} {
			if err := validatePath(p); err != nil {
				errs = append(errs, &FieldError{Field: "applications." + app.Name + "." + field, Value: p, Err: err})
			}
		}
	}

	return errs
}

// validatePath checks if a path string is well-formed.
// It does not check if the path exists, only that it's syntactically valid.
func validatePath(path string) error {
	// Empty paths are valid (they mean "use default")
	if path == "" {
		return nil
	}

	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}

	cleaned := filepath.Clean(path)
	if cleaned == "" || cleaned == "." {
		return ErrInvalidPath
	}

	return nil
}

// FieldError represents an error for a specific config field.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Value
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
