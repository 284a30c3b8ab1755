// Package locator finds installed applications and the context needed to
// resolve their save locations.
package locator

import (
	"context"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/thoreinstein/savekeep/internal/catalog"
	"github.com/thoreinstein/savekeep/internal/errors"
	"github.com/thoreinstein/savekeep/internal/logging"
)

// Application is one installed application.
type Application struct {
	// Name is the launcher's display name.
	Name string `mapstructure:"name" yaml:"name"`

	// InstallDir is the install root, if known.
	InstallDir string `mapstructure:"install_dir" yaml:"install_dir,omitempty"`

	// Prefix is the compatibility prefix the application runs in, if any.
	Prefix string `mapstructure:"prefix" yaml:"prefix,omitempty"`

	// Source labels where the application was found.
	Source string `mapstructure:"source" yaml:"source,omitempty"`
}

// Locator lists installed applications.
type Locator interface {
	Applications(ctx context.Context) ([]Application, error)
}

// Static serves a fixed list, typically the config file's applications.
type Static []Application

// Applications returns the list, defaulting Source to "config".
func (s Static) Applications(_ context.Context) ([]Application, error) {
	out := make([]Application, len(s))
	for i, app := range s {
		if app.Source == "" {
			app.Source = "config"
		}
		out[i] = app
	}
	return out, nil
}

// Multi queries several locators. An application found by more than one
// locator is reported once, from the first locator that found it. Failing
// locators are logged and skipped; their errors are returned combined
// alongside the applications that were found.
type Multi []Locator

// Applications merges the results of every locator.
func (m Multi) Applications(ctx context.Context) ([]Application, error) {
	logger := logging.FromContext(ctx)

	var (
		apps   []Application
		result *multierror.Error
		seen   = make(map[string]bool)
	)
	for _, l := range m {
		found, err := l.Applications(ctx)
		if err != nil {
			logger.Warn("application locator failed", "error", err)
			result = multierror.Append(result, err)
			continue
		}
		for _, app := range found {
			key := strings.ToLower(catalog.CleanName(app.Name))
			if seen[key] {
				continue
			}
			seen[key] = true
			apps = append(apps, app)
		}
	}
	return apps, result.ErrorOrNil()
}

// Known keeps the applications the catalog has rules for, with cleaned
// names, sorted by name.
func Known(apps []Application, cat catalog.Catalog) []Application {
	var out []Application
	for _, app := range apps {
		name := catalog.CleanName(app.Name)
		if _, ok := cat[name]; !ok {
			continue
		}
		app.Name = name
		out = append(out, app)
	}
	slices.SortFunc(out, func(a, b Application) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Find returns the application with the given (cleaned) name.
func Find(apps []Application, name string) (Application, error) {
	want := catalog.CleanName(name)
	for _, app := range apps {
		if catalog.CleanName(app.Name) == want {
			return app, nil
		}
	}
	return Application{}, errors.Wrapf(errors.ErrNotFound, "application %q", name)
}
