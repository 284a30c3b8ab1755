package placeholder

import (
	"os"
	"path"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Expansion is a template expanded against a Resolver, split where the
// literal part ends.
type Expansion struct {
	// Base is a concrete directory in OS form. It is never a pattern, even
	// when it contains characters such as '[' or '{'.
	Base string

	// Wildcard matches exactly one directory below Base, such as every Steam
	// account. Empty when the account is known.
	Wildcard string

	// Rest is the remainder of the template, '/'-separated and relative.
	Rest string
}

// Pattern returns Wildcard and Rest as one glob relative to Base.
func (x Expansion) Pattern() string {
	return path.Join(x.Wildcard, x.Rest)
}

// Path joins the expansion into one path, keeping any wildcard verbatim.
func (x Expansion) Path() string {
	return filepath.Join(x.Base, filepath.FromSlash(x.Pattern()))
}

// Glob returns the existing paths the expansion matches. Without a Base the
// whole template is a pattern.
func (x Expansion) Glob() ([]string, error) {
	if x.Base == "" {
		return doublestar.FilepathGlob(filepath.FromSlash(x.Rest))
	}

	pattern := x.Pattern()
	if pattern == "" {
		if _, err := os.Lstat(x.Base); err != nil {
			return nil, nil
		}
		return []string{x.Base}, nil
	}

	rel, err := doublestar.Glob(os.DirFS(x.Base), pattern)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(rel))
	for i, m := range rel {
		out[i] = filepath.Join(x.Base, filepath.FromSlash(m))
	}
	return out, nil
}
