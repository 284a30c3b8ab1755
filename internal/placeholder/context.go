package placeholder

import "path/filepath"

// Context holds everything that varies between applications when resolving
// tokens. It is built once per application per run and never changes.
type Context struct {
	family     Family
	installDir string
	prefix     string
	accountID  string
}

// Option configures a Context.
type Option func(*Context)

// WithInstallDir sets the application's install root ({GameRoot}).
func WithInstallDir(dir string) Option {
	return func(c *Context) {
		if dir != "" {
			c.installDir = filepath.Clean(dir)
		}
	}
}

// WithPrefix sets the compatibility-layer prefix (a Wine or Proton prefix).
func WithPrefix(dir string) Option {
	return func(c *Context) {
		if dir != "" {
			c.prefix = filepath.Clean(dir)
		}
	}
}

// WithAccountID pins the Steam account used for {SteamUserData}.
func WithAccountID(id string) Option {
	return func(c *Context) {
		c.accountID = id
	}
}

// NewContext builds a resolution context for the given family.
func NewContext(family Family, opts ...Option) Context {
	c := Context{family: family}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Family returns the OS family being resolved for.
func (c Context) Family() Family { return c.family }

// InstallDir returns the install root, or "" when unknown.
func (c Context) InstallDir() string { return c.installDir }

// Prefix returns the compatibility prefix, or "" when none applies.
func (c Context) Prefix() string { return c.prefix }

// AccountID returns the pinned account id, or "" to match every account.
func (c Context) AccountID() string { return c.accountID }
