package placeholder

import (
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/thoreinstein/savekeep/internal/errors"
	"github.com/thoreinstein/savekeep/internal/paths"
)

// ErrMissingContext is returned when a token needs context the Resolver
// does not have, such as {GameRoot} without an install directory.
var ErrMissingContext = errors.New("missing resolution context")

// anyAccount matches every numeric Steam userdata directory.
const anyAccount = "[0-9]*"

// protonPrefixMarker identifies prefixes created by Steam's Proton, whose
// Windows user is always "steamuser". Matched case-insensitively so the
// ~/.steam/steam symlink layout counts too.
var protonPrefixMarker = []string{"steamapps", "compatdata"}

// Mapping pairs a token with the directory it resolves to. Dir uses '/'
// separators and is literal, except that its last component is a glob when
// Wildcard is set.
type Mapping struct {
	Token    Token
	Dir      string
	Wildcard bool
}

// Resolver translates between portable paths and concrete paths for one
// Context.
type Resolver struct {
	ctx    Context
	logger *slog.Logger

	dirs    [tokenCount]string
	wild    [tokenCount]bool
	missing [tokenCount]string
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLogger sets the logger used for shrink misses.
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver computes every token directory for ctx up front. lookups may
// be nil, in which case a private cache is used.
func NewResolver(ctx Context, host paths.HostDirs, lookups *Lookups, opts ...ResolverOption) *Resolver {
	if lookups == nil {
		lookups = NewLookups()
	}
	r := &Resolver{ctx: ctx, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}

	h := slashed(host)
	switch ctx.family {
	case Windows:
		r.resolveWindows(h, lookups)
	case MacOS:
		r.resolveMac(h)
	default:
		r.resolveLinux(h)
	}

	if ctx.installDir != "" {
		r.set(InstallRoot, ctx.installDir)
	} else {
		r.unset(InstallRoot, "no install directory")
	}
	return r
}

// Context returns the context the Resolver was built for.
func (r *Resolver) Context() Context { return r.ctx }

func (r *Resolver) resolveLinux(h paths.HostDirs) {
	if !r.resolvePrefix(h) {
		r.set(Home, h.Home)
		r.set(Documents, h.Documents)
		r.set(RoamingAppData, h.ConfigHome)
		r.set(LocalAppData, h.DataHome)
		r.unset(LocalLow, "no compatibility prefix")
		r.unset(VendorAppData, "no compatibility prefix")
	}
	r.set(XDGConfig, h.ConfigHome)
	r.set(XDGData, h.DataHome)
	if h.DataHome != "" {
		r.setUserdata(path.Join(h.DataHome, "Steam", "userdata"))
	} else {
		r.unset(CloudSave, "no data directory")
	}
}

func (r *Resolver) resolveMac(h paths.HostDirs) {
	if !r.resolvePrefix(h) {
		r.set(Home, h.Home)
		r.set(Documents, joinIf(h.Home, "Documents"))
		r.set(RoamingAppData, h.ApplicationSupport)
		r.set(VendorAppData, joinIf(h.ApplicationSupport, "GOG.com", "Galaxy", "Applications"))
		r.unset(LocalAppData, "no compatibility prefix")
		r.unset(LocalLow, "no compatibility prefix")
	}
	r.set(XDGConfig, h.ConfigHome)
	r.set(XDGData, h.DataHome)
	r.unset(CloudSave, "steam userdata location unknown on macos")
}

func (r *Resolver) resolveWindows(h paths.HostDirs, lookups *Lookups) {
	r.set(Home, h.Home)
	r.set(Documents, joinIf(h.Home, "Documents"))
	r.set(RoamingAppData, h.RoamingAppData)
	r.set(LocalAppData, h.LocalAppData)
	if h.LocalAppData != "" {
		r.set(LocalLow, path.Join(path.Dir(h.LocalAppData), "LocalLow"))
	} else {
		r.unset(LocalLow, "no local app data directory")
	}
	r.set(VendorAppData, joinIf(h.LocalAppData, "GOG.com", "Galaxy", "Applications"))
	r.setUserdata(path.Join(lookups.SteamDir(), "userdata"))
	r.unset(XDGConfig, "xdg directories do not exist on windows")
	r.unset(XDGData, "xdg directories do not exist on windows")
}

// resolvePrefix fills the Windows-style tokens from the compatibility
// prefix. It reports false when the context has no prefix.
func (r *Resolver) resolvePrefix(h paths.HostDirs) bool {
	if r.ctx.prefix == "" {
		return false
	}
	prefix := filepath.ToSlash(r.ctx.prefix)

	user := h.Username
	if hasSegments(prefix, protonPrefixMarker) {
		user = "steamuser"
	}
	if user == "" {
		for _, t := range []Token{Home, Documents, RoamingAppData, LocalAppData, LocalLow, VendorAppData} {
			r.unset(t, "unknown prefix user")
		}
		return true
	}

	home := path.Join(prefix, "drive_c", "users", user)
	appData := path.Join(home, "AppData")
	r.set(Home, home)
	r.set(Documents, path.Join(home, "Documents"))
	r.set(RoamingAppData, path.Join(appData, "Roaming"))
	r.set(LocalAppData, path.Join(appData, "Local"))
	r.set(LocalLow, path.Join(appData, "LocalLow"))
	r.set(VendorAppData, path.Join(appData, "Local", "GOG.com", "Galaxy", "Applications"))
	return true
}

// setUserdata points CloudSave at the account directory below userdata, or
// at every account when none is known.
func (r *Resolver) setUserdata(userdata string) {
	if r.ctx.accountID != "" {
		r.set(CloudSave, path.Join(userdata, r.ctx.accountID))
		return
	}
	r.set(CloudSave, path.Join(userdata, anyAccount))
	r.wild[CloudSave] = true
}

func (r *Resolver) set(t Token, dir string) {
	if dir == "" {
		r.unset(t, "directory unknown on this host")
		return
	}
	r.dirs[t] = path.Clean(filepath.ToSlash(dir))
	r.wild[t] = false
	r.missing[t] = ""
}

func (r *Resolver) unset(t Token, reason string) {
	r.dirs[t] = ""
	r.wild[t] = false
	r.missing[t] = reason
}

// Dir returns the concrete directory for tok.
func (r *Resolver) Dir(tok Token) (string, error) {
	if tok < 0 || tok >= tokenCount {
		return "", errors.Newf("unknown token %d", int(tok))
	}
	if r.dirs[tok] == "" {
		return "", errors.Wrapf(ErrMissingContext, "%s (%s, %s)", tok, r.ctx.family, r.missing[tok])
	}
	return filepath.FromSlash(r.dirs[tok]), nil
}

// Mappings returns the resolvable tokens of this context in priority order.
func (r *Resolver) Mappings() []Mapping {
	out := make([]Mapping, 0, tokenCount)
	for t := Token(0); t < tokenCount; t++ {
		if r.dirs[t] != "" {
			out = append(out, Mapping{Token: t, Dir: r.dirs[t], Wildcard: r.wild[t]})
		}
	}
	return out
}

// Expand substitutes every whole-component token in template with its
// directory. Literal components, including glob wildcards, pass through.
// The result is for display and comparison; use Split to glob or to find a
// restore target, since token directories may contain glob syntax.
func (r *Resolver) Expand(template string) (string, error) {
	parts := strings.Split(filepath.ToSlash(template), "/")
	for i, part := range parts {
		tok, ok := ParseToken(part)
		if !ok {
			continue
		}
		if r.dirs[tok] == "" {
			return "", errors.Wrapf(ErrMissingContext, "expanding %q: %s (%s, %s)",
				template, tok, r.ctx.family, r.missing[tok])
		}
		parts[i] = r.dirs[tok]
	}
	return filepath.Clean(filepath.FromSlash(strings.Join(parts, "/"))), nil
}

// Split expands template like Expand but keeps the concrete directory of
// its first token apart from the rest, so that directory is never read as
// a pattern. A template without a token yields an empty Base.
func (r *Resolver) Split(template string) (Expansion, error) {
	parts := strings.Split(filepath.ToSlash(template), "/")

	first := -1
	for i, part := range parts {
		if _, ok := ParseToken(part); ok {
			first = i
			break
		}
	}
	if first < 0 {
		return Expansion{Rest: path.Clean(strings.Join(parts, "/"))}, nil
	}

	tok, _ := ParseToken(parts[first])
	if r.dirs[tok] == "" {
		return Expansion{}, errors.Wrapf(ErrMissingContext, "expanding %q: %s (%s, %s)",
			template, tok, r.ctx.family, r.missing[tok])
	}

	var x Expansion
	base := r.dirs[tok]
	if r.wild[tok] {
		base, x.Wildcard = path.Split(base)
		base = path.Clean(base)
	}
	if first > 0 {
		base = path.Join(strings.Join(parts[:first], "/"), base)
	}

	rest := parts[first+1:]
	for i, part := range rest {
		if t, ok := ParseToken(part); ok && r.dirs[t] != "" {
			rest[i] = r.dirs[t]
		}
	}
	x.Rest = strings.TrimPrefix(path.Clean(strings.Join(rest, "/")), "/")
	if x.Rest == "." {
		x.Rest = ""
	}

	// ".." climbs out of the wildcard first, then out of base.
	for x.Rest == ".." || strings.HasPrefix(x.Rest, "../") {
		x.Rest = strings.TrimPrefix(strings.TrimPrefix(x.Rest, ".."), "/")
		if x.Wildcard != "" {
			x.Wildcard = ""
			continue
		}
		base = path.Dir(base)
	}

	x.Base = filepath.FromSlash(base)
	return x, nil
}

// Shrink replaces the longest known directory prefix of p with its token.
// Equal lengths go to the higher priority token. When nothing matches p is
// returned unchanged and ok is false.
func (r *Resolver) Shrink(p string) (portable string, ok bool) {
	slashPath := filepath.ToSlash(filepath.Clean(p))
	pathParts := strings.Split(slashPath, "/")

	best, bestLen := Token(-1), 0
	for _, m := range r.Mappings() {
		dirParts := strings.Split(m.Dir, "/")
		if len(dirParts) <= bestLen || !r.hasPrefix(pathParts, dirParts, m.Wildcard) {
			continue
		}
		best, bestLen = m.Token, len(dirParts)
	}

	if best < 0 {
		r.logger.Warn("path is outside every known directory, storing it as-is",
			"path", p, "family", string(r.ctx.family))
		return p, false
	}

	rest := pathParts[bestLen:]
	if len(rest) == 0 {
		return best.String(), true
	}
	return best.String() + "/" + strings.Join(rest, "/"), true
}

// hasPrefix compares components. Only the last directory component of a
// wildcard mapping is matched with glob semantics.
func (r *Resolver) hasPrefix(pathParts, dirParts []string, wildcard bool) bool {
	if len(dirParts) > len(pathParts) {
		return false
	}
	last := len(dirParts) - 1
	for i, d := range dirParts {
		if !r.componentMatch(d, pathParts[i], wildcard && i == last) {
			return false
		}
	}
	return true
}

func (r *Resolver) componentMatch(dirPart, pathPart string, glob bool) bool {
	if r.ctx.family == Windows {
		if strings.EqualFold(dirPart, pathPart) {
			return true
		}
	} else if dirPart == pathPart {
		return true
	}
	if !glob {
		return false
	}
	ok, err := doublestar.Match(dirPart, pathPart)
	return err == nil && ok
}

// hasSegments reports whether seq appears as consecutive components of p,
// ignoring case.
func hasSegments(p string, seq []string) bool {
	parts := strings.Split(p, "/")
	for i := 0; i+len(seq) <= len(parts); i++ {
		match := true
		for j, s := range seq {
			if !strings.EqualFold(parts[i+j], s) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func joinIf(base string, elem ...string) string {
	if base == "" {
		return ""
	}
	return path.Join(append([]string{base}, elem...)...)
}

func slashed(h paths.HostDirs) paths.HostDirs {
	conv := func(s string) string {
		if s == "" {
			return ""
		}
		return path.Clean(filepath.ToSlash(s))
	}
	return paths.HostDirs{
		Home:               conv(h.Home),
		ConfigHome:         conv(h.ConfigHome),
		DataHome:           conv(h.DataHome),
		Documents:          conv(h.Documents),
		RoamingAppData:     conv(h.RoamingAppData),
		LocalAppData:       conv(h.LocalAppData),
		ApplicationSupport: conv(h.ApplicationSupport),
		Username:           h.Username,
	}
}
