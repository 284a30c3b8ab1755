// Package placeholder translates between portable save paths and concrete
// filesystem paths.
//
// A portable path such as "{Documents}/Example/save.dat" contains tokens as
// whole path components. A [Resolver] built for one application's [Context]
// maps each token to a directory:
//
//	ctx := placeholder.NewContext(placeholder.Linux,
//	    placeholder.WithPrefix(prefix),
//	    placeholder.WithInstallDir(installDir),
//	)
//	r := placeholder.NewResolver(ctx, host, lookups)
//	live, err := r.Expand("{LocalLow}/Vendor/Game/save.sav")
//	portable, ok := r.Shrink(live)
//
// Expand fails with [ErrMissingContext] when a token cannot be resolved in
// the context. Shrink never fails: a path outside every known directory is
// returned unchanged.
//
// Token directories are literal even when they contain glob syntax, as in
// "Game [GOTY]". [Resolver.Split] keeps the directory apart from the rule's
// pattern so that [Expansion.Glob] never reads it as one; the only wildcard
// it introduces is the unknown Steam account.
//
// The token declaration order is the shrink priority. [Resolver.Mappings]
// exposes the resolved list in that order.
package placeholder
