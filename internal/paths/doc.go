// Package paths provides cross-platform host directory detection for savekeep.
//
// # XDG Base Directory Compliance
//
// The package wraps github.com/adrg/xdg for cross-platform XDG Base Directory
// Specification compliance. On Linux, paths follow XDG conventions
// (~/.config, ~/.local/share, XDG user dirs for Documents).
//
// # Host Snapshot
//
// [Detect] captures every directory placeholder resolution may need into a
// [HostDirs] value. The snapshot includes the Windows and macOS roots even on
// other hosts, so a resolver can be built for any OS family:
//
//	host, err := paths.Detect()
//	if err != nil {
//	    return err
//	}
//	fmt.Println(host.Documents)
//
// # savekeep's own directories
//
//	paths.ConfigDir()         // <ConfigHome>/savekeep (config.yaml lives here)
//	paths.DefaultArchiveDir() // <DataHome>/savekeep (default archive root)
package paths
