// Package config provides configuration management for the savekeep CLI.
//
// # Configuration File
//
// config.yaml is searched for in the current directory and then in
// <ConfigHome>/savekeep. Every key can be overridden with a SAVEKEEP_
// prefixed environment variable.
//
//	version: 1
//	archive_dir: /mnt/backup/saves    # default <DataHome>/savekeep
//	account_id: "22202"              # optional, 64-bit ids are accepted
//	malformed_manifest: abort        # or rebuild
//	catalogs:
//	  - ~/.config/savekeep/catalog.yaml
//	applications:
//	  - name: Example
//	    install_dir: /games/example
//	    prefix: /home/me/.local/share/Steam/steamapps/compatdata/620/pfx
//
// # Loading Configuration
//
// Call [Init] once, then [Load]. An explicit path that does not exist is an
// error; an implicit search that finds nothing yields the defaults.
//
//	config.Init()
//	cfg, err := config.Load("")
//
// # Validation
//
// [Validate] returns every problem found, each a [*FieldError] or a sentinel:
//
//	for _, e := range config.Validate(cfg) {
//	    fmt.Println(e)
//	}
package config
