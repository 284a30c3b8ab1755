// Package main is the entry point for the savekeep CLI.
package main

import (
	"os"

	"github.com/thoreinstein/savekeep/cmd/savekeep/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(commands.PrintError(os.Stderr, err))
	}
}
