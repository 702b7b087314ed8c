// Package main implements the go-guard-query CLI (ggq).
// It provides commands for querying the platform guard guaranteed at a
// call site, dumping control flow graphs, and scanning projects for call
// sites.
package main

import (
	"os"

	"github.com/l3aro/go-guard-query/cmd/ggq/commands"
)

var version = "dev"

func main() {
	commands.RootCmd.Version = version
	commands.RootCmd.SetVersionTemplate(`ggq version {{.Version}}
`)

	if err := commands.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
