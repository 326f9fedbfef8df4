// Package main implements the logosc CLI.
// It compiles serialized LOGOS compilation units to Rust source and
// generates C headers and host-language bindings for exported functions.
package main

import (
	"os"

	"github.com/Brahmastra-Labs/logicaffeine-sub008/cmd/logosc/commands"
)

var version = "dev"

func main() {
	commands.RootCmd.Version = version
	commands.RootCmd.SetVersionTemplate(`logosc version {{.Version}}
`)

	if err := commands.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
