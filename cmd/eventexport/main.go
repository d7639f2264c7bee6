// Package main is the entry point for the eventexport application.
package main

import (
	"os"

	"github.com/jmylchreest/eventexport/cmd/eventexport/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
