// Package main is the entry point for the embertail CLI.
package main

import (
	"os"

	"github.com/embertail-io/embertail/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
