// Package main is the entry point for the tagbot CLI.
package main

import (
	"os"

	"github.com/scubot/tagbot/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
